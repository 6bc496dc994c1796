//
// (C) Copyright 2025 Intel Corporation.
//
// SPDX-License-Identifier: BSD-2-Clause-Patent
//

package nvme

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/daos-stack/go-nvme/common/test"
	"github.com/daos-stack/go-nvme/logging"
)

func TestNvme_Dispatch(t *testing.T) {
	for name, tc := range map[string]struct {
		cmd        *Command
		mtc        *MockTransportConfig
		expErr     error
		expCalls   int
		expDW0     uint32
		checkErrFn func(*testing.T, error)
	}{
		"nil command": {
			expErr: FaultBadParameter("nil command"),
		},
		"buffer without data phase": {
			cmd: newAdminCommand(AdminIdentify, 0).withData(XferNone, make([]byte, 8)),
			checkErrFn: func(t *testing.T, err error) {
				if !IsBadParameter(err) {
					t.Fatalf("expected bad parameter, got %v", err)
				}
			},
		},
		"missing buffer for device-to-host": {
			cmd: newAdminCommand(AdminIdentify, 0).withData(XferFromDevice, nil),
			checkErrFn: func(t *testing.T, err error) {
				if !IsBadParameter(err) {
					t.Fatalf("expected bad parameter, got %v", err)
				}
			},
		},
		"missing buffer for host-to-device": {
			cmd: newNvmCommand(NvmWrite, 1).withData(XferToDevice, []byte{}),
			checkErrFn: func(t *testing.T, err error) {
				if !IsBadParameter(err) {
					t.Fatalf("expected bad parameter, got %v", err)
				}
			},
		},
		"invalid direction": {
			cmd: newNvmCommand(NvmWrite, 1).withData(Direction(9), []byte{1}),
			checkErrFn: func(t *testing.T, err error) {
				if !IsBadParameter(err) {
					t.Fatalf("expected bad parameter, got %v", err)
				}
			},
		},
		"transport failure": {
			cmd:      newNvmCommand(NvmFlush, 1),
			mtc:      &MockTransportConfig{SubmitErr: errors.New("ioctl: timed out")},
			expCalls: 1,
			checkErrFn: func(t *testing.T, err error) {
				if !IsTransportFailure(err) {
					t.Fatalf("expected transport failure, got %v", err)
				}
				if _, isDev := DeviceStatus(err); isDev {
					t.Fatal("transport failure reported as device status")
				}
			},
		},
		"device reported error": {
			cmd: newNvmCommand(NvmFlush, 1),
			mtc: &MockTransportConfig{
				NvmResponses: map[NvmOpcode]*MockResponse{
					NvmFlush: {Status: DecodeStatus(0x4002)},
				},
			},
			expCalls: 1,
			checkErrFn: func(t *testing.T, err error) {
				status, isDev := DeviceStatus(err)
				if !isDev {
					t.Fatalf("expected device status, got %v", err)
				}
				exp := Status{Code: 0x02, Type: StatusTypeGeneric, DoNotRetry: true}
				if diff := cmp.Diff(exp, status); diff != "" {
					t.Fatalf("unexpected status (-want, +got):\n%s\n", diff)
				}
				if IsTransportFailure(err) {
					t.Fatal("device error reported as transport failure")
				}
			},
		},
		"success": {
			cmd: newAdminCommand(AdminGetFeatures, 0),
			mtc: &MockTransportConfig{
				AdminResponses: map[AdminOpcode]*MockResponse{
					AdminGetFeatures: {DW0: 0x1F},
				},
			},
			expCalls: 1,
			expDW0:   0x1F,
		},
	} {
		t.Run(name, func(t *testing.T) {
			log, buf := logging.NewTestLogger(t.Name())
			defer test.ShowBufferOnFailure(t, buf)()

			mt := NewMockTransport(tc.mtc)
			dev := NewDevice(log, mt)

			err := dev.Dispatch(tc.cmd)
			if tc.checkErrFn != nil {
				tc.checkErrFn(t, err)
			} else {
				test.CmpErr(t, tc.expErr, err)
			}

			if mt.CallCount() != tc.expCalls {
				t.Fatalf("expected %d transport calls, got %d", tc.expCalls, mt.CallCount())
			}
			if tc.cmd != nil && tc.cmd.Completion.DW0 != tc.expDW0 {
				t.Fatalf("expected dw0 %#x, got %#x", tc.expDW0, tc.cmd.Completion.DW0)
			}
		})
	}
}

func TestNvme_Dispatch_SingleUse(t *testing.T) {
	log, buf := logging.NewTestLogger(t.Name())
	defer test.ShowBufferOnFailure(t, buf)()

	mt := DefaultMockTransport()
	dev := NewDevice(log, mt)

	cmd := newNvmCommand(NvmFlush, 1)
	if err := dev.Dispatch(cmd); err != nil {
		t.Fatal(err)
	}
	if !cmd.Dispatched() {
		t.Fatal("command not marked as dispatched")
	}

	err := dev.Dispatch(cmd)
	if !IsBadParameter(err) {
		t.Fatalf("expected bad parameter on re-dispatch, got %v", err)
	}
	if mt.CallCount() != 1 {
		t.Fatalf("expected 1 transport call, got %d", mt.CallCount())
	}
}

func TestNvme_Dispatch_Timeouts(t *testing.T) {
	log, buf := logging.NewTestLogger(t.Name())
	defer test.ShowBufferOnFailure(t, buf)()

	mt := NewMockTransport(&MockTransportConfig{
		IdentifyResponses: map[CNS]*MockResponse{
			CNSNamespace: {Data: MockIdentifyNamespace(MockNamespaceData(0))},
		},
	})
	timeouts := Timeouts{
		Admin:    2 * time.Second,
		IO:       time.Second,
		Format:   NoTimeout,
		Sanitize: time.Hour,
	}
	dev := NewDevice(log, mt).WithTimeouts(timeouts)

	if err := dev.Flush(); err != nil {
		t.Fatal(err)
	}
	if _, err := dev.IdentifyController(); err != nil {
		t.Fatal(err)
	}
	if err := dev.RunFormat(512, FormatNoSecureErase); err != nil {
		t.Fatal(err)
	}
	if err := dev.Sanitize(SanitizeRequest{Action: SanitizeBlockErase}); err != nil {
		t.Fatal(err)
	}

	var got []time.Duration
	for _, call := range mt.Calls {
		got = append(got, call.Timeout)
	}
	// flush, identify ctrlr, identify ns, format, sanitize
	exp := []time.Duration{time.Second, 2 * time.Second, 2 * time.Second, NoTimeout, time.Hour}
	if diff := cmp.Diff(exp, got); diff != "" {
		t.Fatalf("unexpected timeouts (-want, +got):\n%s\n", diff)
	}
}

func TestNvme_Metrics(t *testing.T) {
	log, buf := logging.NewTestLogger(t.Name())
	defer test.ShowBufferOnFailure(t, buf)()

	mt := NewMockTransport(&MockTransportConfig{
		AdminResponses: map[AdminOpcode]*MockResponse{
			AdminGetFeatures: {Status: Status{Code: 0x02}},
		},
	})
	m := NewMetrics()
	dev := NewDevice(log, mt).WithMetrics(m)

	for i := 0; i < 3; i++ {
		if err := dev.Flush(); err != nil {
			t.Fatal(err)
		}
	}
	if err := dev.GetFeatures(&FeaturesRequest{ID: FeatArbitration}); err == nil {
		t.Fatal("expected device error")
	}

	for _, tc := range []struct {
		labels []string
		exp    float64
	}{
		{[]string{"nvm", "flush", ResultSuccess}, 3},
		{[]string{"admin", "get-features", ResultDeviceError}, 1},
		{[]string{"admin", "get-features", ResultSuccess}, 0},
	} {
		got := testutil.ToFloat64(m.commands.WithLabelValues(tc.labels...))
		if got != tc.exp {
			t.Fatalf("%v: expected %f, got %f", tc.labels, tc.exp, got)
		}
	}
}
