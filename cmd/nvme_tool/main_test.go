//
// (C) Copyright 2025 Intel Corporation.
//
// SPDX-License-Identifier: BSD-2-Clause-Patent
//

package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"

	"github.com/daos-stack/go-nvme/common/test"
	"github.com/daos-stack/go-nvme/config"
	"github.com/daos-stack/go-nvme/lib/nvme"
	"github.com/daos-stack/go-nvme/logging"
)

type mockDevice struct {
	*nvme.MockTransport
	nsid   uint32
	path   string
	closed bool
}

func (md *mockDevice) NamespaceID() uint32 {
	return md.nsid
}

func (md *mockDevice) Close() error {
	md.closed = true
	return nil
}

// setupMockDevice replaces the device opener for the duration of the test.
func setupMockDevice(t *testing.T, mtc *nvme.MockTransportConfig, nsid uint32) *mockDevice {
	t.Helper()

	md := &mockDevice{
		MockTransport: nvme.NewMockTransport(mtc),
		nsid:          nsid,
	}
	orig := openTransport
	openTransport = func(_ logging.Logger, path string) (deviceTransport, error) {
		md.path = path
		return md, nil
	}
	t.Cleanup(func() {
		openTransport = orig
	})

	return md
}

func identifyResponses() map[nvme.CNS]*nvme.MockResponse {
	return map[nvme.CNS]*nvme.MockResponse{
		nvme.CNSController: {Data: nvme.MockIdentifyController(nvme.MockControllerData())},
		nvme.CNSNamespace:  {Data: nvme.MockIdentifyNamespace(nvme.MockNamespaceData(1))},
	}
}

func writeTestFile(t *testing.T, name string, content []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, content, 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func opcodes(calls []nvme.Command) []uint8 {
	ops := make([]uint8, 0, len(calls))
	for _, call := range calls {
		ops = append(ops, call.Opcode)
	}
	return ops
}

func TestNvmeTool_Commands(t *testing.T) {
	invalidField := &nvme.MockResponse{Status: nvme.Status{Code: 0x02}}
	fwImage := writeTestFile(t, "fw.bin", make([]byte, 300*1024))
	oddImage := writeTestFile(t, "odd.bin", make([]byte, 6))
	wrData := writeTestFile(t, "data.bin", []byte("hello"))
	bigData := writeTestFile(t, "big.bin", make([]byte, 4097))

	for name, tc := range map[string]struct {
		args       []string
		mtc        *nvme.MockTransportConfig
		devNSID    uint32
		expErr     error
		expDevErr  bool
		expOpcodes []uint8
		expNSID    uint32
		expOut     []string
	}{
		"no device": {
			args:   []string{"id-ctrl"},
			expErr: config.FaultConfigNoDevice,
		},
		"unexpected args": {
			args:   []string{"id-ctrl", "-D", "/dev/nvme0", "extra"},
			expErr: errors.New("unexpected commandline arguments"),
		},
		"id-ctrl": {
			args:       []string{"id-ctrl", "-D", "/dev/nvme0"},
			mtc:        &nvme.MockTransportConfig{IdentifyResponses: identifyResponses()},
			expOpcodes: []uint8{uint8(nvme.AdminIdentify)},
			expOut:     []string{"PHLJ000000001P0DGN", "INTEL SSDPE2KX010T8", "VDV10131"},
		},
		"id-ctrl device error": {
			args: []string{"id-ctrl", "-D", "/dev/nvme0"},
			mtc: &nvme.MockTransportConfig{
				AdminResponses: map[nvme.AdminOpcode]*nvme.MockResponse{
					nvme.AdminIdentify: invalidField,
				},
			},
			expDevErr:  true,
			expOpcodes: []uint8{uint8(nvme.AdminIdentify)},
		},
		"id-ns uses transport namespace": {
			args:       []string{"id-ns", "-D", "/dev/nvme0n2"},
			mtc:        &nvme.MockTransportConfig{IdentifyResponses: identifyResponses()},
			devNSID:    2,
			expOpcodes: []uint8{uint8(nvme.AdminIdentify)},
			expNSID:    2,
			expOut:     []string{"Namespace 2", "4.0 KiB"},
		},
		"id-ns flag overrides transport namespace": {
			args:       []string{"id-ns", "-D", "/dev/nvme0n2", "-n", "3"},
			mtc:        &nvme.MockTransportConfig{IdentifyResponses: identifyResponses()},
			devNSID:    2,
			expOpcodes: []uint8{uint8(nvme.AdminIdentify)},
			expNSID:    3,
			expOut:     []string{"Namespace 3"},
		},
		"identify": {
			args: []string{"identify", "-D", "/dev/nvme0"},
			mtc:  &nvme.MockTransportConfig{IdentifyResponses: identifyResponses()},
			expOpcodes: []uint8{
				uint8(nvme.AdminIdentify), uint8(nvme.AdminIdentify),
			},
			expOut: []string{"PHLJ000000001P0DGN", "Namespace 1"},
		},
		"list-ns": {
			args: []string{"list-ns", "-D", "/dev/nvme0"},
			mtc: &nvme.MockTransportConfig{
				IdentifyResponses: map[nvme.CNS]*nvme.MockResponse{
					nvme.CNSNamespaceList: {Data: []byte{1, 0, 0, 0, 4, 0, 0, 0}},
				},
			},
			expOpcodes: []uint8{uint8(nvme.AdminIdentify)},
			expOut:     []string{"[1]: 0x1", "[4]: 0x4"},
		},
		"list-ns empty": {
			args:       []string{"list-ns", "-D", "/dev/nvme0"},
			expOpcodes: []uint8{uint8(nvme.AdminIdentify)},
			expOut:     []string{"No active namespaces"},
		},
		"smart-log broadcast": {
			args:       []string{"smart-log", "-D", "/dev/nvme0", "--broadcast"},
			expOpcodes: []uint8{uint8(nvme.AdminGetLogPage)},
			expNSID:    nvme.BroadcastNSID,
			expOut:     []string{"SMART / Health Information"},
		},
		"fw-log": {
			args:       []string{"fw-log", "-D", "/dev/nvme0"},
			expOpcodes: []uint8{uint8(nvme.AdminGetLogPage)},
			expNSID:    nvme.BroadcastNSID,
		},
		"error-log sized from controller": {
			args: []string{"error-log", "-D", "/dev/nvme0", "--max-entries", "2"},
			mtc:  &nvme.MockTransportConfig{IdentifyResponses: identifyResponses()},
			expOpcodes: []uint8{
				uint8(nvme.AdminIdentify), uint8(nvme.AdminGetLogPage),
			},
			expNSID: nvme.BroadcastNSID,
		},
		"get-feature hex id": {
			args: []string{"get-feature", "-D", "/dev/nvme0", "-f", "0x06"},
			mtc: &nvme.MockTransportConfig{
				FeatureResponses: map[nvme.FeatureID]*nvme.MockResponse{
					nvme.FeatVolatileWriteCache: {DW0: 1},
				},
			},
			expOpcodes: []uint8{uint8(nvme.AdminGetFeatures)},
			expOut:     []string{"Write Cache Enabled", "yes"},
		},
		"get-feature id out of range": {
			args:   []string{"get-feature", "-D", "/dev/nvme0", "-f", "0x100"},
			expErr: errors.New("out of range"),
		},
		"get-feature bad select": {
			args:   []string{"get-feature", "-D", "/dev/nvme0", "-f", "6", "--sel", "bogus"},
			expErr: errors.New("bogus"),
		},
		"set-feature save": {
			args:       []string{"set-feature", "-D", "/dev/nvme0", "-f", "6", "-v", "1", "--save"},
			expOpcodes: []uint8{uint8(nvme.AdminSetFeatures)},
			expOut:     []string{"set-feature:0x06"},
		},
		"set-feature missing data file": {
			args:   []string{"set-feature", "-D", "/dev/nvme0", "-f", "0x81", "--data-file", "/nonexistent"},
			expErr: errors.New("/nonexistent"),
		},
		"list-features supported only": {
			args: []string{"list-features", "-D", "/dev/nvme0", "--supported-only"},
			mtc: &nvme.MockTransportConfig{
				AdminResponses: map[nvme.AdminOpcode]*nvme.MockResponse{
					nvme.AdminGetFeatures: invalidField,
				},
				FeatureResponses: map[nvme.FeatureID]*nvme.MockResponse{
					nvme.FeatArbitration: {DW0: 0x3},
				},
			},
			expOut: []string{"Arbitration", "0x00000003"},
		},
		"feature-help needs no device": {
			args:   []string{"feature-help"},
			expOut: []string{"Volatile Write Cache", "Host Identifier"},
		},
		"regs": {
			args:   []string{"regs", "-D", "/dev/nvme0"},
			mtc:    &nvme.MockTransportConfig{Registers: make([]byte, 0x40)},
			expOut: []string{"Controller Registers"},
		},
		"format without force": {
			args:   []string{"format", "-D", "/dev/nvme0"},
			expErr: errors.New("without --force"),
		},
		"format 512 byte blocks": {
			args: []string{"format", "-D", "/dev/nvme0", "-b", "512", "--ses", "user", "--force"},
			mtc:  &nvme.MockTransportConfig{IdentifyResponses: identifyResponses()},
			expOpcodes: []uint8{
				uint8(nvme.AdminIdentify), uint8(nvme.AdminFormatNVM),
			},
			expNSID: 1,
			expOut:  []string{"formatted with 512 B blocks"},
		},
		"format unsupported block size": {
			args:       []string{"format", "-D", "/dev/nvme0", "-b", "8KiB", "--force"},
			mtc:        &nvme.MockTransportConfig{IdentifyResponses: identifyResponses()},
			expErr:     errors.New("no LBA format"),
			expOpcodes: []uint8{uint8(nvme.AdminIdentify)},
		},
		"sanitize overwrite": {
			args: []string{"sanitize", "-D", "/dev/nvme0", "-a", "overwrite", "--passes", "3",
				"--pattern", "0xdeadbeef", "--force"},
			expOpcodes: []uint8{uint8(nvme.AdminSanitize)},
			expOut:     []string{"sanitize (overwrite) started"},
		},
		"sanitize missing action": {
			args:   []string{"sanitize", "-D", "/dev/nvme0", "--force"},
			expErr: errors.New("action"),
		},
		"fw-download in pieces": {
			args: []string{"fw-download", "-D", "/dev/nvme0", "--file", fwImage},
			mtc:  &nvme.MockTransportConfig{IdentifyResponses: identifyResponses()},
			expOpcodes: []uint8{
				uint8(nvme.AdminIdentify),
				uint8(nvme.AdminFirmwareDownload),
				uint8(nvme.AdminFirmwareDownload),
				uint8(nvme.AdminFirmwareDownload),
			},
			expOut: []string{"downloaded"},
		},
		"fw-download unaligned image": {
			args:   []string{"fw-download", "-D", "/dev/nvme0", "--file", oddImage},
			mtc:    &nvme.MockTransportConfig{IdentifyResponses: identifyResponses()},
			expErr: errors.New("not dword aligned"),
			expOpcodes: []uint8{
				uint8(nvme.AdminIdentify),
			},
		},
		"fw-commit": {
			args:       []string{"fw-commit", "-D", "/dev/nvme0", "-s", "2", "-a", "activate-immediately"},
			expOpcodes: []uint8{uint8(nvme.AdminFirmwareCommit)},
			expOut:     []string{"activate-immediately", "slot 2"},
		},
		"fw-commit bad slot": {
			args:   []string{"fw-commit", "-D", "/dev/nvme0", "-s", "9"},
			expErr: errors.New("slot"),
		},
		"self-test all namespaces": {
			args:       []string{"self-test", "-D", "/dev/nvme0", "-c", "extended", "--all"},
			expOpcodes: []uint8{uint8(nvme.AdminDeviceSelfTest)},
			expNSID:    nvme.BroadcastNSID,
			expOut:     []string{"extended"},
		},
		"abort": {
			args:       []string{"abort", "-D", "/dev/nvme0", "--cid", "7", "--sqid", "1"},
			expOpcodes: []uint8{uint8(nvme.AdminAbort)},
			expOut:     []string{"command 7 on queue 1 aborted"},
		},
		"abort not aborted": {
			args: []string{"abort", "-D", "/dev/nvme0", "--cid", "7"},
			mtc: &nvme.MockTransportConfig{
				AdminResponses: map[nvme.AdminOpcode]*nvme.MockResponse{
					nvme.AdminAbort: {DW0: 1},
				},
			},
			expOpcodes: []uint8{uint8(nvme.AdminAbort)},
			expOut:     []string{"not aborted"},
		},
		"security-recv dump": {
			args: []string{"security-recv", "-D", "/dev/nvme0", "--secp", "0", "--size", "16"},
			mtc: &nvme.MockTransportConfig{
				AdminResponses: map[nvme.AdminOpcode]*nvme.MockResponse{
					nvme.AdminSecurityReceive: {Data: []byte("0123456789abcdef")},
				},
			},
			expOpcodes: []uint8{uint8(nvme.AdminSecurityReceive)},
			expOut:     []string{"|0123456789abcdef|"},
		},
		"flush": {
			args:       []string{"flush", "-D", "/dev/nvme0n1"},
			devNSID:    1,
			expOpcodes: []uint8{uint8(nvme.NvmFlush)},
			expNSID:    1,
		},
		"write zero pads short input": {
			args: []string{"write", "-D", "/dev/nvme0", "-s", "8", "-c", "1", "--in", wrData},
			mtc:  &nvme.MockTransportConfig{IdentifyResponses: identifyResponses()},
			expOpcodes: []uint8{
				uint8(nvme.AdminIdentify), uint8(nvme.AdminIdentify), uint8(nvme.NvmWrite),
			},
			expOut: []string{"wrote 1 blocks at 8"},
		},
		"write input too large": {
			args: []string{"write", "-D", "/dev/nvme0", "-c", "1", "--in", bigData},
			mtc:  &nvme.MockTransportConfig{IdentifyResponses: identifyResponses()},
			expOpcodes: []uint8{
				uint8(nvme.AdminIdentify), uint8(nvme.AdminIdentify),
			},
			expErr: errors.New("more than 1 blocks"),
		},
		"deallocate": {
			args:       []string{"deallocate", "-D", "/dev/nvme0", "-s", "0", "-c", "256"},
			expOpcodes: []uint8{uint8(nvme.NvmDatasetManagement)},
			expOut:     []string{"deallocated 256 blocks at 0"},
		},
		"write-uncor zero blocks": {
			args:   []string{"write-uncor", "-D", "/dev/nvme0", "-c", "0"},
			expErr: errors.New("out of range"),
		},
		"transport failure": {
			args: []string{"flush", "-D", "/dev/nvme0"},
			mtc: &nvme.MockTransportConfig{
				SubmitErr: errors.New("no such device"),
			},
			expErr:     errors.New("no such device"),
			expOpcodes: []uint8{uint8(nvme.NvmFlush)},
		},
	} {
		t.Run(name, func(t *testing.T) {
			log, buf := logging.NewTestLogger(t.Name())
			defer test.ShowBufferOnFailure(t, buf)()

			md := setupMockDevice(t, tc.mtc, tc.devNSID)

			var opts mainOpts
			gotErr := parseOpts(tc.args, &opts, log)

			if tc.expDevErr {
				_, isDevErr := nvme.DeviceStatus(gotErr)
				test.AssertTrue(t, isDevErr, "expected device reported error, got "+errString(gotErr))
			} else {
				test.CmpErr(t, tc.expErr, gotErr)
			}

			if tc.expOpcodes != nil {
				if diff := cmp.Diff(tc.expOpcodes, opcodes(md.Calls)); diff != "" {
					t.Fatalf("unexpected opcodes (-want, +got):\n%s", diff)
				}
			}
			if tc.expNSID != 0 {
				test.AssertEqual(t, tc.expNSID, md.LastCall().NSID, "nsid")
			}
			if md.CallCount() > 0 {
				test.AssertTrue(t, md.closed, "device not closed")
			}

			out := strings.Join(strings.Fields(buf.String()), " ")
			for _, exp := range tc.expOut {
				if !strings.Contains(out, exp) {
					t.Errorf("expected %q in output:\n%s", exp, out)
				}
			}
		})
	}
}

func errString(err error) string {
	if err == nil {
		return "<nil>"
	}
	return err.Error()
}
