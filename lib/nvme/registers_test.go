//
// (C) Copyright 2025 Intel Corporation.
//
// SPDX-License-Identifier: BSD-2-Clause-Patent
//

package nvme

import (
	"encoding/binary"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"

	"github.com/daos-stack/go-nvme/common/test"
	"github.com/daos-stack/go-nvme/logging"
)

func mockRegisters() []byte {
	bar := make([]byte, 0x1000)
	le := binary.LittleEndian
	// MQES 1023, CQR, TO 20 (10s), DSTRD 0, NSSRS, CSS NVM, MPSMIN 0, MPSMAX 4
	le.PutUint64(bar[RegCAP:], 0x3FF|1<<16|20<<24|1<<36|1<<37|4<<52)
	le.PutUint32(bar[RegVS:], 0x00010300)
	// EN, MPS 0, IOSQES 6, IOCQES 4
	le.PutUint32(bar[RegCC:], 0x1|6<<16|4<<20)
	le.PutUint32(bar[RegCSTS:], 0x1)
	le.PutUint32(bar[RegAQA:], 31|31<<16)
	le.PutUint64(bar[RegASQ:], 0x12340000)
	le.PutUint64(bar[RegACQ:], 0x56780000)
	return bar
}

type noRegisters struct {
	Transport
}

func TestNvme_ReadControllerRegisters(t *testing.T) {
	for name, tc := range map[string]struct {
		transport  Transport
		expNotSupp bool
		expXport   bool
	}{
		"transport without register access": {
			transport:  noRegisters{DefaultMockTransport()},
			expNotSupp: true,
		},
		"read failure": {
			transport: NewMockTransport(&MockTransportConfig{
				RegistersErr: errors.New("mmap: permission denied"),
			}),
			expXport: true,
		},
		"short snapshot": {
			transport: NewMockTransport(&MockTransportConfig{
				Registers: make([]byte, 0x20),
			}),
			expXport: true,
		},
		"success": {
			transport: NewMockTransport(&MockTransportConfig{
				Registers: mockRegisters(),
			}),
		},
	} {
		t.Run(name, func(t *testing.T) {
			log, buf := logging.NewTestLogger(t.Name())
			defer test.ShowBufferOnFailure(t, buf)()

			dev := NewDevice(log, tc.transport)
			regs, err := dev.ReadControllerRegisters()
			switch {
			case tc.expNotSupp:
				if !IsNotSupported(err) {
					t.Fatalf("expected not supported, got %v", err)
				}
				return
			case tc.expXport:
				if !IsTransportFailure(err) {
					t.Fatalf("expected transport failure, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}

			test.AssertEqual(t, uint16(1023), regs.CAP.MQES(), "MQES")
			test.AssertTrue(t, regs.CAP.CQR(), "CQR")
			test.AssertEqual(t, 10*time.Second, regs.CAP.Timeout(), "timeout")
			test.AssertTrue(t, regs.CAP.NSSRS(), "NSSRS")
			test.AssertEqual(t, uint8(1), regs.CAP.CSS(), "CSS")
			test.AssertEqual(t, uint32(4096), regs.CAP.MinPageSize(), "min page size")
			test.AssertEqual(t, uint32(65536), regs.CAP.MaxPageSize(), "max page size")
			test.AssertEqual(t, "1.3.0", regs.VS.String(), "version")
			test.AssertTrue(t, regs.CC.EN(), "EN")
			test.AssertEqual(t, uint8(6), regs.CC.IOSQES(), "IOSQES")
			test.AssertEqual(t, uint8(4), regs.CC.IOCQES(), "IOCQES")
			test.AssertTrue(t, regs.CSTS.RDY(), "RDY")
			test.AssertFalse(t, regs.CSTS.CFS(), "CFS")
			test.AssertEqual(t, uint16(31), regs.AQA.ASQS(), "ASQS")
			test.AssertEqual(t, uint16(31), regs.AQA.ACQS(), "ACQS")
			test.AssertEqual(t, uint64(0x12340000), regs.ASQ, "ASQ")

			again, err := dev.ReadControllerRegisters()
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(regs, again); diff != "" {
				t.Fatalf("register snapshots differ (-first, +second):\n%s\n", diff)
			}
		})
	}
}

func TestNvme_ParseControllerRegisters_ReadOnly(t *testing.T) {
	bar := mockRegisters()
	orig := make([]byte, len(bar))
	copy(orig, bar)

	if _, err := ParseControllerRegisters(bar); err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(orig, bar); diff != "" {
		t.Fatalf("snapshot modified (-want, +got):\n%s\n", diff)
	}
}

func TestNvme_PrintControllerRegisters(t *testing.T) {
	regs, err := ParseControllerRegisters(mockRegisters())
	if err != nil {
		t.Fatal(err)
	}

	var out strings.Builder
	if err := PrintControllerRegisters(&out, regs); err != nil {
		t.Fatal(err)
	}

	collapsed := strings.Join(strings.Fields(out.String()), " ")
	for _, want := range []string{
		"MQES : 1023",
		"TO : 10s",
		"MPSMIN : 4.0 KiB",
		"MPSMAX : 64 KiB",
		"VS : 1.3.0",
		"RDY : yes",
		"AQA : asqs 31 acqs 31",
		"CAP : 0x00400030140103ff",
		"CC : 0x00460001",
		"CSTS : 0x00000001",
		"ASQ : 0x0000000012340000",
		"ACQ : 0x0000000056780000",
		"CMBSZ : 0x00000000",
	} {
		if !strings.Contains(collapsed, want) {
			t.Fatalf("expected %q in output:\n%s", want, out.String())
		}
	}
}
