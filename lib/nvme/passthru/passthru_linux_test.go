//
// (C) Copyright 2025 Intel Corporation.
//
// SPDX-License-Identifier: BSD-2-Clause-Patent
//
//go:build linux
// +build linux

package passthru

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"
	"unsafe"

	"github.com/daos-stack/go-nvme/common/test"
	"github.com/daos-stack/go-nvme/lib/nvme"
	"github.com/daos-stack/go-nvme/logging"
)

func TestPassthru_CmdLayout(t *testing.T) {
	var pc passthruCmd

	test.AssertEqual(t, uintptr(72), unsafe.Sizeof(pc), "struct size")
	test.AssertEqual(t, uintptr(24), unsafe.Offsetof(pc.addr), "addr offset")
	test.AssertEqual(t, uintptr(40), unsafe.Offsetof(pc.cdw10), "cdw10 offset")
	test.AssertEqual(t, uintptr(64), unsafe.Offsetof(pc.timeoutMs), "timeout offset")
	test.AssertEqual(t, uintptr(68), unsafe.Offsetof(pc.result), "result offset")
}

func TestPassthru_NewPassthruCmd(t *testing.T) {
	for name, tc := range map[string]struct {
		timeout    time.Duration
		expTimeout uint32
	}{
		"unbounded": {
			timeout:    nvme.NoTimeout,
			expTimeout: math.MaxUint32,
		},
		"admin default": {
			timeout:    60 * time.Second,
			expTimeout: 60000,
		},
		"below one millisecond": {
			timeout:    500 * time.Microsecond,
			expTimeout: 1,
		},
		"beyond field range": {
			timeout:    50 * 24 * time.Hour,
			expTimeout: math.MaxUint32,
		},
	} {
		t.Run(name, func(t *testing.T) {
			data := make([]byte, 4096)
			cmd := &nvme.Command{
				Type:      nvme.AdminCommand,
				Opcode:    uint8(nvme.AdminFormatNVM),
				NSID:      1,
				CDW10:     0x200,
				CDW15:     0xF,
				Direction: nvme.XferFromDevice,
				Data:      data,
				Timeout:   tc.timeout,
			}

			pc := newPassthruCmd(cmd)

			test.AssertEqual(t, tc.expTimeout, pc.timeoutMs, "timeout")
			test.AssertEqual(t, uint8(nvme.AdminFormatNVM), pc.opcode, "opcode")
			test.AssertEqual(t, uint32(1), pc.nsid, "nsid")
			test.AssertEqual(t, uint32(0x200), pc.cdw10, "cdw10")
			test.AssertEqual(t, uint32(0xF), pc.cdw15, "cdw15")
			test.AssertEqual(t, uint32(len(data)), pc.dataLen, "data length")
			test.AssertEqual(t, uint64(uintptr(unsafe.Pointer(&data[0]))), pc.addr, "data address")
		})
	}
}

func TestPassthru_ReadRegisters(t *testing.T) {
	log, buf := logging.NewTestLogger(t.Name())
	defer test.ShowBufferOnFailure(t, buf)()

	root := t.TempDir()
	devDir := filepath.Join(root, "nvme0", "device")
	if err := os.MkdirAll(devDir, 0755); err != nil {
		t.Fatal(err)
	}
	bar := make([]byte, registerMapSize)
	binary.LittleEndian.PutUint32(bar[nvme.RegVS:], 0x00010400)
	binary.LittleEndian.PutUint32(bar[nvme.RegCSTS:], 0x1)
	binary.LittleEndian.PutUint32(bar[nvme.RegCMBSZ:], 0xDEADBEEF)
	if err := os.WriteFile(filepath.Join(devDir, "resource0"), bar, 0644); err != nil {
		t.Fatal(err)
	}

	dp, err := ParseDevicePath("/dev/nvme0n1")
	if err != nil {
		t.Fatal(err)
	}
	tp := &Transport{log: log, dev: dp, sysfsRoot: root}

	dev := nvme.NewDevice(log, tp)
	regs, err := dev.ReadControllerRegisters()
	if err != nil {
		t.Fatal(err)
	}

	test.AssertEqual(t, "1.4.0", regs.VS.String(), "version")
	test.AssertTrue(t, regs.CSTS.RDY(), "ready")
	test.AssertEqual(t, uint32(0xDEADBEEF), regs.CMBSZ, "CMBSZ")
}

func TestPassthru_ReadRegisters_Missing(t *testing.T) {
	log, buf := logging.NewTestLogger(t.Name())
	defer test.ShowBufferOnFailure(t, buf)()

	dp, err := ParseDevicePath("/dev/nvme7")
	if err != nil {
		t.Fatal(err)
	}
	tp := &Transport{log: log, dev: dp, sysfsRoot: t.TempDir()}

	if _, err := nvme.NewDevice(log, tp).ReadControllerRegisters(); !nvme.IsTransportFailure(err) {
		t.Fatalf("expected transport failure, got %v", err)
	}
}

func TestPassthru_Submit_NotNvme(t *testing.T) {
	log, buf := logging.NewTestLogger(t.Name())
	defer test.ShowBufferOnFailure(t, buf)()

	f, err := os.Open(os.DevNull)
	if err != nil {
		t.Fatal(err)
	}
	dp := &DevicePath{Path: os.DevNull, Controller: "nvme0"}
	tp := &Transport{log: log, dev: dp, file: f}
	defer tp.Close()

	err = nvme.NewDevice(log, tp).Flush()
	if !nvme.IsTransportFailure(err) {
		t.Fatalf("expected transport failure, got %v", err)
	}
}

func TestPassthru_Open_BadPath(t *testing.T) {
	log, buf := logging.NewTestLogger(t.Name())
	defer test.ShowBufferOnFailure(t, buf)()

	if _, err := Open(log, "/dev/null"); err == nil {
		t.Fatal("expected error opening non-nvme path")
	}
}
