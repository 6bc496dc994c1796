//
// (C) Copyright 2025 Intel Corporation.
//
// SPDX-License-Identifier: BSD-2-Clause-Patent
//
//go:build linux
// +build linux

package passthru

import (
	"math"
	"os"
	"runtime"
	"time"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/daos-stack/go-nvme/lib/nvme"
	"github.com/daos-stack/go-nvme/logging"
)

// ioctl request numbers from linux/nvme_ioctl.h.
const (
	nvmeIoctlID       = 0x4E40
	nvmeIoctlAdminCmd = 0xC0484E41
	nvmeIoctlIOCmd    = 0xC0484E43
)

// registerMapSize is the size of the register BAR mapping.
const registerMapSize = 0x1000

// passthruCmd mirrors struct nvme_passthru_cmd.
type passthruCmd struct {
	opcode      uint8
	flags       uint8
	rsvd1       uint16
	nsid        uint32
	cdw2        uint32
	cdw3        uint32
	metadata    uint64
	addr        uint64
	metadataLen uint32
	dataLen     uint32
	cdw10       uint32
	cdw11       uint32
	cdw12       uint32
	cdw13       uint32
	cdw14       uint32
	cdw15       uint32
	timeoutMs   uint32
	result      uint32
}

// Transport submits commands through an open NVMe device node. It
// implements nvme.Transport and nvme.RegisterReader.
type Transport struct {
	log       logging.Logger
	dev       *DevicePath
	file      *os.File
	nsid      uint32
	sysfsRoot string
}

// Open opens the controller character device or namespace block device
// at path. For namespace devices the namespace ID is queried from the
// driver.
func Open(log logging.Logger, path string) (*Transport, error) {
	dev, err := ParseDevicePath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}

	t := &Transport{
		log:  log,
		dev:  dev,
		file: f,
	}

	if dev.Namespace {
		r1, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(), nvmeIoctlID, 0)
		if errno != 0 {
			f.Close()
			return nil, errors.Wrapf(errno, "query namespace ID of %s", path)
		}
		t.nsid = uint32(r1)
	}
	log.Debugf("passthru: opened %s (controller %s, nsid %d)", path, dev.Controller, t.nsid)

	return t, nil
}

// Close releases the device node.
func (t *Transport) Close() error {
	return t.file.Close()
}

// NamespaceID returns the namespace of a namespace device, or 0 for a
// controller device.
func (t *Transport) NamespaceID() uint32 {
	return t.nsid
}

// ioctlTimeout converts a command timeout to the driver's millisecond
// field. The driver substitutes its queue default for zero, so
// nvme.NoTimeout and anything past the field's range become the largest
// value it accepts.
func ioctlTimeout(d time.Duration) uint32 {
	ms := d / time.Millisecond
	if d <= nvme.NoTimeout || ms >= math.MaxUint32 {
		return math.MaxUint32
	}
	if ms == 0 {
		return 1
	}
	return uint32(ms)
}

func newPassthruCmd(cmd *nvme.Command) passthruCmd {
	pc := passthruCmd{
		opcode:    cmd.Opcode,
		nsid:      cmd.NSID,
		cdw10:     cmd.CDW10,
		cdw11:     cmd.CDW11,
		cdw12:     cmd.CDW12,
		cdw13:     cmd.CDW13,
		cdw14:     cmd.CDW14,
		cdw15:     cmd.CDW15,
		timeoutMs: ioctlTimeout(cmd.Timeout),
	}
	if len(cmd.Data) > 0 {
		pc.addr = uint64(uintptr(unsafe.Pointer(&cmd.Data[0])))
		pc.dataLen = uint32(len(cmd.Data))
	}

	return pc
}

// Submit implements nvme.Transport. A positive ioctl return value is the
// completion status reported by the controller.
func (t *Transport) Submit(cmd *nvme.Command) (nvme.Completion, error) {
	pc := newPassthruCmd(cmd)

	req := uintptr(nvmeIoctlAdminCmd)
	if cmd.Type == nvme.NvmCommand {
		req = nvmeIoctlIOCmd
	}

	r1, _, errno := unix.Syscall(unix.SYS_IOCTL, t.file.Fd(), req, uintptr(unsafe.Pointer(&pc)))
	runtime.KeepAlive(cmd.Data)
	if errno != 0 {
		return nvme.Completion{}, errors.Wrapf(errno, "%s ioctl on %s", cmd.OpcodeName(), t.dev.Path)
	}

	return nvme.Completion{
		DW0:    pc.result,
		Status: nvme.DecodeStatus(uint16(r1)),
	}, nil
}

// ReadRegisters implements nvme.RegisterReader by mapping the
// controller BAR through sysfs. Registers are read with 32-bit loads.
func (t *Transport) ReadRegisters() ([]byte, error) {
	path := t.dev.RegistersPath(t.sysfsRoot)
	f, err := os.OpenFile(path, os.O_RDONLY|unix.O_SYNC, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	mem, err := unix.Mmap(int(f.Fd()), 0, registerMapSize, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, errors.Wrapf(err, "map %s", path)
	}
	defer func() {
		if err := unix.Munmap(mem); err != nil {
			t.log.Errorf("passthru: unmap %s: %s", path, err)
		}
	}()

	bar := make([]byte, nvme.ControllerRegistersSize)
	for off := 0; off < len(bar); off += 4 {
		val := *(*uint32)(unsafe.Pointer(&mem[off]))
		*(*uint32)(unsafe.Pointer(&bar[off])) = val
	}

	return bar, nil
}
