//
// (C) Copyright 2025 Intel Corporation.
//
// SPDX-License-Identifier: BSD-2-Clause-Patent
//

package nvme

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/pkg/errors"
)

// Controller register offsets within BAR0.
const (
	RegCAP    = 0x00
	RegVS     = 0x08
	RegINTMS  = 0x0C
	RegINTMC  = 0x10
	RegCC     = 0x14
	RegCSTS   = 0x1C
	RegNSSR   = 0x20
	RegAQA    = 0x24
	RegASQ    = 0x28
	RegACQ    = 0x30
	RegCMBLOC = 0x38
	RegCMBSZ  = 0x3C

	// ControllerRegistersSize is the minimum BAR snapshot length.
	ControllerRegistersSize = 0x40
)

func bits64(v uint64, shift, width uint) uint64 {
	return (v >> shift) & (1<<width - 1)
}

func bits32(v uint32, shift, width uint) uint32 {
	return (v >> shift) & (1<<width - 1)
}

// Capabilities is the CAP register.
type Capabilities uint64

// MQES returns the maximum queue entries supported (zero based).
func (c Capabilities) MQES() uint16 { return uint16(bits64(uint64(c), 0, 16)) }

// CQR indicates that queues must be physically contiguous.
func (c Capabilities) CQR() bool { return bits64(uint64(c), 16, 1) != 0 }

// AMS returns the arbitration mechanisms supported.
func (c Capabilities) AMS() uint8 { return uint8(bits64(uint64(c), 17, 2)) }

// TO returns the raw ready timeout in 500ms units.
func (c Capabilities) TO() uint8 { return uint8(bits64(uint64(c), 24, 8)) }

// Timeout returns the worst case time to wait for CSTS.RDY to change.
func (c Capabilities) Timeout() time.Duration {
	return time.Duration(c.TO()) * 500 * time.Millisecond
}

// DSTRD returns the doorbell stride exponent; the stride is 4 << DSTRD bytes.
func (c Capabilities) DSTRD() uint8 { return uint8(bits64(uint64(c), 32, 4)) }

// NSSRS indicates NVM subsystem reset support.
func (c Capabilities) NSSRS() bool { return bits64(uint64(c), 36, 1) != 0 }

// CSS returns the command sets supported.
func (c Capabilities) CSS() uint8 { return uint8(bits64(uint64(c), 37, 8)) }

// BPS indicates boot partition support.
func (c Capabilities) BPS() bool { return bits64(uint64(c), 45, 1) != 0 }

// MPSMIN returns the minimum memory page size exponent (2 ^ (12 + MPSMIN)).
func (c Capabilities) MPSMIN() uint8 { return uint8(bits64(uint64(c), 48, 4)) }

// MPSMAX returns the maximum memory page size exponent (2 ^ (12 + MPSMAX)).
func (c Capabilities) MPSMAX() uint8 { return uint8(bits64(uint64(c), 52, 4)) }

// MinPageSize returns the minimum memory page size in bytes.
func (c Capabilities) MinPageSize() uint32 { return 1 << (12 + c.MPSMIN()) }

// MaxPageSize returns the maximum memory page size in bytes.
func (c Capabilities) MaxPageSize() uint32 { return 1 << (12 + c.MPSMAX()) }

// Version is the VS register layout, also reported in Identify
// Controller.
type Version uint32

// Major returns the major version.
func (v Version) Major() uint16 { return uint16(bits32(uint32(v), 16, 16)) }

// Minor returns the minor version.
func (v Version) Minor() uint8 { return uint8(bits32(uint32(v), 8, 8)) }

// Tertiary returns the tertiary version.
func (v Version) Tertiary() uint8 { return uint8(bits32(uint32(v), 0, 8)) }

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major(), v.Minor(), v.Tertiary())
}

// ControllerConfig is the CC register.
type ControllerConfig uint32

// EN indicates the controller is enabled.
func (cc ControllerConfig) EN() bool { return bits32(uint32(cc), 0, 1) != 0 }

// CSS returns the I/O command set selected.
func (cc ControllerConfig) CSS() uint8 { return uint8(bits32(uint32(cc), 4, 3)) }

// MPS returns the memory page size exponent (2 ^ (12 + MPS)).
func (cc ControllerConfig) MPS() uint8 { return uint8(bits32(uint32(cc), 7, 4)) }

// AMS returns the arbitration mechanism selected.
func (cc ControllerConfig) AMS() uint8 { return uint8(bits32(uint32(cc), 11, 3)) }

// SHN returns the shutdown notification.
func (cc ControllerConfig) SHN() uint8 { return uint8(bits32(uint32(cc), 14, 2)) }

// IOSQES returns the I/O submission queue entry size exponent.
func (cc ControllerConfig) IOSQES() uint8 { return uint8(bits32(uint32(cc), 16, 4)) }

// IOCQES returns the I/O completion queue entry size exponent.
func (cc ControllerConfig) IOCQES() uint8 { return uint8(bits32(uint32(cc), 20, 4)) }

// ControllerStatus is the CSTS register.
type ControllerStatus uint32

// RDY indicates the controller is ready.
func (cs ControllerStatus) RDY() bool { return bits32(uint32(cs), 0, 1) != 0 }

// CFS indicates controller fatal status.
func (cs ControllerStatus) CFS() bool { return bits32(uint32(cs), 1, 1) != 0 }

// SHST returns the shutdown status.
func (cs ControllerStatus) SHST() uint8 { return uint8(bits32(uint32(cs), 2, 2)) }

// NSSRO indicates an NVM subsystem reset occurred.
func (cs ControllerStatus) NSSRO() bool { return bits32(uint32(cs), 4, 1) != 0 }

// PP indicates processing is paused.
func (cs ControllerStatus) PP() bool { return bits32(uint32(cs), 5, 1) != 0 }

// AdminQueueAttributes is the AQA register.
type AdminQueueAttributes uint32

// ASQS returns the admin submission queue size (zero based).
func (aqa AdminQueueAttributes) ASQS() uint16 { return uint16(bits32(uint32(aqa), 0, 12)) }

// ACQS returns the admin completion queue size (zero based).
func (aqa AdminQueueAttributes) ACQS() uint16 { return uint16(bits32(uint32(aqa), 16, 12)) }

// ControllerRegisters is a decoded snapshot of the controller
// register BAR.
type ControllerRegisters struct {
	CAP    Capabilities
	VS     Version
	INTMS  uint32
	INTMC  uint32
	CC     ControllerConfig
	CSTS   ControllerStatus
	NSSR   uint32
	AQA    AdminQueueAttributes
	ASQ    uint64
	ACQ    uint64
	CMBLOC uint32
	CMBSZ  uint32
}

// ParseControllerRegisters decodes a BAR snapshot. The buffer is not
// modified.
func ParseControllerRegisters(bar []byte) (*ControllerRegisters, error) {
	if len(bar) < ControllerRegistersSize {
		return nil, errors.Errorf("controller register snapshot too short (%d < %d bytes)",
			len(bar), ControllerRegistersSize)
	}

	le := binary.LittleEndian
	return &ControllerRegisters{
		CAP:    Capabilities(le.Uint64(bar[RegCAP:])),
		VS:     Version(le.Uint32(bar[RegVS:])),
		INTMS:  le.Uint32(bar[RegINTMS:]),
		INTMC:  le.Uint32(bar[RegINTMC:]),
		CC:     ControllerConfig(le.Uint32(bar[RegCC:])),
		CSTS:   ControllerStatus(le.Uint32(bar[RegCSTS:])),
		NSSR:   le.Uint32(bar[RegNSSR:]),
		AQA:    AdminQueueAttributes(le.Uint32(bar[RegAQA:])),
		ASQ:    le.Uint64(bar[RegASQ:]),
		ACQ:    le.Uint64(bar[RegACQ:]),
		CMBLOC: le.Uint32(bar[RegCMBLOC:]),
		CMBSZ:  le.Uint32(bar[RegCMBSZ:]),
	}, nil
}

// ReadControllerRegisters reads and decodes the controller register BAR
// through the transport.
func (d *Device) ReadControllerRegisters() (*ControllerRegisters, error) {
	rr, ok := d.transport.(RegisterReader)
	if !ok {
		return nil, FaultRegistersUnavailable
	}

	bar, err := rr.ReadRegisters()
	if err != nil {
		return nil, &TransportError{Opcode: "read-registers", Err: err}
	}

	regs, err := ParseControllerRegisters(bar)
	if err != nil {
		return nil, &TransportError{Opcode: "read-registers", Err: err}
	}
	d.log.Debugf("nvme: read %d byte register snapshot, version %s", len(bar), regs.VS)

	return regs, nil
}
