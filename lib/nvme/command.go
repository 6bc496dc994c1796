//
// (C) Copyright 2025 Intel Corporation.
//
// SPDX-License-Identifier: BSD-2-Clause-Patent
//

package nvme

import (
	"fmt"
	"time"
)

// BroadcastNSID addresses every namespace attached to the controller.
const BroadcastNSID uint32 = 0xFFFFFFFF

// NoTimeout leaves the command unbounded on the host side.
const NoTimeout time.Duration = 0

// CommandType identifies the submission queue class of a command.
type CommandType uint8

const (
	// AdminCommand is submitted to the admin queue.
	AdminCommand CommandType = iota
	// NvmCommand is submitted to an I/O queue.
	NvmCommand
)

func (ct CommandType) String() string {
	switch ct {
	case AdminCommand:
		return "admin"
	case NvmCommand:
		return "nvm"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(ct))
	}
}

// Direction describes the data phase of a command.
type Direction uint8

const (
	// XferNone indicates no data phase.
	XferNone Direction = iota
	// XferToDevice moves the data buffer from host to controller.
	XferToDevice
	// XferFromDevice fills the data buffer from the controller.
	XferFromDevice
)

func (d Direction) String() string {
	switch d {
	case XferNone:
		return "none"
	case XferToDevice:
		return "host-to-device"
	case XferFromDevice:
		return "device-to-host"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(d))
	}
}

// AdminOpcode is the opcode of an admin command.
type AdminOpcode uint8

// Admin command opcodes.
const (
	AdminGetLogPage       AdminOpcode = 0x02
	AdminIdentify         AdminOpcode = 0x06
	AdminAbort            AdminOpcode = 0x08
	AdminSetFeatures      AdminOpcode = 0x09
	AdminGetFeatures      AdminOpcode = 0x0A
	AdminFirmwareCommit   AdminOpcode = 0x10
	AdminFirmwareDownload AdminOpcode = 0x11
	AdminDeviceSelfTest   AdminOpcode = 0x14
	AdminFormatNVM        AdminOpcode = 0x80
	AdminSecuritySend     AdminOpcode = 0x81
	AdminSecurityReceive  AdminOpcode = 0x82
	AdminSanitize         AdminOpcode = 0x84
)

var adminOpcodeNames = map[AdminOpcode]string{
	AdminGetLogPage:       "get-log-page",
	AdminIdentify:         "identify",
	AdminAbort:            "abort",
	AdminSetFeatures:      "set-features",
	AdminGetFeatures:      "get-features",
	AdminFirmwareCommit:   "firmware-commit",
	AdminFirmwareDownload: "firmware-download",
	AdminDeviceSelfTest:   "device-self-test",
	AdminFormatNVM:        "format-nvm",
	AdminSecuritySend:     "security-send",
	AdminSecurityReceive:  "security-receive",
	AdminSanitize:         "sanitize",
}

func (op AdminOpcode) String() string {
	if name, found := adminOpcodeNames[op]; found {
		return name
	}
	return fmt.Sprintf("admin-0x%02x", uint8(op))
}

// NvmOpcode is the opcode of an NVM command set I/O command.
type NvmOpcode uint8

// NVM command set opcodes.
const (
	NvmFlush              NvmOpcode = 0x00
	NvmWrite              NvmOpcode = 0x01
	NvmRead               NvmOpcode = 0x02
	NvmWriteUncorrectable NvmOpcode = 0x04
	NvmDatasetManagement  NvmOpcode = 0x09
)

var nvmOpcodeNames = map[NvmOpcode]string{
	NvmFlush:              "flush",
	NvmWrite:              "write",
	NvmRead:               "read",
	NvmWriteUncorrectable: "write-uncorrectable",
	NvmDatasetManagement:  "dataset-management",
}

func (op NvmOpcode) String() string {
	if name, found := nvmOpcodeNames[op]; found {
		return name
	}
	return fmt.Sprintf("nvm-0x%02x", uint8(op))
}

// Completion holds the completion queue entry fields returned for a
// command.
type Completion struct {
	DW0    uint32
	Status Status
}

// Command is the in-memory form of a single NVMe submission queue entry
// together with its completion. A Command may be dispatched once.
type Command struct {
	Type      CommandType
	Opcode    uint8
	NSID      uint32
	CDW10     uint32
	CDW11     uint32
	CDW12     uint32
	CDW13     uint32
	CDW14     uint32
	CDW15     uint32
	Direction Direction
	// Data is borrowed from the caller for the duration of the dispatch.
	Data    []byte
	Timeout time.Duration

	Completion Completion

	dispatched bool
}

func newAdminCommand(op AdminOpcode, nsid uint32) *Command {
	return &Command{
		Type:   AdminCommand,
		Opcode: uint8(op),
		NSID:   nsid,
	}
}

func newNvmCommand(op NvmOpcode, nsid uint32) *Command {
	return &Command{
		Type:   NvmCommand,
		Opcode: uint8(op),
		NSID:   nsid,
	}
}

func (c *Command) withData(dir Direction, data []byte) *Command {
	c.Direction = dir
	c.Data = data
	return c
}

// OpcodeName returns the symbolic name of the command's opcode.
func (c *Command) OpcodeName() string {
	if c.Type == NvmCommand {
		return NvmOpcode(c.Opcode).String()
	}
	return AdminOpcode(c.Opcode).String()
}

// Dwords returns the command specific dwords cdw10 through cdw15.
func (c *Command) Dwords() [6]uint32 {
	return [6]uint32{c.CDW10, c.CDW11, c.CDW12, c.CDW13, c.CDW14, c.CDW15}
}

// Dispatched indicates whether the command has already been submitted.
func (c *Command) Dispatched() bool {
	return c.dispatched
}

func (c *Command) String() string {
	return fmt.Sprintf("%s %s (opcode 0x%02x) nsid %#x %s %d bytes",
		c.Type, c.OpcodeName(), c.Opcode, c.NSID, c.Direction, len(c.Data))
}
