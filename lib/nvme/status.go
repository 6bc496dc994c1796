//
// (C) Copyright 2025 Intel Corporation.
//
// SPDX-License-Identifier: BSD-2-Clause-Patent
//

package nvme

import "fmt"

// StatusCodeType identifies the status code table a completion status
// code belongs to.
type StatusCodeType uint8

// Status code types.
const (
	StatusTypeGeneric         StatusCodeType = 0x0
	StatusTypeCommandSpecific StatusCodeType = 0x1
	StatusTypeMediaError      StatusCodeType = 0x2
	StatusTypePathRelated     StatusCodeType = 0x3
	StatusTypeVendorSpecific  StatusCodeType = 0x7
)

func (sct StatusCodeType) String() string {
	switch sct {
	case StatusTypeGeneric:
		return "generic"
	case StatusTypeCommandSpecific:
		return "command-specific"
	case StatusTypeMediaError:
		return "media-error"
	case StatusTypePathRelated:
		return "path-related"
	case StatusTypeVendorSpecific:
		return "vendor-specific"
	default:
		return fmt.Sprintf("reserved(%d)", uint8(sct))
	}
}

const (
	statusCodeMask  = 0xFF
	statusTypeShift = 8
	statusTypeMask  = 0x7
	statusCRDShift  = 11
	statusCRDMask   = 0x3
	statusMoreBit   = 1 << 13
	statusDNRBit    = 1 << 14
)

// Status is the decoded 15-bit status field of a completion queue entry
// (phase tag excluded).
type Status struct {
	Code       uint8
	Type       StatusCodeType
	RetryDelay uint8
	More       bool
	DoNotRetry bool
}

// DecodeStatus splits a raw 15-bit status field into its components.
func DecodeStatus(raw uint16) Status {
	return Status{
		Code:       uint8(raw & statusCodeMask),
		Type:       StatusCodeType((raw >> statusTypeShift) & statusTypeMask),
		RetryDelay: uint8((raw >> statusCRDShift) & statusCRDMask),
		More:       raw&statusMoreBit != 0,
		DoNotRetry: raw&statusDNRBit != 0,
	}
}

// Raw reassembles the 15-bit status field.
func (s Status) Raw() uint16 {
	raw := uint16(s.Code) |
		uint16(s.Type&statusTypeMask)<<statusTypeShift |
		uint16(s.RetryDelay&statusCRDMask)<<statusCRDShift
	if s.More {
		raw |= statusMoreBit
	}
	if s.DoNotRetry {
		raw |= statusDNRBit
	}
	return raw
}

// Success reports whether the status indicates successful completion.
func (s Status) Success() bool {
	return s.Code == 0 && s.Type == StatusTypeGeneric
}

type statusKey struct {
	sct StatusCodeType
	sc  uint8
}

var statusDescriptions = map[statusKey]string{
	{StatusTypeGeneric, 0x00}: "Successful Completion",
	{StatusTypeGeneric, 0x01}: "Invalid Command Opcode",
	{StatusTypeGeneric, 0x02}: "Invalid Field in Command",
	{StatusTypeGeneric, 0x03}: "Command ID Conflict",
	{StatusTypeGeneric, 0x04}: "Data Transfer Error",
	{StatusTypeGeneric, 0x05}: "Commands Aborted due to Power Loss Notification",
	{StatusTypeGeneric, 0x06}: "Internal Error",
	{StatusTypeGeneric, 0x07}: "Command Abort Requested",
	{StatusTypeGeneric, 0x08}: "Command Aborted due to SQ Deletion",
	{StatusTypeGeneric, 0x0B}: "Invalid Namespace or Format",
	{StatusTypeGeneric, 0x0C}: "Command Sequence Error",
	{StatusTypeGeneric, 0x1D}: "Sanitize Failed",
	{StatusTypeGeneric, 0x1E}: "Sanitize In Progress",
	{StatusTypeGeneric, 0x80}: "LBA Out of Range",
	{StatusTypeGeneric, 0x81}: "Capacity Exceeded",
	{StatusTypeGeneric, 0x82}: "Namespace Not Ready",
	{StatusTypeGeneric, 0x83}: "Reservation Conflict",
	{StatusTypeGeneric, 0x84}: "Format In Progress",

	{StatusTypeCommandSpecific, 0x00}: "Completion Queue Invalid",
	{StatusTypeCommandSpecific, 0x01}: "Invalid Queue Identifier",
	{StatusTypeCommandSpecific, 0x02}: "Invalid Queue Size",
	{StatusTypeCommandSpecific, 0x03}: "Abort Command Limit Exceeded",
	{StatusTypeCommandSpecific, 0x05}: "Asynchronous Event Request Limit Exceeded",
	{StatusTypeCommandSpecific, 0x06}: "Invalid Firmware Slot",
	{StatusTypeCommandSpecific, 0x07}: "Invalid Firmware Image",
	{StatusTypeCommandSpecific, 0x08}: "Invalid Interrupt Vector",
	{StatusTypeCommandSpecific, 0x09}: "Invalid Log Page",
	{StatusTypeCommandSpecific, 0x0A}: "Invalid Format",
	{StatusTypeCommandSpecific, 0x0B}: "Firmware Activation Requires Conventional Reset",
	{StatusTypeCommandSpecific, 0x0D}: "Feature Identifier Not Saveable",
	{StatusTypeCommandSpecific, 0x0E}: "Feature Not Changeable",
	{StatusTypeCommandSpecific, 0x0F}: "Feature Not Namespace Specific",
	{StatusTypeCommandSpecific, 0x10}: "Firmware Activation Requires NVM Subsystem Reset",
	{StatusTypeCommandSpecific, 0x11}: "Firmware Activation Requires Controller Level Reset",
	{StatusTypeCommandSpecific, 0x12}: "Firmware Activation Requires Maximum Time Violation",
	{StatusTypeCommandSpecific, 0x13}: "Firmware Activation Prohibited",
	{StatusTypeCommandSpecific, 0x14}: "Overlapping Range",
	{StatusTypeCommandSpecific, 0x80}: "Conflicting Attributes",
	{StatusTypeCommandSpecific, 0x81}: "Invalid Protection Information",
	{StatusTypeCommandSpecific, 0x82}: "Attempted Write to Read Only Range",

	{StatusTypeMediaError, 0x80}: "Write Fault",
	{StatusTypeMediaError, 0x81}: "Unrecovered Read Error",
	{StatusTypeMediaError, 0x82}: "End-to-end Guard Check Error",
	{StatusTypeMediaError, 0x83}: "End-to-end Application Tag Check Error",
	{StatusTypeMediaError, 0x84}: "End-to-end Reference Tag Check Error",
	{StatusTypeMediaError, 0x85}: "Compare Failure",
	{StatusTypeMediaError, 0x86}: "Access Denied",
	{StatusTypeMediaError, 0x87}: "Deallocated or Unwritten Logical Block",
}

// Description returns a human readable description of the status code.
func (s Status) Description() string {
	if desc, found := statusDescriptions[statusKey{s.Type, s.Code}]; found {
		return desc
	}
	return "Unknown Status"
}

func (s Status) String() string {
	str := fmt.Sprintf("%s (sct %#x sc 0x%02x)", s.Description(), uint8(s.Type), s.Code)
	if s.DoNotRetry {
		str += " dnr"
	}
	if s.More {
		str += " more"
	}
	return str
}
