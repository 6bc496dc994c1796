//
// (C) Copyright 2025 Intel Corporation.
//
// SPDX-License-Identifier: BSD-2-Clause-Patent
//

package nvme

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/daos-stack/go-nvme/fault"
	"github.com/daos-stack/go-nvme/fault/code"
)

// StatusError is returned when a command completed with a non-zero
// status. The status is preserved exactly as reported by the device.
type StatusError struct {
	Type   CommandType
	Opcode string
	Status Status
}

func (se *StatusError) Error() string {
	return fmt.Sprintf("nvme %s %s failed: %s", se.Type, se.Opcode, se.Status)
}

// TransportError is returned when the transport could not deliver a
// command or did not return a completion (e.g. timeout).
type TransportError struct {
	Opcode string
	Err    error
}

func (te *TransportError) Error() string {
	return fmt.Sprintf("nvme %s: transport failure: %s", te.Opcode, te.Err)
}

func (te *TransportError) Unwrap() error {
	return te.Err
}

// IsBadParameter indicates whether the error is a parameter validation
// failure raised before dispatch.
func IsBadParameter(err error) bool {
	return fault.IsFaultCode(err, code.NvmeBadParameter)
}

// IsNotSupported indicates whether the error reports an unsupported
// identifier or capability.
func IsNotSupported(err error) bool {
	return fault.IsFaultCode(err, code.NvmeNotSupported)
}

// IsTransportFailure indicates whether the error was raised by the
// transport rather than the device.
func IsTransportFailure(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// DeviceStatus returns the completion status carried by a device
// reported error.
func DeviceStatus(err error) (Status, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status, true
	}
	return Status{}, false
}
