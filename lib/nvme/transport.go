//
// (C) Copyright 2025 Intel Corporation.
//
// SPDX-License-Identifier: BSD-2-Clause-Patent
//

package nvme

// Transport submits a single command to a device and blocks until the
// completion is available or the command's timeout elapses.
//
// For XferFromDevice commands the transport writes the payload into
// cmd.Data before returning. A non-nil error means no completion was
// received; device reported failures are returned through the
// Completion status instead.
type Transport interface {
	Submit(cmd *Command) (Completion, error)
}

// RegisterReader is implemented by transports which can expose a
// snapshot of the controller's memory-mapped register BAR.
type RegisterReader interface {
	ReadRegisters() ([]byte, error)
}
