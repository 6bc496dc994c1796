//
// (C) Copyright 2025 Intel Corporation.
//
// SPDX-License-Identifier: BSD-2-Clause-Patent
//
//go:build !linux
// +build !linux

package passthru

import (
	"github.com/daos-stack/go-nvme/lib/nvme"
	"github.com/daos-stack/go-nvme/logging"
)

// Transport is unavailable on this platform.
type Transport struct{}

// Open always fails on this platform.
func Open(log logging.Logger, path string) (*Transport, error) {
	if _, err := ParseDevicePath(path); err != nil {
		return nil, err
	}
	return nil, FaultUnsupportedPlatform
}

// Close implements io.Closer.
func (t *Transport) Close() error {
	return nil
}

// NamespaceID always returns 0 on this platform.
func (t *Transport) NamespaceID() uint32 {
	return 0
}

// Submit implements nvme.Transport.
func (t *Transport) Submit(cmd *nvme.Command) (nvme.Completion, error) {
	return nvme.Completion{}, FaultUnsupportedPlatform
}

// ReadRegisters implements nvme.RegisterReader.
func (t *Transport) ReadRegisters() ([]byte, error) {
	return nil, FaultUnsupportedPlatform
}
