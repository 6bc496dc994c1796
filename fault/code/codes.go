//
// (C) Copyright 2025 Intel Corporation.
//
// SPDX-License-Identifier: BSD-2-Clause-Patent
//

// Package code is a central repository for all fault codes raised by this module.
package code

// Code represents a stable fault code.
//
// NB: New codes should always be added at the bottom of their respective
// blocks so that existing values never change.
type Code int

const (
	// general fault codes
	Unknown Code = iota
)

const (
	// NVMe command layer fault codes
	NvmeUnknown Code = iota + 100
	NvmeBadParameter
	NvmeNotSupported
	NvmeTransportFailure
	NvmeDeviceReportedError
)

const (
	// passthrough transport fault codes
	PassthruUnknown Code = iota + 200
	PassthruBadDevicePath
	PassthruUnsupportedPlatform
)

const (
	// tool config fault codes
	ConfigUnknown Code = iota + 300
	ConfigNoPath
	ConfigBadNamespace
	ConfigBadTimeout
	ConfigNoDevice
)
