//
// (C) Copyright 2025 Intel Corporation.
//
// SPDX-License-Identifier: BSD-2-Clause-Patent
//

package nvme

import (
	"fmt"

	"github.com/daos-stack/go-nvme/fault"
	"github.com/daos-stack/go-nvme/fault/code"
)

// FaultBadParameter indicates a caller supplied value was rejected
// before any command was sent to the device.
func FaultBadParameter(desc string) *fault.Fault {
	return nvmeFault(
		code.NvmeBadParameter,
		desc,
		"correct the request parameters and retry",
	)
}

// FaultNotSupported indicates the request names an identifier or
// capability this layer or the device does not support.
func FaultNotSupported(desc string) *fault.Fault {
	return nvmeFault(
		code.NvmeNotSupported,
		desc,
		"",
	)
}

// FaultRegistersUnavailable indicates the transport cannot expose the
// controller register BAR.
var FaultRegistersUnavailable = nvmeFault(
	code.NvmeNotSupported,
	"transport does not expose controller registers",
	"run against a transport with access to the controller BAR (e.g. as root on Linux)",
)

func badParam(format string, args ...interface{}) error {
	return FaultBadParameter(fmt.Sprintf(format, args...))
}

func notSupported(format string, args ...interface{}) error {
	return FaultNotSupported(fmt.Sprintf(format, args...))
}

func nvmeFault(code code.Code, desc, res string) *fault.Fault {
	return &fault.Fault{
		Domain:      "nvme",
		Code:        code,
		Description: desc,
		Resolution:  fault.Resolution(res),
	}
}
