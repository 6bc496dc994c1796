//
// (C) Copyright 2025 Intel Corporation.
//
// SPDX-License-Identifier: BSD-2-Clause-Patent
//

package passthru

import (
	"fmt"

	"github.com/daos-stack/go-nvme/fault"
	"github.com/daos-stack/go-nvme/fault/code"
)

var (
	// FaultUnsupportedPlatform indicates the passthrough transport is not
	// available on this platform.
	FaultUnsupportedPlatform = passthruFault(
		code.PassthruUnsupportedPlatform,
		"NVMe passthrough is only supported on Linux",
		"run the tool on a Linux host with the nvme driver loaded",
	)
)

// FaultBadDevicePath indicates the supplied path does not name an NVMe
// controller or namespace device node.
func FaultBadDevicePath(path string) *fault.Fault {
	return passthruFault(
		code.PassthruBadDevicePath,
		fmt.Sprintf("%q is not an NVMe controller or namespace device", path),
		"supply a device path of the form /dev/nvmeX or /dev/nvmeXnY",
	)
}

func passthruFault(code code.Code, desc, res string) *fault.Fault {
	return &fault.Fault{
		Domain:      "passthru",
		Code:        code,
		Description: desc,
		Resolution:  fault.Resolution(res),
	}
}
