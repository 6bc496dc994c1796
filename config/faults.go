//
// (C) Copyright 2025 Intel Corporation.
//
// SPDX-License-Identifier: BSD-2-Clause-Patent
//

package config

import (
	"fmt"

	"github.com/daos-stack/go-nvme/fault"
	"github.com/daos-stack/go-nvme/fault/code"
)

var (
	// FaultConfigNoPath indicates Load was called without a path.
	FaultConfigNoPath = configFault(
		code.ConfigNoPath,
		"configuration file path not set",
		"supply the path to a tool configuration file with commandline option '-o'",
	)
	// FaultConfigNoDevice indicates neither the config nor the
	// commandline named a device.
	FaultConfigNoDevice = configFault(
		code.ConfigNoDevice,
		"no NVMe device specified",
		"set 'device' in the configuration file or supply commandline option '--device'",
	)
	// FaultConfigBadNamespace indicates an unusable default namespace.
	FaultConfigBadNamespace = configFault(
		code.ConfigBadNamespace,
		"invalid namespace ID in configuration",
		"specify a namespace ID between 1 and 0xFFFFFFFE ('namespace' parameter)",
	)
)

// FaultConfigBadTimeout indicates a negative command timeout.
func FaultConfigBadTimeout(param string) *fault.Fault {
	return configFault(
		code.ConfigBadTimeout,
		fmt.Sprintf("invalid %s in configuration", param),
		fmt.Sprintf("specify a non-negative duration such as '30s' ('%s' parameter), 0 disables the timeout", param),
	)
}

func configFault(code code.Code, desc, res string) *fault.Fault {
	return &fault.Fault{
		Domain:      "config",
		Code:        code,
		Description: desc,
		Resolution:  fault.Resolution(res),
	}
}
