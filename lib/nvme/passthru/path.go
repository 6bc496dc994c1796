//
// (C) Copyright 2025 Intel Corporation.
//
// SPDX-License-Identifier: BSD-2-Clause-Patent
//

// Package passthru submits NVMe commands to a device through the Linux
// nvme driver passthrough interface.
package passthru

import (
	"path/filepath"
	"regexp"
)

const sysfsClassRoot = "/sys/class/nvme"

var devNameRegexp = regexp.MustCompile(`^(nvme\d+)(n\d+)?$`)

// DevicePath identifies an NVMe device node.
type DevicePath struct {
	Path       string
	Controller string
	// Namespace is set for namespace block devices (/dev/nvmeXnY).
	Namespace bool
}

// ParseDevicePath resolves the controller name of a controller
// character device or namespace block device path.
func ParseDevicePath(path string) (*DevicePath, error) {
	matches := devNameRegexp.FindStringSubmatch(filepath.Base(path))
	if matches == nil {
		return nil, FaultBadDevicePath(path)
	}

	return &DevicePath{
		Path:       path,
		Controller: matches[1],
		Namespace:  matches[2] != "",
	}, nil
}

// RegistersPath returns the sysfs resource file that maps the
// controller register BAR.
func (dp *DevicePath) RegistersPath(sysfsRoot string) string {
	if sysfsRoot == "" {
		sysfsRoot = sysfsClassRoot
	}
	return filepath.Join(sysfsRoot, dp.Controller, "device", "resource0")
}
