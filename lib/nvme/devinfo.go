//
// (C) Copyright 2025 Intel Corporation.
//
// SPDX-License-Identifier: BSD-2-Clause-Patent
//

package nvme

import "github.com/pkg/errors"

// DeviceInfo is the identify data cached on a Device.
type DeviceInfo struct {
	NSID       uint32
	Controller *ControllerData
	Namespace  *NamespaceData
}

// Info returns the cached device info, or nil if FillDeviceInfo has not
// been called since the last format.
func (d *Device) Info() *DeviceInfo {
	return d.info
}

// FillDeviceInfo identifies the controller and the device namespace and
// caches the results on the device.
func (d *Device) FillDeviceInfo() (*DeviceInfo, error) {
	ctrlr, err := d.IdentifyController()
	if err != nil {
		return nil, errors.Wrap(err, "identify controller")
	}

	ns, err := d.IdentifyNamespace(d.nsid)
	if err != nil {
		return nil, errors.Wrapf(err, "identify namespace %d", d.nsid)
	}

	d.info = &DeviceInfo{
		NSID:       d.nsid,
		Controller: ctrlr,
		Namespace:  ns,
	}
	d.log.Debugf("nvme: %s (sn %s fw %s) nsid %d", ctrlr.ModelNumber,
		ctrlr.SerialNumber, ctrlr.FirmwareRevision, d.nsid)

	return d.info, nil
}
