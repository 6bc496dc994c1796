//
// (C) Copyright 2025 Intel Corporation.
//
// SPDX-License-Identifier: BSD-2-Clause-Patent
//

package nvme

import "fmt"

func securityCDW10(secp uint8, spsp uint16, nssf uint8) uint32 {
	return uint32(secp)<<24 | uint32(spsp)<<8 | uint32(nssf)
}

// SecuritySend transfers security protocol data to the controller.
func (d *Device) SecuritySend(secp uint8, spsp uint16, nssf uint8, data []byte) error {
	cmd := d.adminCommand(AdminSecuritySend, 0)
	cmd.CDW10 = securityCDW10(secp, spsp, nssf)
	cmd.CDW11 = uint32(len(data))
	if len(data) > 0 {
		cmd.withData(XferToDevice, data)
	}

	return d.Dispatch(cmd)
}

// SecurityReceive retrieves up to length bytes of security protocol
// data from the controller.
func (d *Device) SecurityReceive(secp uint8, spsp uint16, nssf uint8, length uint32) ([]byte, error) {
	if length == 0 {
		return nil, FaultBadParameter("security receive: allocation length must be non-zero")
	}

	buf := make([]byte, length)
	cmd := d.adminCommand(AdminSecurityReceive, 0).withData(XferFromDevice, buf)
	cmd.CDW10 = securityCDW10(secp, spsp, nssf)
	cmd.CDW11 = length

	if err := d.Dispatch(cmd); err != nil {
		return nil, err
	}

	return buf, nil
}

// Abort requests that the controller abort the command identified by
// cid on submission queue sqid. It returns true if the command was
// aborted.
func (d *Device) Abort(cid, sqid uint16) (bool, error) {
	cmd := d.adminCommand(AdminAbort, 0)
	cmd.CDW10 = uint32(sqid) | uint32(cid)<<16

	if err := d.Dispatch(cmd); err != nil {
		return false, err
	}

	return cmd.Completion.DW0&0x1 == 0, nil
}

// SelfTestCode is the Self-test Code field of Device Self-test.
type SelfTestCode uint8

// Device self-test operations.
const (
	SelfTestShort          SelfTestCode = 0x1
	SelfTestExtended       SelfTestCode = 0x2
	SelfTestVendorSpecific SelfTestCode = 0xE
	SelfTestAbort          SelfTestCode = 0xF
)

func (stc SelfTestCode) String() string {
	switch stc {
	case SelfTestShort:
		return "short"
	case SelfTestExtended:
		return "extended"
	case SelfTestVendorSpecific:
		return "vendor-specific"
	case SelfTestAbort:
		return "abort"
	default:
		return fmt.Sprintf("self-test code %#x", uint8(stc))
	}
}

// DeviceSelfTest starts or aborts a device self-test on nsid. Use
// BroadcastNSID to test every namespace or 0 to test only the
// controller.
func (d *Device) DeviceSelfTest(nsid uint32, stc SelfTestCode) error {
	switch stc {
	case SelfTestShort, SelfTestExtended, SelfTestVendorSpecific, SelfTestAbort:
	default:
		return badParam("device self-test: invalid self-test code %#x", uint8(stc))
	}

	cmd := d.adminCommand(AdminDeviceSelfTest, nsid)
	cmd.CDW10 = uint32(stc)

	return d.Dispatch(cmd)
}
