//
// (C) Copyright 2025 Intel Corporation.
//
// SPDX-License-Identifier: BSD-2-Clause-Patent
//

package nvme

import "fmt"

// CommitAction is the action taken by a Firmware Commit command.
type CommitAction uint8

// Firmware commit actions.
const (
	// FwCommitDownloadOnly replaces the image in the slot without
	// activating it.
	FwCommitDownloadOnly CommitAction = 0
	// FwCommitDownloadActivateOnReset replaces the image in the slot and
	// activates it at the next reset.
	FwCommitDownloadActivateOnReset CommitAction = 1
	// FwCommitActivateOnReset activates the existing image in the slot
	// at the next reset.
	FwCommitActivateOnReset CommitAction = 2
	// FwCommitActivateImmediately activates the image immediately
	// without a reset.
	FwCommitActivateImmediately CommitAction = 3
)

const maxFirmwareSlot = 7

func (ca CommitAction) String() string {
	switch ca {
	case FwCommitDownloadOnly:
		return "download-only"
	case FwCommitDownloadActivateOnReset:
		return "download-activate-on-reset"
	case FwCommitActivateOnReset:
		return "activate-on-reset"
	case FwCommitActivateImmediately:
		return "activate-immediately"
	default:
		return fmt.Sprintf("commit action %d", uint8(ca))
	}
}

// FirmwareImageDownload transfers one piece of a firmware image to the
// controller at the given byte offset. Large images are downloaded by
// the caller with repeated calls at increasing offsets, each sized to
// fit the controller's maximum transfer size.
func (d *Device) FirmwareImageDownload(offset uint32, data []byte) error {
	switch {
	case len(data) == 0:
		return FaultBadParameter("firmware download: empty image piece")
	case len(data)%4 != 0:
		return badParam("firmware download: length %d not dword aligned", len(data))
	case offset%4 != 0:
		return badParam("firmware download: offset %d not dword aligned", offset)
	}

	cmd := d.adminCommand(AdminFirmwareDownload, 0).withData(XferToDevice, data)
	cmd.CDW10 = uint32(len(data))/4 - 1
	cmd.CDW11 = offset / 4

	return d.Dispatch(cmd)
}

// FirmwareCommit commits a downloaded image to a slot and/or activates
// a slot. Slot 0 lets the controller choose the slot where the action
// allows it.
func (d *Device) FirmwareCommit(action CommitAction, slot uint8) error {
	switch {
	case action > FwCommitActivateImmediately:
		return badParam("firmware commit: invalid commit action %d", action)
	case slot > maxFirmwareSlot:
		return badParam("firmware commit: slot %d out of range 0-%d", slot, maxFirmwareSlot)
	case slot == 0 && action == FwCommitActivateOnReset:
		return badParam("firmware commit: %s requires a slot between 1 and %d", action, maxFirmwareSlot)
	}

	cmd := d.adminCommand(AdminFirmwareCommit, 0)
	cmd.CDW10 = uint32(slot) | uint32(action)<<3

	return d.Dispatch(cmd)
}
