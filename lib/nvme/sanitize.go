//
// (C) Copyright 2025 Intel Corporation.
//
// SPDX-License-Identifier: BSD-2-Clause-Patent
//

package nvme

import "fmt"

// SanitizeAction is the Sanitize Action field of the Sanitize command.
type SanitizeAction uint8

// Sanitize actions.
const (
	SanitizeExitFailureMode SanitizeAction = 1
	SanitizeBlockErase      SanitizeAction = 2
	SanitizeOverwrite       SanitizeAction = 3
	SanitizeCryptoErase     SanitizeAction = 4
)

const maxOverwritePasses = 16

func (sa SanitizeAction) String() string {
	switch sa {
	case SanitizeExitFailureMode:
		return "exit-failure-mode"
	case SanitizeBlockErase:
		return "block-erase"
	case SanitizeOverwrite:
		return "overwrite"
	case SanitizeCryptoErase:
		return "crypto-erase"
	default:
		return fmt.Sprintf("sanitize action %d", uint8(sa))
	}
}

// SanitizeRequest holds the fields of a Sanitize command.
type SanitizeRequest struct {
	Action                SanitizeAction
	NoDeallocate          bool
	AllowUnrestrictedExit bool
	// InvertBetweenPasses, OverwritePassCount and OverwritePattern are
	// only used by SanitizeOverwrite.
	InvertBetweenPasses bool
	OverwritePassCount  uint8
	OverwritePattern    uint32
}

// CDW10 packs the request into Sanitize command dword 10.
func (req SanitizeRequest) CDW10() (uint32, error) {
	if req.Action < SanitizeExitFailureMode || req.Action > SanitizeCryptoErase {
		return 0, badParam("sanitize: invalid action %d", req.Action)
	}

	cdw10 := uint32(req.Action)
	if req.AllowUnrestrictedExit {
		cdw10 |= 1 << 3
	}
	if req.NoDeallocate {
		cdw10 |= 1 << 9
	}

	if req.Action == SanitizeOverwrite {
		if req.OverwritePassCount == 0 || req.OverwritePassCount > maxOverwritePasses {
			return 0, badParam("sanitize: overwrite pass count %d out of range 1-%d",
				req.OverwritePassCount, maxOverwritePasses)
		}
		// a value of 0 requests 16 passes
		cdw10 |= uint32(req.OverwritePassCount%maxOverwritePasses) << 4
		if req.InvertBetweenPasses {
			cdw10 |= 1 << 8
		}
	}

	return cdw10, nil
}

// Sanitize starts a sanitize operation on the whole NVM subsystem. The
// command returns once the operation has started; progress is reported
// by the device.
func (d *Device) Sanitize(req SanitizeRequest) error {
	cdw10, err := req.CDW10()
	if err != nil {
		return err
	}

	cmd := d.adminCommand(AdminSanitize, 0)
	cmd.Timeout = d.timeouts.Sanitize
	cmd.CDW10 = cdw10
	if req.Action == SanitizeOverwrite {
		cmd.CDW11 = req.OverwritePattern
	}

	d.log.Debugf("nvme: sanitize %s", req.Action)
	return d.Dispatch(cmd)
}
