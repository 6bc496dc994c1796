//
// (C) Copyright 2025 Intel Corporation.
//
// SPDX-License-Identifier: BSD-2-Clause-Patent
//

package main

import (
	"encoding/hex"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"github.com/daos-stack/go-nvme/lib/nvme"
	"github.com/daos-stack/go-nvme/lib/ui"
)

const (
	// controller minimum memory page size assumed for MDTS
	minPageSize = 4096
	// used when the controller reports no transfer limit
	defaultDownloadChunk = 128 * humanize.KiByte
)

type regsCmd struct {
	devCmd
}

func (cmd *regsCmd) Execute(_ []string) error {
	return cmd.withDevice(func(dev *nvme.Device) error {
		regs, err := dev.ReadControllerRegisters()
		if err != nil {
			return err
		}

		var bld strings.Builder
		if err := nvme.PrintControllerRegisters(&bld, regs); err != nil {
			return err
		}
		cmd.log.Info(bld.String())

		return nil
	})
}

var (
	secureEraseFlags = map[string]nvme.FormatFlags{
		"none":   nvme.FormatNoSecureErase,
		"user":   nvme.FormatEraseUserData,
		"crypto": nvme.FormatCryptoErase,
	}
	protectionInfoFlags = map[string]nvme.FormatFlags{
		"0": 0,
		"1": nvme.FormatPITypeI,
		"2": nvme.FormatPITypeII,
		"3": nvme.FormatPITypeIII,
	}
)

type formatCmd struct {
	devCmd
	confirmCmd
	BlockSize        ui.ByteSizeFlag `short:"b" long:"block-size" default:"4096" description:"Logical block data size of the new format"`
	SecureErase      string          `long:"ses" choice:"none" choice:"user" choice:"crypto" default:"none" description:"Secure erase setting"`
	ProtectionInfo   string          `long:"pi" choice:"0" choice:"1" choice:"2" choice:"3" default:"0" description:"Protection information type"`
	PIFirst          bool            `long:"pil" description:"Transfer protection information as the first eight bytes of metadata"`
	SeparateMetadata bool            `long:"separate-metadata" description:"Transfer metadata in a separate buffer"`
}

func (cmd *formatCmd) flags() nvme.FormatFlags {
	flags := secureEraseFlags[cmd.SecureErase] | protectionInfoFlags[cmd.ProtectionInfo]
	if cmd.PIFirst {
		flags |= nvme.FormatPIFirstEightBytes
	}
	if cmd.SeparateMetadata {
		flags |= nvme.FormatMetadataSeparate
	}
	return flags
}

func (cmd *formatCmd) Execute(_ []string) error {
	if err := cmd.confirm("format"); err != nil {
		return err
	}
	blockSize, err := cmd.BlockSize.Uint32()
	if err != nil {
		return errors.Wrap(err, "block-size")
	}
	if blockSize == 0 {
		return errors.New("block size must be non-zero")
	}

	return cmd.withDevice(func(dev *nvme.Device) error {
		cmd.log.Debugf("formatting namespace %d to %s blocks (flags %#x)",
			dev.Namespace(), cmd.BlockSize, uint32(cmd.flags()))
		if err := dev.RunFormat(blockSize, cmd.flags()); err != nil {
			return err
		}
		cmd.log.Infof("namespace %d formatted with %s blocks", dev.Namespace(), cmd.BlockSize)

		return nil
	})
}

var sanitizeActions = map[string]nvme.SanitizeAction{
	"exit-failure": nvme.SanitizeExitFailureMode,
	"block":        nvme.SanitizeBlockErase,
	"overwrite":    nvme.SanitizeOverwrite,
	"crypto":       nvme.SanitizeCryptoErase,
}

type sanitizeCmd struct {
	devCmd
	confirmCmd
	Action     string        `short:"a" long:"action" choice:"exit-failure" choice:"block" choice:"overwrite" choice:"crypto" required:"1" description:"Sanitize action"`
	Passes     uint8         `long:"passes" default:"1" description:"Overwrite pass count (1-16)"`
	Pattern    ui.NumberFlag `long:"pattern" description:"Overwrite pattern"`
	Invert     bool          `long:"invert" description:"Invert the overwrite pattern between passes"`
	NoDealloc  bool          `long:"no-dealloc" description:"Do not deallocate blocks after sanitize"`
	AllowUnres bool          `long:"ause" description:"Allow unrestricted sanitize exit"`
}

func (cmd *sanitizeCmd) request() (nvme.SanitizeRequest, error) {
	pattern, err := cmd.Pattern.Uint32()
	if err != nil {
		return nvme.SanitizeRequest{}, errors.Wrap(err, "pattern")
	}

	req := nvme.SanitizeRequest{
		Action:                sanitizeActions[cmd.Action],
		NoDeallocate:          cmd.NoDealloc,
		AllowUnrestrictedExit: cmd.AllowUnres,
	}
	if req.Action == nvme.SanitizeOverwrite {
		req.InvertBetweenPasses = cmd.Invert
		req.OverwritePassCount = cmd.Passes
		req.OverwritePattern = pattern
	}

	return req, nil
}

func (cmd *sanitizeCmd) Execute(_ []string) error {
	if err := cmd.confirm("sanitize"); err != nil {
		return err
	}
	req, err := cmd.request()
	if err != nil {
		return err
	}

	return cmd.withDevice(func(dev *nvme.Device) error {
		if err := dev.Sanitize(req); err != nil {
			return err
		}
		cmd.log.Infof("sanitize (%s) started", req.Action)

		return nil
	})
}

// downloadChunkSize returns the largest image piece the controller
// accepts, aligned to its update granularity.
func downloadChunkSize(cd *nvme.ControllerData) uint32 {
	chunk := uint64(defaultDownloadChunk)
	if mts := cd.MaxTransferSize(minPageSize); mts != 0 && mts < chunk {
		chunk = mts
	}

	if fwug := uint64(cd.FirmwareUpdateGranularity()); fwug != 0 {
		if chunk < fwug {
			return uint32(fwug)
		}
		chunk -= chunk % fwug
	}

	return uint32(chunk)
}

func downloadFirmware(dev *nvme.Device, image []byte, chunk uint32) error {
	if len(image) == 0 {
		return errors.New("empty firmware image")
	}
	if chunk == 0 {
		return errors.New("zero download chunk size")
	}
	// pieces are dword aligned; reject before any piece reaches the controller
	if len(image)%4 != 0 {
		return errors.Errorf("firmware image size %d is not dword aligned", len(image))
	}
	if chunk%4 != 0 {
		return errors.Errorf("download chunk size %d is not dword aligned", chunk)
	}

	for offset := 0; offset < len(image); offset += int(chunk) {
		end := offset + int(chunk)
		if end > len(image) {
			end = len(image)
		}
		if err := dev.FirmwareImageDownload(uint32(offset), image[offset:end]); err != nil {
			return errors.Wrapf(err, "download at offset %d", offset)
		}
	}

	return nil
}

type fwDownloadCmd struct {
	devCmd
	File string `long:"file" required:"1" description:"Firmware image file"`
}

func (cmd *fwDownloadCmd) Execute(_ []string) error {
	image, err := os.ReadFile(cmd.File)
	if err != nil {
		return errors.Wrapf(err, "read %s", cmd.File)
	}

	return cmd.withDevice(func(dev *nvme.Device) error {
		cd, err := dev.IdentifyController()
		if err != nil {
			return err
		}
		if !cd.SupportsFirmware() {
			return nvme.FaultNotSupported("controller does not support firmware commands")
		}

		chunk := downloadChunkSize(cd)
		cmd.log.Debugf("downloading %s in %s pieces", humanize.IBytes(uint64(len(image))),
			humanize.IBytes(uint64(chunk)))
		if err := downloadFirmware(dev, image, chunk); err != nil {
			return err
		}
		cmd.log.Infof("firmware image %s downloaded", cmd.File)

		return nil
	})
}

var commitActions = map[string]nvme.CommitAction{
	"download-only":              nvme.FwCommitDownloadOnly,
	"download-activate-on-reset": nvme.FwCommitDownloadActivateOnReset,
	"activate-on-reset":          nvme.FwCommitActivateOnReset,
	"activate-immediately":       nvme.FwCommitActivateImmediately,
}

type fwCommitCmd struct {
	devCmd
	Slot   uint8  `short:"s" long:"slot" description:"Firmware slot (0 lets the controller choose)"`
	Action string `short:"a" long:"action" choice:"download-only" choice:"download-activate-on-reset" choice:"activate-on-reset" choice:"activate-immediately" default:"download-activate-on-reset" description:"Commit action"`
}

func (cmd *fwCommitCmd) Execute(_ []string) error {
	action := commitActions[cmd.Action]

	return cmd.withDevice(func(dev *nvme.Device) error {
		if err := dev.FirmwareCommit(action, cmd.Slot); err != nil {
			return err
		}
		cmd.log.Infof("firmware commit (%s) on slot %d succeeded", action, cmd.Slot)

		return nil
	})
}

var selfTestCodes = map[string]nvme.SelfTestCode{
	"short":    nvme.SelfTestShort,
	"extended": nvme.SelfTestExtended,
	"vendor":   nvme.SelfTestVendorSpecific,
	"abort":    nvme.SelfTestAbort,
}

type selfTestCmd struct {
	devCmd
	Code string `short:"c" long:"code" choice:"short" choice:"extended" choice:"vendor" choice:"abort" default:"short" description:"Self-test operation"`
	All  bool   `long:"all" description:"Test every namespace"`
}

func (cmd *selfTestCmd) Execute(_ []string) error {
	stc := selfTestCodes[cmd.Code]

	return cmd.withDevice(func(dev *nvme.Device) error {
		nsid := dev.Namespace()
		if cmd.All {
			nsid = nvme.BroadcastNSID
		}
		if err := dev.DeviceSelfTest(nsid, stc); err != nil {
			return err
		}
		cmd.log.Infof("device self-test (%s) submitted", stc)

		return nil
	})
}

type abortCmd struct {
	devCmd
	CID  uint16 `long:"cid" required:"1" description:"Command identifier to abort"`
	SQID uint16 `long:"sqid" description:"Submission queue of the command"`
}

func (cmd *abortCmd) Execute(_ []string) error {
	return cmd.withDevice(func(dev *nvme.Device) error {
		aborted, err := dev.Abort(cmd.CID, cmd.SQID)
		if err != nil {
			return err
		}
		if aborted {
			cmd.log.Infof("command %d on queue %d aborted", cmd.CID, cmd.SQID)
		} else {
			cmd.log.Infof("command %d on queue %d not aborted", cmd.CID, cmd.SQID)
		}

		return nil
	})
}

type securityRecvCmd struct {
	devCmd
	Protocol ui.NumberFlag   `long:"secp" required:"1" description:"Security protocol"`
	SPSP     ui.NumberFlag   `long:"spsp" description:"Security protocol specific field"`
	NSSF     ui.NumberFlag   `long:"nssf" description:"NVMe security specific field"`
	Size     ui.ByteSizeFlag `long:"size" default:"4096" description:"Allocation length"`
	Out      string          `long:"out" description:"Write received data to this file instead of a dump"`
}

func (cmd *securityRecvCmd) Execute(_ []string) error {
	secp, err := cmd.Protocol.Uint8()
	if err != nil {
		return errors.Wrap(err, "secp")
	}
	spsp, err := cmd.SPSP.Uint16()
	if err != nil {
		return errors.Wrap(err, "spsp")
	}
	nssf, err := cmd.NSSF.Uint8()
	if err != nil {
		return errors.Wrap(err, "nssf")
	}
	size, err := cmd.Size.Uint32()
	if err != nil {
		return errors.Wrap(err, "size")
	}

	return cmd.withDevice(func(dev *nvme.Device) error {
		data, err := dev.SecurityReceive(secp, spsp, nssf, size)
		if err != nil {
			return err
		}

		if cmd.Out != "" {
			return errors.Wrapf(os.WriteFile(cmd.Out, data, 0600), "write %s", cmd.Out)
		}
		cmd.log.Info(hex.Dump(data))

		return nil
	})
}
