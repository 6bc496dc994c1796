//
// (C) Copyright 2025 Intel Corporation.
//
// SPDX-License-Identifier: BSD-2-Clause-Patent
//

package nvme

import "encoding/binary"

const (
	maxBlocksPerIO = 1 << 16
	maxDSMRanges   = 256
	dsmRangeSize   = 16
	maxPRInfo      = 0xF
	maxDirective   = 0xF
)

// IORequest describes a Read or Write command.
type IORequest struct {
	// NSID defaults to the device namespace.
	NSID uint32
	SLBA uint64
	// Count is the number of logical blocks, 1 to 65536.
	Count        uint32
	LimitedRetry bool
	FUA          bool
	PRInfo       uint8
	// DirectiveType and DirectiveSpecific are only valid for Write.
	DirectiveType     uint8
	DirectiveSpecific uint16
	// Data must hold exactly Count logical blocks.
	Data []byte
}

// blockSize comes from the identify data cached by FillDeviceInfo so a
// malformed request is rejected without touching the device.
func (d *Device) blockSize(op NvmOpcode, nsid uint32) (uint32, error) {
	if d.info == nil || d.info.Namespace == nil || d.info.NSID != nsid {
		return 0, badParam("%s: no identify data cached for namespace %d", op, nsid)
	}

	return d.info.Namespace.BlockSize()
}

func (d *Device) ioCommand(op NvmOpcode, req IORequest) (*Command, error) {
	switch {
	case req.Count == 0 || req.Count > maxBlocksPerIO:
		return nil, badParam("%s: block count %d out of range 1-%d", op, req.Count, maxBlocksPerIO)
	case req.PRInfo > maxPRInfo:
		return nil, badParam("%s: protection information field %#x out of range", op, req.PRInfo)
	case req.DirectiveType > maxDirective:
		return nil, badParam("%s: directive type %#x out of range", op, req.DirectiveType)
	case op == NvmRead && (req.DirectiveType != 0 || req.DirectiveSpecific != 0):
		return nil, badParam("%s: directives are not valid for reads", op)
	}

	nsid := d.nsidOr(req.NSID)
	bs, err := d.blockSize(op, nsid)
	if err != nil {
		return nil, err
	}
	if expected := uint64(req.Count) * uint64(bs); uint64(len(req.Data)) != expected {
		return nil, badParam("%s: data length %d does not match %d blocks of %d bytes",
			op, len(req.Data), req.Count, bs)
	}

	dir := XferFromDevice
	if op == NvmWrite {
		dir = XferToDevice
	}
	cmd := d.nvmCommand(op, nsid).withData(dir, req.Data)
	cmd.CDW10 = uint32(req.SLBA)
	cmd.CDW11 = uint32(req.SLBA >> 32)
	cmd.CDW12 = (req.Count-1)&0xFFFF |
		uint32(req.DirectiveType)<<20 |
		uint32(req.PRInfo)<<26
	if req.FUA {
		cmd.CDW12 |= 1 << 30
	}
	if req.LimitedRetry {
		cmd.CDW12 |= 1 << 31
	}
	cmd.CDW13 = uint32(req.DirectiveSpecific) << 16

	return cmd, nil
}

// Read reads req.Count logical blocks into req.Data. FillDeviceInfo must
// have been called for the target namespace.
func (d *Device) Read(req IORequest) error {
	cmd, err := d.ioCommand(NvmRead, req)
	if err != nil {
		return err
	}

	return d.Dispatch(cmd)
}

// Write writes req.Count logical blocks from req.Data.
func (d *Device) Write(req IORequest) error {
	cmd, err := d.ioCommand(NvmWrite, req)
	if err != nil {
		return err
	}

	return d.Dispatch(cmd)
}

// Flush commits volatile write cache contents of the device namespace
// to non-volatile media.
func (d *Device) Flush() error {
	return d.Dispatch(d.nvmCommand(NvmFlush, d.nsid))
}

// WriteUncorrectable marks count logical blocks starting at slba as
// invalid; subsequent reads of them fail.
func (d *Device) WriteUncorrectable(slba uint64, count uint32) error {
	if count == 0 || count > maxBlocksPerIO {
		return badParam("%s: block count %d out of range 1-%d", NvmWriteUncorrectable, count, maxBlocksPerIO)
	}

	cmd := d.nvmCommand(NvmWriteUncorrectable, d.nsid)
	cmd.CDW10 = uint32(slba)
	cmd.CDW11 = uint32(slba >> 32)
	cmd.CDW12 = count - 1

	return d.Dispatch(cmd)
}

// DSMRange is one Dataset Management range.
type DSMRange struct {
	Attributes uint32
	// Length is the number of logical blocks.
	Length uint32
	SLBA   uint64
}

// DSMRequest describes a Dataset Management command.
type DSMRequest struct {
	Ranges        []DSMRange
	IntegralRead  bool
	IntegralWrite bool
	Deallocate    bool
}

func encodeDSMRanges(ranges []DSMRange) []byte {
	buf := make([]byte, len(ranges)*dsmRangeSize)
	for i, r := range ranges {
		off := i * dsmRangeSize
		binary.LittleEndian.PutUint32(buf[off:], r.Attributes)
		binary.LittleEndian.PutUint32(buf[off+4:], r.Length)
		binary.LittleEndian.PutUint64(buf[off+8:], r.SLBA)
	}
	return buf
}

// DatasetManagement sends attributes (e.g. deallocate) for up to 256
// ranges of the device namespace.
func (d *Device) DatasetManagement(req DSMRequest) error {
	if len(req.Ranges) == 0 || len(req.Ranges) > maxDSMRanges {
		return badParam("%s: range count %d out of range 1-%d", NvmDatasetManagement, len(req.Ranges), maxDSMRanges)
	}

	cmd := d.nvmCommand(NvmDatasetManagement, d.nsid).
		withData(XferToDevice, encodeDSMRanges(req.Ranges))
	cmd.CDW10 = uint32(len(req.Ranges) - 1)
	if req.IntegralRead {
		cmd.CDW11 |= 1 << 0
	}
	if req.IntegralWrite {
		cmd.CDW11 |= 1 << 1
	}
	if req.Deallocate {
		cmd.CDW11 |= 1 << 2
	}

	return d.Dispatch(cmd)
}
