//
// (C) Copyright 2025 Intel Corporation.
//
// SPDX-License-Identifier: BSD-2-Clause-Patent
//

package nvme

import (
	"fmt"

	"github.com/pkg/errors"
)

// FormatFlags are the caller flags accepted by RunFormat. Flags may be
// combined.
type FormatFlags uint32

// Format flag bits.
const (
	FormatNoSecureErase     FormatFlags = 0
	FormatEraseUserData     FormatFlags = 1
	FormatCryptoErase       FormatFlags = 2
	FormatPIFirstEightBytes FormatFlags = 4
	FormatPITypeI           FormatFlags = 8
	FormatPITypeII          FormatFlags = 16
	FormatPITypeIII         FormatFlags = 32
	FormatMetadataSeparate  FormatFlags = 64

	formatFlagsMask = 0x7F
)

// SecureErase is the Secure Erase Settings field of Format NVM.
type SecureErase uint8

// Secure erase settings.
const (
	SecureEraseNone     SecureErase = 0
	SecureEraseUserData SecureErase = 1
	SecureEraseCrypto   SecureErase = 2
)

func (ses SecureErase) String() string {
	switch ses {
	case SecureEraseNone:
		return "none"
	case SecureEraseUserData:
		return "user-data"
	case SecureEraseCrypto:
		return "crypto"
	default:
		return fmt.Sprintf("ses %d", uint8(ses))
	}
}

// ProtectionInfo is the Protection Information field of Format NVM.
type ProtectionInfo uint8

// Protection information types.
const (
	PINone    ProtectionInfo = 0
	PITypeI   ProtectionInfo = 1
	PITypeII  ProtectionInfo = 2
	PITypeIII ProtectionInfo = 3
)

func (pi ProtectionInfo) String() string {
	if pi == PINone {
		return "none"
	}
	return fmt.Sprintf("type %d", uint8(pi))
}

// FormatRequest holds the fields of a Format NVM command.
type FormatRequest struct {
	NSID        uint32
	LBAFormat   uint8
	SecureErase SecureErase
	PI          ProtectionInfo
	// PIFirstEightBytes transfers protection information in the first
	// eight bytes of metadata rather than the last.
	PIFirstEightBytes bool
	// ExtendedLBA transfers metadata contiguous with the LBA data
	// instead of in a separate buffer.
	ExtendedLBA bool
}

// CDW10 packs the request into Format NVM command dword 10.
func (req FormatRequest) CDW10() (uint32, error) {
	switch {
	case req.LBAFormat >= maxLBAFormats:
		return 0, badParam("format: LBA format index %d out of range", req.LBAFormat)
	case req.SecureErase > SecureEraseCrypto:
		return 0, badParam("format: invalid secure erase setting %d", req.SecureErase)
	case req.PI > PITypeIII:
		return 0, badParam("format: invalid protection information type %d", req.PI)
	}

	cdw10 := uint32(req.LBAFormat) |
		uint32(req.PI)<<5 |
		uint32(req.SecureErase)<<9
	if req.ExtendedLBA {
		cdw10 |= 1 << 4
	}
	if req.PIFirstEightBytes {
		cdw10 |= 1 << 8
	}
	return cdw10, nil
}

// DecodeFormatCDW10 unpacks Format NVM command dword 10.
func DecodeFormatCDW10(cdw10 uint32) FormatRequest {
	return FormatRequest{
		LBAFormat:         uint8(cdw10 & 0xF),
		ExtendedLBA:       cdw10&(1<<4) != 0,
		PI:                ProtectionInfo((cdw10 >> 5) & 0x7),
		PIFirstEightBytes: cdw10&(1<<8) != 0,
		SecureErase:       SecureErase((cdw10 >> 9) & 0x7),
	}
}

// Request converts caller flags into a format request for the given LBA
// format. ExtendedLBA is set unless FormatMetadataSeparate is given;
// callers should clear it when the format carries no metadata.
func (flags FormatFlags) Request(lbaf uint8) (FormatRequest, error) {
	req := FormatRequest{LBAFormat: lbaf}

	if flags&^formatFlagsMask != 0 {
		return req, badParam("format: unknown flag bits %#x", uint32(flags&^formatFlagsMask))
	}

	switch flags & (FormatEraseUserData | FormatCryptoErase) {
	case FormatEraseUserData:
		req.SecureErase = SecureEraseUserData
	case FormatCryptoErase:
		req.SecureErase = SecureEraseCrypto
	case FormatEraseUserData | FormatCryptoErase:
		return req, FaultBadParameter("format: user data erase and crypto erase are mutually exclusive")
	}

	switch flags & (FormatPITypeI | FormatPITypeII | FormatPITypeIII) {
	case 0:
	case FormatPITypeI:
		req.PI = PITypeI
	case FormatPITypeII:
		req.PI = PITypeII
	case FormatPITypeIII:
		req.PI = PITypeIII
	default:
		return req, FaultBadParameter("format: only one protection information type may be selected")
	}

	if flags&FormatPIFirstEightBytes != 0 {
		if req.PI == PINone {
			return req, FaultBadParameter("format: PI location set without a protection information type")
		}
		req.PIFirstEightBytes = true
	}

	req.ExtendedLBA = flags&FormatMetadataSeparate == 0
	return req, nil
}

// Format sends a prepared Format NVM request. The device format timeout
// applies, which is unbounded by default.
func (d *Device) Format(req FormatRequest) error {
	cdw10, err := req.CDW10()
	if err != nil {
		return err
	}

	cmd := d.adminCommand(AdminFormatNVM, d.nsidOr(req.NSID))
	cmd.Timeout = d.timeouts.Format
	cmd.CDW10 = cdw10

	d.log.Debugf("nvme: formatting nsid %d: lbaf %d ses %s pi %s",
		cmd.NSID, req.LBAFormat, req.SecureErase, req.PI)
	if err := d.Dispatch(cmd); err != nil {
		return err
	}

	// identify data no longer describes the namespace
	d.info = nil
	return nil
}

// RunFormat formats the device namespace to the first supported LBA
// format with a data size of newLBASize bytes.
func (d *Device) RunFormat(newLBASize uint32, flags FormatFlags) error {
	ns, err := d.IdentifyNamespace(d.nsid)
	if err != nil {
		return errors.Wrap(err, "identify namespace for format")
	}

	lbaf, found := ns.FindLBAFormat(newLBASize)
	if !found {
		return notSupported("format: no LBA format with %d byte data size", newLBASize)
	}

	req, err := flags.Request(lbaf)
	if err != nil {
		return err
	}
	req.NSID = d.nsid
	if ns.LBAFormats[lbaf].MetadataSize == 0 {
		req.ExtendedLBA = false
	}

	return d.Format(req)
}
