//
// (C) Copyright 2025 Intel Corporation.
//
// SPDX-License-Identifier: BSD-2-Clause-Patent
//

package nvme

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// IdentifyDataSize is the size of every Identify data structure.
const IdentifyDataSize = 4096

// maxNamespaceListEntries is the number of IDs in a namespace list.
const maxNamespaceListEntries = IdentifyDataSize / 4

// CNS selects the data structure returned by Identify.
type CNS uint8

// Controller or Namespace Structure values.
const (
	CNSNamespace     CNS = 0x00
	CNSController    CNS = 0x01
	CNSNamespaceList CNS = 0x02
)

func (cns CNS) String() string {
	switch cns {
	case CNSNamespace:
		return "namespace"
	case CNSController:
		return "controller"
	case CNSNamespaceList:
		return "active namespace list"
	default:
		return fmt.Sprintf("cns %#x", uint8(cns))
	}
}

// Identify fetches the raw 4096-byte data structure selected by cns.
// The namespace ID is ignored for controller data.
func (d *Device) Identify(nsid uint32, cns CNS) ([]byte, error) {
	switch cns {
	case CNSNamespace:
		if nsid == 0 {
			return nil, FaultBadParameter("identify namespace: namespace ID 0 is invalid")
		}
	case CNSController:
		nsid = 0
	case CNSNamespaceList:
		if nsid >= BroadcastNSID-1 {
			return nil, badParam("identify namespace list: invalid starting namespace ID %#x", nsid)
		}
	default:
		return nil, badParam("identify: unsupported CNS value %d", cns)
	}

	buf := make([]byte, IdentifyDataSize)
	cmd := d.adminCommand(AdminIdentify, nsid).withData(XferFromDevice, buf)
	cmd.CDW10 = uint32(cns)

	if err := d.Dispatch(cmd); err != nil {
		return nil, err
	}

	return buf, nil
}

// IdentifyController fetches and decodes the Identify Controller data
// structure.
func (d *Device) IdentifyController() (*ControllerData, error) {
	buf, err := d.Identify(0, CNSController)
	if err != nil {
		return nil, err
	}

	return ParseControllerData(buf)
}

// IdentifyNamespace fetches and decodes the Identify Namespace data
// structure for nsid, or the device namespace if nsid is 0.
func (d *Device) IdentifyNamespace(nsid uint32) (*NamespaceData, error) {
	buf, err := d.Identify(d.nsidOr(nsid), CNSNamespace)
	if err != nil {
		return nil, err
	}

	return ParseNamespaceData(buf)
}

// IdentifyNamespaceList returns the active namespace IDs greater than
// start, in ascending order.
func (d *Device) IdentifyNamespaceList(start uint32) ([]uint32, error) {
	buf, err := d.Identify(start, CNSNamespaceList)
	if err != nil {
		return nil, err
	}

	return ParseNamespaceList(buf), nil
}

// ParseNamespaceList decodes a namespace list, stopping at the first
// unused entry.
func ParseNamespaceList(buf []byte) []uint32 {
	var ids []uint32
	for i := 0; i < maxNamespaceListEntries && (i+1)*4 <= len(buf); i++ {
		id := binary.LittleEndian.Uint32(buf[i*4:])
		if id == 0 {
			break
		}
		ids = append(ids, id)
	}
	return ids
}

func asciiField(buf []byte) string {
	return strings.TrimRight(string(buf), " \x00")
}

// ControllerData holds the commonly used fields of the Identify
// Controller data structure.
type ControllerData struct {
	VendorID          uint16
	SubsystemVendorID uint16
	SerialNumber      string
	ModelNumber       string
	FirmwareRevision  string
	RAB               uint8
	IEEE              [3]byte
	CMIC              uint8
	MDTS              uint8
	ControllerID      uint16
	Version           Version
	OACS              uint16
	ACL               uint8
	AERL              uint8
	FRMW              uint8
	LPA               uint8
	ELPE              uint8
	NPSS              uint8
	WCTEMP            uint16
	CCTEMP            uint16
	MTFA              uint16
	TNVMCAP           uint64
	UNVMCAP           uint64
	EDSTT             uint16
	DSTO              uint8
	FWUG              uint8
	SANICAP           uint32
	SQES              uint8
	CQES              uint8
	MAXCMD            uint16
	NN                uint32
	ONCS              uint16
	FNA               uint8
	VWC               uint8
	SGLS              uint32
	SubsystemNQN      string
}

// ParseControllerData decodes an Identify Controller data structure.
func ParseControllerData(buf []byte) (*ControllerData, error) {
	if len(buf) < IdentifyDataSize {
		return nil, errors.Errorf("identify controller data too short (%d bytes)", len(buf))
	}

	le := binary.LittleEndian
	cd := &ControllerData{
		VendorID:          le.Uint16(buf[0:]),
		SubsystemVendorID: le.Uint16(buf[2:]),
		SerialNumber:      asciiField(buf[4:24]),
		ModelNumber:       asciiField(buf[24:64]),
		FirmwareRevision:  asciiField(buf[64:72]),
		RAB:               buf[72],
		CMIC:              buf[76],
		MDTS:              buf[77],
		ControllerID:      le.Uint16(buf[78:]),
		Version:           Version(le.Uint32(buf[80:])),
		OACS:              le.Uint16(buf[256:]),
		ACL:               buf[258],
		AERL:              buf[259],
		FRMW:              buf[260],
		LPA:               buf[261],
		ELPE:              buf[262],
		NPSS:              buf[263],
		WCTEMP:            le.Uint16(buf[266:]),
		CCTEMP:            le.Uint16(buf[268:]),
		MTFA:              le.Uint16(buf[270:]),
		TNVMCAP:           le.Uint64(buf[280:]),
		UNVMCAP:           le.Uint64(buf[296:]),
		EDSTT:             le.Uint16(buf[316:]),
		DSTO:              buf[318],
		FWUG:              buf[319],
		SANICAP:           le.Uint32(buf[328:]),
		SQES:              buf[512],
		CQES:              buf[513],
		MAXCMD:            le.Uint16(buf[514:]),
		NN:                le.Uint32(buf[516:]),
		ONCS:              le.Uint16(buf[520:]),
		FNA:               buf[524],
		VWC:               buf[525],
		SGLS:              le.Uint32(buf[536:]),
		SubsystemNQN:      asciiField(buf[768:1024]),
	}
	copy(cd.IEEE[:], buf[73:76])

	return cd, nil
}

// Optional admin command support bits (OACS).
const (
	oacsSecurity = 1 << 0
	oacsFormat   = 1 << 1
	oacsFirmware = 1 << 2
	oacsNSMgmt   = 1 << 3
	oacsSelfTest = 1 << 4
)

// Optional NVM command support bits (ONCS).
const (
	oncsWriteUncorrectable = 1 << 1
	oncsDatasetManagement  = 1 << 2
	oncsSaveSelect         = 1 << 4
)

// SupportsSecurity indicates Security Send/Receive support.
func (cd *ControllerData) SupportsSecurity() bool { return cd.OACS&oacsSecurity != 0 }

// SupportsFormat indicates Format NVM support.
func (cd *ControllerData) SupportsFormat() bool { return cd.OACS&oacsFormat != 0 }

// SupportsFirmware indicates Firmware Download/Commit support.
func (cd *ControllerData) SupportsFirmware() bool { return cd.OACS&oacsFirmware != 0 }

// SupportsNamespaceManagement indicates Namespace Management support.
func (cd *ControllerData) SupportsNamespaceManagement() bool { return cd.OACS&oacsNSMgmt != 0 }

// SupportsSelfTest indicates Device Self-test support.
func (cd *ControllerData) SupportsSelfTest() bool { return cd.OACS&oacsSelfTest != 0 }

// SupportsWriteUncorrectable indicates Write Uncorrectable support.
func (cd *ControllerData) SupportsWriteUncorrectable() bool {
	return cd.ONCS&oncsWriteUncorrectable != 0
}

// SupportsDatasetManagement indicates Dataset Management support.
func (cd *ControllerData) SupportsDatasetManagement() bool {
	return cd.ONCS&oncsDatasetManagement != 0
}

// SupportsSavedFeatures indicates support for the Save field in Set
// Features and the Select field in Get Features.
func (cd *ControllerData) SupportsSavedFeatures() bool {
	return cd.ONCS&oncsSaveSelect != 0
}

// SupportsSanitize indicates whether the controller supports the
// sanitize action.
func (cd *ControllerData) SupportsSanitize(action SanitizeAction) bool {
	switch action {
	case SanitizeExitFailureMode:
		return cd.SANICAP&0x7 != 0
	case SanitizeCryptoErase:
		return cd.SANICAP&(1<<0) != 0
	case SanitizeBlockErase:
		return cd.SANICAP&(1<<1) != 0
	case SanitizeOverwrite:
		return cd.SANICAP&(1<<2) != 0
	default:
		return false
	}
}

// FirmwareSlots returns the number of firmware slots supported.
func (cd *ControllerData) FirmwareSlots() int {
	return int(cd.FRMW>>1) & 0x7
}

// FirstFirmwareSlotReadOnly indicates that slot 1 cannot be written.
func (cd *ControllerData) FirstFirmwareSlotReadOnly() bool {
	return cd.FRMW&0x1 != 0
}

// MaxTransferSize returns the maximum data transfer size in bytes for the
// given minimum memory page size, or 0 if there is no limit.
func (cd *ControllerData) MaxTransferSize(pageSize uint32) uint64 {
	if cd.MDTS == 0 {
		return 0
	}
	return uint64(pageSize) << cd.MDTS
}

// FirmwareUpdateGranularity returns the required alignment in bytes of
// firmware image downloads, or 0 if the controller does not report one.
func (cd *ControllerData) FirmwareUpdateGranularity() uint32 {
	switch cd.FWUG {
	case 0x00:
		return 0
	case 0xFF:
		return 4
	default:
		return uint32(cd.FWUG) * 4096
	}
}

// maxLBAFormats is the number of LBA format descriptors in the
// Identify Namespace data structure.
const maxLBAFormats = 16

// LBAFormat describes one supported LBA format.
type LBAFormat struct {
	MetadataSize        uint16
	DataSizeShift       uint8
	RelativePerformance uint8
}

// DataSize returns the LBA data size in bytes, or 0 if the format is
// not supported.
func (f LBAFormat) DataSize() uint32 {
	if f.DataSizeShift < 9 || f.DataSizeShift > 31 {
		return 0
	}
	return 1 << f.DataSizeShift
}

// NamespaceData holds the commonly used fields of the Identify
// Namespace data structure.
type NamespaceData struct {
	Size                 uint64
	Capacity             uint64
	Utilization          uint64
	Features             uint8
	NumLBAFormats        uint8
	FormattedLBASize     uint8
	MetadataCapabilities uint8
	DPC                  uint8
	DPS                  uint8
	NVMCapacity          uint64
	NGUID                uuid.UUID
	EUI64                [8]byte
	LBAFormats           []LBAFormat
}

// ParseNamespaceData decodes an Identify Namespace data structure.
func ParseNamespaceData(buf []byte) (*NamespaceData, error) {
	if len(buf) < IdentifyDataSize {
		return nil, errors.Errorf("identify namespace data too short (%d bytes)", len(buf))
	}

	le := binary.LittleEndian
	nd := &NamespaceData{
		Size:                 le.Uint64(buf[0:]),
		Capacity:             le.Uint64(buf[8:]),
		Utilization:          le.Uint64(buf[16:]),
		Features:             buf[24],
		NumLBAFormats:        buf[25],
		FormattedLBASize:     buf[26],
		MetadataCapabilities: buf[27],
		DPC:                  buf[28],
		DPS:                  buf[29],
		NVMCapacity:          le.Uint64(buf[48:]),
	}

	nguid, err := uuid.FromBytes(buf[104:120])
	if err != nil {
		return nil, errors.Wrap(err, "decode NGUID")
	}
	nd.NGUID = nguid
	copy(nd.EUI64[:], buf[120:128])

	count := int(nd.NumLBAFormats) + 1
	if count > maxLBAFormats {
		count = maxLBAFormats
	}
	for i := 0; i < count; i++ {
		off := 128 + i*4
		nd.LBAFormats = append(nd.LBAFormats, LBAFormat{
			MetadataSize:        le.Uint16(buf[off:]),
			DataSizeShift:       buf[off+2],
			RelativePerformance: buf[off+3] & 0x3,
		})
	}

	return nd, nil
}

// CurrentLBAFormatIndex returns the index of the format the namespace
// is currently formatted with.
func (nd *NamespaceData) CurrentLBAFormatIndex() uint8 {
	return nd.FormattedLBASize & 0xF
}

// CurrentLBAFormat returns the format the namespace is currently
// formatted with.
func (nd *NamespaceData) CurrentLBAFormat() (LBAFormat, error) {
	idx := int(nd.CurrentLBAFormatIndex())
	if idx >= len(nd.LBAFormats) {
		return LBAFormat{}, errors.Errorf("current LBA format %d not in supported list", idx)
	}
	return nd.LBAFormats[idx], nil
}

// ExtendedLBA indicates that metadata is transferred at the end of the
// data LBA.
func (nd *NamespaceData) ExtendedLBA() bool {
	return nd.FormattedLBASize&(1<<4) != 0
}

// BlockSize returns the number of bytes transferred per logical block,
// including metadata for namespaces formatted with extended LBAs.
func (nd *NamespaceData) BlockSize() (uint32, error) {
	lbaf, err := nd.CurrentLBAFormat()
	if err != nil {
		return 0, err
	}
	if lbaf.DataSize() == 0 {
		return 0, errors.Errorf("invalid LBA data size shift %d", lbaf.DataSizeShift)
	}

	size := lbaf.DataSize()
	if nd.ExtendedLBA() {
		size += uint32(lbaf.MetadataSize)
	}
	return size, nil
}

// FindLBAFormat returns the index of the first supported format with
// the given data size.
func (nd *NamespaceData) FindLBAFormat(dataSize uint32) (uint8, bool) {
	for i, lbaf := range nd.LBAFormats {
		if dataSize != 0 && lbaf.DataSize() == dataSize {
			return uint8(i), true
		}
	}
	return 0, false
}
