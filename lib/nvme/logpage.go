//
// (C) Copyright 2025 Intel Corporation.
//
// SPDX-License-Identifier: BSD-2-Clause-Patent
//

package nvme

import (
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"
)

// LogPageID identifies a log page.
type LogPageID uint8

// Supported log pages.
const (
	LogPageErrorInfo    LogPageID = 0x01
	LogPageSMART        LogPageID = 0x02
	LogPageFirmwareSlot LogPageID = 0x03
)

const (
	// ErrorLogEntrySize is the size of one Error Information log entry.
	ErrorLogEntrySize = 64
	// SMARTLogSize is the size of the SMART / Health Information log.
	SMARTLogSize = 512
	// FirmwareSlotLogSize is the size of the Firmware Slot Information log.
	FirmwareSlotLogSize = 512

	maxLogSpecificField = 0xF
)

type logPageDescriptor struct {
	name string
	// size is the fixed page size, or the entry size if perEntry is set.
	size     uint32
	perEntry bool
}

var logPages = map[LogPageID]logPageDescriptor{
	LogPageErrorInfo:    {name: "Error Information", size: ErrorLogEntrySize, perEntry: true},
	LogPageSMART:        {name: "SMART / Health Information", size: SMARTLogSize},
	LogPageFirmwareSlot: {name: "Firmware Slot Information", size: FirmwareSlotLogSize},
}

func (id LogPageID) String() string {
	if desc, found := logPages[id]; found {
		return desc.name
	}
	return fmt.Sprintf("log page 0x%02x", uint8(id))
}

func lookupLogPage(id LogPageID) (logPageDescriptor, error) {
	desc, found := logPages[id]
	if !found {
		return logPageDescriptor{}, notSupported("log page 0x%02x is not supported", uint8(id))
	}
	return desc, nil
}

// GetLogSize returns the documented size of the log page. For logs made
// up of a caller chosen number of entries the size of one entry is
// returned.
func GetLogSize(id LogPageID) (uint64, error) {
	desc, err := lookupLogPage(id)
	if err != nil {
		return 0, err
	}
	return uint64(desc.size), nil
}

// LogPageRequest describes a Get Log Page command.
type LogPageRequest struct {
	ID LogPageID
	// NSID is passed through unchanged; BroadcastNSID requests the
	// controller-wide page.
	NSID    uint32
	DataLen uint32
	// Offset is the byte offset into the log page.
	Offset      uint64
	LSP         uint8
	RetainAsync bool
}

func (req LogPageRequest) validate(desc logPageDescriptor) error {
	switch {
	case req.DataLen < desc.size:
		return badParam("%s log: data length %d less than minimum %d", desc.name, req.DataLen, desc.size)
	case desc.perEntry && req.DataLen%desc.size != 0:
		return badParam("%s log: data length %d not a multiple of %d", desc.name, req.DataLen, desc.size)
	case req.DataLen%4 != 0:
		return badParam("%s log: data length %d not dword aligned", desc.name, req.DataLen)
	case req.Offset%4 != 0:
		return badParam("%s log: offset %d not dword aligned", desc.name, req.Offset)
	case req.LSP > maxLogSpecificField:
		return badParam("%s log: log specific field %#x out of range", desc.name, req.LSP)
	}
	return nil
}

// GetLogPage fetches a log page and returns the raw buffer of
// req.DataLen bytes.
func (d *Device) GetLogPage(req LogPageRequest) ([]byte, error) {
	desc, err := lookupLogPage(req.ID)
	if err != nil {
		return nil, err
	}
	if err := req.validate(desc); err != nil {
		return nil, err
	}

	numd := req.DataLen/4 - 1
	buf := make([]byte, req.DataLen)
	cmd := d.adminCommand(AdminGetLogPage, req.NSID).withData(XferFromDevice, buf)
	cmd.CDW10 = uint32(req.ID) | uint32(req.LSP)<<8 | (numd&0xFFFF)<<16
	if req.RetainAsync {
		cmd.CDW10 |= 1 << 15
	}
	cmd.CDW11 = numd >> 16
	cmd.CDW12 = uint32(req.Offset)
	cmd.CDW13 = uint32(req.Offset >> 32)

	if err := d.Dispatch(cmd); err != nil {
		return nil, err
	}

	return buf, nil
}

// SmartLog is the decoded SMART / Health Information log page.
// The 128-bit counters are reported through their low 64 bits.
type SmartLog struct {
	CriticalWarning               uint8
	Temperature                   uint16
	AvailableSpare                uint8
	AvailableSpareThreshold       uint8
	PercentageUsed                uint8
	EnduranceGroupCriticalWarning uint8
	DataUnitsRead                 uint64
	DataUnitsWritten              uint64
	HostReadCommands              uint64
	HostWriteCommands             uint64
	ControllerBusyTime            uint64
	PowerCycles                   uint64
	PowerOnHours                  uint64
	UnsafeShutdowns               uint64
	MediaErrors                   uint64
	ErrorLogEntries               uint64
	WarningTempTime               uint32
	CriticalTempTime              uint32
	TempSensors                   [8]uint16
	ThermalMgmtT1TransCount       uint32
	ThermalMgmtT2TransCount       uint32
	ThermalMgmtT1TotalTime        uint32
	ThermalMgmtT2TotalTime        uint32
}

// Critical warning bits.
const (
	CriticalWarningSpare       = 1 << 0
	CriticalWarningTemperature = 1 << 1
	CriticalWarningReliability = 1 << 2
	CriticalWarningReadOnly    = 1 << 3
	CriticalWarningVolatileMem = 1 << 4
	CriticalWarningPMR         = 1 << 5
)

const kelvinOffset = 273

// dataUnitBytes is the size of one SMART data unit (1000 * 512 bytes).
const dataUnitBytes = 512000

// ParseSmartLog decodes a SMART / Health Information log page.
func ParseSmartLog(buf []byte) (*SmartLog, error) {
	if len(buf) < SMARTLogSize {
		return nil, errors.Errorf("SMART log too short (%d bytes)", len(buf))
	}

	le := binary.LittleEndian
	sl := &SmartLog{
		CriticalWarning:               buf[0],
		Temperature:                   le.Uint16(buf[1:]),
		AvailableSpare:                buf[3],
		AvailableSpareThreshold:       buf[4],
		PercentageUsed:                buf[5],
		EnduranceGroupCriticalWarning: buf[6],
		DataUnitsRead:                 le.Uint64(buf[32:]),
		DataUnitsWritten:              le.Uint64(buf[48:]),
		HostReadCommands:              le.Uint64(buf[64:]),
		HostWriteCommands:             le.Uint64(buf[80:]),
		ControllerBusyTime:            le.Uint64(buf[96:]),
		PowerCycles:                   le.Uint64(buf[112:]),
		PowerOnHours:                  le.Uint64(buf[128:]),
		UnsafeShutdowns:               le.Uint64(buf[144:]),
		MediaErrors:                   le.Uint64(buf[160:]),
		ErrorLogEntries:               le.Uint64(buf[176:]),
		WarningTempTime:               le.Uint32(buf[192:]),
		CriticalTempTime:              le.Uint32(buf[196:]),
		ThermalMgmtT1TransCount:       le.Uint32(buf[216:]),
		ThermalMgmtT2TransCount:       le.Uint32(buf[220:]),
		ThermalMgmtT1TotalTime:        le.Uint32(buf[224:]),
		ThermalMgmtT2TotalTime:        le.Uint32(buf[228:]),
	}
	for i := range sl.TempSensors {
		sl.TempSensors[i] = le.Uint16(buf[200+i*2:])
	}

	return sl, nil
}

// TemperatureCelsius returns the composite temperature in Celsius.
func (sl *SmartLog) TemperatureCelsius() int {
	return int(sl.Temperature) - kelvinOffset
}

// BytesRead returns the data units read converted to bytes.
func (sl *SmartLog) BytesRead() uint64 {
	return sl.DataUnitsRead * dataUnitBytes
}

// BytesWritten returns the data units written converted to bytes.
func (sl *SmartLog) BytesWritten() uint64 {
	return sl.DataUnitsWritten * dataUnitBytes
}

// GetSMARTLog fetches and decodes the SMART / Health Information log.
func (d *Device) GetSMARTLog(nsid uint32) (*SmartLog, error) {
	buf, err := d.GetLogPage(LogPageRequest{
		ID:      LogPageSMART,
		NSID:    nsid,
		DataLen: SMARTLogSize,
	})
	if err != nil {
		return nil, err
	}

	return ParseSmartLog(buf)
}

// ErrorLogEntry is one entry of the Error Information log page.
type ErrorLogEntry struct {
	ErrorCount        uint64
	SQID              uint16
	CID               uint16
	Status            uint16
	ParameterLocation uint16
	LBA               uint64
	NSID              uint32
	VendorSpecific    uint8
	TransportType     uint8
	CommandSpecific   uint64
	TransportSpecific uint16
}

// Populated indicates whether the entry holds an error.
func (e ErrorLogEntry) Populated() bool {
	return e.ErrorCount != 0
}

// StatusField decodes the entry's status field. Bit 0 holds the phase
// tag and is dropped.
func (e ErrorLogEntry) StatusField() Status {
	return DecodeStatus(e.Status >> 1)
}

// ParseErrorLog decodes every entry in an Error Information log buffer,
// in device order.
func ParseErrorLog(buf []byte) ([]ErrorLogEntry, error) {
	if len(buf)%ErrorLogEntrySize != 0 {
		return nil, errors.Errorf("error log length %d not a multiple of %d", len(buf), ErrorLogEntrySize)
	}

	le := binary.LittleEndian
	entries := make([]ErrorLogEntry, 0, len(buf)/ErrorLogEntrySize)
	for off := 0; off < len(buf); off += ErrorLogEntrySize {
		e := buf[off : off+ErrorLogEntrySize]
		entries = append(entries, ErrorLogEntry{
			ErrorCount:        le.Uint64(e[0:]),
			SQID:              le.Uint16(e[8:]),
			CID:               le.Uint16(e[10:]),
			Status:            le.Uint16(e[12:]),
			ParameterLocation: le.Uint16(e[14:]),
			LBA:               le.Uint64(e[16:]),
			NSID:              le.Uint32(e[24:]),
			VendorSpecific:    e[28],
			TransportType:     e[29],
			CommandSpecific:   le.Uint64(e[32:]),
			TransportSpecific: le.Uint16(e[40:]),
		})
	}

	return entries, nil
}

// GetErrorLog fetches and decodes the given number of Error Information
// log entries.
func (d *Device) GetErrorLog(numEntries uint32) ([]ErrorLogEntry, error) {
	if numEntries == 0 {
		return nil, FaultBadParameter("error log: at least one entry must be requested")
	}

	buf, err := d.GetLogPage(LogPageRequest{
		ID:      LogPageErrorInfo,
		NSID:    BroadcastNSID,
		DataLen: numEntries * ErrorLogEntrySize,
	})
	if err != nil {
		return nil, err
	}

	return ParseErrorLog(buf)
}

// FirmwareSlotLog is the decoded Firmware Slot Information log page.
type FirmwareSlotLog struct {
	// ActiveSlot is the slot the running firmware was loaded from.
	ActiveSlot uint8
	// NextActiveSlot is the slot activated at the next reset, 0 if
	// none is pending.
	NextActiveSlot uint8
	// Revisions holds the revision for slots 1 to 7; empty if the slot
	// holds no image.
	Revisions [7]string
}

// ParseFirmwareSlotLog decodes a Firmware Slot Information log page.
func ParseFirmwareSlotLog(buf []byte) (*FirmwareSlotLog, error) {
	if len(buf) < FirmwareSlotLogSize {
		return nil, errors.Errorf("firmware slot log too short (%d bytes)", len(buf))
	}

	fl := &FirmwareSlotLog{
		ActiveSlot:     buf[0] & 0x7,
		NextActiveSlot: (buf[0] >> 4) & 0x7,
	}
	for i := range fl.Revisions {
		off := 8 + i*8
		fl.Revisions[i] = asciiField(buf[off : off+8])
	}

	return fl, nil
}

// GetFirmwareSlotLog fetches and decodes the Firmware Slot Information
// log.
func (d *Device) GetFirmwareSlotLog() (*FirmwareSlotLog, error) {
	buf, err := d.GetLogPage(LogPageRequest{
		ID:      LogPageFirmwareSlot,
		NSID:    BroadcastNSID,
		DataLen: FirmwareSlotLogSize,
	})
	if err != nil {
		return nil, err
	}

	return ParseFirmwareSlotLog(buf)
}
