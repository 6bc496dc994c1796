//
// (C) Copyright 2025 Intel Corporation.
//
// SPDX-License-Identifier: BSD-2-Clause-Patent
//

package nvme

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"github.com/daos-stack/go-nvme/lib/txtfmt"
)

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func writeAll(w io.Writer, wts ...io.WriterTo) error {
	for i, wt := range wts {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := wt.WriteTo(w); err != nil {
			return err
		}
	}
	return nil
}

// PrintControllerData writes a summary of the Identify Controller data.
func PrintControllerData(w io.Writer, cd *ControllerData) error {
	if cd == nil {
		return errors.New("nil controller data")
	}

	mdts := "unlimited"
	if cd.MDTS != 0 {
		mdts = fmt.Sprintf("%d (%s at 4KiB pages)", cd.MDTS, humanize.IBytes(cd.MaxTransferSize(4096)))
	}

	e := txtfmt.NewEntity("Controller").
		Add("Vendor ID", "0x%04x", cd.VendorID).
		Add("Subsystem Vendor ID", "0x%04x", cd.SubsystemVendorID).
		AddValue("Serial Number", cd.SerialNumber).
		AddValue("Model Number", cd.ModelNumber).
		AddValue("Firmware Revision", cd.FirmwareRevision).
		AddValue("Version", cd.Version).
		AddValue("Controller ID", cd.ControllerID).
		AddValue("Max Data Transfer Size", mdts).
		AddValue("Namespaces", cd.NN).
		Add("Total Capacity", "%s", humanize.Bytes(cd.TNVMCAP)).
		Add("Unallocated Capacity", "%s", humanize.Bytes(cd.UNVMCAP)).
		Add("Warning Temperature", "%d K", cd.WCTEMP).
		Add("Critical Temperature", "%d K", cd.CCTEMP).
		AddValue("Firmware Slots", cd.FirmwareSlots()).
		AddValue("Slot 1 Read Only", yesNo(cd.FirstFirmwareSlotReadOnly())).
		AddValue("Format NVM", yesNo(cd.SupportsFormat())).
		AddValue("Firmware Download", yesNo(cd.SupportsFirmware())).
		AddValue("Security Send/Receive", yesNo(cd.SupportsSecurity())).
		AddValue("Device Self-test", yesNo(cd.SupportsSelfTest())).
		AddValue("Dataset Management", yesNo(cd.SupportsDatasetManagement())).
		AddValue("Write Uncorrectable", yesNo(cd.SupportsWriteUncorrectable())).
		Add("Sanitize Capabilities", "%#x", cd.SANICAP).
		AddValue("Volatile Write Cache", yesNo(cd.VWC&0x1 != 0)).
		AddValue("Subsystem NQN", cd.SubsystemNQN)

	_, err := e.WriteTo(w)
	return err
}

// PrintNamespaceData writes a summary of the Identify Namespace data
// along with its supported LBA formats.
func PrintNamespaceData(w io.Writer, nsid uint32, nd *NamespaceData) error {
	if nd == nil {
		return errors.New("nil namespace data")
	}

	e := txtfmt.NewEntity(fmt.Sprintf("Namespace %d", nsid))
	bs, err := nd.BlockSize()
	if err == nil {
		e.Add("Size", "%d blocks (%s)", nd.Size, humanize.Bytes(nd.Size*uint64(bs)))
		e.Add("Capacity", "%d blocks (%s)", nd.Capacity, humanize.Bytes(nd.Capacity*uint64(bs)))
		e.Add("Utilization", "%d blocks (%s)", nd.Utilization, humanize.Bytes(nd.Utilization*uint64(bs)))
	} else {
		e.Add("Size", "%d blocks", nd.Size)
		e.Add("Capacity", "%d blocks", nd.Capacity)
		e.Add("Utilization", "%d blocks", nd.Utilization)
	}
	e.AddValue("NGUID", nd.NGUID).
		Add("EUI64", "%x", nd.EUI64[:]).
		AddValue("Extended LBA", yesNo(nd.ExtendedLBA())).
		Add("Data Protection", "caps %#x settings %#x", nd.DPC, nd.DPS)

	tbl := txtfmt.NewTable("LBAF", "Data Size", "Metadata", "Performance", "In Use")
	for i, lbaf := range nd.LBAFormats {
		inUse := ""
		if uint8(i) == nd.CurrentLBAFormatIndex() {
			inUse = "*"
		}
		size := "unsupported"
		if lbaf.DataSize() != 0 {
			size = humanize.IBytes(uint64(lbaf.DataSize()))
		}
		tbl.AddRow(i, size, lbaf.MetadataSize, lbaf.RelativePerformance, inUse)
	}

	return writeAll(w, e, tbl)
}

var criticalWarningNames = []struct {
	bit  uint8
	name string
}{
	{CriticalWarningSpare, "available spare below threshold"},
	{CriticalWarningTemperature, "temperature threshold exceeded"},
	{CriticalWarningReliability, "reliability degraded"},
	{CriticalWarningReadOnly, "media read-only"},
	{CriticalWarningVolatileMem, "volatile memory backup failed"},
	{CriticalWarningPMR, "persistent memory region read-only"},
}

func criticalWarningString(cw uint8) string {
	if cw == 0 {
		return "none"
	}
	var warnings []string
	for _, w := range criticalWarningNames {
		if cw&w.bit != 0 {
			warnings = append(warnings, w.name)
		}
	}
	return fmt.Sprintf("0x%02x (%s)", cw, strings.Join(warnings, ", "))
}

// PrintSmartLog writes the SMART / Health Information log.
func PrintSmartLog(w io.Writer, sl *SmartLog) error {
	if sl == nil {
		return errors.New("nil SMART log")
	}

	e := txtfmt.NewEntity("SMART / Health Information").
		AddValue("Critical Warning", criticalWarningString(sl.CriticalWarning)).
		Add("Temperature", "%d C (%d K)", sl.TemperatureCelsius(), sl.Temperature).
		Add("Available Spare", "%d%%", sl.AvailableSpare).
		Add("Available Spare Threshold", "%d%%", sl.AvailableSpareThreshold).
		Add("Percentage Used", "%d%%", sl.PercentageUsed).
		Add("Data Units Read", "%s (%s)", humanize.Comma(int64(sl.DataUnitsRead)), humanize.Bytes(sl.BytesRead())).
		Add("Data Units Written", "%s (%s)", humanize.Comma(int64(sl.DataUnitsWritten)), humanize.Bytes(sl.BytesWritten())).
		AddValue("Host Read Commands", humanize.Comma(int64(sl.HostReadCommands))).
		AddValue("Host Write Commands", humanize.Comma(int64(sl.HostWriteCommands))).
		Add("Controller Busy Time", "%s min", humanize.Comma(int64(sl.ControllerBusyTime))).
		AddValue("Power Cycles", humanize.Comma(int64(sl.PowerCycles))).
		AddValue("Power On Hours", humanize.Comma(int64(sl.PowerOnHours))).
		AddValue("Unsafe Shutdowns", humanize.Comma(int64(sl.UnsafeShutdowns))).
		AddValue("Media Errors", humanize.Comma(int64(sl.MediaErrors))).
		AddValue("Error Log Entries", humanize.Comma(int64(sl.ErrorLogEntries))).
		Add("Warning Temperature Time", "%d min", sl.WarningTempTime).
		Add("Critical Temperature Time", "%d min", sl.CriticalTempTime)
	for i, temp := range sl.TempSensors {
		if temp == 0 {
			continue
		}
		e.Add(fmt.Sprintf("Temperature Sensor %d", i+1), "%d C", int(temp)-kelvinOffset)
	}

	_, err := e.WriteTo(w)
	return err
}

// PrintErrorLog writes populated error log entries in device order. A
// maxEntries of 0 prints every populated entry.
func PrintErrorLog(w io.Writer, entries []ErrorLogEntry, maxEntries int) error {
	tbl := txtfmt.NewTable("Entry", "Error Count", "SQID", "CID", "Status", "Param Loc", "LBA", "NSID")
	for i, e := range entries {
		if maxEntries > 0 && tbl.Len() >= maxEntries {
			break
		}
		if !e.Populated() {
			continue
		}
		tbl.AddRow(i, e.ErrorCount, e.SQID, e.CID, e.StatusField().Description(),
			fmt.Sprintf("%#x", e.ParameterLocation), e.LBA, e.NSID)
	}

	if tbl.Len() == 0 {
		_, err := fmt.Fprintln(w, "No error log entries")
		return err
	}

	_, err := tbl.WriteTo(w)
	return err
}

// PrintFirmwareSlotLog writes the firmware revision held in each slot.
func PrintFirmwareSlotLog(w io.Writer, fl *FirmwareSlotLog) error {
	if fl == nil {
		return errors.New("nil firmware slot log")
	}

	tbl := txtfmt.NewTable("Slot", "Revision", "Active", "Next Active")
	for i, rev := range fl.Revisions {
		slot := uint8(i + 1)
		if rev == "" {
			rev = "empty"
		}
		tbl.AddRow(slot, rev, yesNo(slot == fl.ActiveSlot), yesNo(slot == fl.NextActiveSlot))
	}

	_, err := tbl.WriteTo(w)
	return err
}

// PrintControllerRegisters writes the decoded controller registers.
func PrintControllerRegisters(w io.Writer, regs *ControllerRegisters) error {
	if regs == nil {
		return errors.New("nil controller registers")
	}

	e := txtfmt.NewEntity("Controller Registers").
		Add("CAP", "0x%016x", uint64(regs.CAP)).
		Add("  MQES", "%d", regs.CAP.MQES()).
		AddValue("  CQR", yesNo(regs.CAP.CQR())).
		Add("  AMS", "%#x", regs.CAP.AMS()).
		AddValue("  TO", regs.CAP.Timeout()).
		Add("  DSTRD", "%d", regs.CAP.DSTRD()).
		AddValue("  NSSRS", yesNo(regs.CAP.NSSRS())).
		Add("  CSS", "%#x", regs.CAP.CSS()).
		AddValue("  BPS", yesNo(regs.CAP.BPS())).
		AddValue("  MPSMIN", humanize.IBytes(uint64(regs.CAP.MinPageSize()))).
		AddValue("  MPSMAX", humanize.IBytes(uint64(regs.CAP.MaxPageSize()))).
		AddValue("VS", regs.VS).
		Add("INTMS", "0x%08x", regs.INTMS).
		Add("INTMC", "0x%08x", regs.INTMC).
		Add("CC", "0x%08x", uint32(regs.CC)).
		AddValue("  EN", yesNo(regs.CC.EN())).
		Add("  CSS", "%d", regs.CC.CSS()).
		Add("  MPS", "%d", regs.CC.MPS()).
		Add("  AMS", "%d", regs.CC.AMS()).
		Add("  SHN", "%d", regs.CC.SHN()).
		Add("  IOSQES", "%d", regs.CC.IOSQES()).
		Add("  IOCQES", "%d", regs.CC.IOCQES()).
		Add("CSTS", "0x%08x", uint32(regs.CSTS)).
		AddValue("  RDY", yesNo(regs.CSTS.RDY())).
		AddValue("  CFS", yesNo(regs.CSTS.CFS())).
		Add("  SHST", "%d", regs.CSTS.SHST()).
		AddValue("  NSSRO", yesNo(regs.CSTS.NSSRO())).
		AddValue("  PP", yesNo(regs.CSTS.PP())).
		Add("NSSR", "0x%08x", regs.NSSR).
		Add("AQA", "asqs %d acqs %d", regs.AQA.ASQS(), regs.AQA.ACQS()).
		Add("ASQ", "0x%016x", regs.ASQ).
		Add("ACQ", "0x%016x", regs.ACQ).
		Add("CMBLOC", "0x%08x", regs.CMBLOC).
		Add("CMBSZ", "0x%08x", regs.CMBSZ)

	_, err := e.WriteTo(w)
	return err
}

// PrintErrorLogPage fetches the error log sized from the controller's
// error log page entries and prints at most maxEntries populated entries.
func (d *Device) PrintErrorLogPage(w io.Writer, maxEntries int) error {
	numEntries := uint32(1)
	if d.info != nil && d.info.Controller != nil {
		numEntries = uint32(d.info.Controller.ELPE) + 1
	} else if cd, err := d.IdentifyController(); err == nil {
		numEntries = uint32(cd.ELPE) + 1
	} else {
		return errors.Wrap(err, "identify controller for error log size")
	}

	entries, err := d.GetErrorLog(numEntries)
	if err != nil {
		return err
	}

	return PrintErrorLog(w, entries, maxEntries)
}

// PrintFirmwareSlotLogPage fetches and prints the firmware slot log.
func (d *Device) PrintFirmwareSlotLogPage(w io.Writer) error {
	fl, err := d.GetFirmwareSlotLog()
	if err != nil {
		return err
	}

	return PrintFirmwareSlotLog(w, fl)
}
