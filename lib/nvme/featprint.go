//
// (C) Copyright 2025 Intel Corporation.
//
// SPDX-License-Identifier: BSD-2-Clause-Patent
//

package nvme

import (
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/daos-stack/go-nvme/lib/txtfmt"
)

const timestampMask = 1<<48 - 1

// PrintFeatureIdentifiersHelp writes the table of known feature
// identifiers.
func PrintFeatureIdentifiersHelp(w io.Writer) error {
	tbl := txtfmt.NewTable("ID", "Name", "Saveable", "Scope", "Get Data", "Set Data")
	for _, fid := range FeatureIDs() {
		desc := features[fid]
		scope := "controller"
		if desc.namespaceSpecific {
			scope = "namespace"
		}
		tbl.AddRow(fmt.Sprintf("0x%02x", uint8(fid)), desc.name, yesNo(desc.saveable), scope,
			dataLenString(desc.getDataLen), dataLenString(desc.setDataLen))
	}

	_, err := tbl.WriteTo(w)
	return err
}

func dataLenString(l uint32) string {
	if l == 0 {
		return "-"
	}
	return humanize.IBytes(uint64(l))
}

// PrintAllFeatureIdentifiers reads every known feature with the given
// select value and writes one row per feature. Features the device
// rejects are listed with the returned status unless onlySupported is
// set, in which case they are omitted.
func (d *Device) PrintAllFeatureIdentifiers(w io.Writer, sel SelectType, onlySupported bool) error {
	tbl := txtfmt.NewTable("ID", "Name", "Value")
	for _, fid := range FeatureIDs() {
		req := &FeaturesRequest{ID: fid, Select: sel}
		err := d.GetFeatures(req)

		status, devErr := DeviceStatus(err)
		switch {
		case err == nil:
			tbl.AddRow(fmt.Sprintf("0x%02x", uint8(fid)), fid, fmt.Sprintf("0x%08x", req.Result))
		case !devErr:
			return err
		case onlySupported:
			d.log.Debugf("nvme: skipping %s: %s", fid, status)
		default:
			tbl.AddRow(fmt.Sprintf("0x%02x", uint8(fid)), fid, "not supported: "+status.Description())
		}
	}

	_, err := tbl.WriteTo(w)
	return err
}

// PrintFeatureDetails reads a feature and writes its decoded value.
func (d *Device) PrintFeatureDetails(w io.Writer, fid FeatureID, sel SelectType) error {
	req := &FeaturesRequest{ID: fid, Select: sel}
	if err := d.GetFeatures(req); err != nil {
		return err
	}

	_, err := DescribeFeature(req).WriteTo(w)
	return err
}

// DescribeFeature decodes the well-known fields of a completed Get
// Features request.
func DescribeFeature(req *FeaturesRequest) *txtfmt.Entity {
	dw0 := req.Result
	e := txtfmt.NewEntity(fmt.Sprintf("%s (0x%02x, %s)", req.ID, uint8(req.ID), req.Select)).
		Add("Value", "0x%08x", dw0)

	if req.Select == SelectSupportedCapabilities {
		return e.AddValue("Saveable", yesNo(dw0&FeatureCapSaveable != 0)).
			AddValue("Namespace Specific", yesNo(dw0&FeatureCapNamespaceSpecific != 0)).
			AddValue("Changeable", yesNo(dw0&FeatureCapChangeable != 0))
	}

	switch req.ID {
	case FeatArbitration:
		burst := "no limit"
		if ab := dw0 & 0x7; ab != 0x7 {
			burst = fmt.Sprintf("%d", 1<<ab)
		}
		e.AddValue("Arbitration Burst", burst).
			AddValue("Low Priority Weight", (dw0>>8)&0xFF + 1).
			AddValue("Medium Priority Weight", (dw0>>16)&0xFF + 1).
			AddValue("High Priority Weight", (dw0>>24)&0xFF + 1)
	case FeatPowerManagement:
		e.AddValue("Power State", dw0&0x1F).
			AddValue("Workload Hint", (dw0>>5)&0x7)
	case FeatTemperatureThreshold:
		thsel := "over"
		if (dw0>>20)&0x3 == 1 {
			thsel = "under"
		}
		e.Add("Threshold", "%d K (%d C)", dw0&0xFFFF, int(dw0&0xFFFF)-kelvinOffset).
			AddValue("Sensor", (dw0>>16)&0xF).
			AddValue("Threshold Type", thsel)
	case FeatErrorRecovery:
		e.AddValue("Time Limited Error Recovery", time.Duration(dw0&0xFFFF)*100*time.Millisecond).
			AddValue("Deallocated Block Error", yesNo(dw0&(1<<16) != 0))
	case FeatVolatileWriteCache:
		e.AddValue("Write Cache Enabled", yesNo(dw0&0x1 != 0))
	case FeatNumberOfQueues:
		e.AddValue("Submission Queues", dw0&0xFFFF + 1).
			AddValue("Completion Queues", dw0>>16 + 1)
	case FeatInterruptCoalescing:
		e.AddValue("Aggregation Threshold", dw0&0xFF + 1).
			AddValue("Aggregation Time", time.Duration((dw0>>8)&0xFF)*100*time.Microsecond)
	case FeatKeepAliveTimer:
		e.AddValue("Keep Alive Timeout", time.Duration(dw0)*time.Millisecond)
	case FeatTimestamp:
		if len(req.Data) >= 8 {
			raw := binary.LittleEndian.Uint64(req.Data)
			ts := time.UnixMilli(int64(raw & timestampMask)).UTC()
			e.AddValue("Timestamp", ts.Format(time.RFC3339Nano)).
				AddValue("Synch", yesNo(req.Data[6]&0x1 != 0)).
				AddValue("Origin", (req.Data[6]>>1)&0x7)
		}
	case FeatHostIdentifier:
		e.Add("Host Identifier", "%x", req.Data)
	}

	return e
}
