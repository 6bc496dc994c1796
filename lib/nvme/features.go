//
// (C) Copyright 2025 Intel Corporation.
//
// SPDX-License-Identifier: BSD-2-Clause-Patent
//

package nvme

import (
	"fmt"
	"sort"
)

// FeatureID identifies a controller or namespace feature.
type FeatureID uint8

// Admin command set features.
const (
	FeatArbitration                    FeatureID = 0x01
	FeatPowerManagement                FeatureID = 0x02
	FeatLBARangeType                   FeatureID = 0x03
	FeatTemperatureThreshold           FeatureID = 0x04
	FeatErrorRecovery                  FeatureID = 0x05
	FeatVolatileWriteCache             FeatureID = 0x06
	FeatNumberOfQueues                 FeatureID = 0x07
	FeatInterruptCoalescing            FeatureID = 0x08
	FeatInterruptVectorConfig          FeatureID = 0x09
	FeatWriteAtomicityNormal           FeatureID = 0x0A
	FeatAsyncEventConfig               FeatureID = 0x0B
	FeatAutonomousPowerStateTransition FeatureID = 0x0C
	FeatHostMemoryBuffer               FeatureID = 0x0D
	FeatTimestamp                      FeatureID = 0x0E
	FeatKeepAliveTimer                 FeatureID = 0x0F
	FeatHostControlledThermalMgmt      FeatureID = 0x10
	FeatNonOperationalPowerState       FeatureID = 0x11
	FeatSanitizeConfig                 FeatureID = 0x17
	FeatSoftwareProgressMarker         FeatureID = 0x80
	FeatHostIdentifier                 FeatureID = 0x81
	FeatReservationNotificationMask    FeatureID = 0x82
	FeatReservationPersistence         FeatureID = 0x83
	FeatNamespaceWriteProtection       FeatureID = 0x84
)

type featureDescriptor struct {
	name       string
	getDataLen uint32
	// setDataLen is the mandatory Set Features payload length.
	setDataLen        uint32
	saveable          bool
	namespaceSpecific bool
}

var features = map[FeatureID]featureDescriptor{
	FeatArbitration:                    {name: "Arbitration", saveable: true},
	FeatPowerManagement:                {name: "Power Management", saveable: true},
	FeatLBARangeType:                   {name: "LBA Range Type", getDataLen: 4096, setDataLen: 4096, saveable: true, namespaceSpecific: true},
	FeatTemperatureThreshold:           {name: "Temperature Threshold", saveable: true},
	FeatErrorRecovery:                  {name: "Error Recovery", saveable: true, namespaceSpecific: true},
	FeatVolatileWriteCache:             {name: "Volatile Write Cache", saveable: true},
	FeatNumberOfQueues:                 {name: "Number of Queues", saveable: true},
	FeatInterruptCoalescing:            {name: "Interrupt Coalescing", saveable: true},
	FeatInterruptVectorConfig:          {name: "Interrupt Vector Configuration", saveable: true},
	FeatWriteAtomicityNormal:           {name: "Write Atomicity Normal", saveable: true},
	FeatAsyncEventConfig:               {name: "Asynchronous Event Configuration", saveable: true},
	FeatAutonomousPowerStateTransition: {name: "Autonomous Power State Transition", getDataLen: 256, setDataLen: 256, saveable: true},
	FeatHostMemoryBuffer:               {name: "Host Memory Buffer", getDataLen: 4096},
	FeatTimestamp:                      {name: "Timestamp", getDataLen: 8, setDataLen: 8},
	FeatKeepAliveTimer:                 {name: "Keep Alive Timer", saveable: true},
	FeatHostControlledThermalMgmt:      {name: "Host Controlled Thermal Management", saveable: true},
	FeatNonOperationalPowerState:       {name: "Non-Operational Power State Config", saveable: true},
	FeatSanitizeConfig:                 {name: "Sanitize Config", saveable: true},
	FeatSoftwareProgressMarker:         {name: "Software Progress Marker", saveable: true},
	FeatHostIdentifier:                 {name: "Host Identifier", getDataLen: 8, setDataLen: 8},
	FeatReservationNotificationMask:    {name: "Reservation Notification Mask", saveable: true, namespaceSpecific: true},
	FeatReservationPersistence:         {name: "Reservation Persistence", saveable: true, namespaceSpecific: true},
	FeatNamespaceWriteProtection:       {name: "Namespace Write Protection Config", saveable: true, namespaceSpecific: true},
}

func (fid FeatureID) String() string {
	if desc, found := features[fid]; found {
		return desc.name
	}
	return fmt.Sprintf("feature 0x%02x", uint8(fid))
}

// FeatureIDs returns every registered feature identifier in ascending
// order.
func FeatureIDs() []FeatureID {
	ids := make([]FeatureID, 0, len(features))
	for fid := range features {
		ids = append(ids, fid)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// SelectType selects the value domain addressed by a features command.
type SelectType uint8

// Select values.
const (
	SelectCurrent               SelectType = 0
	SelectDefault               SelectType = 1
	SelectSaved                 SelectType = 2
	SelectSupportedCapabilities SelectType = 3
)

func (sel SelectType) String() string {
	switch sel {
	case SelectCurrent:
		return "current"
	case SelectDefault:
		return "default"
	case SelectSaved:
		return "saved"
	case SelectSupportedCapabilities:
		return "supported capabilities"
	default:
		return fmt.Sprintf("select %d", uint8(sel))
	}
}

// Supported capabilities bits returned in dw0 for
// SelectSupportedCapabilities.
const (
	FeatureCapSaveable          = 1 << 0
	FeatureCapNamespaceSpecific = 1 << 1
	FeatureCapChangeable        = 1 << 2
)

const setFeaturesSaveBit = 1 << 31

// FeaturesRequest describes a Get or Set Features command.
type FeaturesRequest struct {
	ID     FeatureID
	Select SelectType
	// NSID defaults to the device namespace for namespace specific
	// features and to 0 otherwise.
	NSID uint32
	// Value is sent in cdw11.
	Value uint32
	// CDW12 to CDW15 are passed through by Set Features.
	CDW12 uint32
	CDW13 uint32
	CDW14 uint32
	CDW15 uint32
	// Data is the Set Features payload, or receives the Get Features
	// payload for features which return one.
	Data []byte
	// Result receives completion dword 0.
	Result uint32
}

func (d *Device) featureNSID(req *FeaturesRequest, desc featureDescriptor) uint32 {
	if req.NSID == 0 && desc.namespaceSpecific {
		return d.nsid
	}
	return req.NSID
}

// GetFeatures reads the attributes of a feature. The value returned in
// completion dword 0 is stored in req.Result.
func (d *Device) GetFeatures(req *FeaturesRequest) error {
	if req == nil {
		return FaultBadParameter("get features: nil request")
	}
	if req.ID == 0 {
		return FaultBadParameter("get features: feature ID must be non-zero")
	}
	if req.Select > SelectSupportedCapabilities {
		return badParam("get features: invalid select value %d", req.Select)
	}

	desc := features[req.ID]
	cmd := d.adminCommand(AdminGetFeatures, d.featureNSID(req, desc))
	cmd.CDW10 = uint32(req.ID) | uint32(req.Select)<<8
	cmd.CDW11 = req.Value

	var buf []byte
	if desc.getDataLen > 0 && req.Select != SelectSupportedCapabilities {
		buf = make([]byte, desc.getDataLen)
		cmd.withData(XferFromDevice, buf)
	}

	if err := d.Dispatch(cmd); err != nil {
		return err
	}

	req.Result = cmd.Completion.DW0
	if buf != nil {
		req.Data = buf
	}
	return nil
}

// SetFeatures changes the attributes of a feature. SelectSaved makes
// the change persist across power cycles.
func (d *Device) SetFeatures(req *FeaturesRequest) error {
	if req == nil {
		return FaultBadParameter("set features: nil request")
	}
	if req.ID == 0 {
		return FaultBadParameter("set features: feature ID must be non-zero")
	}

	desc, known := features[req.ID]
	cmd := d.adminCommand(AdminSetFeatures, d.featureNSID(req, desc))
	cmd.CDW10 = uint32(req.ID)

	switch req.Select {
	case SelectCurrent:
	case SelectSaved:
		cmd.CDW10 |= setFeaturesSaveBit
	default:
		return badParam("set features: select %s is not valid for set", req.Select)
	}

	switch {
	case desc.setDataLen > 0:
		if uint32(len(req.Data)) != desc.setDataLen {
			return badParam("set features: %s requires a %d byte payload, got %d",
				req.ID, desc.setDataLen, len(req.Data))
		}
	case known && len(req.Data) > 0:
		return badParam("set features: %s does not take a payload", req.ID)
	}

	cmd.CDW11 = req.Value
	cmd.CDW12 = req.CDW12
	cmd.CDW13 = req.CDW13
	cmd.CDW14 = req.CDW14
	cmd.CDW15 = req.CDW15
	if len(req.Data) > 0 {
		cmd.withData(XferToDevice, req.Data)
	}

	if err := d.Dispatch(cmd); err != nil {
		return err
	}

	req.Result = cmd.Completion.DW0
	return nil
}
