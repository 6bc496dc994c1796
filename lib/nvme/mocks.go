//
// (C) Copyright 2025 Intel Corporation.
//
// SPDX-License-Identifier: BSD-2-Clause-Patent
//

package nvme

import (
	"encoding/binary"
	"sync"
)

type (
	// MockResponse is returned by MockTransport for a matching command.
	// Data is copied into device-to-host buffers.
	MockResponse struct {
		Data   []byte
		DW0    uint32
		Status Status
		Err    error
	}

	// MockTransportConfig configures the responses of a MockTransport.
	// Commands without a configured response complete successfully.
	MockTransportConfig struct {
		AdminResponses    map[AdminOpcode]*MockResponse
		NvmResponses      map[NvmOpcode]*MockResponse
		IdentifyResponses map[CNS]*MockResponse
		FeatureResponses  map[FeatureID]*MockResponse
		SubmitErr         error
		Registers         []byte
		RegistersErr      error
	}

	// MockTransport records submitted commands and replies from its
	// configuration.
	MockTransport struct {
		sync.RWMutex
		cfg   MockTransportConfig
		Calls []Command
	}
)

// NewMockTransport returns a MockTransport using the supplied config.
func NewMockTransport(cfg *MockTransportConfig) *MockTransport {
	if cfg == nil {
		cfg = &MockTransportConfig{}
	}

	return &MockTransport{
		cfg: *cfg,
	}
}

// DefaultMockTransport returns a MockTransport on which every command
// succeeds.
func DefaultMockTransport() *MockTransport {
	return NewMockTransport(nil)
}

func (mt *MockTransport) response(cmd *Command) *MockResponse {
	if cmd.Type == NvmCommand {
		return mt.cfg.NvmResponses[NvmOpcode(cmd.Opcode)]
	}

	switch AdminOpcode(cmd.Opcode) {
	case AdminIdentify:
		if resp, found := mt.cfg.IdentifyResponses[CNS(cmd.CDW10&0xFF)]; found {
			return resp
		}
	case AdminGetFeatures, AdminSetFeatures:
		if resp, found := mt.cfg.FeatureResponses[FeatureID(cmd.CDW10&0xFF)]; found {
			return resp
		}
	}
	return mt.cfg.AdminResponses[AdminOpcode(cmd.Opcode)]
}

// Submit implements Transport.
func (mt *MockTransport) Submit(cmd *Command) (Completion, error) {
	recorded := *cmd
	if cmd.Data != nil {
		recorded.Data = make([]byte, len(cmd.Data))
		copy(recorded.Data, cmd.Data)
	}

	mt.Lock()
	mt.Calls = append(mt.Calls, recorded)
	mt.Unlock()

	if mt.cfg.SubmitErr != nil {
		return Completion{}, mt.cfg.SubmitErr
	}

	resp := mt.response(cmd)
	if resp == nil {
		return Completion{}, nil
	}
	if resp.Err != nil {
		return Completion{}, resp.Err
	}
	if cmd.Direction == XferFromDevice {
		copy(cmd.Data, resp.Data)
	}

	return Completion{DW0: resp.DW0, Status: resp.Status}, nil
}

// ReadRegisters implements RegisterReader.
func (mt *MockTransport) ReadRegisters() ([]byte, error) {
	if mt.cfg.RegistersErr != nil {
		return nil, mt.cfg.RegistersErr
	}

	bar := make([]byte, len(mt.cfg.Registers))
	copy(bar, mt.cfg.Registers)
	return bar, nil
}

// CallCount returns the number of commands submitted.
func (mt *MockTransport) CallCount() int {
	mt.RLock()
	defer mt.RUnlock()

	return len(mt.Calls)
}

// LastCall returns a copy of the most recently submitted command.
func (mt *MockTransport) LastCall() *Command {
	mt.RLock()
	defer mt.RUnlock()

	if len(mt.Calls) == 0 {
		return nil
	}
	last := mt.Calls[len(mt.Calls)-1]
	return &last
}

func putASCII(dst []byte, s string) {
	for i := range dst {
		dst[i] = ' '
	}
	copy(dst, s)
}

// MockIdentifyController encodes controller data into an Identify
// Controller data structure.
func MockIdentifyController(cd *ControllerData) []byte {
	buf := make([]byte, IdentifyDataSize)
	if cd == nil {
		return buf
	}

	le := binary.LittleEndian
	le.PutUint16(buf[0:], cd.VendorID)
	le.PutUint16(buf[2:], cd.SubsystemVendorID)
	putASCII(buf[4:24], cd.SerialNumber)
	putASCII(buf[24:64], cd.ModelNumber)
	putASCII(buf[64:72], cd.FirmwareRevision)
	buf[72] = cd.RAB
	copy(buf[73:76], cd.IEEE[:])
	buf[76] = cd.CMIC
	buf[77] = cd.MDTS
	le.PutUint16(buf[78:], cd.ControllerID)
	le.PutUint32(buf[80:], uint32(cd.Version))
	le.PutUint16(buf[256:], cd.OACS)
	buf[258] = cd.ACL
	buf[259] = cd.AERL
	buf[260] = cd.FRMW
	buf[261] = cd.LPA
	buf[262] = cd.ELPE
	buf[263] = cd.NPSS
	le.PutUint16(buf[266:], cd.WCTEMP)
	le.PutUint16(buf[268:], cd.CCTEMP)
	le.PutUint16(buf[270:], cd.MTFA)
	le.PutUint64(buf[280:], cd.TNVMCAP)
	le.PutUint64(buf[296:], cd.UNVMCAP)
	le.PutUint16(buf[316:], cd.EDSTT)
	buf[318] = cd.DSTO
	buf[319] = cd.FWUG
	le.PutUint32(buf[328:], cd.SANICAP)
	buf[512] = cd.SQES
	buf[513] = cd.CQES
	le.PutUint16(buf[514:], cd.MAXCMD)
	le.PutUint32(buf[516:], cd.NN)
	le.PutUint16(buf[520:], cd.ONCS)
	buf[524] = cd.FNA
	buf[525] = cd.VWC
	le.PutUint32(buf[536:], cd.SGLS)
	copy(buf[768:1024], cd.SubsystemNQN)

	return buf
}

// MockIdentifyNamespace encodes namespace data into an Identify
// Namespace data structure. NumLBAFormats is derived from LBAFormats.
func MockIdentifyNamespace(nd *NamespaceData) []byte {
	buf := make([]byte, IdentifyDataSize)
	if nd == nil {
		return buf
	}

	le := binary.LittleEndian
	le.PutUint64(buf[0:], nd.Size)
	le.PutUint64(buf[8:], nd.Capacity)
	le.PutUint64(buf[16:], nd.Utilization)
	buf[24] = nd.Features
	if len(nd.LBAFormats) > 0 {
		buf[25] = uint8(len(nd.LBAFormats) - 1)
	}
	buf[26] = nd.FormattedLBASize
	buf[27] = nd.MetadataCapabilities
	buf[28] = nd.DPC
	buf[29] = nd.DPS
	le.PutUint64(buf[48:], nd.NVMCapacity)
	copy(buf[104:120], nd.NGUID[:])
	copy(buf[120:128], nd.EUI64[:])
	for i, lbaf := range nd.LBAFormats {
		if i >= maxLBAFormats {
			break
		}
		off := 128 + i*4
		le.PutUint16(buf[off:], lbaf.MetadataSize)
		buf[off+2] = lbaf.DataSizeShift
		buf[off+3] = lbaf.RelativePerformance & 0x3
	}

	return buf
}

// MockNamespaceData returns namespace data with 512 byte and 4096 byte
// formats (plus a 4096+8 metadata format), formatted with the given
// format index.
func MockNamespaceData(currentLBAF uint8) *NamespaceData {
	return &NamespaceData{
		Size:             0x1000000,
		Capacity:         0x1000000,
		Utilization:      0x800000,
		NumLBAFormats:    2,
		FormattedLBASize: currentLBAF,
		LBAFormats: []LBAFormat{
			{DataSizeShift: 9, RelativePerformance: 2},
			{DataSizeShift: 12},
			{DataSizeShift: 12, MetadataSize: 8, RelativePerformance: 1},
		},
	}
}

// MockControllerData returns controller data describing a device which
// supports every optional admin and NVM command used by this package.
func MockControllerData() *ControllerData {
	return &ControllerData{
		VendorID:          0x8086,
		SubsystemVendorID: 0x8086,
		SerialNumber:      "PHLJ000000001P0DGN",
		ModelNumber:       "INTEL SSDPE2KX010T8",
		FirmwareRevision:  "VDV10131",
		MDTS:              5,
		Version:           Version(0x00010400),
		OACS:              oacsSecurity | oacsFormat | oacsFirmware | oacsSelfTest,
		FRMW:              0x09,
		ELPE:              63,
		TNVMCAP:           1000204886016,
		FWUG:              1,
		SANICAP:           0x7,
		NN:                1,
		ONCS:              oncsWriteUncorrectable | oncsDatasetManagement | oncsSaveSelect,
		VWC:               1,
		SubsystemNQN:      "nqn.2014.08.org.nvmexpress:80868086PHLJ000000001P0DGN",
	}
}
