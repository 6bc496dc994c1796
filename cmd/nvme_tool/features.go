//
// (C) Copyright 2025 Intel Corporation.
//
// SPDX-License-Identifier: BSD-2-Clause-Patent
//

package main

import (
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/daos-stack/go-nvme/lib/nvme"
	"github.com/daos-stack/go-nvme/lib/ui"
)

var selectValues = map[string]nvme.SelectType{
	"current": nvme.SelectCurrent,
	"default": nvme.SelectDefault,
	"saved":   nvme.SelectSaved,
	"caps":    nvme.SelectSupportedCapabilities,
}

type selectFlag struct {
	Select string `short:"s" long:"sel" choice:"current" choice:"default" choice:"saved" choice:"caps" default:"current" description:"Feature value to read"`
}

func (sf selectFlag) sel() nvme.SelectType {
	return selectValues[sf.Select]
}

type getFeatureCmd struct {
	devCmd
	selectFlag
	FeatureID ui.NumberFlag `short:"f" long:"feature-id" required:"1" description:"Feature identifier"`
}

func (cmd *getFeatureCmd) Execute(_ []string) error {
	fid, err := cmd.FeatureID.Uint8()
	if err != nil {
		return errors.Wrap(err, "feature-id")
	}

	return cmd.withDevice(func(dev *nvme.Device) error {
		var bld strings.Builder
		if err := dev.PrintFeatureDetails(&bld, nvme.FeatureID(fid), cmd.sel()); err != nil {
			return err
		}
		cmd.log.Info(bld.String())

		return nil
	})
}

type setFeatureCmd struct {
	devCmd
	FeatureID ui.NumberFlag `short:"f" long:"feature-id" required:"1" description:"Feature identifier"`
	Value     ui.NumberFlag `short:"v" long:"value" description:"Value for command dword 11"`
	Save      bool          `long:"save" description:"Persist the value across power cycles"`
	DataFile  string        `long:"data-file" description:"File containing the feature data payload"`
}

func (cmd *setFeatureCmd) request() (*nvme.FeaturesRequest, error) {
	fid, err := cmd.FeatureID.Uint8()
	if err != nil {
		return nil, errors.Wrap(err, "feature-id")
	}
	val, err := cmd.Value.Uint32()
	if err != nil {
		return nil, errors.Wrap(err, "value")
	}

	req := &nvme.FeaturesRequest{
		ID:    nvme.FeatureID(fid),
		Value: val,
	}
	if cmd.Save {
		req.Select = nvme.SelectSaved
	}
	if cmd.DataFile != "" {
		req.Data, err = os.ReadFile(cmd.DataFile)
		if err != nil {
			return nil, errors.Wrapf(err, "read %s", cmd.DataFile)
		}
	}

	return req, nil
}

func (cmd *setFeatureCmd) Execute(_ []string) error {
	req, err := cmd.request()
	if err != nil {
		return err
	}

	return cmd.withDevice(func(dev *nvme.Device) error {
		if err := dev.SetFeatures(req); err != nil {
			return err
		}
		cmd.log.Infof("set-feature:0x%02x (%s), value:0x%08x, cdw0:0x%08x",
			uint8(req.ID), req.ID, req.Value, req.Result)

		return nil
	})
}

type listFeaturesCmd struct {
	devCmd
	selectFlag
	SupportedOnly bool `long:"supported-only" description:"Omit features the device rejects"`
}

func (cmd *listFeaturesCmd) Execute(_ []string) error {
	return cmd.withDevice(func(dev *nvme.Device) error {
		var bld strings.Builder
		if err := dev.PrintAllFeatureIdentifiers(&bld, cmd.sel(), cmd.SupportedOnly); err != nil {
			return err
		}
		cmd.log.Info(bld.String())

		return nil
	})
}

// featureHelpCmd needs no device.
type featureHelpCmd struct {
	logCmd
}

func (cmd *featureHelpCmd) Execute(_ []string) error {
	var bld strings.Builder
	if err := nvme.PrintFeatureIdentifiersHelp(&bld); err != nil {
		return err
	}
	cmd.log.Info(bld.String())

	return nil
}
