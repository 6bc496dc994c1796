//
// (C) Copyright 2025 Intel Corporation.
//
// SPDX-License-Identifier: BSD-2-Clause-Patent
//

package main

import (
	"strings"

	"github.com/daos-stack/go-nvme/lib/nvme"
)

type smartLogCmd struct {
	devCmd
	Broadcast bool `short:"b" long:"broadcast" description:"Report controller-wide health rather than the namespace"`
}

func (cmd *smartLogCmd) Execute(_ []string) error {
	return cmd.withDevice(func(dev *nvme.Device) error {
		nsid := dev.Namespace()
		if cmd.Broadcast {
			nsid = nvme.BroadcastNSID
		}

		sl, err := dev.GetSMARTLog(nsid)
		if err != nil {
			return err
		}

		var bld strings.Builder
		if err := nvme.PrintSmartLog(&bld, sl); err != nil {
			return err
		}
		cmd.log.Info(bld.String())

		return nil
	})
}

type errorLogCmd struct {
	devCmd
	MaxEntries int `short:"m" long:"max-entries" default:"16" description:"Maximum number of populated entries to display"`
}

func (cmd *errorLogCmd) Execute(_ []string) error {
	return cmd.withDevice(func(dev *nvme.Device) error {
		var bld strings.Builder
		if err := dev.PrintErrorLogPage(&bld, cmd.MaxEntries); err != nil {
			return err
		}
		cmd.log.Info(bld.String())

		return nil
	})
}

type fwLogCmd struct {
	devCmd
}

func (cmd *fwLogCmd) Execute(_ []string) error {
	return cmd.withDevice(func(dev *nvme.Device) error {
		var bld strings.Builder
		if err := dev.PrintFirmwareSlotLogPage(&bld); err != nil {
			return err
		}
		cmd.log.Info(bld.String())

		return nil
	})
}
