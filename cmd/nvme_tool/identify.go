//
// (C) Copyright 2025 Intel Corporation.
//
// SPDX-License-Identifier: BSD-2-Clause-Patent
//

package main

import (
	"fmt"
	"strings"

	"github.com/daos-stack/go-nvme/lib/nvme"
)

// identifyCmd prints controller and namespace identify data together.
type identifyCmd struct {
	devCmd
}

func (cmd *identifyCmd) Execute(_ []string) error {
	return cmd.withDevice(func(dev *nvme.Device) error {
		info, err := dev.FillDeviceInfo()
		if err != nil {
			return err
		}

		var bld strings.Builder
		if err := nvme.PrintControllerData(&bld, info.Controller); err != nil {
			return err
		}
		fmt.Fprintln(&bld)
		if err := nvme.PrintNamespaceData(&bld, info.NSID, info.Namespace); err != nil {
			return err
		}
		cmd.log.Info(bld.String())

		return nil
	})
}

type idCtrlCmd struct {
	devCmd
}

func (cmd *idCtrlCmd) Execute(_ []string) error {
	return cmd.withDevice(func(dev *nvme.Device) error {
		cd, err := dev.IdentifyController()
		if err != nil {
			return err
		}

		var bld strings.Builder
		if err := nvme.PrintControllerData(&bld, cd); err != nil {
			return err
		}
		cmd.log.Info(bld.String())

		return nil
	})
}

type idNsCmd struct {
	devCmd
}

func (cmd *idNsCmd) Execute(_ []string) error {
	return cmd.withDevice(func(dev *nvme.Device) error {
		nd, err := dev.IdentifyNamespace(dev.Namespace())
		if err != nil {
			return err
		}

		var bld strings.Builder
		if err := nvme.PrintNamespaceData(&bld, dev.Namespace(), nd); err != nil {
			return err
		}
		cmd.log.Info(bld.String())

		return nil
	})
}

type listNsCmd struct {
	devCmd
	Start uint32 `long:"start" description:"List namespace IDs greater than this value"`
}

func (cmd *listNsCmd) Execute(_ []string) error {
	return cmd.withDevice(func(dev *nvme.Device) error {
		nsids, err := dev.IdentifyNamespaceList(cmd.Start)
		if err != nil {
			return err
		}

		var bld strings.Builder
		if len(nsids) == 0 {
			fmt.Fprintln(&bld, "No active namespaces")
		}
		for _, nsid := range nsids {
			fmt.Fprintf(&bld, "[%d]: %#x\n", nsid, nsid)
		}
		cmd.log.Info(bld.String())

		return nil
	})
}
