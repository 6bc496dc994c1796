//
// (C) Copyright 2025 Intel Corporation.
//
// SPDX-License-Identifier: BSD-2-Clause-Patent
//

package main

import (
	"os"

	"github.com/pkg/errors"

	"github.com/daos-stack/go-nvme/lib/nvme"
)

type flushCmd struct {
	devCmd
}

func (cmd *flushCmd) Execute(_ []string) error {
	return cmd.withDevice(func(dev *nvme.Device) error {
		if err := dev.Flush(); err != nil {
			return err
		}
		cmd.log.Infof("namespace %d flushed", dev.Namespace())

		return nil
	})
}

type blockRange struct {
	SLBA  uint64 `short:"s" long:"start-block" description:"Starting logical block address"`
	Count uint32 `short:"c" long:"block-count" required:"1" description:"Number of logical blocks"`
}

type ioOpts struct {
	blockRange
	FUA          bool `long:"fua" description:"Force unit access"`
	LimitedRetry bool `long:"limited-retry" description:"Apply limited retry effort"`
}

func (o ioOpts) request() nvme.IORequest {
	return nvme.IORequest{
		SLBA:         o.SLBA,
		Count:        o.Count,
		FUA:          o.FUA,
		LimitedRetry: o.LimitedRetry,
	}
}

// blockBuffer sizes a data buffer for count blocks of the device
// namespace.
func blockBuffer(dev *nvme.Device, count uint32) ([]byte, error) {
	info, err := dev.FillDeviceInfo()
	if err != nil {
		return nil, err
	}
	bs, err := info.Namespace.BlockSize()
	if err != nil {
		return nil, err
	}

	return make([]byte, uint64(bs)*uint64(count)), nil
}

type readCmd struct {
	devCmd
	ioOpts
	Out string `long:"out" required:"1" description:"File to write the data to"`
}

func (cmd *readCmd) Execute(_ []string) error {
	return cmd.withDevice(func(dev *nvme.Device) error {
		req := cmd.request()
		var err error
		if req.Data, err = blockBuffer(dev, req.Count); err != nil {
			return err
		}

		if err := dev.Read(req); err != nil {
			return err
		}
		if err := os.WriteFile(cmd.Out, req.Data, 0600); err != nil {
			return errors.Wrapf(err, "write %s", cmd.Out)
		}
		cmd.log.Infof("read %d blocks from %d into %s", req.Count, req.SLBA, cmd.Out)

		return nil
	})
}

type writeCmd struct {
	devCmd
	ioOpts
	In string `short:"i" long:"in" required:"1" description:"File to read the data from"`
}

func (cmd *writeCmd) Execute(_ []string) error {
	data, err := os.ReadFile(cmd.In)
	if err != nil {
		return errors.Wrapf(err, "read %s", cmd.In)
	}

	return cmd.withDevice(func(dev *nvme.Device) error {
		req := cmd.request()
		if req.Data, err = blockBuffer(dev, req.Count); err != nil {
			return err
		}
		if len(data) > len(req.Data) {
			return errors.Errorf("%s holds %d bytes, more than %d blocks", cmd.In, len(data), req.Count)
		}
		// short input is zero padded to a whole block count
		copy(req.Data, data)

		if err := dev.Write(req); err != nil {
			return err
		}
		cmd.log.Infof("wrote %d blocks at %d from %s", req.Count, req.SLBA, cmd.In)

		return nil
	})
}

type deallocateCmd struct {
	devCmd
	blockRange
}

func (cmd *deallocateCmd) Execute(_ []string) error {
	return cmd.withDevice(func(dev *nvme.Device) error {
		req := nvme.DSMRequest{
			Ranges:     []nvme.DSMRange{{SLBA: cmd.SLBA, Length: cmd.Count}},
			Deallocate: true,
		}
		if err := dev.DatasetManagement(req); err != nil {
			return err
		}
		cmd.log.Infof("deallocated %d blocks at %d", cmd.Count, cmd.SLBA)

		return nil
	})
}

type writeUncorCmd struct {
	devCmd
	blockRange
}

func (cmd *writeUncorCmd) Execute(_ []string) error {
	return cmd.withDevice(func(dev *nvme.Device) error {
		if err := dev.WriteUncorrectable(cmd.SLBA, cmd.Count); err != nil {
			return err
		}
		cmd.log.Infof("marked %d blocks at %d uncorrectable", cmd.Count, cmd.SLBA)

		return nil
	})
}
