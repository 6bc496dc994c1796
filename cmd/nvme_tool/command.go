//
// (C) Copyright 2025 Intel Corporation.
//
// SPDX-License-Identifier: BSD-2-Clause-Patent
//

package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/daos-stack/go-nvme/config"
	"github.com/daos-stack/go-nvme/lib/nvme"
	"github.com/daos-stack/go-nvme/lib/nvme/passthru"
	"github.com/daos-stack/go-nvme/logging"
)

type cfgLoader interface {
	loadConfig() error
	setPath(cfgPath string)
}

type cfgCmd struct {
	cfgPath string
	config  *config.Config
}

func (c *cfgCmd) setPath(cp string) {
	c.cfgPath = cp
}

func (c *cfgCmd) loadConfig() error {
	// Don't load a new config if there's already
	// one present.
	if c.config != nil {
		return nil
	}

	c.config = config.Default()
	if c.cfgPath == "" {
		return nil
	}
	if err := c.config.SetPath(c.cfgPath); err != nil {
		return err
	}

	return c.config.Load()
}

// deviceTransport is an opened device node.
type deviceTransport interface {
	nvme.Transport
	NamespaceID() uint32
	Close() error
}

// openTransport opens the device node at path.
var openTransport = func(log logging.Logger, path string) (deviceTransport, error) {
	return passthru.Open(log, path)
}

// devCmd opens the configured device for the duration of a command.
type devCmd struct {
	logCmd
	cfgCmd
	DevicePath string `short:"D" long:"device" description:"NVMe device path (/dev/nvmeX or /dev/nvmeXnY)"`
	NSID       uint32 `short:"n" long:"namespace" description:"Namespace ID (defaults to the device namespace)"`
}

// setupLogging applies the configured level unless one was set on the
// commandline, and tees output to the configured log file. The file stays
// open for the life of the process.
func (c *devCmd) setupLogging(cfg *config.Config) error {
	if c.log.Level() == logging.DefaultLogLevel {
		c.log.SetLevel(cfg.LogLevel)
	}
	if cfg.LogFile == "" {
		return nil
	}

	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0640)
	if err != nil {
		return errors.Wrapf(err, "open log file %s", cfg.LogFile)
	}
	c.log.WithOutput("nvme_tool", f)

	return nil
}

func (c *devCmd) namespace(cfg *config.Config, tp deviceTransport) uint32 {
	switch {
	case c.NSID != 0:
		return c.NSID
	case cfg.Namespace != 0:
		return cfg.Namespace
	case tp.NamespaceID() != 0:
		return tp.NamespaceID()
	default:
		return 1
	}
}

// withDevice loads the config, applies commandline overrides, opens the
// device and runs fn against it. Metrics are written to the configured
// textfile after fn returns.
func (c *devCmd) withDevice(fn func(*nvme.Device) error) error {
	if err := c.loadConfig(); err != nil {
		return errors.Wrap(err, "load config")
	}
	cfg := c.config
	if c.DevicePath != "" {
		cfg.WithDevice(c.DevicePath)
	}
	if c.NSID != 0 {
		cfg.WithNamespace(c.NSID)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Device == "" {
		return config.FaultConfigNoDevice
	}

	if err := c.setupLogging(cfg); err != nil {
		return err
	}

	tp, err := openTransport(c.log, cfg.Device)
	if err != nil {
		return err
	}
	defer func() {
		if err := tp.Close(); err != nil {
			c.log.Errorf("close %s: %s", cfg.Device, err)
		}
	}()

	metrics := nvme.NewMetrics()
	registry := prometheus.NewRegistry()
	if err := registry.Register(metrics); err != nil {
		return errors.Wrap(err, "register metrics")
	}

	dev := nvme.NewDevice(c.log, tp).
		WithNamespace(c.namespace(cfg, tp)).
		WithTimeouts(cfg.Timeouts()).
		WithMetrics(metrics)

	cmdErr := fn(dev)

	if cfg.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(cfg.MetricsFile, registry); err != nil {
			c.log.Errorf("write metrics to %s: %s", cfg.MetricsFile, err)
		}
	}

	return cmdErr
}

// confirmCmd requires an explicit flag for destructive commands.
type confirmCmd struct {
	Force bool `short:"f" long:"force" description:"Perform the destructive operation without prompting"`
}

func (c *confirmCmd) confirm(op string) error {
	if !c.Force {
		return errors.Errorf("refusing to %s without --force", op)
	}
	return nil
}
