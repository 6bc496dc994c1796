//
// (C) Copyright 2025 Intel Corporation.
//
// SPDX-License-Identifier: BSD-2-Clause-Patent
//

// Package config loads the nvme_tool configuration file.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/daos-stack/go-nvme/lib/nvme"
	"github.com/daos-stack/go-nvme/logging"
)

// DefaultFileName is the name of the configuration file looked up in
// the default directory.
const DefaultFileName = "nvme_tool.yml"

// Config holds the persistent tool settings. Commandline options
// override loaded values.
type Config struct {
	Path string `yaml:"-"`

	Device          string           `yaml:"device,omitempty"`
	Namespace       uint32           `yaml:"namespace,omitempty"`
	AdminTimeout    time.Duration    `yaml:"admin_timeout,omitempty"`
	IOTimeout       time.Duration    `yaml:"io_timeout,omitempty"`
	FormatTimeout   time.Duration    `yaml:"format_timeout,omitempty"`
	SanitizeTimeout time.Duration    `yaml:"sanitize_timeout,omitempty"`
	LogLevel        logging.LogLevel `yaml:"log_level,omitempty"`
	LogFile         string           `yaml:"log_file,omitempty"`
	MetricsFile     string           `yaml:"metrics_file,omitempty"`
}

// Default returns a config populated with default values.
func Default() *Config {
	to := nvme.DefaultTimeouts()

	return &Config{
		AdminTimeout:    to.Admin,
		IOTimeout:       to.IO,
		FormatTimeout:   to.Format,
		SanitizeTimeout: to.Sanitize,
		LogLevel:        logging.DefaultLogLevel,
	}
}

// WithDevice sets the device path.
func (cfg *Config) WithDevice(dev string) *Config {
	cfg.Device = dev
	return cfg
}

// WithNamespace sets the default namespace ID.
func (cfg *Config) WithNamespace(nsid uint32) *Config {
	cfg.Namespace = nsid
	return cfg
}

// SetPath sets the path to the configuration file, which must exist.
func (cfg *Config) SetPath(inPath string) error {
	absPath, err := filepath.Abs(inPath)
	if err != nil {
		return errors.Wrapf(err, "resolve %q", inPath)
	}
	if _, err := os.Stat(absPath); err != nil {
		return err
	}
	cfg.Path = absPath

	return nil
}

// Load reads and parses the configuration file over the current values.
func (cfg *Config) Load() error {
	if cfg.Path == "" {
		return FaultConfigNoPath
	}

	data, err := os.ReadFile(cfg.Path)
	if err != nil {
		return errors.WithMessage(err, "reading file")
	}

	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return errors.WithMessagef(err, "parse of %q failed; config contains invalid parameters",
			cfg.Path)
	}

	return nil
}

// Validate checks the loaded values. A device is not required here so
// that it can be supplied on the commandline.
func (cfg *Config) Validate() error {
	if cfg.Namespace == nvme.BroadcastNSID {
		return FaultConfigBadNamespace
	}

	for _, to := range []struct {
		param string
		value time.Duration
	}{
		{"admin_timeout", cfg.AdminTimeout},
		{"io_timeout", cfg.IOTimeout},
		{"format_timeout", cfg.FormatTimeout},
		{"sanitize_timeout", cfg.SanitizeTimeout},
	} {
		if to.value < 0 {
			return FaultConfigBadTimeout(to.param)
		}
	}

	return nil
}

// Timeouts returns the configured per-class command timeouts.
func (cfg *Config) Timeouts() nvme.Timeouts {
	return nvme.Timeouts{
		Admin:    cfg.AdminTimeout,
		IO:       cfg.IOTimeout,
		Format:   cfg.FormatTimeout,
		Sanitize: cfg.SanitizeTimeout,
	}
}
