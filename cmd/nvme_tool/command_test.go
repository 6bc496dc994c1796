//
// (C) Copyright 2025 Intel Corporation.
//
// SPDX-License-Identifier: BSD-2-Clause-Patent
//

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/daos-stack/go-nvme/common/test"
	"github.com/daos-stack/go-nvme/config"
	"github.com/daos-stack/go-nvme/lib/nvme"
	"github.com/daos-stack/go-nvme/logging"
)

func TestNvmeTool_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	metricsFile := filepath.Join(dir, "nvme.prom")
	logFile := filepath.Join(dir, "nvme_tool.log")

	for name, tc := range map[string]struct {
		cfgContent   string
		args         []string
		expErr       error
		expPath      string
		expNSID      uint32
		expTimeout   time.Duration
		expMetrics   bool
		expLogOutput string
	}{
		"device from config": {
			cfgContent: "device: /dev/nvme1n1\nnamespace: 4\nio_timeout: 5s\n",
			args:       []string{"flush"},
			expPath:    "/dev/nvme1n1",
			expNSID:    4,
			expTimeout: 5 * time.Second,
		},
		"flags override config": {
			cfgContent: "device: /dev/nvme1n1\nnamespace: 4\n",
			args:       []string{"flush", "-D", "/dev/nvme2", "-n", "2"},
			expPath:    "/dev/nvme2",
			expNSID:    2,
			expTimeout: 30 * time.Second,
		},
		"broadcast namespace rejected": {
			cfgContent: "device: /dev/nvme1\nnamespace: 4294967295\n",
			args:       []string{"flush"},
			expErr:     config.FaultConfigBadNamespace,
		},
		"unknown parameter": {
			cfgContent: "device: /dev/nvme1\nbogus: 1\n",
			args:       []string{"flush"},
			expErr:     errors.New("invalid parameters"),
		},
		"metrics and log file": {
			cfgContent: fmt.Sprintf("device: /dev/nvme0\nmetrics_file: %s\nlog_file: %s\n",
				metricsFile, logFile),
			args:         []string{"flush"},
			expPath:      "/dev/nvme0",
			expNSID:      1,
			expTimeout:   30 * time.Second,
			expMetrics:   true,
			expLogOutput: "namespace 1 flushed",
		},
	} {
		t.Run(name, func(t *testing.T) {
			log, buf := logging.NewTestLogger(t.Name())
			defer test.ShowBufferOnFailure(t, buf)()

			md := setupMockDevice(t, nil, 0)
			cfgPath := writeTestFile(t, config.DefaultFileName, []byte(tc.cfgContent))

			var opts mainOpts
			gotErr := parseOpts(append([]string{"-o", cfgPath}, tc.args...), &opts, log)
			test.CmpErr(t, tc.expErr, gotErr)
			if tc.expErr != nil {
				test.AssertEqual(t, 0, md.CallCount(), "commands submitted")
				return
			}

			test.AssertEqual(t, tc.expPath, md.path, "device path")
			last := md.LastCall()
			test.AssertEqual(t, tc.expNSID, last.NSID, "nsid")
			test.AssertEqual(t, tc.expTimeout, last.Timeout, "timeout")

			if tc.expMetrics {
				data, err := os.ReadFile(metricsFile)
				if err != nil {
					t.Fatal(err)
				}
				test.AssertTrue(t, strings.Contains(string(data), "nvme_commands_total"),
					"metrics missing from textfile:\n"+string(data))
				test.AssertTrue(t, strings.Contains(string(data), `result="success"`),
					"success result missing from textfile:\n"+string(data))
			}
			if tc.expLogOutput != "" {
				data, err := os.ReadFile(logFile)
				if err != nil {
					t.Fatal(err)
				}
				test.AssertTrue(t, strings.Contains(string(data), tc.expLogOutput),
					"unexpected log file contents:\n"+string(data))
			}
		})
	}
}

func TestNvmeTool_DownloadChunkSize(t *testing.T) {
	for name, tc := range map[string]struct {
		mdts     uint8
		fwug     uint8
		expChunk uint32
	}{
		"no limits": {
			expChunk: 128 * 1024,
		},
		"mdts below default": {
			mdts:     1,
			expChunk: 8192,
		},
		"mdts above default": {
			mdts:     8,
			expChunk: 128 * 1024,
		},
		"granularity larger than mdts": {
			mdts:     1,
			fwug:     4,
			expChunk: 16384,
		},
		"mdts rounded down to granularity": {
			mdts:     2,
			fwug:     3,
			expChunk: 12288,
		},
		"dword granularity": {
			mdts:     1,
			fwug:     0xFF,
			expChunk: 8192,
		},
	} {
		t.Run(name, func(t *testing.T) {
			cd := &nvme.ControllerData{MDTS: tc.mdts, FWUG: tc.fwug}
			test.AssertEqual(t, tc.expChunk, downloadChunkSize(cd), "chunk size")
		})
	}
}

func TestNvmeTool_DownloadFirmware(t *testing.T) {
	for name, tc := range map[string]struct {
		imageLen   int
		chunk      uint32
		submitErr  error
		expErr     error
		expOffsets []uint32
	}{
		"empty image": {
			chunk:  4096,
			expErr: errors.New("empty firmware image"),
		},
		"zero chunk": {
			imageLen: 4096,
			expErr:   errors.New("zero download chunk"),
		},
		"unaligned image": {
			imageLen: 8194,
			chunk:    4096,
			expErr:   errors.New("image size 8194 is not dword aligned"),
		},
		"unaligned chunk": {
			imageLen: 8192,
			chunk:    4094,
			expErr:   errors.New("chunk size 4094"),
		},
		"single piece": {
			imageLen:   1024,
			chunk:      4096,
			expOffsets: []uint32{0},
		},
		"trailing piece": {
			imageLen:   10240,
			chunk:      4096,
			expOffsets: []uint32{0, 1024, 2048},
		},
		"transport failure": {
			imageLen:   8192,
			chunk:      4096,
			submitErr:  errors.New("no such device"),
			expErr:     errors.New("download at offset 0"),
			expOffsets: []uint32{0},
		},
	} {
		t.Run(name, func(t *testing.T) {
			log, buf := logging.NewTestLogger(t.Name())
			defer test.ShowBufferOnFailure(t, buf)()

			mt := nvme.NewMockTransport(&nvme.MockTransportConfig{SubmitErr: tc.submitErr})
			dev := nvme.NewDevice(log, mt)

			gotErr := downloadFirmware(dev, make([]byte, tc.imageLen), tc.chunk)
			test.CmpErr(t, tc.expErr, gotErr)

			// cdw11 holds the dword offset
			gotOffsets := []uint32{}
			for _, call := range mt.Calls {
				gotOffsets = append(gotOffsets, call.CDW11)
			}
			if tc.expOffsets == nil {
				tc.expOffsets = []uint32{}
			}
			test.AssertEqual(t, tc.expOffsets, gotOffsets, "download offsets")
		})
	}
}
