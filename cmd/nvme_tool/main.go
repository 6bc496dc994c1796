//
// (C) Copyright 2025 Intel Corporation.
//
// SPDX-License-Identifier: BSD-2-Clause-Patent
//

package main

import (
	"os"
	"path/filepath"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"

	"github.com/daos-stack/go-nvme/config"
	"github.com/daos-stack/go-nvme/fault"
	"github.com/daos-stack/go-nvme/logging"
)

const defaultConfigDir = "/etc/nvme_tool"

type mainOpts struct {
	ConfigPath string `short:"o" long:"config" description:"Tool config file path"`
	Debug      bool   `short:"d" long:"debug" description:"Enable debug output"`
	Trace      bool   `long:"trace" description:"Enable trace output including raw command dwords"`

	Identify     identifyCmd     `command:"identify" description:"Identify the controller and device namespace"`
	IdCtrl       idCtrlCmd       `command:"id-ctrl" description:"Display Identify Controller data"`
	IdNs         idNsCmd         `command:"id-ns" description:"Display Identify Namespace data"`
	ListNs       listNsCmd       `command:"list-ns" description:"List active namespace IDs"`
	SmartLog     smartLogCmd     `command:"smart-log" description:"Display the SMART / Health Information log"`
	ErrorLog     errorLogCmd     `command:"error-log" description:"Display the Error Information log"`
	FwLog        fwLogCmd        `command:"fw-log" description:"Display the Firmware Slot Information log"`
	GetFeature   getFeatureCmd   `command:"get-feature" description:"Read a feature"`
	SetFeature   setFeatureCmd   `command:"set-feature" description:"Change a feature"`
	ListFeatures listFeaturesCmd `command:"list-features" description:"Read every known feature"`
	FeatureHelp  featureHelpCmd  `command:"feature-help" description:"List known feature identifiers"`
	Regs         regsCmd         `command:"regs" description:"Display the controller registers"`
	Format       formatCmd       `command:"format" description:"Format the device namespace"`
	Sanitize     sanitizeCmd     `command:"sanitize" description:"Sanitize the NVM subsystem"`
	FwDownload   fwDownloadCmd   `command:"fw-download" description:"Download a firmware image to the controller"`
	FwCommit     fwCommitCmd     `command:"fw-commit" description:"Commit or activate a firmware slot"`
	SelfTest     selfTestCmd     `command:"self-test" description:"Start or abort a device self-test"`
	Abort        abortCmd        `command:"abort" description:"Abort a submitted command"`
	SecurityRecv securityRecvCmd `command:"security-recv" description:"Receive security protocol data"`
	Flush        flushCmd        `command:"flush" description:"Flush the volatile write cache"`
	Read         readCmd         `command:"read" description:"Read logical blocks to a file"`
	Write        writeCmd        `command:"write" description:"Write logical blocks from a file"`
	Deallocate   deallocateCmd   `command:"deallocate" description:"Deallocate a range of logical blocks"`
	WriteUncor   writeUncorCmd   `command:"write-uncor" description:"Mark a range of logical blocks invalid"`
}

type cmdLogger interface {
	setLog(*logging.LeveledLogger)
}

type logCmd struct {
	log *logging.LeveledLogger
}

func (c *logCmd) setLog(log *logging.LeveledLogger) {
	c.log = log
}

func exitWithError(log *logging.LeveledLogger, err error) {
	log.Debugf("%+v", err)
	log.Errorf("%v", err)
	if fault.HasResolution(err) {
		log.Error(fault.ShowResolutionFor(err))
	}
	os.Exit(1)
}

func parseOpts(args []string, opts *mainOpts, log *logging.LeveledLogger) error {
	p := flags.NewParser(opts, flags.HelpFlag|flags.PassDoubleDash)
	p.CommandHandler = func(cmd flags.Commander, cmdArgs []string) error {
		if len(cmdArgs) > 0 {
			// don't support positional arguments, extra cmdArgs are unexpected
			return errors.Errorf("unexpected commandline arguments: %v", cmdArgs)
		}

		switch {
		case opts.Trace:
			log.SetLevel(logging.LogLevelTrace)
		case opts.Debug:
			log.SetLevel(logging.LogLevelDebug)
		}
		if logCmd, ok := cmd.(cmdLogger); ok {
			logCmd.setLog(log)
		}

		if opts.ConfigPath == "" {
			defaultConfigPath := filepath.Join(defaultConfigDir, config.DefaultFileName)
			if _, err := os.Stat(defaultConfigPath); err == nil {
				opts.ConfigPath = defaultConfigPath
			}
		}
		if cfgCmd, ok := cmd.(cfgLoader); ok {
			cfgCmd.setPath(opts.ConfigPath)
		}

		return cmd.Execute(cmdArgs)
	}

	// Parse commandline flags which override options loaded from config.
	_, err := p.ParseArgs(args)
	return err
}

func main() {
	log := logging.NewCommandLineLogger()
	var opts mainOpts

	if err := parseOpts(os.Args[1:], &opts, log); err != nil {
		exitWithError(log, err)
	}
}
