//
// (C) Copyright 2019-2025 Intel Corporation.
//
// SPDX-License-Identifier: BSD-2-Clause-Patent
//

package logging

import (
	"strings"
	"sync/atomic"

	"github.com/pkg/errors"
)

const (
	// LogLevelDisabled disables any logging output
	LogLevelDisabled LogLevel = iota
	// LogLevelError emits messages at ERROR or higher
	LogLevelError
	// LogLevelInfo emits messages at INFO or higher
	LogLevelInfo
	// LogLevelDebug emits messages at DEBUG or higher
	LogLevelDebug
	// LogLevelTrace emits every message, including raw command dumps
	LogLevelTrace

	strDisabled = "DISABLED"
	strError    = "ERROR"
	strInfo     = "INFO"
	strDebug    = "DEBUG"
	strTrace    = "TRACE"
)

// LogLevel represents the level at which the logger will emit log messages
type LogLevel int32

// Set safely sets the log level to the supplied level
func (ll *LogLevel) Set(newLevel LogLevel) {
	atomic.StoreInt32((*int32)(ll), int32(newLevel))
}

// Get returns the current log level
func (ll *LogLevel) Get() LogLevel {
	return LogLevel(atomic.LoadInt32((*int32)(ll)))
}

// levelNames is indexed by LogLevel.
var levelNames = [...]string{strDisabled, strError, strInfo, strDebug, strTrace}

// SetString sets the log level from its case-insensitive name.
func (ll *LogLevel) SetString(in string) error {
	for level, name := range levelNames {
		if strings.EqualFold(in, name) {
			ll.Set(LogLevel(level))
			return nil
		}
	}

	return errors.Errorf("%q is not a valid log level", in)
}

// UnmarshalYAML allows a LogLevel to be set from a config file string.
func (ll *LogLevel) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var str string
	if err := unmarshal(&str); err != nil {
		return err
	}
	return ll.SetString(str)
}

func (ll LogLevel) String() string {
	if ll < LogLevelDisabled || int(ll) >= len(levelNames) {
		return "UNKNOWN"
	}
	return levelNames[ll]
}
