//
// (C) Copyright 2025 Intel Corporation.
//
// SPDX-License-Identifier: BSD-2-Clause-Patent
//

// Package ui provides go-flags compatible option types shared by the
// commandline tools.
package ui

import (
	"math"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
)

// ByteSizeFlag is a go-flags compatible flag type for converting
// string input into a byte size.
type ByteSizeFlag struct {
	set   bool
	Bytes uint64
}

// IsSet indicates the flag was supplied on the commandline.
func (sf ByteSizeFlag) IsSet() bool {
	return sf.set
}

func (sf ByteSizeFlag) String() string {
	return humanize.IBytes(sf.Bytes)
}

// Uint32 returns the size if it fits in 32 bits.
func (sf ByteSizeFlag) Uint32() (uint32, error) {
	if sf.Bytes > math.MaxUint32 {
		return 0, errors.Errorf("size %s out of range", sf)
	}
	return uint32(sf.Bytes), nil
}

func (sf *ByteSizeFlag) UnmarshalFlag(fv string) (err error) {
	if fv == "" {
		return errors.New("no size specified")
	}

	sf.Bytes, err = humanize.ParseBytes(fv)
	if err != nil {
		return errors.Errorf("invalid size %q", fv)
	}
	sf.set = true

	return nil
}

// NumberFlag is a go-flags compatible flag type accepting decimal, hex
// (0x) or octal (0) input. The value is range checked on conversion to a
// narrower type.
type NumberFlag struct {
	Value uint64
}

func (nf NumberFlag) String() string {
	return strconv.FormatUint(nf.Value, 10)
}

func (nf *NumberFlag) UnmarshalFlag(fv string) error {
	v, err := strconv.ParseUint(fv, 0, 64)
	if err != nil {
		return errors.Errorf("invalid number %q", fv)
	}
	nf.Value = v

	return nil
}

func (nf NumberFlag) checkMax(max uint64) error {
	if nf.Value > max {
		return errors.Errorf("value %#x out of range 0-%#x", nf.Value, max)
	}
	return nil
}

func (nf NumberFlag) Uint8() (uint8, error) {
	if err := nf.checkMax(math.MaxUint8); err != nil {
		return 0, err
	}
	return uint8(nf.Value), nil
}

func (nf NumberFlag) Uint16() (uint16, error) {
	if err := nf.checkMax(math.MaxUint16); err != nil {
		return 0, err
	}
	return uint16(nf.Value), nil
}

func (nf NumberFlag) Uint32() (uint32, error) {
	if err := nf.checkMax(math.MaxUint32); err != nil {
		return 0, err
	}
	return uint32(nf.Value), nil
}
