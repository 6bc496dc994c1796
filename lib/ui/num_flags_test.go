//
// (C) Copyright 2025 Intel Corporation.
//
// SPDX-License-Identifier: BSD-2-Clause-Patent
//

package ui_test

import (
	"testing"

	"github.com/pkg/errors"

	"github.com/daos-stack/go-nvme/common/test"
	"github.com/daos-stack/go-nvme/lib/ui"
)

func TestUI_ByteSizeFlag(t *testing.T) {
	for name, tc := range map[string]struct {
		input   string
		expSize uint64
		expStr  string
		expErr  error
	}{
		"empty": {
			expErr: errors.New("no size specified"),
		},
		"invalid": {
			input:  "horse",
			expErr: errors.New("invalid size"),
		},
		"plain bytes": {
			input:   "512",
			expSize: 512,
			expStr:  "512 B",
		},
		"binary suffix": {
			input:   "4KiB",
			expSize: 4096,
			expStr:  "4.0 KiB",
		},
		"decimal suffix": {
			input:   "1MB",
			expSize: 1000000,
			expStr:  "977 KiB",
		},
	} {
		t.Run(name, func(t *testing.T) {
			var f ui.ByteSizeFlag
			gotErr := f.UnmarshalFlag(tc.input)
			test.CmpErr(t, tc.expErr, gotErr)
			if tc.expErr != nil {
				test.AssertFalse(t, f.IsSet(), "flag set after error")
				return
			}

			test.AssertTrue(t, f.IsSet(), "flag not set")
			test.AssertEqual(t, tc.expSize, f.Bytes, "size")
			test.AssertEqual(t, tc.expStr, f.String(), "string")
		})
	}
}

func TestUI_ByteSizeFlag_Uint32(t *testing.T) {
	f := ui.ByteSizeFlag{Bytes: 1 << 32}
	if _, err := f.Uint32(); err == nil {
		t.Fatal("expected out of range error")
	}

	f.Bytes = 4096
	got, err := f.Uint32()
	if err != nil {
		t.Fatal(err)
	}
	test.AssertEqual(t, uint32(4096), got, "size")
}

func TestUI_NumberFlag(t *testing.T) {
	for name, tc := range map[string]struct {
		input     string
		expVal    uint64
		expErr    error
		expU8Err  bool
		expU16Err bool
		expU32Err bool
	}{
		"decimal": {
			input:  "200",
			expVal: 200,
		},
		"hex": {
			input:    "0x1ff",
			expVal:   0x1FF,
			expU8Err: true,
		},
		"octal": {
			input:  "010",
			expVal: 8,
		},
		"wide": {
			input:     "0x100000000",
			expVal:    1 << 32,
			expU8Err:  true,
			expU16Err: true,
			expU32Err: true,
		},
		"negative": {
			input:  "-1",
			expErr: errors.New("invalid number"),
		},
		"garbage": {
			input:  "0xzz",
			expErr: errors.New("invalid number"),
		},
	} {
		t.Run(name, func(t *testing.T) {
			var f ui.NumberFlag
			gotErr := f.UnmarshalFlag(tc.input)
			test.CmpErr(t, tc.expErr, gotErr)
			if tc.expErr != nil {
				return
			}

			test.AssertEqual(t, tc.expVal, f.Value, "value")

			_, err := f.Uint8()
			test.AssertEqual(t, tc.expU8Err, err != nil, "uint8 error")
			_, err = f.Uint16()
			test.AssertEqual(t, tc.expU16Err, err != nil, "uint16 error")
			_, err = f.Uint32()
			test.AssertEqual(t, tc.expU32Err, err != nil, "uint32 error")
		})
	}
}
