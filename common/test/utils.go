//
// (C) Copyright 2018-2025 Intel Corporation.
//
// SPDX-License-Identifier: BSD-2-Clause-Patent
//

// Package test contains helpers shared by the unit tests of this module.
package test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// AssertTrue asserts b is true
func AssertTrue(t *testing.T, b bool, message string) {
	t.Helper()

	if !b {
		t.Fatal(message)
	}
}

// AssertFalse asserts b is false
func AssertFalse(t *testing.T, b bool, message string) {
	t.Helper()

	if b {
		t.Fatal(message)
	}
}

// AssertEqual asserts b is equal to a, printing a diff on mismatch.
func AssertEqual(t *testing.T, a, b interface{}, message string, opts ...cmp.Option) {
	t.Helper()

	if diff := cmp.Diff(a, b, opts...); diff != "" {
		if len(message) > 0 {
			message += ", "
		}
		t.Fatalf("%s(-want, +got):\n%s", message, diff)
	}
}

// CmpErrBool compares two errors and returns false if
// one is nil and the other isn't, or if their messages
// don't match.
func CmpErrBool(want, got error) bool {
	if want == got {
		return true
	}
	if want == nil || got == nil {
		return false
	}
	return strings.Contains(got.Error(), want.Error())
}

// CmpErr compares two errors for equality or at least close similarity in their messages.
func CmpErr(t *testing.T, want, got error) {
	t.Helper()

	if !CmpErrBool(want, got) {
		t.Fatalf("unexpected error\n(wanted: %v, got: %v)", want, got)
	}
}

// ShowBufferOnFailure displays captured output on test failure. Should be
// deferred with the call, e.g. defer ShowBufferOnFailure(t, buf)().
func ShowBufferOnFailure(t *testing.T, buf interface{ String() string }) func() {
	return func() {
		t.Helper()

		if t.Failed() {
			t.Logf("captured log output:\n%s", buf.String())
		}
	}
}
