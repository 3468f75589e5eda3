package api

import (
	"errors"
	"fmt"
	"testing"

	"github.com/xraph/accessmatrix"
)

func TestMapErrorPassThrough(t *testing.T) {
	if mapError(nil) != nil {
		t.Fatal("nil must map to nil")
	}

	cause := errors.New("connection reset")
	dirErr := fmt.Errorf("%w: %w", accessmatrix.ErrDirectoryUnavailable, cause)
	if got := mapError(dirErr); got != dirErr {
		t.Fatalf("directory errors must pass through, got %v", got)
	}

	other := errors.New("boom")
	if got := mapError(other); got != other {
		t.Fatalf("unknown errors must pass through, got %v", got)
	}
}

func TestMapErrorTranslatesDomainErrors(t *testing.T) {
	for _, sentinel := range []error{
		accessmatrix.ErrValidation,
		accessmatrix.ErrInvalidSubjectType,
		accessmatrix.ErrSubjectNotFound,
		accessmatrix.ErrAmbiguousSubject,
		accessmatrix.ErrRuleNotFound,
	} {
		err := fmt.Errorf("%w: detail", sentinel)
		got := mapError(err)
		if got == nil || got == err {
			t.Fatalf("%v: expected an HTTP error, got %v", sentinel, got)
		}
	}
}

func TestIsBadInput(t *testing.T) {
	if !isBadInput(fmt.Errorf("%w: module is required", accessmatrix.ErrValidation)) {
		t.Fatal("validation errors are bad input")
	}
	if isBadInput(accessmatrix.ErrRuleNotFound) {
		t.Fatal("missing rules are not bad input")
	}
	if isBadInput(accessmatrix.ErrDirectoryUnavailable) {
		t.Fatal("directory failures are not bad input")
	}
}

func TestParseRuleID(t *testing.T) {
	cases := []struct {
		raw  string
		want int64
		ok   bool
	}{
		{"1", 1, true},
		{"9007199254740993", 9007199254740993, true},
		{"0", 0, false},
		{"-3", 0, false},
		{"abc", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := parseRuleID(tc.raw)
		if (err == nil) != tc.ok {
			t.Fatalf("parseRuleID(%q): err = %v, want ok=%v", tc.raw, err, tc.ok)
		}
		if got != tc.want {
			t.Fatalf("parseRuleID(%q) = %d, want %d", tc.raw, got, tc.want)
		}
	}
}
