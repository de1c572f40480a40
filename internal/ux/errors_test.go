package ux

import (
	"errors"
	"strings"
	"testing"

	perrors "github.com/felixgeelhaar/smartplan/internal/errors"
)

func TestNewErrorWithSuggestion(t *testing.T) {
	if got := NewErrorWithSuggestion(nil, "anything"); got != nil {
		t.Errorf("NewErrorWithSuggestion(nil) = %v, want nil", got)
	}

	base := errors.New("test error")
	err := NewErrorWithSuggestion(base, "do this")
	if got, want := err.Error(), "test error\n\nSuggestion: do this"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, base) {
		t.Error("wrapped error should unwrap to the original")
	}

	if got := NewErrorWithSuggestion(base, "").Error(); got != "test error" {
		t.Errorf("Error() without suggestion = %q", got)
	}
}

func TestEnhanceError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantContains string
	}{
		{"port in use", errors.New("listen tcp :8000: bind: address already in use"), "--port"},
		{"permission denied", errors.New("open /etc/x: permission denied"), "permissions"},
		{"missing file", errors.New("open catalog.yaml: no such file or directory"), "config path"},
		{"connection refused", errors.New("dial tcp: connection refused"), "network"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EnhanceError(tt.err)
			if !strings.Contains(got.Error(), tt.wantContains) {
				t.Errorf("EnhanceError() = %q, want it to contain %q", got.Error(), tt.wantContains)
			}
			if !errors.Is(got, tt.err) {
				t.Error("enhanced error should wrap the original")
			}
		})
	}
}

func TestEnhanceErrorPassThrough(t *testing.T) {
	if EnhanceError(nil) != nil {
		t.Error("EnhanceError(nil) should be nil")
	}

	plain := errors.New("something else")
	if got := EnhanceError(plain); got != plain {
		t.Errorf("unrecognised errors should be returned unchanged, got %v", got)
	}

	pe := perrors.NewGoalTooShortError(3, 2)
	if got := EnhanceError(pe); got != error(pe) {
		t.Errorf("planner errors should be returned unchanged, got %v", got)
	}
}

func TestFormatError(t *testing.T) {
	if FormatError(nil, "ctx") != nil {
		t.Error("FormatError(nil) should be nil")
	}

	err := FormatError(errors.New("boom"), "load catalog")
	if got := err.Error(); got != "load catalog: boom" {
		t.Errorf("FormatError() = %q", got)
	}
	if got := FormatError(errors.New("boom"), "").Error(); got != "boom" {
		t.Errorf("FormatError() without context = %q", got)
	}
}
