// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"strings"
	"testing"
)

func TestFormatError(t *testing.T) {
	t.Parallel()

	if err := FormatError(nil, "manifest.json"); err != nil {
		t.Errorf("FormatError(nil) = %v, want nil", err)
	}

	plain := errors.New("disk on fire")
	err := FormatError(plain, "manifest.json")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "manifest.json") || !strings.Contains(err.Error(), "disk on fire") {
		t.Errorf("unexpected message: %v", err)
	}
	if !errors.Is(err, plain) {
		t.Error("non-CUE errors must stay wrapped")
	}
}

func TestFormatPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		path     []string
		expected string
	}{
		{"empty", nil, ""},
		{"single", []string{"header"}, "header"},
		{"nested", []string{"header", "uuid"}, "header.uuid"},
		{"index", []string{"modules", "0", "type"}, "modules[0].type"},
		{"trailing index", []string{"header", "version", "2"}, "header.version[2]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := formatPath(tt.path); got != tt.expected {
				t.Errorf("formatPath(%v) = %q, want %q", tt.path, got, tt.expected)
			}
		})
	}
}

func TestCheckFileSize(t *testing.T) {
	t.Parallel()

	if err := CheckFileSize(make([]byte, 100), 100, "manifest.json"); err != nil {
		t.Errorf("at limit: %v", err)
	}
	if err := CheckFileSize(nil, 100, "manifest.json"); err != nil {
		t.Errorf("empty: %v", err)
	}

	err := CheckFileSize(make([]byte, 101), 100, "manifest.json")
	if err == nil {
		t.Fatal("expected error over limit")
	}
	for _, want := range []string{"manifest.json", "101", "100"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q should mention %q", err, want)
		}
	}
}
