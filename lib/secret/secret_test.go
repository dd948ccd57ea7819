// Copyright 2026 The Visamark Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"os"
	"path/filepath"
	"testing"
)

func TestZero(t *testing.T) {
	data := []byte("hunter2")
	Zero(data)
	for i, b := range data {
		if b != 0 {
			t.Fatalf("byte %d not zeroed: %v", i, data)
		}
	}
	Zero(nil) // must not panic
}

func TestReadFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "password")
	if err := os.WriteFile(path, []byte("  s3cret\n"), 0o600); err != nil {
		t.Fatalf("writing secret file: %v", err)
	}

	value, err := ReadFromPath(path)
	if err != nil {
		t.Fatalf("ReadFromPath failed: %v", err)
	}
	if value != "s3cret" {
		t.Errorf("value = %q, want whitespace trimmed", value)
	}
}

func TestReadFromPathEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "password")
	if err := os.WriteFile(path, []byte("  \n"), 0o600); err != nil {
		t.Fatalf("writing secret file: %v", err)
	}
	if _, err := ReadFromPath(path); err == nil {
		t.Error("expected error for a whitespace-only file")
	}
}

func TestReadFromPathMissing(t *testing.T) {
	if _, err := ReadFromPath(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Error("expected error for a missing file")
	}
}
