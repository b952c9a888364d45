package sysutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func TestSetLogLevel(t *testing.T) {
	prev := zerolog.GlobalLevel()
	defer zerolog.SetGlobalLevel(prev)

	cases := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"ERROR", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"panic", zerolog.PanicLevel},
		{"verbose", zerolog.InfoLevel},
		{"  Debug  ", zerolog.DebugLevel},
	}
	for _, tc := range cases {
		SetLogLevel(tc.in)
		if got := zerolog.GlobalLevel(); got != tc.want {
			t.Fatalf("SetLogLevel(%q): expected %v, got %v", tc.in, tc.want, got)
		}
	}
}

func TestEnsureDirs_CreatesNested(t *testing.T) {
	base := t.TempDir()
	a := filepath.Join(base, "uploads")
	b := filepath.Join(base, "nested", "outputs")

	if err := EnsureDirs(a, b); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	// Re-creating existing directories must be a no-op.
	if err := EnsureDirs(a, b); err != nil {
		t.Fatalf("expected idempotent EnsureDirs, got %v", err)
	}
}

func TestEnsureDirs_Error(t *testing.T) {
	base := t.TempDir()
	file := filepath.Join(base, "not-a-dir")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := EnsureDirs(filepath.Join(file, "child")); err == nil {
		t.Fatal("expected error creating directory under a regular file")
	}
}
