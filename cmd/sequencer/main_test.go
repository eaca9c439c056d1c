// Copyright 2025 Certen Protocol
//
// Init Command Tests

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/radiusxyz/sequencer/pkg/config"
)

func TestInitCmd_WritesDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cmd := newInitCmd()
	cmd.SetArgs([]string{"--path", path})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	got, err := config.Load(path, nil)
	if err != nil {
		t.Fatalf("load written config: %v", err)
	}
	want := config.Default()
	if got.ClusterPort != want.ClusterPort || got.ExternalPort != want.ExternalPort {
		t.Errorf("got %+v, want default ports to match %+v", got, want)
	}
}

func TestInitCmd_RefusesToOverwriteExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("existing"), 0o644); err != nil {
		t.Fatalf("seed existing file: %v", err)
	}

	cmd := newInitCmd()
	cmd.SetArgs([]string{"--path", path})

	if err := cmd.Execute(); err == nil {
		t.Error("expected error when the target path already exists, got nil")
	}
}
