package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetConfigDefaults(t *testing.T) {
	config, err := getConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if config.Port != 8080 || config.ArchivePrefix != "x-archive-orig-" {
		t.Fatalf("Config is %+v", config)
	}
}

func TestGetConfigFile(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "config.yml")
	os.WriteFile(filename, []byte(`
port: 9090
db: memory
defaultOrigin: https://www.example.com
`), 0644)
	config, err := getConfig(filename)
	if err != nil {
		t.Fatal(err)
	}
	if config.Port != 9090 || config.DefaultOrigin != "https://www.example.com" {
		t.Fatalf("Config is %+v", config)
	}
	if config.ArchivePrefix != "x-archive-orig-" {
		t.Fatalf("Default archive prefix overwritten: %q", config.ArchivePrefix)
	}
	if config.dbFilename() != "" {
		t.Fatalf("DB file is %q", config.dbFilename())
	}
}

func TestGetConfigMissingFile(t *testing.T) {
	if _, err := getConfig(filepath.Join(t.TempDir(), "nope.yml")); err == nil {
		t.Fatal("Expected error")
	}
}
