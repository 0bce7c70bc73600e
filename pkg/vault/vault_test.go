package vault

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewAt_Layout(t *testing.T) {
	v := NewAt("/data/sx", "/cfg/sx/config.yaml")

	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"inbox", v.InboxPath, "/data/sx/inbox"},
		{"tmp", v.TmpPath, "/data/sx/tmp"},
		{"output", v.OutputPath, "/data/sx/output"},
		{"manifest", v.ManifestPath(), "/data/sx/output/.manifest.json"},
		{"inbox file", v.GetInboxPath("page-001.jpg"), "/data/sx/inbox/page-001.jpg"},
		{"output file", v.GetOutputPath("scannedDocument.pdf"), "/data/sx/output/scannedDocument.pdf"},
		{"config", v.ConfigPath, "/cfg/sx/config.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("got %q, want %q", tt.got, tt.expected)
			}
		})
	}
}

func TestNew_XDG(t *testing.T) {
	dataHome := t.TempDir()
	configHome := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dataHome)
	t.Setenv("XDG_CONFIG_HOME", configHome)

	v, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if v.RootPath != filepath.Join(dataHome, "sx") {
		t.Errorf("RootPath = %s", v.RootPath)
	}
	if v.ConfigPath != filepath.Join(configHome, "sx", "config.yaml") {
		t.Errorf("ConfigPath = %s", v.ConfigPath)
	}
}

func TestVault_InitializeAndClean(t *testing.T) {
	root := filepath.Join(t.TempDir(), "vault")
	v := NewAt(root, filepath.Join(root, "config.yaml"))

	if v.Exists() {
		t.Fatal("vault should not exist yet")
	}
	if err := v.Initialize(); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if !v.Exists() {
		t.Fatal("vault should exist after Initialize")
	}

	for _, dir := range []string{v.InboxPath, v.TmpPath, v.OutputPath} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Errorf("expected directory %s", dir)
		}
	}

	for _, name := range []string{"norm-1.jpg", "norm-2.png"} {
		if err := os.WriteFile(filepath.Join(v.TmpPath, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	removed, err := v.CleanTmp()
	if err != nil {
		t.Fatalf("CleanTmp() error = %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}
	entries, _ := os.ReadDir(v.TmpPath)
	if len(entries) != 0 {
		t.Errorf("tmp still has %d entries", len(entries))
	}

	// Cleaning a missing directory is a no-op
	missing := NewAt(filepath.Join(t.TempDir(), "nope"), "")
	if n, err := missing.CleanInbox(); err != nil || n != 0 {
		t.Errorf("CleanInbox() on missing dir = %d, %v", n, err)
	}
}
