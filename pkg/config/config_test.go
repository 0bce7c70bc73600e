package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig() returned nil")
	}
	if cfg.PageSize != "A4" {
		t.Errorf("expected default PageSize='A4', got %q", cfg.PageSize)
	}
	if cfg.MaxDimension != 800 {
		t.Errorf("expected default MaxDimension=800, got %d", cfg.MaxDimension)
	}
	if cfg.JPEGQuality != 80 {
		t.Errorf("expected default JPEGQuality=80, got %d", cfg.JPEGQuality)
	}
	if cfg.CropQuality != 100 {
		t.Errorf("expected default CropQuality=100, got %d", cfg.CropQuality)
	}
	if cfg.DocumentName != "scannedDocument.pdf" {
		t.Errorf("expected default DocumentName, got %q", cfg.DocumentName)
	}
}

func TestLoad_NonExistentFile(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("unexpected error loading non-existent file: %v", err)
	}
	if cfg.MaxDimension != 800 {
		t.Errorf("expected default MaxDimension=800, got %d", cfg.MaxDimension)
	}
}

func TestSave_And_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.PageSize = "Letter"
	cfg.MaxDimension = 1200
	cfg.PDFViewer = "zathura"
	cfg.AutoCopyPath = false

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if loaded.PageSize != "Letter" {
		t.Errorf("PageSize = %q", loaded.PageSize)
	}
	if loaded.MaxDimension != 1200 {
		t.Errorf("MaxDimension = %d", loaded.MaxDimension)
	}
	if loaded.PDFViewer != "zathura" {
		t.Errorf("PDFViewer = %q", loaded.PDFViewer)
	}
	if loaded.AutoCopyPath {
		t.Error("AutoCopyPath should stay false")
	}
}

func TestLoad_BackfillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "page_size: \"\"\nmax_dimension: -5\njpeg_quality: 150\nlog_format: xml\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.PageSize != "A4" {
		t.Errorf("PageSize = %q, want A4", cfg.PageSize)
	}
	if cfg.MaxDimension != 800 {
		t.Errorf("MaxDimension = %d, want 800", cfg.MaxDimension)
	}
	if cfg.JPEGQuality != 80 {
		t.Errorf("JPEGQuality = %d, want 80", cfg.JPEGQuality)
	}
	if cfg.LogFormat != "text" {
		t.Errorf("LogFormat = %q, want text", cfg.LogFormat)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("page_size: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestConfig_SetAndGet(t *testing.T) {
	tests := []struct {
		key     string
		value   string
		want    string
		wantErr bool
	}{
		{"page_size", "Letter", "Letter", false},
		{"max_dimension", "1024", "1024", false},
		{"max_dimension", "0", "", true},
		{"jpeg_quality", "95", "95", false},
		{"jpeg_quality", "101", "", true},
		{"crop_quality", "abc", "", true},
		{"auto_copy_path", "false", "false", false},
		{"log_level", "DEBUG", "debug", false},
		{"log_level", "loud", "", true},
		{"log_format", "json", "json", false},
		{"watch_debounce_ms", "250", "250", false},
		{"no_such_key", "x", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			cfg := DefaultConfig()
			err := cfg.Set(tt.key, tt.value)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			got, err := cfg.Get(tt.key)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Get(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestConfig_Keys(t *testing.T) {
	keys := DefaultConfig().Keys()
	if len(keys) != 12 {
		t.Errorf("expected 12 keys, got %d", len(keys))
	}
	for i := 1; i < len(keys); i++ {
		if keys[i-1] > keys[i] {
			t.Errorf("keys not sorted: %v", keys)
		}
	}
}
