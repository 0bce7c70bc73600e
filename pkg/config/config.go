package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Layout
	PageSize     string `yaml:"page_size"`
	MaxDimension int    `yaml:"max_dimension"`
	JPEGQuality  int    `yaml:"jpeg_quality"`
	CropQuality  int    `yaml:"crop_quality"`

	// Output
	DocumentName string `yaml:"document_name"`
	SaveDir      string `yaml:"save_dir"`
	PDFViewer    string `yaml:"pdf_viewer"`
	AutoCopyPath bool   `yaml:"auto_copy_path"`

	// Logging
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// UI Settings
	ColorTheme string `yaml:"color_theme"`

	// Performance
	WatchDebounceMS int `yaml:"watch_debounce_ms"`
}

// DefaultConfig returns a Config struct with default values
func DefaultConfig() *Config {
	return &Config{
		PageSize:        "A4",
		MaxDimension:    800,
		JPEGQuality:     80,
		CropQuality:     100,
		DocumentName:    "scannedDocument.pdf",
		SaveDir:         defaultSaveDir(),
		PDFViewer:       "",
		AutoCopyPath:    true,
		LogLevel:        "warn",
		LogFormat:       "text",
		ColorTheme:      "auto",
		WatchDebounceMS: 500,
	}
}

func defaultSaveDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, "Downloads")
}

// Load reads configuration from the specified file path
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		// A missing file means defaults
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

// applyDefaults back-fills values that are missing or out of range
func (c *Config) applyDefaults() {
	d := DefaultConfig()

	if c.PageSize == "" {
		c.PageSize = d.PageSize
	}
	if c.MaxDimension <= 0 {
		c.MaxDimension = d.MaxDimension
	}
	if c.JPEGQuality <= 0 || c.JPEGQuality > 100 {
		c.JPEGQuality = d.JPEGQuality
	}
	if c.CropQuality <= 0 || c.CropQuality > 100 {
		c.CropQuality = d.CropQuality
	}
	if c.DocumentName == "" {
		c.DocumentName = d.DocumentName
	}
	if c.SaveDir == "" {
		c.SaveDir = d.SaveDir
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		c.LogFormat = d.LogFormat
	}
	if c.ColorTheme == "" {
		c.ColorTheme = d.ColorTheme
	}
	if c.WatchDebounceMS <= 0 {
		c.WatchDebounceMS = d.WatchDebounceMS
	}
}

// Save persists the current configuration to the specified file path
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Values returns every key with its current value, as written in YAML
func (c *Config) Values() map[string]string {
	return map[string]string{
		"page_size":         c.PageSize,
		"max_dimension":     strconv.Itoa(c.MaxDimension),
		"jpeg_quality":      strconv.Itoa(c.JPEGQuality),
		"crop_quality":      strconv.Itoa(c.CropQuality),
		"document_name":     c.DocumentName,
		"save_dir":          c.SaveDir,
		"pdf_viewer":        c.PDFViewer,
		"auto_copy_path":    strconv.FormatBool(c.AutoCopyPath),
		"log_level":         c.LogLevel,
		"log_format":        c.LogFormat,
		"color_theme":       c.ColorTheme,
		"watch_debounce_ms": strconv.Itoa(c.WatchDebounceMS),
	}
}

// Keys returns the configuration keys in sorted order
func (c *Config) Keys() []string {
	values := c.Values()
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the value of a key
func (c *Config) Get(key string) (string, error) {
	v, ok := c.Values()[key]
	if !ok {
		return "", fmt.Errorf("unknown config key %q", key)
	}
	return v, nil
}

// Set parses and assigns value to key
func (c *Config) Set(key, value string) error {
	value = strings.TrimSpace(value)

	switch key {
	case "page_size":
		c.PageSize = value
	case "document_name":
		c.DocumentName = value
	case "save_dir":
		c.SaveDir = value
	case "pdf_viewer":
		c.PDFViewer = value
	case "color_theme":
		c.ColorTheme = value
	case "log_level":
		switch strings.ToLower(value) {
		case "debug", "info", "warn", "error":
			c.LogLevel = strings.ToLower(value)
		default:
			return fmt.Errorf("log_level must be debug, info, warn or error")
		}
	case "log_format":
		if value != "text" && value != "json" {
			return fmt.Errorf("log_format must be text or json")
		}
		c.LogFormat = value
	case "auto_copy_path":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s must be true or false", key)
		}
		c.AutoCopyPath = b
	case "max_dimension", "watch_debounce_ms":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("%s must be a positive integer", key)
		}
		if key == "max_dimension" {
			c.MaxDimension = n
		} else {
			c.WatchDebounceMS = n
		}
	case "jpeg_quality", "crop_quality":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 || n > 100 {
			return fmt.Errorf("%s must be between 1 and 100", key)
		}
		if key == "jpeg_quality" {
			c.JPEGQuality = n
		} else {
			c.CropQuality = n
		}
	default:
		return fmt.Errorf("unknown config key %q", key)
	}

	return nil
}
