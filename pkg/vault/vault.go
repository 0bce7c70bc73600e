package vault

import (
	"fmt"
	"os"
	"path/filepath"
)

const appName = "sx"

// Vault is the managed storage directory for sx
type Vault struct {
	RootPath   string
	InboxPath  string // captured page images arrive here
	TmpPath    string // transient normalized images
	OutputPath string // the current PDF and its manifest
	ConfigPath string
}

// New creates a new Vault instance with XDG-compliant paths
func New() (*Vault, error) {
	rootPath, rootErr := getVaultRoot()
	configPath, configErr := getConfigPath()
	if rootErr != nil {
		return nil, fmt.Errorf("failed to determine vault root: %w", rootErr)
	}
	if configErr != nil {
		return nil, fmt.Errorf("failed to determine config path: %w", configErr)
	}

	return NewAt(rootPath, configPath), nil
}

// NewAt creates a Vault rooted at an explicit directory
func NewAt(rootPath, configPath string) *Vault {
	return &Vault{
		RootPath:   rootPath,
		InboxPath:  filepath.Join(rootPath, "inbox"),
		TmpPath:    filepath.Join(rootPath, "tmp"),
		OutputPath: filepath.Join(rootPath, "output"),
		ConfigPath: configPath,
	}
}

// getVaultRoot returns the vault root directory path
// Follows XDG Base Directory specification on Unix and uses AppData on Windows
func getVaultRoot() (string, error) {
	if xdgDataHome := os.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
		return filepath.Join(xdgDataHome, appName), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	if appData := os.Getenv("APPDATA"); appData != "" {
		return filepath.Join(appData, appName), nil
	}

	return filepath.Join(homeDir, ".local", "share", appName), nil
}

func getConfigPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.yaml"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	if appData := os.Getenv("APPDATA"); appData != "" {
		return filepath.Join(appData, appName+"-config", "config.yaml"), nil
	}

	return filepath.Join(homeDir, ".config", appName, "config.yaml"), nil
}

// Initialize creates the vault directory structure if it doesn't exist
func (v *Vault) Initialize() error {
	directories := []string{
		v.RootPath,
		v.InboxPath,
		v.TmpPath,
		v.OutputPath,
	}

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// Exists checks if the vault has been initialized
func (v *Vault) Exists() bool {
	info, err := os.Stat(v.RootPath)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// GetInboxPath returns the full path for a captured image
func (v *Vault) GetInboxPath(filename string) string {
	return filepath.Join(v.InboxPath, filename)
}

// GetOutputPath returns the full path for a file in the output directory
func (v *Vault) GetOutputPath(filename string) string {
	return filepath.Join(v.OutputPath, filename)
}

// ManifestPath returns the path of the current artifact's manifest
func (v *Vault) ManifestPath() string {
	return filepath.Join(v.OutputPath, ".manifest.json")
}

// CleanTmp removes all transient files left behind by interrupted builds
func (v *Vault) CleanTmp() (int, error) {
	return cleanDir(v.TmpPath)
}

// CleanInbox removes all captured images
func (v *Vault) CleanInbox() (int, error) {
	return cleanDir(v.InboxPath)
}

func cleanDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	removed := 0
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", path, err)
		}
		removed++
	}

	return removed, nil
}
