package transfer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/atotto/clipboard"

	"github.com/kamal-hamza/sx-cli/internal/core/domain"
	"github.com/kamal-hamza/sx-cli/internal/core/ports"
)

// Opener launches an external program for a file
type Opener func(ctx context.Context, path string) error

// SystemTransferer shares a document by opening it with the desktop handler
// and saves it by copying it into a download directory.
type SystemTransferer struct {
	saveDir  string
	open     Opener
	copyPath bool
	logger   *slog.Logger

	mu        sync.Mutex
	lastSaved string
}

// NewSystemTransferer creates a transferer. viewer overrides the OS default
// handler; copyPath puts the resulting path on the clipboard.
func NewSystemTransferer(saveDir, viewer string, copyPath bool) *SystemTransferer {
	return &SystemTransferer{
		saveDir:  saveDir,
		open:     systemOpener(viewer),
		copyPath: copyPath,
		logger:   slog.Default(),
	}
}

// WithOpener replaces the program launcher
func (t *SystemTransferer) WithOpener(open Opener) *SystemTransferer {
	t.open = open
	return t
}

// WithLogger sets the logger
func (t *SystemTransferer) WithLogger(logger *slog.Logger) *SystemTransferer {
	if logger != nil {
		t.logger = logger
	}
	return t
}

// LastSaved returns where the most recent save put the document
func (t *SystemTransferer) LastSaved() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastSaved
}

func (t *SystemTransferer) Transfer(ctx context.Context, req ports.TransferRequest) error {
	if req.MimeType != "" && req.MimeType != domain.PDFMimeType {
		return fmt.Errorf("unsupported mime type %s", req.MimeType)
	}

	path := strings.TrimPrefix(req.URI, "file://")
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("document unavailable: %w", err)
	}

	target := path
	if req.ShareWithApps {
		if err := t.open(ctx, path); err != nil {
			return err
		}
	} else {
		saved, err := t.save(path)
		if err != nil {
			return err
		}
		target = saved
	}

	if t.copyPath {
		if err := clipboard.WriteAll(target); err != nil {
			// Headless sessions have no clipboard
			t.logger.Debug("clipboard unavailable", "error", err)
		}
	}

	return nil
}

func (t *SystemTransferer) save(path string) (string, error) {
	if t.saveDir == "" {
		return "", fmt.Errorf("no save directory configured")
	}
	if err := os.MkdirAll(t.saveDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", t.saveDir, err)
	}

	dest := availableName(t.saveDir, filepath.Base(path))
	if err := copyFile(path, dest); err != nil {
		_ = os.Remove(dest)
		return "", err
	}

	t.mu.Lock()
	t.lastSaved = dest
	t.mu.Unlock()

	t.logger.Info("document saved", "path", dest)
	return dest, nil
}

// availableName returns dir/name, or dir/name-N.ext if that is taken
func availableName(dir, name string) string {
	candidate := filepath.Join(dir, name)
	if _, err := os.Stat(candidate); os.IsNotExist(err) {
		return candidate
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 1; ; i++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s-%d%s", stem, i, ext))
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// systemOpener opens a file using a custom viewer or the OS default application
func systemOpener(viewer string) Opener {
	return func(ctx context.Context, path string) error {
		var cmd *exec.Cmd

		if viewer != "" {
			cmd = exec.Command(viewer, path)
		} else {
			switch runtime.GOOS {
			case "darwin":
				cmd = exec.Command("open", path)
			case "windows":
				cmd = exec.Command("cmd", "/c", "start", "", path)
			default:
				cmd = exec.Command("xdg-open", path)
			}
		}

		// Start detaches so sx can exit while the viewer stays open
		if err := cmd.Start(); err != nil {
			if viewer != "" {
				return fmt.Errorf("failed to open '%s' with '%s': %w", path, viewer, err)
			}
			return fmt.Errorf("failed to open '%s': %w", path, err)
		}
		return cmd.Process.Release()
	}
}

// Open shows a file in viewer, or the OS default application when viewer is empty
func Open(ctx context.Context, path, viewer string) error {
	return systemOpener(viewer)(ctx, path)
}
