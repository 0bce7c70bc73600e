package capture

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/kamal-hamza/sx-cli/internal/core/domain"
	"github.com/kamal-hamza/sx-cli/internal/core/ports"
)

// InboxCapturer treats a directory as the capture facility: a scanner app or
// a phone sync drops cropped page images there.
type InboxCapturer struct {
	dir    string
	paths  []string
	logger *slog.Logger
}

// NewInboxCapturer creates a capturer reading dir
func NewInboxCapturer(dir string) *InboxCapturer {
	return &InboxCapturer{dir: dir, logger: slog.Default()}
}

// WithPaths makes Capture return exactly these files, in this order,
// instead of listing the inbox.
func (c *InboxCapturer) WithPaths(paths []string) *InboxCapturer {
	copied := make([]string, len(paths))
	copy(copied, paths)
	return &InboxCapturer{dir: c.dir, paths: copied, logger: c.logger}
}

// WithLogger sets the logger
func (c *InboxCapturer) WithLogger(logger *slog.Logger) *InboxCapturer {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// Capture lists captured images. Inbox files are ordered by filename, skip
// hidden files and anything outside the image allow-list. Explicit paths are
// passed through untouched so unsupported ones surface during assembly.
func (c *InboxCapturer) Capture(ctx context.Context, req ports.CaptureRequest) ([]domain.SourceImage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(c.paths) > 0 {
		images := make([]domain.SourceImage, 0, len(c.paths))
		for _, p := range c.paths {
			abs, err := filepath.Abs(p)
			if err != nil {
				return nil, fmt.Errorf("invalid path %s: %w", p, err)
			}
			images = append(images, domain.NewSourceImage(abs))
		}
		return images, nil
	}

	// os.ReadDir returns entries sorted by filename
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read inbox: %w", err)
	}

	var images []domain.SourceImage
	skipped := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if !domain.IsSupportedExtension(name) {
			skipped++
			continue
		}
		images = append(images, domain.NewSourceImage(filepath.Join(c.dir, name)))
	}

	c.logger.Debug("inbox listed", "dir", c.dir, "images", len(images), "skipped", skipped, "quality", req.Quality)
	return images, nil
}
