package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/kamal-hamza/sx-cli/internal/core/domain"
	"github.com/kamal-hamza/sx-cli/internal/core/services"
	"github.com/kamal-hamza/sx-cli/pkg/ui"
)

var watchQuiet bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild the PDF whenever the scan inbox changes",
	Long: `Watch the scan inbox and rebuild the current PDF when page images are
added, changed, removed or renamed.

Bursts of changes (a scanner writing several pages) are collapsed into a
single rebuild after watch_debounce_ms of quiet. A rebuild never overlaps
another one: changes arriving during a build trigger one more build after it.

Use --quiet to suppress rebuild notifications.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVarP(&watchQuiet, "quiet", "q", false, "Suppress rebuild notifications")
}

// isInboxImage reports whether a watcher event path is a page image
func isInboxImage(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "~") {
		return false
	}
	return domain.IsSupportedExtension(path)
}

// rebuilder collapses change notifications into serial rebuilds
type rebuilder struct {
	delay   time.Duration
	rebuild func()

	mu      sync.Mutex
	timer   *time.Timer
	running bool
	pending bool
}

func newRebuilder(delay time.Duration, rebuild func()) *rebuilder {
	return &rebuilder{delay: delay, rebuild: rebuild}
}

// Trigger schedules a rebuild after the debounce delay
func (r *rebuilder) Trigger() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.timer != nil {
		r.timer.Stop()
	}
	r.timer = time.AfterFunc(r.delay, r.fire)
}

// Stop cancels a scheduled rebuild
func (r *rebuilder) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.timer != nil {
		r.timer.Stop()
	}
}

func (r *rebuilder) fire() {
	r.mu.Lock()
	if r.running {
		r.pending = true
		r.mu.Unlock()
		return
	}
	r.running = true
	r.mu.Unlock()

	for {
		r.rebuild()

		r.mu.Lock()
		if !r.pending {
			r.running = false
			r.mu.Unlock()
			return
		}
		r.pending = false
		r.mu.Unlock()
	}
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := getContext()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(appVault.InboxPath); err != nil {
		return fmt.Errorf("failed to watch inbox: %w", err)
	}

	if !watchQuiet {
		fmt.Println(ui.FormatHighlight(ui.IconScan, "Watching for scans..."))
		fmt.Println(ui.FormatMuted("Inbox: " + appVault.InboxPath))
		fmt.Println(ui.FormatMuted("Press Ctrl+C to stop"))
		fmt.Println()
	}

	doRebuild := func() {
		captured, err := captureService.Execute(ctx, services.CaptureRequest{Quality: captureQuality(0)})
		if err != nil {
			appLogger.Error("capture failed", "error", err)
			return
		}
		if captured.Empty() {
			if !watchQuiet {
				fmt.Println(ui.FormatWarning("No Images"))
			}
			return
		}

		if !watchQuiet {
			fmt.Println(ui.FormatInfo(fmt.Sprintf("Inbox changed, creating PDF from %s...", pluralize(len(captured.Images), "image"))))
		}

		resp, err := buildService.Execute(ctx, services.BuildRequest{Images: captured.Images})
		switch {
		case errors.Is(err, domain.ErrAssemblyInProgress):
			appLogger.Info("build already running, skipping")
		case err != nil:
			if !watchQuiet {
				fmt.Println(ui.FormatError(domain.UserMessage(err)))
			}
			appLogger.Error("rebuild failed", "error", err)
		case !watchQuiet:
			fmt.Println(ui.FormatSuccess(fmt.Sprintf("PDF updated (%s, %s)",
				pluralize(resp.PageCount(), "page"), ui.FormatBytes(resp.Artifact.Size))))
		}
	}

	debounce := time.Duration(appConfig.WatchDebounceMS) * time.Millisecond
	rb := newRebuilder(debounce, doRebuild)
	defer rb.Stop()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if !isInboxImage(event.Name) {
				continue
			}

			if event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Write) ||
				event.Has(fsnotify.Remove) ||
				event.Has(fsnotify.Rename) {
				appLogger.Debug("inbox event", "path", event.Name, "op", event.Op.String())
				rb.Trigger()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			appLogger.Warn("watcher error", "error", err)

		case <-ctx.Done():
			if !watchQuiet {
				fmt.Println()
				fmt.Println(ui.FormatMuted("Stopped watching"))
			}
			return nil
		}
	}
}
