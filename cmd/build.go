package cmd

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	fuzzyfinder "github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"

	"github.com/kamal-hamza/sx-cli/internal/adapters/capture"
	"github.com/kamal-hamza/sx-cli/internal/core/domain"
	"github.com/kamal-hamza/sx-cli/internal/core/services"
	"github.com/kamal-hamza/sx-cli/pkg/ui"
)

var (
	buildPick    bool
	buildQuality int
	buildQuiet   bool
	buildOpen    bool
)

var buildCmd = &cobra.Command{
	Use:   "build [images...]",
	Short: "Create a PDF from the captured images",
	Long: `Create a PDF with one page per captured image.

Every image is scaled to fit the configured page size (A4 by default)
without cropping or distortion, and centered on its page. The new PDF
replaces the current one.

With no arguments, every image in the scan inbox is used in name order.
Explicit paths are used in the order given.

Examples:
  sx build                       # All images in the inbox
  sx build p1.jpg p2.png         # These two images, in this order
  sx build --pick                # Choose images from the inbox
  sx build --open                # Open the PDF when done`,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().BoolVarP(&buildPick, "pick", "p", false, "Choose images from the inbox interactively")
	buildCmd.Flags().IntVarP(&buildQuality, "quality", "q", 0, "Capture quality 1-100 (default from config)")
	buildCmd.Flags().BoolVar(&buildQuiet, "quiet", false, "Do not show build progress")
	buildCmd.Flags().BoolVarP(&buildOpen, "open", "o", false, "Open the PDF after building")
}

func runBuild(cmd *cobra.Command, args []string) error {
	ctx := getContext()

	images, err := collectImages(args)
	if err != nil {
		return err
	}
	if images == nil {
		// Selection aborted
		return nil
	}

	var resp *services.BuildResponse
	if buildQuiet {
		resp, err = buildService.Execute(ctx, services.BuildRequest{Images: images})
	} else {
		resp, err = runBuildWithProgress(ctx, buildService, images)
	}
	if err != nil {
		return userFacing(err)
	}

	printBuildResult(resp)

	if buildOpen {
		if _, err := transferService.Share(ctx); err != nil {
			return userFacing(err)
		}
	}

	return nil
}

// collectImages resolves the images to build from arguments, the picker
// or the whole inbox. A nil slice means the user aborted the picker.
func collectImages(args []string) ([]domain.SourceImage, error) {
	ctx := getContext()
	quality := captureQuality(buildQuality)

	svc := captureService
	if len(args) > 0 {
		paths, err := absolutePaths(args)
		if err != nil {
			return nil, err
		}
		svc = services.NewCaptureService(capture.NewInboxCapturer(appVault.InboxPath).WithPaths(paths).WithLogger(appLogger))
	}

	resp, err := svc.Execute(ctx, services.CaptureRequest{Quality: quality})
	if err != nil {
		return nil, err
	}

	if !buildPick || resp.Empty() {
		return nonNil(resp.Images), nil
	}

	return pickImages(resp.Images)
}

func pickImages(images []domain.SourceImage) ([]domain.SourceImage, error) {
	idxs, err := fuzzyfinder.FindMulti(
		images,
		func(i int) string { return images[i].Name() },
		fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i == -1 {
				return ""
			}
			return imagePreview(images[i])
		}),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return nil, nil
		}
		return nil, err
	}

	// Pages follow inbox order, not selection order
	sort.Ints(idxs)

	selected := make([]domain.SourceImage, len(idxs))
	for i, idx := range idxs {
		selected[i] = images[idx]
	}
	return selected, nil
}

func imagePreview(img domain.SourceImage) string {
	preview := fmt.Sprintf("Page image\n\nName: %s\nPath: %s", img.Name(), img.Path)
	if format, err := domain.FormatFromPath(img.Path); err == nil {
		preview += "\nType: " + format.MimeType()
	}
	if info, err := os.Stat(img.Path); err == nil {
		preview += "\nSize: " + ui.FormatBytes(info.Size())
		preview += "\nModified: " + info.ModTime().Format(time.DateTime)
	}
	return preview
}

// nonNil keeps an empty capture distinct from an aborted selection
func nonNil(images []domain.SourceImage) []domain.SourceImage {
	if images == nil {
		return []domain.SourceImage{}
	}
	return images
}

func printBuildResult(resp *services.BuildResponse) {
	fmt.Println(ui.FormatSuccess(fmt.Sprintf("PDF created (%s)", pluralize(resp.PageCount(), "page"))))
	fmt.Println()
	fmt.Println(ui.RenderKeyValue("Path", resp.Artifact.Path))
	fmt.Println(ui.RenderKeyValue("Size", ui.FormatBytes(resp.Artifact.Size)))
	fmt.Println(ui.RenderKeyValue("Page size", resp.Document.Size.String()))
	fmt.Println(ui.RenderKeyValue("Time", resp.Duration.Round(time.Millisecond).String()))
	fmt.Println()
	fmt.Println(ui.FormatMuted("Run 'sx share' or 'sx save' to send it on"))
}
