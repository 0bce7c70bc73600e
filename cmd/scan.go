package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/sx-cli/internal/core/domain"
	"github.com/kamal-hamza/sx-cli/internal/core/services"
	"github.com/kamal-hamza/sx-cli/pkg/ui"
)

var (
	scanQuality int
	scanAll     bool
)

// scanCmd lists the captured page images waiting in the inbox
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Show the captured page images",
	Long: `Show the page images waiting in the scan inbox, in page order.

Images are taken in name order, so "page-01.jpg" comes before "page-02.jpg".
Only .jpg, .jpeg and .png files are picked up.

Examples:
  sx scan          # First image and a count of the rest
  sx scan --all    # Every captured image`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().IntVarP(&scanQuality, "quality", "q", 0, "Capture quality 1-100 (default from config)")
	scanCmd.Flags().BoolVarP(&scanAll, "all", "a", false, "List every captured image")
}

func runScan(cmd *cobra.Command, args []string) error {
	resp, err := captureService.Execute(getContext(), services.CaptureRequest{Quality: captureQuality(scanQuality)})
	if err != nil {
		return err
	}

	if resp.Empty() {
		fmt.Println(ui.FormatWarning("No Images"))
		fmt.Println(ui.FormatMuted("Drop page images into " + appVault.InboxPath))
		return nil
	}

	fmt.Println(ui.FormatTitle(fmt.Sprintf("%s Scanned %s", ui.IconScan, pluralize(len(resp.Images), "image"))))
	fmt.Println()
	fmt.Print(scanSummary(resp.Images, scanAll))

	return nil
}

// scanSummary lists the first image and a "+N more" line, or all of them
func scanSummary(images []domain.SourceImage, all bool) string {
	if len(images) == 0 {
		return ""
	}

	if all {
		items := make([]string, len(images))
		for i, img := range images {
			items[i] = fmt.Sprintf("%3d  %s", i+1, img.Name())
		}
		return ui.RenderList(items)
	}

	out := ui.RenderList([]string{fmt.Sprintf("%3d  %s", 1, images[0].Name())})
	if rest := len(images) - 1; rest > 0 {
		out += ui.FormatMuted(fmt.Sprintf("    +%d more", rest)) + "\n"
	}
	return out
}

// captureQuality returns the flag value, or the configured crop quality
func captureQuality(flag int) int {
	if flag != 0 {
		return flag
	}
	if appConfig != nil {
		return appConfig.CropQuality
	}
	return services.DefaultCropQuality
}
