package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/sx-cli/pkg/ui"
)

var shareCmd = &cobra.Command{
	Use:   "share",
	Short: "Share the current PDF with another application",
	Long: `Hand the current PDF to the system's document handler.

The PDF opens in the configured viewer (pdf_viewer), or in the default
application for PDFs when none is set. When auto_copy_path is on, the
document path is also copied to the clipboard.

Run 'sx build' first; without a PDF there is nothing to share.`,
	RunE: runShare,
}

func runShare(cmd *cobra.Command, args []string) error {
	resp, err := transferService.Share(getContext())
	if err != nil {
		return userFacing(err)
	}

	fmt.Println(ui.FormatHighlight(ui.IconShare, "Shared "+resp.Artifact.Path))
	return nil
}
