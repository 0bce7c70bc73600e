package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/sx-cli/pkg/ui"
)

var (
	cleanInbox bool
	cleanAll   bool
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove transient files, captured images or the current PDF",
	Long: `Remove leftovers from interrupted builds.

Builds delete their transient files as they go; an interrupted build can
leave some behind in tmp/. By default only those are removed.

Examples:
  sx clean           # Remove transient files
  sx clean --inbox   # Also remove every captured image
  sx clean --all     # Also remove the current PDF and its layout record`,
	RunE: runClean,
}

func init() {
	cleanCmd.Flags().BoolVar(&cleanInbox, "inbox", false, "Also remove captured images from the inbox")
	cleanCmd.Flags().BoolVar(&cleanAll, "all", false, "Also remove the current PDF")
}

func runClean(cmd *cobra.Command, args []string) error {
	ctx := getContext()

	fmt.Print(ui.StyleWarning.Render("Cleaning transient files... "))
	n, err := appVault.CleanTmp()
	if err != nil {
		fmt.Println(ui.FormatError("Failed"))
		return err
	}
	fmt.Println(ui.FormatSuccess(fmt.Sprintf("Done (%s)", pluralize(n, "file"))))

	if cleanInbox {
		fmt.Print(ui.StyleWarning.Render("Cleaning inbox... "))
		n, err := appVault.CleanInbox()
		if err != nil {
			fmt.Println(ui.FormatError("Failed"))
			return err
		}
		fmt.Println(ui.FormatSuccess(fmt.Sprintf("Done (%s)", pluralize(n, "image"))))
	}

	if cleanAll {
		fmt.Print(ui.StyleWarning.Render("Removing current PDF... "))
		if err := artifactStore.Clear(ctx); err != nil {
			fmt.Println(ui.FormatError("Failed"))
			return err
		}
		if err := manifestRepo.Delete(ctx); err != nil {
			fmt.Println(ui.FormatError("Failed"))
			return err
		}
		session.Clear()
		fmt.Println(ui.FormatSuccess("Done"))
	}

	return nil
}
