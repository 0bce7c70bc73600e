package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/sx-cli/pkg/ui"
)

var saveCmd = &cobra.Command{
	Use:     "save",
	Aliases: []string{"download"},
	Short:   "Save a copy of the current PDF (alias: download)",
	Long: `Copy the current PDF into the save directory (save_dir, ~/Downloads by default).

An existing file is never overwritten: a numbered name such as
scannedDocument-1.pdf is used instead.`,
	RunE: runSave,
}

func runSave(cmd *cobra.Command, args []string) error {
	if _, err := transferService.Save(getContext()); err != nil {
		return userFacing(err)
	}

	fmt.Println(ui.FormatSuccess("PDF saved"))
	if saved := transferer.LastSaved(); saved != "" {
		fmt.Println(ui.RenderKeyValue("Path", saved))
	}
	return nil
}
