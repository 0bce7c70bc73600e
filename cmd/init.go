package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/sx-cli/pkg/config"
	"github.com/kamal-hamza/sx-cli/pkg/ui"
	"github.com/kamal-hamza/sx-cli/pkg/vault"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the sx vault",
	Long: `Initialize the sx vault directory structure.

This creates the managed vault at ~/.local/share/sx/ with the following structure:
  - inbox/      : Captured page images, one file per page
  - tmp/        : Transient normalized images (removed after each build)
  - output/     : The current PDF and its layout manifest
  - config.yaml : Global configuration (under ~/.config/sx/)`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	v, err := vault.New()
	if err != nil {
		fmt.Println(ui.FormatError("Failed to determine vault location"))
		return err
	}

	if v.Exists() {
		fmt.Println(ui.FormatWarning("Vault already initialized"))
		fmt.Println(ui.FormatMuted("Location: " + v.RootPath))
		return nil
	}

	fmt.Println(ui.FormatHighlight(ui.IconScan, "Initializing sx vault..."))
	fmt.Println()

	if err := v.Initialize(); err != nil {
		fmt.Println(ui.FormatError("Failed to initialize vault"))
		return err
	}

	// Config is optional; a missing file means defaults
	if err := createDefaultConfig(v); err != nil {
		fmt.Println(ui.FormatWarning("Failed to create default config: " + err.Error()))
	} else {
		fmt.Println(ui.FormatSuccess("Default config created"))
	}

	fmt.Println()
	fmt.Println(ui.FormatSuccess("Vault initialized"))
	fmt.Println(ui.RenderKeyValue("Location", v.RootPath))
	fmt.Println(ui.RenderKeyValue("Inbox", v.InboxPath))
	fmt.Println(ui.RenderKeyValue("Config", v.ConfigPath))
	fmt.Println()
	fmt.Println(ui.FormatInfo("Drop page images into the inbox, then run 'sx build'"))

	return nil
}

func createDefaultConfig(v *vault.Vault) error {
	if _, err := os.Stat(v.ConfigPath); err == nil {
		return nil
	}
	return config.DefaultConfig().Save(v.ConfigPath)
}
