package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/sx-cli/internal/adapters/pdf"
	"github.com/kamal-hamza/sx-cli/pkg/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change the sx configuration",
	Long: `Show or change the sx configuration file.

Examples:
  sx config                        # List every key
  sx config get page_size
  sx config set page_size Letter
  sx config sizes                  # Page sizes page_size accepts`,
	RunE: runConfigList,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := appConfig.Get(args[0])
		if err != nil {
			return err
		}
		fmt.Println(value)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one configuration value",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configSizesCmd = &cobra.Command{
	Use:   "sizes",
	Short: "List the page sizes page_size accepts",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Print(ui.RenderList(pdf.PageSizeNames()))
	},
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configSizesCmd)
}

func runConfigList(cmd *cobra.Command, args []string) error {
	fmt.Println(ui.FormatTitle("Configuration"))
	fmt.Println(ui.FormatMuted(appVault.ConfigPath))
	fmt.Println()

	values := appConfig.Values()
	for _, key := range appConfig.Keys() {
		value := values[key]
		if value == "" {
			value = ui.FormatMuted("(unset)")
		}
		fmt.Println(ui.RenderKeyValue(key, value))
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	if key == "page_size" {
		if _, err := pdf.PageSizeByName(value); err != nil {
			return fmt.Errorf("%w (see 'sx config sizes')", err)
		}
	}

	if err := appConfig.Set(key, value); err != nil {
		return err
	}
	if err := appConfig.Save(appVault.ConfigPath); err != nil {
		return err
	}

	fmt.Println(ui.FormatSuccess(fmt.Sprintf("%s set to %s", key, value)))
	return nil
}
