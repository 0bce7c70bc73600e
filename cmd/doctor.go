package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/kamal-hamza/sx-cli/internal/adapters/pdf"
	"github.com/kamal-hamza/sx-cli/pkg/ui"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the health of your sx installation",
	Long: `Diagnose issues with your SX setup.

Checks for:
  - Vault directory integrity
  - Configuration file and page size
  - A program to share PDFs with
  - Clipboard access
  - Leftover transient files`,
	Run: runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) {
	fmt.Println(ui.FormatTitle("🏥 SX Doctor"))
	fmt.Println()

	// 1. Vault structure
	checkStep("Vault Directory", func() error {
		if !appVault.Exists() {
			return fmt.Errorf("not found at %s", appVault.RootPath)
		}
		return nil
	})

	for name, dir := range map[string]string{
		"Inbox Directory":  appVault.InboxPath,
		"Output Directory": appVault.OutputPath,
	} {
		checkStep(name, func() error {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				return fmt.Errorf("missing at %s", dir)
			}
			return nil
		})
	}

	checkStep("Transient Files", func() error {
		entries, err := os.ReadDir(appVault.TmpPath)
		if err != nil && !os.IsNotExist(err) {
			return err
		}
		if len(entries) > 0 {
			return fmt.Errorf("%s left by an interrupted build (run 'sx clean')", pluralize(len(entries), "file"))
		}
		return nil
	})

	// 2. Config
	checkStep("Configuration File", func() error {
		if _, err := os.Stat(appVault.ConfigPath); os.IsNotExist(err) {
			return fmt.Errorf("missing at %s (using defaults)", appVault.ConfigPath)
		}
		return nil
	})

	checkStep("Page Size", func() error {
		_, err := pdf.PageSizeByName(appConfig.PageSize)
		return err
	})

	// 3. Collaborators
	checkStep("PDF Handler", func() error {
		program := appConfig.PDFViewer
		if program == "" {
			program = defaultOpener()
		}
		if program == "" {
			return nil
		}
		if _, err := exec.LookPath(program); err != nil {
			return fmt.Errorf("%s not found in PATH (required for 'sx share')", program)
		}
		return nil
	})

	checkStep("Clipboard", func() error {
		if clipboard.Unsupported {
			return fmt.Errorf("unavailable (paths will not be copied)")
		}
		return nil
	})
}

// defaultOpener is the program the OS uses to open documents
func defaultOpener() string {
	switch runtime.GOOS {
	case "darwin":
		return "open"
	case "windows":
		return ""
	default:
		return "xdg-open"
	}
}

// checkStep runs a check function and prints the result nicely
func checkStep(name string, check func() error) {
	err := check()
	if err == nil {
		fmt.Printf("%s %s\n", ui.StyleSuccess.Render(ui.IconSuccess), name)
	} else {
		fmt.Printf("%s %s\n", ui.StyleError.Render(ui.IconError), name)
		fmt.Printf("    %s\n", ui.StyleMuted.Render(err.Error()))
	}
}
