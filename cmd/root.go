package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/sx-cli/internal/adapters/capture"
	"github.com/kamal-hamza/sx-cli/internal/adapters/imageproc"
	"github.com/kamal-hamza/sx-cli/internal/adapters/pdf"
	"github.com/kamal-hamza/sx-cli/internal/adapters/repository"
	"github.com/kamal-hamza/sx-cli/internal/adapters/transfer"
	"github.com/kamal-hamza/sx-cli/internal/core/services"
	"github.com/kamal-hamza/sx-cli/pkg/config"
	"github.com/kamal-hamza/sx-cli/pkg/logging"
	"github.com/kamal-hamza/sx-cli/pkg/ui"
	"github.com/kamal-hamza/sx-cli/pkg/vault"
)

var (
	// Global vault instance
	appVault  *vault.Vault
	appConfig *config.Config
	appLogger *slog.Logger
	appCtx    context.Context

	// Services
	assembler       *services.Assembler
	buildService    *services.BuildService
	captureService  *services.CaptureService
	transferService *services.TransferService
	statusService   *services.StatusService
	session         *services.Session

	// Adapters
	artifactStore *repository.FileArtifactStore
	manifestRepo  *repository.FileManifestRepository
	inbox         *capture.InboxCapturer
	transferer    *transfer.SystemTransferer
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sx",
	Short: "SX - Turn scanned pages into a print-ready PDF",
	Long: ui.StyleTitle.Render("SX") + " - Scanned pages to PDF\n\n" +
		"Collect page images from your scan inbox, lay each one out on a fixed-size\n" +
		"page and write a single multi-page PDF you can share or save.",
	PersistentPreRunE: initializeApp,
	SilenceErrors:     true,
	SilenceUsage:      true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	appCtx = ctx

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, ui.FormatError(err.Error()))
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(shareCmd)
	rootCmd.AddCommand(saveCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(doctorCmd)
}

// initializeApp initializes the application components
func initializeApp(cmd *cobra.Command, args []string) error {
	// init creates the vault; version and help need nothing
	switch cmd.Name() {
	case "init", "version", "help":
		return nil
	}

	v, err := vault.New()
	if err != nil {
		return fmt.Errorf("failed to initialize vault: %w", err)
	}
	appVault = v

	if !appVault.Exists() {
		fmt.Println(ui.FormatError("Vault not initialized"))
		fmt.Println(ui.FormatInfo("Run 'sx init' to initialize the vault"))
		os.Exit(1)
	}

	cfg, err := config.Load(appVault.ConfigPath)
	if err != nil {
		return err
	}
	appConfig = cfg

	appLogger = logging.Setup(logging.Options{
		Level:  appConfig.LogLevel,
		Format: appConfig.LogFormat,
	})
	ui.SetTheme(appConfig.ColorTheme)

	pageSize, err := pdf.PageSizeByName(appConfig.PageSize)
	if err != nil {
		return err
	}

	// Repositories
	artifactStore = repository.NewFileArtifactStore(appVault, appConfig.DocumentName)
	manifestRepo = repository.NewFileManifestRepository(appVault)

	// Collaborators
	inbox = capture.NewInboxCapturer(appVault.InboxPath).WithLogger(appLogger)
	transferer = transfer.NewSystemTransferer(appConfig.SaveDir, appConfig.PDFViewer, appConfig.AutoCopyPath).
		WithLogger(appLogger)

	// Pipeline
	normalizer := imageproc.NewNormalizer(appVault.TmpPath, appConfig.MaxDimension, appConfig.JPEGQuality)
	assembler = services.NewAssembler(normalizer, pdf.NewWriter(), pageSize).WithLogger(appLogger)

	// The current document survives between invocations through the manifest
	session = services.NewSession()
	if err := session.Restore(cmd.Context(), manifestRepo, artifactStore); err != nil {
		appLogger.Debug("no previous document restored", "error", err)
	}

	// Services
	buildService = services.NewBuildService(assembler, artifactStore, manifestRepo, session).WithLogger(appLogger)
	captureService = services.NewCaptureService(inbox)
	transferService = services.NewTransferService(transferer, artifactStore, session).WithLogger(appLogger)
	statusService = services.NewStatusService(artifactStore, manifestRepo)

	return nil
}

// getContext returns a context for operations, cancelled on interrupt
func getContext() context.Context {
	if appCtx == nil {
		return context.Background()
	}
	return appCtx
}
