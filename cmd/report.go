package cmd

import (
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/spf13/cobra"

	"github.com/kamal-hamza/sx-cli/internal/adapters/transfer"
	"github.com/kamal-hamza/sx-cli/internal/core/domain"
	"github.com/kamal-hamza/sx-cli/pkg/ui"
)

var (
	reportOutput string
	reportOpen   bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Chart how each page image was scaled",
	Long: `Write an HTML chart of the current PDF's layout.

For every page it shows the scale factor applied to the image and how much
of the page the image covers. Low coverage usually means a badly cropped
scan or an unusual aspect ratio.`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportOutput, "output", "", "Where to write the report (default: output/report.html in the vault)")
	reportCmd.Flags().BoolVarP(&reportOpen, "open", "o", false, "Open the report when written")
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx := getContext()

	manifest, err := manifestRepo.Load(ctx)
	if err != nil {
		return userFacing(err)
	}

	path := reportOutput
	if path == "" {
		path = appVault.GetOutputPath("report.html")
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}

	if err := layoutChart(manifest).Render(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to render report: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	fmt.Println(ui.FormatSuccess("Report written"))
	fmt.Println(ui.RenderKeyValue("Path", path))

	if reportOpen {
		return transfer.Open(ctx, path, "")
	}
	return nil
}

// layoutChart builds a bar chart of per-page scale and page coverage
func layoutChart(m *domain.Manifest) *charts.Bar {
	labels, scale, coverage := layoutSeries(m)

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "sx layout report"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Page layout",
			Subtitle: fmt.Sprintf("%s, %s, build %s", pluralize(m.PageCount(), "page"), m.PageSize.String(), m.BuildID),
		}),
	)

	bar.SetXAxis(labels).
		AddSeries("Scale (%)", scale).
		AddSeries("Page coverage (%)", coverage)

	return bar
}

// layoutSeries returns one label and two data points per page
func layoutSeries(m *domain.Manifest) ([]string, []opts.BarData, []opts.BarData) {
	labels := make([]string, 0, len(m.Pages))
	scale := make([]opts.BarData, 0, len(m.Pages))
	coverage := make([]opts.BarData, 0, len(m.Pages))

	pageArea := m.PageSize.Width * m.PageSize.Height

	for _, p := range m.Pages {
		labels = append(labels, fmt.Sprintf("%d %s", p.Number, truncate(p.Source, 20)))
		scale = append(scale, opts.BarData{Value: round2(p.Placement.Scale * 100)})

		covered := 0.0
		if pageArea > 0 {
			covered = p.Placement.Width * p.Placement.Height / pageArea * 100
		}
		coverage = append(coverage, opts.BarData{Value: round2(covered)})
	}

	return labels, scale, coverage
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
