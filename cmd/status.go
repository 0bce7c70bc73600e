package cmd

import (
	"fmt"
	"math"
	"os"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/sx-cli/internal/adapters/pdf"
	"github.com/kamal-hamza/sx-cli/internal/core/domain"
	"github.com/kamal-hamza/sx-cli/pkg/ui"
)

var statusVerify bool

var statusCmd = &cobra.Command{
	Use:     "status",
	Aliases: []string{"st"},
	Short:   "Show the current PDF and its page layout (alias: st)",
	Long: `Show the current PDF: where it is, its size, and how every page was laid out.

With --verify the PDF itself is parsed and its page count and page sizes are
checked against the recorded layout.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusVerify, "verify", false, "Parse the PDF and check it against the recorded layout")
}

func runStatus(cmd *cobra.Command, args []string) error {
	resp, err := statusService.Execute(getContext())
	if err != nil {
		return userFacing(err)
	}

	m := resp.Manifest

	fmt.Println(ui.FormatTitle(ui.IconPage + " Current PDF"))
	fmt.Println()
	fmt.Println(ui.RenderKeyValue("Path", resp.Artifact.Path))
	fmt.Println(ui.RenderKeyValue("Size", ui.FormatBytes(resp.Artifact.Size)))
	fmt.Println(ui.RenderKeyValue("Created", m.Artifact.CreatedAt.Local().Format("2006-01-02 15:04:05")))
	fmt.Println(ui.RenderKeyValue("Build", m.BuildID))
	fmt.Println(ui.RenderKeyValue("Page size", m.PageSize.String()))
	fmt.Println(ui.RenderKeyValue("Pages", fmt.Sprintf("%d", m.PageCount())))

	if resp.Intact {
		fmt.Println(ui.FormatSuccess("Contents match the recorded checksum"))
	} else {
		fmt.Println(ui.FormatWarning("PDF is missing or changed since it was built"))
	}

	fmt.Println()
	fmt.Println(pageTable(m.Pages).Render())

	if statusVerify {
		fmt.Println()
		if err := verifyDocument(resp.Artifact.Path, m); err != nil {
			fmt.Println(ui.FormatError("Verification failed: " + err.Error()))
			return err
		}
		fmt.Println(ui.FormatSuccess(fmt.Sprintf("Verified %s at %s", pluralize(m.PageCount(), "page"), m.PageSize.String())))
	}

	return nil
}

func pageTable(pages []domain.Page) *ui.Table {
	table := ui.NewTable([]ui.TableColumn{
		{Header: "#", Width: 3, Align: "right"},
		{Header: "Source", Width: 28, Align: "left"},
		{Header: "Pixels", Width: 11, Align: "right"},
		{Header: "Scale", Width: 7, Align: "right"},
		{Header: "Placed at (pt)", Width: 24, Align: "left"},
	})

	for _, p := range pages {
		pl := p.Placement
		table.AddRow(
			fmt.Sprintf("%d", p.Number),
			truncate(p.Source, 28),
			fmt.Sprintf("%dx%d", p.PixelWidth, p.PixelHeight),
			fmt.Sprintf("%.3f", pl.Scale),
			fmt.Sprintf("%.0f,%.0f %.0fx%.0f", pl.X, pl.Y, pl.Width, pl.Height),
		)
	}

	return table
}

// verifyDocument parses the PDF at path and compares it with the manifest
func verifyDocument(path string, m *domain.Manifest) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	count, sizes, err := pdf.Inspect(f)
	if err != nil {
		return fmt.Errorf("unreadable PDF: %w", err)
	}

	return compareLayout(count, sizes, m)
}

func compareLayout(count int, sizes []domain.PageSize, m *domain.Manifest) error {
	if count != m.PageCount() {
		return fmt.Errorf("PDF has %d pages, expected %d", count, m.PageCount())
	}

	const tolerance = 0.5
	for i, size := range sizes {
		if math.Abs(size.Width-m.PageSize.Width) > tolerance || math.Abs(size.Height-m.PageSize.Height) > tolerance {
			return fmt.Errorf("page %d is %gx%g pt, expected %gx%g pt",
				i+1, size.Width, size.Height, m.PageSize.Width, m.PageSize.Height)
		}
	}

	return nil
}
