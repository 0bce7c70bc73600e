package cmd

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/kamal-hamza/sx-cli/internal/core/domain"
)

var previewCmd = &cobra.Command{
	Use:   "preview [page]",
	Short: "Preview the page layout of the current PDF in the terminal",
	Long: `Draw each page of the current PDF as a box with the area its image covers.

Keyboard Shortcuts:
  ←/h, →/l    Previous / next page
  g, G        First / last page
  q, Esc      Quit`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPreview,
}

func runPreview(cmd *cobra.Command, args []string) error {
	manifest, err := manifestRepo.Load(getContext())
	if err != nil {
		return userFacing(err)
	}
	if manifest.PageCount() == 0 {
		return userFacing(domain.ErrNoArtifact)
	}

	start := 0
	if len(args) == 1 {
		var n int
		if _, err := fmt.Sscanf(args[0], "%d", &n); err != nil || n < 1 || n > manifest.PageCount() {
			return fmt.Errorf("page must be between 1 and %d", manifest.PageCount())
		}
		start = n - 1
	}

	view, err := NewPagePreview(manifest, start)
	if err != nil {
		return err
	}
	return view.Run()
}

// cellRect is a rectangle in terminal cells, origin top-left
type cellRect struct {
	X, Y, W, H int
}

// cellAspect is how many times taller a terminal cell is than wide
const cellAspect = 2.0

// layoutPage fits a page into cols x rows cells and maps the image
// placement onto it. PDF space has its origin bottom-left.
func layoutPage(size domain.PageSize, pl domain.Placement, cols, rows int) (page cellRect, img cellRect) {
	if cols <= 0 || rows <= 0 || size.Width <= 0 || size.Height <= 0 {
		return cellRect{}, cellRect{}
	}

	ratio := size.Width / size.Height
	h := float64(rows)
	w := h * ratio * cellAspect
	if w > float64(cols) {
		w = float64(cols)
		h = w / (ratio * cellAspect)
	}

	page = cellRect{
		W: int(math.Max(1, math.Round(w))),
		H: int(math.Max(1, math.Round(h))),
	}
	page.X = (cols - page.W) / 2
	page.Y = (rows - page.H) / 2

	sx := float64(page.W) / size.Width
	sy := float64(page.H) / size.Height

	img = cellRect{
		X: page.X + int(math.Round(pl.X*sx)),
		Y: page.Y + int(math.Round((size.Height-pl.Y-pl.Height)*sy)),
		W: int(math.Max(1, math.Round(pl.Width*sx))),
		H: int(math.Max(1, math.Round(pl.Height*sy))),
	}

	// Clamp rounding overflow to the page
	if img.X+img.W > page.X+page.W {
		img.W = page.X + page.W - img.X
	}
	if img.Y+img.H > page.Y+page.H {
		img.H = page.Y + page.H - img.Y
	}

	return page, img
}

// PagePreview draws one page of a manifest at a time
type PagePreview struct {
	manifest *domain.Manifest
	current  int
	screen   tcell.Screen
	width    int
	height   int
}

// NewPagePreview creates a preview starting at page index start
func NewPagePreview(manifest *domain.Manifest, start int) (*PagePreview, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}

	if err := screen.Init(); err != nil {
		return nil, err
	}

	width, height := screen.Size()

	return &PagePreview{
		manifest: manifest,
		current:  start,
		screen:   screen,
		width:    width,
		height:   height,
	}, nil
}

// Run starts the preview loop
func (v *PagePreview) Run() error {
	defer v.screen.Fini()

	v.screen.Clear()
	v.render()

	for {
		ev := v.screen.PollEvent()

		switch ev := ev.(type) {
		case *tcell.EventResize:
			v.width, v.height = ev.Size()
			v.screen.Sync()
			v.render()

		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q' {
				return nil
			}

			v.handleKeyPress(ev)
			v.render()
		}
	}
}

func (v *PagePreview) handleKeyPress(ev *tcell.EventKey) {
	last := v.manifest.PageCount() - 1

	switch ev.Key() {
	case tcell.KeyLeft:
		v.current--
	case tcell.KeyRight:
		v.current++
	case tcell.KeyHome:
		v.current = 0
	case tcell.KeyEnd:
		v.current = last
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'h':
			v.current--
		case 'l', ' ':
			v.current++
		case 'g':
			v.current = 0
		case 'G':
			v.current = last
		}
	}

	if v.current < 0 {
		v.current = 0
	}
	if v.current > last {
		v.current = last
	}
}

func (v *PagePreview) render() {
	v.screen.Clear()

	page := v.manifest.Pages[v.current]
	size := v.manifest.PageSize

	titleStyle := tcell.StyleDefault.Bold(true).Foreground(tcell.ColorPurple)
	mutedStyle := tcell.StyleDefault.Foreground(tcell.ColorGray)

	v.drawText(1, 0, fmt.Sprintf("Page %d/%d  %s", page.Number, v.manifest.PageCount(), page.Source), titleStyle)
	v.drawText(1, 1, fmt.Sprintf("%s  image %dx%d px  scale %.3f",
		size.String(), page.PixelWidth, page.PixelHeight, page.Placement.Scale), mutedStyle)

	// Two header lines, one footer line
	const top, bottom = 3, 2
	box, img := layoutPage(size, page.Placement, v.width-2, v.height-top-bottom)
	box.X++
	img.X++
	box.Y += top
	img.Y += top

	v.fill(img, '░', tcell.StyleDefault.Foreground(tcell.ColorTeal))
	v.drawBox(box, tcell.StyleDefault.Foreground(tcell.ColorSilver))

	v.drawText(1, v.height-1, "←/→ page • g/G first/last • q quit", mutedStyle)

	v.screen.Show()
}

func (v *PagePreview) drawBox(r cellRect, style tcell.Style) {
	if r.W < 2 || r.H < 2 {
		return
	}
	right, bottom := r.X+r.W-1, r.Y+r.H-1

	for x := r.X + 1; x < right; x++ {
		v.screen.SetContent(x, r.Y, tcell.RuneHLine, nil, style)
		v.screen.SetContent(x, bottom, tcell.RuneHLine, nil, style)
	}
	for y := r.Y + 1; y < bottom; y++ {
		v.screen.SetContent(r.X, y, tcell.RuneVLine, nil, style)
		v.screen.SetContent(right, y, tcell.RuneVLine, nil, style)
	}
	v.screen.SetContent(r.X, r.Y, tcell.RuneULCorner, nil, style)
	v.screen.SetContent(right, r.Y, tcell.RuneURCorner, nil, style)
	v.screen.SetContent(r.X, bottom, tcell.RuneLLCorner, nil, style)
	v.screen.SetContent(right, bottom, tcell.RuneLRCorner, nil, style)
}

func (v *PagePreview) fill(r cellRect, ch rune, style tcell.Style) {
	for y := r.Y; y < r.Y+r.H; y++ {
		for x := r.X; x < r.X+r.W; x++ {
			v.screen.SetContent(x, y, ch, nil, style)
		}
	}
}

// drawText draws text at the specified position
func (v *PagePreview) drawText(x, y int, text string, style tcell.Style) {
	i := 0
	for _, r := range text {
		if x+i >= v.width {
			break
		}
		v.screen.SetContent(x+i, y, r, nil, style)
		i++
	}
}
