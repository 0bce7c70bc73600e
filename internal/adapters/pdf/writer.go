package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/kamal-hamza/sx-cli/internal/core/domain"
	"github.com/kamal-hamza/sx-cli/internal/core/ports"
)

// Writer creates PDF documents with pdfcpu
type Writer struct {
	conf *model.Configuration
}

func NewWriter() *Writer {
	return &Writer{conf: model.NewDefaultConfiguration()}
}

// Begin starts an empty document whose page tree uses the given size
func (w *Writer) Begin(size domain.PageSize) (ports.DocumentBuilder, error) {
	if size.Width <= 0 || size.Height <= 0 {
		return nil, fmt.Errorf("invalid page size %s", size)
	}

	ctx, err := pdfcpu.CreateContextWithXRefTable(w.conf, &types.Dim{Width: size.Width, Height: size.Height})
	if err != nil {
		return nil, fmt.Errorf("failed to create pdf context: %w", err)
	}

	return &Builder{ctx: ctx, size: size}, nil
}

// Builder appends one image page at a time to a pdfcpu context
type Builder struct {
	ctx   *model.Context
	size  domain.PageSize
	pages int
}

func (b *Builder) AddPage(ctx context.Context, image []byte, format domain.ImageFormat, placement domain.Placement) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	pagesRef, err := b.ctx.Pages()
	if err != nil {
		return fmt.Errorf("failed to locate page tree: %w", err)
	}
	pagesDict, err := b.ctx.DereferenceDict(*pagesRef)
	if err != nil {
		return fmt.Errorf("failed to read page tree: %w", err)
	}

	// JPEG data is embedded as DCT, PNG is re-encoded as Flate
	imgRef, _, _, err := model.CreateImageResource(b.ctx.XRefTable, bytes.NewReader(image), false, false)
	if err != nil {
		return fmt.Errorf("failed to embed %s image: %w", format, err)
	}

	resources := types.Dict(map[string]types.Object{
		"XObject": types.Dict(map[string]types.Object{"Im0": *imgRef}),
	})

	content := fmt.Sprintf("q %.5f 0 0 %.5f %.5f %.5f cm /Im0 Do Q",
		placement.Width, placement.Height, placement.X, placement.Y)

	sd, err := b.ctx.NewStreamDictForBuf([]byte(content))
	if err != nil {
		return err
	}
	if err := sd.Encode(); err != nil {
		return err
	}
	contentsRef, err := b.ctx.IndRefForNewObject(*sd)
	if err != nil {
		return err
	}

	mediaBox := types.RectForWidthAndHeight(0, 0, b.size.Width, b.size.Height)
	pageDict := types.Dict(map[string]types.Object{
		"Type":      types.Name("Page"),
		"Parent":    *pagesRef,
		"MediaBox":  mediaBox.Array(),
		"Resources": resources,
		"Contents":  *contentsRef,
	})
	pageRef, err := b.ctx.IndRefForNewObject(pageDict)
	if err != nil {
		return err
	}

	kids, _ := pagesDict["Kids"].(types.Array)
	pagesDict["Kids"] = append(kids, *pageRef)
	b.pages++
	pagesDict["Count"] = types.Integer(b.pages)
	b.ctx.PageCount = b.pages

	return nil
}

func (b *Builder) PageCount() int {
	return b.pages
}

func (b *Builder) Serialize(w io.Writer) error {
	if b.pages == 0 {
		return fmt.Errorf("document has no pages")
	}
	return api.WriteContext(b.ctx, w)
}

// PageSizeByName resolves a paper size name such as "A4" or "letter"
// to its dimensions in points.
func PageSizeByName(name string) (domain.PageSize, error) {
	if name == "" || strings.EqualFold(name, domain.A4.Name) {
		return domain.A4, nil
	}

	for key, dim := range types.PaperSize {
		if strings.EqualFold(key, name) && dim != nil {
			return domain.PageSize{Name: key, Width: dim.Width, Height: dim.Height}, nil
		}
	}

	return domain.PageSize{}, fmt.Errorf("unknown page size %q", name)
}

// PageSizeNames returns the paper size names PageSizeByName accepts
func PageSizeNames() []string {
	names := make([]string, 0, len(types.PaperSize))
	for key := range types.PaperSize {
		names = append(names, key)
	}
	sort.Strings(names)
	return names
}

// Inspect reads a PDF and returns its page count and the media box of
// every page.
func Inspect(rs io.ReadSeeker) (int, []domain.PageSize, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadValidateAndOptimize(rs, conf)
	if err != nil {
		return 0, nil, err
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return 0, nil, err
	}

	sizes := make([]domain.PageSize, 0, ctx.PageCount)
	for i := 1; i <= ctx.PageCount; i++ {
		_, _, inh, err := ctx.PageDict(i, false)
		if err != nil {
			return 0, nil, err
		}
		if inh == nil || inh.MediaBox == nil {
			return 0, nil, fmt.Errorf("page %d has no media box", i)
		}
		sizes = append(sizes, domain.PageSize{Width: inh.MediaBox.Width(), Height: inh.MediaBox.Height()})
	}

	return ctx.PageCount, sizes, nil
}
