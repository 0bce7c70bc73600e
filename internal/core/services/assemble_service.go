package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/kamal-hamza/sx-cli/internal/core/domain"
	"github.com/kamal-hamza/sx-cli/internal/core/ports"
)

// AssembleProgress reports one completed page
type AssembleProgress struct {
	Current int
	Total   int
	Source  string
	Page    domain.Page
}

// Assembler turns an ordered list of source images into a serialized
// multi-page document. It runs one assembly at a time.
type Assembler struct {
	normalizer ports.Normalizer
	writer     ports.DocumentWriter
	pageSize   domain.PageSize
	logger     *slog.Logger
	running    atomic.Bool
}

// NewAssembler creates an assembler laying pages out at pageSize
func NewAssembler(normalizer ports.Normalizer, writer ports.DocumentWriter, pageSize domain.PageSize) *Assembler {
	return &Assembler{
		normalizer: normalizer,
		writer:     writer,
		pageSize:   pageSize,
		logger:     slog.Default(),
	}
}

// WithLogger sets the logger used for pipeline diagnostics
func (a *Assembler) WithLogger(logger *slog.Logger) *Assembler {
	if logger != nil {
		a.logger = logger
	}
	return a
}

// PageSize returns the page size every assembled page uses
func (a *Assembler) PageSize() domain.PageSize {
	return a.pageSize
}

// Running reports whether an assembly is in flight
func (a *Assembler) Running() bool {
	return a.running.Load()
}

// Assemble normalizes, places and embeds every image in input order and
// returns the document layout with its serialized bytes.
//
// The first failure aborts the whole assembly: no bytes are returned and all
// transient files are released. A call made while another assembly is
// running fails with domain.ErrAssemblyInProgress. progress may be nil.
func (a *Assembler) Assemble(ctx context.Context, images []domain.SourceImage, progress chan<- AssembleProgress) (*domain.Document, []byte, error) {
	if len(images) == 0 {
		return nil, nil, domain.ErrNoInput
	}

	if !a.running.CompareAndSwap(false, true) {
		return nil, nil, domain.ErrAssemblyInProgress
	}
	defer a.running.Store(false)

	a.logger.Debug("assembly started", "images", len(images), "page_size", a.pageSize.Name)

	builder, err := a.writer.Begin(a.pageSize)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start document: %w", err)
	}

	doc := domain.NewDocument(a.pageSize)
	for i, src := range images {
		if err := ctx.Err(); err != nil {
			return nil, nil, fmt.Errorf("assembly cancelled before %s: %w", src.Name(), err)
		}

		page, err := a.addPage(ctx, doc, builder, src)
		if err != nil {
			a.logger.Warn("assembly aborted", "source", src.Name(), "page", i+1, "error", err)
			return nil, nil, err
		}

		a.logger.Debug("page added",
			"page", page.Number,
			"source", page.Source,
			"scale", page.Placement.Scale,
		)

		if progress != nil {
			select {
			case progress <- AssembleProgress{Current: i + 1, Total: len(images), Source: src.Name(), Page: page}:
			case <-ctx.Done():
				return nil, nil, fmt.Errorf("assembly cancelled: %w", ctx.Err())
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("assembly cancelled before serialization: %w", err)
	}

	var buf bytes.Buffer
	if err := builder.Serialize(&buf); err != nil {
		return nil, nil, fmt.Errorf("failed to serialize document: %w", err)
	}

	a.logger.Info("assembly finished", "pages", doc.PageCount(), "bytes", buf.Len())
	return doc, buf.Bytes(), nil
}

// addPage runs one image through normalize -> read -> place -> embed.
// The transient file is released on every path.
func (a *Assembler) addPage(ctx context.Context, doc *domain.Document, builder ports.DocumentBuilder, src domain.SourceImage) (page domain.Page, err error) {
	img, err := a.normalizer.Normalize(ctx, src)
	if err != nil {
		return domain.Page{}, err
	}
	defer func() {
		if rerr := img.Release(); rerr != nil {
			a.logger.Warn("failed to release transient image", "path", img.Path, "error", rerr)
			if err == nil {
				err = domain.NewStorageError("remove", img.Path, rerr)
			}
		}
	}()

	if img.Width <= 0 || img.Height <= 0 {
		return domain.Page{}, domain.NewImageProcessingError(src.Name(), "measure",
			fmt.Errorf("invalid dimensions %dx%d", img.Width, img.Height))
	}

	if err := ctx.Err(); err != nil {
		return domain.Page{}, fmt.Errorf("assembly cancelled after normalizing %s: %w", src.Name(), err)
	}

	data, err := os.ReadFile(img.Path)
	if err != nil {
		return domain.Page{}, domain.NewImageProcessingError(src.Name(), "read", err)
	}

	page = doc.AddPage(img)
	if err := builder.AddPage(ctx, data, img.Format, page.Placement); err != nil {
		return domain.Page{}, domain.NewImageProcessingError(src.Name(), "embed", err)
	}

	return page, nil
}
