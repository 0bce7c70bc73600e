package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/kamal-hamza/sx-cli/internal/core/domain"
	"github.com/kamal-hamza/sx-cli/internal/core/ports/mocks"
)

func newTestAssembler(t *testing.T) (*Assembler, *mocks.MockNormalizer, *mocks.MockDocumentWriter, string) {
	t.Helper()
	tmpDir := t.TempDir()
	normalizer := mocks.NewMockNormalizer(tmpDir)
	writer := mocks.NewMockDocumentWriter()
	return NewAssembler(normalizer, writer, domain.A4), normalizer, writer, tmpDir
}

func assertDirEmpty(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to read %s: %v", dir, err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no transient files, found %d", len(entries))
	}
}

func TestAssembler_Assemble_PageCountAndOrder(t *testing.T) {
	assembler, _, writer, tmpDir := newTestAssembler(t)
	images := domain.SourceImagesFromPaths([]string{"/in/p3.jpg", "/in/p1.png", "/in/p2.jpeg"})

	doc, data, err := assembler.Assemble(context.Background(), images, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(data) == 0 {
		t.Error("expected serialized bytes")
	}
	if doc.PageCount() != len(images) {
		t.Fatalf("expected %d pages, got %d", len(images), doc.PageCount())
	}

	builder := writer.Last()
	if builder == nil {
		t.Fatal("expected a document to be started")
	}
	if len(builder.Pages) != len(images) {
		t.Fatalf("expected %d embedded pages, got %d", len(images), len(builder.Pages))
	}

	for i, img := range images {
		if doc.Pages[i].Source != img.Name() {
			t.Errorf("page %d: expected source %s, got %s", i+1, img.Name(), doc.Pages[i].Source)
		}
		if builder.Pages[i].Image != "normalized:"+img.Name() {
			t.Errorf("page %d: embedded %q", i+1, builder.Pages[i].Image)
		}
		if builder.Pages[i].Placement != doc.Pages[i].Placement {
			t.Errorf("page %d: embedded placement differs from layout", i+1)
		}
	}

	if builder.Pages[1].Format != domain.FormatPNG {
		t.Errorf("expected png page to stay png, got %s", builder.Pages[1].Format)
	}

	assertDirEmpty(t, tmpDir)
}

func TestAssembler_Assemble_Placement(t *testing.T) {
	assembler, normalizer, _, _ := newTestAssembler(t)
	normalizer.SetDimensions("tall.jpg", 1000, 2000)
	normalizer.SetDimensions("wide.jpg", 3000, 1000)

	doc, _, err := assembler.Assemble(context.Background(),
		domain.SourceImagesFromPaths([]string{"/in/tall.jpg", "/in/wide.jpg"}), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tall := doc.Pages[0].Placement
	if !approx(tall.Width, 421, 0.01) || !approx(tall.Height, 842, 0.01) || !approx(tall.X, 87, 0.01) {
		t.Errorf("unexpected tall placement: %+v", tall)
	}

	wide := doc.Pages[1].Placement
	if !approx(wide.Width, 595, 0.01) || !approx(wide.Height, 198.33, 0.01) || !approx(wide.Y, 321.83, 0.01) {
		t.Errorf("unexpected wide placement: %+v", wide)
	}

	for _, page := range doc.Pages {
		if !page.Placement.Fits(domain.A4) {
			t.Errorf("page %d does not fit A4: %+v", page.Number, page.Placement)
		}
	}
}

func TestAssembler_Assemble_EmptyInput(t *testing.T) {
	assembler, normalizer, writer, tmpDir := newTestAssembler(t)

	doc, data, err := assembler.Assemble(context.Background(), nil, nil)
	if !errors.Is(err, domain.ErrNoInput) {
		t.Fatalf("expected ErrNoInput, got %v", err)
	}
	if doc != nil || data != nil {
		t.Error("expected no document and no bytes")
	}
	if len(normalizer.GetCalls()) != 0 {
		t.Error("normalizer should not be called for empty input")
	}
	if writer.Count() != 0 {
		t.Error("no document should be started for empty input")
	}
	assertDirEmpty(t, tmpDir)
}

func TestAssembler_Assemble_UnsupportedFormat(t *testing.T) {
	assembler, _, _, tmpDir := newTestAssembler(t)
	images := domain.SourceImagesFromPaths([]string{"/in/p1.jpg", "/in/p2.bmp"})

	_, data, err := assembler.Assemble(context.Background(), images, nil)
	if !errors.Is(err, domain.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if data != nil {
		t.Error("expected no bytes on failure")
	}
	assertDirEmpty(t, tmpDir)
}

func TestAssembler_Assemble_AbortsOnFirstFailure(t *testing.T) {
	assembler, normalizer, _, tmpDir := newTestAssembler(t)
	normalizer.FailOn("p2.jpg", fmt.Errorf("corrupt data"))
	images := domain.SourceImagesFromPaths([]string{"/in/p1.jpg", "/in/p2.jpg", "/in/p3.jpg"})

	_, data, err := assembler.Assemble(context.Background(), images, nil)
	if !errors.Is(err, domain.ErrImageProcessing) {
		t.Fatalf("expected ErrImageProcessing, got %v", err)
	}

	var procErr *domain.ImageProcessingError
	if !errors.As(err, &procErr) || procErr.Source != "p2.jpg" {
		t.Errorf("expected error naming p2.jpg, got %v", err)
	}
	if data != nil {
		t.Error("expected no bytes on failure")
	}

	calls := normalizer.GetCalls()
	if len(calls) != 2 {
		t.Errorf("expected processing to stop after p2.jpg, calls: %v", calls)
	}
	assertDirEmpty(t, tmpDir)

	if assembler.Running() {
		t.Error("in-flight flag should be cleared after failure")
	}
}

func TestAssembler_Assemble_SerializeFailure(t *testing.T) {
	assembler, _, writer, tmpDir := newTestAssembler(t)
	writer.SetShouldFail(true, fmt.Errorf("xref broken"))

	_, data, err := assembler.Assemble(context.Background(),
		domain.SourceImagesFromPaths([]string{"/in/p1.jpg"}), nil)
	if err == nil {
		t.Fatal("expected serialization error")
	}
	if data != nil {
		t.Error("expected no bytes on failure")
	}
	assertDirEmpty(t, tmpDir)
}

func TestAssembler_Assemble_Idempotent(t *testing.T) {
	assembler, _, _, _ := newTestAssembler(t)
	images := domain.SourceImagesFromPaths([]string{"/in/a.jpg", "/in/b.png"})

	doc1, data1, err := assembler.Assemble(context.Background(), images, nil)
	if err != nil {
		t.Fatalf("first assembly: %v", err)
	}
	doc2, data2, err := assembler.Assemble(context.Background(), images, nil)
	if err != nil {
		t.Fatalf("second assembly: %v", err)
	}

	if doc1.PageCount() != doc2.PageCount() {
		t.Errorf("page counts differ: %d vs %d", doc1.PageCount(), doc2.PageCount())
	}
	for i := range doc1.Pages {
		if doc1.Pages[i].Placement != doc2.Pages[i].Placement {
			t.Errorf("page %d placement differs", i+1)
		}
	}
	if !bytes.Equal(data1, data2) {
		t.Error("expected equivalent bytes for identical input")
	}
}

func TestAssembler_Assemble_Cancelled(t *testing.T) {
	assembler, normalizer, _, _ := newTestAssembler(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := assembler.Assemble(ctx, domain.SourceImagesFromPaths([]string{"/in/p1.jpg"}), nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(normalizer.GetCalls()) != 0 {
		t.Error("no image should be processed after cancellation")
	}
}

func TestAssembler_Assemble_RejectsOverlap(t *testing.T) {
	assembler, normalizer, _, _ := newTestAssembler(t)
	gate := make(chan struct{})
	started := make(chan struct{}, 1)
	normalizer.SetGate(gate, started)

	done := make(chan error, 1)
	go func() {
		_, _, err := assembler.Assemble(context.Background(),
			domain.SourceImagesFromPaths([]string{"/in/p1.jpg"}), nil)
		done <- err
	}()

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("first assembly did not start")
	}

	_, _, err := assembler.Assemble(context.Background(),
		domain.SourceImagesFromPaths([]string{"/in/p2.jpg"}), nil)
	if !errors.Is(err, domain.ErrAssemblyInProgress) {
		t.Errorf("expected ErrAssemblyInProgress, got %v", err)
	}

	close(gate)
	if err := <-done; err != nil {
		t.Fatalf("first assembly failed: %v", err)
	}
	if assembler.Running() {
		t.Error("in-flight flag should be cleared")
	}
}

func TestAssembler_Assemble_ReportsProgress(t *testing.T) {
	assembler, _, _, _ := newTestAssembler(t)
	images := domain.SourceImagesFromPaths([]string{"/in/a.jpg", "/in/b.jpg", "/in/c.jpg"})
	progress := make(chan AssembleProgress, len(images))

	if _, _, err := assembler.Assemble(context.Background(), images, progress); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	close(progress)

	var got []AssembleProgress
	for p := range progress {
		got = append(got, p)
	}
	if len(got) != len(images) {
		t.Fatalf("expected %d progress updates, got %d", len(images), len(got))
	}
	for i, p := range got {
		if p.Current != i+1 || p.Total != len(images) || p.Source != images[i].Name() {
			t.Errorf("unexpected progress %d: %+v", i, p)
		}
	}
}
