package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/kamal-hamza/sx-cli/internal/core/domain"
	"github.com/kamal-hamza/sx-cli/internal/core/ports/mocks"
)

func approx(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

type buildFixture struct {
	svc        *BuildService
	normalizer *mocks.MockNormalizer
	store      *mocks.MockArtifactStore
	manifests  *mocks.MockManifestRepository
	session    *Session
}

func newBuildFixture(t *testing.T) *buildFixture {
	t.Helper()
	normalizer := mocks.NewMockNormalizer(t.TempDir())
	assembler := NewAssembler(normalizer, mocks.NewMockDocumentWriter(), domain.A4)
	store := mocks.NewMockArtifactStore()
	manifests := mocks.NewMockManifestRepository()
	session := NewSession()

	return &buildFixture{
		svc:        NewBuildService(assembler, store, manifests, session),
		normalizer: normalizer,
		store:      store,
		manifests:  manifests,
		session:    session,
	}
}

func TestBuildService_Execute_Success(t *testing.T) {
	f := newBuildFixture(t)
	images := domain.SourceImagesFromPaths([]string{"/in/p1.jpg", "/in/p2.png"})

	resp, err := f.svc.Execute(context.Background(), BuildRequest{Images: images})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.PageCount() != 2 {
		t.Errorf("expected 2 pages, got %d", resp.PageCount())
	}
	if resp.BuildID == "" {
		t.Error("expected a build id")
	}
	if f.store.PersistCount() != 1 {
		t.Errorf("expected 1 persist, got %d", f.store.PersistCount())
	}

	current, ok := f.session.Current()
	if !ok {
		t.Fatal("expected the session to hold the new artifact")
	}
	if current.Path != resp.Artifact.Path {
		t.Errorf("session path = %s, want %s", current.Path, resp.Artifact.Path)
	}

	manifest, err := f.manifests.Load(context.Background())
	if err != nil {
		t.Fatalf("expected manifest: %v", err)
	}
	if manifest.PageCount() != 2 || manifest.BuildID != resp.BuildID {
		t.Errorf("unexpected manifest: %+v", manifest)
	}
	if manifest.Artifact.SHA256 != resp.Artifact.SHA256 {
		t.Error("manifest hash does not match artifact")
	}
}

func TestBuildService_Execute_EmptyInput(t *testing.T) {
	f := newBuildFixture(t)

	_, err := f.svc.Execute(context.Background(), BuildRequest{})
	if !errors.Is(err, domain.ErrNoInput) {
		t.Fatalf("expected ErrNoInput, got %v", err)
	}
	if f.store.PersistCount() != 0 {
		t.Error("nothing should be persisted")
	}
	if _, ok := f.session.Current(); ok {
		t.Error("session should stay empty")
	}
}

func TestBuildService_Execute_FailureKeepsPrevious(t *testing.T) {
	f := newBuildFixture(t)
	ctx := context.Background()

	first, err := f.svc.Execute(ctx, BuildRequest{Images: domain.SourceImagesFromPaths([]string{"/in/ok.jpg"})})
	if err != nil {
		t.Fatalf("first build: %v", err)
	}
	previous := f.store.Data()

	f.normalizer.FailOn("bad.jpg", fmt.Errorf("truncated"))
	_, err = f.svc.Execute(ctx, BuildRequest{Images: domain.SourceImagesFromPaths([]string{"/in/ok.jpg", "/in/bad.jpg"})})
	if !errors.Is(err, domain.ErrImageProcessing) {
		t.Fatalf("expected ErrImageProcessing, got %v", err)
	}

	if f.store.PersistCount() != 1 {
		t.Errorf("failed build must not persist, persists = %d", f.store.PersistCount())
	}
	if string(f.store.Data()) != string(previous) {
		t.Error("previous artifact was modified")
	}
	current, _ := f.session.Current()
	if current.SHA256 != first.Artifact.SHA256 {
		t.Error("session should still point at the previous artifact")
	}
}

func TestBuildService_Execute_StorageFailure(t *testing.T) {
	f := newBuildFixture(t)
	f.store.SetShouldFail(true, fmt.Errorf("no space left on device"))

	_, err := f.svc.Execute(context.Background(), BuildRequest{Images: domain.SourceImagesFromPaths([]string{"/in/p1.jpg"})})
	if !errors.Is(err, domain.ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
	if _, ok := f.session.Current(); ok {
		t.Error("session should stay empty")
	}
	if _, err := f.manifests.Load(context.Background()); !errors.Is(err, domain.ErrNoArtifact) {
		t.Error("manifest should not be written when persisting fails")
	}
}

func TestBuildService_Execute_OverwritesPrevious(t *testing.T) {
	f := newBuildFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Execute(ctx, BuildRequest{Images: domain.SourceImagesFromPaths([]string{"/in/a.jpg"})}); err != nil {
		t.Fatalf("first build: %v", err)
	}
	second, err := f.svc.Execute(ctx, BuildRequest{Images: domain.SourceImagesFromPaths([]string{"/in/b.jpg", "/in/c.jpg"})})
	if err != nil {
		t.Fatalf("second build: %v", err)
	}

	if !strings.Contains(string(f.store.Data()), "normalized:c.jpg") {
		t.Error("stored bytes should be the second document")
	}
	manifest, _ := f.manifests.Load(ctx)
	if manifest.BuildID != second.BuildID || manifest.PageCount() != 2 {
		t.Errorf("manifest should describe the second build: %+v", manifest)
	}
}

func TestBuildService_ExecuteWithProgress(t *testing.T) {
	f := newBuildFixture(t)
	images := domain.SourceImagesFromPaths([]string{"/in/a.jpg", "/in/b.jpg"})
	progress := make(chan AssembleProgress, len(images))

	if _, err := f.svc.ExecuteWithProgress(context.Background(), BuildRequest{Images: images}, progress); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	count := 0
	for range progress {
		count++
	}
	if count != len(images) {
		t.Errorf("expected %d progress updates, got %d", len(images), count)
	}
}
