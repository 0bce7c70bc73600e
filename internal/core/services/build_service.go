package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kamal-hamza/sx-cli/internal/core/domain"
	"github.com/kamal-hamza/sx-cli/internal/core/ports"
)

// BuildService assembles a PDF and makes it the current artifact
type BuildService struct {
	assembler *Assembler
	store     ports.ArtifactStore
	manifests ports.ManifestRepository
	session   *Session
	logger    *slog.Logger
}

// NewBuildService creates a new build service
func NewBuildService(assembler *Assembler, store ports.ArtifactStore, manifests ports.ManifestRepository, session *Session) *BuildService {
	return &BuildService{
		assembler: assembler,
		store:     store,
		manifests: manifests,
		session:   session,
		logger:    slog.Default(),
	}
}

// WithLogger sets the service logger
func (s *BuildService) WithLogger(logger *slog.Logger) *BuildService {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// BuildRequest represents a request to build a PDF
type BuildRequest struct {
	Images []domain.SourceImage
}

// BuildResponse represents the result of a successful build
type BuildResponse struct {
	BuildID  string
	Artifact domain.ArtifactReference
	Document *domain.Document
	Duration time.Duration
}

// PageCount returns the number of pages built
func (r *BuildResponse) PageCount() int {
	if r.Document == nil {
		return 0
	}
	return r.Document.PageCount()
}

// Execute builds the PDF without progress reporting
func (s *BuildService) Execute(ctx context.Context, req BuildRequest) (*BuildResponse, error) {
	return s.run(ctx, req, nil)
}

// ExecuteWithProgress builds the PDF and reports each finished page.
// progressChan is closed when the build returns.
func (s *BuildService) ExecuteWithProgress(ctx context.Context, req BuildRequest, progressChan chan<- AssembleProgress) (*BuildResponse, error) {
	defer close(progressChan)
	return s.run(ctx, req, progressChan)
}

func (s *BuildService) run(ctx context.Context, req BuildRequest, progress chan<- AssembleProgress) (*BuildResponse, error) {
	start := time.Now()

	// 1. Assemble
	doc, data, err := s.assembler.Assemble(ctx, req.Images, progress)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("build cancelled before persisting: %w", err)
	}

	// 2. Persist, replacing the previous document
	ref, err := s.store.Persist(ctx, data)
	if err != nil {
		return nil, err
	}

	// 3. Record the layout
	buildID := uuid.NewString()
	manifest := domain.Manifest{
		BuildID:  buildID,
		Artifact: *ref,
		PageSize: doc.Size,
		Pages:    doc.Pages,
	}
	if err := s.manifests.Save(ctx, manifest); err != nil {
		// The document itself is in place; only status/preview lose detail.
		s.logger.Warn("failed to save manifest", "build_id", buildID, "error", err)
	}

	s.session.Set(*ref)

	resp := &BuildResponse{
		BuildID:  buildID,
		Artifact: *ref,
		Document: doc,
		Duration: time.Since(start),
	}

	s.logger.Info("pdf built",
		"build_id", buildID,
		"path", ref.Path,
		"pages", resp.PageCount(),
		"bytes", ref.Size,
		"duration", resp.Duration,
	)

	return resp, nil
}
