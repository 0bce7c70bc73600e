package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/kamal-hamza/sx-cli/internal/core/domain"
	"github.com/kamal-hamza/sx-cli/internal/core/ports"
)

// StatusService reports on the current document
type StatusService struct {
	store     ports.ArtifactStore
	manifests ports.ManifestRepository
}

// NewStatusService creates a new status service
func NewStatusService(store ports.ArtifactStore, manifests ports.ManifestRepository) *StatusService {
	return &StatusService{store: store, manifests: manifests}
}

// StatusResponse describes the current document
type StatusResponse struct {
	Manifest *domain.Manifest
	Artifact domain.ArtifactReference
	Intact   bool // stored bytes match the recorded hash
}

// Execute loads the manifest and verifies the stored bytes against it.
// Without a document it returns domain.ErrNoArtifact.
func (s *StatusService) Execute(ctx context.Context) (*StatusResponse, error) {
	manifest, err := s.manifests.Load(ctx)
	if err != nil {
		return nil, err
	}

	current, err := s.store.Current(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNoArtifact) {
			return &StatusResponse{Manifest: manifest, Artifact: manifest.Artifact}, nil
		}
		return nil, err
	}

	data, err := s.store.ReadBack(ctx, *current)
	if err != nil {
		return nil, err
	}

	sum := sha256.Sum256(data)
	return &StatusResponse{
		Manifest: manifest,
		Artifact: *current,
		Intact:   hex.EncodeToString(sum[:]) == manifest.Artifact.SHA256,
	}, nil
}
