package services

import (
	"context"
	"errors"
	"sync"

	"github.com/kamal-hamza/sx-cli/internal/core/domain"
	"github.com/kamal-hamza/sx-cli/internal/core/ports"
)

// Session holds the reference to the current document for one run of the
// application. Callers own it and pass it to the services that need it.
type Session struct {
	mu      sync.RWMutex
	current *domain.ArtifactReference
}

// NewSession creates an empty session
func NewSession() *Session {
	return &Session{}
}

// Current returns the current artifact, if any
func (s *Session) Current() (domain.ArtifactReference, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return domain.ArtifactReference{}, false
	}
	return *s.current, true
}

// Set replaces the current artifact
func (s *Session) Set(ref domain.ArtifactReference) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = &ref
}

// Clear forgets the current artifact
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
}

// Restore loads the artifact recorded by a previous run. A missing manifest
// or a manifest whose file is gone leaves the session empty.
func (s *Session) Restore(ctx context.Context, manifests ports.ManifestRepository, store ports.ArtifactStore) error {
	manifest, err := manifests.Load(ctx)
	if errors.Is(err, domain.ErrNoArtifact) {
		return nil
	}
	if err != nil {
		return err
	}

	current, err := store.Current(ctx)
	if errors.Is(err, domain.ErrNoArtifact) {
		return nil
	}
	if err != nil {
		return err
	}
	if current.Path != manifest.Artifact.Path {
		return nil
	}

	s.Set(manifest.Artifact)
	return nil
}
