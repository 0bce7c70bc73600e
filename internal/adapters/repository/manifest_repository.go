package repository

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/kamal-hamza/sx-cli/internal/core/domain"
	"github.com/kamal-hamza/sx-cli/pkg/vault"
)

// FileManifestRepository stores the current artifact's manifest as JSON
type FileManifestRepository struct {
	manifestPath string
	mu           sync.RWMutex
}

func NewFileManifestRepository(v *vault.Vault) *FileManifestRepository {
	return &FileManifestRepository{
		manifestPath: v.ManifestPath(),
	}
}

// Save replaces the manifest on disk
func (r *FileManifestRepository) Save(ctx context.Context, manifest domain.Manifest) error {
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return domain.NewStorageError("encode", r.manifestPath, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(r.manifestPath), 0755); err != nil {
		return domain.NewStorageError("mkdir", filepath.Dir(r.manifestPath), err)
	}
	if err := atomicWriteFile(r.manifestPath, data, 0644); err != nil {
		return domain.NewStorageError("write", r.manifestPath, err)
	}
	return nil
}

// Load reads the manifest from disk
func (r *FileManifestRepository) Load(ctx context.Context) (*domain.Manifest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data, err := os.ReadFile(r.manifestPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNoArtifact
		}
		return nil, domain.NewStorageError("read", r.manifestPath, err)
	}

	var manifest domain.Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, domain.NewStorageError("decode", r.manifestPath, err)
	}
	return &manifest, nil
}

func (r *FileManifestRepository) Delete(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.Remove(r.manifestPath); err != nil && !os.IsNotExist(err) {
		return domain.NewStorageError("remove", r.manifestPath, err)
	}
	return nil
}
