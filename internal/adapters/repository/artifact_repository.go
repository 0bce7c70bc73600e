package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"sync"

	"github.com/kamal-hamza/sx-cli/internal/core/domain"
	"github.com/kamal-hamza/sx-cli/pkg/vault"
)

// FileArtifactStore keeps the current PDF at a well-known path in the
// vault output directory. Each Persist replaces the previous document.
type FileArtifactStore struct {
	vault    *vault.Vault
	filename string
	mu       sync.Mutex
}

// NewFileArtifactStore creates a store writing <output>/<name>.
// An empty name uses domain.DefaultDocumentName.
func NewFileArtifactStore(v *vault.Vault, name string) *FileArtifactStore {
	return &FileArtifactStore{
		vault:    v,
		filename: domain.DocumentFilename(name),
	}
}

// Path returns where the current document lives
func (s *FileArtifactStore) Path() string {
	return s.vault.GetOutputPath(s.filename)
}

func (s *FileArtifactStore) Persist(ctx context.Context, data []byte) (*domain.ArtifactReference, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.Path()
	if err := os.MkdirAll(s.vault.OutputPath, 0755); err != nil {
		return nil, domain.NewStorageError("mkdir", s.vault.OutputPath, err)
	}

	if err := atomicWriteFile(path, data, 0644); err != nil {
		return nil, domain.NewStorageError("write", path, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, domain.NewStorageError("stat", path, err)
	}

	sum := sha256.Sum256(data)
	return &domain.ArtifactReference{
		Path:      path,
		Size:      info.Size(),
		SHA256:    hex.EncodeToString(sum[:]),
		CreatedAt: info.ModTime(),
	}, nil
}

func (s *FileArtifactStore) ReadBack(ctx context.Context, ref domain.ArtifactReference) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(ref.Path)
	if err != nil {
		return nil, domain.NewStorageError("read", ref.Path, err)
	}
	return data, nil
}

func (s *FileArtifactStore) Current(ctx context.Context) (*domain.ArtifactReference, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.Path()
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNoArtifact
		}
		return nil, domain.NewStorageError("open", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, domain.NewStorageError("stat", path, err)
	}

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil, domain.NewStorageError("read", path, err)
	}

	return &domain.ArtifactReference{
		Path:      path,
		Size:      info.Size(),
		SHA256:    hex.EncodeToString(h.Sum(nil)),
		CreatedAt: info.ModTime(),
	}, nil
}

func (s *FileArtifactStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.Path()
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return domain.NewStorageError("remove", path, err)
	}
	return nil
}
