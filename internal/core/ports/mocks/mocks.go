package mocks

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/kamal-hamza/sx-cli/internal/core/domain"
	"github.com/kamal-hamza/sx-cli/internal/core/ports"
)

// --- MockNormalizer ---

// MockNormalizer writes small placeholder files instead of real images so the
// assembler can read and release them like real transient files.
type MockNormalizer struct {
	mu          sync.Mutex
	dir         string
	dims        map[string][2]int
	defaultDims [2]int
	failOn      map[string]error
	calls       []string
	counter     int
	gate        <-chan struct{}
	started     chan<- struct{}
}

// NewMockNormalizer creates a mock normalizer writing into dir
func NewMockNormalizer(dir string) *MockNormalizer {
	return &MockNormalizer{
		dir:         dir,
		dims:        make(map[string][2]int),
		defaultDims: [2]int{600, 800},
		failOn:      make(map[string]error),
	}
}

func (m *MockNormalizer) Normalize(ctx context.Context, src domain.SourceImage) (*domain.NormalizedImage, error) {
	m.mu.Lock()
	m.calls = append(m.calls, src.Name())
	gate, started := m.gate, m.started
	m.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	format, err := domain.FormatFromPath(src.Path)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err, ok := m.failOn[src.Name()]; ok {
		return nil, domain.NewImageProcessingError(src.Name(), "decode", err)
	}

	dims, ok := m.dims[src.Name()]
	if !ok {
		dims = m.defaultDims
	}

	m.counter++
	path := filepath.Join(m.dir, fmt.Sprintf("norm-%d%s", m.counter, format.Extension()))
	if err := os.WriteFile(path, []byte("normalized:"+src.Name()), 0644); err != nil {
		return nil, domain.NewStorageError("write", path, err)
	}

	return &domain.NormalizedImage{
		Source: src,
		Path:   path,
		Format: format,
		Width:  dims[0],
		Height: dims[1],
	}, nil
}

// SetDimensions fixes the normalized size reported for a source filename
func (m *MockNormalizer) SetDimensions(name string, width, height int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dims[name] = [2]int{width, height}
}

// FailOn makes Normalize fail for the given source filename
func (m *MockNormalizer) FailOn(name string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failOn[name] = err
}

// SetGate blocks every Normalize call until gate yields. Each call signals
// started before blocking.
func (m *MockNormalizer) SetGate(gate <-chan struct{}, started chan<- struct{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gate = gate
	m.started = started
}

func (m *MockNormalizer) GetCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([]string, len(m.calls))
	copy(calls, m.calls)
	return calls
}

// --- MockDocumentWriter ---

// MockPage is a page recorded by MockDocumentBuilder
type MockPage struct {
	Image     string
	Format    domain.ImageFormat
	Placement domain.Placement
}

// MockDocumentWriter records every document it begins
type MockDocumentWriter struct {
	mu         sync.Mutex
	builders   []*MockDocumentBuilder
	shouldFail bool
	failError  error
}

func NewMockDocumentWriter() *MockDocumentWriter {
	return &MockDocumentWriter{}
}

func (m *MockDocumentWriter) Begin(size domain.PageSize) (ports.DocumentBuilder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := &MockDocumentBuilder{Size: size, shouldFail: m.shouldFail, failError: m.failError}
	m.builders = append(m.builders, b)
	return b, nil
}

// SetShouldFail makes serialization of subsequent documents fail
func (m *MockDocumentWriter) SetShouldFail(fail bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shouldFail = fail
	m.failError = err
}

// Last returns the most recently started document, or nil
func (m *MockDocumentWriter) Last() *MockDocumentBuilder {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.builders) == 0 {
		return nil
	}
	return m.builders[len(m.builders)-1]
}

// Count returns how many documents were started
func (m *MockDocumentWriter) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.builders)
}

// MockDocumentBuilder renders pages as text lines
type MockDocumentBuilder struct {
	mu         sync.Mutex
	Size       domain.PageSize
	Pages      []MockPage
	shouldFail bool
	failError  error
}

func (b *MockDocumentBuilder) AddPage(ctx context.Context, image []byte, format domain.ImageFormat, placement domain.Placement) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Pages = append(b.Pages, MockPage{Image: string(image), Format: format, Placement: placement})
	return nil
}

func (b *MockDocumentBuilder) PageCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.Pages)
}

func (b *MockDocumentBuilder) Serialize(w io.Writer) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.shouldFail {
		if b.failError != nil {
			return b.failError
		}
		return fmt.Errorf("serialize failed")
	}
	fmt.Fprintf(w, "%%MOCK %gx%g\n", b.Size.Width, b.Size.Height)
	for i, p := range b.Pages {
		fmt.Fprintf(w, "page %d %s %.3f %.3f %.3f %.3f %s\n",
			i+1, p.Format, p.Placement.X, p.Placement.Y, p.Placement.Width, p.Placement.Height, p.Image)
	}
	return nil
}

// --- MockArtifactStore ---

// MockArtifactStore keeps the current document in memory
type MockArtifactStore struct {
	mu         sync.Mutex
	path       string
	data       []byte
	persists   int
	shouldFail bool
	failError  error
}

func NewMockArtifactStore() *MockArtifactStore {
	return &MockArtifactStore{path: "/fake/output/" + domain.DefaultDocumentName}
}

func (m *MockArtifactStore) Persist(ctx context.Context, data []byte) (*domain.ArtifactReference, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shouldFail {
		err := m.failError
		if err == nil {
			err = fmt.Errorf("disk full")
		}
		return nil, domain.NewStorageError("write", m.path, err)
	}
	m.data = bytes.Clone(data)
	m.persists++
	sum := sha256.Sum256(data)
	return &domain.ArtifactReference{
		Path:      m.path,
		Size:      int64(len(data)),
		SHA256:    hex.EncodeToString(sum[:]),
		CreatedAt: time.Now(),
	}, nil
}

func (m *MockArtifactStore) ReadBack(ctx context.Context, ref domain.ArtifactReference) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil || ref.Path != m.path {
		return nil, domain.NewStorageError("read", ref.Path, os.ErrNotExist)
	}
	return bytes.Clone(m.data), nil
}

func (m *MockArtifactStore) Current(ctx context.Context) (*domain.ArtifactReference, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return nil, domain.ErrNoArtifact
	}
	sum := sha256.Sum256(m.data)
	return &domain.ArtifactReference{
		Path:   m.path,
		Size:   int64(len(m.data)),
		SHA256: hex.EncodeToString(sum[:]),
	}, nil
}

func (m *MockArtifactStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = nil
	return nil
}

func (m *MockArtifactStore) SetShouldFail(fail bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shouldFail = fail
	m.failError = err
}

// PersistCount returns the number of successful Persist calls
func (m *MockArtifactStore) PersistCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.persists
}

// Data returns a copy of the stored bytes
func (m *MockArtifactStore) Data() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return bytes.Clone(m.data)
}

// --- MockManifestRepository ---

type MockManifestRepository struct {
	mu       sync.Mutex
	manifest *domain.Manifest
}

func NewMockManifestRepository() *MockManifestRepository {
	return &MockManifestRepository{}
}

func (m *MockManifestRepository) Save(ctx context.Context, manifest domain.Manifest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.manifest = &manifest
	return nil
}

func (m *MockManifestRepository) Load(ctx context.Context) (*domain.Manifest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.manifest == nil {
		return nil, domain.ErrNoArtifact
	}
	copied := *m.manifest
	return &copied, nil
}

func (m *MockManifestRepository) Delete(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.manifest = nil
	return nil
}

// --- MockCapturer ---

type MockCapturer struct {
	mu       sync.Mutex
	images   []domain.SourceImage
	requests []ports.CaptureRequest
	err      error
}

func NewMockCapturer(paths ...string) *MockCapturer {
	return &MockCapturer{images: domain.SourceImagesFromPaths(paths)}
}

func (m *MockCapturer) Capture(ctx context.Context, req ports.CaptureRequest) ([]domain.SourceImage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	images := make([]domain.SourceImage, len(m.images))
	copy(images, m.images)
	return images, nil
}

func (m *MockCapturer) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MockCapturer) GetRequests() []ports.CaptureRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	reqs := make([]ports.CaptureRequest, len(m.requests))
	copy(reqs, m.requests)
	return reqs
}

// --- MockTransferer ---

type MockTransferer struct {
	mu         sync.Mutex
	requests   []ports.TransferRequest
	shouldFail bool
	failError  error
}

func NewMockTransferer() *MockTransferer {
	return &MockTransferer{}
}

func (m *MockTransferer) Transfer(ctx context.Context, req ports.TransferRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if m.shouldFail {
		if m.failError != nil {
			return m.failError
		}
		return fmt.Errorf("user did not share")
	}
	return nil
}

func (m *MockTransferer) SetShouldFail(fail bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shouldFail = fail
	m.failError = err
}

func (m *MockTransferer) GetRequests() []ports.TransferRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	reqs := make([]ports.TransferRequest, len(m.requests))
	copy(reqs, m.requests)
	return reqs
}
