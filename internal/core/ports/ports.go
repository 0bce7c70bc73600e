package ports

import (
	"context"
	"io"

	"github.com/kamal-hamza/sx-cli/internal/core/domain"
)

// Normalizer defines the port for validating and resizing one source image
type Normalizer interface {
	// Normalize writes a bounded, re-encoded copy of the source to a transient
	// file. The caller owns the result and must Release it.
	Normalize(ctx context.Context, src domain.SourceImage) (*domain.NormalizedImage, error)
}

// DocumentWriter defines the port for creating a PDF container
type DocumentWriter interface {
	// Begin starts an empty document whose pages all have the given size
	Begin(size domain.PageSize) (DocumentBuilder, error)
}

// DocumentBuilder accumulates pages of one document
type DocumentBuilder interface {
	// AddPage appends a page with the encoded image drawn at placement
	AddPage(ctx context.Context, image []byte, format domain.ImageFormat, placement domain.Placement) error

	// PageCount returns the number of pages added so far
	PageCount() int

	// Serialize writes the finished document
	Serialize(w io.Writer) error
}

// ArtifactStore defines the port for persisting the current document
type ArtifactStore interface {
	// Persist atomically replaces the current document with data
	Persist(ctx context.Context, data []byte) (*domain.ArtifactReference, error)

	// ReadBack returns the bytes stored under ref
	ReadBack(ctx context.Context, ref domain.ArtifactReference) ([]byte, error)

	// Current describes the stored document or returns domain.ErrNoArtifact
	Current(ctx context.Context) (*domain.ArtifactReference, error)

	// Clear removes the current document if there is one
	Clear(ctx context.Context) error
}

// ManifestRepository defines the port for the current artifact's metadata
type ManifestRepository interface {
	// Save replaces the stored manifest
	Save(ctx context.Context, manifest domain.Manifest) error

	// Load returns the stored manifest or domain.ErrNoArtifact
	Load(ctx context.Context) (*domain.Manifest, error)

	// Delete removes the stored manifest
	Delete(ctx context.Context) error
}

// CaptureRequest is passed to the capture collaborator
type CaptureRequest struct {
	// Quality is the cropped image quality in percent (1-100)
	Quality int
}

// Capturer defines the port for the external capture facility
type Capturer interface {
	// Capture returns zero or more captured images in page order
	Capture(ctx context.Context, req CaptureRequest) ([]domain.SourceImage, error)
}

// TransferRequest is passed to the transfer collaborator
type TransferRequest struct {
	URI           string
	MimeType      string
	Title         string
	ShareWithApps bool
}

// Transferer defines the port for the platform share / save facility
type Transferer interface {
	// Transfer hands the document to the platform. Errors are reported as-is.
	Transfer(ctx context.Context, req TransferRequest) error
}
