package imageproc

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/kamal-hamza/sx-cli/internal/core/domain"
)

const (
	DefaultMaxDimension = 800
	DefaultJPEGQuality  = 80
)

// Normalizer bounds a source image to MaxDimension on its longest side and
// re-encodes it in its canonical format.
type Normalizer struct {
	tmpDir       string
	maxDimension int
	jpegQuality  int
}

// NewNormalizer creates a normalizer writing transient files into tmpDir.
// Non-positive values fall back to the defaults.
func NewNormalizer(tmpDir string, maxDimension, jpegQuality int) *Normalizer {
	if maxDimension <= 0 {
		maxDimension = DefaultMaxDimension
	}
	if jpegQuality <= 0 || jpegQuality > 100 {
		jpegQuality = DefaultJPEGQuality
	}
	return &Normalizer{
		tmpDir:       tmpDir,
		maxDimension: maxDimension,
		jpegQuality:  jpegQuality,
	}
}

func (n *Normalizer) Normalize(ctx context.Context, src domain.SourceImage) (*domain.NormalizedImage, error) {
	format, err := domain.FormatFromPath(src.Path)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mtype, err := mimetype.DetectFile(src.Path)
	if err != nil {
		return nil, domain.NewImageProcessingError(src.Name(), "read", err)
	}
	if !mtype.Is("image/jpeg") && !mtype.Is("image/png") {
		return nil, domain.NewImageProcessingError(src.Name(), "decode",
			fmt.Errorf("content is %s, not a JPEG or PNG image", mtype.String()))
	}

	img, err := imaging.Open(src.Path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, domain.NewImageProcessingError(src.Name(), "decode", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, domain.NewImageProcessingError(src.Name(), "decode",
			fmt.Errorf("empty image %dx%d", bounds.Dx(), bounds.Dy()))
	}

	// Fit only ever shrinks
	resized := imaging.Fit(img, n.maxDimension, n.maxDimension, imaging.Lanczos)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(n.tmpDir, 0755); err != nil {
		return nil, domain.NewStorageError("mkdir", n.tmpDir, err)
	}

	path := filepath.Join(n.tmpDir, fmt.Sprintf("norm-%s%s", uuid.NewString(), format.Extension()))
	if err := n.encode(path, resized, format); err != nil {
		_ = os.Remove(path)
		return nil, domain.NewImageProcessingError(src.Name(), "encode", err)
	}

	size := resized.Bounds()
	return &domain.NormalizedImage{
		Source: src,
		Path:   path,
		Format: format,
		Width:  size.Dx(),
		Height: size.Dy(),
	}, nil
}

func (n *Normalizer) encode(path string, img image.Image, format domain.ImageFormat) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	switch format {
	case domain.FormatPNG:
		err = imaging.Encode(f, img, imaging.PNG)
	default:
		err = imaging.Encode(f, img, imaging.JPEG, imaging.JPEGQuality(n.jpegQuality))
	}
	if err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}
