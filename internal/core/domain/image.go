package domain

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ImageFormat is the canonical encoding used when embedding an image
type ImageFormat string

const (
	FormatJPEG ImageFormat = "jpeg" // lossy
	FormatPNG  ImageFormat = "png"  // lossless
)

// Extension returns the file extension written for the format
func (f ImageFormat) Extension() string {
	if f == FormatPNG {
		return ".png"
	}
	return ".jpg"
}

// MimeType returns the MIME type of the format
func (f ImageFormat) MimeType() string {
	if f == FormatPNG {
		return "image/png"
	}
	return "image/jpeg"
}

// supportedExtensions maps allowed source extensions to their canonical format
var supportedExtensions = map[string]ImageFormat{
	"jpg":  FormatJPEG,
	"jpeg": FormatJPEG,
	"png":  FormatPNG,
}

// IsSupportedExtension reports whether the path has an allow-listed image extension
func IsSupportedExtension(path string) bool {
	_, ok := supportedExtensions[extensionOf(path)]
	return ok
}

// FormatFromPath derives the canonical format from the file extension.
// Anything outside jpg, jpeg and png fails with ErrUnsupportedFormat.
func FormatFromPath(path string) (ImageFormat, error) {
	ext := extensionOf(path)
	format, ok := supportedExtensions[ext]
	if !ok {
		if ext == "" {
			ext = "none"
		}
		return "", fmt.Errorf("%w: %s (%s)", ErrUnsupportedFormat, ext, filepath.Base(path))
	}
	return format, nil
}

func extensionOf(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

// SourceImage is a captured page image. The core never mutates or deletes it.
type SourceImage struct {
	Path string `json:"path"`
}

// NewSourceImage creates a SourceImage for the given location
func NewSourceImage(path string) SourceImage {
	return SourceImage{Path: path}
}

// Name returns the base filename of the source
func (s SourceImage) Name() string {
	return filepath.Base(s.Path)
}

// SourceImagesFromPaths converts paths to source images, keeping order
func SourceImagesFromPaths(paths []string) []SourceImage {
	images := make([]SourceImage, len(paths))
	for i, p := range paths {
		images[i] = NewSourceImage(p)
	}
	return images
}

// NormalizedImage is a resized, re-encoded copy of a SourceImage.
// It lives in a transient file that is released once its page is built.
type NormalizedImage struct {
	Source SourceImage
	Path   string
	Format ImageFormat
	Width  int
	Height int
}

// Release removes the transient file. Releasing twice is harmless.
func (n *NormalizedImage) Release() error {
	if n == nil || n.Path == "" {
		return nil
	}
	if err := os.Remove(n.Path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
