package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat is returned for sources outside the jpg/jpeg/png allow-list
	ErrUnsupportedFormat = errors.New("unsupported image format")

	// ErrImageProcessing matches any *ImageProcessingError
	ErrImageProcessing = errors.New("image processing failed")

	// ErrNoInput is returned when assembly is invoked with zero images
	ErrNoInput = errors.New("no images to assemble")

	// ErrStorage matches any *StorageError
	ErrStorage = errors.New("storage failure")

	// ErrTransfer matches any *TransferError
	ErrTransfer = errors.New("transfer failed")

	// ErrAssemblyInProgress rejects an assembly that overlaps a running one
	ErrAssemblyInProgress = errors.New("an assembly is already in progress")

	// ErrNoArtifact is returned when transfer is requested before any PDF exists
	ErrNoArtifact = errors.New("no PDF has been created yet")
)

// ImageProcessingError reports a decode, resize, encode or I/O failure for one image
type ImageProcessingError struct {
	Source string
	Op     string
	Err    error
}

func (e *ImageProcessingError) Error() string {
	return fmt.Sprintf("failed to %s image %s: %v", e.Op, e.Source, e.Err)
}

func (e *ImageProcessingError) Unwrap() error { return e.Err }

func (e *ImageProcessingError) Is(target error) bool { return target == ErrImageProcessing }

// NewImageProcessingError wraps err for the named source
func NewImageProcessingError(source, op string, err error) *ImageProcessingError {
	return &ImageProcessingError{Source: source, Op: op, Err: err}
}

// StorageError reports a persistence or transient-file I/O failure
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// NewStorageError wraps err for the given operation and path
func NewStorageError(op, path string, err error) *StorageError {
	return &StorageError{Op: op, Path: path, Err: err}
}

// TransferError carries a failure reported by the transfer collaborator as-is
type TransferError struct {
	Action string
	Err    error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("failed to %s the PDF: %v", e.Action, e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }

func (e *TransferError) Is(target error) bool { return target == ErrTransfer }

// UserMessage returns a short message suitable for the terminal
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrNoInput):
		return "No images: please scan at least one image first."
	case errors.Is(err, ErrNoArtifact):
		return "No PDF: please create a PDF first."
	case errors.Is(err, ErrAssemblyInProgress):
		return "A PDF is already being created. Try again when it finishes."
	case errors.Is(err, ErrUnsupportedFormat):
		return err.Error()
	case errors.Is(err, ErrImageProcessing):
		var pe *ImageProcessingError
		if errors.As(err, &pe) {
			return "Failed to process " + pe.Source + "."
		}
		return "Failed to resize the image."
	case errors.Is(err, ErrStorage):
		return "Failed to save the PDF: " + err.Error()
	case errors.Is(err, ErrTransfer):
		return err.Error()
	default:
		return "Failed to create PDF: " + err.Error()
	}
}
