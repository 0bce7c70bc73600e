package services

import (
	"context"
	"fmt"

	"github.com/kamal-hamza/sx-cli/internal/core/domain"
	"github.com/kamal-hamza/sx-cli/internal/core/ports"
)

// DefaultCropQuality is the capture quality used when none is configured
const DefaultCropQuality = 100

// CaptureService collects source images from the capture collaborator
type CaptureService struct {
	capturer ports.Capturer
}

// NewCaptureService creates a new capture service
func NewCaptureService(capturer ports.Capturer) *CaptureService {
	return &CaptureService{capturer: capturer}
}

// CaptureRequest represents a request to collect captured images
type CaptureRequest struct {
	Quality int // 1-100, zero means DefaultCropQuality
}

// CaptureResponse lists the captured images in page order
type CaptureResponse struct {
	Images []domain.SourceImage
}

// Empty reports whether nothing was captured
func (r *CaptureResponse) Empty() bool {
	return len(r.Images) == 0
}

// Execute collects the captured images. Zero images is not an error.
func (s *CaptureService) Execute(ctx context.Context, req CaptureRequest) (*CaptureResponse, error) {
	quality := req.Quality
	if quality == 0 {
		quality = DefaultCropQuality
	}
	if quality < 1 || quality > 100 {
		return nil, fmt.Errorf("crop quality must be between 1 and 100, got %d", quality)
	}

	images, err := s.capturer.Capture(ctx, ports.CaptureRequest{Quality: quality})
	if err != nil {
		return nil, fmt.Errorf("capture failed: %w", err)
	}

	return &CaptureResponse{Images: images}, nil
}
