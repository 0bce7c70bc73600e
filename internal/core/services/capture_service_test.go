package services

import (
	"context"
	"errors"
	"testing"

	"github.com/kamal-hamza/sx-cli/internal/core/ports/mocks"
)

func TestCaptureService_Execute(t *testing.T) {
	tests := []struct {
		name        string
		quality     int
		wantQuality int
		wantErr     bool
	}{
		{"default quality", 0, 100, false},
		{"explicit quality", 75, 75, false},
		{"lowest", 1, 1, false},
		{"too high", 101, 0, true},
		{"negative", -5, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			capturer := mocks.NewMockCapturer("/inbox/1.jpg", "/inbox/2.png")
			svc := NewCaptureService(capturer)

			resp, err := svc.Execute(context.Background(), CaptureRequest{Quality: tt.quality})
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected validation error")
				}
				if len(capturer.GetRequests()) != 0 {
					t.Error("capturer should not be called with invalid quality")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(resp.Images) != 2 {
				t.Errorf("expected 2 images, got %d", len(resp.Images))
			}
			if got := capturer.GetRequests()[0].Quality; got != tt.wantQuality {
				t.Errorf("quality = %d, want %d", got, tt.wantQuality)
			}
		})
	}
}

func TestCaptureService_Execute_Empty(t *testing.T) {
	svc := NewCaptureService(mocks.NewMockCapturer())

	resp, err := svc.Execute(context.Background(), CaptureRequest{})
	if err != nil {
		t.Fatalf("zero images should not be an error: %v", err)
	}
	if !resp.Empty() {
		t.Error("expected empty response")
	}
}

func TestCaptureService_Execute_CapturerError(t *testing.T) {
	capturer := mocks.NewMockCapturer()
	cause := errors.New("inbox unreadable")
	capturer.SetError(cause)

	_, err := NewCaptureService(capturer).Execute(context.Background(), CaptureRequest{})
	if !errors.Is(err, cause) {
		t.Errorf("expected wrapped capturer error, got %v", err)
	}
}
