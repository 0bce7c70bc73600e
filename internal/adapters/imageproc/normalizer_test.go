package imageproc

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamal-hamza/sx-cli/internal/core/domain"
)

func writeTestImage(t *testing.T, dir, name string, w, h int) string {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	switch filepath.Ext(name) {
	case ".png":
		require.NoError(t, png.Encode(&buf, img))
	default:
		require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}))
	}

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
	return path
}

func decodeConfig(t *testing.T, path string) (image.Config, string) {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cfg, format, err := image.DecodeConfig(f)
	require.NoError(t, err)
	return cfg, format
}

func TestNormalizer_Normalize(t *testing.T) {
	tests := []struct {
		name       string
		file       string
		w, h       int
		wantW      int
		wantH      int
		wantFormat domain.ImageFormat
		wantCodec  string
	}{
		{"large landscape png", "wide.png", 1600, 1200, 800, 600, domain.FormatPNG, "png"},
		{"large portrait jpeg", "tall.jpeg", 900, 1800, 400, 800, domain.FormatJPEG, "jpeg"},
		{"small jpg untouched", "small.jpg", 320, 240, 320, 240, domain.FormatJPEG, "jpeg"},
		{"square at bound", "square.JPG", 800, 800, 800, 800, domain.FormatJPEG, "jpeg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srcDir := t.TempDir()
			tmpDir := t.TempDir()
			srcPath := writeTestImage(t, srcDir, tt.file, tt.w, tt.h)
			original, err := os.ReadFile(srcPath)
			require.NoError(t, err)

			n := NewNormalizer(tmpDir, 800, 80)
			out, err := n.Normalize(context.Background(), domain.NewSourceImage(srcPath))
			require.NoError(t, err)

			assert.Equal(t, tt.wantW, out.Width)
			assert.Equal(t, tt.wantH, out.Height)
			assert.Equal(t, tt.wantFormat, out.Format)
			assert.Equal(t, tmpDir, filepath.Dir(out.Path))

			cfg, codec := decodeConfig(t, out.Path)
			assert.Equal(t, tt.wantW, cfg.Width)
			assert.Equal(t, tt.wantH, cfg.Height)
			assert.Equal(t, tt.wantCodec, codec)

			after, err := os.ReadFile(srcPath)
			require.NoError(t, err)
			assert.Equal(t, original, after, "source image must not be modified")

			require.NoError(t, out.Release())
			_, err = os.Stat(out.Path)
			assert.True(t, os.IsNotExist(err))
		})
	}
}

func TestNormalizer_UniqueTransientNames(t *testing.T) {
	srcPath := writeTestImage(t, t.TempDir(), "page.png", 50, 50)
	n := NewNormalizer(t.TempDir(), 0, 0)

	first, err := n.Normalize(context.Background(), domain.NewSourceImage(srcPath))
	require.NoError(t, err)
	second, err := n.Normalize(context.Background(), domain.NewSourceImage(srcPath))
	require.NoError(t, err)

	assert.NotEqual(t, first.Path, second.Path)
}

func TestNormalizer_UnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	bmp := filepath.Join(dir, "scan.bmp")
	require.NoError(t, os.WriteFile(bmp, []byte("BM"), 0644))

	tmpDir := t.TempDir()
	_, err := NewNormalizer(tmpDir, 800, 80).Normalize(context.Background(), domain.NewSourceImage(bmp))
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)

	entries, _ := os.ReadDir(tmpDir)
	assert.Empty(t, entries)
}

func TestNormalizer_BadContent(t *testing.T) {
	dir := t.TempDir()
	fake := filepath.Join(dir, "fake.jpg")
	require.NoError(t, os.WriteFile(fake, []byte("this is plain text, not a photo"), 0644))

	tmpDir := t.TempDir()
	_, err := NewNormalizer(tmpDir, 800, 80).Normalize(context.Background(), domain.NewSourceImage(fake))
	require.ErrorIs(t, err, domain.ErrImageProcessing)

	var procErr *domain.ImageProcessingError
	require.ErrorAs(t, err, &procErr)
	assert.Equal(t, "fake.jpg", procErr.Source)

	entries, _ := os.ReadDir(tmpDir)
	assert.Empty(t, entries)
}

func TestNormalizer_MissingSource(t *testing.T) {
	_, err := NewNormalizer(t.TempDir(), 800, 80).
		Normalize(context.Background(), domain.NewSourceImage(filepath.Join(t.TempDir(), "gone.png")))
	assert.ErrorIs(t, err, domain.ErrImageProcessing)
}
