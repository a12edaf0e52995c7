package storage

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Save(ctx, "categories/a/image.png", bytes.NewReader([]byte("data"))))

	rc, err := s.Get(ctx, "categories/a/image.png")
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "data", string(got))

	require.NoError(t, s.Delete(ctx, "categories/a/image.png"))
	_, err = s.Get(ctx, "categories/a/image.png")
	assert.Error(t, err)

	// deleting twice is fine
	assert.NoError(t, s.Delete(ctx, "categories/a/image.png"))
}

func TestLocalStorageStaysInsideRoot(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	// Leading ".." segments are clamped to the root rather than escaping it.
	require.NoError(t, s.Save(ctx, "../../escape.txt", bytes.NewReader([]byte("x"))))
	rc, err := s.Get(ctx, "escape.txt")
	require.NoError(t, err)
	rc.Close()
}

func TestThumbnail(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 800, 400))
	for x := 0; x < 800; x++ {
		img.Set(x, 10, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	thumb, format, err := NewImageProcessor().Thumbnail(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "png", format)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(thumb))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 200, cfg.Width)
	assert.Equal(t, 100, cfg.Height)

	_, _, err = NewImageProcessor().Thumbnail([]byte("not an image"))
	assert.Error(t, err)
}

func TestThumbnailRejectsUnlistedFormats(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 10, 10)), imaging.BMP))

	_, _, err := NewImageProcessor().Thumbnail(buf.Bytes())
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestImageExtension(t *testing.T) {
	tests := []struct {
		format string
		ext    string
		ok     bool
	}{
		{"jpeg", ".jpg", true},
		{"png", ".png", true},
		{"gif", ".gif", true},
		{"bmp", "", false},
		{"html", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			ext, ok := ImageExtension(tt.format)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.ext, ext)
		})
	}
}
