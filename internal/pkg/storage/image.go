package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"

	"github.com/disintegration/imaging"
)

// ImageProcessor builds the thumbnails shown next to room categories.
type ImageProcessor struct {
	MaxWidth  int
	MaxHeight int
	Quality   int
}

// NewImageProcessor returns a processor producing 200x200 bounded JPEG thumbnails.
func NewImageProcessor() *ImageProcessor {
	return &ImageProcessor{MaxWidth: 200, MaxHeight: 200, Quality: 80}
}

// ErrUnsupportedFormat is returned for images that decode but may not be stored.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// imageExtensions maps the decoder's format name to the extension files are stored under.
var imageExtensions = map[string]string{
	"jpeg": ".jpg",
	"png":  ".png",
	"gif":  ".gif",
}

// ImageExtension returns the stored file extension for a decoded format.
func ImageExtension(format string) (string, bool) {
	ext, ok := imageExtensions[format]
	return ext, ok
}

// Thumbnail decodes src and returns a JPEG that fits the processor's bounding box,
// together with the format src was decoded as. Only JPEG, PNG and GIF are accepted.
func (p *ImageProcessor) Thumbnail(src []byte) ([]byte, string, error) {
	img, format, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	if _, ok := imageExtensions[format]; !ok {
		return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	thumbnail := imaging.Fit(img, p.MaxWidth, p.MaxHeight, imaging.Lanczos)

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, thumbnail, &jpeg.Options{Quality: p.Quality}); err != nil {
		return nil, "", fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), format, nil
}
