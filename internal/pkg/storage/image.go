package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// ErrInvalidImage is returned when the content cannot be decoded as an image.
var ErrInvalidImage = errors.New("invalid image")

// ImageProcessor decodes uploaded images and re-encodes them as bounded JPEGs.
type ImageProcessor struct {
	quality int
}

// NewImageProcessor creates a new ImageProcessor.
func NewImageProcessor() *ImageProcessor {
	return &ImageProcessor{quality: 85}
}

func (p *ImageProcessor) decode(content io.Reader) (image.Image, error) {
	img, _, err := image.Decode(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidImage, err)
	}
	return img, nil
}

func (p *ImageProcessor) encode(img image.Image, quality int) (*bytes.Buffer, error) {
	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf, nil
}

// Resize scales the image down to fit within maxWidth x maxHeight, keeping its
// aspect ratio, and returns it as JPEG. Smaller images are not upscaled.
func (p *ImageProcessor) Resize(content io.Reader, maxWidth, maxHeight int) (*bytes.Buffer, error) {
	img, err := p.decode(content)
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	if b.Dx() > maxWidth || b.Dy() > maxHeight {
		img = imaging.Fit(img, maxWidth, maxHeight, imaging.Lanczos)
	}
	return p.encode(img, p.quality)
}

// GenerateThumbnail creates a thumbnail bounded by maxWidth x maxHeight as JPEG.
func (p *ImageProcessor) GenerateThumbnail(content io.Reader, maxWidth, maxHeight int) (*bytes.Buffer, error) {
	img, err := p.decode(content)
	if err != nil {
		return nil, err
	}

	thumbnail := imaging.Fit(img, maxWidth, maxHeight, imaging.Lanczos)
	return p.encode(thumbnail, 80)
}
