package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"

	_ "image/png"

	"github.com/disintegration/imaging"
)

const (
	DefaultMaxImageSize = 5 * 1024 * 1024 // 5MB
	ThumbnailSize       = 300
)

var (
	ErrImageTooLarge     = errors.New("image too large")
	ErrNotAnImage        = errors.New("file is not an image")
	ErrImageFormatDenied = errors.New("image format not allowed")
)

type ImageProcessor struct {
	MaxSize int64 // bytes
}

func NewImageProcessor() *ImageProcessor {
	return &ImageProcessor{MaxSize: DefaultMaxImageSize}
}

// ValidateImage chỉ chấp nhận JPEG/PNG <= MaxSize, trả về format ("jpeg" | "png")
func (p *ImageProcessor) ValidateImage(data []byte) (string, error) {
	if int64(len(data)) > p.MaxSize {
		return "", fmt.Errorf("%w: exceeds %dMB", ErrImageTooLarge, p.MaxSize/(1024*1024))
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", ErrNotAnImage
	}
	switch format {
	case "jpeg", "png":
		return format, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrImageFormatDenied, format)
	}
}

// Thumbnail fit ảnh vào ThumbnailSize x ThumbnailSize và encode JPEG quality 85
func (p *ImageProcessor) Thumbnail(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("cannot decode image: %w", err)
	}

	resized := imaging.Fit(img, ThumbnailSize, ThumbnailSize, imaging.Lanczos)

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, resized, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("cannot encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
