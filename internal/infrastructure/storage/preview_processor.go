package storage

import (
	"bytes"
	"image"
	"image/jpeg"

	_ "image/gif"
	_ "image/png"

	"github.com/disintegration/imaging"
)

// PreviewProcessor renders the JPEG mini-preview shown on entry cards.
type PreviewProcessor struct {
	MaxEdge int
	Quality int
}

func NewPreviewProcessor() *PreviewProcessor {
	return &PreviewProcessor{MaxEdge: 512, Quality: 85}
}

// CanPreview reports whether the payload decodes as a supported image.
func (p *PreviewProcessor) CanPreview(data []byte) bool {
	_, _, err := image.DecodeConfig(bytes.NewReader(data))
	return err == nil
}

// BuildPreview downsizes the image to fit MaxEdge and encodes it as JPEG.
func (p *PreviewProcessor) BuildPreview(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	resized := imaging.Fit(img, p.MaxEdge, p.MaxEdge, imaging.Lanczos)
	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, resized, &jpeg.Options{Quality: p.Quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
