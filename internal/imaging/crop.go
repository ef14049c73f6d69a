package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/blast-cropper/internal/projection"
	"github.com/ironsheep/blast-cropper/internal/region"
)

// CropResult contains the cropped image data
type CropResult struct {
	Index       int    `json:"index"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// CropRegion copies the pixels of r out of img.
//
// r is relative to the image's top-left pixel and must lie inside the image;
// rectangles from region.BoundingRect on this image's mask always do.
func CropRegion(img image.Image, r region.Rect) (*image.NRGBA, error) {
	bounds := img.Bounds()
	rect := r.Image().Add(bounds.Min)

	if r.Width <= 0 || r.Height <= 0 {
		return nil, fmt.Errorf("invalid crop region: width and height must be positive, got %dx%d", r.Width, r.Height)
	}
	if !rect.In(bounds) {
		return nil, fmt.Errorf("crop region (%d,%d)-(%d,%d) outside image bounds (%d,%d)-(%d,%d)",
			rect.Min.X, rect.Min.Y, rect.Max.X, rect.Max.Y, bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	}

	return imaging.Crop(img, rect), nil
}

// CropAll cuts every crop instruction out of img, in order.
func CropAll(img image.Image, crops []projection.Crop) ([]*image.NRGBA, error) {
	out := make([]*image.NRGBA, 0, len(crops))
	for _, c := range crops {
		sub, err := CropRegion(img, c.Rect)
		if err != nil {
			return nil, fmt.Errorf("failed to crop region %d: %w", c.Index, err)
		}
		out = append(out, sub)
	}
	return out, nil
}

// EncodePNGBase64 encodes img as a base64 PNG for transport over MCP.
func EncodePNGBase64(img image.Image, index int) (*CropResult, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode cropped image: %w", err)
	}

	return &CropResult{
		Index:       index,
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}
