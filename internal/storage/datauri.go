package storage

import (
	"encoding/base64"
	"errors"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// MaxImageSize caps decoded image payloads.
const MaxImageSize = 10 << 20

var (
	// ErrInvalidImage is returned for malformed or non-image data URIs.
	ErrInvalidImage = errors.New("image must be a base64 encoded data URI")
	// ErrImageTooLarge is returned when the decoded image exceeds MaxImageSize.
	ErrImageTooLarge = errors.New("image is too large")
)

// Raster formats only; SVG may carry script.
var extensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/bmp":  ".bmp",
}

// Image is a decoded inline image.
type Image struct {
	Data        []byte
	ContentType string
	Extension   string
}

// DecodeDataURI parses "data:image/<type>;base64,<payload>". The payload
// must sniff as the declared type.
func DecodeDataURI(uri string) (*Image, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(uri), "data:")
	if !ok {
		return nil, ErrInvalidImage
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, ErrInvalidImage
	}
	contentType, encoding, ok := strings.Cut(meta, ";")
	if !ok || encoding != "base64" {
		return nil, ErrInvalidImage
	}
	contentType = strings.ToLower(contentType)
	if contentType == "image/jpg" {
		contentType = "image/jpeg"
	}
	ext, ok := extensions[contentType]
	if !ok {
		return nil, ErrInvalidImage
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > MaxImageSize+3 {
		return nil, ErrImageTooLarge
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, ErrInvalidImage
	}
	if len(data) == 0 {
		return nil, ErrInvalidImage
	}
	if len(data) > MaxImageSize {
		return nil, ErrImageTooLarge
	}
	if !mimetype.Detect(data).Is(contentType) {
		return nil, ErrInvalidImage
	}
	return &Image{Data: data, ContentType: contentType, Extension: ext}, nil
}
