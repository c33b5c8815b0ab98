// Package storage persists event cover images.  Images arrive as data
// URIs, are validated and decoded here, and are written to either the
// local filesystem or an S3-compatible bucket.
package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"regexp"
	"strings"

	_ "golang.org/x/image/webp"
)

// Store writes and removes binary objects addressed by a relative path.
type Store interface {
	Put(ctx context.Context, path string, data []byte, contentType string) error
	Delete(ctx context.Context, path string) error
}

// Decoding errors.  Their messages are shown to API clients.
var (
	ErrInvalidDataURI     = errors.New("the image must be a base64 data URI (data:image/<type>;base64,...)")
	ErrUnsupportedFormat  = errors.New("the image type must be one of: jpg, jpeg, png, gif, webp")
	ErrUndecodablePayload = errors.New("the image data could not be decoded")
	ErrFormatMismatch     = errors.New("the image data does not match its declared type")
)

var dataURIPrefix = regexp.MustCompile(`^data:image/(\w+);base64,`)

var allowedFormats = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
}

// Image is a decoded upload ready to be stored.
type Image struct {
	Data        []byte
	Ext         string // extension without dot, as declared by the data URI
	ContentType string
	Width       int
	Height      int
}

// DecodeDataURI parses "data:image/<fmt>;base64,<payload>", checks the
// declared format against the allowed set, base64-decodes the payload
// and verifies that the bytes are an image of the declared format.
func DecodeDataURI(s string) (*Image, error) {
	m := dataURIPrefix.FindStringSubmatch(s)
	if m == nil {
		return nil, ErrInvalidDataURI
	}
	ext := strings.ToLower(m[1])
	ct, ok := allowedFormats[ext]
	if !ok {
		return nil, ErrUnsupportedFormat
	}
	payload := s[len(m[0]):]
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil || len(data) == 0 {
		return nil, ErrUndecodablePayload
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, ErrUndecodablePayload
	}
	if format != canonicalFormat(ext) {
		return nil, ErrFormatMismatch
	}
	return &Image{Data: data, Ext: ext, ContentType: ct, Width: cfg.Width, Height: cfg.Height}, nil
}

// canonicalFormat maps an extension to the name image.DecodeConfig
// reports for it.
func canonicalFormat(ext string) string {
	if ext == "jpg" {
		return "jpeg"
	}
	return ext
}
