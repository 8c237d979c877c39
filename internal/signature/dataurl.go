package signature

import (
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"strings"
)

const (
	dataURLPrefix = "data:"
	base64Marker  = ";base64,"

	// MIME fallback when a data URL does not declare one.
	MIMEPNG  = "image/png"
	MIMEJPEG = "image/jpeg"
)

// EncodePNG serializes an image as a PNG data URL.
func EncodePNG(img image.Image) (string, error) {
	var sb strings.Builder
	sb.WriteString(dataURLPrefix)
	sb.WriteString(MIMEPNG)
	sb.WriteString(base64Marker)

	enc := base64.NewEncoder(base64.StdEncoding, &sb)
	if err := png.Encode(enc, img); err != nil {
		return "", fmt.Errorf("failed to encode signature png: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize signature png: %w", err)
	}
	return sb.String(), nil
}

// IsDataURL reports whether a field value looks like an image data URL.
func IsDataURL(value string) bool {
	return strings.HasPrefix(value, dataURLPrefix+"image")
}

// DecodeDataURL extracts the raw image bytes and declared MIME type from a
// base64 image data URL. The MIME defaults to PNG when the URL does not
// state one.
func DecodeDataURL(value string) (data []byte, mime string, err error) {
	if !strings.HasPrefix(value, dataURLPrefix) {
		return nil, "", fmt.Errorf("not a data URL")
	}
	rest := value[len(dataURLPrefix):]

	idx := strings.Index(rest, base64Marker)
	if idx < 0 {
		return nil, "", fmt.Errorf("data URL is not base64 encoded")
	}

	mime = rest[:idx]
	if mime == "" {
		mime = MIMEPNG
	}

	payload := rest[idx+len(base64Marker):]
	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("invalid base64 image payload: %w", err)
	}
	return data, mime, nil
}
