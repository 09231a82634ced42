package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

var (
	ErrNotDataURI    = errors.New("not a base64 data URI")
	ErrNotAnImage    = errors.New("payload is not an image")
	ErrUploadTooBig  = errors.New("image upload exceeds size limit")
	ErrImageTooLarge = errors.New("image dimensions exceed decode limit")
)

// MaxDecodePixels bounds the pixel count an image header may declare before
// it is decoded
const MaxDecodePixels = 64 << 20

// ParseDataURI splits a base64 data URI into its media type and raw bytes
func ParseDataURI(uri string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, ErrNotDataURI
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return "", nil, ErrNotDataURI
	}
	mediaType := strings.TrimSuffix(meta, ";base64")

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("failed to decode base64: %w", err)
	}
	return mediaType, raw, nil
}

// EncodeDataURI builds a base64 data URI
func EncodeDataURI(mediaType string, raw []byte) string {
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(raw)
}

// DecodeDataURI decodes the image carried by a data URI
func DecodeDataURI(uri string) (image.Image, error) {
	_, raw, err := ParseDataURI(uri)
	if err != nil {
		return nil, err
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image header: %w", err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxDecodePixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// DataURIFromUpload reads at most limit bytes of an uploaded image and
// returns it as a data URI. The payload must sniff as an image.
func DataURIFromUpload(r io.Reader, limit int64) (string, error) {
	raw, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(raw)) > limit {
		return "", ErrUploadTooBig
	}
	mediaType := http.DetectContentType(raw)
	if !strings.HasPrefix(mediaType, "image/") {
		return "", ErrNotAnImage
	}
	return EncodeDataURI(mediaType, raw), nil
}
