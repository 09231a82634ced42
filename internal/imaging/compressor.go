package imaging

import (
	"bytes"
	"image"
	"image/jpeg"
	"math"

	"golang.org/x/image/draw"
)

const (
	DefaultMaxWidth  = 1920
	DefaultMaxHeight = 1080
	DefaultQuality   = 65
)

// Compressor downscales slide images before they are persisted
type Compressor struct {
	MaxWidth  int
	MaxHeight int
	Quality   int
}

// NewCompressor returns a compressor with the web defaults (1920x1080, q65)
func NewCompressor() *Compressor {
	return &Compressor{
		MaxWidth:  DefaultMaxWidth,
		MaxHeight: DefaultMaxHeight,
		Quality:   DefaultQuality,
	}
}

var defaultCompressor = NewCompressor()

// Compress runs the default compressor over a data URI
func Compress(dataURI string) string {
	return defaultCompressor.Compress(dataURI)
}

// Compress re-encodes the image in dataURI as JPEG inside the bounding box.
// Any failure returns the input unchanged: a failed compression never
// blocks a save.
func (c *Compressor) Compress(dataURI string) string {
	img, err := DecodeDataURI(dataURI)
	if err != nil {
		return dataURI
	}

	b := img.Bounds()
	w, h := FitWithin(b.Dx(), b.Dy(), c.MaxWidth, c.MaxHeight)

	var src image.Image = img
	if w != b.Dx() || h != b.Dy() {
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
		src = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, &jpeg.Options{Quality: c.Quality}); err != nil {
		return dataURI
	}
	return EncodeDataURI("image/jpeg", buf.Bytes())
}

// FitWithin scales (w, h) down to fit (maxW, maxH) keeping the aspect
// ratio. Width is clamped first, then height. Images never grow.
func FitWithin(w, h, maxW, maxH int) (int, int) {
	if w <= 0 || h <= 0 || (w <= maxW && h <= maxH) {
		return w, h
	}

	ratio := float64(w) / float64(h)
	if w > maxW {
		w = maxW
		h = int(math.Round(float64(w) / ratio))
	}
	if h > maxH {
		h = maxH
		w = int(math.Round(float64(h) * ratio))
	}
	return max(w, 1), max(h, 1)
}
