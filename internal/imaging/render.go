package imaging

import (
	"bytes"
	"fmt"
	"image"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"anniversary-timeline/internal/models"
)

const (
	ExportScale      = 2
	ExportBackground = "#fef3f2"
	ExportWidth      = 540
	ExportHeight     = 960
)

// RenderOptions controls slide rasterization. Width and Height are logical
// pixels; the output is Width*Scale x Height*Scale.
type RenderOptions struct {
	Width      int
	Height     int
	Scale      float64
	Background string
}

// DefaultRenderOptions returns the download settings: 2x scale over an opaque background
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		Width:      ExportWidth,
		Height:     ExportHeight,
		Scale:      ExportScale,
		Background: ExportBackground,
	}
}

// SlideExportFilename is the download name for the 1-based slide number
func SlideExportFilename(slideNumber int) string {
	return fmt.Sprintf("anniversary-timeline-slide-%d.png", slideNumber)
}

var (
	fontOnce sync.Once
	fontData *truetype.Font
	fontErr  error
)

func fontFace(size float64) (font.Face, error) {
	fontOnce.Do(func() {
		fontData, fontErr = truetype.Parse(goregular.TTF)
	})
	if fontErr != nil {
		return nil, fmt.Errorf("failed to parse TTF: %w", fontErr)
	}
	return truetype.NewFace(fontData, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	}), nil
}

// RenderSlidePNG rasterizes a slide the way the player shows it: a quiz
// slide gets a blurred, dimmed photo with the question centered, any other
// slide a sharp photo with the caption at the bottom.
func RenderSlidePNG(slide models.Slide, opts RenderOptions) ([]byte, error) {
	if opts.Scale <= 0 {
		opts.Scale = 1
	}
	w := int(float64(opts.Width) * opts.Scale)
	h := int(float64(opts.Height) * opts.Scale)
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid render size %dx%d", w, h)
	}

	dc := gg.NewContext(w, h)
	dc.SetHexColor(opts.Background)
	dc.Clear()

	if slide.Image != "" {
		if img, err := DecodeDataURI(slide.Image); err == nil {
			photo := coverFit(img, w, h)
			if slide.HasQuiz() {
				photo = blur(photo, 8)
			}
			dc.DrawImage(photo, 0, 0)
		}
	}

	margin := 24 * opts.Scale
	textWidth := float64(w) - 2*margin

	if slide.HasQuiz() {
		dc.SetRGBA(0, 0, 0, 0.6)
		dc.DrawRectangle(0, 0, float64(w), float64(h))
		dc.Fill()

		face, err := fontFace(26 * opts.Scale)
		if err != nil {
			return nil, err
		}
		dc.SetFontFace(face)
		dc.SetRGB(1, 1, 1)
		dc.DrawStringWrapped(slide.Quiz.Question, float64(w)/2, float64(h)*0.35, 0.5, 0.5, textWidth, 1.4, gg.AlignCenter)

		answerFace, err := fontFace(20 * opts.Scale)
		if err != nil {
			return nil, err
		}
		dc.SetFontFace(answerFace)
		y := float64(h) * 0.5
		for _, a := range slide.Quiz.Answers {
			dc.SetRGBA(1, 1, 1, 0.15)
			dc.DrawRoundedRectangle(margin, y, textWidth, 56*opts.Scale, 12*opts.Scale)
			dc.Fill()
			dc.SetRGB(1, 1, 1)
			dc.DrawStringAnchored(a.Text, float64(w)/2, y+28*opts.Scale, 0.5, 0.35)
			y += 68 * opts.Scale
		}
	} else if slide.Phrase != "" {
		band := float64(h) * 0.3
		dc.SetRGBA(0, 0, 0, 0.55)
		dc.DrawRectangle(0, float64(h)-band, float64(w), band)
		dc.Fill()

		face, err := fontFace(24 * opts.Scale)
		if err != nil {
			return nil, err
		}
		dc.SetFontFace(face)
		dc.SetRGB(1, 1, 1)
		dc.DrawStringWrapped(slide.Phrase, float64(w)/2, float64(h)-margin, 0.5, 1, textWidth, 1.4, gg.AlignCenter)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// coverFit scales and center-crops img to exactly w x h
func coverFit(img image.Image, w, h int) image.Image {
	b := img.Bounds()
	scale := max(float64(w)/float64(b.Dx()), float64(h)/float64(b.Dy()))
	sw := int(float64(b.Dx()) * scale)
	sh := int(float64(b.Dy()) * scale)

	scaled := image.NewRGBA(image.Rect(0, 0, max(sw, 1), max(sh, 1)))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), img, b, draw.Src, nil)

	out := image.NewRGBA(image.Rect(0, 0, w, h))
	offset := image.Point{X: (sw - w) / 2, Y: (sh - h) / 2}
	draw.Draw(out, out.Bounds(), scaled, offset, draw.Src)
	return out
}

// blur approximates a gaussian blur by a downscale/upscale round trip
func blur(img image.Image, factor int) image.Image {
	b := img.Bounds()
	small := image.NewRGBA(image.Rect(0, 0, max(b.Dx()/factor, 1), max(b.Dy()/factor, 1)))
	draw.ApproxBiLinear.Scale(small, small.Bounds(), img, b, draw.Src, nil)

	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.BiLinear.Scale(out, out.Bounds(), small, small.Bounds(), draw.Src, nil)
	return out
}
