package signature

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// FontStyle selects the decorative face used for typed signatures.
type FontStyle string

const (
	// FontCursive approximates a handwriting look.
	FontCursive FontStyle = "cursive"
	// FontSerif is the plainer alternative offered next to it.
	FontSerif FontStyle = "serif"
)

// Typed signatures render onto a fixed offscreen raster, matching the
// shape drawn signatures produce.
const (
	typedWidth    = 300
	typedHeight   = 100
	typedFontSize = 30
)

var typedFonts = map[FontStyle][]byte{
	FontCursive: goitalic.TTF,
	FontSerif:   goregular.TTF,
}

// RenderTyped rasterizes a typed signature: the text centered at 30px on a
// white 300x100 canvas, returned as a PNG data URL.
func RenderTyped(text string, style FontStyle) (string, error) {
	if text == "" {
		return "", fmt.Errorf("typed signature text is empty")
	}

	ttf, ok := typedFonts[style]
	if !ok {
		ttf = typedFonts[FontCursive]
	}

	parsed, err := opentype.Parse(ttf)
	if err != nil {
		return "", fmt.Errorf("failed to parse signature font: %w", err)
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    typedFontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return "", fmt.Errorf("failed to build signature font face: %w", err)
	}
	defer face.Close()

	img := image.NewRGBA(image.Rect(0, 0, typedWidth, typedHeight))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: face,
	}

	width := drawer.MeasureString(text)
	metrics := face.Metrics()
	drawer.Dot = fixed.Point26_6{
		X: (fixed.I(typedWidth) - width) / 2,
		Y: fixed.I(typedHeight)/2 + (metrics.Ascent-metrics.Descent)/2,
	}
	drawer.DrawString(text)

	return EncodePNG(img)
}
