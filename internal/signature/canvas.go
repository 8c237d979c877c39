// Package signature implements the capture surface behind signature and
// initial fields: a freehand drawing canvas, a typed-text renderer, and
// the PNG data URL codec both feed into.
package signature

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
)

const defaultLineWidth = 2.0

// Canvas is a fixed-size raster surface tracking freehand pen strokes.
// The background is opaque white, never transparent, so the committed
// raster stays flattenable on export. Pointer handling is uniform: mouse
// and touch events both funnel into PenDown/PenMove/PenUp.
type Canvas struct {
	img       *image.RGBA
	width     int
	height    int
	lineWidth float64

	penDown bool
	lastX   float64
	lastY   float64
	strokes int
}

// NewCanvas creates a white canvas of the given pixel dimensions.
func NewCanvas(width, height int) (*Canvas, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid canvas size %dx%d", width, height)
	}
	c := &Canvas{
		width:     width,
		height:    height,
		lineWidth: defaultLineWidth,
	}
	c.Clear()
	return c, nil
}

// Clear resets the canvas to a blank white fill. Any in-progress stroke is
// abandoned.
func (c *Canvas) Clear() {
	c.img = image.NewRGBA(image.Rect(0, 0, c.width, c.height))
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	c.penDown = false
	c.strokes = 0
}

// PenDown begins a stroke at a canvas-local position.
func (c *Canvas) PenDown(x, y float64) {
	c.penDown = true
	c.lastX, c.lastY = x, y
	c.stamp(x, y)
	c.strokes++
}

// PenMove extends the current stroke with a line segment. Ignored while
// the pen is up, matching pointer-move events that arrive between
// strokes.
func (c *Canvas) PenMove(x, y float64) {
	if !c.penDown {
		return
	}
	c.line(c.lastX, c.lastY, x, y)
	c.lastX, c.lastY = x, y
}

// PenUp closes the current stroke.
func (c *Canvas) PenUp() {
	c.penDown = false
}

// Empty reports whether no strokes have been drawn since the last clear.
func (c *Canvas) Empty() bool {
	return c.strokes == 0
}

// Image returns the current raster.
func (c *Canvas) Image() image.Image {
	return c.img
}

// DataURL serializes the canvas to a PNG data URL, the shape every
// signature value carries.
func (c *Canvas) DataURL() (string, error) {
	return EncodePNG(c.img)
}

// line walks the segment stamping a round pen at sub-pixel steps, giving
// round caps and joins like the browser canvas the editor draws on.
func (c *Canvas) line(x0, y0, x1, y1 float64) {
	dx, dy := x1-x0, y1-y0
	dist := math.Hypot(dx, dy)
	if dist == 0 {
		c.stamp(x1, y1)
		return
	}
	steps := int(dist*2) + 1
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		c.stamp(x0+dx*t, y0+dy*t)
	}
}

func (c *Canvas) stamp(cx, cy float64) {
	r := c.lineWidth / 2
	minX := int(math.Floor(cx - r))
	maxX := int(math.Ceil(cx + r))
	minY := int(math.Floor(cy - r))
	maxY := int(math.Ceil(cy + r))

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			if x < 0 || y < 0 || x >= c.width || y >= c.height {
				continue
			}
			px, py := float64(x)+0.5, float64(y)+0.5
			if math.Hypot(px-cx, py-cy) <= r {
				c.img.SetRGBA(x, y, color.RGBA{A: 0xff})
			}
		}
	}
}
