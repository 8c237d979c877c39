package signature

import "fmt"

// Mode selects which capture surface produces the committed raster.
type Mode string

const (
	ModeDraw Mode = "draw"
	ModeType Mode = "type"
)

// Default drawing surface dimensions, matching the capture dialog's
// canvas.
const (
	DefaultCanvasWidth  = 400
	DefaultCanvasHeight = 160
)

// Options configures a capture session.
type Options struct {
	// CanvasWidth/CanvasHeight size the freehand surface; zero values use
	// the defaults.
	CanvasWidth  int
	CanvasHeight int

	// KeepDraft preserves the drawn strokes across close/reopen of the
	// capture surface for the same field. The default clears on every
	// open.
	KeepDraft bool
}

// Capture is the modal signature capture session. Its canvas and backing
// raster live only while the session is open; Commit and Cancel both
// release them so repeated open/close cycles do not accumulate buffers.
type Capture struct {
	opts   Options
	canvas *Canvas
	mode   Mode
	open   bool

	typedText string
	typedFont FontStyle
}

// NewCapture creates a closed capture session.
func NewCapture(opts Options) *Capture {
	if opts.CanvasWidth <= 0 {
		opts.CanvasWidth = DefaultCanvasWidth
	}
	if opts.CanvasHeight <= 0 {
		opts.CanvasHeight = DefaultCanvasHeight
	}
	return &Capture{
		opts:      opts,
		mode:      ModeDraw,
		typedFont: FontCursive,
	}
}

// Open begins a capture. The drawing surface starts blank unless the
// session was configured to keep a prior draft.
func (c *Capture) Open() error {
	if c.canvas == nil || !c.opts.KeepDraft {
		canvas, err := NewCanvas(c.opts.CanvasWidth, c.opts.CanvasHeight)
		if err != nil {
			return err
		}
		c.canvas = canvas
	}
	c.open = true
	c.typedText = ""
	return nil
}

// IsOpen reports whether the capture surface is currently presented.
func (c *Capture) IsOpen() bool {
	return c.open
}

// SetMode switches between the draw and type surfaces.
func (c *Capture) SetMode(mode Mode) {
	if mode == ModeDraw || mode == ModeType {
		c.mode = mode
	}
}

// Canvas exposes the freehand surface for pointer events. Nil while the
// session is closed.
func (c *Capture) Canvas() *Canvas {
	if !c.open {
		return nil
	}
	return c.canvas
}

// SetTypedSignature records the text and face for the type mode preview.
func (c *Capture) SetTypedSignature(text string, style FontStyle) {
	c.typedText = text
	if style != "" {
		c.typedFont = style
	}
}

// Commit serializes the active surface to a PNG data URL and closes the
// session. The caller writes the result into the field's value.
func (c *Capture) Commit() (string, error) {
	if !c.open {
		return "", fmt.Errorf("capture is not open")
	}

	var dataURL string
	var err error
	switch c.mode {
	case ModeType:
		dataURL, err = RenderTyped(c.typedText, c.typedFont)
	default:
		dataURL, err = c.canvas.DataURL()
	}
	if err != nil {
		return "", err
	}

	c.close()
	return dataURL, nil
}

// Cancel discards the session without producing a value.
func (c *Capture) Cancel() {
	c.close()
}

func (c *Capture) close() {
	c.open = false
	c.typedText = ""
	if !c.opts.KeepDraft {
		c.canvas = nil
	}
}
