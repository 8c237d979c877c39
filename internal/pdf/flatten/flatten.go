// Package flatten burns a field collection into a PDF's page content,
// producing a new, flattened document. Each source page is imported as a
// template and the page's fields are drawn on top of it: text and dates
// as bordered strings, checkboxes as filled squares with an optional X,
// signatures and initials as embedded raster images.
package flatten

import (
	"bytes"
	"fmt"
	"image"
	"io"

	_ "image/jpeg"
	_ "image/png"

	"codeberg.org/go-pdf/fpdf"
	"codeberg.org/go-pdf/fpdf/contrib/gofpdi"

	"github.com/sdey02/Signy/internal/geom"
	"github.com/sdey02/Signy/internal/label"
	"github.com/sdey02/Signy/internal/pdf"
	"github.com/sdey02/Signy/internal/signature"
)

const (
	textPadding     = 2.0
	checkboxPadding = 2.0
	textFontSize    = 12.0
	smallFontSize   = 10.0

	datePlaceholder = "MM/DD/YYYY"
)

// Engine embeds field values into PDF documents. It has no knowledge of
// live editor state; it is handed the finalized collection at export time.
type Engine struct {
	inspector *pdf.Inspector
}

// NewEngine creates an embedding engine. The size limit bounds the source
// document, matching the rest of the pipeline.
func NewEngine(maxFileSize int64) *Engine {
	return &Engine{inspector: pdf.NewInspector(maxFileSize)}
}

// Embed draws every field onto its page and returns the modified document
// as a new byte buffer. The source buffer is never mutated. A corrupt
// source PDF fails the whole operation; a single undecodable signature
// image degrades to a placeholder instead.
func (e *Engine) Embed(src []byte, fields []label.Field) (out []byte, err error) {
	info, err := e.inspector.DocumentInfo(pdf.DocumentInfoRequest{Data: src})
	if err != nil {
		return nil, fmt.Errorf("failed to read source PDF: %w", err)
	}

	byPage := make(map[int][]label.Field, len(fields))
	for _, f := range fields {
		if f.PageNumber < 1 || f.PageNumber > info.Pages {
			continue
		}
		byPage[f.PageNumber] = append(byPage[f.PageNumber], f)
	}

	// The page importer reports unparsable structures by panicking.
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("failed to import source PDF pages: %v", r)
		}
	}()

	doc := fpdf.New("P", "pt", "", "")
	doc.SetAutoPageBreak(false, 0)

	importer := gofpdi.NewImporter()
	rs := io.ReadSeeker(bytes.NewReader(src))

	for pageNum := 1; pageNum <= info.Pages; pageNum++ {
		tpl := importer.ImportPageFromStream(doc, &rs, pageNum, "/MediaBox")

		dim := info.Dimensions[pageNum-1]
		doc.AddPageFormat("P", fpdf.SizeType{Wd: dim.Width, Ht: dim.Height})
		importer.UseImportedTemplate(doc, tpl, 0, 0, dim.Width, 0)

		for _, f := range byPage[pageNum] {
			drawField(doc, f, dim.Width, dim.Height)
		}
	}

	if doc.Err() {
		return nil, fmt.Errorf("failed to compose output PDF: %w", doc.Error())
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize output PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// drawField renders one field. fpdf's coordinate origin is the page's
// top-left with y growing downward, so the PDF point-space rectangle is
// flipped back before drawing.
func drawField(doc *fpdf.Fpdf, f label.Field, pageWidth, pageHeight float64) {
	r := geom.NormalizedToPDFPoints(f.X, f.Y, f.Width, f.Height, pageWidth, pageHeight)
	top := pageHeight - r.Y - r.Height

	switch f.Type {
	case label.TypeCheckbox:
		drawCheckbox(doc, f, r.X, top, r.Width, r.Height)
	case label.TypeSignature, label.TypeInitial:
		drawSignature(doc, f, r.X, top, r.Width, r.Height)
	case label.TypeDate:
		drawDate(doc, f, r.X, top, r.Width, r.Height)
	default:
		drawText(doc, f, r.X, top, r.Width, r.Height)
	}
}

func drawText(doc *fpdf.Fpdf, f label.Field, x, top, w, h float64) {
	if f.Value != "" {
		doc.SetFont("Helvetica", "", textFontSize)
		doc.SetTextColor(0, 0, 0)
		doc.Text(x+textPadding, textBaseline(top, h, textFontSize), f.Value)
	}
	drawBorder(doc, x, top, w, h)
}

func drawDate(doc *fpdf.Fpdf, f label.Field, x, top, w, h float64) {
	doc.SetFont("Helvetica", "", smallFontSize)
	value := f.Value
	if value == "" {
		value = datePlaceholder
		doc.SetTextColor(179, 179, 179)
	} else {
		doc.SetTextColor(0, 0, 0)
	}
	doc.Text(x+textPadding, textBaseline(top, h, smallFontSize), value)
	drawBorder(doc, x, top, w, h)
}

func drawCheckbox(doc *fpdf.Fpdf, f label.Field, x, top, w, h float64) {
	doc.SetFillColor(230, 230, 230)
	doc.Rect(x, top, w, h, "F")

	if !f.Checked() {
		return
	}

	doc.SetDrawColor(0, 0, 0)
	doc.SetLineWidth(2)
	doc.Line(x+checkboxPadding, top+checkboxPadding, x+w-checkboxPadding, top+h-checkboxPadding)
	doc.Line(x+checkboxPadding, top+h-checkboxPadding, x+w-checkboxPadding, top+checkboxPadding)
}

func drawSignature(doc *fpdf.Fpdf, f label.Field, x, top, w, h float64) {
	if f.Value == "" || !signature.IsDataURL(f.Value) {
		drawPlaceholder(doc, x, top, w, h, "")
		return
	}

	raw, mime, err := signature.DecodeDataURL(f.Value)
	if err != nil {
		drawPlaceholder(doc, x, top, w, h, "Signature Error")
		return
	}

	imageType, err := sniffImageType(raw, mime)
	if err != nil {
		drawPlaceholder(doc, x, top, w, h, "Signature Error")
		return
	}

	opts := fpdf.ImageOptions{ImageType: imageType}
	name := "field-" + f.ID
	doc.RegisterImageOptionsReader(name, opts, bytes.NewReader(raw))
	if doc.Err() {
		// A raster the PDF writer rejects must not sink the export.
		doc.ClearError()
		drawPlaceholder(doc, x, top, w, h, "Signature Error")
		return
	}

	// Scaled to exactly fill the field rectangle.
	doc.ImageOptions(name, x, top, w, h, false, opts, 0, "")
}

// sniffImageType verifies the payload decodes as an image and maps it to
// the PDF writer's type tag. The declared MIME wins only when the sniffed
// format agrees; an indeterminate declaration falls back to PNG.
func sniffImageType(raw []byte, mime string) (string, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("undecodable image payload: %w", err)
	}
	switch format {
	case "jpeg":
		return "JPEG", nil
	case "png":
		return "PNG", nil
	default:
		if mime == signature.MIMEJPEG {
			return "JPEG", nil
		}
		return "PNG", nil
	}
}

func drawPlaceholder(doc *fpdf.Fpdf, x, top, w, h float64, message string) {
	doc.SetFillColor(230, 230, 230)
	doc.Rect(x, top, w, h, "F")

	if message == "" {
		return
	}
	doc.SetFont("Helvetica", "", smallFontSize)
	doc.SetTextColor(179, 77, 77)
	doc.Text(x+5, textBaseline(top, h, smallFontSize), message)
}

func drawBorder(doc *fpdf.Fpdf, x, top, w, h float64) {
	doc.SetDrawColor(204, 204, 204)
	doc.SetLineWidth(1)
	doc.Rect(x, top, w, h, "D")
}

// textBaseline vertically centers a string of the given font size inside
// the field rectangle.
func textBaseline(top, h, fontSize float64) float64 {
	return top + h/2 + fontSize*0.35
}
