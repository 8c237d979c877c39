package pdf

import (
	"bytes"
	"fmt"
	"strings"

	ledongthuc "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Inspector reads a document's structure: page count, per-page point
// dimensions, and basic metadata.
type Inspector struct {
	maxFileSize int64
}

// NewInspector creates an inspector with the specified constraints.
func NewInspector(maxFileSize int64) *Inspector {
	return &Inspector{maxFileSize: maxFileSize}
}

// DocumentInfo inspects a PDF buffer. Unlike validation, a buffer that
// cannot be read here is a processing error: callers need the dimensions
// to do anything useful.
func (i *Inspector) DocumentInfo(req DocumentInfoRequest) (*DocumentInfoResult, error) {
	if len(req.Data) == 0 {
		return nil, fmt.Errorf("document is empty")
	}
	if int64(len(req.Data)) > i.maxFileSize {
		return nil, fmt.Errorf("document too large: %d bytes (max: %d bytes)", len(req.Data), i.maxFileSize)
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(req.Data), conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("failed to ensure page count: %w", err)
	}

	dims, err := ctx.PageDims()
	if err != nil {
		return nil, fmt.Errorf("failed to read page dimensions: %w", err)
	}

	result := &DocumentInfoResult{
		Name:       req.Name,
		Size:       int64(len(req.Data)),
		Pages:      ctx.PageCount,
		Dimensions: make([]PageDimension, 0, len(dims)),
	}
	for _, d := range dims {
		result.Dimensions = append(result.Dimensions, PageDimension{
			Width:  d.Width,
			Height: d.Height,
		})
	}

	i.extractMetadata(req.Data, result)
	return result, nil
}

// extractMetadata reads the Info dictionary. Metadata is best effort: the
// underlying library can panic on odd value types, and a document without
// an Info dict is still perfectly usable.
func (i *Inspector) extractMetadata(data []byte, result *DocumentInfoResult) {
	defer func() {
		_ = recover()
	}()

	reader, err := ledongthuc.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return
	}

	trailer := reader.Trailer()
	if trailer.IsNull() {
		return
	}
	info := trailer.Key("Info")
	if info.IsNull() {
		return
	}

	if title := info.Key("Title"); !title.IsNull() {
		result.Title = strings.TrimSpace(title.Text())
	}
	if author := info.Key("Author"); !author.IsNull() {
		result.Author = strings.TrimSpace(author.Text())
	}
}
