package pdf

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var pdfHeader = []byte("%PDF-")

// Validator checks whether an in-memory buffer is a structurally readable
// PDF within the configured size limit.
type Validator struct {
	maxFileSize int64
}

// NewValidator creates a validator with the specified constraints.
func NewValidator(maxFileSize int64) *Validator {
	return &Validator{maxFileSize: maxFileSize}
}

// ValidateDocument performs validation on a PDF buffer. Validation
// failures are reported in the result, not as a processing error.
func (v *Validator) ValidateDocument(req ValidateDocumentRequest) (*ValidateDocumentResult, error) {
	result := &ValidateDocumentResult{
		Name:  req.Name,
		Valid: false,
	}

	if err := v.validate(req.Data); err != nil {
		result.Message = err.Error()
		return result, nil
	}

	result.Valid = true
	return result, nil
}

// IsValidPDF is a quick boolean check on a buffer.
func (v *Validator) IsValidPDF(data []byte) bool {
	return v.validate(data) == nil
}

func (v *Validator) validate(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("document is empty")
	}
	if int64(len(data)) > v.maxFileSize {
		return fmt.Errorf("document too large: %d bytes (max: %d bytes)", len(data), v.maxFileSize)
	}
	if !bytes.HasPrefix(data, pdfHeader) {
		return fmt.Errorf("document is not a PDF")
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return fmt.Errorf("invalid PDF document: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return fmt.Errorf("failed to determine page count: %w", err)
	}
	if ctx.PageCount < 1 {
		return fmt.Errorf("document has no pages")
	}
	return nil
}
