// Package pdf reads the structure of in-memory PDF documents: validation,
// page geometry, metadata, and plain-text extraction. Drawing annotations
// into a document lives in the flatten subpackage.
package pdf

// Service handles PDF document operations by orchestrating the individual
// components. It is constructed explicitly and passed to its consumers so
// they can be tested without any storage or transport context.
type Service struct {
	maxFileSize int64
	validator   *Validator
	inspector   *Inspector
	extractor   *Extractor
}

// NewService creates a PDF service with all components.
func NewService(maxFileSize int64) *Service {
	return &Service{
		maxFileSize: maxFileSize,
		validator:   NewValidator(maxFileSize),
		inspector:   NewInspector(maxFileSize),
		extractor:   NewExtractor(maxFileSize),
	}
}

// ValidateDocument checks whether a buffer is a readable PDF.
func (s *Service) ValidateDocument(req ValidateDocumentRequest) (*ValidateDocumentResult, error) {
	return s.validator.ValidateDocument(req)
}

// DocumentInfo reads page count, page dimensions and metadata.
func (s *Service) DocumentInfo(req DocumentInfoRequest) (*DocumentInfoResult, error) {
	return s.inspector.DocumentInfo(req)
}

// ExtractText extracts the document's plain text content.
func (s *Service) ExtractText(req ExtractTextRequest) (*ExtractTextResult, error) {
	return s.extractor.ExtractText(req)
}

// IsValidPDF performs a quick validation check on a buffer.
func (s *Service) IsValidPDF(data []byte) bool {
	return s.validator.IsValidPDF(data)
}

// GetMaxFileSize returns the maximum document size limit.
func (s *Service) GetMaxFileSize() int64 {
	return s.maxFileSize
}
