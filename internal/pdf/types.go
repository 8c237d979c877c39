package pdf

// PageDimension is one page's size in PDF points.
type PageDimension struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Request Types

// DocumentInfoRequest asks for the structure of an in-memory PDF.
type DocumentInfoRequest struct {
	Name string `json:"name"`
	Data []byte `json:"-"`
}

// ValidateDocumentRequest asks whether a byte buffer is a readable PDF.
type ValidateDocumentRequest struct {
	Name string `json:"name"`
	Data []byte `json:"-"`
}

// ExtractTextRequest asks for the plain text content of a PDF buffer.
type ExtractTextRequest struct {
	Name string `json:"name"`
	Data []byte `json:"-"`
}

// Response Types

// DocumentInfoResult describes a loaded document: everything the editor
// needs to lay an overlay over its pages.
type DocumentInfoResult struct {
	Name       string          `json:"name"`
	Size       int64           `json:"size"`
	Pages      int             `json:"pages"`
	Dimensions []PageDimension `json:"dimensions"`
	Title      string          `json:"title,omitempty"`
	Author     string          `json:"author,omitempty"`
}

// ValidateDocumentResult carries the validation verdict. An invalid
// document is a result with a message, not a processing error.
type ValidateDocumentResult struct {
	Name    string `json:"name"`
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

// ExtractTextResult holds the extracted plain text.
type ExtractTextResult struct {
	Name  string `json:"name"`
	Pages int    `json:"pages"`
	Text  string `json:"text"`
}
