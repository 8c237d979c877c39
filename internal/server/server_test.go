package server

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"codeberg.org/go-pdf/fpdf"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/sdey02/Signy/internal/config"
	"github.com/sdey02/Signy/internal/editor"
	"github.com/sdey02/Signy/internal/pdf"
	"github.com/sdey02/Signy/internal/storage"
)

const testMaxFileSize = int64(32 * 1024 * 1024)

func testConfig() *config.Config {
	return &config.Config{
		Mode:              "stdio",
		Host:              "127.0.0.1",
		Port:              8080,
		DocumentDirectory: "/tmp",
		Version:           "1.0.0",
		ServerName:        "test-server",
		LogLevel:          "info",
		MaxFileSize:       testMaxFileSize,
	}
}

func testPDF(t *testing.T, pages int) []byte {
	t.Helper()
	doc := fpdf.New("P", "pt", "", "")
	for i := 0; i < pages; i++ {
		doc.AddPageFormat("P", fpdf.SizeType{Wd: 600, Ht: 800})
		doc.SetFont("Helvetica", "", 12)
		doc.Text(72, 72, "agreement text")
	}
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		t.Fatalf("failed to build test PDF: %v", err)
	}
	return buf.Bytes()
}

func newTestServer(t *testing.T, docs map[string][]byte) (*Server, storage.Store) {
	t.Helper()
	store := storage.NewMemStore()
	ctx := context.Background()
	for path, data := range docs {
		if err := store.Put(ctx, path, data); err != nil {
			t.Fatalf("failed to seed store: %v", err)
		}
	}

	manager := editor.NewManager(store, testMaxFileSize)
	srv, err := NewServer(testConfig(), store, manager, pdf.NewService(testMaxFileSize))
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	return srv, store
}

func request(args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func extractTextFromResult(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}

	// Try to extract text content
	for _, content := range result.Content {
		if textContent, ok := content.(mcp.TextContent); ok {
			return textContent.Text
		}
		// Handle pointer to TextContent as well
		if textContentPtr, ok := content.(*mcp.TextContent); ok {
			return textContentPtr.Text
		}
	}

	return ""
}

func mustCall(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error),
	args map[string]interface{},
) string {
	t.Helper()
	result, err := handler(context.Background(), request(args))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if result == nil {
		t.Fatal("result should not be nil")
	}
	if result.IsError {
		t.Fatalf("handler returned tool error: %s", extractTextFromResult(result))
	}
	return extractTextFromResult(result)
}

func TestNewServer(t *testing.T) {
	store := storage.NewMemStore()
	manager := editor.NewManager(store, testMaxFileSize)
	pdfService := pdf.NewService(testMaxFileSize)

	srv, err := NewServer(testConfig(), store, manager, pdfService)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if srv == nil {
		t.Fatal("server should not be nil")
	}
	if srv.mcpServer == nil {
		t.Error("mcpServer should be initialized")
	}

	if _, err := NewServer(testConfig(), nil, manager, pdfService); err == nil {
		t.Error("expected error for nil store")
	}
	if _, err := NewServer(testConfig(), store, nil, pdfService); err == nil {
		t.Error("expected error for nil manager")
	}
	if _, err := NewServer(testConfig(), store, manager, nil); err == nil {
		t.Error("expected error for nil pdfService")
	}
}

func TestServer_HandleDocumentOpen(t *testing.T) {
	srv, _ := newTestServer(t, map[string][]byte{"docs/a.pdf": testPDF(t, 2)})

	text := mustCall(t, srv.handleDocumentOpen, map[string]interface{}{"path": "docs/a.pdf"})
	if !strings.Contains(text, "Pages: 2") {
		t.Errorf("expected page count in response, got: %s", text)
	}

	// Opening a missing document reports a tool error
	result, err := srv.handleDocumentOpen(context.Background(), request(map[string]interface{}{
		"path": "docs/missing.pdf",
	}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if !result.IsError {
		t.Error("expected tool error for missing document")
	}
}

func TestServer_HandleDocumentInfo(t *testing.T) {
	srv, _ := newTestServer(t, map[string][]byte{"docs/a.pdf": testPDF(t, 1)})

	// Info before open reports a tool error
	result, err := srv.handleDocumentInfo(context.Background(), request(map[string]interface{}{
		"path": "docs/a.pdf",
	}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if !result.IsError {
		t.Error("expected tool error for unopened document")
	}

	mustCall(t, srv.handleDocumentOpen, map[string]interface{}{"path": "docs/a.pdf"})
	text := mustCall(t, srv.handleDocumentInfo, map[string]interface{}{"path": "docs/a.pdf"})
	if !strings.Contains(text, "Pages: 1") || !strings.Contains(text, "Page dimensions") {
		t.Errorf("unexpected info output: %s", text)
	}
}

func TestServer_HandleDocumentValidate(t *testing.T) {
	srv, store := newTestServer(t, map[string][]byte{"docs/a.pdf": testPDF(t, 1)})

	text := mustCall(t, srv.handleDocumentValidate, map[string]interface{}{"path": "docs/a.pdf"})
	if !strings.Contains(text, "valid, readable PDF") {
		t.Errorf("expected valid verdict, got: %s", text)
	}

	if err := store.Put(context.Background(), "docs/junk.pdf", []byte("not a pdf")); err != nil {
		t.Fatalf("failed to seed store: %v", err)
	}
	text = mustCall(t, srv.handleDocumentValidate, map[string]interface{}{"path": "docs/junk.pdf"})
	if !strings.Contains(text, "validation failed") {
		t.Errorf("expected failure verdict, got: %s", text)
	}
}

func TestServer_HandleLabelCatalog(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	text := mustCall(t, srv.handleLabelCatalog, nil)
	for _, want := range []string{"Signature", "Date", "Name", "Initial", "Address", "Email", "Phone", "Company"} {
		if !strings.Contains(text, want) {
			t.Errorf("catalog missing %s entry: %s", want, text)
		}
	}
}

// openWithViewport opens a document and reports a 600x800 page at origin.
func openWithViewport(t *testing.T, srv *Server, path string) {
	t.Helper()
	mustCall(t, srv.handleDocumentOpen, map[string]interface{}{"path": path})
	mustCall(t, srv.handleViewSetViewport, map[string]interface{}{
		"path":        path,
		"container_x": float64(0),
		"container_y": float64(0),
		"page_width":  float64(600),
		"page_height": float64(800),
	})
}

func TestServer_PlacementFlow(t *testing.T) {
	srv, _ := newTestServer(t, map[string][]byte{"docs/a.pdf": testPDF(t, 2)})
	openWithViewport(t, srv, "docs/a.pdf")

	mustCall(t, srv.handleLabelSelect, map[string]interface{}{
		"path": "docs/a.pdf",
		"type": "signature",
	})

	text := mustCall(t, srv.handleLabelPlace, map[string]interface{}{
		"path": "docs/a.pdf",
		"x":    float64(300),
		"y":    float64(80),
	})
	if !strings.Contains(text, "Placed signature label") {
		t.Fatalf("unexpected placement response: %s", text)
	}
	if !strings.Contains(text, "Position: (0.5000, 0.1000)") {
		t.Errorf("unexpected placed position: %s", text)
	}

	// Selection is single-shot: a second click without rearming is ignored
	text = mustCall(t, srv.handleLabelPlace, map[string]interface{}{
		"path": "docs/a.pdf",
		"x":    float64(100),
		"y":    float64(100),
	})
	if !strings.Contains(text, "Placement ignored") {
		t.Errorf("expected second placement to be ignored, got: %s", text)
	}

	text = mustCall(t, srv.handleLabelList, map[string]interface{}{"path": "docs/a.pdf"})
	if !strings.Contains(text, "1 total") {
		t.Errorf("expected one label, got: %s", text)
	}
}

func TestServer_CheckboxPlacementFlow(t *testing.T) {
	srv, _ := newTestServer(t, map[string][]byte{"docs/a.pdf": testPDF(t, 1)})
	openWithViewport(t, srv, "docs/a.pdf")

	// Checkbox and text have no catalog entry but are placeable types
	text := mustCall(t, srv.handleLabelSelect, map[string]interface{}{
		"path": "docs/a.pdf",
		"type": "checkbox",
	})
	if !strings.Contains(text, "Armed checkbox label") {
		t.Fatalf("unexpected select response: %s", text)
	}

	placeText := mustCall(t, srv.handleLabelPlace, map[string]interface{}{
		"path": "docs/a.pdf",
		"x":    float64(300),
		"y":    float64(400),
	})
	if !strings.Contains(placeText, "Placed checkbox label") {
		t.Fatalf("unexpected placement response: %s", placeText)
	}
	id := parseID(t, placeText)

	mustCall(t, srv.handleLabelSetChecked, map[string]interface{}{
		"path":    "docs/a.pdf",
		"id":      id,
		"checked": true,
	})
	mustCall(t, srv.handleLabelsSave, map[string]interface{}{"path": "docs/a.pdf"})
	mustCall(t, srv.handleDocumentExport, map[string]interface{}{"path": "docs/a.pdf"})

	mustCall(t, srv.handleLabelSelect, map[string]interface{}{
		"path": "docs/a.pdf",
		"type": "text",
	})
	placeText = mustCall(t, srv.handleLabelPlace, map[string]interface{}{
		"path": "docs/a.pdf",
		"x":    float64(60),
		"y":    float64(80),
	})
	if !strings.Contains(placeText, "Placed text label") {
		t.Fatalf("unexpected placement response: %s", placeText)
	}
}

func TestServer_HandleLabelSetValueShapeGuard(t *testing.T) {
	srv, _ := newTestServer(t, map[string][]byte{"docs/a.pdf": testPDF(t, 1)})
	openWithViewport(t, srv, "docs/a.pdf")

	mustCall(t, srv.handleLabelSelect, map[string]interface{}{"path": "docs/a.pdf", "type": "checkbox"})
	checkboxID := parseID(t, mustCall(t, srv.handleLabelPlace, map[string]interface{}{
		"path": "docs/a.pdf",
		"x":    float64(100),
		"y":    float64(100),
	}))

	mustCall(t, srv.handleLabelSelect, map[string]interface{}{"path": "docs/a.pdf", "type": "signature"})
	signatureID := parseID(t, mustCall(t, srv.handleLabelPlace, map[string]interface{}{
		"path": "docs/a.pdf",
		"x":    float64(300),
		"y":    float64(400),
	}))

	rejected := []map[string]interface{}{
		{"path": "docs/a.pdf", "id": checkboxID, "value": "maybe"},
		{"path": "docs/a.pdf", "id": signatureID, "value": "John Hancock"},
		{"path": "docs/a.pdf", "id": "no-such-id", "value": "x"},
	}
	for _, args := range rejected {
		result, err := srv.handleLabelSetValue(context.Background(), request(args))
		if err != nil {
			t.Fatalf("handler failed: %v", err)
		}
		if !result.IsError {
			t.Errorf("expected tool error for args %v, got: %s", args, extractTextFromResult(result))
		}
	}

	// Well-shaped values still go through
	mustCall(t, srv.handleLabelSetValue, map[string]interface{}{
		"path": "docs/a.pdf", "id": checkboxID, "value": "true",
	})
	text := mustCall(t, srv.handleLabelList, map[string]interface{}{"path": "docs/a.pdf"})
	if !strings.Contains(text, "Value: true") {
		t.Errorf("expected checkbox value in list, got: %s", text)
	}
}

func TestServer_HandleLabelSelectUnknownType(t *testing.T) {
	srv, _ := newTestServer(t, map[string][]byte{"docs/a.pdf": testPDF(t, 1)})
	mustCall(t, srv.handleDocumentOpen, map[string]interface{}{"path": "docs/a.pdf"})

	result, err := srv.handleLabelSelect(context.Background(), request(map[string]interface{}{
		"path": "docs/a.pdf",
		"type": "hologram",
	}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if !result.IsError {
		t.Error("expected tool error for unknown label type")
	}
}

func TestServer_HandleViewSetPageOutOfRange(t *testing.T) {
	srv, _ := newTestServer(t, map[string][]byte{"docs/a.pdf": testPDF(t, 2)})
	mustCall(t, srv.handleDocumentOpen, map[string]interface{}{"path": "docs/a.pdf"})

	result, err := srv.handleViewSetPage(context.Background(), request(map[string]interface{}{
		"path": "docs/a.pdf",
		"page": float64(9),
	}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if !result.IsError {
		t.Error("expected tool error for out-of-range page")
	}

	mustCall(t, srv.handleViewSetPage, map[string]interface{}{
		"path": "docs/a.pdf",
		"page": float64(2),
	})
}

func TestServer_SaveAndReload(t *testing.T) {
	srv, _ := newTestServer(t, map[string][]byte{"docs/a.pdf": testPDF(t, 1)})
	openWithViewport(t, srv, "docs/a.pdf")

	mustCall(t, srv.handleLabelSelect, map[string]interface{}{"path": "docs/a.pdf", "type": "name"})
	mustCall(t, srv.handleLabelPlace, map[string]interface{}{
		"path": "docs/a.pdf",
		"x":    float64(60),
		"y":    float64(80),
	})
	text := mustCall(t, srv.handleLabelsSave, map[string]interface{}{"path": "docs/a.pdf"})
	if !strings.Contains(text, "Saved 1 label(s)") {
		t.Errorf("unexpected save response: %s", text)
	}

	// Reopen and confirm the label round-trips through the sidecar
	text = mustCall(t, srv.handleDocumentOpen, map[string]interface{}{"path": "docs/a.pdf"})
	if !strings.Contains(text, "Labels loaded: 1") {
		t.Errorf("expected saved label after reopen, got: %s", text)
	}
}

func TestServer_SignatureFlow(t *testing.T) {
	srv, _ := newTestServer(t, map[string][]byte{"docs/a.pdf": testPDF(t, 1)})
	openWithViewport(t, srv, "docs/a.pdf")

	mustCall(t, srv.handleLabelSelect, map[string]interface{}{"path": "docs/a.pdf", "type": "signature"})
	placeText := mustCall(t, srv.handleLabelPlace, map[string]interface{}{
		"path": "docs/a.pdf",
		"x":    float64(300),
		"y":    float64(400),
	})
	id := parseID(t, placeText)

	mustCall(t, srv.handleSignatureOpen, map[string]interface{}{"path": "docs/a.pdf", "mode": "type"})
	mustCall(t, srv.handleSignatureType, map[string]interface{}{
		"path":  "docs/a.pdf",
		"text":  "Ada Lovelace",
		"style": "cursive",
	})
	text := mustCall(t, srv.handleSignatureCommit, map[string]interface{}{
		"path": "docs/a.pdf",
		"id":   id,
	})
	if !strings.Contains(text, "Signature committed") {
		t.Errorf("unexpected commit response: %s", text)
	}

	// Committed value is reported as image data, not raw base64
	text = mustCall(t, srv.handleLabelList, map[string]interface{}{"path": "docs/a.pdf"})
	if !strings.Contains(text, "<image data") {
		t.Errorf("expected image value marker in list, got: %s", text)
	}

	// Capture is released after commit
	result, err := srv.handleSignatureCommit(context.Background(), request(map[string]interface{}{
		"path": "docs/a.pdf",
		"id":   id,
	}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if !result.IsError {
		t.Error("expected tool error for commit on closed capture")
	}
}

func TestServer_SignatureDraw(t *testing.T) {
	srv, _ := newTestServer(t, map[string][]byte{"docs/a.pdf": testPDF(t, 1)})
	openWithViewport(t, srv, "docs/a.pdf")

	mustCall(t, srv.handleLabelSelect, map[string]interface{}{"path": "docs/a.pdf", "type": "initial"})
	placeText := mustCall(t, srv.handleLabelPlace, map[string]interface{}{
		"path": "docs/a.pdf",
		"x":    float64(100),
		"y":    float64(100),
	})
	id := parseID(t, placeText)

	mustCall(t, srv.handleSignatureOpen, map[string]interface{}{"path": "docs/a.pdf"})
	text := mustCall(t, srv.handleSignatureDraw, map[string]interface{}{
		"path":    "docs/a.pdf",
		"strokes": `[[[10,20],[60,40],[120,30]],[[30,80],[90,85]]]`,
	})
	if !strings.Contains(text, "Drew 2 stroke(s)") {
		t.Errorf("unexpected draw response: %s", text)
	}

	mustCall(t, srv.handleSignatureCommit, map[string]interface{}{
		"path": "docs/a.pdf",
		"id":   id,
	})
}

func TestServer_HandleDocumentExport(t *testing.T) {
	srv, store := newTestServer(t, map[string][]byte{"docs/a.pdf": testPDF(t, 1)})
	openWithViewport(t, srv, "docs/a.pdf")

	mustCall(t, srv.handleLabelSelect, map[string]interface{}{"path": "docs/a.pdf", "type": "name"})
	placeText := mustCall(t, srv.handleLabelPlace, map[string]interface{}{
		"path": "docs/a.pdf",
		"x":    float64(60),
		"y":    float64(80),
	})
	mustCall(t, srv.handleLabelSetValue, map[string]interface{}{
		"path":  "docs/a.pdf",
		"id":    parseID(t, placeText),
		"value": "Ada Lovelace",
	})

	text := mustCall(t, srv.handleDocumentExport, map[string]interface{}{"path": "docs/a.pdf"})
	if !strings.Contains(text, "docs/signed-document.pdf") {
		t.Errorf("unexpected export output path: %s", text)
	}

	exported, err := store.Get(context.Background(), "docs/signed-document.pdf")
	if err != nil {
		t.Fatalf("exported document not stored: %v", err)
	}
	if !bytes.HasPrefix(exported, []byte("%PDF-")) {
		t.Error("exported document is not a PDF")
	}
}

// parseID pulls the label identifier out of a placement response.
func parseID(t *testing.T, placeText string) string {
	t.Helper()
	for _, line := range strings.Split(placeText, "\n") {
		if strings.HasPrefix(line, "ID: ") {
			return strings.TrimPrefix(line, "ID: ")
		}
	}
	t.Fatalf("no ID line in placement response: %s", placeText)
	return ""
}
