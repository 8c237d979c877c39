// Package editor ties the engine components together into per-document
// editing sessions: it mounts a stored PDF, hydrates its label sidecar
// into an overlay controller, and drives persistence and export.
package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sdey02/Signy/internal/overlay"
	"github.com/sdey02/Signy/internal/pdf"
	"github.com/sdey02/Signy/internal/pdf/flatten"
	"github.com/sdey02/Signy/internal/signature"
	"github.com/sdey02/Signy/internal/storage"
)

// ExportFileName is the download name assigned to every flattened export.
const ExportFileName = "signed-document.pdf"

// ErrStaleSession is returned when an operation reaches the manager through
// a session that has since been replaced by a newer mount of the same
// document. Results from a superseded session are discarded, never applied.
var ErrStaleSession = errors.New("session superseded by a newer mount")

// Session is a single mounted document: its source bytes, structural
// information, working field collection, and signature capture state.
type Session struct {
	path       string
	generation uint64
	source     []byte
	info       *pdf.DocumentInfoResult
	controller *overlay.Controller
	capture    *signature.Capture
}

// Path returns the storage path the session was mounted from.
func (s *Session) Path() string {
	return s.path
}

// Source returns the original document bytes. Callers must not modify
// the returned slice.
func (s *Session) Source() []byte {
	return s.source
}

// Info returns the structural summary captured at mount time.
func (s *Session) Info() *pdf.DocumentInfoResult {
	return s.info
}

// Controller exposes the overlay controller for placement and editing.
func (s *Session) Controller() *overlay.Controller {
	return s.controller
}

// Capture exposes the signature capture surface for this session.
func (s *Session) Capture() *signature.Capture {
	return s.capture
}

// Manager mounts documents into sessions and serves as the single writer
// for their sidecars. Each path has at most one live session; remounting a
// path supersedes the previous session, and any work still holding the old
// session fails with ErrStaleSession instead of clobbering newer state.
type Manager struct {
	mu          sync.Mutex
	store       storage.Store
	labels      *storage.LabelStore
	inspector   *pdf.Inspector
	engine      *flatten.Engine
	generations map[string]uint64
	sessions    map[string]*Session
}

// NewManager creates a session manager over the given object store.
func NewManager(store storage.Store, maxFileSize int64) *Manager {
	return &Manager{
		store:       store,
		labels:      storage.NewLabelStore(store),
		inspector:   pdf.NewInspector(maxFileSize),
		engine:      flatten.NewEngine(maxFileSize),
		generations: make(map[string]uint64),
		sessions:    make(map[string]*Session),
	}
}

// Open mounts the document at path: it reads the source bytes, inspects
// the document structure, and hydrates the label sidecar into a fresh
// overlay controller. Any previous session for the same path is
// superseded.
func (m *Manager) Open(ctx context.Context, path string) (*Session, error) {
	data, err := m.store.Get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open document %s: %w", path, err)
	}

	info, err := m.inspector.DocumentInfo(pdf.DocumentInfoRequest{Name: path, Data: data})
	if err != nil {
		return nil, fmt.Errorf("failed to inspect document %s: %w", path, err)
	}

	fields, err := m.labels.Load(ctx, path)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.generations[path]++
	session := &Session{
		path:       path,
		generation: m.generations[path],
		source:     data,
		info:       info,
		controller: overlay.NewController(nil),
		capture:    signature.NewCapture(signature.Options{}),
	}
	m.sessions[path] = session
	m.mu.Unlock()

	session.controller.Load(fields)
	return session, nil
}

// Get returns the live session for a path, if one is mounted.
func (m *Manager) Get(path string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[path]
	return s, ok
}

// Close unmounts the session for a path. Unsaved edits are discarded.
func (m *Manager) Close(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[path]; ok {
		delete(m.sessions, path)
		m.generations[path]++
	}
}

// Save persists the session's complete field collection to the document's
// sidecar. The save is wholesale: the sidecar is replaced with the current
// merged collection. On failure the in-memory state is left untouched so
// the caller can retry.
func (m *Manager) Save(ctx context.Context, s *Session) error {
	if err := m.ensureCurrent(s); err != nil {
		return err
	}
	return m.labels.Save(ctx, s.path, s.controller.Fields())
}

// Export flattens the session's fields into the source document and
// returns the result along with its download name. The stored source is
// never modified.
func (m *Manager) Export(s *Session) ([]byte, string, error) {
	if err := m.ensureCurrent(s); err != nil {
		return nil, "", err
	}
	out, err := m.engine.Embed(s.source, s.controller.Fields())
	if err != nil {
		return nil, "", fmt.Errorf("failed to export %s: %w", s.path, err)
	}
	return out, ExportFileName, nil
}

func (m *Manager) ensureCurrent(s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.generations[s.path] != s.generation {
		return ErrStaleSession
	}
	return nil
}
