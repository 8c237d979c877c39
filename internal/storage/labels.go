package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sdey02/Signy/internal/label"
)

// SidecarSuffix is appended to a document's storage path to derive where
// its label collection lives.
const SidecarSuffix = ".labels.json"

// SidecarPath derives the sidecar location for a document path.
func SidecarPath(documentPath string) string {
	return documentPath + SidecarSuffix
}

// LabelStore loads and saves a document's field collection as a JSON
// sidecar next to the source object. Saves are always wholesale: the
// overlay controller produces the complete merged array before any save
// reaches here.
type LabelStore struct {
	store Store
}

// NewLabelStore wraps an object store.
func NewLabelStore(store Store) *LabelStore {
	return &LabelStore{store: store}
}

// Load fetches a document's field collection. A missing sidecar means the
// document has no annotations yet, so it yields an empty collection, not
// an error.
func (l *LabelStore) Load(ctx context.Context, documentPath string) ([]label.Field, error) {
	data, err := l.store.Get(ctx, SidecarPath(documentPath))
	if errors.Is(err, ErrNotFound) {
		return []label.Field{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load labels for %s: %w", documentPath, err)
	}

	var fields []label.Field
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("corrupt label sidecar for %s: %w", documentPath, err)
	}
	if fields == nil {
		fields = []label.Field{}
	}
	return fields, nil
}

// Save replaces the document's sidecar with the given collection.
func (l *LabelStore) Save(ctx context.Context, documentPath string, fields []label.Field) error {
	if fields == nil {
		fields = []label.Field{}
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to serialize labels for %s: %w", documentPath, err)
	}
	if err := l.store.Put(ctx, SidecarPath(documentPath), data); err != nil {
		return fmt.Errorf("failed to save labels for %s: %w", documentPath, err)
	}
	return nil
}
