package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/noah-isme/emphasis-lines-api/internal/models"
)

// ErrRevisionConflict is returned by Save when the stored document already carries a revision
// equal to or newer than the one being saved.
var ErrRevisionConflict = errors.New("document revision conflict")

// DocumentBackend persists the whole document. Save is a compare-and-set on the revision: it
// succeeds only when doc.Revision is greater than the stored one, otherwise it returns
// ErrRevisionConflict and leaves the stored document untouched.
// Implementations must be safe for concurrent use.
type DocumentBackend interface {
	Load(ctx context.Context) (*models.Document, error)
	Save(ctx context.Context, doc *models.Document) error
}

// SnapshotHandler receives documents pushed by a remote backend.
type SnapshotHandler func(doc *models.Document)

// SubscribableBackend is implemented by backends that push remote changes.
// Subscribe returns once the subscription is established and delivers until ctx is done.
type SubscribableBackend interface {
	DocumentBackend
	Subscribe(ctx context.Context, handler SnapshotHandler) error
}

func encodeDocument(doc *models.Document) ([]byte, error) {
	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	return payload, nil
}

func decodeDocument(payload []byte) (*models.Document, error) {
	doc := &models.Document{}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, doc); err != nil {
			return nil, fmt.Errorf("unmarshal document: %w", err)
		}
	}
	doc.Normalize()
	return doc, nil
}

// storedRevision reads only the revision of an encoded document.
func storedRevision(payload []byte) (int64, error) {
	var head struct {
		Revision int64 `json:"revision"`
	}
	if err := json.Unmarshal(payload, &head); err != nil {
		return 0, fmt.Errorf("unmarshal document revision: %w", err)
	}
	return head.Revision, nil
}

func emptyDocument() *models.Document {
	doc := &models.Document{}
	doc.Normalize()
	return doc
}

// MemoryDocumentRepository keeps the document in process. Used by tests and the memory driver.
type MemoryDocumentRepository struct {
	mu    sync.Mutex
	doc   *models.Document
	saves int
	err   error
}

// NewMemoryDocumentRepository constructs an empty in-memory backend.
func NewMemoryDocumentRepository() *MemoryDocumentRepository {
	return &MemoryDocumentRepository{}
}

// Load returns a copy of the stored document.
func (r *MemoryDocumentRepository) Load(ctx context.Context) (*models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	if r.doc == nil {
		return emptyDocument(), nil
	}
	return r.doc.Clone(), nil
}

// Save stores a copy of doc when its revision is newer than the stored one.
func (r *MemoryDocumentRepository) Save(ctx context.Context, doc *models.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if r.doc != nil && r.doc.Revision >= doc.Revision {
		return ErrRevisionConflict
	}
	r.doc = doc.Clone()
	r.saves++
	return nil
}

// FailWith makes every subsequent call return err until it is called with nil.
func (r *MemoryDocumentRepository) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

// Saves reports how many successful saves happened.
func (r *MemoryDocumentRepository) Saves() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}
