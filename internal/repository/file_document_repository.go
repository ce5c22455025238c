package repository

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/noah-isme/emphasis-lines-api/internal/models"
	"github.com/noah-isme/emphasis-lines-api/pkg/storage"
)

// FileDocumentRepository stores the document as a JSON file on local disk.
type FileDocumentRepository struct {
	storage  *storage.LocalStorage
	filename string
	mu       sync.Mutex
}

// NewFileDocumentRepository prepares the directory holding path.
func NewFileDocumentRepository(path string) (*FileDocumentRepository, error) {
	if path == "" {
		path = "./data/document.json"
	}
	local, err := storage.NewLocalStorage(filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	return &FileDocumentRepository{storage: local, filename: filepath.Base(path)}, nil
}

// Load reads the document; a missing file yields an empty document.
func (r *FileDocumentRepository) Load(ctx context.Context) (*models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	payload, err := r.storage.Read(r.filename)
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return emptyDocument(), nil
		}
		return nil, fmt.Errorf("load document file: %w", err)
	}
	return decodeDocument(payload)
}

// Save rewrites the file atomically when doc is newer than the file on disk.
func (r *FileDocumentRepository) Save(ctx context.Context, doc *models.Document) error {
	payload, err := encodeDocument(doc)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	current, err := r.storage.Read(r.filename)
	switch {
	case errors.Is(err, storage.ErrNotExist):
	case err != nil:
		return fmt.Errorf("read document file: %w", err)
	default:
		stored, err := storedRevision(current)
		if err != nil {
			return err
		}
		if stored >= doc.Revision {
			return ErrRevisionConflict
		}
	}
	if err := r.storage.WriteAtomic(r.filename, payload); err != nil {
		return fmt.Errorf("save document file: %w", err)
	}
	return nil
}

