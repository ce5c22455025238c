package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/noah-isme/emphasis-lines-api/internal/models"
)

const documentRowID = 1

// PostgresDocumentRepository keeps the document in a single JSONB row and announces
// every save through LISTEN/NOTIFY so other instances can reload it.
type PostgresDocumentRepository struct {
	db      *sqlx.DB
	dsn     string
	channel string
	logger  *zap.Logger
}

// NewPostgresDocumentRepository constructs the repository. dsn is only needed for Subscribe.
func NewPostgresDocumentRepository(db *sqlx.DB, dsn, channel string, logger *zap.Logger) *PostgresDocumentRepository {
	if channel == "" {
		channel = "emphasis_documents"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostgresDocumentRepository{db: db, dsn: dsn, channel: channel, logger: logger}
}

// EnsureSchema creates the documents table when missing.
func (r *PostgresDocumentRepository) EnsureSchema(ctx context.Context) error {
	const query = `CREATE TABLE IF NOT EXISTS emphasis_documents (
        id SMALLINT PRIMARY KEY,
        revision BIGINT NOT NULL,
        payload JSONB NOT NULL,
        updated_at TIMESTAMPTZ NOT NULL
    )`
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("ensure documents schema: %w", err)
	}
	return nil
}

// Load returns the stored document or an empty one when nothing was saved yet.
func (r *PostgresDocumentRepository) Load(ctx context.Context) (*models.Document, error) {
	const query = `SELECT payload FROM emphasis_documents WHERE id = $1`
	var payload []byte
	if err := r.db.GetContext(ctx, &payload, query, documentRowID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return emptyDocument(), nil
		}
		return nil, fmt.Errorf("load document: %w", err)
	}
	return decodeDocument(payload)
}

// Save upserts the document when it is newer than the stored row and notifies listeners in the
// same transaction. An older or equal revision leaves the row alone and yields ErrRevisionConflict.
func (r *PostgresDocumentRepository) Save(ctx context.Context, doc *models.Document) error {
	payload, err := encodeDocument(doc)
	if err != nil {
		return err
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save document: %w", err)
	}
	const upsert = `INSERT INTO emphasis_documents (id, revision, payload, updated_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (id) DO UPDATE SET revision = EXCLUDED.revision, payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at
        WHERE emphasis_documents.revision < EXCLUDED.revision`
	res, err := tx.ExecContext(ctx, upsert, documentRowID, doc.Revision, payload, time.Now().UTC())
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("save document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("save document: %w", err)
	}
	if affected == 0 {
		_ = tx.Rollback()
		return ErrRevisionConflict
	}
	if _, err := tx.ExecContext(ctx, `SELECT pg_notify($1, $2)`, r.channel, strconv.FormatInt(doc.Revision, 10)); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("notify document change: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save document: %w", err)
	}
	return nil
}

// Subscribe listens on the notification channel and reloads the row on every notification.
func (r *PostgresDocumentRepository) Subscribe(ctx context.Context, handler SnapshotHandler) error {
	listener := pq.NewListener(r.dsn, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			r.logger.Warn("document listener event", zap.Int("event", int(ev)), zap.Error(err))
		}
	})
	if err := listener.Listen(r.channel); err != nil {
		_ = listener.Close()
		return fmt.Errorf("listen %s: %w", r.channel, err)
	}

	go func() {
		defer listener.Close() //nolint:errcheck
		ping := time.NewTicker(90 * time.Second)
		defer ping.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ping.C:
				if err := listener.Ping(); err != nil {
					r.logger.Warn("document listener ping failed", zap.Error(err))
				}
			case n := <-listener.Notify:
				// nil means the connection was re-established; reload to catch up on missed saves.
				if n != nil {
					r.logger.Debug("document notification", zap.String("revision", n.Extra))
				}
				doc, err := r.Load(ctx)
				if err != nil {
					r.logger.Error("reload document after notification", zap.Error(err))
					continue
				}
				handler(doc)
			}
		}
	}()
	return nil
}
