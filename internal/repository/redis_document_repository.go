package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/emphasis-lines-api/internal/models"
)

// RedisDocumentRepository stores the document under one key and publishes every save
// on a pub/sub channel.
type RedisDocumentRepository struct {
	client  *redis.Client
	key     string
	channel string
	logger  *zap.Logger
}

// NewRedisDocumentRepository constructs the repository.
func NewRedisDocumentRepository(client *redis.Client, key, channel string, logger *zap.Logger) *RedisDocumentRepository {
	if key == "" {
		key = "emphasis:document"
	}
	if channel == "" {
		channel = key + ":changes"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisDocumentRepository{client: client, key: key, channel: channel, logger: logger}
}

// Load reads the document; a missing key yields an empty document.
func (r *RedisDocumentRepository) Load(ctx context.Context) (*models.Document, error) {
	raw, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return emptyDocument(), nil
		}
		return nil, fmt.Errorf("redis get %s: %w", r.key, err)
	}
	return decodeDocument(raw)
}

// Save writes the document and publishes it in one MULTI block guarded by WATCH on the key.
// A stored revision equal to or newer than doc's, or a concurrent write to the key, yields
// ErrRevisionConflict.
func (r *RedisDocumentRepository) Save(ctx context.Context, doc *models.Document) error {
	payload, err := encodeDocument(doc)
	if err != nil {
		return err
	}
	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, r.key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return err
		default:
			stored, err := storedRevision(current)
			if err != nil {
				return err
			}
			if stored >= doc.Revision {
				return ErrRevisionConflict
			}
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, r.key, payload, 0)
			pipe.Publish(ctx, r.channel, payload)
			return nil
		})
		return err
	}, r.key)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrRevisionConflict), errors.Is(err, redis.TxFailedErr):
		return ErrRevisionConflict
	default:
		return fmt.Errorf("redis save %s: %w", r.key, err)
	}
}

// Subscribe delivers every published document until ctx is done.
func (r *RedisDocumentRepository) Subscribe(ctx context.Context, handler SnapshotHandler) error {
	pubsub := r.client.Subscribe(ctx, r.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("redis subscribe %s: %w", r.channel, err)
	}

	go func() {
		defer pubsub.Close() //nolint:errcheck
		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				doc, err := decodeDocument([]byte(msg.Payload))
				if err != nil {
					r.logger.Error("decode pushed document", zap.Error(err))
					continue
				}
				handler(doc)
			}
		}
	}()
	return nil
}
