// Package store holds the in-memory document and serializes every change to it.
//
// All mutations, inbound snapshots and resets pass through one ordered channel consumed by a
// single writer goroutine. A mutation runs against a clone of the committed document and is
// swapped in only after the backend acknowledged the save, so readers never observe state that
// is not durable.
package store

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/emphasis-lines-api/internal/models"
	"github.com/noah-isme/emphasis-lines-api/internal/repository"
	appErrors "github.com/noah-isme/emphasis-lines-api/pkg/errors"
)

// ErrClosed is returned by Update after Close.
var ErrClosed = errors.New("store closed")

// maxConflictRetries bounds how often a unit of work is re-run after another instance saved first.
const maxConflictRetries = 3

// Recorder receives store instrumentation. MetricsService implements it.
type Recorder interface {
	ObservePersist(duration time.Duration, err error)
	ObserveSnapshot(applied bool)
	SetRevision(revision int64)
}

// Listener is called from the writer goroutine after every committed change; it must not block.
type Listener func(event models.ChangeEvent)

// MutateFunc changes doc in place. Returning an error discards the whole unit of work.
type MutateFunc func(doc *models.Document) error

type opKind int

const (
	opMutate opKind = iota
	opSnapshot
	opReset
)

type op struct {
	kind     opKind
	ctx      context.Context
	mutate   MutateFunc
	snapshot *models.Document
	change   models.ChangeKind
	done     chan error
}

// Option customises a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRecorder attaches instrumentation.
func WithRecorder(recorder Recorder) Option {
	return func(s *Store) { s.recorder = recorder }
}

// WithSeed toggles seeding the three base users on an empty user collection.
func WithSeed(enabled bool) Option {
	return func(s *Store) { s.seed = enabled }
}

// WithQueueSize sets the capacity of the writer queue.
func WithQueueSize(size int) Option {
	return func(s *Store) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithSaveTimeout bounds every backend call made by the writer.
func WithSaveTimeout(timeout time.Duration) Option {
	return func(s *Store) {
		if timeout > 0 {
			s.saveTimeout = timeout
		}
	}
}

// Store owns the committed document.
type Store struct {
	backend     repository.DocumentBackend
	logger      *zap.Logger
	recorder    Recorder
	seed        bool
	queueSize   int
	saveTimeout time.Duration

	mu     sync.RWMutex
	doc    *models.Document
	loaded bool

	ops       chan op
	ready     chan struct{}
	readyOnce sync.Once
	running   atomic.Bool
	stopped   chan struct{}
	startOnce sync.Once
	stopOnce  sync.Once
	cancel    context.CancelFunc
	wg        sync.WaitGroup

	listenersMu sync.RWMutex
	listeners   []Listener
}

// New constructs a Store over backend. Call Start before use.
func New(backend repository.DocumentBackend, opts ...Option) *Store {
	s := &Store{
		backend:     backend,
		logger:      zap.NewNop(),
		seed:        true,
		queueSize:   64,
		saveTimeout: 5 * time.Second,
		ready:       make(chan struct{}),
		stopped:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ops = make(chan op, s.queueSize)
	empty := &models.Document{}
	empty.Normalize()
	s.doc = empty
	return s
}

// Start loads the document, seeds it when the user collection is empty, subscribes to remote
// pushes and signals readiness. A failed load is logged and treated as an empty document.
func (s *Store) Start(ctx context.Context) error {
	var startErr error
	s.startOnce.Do(func() {
		runCtx, cancel := context.WithCancel(context.Background())
		s.cancel = cancel
		s.running.Store(true)
		s.wg.Add(1)
		go s.run(runCtx)

		if sub, ok := s.backend.(repository.SubscribableBackend); ok {
			if err := sub.Subscribe(runCtx, s.enqueueSnapshot); err != nil {
				s.logger.Warn("document subscription unavailable", zap.Error(err))
			}
		}

		doc, err := s.backend.Load(ctx)
		if err != nil {
			s.logger.Error("failed to load document", zap.Error(err))
			doc = &models.Document{}
		}
		doc.Normalize()
		if err := s.submit(ctx, op{kind: opSnapshot, snapshot: doc, change: models.ChangeLoaded}); err != nil {
			startErr = err
			return
		}

		if s.seed {
			if err := s.Update(ctx, seedIfEmpty); err != nil && !errors.Is(err, errUnchanged) {
				s.logger.Error("failed to seed base users", zap.Error(err))
			}
		}

		s.readyOnce.Do(func() { close(s.ready) })
		s.emit(models.ChangeEvent{Kind: models.ChangeLoaded, Revision: s.Revision()})
		s.logger.Info("store ready", zap.Int64("revision", s.Revision()))
	})
	return startErr
}

// Ready is closed once the initial load (and seeding) finished.
func (s *Store) Ready() <-chan struct{} {
	return s.ready
}

// IsReady reports whether Ready is closed.
func (s *Store) IsReady() bool {
	select {
	case <-s.ready:
		return true
	default:
		return false
	}
}

// Close stops the writer and any subscription. Pending operations fail with ErrClosed.
func (s *Store) Close() {
	s.stopOnce.Do(func() {
		close(s.stopped)
		if s.cancel != nil {
			s.cancel()
		}
		s.wg.Wait()
		s.running.Store(false)
	})
}

// OnChange registers a listener for committed changes.
func (s *Store) OnChange(listener Listener) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.listeners = append(s.listeners, listener)
}

// Revision returns the committed document revision.
func (s *Store) Revision() int64 {
	return s.current().Revision
}

// Read runs fn against the committed document. fn must not modify doc.
func (s *Store) Read(fn func(doc *models.Document)) {
	fn(s.current())
}

// View runs fn against the committed document and returns its result.
func View[T any](s *Store, fn func(doc *models.Document) T) T {
	return fn(s.current())
}

// Update runs fn as one unit of work: fn mutates a clone, the clone is saved as a whole and
// committed only when the save succeeded. If ctx ends after the operation was queued the
// mutation may still commit.
func (s *Store) Update(ctx context.Context, fn MutateFunc) error {
	return s.submit(ctx, op{kind: opMutate, mutate: fn, change: models.ChangeMutated})
}

// Reset replaces the persisted document with an empty one holding only the base users.
func (s *Store) Reset(ctx context.Context) error {
	return s.submit(ctx, op{kind: opReset, change: models.ChangeReset})
}

func (s *Store) submit(ctx context.Context, o op) error {
	if !s.running.Load() {
		return appErrors.ErrNotReady
	}
	o.ctx = ctx
	o.done = make(chan error, 1)
	select {
	case s.ops <- o:
	case <-ctx.Done():
		return ctx.Err()
	case <-s.stopped:
		return ErrClosed
	}
	select {
	case err := <-o.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-s.stopped:
		return ErrClosed
	}
}

func (s *Store) enqueueSnapshot(doc *models.Document) {
	o := op{kind: opSnapshot, ctx: context.Background(), snapshot: doc, change: models.ChangeSynced}
	select {
	case s.ops <- o:
	case <-s.stopped:
	}
}

func (s *Store) run(ctx context.Context) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case o := <-s.ops:
			var err error
			switch o.kind {
			case opMutate:
				err = s.applyMutation(o)
			case opSnapshot:
				s.applySnapshot(o)
			case opReset:
				err = s.applyReset(o)
			}
			if o.done != nil {
				o.done <- err
			}
		}
	}
}

func (s *Store) applyMutation(o op) error {
	return s.withConflictRetry(o, func(current *models.Document) (*models.Document, error) {
		next := current.Clone()
		if err := o.mutate(next); err != nil {
			return nil, err
		}
		return next, nil
	})
}

// applyReset replaces the persisted document with the re-seeded one in a single save, so a
// failed save leaves both the backend and memory at the previous revision.
func (s *Store) applyReset(o op) error {
	return s.withConflictRetry(o, func(*models.Document) (*models.Document, error) {
		next := &models.Document{}
		next.Normalize()
		if s.seed {
			next.Users = SeedUsers()
		}
		return next, nil
	})
}

// withConflictRetry builds the next document from the committed one and commits it. When another
// instance saved first, the newer stored document is loaded and build runs again on top of it.
func (s *Store) withConflictRetry(o op, build func(current *models.Document) (*models.Document, error)) error {
	for attempt := 0; ; attempt++ {
		current := s.current()
		next, err := build(current)
		if err != nil {
			return err
		}
		err = s.commit(o, current, next)
		if !errors.Is(err, appErrors.ErrRevisionConflict) || attempt >= maxConflictRetries {
			return err
		}
		s.logger.Info("document revision conflict, reloading", zap.Int64("revision", current.Revision), zap.Int("attempt", attempt+1))
		if err := s.reload(o.ctx); err != nil {
			return err
		}
	}
}

// reload applies the stored document when it is newer than the committed one.
func (s *Store) reload(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.saveTimeout)
	defer cancel()
	doc, err := s.backend.Load(ctx)
	if err != nil {
		s.logger.Error("failed to reload document", zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to reload document")
	}
	s.applySnapshot(op{snapshot: doc, change: models.ChangeSynced})
	return nil
}

// commit saves next with the following revision and swaps it in on success.
// Revisions stay monotonic across resets so remote peers never drop the reset document.
func (s *Store) commit(o op, current, next *models.Document) error {
	next.Normalize()
	next.Revision = current.Revision + 1

	ctx, cancel := context.WithTimeout(o.ctx, s.saveTimeout)
	defer cancel()
	start := time.Now()
	err := s.backend.Save(ctx, next)
	if s.recorder != nil {
		s.recorder.ObservePersist(time.Since(start), err)
	}
	if errors.Is(err, repository.ErrRevisionConflict) {
		return appErrors.Wrap(err, appErrors.ErrRevisionConflict.Code, appErrors.ErrRevisionConflict.Status, appErrors.ErrRevisionConflict.Message)
	}
	if err != nil {
		s.logger.Error("failed to save document", zap.Int64("revision", next.Revision), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, appErrors.ErrPersistence.Message)
	}

	s.setDoc(next)
	s.emit(models.ChangeEvent{Kind: o.change, Revision: next.Revision})
	return nil
}

// applySnapshot replaces the document when the snapshot is newer than the committed one.
// Echoes of this instance's own saves carry the committed revision and are dropped.
func (s *Store) applySnapshot(o op) {
	s.mu.RLock()
	loaded := s.loaded
	current := s.doc
	s.mu.RUnlock()

	doc := o.snapshot
	if doc == nil || (loaded && doc.Revision <= current.Revision) {
		if s.recorder != nil {
			s.recorder.ObserveSnapshot(false)
		}
		return
	}
	doc.Normalize()
	s.setDoc(doc)
	if s.recorder != nil {
		s.recorder.ObserveSnapshot(true)
	}
	if o.change == models.ChangeSynced {
		s.logger.Debug("document synced", zap.Int64("revision", doc.Revision))
		s.emit(models.ChangeEvent{Kind: models.ChangeSynced, Revision: doc.Revision})
	}
}

func (s *Store) setDoc(doc *models.Document) {
	s.mu.Lock()
	s.doc = doc
	s.loaded = true
	s.mu.Unlock()
	if s.recorder != nil {
		s.recorder.SetRevision(doc.Revision)
	}
}

func (s *Store) current() *models.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc
}

func (s *Store) emit(event models.ChangeEvent) {
	s.listenersMu.RLock()
	listeners := append([]Listener(nil), s.listeners...)
	s.listenersMu.RUnlock()
	for _, listener := range listeners {
		listener(event)
	}
}

// errUnchanged aborts a unit of work without saving.
var errUnchanged = errors.New("document unchanged")

func seedIfEmpty(doc *models.Document) error {
	if len(doc.Users) > 0 {
		return errUnchanged
	}
	doc.Users = SeedUsers()
	return nil
}
