package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/schooldash/pkg/cache"
	"github.com/dmitrymomot/schooldash/pkg/docstore"
	"github.com/dmitrymomot/schooldash/pkg/sanitizer"
)

// Stats holds the document counts shown on the dashboard.
type Stats struct {
	Counts      map[string]int `json:"counts"`
	GeneratedAt time.Time      `json:"generatedAt"`
}

// Service reads dashboard data through the read-through cache and keeps the
// cache consistent with the store on writes.
//
// Values returned by read methods may be shared with the cache and other
// callers. They must not be modified.
type Service struct {
	store  docstore.Store
	cache  *cache.ReadThrough
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger for invalidation and write events.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source for stats timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates a Service over store and c.
func NewService(store docstore.Store, c *cache.ReadThrough, opts ...Option) *Service {
	s := &Service{
		store:  store,
		cache:  c,
		logger: slog.New(slog.DiscardHandler),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Cache exposes the underlying cache for administrative endpoints.
func (s *Service) Cache() *cache.ReadThrough { return s.cache }

// List returns every document of a collection.
func (s *Service) List(ctx context.Context, collection string) ([]docstore.Document, error) {
	r, err := resource(collection)
	if err != nil {
		return nil, err
	}

	return cache.Fetch(ctx, s.cache, CollectionKey(r), r.TTL, func(ctx context.Context) ([]docstore.Document, error) {
		return s.store.Find(ctx, r.Collection, nil)
	})
}

// Get returns one document or docstore.ErrNotFound.
func (s *Service) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	r, err := resource(collection)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: empty id", ErrInvalidInput)
	}

	return cache.Fetch(ctx, s.cache, ItemKey(r, id), r.TTL, func(ctx context.Context) (docstore.Document, error) {
		return s.store.FindOne(ctx, r.Collection, id)
	})
}

// ListByParent returns the documents of collection that belong to parentID,
// e.g. the teachers of one school.
func (s *Service) ListByParent(ctx context.Context, collection, parentID string) ([]docstore.Document, error) {
	r, err := resource(collection)
	if err != nil {
		return nil, err
	}
	if !r.HasParent() {
		return nil, fmt.Errorf("%w: %s", ErrNoParent, collection)
	}
	if strings.TrimSpace(parentID) == "" {
		return nil, fmt.Errorf("%w: empty %s", ErrInvalidInput, r.ParentField)
	}

	return cache.Fetch(ctx, s.cache, ParentKey(r, parentID), r.TTL, func(ctx context.Context) ([]docstore.Document, error) {
		return s.store.Find(ctx, r.Collection, docstore.Filter{r.ParentField: parentID})
	})
}

// Stats returns per-collection document counts.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	return cache.Fetch(ctx, s.cache, StatsKey, cache.TTLShort, func(ctx context.Context) (Stats, error) {
		counts := make([]int, len(resources))

		g, ctx := errgroup.WithContext(ctx)
		for i, r := range resources {
			g.Go(func() error {
				n, err := s.store.Count(ctx, r.Collection, nil)
				if err != nil {
					return fmt.Errorf("count %s: %w", r.Collection, err)
				}
				counts[i] = n
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return Stats{}, err
		}

		out := Stats{Counts: make(map[string]int, len(resources)), GeneratedAt: s.now().UTC()}
		for i, r := range resources {
			out.Counts[r.Collection] = counts[i]
		}
		return out, nil
	})
}

// Create validates and sanitizes doc, inserts it and pre-warms its item key.
func (s *Service) Create(ctx context.Context, collection string, doc docstore.Document) (docstore.Document, error) {
	r, err := resource(collection)
	if err != nil {
		return nil, err
	}
	if len(doc) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidInput)
	}

	clean := docstore.Document(sanitizer.Document(doc, r.Rich...))
	if r.HasParent() {
		if _, ok := clean[r.ParentField]; !ok {
			return nil, fmt.Errorf("%w: %s is required", ErrInvalidInput, r.ParentField)
		}
	}
	if err := s.checkParent(ctx, r, clean); err != nil {
		return nil, err
	}

	created, err := s.store.Insert(ctx, r.Collection, clean)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, r, created.ID())
	cache.Store(s.cache, ItemKey(r, created.ID()), created, r.TTL)

	s.logger.InfoContext(ctx, "document created",
		slog.String("collection", r.Collection),
		slog.String("id", created.ID()),
	)
	return created, nil
}

// Update merges patch into a document and pre-warms its item key.
func (s *Service) Update(ctx context.Context, collection, id string, patch docstore.Document) (docstore.Document, error) {
	r, err := resource(collection)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: empty id", ErrInvalidInput)
	}
	if len(patch) == 0 {
		return nil, fmt.Errorf("%w: empty patch", ErrInvalidInput)
	}

	clean := docstore.Document(sanitizer.Document(patch, r.Rich...))
	if err := s.checkParent(ctx, r, clean); err != nil {
		return nil, err
	}

	updated, err := s.store.Update(ctx, r.Collection, id, clean)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, r, id)
	cache.Store(s.cache, ItemKey(r, id), updated, r.TTL)

	s.logger.InfoContext(ctx, "document updated",
		slog.String("collection", r.Collection),
		slog.String("id", id),
	)
	return updated, nil
}

// Delete removes a document. Children are not deleted, but the views that
// list them under this parent are dropped.
func (s *Service) Delete(ctx context.Context, collection, id string) error {
	r, err := resource(collection)
	if err != nil {
		return err
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidInput)
	}

	if err := s.store.Delete(ctx, r.Collection, id); err != nil {
		return err
	}

	s.invalidate(ctx, r, id)
	for _, child := range children(r.Collection) {
		s.cache.Invalidate(ParentKey(child, id))
	}

	s.logger.InfoContext(ctx, "document deleted",
		slog.String("collection", r.Collection),
		slog.String("id", id),
	)
	return nil
}

// invalidate drops every key that can hold a view of document id of r.
// Parent views are dropped by pattern because the document may have moved
// between parents.
func (s *Service) invalidate(ctx context.Context, r Resource, id string) {
	s.cache.Invalidate(CollectionKey(r))
	s.cache.Invalidate(ItemKey(r, id))
	s.cache.Invalidate(StatsKey)

	var views int
	if r.HasParent() {
		views = s.cache.InvalidatePattern(ParentPattern(r))
	}

	s.logger.DebugContext(ctx, "cache invalidated",
		slog.String("collection", r.Collection),
		slog.String("id", id),
		slog.Int("parent_views", views),
	)
}

// checkParent verifies that a parent reference in doc, if any, names an
// existing document.
func (s *Service) checkParent(ctx context.Context, r Resource, doc docstore.Document) error {
	if !r.HasParent() {
		return nil
	}
	v, ok := doc[r.ParentField]
	if !ok {
		return nil
	}

	parentID, _ := v.(string)
	if strings.TrimSpace(parentID) == "" {
		return fmt.Errorf("%w: %s must be a non-empty string", ErrInvalidInput, r.ParentField)
	}

	if _, err := s.Get(ctx, r.Parent, parentID); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return fmt.Errorf("%w: %s %q does not exist", ErrInvalidInput, r.ParentField, parentID)
		}
		return err
	}
	return nil
}

func resource(collection string) (Resource, error) {
	r, ok := Lookup(collection)
	if !ok {
		return Resource{}, fmt.Errorf("%w: %q", ErrUnknownResource, collection)
	}
	return r, nil
}
