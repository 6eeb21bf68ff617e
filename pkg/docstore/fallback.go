package docstore

import (
	"context"
	"errors"
	"io"
	"log/slog"
)

// Fallback serves reads from a secondary store while the primary is
// unavailable. Writes always go to the primary; a write that cannot reach it
// fails rather than diverging into the secondary.
type Fallback struct {
	primary   Store
	secondary Store
	logger    *slog.Logger
}

// NewFallback wraps primary with a read fallback to secondary.
// A nil logger discards output.
func NewFallback(primary, secondary Store, logger *slog.Logger) *Fallback {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Fallback{primary: primary, secondary: secondary, logger: logger}
}

// Find reads from the primary, falling back on ErrUnavailable.
func (f *Fallback) Find(ctx context.Context, collection string, filter Filter) ([]Document, error) {
	docs, err := f.primary.Find(ctx, collection, filter)
	if f.shouldFallback(ctx, err, "find", collection) {
		return f.secondary.Find(ctx, collection, filter)
	}
	return docs, err
}

// FindOne reads from the primary, falling back on ErrUnavailable.
func (f *Fallback) FindOne(ctx context.Context, collection, id string) (Document, error) {
	doc, err := f.primary.FindOne(ctx, collection, id)
	if f.shouldFallback(ctx, err, "find_one", collection) {
		return f.secondary.FindOne(ctx, collection, id)
	}
	return doc, err
}

// Count reads from the primary, falling back on ErrUnavailable.
func (f *Fallback) Count(ctx context.Context, collection string, filter Filter) (int, error) {
	n, err := f.primary.Count(ctx, collection, filter)
	if f.shouldFallback(ctx, err, "count", collection) {
		return f.secondary.Count(ctx, collection, filter)
	}
	return n, err
}

// Insert writes to the primary only.
func (f *Fallback) Insert(ctx context.Context, collection string, doc Document) (Document, error) {
	return f.primary.Insert(ctx, collection, doc)
}

// Update writes to the primary only.
func (f *Fallback) Update(ctx context.Context, collection, id string, patch Document) (Document, error) {
	return f.primary.Update(ctx, collection, id, patch)
}

// Delete writes to the primary only.
func (f *Fallback) Delete(ctx context.Context, collection, id string) error {
	return f.primary.Delete(ctx, collection, id)
}

func (f *Fallback) shouldFallback(ctx context.Context, err error, op, collection string) bool {
	if !errors.Is(err, ErrUnavailable) {
		return false
	}
	f.logger.WarnContext(ctx, "primary store unavailable, serving fallback data",
		slog.String("op", op),
		slog.String("collection", collection),
		slog.String("error", err.Error()),
	)
	return true
}

var _ Store = (*Fallback)(nil)
