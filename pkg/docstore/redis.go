package docstore

import (
	"cmp"
	"context"
	"errors"
	"net"
	"slices"
	"time"

	"github.com/redis/go-redis/v9"
)

const maxWatchRetries = 5

// RedisOption configures the Redis store.
type RedisOption func(*Redis)

// WithKeyPrefix sets the prefix of the per-collection hash keys.
// Keys are stored as "{prefix}:{collection}".
// Default: "docs".
func WithKeyPrefix(prefix string) RedisOption {
	return func(r *Redis) {
		if prefix != "" {
			r.prefix = prefix
		}
	}
}

// Redis keeps each collection in one hash: field = document id,
// value = JSON document. Filters are evaluated client-side.
type Redis struct {
	client redis.UniversalClient
	now    func() time.Time
	prefix string
}

// NewRedis creates a Redis-backed store.
// The client should be obtained from pkg/redis.Open.
func NewRedis(client redis.UniversalClient, opts ...RedisOption) *Redis {
	r := &Redis{client: client, now: time.Now, prefix: "docs"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Find returns matching documents ordered by creation time, then id.
func (r *Redis) Find(ctx context.Context, collection string, filter Filter) ([]Document, error) {
	if collection == "" {
		return nil, ErrEmptyCollection
	}

	values, err := r.client.HVals(ctx, r.key(collection)).Result()
	if err != nil {
		return nil, redisError(err)
	}

	docs := make([]Document, 0, len(values))
	for _, v := range values {
		doc, err := decodeDocument([]byte(v))
		if err != nil {
			return nil, err
		}
		if Matches(doc, filter) {
			docs = append(docs, doc)
		}
	}

	slices.SortFunc(docs, func(a, b Document) int {
		ca, _ := a[FieldCreatedAt].(string)
		cb, _ := b[FieldCreatedAt].(string)
		return cmp.Or(cmp.Compare(ca, cb), cmp.Compare(a.ID(), b.ID()))
	})
	return docs, nil
}

// FindOne returns a document by id.
func (r *Redis) FindOne(ctx context.Context, collection, id string) (Document, error) {
	if err := validate(collection, id); err != nil {
		return nil, err
	}

	data, err := r.client.HGet(ctx, r.key(collection), id).Bytes()
	if err != nil {
		return nil, redisError(err)
	}
	return decodeDocument(data)
}

// Insert adds a new document.
func (r *Redis) Insert(ctx context.Context, collection string, doc Document) (Document, error) {
	if collection == "" {
		return nil, ErrEmptyCollection
	}

	created, err := newDocument(doc, r.now())
	if err != nil {
		return nil, err
	}

	data, err := encodeDocument(created)
	if err != nil {
		return nil, err
	}

	if err := r.client.HSet(ctx, r.key(collection), created.ID(), data).Err(); err != nil {
		return nil, redisError(err)
	}
	return created, nil
}

// Update merges patch into a document using an optimistic WATCH transaction.
func (r *Redis) Update(ctx context.Context, collection, id string, patch Document) (Document, error) {
	if err := validate(collection, id); err != nil {
		return nil, err
	}

	key := r.key(collection)
	var updated Document

	txf := func(tx *redis.Tx) error {
		data, err := tx.HGet(ctx, key, id).Bytes()
		if err != nil {
			return err
		}

		current, err := decodeDocument(data)
		if err != nil {
			return err
		}

		updated = applyPatch(current, patch, r.now())
		next, err := encodeDocument(updated)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, id, next)
			return nil
		})
		return err
	}

	for range maxWatchRetries {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, redisError(err)
		}
		return updated, nil
	}
	return nil, redis.TxFailedErr
}

// Delete removes a document.
func (r *Redis) Delete(ctx context.Context, collection, id string) error {
	if err := validate(collection, id); err != nil {
		return err
	}

	n, err := r.client.HDel(ctx, r.key(collection), id).Result()
	if err != nil {
		return redisError(err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of matching documents.
// Without a filter this is a single HLEN.
func (r *Redis) Count(ctx context.Context, collection string, filter Filter) (int, error) {
	if collection == "" {
		return 0, ErrEmptyCollection
	}

	if len(filter) == 0 {
		n, err := r.client.HLen(ctx, r.key(collection)).Result()
		if err != nil {
			return 0, redisError(err)
		}
		return int(n), nil
	}

	docs, err := r.Find(ctx, collection, filter)
	if err != nil {
		return 0, err
	}
	return len(docs), nil
}

// Import upserts documents keeping their ids, in one pipeline.
func (r *Redis) Import(ctx context.Context, collection string, docs []Document) error {
	if collection == "" {
		return ErrEmptyCollection
	}

	now := r.now()
	values := make([]any, 0, len(docs)*2)
	for _, doc := range docs {
		d, err := imported(doc, now)
		if err != nil {
			return err
		}
		data, err := encodeDocument(d)
		if err != nil {
			return err
		}
		values = append(values, d.ID(), data)
	}

	if len(values) == 0 {
		return nil
	}
	return redisError(r.client.HSet(ctx, r.key(collection), values...).Err())
}

func (r *Redis) key(collection string) string {
	return r.prefix + ":" + collection
}

// redisError maps client errors onto the package sentinels.
func redisError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, redis.ErrClosed) {
		return errors.Join(ErrUnavailable, err)
	}
	return err
}

var (
	_ Store    = (*Redis)(nil)
	_ Importer = (*Redis)(nil)
)
