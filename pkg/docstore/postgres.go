package docstore

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"net"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/schooldash/pkg/db"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrations returns the goose migrations for the Postgres backend.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrations, "migrations")
	if err != nil {
		panic(err) // embedded path is fixed at compile time
	}
	return sub
}

// Postgres stores documents as JSONB rows in a single documents table.
// The body column holds the full document, including store-managed fields.
type Postgres struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewPostgres creates a Postgres-backed store. Apply Migrations before use.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool, now: time.Now}
}

// Find returns matching documents ordered by creation time.
// Filters use JSONB containment, so values must match the stored JSON type.
func (p *Postgres) Find(ctx context.Context, collection string, filter Filter) ([]Document, error) {
	if collection == "" {
		return nil, ErrEmptyCollection
	}

	cond, err := encodeFilter(filter)
	if err != nil {
		return nil, err
	}

	rows, err := p.pool.Query(ctx,
		`SELECT body FROM documents
		 WHERE collection = $1 AND body @> $2::jsonb
		 ORDER BY created_at, id`,
		collection, cond,
	)
	if err != nil {
		return nil, pgError(err)
	}

	docs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Document, error) {
		var body []byte
		if err := row.Scan(&body); err != nil {
			return nil, err
		}
		return decodeDocument(body)
	})
	if err != nil {
		return nil, pgError(err)
	}
	return docs, nil
}

// FindOne returns a document by id.
func (p *Postgres) FindOne(ctx context.Context, collection, id string) (Document, error) {
	if err := validate(collection, id); err != nil {
		return nil, err
	}

	var body []byte
	err := p.pool.QueryRow(ctx,
		`SELECT body FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	).Scan(&body)
	if err != nil {
		return nil, pgError(err)
	}
	return decodeDocument(body)
}

// Insert adds a new document.
func (p *Postgres) Insert(ctx context.Context, collection string, doc Document) (Document, error) {
	if collection == "" {
		return nil, ErrEmptyCollection
	}

	now := p.now()
	created, err := newDocument(doc, now)
	if err != nil {
		return nil, err
	}

	body, err := encodeDocument(created)
	if err != nil {
		return nil, err
	}

	_, err = p.pool.Exec(ctx,
		`INSERT INTO documents (collection, id, body, created_at, updated_at)
		 VALUES ($1, $2, $3::jsonb, $4, $4)`,
		collection, created.ID(), body, now,
	)
	if err != nil {
		return nil, pgError(err)
	}
	return created, nil
}

// Update merges patch into a document inside a transaction holding a row lock.
func (p *Postgres) Update(ctx context.Context, collection, id string, patch Document) (Document, error) {
	if err := validate(collection, id); err != nil {
		return nil, err
	}

	var updated Document
	err := db.WithTx(ctx, p.pool, func(tx pgx.Tx) error {
		var body []byte
		err := tx.QueryRow(ctx,
			`SELECT body FROM documents WHERE collection = $1 AND id = $2 FOR UPDATE`,
			collection, id,
		).Scan(&body)
		if err != nil {
			return err
		}

		current, err := decodeDocument(body)
		if err != nil {
			return err
		}

		now := p.now()
		updated = applyPatch(current, patch, now)
		next, err := encodeDocument(updated)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx,
			`UPDATE documents SET body = $3::jsonb, updated_at = $4
			 WHERE collection = $1 AND id = $2`,
			collection, id, next, now,
		)
		return err
	})
	if err != nil {
		return nil, pgError(err)
	}
	return updated, nil
}

// Delete removes a document.
func (p *Postgres) Delete(ctx context.Context, collection, id string) error {
	if err := validate(collection, id); err != nil {
		return err
	}

	tag, err := p.pool.Exec(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	)
	if err != nil {
		return pgError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of matching documents.
func (p *Postgres) Count(ctx context.Context, collection string, filter Filter) (int, error) {
	if collection == "" {
		return 0, ErrEmptyCollection
	}

	cond, err := encodeFilter(filter)
	if err != nil {
		return 0, err
	}

	var n int
	err = p.pool.QueryRow(ctx,
		`SELECT count(*) FROM documents WHERE collection = $1 AND body @> $2::jsonb`,
		collection, cond,
	).Scan(&n)
	if err != nil {
		return 0, pgError(err)
	}
	return n, nil
}

// Import upserts documents keeping their ids, in one transaction.
func (p *Postgres) Import(ctx context.Context, collection string, docs []Document) error {
	if collection == "" {
		return ErrEmptyCollection
	}

	now := p.now()
	batch := &pgx.Batch{}
	for _, doc := range docs {
		d, err := imported(doc, now)
		if err != nil {
			return err
		}
		body, err := encodeDocument(d)
		if err != nil {
			return err
		}
		batch.Queue(
			`INSERT INTO documents (collection, id, body, created_at, updated_at)
			 VALUES ($1, $2, $3::jsonb, $4, $4)
			 ON CONFLICT (collection, id) DO UPDATE
			 SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at`,
			collection, d.ID(), body, now,
		)
	}

	if batch.Len() == 0 {
		return nil
	}

	err := db.WithTx(ctx, p.pool, func(tx pgx.Tx) error {
		return tx.SendBatch(ctx, batch).Close()
	})
	return pgError(err)
}

func encodeFilter(filter Filter) ([]byte, error) {
	if len(filter) == 0 {
		return []byte("{}"), nil
	}
	data, err := json.Marshal(filter)
	if err != nil {
		return nil, errors.Join(ErrInvalidDocument, err)
	}
	return data, nil
}

func encodeDocument(doc Document) ([]byte, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.Join(ErrInvalidDocument, err)
	}
	return data, nil
}

func decodeDocument(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Join(ErrInvalidDocument, err)
	}
	return doc, nil
}

// pgError maps driver errors onto the package sentinels.
func pgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	var connErr *pgconn.ConnectError
	var netErr net.Error
	if errors.As(err, &connErr) || errors.As(err, &netErr) || pgconn.Timeout(err) {
		return errors.Join(ErrUnavailable, err)
	}
	return err
}

var (
	_ Store    = (*Postgres)(nil)
	_ Importer = (*Postgres)(nil)
)
