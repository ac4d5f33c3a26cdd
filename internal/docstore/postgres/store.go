// Package postgres stores document collections in a jsonb table and turns
// the table's NOTIFY trigger into a docstore change feed.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/VyasaPraveen/Pragathi-CRM/internal/docstore"
)

// NotifyChannel is the channel the documents trigger publishes on.
const NotifyChannel = "document_changes"

// orderExpr maps each indexed field to the expression its index covers.
var orderExpr = map[string]string{
	docstore.FieldCreatedAt: "created_at",
	docstore.FieldUpdatedAt: "updated_at",
	"date":                  "data->>'date'",
}

// Store implements docstore.Store on a pgx pool. The pool belongs to the
// caller.
type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// listQuery builds the SELECT for one collection. Only indexed fields reach
// ORDER BY, so no caller text is ever interpolated.
func listQuery(order docstore.Order) (string, error) {
	const base = `SELECT id::text, data, created_at, updated_at FROM documents WHERE collection = $1`
	if order.IsZero() {
		return base + ` ORDER BY seq`, nil
	}
	expr, ok := orderExpr[order.Field]
	if !ok {
		return "", docstore.ErrUnindexedOrder
	}
	dir := "ASC"
	if order.Desc {
		dir = "DESC"
	}
	return fmt.Sprintf(`%s ORDER BY %s %s NULLS LAST, seq %s`, base, expr, dir, dir), nil
}

func (s *Store) List(ctx context.Context, collection string, order docstore.Order) ([]docstore.Document, error) {
	if err := docstore.ValidCollection(collection); err != nil {
		return nil, err
	}
	if err := order.Validate(); err != nil {
		return nil, fmt.Errorf("list %s by %s: %w", collection, order.Field, err)
	}
	query, err := listQuery(order)
	if err != nil {
		return nil, fmt.Errorf("list %s by %s: %w", collection, order.Field, err)
	}

	rows, err := s.pool.Query(ctx, query, collection)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []docstore.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", collection, err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *Store) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	if _, err := uuid.Parse(id); err != nil {
		return docstore.Document{}, docstore.ErrNotFound
	}
	row := s.pool.QueryRow(ctx,
		`SELECT id::text, data, created_at, updated_at FROM documents WHERE collection = $1 AND id = $2`,
		collection, id)
	return notFound(scanDocument(row))
}

func (s *Store) Create(ctx context.Context, collection string, fields map[string]any) (docstore.Document, error) {
	if err := docstore.ValidCollection(collection); err != nil {
		return docstore.Document{}, err
	}
	data, err := json.Marshal(docstore.StripReserved(fields))
	if err != nil {
		return docstore.Document{}, fmt.Errorf("encode %s fields: %w", collection, err)
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO documents (collection, id, data, created_at, updated_at)
		VALUES ($1, $2, $3::jsonb, NOW(), NOW())
		RETURNING id::text, data, created_at, updated_at`,
		collection, uuid.NewString(), data)
	doc, err := scanDocument(row)
	if err != nil {
		return docstore.Document{}, fmt.Errorf("create %s: %w", collection, err)
	}
	return doc, nil
}

// Update merges fields into the stored object (jsonb ||), so concurrent
// edits of different fields both survive and same-field edits are
// last-write-wins.
func (s *Store) Update(ctx context.Context, collection, id string, fields map[string]any) (docstore.Document, error) {
	if _, err := uuid.Parse(id); err != nil {
		return docstore.Document{}, docstore.ErrNotFound
	}
	data, err := json.Marshal(docstore.StripReserved(fields))
	if err != nil {
		return docstore.Document{}, fmt.Errorf("encode %s fields: %w", collection, err)
	}

	row := s.pool.QueryRow(ctx, `
		UPDATE documents SET data = data || $3::jsonb, updated_at = NOW()
		WHERE collection = $1 AND id = $2
		RETURNING id::text, data, created_at, updated_at`,
		collection, id, data)
	return notFound(scanDocument(row))
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return docstore.ErrNotFound
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM documents WHERE collection = $1 AND id = $2`, collection, id)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	if tag.RowsAffected() == 0 {
		return docstore.ErrNotFound
	}
	return nil
}

// Watch LISTENs on a dedicated pool connection. The returned channel closes
// when ctx ends or the connection drops; the caller decides whether to
// watch again.
func (s *Store) Watch(ctx context.Context) (<-chan docstore.Change, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire listen connection: %w", err)
	}
	if _, err := conn.Exec(ctx, "LISTEN "+NotifyChannel); err != nil {
		conn.Release()
		return nil, fmt.Errorf("listen %s: %w", NotifyChannel, err)
	}

	ch := make(chan docstore.Change, 64)
	go func() {
		defer close(ch)
		defer func() {
			unlistenCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if _, err := conn.Exec(unlistenCtx, "UNLISTEN "+NotifyChannel); err != nil {
				// Broken connection: drop it instead of returning it to the pool.
				conn.Conn().Close(unlistenCtx)
			}
			conn.Release()
		}()

		for {
			n, err := conn.Conn().WaitForNotification(ctx)
			if err != nil {
				if ctx.Err() == nil {
					log.Printf("[DocStore] change feed stopped: %v", err)
				}
				return
			}
			var c docstore.Change
			if err := json.Unmarshal([]byte(n.Payload), &c); err != nil {
				log.Printf("[DocStore] bad notification payload %q: %v", n.Payload, err)
				continue
			}
			select {
			case ch <- c:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close is a no-op; the pool is closed by its owner.
func (s *Store) Close() {}

func scanDocument(row pgx.Row) (docstore.Document, error) {
	var (
		doc  docstore.Document
		data []byte
	)
	if err := row.Scan(&doc.ID, &data, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		return docstore.Document{}, err
	}
	doc.Fields = make(map[string]any)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &doc.Fields); err != nil {
			return docstore.Document{}, fmt.Errorf("decode document %s: %w", doc.ID, err)
		}
	}
	return doc, nil
}

func notFound(doc docstore.Document, err error) (docstore.Document, error) {
	if errors.Is(err, pgx.ErrNoRows) {
		return docstore.Document{}, docstore.ErrNotFound
	}
	return doc, err
}
