// Package docstore defines the document collections every page is built on:
// documents with a generated id, server-stamped createdAt/updatedAt and a
// free-form field set, listed in a single indexed order, with a change feed
// that tells subscribers which collection moved.
package docstore

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned by Get, Update and Delete for unknown ids.
	ErrNotFound = errors.New("document not found")
	// ErrUnindexedOrder is returned by List when the order field has no index.
	ErrUnindexedOrder = errors.New("order field is not indexed")
	// ErrInvalidCollection rejects empty or malformed collection names.
	ErrInvalidCollection = errors.New("invalid collection name")
)

// Reserved field names set by the store.
const (
	FieldID        = "id"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
)

// IndexedFields lists the fields List can order by.
var IndexedFields = map[string]bool{
	FieldCreatedAt: true,
	FieldUpdatedAt: true,
	"date":         true,
}

// Order selects the listing order. The zero value is unordered.
type Order struct {
	Field string
	Desc  bool
}

// Unordered lists in storage order.
var Unordered = Order{}

// Newest is the default order: createdAt descending.
var Newest = Order{Field: FieldCreatedAt, Desc: true}

// IsZero reports whether o requests no ordering.
func (o Order) IsZero() bool { return o.Field == "" }

// Validate returns ErrUnindexedOrder for fields without an index.
func (o Order) Validate() error {
	if o.IsZero() || IndexedFields[o.Field] {
		return nil
	}
	return ErrUnindexedOrder
}

// Document is a stored record.
type Document struct {
	ID        string
	Fields    map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Record returns the flattened {id, ...fields, createdAt, updatedAt} view.
// Stored fields never shadow the reserved names.
func (d Document) Record() Record {
	rec := make(Record, len(d.Fields)+3)
	for k, v := range d.Fields {
		rec[k] = cloneValue(v)
	}
	rec[FieldID] = d.ID
	rec[FieldCreatedAt] = d.CreatedAt
	rec[FieldUpdatedAt] = d.UpdatedAt
	return rec
}

// Op is the kind of change carried by the feed.
type Op string

const (
	OpInsert Op = "INSERT"
	OpUpdate Op = "UPDATE"
	OpDelete Op = "DELETE"
)

// Change identifies one committed write.
type Change struct {
	Collection string `json:"collection"`
	ID         string `json:"id"`
	Op         Op     `json:"op"`
}

// Store is implemented by the postgres and memory backends.
type Store interface {
	List(ctx context.Context, collection string, order Order) ([]Document, error)
	Get(ctx context.Context, collection, id string) (Document, error)
	Create(ctx context.Context, collection string, fields map[string]any) (Document, error)
	Update(ctx context.Context, collection, id string, fields map[string]any) (Document, error)
	Delete(ctx context.Context, collection, id string) error
	// Watch streams committed changes until ctx ends. The channel is closed
	// when the feed stops; callers re-list everything after a reconnect.
	Watch(ctx context.Context) (<-chan Change, error)
	Ping(ctx context.Context) error
	Close()
}

// ValidCollection accepts names made of letters and digits, starting with a
// letter, as used by the page collections (e.g. ongoingWork).
func ValidCollection(name string) error {
	if name == "" || len(name) > 64 {
		return ErrInvalidCollection
	}
	for i, c := range name {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return ErrInvalidCollection
		}
	}
	return nil
}

// StripReserved drops id and timestamp keys from a write payload so the
// store stays the only source of them.
func StripReserved(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		switch k {
		case FieldID, FieldCreatedAt, FieldUpdatedAt:
			continue
		}
		out[k] = v
	}
	return out
}
