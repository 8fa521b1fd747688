// Package store is the document database the rest of the service talks to.
// Documents live in named collections and are keyed by string ids. Reads are
// either one-shot (Get, Find) or live (Watch), which re-delivers the full
// result set whenever the collection changes.
package store

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrConditionFailed is returned by AdjustInt and UpdateIf when their condition does not hold.
	ErrConditionFailed = errors.New("conditional update failed")
	// ErrAlreadyExists is returned by Create when the id is taken.
	ErrAlreadyExists = errors.New("document already exists")
)

// Collection names shared by the services.
const (
	Products       = "products"
	Orders         = "orders"
	Users          = "users"
	AdminRoles     = "roles_admin"
	Credentials    = "credentials"
	ReviewsPrivate = "reviews_private"
	ReviewsPublic  = "reviews_public"
	Messages       = "messages"
	Subscribers    = "newsletter_subscribers"
)

// Filter is an equality condition on a top-level field.
type Filter struct {
	Field string
	Value any
}

// Query selects documents from one collection.
type Query struct {
	Collection string
	Filters    []Filter
	OrderBy    string
	Descending bool
	Limit      int
}

// Where returns a copy of q with an extra equality filter.
func (q Query) Where(field string, value any) Query {
	filters := make([]Filter, 0, len(q.Filters)+1)
	filters = append(filters, q.Filters...)
	q.Filters = append(filters, Filter{Field: field, Value: value})
	return q
}

// Newest orders q by field, most recent first.
func (q Query) Newest(field string) Query {
	q.OrderBy = field
	q.Descending = true
	return q
}

// Document is a stored document as returned by reads.
type Document interface {
	ID() string
	// DataTo decodes the document body into v, a pointer to a struct.
	DataTo(v any) error
}

// Snapshot is one delivery of a live subscription: either the full result
// set or the error that ended the subscription.
type Snapshot struct {
	Docs []Document
	Err  error
}

// Subscription is a live query. Snapshots is closed after Cancel or a terminal error.
type Subscription interface {
	Snapshots() <-chan Snapshot
	Cancel()
}

// Store is the document store collaborator.
type Store interface {
	Add(ctx context.Context, collection string, data any) (string, error)
	Set(ctx context.Context, collection, id string, data any) error
	// Create writes collection/id only if it does not exist yet.
	Create(ctx context.Context, collection, id string, data any) error
	Get(ctx context.Context, collection, id string) (Document, error)
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	// UpdateIf applies fields only while the document still matches cond,
	// otherwise it fails with ErrConditionFailed.
	UpdateIf(ctx context.Context, collection, id string, cond Filter, fields map[string]any) error
	Delete(ctx context.Context, collection, id string) error
	Find(ctx context.Context, q Query) ([]Document, error)
	Count(ctx context.Context, q Query) (int64, error)
	Watch(ctx context.Context, q Query) (Subscription, error)
	// AdjustInt atomically adds delta to an integer field and returns the new
	// value. The write is refused with ErrConditionFailed when the result
	// would be below floor.
	AdjustInt(ctx context.Context, collection, id, field string, delta, floor int64) (int64, error)
	Close(ctx context.Context) error
}

// Exists reports whether collection/id is present.
func Exists(ctx context.Context, s Store, collection, id string) (bool, error) {
	_, err := s.Get(ctx, collection, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
