package access

import (
	"context"
	"errors"
	"fmt"

	"shaaban-furniture-backend/store"
)

// ErrUnresolved is returned by one-shot loads on a session that is still resolving.
var ErrUnresolved = errors.New("session not resolved")

type PlanKind int

const (
	// PlanPending: identity or role still resolving, nothing may be queried.
	PlanPending PlanKind = iota
	// PlanNone: the caller sees an empty result, which is not an error.
	PlanNone
	// PlanAll: the whole collection, newest first.
	PlanAll
	// PlanOwned: documents whose owner field equals the caller, newest first.
	PlanOwned
)

func (k PlanKind) String() string {
	return [...]string{"pending", "none", "all", "owned"}[k]
}

// Plan is comparable so a LiveQuery can tell whether anything changed.
type Plan struct {
	Kind  PlanKind
	Owner string
}

// Gate is a role-gated collection query.
type Gate struct {
	Collection string
	// OwnerField scopes customers to their own documents. Empty makes the
	// gate admin-only: customers get PlanNone.
	OwnerField string
	OrderBy    string
	// Public gates show the whole collection to every resolved session.
	Public bool
}

func (g Gate) Plan(s Session) Plan {
	if !s.AuthResolved {
		return Plan{Kind: PlanPending}
	}
	if g.Public {
		return Plan{Kind: PlanAll}
	}
	if s.Identity == nil {
		return Plan{Kind: PlanNone}
	}
	switch s.Role {
	case RoleUnresolved:
		return Plan{Kind: PlanPending}
	case RoleAdmin:
		return Plan{Kind: PlanAll}
	}
	if g.OwnerField == "" {
		return Plan{Kind: PlanNone}
	}
	return Plan{Kind: PlanOwned, Owner: s.Identity.UID}
}

// Query is the store query for an active plan.
func (g Gate) Query(p Plan) store.Query {
	q := store.Query{Collection: g.Collection}
	if p.Kind == PlanOwned {
		q = q.Where(g.OwnerField, p.Owner)
	}
	if g.OrderBy != "" {
		q = q.Newest(g.OrderBy)
	}
	return q
}

// Load runs the plan once.
func (g Gate) Load(ctx context.Context, st store.Store, s Session) ([]store.Document, error) {
	p := g.Plan(s)
	switch p.Kind {
	case PlanPending:
		return nil, ErrUnresolved
	case PlanNone:
		return nil, nil
	}
	docs, err := st.Find(ctx, g.Query(p))
	if err != nil {
		return nil, fmt.Errorf("load %s (%s): %w", g.Collection, p.Kind, err)
	}
	return docs, nil
}

// Decoder turns a stored document into a T.
type Decoder[T any] func(store.Document) (T, error)

// DecodeAll applies decode to every document, stopping at the first error.
func DecodeAll[T any](docs []store.Document, decode Decoder[T]) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		v, err := decode(d)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// LoadAs is Load followed by DecodeAll.
func LoadAs[T any](ctx context.Context, st store.Store, g Gate, s Session, decode Decoder[T]) ([]T, error) {
	docs, err := g.Load(ctx, st, s)
	if err != nil {
		return nil, err
	}
	return DecodeAll(docs, decode)
}
