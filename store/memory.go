package store

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

// Memory is an in-process Store. Documents are kept bson-encoded so they
// decode exactly like MongoDB results. Used by tests and local development.
type Memory struct {
	mu          sync.RWMutex
	collections map[string]map[string]bson.Raw
	subs        map[string]map[*memorySub]struct{}
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		collections: make(map[string]map[string]bson.Raw),
		subs:        make(map[string]map[*memorySub]struct{}),
	}
}

type rawDocument struct {
	id  string
	raw bson.Raw
}

func (d rawDocument) ID() string { return d.id }

func (d rawDocument) DataTo(v any) error {
	if err := bson.Unmarshal(d.raw, v); err != nil {
		return fmt.Errorf("decode %s: %w", d.id, err)
	}
	return nil
}

func encode(data any) (bson.Raw, error) {
	b, err := bson.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return bson.Raw(b), nil
}

func (m *Memory) Add(ctx context.Context, collection string, data any) (string, error) {
	id := uuid.NewString()
	if err := m.Set(ctx, collection, id, data); err != nil {
		return "", err
	}
	return id, nil
}

func (m *Memory) Set(_ context.Context, collection, id string, data any) error {
	return m.put(collection, id, data, true)
}

func (m *Memory) Create(_ context.Context, collection, id string, data any) error {
	return m.put(collection, id, data, false)
}

func (m *Memory) put(collection, id string, data any, overwrite bool) error {
	raw, err := encode(data)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	coll, ok := m.collections[collection]
	if !ok {
		coll = make(map[string]bson.Raw)
		m.collections[collection] = coll
	}
	if _, taken := coll[id]; taken && !overwrite {
		return fmt.Errorf("%s/%s: %w", collection, id, ErrAlreadyExists)
	}
	coll[id] = raw
	m.notifyLocked(collection)
	return nil
}

func (m *Memory) Get(_ context.Context, collection, id string) (Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	raw, ok := m.collections[collection][id]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	return rawDocument{id: id, raw: raw}, nil
}

func (m *Memory) Update(_ context.Context, collection, id string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.collections[collection][id]
	if !ok {
		return fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	updated, err := mergeFields(raw, fields)
	if err != nil {
		return err
	}
	m.collections[collection][id] = updated
	m.notifyLocked(collection)
	return nil
}

func (m *Memory) UpdateIf(_ context.Context, collection, id string, cond Filter, fields map[string]any) error {
	t, data, err := bson.MarshalValue(cond.Value)
	if err != nil {
		return fmt.Errorf("encode condition %q: %w", cond.Field, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.collections[collection][id]
	if !ok {
		return fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	if !matches(raw, []Filter{cond}, []bson.RawValue{{Type: t, Value: data}}) {
		return fmt.Errorf("%s/%s %s: %w", collection, id, cond.Field, ErrConditionFailed)
	}
	updated, err := mergeFields(raw, fields)
	if err != nil {
		return err
	}
	m.collections[collection][id] = updated
	m.notifyLocked(collection)
	return nil
}

func (m *Memory) Delete(_ context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.collections[collection][id]; !ok {
		return nil
	}
	delete(m.collections[collection], id)
	m.notifyLocked(collection)
	return nil
}

func (m *Memory) Find(_ context.Context, q Query) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.findLocked(q)
}

func (m *Memory) Count(ctx context.Context, q Query) (int64, error) {
	q.Limit = 0
	docs, err := m.Find(ctx, q)
	if err != nil {
		return 0, err
	}
	return int64(len(docs)), nil
}

func (m *Memory) AdjustInt(_ context.Context, collection, id, field string, delta, floor int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.collections[collection][id]
	if !ok {
		return 0, fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	var current int64
	if rv, err := raw.LookupErr(field); err == nil {
		n, ok := numeric(rv)
		if !ok {
			return 0, fmt.Errorf("%s/%s: field %q is not numeric", collection, id, field)
		}
		current = int64(n)
	}
	next := current + delta
	if next < floor {
		return current, fmt.Errorf("%s/%s %s=%d%+d: %w", collection, id, field, current, delta, ErrConditionFailed)
	}
	updated, err := mergeFields(raw, map[string]any{field: next})
	if err != nil {
		return 0, err
	}
	m.collections[collection][id] = updated
	m.notifyLocked(collection)
	return next, nil
}

func (m *Memory) Watch(ctx context.Context, q Query) (Subscription, error) {
	sub := &memorySub{store: m, query: q, feed: newFeed()}

	m.mu.Lock()
	subs, ok := m.subs[q.Collection]
	if !ok {
		subs = make(map[*memorySub]struct{})
		m.subs[q.Collection] = subs
	}
	subs[sub] = struct{}{}
	docs, err := m.findLocked(q)
	if err != nil {
		delete(subs, sub)
		m.mu.Unlock()
		return nil, err
	}
	sub.feed.publish(Snapshot{Docs: docs})
	m.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			sub.Cancel()
		case <-sub.feed.done():
		}
	}()
	return sub, nil
}

// Close drops every subscription.
func (m *Memory) Close(context.Context) error {
	m.mu.Lock()
	var all []*memorySub
	for _, subs := range m.subs {
		for s := range subs {
			all = append(all, s)
		}
	}
	m.mu.Unlock()
	for _, s := range all {
		s.Cancel()
	}
	return nil
}

// Subscribers reports the number of live subscriptions on a collection.
func (m *Memory) Subscribers(collection string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subs[collection])
}

func (m *Memory) notifyLocked(collection string) {
	for sub := range m.subs[collection] {
		docs, err := m.findLocked(sub.query)
		if err != nil {
			sub.feed.publish(Snapshot{Err: err})
			continue
		}
		sub.feed.publish(Snapshot{Docs: docs})
	}
}

func (m *Memory) findLocked(q Query) ([]Document, error) {
	wanted := make([]bson.RawValue, len(q.Filters))
	for i, f := range q.Filters {
		t, data, err := bson.MarshalValue(f.Value)
		if err != nil {
			return nil, fmt.Errorf("encode filter %q: %w", f.Field, err)
		}
		wanted[i] = bson.RawValue{Type: t, Value: data}
	}

	var docs []rawDocument
	for id, raw := range m.collections[q.Collection] {
		if matches(raw, q.Filters, wanted) {
			docs = append(docs, rawDocument{id: id, raw: raw})
		}
	}

	sort.SliceStable(docs, func(i, j int) bool {
		if q.OrderBy != "" {
			c := compareField(docs[i].raw, docs[j].raw, q.OrderBy)
			if c != 0 {
				if q.Descending {
					return c > 0
				}
				return c < 0
			}
		}
		return docs[i].id < docs[j].id
	})
	if q.Limit > 0 && len(docs) > q.Limit {
		docs = docs[:q.Limit]
	}

	out := make([]Document, len(docs))
	for i, d := range docs {
		out[i] = d
	}
	return out, nil
}

type memorySub struct {
	store *Memory
	query Query
	feed  *feed
}

func (s *memorySub) Snapshots() <-chan Snapshot { return s.feed.Snapshots() }

func (s *memorySub) Cancel() {
	s.store.mu.Lock()
	delete(s.store.subs[s.query.Collection], s)
	s.store.mu.Unlock()
	s.feed.Cancel()
}

func matches(raw bson.Raw, filters []Filter, wanted []bson.RawValue) bool {
	for i, f := range filters {
		got, err := raw.LookupErr(f.Field)
		if err != nil {
			return false
		}
		if !rawEqual(got, wanted[i]) {
			return false
		}
	}
	return true
}

func rawEqual(a, b bson.RawValue) bool {
	if an, ok := numeric(a); ok {
		bn, ok := numeric(b)
		return ok && an == bn
	}
	return a.Type == b.Type && bytes.Equal(a.Value, b.Value)
}

func numeric(v bson.RawValue) (float64, bool) {
	switch v.Type {
	case bson.TypeInt32:
		return float64(v.Int32()), true
	case bson.TypeInt64:
		return float64(v.Int64()), true
	case bson.TypeDouble:
		return v.Double(), true
	}
	return 0, false
}

// compareField orders documents by field; documents without it sort first.
func compareField(a, b bson.Raw, field string) int {
	av, aErr := a.LookupErr(field)
	bv, bErr := b.LookupErr(field)
	switch {
	case aErr != nil && bErr != nil:
		return 0
	case aErr != nil:
		return -1
	case bErr != nil:
		return 1
	}
	if an, ok := numeric(av); ok {
		if bn, ok := numeric(bv); ok {
			switch {
			case an < bn:
				return -1
			case an > bn:
				return 1
			}
			return 0
		}
	}
	if av.Type == bson.TypeDateTime && bv.Type == bson.TypeDateTime {
		return av.Time().Compare(bv.Time())
	}
	if av.Type == bson.TypeString && bv.Type == bson.TypeString {
		return strings.Compare(av.StringValue(), bv.StringValue())
	}
	return 0
}

func mergeFields(raw bson.Raw, fields map[string]any) (bson.Raw, error) {
	var doc bson.D
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	for key, value := range fields {
		replaced := false
		for i := range doc {
			if doc[i].Key == key {
				doc[i].Value = value
				replaced = true
				break
			}
		}
		if !replaced {
			doc = append(doc, bson.E{Key: key, Value: value})
		}
	}
	return encode(doc)
}
