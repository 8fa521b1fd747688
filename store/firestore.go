package store

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Firestore stores documents in Cloud Firestore.
type Firestore struct {
	client *firestore.Client
}

func NewFirestore(client *firestore.Client) *Firestore {
	return &Firestore{client: client}
}

type snapshotDocument struct {
	snap *firestore.DocumentSnapshot
}

func (d snapshotDocument) ID() string { return d.snap.Ref.ID }

func (d snapshotDocument) DataTo(v any) error {
	if err := d.snap.DataTo(v); err != nil {
		return fmt.Errorf("decode %s: %w", d.snap.Ref.ID, err)
	}
	return nil
}

func notFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

func (f *Firestore) Add(ctx context.Context, collection string, data any) (string, error) {
	ref, _, err := f.client.Collection(collection).Add(ctx, data)
	if err != nil {
		return "", fmt.Errorf("insert into %s: %w", collection, err)
	}
	return ref.ID, nil
}

func (f *Firestore) Set(ctx context.Context, collection, id string, data any) error {
	if _, err := f.client.Collection(collection).Doc(id).Set(ctx, data); err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, id, err)
	}
	return nil
}

func (f *Firestore) Create(ctx context.Context, collection, id string, data any) error {
	if _, err := f.client.Collection(collection).Doc(id).Create(ctx, data); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return fmt.Errorf("%s/%s: %w", collection, id, ErrAlreadyExists)
		}
		return fmt.Errorf("create %s/%s: %w", collection, id, err)
	}
	return nil
}

func (f *Firestore) Get(ctx context.Context, collection, id string) (Document, error) {
	snap, err := f.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
		}
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return snapshotDocument{snap: snap}, nil
}

func (f *Firestore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	updates := make([]firestore.Update, 0, len(fields))
	for k, v := range fields {
		updates = append(updates, firestore.Update{Path: k, Value: v})
	}
	if _, err := f.client.Collection(collection).Doc(id).Update(ctx, updates); err != nil {
		if notFound(err) {
			return fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
		}
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	return nil
}

func (f *Firestore) UpdateIf(ctx context.Context, collection, id string, cond Filter, fields map[string]any) error {
	ref := f.client.Collection(collection).Doc(id)
	updates := make([]firestore.Update, 0, len(fields))
	for k, v := range fields {
		updates = append(updates, firestore.Update{Path: k, Value: v})
	}
	return f.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if notFound(err) {
				return fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
			}
			return err
		}
		current, err := snap.DataAt(cond.Field)
		if err != nil || fmt.Sprint(current) != fmt.Sprint(cond.Value) {
			return fmt.Errorf("%s/%s %s: %w", collection, id, cond.Field, ErrConditionFailed)
		}
		return tx.Update(ref, updates)
	})
}

func (f *Firestore) Delete(ctx context.Context, collection, id string) error {
	if _, err := f.client.Collection(collection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (f *Firestore) query(q Query) firestore.Query {
	fq := f.client.Collection(q.Collection).Query
	for _, filter := range q.Filters {
		fq = fq.Where(filter.Field, "==", filter.Value)
	}
	if q.OrderBy != "" {
		dir := firestore.Asc
		if q.Descending {
			dir = firestore.Desc
		}
		fq = fq.OrderBy(q.OrderBy, dir)
	}
	if q.Limit > 0 {
		fq = fq.Limit(q.Limit)
	}
	return fq
}

func wrapSnapshots(snaps []*firestore.DocumentSnapshot) []Document {
	docs := make([]Document, len(snaps))
	for i, s := range snaps {
		docs[i] = snapshotDocument{snap: s}
	}
	return docs
}

func (f *Firestore) Find(ctx context.Context, q Query) ([]Document, error) {
	snaps, err := f.query(q).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("find in %s: %w", q.Collection, err)
	}
	return wrapSnapshots(snaps), nil
}

func (f *Firestore) Count(ctx context.Context, q Query) (int64, error) {
	q.Limit = 0
	docs, err := f.Find(ctx, q)
	if err != nil {
		return 0, err
	}
	return int64(len(docs)), nil
}

func (f *Firestore) AdjustInt(ctx context.Context, collection, id, field string, delta, floor int64) (int64, error) {
	ref := f.client.Collection(collection).Doc(id)
	var next int64
	err := f.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if notFound(err) {
				return fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
			}
			return err
		}
		var current int64
		if v, err := snap.DataAt(field); err == nil {
			switch n := v.(type) {
			case int64:
				current = n
			case float64:
				current = int64(n)
			default:
				return fmt.Errorf("%s/%s: field %q is not numeric", collection, id, field)
			}
		}
		next = current + delta
		if next < floor {
			return fmt.Errorf("%s/%s %s=%d%+d: %w", collection, id, field, current, delta, ErrConditionFailed)
		}
		return tx.Update(ref, []firestore.Update{{Path: field, Value: next}})
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}

func (f *Firestore) Watch(ctx context.Context, q Query) (Subscription, error) {
	wctx, cancel := context.WithCancel(ctx)
	sub := &cancelSub{feed: newFeed(), cancel: cancel}
	it := f.query(q).Snapshots(wctx)

	go func() {
		defer it.Stop()
		defer sub.Cancel()
		for {
			snap, err := it.Next()
			if err != nil {
				if wctx.Err() == nil && !errors.Is(err, iterator.Done) && status.Code(err) != codes.Canceled {
					sub.fail(fmt.Errorf("watch %s: %w", q.Collection, err))
				}
				return
			}
			snaps, err := snap.Documents.GetAll()
			if err != nil {
				sub.fail(fmt.Errorf("read %s: %w", q.Collection, err))
				return
			}
			sub.publish(Snapshot{Docs: wrapSnapshots(snaps)})
		}
	}()
	return sub, nil
}

func (f *Firestore) Close(context.Context) error {
	return f.client.Close()
}
