package store

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo stores documents in MongoDB with string _id keys.
type Mongo struct {
	db           *mongo.Database
	pollInterval time.Duration
	logger       *log.Logger
}

// NewMongo wraps db. pollInterval is used for live queries when the server
// has no change streams (a standalone mongod).
func NewMongo(db *mongo.Database, pollInterval time.Duration, logger *log.Logger) *Mongo {
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Mongo{db: db, pollInterval: pollInterval, logger: logger}
}

// Ping checks the connection, used by the health endpoint.
func (m *Mongo) Ping(ctx context.Context) error {
	return m.db.Client().Ping(ctx, nil)
}

func withID(id string, data any) (bson.D, error) {
	raw, err := encode(data)
	if err != nil {
		return nil, err
	}
	var body bson.D
	if err := bson.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	doc := bson.D{{Key: "_id", Value: id}}
	for _, e := range body {
		if e.Key != "_id" {
			doc = append(doc, e)
		}
	}
	return doc, nil
}

func (m *Mongo) Add(ctx context.Context, collection string, data any) (string, error) {
	id := uuid.NewString()
	doc, err := withID(id, data)
	if err != nil {
		return "", err
	}
	if _, err := m.db.Collection(collection).InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("insert into %s: %w", collection, err)
	}
	return id, nil
}

func (m *Mongo) Set(ctx context.Context, collection, id string, data any) error {
	doc, err := withID(id, data)
	if err != nil {
		return err
	}
	_, err = m.db.Collection(collection).ReplaceOne(ctx, bson.M{"_id": id}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, id, err)
	}
	return nil
}

func (m *Mongo) Create(ctx context.Context, collection, id string, data any) error {
	doc, err := withID(id, data)
	if err != nil {
		return err
	}
	if _, err := m.db.Collection(collection).InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%s/%s: %w", collection, id, ErrAlreadyExists)
		}
		return fmt.Errorf("create %s/%s: %w", collection, id, err)
	}
	return nil
}

func (m *Mongo) Get(ctx context.Context, collection, id string) (Document, error) {
	raw, err := m.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).DecodeBytes()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
		}
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return rawDocument{id: id, raw: raw}, nil
}

func (m *Mongo) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	set := bson.M{}
	for k, v := range fields {
		set[k] = v
	}
	result, err := m.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	return nil
}

func (m *Mongo) UpdateIf(ctx context.Context, collection, id string, cond Filter, fields map[string]any) error {
	set := bson.M{}
	for k, v := range fields {
		set[k] = v
	}
	filter := bson.M{"_id": id, cond.Field: cond.Value}
	result, err := m.db.Collection(collection).UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	if result.MatchedCount == 0 {
		exists, existsErr := Exists(ctx, m, collection, id)
		if existsErr != nil {
			return existsErr
		}
		if !exists {
			return fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
		}
		return fmt.Errorf("%s/%s %s: %w", collection, id, cond.Field, ErrConditionFailed)
	}
	return nil
}

func (m *Mongo) Delete(ctx context.Context, collection, id string) error {
	if _, err := m.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func mongoFilter(q Query) bson.D {
	filter := bson.D{}
	for _, f := range q.Filters {
		filter = append(filter, bson.E{Key: f.Field, Value: f.Value})
	}
	return filter
}

func (m *Mongo) Find(ctx context.Context, q Query) ([]Document, error) {
	opts := options.Find()
	if q.OrderBy != "" {
		dir := 1
		if q.Descending {
			dir = -1
		}
		opts.SetSort(bson.D{{Key: q.OrderBy, Value: dir}, {Key: "_id", Value: 1}})
	} else {
		opts.SetSort(bson.D{{Key: "_id", Value: 1}})
	}
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}

	cursor, err := m.db.Collection(q.Collection).Find(ctx, mongoFilter(q), opts)
	if err != nil {
		return nil, fmt.Errorf("find in %s: %w", q.Collection, err)
	}
	defer cursor.Close(ctx)

	var docs []Document
	for cursor.Next(ctx) {
		raw := make(bson.Raw, len(cursor.Current))
		copy(raw, cursor.Current)
		id, ok := raw.Lookup("_id").StringValueOK()
		if !ok {
			continue
		}
		docs = append(docs, rawDocument{id: id, raw: raw})
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", q.Collection, err)
	}
	return docs, nil
}

func (m *Mongo) Count(ctx context.Context, q Query) (int64, error) {
	n, err := m.db.Collection(q.Collection).CountDocuments(ctx, mongoFilter(q))
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", q.Collection, err)
	}
	return n, nil
}

// AdjustInt is a single $inc guarded by a $gte filter, so concurrent
// adjustments can never push the field under floor.
func (m *Mongo) AdjustInt(ctx context.Context, collection, id, field string, delta, floor int64) (int64, error) {
	filter := bson.M{"_id": id, field: bson.M{"$gte": floor - delta}}
	update := bson.M{"$inc": bson.M{field: delta}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	raw, err := m.db.Collection(collection).FindOneAndUpdate(ctx, filter, update, opts).DecodeBytes()
	if errors.Is(err, mongo.ErrNoDocuments) {
		exists, existsErr := Exists(ctx, m, collection, id)
		if existsErr != nil {
			return 0, existsErr
		}
		if !exists {
			return 0, fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
		}
		return 0, fmt.Errorf("%s/%s %s%+d: %w", collection, id, field, delta, ErrConditionFailed)
	}
	if err != nil {
		return 0, fmt.Errorf("adjust %s/%s: %w", collection, id, err)
	}
	n, ok := numeric(raw.Lookup(field))
	if !ok {
		return 0, fmt.Errorf("%s/%s: field %q is not numeric", collection, id, field)
	}
	return int64(n), nil
}

type cancelSub struct {
	*feed
	cancel context.CancelFunc
}

func (s *cancelSub) Cancel() {
	s.cancel()
	s.feed.Cancel()
}

// Watch follows a change stream on the collection and re-runs the query on
// every event. Servers without change streams are polled instead.
func (m *Mongo) Watch(ctx context.Context, q Query) (Subscription, error) {
	wctx, cancel := context.WithCancel(ctx)
	sub := &cancelSub{feed: newFeed(), cancel: cancel}

	stream, streamErr := m.db.Collection(q.Collection).Watch(wctx, mongo.Pipeline{})
	docs, err := m.Find(wctx, q)
	if err != nil {
		if stream != nil {
			stream.Close(context.Background())
		}
		cancel()
		return nil, err
	}
	sub.publish(Snapshot{Docs: docs})

	if streamErr != nil {
		m.logger.Printf("change stream unavailable for %s, polling every %s: %v", q.Collection, m.pollInterval, streamErr)
		go m.poll(wctx, q, sub, fingerprint(docs))
	} else {
		go m.follow(wctx, q, sub, stream)
	}
	return sub, nil
}

func (m *Mongo) follow(ctx context.Context, q Query, sub *cancelSub, stream *mongo.ChangeStream) {
	defer stream.Close(context.Background())
	for stream.Next(ctx) {
		docs, err := m.Find(ctx, q)
		if err != nil {
			if ctx.Err() == nil {
				sub.fail(err)
			}
			break
		}
		sub.publish(Snapshot{Docs: docs})
	}
	if err := stream.Err(); err != nil && ctx.Err() == nil {
		sub.fail(fmt.Errorf("watch %s: %w", q.Collection, err))
	}
	sub.Cancel()
}

func (m *Mongo) poll(ctx context.Context, q Query, sub *cancelSub, last uint64) {
	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			sub.Cancel()
			return
		case <-ticker.C:
		}
		docs, err := m.Find(ctx, q)
		if err != nil {
			if ctx.Err() == nil {
				sub.fail(err)
			}
			sub.Cancel()
			return
		}
		if fp := fingerprint(docs); fp != last {
			last = fp
			sub.publish(Snapshot{Docs: docs})
		}
	}
}

func fingerprint(docs []Document) uint64 {
	h := fnv.New64a()
	for _, d := range docs {
		h.Write([]byte(d.ID()))
		if rd, ok := d.(rawDocument); ok {
			h.Write(rd.raw)
		}
	}
	return h.Sum64()
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.db.Client().Disconnect(ctx)
}
