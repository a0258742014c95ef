// Package audit records status transitions of orders, products and sellers.
package audit

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	EntityOrder   = "order"
	EntityProduct = "product"
	EntitySeller  = "seller"
)

type Entry struct {
	Entity    string    `bson:"entity" json:"entity"`
	EntityID  string    `bson:"entity_id" json:"entity_id"`
	From      string    `bson:"from" json:"from"`
	To        string    `bson:"to" json:"to"`
	ActorID   string    `bson:"actor_id,omitempty" json:"actor_id,omitempty"`
	ActorRole string    `bson:"actor_role,omitempty" json:"actor_role,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

type Recorder interface {
	Record(ctx context.Context, entry Entry) error
	// History returns the newest entries for one entity first.
	History(ctx context.Context, entity, entityID string, limit int64) ([]Entry, error)
}

type Nop struct{}

func (Nop) Record(context.Context, Entry) error { return nil }

func (Nop) History(context.Context, string, string, int64) ([]Entry, error) { return nil, nil }

// Memory keeps entries in process.
type Memory struct {
	mu      sync.Mutex
	entries []Entry
}

func (m *Memory) Record(_ context.Context, entry Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *Memory) History(_ context.Context, entity, entityID string, limit int64) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var entries []Entry
	for i := len(m.entries) - 1; i >= 0; i-- {
		e := m.entries[i]
		if e.Entity != entity || e.EntityID != entityID {
			continue
		}
		entries = append(entries, e)
		if limit > 0 && int64(len(entries)) == limit {
			break
		}
	}
	return entries, nil
}

// MongoRecorder appends entries to one MongoDB collection.
type MongoRecorder struct {
	client     *mongo.Client
	collection *mongo.Collection
}

func NewMongoRecorder(uri, database, collection string) (*MongoRecorder, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	return &MongoRecorder{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}, nil
}

func (m *MongoRecorder) Record(ctx context.Context, entry Entry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	_, err := m.collection.InsertOne(ctx, entry)
	return err
}

func (m *MongoRecorder) History(ctx context.Context, entity, entityID string, limit int64) ([]Entry, error) {
	filter := bson.M{"entity": entity, "entity_id": entityID}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)

	cursor, err := m.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []Entry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (m *MongoRecorder) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
