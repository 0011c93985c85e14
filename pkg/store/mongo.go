package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	defaultMongoDB         = "dialogtree"
	mongoCollection        = "snapshots"
	mongoDisconnectTimeout = 5 * time.Second
)

// mongoDoc is the stored document. Data holds the serialized JSON as a
// string so the snapshot stays readable in the mongo shell.
type mongoDoc struct {
	ID        string    `bson:"_id"`
	Data      string    `bson:"data"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// MongoStore keeps the snapshot in one document of a MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	key    string
}

// NewMongoStore connects to uri, pings the primary and uses collection
// "snapshots" of database db.
func NewMongoStore(ctx context.Context, uri, db string) (*MongoStore, error) {
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	if db == "" {
		db = defaultMongoDB
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(db).Collection(mongoCollection),
		key:    Key,
	}, nil
}

// Load fetches the snapshot document.
func (s *MongoStore) Load(ctx context.Context) ([]byte, error) {
	var doc mongoDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": s.key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mongo find: %w", err)
	}
	return []byte(doc.Data), nil
}

// Save upserts the snapshot document.
func (s *MongoStore) Save(ctx context.Context, data []byte) error {
	doc := mongoDoc{ID: s.key, Data: string(data), UpdatedAt: time.Now().UTC()}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": s.key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongo replace: %w", err)
	}
	return nil
}

// Clear deletes the snapshot document.
func (s *MongoStore) Clear(ctx context.Context) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": s.key}); err != nil {
		return fmt.Errorf("mongo delete: %w", err)
	}
	return nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), mongoDisconnectTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
