package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoDoc struct {
	Key       string     `bson:"_id"`
	Value     string     `bson:"value"`
	Version   int64      `bson:"version"`
	ExpiresAt *time.Time `bson:"expiresAt,omitempty"`
}

// MongoStore keeps one document per key in a single collection.
type MongoStore struct {
	client *mongo.Client
	col    *mongo.Collection
}

// NewMongoStore connects to uri and ensures a TTL index on expiresAt.
func NewMongoStore(ctx context.Context, uri, db, collection string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	clientOpts := options.Client().ApplyURI(uri).
		SetConnectTimeout(5 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(20)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("kv/mongo: connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("kv/mongo: ping: %w", err)
	}

	col := client.Database(db).Collection(collection)
	_, _ = col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expiresAt", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})

	return &MongoStore{client: client, col: col}, nil
}

func (s *MongoStore) Get(ctx context.Context, key string) ([]byte, int64, error) {
	var doc mongoDoc
	err := s.col.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, 0, ErrNotFound
	}
	if err != nil {
		return nil, 0, fmt.Errorf("kv/mongo: get %s: %w", key, err)
	}
	// The TTL monitor runs once a minute; hide documents it has not reaped.
	if doc.ExpiresAt != nil && time.Now().After(*doc.ExpiresAt) {
		return nil, 0, ErrNotFound
	}
	return []byte(doc.Value), doc.Version, nil
}

func (s *MongoStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	set := bson.M{"value": string(value)}
	update := bson.M{"$set": set, "$inc": bson.M{"version": int64(1)}}
	if exp := expiry(ttl); exp != nil {
		set["expiresAt"] = *exp
	} else {
		update["$unset"] = bson.M{"expiresAt": ""}
	}

	_, err := s.col.UpdateOne(ctx, bson.M{"_id": key}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("kv/mongo: set %s: %w", key, err)
	}
	return nil
}

func (s *MongoStore) CompareAndSet(ctx context.Context, key string, value []byte, expected int64) (int64, error) {
	if expected == 0 {
		_, _ = s.col.DeleteOne(ctx, bson.M{"_id": key, "expiresAt": bson.M{"$lt": time.Now()}})

		_, err := s.col.InsertOne(ctx, mongoDoc{Key: key, Value: string(value), Version: 1})
		if mongo.IsDuplicateKeyError(err) {
			_, ver, _ := s.Get(ctx, key)
			return ver, ErrVersionMismatch
		}
		if err != nil {
			return 0, fmt.Errorf("kv/mongo: cas %s: %w", key, err)
		}
		return 1, nil
	}

	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": key, "version": expected},
		bson.M{"$set": bson.M{"value": string(value), "version": expected + 1}, "$unset": bson.M{"expiresAt": ""}},
	)
	if err != nil {
		return 0, fmt.Errorf("kv/mongo: cas %s: %w", key, err)
	}
	if res.MatchedCount == 0 {
		_, ver, _ := s.Get(ctx, key)
		return ver, ErrVersionMismatch
	}
	return expected + 1, nil
}

func (s *MongoStore) Ping(ctx context.Context) error { return s.client.Ping(ctx, nil) }

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) Driver() string { return "mongo" }
