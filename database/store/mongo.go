package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore implements TransactionalStore on a MongoDB database. Documents
// are keyed by their _id field; ConditionalCreate maps to an InsertOne whose
// duplicate-key failure becomes ErrAlreadyExists.
type MongoStore struct {
	db *mongo.Database
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

func (s *MongoStore) Get(ctx context.Context, collection, id string, out interface{}) error {
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(out)
	if err == mongo.ErrNoDocuments {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("store get %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *MongoStore) ConditionalCreate(ctx context.Context, collection, id string, doc interface{}) error {
	_, err := s.db.Collection(collection).InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("store conditional create %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *MongoStore) Update(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	res, err := s.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("store update %s/%s: %w", collection, id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("store delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *MongoStore) Increment(ctx context.Context, collection, id, field string, delta int) (int, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)
	var doc bson.M
	err := s.db.Collection(collection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{field: delta}},
		opts,
	).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("store increment %s/%s: %w", collection, id, err)
	}
	switch v := doc[field].(type) {
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	default:
		return 0, fmt.Errorf("store increment %s/%s: unexpected counter type %T", collection, id, doc[field])
	}
}

// RunAtomic executes fn as one allocation step. No server-side transaction
// is opened: slot claims go through ConditionalCreate, which is atomic per
// document, and a multi-document transaction would abort on the first
// duplicate-key insert instead of letting fn move to the next candidate.
// Callers compensate (delete the claim) when a later write in fn fails.
func (s *MongoStore) RunAtomic(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
