package poolRepo

import (
	"context"
	"fmt"
	"time"

	"clinicdesk/database"
	"clinicdesk/models"
	"clinicdesk/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoWalkInPoolRepo implements WalkInPoolRepository using MongoDB.
type MongoWalkInPoolRepo struct {
	coll *mongo.Collection
}

// NewMongoWalkInPoolRepo creates a new instance of WalkInPoolRepository.
func NewMongoWalkInPoolRepo() WalkInPoolRepository {
	coll := database.DB().Collection("walkin_pool")
	repo := &MongoWalkInPoolRepo{coll: coll}
	if err := repo.ensureIndexes(); err != nil {
		utils.GetLogger().Sugar().Warnf("walk-in pool repo: failed to ensure indexes: %v", err)
	}
	return repo
}

func (r *MongoWalkInPoolRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{
			{Key: "clinic_id", Value: 1},
			{Key: "doctor_id", Value: 1},
			{Key: "date", Value: 1},
			{Key: "session_index", Value: 1},
			{Key: "registered_at", Value: 1},
		}},
	}
	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *MongoWalkInPoolRepo) Create(entry *models.WalkInPoolEntry) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.RegisteredAt.IsZero() {
		entry.RegisteredAt = time.Now()
	}
	entry.Status = models.PoolStatusWaiting
	if _, err := r.coll.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to create walk-in pool entry: %w", err)
	}
	return nil
}

func (r *MongoWalkInPoolRepo) ListWaiting(clinicID, doctorID, date string, sessionIndex int) ([]models.WalkInPoolEntry, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	filter := bson.M{
		"clinic_id":     clinicID,
		"doctor_id":     doctorID,
		"date":          date,
		"session_index": sessionIndex,
		"status":        models.PoolStatusWaiting,
	}
	opts := options.Find().SetSort(bson.D{{Key: "registered_at", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query walk-in pool: %w", err)
	}
	defer cursor.Close(ctx)
	var entries []models.WalkInPoolEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode walk-in pool entries: %w", err)
	}
	return entries, nil
}

func (r *MongoWalkInPoolRepo) CountWaiting(clinicID, doctorID, date string, sessionIndex int) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	filter := bson.M{
		"clinic_id":     clinicID,
		"doctor_id":     doctorID,
		"date":          date,
		"session_index": sessionIndex,
		"status":        models.PoolStatusWaiting,
	}
	n, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count walk-in pool entries: %w", err)
	}
	return int(n), nil
}

func (r *MongoWalkInPoolRepo) Delete(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := r.coll.DeleteOne(ctx, bson.M{"id": id}); err != nil {
		return fmt.Errorf("failed to delete walk-in pool entry %s: %w", id, err)
	}
	return nil
}
