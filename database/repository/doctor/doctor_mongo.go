package doctorRepo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"clinicdesk/database"
	"clinicdesk/models"
	"clinicdesk/utils"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoDoctorRepo implements DoctorRepository using MongoDB with a Redis
// read-through cache for profile lookups.
type MongoDoctorRepo struct {
	coll  *mongo.Collection
	cache *redis.Client
}

// NewMongoDoctorRepo creates a new instance of DoctorRepository using MongoDB.
func NewMongoDoctorRepo() DoctorRepository {
	coll := database.DB().Collection("doctors")
	repo := &MongoDoctorRepo{coll: coll, cache: utils.GetCacheClient()}
	if err := repo.ensureIndexes(); err != nil {
		utils.GetLogger().Sugar().Warnf("doctor repo: failed to ensure indexes: %v", err)
	}
	return repo
}

func (r *MongoDoctorRepo) Create(doctor *models.Doctor) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if doctor.ID == "" {
		doctor.ID = uuid.New().String()
	}
	now := time.Now()
	doctor.CreatedAt = now
	doctor.UpdatedAt = now
	if _, err := r.coll.InsertOne(ctx, doctor); err != nil {
		return fmt.Errorf("failed to create doctor: %w", err)
	}
	return nil
}

func (r *MongoDoctorRepo) GetByID(id string) (*models.Doctor, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cacheKey := utils.DoctorCachePrefix + id
	if cached, err := r.cache.Get(ctx, cacheKey).Result(); err == nil {
		var doctor models.Doctor
		if err := json.Unmarshal([]byte(cached), &doctor); err == nil {
			return &doctor, nil
		}
	}

	var doctor models.Doctor
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&doctor); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("doctor with id %s not found: %w", id, err)
		}
		return nil, fmt.Errorf("failed to fetch doctor with id %s: %w", id, err)
	}

	if data, err := json.Marshal(doctor); err == nil {
		r.cache.Set(ctx, cacheKey, data, utils.DoctorCacheTTL)
	}
	return &doctor, nil
}

func (r *MongoDoctorRepo) GetAll(clinicID string) ([]models.Doctor, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	filter := bson.M{}
	if clinicID != "" {
		filter["clinic_id"] = clinicID
	}
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve doctors: %w", err)
	}
	defer cursor.Close(ctx)
	var doctors []models.Doctor
	if err := cursor.All(ctx, &doctors); err != nil {
		return nil, fmt.Errorf("failed to decode doctors: %w", err)
	}
	return doctors, nil
}

func (r *MongoDoctorRepo) Update(doctor *models.Doctor) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	doctor.UpdatedAt = time.Now()
	res, err := r.coll.ReplaceOne(ctx, bson.M{"id": doctor.ID}, doctor)
	if err != nil {
		return fmt.Errorf("failed to update doctor %s: %w", doctor.ID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("doctor with id %s not found", doctor.ID)
	}
	r.invalidate(ctx, doctor.ID)
	return nil
}

func (r *MongoDoctorRepo) Delete(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete doctor %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("doctor with id %s not found", id)
	}
	r.invalidate(ctx, id)
	return nil
}

func (r *MongoDoctorRepo) SetAvailability(id string, windows []models.AvailabilityWindow) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	update := bson.M{"$set": bson.M{"availability": windows, "updated_at": time.Now()}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to set availability for doctor %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("doctor with id %s not found", id)
	}
	r.invalidate(ctx, id)
	return nil
}

func (r *MongoDoctorRepo) AddLeave(id string, leave models.LeaveException) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	// Replace any existing leave for the same date, then append.
	if _, err := r.coll.UpdateOne(ctx, bson.M{"id": id},
		bson.M{"$pull": bson.M{"leaves": bson.M{"date": leave.Date}}}); err != nil {
		return fmt.Errorf("failed to clear existing leave for doctor %s: %w", id, err)
	}
	update := bson.M{
		"$push": bson.M{"leaves": leave},
		"$set":  bson.M{"updated_at": time.Now()},
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to add leave for doctor %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("doctor with id %s not found", id)
	}
	r.invalidate(ctx, id)
	return nil
}

func (r *MongoDoctorRepo) RemoveLeave(id string, date string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	update := bson.M{
		"$pull": bson.M{"leaves": bson.M{"date": date}},
		"$set":  bson.M{"updated_at": time.Now()},
	}
	if _, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update); err != nil {
		return fmt.Errorf("failed to remove leave for doctor %s: %w", id, err)
	}
	r.invalidate(ctx, id)
	return nil
}

func (r *MongoDoctorRepo) invalidate(ctx context.Context, id string) {
	r.cache.Del(ctx, utils.DoctorCachePrefix+id)
}
