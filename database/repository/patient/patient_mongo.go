package patientRepo

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

// MongoPatientRepo implements PatientRepository using MongoDB.
type MongoPatientRepo struct {
	coll *mongo.Collection
}

// NewMongoPatientRepo creates a new instance of PatientRepository.
func NewMongoPatientRepo() PatientRepository {
	coll := database.DB().Collection("patients")
	repo := &MongoPatientRepo{coll: coll}
	if err := repo.ensureIndexes(); err != nil {
		utils.GetLogger().Sugar().Warnf("patient repo: failed to ensure indexes: %v", err)
	}
	return repo
}

func (r *MongoPatientRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "clinic_id", Value: 1}, {Key: "phone", Value: 1}}},
	}
	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *MongoPatientRepo) Upsert(patient *models.Patient) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Identity match is (clinic, phone); phone is what the front desk has.
	filter := bson.M{"clinic_id": patient.ClinicID, "phone": patient.Phone}
	var existing models.Patient
	err := r.coll.FindOne(ctx, filter).Decode(&existing)
	if err == nil {
		set := bson.M{"name": patient.Name, "updated_at": time.Now()}
		if patient.FCMToken != "" {
			set["fcm_token"] = patient.FCMToken
		}
		if patient.Gender != "" {
			set["gender"] = patient.Gender
		}
		if patient.Age > 0 {
			set["age"] = patient.Age
		}
		if _, err := r.coll.UpdateOne(ctx, bson.M{"id": existing.ID}, bson.M{"$set": set}); err != nil {
			return "", fmt.Errorf("failed to update patient %s: %w", existing.ID, err)
		}
		return existing.ID, nil
	}
	if err != mongo.ErrNoDocuments {
		return "", fmt.Errorf("failed to look up patient: %w", err)
	}

	if patient.ID == "" {
		patient.ID = uuid.New().String()
	}
	now := time.Now()
	patient.CreatedAt = now
	patient.UpdatedAt = now
	if _, err := r.coll.InsertOne(ctx, patient); err != nil {
		return "", fmt.Errorf("failed to create patient: %w", err)
	}
	return patient.ID, nil
}

func (r *MongoPatientRepo) GetByID(id string) (*models.Patient, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var patient models.Patient
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&patient); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("patient with id %s not found: %w", id, err)
		}
		return nil, fmt.Errorf("failed to fetch patient %s: %w", id, err)
	}
	return &patient, nil
}

func (r *MongoPatientRepo) AppendVisit(patientID string, visit models.VisitRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	update := bson.M{
		"$push": bson.M{"visits": visit},
		"$set":  bson.M{"updated_at": time.Now()},
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": patientID}, update)
	if err != nil {
		return fmt.Errorf("failed to append visit for patient %s: %w", patientID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("patient with id %s not found", patientID)
	}
	return nil
}
