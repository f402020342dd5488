package apptRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clinicdesk/database"
	"clinicdesk/database/store"
	"clinicdesk/models"
	"clinicdesk/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	apptColl        = "appointments"
	reservationColl = "reservations"
	counterColl     = "token_counters"
	consultColl     = "consult_counters"
)

// ErrStatusConflict is returned by UpdateStatus when the appointment is not
// in the expected from status.
var ErrStatusConflict = errors.New("appointment not in expected status")

// MongoAppointmentRepo implements AppointmentRepository using MongoDB. The
// allocation records go through the TransactionalStore so reservation
// creation keeps its conditional-create semantics.
type MongoAppointmentRepo struct {
	coll  *mongo.Collection
	store store.TransactionalStore
}

// NewMongoAppointmentRepo creates a new instance of AppointmentRepository.
func NewMongoAppointmentRepo(ts store.TransactionalStore) AppointmentRepository {
	coll := database.DB().Collection(apptColl)
	repo := &MongoAppointmentRepo{coll: coll, store: ts}
	if err := repo.ensureIndexes(); err != nil {
		utils.GetLogger().Sugar().Warnf("appointment repo: failed to ensure indexes: %v", err)
	}
	return repo
}

func (r *MongoAppointmentRepo) Create(ctx context.Context, appt *models.Appointment) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if appt.ID == "" {
		appt.ID = uuid.New().String()
	}
	now := time.Now()
	appt.CreatedAt = now
	appt.UpdatedAt = now
	if _, err := r.coll.InsertOne(ctx, appt); err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *MongoAppointmentRepo) GetByID(id string) (*models.Appointment, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var appt models.Appointment
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&appt); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("appointment with id %s not found: %w", id, err)
		}
		return nil, fmt.Errorf("failed to fetch appointment %s: %w", id, err)
	}
	return &appt, nil
}

func (r *MongoAppointmentRepo) ActiveByDay(clinicID, doctorID, date string) ([]models.Appointment, error) {
	filter := bson.M{
		"clinic_id": clinicID,
		"doctor_id": doctorID,
		"date":      date,
		"status":    bson.M{"$in": []models.AppointmentStatus{models.StatusPending, models.StatusConfirmed}},
	}
	return r.find(filter)
}

func (r *MongoAppointmentRepo) ByDay(clinicID, doctorID, date string) ([]models.Appointment, error) {
	filter := bson.M{
		"clinic_id": clinicID,
		"doctor_id": doctorID,
		"date":      date,
	}
	return r.find(filter)
}

func (r *MongoAppointmentRepo) BySession(clinicID, doctorID, date string, sessionIndex int) ([]models.Appointment, error) {
	filter := bson.M{
		"clinic_id":     clinicID,
		"doctor_id":     doctorID,
		"date":          date,
		"session_index": sessionIndex,
	}
	return r.find(filter)
}

func (r *MongoAppointmentRepo) find(filter bson.M) ([]models.Appointment, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	opts := options.Find().SetSort(bson.D{{Key: "slot_index", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query appointments: %w", err)
	}
	defer cursor.Close(ctx)
	var appts []models.Appointment
	if err := cursor.All(ctx, &appts); err != nil {
		return nil, fmt.Errorf("failed to decode appointments: %w", err)
	}
	return appts, nil
}

func (r *MongoAppointmentRepo) UpdateStatus(id string, from, to models.AppointmentStatus) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	filter := bson.M{"id": id, "status": from}
	update := bson.M{"$set": bson.M{"status": to, "updated_at": time.Now()}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update status of appointment %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("appointment %s: %w", id, ErrStatusConflict)
	}
	return nil
}

func (r *MongoAppointmentRepo) UpdatePlacement(id string, slotIndex, sessionIndex int, t time.Time, tokenNumber string, numericToken int, status models.AppointmentStatus) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	update := bson.M{"$set": bson.M{
		"slot_index":    slotIndex,
		"session_index": sessionIndex,
		"time":          t,
		"token_number":  tokenNumber,
		"numeric_token": numericToken,
		"status":        status,
		"updated_at":    time.Now(),
	}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update placement of appointment %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("appointment with id %s not found", id)
	}
	return nil
}

func (r *MongoAppointmentRepo) Delete(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete appointment %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("appointment with id %s not found", id)
	}
	return nil
}

func (r *MongoAppointmentRepo) CreateReservation(ctx context.Context, res *models.Reservation) error {
	res.CreatedAt = time.Now()
	return r.store.ConditionalCreate(ctx, reservationColl, res.ID, res)
}

func (r *MongoAppointmentRepo) DeleteReservation(ctx context.Context, id string) error {
	return r.store.Delete(ctx, reservationColl, id)
}

func (r *MongoAppointmentRepo) NextTokenCount(ctx context.Context, counterID string) (int, error) {
	return r.store.Increment(ctx, counterColl, counterID, "count", 1)
}

func consultCounterID(clinicID, doctorID, date string, sessionIndex int) string {
	return fmt.Sprintf("%s_%s_%s_%d", clinicID, doctorID, date, sessionIndex)
}

func (r *MongoAppointmentRepo) IncrementConsultationCount(clinicID, doctorID, date string, sessionIndex int) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.store.Increment(ctx, consultColl, consultCounterID(clinicID, doctorID, date, sessionIndex), "count", 1)
}

func (r *MongoAppointmentRepo) ConsultationCount(clinicID, doctorID, date string, sessionIndex int) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var counter models.TokenCounter
	err := r.store.Get(ctx, consultColl, consultCounterID(clinicID, doctorID, date, sessionIndex), &counter)
	if errors.Is(err, store.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return counter.Count, nil
}
