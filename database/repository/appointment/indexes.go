package apptRepo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ensureIndexes creates indexes for frequently used fields in queries. The
// partial unique index on (doctor, date, slot) over active statuses is a
// backstop behind the reservation protocol: even a protocol bug cannot leave
// two active appointments on one slot.
func (r *MongoAppointmentRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	activeSlotOpts := options.Index().
		SetUnique(true).
		SetPartialFilterExpression(bson.M{
			"status": bson.M{"$in": []string{"Pending", "Confirmed"}},
		})

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{
			{Key: "clinic_id", Value: 1},
			{Key: "doctor_id", Value: 1},
			{Key: "date", Value: 1},
			{Key: "status", Value: 1},
		}},
		{Keys: bson.D{
			{Key: "clinic_id", Value: 1},
			{Key: "doctor_id", Value: 1},
			{Key: "date", Value: 1},
			{Key: "session_index", Value: 1},
		}},
		{Keys: bson.D{{Key: "patient_id", Value: 1}}},
		{
			Keys: bson.D{
				{Key: "doctor_id", Value: 1},
				{Key: "date", Value: 1},
				{Key: "slot_index", Value: 1},
			},
			Options: activeSlotOpts,
		},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
