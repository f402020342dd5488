package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"clinicdesk/config"
	"clinicdesk/database"
	"clinicdesk/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

// Seeds a demo clinic with a handful of doctors so the booking surface has
// something to schedule against.
func main() {
	config.LoadConfig()
	database.InitDB()
	db := database.DB()
	doctorColl := db.Collection("doctors")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if _, err := doctorColl.DeleteMany(ctx, bson.M{}); err != nil {
		log.Fatalf("Failed to clear doctors collection: %v", err)
	}

	clinicID := "clinic-demo"
	weekdaySessions := []models.SessionWindow{
		{From: "09:00", To: "12:00"},
		{From: "14:00", To: "17:00"},
	}
	saturdaySessions := []models.SessionWindow{
		{From: "09:00", To: "13:00"},
	}

	names := []struct {
		name      string
		specialty string
		minutes   int
	}{
		{"Asha Menon", "General Medicine", 15},
		{"Vikram Rao", "Pediatrics", 10},
		{"Meera Iyer", "Dermatology", 20},
	}

	now := time.Now()
	for _, n := range names {
		availability := make([]models.AvailabilityWindow, 0, 6)
		for wd := time.Monday; wd <= time.Friday; wd++ {
			availability = append(availability, models.AvailabilityWindow{
				Weekday:  wd,
				Sessions: weekdaySessions,
			})
		}
		availability = append(availability, models.AvailabilityWindow{
			Weekday:  time.Saturday,
			Sessions: saturdaySessions,
		})

		doctor := models.Doctor{
			ID:                uuid.New().String(),
			ClinicID:          clinicID,
			Name:              n.name,
			Specialty:         n.specialty,
			AvgConsultMinutes: n.minutes,
			Availability:      availability,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if _, err := doctorColl.InsertOne(ctx, doctor); err != nil {
			log.Fatalf("Failed to insert doctor %s: %v", n.name, err)
		}
		fmt.Printf("Seeded doctor %s (%s) id=%s\n", n.name, n.specialty, doctor.ID)
	}

	fmt.Printf("Done. Seeded %d doctors for %s.\n", len(names), clinicID)
}
