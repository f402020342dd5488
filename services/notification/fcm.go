package notification

import (
	"context"
	"encoding/json"
	"fmt"

	patientRepo "clinicdesk/database/repository/patient"
	"clinicdesk/models"
	"clinicdesk/utils"

	"firebase.google.com/go/v4/messaging"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// FCMDeliverer turns queued notification payloads into Firebase Cloud
// Messaging pushes. It runs inside the asynq worker, never inside a request.
type FCMDeliverer struct {
	Patients patientRepo.PatientRepository
}

// NewFCMDeliverer creates the delivery handler.
func NewFCMDeliverer(patients patientRepo.PatientRepository) *FCMDeliverer {
	return &FCMDeliverer{Patients: patients}
}

// HandleDeliverTask is the asynq handler for notification:deliver tasks.
func (d *FCMDeliverer) HandleDeliverTask(ctx context.Context, t *asynq.Task) error {
	var payload models.NotificationPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal notification payload: %w", err)
	}

	patient, err := d.Patients.GetByID(payload.PatientID)
	if err != nil {
		// A missing patient will not appear on retry; drop the task.
		utils.GetLogger().Warn("notification for unknown patient dropped",
			zap.String("patientId", payload.PatientID),
			zap.String("event", payload.Event))
		return nil
	}
	if patient.FCMToken == "" {
		return nil
	}

	if utils.FCMClient == nil {
		return fmt.Errorf("fcm client not initialized")
	}

	title, body := messageFor(payload)
	msg := &messaging.Message{
		Token: patient.FCMToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: map[string]string{
			"event":       payload.Event,
			"date":        payload.Date,
			"tokenNumber": payload.TokenNumber,
		},
	}
	if _, err := utils.FCMClient.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send fcm message: %w", err)
	}
	utils.GetLogger().Info("notification delivered",
		zap.String("event", payload.Event),
		zap.String("patientId", payload.PatientID))
	return nil
}

func messageFor(p models.NotificationPayload) (title, body string) {
	switch p.Event {
	case models.EventAppointmentBooked:
		return "Appointment confirmed",
			fmt.Sprintf("Your appointment with %s on %s at %s is confirmed. Token %s.", p.DoctorName, p.Date, p.Time, p.TokenNumber)
	case models.EventTokenCalled:
		return "It's your turn",
			fmt.Sprintf("Token %s, please proceed to %s's room.", p.TokenNumber, p.DoctorName)
	case models.EventPeopleAhead:
		return "Almost there",
			fmt.Sprintf("Token %s: %d patient(s) ahead of you.", p.TokenNumber, p.PeopleAhead)
	case models.EventAppointmentCancelled:
		return "Appointment cancelled",
			fmt.Sprintf("Your appointment with %s on %s has been cancelled.", p.DoctorName, p.Date)
	case models.EventAppointmentSkipped:
		return "Turn missed",
			fmt.Sprintf("Token %s was called but not present. Check in at the desk to rejoin the queue.", p.TokenNumber)
	case models.EventConsultationStarted:
		return "Consultations started",
			fmt.Sprintf("%s has started consultations for %s.", p.DoctorName, p.Date)
	default:
		return "Clinic update",
			fmt.Sprintf("Update for your appointment with %s on %s.", p.DoctorName, p.Date)
	}
}
