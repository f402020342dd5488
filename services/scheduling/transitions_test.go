package scheduling

import (
	"context"
	"testing"

	"clinicdesk/models"
)

func TestConfirmArrival(t *testing.T) {
	doctor := mondayDoctor()
	svc, appts, _, _ := newTestService(doctor, mondayAt(9, 0))
	grid := testGrid(t)

	seeded := seedAppointment(t, appts, doctor, grid[2], models.BookedViaAdvance, models.StatusPending)
	if err := svc.ConfirmArrival(context.Background(), seeded.ID); err != nil {
		t.Fatalf("ConfirmArrival: %v", err)
	}

	got, _ := appts.GetByID(seeded.ID)
	if got.Status != models.StatusConfirmed {
		t.Errorf("status = %s, want %s", got.Status, models.StatusConfirmed)
	}
}

func TestConfirmArrivalRequiresPending(t *testing.T) {
	doctor := mondayDoctor()
	svc, appts, _, _ := newTestService(doctor, mondayAt(9, 0))
	grid := testGrid(t)

	seeded := seedAppointment(t, appts, doctor, grid[2], models.BookedViaAdvance, models.StatusCompleted)
	if err := svc.ConfirmArrival(context.Background(), seeded.ID); err == nil {
		t.Fatal("expected an error confirming a completed appointment")
	}
}

func TestCompleteIncrementsConsultationCount(t *testing.T) {
	doctor := mondayDoctor()
	svc, appts, _, _ := newTestService(doctor, mondayAt(9, 20))
	grid := testGrid(t)

	first := seedAppointment(t, appts, doctor, grid[0], models.BookedViaAdvance, models.StatusConfirmed)
	seedAppointment(t, appts, doctor, grid[1], models.BookedViaAdvance, models.StatusConfirmed)

	if err := svc.Complete(context.Background(), first.ID); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	got, _ := appts.GetByID(first.ID)
	if got.Status != models.StatusCompleted {
		t.Errorf("status = %s, want %s", got.Status, models.StatusCompleted)
	}
	count, err := appts.ConsultationCount(doctor.ClinicID, doctor.ID, mondayDate, 0)
	if err != nil {
		t.Fatalf("ConsultationCount: %v", err)
	}
	if count != 1 {
		t.Errorf("consultation count = %d, want 1", count)
	}
}

func TestSkipMovesToSkippedQueue(t *testing.T) {
	doctor := mondayDoctor()
	svc, appts, _, _ := newTestService(doctor, mondayAt(9, 20))
	grid := testGrid(t)

	seeded := seedAppointment(t, appts, doctor, grid[0], models.BookedViaAdvance, models.StatusConfirmed)
	if err := svc.Skip(context.Background(), seeded.ID); err != nil {
		t.Fatalf("Skip: %v", err)
	}

	state, err := svc.QueueState(context.Background(), doctor.ID, mondayDate, 0)
	if err != nil {
		t.Fatalf("QueueState: %v", err)
	}
	if len(state.SkippedQueue) != 1 || state.SkippedQueue[0].ID != seeded.ID {
		t.Errorf("skipped queue = %v, want the skipped appointment", state.SkippedQueue)
	}
	if len(state.ArrivedQueue) != 0 {
		t.Error("skipped appointment should leave the arrived queue")
	}
}

func TestRejoinPreservesTokenAndMovesSlot(t *testing.T) {
	doctor := mondayDoctor()
	svc, appts, _, _ := newTestService(doctor, mondayAt(10, 0))
	grid := testGrid(t)

	seeded := seedAppointment(t, appts, doctor, grid[3], models.BookedViaAdvance, models.StatusSkipped)

	rejoined, err := svc.Rejoin(context.Background(), seeded.ID)
	if err != nil {
		t.Fatalf("Rejoin: %v", err)
	}
	if rejoined.SlotIndex == 3 {
		t.Error("rejoin must not reuse the slot it was skipped from")
	}
	if rejoined.TokenNumber != seeded.TokenNumber || rejoined.NumericToken != seeded.NumericToken {
		t.Errorf("token changed to %s/%d, want preserved %s/%d",
			rejoined.TokenNumber, rejoined.NumericToken, seeded.TokenNumber, seeded.NumericToken)
	}
	if rejoined.Status != models.StatusConfirmed {
		t.Errorf("status = %s, want %s", rejoined.Status, models.StatusConfirmed)
	}
}

func TestRejoinDoesNotConsumeWalkInTokens(t *testing.T) {
	doctor := mondayDoctor()
	svc, appts, _, _ := newTestService(doctor, mondayAt(10, 0))
	grid := testGrid(t)

	seeded := seedAppointment(t, appts, doctor, grid[3], models.BookedViaAdvance, models.StatusSkipped)
	if _, err := svc.Rejoin(context.Background(), seeded.ID); err != nil {
		t.Fatalf("Rejoin: %v", err)
	}

	// The next true walk-in still gets the first counter value.
	ticket, err := svc.RegisterWalkIn(context.Background(), walkInRequest("777"))
	if err != nil {
		t.Fatalf("RegisterWalkIn: %v", err)
	}
	if ticket.TokenNumber != "13W" {
		t.Errorf("walk-in token = %s, want 13W", ticket.TokenNumber)
	}
}

func TestRejoinRequiresSkipped(t *testing.T) {
	doctor := mondayDoctor()
	svc, appts, _, _ := newTestService(doctor, mondayAt(10, 0))
	grid := testGrid(t)

	seeded := seedAppointment(t, appts, doctor, grid[3], models.BookedViaAdvance, models.StatusConfirmed)
	if _, err := svc.Rejoin(context.Background(), seeded.ID); err == nil {
		t.Fatal("expected an error rejoining a non-skipped appointment")
	}
}

func TestCancelFreesSlot(t *testing.T) {
	doctor := mondayDoctor()
	svc, appts, _, _ := newTestService(doctor, sundayAt(10, 0))
	grid := testGrid(t)

	seeded := seedAppointment(t, appts, doctor, grid[0], models.BookedViaAdvance, models.StatusPending)
	if err := svc.Cancel(context.Background(), seeded.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	_, occupied, err := svc.GetSlotGrid(context.Background(), doctor.ID, mondayDate)
	if err != nil {
		t.Fatalf("GetSlotGrid: %v", err)
	}
	if occupied[0] {
		t.Error("cancelled slot should be free")
	}
}

func TestCancelRejectsInactive(t *testing.T) {
	doctor := mondayDoctor()
	svc, appts, _, _ := newTestService(doctor, mondayAt(10, 0))
	grid := testGrid(t)

	seeded := seedAppointment(t, appts, doctor, grid[0], models.BookedViaAdvance, models.StatusCompleted)
	if err := svc.Cancel(context.Background(), seeded.ID); err == nil {
		t.Fatal("expected an error cancelling a completed appointment")
	}
}

func TestMarkNoShow(t *testing.T) {
	doctor := mondayDoctor()
	svc, appts, _, _ := newTestService(doctor, mondayAt(12, 30))
	grid := testGrid(t)

	seeded := seedAppointment(t, appts, doctor, grid[2], models.BookedViaAdvance, models.StatusPending)
	if err := svc.MarkNoShow(context.Background(), seeded.ID); err != nil {
		t.Fatalf("MarkNoShow: %v", err)
	}
	got, _ := appts.GetByID(seeded.ID)
	if got.Status != models.StatusNoShow {
		t.Errorf("status = %s, want %s", got.Status, models.StatusNoShow)
	}
}

func TestMarkNoShowRequiresPending(t *testing.T) {
	doctor := mondayDoctor()
	svc, appts, _, _ := newTestService(doctor, mondayAt(12, 30))
	grid := testGrid(t)

	seeded := seedAppointment(t, appts, doctor, grid[2], models.BookedViaAdvance, models.StatusConfirmed)
	if err := svc.MarkNoShow(context.Background(), seeded.ID); err == nil {
		t.Fatal("expected an error no-showing a confirmed appointment")
	}
}

func TestConfirmArrivalAnnouncesSessionStart(t *testing.T) {
	doctor := mondayDoctor()
	svc, appts, _, _ := newTestService(doctor, mondayAt(9, 0))
	notifier := &fakeNotifier{}
	svc.Notifier = notifier
	grid := testGrid(t)

	first := seedAppointment(t, appts, doctor, grid[0], models.BookedViaAdvance, models.StatusPending)
	second := seedAppointment(t, appts, doctor, grid[1], models.BookedViaAdvance, models.StatusPending)

	if err := svc.ConfirmArrival(context.Background(), first.ID); err != nil {
		t.Fatalf("ConfirmArrival: %v", err)
	}
	started := notifier.byEvent(models.EventConsultationStarted)
	if len(started) != 1 {
		t.Fatalf("consultation start events = %d, want 1", len(started))
	}
	if started[0].PatientID != first.PatientID {
		t.Errorf("event patient = %s, want %s", started[0].PatientID, first.PatientID)
	}

	// A later arrival joins a session already underway without re-announcing.
	if err := svc.ConfirmArrival(context.Background(), second.ID); err != nil {
		t.Fatalf("ConfirmArrival: %v", err)
	}
	if got := len(notifier.byEvent(models.EventConsultationStarted)); got != 1 {
		t.Errorf("consultation start events after second arrival = %d, want 1", got)
	}

	// Once a consultation has completed, the session never re-announces.
	if err := svc.Complete(context.Background(), first.ID); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	third := seedAppointment(t, appts, doctor, grid[2], models.BookedViaAdvance, models.StatusPending)
	if err := svc.ConfirmArrival(context.Background(), third.ID); err != nil {
		t.Fatalf("ConfirmArrival: %v", err)
	}
	if got := len(notifier.byEvent(models.EventConsultationStarted)); got != 1 {
		t.Errorf("consultation start events after completion = %d, want 1", got)
	}
}

func TestWalkInAnnouncesSessionStart(t *testing.T) {
	svc, _, _, _ := newTestService(mondayDoctor(), mondayAt(10, 0))
	notifier := &fakeNotifier{}
	svc.Notifier = notifier

	if _, err := svc.RegisterWalkIn(context.Background(), walkInRequest("111")); err != nil {
		t.Fatalf("RegisterWalkIn: %v", err)
	}
	if got := len(notifier.byEvent(models.EventConsultationStarted)); got != 1 {
		t.Errorf("consultation start events = %d, want 1", got)
	}
}
