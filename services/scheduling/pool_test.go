package scheduling

import (
	"context"
	"fmt"
	"testing"

	"clinicdesk/models"
)

func walkInRequest(phone string) WalkInRequest {
	return WalkInRequest{
		DoctorID: "doc-1",
		Patient: models.PatientData{
			Name:  "Walk In",
			Phone: phone,
		},
	}
}

func TestRegisterWalkInDuringSession(t *testing.T) {
	svc, appts, _, _ := newTestService(mondayDoctor(), mondayAt(10, 0))

	ticket, err := svc.RegisterWalkIn(context.Background(), walkInRequest("111"))
	if err != nil {
		t.Fatalf("RegisterWalkIn: %v", err)
	}
	if ticket.Pooled {
		t.Fatal("mid-session walk-in should be placed directly, not pooled")
	}
	// First free imminent slot is 10:00, index 4.
	if ticket.SlotIndex != 4 {
		t.Errorf("slot index = %d, want 4", ticket.SlotIndex)
	}
	// Walk-in numerics start above the 12 advance numerics.
	if ticket.TokenNumber != "13W" || ticket.NumericToken != 13 {
		t.Errorf("token = %s/%d, want 13W/13", ticket.TokenNumber, ticket.NumericToken)
	}

	placed, err := appts.ActiveByDay("clinic-1", "doc-1", mondayDate)
	if err != nil {
		t.Fatalf("ActiveByDay: %v", err)
	}
	if len(placed) != 1 || placed[0].Status != models.StatusConfirmed {
		t.Errorf("walk-in should be a confirmed appointment, got %+v", placed)
	}
}

func TestRegisterWalkInTokensIncrement(t *testing.T) {
	svc, _, _, _ := newTestService(mondayDoctor(), mondayAt(10, 0))

	first, err := svc.RegisterWalkIn(context.Background(), walkInRequest("111"))
	if err != nil {
		t.Fatalf("first RegisterWalkIn: %v", err)
	}
	second, err := svc.RegisterWalkIn(context.Background(), walkInRequest("222"))
	if err != nil {
		t.Fatalf("second RegisterWalkIn: %v", err)
	}
	if first.TokenNumber != "13W" || second.TokenNumber != "14W" {
		t.Errorf("tokens = %s, %s; want 13W, 14W", first.TokenNumber, second.TokenNumber)
	}
	if second.SlotIndex == first.SlotIndex {
		t.Error("walk-ins should occupy distinct slots")
	}
	if second.PatientsAhead != 1 {
		t.Errorf("second ticket patientsAhead = %d, want 1", second.PatientsAhead)
	}
}

func TestRegisterWalkInBeforeSessionPools(t *testing.T) {
	svc, _, pool, _ := newTestService(mondayDoctor(), mondayAt(8, 30))

	first, err := svc.RegisterWalkIn(context.Background(), walkInRequest("111"))
	if err != nil {
		t.Fatalf("RegisterWalkIn: %v", err)
	}
	if !first.Pooled {
		t.Fatal("pre-session walk-in should be pooled")
	}
	if first.TokenNumber != "" {
		t.Errorf("pooled ticket should have no token yet, got %s", first.TokenNumber)
	}
	if first.PatientsAhead != 0 {
		t.Errorf("first pooled ticket patientsAhead = %d, want 0", first.PatientsAhead)
	}

	second, err := svc.RegisterWalkIn(context.Background(), walkInRequest("222"))
	if err != nil {
		t.Fatalf("second RegisterWalkIn: %v", err)
	}
	if second.PatientsAhead != 1 {
		t.Errorf("second pooled ticket patientsAhead = %d, want 1", second.PatientsAhead)
	}

	waiting, err := pool.CountWaiting("clinic-1", "doc-1", mondayDate, 0)
	if err != nil {
		t.Fatalf("CountWaiting: %v", err)
	}
	if waiting != 2 {
		t.Errorf("pool size = %d, want 2", waiting)
	}
}

func TestRegisterWalkInNotYetOpen(t *testing.T) {
	// The pool opens two hours before the 09:00 session.
	svc, _, _, _ := newTestService(mondayDoctor(), mondayAt(6, 30))

	_, err := svc.RegisterWalkIn(context.Background(), walkInRequest("111"))
	if err == nil {
		t.Fatal("expected an error before the pool opens")
	}
	if ErrCode(err) != CodeWalkInNotYetOpen {
		t.Errorf("error code = %q, want %q", ErrCode(err), CodeWalkInNotYetOpen)
	}
}

func TestRegisterWalkInWindowClosed(t *testing.T) {
	// Session ends at 12:00 plus a 30-minute grace.
	svc, _, _, _ := newTestService(mondayDoctor(), mondayAt(13, 0))

	_, err := svc.RegisterWalkIn(context.Background(), walkInRequest("111"))
	if err == nil {
		t.Fatal("expected an error after the session closed")
	}
	if ErrCode(err) != CodeWalkInWindowClosed {
		t.Errorf("error code = %q, want %q", ErrCode(err), CodeWalkInWindowClosed)
	}
}

func TestDrainWalkInPoolAssignsFIFO(t *testing.T) {
	svc, appts, pool, _ := newTestService(mondayDoctor(), mondayAt(9, 5))

	for i := 0; i < 2; i++ {
		entry := &models.WalkInPoolEntry{
			ClinicID:     "clinic-1",
			DoctorID:     "doc-1",
			Date:         mondayDate,
			SessionIndex: 0,
			Patient:      models.PatientData{Name: fmt.Sprintf("Pooled %d", i), Phone: fmt.Sprintf("55%d", i)},
			RegisteredAt: mondayAt(8, i),
			Position:     i + 1,
		}
		if err := pool.Create(entry); err != nil {
			t.Fatalf("seed pool entry: %v", err)
		}
	}

	assigned, err := svc.DrainWalkInPool(context.Background(), "doc-1", mondayDate, 0)
	if err != nil {
		t.Fatalf("DrainWalkInPool: %v", err)
	}
	if assigned != 2 {
		t.Fatalf("assigned = %d, want 2", assigned)
	}

	waiting, _ := pool.CountWaiting("clinic-1", "doc-1", mondayDate, 0)
	if waiting != 0 {
		t.Errorf("pool should be empty after drain, %d waiting", waiting)
	}

	placed, err := appts.ActiveByDay("clinic-1", "doc-1", mondayDate)
	if err != nil {
		t.Fatalf("ActiveByDay: %v", err)
	}
	if len(placed) != 2 {
		t.Fatalf("expected 2 placed walk-ins, got %d", len(placed))
	}
	// 09:00 has passed; the first free imminent slots are 09:15 and 09:30,
	// assigned in registration order.
	if placed[0].SlotIndex != 1 || placed[1].SlotIndex != 2 {
		t.Errorf("slots = %d, %d; want 1, 2", placed[0].SlotIndex, placed[1].SlotIndex)
	}
	if placed[0].TokenNumber != "13W" || placed[1].TokenNumber != "14W" {
		t.Errorf("tokens = %s, %s; want 13W, 14W", placed[0].TokenNumber, placed[1].TokenNumber)
	}
}

func TestDrainWalkInPoolBeforeSessionStartNoOp(t *testing.T) {
	svc, _, pool, _ := newTestService(mondayDoctor(), mondayAt(8, 45))

	entry := &models.WalkInPoolEntry{
		ClinicID:     "clinic-1",
		DoctorID:     "doc-1",
		Date:         mondayDate,
		SessionIndex: 0,
		Patient:      models.PatientData{Name: "Early Bird", Phone: "550"},
		RegisteredAt: mondayAt(8, 0),
	}
	if err := pool.Create(entry); err != nil {
		t.Fatalf("seed pool entry: %v", err)
	}

	assigned, err := svc.DrainWalkInPool(context.Background(), "doc-1", mondayDate, 0)
	if err != nil {
		t.Fatalf("DrainWalkInPool: %v", err)
	}
	if assigned != 0 {
		t.Errorf("assigned = %d, want 0 before session start", assigned)
	}
	waiting, _ := pool.CountWaiting("clinic-1", "doc-1", mondayDate, 0)
	if waiting != 1 {
		t.Errorf("entry should stay pooled, %d waiting", waiting)
	}
}

func TestQueueStateDrainsPool(t *testing.T) {
	svc, _, pool, _ := newTestService(mondayDoctor(), mondayAt(9, 5))

	entry := &models.WalkInPoolEntry{
		ClinicID:     "clinic-1",
		DoctorID:     "doc-1",
		Date:         mondayDate,
		SessionIndex: 0,
		Patient:      models.PatientData{Name: "Pooled", Phone: "551"},
		RegisteredAt: mondayAt(8, 0),
	}
	if err := pool.Create(entry); err != nil {
		t.Fatalf("seed pool entry: %v", err)
	}

	state, err := svc.QueueState(context.Background(), "doc-1", mondayDate, 0)
	if err != nil {
		t.Fatalf("QueueState: %v", err)
	}
	if len(state.ArrivedQueue) != 1 {
		t.Fatalf("arrived queue = %d entries, want the drained walk-in", len(state.ArrivedQueue))
	}
	if state.ArrivedQueue[0].BookedVia != models.BookedViaWalkIn {
		t.Error("drained entry should be a walk-in appointment")
	}
}

func TestRegisterWalkInPoolBoundedBySessionWindow(t *testing.T) {
	svc, _, pool, _ := newTestService(mondayDoctor(), mondayAt(8, 30))

	// Estimates step from 09:00 in 15-minute slots; the session window with
	// grace closes at 12:30, which admits 15 pooled walk-ins.
	for i := 0; i < 15; i++ {
		ticket, err := svc.RegisterWalkIn(context.Background(), walkInRequest(fmt.Sprintf("1%03d", i)))
		if err != nil {
			t.Fatalf("RegisterWalkIn %d: %v", i, err)
		}
		if !ticket.Pooled {
			t.Fatalf("pre-session walk-in %d should be pooled", i)
		}
	}

	_, err := svc.RegisterWalkIn(context.Background(), walkInRequest("9999"))
	if err == nil {
		t.Fatal("expected registration to fail once estimates pass the session window")
	}
	if ErrCode(err) != CodeSlotOutsideAvailability {
		t.Errorf("error code = %q, want %q", ErrCode(err), CodeSlotOutsideAvailability)
	}
	if n, _ := pool.CountWaiting("clinic-1", "doc-1", mondayDate, 0); n != 15 {
		t.Errorf("pool size = %d, want 15", n)
	}
}
