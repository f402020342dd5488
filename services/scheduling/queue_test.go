package scheduling

import (
	"testing"

	"clinicdesk/models"
)

func TestComputeQueueStateOrdersByTime(t *testing.T) {
	grid := testGrid(t)
	appts := []models.Appointment{
		{ID: "c", SlotIndex: 5, Time: grid[5].Time, BookedVia: models.BookedViaAdvance, Status: models.StatusConfirmed, NumericToken: 6},
		{ID: "a", SlotIndex: 1, Time: grid[1].Time, BookedVia: models.BookedViaAdvance, Status: models.StatusConfirmed, NumericToken: 2},
		{ID: "b", SlotIndex: 3, Time: grid[3].Time, BookedVia: models.BookedViaWalkIn, Status: models.StatusConfirmed, NumericToken: 13},
	}

	state := ComputeQueueState(appts, 0)
	if len(state.ArrivedQueue) != 3 {
		t.Fatalf("arrived queue size = %d, want 3", len(state.ArrivedQueue))
	}
	got := []string{state.ArrivedQueue[0].ID, state.ArrivedQueue[1].ID, state.ArrivedQueue[2].ID}
	want := []string{"a", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("arrived order = %v, want %v", got, want)
		}
	}
}

func TestComputeQueueStateAdvanceBeforeWalkInAtSameTime(t *testing.T) {
	grid := testGrid(t)
	appts := []models.Appointment{
		{ID: "w", SlotIndex: 2, Time: grid[2].Time, BookedVia: models.BookedViaWalkIn, Status: models.StatusConfirmed, NumericToken: 13},
		{ID: "a", SlotIndex: 2, Time: grid[2].Time, BookedVia: models.BookedViaAdvance, Status: models.StatusConfirmed, NumericToken: 3},
	}

	state := ComputeQueueState(appts, 0)
	if state.ArrivedQueue[0].ID != "a" {
		t.Errorf("advance booking should precede walk-in at equal times, head = %s", state.ArrivedQueue[0].ID)
	}
}

func TestComputeQueueStateBufferAndCurrent(t *testing.T) {
	grid := testGrid(t)
	appts := []models.Appointment{
		{ID: "a", SlotIndex: 0, Time: grid[0].Time, BookedVia: models.BookedViaAdvance, Status: models.StatusConfirmed},
		{ID: "b", SlotIndex: 1, Time: grid[1].Time, BookedVia: models.BookedViaAdvance, Status: models.StatusConfirmed},
		{ID: "c", SlotIndex: 2, Time: grid[2].Time, BookedVia: models.BookedViaAdvance, Status: models.StatusConfirmed},
	}

	state := ComputeQueueState(appts, 4)
	if len(state.BufferQueue) != BufferSize {
		t.Fatalf("buffer size = %d, want %d", len(state.BufferQueue), BufferSize)
	}
	if state.BufferQueue[0].ID != "a" || state.BufferQueue[1].ID != "b" {
		t.Errorf("buffer = [%s %s], want [a b]", state.BufferQueue[0].ID, state.BufferQueue[1].ID)
	}
	if state.CurrentConsultation == nil || state.CurrentConsultation.ID != "a" {
		t.Error("current consultation should be the queue head")
	}
	if state.ConsultationCount != 4 {
		t.Errorf("consultation count = %d, want 4", state.ConsultationCount)
	}
}

func TestComputeQueueStateFiltersStatuses(t *testing.T) {
	grid := testGrid(t)
	appts := []models.Appointment{
		{ID: "done", SlotIndex: 0, Time: grid[0].Time, Status: models.StatusCompleted},
		{ID: "pending", SlotIndex: 1, Time: grid[1].Time, Status: models.StatusPending},
		{ID: "here", SlotIndex: 2, Time: grid[2].Time, Status: models.StatusConfirmed},
		{ID: "skipped", SlotIndex: 3, Time: grid[3].Time, Status: models.StatusSkipped},
		{ID: "gone", SlotIndex: 4, Time: grid[4].Time, Status: models.StatusCancelled},
	}

	state := ComputeQueueState(appts, 1)
	if len(state.ArrivedQueue) != 1 || state.ArrivedQueue[0].ID != "here" {
		t.Errorf("arrived queue = %v, want only the confirmed appointment", state.ArrivedQueue)
	}
	if len(state.SkippedQueue) != 1 || state.SkippedQueue[0].ID != "skipped" {
		t.Errorf("skipped queue = %v, want only the skipped appointment", state.SkippedQueue)
	}
}

func TestComputeQueueStateEmpty(t *testing.T) {
	state := ComputeQueueState(nil, 0)
	if state.CurrentConsultation != nil {
		t.Error("empty session should have no current consultation")
	}
	if len(state.BufferQueue) != 0 {
		t.Error("empty session should have an empty buffer")
	}
}

func TestComputeQueueStateDeterministic(t *testing.T) {
	grid := testGrid(t)
	appts := []models.Appointment{
		{ID: "b", SlotIndex: 3, Time: grid[3].Time, BookedVia: models.BookedViaWalkIn, Status: models.StatusConfirmed, NumericToken: 13},
		{ID: "a", SlotIndex: 1, Time: grid[1].Time, BookedVia: models.BookedViaAdvance, Status: models.StatusConfirmed, NumericToken: 2},
	}

	first := ComputeQueueState(append([]models.Appointment(nil), appts...), 2)
	second := ComputeQueueState(append([]models.Appointment(nil), appts...), 2)
	if first.ArrivedQueue[0].ID != second.ArrivedQueue[0].ID ||
		first.ConsultationCount != second.ConsultationCount {
		t.Error("queue derivation should be deterministic for identical inputs")
	}
}
