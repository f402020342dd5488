package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clinicdesk/database/store"
	"clinicdesk/models"
	"clinicdesk/utils"

	"go.uber.org/zap"
)

// DefaultReserveAttempts bounds the optimistic claim loop.
const DefaultReserveAttempts = 5

// reserveRequest is the internal input to the slot claim transaction.
type reserveRequest struct {
	doctor  *models.Doctor
	date    string // "YYYY-MM-DD"
	grid    []models.Slot
	channel models.BookingChannel
	// preferred is a requested slot index; honored when still free, never
	// exclusive.
	preferred *int
	// excludeAppt marks one appointment's slot as free and keeps it out of
	// capacity and spacing math (reschedule and rejoin).
	excludeAppt string
	// avoidSlot is an index treated as occupied no matter what; a rejoin
	// never lands back on the slot it was skipped from.
	avoidSlot  *int
	reservedBy string
	// reuseToken skips token generation; the caller keeps its display token.
	reuseToken bool
}

// ReserveResult is a successfully claimed slot plus its token assignment.
type ReserveResult struct {
	Slot          models.Slot
	TokenNumber   string
	NumericToken  int
	ReservationID string
}

// walkInTokenBase is one past the day's highest slot index. Leave filtering
// can shrink the grid while keeping high indices, so the base comes from the
// last surviving index rather than the grid length; walk-in numerics always
// trail every advance numeric.
func walkInTokenBase(grid []models.Slot) int {
	if len(grid) == 0 {
		return 0
	}
	return grid[len(grid)-1].Index + 1
}

// reserve claims one slot for the request, retrying on concurrent-claim
// conflicts with a fresh occupancy read each attempt. Capacity exhaustion
// and empty candidate sets fail immediately; only claim races retry.
func (s *DefaultSchedulingService) reserve(ctx context.Context, req reserveRequest) (*ReserveResult, error) {
	attempts := s.Config.ReserveAttempts
	if attempts <= 0 {
		attempts = DefaultReserveAttempts
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		result, err := s.tryReserve(ctx, req)
		if err == nil {
			return result, nil
		}
		if !IsRetryable(err) {
			return nil, err
		}
		lastErr = err
		utils.GetLogger().Debug("slot claim conflict, retrying",
			zap.String("doctorId", req.doctor.ID),
			zap.String("date", req.date),
			zap.Int("attempt", attempt))
	}
	return nil, lastErr
}

func (s *DefaultSchedulingService) tryReserve(ctx context.Context, req reserveRequest) (*ReserveResult, error) {
	active, err := s.Appointments.ActiveByDay(req.doctor.ClinicID, req.doctor.ID, req.date)
	if err != nil {
		return nil, fmt.Errorf("failed to load active appointments: %w", err)
	}
	if req.excludeAppt != "" {
		kept := active[:0]
		for _, a := range active {
			if a.ID != req.excludeAppt {
				kept = append(kept, a)
			}
		}
		active = kept
	}
	occupied := occupiedSet(active, "")
	if req.avoidSlot != nil {
		occupied[*req.avoidSlot] = true
	}
	now := s.now()

	var candidates []models.Slot
	if req.channel == models.BookedViaAdvance {
		// Capacity is a count, not a positional zone: cancellations free
		// counts, so a day can fill and reopen.
		advanceCap, _ := s.Policy.Split(len(req.grid))
		advCount := len(filterByChannel(active, models.BookedViaAdvance))
		if advCount >= advanceCap {
			return nil, NewSchedulingError(CodeAdvanceCapacityReached,
				"advance bookings for doctor %s on %s are full (%d of %d)",
				req.doctor.ID, req.date, advCount, advanceCap)
		}
		candidates = AdvanceCandidates(req.grid, now, occupied, req.preferred, s.advanceLead())
	} else {
		candidates = WalkInCandidates(req.grid, now, occupied, active, s.walkInSpacing(), s.advanceLead())
	}
	if len(candidates) == 0 {
		return nil, NewSchedulingError(CodeNoMatchingCandidateSlot,
			"no bookable slot for doctor %s on %s", req.doctor.ID, req.date)
	}

	var result *ReserveResult
	err = s.Store.RunAtomic(ctx, func(txCtx context.Context) error {
		// Each reservation create is individually atomic; the first id that
		// does not exist yet wins the slot. A lost claim just moves to the
		// next candidate.
		for _, slot := range candidates {
			res := &models.Reservation{
				ID:         models.ReservationID(req.doctor.ClinicID, req.doctor.Name, req.date, slot.Index),
				ClinicID:   req.doctor.ClinicID,
				DoctorName: req.doctor.Name,
				Date:       req.date,
				SlotIndex:  slot.Index,
				ReservedBy: req.reservedBy,
			}
			err := s.Appointments.CreateReservation(txCtx, res)
			if errors.Is(err, store.ErrAlreadyExists) {
				continue
			}
			if err != nil {
				return fmt.Errorf("failed to create reservation: %w", err)
			}

			result = &ReserveResult{Slot: slot, ReservationID: res.ID}
			switch {
			case req.channel == models.BookedViaAdvance:
				result.NumericToken = slot.Index + 1
				result.TokenNumber = fmt.Sprintf("A%03d", result.NumericToken)
			case !req.reuseToken:
				// The counter is consumed only once a slot is actually
				// held; a failed attempt leaves no gap in the series.
				counterID := models.TokenCounterID(req.doctor.ClinicID, req.doctor.Name, req.date, models.BookedViaWalkIn)
				n, err := s.Appointments.NextTokenCount(txCtx, counterID)
				if err != nil {
					if dropErr := s.Appointments.DeleteReservation(txCtx, res.ID); dropErr != nil {
						utils.GetLogger().Warn("failed to roll back reservation",
							zap.String("reservationId", res.ID),
							zap.Error(dropErr))
					}
					result = nil
					return fmt.Errorf("failed to advance walk-in token counter: %w", err)
				}
				result.NumericToken = walkInTokenBase(req.grid) + n
				result.TokenNumber = fmt.Sprintf("%dW", result.NumericToken)
			}
			return nil
		}
		return NewSchedulingError(CodeReservationConflict,
			"every candidate slot for doctor %s on %s was claimed concurrently", req.doctor.ID, req.date)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// releaseReservation removes a slot claim, optionally after a grace delay so
// an in-flight duplicate request keeps failing for a moment instead of
// double-booking.
func (s *DefaultSchedulingService) releaseReservation(id string, delay time.Duration) {
	drop := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Appointments.DeleteReservation(ctx, id); err != nil {
			utils.GetLogger().Warn("failed to release reservation",
				zap.String("reservationId", id),
				zap.Error(err))
		}
	}
	if delay <= 0 {
		drop()
		return
	}
	time.AfterFunc(delay, drop)
}
