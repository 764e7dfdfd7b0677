// Package booking implements the reservation state machine that moves a
// shift from open to reserved to confirmed. Transitions only go forward;
// a lost race is a valid outcome, not an error.
package booking

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iyaskobsp/shift-booking-bot/pkg/core/model"
)

// Store is the narrow view of the shared row store the engine needs.
// Every cross-actor coordination in the protocol is mediated through this
// interface; the engine itself holds no shared mutable state.
type Store interface {
	ReadRow(ctx context.Context, rowIndex int) ([]string, error)
	ReadCell(ctx context.Context, rowIndex, col int) (string, error)
	WriteCell(ctx context.Context, rowIndex, col int, value string) error
	SupportsConditionalWrite() bool
	CompareAndSwapCell(ctx context.Context, rowIndex, col int, old, value string) (bool, error)
}

// Outcome is a business result of a reserve or confirm attempt. These are
// expected, non-exceptional outcomes rendered as plain user-facing
// messages; only store failures surface as errors.
type Outcome int

const (
	OutcomeAccepted Outcome = iota
	OutcomeAlreadyReserved
	OutcomeAlreadyConfirmed
	OutcomeNotYetReserved
	OutcomeNotFound
	OutcomeUnavailable
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAccepted:
		return "accepted"
	case OutcomeAlreadyReserved:
		return "already_reserved"
	case OutcomeAlreadyConfirmed:
		return "already_confirmed"
	case OutcomeNotYetReserved:
		return "not_yet_reserved"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeUnavailable:
		return "unavailable"
	}
	return "unknown"
}

// Result carries the outcome of an attempt together with the shift
// snapshot it was decided on. ReservedBy identifies the reserving actor
// and is set when the outcome is Accepted.
type Result struct {
	Outcome    Outcome
	Shift      model.Shift
	ReservedBy model.Actor
}

// Engine governs the shift lifecycle against an injected store.
type Engine struct {
	store  Store
	logger *zap.Logger
}

// NewEngine creates a reservation engine backed by the given store.
func NewEngine(store Store, logger *zap.Logger) *Engine {
	return &Engine{store: store, logger: logger}
}

// Reserve attempts to claim the shift at rowIndex for actor.
//
// The row is always read fresh; the listing the actor picked from may be
// stale by the time they act. On stores without conditional writes the
// reservation cell is re-read immediately before the write. That
// double-check narrows the window between two actors who both saw the
// shift unreserved, but cannot close it: the store offers no transactional
// compare-and-set, and actors may be served by separate processes. The
// residual race is an accepted limitation of the protocol. When the store
// does support conditional writes, the claim is a single compare-and-swap
// on the empty reservation cell.
func (e *Engine) Reserve(ctx context.Context, rowIndex int, actor model.Actor) (Result, error) {
	log := e.logger.With(
		zap.String("attempt_id", uuid.New().String()),
		zap.Int("row", rowIndex),
		zap.Int64("actor_id", actor.ID),
	)
	log.Info("Reserve attempt started")

	row, err := e.store.ReadRow(ctx, rowIndex)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read shift row: %w", err)
	}
	shift := model.ShiftFromRow(rowIndex, row)

	// A blank row decodes to a zero-value open shift. The engine never
	// creates shifts, so a claim against a row that holds none is rejected
	// before any write.
	if shift.Empty() {
		log.Info("Reserve rejected", zap.Stringer("outcome", OutcomeNotFound))
		return Result{Outcome: OutcomeNotFound, Shift: shift}, nil
	}

	switch shift.State() {
	case model.StateConfirmed:
		log.Info("Reserve rejected", zap.Stringer("outcome", OutcomeAlreadyConfirmed))
		return Result{Outcome: OutcomeAlreadyConfirmed, Shift: shift}, nil
	case model.StateOpenReserved:
		log.Info("Reserve rejected", zap.Stringer("outcome", OutcomeAlreadyReserved))
		return Result{Outcome: OutcomeAlreadyReserved, Shift: shift}, nil
	}

	if !shift.Bookable() {
		log.Info("Reserve rejected",
			zap.Stringer("outcome", OutcomeUnavailable),
			zap.String("status", shift.Status))
		return Result{Outcome: OutcomeUnavailable, Shift: shift}, nil
	}

	payload := actor.EncodePayload()

	if e.store.SupportsConditionalWrite() {
		swapped, err := e.store.CompareAndSwapCell(ctx, rowIndex, model.ColReservation, "", payload)
		if err != nil {
			return Result{}, fmt.Errorf("failed to claim reservation: %w", err)
		}
		if !swapped {
			log.Info("Reserve lost the swap", zap.Stringer("outcome", OutcomeAlreadyReserved))
			return Result{Outcome: OutcomeAlreadyReserved, Shift: shift}, nil
		}
	} else {
		current, err := e.store.ReadCell(ctx, rowIndex, model.ColReservation)
		if err != nil {
			return Result{}, fmt.Errorf("failed to re-check reservation cell: %w", err)
		}
		if strings.TrimSpace(current) != "" {
			log.Info("Reserve lost the race", zap.Stringer("outcome", OutcomeAlreadyReserved))
			shift.Reservation = current
			return Result{Outcome: OutcomeAlreadyReserved, Shift: shift}, nil
		}

		if err := e.store.WriteCell(ctx, rowIndex, model.ColReservation, payload); err != nil {
			return Result{}, fmt.Errorf("failed to write reservation: %w", err)
		}
	}

	shift.Reservation = payload
	log.Info("Shift reserved",
		zap.String("location", shift.Location),
		zap.String("date", shift.Date))

	return Result{Outcome: OutcomeAccepted, Shift: shift, ReservedBy: actor}, nil
}

// Confirm marks the shift at rowIndex as confirmed. Confirmation requires
// an existing reservation; a confirmed shift is terminal and never rolls
// back. The reserving actor's identity is decoded from the reservation
// payload for downstream notification.
func (e *Engine) Confirm(ctx context.Context, rowIndex int, approver model.Actor) (Result, error) {
	log := e.logger.With(
		zap.String("attempt_id", uuid.New().String()),
		zap.Int("row", rowIndex),
		zap.Int64("approver_id", approver.ID),
	)
	log.Info("Confirm attempt started")

	row, err := e.store.ReadRow(ctx, rowIndex)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read shift row: %w", err)
	}
	shift := model.ShiftFromRow(rowIndex, row)

	if shift.Empty() {
		log.Info("Confirm rejected", zap.Stringer("outcome", OutcomeNotFound))
		return Result{Outcome: OutcomeNotFound, Shift: shift}, nil
	}
	if !shift.Reserved() {
		log.Info("Confirm rejected", zap.Stringer("outcome", OutcomeNotYetReserved))
		return Result{Outcome: OutcomeNotYetReserved, Shift: shift}, nil
	}
	if shift.State() == model.StateConfirmed {
		log.Info("Confirm rejected", zap.Stringer("outcome", OutcomeAlreadyConfirmed))
		return Result{Outcome: OutcomeAlreadyConfirmed, Shift: shift}, nil
	}

	if err := e.store.WriteCell(ctx, rowIndex, model.ColStatus, model.StatusConfirmed); err != nil {
		return Result{}, fmt.Errorf("failed to write confirmed status: %w", err)
	}

	shift.Status = model.StatusConfirmed
	reservedBy, _ := shift.ReservedBy()
	log.Info("Shift confirmed",
		zap.String("location", shift.Location),
		zap.Int64("reserved_by", reservedBy.ID))

	return Result{Outcome: OutcomeAccepted, Shift: shift, ReservedBy: reservedBy}, nil
}
