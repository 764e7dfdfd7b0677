// Package notify dispatches point-to-point chat messages on booking state
// transitions. Delivery is best effort: a failed send is logged and
// swallowed, never unwinding a store mutation that already succeeded.
package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/iyaskobsp/shift-booking-bot/pkg/core/model"
)

// Messenger sends direct messages to a chat user.
type Messenger interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	// SendConfirmPrompt sends text with a confirm button for the shift at
	// rowIndex attached.
	SendConfirmPrompt(ctx context.Context, chatID int64, text string, rowIndex int) error
}

// ApproverResolver resolves the approver responsible for a shift.
type ApproverResolver interface {
	ResolveApprover(ctx context.Context, shift model.Shift) (int64, bool)
}

// Dispatcher routes transition notifications to the right parties.
type Dispatcher struct {
	messenger Messenger
	resolver  ApproverResolver
	logger    *zap.Logger
}

// NewDispatcher creates a dispatcher sending through messenger.
func NewDispatcher(messenger Messenger, resolver ApproverResolver, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{messenger: messenger, resolver: resolver, logger: logger}
}

// ReservationAccepted notifies the shift's approver that actor reserved
// it, attaching a confirm action. When no approver resolves, the actor is
// told instead so the reservation does not sit waiting on nobody.
func (d *Dispatcher) ReservationAccepted(ctx context.Context, shift model.Shift, actor model.Actor) {
	approverID, ok := d.resolver.ResolveApprover(ctx, shift)
	if !ok {
		d.logger.Warn("No approver resolved for shift",
			zap.Int("row", shift.RowIndex),
			zap.String("location", shift.Location))

		text := "⚠️ Could not find an approver for this shift. Please contact your manager directly."
		if err := d.messenger.SendMessage(ctx, actor.ID, text); err != nil {
			d.logger.Warn("Failed to notify actor about missing approver",
				zap.Int64("actor_id", actor.ID),
				zap.Error(err))
		}
		return
	}

	text := fmt.Sprintf(
		"🟢 New booking from a worker:\n\n%s\n\n👤 %s %s\n\nConfirm the booking?",
		shift.Details(), actor.Name, actor.Handle)
	if err := d.messenger.SendConfirmPrompt(ctx, approverID, text, shift.RowIndex); err != nil {
		d.logger.Warn("Failed to notify approver",
			zap.Int64("approver_id", approverID),
			zap.Int("row", shift.RowIndex),
			zap.Error(err))
	}
}

// ReservationConfirmed notifies the reserving actor that their shift was
// confirmed.
func (d *Dispatcher) ReservationConfirmed(ctx context.Context, shift model.Shift, actorID int64) {
	if actorID == 0 {
		d.logger.Warn("Reservation payload carries no actor id, skipping notification",
			zap.Int("row", shift.RowIndex))
		return
	}

	text := "🎉 Your shift has been confirmed!\n\n" + shift.Details()
	if err := d.messenger.SendMessage(ctx, actorID, text); err != nil {
		d.logger.Warn("Failed to notify actor about confirmation",
			zap.Int64("actor_id", actorID),
			zap.Int("row", shift.RowIndex),
			zap.Error(err))
	}
}
