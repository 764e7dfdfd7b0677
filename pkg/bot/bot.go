// Package bot maps inbound Telegram interactions to reservation engine
// calls and renders engine results back as messages.
package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/iyaskobsp/shift-booking-bot/pkg/clients/telegramclient"
	"github.com/iyaskobsp/shift-booking-bot/pkg/core/booking"
	"github.com/iyaskobsp/shift-booking-bot/pkg/core/model"
)

const (
	msgHelp = "Hi! This is the shift booking bot.\n" +
		"Commands:\n" +
		"• /shifts — show available shifts\n" +
		"• /ping — check the bot is alive"
	msgPong             = "Pong 🏓"
	msgNoShifts         = "No shifts available right now."
	msgTryAgain         = "Something went wrong talking to the schedule. Please try again."
	msgAlreadyReserved  = "Someone has just booked this shift. Try another one."
	msgAlreadyConfirmed = "This shift has already been booked and confirmed."
	msgNotYetReserved   = "No one has booked this shift yet."
	msgShiftGone        = "This shift no longer exists. Use /shifts for the current list."
	msgUnavailable      = "This shift is not open for booking."
	msgConfirmDone      = "✅ Booking confirmed. The worker has been notified."
)

// Gateway is the outbound messaging surface the adapter renders through.
type Gateway interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendBookPrompt(ctx context.Context, chatID int64, text string, rowIndex int) error
	EditMessageText(ctx context.Context, chatID int64, messageID int, text string) error
	AnswerCallback(callbackID string) error
}

// Engine is the reservation engine surface the adapter drives.
type Engine interface {
	Reserve(ctx context.Context, rowIndex int, actor model.Actor) (booking.Result, error)
	Confirm(ctx context.Context, rowIndex int, approver model.Actor) (booking.Result, error)
}

// ShiftLister lists shifts open for booking.
type ShiftLister interface {
	ListOpenShifts(ctx context.Context, now time.Time, horizonDays int) ([]model.Shift, error)
}

// Dispatcher sends transition notifications to the counterparty.
type Dispatcher interface {
	ReservationAccepted(ctx context.Context, shift model.Shift, actor model.Actor)
	ReservationConfirmed(ctx context.Context, shift model.Shift, actorID int64)
}

// Bot routes updates to handlers and renders outcomes.
type Bot struct {
	gateway     Gateway
	engine      Engine
	shifts      ShiftLister
	dispatcher  Dispatcher
	horizonDays int
	logger      *zap.Logger
}

// New creates the conversation adapter.
func New(gateway Gateway, engine Engine, shifts ShiftLister, dispatcher Dispatcher, horizonDays int, logger *zap.Logger) *Bot {
	return &Bot{
		gateway:     gateway,
		engine:      engine,
		shifts:      shifts,
		dispatcher:  dispatcher,
		horizonDays: horizonDays,
		logger:      logger,
	}
}

// Run consumes updates until the context is cancelled or the channel
// closes. Each update is an independent unit of work and gets its own
// goroutine; concurrent bookings coordinate through the store, not here.
func (b *Bot) Run(ctx context.Context, updates <-chan tgbotapi.Update) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			go b.HandleUpdate(ctx, update)
		}
	}
}

// HandleUpdate dispatches a single inbound update.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand():
		b.handleCommand(ctx, update.Message)
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		b.reply(ctx, msg.Chat.ID, msgHelp)
	case "ping":
		b.reply(ctx, msg.Chat.ID, msgPong)
	case "shifts":
		b.handleShifts(ctx, msg.Chat.ID)
	}
}

func (b *Bot) handleShifts(ctx context.Context, chatID int64) {
	shifts, err := b.shifts.ListOpenShifts(ctx, time.Now(), b.horizonDays)
	if err != nil {
		b.logger.Error("Failed to list open shifts", zap.Error(err))
		b.reply(ctx, chatID, msgTryAgain)
		return
	}

	if len(shifts) == 0 {
		b.reply(ctx, chatID, msgNoShifts)
		return
	}

	for _, shift := range shifts {
		if err := b.gateway.SendBookPrompt(ctx, chatID, shift.Details(), shift.RowIndex); err != nil {
			b.logger.Warn("Failed to send shift listing",
				zap.Int64("chat_id", chatID),
				zap.Int("row", shift.RowIndex),
				zap.Error(err))
		}
	}
}

func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	// Acknowledge before touching the store: Telegram expires unanswered
	// callbacks long before a slow sheet read would finish.
	if err := b.gateway.AnswerCallback(query.ID); err != nil {
		b.logger.Debug("Failed to answer callback", zap.Error(err))
	}

	if query.Message == nil {
		return
	}

	verb, rowIndex, err := telegramclient.ParseCallbackData(query.Data)
	if err != nil {
		b.logger.Debug("Ignoring malformed callback data",
			zap.String("data", query.Data),
			zap.Error(err))
		return
	}

	actor := actorFromUser(query.From)
	chatID := query.Message.Chat.ID
	messageID := query.Message.MessageID

	switch verb {
	case telegramclient.CallbackBook:
		b.handleBook(ctx, chatID, messageID, rowIndex, actor)
	case telegramclient.CallbackConfirm:
		b.handleConfirm(ctx, chatID, messageID, rowIndex, actor)
	}
}

func (b *Bot) handleBook(ctx context.Context, chatID int64, messageID, rowIndex int, actor model.Actor) {
	result, err := b.engine.Reserve(ctx, rowIndex, actor)
	if err != nil {
		b.logger.Error("Reserve failed",
			zap.Int("row", rowIndex),
			zap.Int64("actor_id", actor.ID),
			zap.Error(err))
		b.edit(ctx, chatID, messageID, msgTryAgain)
		return
	}

	switch result.Outcome {
	case booking.OutcomeAccepted:
		text := fmt.Sprintf("✅ You booked this shift:\n%s\n\nAwaiting approver confirmation.",
			result.Shift.Details())
		b.edit(ctx, chatID, messageID, text)
		b.dispatcher.ReservationAccepted(ctx, result.Shift, actor)
	case booking.OutcomeAlreadyReserved:
		b.edit(ctx, chatID, messageID, msgAlreadyReserved)
	case booking.OutcomeAlreadyConfirmed:
		b.edit(ctx, chatID, messageID, msgAlreadyConfirmed)
	case booking.OutcomeNotFound:
		b.edit(ctx, chatID, messageID, msgShiftGone)
	case booking.OutcomeUnavailable:
		b.edit(ctx, chatID, messageID, msgUnavailable)
	}
}

func (b *Bot) handleConfirm(ctx context.Context, chatID int64, messageID, rowIndex int, approver model.Actor) {
	result, err := b.engine.Confirm(ctx, rowIndex, approver)
	if err != nil {
		b.logger.Error("Confirm failed",
			zap.Int("row", rowIndex),
			zap.Int64("approver_id", approver.ID),
			zap.Error(err))
		b.edit(ctx, chatID, messageID, msgTryAgain)
		return
	}

	switch result.Outcome {
	case booking.OutcomeAccepted:
		b.edit(ctx, chatID, messageID, msgConfirmDone)
		b.dispatcher.ReservationConfirmed(ctx, result.Shift, result.ReservedBy.ID)
	case booking.OutcomeNotYetReserved:
		b.edit(ctx, chatID, messageID, msgNotYetReserved)
	case booking.OutcomeAlreadyConfirmed:
		b.edit(ctx, chatID, messageID, msgAlreadyConfirmed)
	case booking.OutcomeNotFound:
		b.edit(ctx, chatID, messageID, msgShiftGone)
	}
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	if err := b.gateway.SendMessage(ctx, chatID, text); err != nil {
		b.logger.Warn("Failed to send reply", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) edit(ctx context.Context, chatID int64, messageID int, text string) {
	if err := b.gateway.EditMessageText(ctx, chatID, messageID, text); err != nil {
		b.logger.Warn("Failed to edit prompt",
			zap.Int64("chat_id", chatID),
			zap.Int("message_id", messageID),
			zap.Error(err))
	}
}

func actorFromUser(user *tgbotapi.User) model.Actor {
	if user == nil {
		return model.Actor{}
	}

	name := strings.TrimSpace(strings.TrimSpace(user.FirstName) + " " + strings.TrimSpace(user.LastName))
	handle := ""
	if user.UserName != "" {
		handle = "@" + user.UserName
	}
	return model.Actor{Name: name, ID: user.ID, Handle: handle}
}
