// Package telegramclient wraps the Telegram Bot API: long polling for
// updates, direct messages, prompt editing, and the inline keyboards that
// carry the booking actions.
package telegramclient

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"
)

// sendLimit caps outbound sends. Telegram throttles bots at roughly 30
// messages per second globally; staying under that avoids 429 responses
// during a burst of shift listings.
const sendLimit = rate.Limit(25)

const pollTimeoutSeconds = 30

// Client wraps the Telegram Bot API client
type Client struct {
	api     *tgbotapi.BotAPI
	limiter *rate.Limiter
}

// NewClient creates a new Telegram client and verifies the token against
// the getMe endpoint.
func NewClient(token string) (*Client, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram client: %w", err)
	}

	return &Client{
		api:     api,
		limiter: rate.NewLimiter(sendLimit, 1),
	}, nil
}

// Username returns the bot's own username.
func (c *Client) Username() string {
	return c.api.Self.UserName
}

// Updates starts long polling and returns the update channel.
func (c *Client) Updates() tgbotapi.UpdatesChannel {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeoutSeconds
	return c.api.GetUpdatesChan(u)
}

// StopPolling stops the long poll loop; the update channel closes after
// the in-flight request returns.
func (c *Client) StopPolling() {
	c.api.StopReceivingUpdates()
}

// SendMessage sends a plain direct message.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	return c.send(ctx, tgbotapi.NewMessage(chatID, text))
}

// SendBookPrompt sends text with a book button for the shift at rowIndex.
func (c *Client) SendBookPrompt(ctx context.Context, chatID int64, text string, rowIndex int) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = actionKeyboard("Book this shift", BookCallbackData(rowIndex))
	return c.send(ctx, msg)
}

// SendConfirmPrompt sends text with a confirm button for the shift at
// rowIndex.
func (c *Client) SendConfirmPrompt(ctx context.Context, chatID int64, text string, rowIndex int) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = actionKeyboard("Confirm booking", ConfirmCallbackData(rowIndex))
	return c.send(ctx, msg)
}

// EditMessageText replaces the text of a previously sent message, dropping
// any inline keyboard it carried.
func (c *Client) EditMessageText(ctx context.Context, chatID int64, messageID int, text string) error {
	return c.send(ctx, tgbotapi.NewEditMessageText(chatID, messageID, text))
}

// AnswerCallback acknowledges a callback query so the client stops showing
// a spinner. Must happen promptly regardless of how long the action takes.
func (c *Client) AnswerCallback(callbackID string) error {
	if _, err := c.api.Request(tgbotapi.NewCallback(callbackID, "")); err != nil {
		return fmt.Errorf("failed to answer callback: %w", err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, msg tgbotapi.Chattable) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("send rate wait interrupted: %w", err)
	}
	if _, err := c.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

func actionKeyboard(label, callbackData string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, callbackData),
		),
	)
}
