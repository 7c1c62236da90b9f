// Package notify sends operator alerts when the daily cycle degrades or recovers.
package notify

import (
	"context"
	"fmt"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier receives cycle health transitions.
type Notifier interface {
	CycleFailed(ctx context.Context, err error) error
	CycleRecovered(ctx context.Context, failures int) error
}

// Nop discards every notification.
type Nop struct{}

func (Nop) CycleFailed(context.Context, error) error  { return nil }
func (Nop) CycleRecovered(context.Context, int) error { return nil }

// Sender is the part of the bot API used here.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram posts plain-text alerts to one chat.
type Telegram struct {
	bot            Sender
	chatID         int64
	service        string
	maxRetries     int
	retryDelayBase time.Duration
}

// NewTelegram connects to the bot API. chatID is the numeric chat id.
func NewTelegram(botToken, chatID, service string) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}
	return NewTelegramWithSender(bot, chatID, service)
}

func NewTelegramWithSender(bot Sender, chatID, service string) (*Telegram, error) {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat ID: %w", err)
	}
	return &Telegram{
		bot:            bot,
		chatID:         id,
		service:        service,
		maxRetries:     3,
		retryDelayBase: time.Second,
	}, nil
}

func (t *Telegram) CycleFailed(ctx context.Context, err error) error {
	return t.send(ctx, fmt.Sprintf("⚠️ %s: daily cycle failed\n\n%v", t.service, err))
}

func (t *Telegram) CycleRecovered(ctx context.Context, failures int) error {
	return t.send(ctx, fmt.Sprintf("✅ %s: daily cycle recovered after %d failed run(s)", t.service, failures))
}

func (t *Telegram) send(ctx context.Context, text string) error {
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.DisableWebPagePreview = true

	var lastErr error
	for i := 0; i < t.maxRetries; i++ {
		if _, err := t.bot.Send(msg); err == nil {
			return nil
		} else {
			lastErr = err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(t.retryDelayBase * time.Duration(i+1)):
		}
	}
	return fmt.Errorf("failed to send message after %d retries: %w", t.maxRetries, lastErr)
}
