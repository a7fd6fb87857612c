package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

var ErrNotConfigured = errors.New("telegram token/chat_id missing")

type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// Telegram pushes plain-text messages to a single chat.
type Telegram struct {
	bot    *tgbot.BotAPI
	chatID int64
}

func NewTelegram(token string, chatID int64) (*Telegram, error) {
	return NewTelegramWithEndpoint(token, chatID, tgbot.APIEndpoint, http.DefaultClient)
}

// NewTelegramWithEndpoint is NewTelegram against a custom Bot API endpoint,
// formatted like tgbot.APIEndpoint.
func NewTelegramWithEndpoint(token string, chatID int64, endpoint string, client tgbot.HTTPClient) (*Telegram, error) {
	if token == "" || chatID == 0 {
		return nil, ErrNotConfigured
	}
	b, err := tgbot.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	return &Telegram{bot: b, chatID: chatID}, nil
}

func (t *Telegram) Notify(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := t.bot.Send(tgbot.NewMessage(t.chatID, text)); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

// Log writes notifications to the logger instead of pushing them anywhere.
type Log struct {
	log zerolog.Logger
}

func NewLog(log zerolog.Logger) *Log { return &Log{log: log} }

func (l *Log) Notify(_ context.Context, text string) error {
	l.log.Info().Str("notifier", "log").Msg(text)
	return nil
}
