package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Notifier короткие сводки по запуску. Ошибки отправки только логируются.
type Notifier interface {
	SendF(ctx context.Context, format string, args ...any)
}

type Telegram struct {
	bot    *tgbot.BotAPI
	chatID int64
	log    *zap.Logger
}

// NewTelegram endpoint пустой = api.telegram.org.
func NewTelegram(token string, chatID int64, endpoint string, log *zap.Logger) (*Telegram, error) {
	if endpoint == "" {
		endpoint = tgbot.APIEndpoint
	}
	b, err := tgbot.NewBotAPIWithClient(token, endpoint, &http.Client{Timeout: 10 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	return &Telegram{bot: b, chatID: chatID, log: log.Named("telegram")}, nil
}

func (t *Telegram) Send(_ context.Context, msg string) {
	if t == nil || t.bot == nil || t.chatID == 0 {
		return
	}
	if _, err := t.bot.Send(tgbot.NewMessage(t.chatID, msg)); err != nil {
		t.log.Warn("send failed", zap.Error(err))
	}
}

func (t *Telegram) SendF(ctx context.Context, format string, args ...any) {
	t.Send(ctx, fmt.Sprintf(format, args...))
}

// Log пишет сводки в лог, когда телеграм не настроен.
type Log struct {
	log *zap.Logger
}

func NewLog(log *zap.Logger) *Log { return &Log{log: log.Named("notify")} }

func (l *Log) SendF(_ context.Context, format string, args ...any) {
	l.log.Info(fmt.Sprintf(format, args...))
}
