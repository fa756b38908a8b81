package notifier

import (
	"daily_trader/internal/modules/config"
	"daily_trader/internal/modules/notifier/service"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// New телеграм при наличии токена и чата, иначе лог.
// Недоступный телеграм не роняет команду.
func New(cfg *config.Config, log *zap.Logger) service.Notifier {
	if cfg.Telegram.Token == "" || cfg.Telegram.ChatID == 0 {
		return service.NewLog(log)
	}
	t, err := service.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID, "", log)
	if err != nil {
		log.Warn("telegram unavailable, notifications go to log", zap.Error(err))
		return service.NewLog(log)
	}
	return t
}

func Module() fx.Option {
	return fx.Module("notifier",
		fx.Provide(
			New,
		),
	)
}
