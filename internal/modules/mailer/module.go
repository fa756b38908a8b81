package mailer

import (
	"daily_trader/internal/modules/mailer/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("mailer",
		fx.Provide(service.NewMailer),
	)
}
