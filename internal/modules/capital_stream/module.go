package capital_stream

import (
	"daily_trader/internal/modules/capital_stream/service"

	"go.uber.org/fx"
)

// Module стрим котировок Capital.com. Запускает его команда watch.
func Module() fx.Option {
	return fx.Module("capital_stream",
		fx.Provide(
			service.NewClient,
		),
	)
}
