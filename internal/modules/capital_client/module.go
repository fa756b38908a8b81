package capital_client

import (
	"daily_trader/internal/modules/capital_client/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("capital_client",
		fx.Provide(
			service.NewClient,
		),
	)
}
