package bootstrap

import (
	bootstrap "daily_trader/internal/modules/bootstrap/service"
	capital "daily_trader/internal/modules/capital_client/service"

	"go.uber.org/fx"
)

// Module подготовка и запуск команды watch.
func Module() fx.Option {
	return fx.Module("bootstrap",
		fx.Provide(
			func(c *capital.Client) bootstrap.PositionSource { return c },
			func(c *capital.Client) bootstrap.PriceSource { return c },
			bootstrap.NewWatchlist,
			bootstrap.NewWarmuper,
			bootstrap.NewWatcher,
		),
	)
}
