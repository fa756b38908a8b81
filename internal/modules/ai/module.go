package ai

import (
	"daily_trader/internal/modules/ai/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("ai",
		fx.Provide(service.NewClient),
	)
}
