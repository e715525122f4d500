package menu

import "go.uber.org/fx"

// Module exposes the menu resolver via Fx.
var Module = fx.Options(
	fx.Provide(NewBadgeRegistry),
	fx.Provide(NewService),
)
