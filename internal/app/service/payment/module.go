package payment

import "go.uber.org/fx"

// Module exposes the payment engine via Fx.
var Module = fx.Options(
	fx.Provide(NewHookRegistry),
	fx.Provide(NewService),
)
