package components

import (
	"playpal-booking/internal/handler"
	"playpal-booking/internal/handler/api"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewBookingHandler,
		api.NewSlotHandler,
	),
	fx.Invoke(handler.NewRouter),
)
