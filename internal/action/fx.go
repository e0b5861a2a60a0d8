package action

import (
	"github.com/smallbiznis/dashboard/internal/assets"
	"github.com/smallbiznis/dashboard/internal/auth"
	"go.uber.org/fx"
)

var Module = fx.Module("action",
	fx.Provide(
		func(w *assets.Writer) ImageWriter { return w },
		func(b *auth.Bridge) CredentialsSignIn { return b },
		New,
	),
)
