package pdf

import (
	"context"

	"go.uber.org/fx"
)

// Provider renders a single invoice as a PDF document.
type Provider interface {
	Invoice(ctx context.Context, data InvoiceData) ([]byte, error)
}

var Module = fx.Module("providers.pdf",
	fx.Provide(New),
)
