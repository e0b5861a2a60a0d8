package providers

import (
	"github.com/smallbiznis/dashboard/internal/providers/pdf"
	"github.com/smallbiznis/dashboard/internal/providers/spreadsheet"
	"go.uber.org/fx"
)

var Module = fx.Module("providers",
	pdf.Module,
	spreadsheet.Module,
)
