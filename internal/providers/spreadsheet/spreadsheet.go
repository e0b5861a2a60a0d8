package spreadsheet

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/fx"
)

// Table is one worksheet: a header row followed by data rows.
type Table struct {
	Sheet  string
	Header []string
	Rows   [][]any
}

type Provider interface {
	Build(ctx context.Context, table Table) ([]byte, error)
}

var Module = fx.Module("providers.spreadsheet",
	fx.Provide(New),
)

type excelProvider struct{}

func New() Provider {
	return &excelProvider{}
}

// Build writes table into a fresh workbook with a bold, frozen header row.
func (p *excelProvider) Build(ctx context.Context, table Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := table.Sheet
	if sheet == "" {
		sheet = "Sheet1"
	}
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	header := make([]any, len(table.Header))
	for i, h := range table.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}

	for i, row := range table.Rows {
		if i%500 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		row := row
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return nil, err
		}
	}

	if len(table.Header) > 0 {
		bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return nil, err
		}
		last, err := excelize.CoordinatesToCellName(len(table.Header), 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
			return nil, err
		}
		if err := f.SetPanes(sheet, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		}); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
