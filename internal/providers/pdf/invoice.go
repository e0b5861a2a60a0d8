package pdf

import (
	"context"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// InvoiceData is the pre-formatted content of one invoice document.
type InvoiceData struct {
	Title         string
	InvoiceNumber string
	IssueDate     string
	Status        string

	BillToName  string
	BillToEmail string

	Amount string
}

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

func (p *PDFProvider) Invoice(ctx context.Context, invoice InvoiceData) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	title := invoice.Title
	if title == "" {
		title = "Invoice"
		if strings.EqualFold(invoice.Status, "paid") {
			title = "Receipt"
		}
	}

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(14,
		text.NewCol(12, title, props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	m.AddRow(16,
		col.New(6).Add(
			text.New("Invoice number: "+invoice.InvoiceNumber, props.Text{Top: 0}),
			text.New("Date of issue: "+invoice.IssueDate, props.Text{Top: 4}),
			text.New("Status: "+strings.ToUpper(invoice.Status), props.Text{Top: 8}),
		),
		col.New(6),
	)

	m.AddRow(20,
		col.New(6).Add(
			text.New("Bill to", props.Text{Style: fontstyle.Bold}),
			text.New(invoice.BillToName, props.Text{Top: 5}),
			text.New(invoice.BillToEmail, props.Text{Top: 9}),
		),
		col.New(6),
	)

	m.AddRow(10,
		text.NewCol(8, "Description", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(4, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)
	m.AddRow(2, line.NewCol(12))
	m.AddRow(10,
		text.NewCol(8, "Services", props.Text{Size: 9}),
		text.NewCol(4, invoice.Amount, props.Text{Size: 9, Align: align.Right}),
	)

	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Amount due", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, amountDue(invoice), props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}

func amountDue(invoice InvoiceData) string {
	if strings.EqualFold(invoice.Status, "paid") {
		return "$0.00"
	}
	return invoice.Amount
}
