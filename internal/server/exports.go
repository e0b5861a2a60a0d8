package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	invoicedomain "github.com/smallbiznis/dashboard/internal/invoice/domain"
	"github.com/smallbiznis/dashboard/internal/invoice/format"
	"github.com/smallbiznis/dashboard/internal/providers/pdf"
	"github.com/smallbiznis/dashboard/internal/providers/spreadsheet"
)

const (
	mimePDF  = "application/pdf"
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

func (s *Server) RenderInvoicePDF(c *gin.Context) {
	ctx := c.Request.Context()
	item, err := s.invoiceSvc.GetByID(ctx, strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	doc, err := s.pdf.Invoice(ctx, invoicePDFData(item))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	attachment(c, "invoice-"+invoiceNumber(item.ID)+".pdf")
	c.Data(http.StatusOK, mimePDF, doc)
}

func (s *Server) ExportInvoices(c *gin.Context) {
	ctx := c.Request.Context()
	items, err := s.invoiceSvc.ListAll(ctx)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	table := spreadsheet.Table{
		Sheet:  "Invoices",
		Header: []string{"Invoice", "Customer", "Email", "Amount", "Status", "Date"},
		Rows:   make([][]any, 0, len(items)),
	}
	for _, item := range items {
		table.Rows = append(table.Rows, []any{
			invoiceNumber(item.ID),
			item.CustomerName,
			item.CustomerEmail,
			invoicedomain.FromCents(item.Amount).InexactFloat64(),
			string(item.Status),
			item.Date,
		})
	}

	s.writeWorkbook(c, "invoices.xlsx", table)
}

func (s *Server) ExportCustomers(c *gin.Context) {
	ctx := c.Request.Context()
	items, err := s.customerSvc.ListAll(ctx)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	table := spreadsheet.Table{
		Sheet:  "Customers",
		Header: []string{"ID", "Name", "Email", "Image", "Created"},
		Rows:   make([][]any, 0, len(items)),
	}
	for _, item := range items {
		table.Rows = append(table.Rows, []any{
			item.ID,
			item.Name,
			item.Email,
			item.ImageURL,
			item.CreatedAt.UTC().Format("2006-01-02"),
		})
	}

	s.writeWorkbook(c, "customers.xlsx", table)
}

func (s *Server) writeWorkbook(c *gin.Context, filename string, table spreadsheet.Table) {
	data, err := s.sheets.Build(c.Request.Context(), table)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	attachment(c, filename)
	c.Data(http.StatusOK, mimeXLSX, data)
}

func invoicePDFData(item invoicedomain.InvoiceView) pdf.InvoiceData {
	return pdf.InvoiceData{
		InvoiceNumber: invoiceNumber(item.ID),
		IssueDate:     format.Date(item.Date),
		Status:        string(item.Status),
		BillToName:    item.CustomerName,
		BillToEmail:   item.CustomerEmail,
		Amount:        format.Currency(item.Amount),
	}
}

// invoiceNumber is the short display form of an invoice id.
func invoiceNumber(id string) string {
	id = strings.ReplaceAll(id, "-", "")
	if len(id) > 8 {
		id = id[:8]
	}
	return strings.ToUpper(id)
}

func attachment(c *gin.Context, filename string) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
}
