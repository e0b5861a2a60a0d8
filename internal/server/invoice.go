package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/dashboard/internal/action"
	invoicedomain "github.com/smallbiznis/dashboard/internal/invoice/domain"
	"github.com/smallbiznis/dashboard/internal/viewcache"
)

func (s *Server) ListInvoices(c *gin.Context) {
	query := bindListQuery(c)
	resp, err := viewcache.Load(c.Request.Context(), s.views, viewcache.RouteInvoices, query.cacheKey(),
		func(ctx context.Context) (listResponse[invoicedomain.InvoiceView], error) {
			res, err := s.invoiceSvc.List(ctx, invoicedomain.ListInvoiceRequest{
				Query: query.Query,
				Page:  query.Page,
			})
			if err != nil {
				return listResponse[invoicedomain.InvoiceView]{}, err
			}
			items := res.Invoices
			if items == nil {
				items = []invoicedomain.InvoiceView{}
			}
			return listResponse[invoicedomain.InvoiceView]{
				Items:      items,
				Page:       res.Page,
				TotalPages: res.TotalPages,
				TotalItems: res.TotalItems,
			}, nil
		})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetInvoiceByID(c *gin.Context) {
	item, err := s.invoiceSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) CreateInvoice(c *gin.Context) {
	sess, _ := sessionFromContext(c)
	form, err := s.readForm(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	renderResult(c, s.actions.CreateInvoice(c.Request.Context(), sess, actionState(), form))
}

func (s *Server) UpdateInvoice(c *gin.Context) {
	sess, _ := sessionFromContext(c)
	form, err := s.readForm(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	id := strings.TrimSpace(c.Param("id"))
	renderResult(c, s.actions.UpdateInvoice(c.Request.Context(), sess, id, actionState(), form))
}

func (s *Server) DeleteInvoice(c *gin.Context) {
	sess, _ := sessionFromContext(c)
	id := strings.TrimSpace(c.Param("id"))
	renderResult(c, s.actions.DeleteInvoice(c.Request.Context(), sess, id))
}

// actionState is the prior form state handed to the orchestrator. Requests
// are stateless, so each submission starts from an empty state.
func actionState() action.State {
	return action.State{}
}
