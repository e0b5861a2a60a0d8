package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	customerdomain "github.com/smallbiznis/dashboard/internal/customer/domain"
	"github.com/smallbiznis/dashboard/internal/viewcache"
)

type listResponse[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	TotalPages int   `json:"total_pages"`
	TotalItems int64 `json:"total_items"`
}

func (s *Server) ListCustomers(c *gin.Context) {
	query := bindListQuery(c)
	resp, err := viewcache.Load(c.Request.Context(), s.views, viewcache.RouteCustomers, query.cacheKey(),
		func(ctx context.Context) (listResponse[customerdomain.CustomerSummary], error) {
			res, err := s.customerSvc.List(ctx, customerdomain.ListCustomerRequest{
				Query: query.Query,
				Page:  query.Page,
			})
			if err != nil {
				return listResponse[customerdomain.CustomerSummary]{}, err
			}
			items := res.Customers
			if items == nil {
				items = []customerdomain.CustomerSummary{}
			}
			return listResponse[customerdomain.CustomerSummary]{
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

func (s *Server) GetCustomerByID(c *gin.Context) {
	item, err := s.customerSvc.GetByID(c.Request.Context(), customerdomain.GetCustomerRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) CreateCustomer(c *gin.Context) {
	sess, _ := sessionFromContext(c)
	form, err := s.readForm(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	renderResult(c, s.actions.CreateCustomer(c.Request.Context(), sess, actionState(), form))
}

func (s *Server) UpdateCustomer(c *gin.Context) {
	sess, _ := sessionFromContext(c)
	form, err := s.readForm(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	id := strings.TrimSpace(c.Param("id"))
	renderResult(c, s.actions.UpdateCustomer(c.Request.Context(), sess, actionState(), form, id))
}

func (s *Server) DeleteCustomer(c *gin.Context) {
	sess, _ := sessionFromContext(c)
	id := strings.TrimSpace(c.Param("id"))
	renderResult(c, s.actions.DeleteCustomer(c.Request.Context(), sess, id))
}
