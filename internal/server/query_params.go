package server

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/dashboard/pkg/db/pagination"
)

type listQuery struct {
	pagination.Pagination
	Query string `form:"query"`
}

// bindListQuery reads ?query=&page=. A missing or unparseable page is page 1.
func bindListQuery(c *gin.Context) listQuery {
	q := listQuery{Query: strings.TrimSpace(c.Query("query"))}
	if page, err := strconv.Atoi(strings.TrimSpace(c.Query("page"))); err == nil {
		q.Page = page
	}
	q.Pagination = q.Pagination.Normalize()
	return q
}

// cacheKey identifies one rendered list page within its route.
func (q listQuery) cacheKey() string {
	values := url.Values{}
	values.Set("query", strings.ToLower(q.Query))
	values.Set("page", strconv.Itoa(q.Page))
	return values.Encode()
}
