package api

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const defaultPageSize = 10

type pageParams struct {
	Page  int
	Limit int
}

func pageParamsFrom(c *gin.Context) pageParams {
	p := pageParams{Page: 1, Limit: defaultPageSize}
	if v, err := strconv.Atoi(c.Query("page")); err == nil && v > 0 {
		p.Page = v
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		p.Limit = v
	}
	return p
}

func (p pageParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

type pageResponse struct {
	Count    int64       `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  interface{} `json:"results"`
}

// newPageResponse wraps results in the paginated envelope with next/previous
// links derived from the request URL.
func newPageResponse(c *gin.Context, count int64, p pageParams, results interface{}) pageResponse {
	resp := pageResponse{Count: count, Results: results}

	if int64(p.Page*p.Limit) < count {
		resp.Next = pageURL(c, p.Page+1)
	}
	if p.Page > 1 {
		resp.Previous = pageURL(c, p.Page-1)
	}
	return resp
}

func pageURL(c *gin.Context, page int) *string {
	u := *c.Request.URL
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	s := u.String()
	return &s
}
