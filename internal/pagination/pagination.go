package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPageSize    = 5
	MaxPageSize        = 100
	PageQueryParam     = "page"
	PageSizeQueryParam = "page_size"
)

type Params struct {
	Page     int
	PageSize int
}

func FromQuery(c *gin.Context) Params {
	page, err := strconv.Atoi(c.Query(PageQueryParam))
	if err != nil || page < 1 {
		page = 1
	}
	size, err := strconv.Atoi(c.Query(PageSizeQueryParam))
	if err != nil || size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Params{Page: page, PageSize: size}
}

func (p Params) Offset() int { return (p.Page - 1) * p.PageSize }
func (p Params) Limit() int  { return p.PageSize }

type Page struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  any     `json:"results"`
}

// Envelope builds the paginated response body, with next/previous rendered
// as page URLs relative to the current request.
func Envelope(c *gin.Context, p Params, count int64, results any) Page {
	page := Page{Count: count, Results: results}

	if int64(p.Offset()+p.PageSize) < count {
		page.Next = pageURL(c, p, p.Page+1)
	}
	if p.Page > 1 {
		page.Previous = pageURL(c, p, p.Page-1)
	}
	return page
}

func pageURL(c *gin.Context, p Params, page int) *string {
	u := *c.Request.URL
	q := u.Query()
	q.Set(PageQueryParam, strconv.Itoa(page))
	q.Set(PageSizeQueryParam, strconv.Itoa(p.PageSize))
	u.RawQuery = q.Encode()
	s := u.String()
	return &s
}
