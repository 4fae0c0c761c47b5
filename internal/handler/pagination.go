package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"foodgram/internal/repository"
)

// PageResponse is the envelope of every paginated listing.
type PageResponse[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// Paginator reads page and limit query parameters.
type Paginator struct {
	DefaultSize int
	MaxSize     int
}

// Page returns the requested page, clamping limit to MaxSize.
func (p Paginator) Page(c echo.Context) repository.Page {
	number := queryInt(c, "page", 1)
	if number < 1 {
		number = 1
	}
	size := queryInt(c, "limit", p.DefaultSize)
	if size < 1 {
		size = p.DefaultSize
	}
	if p.MaxSize > 0 && size > p.MaxSize {
		size = p.MaxSize
	}
	return repository.Page{Number: number, Size: size}
}

// Envelope wraps results with absolute next and previous links.
func Envelope[T any](c echo.Context, page repository.Page, total int64, results []T) PageResponse[T] {
	if results == nil {
		results = []T{}
	}
	resp := PageResponse[T]{Count: total, Results: results}
	if int64(page.Offset()+len(results)) < total {
		resp.Next = pageURL(c, page.Number+1)
	}
	if page.Number > 1 {
		resp.Previous = pageURL(c, page.Number-1)
	}
	return resp
}

func pageURL(c echo.Context, number int) *string {
	req := c.Request()
	u := *req.URL
	q := u.Query()
	if number <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(number))
	}
	u.RawQuery = q.Encode()
	u.Scheme = c.Scheme()
	u.Host = req.Host
	s := u.String()
	return &s
}
