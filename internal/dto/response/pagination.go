package response

import (
	"net/url"
	"strconv"
)

// PaginatedResponse is the limit/offset page envelope.
type PaginatedResponse[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`

	limit  int
	offset int
}

func NewPaginatedResponse[T any](results []T, total int64, limit, offset int) *PaginatedResponse[T] {
	if results == nil {
		results = []T{}
	}
	return &PaginatedResponse[T]{
		Count:   total,
		Results: results,
		limit:   limit,
		offset:  offset,
	}
}

// WithLinks fills Next and Previous relative to the request URL, keeping its other query parameters.
func (p *PaginatedResponse[T]) WithLinks(u *url.URL) *PaginatedResponse[T] {
	if p.limit <= 0 || u == nil {
		return p
	}

	if next := p.offset + p.limit; int64(next) < p.Count {
		link := pageLink(u, p.limit, next)
		p.Next = &link
	}

	if p.offset > 0 {
		prev := p.offset - p.limit
		if prev < 0 {
			prev = 0
		}
		link := pageLink(u, p.limit, prev)
		p.Previous = &link
	}

	return p
}

func pageLink(u *url.URL, limit, offset int) string {
	link := *u
	q := link.Query()
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	link.RawQuery = q.Encode()
	return link.String()
}
