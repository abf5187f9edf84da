package request

import (
	"net/url"
	"strings"

	"yamdb/pkg/utils"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// ListQuery is the limit/offset pagination and search term of list endpoints.
type ListQuery struct {
	Limit  int
	Offset int
	Search string
}

func ParseListQuery(values url.Values) ListQuery {
	q := ListQuery{
		Limit:  utils.ParseInt(values.Get("limit"), DefaultLimit),
		Offset: utils.ParseInt(values.Get("offset"), 0),
		Search: strings.TrimSpace(values.Get("search")),
	}
	return q.Normalize()
}

// Normalize clamps Limit to [1, MaxLimit] and Offset to >= 0.
func (q ListQuery) Normalize() ListQuery {
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return q
}
