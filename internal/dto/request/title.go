package request

import (
	"net/url"
	"strings"

	"yamdb/pkg/utils"
)

// CreateTitleRequest references its category and genres by slug.
type CreateTitleRequest struct {
	Name        string   `json:"name" validate:"required,max=256"`
	Year        int      `json:"year" validate:"required,pastyear"`
	Description *string  `json:"description"`
	Category    string   `json:"category" validate:"omitempty,slug"`
	Genre       []string `json:"genre" validate:"dive,slug"`
}

type UpdateTitleRequest struct {
	Name        *string   `json:"name" validate:"omitempty,max=256"`
	Year        *int      `json:"year" validate:"omitempty,pastyear"`
	Description *string   `json:"description"`
	Category    *string   `json:"category" validate:"omitempty,optslug"`
	Genre       *[]string `json:"genre" validate:"omitempty,dive,slug"`
}

type TitleQuery struct {
	ListQuery
	Genre    string
	Category string
	Name     string
	Year     int
}

func ParseTitleQuery(values url.Values) TitleQuery {
	return TitleQuery{
		ListQuery: ParseListQuery(values),
		Genre:     strings.TrimSpace(values.Get("genre")),
		Category:  strings.TrimSpace(values.Get("category")),
		Name:      strings.TrimSpace(values.Get("name")),
		Year:      utils.ParseInt(values.Get("year"), 0),
	}
}
