package response

import (
	"yamdb/internal/data/entity"
)

type TitleResponse struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Year        int                `json:"year"`
	Rating      *float64           `json:"rating"`
	Description *string            `json:"description"`
	Genre       []TaxonomyResponse `json:"genre"`
	Category    *TaxonomyResponse  `json:"category"`
}

func TitleToResponse(title *entity.Title) TitleResponse {
	resp := TitleResponse{
		ID:          title.ID.String(),
		Name:        title.Name,
		Year:        title.Year,
		Rating:      title.Rating,
		Description: title.Description,
		Genre:       TaxonomiesToResponse(title.Genres),
	}
	if title.Category != nil {
		category := TaxonomyToResponse(title.Category)
		resp.Category = &category
	}
	return resp
}
