package response

import (
	"yamdb/internal/data/entity"
)

type TaxonomyResponse struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func TaxonomyToResponse(tag *entity.Taxonomy) TaxonomyResponse {
	return TaxonomyResponse{
		Name: tag.Name,
		Slug: tag.Slug,
	}
}

func TaxonomiesToResponse(tags []*entity.Taxonomy) []TaxonomyResponse {
	out := make([]TaxonomyResponse, 0, len(tags))
	for _, tag := range tags {
		out = append(out, TaxonomyToResponse(tag))
	}
	return out
}
