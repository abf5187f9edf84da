package request

// TaxonomyRequest creates a category or a genre.
type TaxonomyRequest struct {
	Name string `json:"name" validate:"required,max=256"`
	Slug string `json:"slug" validate:"required,max=50,slug"`
}
