package entity

import (
	"github.com/google/uuid"
)

// Taxonomy is a named, slugged tag. Categories and genres share the shape.
type Taxonomy struct {
	BaseSimple
	Name string `db:"name"`
	Slug string `db:"slug"`
}

type (
	Category = Taxonomy
	Genre    = Taxonomy
)

type Title struct {
	Base
	Name        string     `db:"name"`
	Year        int        `db:"year"`
	Description *string    `db:"description"`
	CategoryID  *uuid.UUID `db:"category_id"`

	// read side
	Category *Category `db:"-"`
	Genres   []*Genre  `db:"-"`
	// Rating is the average review score, nil while the title has no reviews.
	Rating *float64 `db:"-"`
}
