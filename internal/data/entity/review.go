package entity

import (
	"github.com/google/uuid"
)

type Review struct {
	ID uuid.UUID `db:"id"`
	Publication
	TitleID uuid.UUID `db:"title_id"`
	Score   int       `db:"score"` // 1-10
}

type Comment struct {
	ID uuid.UUID `db:"id"`
	Publication
	ReviewID uuid.UUID `db:"review_id"`
}
