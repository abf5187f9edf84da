package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsDuplicate(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}

	err := asDuplicate(fmt.Errorf("exec: %w", pgErr))
	require.True(t, errors.Is(err, ErrDuplicate))

	var dup *DuplicateError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "users_email_key", dup.Constraint)

	wrapped := fmt.Errorf("create user: %w", err)
	assert.True(t, errors.Is(wrapped, ErrDuplicate))
}

func TestAsDuplicateLeavesOtherErrors(t *testing.T) {
	fk := &pgconn.PgError{Code: "23503", ConstraintName: "reviews_title_id_fkey"}
	assert.Same(t, fk, asDuplicate(fk))

	plain := errors.New("connection reset")
	assert.Equal(t, plain, asDuplicate(plain))
	assert.False(t, errors.Is(asDuplicate(plain), ErrDuplicate))
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%drama%", likePattern("drama"))
	assert.Equal(t, `%100\%%`, likePattern("100%"))
	assert.Equal(t, `%a\_b%`, likePattern("a_b"))
	assert.Equal(t, `%c:\\d%`, likePattern(`c:\d`))
}

func TestTitleFilterWhere(t *testing.T) {
	clause, args := TitleFilter{}.where()
	assert.Empty(t, clause)
	assert.Empty(t, args)

	clause, args = TitleFilter{Genre: "drama", Category: "film", Name: "sol", Year: 1972}.where()
	assert.Contains(t, clause, "WHERE")
	assert.Len(t, args, 4)
}
