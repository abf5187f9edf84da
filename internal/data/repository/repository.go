package repository

import (
	"errors"
	"fmt"
	"strings"

	"yamdb/pkg/database"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	ErrDuplicate = errors.New("duplicate key")
	// ErrNotFound is returned by updates and deletes that matched no row.
	ErrNotFound = errors.New("record not found")
)

const uniqueViolationCode = "23505"

type Repository struct {
	User       UserRepository
	Code       ConfirmationCodeRepository
	Category   TaxonomyRepository
	Genre      TaxonomyRepository
	Title      TitleRepository
	TitleGenre TitleGenreRepository
	Review     ReviewRepository
	Comment    CommentRepository
	Throttle   SignupThrottle
}

func NewRepository(db database.PgxIface, rdb *redis.Client, log *zap.Logger) *Repository {
	return &Repository{
		User:       NewUserRepository(db, log),
		Code:       NewConfirmationCodeRepository(db, log),
		Category:   NewCategoryRepository(db, log),
		Genre:      NewGenreRepository(db, log),
		Title:      NewTitleRepository(db, log),
		TitleGenre: NewTitleGenreRepository(db, log),
		Review:     NewReviewRepository(db, log),
		Comment:    NewCommentRepository(db, log),
		Throttle:   NewSignupThrottle(rdb, log),
	}
}

// ListParams is the limit/offset/search triple shared by list queries.
type ListParams struct {
	Limit  int
	Offset int
	Search string
}

// scanner is satisfied by both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// DuplicateError reports the unique constraint a write violated. errors.Is matches ErrDuplicate.
type DuplicateError struct {
	Constraint string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s: %s", ErrDuplicate, e.Constraint)
}

func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicate
}

// asDuplicate converts a unique violation into a *DuplicateError, leaving other errors untouched.
func asDuplicate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return &DuplicateError{Constraint: pgErr.ConstraintName}
	}
	return err
}

// likePattern escapes LIKE wildcards so a search term matches literally.
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(term) + "%"
}
