package repository

import (
	"context"
	"errors"
	"fmt"

	"yamdb/internal/data/entity"
	"yamdb/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// TaxonomyRepository stores slugged tags. Categories and genres each get an instance bound to their table.
type TaxonomyRepository interface {
	Create(ctx context.Context, tag *entity.Taxonomy) error
	FindBySlug(ctx context.Context, slug string) (*entity.Taxonomy, error)
	FindBySlugs(ctx context.Context, slugs []string) ([]*entity.Taxonomy, error)
	FindAll(ctx context.Context, params ListParams) ([]*entity.Taxonomy, error)
	Count(ctx context.Context, search string) (int64, error)
	DeleteBySlug(ctx context.Context, slug string) error
}

type taxonomyRepository struct {
	db    database.PgxIface
	log   *zap.Logger
	table string
}

func NewCategoryRepository(db database.PgxIface, log *zap.Logger) TaxonomyRepository {
	return &taxonomyRepository{
		db:    db,
		log:   log.With(zap.String("repository", "category")),
		table: "categories",
	}
}

func NewGenreRepository(db database.PgxIface, log *zap.Logger) TaxonomyRepository {
	return &taxonomyRepository{
		db:    db,
		log:   log.With(zap.String("repository", "genre")),
		table: "genres",
	}
}

func (r *taxonomyRepository) Create(ctx context.Context, tag *entity.Taxonomy) error {
	query := `INSERT INTO ` + r.table + ` (id, name, slug, created_at) VALUES ($1, $2, $3, $4)`

	_, err := r.db.Exec(ctx, query,
		tag.ID,
		tag.Name,
		tag.Slug,
		tag.CreatedAt,
	)

	if err != nil {
		err = asDuplicate(err)
		if !errors.Is(err, ErrDuplicate) {
			r.log.Error("Failed to create tag",
				zap.Error(err),
				zap.String("slug", tag.Slug),
			)
		}
		return fmt.Errorf("create %s %s: %w", r.table, tag.Slug, err)
	}

	return nil
}

func (r *taxonomyRepository) FindBySlug(ctx context.Context, slug string) (*entity.Taxonomy, error) {
	query := `SELECT id, name, slug, created_at FROM ` + r.table + ` WHERE slug = $1`

	var tag entity.Taxonomy
	err := r.db.QueryRow(ctx, query, slug).Scan(
		&tag.ID,
		&tag.Name,
		&tag.Slug,
		&tag.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find tag by slug",
			zap.Error(err),
			zap.String("slug", slug),
		)
		return nil, fmt.Errorf("find %s by slug: %w", r.table, err)
	}

	return &tag, nil
}

// FindBySlugs returns the tags matching slugs; unknown slugs are simply absent from the result.
func (r *taxonomyRepository) FindBySlugs(ctx context.Context, slugs []string) ([]*entity.Taxonomy, error) {
	if len(slugs) == 0 {
		return []*entity.Taxonomy{}, nil
	}

	query := `SELECT id, name, slug, created_at FROM ` + r.table + ` WHERE slug = ANY($1) ORDER BY name`

	rows, err := r.db.Query(ctx, query, slugs)
	if err != nil {
		r.log.Error("Failed to find tags by slugs",
			zap.Error(err),
			zap.Strings("slugs", slugs),
		)
		return nil, fmt.Errorf("find %s by slugs: %w", r.table, err)
	}
	defer rows.Close()

	return r.collect(rows)
}

func (r *taxonomyRepository) FindAll(ctx context.Context, params ListParams) ([]*entity.Taxonomy, error) {
	query := `
		SELECT id, name, slug, created_at
		FROM ` + r.table + `
		WHERE ($1 = '' OR name ILIKE $2)
		ORDER BY name
		LIMIT $3 OFFSET $4
	`

	rows, err := r.db.Query(ctx, query, params.Search, likePattern(params.Search), params.Limit, params.Offset)
	if err != nil {
		r.log.Error("Failed to find tags",
			zap.Error(err),
			zap.Int("limit", params.Limit),
			zap.Int("offset", params.Offset),
		)
		return nil, fmt.Errorf("find all %s: %w", r.table, err)
	}
	defer rows.Close()

	return r.collect(rows)
}

func (r *taxonomyRepository) Count(ctx context.Context, search string) (int64, error) {
	query := `SELECT COUNT(*) FROM ` + r.table + ` WHERE ($1 = '' OR name ILIKE $2)`

	var count int64
	if err := r.db.QueryRow(ctx, query, search, likePattern(search)).Scan(&count); err != nil {
		r.log.Error("Failed to count tags", zap.Error(err))
		return 0, fmt.Errorf("count %s: %w", r.table, err)
	}

	return count, nil
}

func (r *taxonomyRepository) DeleteBySlug(ctx context.Context, slug string) error {
	query := `DELETE FROM ` + r.table + ` WHERE slug = $1`

	result, err := r.db.Exec(ctx, query, slug)
	if err != nil {
		r.log.Error("Failed to delete tag",
			zap.Error(err),
			zap.String("slug", slug),
		)
		return fmt.Errorf("delete %s %s: %w", r.table, slug, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("delete %s %s: %w", r.table, slug, ErrNotFound)
	}

	r.log.Info("Tag deleted", zap.String("slug", slug))
	return nil
}

func (r *taxonomyRepository) collect(rows pgx.Rows) ([]*entity.Taxonomy, error) {
	tags := []*entity.Taxonomy{}
	for rows.Next() {
		var tag entity.Taxonomy
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.Slug, &tag.CreatedAt); err != nil {
			r.log.Error("Failed to scan tag row", zap.Error(err))
			return nil, fmt.Errorf("scan %s row: %w", r.table, err)
		}
		tags = append(tags, &tag)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s rows: %w", r.table, err)
	}

	return tags, nil
}
