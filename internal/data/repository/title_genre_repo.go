package repository

import (
	"context"
	"fmt"

	"yamdb/internal/data/entity"
	"yamdb/pkg/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TitleGenreRepository interface {
	// ReplaceForTitle sets the title's genres to exactly genreIDs.
	ReplaceForTitle(ctx context.Context, titleID uuid.UUID, genreIDs []uuid.UUID) error
	Create(ctx context.Context, link *entity.TitleGenre) error
	FindGenresByTitleID(ctx context.Context, titleID uuid.UUID) ([]*entity.Genre, error)
}

type titleGenreRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewTitleGenreRepository(db database.PgxIface, log *zap.Logger) TitleGenreRepository {
	return &titleGenreRepository{
		db:  db,
		log: log.With(zap.String("repository", "title_genre")),
	}
}

func (r *titleGenreRepository) ReplaceForTitle(ctx context.Context, titleID uuid.UUID, genreIDs []uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin replace title genres: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM title_genres WHERE title_id = $1`, titleID); err != nil {
		r.log.Error("Failed to delete title_genres",
			zap.Error(err),
			zap.String("title_id", titleID.String()),
		)
		return fmt.Errorf("delete title_genres: %w", err)
	}

	if len(genreIDs) > 0 {
		query := `INSERT INTO title_genres (title_id, genre_id) VALUES `
		args := []any{}
		for i, genreID := range genreIDs {
			if i > 0 {
				query += ", "
			}
			query += fmt.Sprintf("($%d, $%d)", i*2+1, i*2+2)
			args = append(args, titleID, genreID)
		}
		query += ` ON CONFLICT DO NOTHING`

		if _, err := tx.Exec(ctx, query, args...); err != nil {
			r.log.Error("Failed to create batch title_genres",
				zap.Error(err),
				zap.Int("count", len(genreIDs)),
			)
			return fmt.Errorf("create batch title_genres: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit title genres: %w", err)
	}

	return nil
}

func (r *titleGenreRepository) Create(ctx context.Context, link *entity.TitleGenre) error {
	query := `INSERT INTO title_genres (title_id, genre_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`

	if _, err := r.db.Exec(ctx, query, link.TitleID, link.GenreID); err != nil {
		r.log.Error("Failed to create title_genre",
			zap.Error(err),
			zap.String("title_id", link.TitleID.String()),
			zap.String("genre_id", link.GenreID.String()),
		)
		return fmt.Errorf("create title_genre: %w", err)
	}

	return nil
}

func (r *titleGenreRepository) FindGenresByTitleID(ctx context.Context, titleID uuid.UUID) ([]*entity.Genre, error) {
	query := `
		SELECT g.id, g.name, g.slug, g.created_at
		FROM genres g
		INNER JOIN title_genres tg ON g.id = tg.genre_id
		WHERE tg.title_id = $1
		ORDER BY g.name
	`

	rows, err := r.db.Query(ctx, query, titleID)
	if err != nil {
		r.log.Error("Failed to find genres by title ID",
			zap.Error(err),
			zap.String("title_id", titleID.String()),
		)
		return nil, fmt.Errorf("find genres by title id: %w", err)
	}
	defer rows.Close()

	genres := []*entity.Genre{}
	for rows.Next() {
		var genre entity.Genre
		if err := rows.Scan(&genre.ID, &genre.Name, &genre.Slug, &genre.CreatedAt); err != nil {
			r.log.Error("Failed to scan genre row", zap.Error(err))
			return nil, fmt.Errorf("scan genre row: %w", err)
		}
		genres = append(genres, &genre)
	}

	return genres, rows.Err()
}
