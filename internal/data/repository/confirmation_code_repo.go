package repository

import (
	"context"
	"errors"
	"fmt"

	"yamdb/internal/data/entity"
	"yamdb/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type ConfirmationCodeRepository interface {
	// Replace discards the account's unused codes and stores code in one transaction.
	Replace(ctx context.Context, code *entity.ConfirmationCode) error
	FindActive(ctx context.Context, userID uuid.UUID) (*entity.ConfirmationCode, error)
	// Consume marks the code used. It reports false when another caller consumed it first.
	Consume(ctx context.Context, id uuid.UUID) (bool, error)
}

type confirmationCodeRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewConfirmationCodeRepository(db database.PgxIface, log *zap.Logger) ConfirmationCodeRepository {
	return &confirmationCodeRepository{
		db:  db,
		log: log.With(zap.String("repository", "confirmation_code")),
	}
}

func (r *confirmationCodeRepository) Replace(ctx context.Context, code *entity.ConfirmationCode) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin replace code: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`DELETE FROM confirmation_codes WHERE user_id = $1 AND used_at IS NULL`,
		code.UserID,
	)
	if err != nil {
		r.log.Error("Failed to discard previous codes",
			zap.Error(err),
			zap.String("user_id", code.UserID.String()),
		)
		return fmt.Errorf("discard codes for %s: %w", code.UserID.String(), err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO confirmation_codes (id, user_id, code_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`,
		code.ID,
		code.UserID,
		code.CodeHash,
		code.ExpiresAt,
		code.CreatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create confirmation code",
			zap.Error(err),
			zap.String("user_id", code.UserID.String()),
		)
		return fmt.Errorf("create code for %s: %w", code.UserID.String(), err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit replace code: %w", err)
	}

	return nil
}

func (r *confirmationCodeRepository) FindActive(ctx context.Context, userID uuid.UUID) (*entity.ConfirmationCode, error) {
	query := `
		SELECT id, user_id, code_hash, expires_at, used_at, created_at
		FROM confirmation_codes
		WHERE user_id = $1
		  AND used_at IS NULL
		  AND expires_at > NOW()
		ORDER BY created_at DESC
		LIMIT 1
	`

	var code entity.ConfirmationCode
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&code.ID,
		&code.UserID,
		&code.CodeHash,
		&code.ExpiresAt,
		&code.UsedAt,
		&code.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find active code",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("find active code for %s: %w", userID.String(), err)
	}

	return &code, nil
}

func (r *confirmationCodeRepository) Consume(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE confirmation_codes
		SET used_at = NOW()
		WHERE id = $1 AND used_at IS NULL
	`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to consume code",
			zap.Error(err),
			zap.String("code_id", id.String()),
		)
		return false, fmt.Errorf("consume code %s: %w", id.String(), err)
	}

	return result.RowsAffected() == 1, nil
}
