// Package games — repository.go выполняет операции с таблицей daily_claims.
package games

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository хранит отметки времени ежедневных наград.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт новый репозиторий игр.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// GetLastRedeemed возвращает время последней ежедневной награды.
// Если пользователь ещё не получал награду — возвращает nil.
func (r *Repository) GetLastRedeemed(ctx context.Context, userID int64) (*time.Time, error) {
	query := `SELECT last_redeemed_at FROM daily_claims WHERE user_id = $1`
	var t time.Time
	err := r.db.QueryRow(ctx, query, userID).Scan(&t)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения отметки ежедневной награды: %w", err)
	}
	return &t, nil
}

// MarkRedeemed фиксирует момент получения ежедневной награды.
func (r *Repository) MarkRedeemed(ctx context.Context, userID int64, at time.Time) error {
	query := `
		INSERT INTO daily_claims (user_id, last_redeemed_at)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE
		SET last_redeemed_at = $2
	`
	if _, err := r.db.Exec(ctx, query, userID, at); err != nil {
		return fmt.Errorf("ошибка записи отметки ежедневной награды: %w", err)
	}
	return nil
}
