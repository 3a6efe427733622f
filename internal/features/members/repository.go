// Package members — repository.go выполняет операции с таблицей members.
package members

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dabhouse.ru/dabcoin-bot/internal/common"
)

// Repository предоставляет методы для работы с участниками.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт новый репозиторий участников.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Create сохраняет нового участника.
func (r *Repository) Create(ctx context.Context, m *Member) error {
	query := `
		INSERT INTO members (user_id, username, first_name, last_name, joined_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (user_id) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, m.UserID, m.Username, m.FirstName, m.LastName)
	if err != nil {
		return fmt.Errorf("ошибка создания участника: %w", err)
	}
	return nil
}

// GetByUserID возвращает участника по его Telegram user ID.
func (r *Repository) GetByUserID(ctx context.Context, userID int64) (*Member, error) {
	query := `
		SELECT id, user_id, username, first_name, last_name, joined_at, created_at, updated_at
		FROM members
		WHERE user_id = $1
	`
	var m Member
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&m.ID, &m.UserID, &m.Username, &m.FirstName, &m.LastName,
		&m.JoinedAt, &m.CreatedAt, &m.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка получения участника: %w", err)
	}
	return &m, nil
}

// GetByUsername возвращает участника по @username (без @, без учёта регистра).
func (r *Repository) GetByUsername(ctx context.Context, username string) (*Member, error) {
	query := `
		SELECT id, user_id, username, first_name, last_name, joined_at, created_at, updated_at
		FROM members
		WHERE LOWER(username) = $1
	`
	var m Member
	err := r.db.QueryRow(ctx, query, strings.ToLower(username)).Scan(
		&m.ID, &m.UserID, &m.Username, &m.FirstName, &m.LastName,
		&m.JoinedAt, &m.CreatedAt, &m.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка поиска по username: %w", err)
	}
	return &m, nil
}

// Exists проверяет, есть ли участник в базе.
func (r *Repository) Exists(ctx context.Context, userID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM members WHERE user_id = $1)`
	var exists bool
	err := r.db.QueryRow(ctx, query, userID).Scan(&exists)
	return exists, err
}

// UpdateInfo обновляет отображаемые данные участника.
func (r *Repository) UpdateInfo(ctx context.Context, userID int64, info UpdateInfo) error {
	query := `
		UPDATE members
		SET username = $2, first_name = $3, last_name = $4, updated_at = NOW()
		WHERE user_id = $1
	`
	_, err := r.db.Exec(ctx, query, userID, info.Username, info.FirstName, info.LastName)
	if err != nil {
		return fmt.Errorf("ошибка обновления участника: %w", err)
	}
	return nil
}
