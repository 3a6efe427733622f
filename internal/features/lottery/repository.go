// Package lottery — repository.go выполняет операции с таблицами
// lottery_round и lottery_tickets.
package lottery

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dabhouse.ru/dabcoin-bot/internal/common"
)

// Repository предоставляет методы для работы с раундом и билетами лотереи.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт новый репозиторий лотереи.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// GetRound возвращает текущий раунд (строка id=1, создаётся лениво).
func (r *Repository) GetRound(ctx context.Context) (*Round, error) {
	query := `SELECT id, prize, auto_start_time, updated_at FROM lottery_round WHERE id = 1`
	var round Round
	err := r.db.QueryRow(ctx, query).Scan(&round.ID, &round.Prize, &round.AutoStartTime, &round.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		if _, err := r.db.Exec(ctx, `INSERT INTO lottery_round (id) VALUES (1) ON CONFLICT (id) DO NOTHING`); err != nil {
			return nil, fmt.Errorf("ошибка создания раунда лотереи: %w", err)
		}
		return &Round{ID: 1}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения раунда лотереи: %w", err)
	}
	return &round, nil
}

// GetTicket возвращает билет пользователя в текущем раунде (nil — нет билета).
func (r *Repository) GetTicket(ctx context.Context, userID int64) (*Ticket, error) {
	query := `SELECT id, user_id, username, ticket_number, created_at FROM lottery_tickets WHERE user_id = $1`
	var t Ticket
	err := r.db.QueryRow(ctx, query, userID).Scan(&t.ID, &t.UserID, &t.Username, &t.Number, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения билета лотереи: %w", err)
	}
	return &t, nil
}

// ListTickets возвращает все билеты текущего раунда.
func (r *Repository) ListTickets(ctx context.Context) ([]*Ticket, error) {
	query := `SELECT id, user_id, username, ticket_number, created_at FROM lottery_tickets ORDER BY id`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения билетов лотереи: %w", err)
	}
	defer rows.Close()

	var tickets []*Ticket
	for rows.Next() {
		var t Ticket
		if err := rows.Scan(&t.ID, &t.UserID, &t.Username, &t.Number, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования билета лотереи: %w", err)
		}
		tickets = append(tickets, &t)
	}
	return tickets, rows.Err()
}

// AddTicket сохраняет билет пользователя с присвоенным номером.
// Если билет у пользователя уже есть (вставка попала в конфликт),
// возвращает common.ErrAlreadyHasTicket — вызывающий обязан вернуть деньги.
func (r *Repository) AddTicket(ctx context.Context, userID int64, username string, number int) error {
	query := `
		INSERT INTO lottery_tickets (user_id, username, ticket_number)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO NOTHING
	`
	ct, err := r.db.Exec(ctx, query, userID, username, number)
	if err != nil {
		return fmt.Errorf("ошибка сохранения билета лотереи: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return common.ErrAlreadyHasTicket
	}
	return nil
}

// SetPrize фиксирует призовой фонд раунда.
func (r *Repository) SetPrize(ctx context.Context, prize int64) error {
	query := `
		INSERT INTO lottery_round (id, prize)
		VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE
		SET prize = $1, updated_at = NOW()
	`
	if _, err := r.db.Exec(ctx, query, prize); err != nil {
		return fmt.Errorf("ошибка записи призового фонда: %w", err)
	}
	return nil
}

// ResetRound завершает раунд: удаляет билеты и сбрасывает призовой фонд.
// Время автостарта сохраняется — оно действует для следующих раундов.
func (r *Repository) ResetRound(ctx context.Context) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM lottery_tickets`); err != nil {
		return fmt.Errorf("ошибка удаления билетов лотереи: %w", err)
	}
	if _, err := tx.Exec(ctx, `UPDATE lottery_round SET prize = NULL, updated_at = NOW() WHERE id = 1`); err != nil {
		return fmt.Errorf("ошибка сброса призового фонда: %w", err)
	}

	return tx.Commit(ctx)
}

// SetAutoStartTime сохраняет время автостарта розыгрыша ("ЧЧ:ММ").
func (r *Repository) SetAutoStartTime(ctx context.Context, hhmm string) error {
	query := `
		INSERT INTO lottery_round (id, auto_start_time)
		VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE
		SET auto_start_time = $1, updated_at = NOW()
	`
	if _, err := r.db.Exec(ctx, query, hhmm); err != nil {
		return fmt.Errorf("ошибка записи времени автостарта: %w", err)
	}
	return nil
}
