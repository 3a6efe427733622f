// Package jackpot — repository.go выполняет операции с таблицами
// jackpot_pool и jackpot_tickets.
package jackpot

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dabhouse.ru/dabcoin-bot/internal/common"
)

// Repository предоставляет методы для работы с пулом и билетами джекпота.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт новый репозиторий джекпота.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// GetPool возвращает текущий размер пула (0, если строки ещё нет).
func (r *Repository) GetPool(ctx context.Context) (int64, error) {
	query := `SELECT amount FROM jackpot_pool WHERE id = 1`
	var amount int64
	err := r.db.QueryRow(ctx, query).Scan(&amount)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("ошибка чтения пула джекпота: %w", err)
	}
	return amount, nil
}

// AddToPool увеличивает пул на amount и возвращает новый размер.
func (r *Repository) AddToPool(ctx context.Context, amount int64) (int64, error) {
	query := `
		INSERT INTO jackpot_pool (id, amount)
		VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE
		SET amount = jackpot_pool.amount + $1, updated_at = NOW()
		RETURNING amount
	`
	var newAmount int64
	if err := r.db.QueryRow(ctx, query, amount).Scan(&newAmount); err != nil {
		return 0, fmt.Errorf("ошибка пополнения пула джекпота: %w", err)
	}
	return newAmount, nil
}

// TakePool атомарно снимает ВЕСЬ пул и обнуляет его.
// Строка пула блокируется FOR UPDATE, чтобы два одновременных выигрыша
// не сняли одну и ту же сумму.
func (r *Repository) TakePool(ctx context.Context) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	var amount int64
	err = tx.QueryRow(ctx, `SELECT amount FROM jackpot_pool WHERE id = 1 FOR UPDATE`).Scan(&amount)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("ошибка чтения пула джекпота: %w", err)
	}
	if amount == 0 {
		return 0, nil
	}

	_, err = tx.Exec(ctx, `UPDATE jackpot_pool SET amount = 0, updated_at = NOW() WHERE id = 1`)
	if err != nil {
		return 0, fmt.Errorf("ошибка обнуления пула джекпота: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return amount, nil
}

// HasTicket проверяет, есть ли у пользователя билет на текущий раунд.
func (r *Repository) HasTicket(ctx context.Context, userID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM jackpot_tickets WHERE user_id = $1)`
	var exists bool
	err := r.db.QueryRow(ctx, query, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ошибка проверки билета джекпота: %w", err)
	}
	return exists, nil
}

// AddTicket сохраняет билет пользователя.
// Если билет уже есть (вставка попала в конфликт), возвращает
// common.ErrAlreadyHasJackpotTicket — вызывающий обязан вернуть деньги.
func (r *Repository) AddTicket(ctx context.Context, userID int64, username string) error {
	query := `
		INSERT INTO jackpot_tickets (user_id, username)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO NOTHING
	`
	ct, err := r.db.Exec(ctx, query, userID, username)
	if err != nil {
		return fmt.Errorf("ошибка сохранения билета джекпота: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return common.ErrAlreadyHasJackpotTicket
	}
	return nil
}

// ListTickets возвращает все билеты текущего раунда.
func (r *Repository) ListTickets(ctx context.Context) ([]*Ticket, error) {
	query := `SELECT id, user_id, username, created_at FROM jackpot_tickets ORDER BY id`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения билетов джекпота: %w", err)
	}
	defer rows.Close()

	var tickets []*Ticket
	for rows.Next() {
		var t Ticket
		if err := rows.Scan(&t.ID, &t.UserID, &t.Username, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования билета джекпота: %w", err)
		}
		tickets = append(tickets, &t)
	}
	return tickets, rows.Err()
}

// ClearTickets удаляет все билеты после розыгрыша.
func (r *Repository) ClearTickets(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM jackpot_tickets`); err != nil {
		return fmt.Errorf("ошибка очистки билетов джекпота: %w", err)
	}
	return nil
}
