// Package economy — repository.go выполняет все операции с таблицами
// balances и transactions. Все денежные операции идут в транзакциях БД:
// чтение-изменение-запись одного счёта сериализуется через FOR UPDATE,
// поэтому параллельные обработчики не теряют обновления.
package economy

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dabhouse.ru/dabcoin-bot/internal/common"
)

// Repository предоставляет методы для работы с балансами и транзакциями.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт новый репозиторий экономики.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// EnsureBalance создаёт начальный счёт (0 дабкоинов), если его ещё нет.
func (r *Repository) EnsureBalance(ctx context.Context, userID int64) error {
	query := `
		INSERT INTO balances (user_id, balance)
		VALUES ($1, 0)
		ON CONFLICT (user_id) DO NOTHING
	`
	if _, err := r.db.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("ошибка создания счёта: %w", err)
	}
	return nil
}

// GetBalance возвращает текущий баланс пользователя.
// Для неизвестного пользователя возвращает 0 — счёт появится при первой записи.
func (r *Repository) GetBalance(ctx context.Context, userID int64) (int64, error) {
	query := `SELECT balance FROM balances WHERE user_id = $1`
	var balance int64
	err := r.db.QueryRow(ctx, query, userID).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("ошибка получения баланса: %w", err)
	}
	return balance, nil
}

// Adjust изменяет баланс на delta (любого знака) одной атомарной операцией
// и пишет запись в журнал. Счёт создаётся лениво. Баланс НЕ ограничивается
// нулём — за проверку достаточности отвечает вызывающий код.
func (r *Repository) Adjust(ctx context.Context, userID int64, delta int64, txType, description string) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	var newBalance int64
	err = tx.QueryRow(ctx, `
		INSERT INTO balances (user_id, balance)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE
		SET balance = balances.balance + $2, updated_at = NOW()
		RETURNING balance
	`, userID, delta).Scan(&newBalance)
	if err != nil {
		return 0, fmt.Errorf("ошибка изменения баланса: %w", err)
	}

	if err := r.logTransaction(ctx, tx, userID, delta, txType, description); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return newBalance, nil
}

// Deduct списывает дабкоины со счёта с проверкой достаточности.
// Строка счёта блокируется FOR UPDATE, чтобы два списания не прошли
// по одному и тому же остатку.
func (r *Repository) Deduct(ctx context.Context, userID int64, amount int64, txType, description string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	var currentBalance int64
	err = tx.QueryRow(ctx, `
		SELECT balance FROM balances WHERE user_id = $1 FOR UPDATE
	`, userID).Scan(&currentBalance)
	if errors.Is(err, pgx.ErrNoRows) {
		// Счёта нет — баланс 0, списывать нечего
		return common.ErrInsufficientBalance
	}
	if err != nil {
		return fmt.Errorf("ошибка получения баланса: %w", err)
	}

	if currentBalance < amount {
		return common.ErrInsufficientBalance
	}

	_, err = tx.Exec(ctx, `
		UPDATE balances
		SET balance = balance - $2, updated_at = NOW()
		WHERE user_id = $1
	`, userID, amount)
	if err != nil {
		return fmt.Errorf("ошибка списания: %w", err)
	}

	if err := r.logTransaction(ctx, tx, userID, -amount, txType, description); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Transfer переводит дабкоины от одного пользователя к другому.
// Списание и зачисление выполняются в одной транзакции БД:
// либо оба прошли, либо ни одного — сумма балансов не меняется.
func (r *Repository) Transfer(ctx context.Context, fromUserID, toUserID, amount int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	var senderBalance int64
	err = tx.QueryRow(ctx, `
		SELECT balance FROM balances WHERE user_id = $1 FOR UPDATE
	`, fromUserID).Scan(&senderBalance)
	if errors.Is(err, pgx.ErrNoRows) {
		return common.ErrInsufficientBalance
	}
	if err != nil {
		return fmt.Errorf("отправитель не найден: %w", err)
	}

	if senderBalance < amount {
		return common.ErrInsufficientBalance
	}

	_, err = tx.Exec(ctx, `
		UPDATE balances
		SET balance = balance - $2, updated_at = NOW()
		WHERE user_id = $1
	`, fromUserID, amount)
	if err != nil {
		return fmt.Errorf("ошибка списания у отправителя: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO balances (user_id, balance)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE
		SET balance = balances.balance + $2, updated_at = NOW()
	`, toUserID, amount)
	if err != nil {
		return fmt.Errorf("ошибка зачисления получателю: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO transactions (from_user_id, to_user_id, amount, transaction_type, description)
		VALUES ($1, $2, $3, 'transfer', $4)
	`, fromUserID, toUserID, amount, fmt.Sprintf("Перевод %d дабкоинов", amount))
	if err != nil {
		return fmt.Errorf("ошибка записи транзакции: %w", err)
	}

	return tx.Commit(ctx)
}

// SetIgnored помечает счёт как скрытый из таблицы лидеров (или обратно).
func (r *Repository) SetIgnored(ctx context.Context, userID int64, ignored bool) error {
	query := `
		INSERT INTO balances (user_id, balance, is_ignored)
		VALUES ($1, 0, $2)
		ON CONFLICT (user_id) DO UPDATE
		SET is_ignored = $2, updated_at = NOW()
	`
	if _, err := r.db.Exec(ctx, query, userID, ignored); err != nil {
		return fmt.Errorf("ошибка изменения флага игнора: %w", err)
	}
	return nil
}

// IsIgnored возвращает флаг скрытия из таблицы лидеров.
func (r *Repository) IsIgnored(ctx context.Context, userID int64) (bool, error) {
	query := `SELECT is_ignored FROM balances WHERE user_id = $1`
	var ignored bool
	err := r.db.QueryRow(ctx, query, userID).Scan(&ignored)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("ошибка чтения флага игнора: %w", err)
	}
	return ignored, nil
}

// Leaderboard возвращает все нескрытые счета по убыванию баланса.
// При равных балансах порядок — по порядку создания счёта.
func (r *Repository) Leaderboard(ctx context.Context) ([]*LeaderboardEntry, error) {
	query := `
		SELECT b.user_id, COALESCE(m.username, ''), b.balance
		FROM balances b
		LEFT JOIN members m ON m.user_id = b.user_id
		WHERE NOT b.is_ignored
		ORDER BY b.balance DESC, b.id ASC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения таблицы лидеров: %w", err)
	}
	defer rows.Close()

	var entries []*LeaderboardEntry
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Username, &e.Balance); err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки лидеров: %w", err)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// GetTransactions возвращает последние N транзакций пользователя.
// Включает как входящие, так и исходящие операции.
func (r *Repository) GetTransactions(ctx context.Context, userID int64, limit int) ([]*Transaction, error) {
	query := `
		SELECT id, from_user_id, to_user_id, amount, transaction_type, description, created_at
		FROM transactions
		WHERE from_user_id = $1 OR to_user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения транзакций: %w", err)
	}
	defer rows.Close()

	var transactions []*Transaction
	for rows.Next() {
		var t Transaction
		err := rows.Scan(
			&t.ID, &t.FromUserID, &t.ToUserID,
			&t.Amount, &t.TransactionType, &t.Description, &t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования транзакции: %w", err)
		}
		transactions = append(transactions, &t)
	}
	return transactions, rows.Err()
}

// logTransaction пишет запись журнала внутри уже открытой транзакции.
// Знак delta определяет направление: + зачисление, - списание.
func (r *Repository) logTransaction(ctx context.Context, tx pgx.Tx, userID, delta int64, txType, description string) error {
	var err error
	if delta >= 0 {
		_, err = tx.Exec(ctx, `
			INSERT INTO transactions (to_user_id, amount, transaction_type, description)
			VALUES ($1, $2, $3, $4)
		`, userID, delta, txType, description)
	} else {
		_, err = tx.Exec(ctx, `
			INSERT INTO transactions (from_user_id, amount, transaction_type, description)
			VALUES ($1, $2, $3, $4)
		`, userID, -delta, txType, description)
	}
	if err != nil {
		return fmt.Errorf("ошибка записи транзакции: %w", err)
	}
	return nil
}
