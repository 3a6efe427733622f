// Package economy реализует валюту бота — дабкоины.
// models.go описывает структуры данных экономики.
package economy

import "time"

// Balance — счёт пользователя.
// Баланс создаётся лениво с нулём при первом обращении и НЕ ограничен
// снизу на уровне хранилища: проверка достаточности — обязанность
// вызывающего кода (Deduct/Transfer проверяют сами).
type Balance struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	Balance   int64     `db:"balance"`
	IsIgnored bool      `db:"is_ignored"` // исключён из таблицы лидеров
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Transaction — запись в журнале операций.
type Transaction struct {
	ID              int64     `db:"id"`
	FromUserID      *int64    `db:"from_user_id"`
	ToUserID        *int64    `db:"to_user_id"`
	Amount          int64     `db:"amount"`
	TransactionType string    `db:"transaction_type"`
	Description     string    `db:"description"`
	CreatedAt       time.Time `db:"created_at"`
}

// LeaderboardEntry — строка таблицы лидеров.
type LeaderboardEntry struct {
	UserID   int64  `db:"user_id"`
	Username string `db:"username"`
	Balance  int64  `db:"balance"`
}
