// Package members управляет участниками чата.
// models.go описывает структуры данных участника.
//
// ВАЖНО: единственный канонический идентификатор пользователя во всём
// боте — Telegram user ID (int64). Username хранится только для
// отображения и поиска получателя перевода; балансы и билеты никогда
// не ключуются по нему.
package members

import "time"

// Member — участник чата.
type Member struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	Username  string    `db:"username"`
	FirstName string    `db:"first_name"`
	LastName  string    `db:"last_name"`
	JoinedAt  time.Time `db:"joined_at"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// UpdateInfo — поля, обновляемые при повторном появлении участника.
type UpdateInfo struct {
	Username  string
	FirstName string
	LastName  string
}

// DisplayName возвращает имя для сообщений: @username, если он есть,
// иначе имя и фамилию.
func (m *Member) DisplayName() string {
	if m.Username != "" {
		return "@" + m.Username
	}
	if m.LastName != "" {
		return m.FirstName + " " + m.LastName
	}
	return m.FirstName
}
