// Package lottery реализует лотерею с номерными билетами.
// models.go описывает структуры данных лотереи.
package lottery

import "time"

// TicketNumberSpace — верхняя граница номеров билетов.
// Номера разыгрываются из 1..TicketNumberSpace включительно.
const TicketNumberSpace = 100000

// Round — текущий раунд лотереи (единственная строка в таблице).
// Prize заполняется при первой покупке билета и сбрасывается после
// розыгрыша. AutoStartTime — время автостарта "ЧЧ:ММ" (nil — выключен),
// сохраняется между раундами.
type Round struct {
	ID            int64     `db:"id"`
	Prize         *int64    `db:"prize"`
	AutoStartTime *string   `db:"auto_start_time"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// Ticket — купленный билет с присвоенным номером.
type Ticket struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	Username  string    `db:"username"`
	Number    int       `db:"ticket_number"`
	CreatedAt time.Time `db:"created_at"`
}

// PurchaseResult — результат покупки билета лотереи.
type PurchaseResult struct {
	Number int   // присвоенный номер
	Prize  int64 // текущий призовой фонд раунда
}

// DrawResult — результат розыгрыша лотереи.
type DrawResult struct {
	WinningNumber int
	Winner        *Ticket // nil — выигрышный номер никому не достался
	Prize         int64
	Tickets       int
}
