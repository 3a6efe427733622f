// Package jackpot реализует накопительный пул джекпота и розыгрыш
// среди держателей билетов. models.go описывает структуры и цены.
package jackpot

import "time"

// Ticket — билет на розыгрыш джекпота. У пользователя может быть
// не больше одного билета на раунд.
type Ticket struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	Username  string    `db:"username"`
	CreatedAt time.Time `db:"created_at"`
}

// PurchaseResult — результат покупки билета джекпота.
type PurchaseResult struct {
	Price int64 // заплаченная цена
	Pool  int64 // размер пула на момент покупки
}

// DrawResult — результат розыгрыша джекпота.
type DrawResult struct {
	WinnerID int64
	Winner   string
	Amount   int64
	Tickets  int // сколько билетов участвовало
}

// TicketPrice возвращает цену билета в зависимости от размера пула.
// Чем жирнее пул, тем дороже вход.
func TicketPrice(pool int64) int64 {
	switch {
	case pool < 10000:
		return 500
	case pool < 100000:
		return 1000
	default:
		return 2500
	}
}
