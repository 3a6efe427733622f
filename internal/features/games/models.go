// Package games реализует азартные игры бота: ежедневная награда,
// спин и камень-ножницы-бумага. models.go описывает таблицы призов.
package games

// PrizeTier — один уровень призовой таблицы.
type PrizeTier struct {
	Label  string // подпись для сообщений ("обычный", "высокий", "божественный")
	Amount int64
	Weight int
}

// PrizeTable — взвешенная таблица призов.
// Бросок идёт из [0, сумма весов), поэтому вероятность уровня — вес,
// делённый на сумму весов таблицы. Веса никогда не нормализуются.
// Fallback выдаётся только для таблицы с нулевой суммой весов.
type PrizeTable struct {
	Name     string
	Tiers    []PrizeTier
	Fallback PrizeTier
}

// Шансы вложенных таблиц спина (в процентах).
const (
	GodTierChance  = 3.0
	HighTierChance = 15.0
)

// DailyRewards — таблица ежедневной награды.
// Сумма весов 42: минимальный приз 50 выпадает с шансом 15/42,
// легендарный 10000 — 1/42.
var DailyRewards = PrizeTable{
	Name: "daily",
	Tiers: []PrizeTier{
		{Label: "обычный", Amount: 50, Weight: 15},
		{Label: "обычный", Amount: 100, Weight: 10},
		{Label: "редкий", Amount: 500, Weight: 8},
		{Label: "редкий", Amount: 1000, Weight: 5},
		{Label: "эпический", Amount: 5000, Weight: 3},
		{Label: "легендарный", Amount: 10000, Weight: 1},
	},
	Fallback: PrizeTier{Label: "обычный", Amount: 50, Weight: 0},
}

// GodTierPrizes — божественная таблица спина (3% шанс попадания).
var GodTierPrizes = PrizeTable{
	Name: "god",
	Tiers: []PrizeTier{
		{Label: "божественный", Amount: 1000000, Weight: 1},
		{Label: "божественный", Amount: 500000, Weight: 3},
		{Label: "божественный", Amount: 250000, Weight: 6},
	},
	Fallback: PrizeTier{Label: "божественный", Amount: 250000, Weight: 0},
}

// HighTierPrizes — высокая таблица спина (15% шанс попадания).
var HighTierPrizes = PrizeTable{
	Name: "high",
	Tiers: []PrizeTier{
		{Label: "высокий", Amount: 50000, Weight: 2},
		{Label: "высокий", Amount: 10000, Weight: 5},
		{Label: "высокий", Amount: 5000, Weight: 9},
		{Label: "высокий", Amount: 2500, Weight: 14},
		{Label: "высокий", Amount: 1250, Weight: 20},
		{Label: "высокий", Amount: 1000, Weight: 30},
	},
	Fallback: PrizeTier{Label: "высокий", Amount: 1000, Weight: 0},
}

// LowTierPrizes — обычная таблица спина (остальные ~82% бросков).
var LowTierPrizes = PrizeTable{
	Name: "low",
	Tiers: []PrizeTier{
		{Label: "обычный", Amount: 750, Weight: 2},
		{Label: "обычный", Amount: 500, Weight: 4},
		{Label: "обычный", Amount: 250, Weight: 7},
		{Label: "обычный", Amount: 100, Weight: 10},
		{Label: "обычный", Amount: 50, Weight: 13},
		{Label: "обычный", Amount: 25, Weight: 15},
		{Label: "обычный", Amount: 10, Weight: 16},
		{Label: "обычный", Amount: 5, Weight: 15},
		{Label: "обычный", Amount: 1, Weight: 10},
		{Label: "пусто", Amount: 0, Weight: 8},
	},
	Fallback: PrizeTier{Label: "пусто", Amount: 0, Weight: 0},
}

// ClaimResult — результат получения ежедневной награды.
type ClaimResult struct {
	Amount     int64
	IsJackpot  bool // награда заменена снятием всего пула джекпота
	Tier       string
	NewBalance int64
}

// SpinResult — результат спина.
type SpinResult struct {
	Cost       int64
	Prize      int64
	Tier       string
	Table      string
	NewBalance int64
}
