// Package games — rps.go реализует камень-ножницы-бумага против бота.
package games

import (
	"math/rand"
	"strings"
)

// RPSChoice — ход в камень-ножницы-бумага.
type RPSChoice int

const (
	RPSRock RPSChoice = iota
	RPSPaper
	RPSScissors
)

// RPSOutcome — исход игры с точки зрения игрока.
type RPSOutcome int

const (
	RPSWin RPSOutcome = iota
	RPSLose
	RPSDraw
)

// String возвращает русское название хода.
func (c RPSChoice) String() string {
	switch c {
	case RPSRock:
		return "камень"
	case RPSPaper:
		return "бумага"
	case RPSScissors:
		return "ножницы"
	}
	return "?"
}

// Emoji возвращает эмодзи хода для сообщений.
func (c RPSChoice) Emoji() string {
	switch c {
	case RPSRock:
		return "🪨"
	case RPSPaper:
		return "📄"
	case RPSScissors:
		return "✂️"
	}
	return "❓"
}

// ParseRPSChoice разбирает ход игрока из текста команды.
// Принимает русские названия и их первые буквы.
func ParseRPSChoice(s string) (RPSChoice, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "камень", "к":
		return RPSRock, true
	case "бумага", "б":
		return RPSPaper, true
	case "ножницы", "н":
		return RPSScissors, true
	}
	return 0, false
}

// RPSResult — результат партии в камень-ножницы-бумага.
type RPSResult struct {
	Player     RPSChoice
	Bot        RPSChoice
	Outcome    RPSOutcome
	Bet        int64
	NewBalance int64
}

// PlayRPS разыгрывает партию: бот делает равновероятный ход.
func PlayRPS(rnd *rand.Rand, player RPSChoice) (RPSChoice, RPSOutcome) {
	botChoice := RPSChoice(rnd.Intn(3))
	if player == botChoice {
		return botChoice, RPSDraw
	}
	// Камень бьёт ножницы, ножницы бьют бумагу, бумага бьёт камень
	wins := map[RPSChoice]RPSChoice{
		RPSRock:     RPSScissors,
		RPSScissors: RPSPaper,
		RPSPaper:    RPSRock,
	}
	if wins[player] == botChoice {
		return botChoice, RPSWin
	}
	return botChoice, RPSLose
}
