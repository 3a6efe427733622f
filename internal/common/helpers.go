// Package common содержит общие утилиты, используемые во всём проекте.
// Сюда входят: русская плюрализация, форматирование чисел и времени.
package common

import (
	"fmt"
	"math"
	"time"
)

// PluralizeDabcoins возвращает правильную форму слова «дабкоин» для числа n.
//
// Правила русского языка:
//   - n%10==1 И n%100!=11 → "дабкоин" (1, 21, 31, 101, ...)
//   - n%10 в [2,4] И n%100 НЕ в [12,14] → "дабкоина" (2, 3, 4, 22, 23, ...)
//   - Остальные случаи → "дабкоинов" (0, 5-20, 25-30, 100, ...)
func PluralizeDabcoins(n int64) string {
	absN := int64(math.Abs(float64(n)))
	lastDigit := absN % 10
	lastTwoDigits := absN % 100

	if lastDigit == 1 && lastTwoDigits != 11 {
		return "дабкоин"
	}
	if lastDigit >= 2 && lastDigit <= 4 && (lastTwoDigits < 12 || lastTwoDigits > 14) {
		return "дабкоина"
	}
	return "дабкоинов"
}

// FormatBalance форматирует сумму в читабельную строку.
// Пример: FormatBalance(150) → "150 дабкоинов"
func FormatBalance(balance int64) string {
	return fmt.Sprintf("%s %s", FormatNumber(balance), PluralizeDabcoins(balance))
}

// PluralizeTickets возвращает правильную форму слова «билет».
func PluralizeTickets(n int) string {
	absN := int(math.Abs(float64(n)))
	lastDigit := absN % 10
	lastTwoDigits := absN % 100

	if lastDigit == 1 && lastTwoDigits != 11 {
		return "билет"
	}
	if lastDigit >= 2 && lastDigit <= 4 && (lastTwoDigits < 12 || lastTwoDigits > 14) {
		return "билета"
	}
	return "билетов"
}

// FormatDuration форматирует длительность в виде "5 ч 13 мин".
// Длительности меньше минуты округляются вверх до "1 мин".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	totalMinutes := int(math.Ceil(d.Minutes()))
	if totalMinutes < 1 {
		totalMinutes = 1
	}
	hours := totalMinutes / 60
	minutes := totalMinutes % 60

	if hours == 0 {
		return fmt.Sprintf("%d мин", minutes)
	}
	if minutes == 0 {
		return fmt.Sprintf("%d ч", hours)
	}
	return fmt.Sprintf("%d ч %d мин", hours, minutes)
}

// LocalTime возвращает текущее время в часовом поясе бота (Europe/Moscow).
// Используется для автостарта лотереи и дат транзакций.
func LocalTime() time.Time {
	loc, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		// Если не удалось загрузить — используем UTC+3 вручную
		loc = time.FixedZone("MSK", 3*60*60)
	}
	return time.Now().In(loc)
}

// FormatDateTime форматирует время в формат "02.01.2006 15:04".
// Используется для отображения дат транзакций.
func FormatDateTime(t time.Time) string {
	loc, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		loc = time.FixedZone("MSK", 3*60*60)
	}
	return t.In(loc).Format("02.01.2006 15:04")
}
