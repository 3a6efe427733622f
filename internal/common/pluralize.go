// Package common — pluralize.go содержит дополнительные утилиты
// форматирования сумм со знаком и чисел с разделителями.
// Основная логика плюрализации реализована в helpers.go.
package common

import "fmt"

// FormatDabcoinsAmount создаёт строку вида "+100 дабкоинов" или "-50 дабкоинов".
// Знак «+» или «-» добавляется автоматически.
func FormatDabcoinsAmount(amount int64) string {
	if amount >= 0 {
		return fmt.Sprintf("+%d %s", amount, PluralizeDabcoins(amount))
	}
	return fmt.Sprintf("%d %s", amount, PluralizeDabcoins(amount))
}

// FormatNumber форматирует число с разделителями тысяч (пробелами).
// Пример: FormatNumber(250000) → "250 000"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}

	// Рекурсивно добавляем разделители
	rest := n / 1000
	last := n % 1000

	if rest > 0 {
		return fmt.Sprintf("%s %03d", FormatNumber(rest), last)
	}
	return fmt.Sprintf("%d", last)
}
