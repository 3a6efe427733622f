// Package games — cooldown.go реализует проверку кулдауна ежедневной награды.
package games

import "time"

// CanRedeem проверяет, прошёл ли период с момента последнего получения.
// Если награда ещё не получалась (last == nil) — получать можно.
// Граница включительная: ровно через period получать уже можно.
func CanRedeem(last *time.Time, now time.Time, period time.Duration) bool {
	if last == nil {
		return true
	}
	return now.Sub(*last) >= period
}

// Remaining возвращает, сколько осталось ждать до следующей награды.
// Если ждать не нужно — возвращает 0.
func Remaining(last *time.Time, now time.Time, period time.Duration) time.Duration {
	if last == nil {
		return 0
	}
	rem := period - now.Sub(*last)
	if rem < 0 {
		return 0
	}
	return rem
}
