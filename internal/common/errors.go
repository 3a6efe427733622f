// Package common — errors.go определяет доменные ошибки,
// которые используются во всех модулях бота.
// Обработчики различают их через errors.Is/errors.As
// и отправляют пользователю понятные сообщения.
package common

import (
	"errors"
	"fmt"
	"time"
)

// Ошибки экономики (дабкоины, переводы)
var (
	// ErrInsufficientBalance — недостаточно дабкоинов на счёте
	ErrInsufficientBalance = errors.New("недостаточно дабкоинов на счёте")
	// ErrSelfTransfer — попытка перевести дабкоины самому себе
	ErrSelfTransfer = errors.New("нельзя переводить дабкоины самому себе")
	// ErrInvalidAmount — некорректная сумма (ноль или отрицательная)
	ErrInvalidAmount = errors.New("сумма должна быть положительной")
	// ErrUserNotFound — пользователь не найден в базе
	ErrUserNotFound = errors.New("пользователь не найден")
)

// Ошибки розыгрышей
var (
	// ErrAlreadyHasTicket — билет лотереи на этот раунд уже куплен
	ErrAlreadyHasTicket = errors.New("билет на этот розыгрыш уже куплен")
	// ErrAlreadyHasJackpotTicket — билет джекпота уже куплен
	ErrAlreadyHasJackpotTicket = errors.New("билет на джекпот уже куплен")
	// ErrInvalidTimeFormat — время автостарта не в формате ЧЧ:ММ
	ErrInvalidTimeFormat = errors.New("время должно быть в 24-часовом формате ЧЧ:ММ, например 15:00")
)

// Ошибки игр
var (
	// ErrBetTooSmall — ставка ниже минимальной
	ErrBetTooSmall = errors.New("ставка ниже минимальной")
	// ErrGamesDisabled — игры отключены в настройках
	ErrGamesDisabled = errors.New("игры временно отключены")
)

// Ошибки админки
var (
	// ErrNotAdmin — пользователь не входит в ADMIN_IDS
	ErrNotAdmin = errors.New("у вас нет прав администратора")
	// ErrWrongPassword — неверный пароль
	ErrWrongPassword = errors.New("неверный пароль")
	// ErrTooManyAttempts — слишком много неудачных попыток входа
	ErrTooManyAttempts = errors.New("слишком много попыток, подождите 1 час")
	// ErrSessionExpired — сессия истекла
	ErrSessionExpired = errors.New("сессия истекла, авторизуйтесь заново")
)

// CooldownError — ежедневная награда запрошена раньше времени.
// Несёт оставшееся время, чтобы обработчик показал его пользователю.
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("награда будет доступна через %s", FormatDuration(e.Remaining))
}
