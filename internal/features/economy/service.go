// Package economy — service.go содержит бизнес-логику экономики:
// валидация, переводы, начисления и списания, таблица лидеров.
package economy

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"dabhouse.ru/dabcoin-bot/internal/common"
)

// Store — операции хранилища, которые нужны сервису.
// Реализуется *Repository; в тестах подменяется in-memory фейком.
type Store interface {
	EnsureBalance(ctx context.Context, userID int64) error
	GetBalance(ctx context.Context, userID int64) (int64, error)
	Adjust(ctx context.Context, userID int64, delta int64, txType, description string) (int64, error)
	Deduct(ctx context.Context, userID int64, amount int64, txType, description string) error
	Transfer(ctx context.Context, fromUserID, toUserID, amount int64) error
	SetIgnored(ctx context.Context, userID int64, ignored bool) error
	IsIgnored(ctx context.Context, userID int64) (bool, error)
	Leaderboard(ctx context.Context) ([]*LeaderboardEntry, error)
	GetTransactions(ctx context.Context, userID int64, limit int) ([]*Transaction, error)
}

// Service управляет экономикой бота (дабкоины).
type Service struct {
	store Store
}

// NewService создаёт новый сервис экономики.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// GetBalance возвращает текущий баланс пользователя (0 для неизвестных).
func (s *Service) GetBalance(ctx context.Context, userID int64) (int64, error) {
	return s.store.GetBalance(ctx, userID)
}

// CreateBalance создаёт начальный счёт для нового участника (0 дабкоинов).
func (s *Service) CreateBalance(ctx context.Context, userID int64) error {
	return s.store.EnsureBalance(ctx, userID)
}

// AddBalance начисляет дабкоины пользователю.
// Используется для выигрышей, ежедневных наград и призов лотереи.
func (s *Service) AddBalance(ctx context.Context, userID int64, amount int64, txType, description string) error {
	if amount <= 0 {
		return common.ErrInvalidAmount
	}
	_, err := s.store.Adjust(ctx, userID, amount, txType, description)
	return err
}

// DeductBalance списывает дабкоины с проверкой достаточности.
// Используется для ставок и покупки билетов.
func (s *Service) DeductBalance(ctx context.Context, userID int64, amount int64, txType, description string) error {
	if amount <= 0 {
		return common.ErrInvalidAmount
	}
	return s.store.Deduct(ctx, userID, amount, txType, description)
}

// AdjustBalance изменяет баланс на произвольную величину (любого знака)
// и возвращает новый баланс. Привилегированная операция для админки:
// баланс НЕ ограничивается нулём.
func (s *Service) AdjustBalance(ctx context.Context, userID int64, delta int64, description string) (int64, error) {
	if delta == 0 {
		return 0, common.ErrInvalidAmount
	}
	newBalance, err := s.store.Adjust(ctx, userID, delta, "admin_adjust", description)
	if err != nil {
		return 0, err
	}

	log.WithFields(log.Fields{
		"user_id": userID,
		"delta":   delta,
		"balance": newBalance,
	}).Info("Баланс изменён администратором")

	return newBalance, nil
}

// Transfer переводит дабкоины от одного пользователя к другому.
// Проверки: нельзя себе, сумма положительная, у отправителя хватает средств
// (последнее — внутри хранилища, под блокировкой строки).
func (s *Service) Transfer(ctx context.Context, fromUserID, toUserID, amount int64) error {
	if fromUserID == toUserID {
		return common.ErrSelfTransfer
	}
	if amount <= 0 {
		return common.ErrInvalidAmount
	}

	if err := s.store.Transfer(ctx, fromUserID, toUserID, amount); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"from":   fromUserID,
		"to":     toUserID,
		"amount": amount,
	}).Info("Перевод выполнен")

	return nil
}

// SetIgnored скрывает пользователя из таблицы лидеров (или возвращает).
func (s *Service) SetIgnored(ctx context.Context, userID int64, ignored bool) error {
	return s.store.SetIgnored(ctx, userID, ignored)
}

// IsIgnored возвращает флаг скрытия из таблицы лидеров.
func (s *Service) IsIgnored(ctx context.Context, userID int64) (bool, error) {
	return s.store.IsIgnored(ctx, userID)
}

// Leaderboard возвращает нескрытые счета по убыванию баланса.
func (s *Service) Leaderboard(ctx context.Context) ([]*LeaderboardEntry, error) {
	return s.store.Leaderboard(ctx)
}

// GetTransactionHistory возвращает форматированную историю транзакций.
// Последние 10 операций. Если больше 5 — остаток оборачивается в спойлер.
func (s *Service) GetTransactionHistory(ctx context.Context, userID int64) (string, error) {
	transactions, err := s.store.GetTransactions(ctx, userID, 10)
	if err != nil {
		return "", err
	}

	if len(transactions) == 0 {
		return "📋 У вас пока нет транзакций", nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📋 Последние %d транзакций:\n\n", len(transactions)))

	var lines []string
	for i, tx := range transactions {
		// Знак: + если получили, - если отправили
		sign := "+"
		if tx.FromUserID != nil && *tx.FromUserID == userID {
			sign = "-"
		}

		line := fmt.Sprintf("%d. %s | %s%d %s | %s",
			i+1,
			common.FormatDateTime(tx.CreatedAt),
			sign,
			tx.Amount,
			common.PluralizeDabcoins(tx.Amount),
			tx.Description,
		)
		lines = append(lines, line)
	}

	if len(lines) > 5 {
		for _, line := range lines[:5] {
			sb.WriteString(line + "\n")
		}
		sb.WriteString("\n||")
		for _, line := range lines[5:] {
			sb.WriteString(line + "\n")
		}
		sb.WriteString("||")
	} else {
		for _, line := range lines {
			sb.WriteString(line + "\n")
		}
	}

	return sb.String(), nil
}
