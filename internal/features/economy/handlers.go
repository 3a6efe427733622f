// Package economy — handlers.go обрабатывает команды экономики:
// баланс, перевод, таблица лидеров, история транзакций.
package economy

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"dabhouse.ru/dabcoin-bot/internal/common"
	"dabhouse.ru/dabcoin-bot/internal/features/members"
)

// Handler обрабатывает Telegram-команды экономики.
type Handler struct {
	service *Service
	members *members.Service
	bot     *tgbotapi.BotAPI
}

// NewHandler создаёт новый обработчик команд экономики.
func NewHandler(service *Service, membersService *members.Service, bot *tgbotapi.BotAPI) *Handler {
	return &Handler{
		service: service,
		members: membersService,
		bot:     bot,
	}
}

// HandleBalance обрабатывает команду "баланс" [@username].
// Без аргумента — свой баланс, с аргументом — баланс указанного участника.
func (h *Handler) HandleBalance(ctx context.Context, message *tgbotapi.Message, args []string) {
	targetID := message.From.ID
	targetName := "Ваш"

	if len(args) > 0 {
		member, err := h.members.Resolve(ctx, args[0])
		if err != nil {
			if errors.Is(err, common.ErrUserNotFound) {
				h.sendMessage(message.Chat.ID, "❌ Пользователь не найден")
				return
			}
			log.WithError(err).Error("Ошибка поиска пользователя для баланса")
			h.sendMessage(message.Chat.ID, "❌ Произошла ошибка, попробуйте позже")
			return
		}
		targetID = member.UserID
		targetName = fmt.Sprintf("Баланс %s:", member.DisplayName())
	}

	balance, err := h.service.GetBalance(ctx, targetID)
	if err != nil {
		log.WithError(err).WithField("user_id", targetID).Error("Ошибка получения баланса")
		h.sendMessage(message.Chat.ID, "❌ Произошла ошибка, попробуйте позже")
		return
	}

	if targetID == message.From.ID {
		h.sendMessage(message.Chat.ID, fmt.Sprintf("💰 Ваш баланс: %s", common.FormatBalance(balance)))
	} else {
		h.sendMessage(message.Chat.ID, fmt.Sprintf("💰 %s %s", targetName, common.FormatBalance(balance)))
	}
}

// HandleTransfer обрабатывает команду "отсыпать @username сумма".
func (h *Handler) HandleTransfer(ctx context.Context, message *tgbotapi.Message, args []string) {
	if len(args) < 2 {
		h.sendMessage(message.Chat.ID, "Использование: отсыпать @username <сумма>")
		return
	}

	recipient, err := h.members.Resolve(ctx, args[0])
	if err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			h.sendMessage(message.Chat.ID, "❌ Получатель не найден")
			return
		}
		log.WithError(err).Error("Ошибка поиска получателя перевода")
		h.sendMessage(message.Chat.ID, "❌ Произошла ошибка, попробуйте позже")
		return
	}

	amount, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil || amount <= 0 {
		h.sendMessage(message.Chat.ID, "❌ Сумма должна быть положительным числом")
		return
	}

	err = h.service.Transfer(ctx, message.From.ID, recipient.UserID, amount)
	switch {
	case errors.Is(err, common.ErrSelfTransfer):
		h.sendMessage(message.Chat.ID, "🤡 Перевести самому себе нельзя")
		return
	case errors.Is(err, common.ErrInsufficientBalance):
		h.sendMessage(message.Chat.ID, "❌ Недостаточно дабкоинов для перевода")
		return
	case err != nil:
		log.WithError(err).WithFields(log.Fields{
			"from": message.From.ID,
			"to":   recipient.UserID,
		}).Error("Ошибка перевода")
		h.sendMessage(message.Chat.ID, "❌ Произошла ошибка, попробуйте позже")
		return
	}

	h.sendMessage(message.Chat.ID, fmt.Sprintf(
		"✅ Перевод выполнен: %s → %s",
		common.FormatBalance(amount),
		recipient.DisplayName(),
	))
}

// HandleLeaderboard обрабатывает команду "топ" — таблица лидеров по балансу.
func (h *Handler) HandleLeaderboard(ctx context.Context, message *tgbotapi.Message) {
	entries, err := h.service.Leaderboard(ctx)
	if err != nil {
		log.WithError(err).Error("Ошибка получения таблицы лидеров")
		h.sendMessage(message.Chat.ID, "❌ Произошла ошибка, попробуйте позже")
		return
	}

	if len(entries) == 0 {
		h.sendMessage(message.Chat.ID, "📊 Таблица лидеров пока пуста")
		return
	}

	var sb strings.Builder
	sb.WriteString("🏆 Таблица лидеров:\n\n")
	medals := []string{"🥇", "🥈", "🥉"}
	for i, entry := range entries {
		if i >= 10 {
			break
		}
		prefix := fmt.Sprintf("%d.", i+1)
		if i < len(medals) {
			prefix = medals[i]
		}
		name := entry.Username
		if name == "" {
			name = fmt.Sprintf("id%d", entry.UserID)
		}
		sb.WriteString(fmt.Sprintf("%s %s — %s\n", prefix, name, common.FormatBalance(entry.Balance)))
	}

	h.sendMessage(message.Chat.ID, sb.String())
}

// HandleTransactions обрабатывает команду "транзакции" — история операций.
func (h *Handler) HandleTransactions(ctx context.Context, message *tgbotapi.Message) {
	history, err := h.service.GetTransactionHistory(ctx, message.From.ID)
	if err != nil {
		log.WithError(err).WithField("user_id", message.From.ID).Error("Ошибка получения истории транзакций")
		h.sendMessage(message.Chat.ID, "❌ Произошла ошибка, попробуйте позже")
		return
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, history)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	if _, err := h.bot.Send(msg); err != nil {
		// MarkdownV2 капризен к спецсимволам в описаниях — отправляем без разметки
		h.sendMessage(message.Chat.ID, history)
	}
}

func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
