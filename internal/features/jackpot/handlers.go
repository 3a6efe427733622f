// Package jackpot — handlers.go обрабатывает команды джекпота.
package jackpot

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"dabhouse.ru/dabcoin-bot/internal/common"
)

// Handler обрабатывает Telegram-команды джекпота.
type Handler struct {
	service *Service
	bot     *tgbotapi.BotAPI
}

// NewHandler создаёт новый обработчик команд джекпота.
func NewHandler(service *Service, bot *tgbotapi.BotAPI) *Handler {
	return &Handler{service: service, bot: bot}
}

// HandleInfo обрабатывает команду "джекпот" — размер пула и цена билета.
func (h *Handler) HandleInfo(ctx context.Context, message *tgbotapi.Message) {
	pool, err := h.service.Peek(ctx)
	if err != nil {
		log.WithError(err).Error("Ошибка чтения пула джекпота")
		h.sendMessage(message.Chat.ID, "❌ Произошла ошибка, попробуйте позже")
		return
	}

	tickets, err := h.service.store.ListTickets(ctx)
	if err != nil {
		log.WithError(err).Error("Ошибка чтения билетов джекпота")
		h.sendMessage(message.Chat.ID, "❌ Произошла ошибка, попробуйте позже")
		return
	}

	h.sendMessage(message.Chat.ID, fmt.Sprintf(
		"🎰 Джекпот: %s\n🎟 Цена билета: %s\n👥 Участников: %d\n\nКупить: билет джекпот",
		common.FormatBalance(pool),
		common.FormatBalance(TicketPrice(pool)),
		len(tickets),
	))
}

// HandleBuyTicket обрабатывает команду "билет джекпот".
func (h *Handler) HandleBuyTicket(ctx context.Context, message *tgbotapi.Message) {
	result, err := h.service.BuyTicket(ctx, message.From.ID, message.From.UserName)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrAlreadyHasJackpotTicket):
			h.sendMessage(message.Chat.ID, "🎟 У вас уже есть билет на этот розыгрыш")
		case errors.Is(err, common.ErrInsufficientBalance):
			h.sendMessage(message.Chat.ID, "❌ Недостаточно дабкоинов на билет")
		default:
			log.WithError(err).WithField("user_id", message.From.ID).Error("Ошибка покупки билета джекпота")
			h.sendMessage(message.Chat.ID, "❌ Произошла ошибка, попробуйте позже")
		}
		return
	}

	h.sendMessage(message.Chat.ID, fmt.Sprintf(
		"🎟 Билет куплен за %s!\n🎰 Пул вырос до %s",
		common.FormatBalance(result.Price),
		common.FormatBalance(result.Pool),
	))
}

func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
