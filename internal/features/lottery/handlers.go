// Package lottery — handlers.go обрабатывает команды лотереи.
package lottery

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"dabhouse.ru/dabcoin-bot/internal/common"
)

// Handler обрабатывает Telegram-команды лотереи.
type Handler struct {
	service *Service
	bot     *tgbotapi.BotAPI
}

// NewHandler создаёт новый обработчик команд лотереи.
func NewHandler(service *Service, bot *tgbotapi.BotAPI) *Handler {
	return &Handler{service: service, bot: bot}
}

// HandleBuyTicket обрабатывает команду "билет".
func (h *Handler) HandleBuyTicket(ctx context.Context, message *tgbotapi.Message) {
	result, err := h.service.BuyTicket(ctx, message.From.ID, message.From.UserName)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrAlreadyHasTicket):
			h.sendMessage(message.Chat.ID, "🎟 У вас уже есть билет на этот розыгрыш")
		case errors.Is(err, common.ErrInsufficientBalance):
			h.sendMessage(message.Chat.ID, fmt.Sprintf(
				"❌ Недостаточно дабкоинов: билет стоит %s",
				common.FormatBalance(h.service.cfg.LotteryTicketPrice),
			))
		case errors.Is(err, common.ErrGamesDisabled):
			h.sendMessage(message.Chat.ID, "🚫 Лотерея временно отключена")
		default:
			log.WithError(err).WithField("user_id", message.From.ID).Error("Ошибка покупки билета лотереи")
			h.sendMessage(message.Chat.ID, "❌ Произошла ошибка, попробуйте позже")
		}
		return
	}

	h.sendMessage(message.Chat.ID, fmt.Sprintf(
		"🎟 Билет куплен! Ваш номер: %s\n💰 Призовой фонд раунда: %s",
		common.FormatNumber(int64(result.Number)),
		common.FormatBalance(result.Prize),
	))
}

// HandleInfo обрабатывает команду "лотерея" — состояние текущего раунда.
func (h *Handler) HandleInfo(ctx context.Context, message *tgbotapi.Message) {
	round, err := h.service.store.GetRound(ctx)
	if err != nil {
		log.WithError(err).Error("Ошибка чтения раунда лотереи")
		h.sendMessage(message.Chat.ID, "❌ Произошла ошибка, попробуйте позже")
		return
	}
	tickets, err := h.service.store.ListTickets(ctx)
	if err != nil {
		log.WithError(err).Error("Ошибка чтения билетов лотереи")
		h.sendMessage(message.Chat.ID, "❌ Произошла ошибка, попробуйте позже")
		return
	}

	text := fmt.Sprintf(
		"🎱 Лотерея\n🎟 Цена билета: %s\n👥 Куплено: %d %s\n",
		common.FormatBalance(h.service.cfg.LotteryTicketPrice),
		len(tickets),
		common.PluralizeTickets(len(tickets)),
	)
	if round.Prize != nil {
		text += fmt.Sprintf("💰 Призовой фонд: %s\n", common.FormatBalance(*round.Prize))
	} else {
		text += "💰 Призовой фонд определится при первой покупке\n"
	}
	if round.AutoStartTime != nil {
		text += fmt.Sprintf("⏰ Автостарт розыгрыша: %s", *round.AutoStartTime)
	}

	h.sendMessage(message.Chat.ID, text)
}

func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
