// Package games — handlers.go обрабатывает игровые команды:
// дейли, спин, кнб.
package games

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"dabhouse.ru/dabcoin-bot/internal/common"
)

// Handler обрабатывает Telegram-команды игр.
type Handler struct {
	service *Service
	bot     *tgbotapi.BotAPI
}

// NewHandler создаёт новый обработчик игровых команд.
func NewHandler(service *Service, bot *tgbotapi.BotAPI) *Handler {
	return &Handler{service: service, bot: bot}
}

// HandleDaily обрабатывает команду "дейли" — ежедневная награда.
func (h *Handler) HandleDaily(ctx context.Context, message *tgbotapi.Message) {
	result, err := h.service.ClaimDaily(ctx, message.From.ID, common.LocalTime())
	if err != nil {
		var cooldownErr *common.CooldownError
		switch {
		case errors.As(err, &cooldownErr):
			h.sendMessage(message.Chat.ID, fmt.Sprintf(
				"⏳ Награда уже получена. Возвращайтесь через %s",
				common.FormatDuration(cooldownErr.Remaining),
			))
		case errors.Is(err, common.ErrGamesDisabled):
			h.sendMessage(message.Chat.ID, "🚫 Игры временно отключены")
		default:
			log.WithError(err).WithField("user_id", message.From.ID).Error("Ошибка ежедневной награды")
			h.sendMessage(message.Chat.ID, "❌ Произошла ошибка, попробуйте позже")
		}
		return
	}

	if result.IsJackpot {
		h.sendMessage(message.Chat.ID, fmt.Sprintf(
			"🎰💥 ДЖЕКПОТ! Вы сорвали весь пул: %s!\n💰 Баланс: %s",
			common.FormatBalance(result.Amount),
			common.FormatBalance(result.NewBalance),
		))
		return
	}

	h.sendMessage(message.Chat.ID, fmt.Sprintf(
		"🎁 Ежедневная награда: %s\n💰 Баланс: %s",
		common.FormatBalance(result.Amount),
		common.FormatBalance(result.NewBalance),
	))
}

// HandleSpin обрабатывает команду "спин".
func (h *Handler) HandleSpin(ctx context.Context, message *tgbotapi.Message) {
	result, err := h.service.Spin(ctx, message.From.ID)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrInsufficientBalance):
			h.sendMessage(message.Chat.ID, fmt.Sprintf(
				"❌ Недостаточно дабкоинов: спин стоит %s",
				common.FormatBalance(h.service.cfg.SpinCost),
			))
		case errors.Is(err, common.ErrGamesDisabled):
			h.sendMessage(message.Chat.ID, "🚫 Игры временно отключены")
		default:
			log.WithError(err).WithField("user_id", message.From.ID).Error("Ошибка спина")
			h.sendMessage(message.Chat.ID, "❌ Произошла ошибка, попробуйте позже")
		}
		return
	}

	if result.Prize == 0 {
		h.sendMessage(message.Chat.ID, fmt.Sprintf(
			"🎰 Увы, пусто! Спин стоил %s\n💰 Баланс: %s",
			common.FormatBalance(result.Cost),
			common.FormatBalance(result.NewBalance),
		))
		return
	}

	prefix := "🎰"
	switch result.Table {
	case "god":
		prefix = "🎰⚡️ БОЖЕСТВЕННЫЙ ВЫИГРЫШ!"
	case "high":
		prefix = "🎰🔥"
	}

	h.sendMessage(message.Chat.ID, fmt.Sprintf(
		"%s Выигрыш: %s\n💰 Баланс: %s",
		prefix,
		common.FormatBalance(result.Prize),
		common.FormatBalance(result.NewBalance),
	))
}

// HandleRPS обрабатывает команду "кнб <камень|ножницы|бумага> <ставка>".
func (h *Handler) HandleRPS(ctx context.Context, message *tgbotapi.Message, args []string) {
	if len(args) < 2 {
		h.sendMessage(message.Chat.ID, "Использование: кнб <камень|ножницы|бумага> <ставка>")
		return
	}

	choice, ok := ParseRPSChoice(args[0])
	if !ok {
		h.sendMessage(message.Chat.ID, "❌ Ход не распознан: камень, ножницы или бумага")
		return
	}

	bet, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil || bet <= 0 {
		h.sendMessage(message.Chat.ID, "❌ Ставка должна быть положительным числом")
		return
	}

	result, err := h.service.PlayRockPaperScissors(ctx, message.From.ID, choice, bet)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrBetTooSmall):
			h.sendMessage(message.Chat.ID, fmt.Sprintf(
				"❌ Минимальная ставка — %s",
				common.FormatBalance(h.service.cfg.RPSMinBet),
			))
		case errors.Is(err, common.ErrInsufficientBalance):
			h.sendMessage(message.Chat.ID, "❌ Недостаточно дабкоинов для такой ставки")
		case errors.Is(err, common.ErrGamesDisabled):
			h.sendMessage(message.Chat.ID, "🚫 Игры временно отключены")
		default:
			log.WithError(err).WithField("user_id", message.From.ID).Error("Ошибка партии в кнб")
			h.sendMessage(message.Chat.ID, "❌ Произошла ошибка, попробуйте позже")
		}
		return
	}

	header := fmt.Sprintf("%s %s против %s %s",
		result.Player.Emoji(), result.Player, result.Bot.Emoji(), result.Bot)

	var verdict string
	switch result.Outcome {
	case RPSWin:
		verdict = fmt.Sprintf("🎉 Победа! +%s", common.FormatBalance(result.Bet))
	case RPSLose:
		verdict = fmt.Sprintf("😞 Поражение! -%s", common.FormatBalance(result.Bet))
	case RPSDraw:
		verdict = "🤝 Ничья, ставка остаётся при вас"
	}

	h.sendMessage(message.Chat.ID, fmt.Sprintf(
		"%s\n%s\n💰 Баланс: %s",
		header, verdict, common.FormatBalance(result.NewBalance),
	))
}

func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
