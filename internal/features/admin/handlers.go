// Package admin — handlers.go обрабатывает команды админ-панели
// в личных сообщениях бота.
package admin

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"dabhouse.ru/dabcoin-bot/internal/common"
	"dabhouse.ru/dabcoin-bot/internal/features/economy"
	"dabhouse.ru/dabcoin-bot/internal/features/jackpot"
	"dabhouse.ru/dabcoin-bot/internal/features/lottery"
	"dabhouse.ru/dabcoin-bot/internal/features/members"
)

const helpText = `🔧 Команды админ-панели:

login <пароль> — вход (сессия на 24 часа)
выход — завершить сессию
выдать @user <сумма> — начислить дабкоины
отнять @user <сумма> — списать дабкоины
игнор @user — скрыть из таблицы лидеров
неигнор @user — вернуть в таблицу лидеров
розыгрыш — провести розыгрыш лотереи
джекпот — разыграть джекпот среди держателей билетов
автостарт ЧЧ:ММ — ежедневный автостарт лотереи
помощь — это сообщение`

// Handler обрабатывает сообщения администраторов в личке.
type Handler struct {
	service  *Service
	members  *members.Service
	economy  *economy.Service
	lottery  *lottery.Service
	jackpot  *jackpot.Service
	bot      *tgbotapi.BotAPI
	announce func(text string) // объявления во флуд-чат
}

// NewHandler создаёт обработчик админ-панели.
func NewHandler(
	service *Service,
	membersService *members.Service,
	economyService *economy.Service,
	lotteryService *lottery.Service,
	jackpotService *jackpot.Service,
	bot *tgbotapi.BotAPI,
	announce func(text string),
) *Handler {
	return &Handler{
		service:  service,
		members:  membersService,
		economy:  economyService,
		lottery:  lotteryService,
		jackpot:  jackpotService,
		bot:      bot,
		announce: announce,
	}
}

// HandleAdminMessage обрабатывает сообщение в личке бота.
// Все команды, кроме login, требуют активной сессии.
func (h *Handler) HandleAdminMessage(ctx context.Context, message *tgbotapi.Message) {
	text := strings.TrimSpace(message.Text)
	if text == "" {
		return
	}

	fields := strings.Fields(strings.TrimPrefix(text, "/"))
	command := strings.ToLower(fields[0])
	args := fields[1:]

	if command == "login" {
		h.handleLogin(ctx, message, args)
		return
	}
	if command == "start" || command == "помощь" || command == "help" {
		h.sendMessage(message.Chat.ID, helpText)
		return
	}

	if !h.service.HasActiveSession(ctx, message.From.ID) {
		h.sendMessage(message.Chat.ID, "🔒 Нужен вход: login <пароль>")
		return
	}

	switch command {
	case "выход", "logout":
		if err := h.service.Logout(ctx, message.From.ID); err != nil {
			log.WithError(err).Error("Ошибка выхода из админки")
		}
		h.sendMessage(message.Chat.ID, "👋 Сессия завершена")
	case "выдать":
		h.handleAdjust(ctx, message, args, +1)
	case "отнять":
		h.handleAdjust(ctx, message, args, -1)
	case "игнор":
		h.handleIgnore(ctx, message, args, true)
	case "неигнор":
		h.handleIgnore(ctx, message, args, false)
	case "розыгрыш":
		h.handleLotteryDraw(ctx, message)
	case "джекпот":
		h.handleJackpotDraw(ctx, message)
	case "автостарт":
		h.handleAutoStart(ctx, message, args)
	default:
		h.sendMessage(message.Chat.ID, "❓ Неизвестная команда. Напишите: помощь")
	}
}

func (h *Handler) handleLogin(ctx context.Context, message *tgbotapi.Message, args []string) {
	if len(args) < 1 {
		h.sendMessage(message.Chat.ID, "Использование: login <пароль>")
		return
	}

	err := h.service.Login(ctx, message.From.ID, strings.Join(args, " "))
	switch {
	case errors.Is(err, common.ErrNotAdmin):
		h.sendMessage(message.Chat.ID, "⛔️ Доступ запрещён")
	case errors.Is(err, common.ErrTooManyAttempts):
		h.sendMessage(message.Chat.ID, "⏳ Слишком много попыток, подождите час")
	case errors.Is(err, common.ErrWrongPassword):
		h.sendMessage(message.Chat.ID, "❌ Неверный пароль")
	case err != nil:
		log.WithError(err).Error("Ошибка входа в админку")
		h.sendMessage(message.Chat.ID, "❌ Произошла ошибка, попробуйте позже")
	default:
		h.sendMessage(message.Chat.ID, "✅ Вход выполнен, сессия на 24 часа")
	}
}

// handleAdjust — общая логика "выдать" и "отнять" (sign = +1/-1).
func (h *Handler) handleAdjust(ctx context.Context, message *tgbotapi.Message, args []string, sign int64) {
	if len(args) < 2 {
		h.sendMessage(message.Chat.ID, "Использование: выдать|отнять @user <сумма>")
		return
	}

	member, err := h.members.Resolve(ctx, args[0])
	if err != nil {
		h.sendMessage(message.Chat.ID, "❌ Пользователь не найден")
		return
	}

	amount, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil || amount <= 0 {
		h.sendMessage(message.Chat.ID, "❌ Сумма должна быть положительным числом")
		return
	}

	newBalance, err := h.economy.AdjustBalance(ctx, member.UserID, sign*amount,
		fmt.Sprintf("Корректировка администратором %d", message.From.ID))
	if err != nil {
		log.WithError(err).Error("Ошибка админской корректировки баланса")
		h.sendMessage(message.Chat.ID, "❌ Произошла ошибка, попробуйте позже")
		return
	}

	h.sendMessage(message.Chat.ID, fmt.Sprintf(
		"✅ Баланс %s теперь %s",
		member.DisplayName(),
		common.FormatBalance(newBalance),
	))
}

func (h *Handler) handleIgnore(ctx context.Context, message *tgbotapi.Message, args []string, ignored bool) {
	if len(args) < 1 {
		h.sendMessage(message.Chat.ID, "Использование: игнор|неигнор @user")
		return
	}

	member, err := h.members.Resolve(ctx, args[0])
	if err != nil {
		h.sendMessage(message.Chat.ID, "❌ Пользователь не найден")
		return
	}

	if err := h.economy.SetIgnored(ctx, member.UserID, ignored); err != nil {
		log.WithError(err).Error("Ошибка изменения флага игнора")
		h.sendMessage(message.Chat.ID, "❌ Произошла ошибка, попробуйте позже")
		return
	}

	if ignored {
		h.sendMessage(message.Chat.ID, fmt.Sprintf("🙈 %s скрыт из таблицы лидеров", member.DisplayName()))
	} else {
		h.sendMessage(message.Chat.ID, fmt.Sprintf("👀 %s возвращён в таблицу лидеров", member.DisplayName()))
	}
}

func (h *Handler) handleLotteryDraw(ctx context.Context, message *tgbotapi.Message) {
	result, err := h.lottery.Draw(ctx)
	if err != nil {
		log.WithError(err).Error("Ошибка розыгрыша лотереи")
		h.sendMessage(message.Chat.ID, "❌ Произошла ошибка, попробуйте позже")
		return
	}
	if result == nil {
		h.sendMessage(message.Chat.ID, "🎱 Билетов нет — разыгрывать нечего")
		return
	}

	text := lottery.FormatDrawResult(result)
	h.announce(text)
	h.sendMessage(message.Chat.ID, "✅ Розыгрыш проведён:\n\n"+text)
}

func (h *Handler) handleJackpotDraw(ctx context.Context, message *tgbotapi.Message) {
	result, err := h.jackpot.Draw(ctx)
	if err != nil {
		log.WithError(err).Error("Ошибка розыгрыша джекпота")
		h.sendMessage(message.Chat.ID, "❌ Произошла ошибка, попробуйте позже")
		return
	}
	if result == nil {
		h.sendMessage(message.Chat.ID, "🎰 Держателей билетов нет — пул остаётся копиться")
		return
	}

	name := result.Winner
	if name == "" {
		name = fmt.Sprintf("id%d", result.WinnerID)
	}
	text := fmt.Sprintf(
		"🎰💥 Джекпот разыгран!\n🏆 Победитель: %s\n💰 Выигрыш: %s\n👥 Участников: %d",
		name, common.FormatBalance(result.Amount), result.Tickets,
	)
	h.announce(text)
	h.sendMessage(message.Chat.ID, "✅ Джекпот разыгран:\n\n"+text)
}

func (h *Handler) handleAutoStart(ctx context.Context, message *tgbotapi.Message, args []string) {
	if len(args) < 1 {
		h.sendMessage(message.Chat.ID, "Использование: автостарт ЧЧ:ММ")
		return
	}

	normalized, err := h.lottery.SetAutoStartTime(ctx, args[0])
	if errors.Is(err, common.ErrInvalidTimeFormat) {
		h.sendMessage(message.Chat.ID, "❌ Неверный формат времени, нужно ЧЧ:ММ (например 21:00)")
		return
	}
	if err != nil {
		log.WithError(err).Error("Ошибка установки автостарта")
		h.sendMessage(message.Chat.ID, "❌ Произошла ошибка, попробуйте позже")
		return
	}

	h.sendMessage(message.Chat.ID, fmt.Sprintf("⏰ Автостарт лотереи установлен на %s", normalized))
}

func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
