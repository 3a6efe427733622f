// Package bot содержит главный модуль бота — инициализацию, запуск и остановку.
// bot.go подключает обработчики, маршрутизирует команды и запускает polling.
package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"dabhouse.ru/dabcoin-bot/internal/bot/filters"
	"dabhouse.ru/dabcoin-bot/internal/bot/middleware"
	"dabhouse.ru/dabcoin-bot/internal/config"
	"dabhouse.ru/dabcoin-bot/internal/features/admin"
	"dabhouse.ru/dabcoin-bot/internal/features/economy"
	"dabhouse.ru/dabcoin-bot/internal/features/games"
	"dabhouse.ru/dabcoin-bot/internal/features/jackpot"
	"dabhouse.ru/dabcoin-bot/internal/features/lottery"
	"dabhouse.ru/dabcoin-bot/internal/features/members"
)

const helpText = `🤖 Команды бота (префиксы !, . или /):

!баланс [@user] — сколько дабкоинов
!отсыпать @user <сумма> — перевод
!топ — таблица лидеров
!транзакции — история операций
!дейли — ежедневная награда
!спин — крутануть спин
!кнб <камень|ножницы|бумага> <ставка> — сыграть с ботом
!билет — купить билет лотереи
!билет джекпот — купить билет джекпота
!лотерея — текущий раунд лотереи
!джекпот — размер пула джекпота`

// Bot — главная структура бота, объединяющая все компоненты.
type Bot struct {
	api *tgbotapi.BotAPI
	cfg *config.Config

	chatFilter  *filters.ChatFilter
	rateLimiter *middleware.RateLimiter

	memberService  *members.Service
	economyService *economy.Service

	economyHandler *economy.Handler
	gamesHandler   *games.Handler
	lotteryHandler *lottery.Handler
	jackpotHandler *jackpot.Handler
	adminHandler   *admin.Handler

	parser *CommandParser

	// ограничитель параллелизма обработки апдейтов
	inflight chan struct{}
}

// New создаёт новый экземпляр бота со всеми зависимостями.
func New(
	api *tgbotapi.BotAPI,
	cfg *config.Config,
	memberService *members.Service,
	economyService *economy.Service,
	economyHandler *economy.Handler,
	gamesHandler *games.Handler,
	lotteryHandler *lottery.Handler,
	jackpotHandler *jackpot.Handler,
	adminHandler *admin.Handler,
	chatFilter *filters.ChatFilter,
) *Bot {
	maxInFlight := cfg.BotMaxInflight
	if maxInFlight <= 0 {
		maxInFlight = 64
	}

	return &Bot{
		api:            api,
		cfg:            cfg,
		chatFilter:     chatFilter,
		rateLimiter:    middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow),
		memberService:  memberService,
		economyService: economyService,
		economyHandler: economyHandler,
		gamesHandler:   gamesHandler,
		lotteryHandler: lotteryHandler,
		jackpotHandler: jackpotHandler,
		adminHandler:   adminHandler,
		parser:         NewCommandParser(),
		inflight:       make(chan struct{}, maxInFlight),
	}
}

// Start запускает polling обновлений от Telegram.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.BotUpdateTimeoutSeconds

	updates := b.api.GetUpdatesChan(u)

	log.WithFields(log.Fields{
		"max_inflight": b.cfg.BotMaxInflight,
		"timeout_sec":  b.cfg.BotUpdateTimeoutSeconds,
	}).Info("Бот запущен и ожидает сообщения...")

	for {
		select {
		case <-ctx.Done():
			log.Info("Бот останавливается (ctx done)...")
			b.api.StopReceivingUpdates()
			b.rateLimiter.Close()
			return

		case update, ok := <-updates:
			if !ok {
				log.Info("Канал updates закрыт, бот остановлен")
				return
			}

			// лимит параллелизма
			b.inflight <- struct{}{}
			go func(upd tgbotapi.Update) {
				defer func() { <-b.inflight }()
				b.handleUpdate(ctx, upd)
			}(update)
		}
	}
}

// handleUpdate обрабатывает одно обновление от Telegram.
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer middleware.RecoverFromPanic(update.UpdateID)

	// Событие вступления новых участников
	if update.Message != nil && update.Message.NewChatMembers != nil {
		if update.Message.Chat != nil && update.Message.Chat.ID == b.cfg.FloodChatID {
			b.handleNewMembers(ctx, update.Message.NewChatMembers)
		}
		return
	}

	if update.Message == nil || update.Message.Text == "" {
		return
	}

	message := update.Message

	middleware.LogMessage(message)

	// Доступ: флуд-чат или личка участника
	if !b.chatFilter.CheckAccess(ctx, message) {
		return
	}

	if !b.rateLimiter.Allow(message.From.ID) {
		log.WithField("user_id", message.From.ID).Debug("rate limited")
		return
	}

	// EnsureMember — ошибки нельзя игнорировать, иначе потом будет "оно не работает"
	if err := b.memberService.EnsureMember(ctx, message.From.ID,
		message.From.UserName, message.From.FirstName, message.From.LastName,
	); err != nil {
		log.WithError(err).WithField("user_id", message.From.ID).Warn("EnsureMember failed")
	}

	// Личка админа целиком уходит в админ-панель
	if message.Chat.IsPrivate() && b.cfg.IsAdmin(message.From.ID) {
		b.adminHandler.HandleAdminMessage(ctx, message)
		return
	}

	cmd, args, isCommand := b.parser.ParseCommand(message.Text)
	if !isCommand {
		return
	}

	b.routeCommand(ctx, message, cmd, args)
}

// routeCommand маршрутизирует команду к нужному обработчику.
func (b *Bot) routeCommand(ctx context.Context, message *tgbotapi.Message, cmd string, args []string) {
	log.WithFields(log.Fields{
		"cmd":  cmd,
		"args": args,
	}).Debug("routing command")

	switch cmd {
	case "start", "help", "помощь":
		b.sendMessage(message.Chat.ID, helpText)

	case "баланс", "дабкоины":
		b.economyHandler.HandleBalance(ctx, message, args)

	case "отсыпать":
		b.economyHandler.HandleTransfer(ctx, message, args)

	case "топ", "лидеры":
		b.economyHandler.HandleLeaderboard(ctx, message)

	case "транзакции":
		b.economyHandler.HandleTransactions(ctx, message)

	case "дейли":
		if b.cfg.FeatureGamesEnabled {
			b.gamesHandler.HandleDaily(ctx, message)
		} else {
			b.sendMessage(message.Chat.ID, "🚫 Игры временно отключены")
		}

	case "спин":
		if b.cfg.FeatureGamesEnabled {
			b.gamesHandler.HandleSpin(ctx, message)
		} else {
			b.sendMessage(message.Chat.ID, "🚫 Игры временно отключены")
		}

	case "кнб":
		if b.cfg.FeatureGamesEnabled {
			b.gamesHandler.HandleRPS(ctx, message, args)
		} else {
			b.sendMessage(message.Chat.ID, "🚫 Игры временно отключены")
		}

	case "билет":
		// "билет джекпот" — билет джекпота, просто "билет" — лотереи
		if len(args) > 0 && strings.EqualFold(args[0], "джекпот") {
			b.jackpotHandler.HandleBuyTicket(ctx, message)
			return
		}
		if b.cfg.FeatureLotteryEnabled {
			b.lotteryHandler.HandleBuyTicket(ctx, message)
		} else {
			b.sendMessage(message.Chat.ID, "🚫 Лотерея временно отключена")
		}

	case "лотерея":
		b.lotteryHandler.HandleInfo(ctx, message)

	case "джекпот":
		b.jackpotHandler.HandleInfo(ctx, message)
	}
}

// handleNewMembers обрабатывает вступление новых участников.
func (b *Bot) handleNewMembers(ctx context.Context, newMembers []tgbotapi.User) {
	for _, user := range newMembers {
		if user.IsBot {
			continue
		}
		if err := b.memberService.HandleNewMember(ctx, user.ID, user.UserName, user.FirstName, user.LastName); err != nil {
			log.WithError(err).WithField("user_id", user.ID).Warn("HandleNewMember failed")
		}
		if err := b.economyService.CreateBalance(ctx, user.ID); err != nil {
			log.WithError(err).WithField("user_id", user.ID).Warn("CreateBalance failed")
		}

		log.WithField("user", user.UserName).Info("Новый участник обработан")
	}
}

// sendMessage — утилита для отправки сообщений.
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}

// CommandParser парсит русские команды с префиксами !, . и /
type CommandParser struct {
	validPrefixes []string
}

// NewCommandParser создаёт парсер команд.
func NewCommandParser() *CommandParser {
	return &CommandParser{
		validPrefixes: []string{"!", ".", "/"},
	}
}

// ParseCommand разбирает текст на команду и аргументы.
func (p *CommandParser) ParseCommand(text string) (string, []string, bool) {
	text = strings.TrimSpace(text)

	hasPrefix := false
	for _, prefix := range p.validPrefixes {
		if strings.HasPrefix(text, prefix) {
			text = strings.TrimPrefix(text, prefix)
			hasPrefix = true
			break
		}
	}

	if !hasPrefix {
		return "", nil, false
	}

	text = strings.TrimSpace(text)
	parts := strings.Fields(text)

	if len(parts) == 0 {
		return "", nil, false
	}

	command := strings.ToLower(parts[0])
	var args []string
	if len(parts) > 1 {
		args = parts[1:]
	}

	return command, args, true
}
