// Package app инициализирует все компоненты приложения.
// app.go — точка сборки: создаёт БД-пул, репозитории, сервисы, обработчики,
// фильтры и собирает всё в один объект Bot.
package app

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"dabhouse.ru/dabcoin-bot/internal/bot"
	"dabhouse.ru/dabcoin-bot/internal/bot/filters"
	"dabhouse.ru/dabcoin-bot/internal/config"
	"dabhouse.ru/dabcoin-bot/internal/db/postgres"
	"dabhouse.ru/dabcoin-bot/internal/features/admin"
	"dabhouse.ru/dabcoin-bot/internal/features/economy"
	"dabhouse.ru/dabcoin-bot/internal/features/games"
	"dabhouse.ru/dabcoin-bot/internal/features/jackpot"
	"dabhouse.ru/dabcoin-bot/internal/features/lottery"
	"dabhouse.ru/dabcoin-bot/internal/features/members"
	"dabhouse.ru/dabcoin-bot/internal/jobs"
)

// App содержит все компоненты приложения.
type App struct {
	Bot       *bot.Bot
	Scheduler *jobs.Scheduler
	DB        *pgxpool.Pool
	BotAPI    *tgbotapi.BotAPI
}

// New создаёт и инициализирует приложение.
// Порядок инициализации важен — компоненты зависят друг от друга.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// === 1. База данных ===
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}

	if err := runMigrations(ctx, pool); err != nil {
		return nil, fmt.Errorf("ошибка миграций: %w", err)
	}

	// === 2. Telegram Bot API ===
	botAPI, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания Telegram API: %w", err)
	}
	botAPI.Debug = cfg.AppEnv == "development"
	log.Infof("Авторизован как @%s", botAPI.Self.UserName)

	// Объявления во флуд-чат — для розыгрышей из админки и по расписанию
	announce := func(text string) {
		msg := tgbotapi.NewMessage(cfg.FloodChatID, text)
		if _, err := botAPI.Send(msg); err != nil {
			log.WithError(err).Error("Ошибка отправки объявления во флуд-чат")
		}
	}

	// === 3. Репозитории ===
	memberRepo := members.NewRepository(pool)
	economyRepo := economy.NewRepository(pool)
	gamesRepo := games.NewRepository(pool)
	jackpotRepo := jackpot.NewRepository(pool)
	lotteryRepo := lottery.NewRepository(pool)
	adminRepo := admin.NewRepository(pool)

	// === 4. Сервисы ===
	memberService := members.NewService(memberRepo)
	economyService := economy.NewService(economyRepo)
	jackpotService := jackpot.NewService(jackpotRepo, economyService, cfg)
	gamesService := games.NewService(gamesRepo, economyService, jackpotService, cfg)
	lotteryService := lottery.NewService(lotteryRepo, economyService, cfg)
	adminService := admin.NewService(adminRepo, cfg)

	// === 5. Обработчики ===
	economyHandler := economy.NewHandler(economyService, memberService, botAPI)
	gamesHandler := games.NewHandler(gamesService, botAPI)
	jackpotHandler := jackpot.NewHandler(jackpotService, botAPI)
	lotteryHandler := lottery.NewHandler(lotteryService, botAPI)
	adminHandler := admin.NewHandler(
		adminService, memberService, economyService,
		lotteryService, jackpotService, botAPI, announce,
	)

	// === 6. Фильтры ===
	chatFilter := filters.NewChatFilter(cfg.FloodChatID, memberService, botAPI)

	// === 7. Собираем бота ===
	b := bot.New(
		botAPI, cfg,
		memberService,
		economyService,
		economyHandler,
		gamesHandler,
		lotteryHandler,
		jackpotHandler,
		adminHandler,
		chatFilter,
	)

	// === 8. Планировщик задач ===
	scheduler := jobs.NewScheduler(cfg, jackpotService, lotteryService, announce)

	return &App{
		Bot:       b,
		Scheduler: scheduler,
		DB:        pool,
		BotAPI:    botAPI,
	}, nil
}

// runMigrations выполняет все SQL-миграции.
func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	if err := postgres.EnsureMigrationsTable(ctx, pool); err != nil {
		return err
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{1, migration001Members},
		{2, migration002Economy},
		{3, migration003Daily},
		{4, migration004Lottery},
		{5, migration005Jackpot},
		{6, migration006Admin},
	}

	for _, m := range migrations {
		if err := postgres.ExecMigrationSQL(ctx, pool, m.version, m.sql); err != nil {
			return fmt.Errorf("миграция %d: %w", m.version, err)
		}
		log.Infof("Миграция %d применена", m.version)
	}

	return nil
}

// SQL-миграции встроены в код для упрощения деплоя.

var migration001Members = `
CREATE TABLE IF NOT EXISTS members (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT UNIQUE NOT NULL,
    username VARCHAR(255),
    first_name VARCHAR(255) NOT NULL,
    last_name VARCHAR(255),
    joined_at TIMESTAMP DEFAULT NOW(),
    created_at TIMESTAMP DEFAULT NOW(),
    updated_at TIMESTAMP DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_members_user_id ON members(user_id);
CREATE INDEX IF NOT EXISTS idx_members_username ON members(username);
`

var migration002Economy = `
CREATE TABLE IF NOT EXISTS balances (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT UNIQUE NOT NULL,
    balance BIGINT DEFAULT 0,
    is_ignored BOOLEAN DEFAULT FALSE,
    created_at TIMESTAMP DEFAULT NOW(),
    updated_at TIMESTAMP DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS transactions (
    id BIGSERIAL PRIMARY KEY,
    from_user_id BIGINT,
    to_user_id BIGINT,
    amount BIGINT NOT NULL,
    transaction_type VARCHAR(50) NOT NULL,
    description TEXT,
    created_at TIMESTAMP DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_transactions_from_user ON transactions(from_user_id);
CREATE INDEX IF NOT EXISTS idx_transactions_to_user ON transactions(to_user_id);
CREATE INDEX IF NOT EXISTS idx_transactions_created_at ON transactions(created_at DESC);
`

var migration003Daily = `
CREATE TABLE IF NOT EXISTS daily_claims (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT UNIQUE NOT NULL,
    last_redeemed_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_daily_claims_user_id ON daily_claims(user_id);
`

var migration004Lottery = `
CREATE TABLE IF NOT EXISTS lottery_round (
    id BIGINT PRIMARY KEY CHECK (id = 1),
    prize BIGINT,
    auto_start_time VARCHAR(5),
    updated_at TIMESTAMP DEFAULT NOW()
);
INSERT INTO lottery_round (id) VALUES (1) ON CONFLICT (id) DO NOTHING;
CREATE TABLE IF NOT EXISTS lottery_tickets (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT UNIQUE NOT NULL,
    username VARCHAR(255),
    ticket_number INTEGER NOT NULL,
    created_at TIMESTAMP DEFAULT NOW()
);
`

var migration005Jackpot = `
CREATE TABLE IF NOT EXISTS jackpot_pool (
    id BIGINT PRIMARY KEY CHECK (id = 1),
    amount BIGINT NOT NULL DEFAULT 0,
    updated_at TIMESTAMP DEFAULT NOW()
);
INSERT INTO jackpot_pool (id, amount) VALUES (1, 0) ON CONFLICT (id) DO NOTHING;
CREATE TABLE IF NOT EXISTS jackpot_tickets (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT UNIQUE NOT NULL,
    username VARCHAR(255),
    created_at TIMESTAMP DEFAULT NOW()
);
`

var migration006Admin = `
CREATE TABLE IF NOT EXISTS admin_sessions (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT,
    session_token VARCHAR(255) UNIQUE,
    authenticated_at TIMESTAMP DEFAULT NOW(),
    expires_at TIMESTAMP,
    last_activity TIMESTAMP DEFAULT NOW(),
    is_active BOOLEAN DEFAULT TRUE
);
CREATE INDEX IF NOT EXISTS idx_admin_sessions_user_id ON admin_sessions(user_id);
CREATE TABLE IF NOT EXISTS admin_login_attempts (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT,
    attempt_time TIMESTAMP DEFAULT NOW(),
    success BOOLEAN DEFAULT FALSE
);
`
