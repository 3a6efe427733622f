// Package config загружает конфигурацию бота из переменных окружения.
// Используется envconfig для маппинга переменных окружения на поля структуры.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config содержит ВСЕ настройки приложения.
type Config struct {
	// --- Telegram ---
	TelegramBotToken string `envconfig:"TELEGRAM_BOT_TOKEN" required:"true"`
	// ID чата, в котором бот работает (единственный разрешённый групповой чат)
	FloodChatID int64 `envconfig:"FLOOD_CHAT_ID" required:"true"`
	// Кому разрешён вход в админку (список Telegram ID через запятую)
	AdminIDsRaw string  `envconfig:"ADMIN_IDS" required:"true"`
	AdminIDs    []int64 `envconfig:"-"` // заполняется вручную в Load

	// --- Database ---
	// В Docker внутри контейнера "localhost" почти всегда неправильно.
	// Дефолт ставим "postgres" (имя сервиса в docker-compose), для локалки DB_HOST=localhost.
	DBHost     string `envconfig:"DB_HOST" default:"postgres"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"botuser"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" default:"dabcoin_bot"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxConns int32  `envconfig:"DB_MAX_CONNS" default:"25"`
	DBMinConns int32  `envconfig:"DB_MIN_CONNS" default:"5"`

	// --- Application ---
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppLogLevel string `envconfig:"APP_LOG_LEVEL" default:"debug"`
	AppTimezone string `envconfig:"APP_TIMEZONE" default:"Europe/Moscow"`

	// --- Bot runtime ---
	// Сколько апдейтов обрабатываем параллельно. Иначе "go на каждый апдейт" = утечка памяти при флуде.
	BotMaxInflight int `envconfig:"BOT_MAX_INFLIGHT" default:"64"`
	// Таймаут long polling (секунды)
	BotUpdateTimeoutSeconds int `envconfig:"BOT_UPDATE_TIMEOUT_SECONDS" default:"60"`

	// --- Admin ---
	AdminPasswordHash string `envconfig:"ADMIN_PASSWORD_HASH" required:"true"`

	// --- Лотерея ---
	LotteryTicketPrice int64 `envconfig:"LOTTERY_TICKET_PRICE" default:"10000"`
	LotteryPrizeMin    int64 `envconfig:"LOTTERY_PRIZE_MIN" default:"250000"`
	LotteryPrizeMax    int64 `envconfig:"LOTTERY_PRIZE_MAX" default:"2000000"`

	// --- Джекпот ---
	// Пул растёт на JACKPOT_INCREMENT каждые JACKPOT_TICK_MINUTES минут.
	JackpotIncrement   int64 `envconfig:"JACKPOT_INCREMENT" default:"46"`
	JackpotTickMinutes int   `envconfig:"JACKPOT_TICK_MINUTES" default:"10"`

	// --- Игры ---
	// Шанс (в процентах) забрать весь джекпот при ежедневной награде
	DailyJackpotChance float64 `envconfig:"DAILY_JACKPOT_CHANCE" default:"6"`
	DailyCooldownHours int     `envconfig:"DAILY_COOLDOWN_HOURS" default:"24"`
	SpinCost           int64   `envconfig:"SPIN_COST" default:"200"`
	RPSMinBet          int64   `envconfig:"RPS_MIN_BET" default:"10"`

	// --- Rate Limiting ---
	RateLimitRequests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"10"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`

	// --- Feature Flags ---
	FeatureGamesEnabled   bool `envconfig:"FEATURE_GAMES_ENABLED" default:"true"`
	FeatureLotteryEnabled bool `envconfig:"FEATURE_LOTTERY_ENABLED" default:"true"`
}

// DatabaseDSN возвращает строку подключения к PostgreSQL в формате DSN.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// DailyCooldown возвращает период между ежедневными наградами.
func (c *Config) DailyCooldown() time.Duration {
	return time.Duration(c.DailyCooldownHours) * time.Hour
}

// IsAdmin проверяет, входит ли пользователь в список ADMIN_IDS.
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func (c *Config) Validate() error {
	if c.FloodChatID == 0 {
		return fmt.Errorf("FLOOD_CHAT_ID не задан или равен 0")
	}
	if c.BotMaxInflight <= 0 {
		return fmt.Errorf("BOT_MAX_INFLIGHT должен быть > 0")
	}
	if c.BotUpdateTimeoutSeconds <= 0 {
		return fmt.Errorf("BOT_UPDATE_TIMEOUT_SECONDS должен быть > 0")
	}
	if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("некорректные DB_MIN_CONNS/DB_MAX_CONNS")
	}
	if c.LotteryTicketPrice <= 0 {
		return fmt.Errorf("LOTTERY_TICKET_PRICE должен быть > 0")
	}
	if c.LotteryPrizeMin <= 0 || c.LotteryPrizeMax < c.LotteryPrizeMin {
		return fmt.Errorf("некорректные LOTTERY_PRIZE_MIN/LOTTERY_PRIZE_MAX")
	}
	if c.JackpotIncrement <= 0 || c.JackpotTickMinutes <= 0 {
		return fmt.Errorf("некорректные JACKPOT_INCREMENT/JACKPOT_TICK_MINUTES")
	}
	if c.DailyJackpotChance < 0 || c.DailyJackpotChance > 100 {
		return fmt.Errorf("DAILY_JACKPOT_CHANCE должен быть в диапазоне 0..100")
	}
	if c.DailyCooldownHours <= 0 {
		return fmt.Errorf("DAILY_COOLDOWN_HOURS должен быть > 0")
	}
	if c.SpinCost <= 0 || c.RPSMinBet <= 0 {
		return fmt.Errorf("некорректные SPIN_COST/RPS_MIN_BET")
	}
	return nil
}

// Load читает переменные окружения и заполняет структуру Config.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("не удалось загрузить конфигурацию: %w", err)
	}

	ids, err := parseInt64CSV(cfg.AdminIDsRaw)
	if err != nil {
		return nil, fmt.Errorf("ADMIN_IDS parse: %w", err)
	}
	cfg.AdminIDs = ids

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func parseInt64CSV(s string) ([]int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad int64 %q: %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}
