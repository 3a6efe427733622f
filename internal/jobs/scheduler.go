// Package jobs содержит фоновые задачи по расписанию:
// тиканье пула джекпота и автостарт розыгрыша лотереи.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"dabhouse.ru/dabcoin-bot/internal/config"
	"dabhouse.ru/dabcoin-bot/internal/features/jackpot"
	"dabhouse.ru/dabcoin-bot/internal/features/lottery"
)

// Scheduler управляет cron-задачами бота.
type Scheduler struct {
	cron           *cron.Cron
	cfg            *config.Config
	jackpotService *jackpot.Service
	lotteryService *lottery.Service
	announce       func(text string) // объявления во флуд-чат
	location       *time.Location
}

// NewScheduler создаёт планировщик в часовом поясе из конфига.
func NewScheduler(
	cfg *config.Config,
	jackpotService *jackpot.Service,
	lotteryService *lottery.Service,
	announce func(text string),
) *Scheduler {
	location, err := time.LoadLocation(cfg.AppTimezone)
	if err != nil {
		log.WithError(err).WithField("timezone", cfg.AppTimezone).Warn("Не удалось загрузить часовой пояс, используем UTC")
		location = time.UTC
	}

	return &Scheduler{
		cron:           cron.New(cron.WithLocation(location)),
		cfg:            cfg,
		jackpotService: jackpotService,
		lotteryService: lotteryService,
		announce:       announce,
		location:       location,
	}
}

// Start регистрирует задачи и запускает планировщик.
func (s *Scheduler) Start(ctx context.Context) error {
	// Тиканье пула джекпота
	jackpotSpec := fmt.Sprintf("*/%d * * * *", s.cfg.JackpotTickMinutes)
	if _, err := s.cron.AddFunc(jackpotSpec, func() {
		if err := s.jackpotService.Increment(ctx); err != nil {
			log.WithError(err).Error("Ошибка пополнения пула джекпота")
		}
	}); err != nil {
		return fmt.Errorf("ошибка регистрации задачи джекпота: %w", err)
	}

	// Ежеминутная проверка автостарта лотереи
	if _, err := s.cron.AddFunc("* * * * *", func() {
		result, fired, err := s.lotteryService.CheckAutoDraw(ctx, time.Now().In(s.location))
		if err != nil {
			log.WithError(err).Error("Ошибка автостарта лотереи")
			return
		}
		if fired {
			s.announce(lottery.FormatDrawResult(result))
		}
	}); err != nil {
		return fmt.Errorf("ошибка регистрации задачи лотереи: %w", err)
	}

	s.cron.Start()
	log.WithFields(log.Fields{
		"jackpot_spec": jackpotSpec,
		"timezone":     s.location.String(),
	}).Info("Планировщик запущен")
	return nil
}

// Stop останавливает планировщик и ждёт завершения задач.
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	log.Info("Планировщик остановлен")
}
