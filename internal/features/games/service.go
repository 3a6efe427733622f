// Package games — service.go содержит бизнес-логику игр:
// ежедневная награда с шансом джекпота, спин, камень-ножницы-бумага.
package games

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"dabhouse.ru/dabcoin-bot/internal/common"
	"dabhouse.ru/dabcoin-bot/internal/config"
)

// Ledger — операции с балансами, которые нужны играм.
type Ledger interface {
	GetBalance(ctx context.Context, userID int64) (int64, error)
	AddBalance(ctx context.Context, userID int64, amount int64, txType, description string) error
	DeductBalance(ctx context.Context, userID int64, amount int64, txType, description string) error
}

// ClaimStore — хранилище отметок ежедневных наград.
type ClaimStore interface {
	GetLastRedeemed(ctx context.Context, userID int64) (*time.Time, error)
	MarkRedeemed(ctx context.Context, userID int64, at time.Time) error
}

// JackpotFund — снятие накопленного пула джекпота.
type JackpotFund interface {
	Award(ctx context.Context) (int64, error)
}

// Service управляет играми.
type Service struct {
	claims  ClaimStore
	ledger  Ledger
	jackpot JackpotFund
	cfg     *config.Config

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewService создаёт новый сервис игр.
func NewService(claims ClaimStore, ledger Ledger, jackpot JackpotFund, cfg *config.Config) *Service {
	return &Service{
		claims:  claims,
		ledger:  ledger,
		jackpot: jackpot,
		cfg:     cfg,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// roll выполняет fn под мьютексом: *rand.Rand не потокобезопасен,
// а апдейты обрабатываются параллельно.
func (s *Service) roll(fn func(rnd *rand.Rand)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.rnd)
}

// ClaimDaily выдаёт ежедневную награду.
// Сначала проверяется кулдаун, затем разыгрывается шанс джекпота:
// при попадании награда — весь накопленный пул, иначе — бросок по
// таблице DailyRewards. Отметка времени ставится только после
// успешного зачисления.
func (s *Service) ClaimDaily(ctx context.Context, userID int64, now time.Time) (*ClaimResult, error) {
	if !s.cfg.FeatureGamesEnabled {
		return nil, common.ErrGamesDisabled
	}

	last, err := s.claims.GetLastRedeemed(ctx, userID)
	if err != nil {
		return nil, err
	}
	period := s.cfg.DailyCooldown()
	if !CanRedeem(last, now, period) {
		return nil, &common.CooldownError{Remaining: Remaining(last, now, period)}
	}

	var hitJackpot bool
	var tier PrizeTier
	s.roll(func(rnd *rand.Rand) {
		hitJackpot = JackpotHit(rnd, s.cfg.DailyJackpotChance)
		if !hitJackpot {
			tier = PickPrize(rnd, DailyRewards)
		}
	})

	result := &ClaimResult{}
	if hitJackpot {
		pool, err := s.jackpot.Award(ctx)
		if err != nil {
			return nil, fmt.Errorf("ошибка снятия джекпота: %w", err)
		}
		if pool > 0 {
			result.IsJackpot = true
			result.Amount = pool
			result.Tier = "джекпот"
		} else {
			// Пул пуст — откатываемся на обычную таблицу
			s.roll(func(rnd *rand.Rand) {
				tier = PickPrize(rnd, DailyRewards)
			})
			result.Amount = tier.Amount
			result.Tier = tier.Label
		}
	} else {
		result.Amount = tier.Amount
		result.Tier = tier.Label
	}

	if err := s.ledger.AddBalance(ctx, userID, result.Amount, "daily", "Ежедневная награда"); err != nil {
		return nil, fmt.Errorf("ошибка зачисления ежедневной награды: %w", err)
	}
	if err := s.claims.MarkRedeemed(ctx, userID, now); err != nil {
		return nil, fmt.Errorf("ошибка фиксации ежедневной награды: %w", err)
	}

	balance, err := s.ledger.GetBalance(ctx, userID)
	if err != nil {
		return nil, err
	}
	result.NewBalance = balance

	log.WithFields(log.Fields{
		"user_id": userID,
		"amount":  result.Amount,
		"jackpot": result.IsJackpot,
	}).Info("Ежедневная награда выдана")

	return result, nil
}

// Spin крутит спин за фиксированную стоимость.
// Стоимость списывается до розыгрыша; если зачисление приза не удалось —
// стоимость возвращается.
func (s *Service) Spin(ctx context.Context, userID int64) (*SpinResult, error) {
	if !s.cfg.FeatureGamesEnabled {
		return nil, common.ErrGamesDisabled
	}

	cost := s.cfg.SpinCost
	if err := s.ledger.DeductBalance(ctx, userID, cost, "spin", "Оплата спина"); err != nil {
		return nil, err
	}

	var table PrizeTable
	var tier PrizeTier
	s.roll(func(rnd *rand.Rand) {
		table = SelectSpinTable(rnd)
		tier = PickPrize(rnd, table)
	})

	if tier.Amount > 0 {
		if err := s.ledger.AddBalance(ctx, userID, tier.Amount, "spin", "Выигрыш в спине"); err != nil {
			// Возвращаем стоимость, чтобы списание не пропало впустую
			if refundErr := s.ledger.AddBalance(ctx, userID, cost, "spin_refund", "Возврат за сбой спина"); refundErr != nil {
				log.WithError(refundErr).WithField("user_id", userID).Error("Ошибка возврата стоимости спина")
			}
			return nil, fmt.Errorf("ошибка зачисления выигрыша: %w", err)
		}
	}

	balance, err := s.ledger.GetBalance(ctx, userID)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user_id": userID,
		"table":   table.Name,
		"prize":   tier.Amount,
	}).Info("Спин сыгран")

	return &SpinResult{
		Cost:       cost,
		Prize:      tier.Amount,
		Tier:       tier.Label,
		Table:      table.Name,
		NewBalance: balance,
	}, nil
}

// PlayRockPaperScissors играет партию на ставку.
// Победа удваивает ставку, поражение её списывает, ничья ничего не меняет.
func (s *Service) PlayRockPaperScissors(ctx context.Context, userID int64, choice RPSChoice, bet int64) (*RPSResult, error) {
	if !s.cfg.FeatureGamesEnabled {
		return nil, common.ErrGamesDisabled
	}
	if bet < s.cfg.RPSMinBet {
		return nil, common.ErrBetTooSmall
	}

	// Проверяем баланс до розыгрыша: проигравшему нечем будет платить
	balance, err := s.ledger.GetBalance(ctx, userID)
	if err != nil {
		return nil, err
	}
	if balance < bet {
		return nil, common.ErrInsufficientBalance
	}

	var botChoice RPSChoice
	var outcome RPSOutcome
	s.roll(func(rnd *rand.Rand) {
		botChoice, outcome = PlayRPS(rnd, choice)
	})

	switch outcome {
	case RPSWin:
		if err := s.ledger.AddBalance(ctx, userID, bet, "rps", "Выигрыш в камень-ножницы-бумага"); err != nil {
			return nil, fmt.Errorf("ошибка зачисления выигрыша: %w", err)
		}
	case RPSLose:
		if err := s.ledger.DeductBalance(ctx, userID, bet, "rps", "Проигрыш в камень-ножницы-бумага"); err != nil {
			return nil, fmt.Errorf("ошибка списания проигрыша: %w", err)
		}
	}

	newBalance, err := s.ledger.GetBalance(ctx, userID)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user_id": userID,
		"bet":     bet,
		"outcome": outcome,
	}).Info("Партия в камень-ножницы-бумага сыграна")

	return &RPSResult{
		Player:     choice,
		Bot:        botChoice,
		Outcome:    outcome,
		Bet:        bet,
		NewBalance: newBalance,
	}, nil
}
