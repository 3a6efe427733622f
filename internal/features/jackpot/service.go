// Package jackpot — service.go содержит бизнес-логику джекпота:
// тиканье пула, покупка билетов, розыгрыш среди держателей.
package jackpot

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"dabhouse.ru/dabcoin-bot/internal/common"
	"dabhouse.ru/dabcoin-bot/internal/config"
)

// Store — операции хранилища джекпота.
type Store interface {
	GetPool(ctx context.Context) (int64, error)
	AddToPool(ctx context.Context, amount int64) (int64, error)
	TakePool(ctx context.Context) (int64, error)
	HasTicket(ctx context.Context, userID int64) (bool, error)
	AddTicket(ctx context.Context, userID int64, username string) error
	ListTickets(ctx context.Context) ([]*Ticket, error)
	ClearTickets(ctx context.Context) error
}

// Ledger — операции с балансами, которые нужны джекпоту.
type Ledger interface {
	AddBalance(ctx context.Context, userID int64, amount int64, txType, description string) error
	DeductBalance(ctx context.Context, userID int64, amount int64, txType, description string) error
}

// Service управляет джекпотом.
type Service struct {
	store  Store
	ledger Ledger
	cfg    *config.Config

	// mu сериализует покупки, розыгрыш и снятие пула целиком: покупка
	// не может вклиниться между чтением списка билетов и их сбросом.
	// Он же защищает rnd.
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewService создаёт новый сервис джекпота.
func NewService(store Store, ledger Ledger, cfg *config.Config) *Service {
	return &Service{
		store:  store,
		ledger: ledger,
		cfg:    cfg,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Increment пополняет пул на фиксированную величину.
// Вызывается планировщиком каждые JACKPOT_TICK_MINUTES минут.
func (s *Service) Increment(ctx context.Context) error {
	newAmount, err := s.store.AddToPool(ctx, s.cfg.JackpotIncrement)
	if err != nil {
		return err
	}
	log.WithField("pool", newAmount).Debug("Пул джекпота пополнен")
	return nil
}

// Peek возвращает текущий размер пула, не изменяя его.
func (s *Service) Peek(ctx context.Context) (int64, error) {
	return s.store.GetPool(ctx)
}

// Award снимает весь пул и возвращает его размер.
// Используется ежедневной наградой при попадании в шанс джекпота.
func (s *Service) Award(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.TakePool(ctx)
}

// BuyTicket покупает билет на розыгрыш джекпота.
// Цена зависит от текущего размера пула. Один билет на пользователя.
// Оплата уходит В ПУЛ: купленные билеты увеличивают будущий выигрыш.
func (s *Service) BuyTicket(ctx context.Context, userID int64, username string) (*PurchaseResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	has, err := s.store.HasTicket(ctx, userID)
	if err != nil {
		return nil, err
	}
	if has {
		return nil, common.ErrAlreadyHasJackpotTicket
	}

	pool, err := s.store.GetPool(ctx)
	if err != nil {
		return nil, err
	}
	price := TicketPrice(pool)

	if err := s.ledger.DeductBalance(ctx, userID, price, "jackpot_ticket", "Покупка билета джекпота"); err != nil {
		return nil, err
	}

	if err := s.store.AddTicket(ctx, userID, username); err != nil {
		// Билет не записался — возвращаем деньги
		if refundErr := s.ledger.AddBalance(ctx, userID, price, "jackpot_refund", "Возврат за билет джекпота"); refundErr != nil {
			log.WithError(refundErr).WithField("user_id", userID).Error("Ошибка возврата за билет джекпота")
		}
		if errors.Is(err, common.ErrAlreadyHasJackpotTicket) {
			return nil, common.ErrAlreadyHasJackpotTicket
		}
		return nil, fmt.Errorf("ошибка сохранения билета: %w", err)
	}

	newPool, err := s.store.AddToPool(ctx, price)
	if err != nil {
		return nil, fmt.Errorf("ошибка пополнения пула ценой билета: %w", err)
	}

	log.WithFields(log.Fields{
		"user_id": userID,
		"price":   price,
		"pool":    newPool,
	}).Info("Билет джекпота куплен")

	return &PurchaseResult{Price: price, Pool: newPool}, nil
}

// Draw разыгрывает джекпот среди держателей билетов.
// Если билетов нет — возвращает (nil, nil), пул остаётся нетронутым.
// Победитель выбирается равновероятно, получает весь пул,
// билеты сбрасываются.
func (s *Service) Draw(ctx context.Context) (*DrawResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tickets, err := s.store.ListTickets(ctx)
	if err != nil {
		return nil, err
	}
	if len(tickets) == 0 {
		return nil, nil
	}

	winner := tickets[s.rnd.Intn(len(tickets))]

	amount, err := s.store.TakePool(ctx)
	if err != nil {
		return nil, err
	}

	if amount > 0 {
		if err := s.ledger.AddBalance(ctx, winner.UserID, amount, "jackpot_win", "Выигрыш джекпота"); err != nil {
			return nil, fmt.Errorf("ошибка зачисления джекпота победителю: %w", err)
		}
	}

	if err := s.store.ClearTickets(ctx); err != nil {
		return nil, fmt.Errorf("ошибка сброса билетов джекпота: %w", err)
	}

	log.WithFields(log.Fields{
		"winner_id": winner.UserID,
		"amount":    amount,
		"tickets":   len(tickets),
	}).Info("Джекпот разыгран")

	return &DrawResult{
		WinnerID: winner.UserID,
		Winner:   winner.Username,
		Amount:   amount,
		Tickets:  len(tickets),
	}, nil
}
