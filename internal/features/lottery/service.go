// Package lottery — service.go содержит бизнес-логику лотереи:
// покупка номерных билетов, розыгрыш, автостарт по расписанию.
package lottery

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"dabhouse.ru/dabcoin-bot/internal/common"
	"dabhouse.ru/dabcoin-bot/internal/config"
)

// autoStartPattern — допустимый формат времени автостарта.
// Часы 0-23 (с ведущим нулём или без), минуты строго две цифры.
var autoStartPattern = regexp.MustCompile(`^([01]?\d|2[0-3]):([0-5]\d)$`)

// Store — операции хранилища лотереи.
type Store interface {
	GetRound(ctx context.Context) (*Round, error)
	GetTicket(ctx context.Context, userID int64) (*Ticket, error)
	ListTickets(ctx context.Context) ([]*Ticket, error)
	AddTicket(ctx context.Context, userID int64, username string, number int) error
	SetPrize(ctx context.Context, prize int64) error
	ResetRound(ctx context.Context) error
	SetAutoStartTime(ctx context.Context, hhmm string) error
}

// Ledger — операции с балансами, которые нужны лотерее.
type Ledger interface {
	AddBalance(ctx context.Context, userID int64, amount int64, txType, description string) error
	DeductBalance(ctx context.Context, userID int64, amount int64, txType, description string) error
}

// Service управляет лотереей.
type Service struct {
	store  Store
	ledger Ledger
	cfg    *config.Config

	// mu сериализует покупки и розыгрыши целиком: покупка не может
	// вклиниться между чтением списка билетов и сбросом раунда.
	// Он же защищает rnd и lastAutoDraw.
	mu           sync.Mutex
	rnd          *rand.Rand
	lastAutoDraw time.Time // минута последнего автостарта, защита от повтора
}

// NewService создаёт новый сервис лотереи.
func NewService(store Store, ledger Ledger, cfg *config.Config) *Service {
	return &Service{
		store:  store,
		ledger: ledger,
		cfg:    cfg,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// BuyTicket покупает билет лотереи.
// Один билет на пользователя за раунд. Номер присваивается случайно
// из 1..TicketNumberSpace. Призовой фонд раунда фиксируется случайной
// суммой при первой покупке и не растёт от последующих билетов.
func (s *Service) BuyTicket(ctx context.Context, userID int64, username string) (*PurchaseResult, error) {
	if !s.cfg.FeatureLotteryEnabled {
		return nil, common.ErrGamesDisabled
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.store.GetTicket(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, common.ErrAlreadyHasTicket
	}

	price := s.cfg.LotteryTicketPrice
	if err := s.ledger.DeductBalance(ctx, userID, price, "lottery_ticket", "Покупка билета лотереи"); err != nil {
		return nil, err
	}
	refund := func() {
		if err := s.ledger.AddBalance(ctx, userID, price, "lottery_refund", "Возврат за билет лотереи"); err != nil {
			log.WithError(err).WithField("user_id", userID).Error("Ошибка возврата за билет лотереи")
		}
	}

	// Призовой фонд фиксируется ДО записи билета: раунд с билетами
	// всегда имеет приз, даже если мы упадём между этими шагами.
	round, err := s.store.GetRound(ctx)
	if err != nil {
		refund()
		return nil, err
	}
	var prize int64
	if round.Prize == nil {
		prize = s.cfg.LotteryPrizeMin + s.rnd.Int63n(s.cfg.LotteryPrizeMax-s.cfg.LotteryPrizeMin+1)
		if err := s.store.SetPrize(ctx, prize); err != nil {
			refund()
			return nil, err
		}
	} else {
		prize = *round.Prize
	}

	number := s.rnd.Intn(TicketNumberSpace) + 1
	if err := s.store.AddTicket(ctx, userID, username, number); err != nil {
		refund()
		if errors.Is(err, common.ErrAlreadyHasTicket) {
			return nil, common.ErrAlreadyHasTicket
		}
		return nil, fmt.Errorf("ошибка сохранения билета: %w", err)
	}

	log.WithFields(log.Fields{
		"user_id": userID,
		"number":  number,
		"prize":   prize,
	}).Info("Билет лотереи куплен")

	return &PurchaseResult{Number: number, Prize: prize}, nil
}

// Draw разыгрывает лотерею.
// Если билетов нет — возвращает (nil, nil), ничего не меняя.
// Выигрышный номер бросается из 1..TicketNumberSpace; если он ничей —
// приз сгорает (НЕ переносится). Раунд сбрасывается в любом случае.
func (s *Service) Draw(ctx context.Context) (*DrawResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drawLocked(ctx)
}

// drawLocked бросает выигрышный номер и проводит розыгрыш. Вызывается
// только под s.mu.
func (s *Service) drawLocked(ctx context.Context) (*DrawResult, error) {
	winning := s.rnd.Intn(TicketNumberSpace) + 1
	return s.drawWithNumber(ctx, winning)
}

// drawWithNumber проводит розыгрыш с заданным выигрышным номером.
func (s *Service) drawWithNumber(ctx context.Context, winning int) (*DrawResult, error) {
	tickets, err := s.store.ListTickets(ctx)
	if err != nil {
		return nil, err
	}
	if len(tickets) == 0 {
		return nil, nil
	}

	round, err := s.store.GetRound(ctx)
	if err != nil {
		return nil, err
	}
	var prize int64
	if round.Prize != nil {
		prize = *round.Prize
	}

	result := &DrawResult{
		WinningNumber: winning,
		Prize:         prize,
		Tickets:       len(tickets),
	}
	for _, t := range tickets {
		if t.Number == winning {
			result.Winner = t
			break
		}
	}

	if result.Winner != nil && prize > 0 {
		if err := s.ledger.AddBalance(ctx, result.Winner.UserID, prize, "lottery_win", "Выигрыш в лотерее"); err != nil {
			return nil, fmt.Errorf("ошибка зачисления приза победителю: %w", err)
		}
	}

	if err := s.store.ResetRound(ctx); err != nil {
		return nil, fmt.Errorf("ошибка завершения раунда: %w", err)
	}

	log.WithFields(log.Fields{
		"winning_number": winning,
		"tickets":        len(tickets),
		"has_winner":     result.Winner != nil,
		"prize":          prize,
	}).Info("Лотерея разыграна")

	return result, nil
}

// SetAutoStartTime устанавливает время ежедневного автостарта розыгрыша.
// Принимает "ЧЧ:ММ" (часы с ведущим нулём или без), сохраняет в
// нормализованном виде "07:05".
func (s *Service) SetAutoStartTime(ctx context.Context, hhmm string) (string, error) {
	m := autoStartPattern.FindStringSubmatch(hhmm)
	if m == nil {
		return "", common.ErrInvalidTimeFormat
	}
	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	normalized := fmt.Sprintf("%02d:%02d", hours, minutes)

	if err := s.store.SetAutoStartTime(ctx, normalized); err != nil {
		return "", err
	}

	log.WithField("auto_start", normalized).Info("Время автостарта лотереи установлено")
	return normalized, nil
}

// CheckAutoDraw проверяет, наступило ли время автостарта, и проводит
// розыгрыш. Вызывается планировщиком раз в минуту. Защита от повторного
// срабатывания в одну минуту — через lastAutoDraw.
// Возвращает (result, true, nil), если розыгрыш состоялся.
func (s *Service) CheckAutoDraw(ctx context.Context, now time.Time) (*DrawResult, bool, error) {
	round, err := s.store.GetRound(ctx)
	if err != nil {
		return nil, false, err
	}
	if round.AutoStartTime == nil {
		return nil, false, nil
	}
	if now.Format("15:04") != *round.AutoStartTime {
		return nil, false, nil
	}

	minute := now.Truncate(time.Minute)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastAutoDraw.Equal(minute) {
		return nil, false, nil
	}
	s.lastAutoDraw = minute

	result, err := s.drawLocked(ctx)
	if err != nil {
		return nil, false, err
	}
	if result == nil {
		// Билетов нет — автостарт тихо пропускается
		return nil, false, nil
	}
	return result, true, nil
}

// FormatDrawResult форматирует итог розыгрыша для объявления в чат.
func FormatDrawResult(result *DrawResult) string {
	if result.Winner != nil {
		name := result.Winner.Username
		if name == "" {
			name = fmt.Sprintf("id%d", result.Winner.UserID)
		}
		return fmt.Sprintf(
			"🎉 Итоги лотереи!\n🔮 Выигрышный номер: %s\n🏆 Победитель: %s (билет №%s)\n💰 Приз: %s",
			common.FormatNumber(int64(result.WinningNumber)),
			name,
			common.FormatNumber(int64(result.Winner.Number)),
			common.FormatBalance(result.Prize),
		)
	}
	return fmt.Sprintf(
		"🎱 Итоги лотереи!\n🔮 Выигрышный номер: %s\n😔 Среди %d %s совпадений нет — приз сгорает",
		common.FormatNumber(int64(result.WinningNumber)),
		result.Tickets,
		common.PluralizeTickets(result.Tickets),
	)
}
