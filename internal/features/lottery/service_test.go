package lottery

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dabhouse.ru/dabcoin-bot/internal/common"
	"dabhouse.ru/dabcoin-bot/internal/config"
)

type fakeStore struct {
	round   Round
	tickets []*Ticket
	nextID  int64

	conflictOnAdd bool     // вставка билета попадает в конфликт
	ops           []string // порядок записей в хранилище
}

func newFakeStore() *fakeStore {
	return &fakeStore{round: Round{ID: 1}}
}

func (f *fakeStore) GetRound(ctx context.Context) (*Round, error) {
	round := f.round
	return &round, nil
}

func (f *fakeStore) GetTicket(ctx context.Context, userID int64) (*Ticket, error) {
	for _, t := range f.tickets {
		if t.UserID == userID {
			return t, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListTickets(ctx context.Context) ([]*Ticket, error) {
	return f.tickets, nil
}

func (f *fakeStore) AddTicket(ctx context.Context, userID int64, username string, number int) error {
	f.ops = append(f.ops, "add_ticket")
	if f.conflictOnAdd {
		return common.ErrAlreadyHasTicket
	}
	for _, t := range f.tickets {
		if t.UserID == userID {
			return common.ErrAlreadyHasTicket
		}
	}
	f.nextID++
	f.tickets = append(f.tickets, &Ticket{ID: f.nextID, UserID: userID, Username: username, Number: number})
	return nil
}

func (f *fakeStore) SetPrize(ctx context.Context, prize int64) error {
	f.ops = append(f.ops, "set_prize")
	f.round.Prize = &prize
	return nil
}

func (f *fakeStore) ResetRound(ctx context.Context) error {
	f.tickets = nil
	f.round.Prize = nil
	return nil
}

func (f *fakeStore) SetAutoStartTime(ctx context.Context, hhmm string) error {
	f.round.AutoStartTime = &hhmm
	return nil
}

type fakeLedger struct {
	balances map[int64]int64
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{balances: make(map[int64]int64)}
}

func (f *fakeLedger) AddBalance(ctx context.Context, userID int64, amount int64, txType, description string) error {
	f.balances[userID] += amount
	return nil
}

func (f *fakeLedger) DeductBalance(ctx context.Context, userID int64, amount int64, txType, description string) error {
	if f.balances[userID] < amount {
		return common.ErrInsufficientBalance
	}
	f.balances[userID] -= amount
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		LotteryTicketPrice:    10000,
		LotteryPrizeMin:       250000,
		LotteryPrizeMax:       2000000,
		FeatureLotteryEnabled: true,
	}
}

func TestBuyTicket(t *testing.T) {
	store := newFakeStore()
	ledger := newFakeLedger()
	ledger.balances[1] = 10000
	service := NewService(store, ledger, testConfig())

	result, err := service.BuyTicket(context.Background(), 1, "alice")
	require.NoError(t, err)

	assert.Equal(t, int64(0), ledger.balances[1])
	assert.GreaterOrEqual(t, result.Number, 1)
	assert.LessOrEqual(t, result.Number, TicketNumberSpace)
	// Призовой фонд разыгран при первой покупке
	assert.GreaterOrEqual(t, result.Prize, int64(250000))
	assert.LessOrEqual(t, result.Prize, int64(2000000))
	require.NotNil(t, store.round.Prize)
}

func TestBuyTicketPrizeFixedAfterFirst(t *testing.T) {
	store := newFakeStore()
	ledger := newFakeLedger()
	ledger.balances[1] = 10000
	ledger.balances[2] = 10000
	service := NewService(store, ledger, testConfig())

	first, err := service.BuyTicket(context.Background(), 1, "alice")
	require.NoError(t, err)

	second, err := service.BuyTicket(context.Background(), 2, "bob")
	require.NoError(t, err)

	// Фонд не меняется от последующих покупок
	assert.Equal(t, first.Prize, second.Prize)
}

func TestBuyTicketDuplicate(t *testing.T) {
	store := newFakeStore()
	ledger := newFakeLedger()
	ledger.balances[1] = 50000
	service := NewService(store, ledger, testConfig())

	_, err := service.BuyTicket(context.Background(), 1, "alice")
	require.NoError(t, err)
	balanceAfterFirst := ledger.balances[1]

	_, err = service.BuyTicket(context.Background(), 1, "alice")
	assert.ErrorIs(t, err, common.ErrAlreadyHasTicket)
	// Повторная покупка ничего не списывает
	assert.Equal(t, balanceAfterFirst, ledger.balances[1])
	assert.Len(t, store.tickets, 1)
}

func TestBuyTicketInsufficientBalance(t *testing.T) {
	store := newFakeStore()
	ledger := newFakeLedger()
	ledger.balances[1] = 500
	service := NewService(store, ledger, testConfig())

	_, err := service.BuyTicket(context.Background(), 1, "alice")
	assert.ErrorIs(t, err, common.ErrInsufficientBalance)
	assert.Empty(t, store.tickets)
}

func TestBuyTicketSeedsPrizeBeforeInsert(t *testing.T) {
	store := newFakeStore()
	ledger := newFakeLedger()
	ledger.balances[1] = 10000
	service := NewService(store, ledger, testConfig())

	_, err := service.BuyTicket(context.Background(), 1, "alice")
	require.NoError(t, err)

	// Фонд фиксируется до записи билета: раунд с билетами
	// никогда не остаётся без приза
	require.Equal(t, []string{"set_prize", "add_ticket"}, store.ops)
}

func TestBuyTicketConflictOnInsertRefunds(t *testing.T) {
	store := newFakeStore()
	store.conflictOnAdd = true
	ledger := newFakeLedger()
	ledger.balances[1] = 10000
	service := NewService(store, ledger, testConfig())

	// Вставка попадает в конфликт уже после списания (билет успел
	// появиться между проверкой и записью) — деньги возвращаются
	_, err := service.BuyTicket(context.Background(), 1, "alice")
	assert.ErrorIs(t, err, common.ErrAlreadyHasTicket)
	assert.Equal(t, int64(10000), ledger.balances[1])
	assert.Empty(t, store.tickets)
}

// blockingStore задерживает первый ListTickets, чтобы тест успел
// запустить покупку в середине розыгрыша.
type blockingStore struct {
	*fakeStore
	listStarted chan struct{}
	listRelease chan struct{}
	once        sync.Once
}

func (b *blockingStore) ListTickets(ctx context.Context) ([]*Ticket, error) {
	b.once.Do(func() {
		close(b.listStarted)
		<-b.listRelease
	})
	return b.fakeStore.ListTickets(ctx)
}

func TestDrawBlocksConcurrentPurchase(t *testing.T) {
	store := newFakeStore()
	prize := int64(500000)
	store.round.Prize = &prize
	store.tickets = []*Ticket{{ID: 1, UserID: 10, Username: "alice", Number: 1}}
	bs := &blockingStore{
		fakeStore:   store,
		listStarted: make(chan struct{}),
		listRelease: make(chan struct{}),
	}
	ledger := newFakeLedger()
	ledger.balances[2] = 10000
	service := NewService(bs, ledger, testConfig())

	drawDone := make(chan error, 1)
	go func() {
		_, err := service.Draw(context.Background())
		drawDone <- err
	}()
	<-bs.listStarted

	buyDone := make(chan error, 1)
	go func() {
		_, err := service.BuyTicket(context.Background(), 2, "bob")
		buyDone <- err
	}()

	// Покупка не проходит, пока идёт розыгрыш
	select {
	case <-buyDone:
		t.Fatal("покупка прошла в середине розыгрыша")
	case <-time.After(50 * time.Millisecond):
	}

	close(bs.listRelease)
	require.NoError(t, <-drawDone)
	require.NoError(t, <-buyDone)

	// Билет куплен уже в новый раунд и пережил сброс
	require.Len(t, store.tickets, 1)
	assert.Equal(t, int64(2), store.tickets[0].UserID)
	assert.Equal(t, int64(0), ledger.balances[2])
	require.NotNil(t, store.round.Prize)
}

func TestDrawNoTickets(t *testing.T) {
	store := newFakeStore()
	service := NewService(store, newFakeLedger(), testConfig())

	result, err := service.Draw(context.Background())
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestDrawWithWinner(t *testing.T) {
	store := newFakeStore()
	prize := int64(500000)
	store.round.Prize = &prize
	store.tickets = []*Ticket{
		{ID: 1, UserID: 10, Username: "alice", Number: 123},
		{ID: 2, UserID: 20, Username: "bob", Number: 456},
	}
	ledger := newFakeLedger()
	service := NewService(store, ledger, testConfig())

	result, err := service.drawWithNumber(context.Background(), 456)
	require.NoError(t, err)
	require.NotNil(t, result)

	require.NotNil(t, result.Winner)
	assert.Equal(t, int64(20), result.Winner.UserID)
	assert.Equal(t, int64(500000), ledger.balances[20])
	// Раунд сброшен
	assert.Empty(t, store.tickets)
	assert.Nil(t, store.round.Prize)
}

func TestDrawNoWinnerDiscardsPrize(t *testing.T) {
	store := newFakeStore()
	prize := int64(500000)
	store.round.Prize = &prize
	autoStart := "21:00"
	store.round.AutoStartTime = &autoStart
	store.tickets = []*Ticket{
		{ID: 1, UserID: 10, Username: "alice", Number: 123},
	}
	ledger := newFakeLedger()
	service := NewService(store, ledger, testConfig())

	result, err := service.drawWithNumber(context.Background(), 99999)
	require.NoError(t, err)
	require.NotNil(t, result)

	// Совпадений нет — приз сгорает, никому не начисляется
	assert.Nil(t, result.Winner)
	assert.Empty(t, ledger.balances)
	assert.Empty(t, store.tickets)
	assert.Nil(t, store.round.Prize)
	// Время автостарта переживает сброс раунда
	require.NotNil(t, store.round.AutoStartTime)
	assert.Equal(t, "21:00", *store.round.AutoStartTime)
}

func TestSetAutoStartTime(t *testing.T) {
	store := newFakeStore()
	service := NewService(store, newFakeLedger(), testConfig())

	normalized, err := service.SetAutoStartTime(context.Background(), "9:05")
	require.NoError(t, err)
	assert.Equal(t, "09:05", normalized)

	normalized, err = service.SetAutoStartTime(context.Background(), "23:59")
	require.NoError(t, err)
	assert.Equal(t, "23:59", normalized)

	for _, bad := range []string{"24:00", "12:60", "1205", "12:5", "abc", ""} {
		_, err := service.SetAutoStartTime(context.Background(), bad)
		assert.ErrorIs(t, err, common.ErrInvalidTimeFormat, "input=%q", bad)
	}
}

func TestCheckAutoDraw(t *testing.T) {
	store := newFakeStore()
	prize := int64(300000)
	store.round.Prize = &prize
	autoStart := "21:00"
	store.round.AutoStartTime = &autoStart
	store.tickets = []*Ticket{{ID: 1, UserID: 10, Username: "alice", Number: 1}}
	service := NewService(store, newFakeLedger(), testConfig())

	// Не то время — не срабатывает
	_, fired, err := service.CheckAutoDraw(context.Background(), time.Date(2026, 8, 28, 20, 59, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.False(t, fired)

	// Время совпало — розыгрыш
	now := time.Date(2026, 8, 28, 21, 0, 10, 0, time.UTC)
	result, fired, err := service.CheckAutoDraw(context.Background(), now)
	require.NoError(t, err)
	assert.True(t, fired)
	require.NotNil(t, result)

	// Повтор в ту же минуту — не срабатывает
	_, fired, err = service.CheckAutoDraw(context.Background(), now.Add(20*time.Second))
	require.NoError(t, err)
	assert.False(t, fired)
}

func TestCheckAutoDrawDisabled(t *testing.T) {
	store := newFakeStore()
	service := NewService(store, newFakeLedger(), testConfig())

	_, fired, err := service.CheckAutoDraw(context.Background(), time.Now())
	require.NoError(t, err)
	assert.False(t, fired)
}
