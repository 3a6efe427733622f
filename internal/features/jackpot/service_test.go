package jackpot

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
	pool    int64
	tickets []*Ticket
	nextID  int64

	conflictOnAdd bool // вставка билета попадает в конфликт
}

func (f *fakeStore) GetPool(ctx context.Context) (int64, error) {
	return f.pool, nil
}

func (f *fakeStore) AddToPool(ctx context.Context, amount int64) (int64, error) {
	f.pool += amount
	return f.pool, nil
}

func (f *fakeStore) TakePool(ctx context.Context) (int64, error) {
	amount := f.pool
	f.pool = 0
	return amount, nil
}

func (f *fakeStore) HasTicket(ctx context.Context, userID int64) (bool, error) {
	for _, t := range f.tickets {
		if t.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) AddTicket(ctx context.Context, userID int64, username string) error {
	if f.conflictOnAdd {
		return common.ErrAlreadyHasJackpotTicket
	}
	for _, t := range f.tickets {
		if t.UserID == userID {
			return common.ErrAlreadyHasJackpotTicket
		}
	}
	f.nextID++
	f.tickets = append(f.tickets, &Ticket{ID: f.nextID, UserID: userID, Username: username})
	return nil
}

func (f *fakeStore) ListTickets(ctx context.Context) ([]*Ticket, error) {
	return f.tickets, nil
}

func (f *fakeStore) ClearTickets(ctx context.Context) error {
	f.tickets = nil
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
		JackpotIncrement:   46,
		JackpotTickMinutes: 10,
	}
}

func TestTicketPriceBands(t *testing.T) {
	assert.Equal(t, int64(500), TicketPrice(0))
	assert.Equal(t, int64(500), TicketPrice(9999))
	assert.Equal(t, int64(1000), TicketPrice(10000))
	assert.Equal(t, int64(1000), TicketPrice(99999))
	assert.Equal(t, int64(2500), TicketPrice(100000))
	assert.Equal(t, int64(2500), TicketPrice(5000000))
}

func TestIncrementGrowsPool(t *testing.T) {
	store := &fakeStore{}
	service := NewService(store, newFakeLedger(), testConfig())

	for i := 0; i < 3; i++ {
		require.NoError(t, service.Increment(context.Background()))
	}
	assert.Equal(t, int64(138), store.pool)
}

func TestBuyTicketAddsPriceToPool(t *testing.T) {
	store := &fakeStore{pool: 100}
	ledger := newFakeLedger()
	ledger.balances[1] = 1000
	service := NewService(store, ledger, testConfig())

	result, err := service.BuyTicket(context.Background(), 1, "alice")
	require.NoError(t, err)

	assert.Equal(t, int64(500), result.Price)
	assert.Equal(t, int64(600), result.Pool)
	assert.Equal(t, int64(500), ledger.balances[1])
	require.Len(t, store.tickets, 1)
}

func TestBuyTicketDuplicate(t *testing.T) {
	store := &fakeStore{}
	ledger := newFakeLedger()
	ledger.balances[1] = 10000
	service := NewService(store, ledger, testConfig())

	_, err := service.BuyTicket(context.Background(), 1, "alice")
	require.NoError(t, err)

	_, err = service.BuyTicket(context.Background(), 1, "alice")
	assert.ErrorIs(t, err, common.ErrAlreadyHasJackpotTicket)
	assert.Len(t, store.tickets, 1)
}

func TestBuyTicketInsufficientBalance(t *testing.T) {
	store := &fakeStore{pool: 100}
	ledger := newFakeLedger()
	ledger.balances[1] = 10 // меньше цены билета
	service := NewService(store, ledger, testConfig())

	_, err := service.BuyTicket(context.Background(), 1, "alice")
	assert.ErrorIs(t, err, common.ErrInsufficientBalance)
	assert.Empty(t, store.tickets)
	assert.Equal(t, int64(100), store.pool)
}

func TestBuyTicketConflictOnInsertRefunds(t *testing.T) {
	store := &fakeStore{pool: 100, conflictOnAdd: true}
	ledger := newFakeLedger()
	ledger.balances[1] = 1000
	service := NewService(store, ledger, testConfig())

	// Вставка попадает в конфликт уже после списания — деньги
	// возвращаются, пул не растёт
	_, err := service.BuyTicket(context.Background(), 1, "alice")
	assert.ErrorIs(t, err, common.ErrAlreadyHasJackpotTicket)
	assert.Equal(t, int64(1000), ledger.balances[1])
	assert.Equal(t, int64(100), store.pool)
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
	store := &fakeStore{pool: 5000}
	store.tickets = []*Ticket{{ID: 1, UserID: 10, Username: "alice"}}
	bs := &blockingStore{
		fakeStore:   store,
		listStarted: make(chan struct{}),
		listRelease: make(chan struct{}),
	}
	ledger := newFakeLedger()
	ledger.balances[2] = 1000
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

	// Пул целиком ушёл держателю билета, покупка легла уже
	// в новый раунд: билет цел, его цена — в новом пуле
	assert.Equal(t, int64(5000), ledger.balances[10])
	require.Len(t, store.tickets, 1)
	assert.Equal(t, int64(2), store.tickets[0].UserID)
	assert.Equal(t, int64(500), store.pool)
	assert.Equal(t, int64(500), ledger.balances[2])
}

func TestDrawNoTickets(t *testing.T) {
	store := &fakeStore{pool: 5000}
	service := NewService(store, newFakeLedger(), testConfig())

	result, err := service.Draw(context.Background())
	require.NoError(t, err)
	assert.Nil(t, result)
	// Пул продолжает копиться
	assert.Equal(t, int64(5000), store.pool)
}

func TestDrawCreditsWinnerAndResets(t *testing.T) {
	store := &fakeStore{pool: 5000}
	store.tickets = []*Ticket{
		{ID: 1, UserID: 10, Username: "alice"},
		{ID: 2, UserID: 20, Username: "bob"},
	}
	ledger := newFakeLedger()
	service := NewService(store, ledger, testConfig())

	result, err := service.Draw(context.Background())
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, int64(5000), result.Amount)
	assert.Equal(t, 2, result.Tickets)
	assert.Contains(t, []int64{10, 20}, result.WinnerID)
	assert.Equal(t, int64(5000), ledger.balances[result.WinnerID])
	assert.Equal(t, int64(0), store.pool)
	assert.Empty(t, store.tickets)
}

func TestAwardTakesWholePool(t *testing.T) {
	store := &fakeStore{pool: 4600}
	service := NewService(store, newFakeLedger(), testConfig())

	amount, err := service.Award(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4600), amount)
	assert.Equal(t, int64(0), store.pool)

	// Повторное снятие пустого пула — ноль
	amount, err = service.Award(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), amount)
}
