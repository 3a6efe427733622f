package economy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dabhouse.ru/dabcoin-bot/internal/common"
)

// fakeStore — in-memory реализация Store для тестов.
type fakeStore struct {
	balances     map[int64]int64
	ignored      map[int64]bool
	transactions []*Transaction
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		balances: make(map[int64]int64),
		ignored:  make(map[int64]bool),
	}
}

func (f *fakeStore) EnsureBalance(ctx context.Context, userID int64) error {
	if _, ok := f.balances[userID]; !ok {
		f.balances[userID] = 0
	}
	return nil
}

func (f *fakeStore) GetBalance(ctx context.Context, userID int64) (int64, error) {
	return f.balances[userID], nil
}

func (f *fakeStore) Adjust(ctx context.Context, userID int64, delta int64, txType, description string) (int64, error) {
	f.balances[userID] += delta
	f.transactions = append(f.transactions, &Transaction{Amount: delta, TransactionType: txType, Description: description})
	return f.balances[userID], nil
}

func (f *fakeStore) Deduct(ctx context.Context, userID int64, amount int64, txType, description string) error {
	if f.balances[userID] < amount {
		return common.ErrInsufficientBalance
	}
	f.balances[userID] -= amount
	return nil
}

func (f *fakeStore) Transfer(ctx context.Context, fromUserID, toUserID, amount int64) error {
	if f.balances[fromUserID] < amount {
		return common.ErrInsufficientBalance
	}
	f.balances[fromUserID] -= amount
	f.balances[toUserID] += amount
	return nil
}

func (f *fakeStore) SetIgnored(ctx context.Context, userID int64, ignored bool) error {
	f.ignored[userID] = ignored
	return nil
}

func (f *fakeStore) IsIgnored(ctx context.Context, userID int64) (bool, error) {
	return f.ignored[userID], nil
}

func (f *fakeStore) Leaderboard(ctx context.Context) ([]*LeaderboardEntry, error) {
	var entries []*LeaderboardEntry
	for id, bal := range f.balances {
		if !f.ignored[id] {
			entries = append(entries, &LeaderboardEntry{UserID: id, Balance: bal})
		}
	}
	return entries, nil
}

func (f *fakeStore) GetTransactions(ctx context.Context, userID int64, limit int) ([]*Transaction, error) {
	if len(f.transactions) > limit {
		return f.transactions[:limit], nil
	}
	return f.transactions, nil
}

func TestTransferMovesFunds(t *testing.T) {
	store := newFakeStore()
	store.balances[1] = 1000
	service := NewService(store)

	err := service.Transfer(context.Background(), 1, 2, 300)
	require.NoError(t, err)

	assert.Equal(t, int64(700), store.balances[1])
	assert.Equal(t, int64(300), store.balances[2])
	// Сумма балансов не меняется
	assert.Equal(t, int64(1000), store.balances[1]+store.balances[2])
}

func TestTransferToSelf(t *testing.T) {
	store := newFakeStore()
	store.balances[1] = 1000
	service := NewService(store)

	err := service.Transfer(context.Background(), 1, 1, 100)
	assert.ErrorIs(t, err, common.ErrSelfTransfer)
	assert.Equal(t, int64(1000), store.balances[1])
}

func TestTransferInvalidAmount(t *testing.T) {
	store := newFakeStore()
	store.balances[1] = 1000
	service := NewService(store)

	assert.ErrorIs(t, service.Transfer(context.Background(), 1, 2, 0), common.ErrInvalidAmount)
	assert.ErrorIs(t, service.Transfer(context.Background(), 1, 2, -50), common.ErrInvalidAmount)
	assert.Equal(t, int64(1000), store.balances[1])
}

func TestTransferInsufficientBalance(t *testing.T) {
	store := newFakeStore()
	store.balances[1] = 100
	service := NewService(store)

	err := service.Transfer(context.Background(), 1, 2, 500)
	assert.ErrorIs(t, err, common.ErrInsufficientBalance)
	assert.Equal(t, int64(100), store.balances[1])
	assert.Equal(t, int64(0), store.balances[2])
}

func TestAddBalanceRejectsNonPositive(t *testing.T) {
	store := newFakeStore()
	service := NewService(store)

	assert.ErrorIs(t, service.AddBalance(context.Background(), 1, 0, "test", ""), common.ErrInvalidAmount)
	assert.ErrorIs(t, service.AddBalance(context.Background(), 1, -10, "test", ""), common.ErrInvalidAmount)

	require.NoError(t, service.AddBalance(context.Background(), 1, 50, "test", ""))
	assert.Equal(t, int64(50), store.balances[1])
}

func TestAdjustBalanceAllowsNegative(t *testing.T) {
	store := newFakeStore()
	store.balances[1] = 100
	service := NewService(store)

	// Привилегированная корректировка может увести баланс в минус
	newBalance, err := service.AdjustBalance(context.Background(), 1, -300, "корректировка")
	require.NoError(t, err)
	assert.Equal(t, int64(-200), newBalance)
}

func TestLeaderboardExcludesIgnored(t *testing.T) {
	store := newFakeStore()
	store.balances[1] = 100
	store.balances[2] = 200
	service := NewService(store)

	require.NoError(t, service.SetIgnored(context.Background(), 2, true))

	entries, err := service.Leaderboard(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(1), entries[0].UserID)
}
