package games

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dabhouse.ru/dabcoin-bot/internal/common"
	"dabhouse.ru/dabcoin-bot/internal/config"
)

type fakeLedger struct {
	balances map[int64]int64
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{balances: make(map[int64]int64)}
}

func (f *fakeLedger) GetBalance(ctx context.Context, userID int64) (int64, error) {
	return f.balances[userID], nil
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

type fakeClaims struct {
	last map[int64]time.Time
}

func newFakeClaims() *fakeClaims {
	return &fakeClaims{last: make(map[int64]time.Time)}
}

func (f *fakeClaims) GetLastRedeemed(ctx context.Context, userID int64) (*time.Time, error) {
	t, ok := f.last[userID]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (f *fakeClaims) MarkRedeemed(ctx context.Context, userID int64, at time.Time) error {
	f.last[userID] = at
	return nil
}

type fakeJackpotFund struct {
	pool int64
}

func (f *fakeJackpotFund) Award(ctx context.Context) (int64, error) {
	amount := f.pool
	f.pool = 0
	return amount, nil
}

func testConfig() *config.Config {
	return &config.Config{
		DailyJackpotChance:  6,
		DailyCooldownHours:  24,
		SpinCost:            200,
		RPSMinBet:           10,
		FeatureGamesEnabled: true,
	}
}

func TestClaimDailyFirstTime(t *testing.T) {
	ledger := newFakeLedger()
	claims := newFakeClaims()
	cfg := testConfig()
	cfg.DailyJackpotChance = 0 // без джекпота, только таблица
	service := NewService(claims, ledger, &fakeJackpotFund{}, cfg)

	now := time.Now()
	result, err := service.ClaimDaily(context.Background(), 1, now)
	require.NoError(t, err)

	assert.False(t, result.IsJackpot)
	assert.Contains(t, []int64{50, 100, 500, 1000, 5000, 10000}, result.Amount)
	assert.Equal(t, result.Amount, result.NewBalance)
	assert.Equal(t, now, claims.last[1])
}

func TestClaimDailyCooldown(t *testing.T) {
	ledger := newFakeLedger()
	claims := newFakeClaims()
	cfg := testConfig()
	cfg.DailyJackpotChance = 0
	service := NewService(claims, ledger, &fakeJackpotFund{}, cfg)

	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	_, err := service.ClaimDaily(context.Background(), 1, now)
	require.NoError(t, err)

	// Через час — ещё рано
	_, err = service.ClaimDaily(context.Background(), 1, now.Add(time.Hour))
	var cooldownErr *common.CooldownError
	require.ErrorAs(t, err, &cooldownErr)
	assert.Equal(t, 23*time.Hour, cooldownErr.Remaining)

	// Ровно через сутки — можно
	_, err = service.ClaimDaily(context.Background(), 1, now.Add(24*time.Hour))
	require.NoError(t, err)
}

func TestClaimDailyJackpot(t *testing.T) {
	ledger := newFakeLedger()
	claims := newFakeClaims()
	fund := &fakeJackpotFund{pool: 4600}
	cfg := testConfig()
	cfg.DailyJackpotChance = 100 // форсируем попадание
	service := NewService(claims, ledger, fund, cfg)

	result, err := service.ClaimDaily(context.Background(), 1, time.Now())
	require.NoError(t, err)

	assert.True(t, result.IsJackpot)
	assert.Equal(t, int64(4600), result.Amount)
	assert.Equal(t, int64(4600), ledger.balances[1])
	assert.Equal(t, int64(0), fund.pool)
}

func TestClaimDailyJackpotEmptyPoolFallsBack(t *testing.T) {
	ledger := newFakeLedger()
	claims := newFakeClaims()
	cfg := testConfig()
	cfg.DailyJackpotChance = 100
	service := NewService(claims, ledger, &fakeJackpotFund{pool: 0}, cfg)

	result, err := service.ClaimDaily(context.Background(), 1, time.Now())
	require.NoError(t, err)

	// Пул пуст — обычная награда вместо джекпота
	assert.False(t, result.IsJackpot)
	assert.Contains(t, []int64{50, 100, 500, 1000, 5000, 10000}, result.Amount)
}

func TestClaimDailyDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.FeatureGamesEnabled = false
	service := NewService(newFakeClaims(), newFakeLedger(), &fakeJackpotFund{}, cfg)

	_, err := service.ClaimDaily(context.Background(), 1, time.Now())
	assert.ErrorIs(t, err, common.ErrGamesDisabled)
}

func TestSpinInsufficientBalance(t *testing.T) {
	ledger := newFakeLedger()
	ledger.balances[1] = 100 // меньше стоимости спина
	service := NewService(newFakeClaims(), ledger, &fakeJackpotFund{}, testConfig())

	_, err := service.Spin(context.Background(), 1)
	assert.ErrorIs(t, err, common.ErrInsufficientBalance)
	assert.Equal(t, int64(100), ledger.balances[1])
}

func TestSpinBalanceArithmetic(t *testing.T) {
	ledger := newFakeLedger()
	ledger.balances[1] = 10000
	service := NewService(newFakeClaims(), ledger, &fakeJackpotFund{}, testConfig())

	result, err := service.Spin(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, int64(200), result.Cost)
	assert.Equal(t, int64(10000)-result.Cost+result.Prize, result.NewBalance)
	assert.GreaterOrEqual(t, result.Prize, int64(0))
}

func TestRPSBetTooSmall(t *testing.T) {
	ledger := newFakeLedger()
	ledger.balances[1] = 1000
	service := NewService(newFakeClaims(), ledger, &fakeJackpotFund{}, testConfig())

	_, err := service.PlayRockPaperScissors(context.Background(), 1, RPSRock, 5)
	assert.ErrorIs(t, err, common.ErrBetTooSmall)
}

func TestRPSInsufficientBalance(t *testing.T) {
	ledger := newFakeLedger()
	ledger.balances[1] = 50
	service := NewService(newFakeClaims(), ledger, &fakeJackpotFund{}, testConfig())

	_, err := service.PlayRockPaperScissors(context.Background(), 1, RPSRock, 100)
	assert.ErrorIs(t, err, common.ErrInsufficientBalance)
	assert.Equal(t, int64(50), ledger.balances[1])
}

func TestRPSBalanceChanges(t *testing.T) {
	ledger := newFakeLedger()
	ledger.balances[1] = 1000
	service := NewService(newFakeClaims(), ledger, &fakeJackpotFund{}, testConfig())

	result, err := service.PlayRockPaperScissors(context.Background(), 1, RPSPaper, 100)
	require.NoError(t, err)

	switch result.Outcome {
	case RPSWin:
		assert.Equal(t, int64(1100), result.NewBalance)
	case RPSLose:
		assert.Equal(t, int64(900), result.NewBalance)
	case RPSDraw:
		assert.Equal(t, int64(1000), result.NewBalance)
	}
}
