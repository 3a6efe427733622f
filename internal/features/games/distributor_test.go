package games

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPickPrizeFallbackOnZeroWeights(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))

	// Таблица с нулевой суммой весов — всегда Fallback
	table := PrizeTable{
		Name:     "empty",
		Tiers:    []PrizeTier{{Amount: 100, Weight: 0}},
		Fallback: PrizeTier{Label: "минимум", Amount: 50},
	}

	for i := 0; i < 100; i++ {
		tier := PickPrize(rnd, table)
		assert.Equal(t, int64(50), tier.Amount)
	}
}

func TestPickPrizeSingleTierAlwaysWins(t *testing.T) {
	rnd := rand.New(rand.NewSource(2))

	// Единственный уровень забирает весь диапазон броска, каким бы ни был вес
	table := PrizeTable{
		Name:     "single",
		Tiers:    []PrizeTier{{Amount: 777, Weight: 7}},
		Fallback: PrizeTier{Amount: 0},
	}

	for i := 0; i < 100; i++ {
		assert.Equal(t, int64(777), PickPrize(rnd, table).Amount)
	}
}

func TestDailyRewardsDistribution(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))

	const iterations = 100000
	counts := make(map[int64]int)
	for i := 0; i < iterations; i++ {
		counts[PickPrize(rnd, DailyRewards).Amount]++
	}

	// Каждый уровень выпадает с частотой вес/42
	const totalWeight = 42.0
	expected := map[int64]float64{
		50:    15 / totalWeight,
		100:   10 / totalWeight,
		500:   8 / totalWeight,
		1000:  5 / totalWeight,
		5000:  3 / totalWeight,
		10000: 1 / totalWeight,
	}
	for amount, want := range expected {
		ratio := float64(counts[amount]) / iterations
		assert.InDelta(t, want, ratio, 0.01, "приз %d", amount)
	}

	// Выпадают только значения из таблицы
	for amount := range counts {
		assert.Contains(t, []int64{50, 100, 500, 1000, 5000, 10000}, amount)
	}
}

func TestGodTierDistribution(t *testing.T) {
	rnd := rand.New(rand.NewSource(5))

	// Сумма весов божественной таблицы 10: миллион — ровно 1/10
	const iterations = 100000
	counts := make(map[int64]int)
	for i := 0; i < iterations; i++ {
		counts[PickPrize(rnd, GodTierPrizes).Amount]++
	}

	assert.InDelta(t, 0.1, float64(counts[1000000])/iterations, 0.01)
	assert.InDelta(t, 0.3, float64(counts[500000])/iterations, 0.01)
	assert.InDelta(t, 0.6, float64(counts[250000])/iterations, 0.01)
}

func TestJackpotHitStatistics(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))

	const iterations = 100000
	hits := 0
	for i := 0; i < iterations; i++ {
		if JackpotHit(rnd, 6) {
			hits++
		}
	}

	ratio := float64(hits) / iterations
	assert.InDelta(t, 0.06, ratio, 0.01)
}

func TestJackpotHitEdgeChances(t *testing.T) {
	rnd := rand.New(rand.NewSource(8))

	for i := 0; i < 1000; i++ {
		assert.False(t, JackpotHit(rnd, 0))
		assert.True(t, JackpotHit(rnd, 100))
	}
}

func TestSelectSpinTableDistribution(t *testing.T) {
	rnd := rand.New(rand.NewSource(9))

	const iterations = 100000
	counts := make(map[string]int)
	for i := 0; i < iterations; i++ {
		counts[SelectSpinTable(rnd).Name]++
	}

	assert.InDelta(t, 0.03, float64(counts["god"])/iterations, 0.01)
	// Высокая таблица: 15% от оставшихся 97%
	assert.InDelta(t, 0.1455, float64(counts["high"])/iterations, 0.01)
	assert.InDelta(t, 0.8245, float64(counts["low"])/iterations, 0.01)
}
