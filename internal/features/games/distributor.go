// Package games — distributor.go реализует розыгрыш по взвешенным таблицам.
package games

import "math/rand"

// PickPrize разыгрывает приз по таблице: бросок из [0, сумма весов),
// кумулятивный проход по уровням. Вероятность уровня — его вес,
// делённый на сумму весов; веса не нормализуются. Fallback достижим
// только для таблицы с нулевой суммой весов.
func PickPrize(rnd *rand.Rand, table PrizeTable) PrizeTier {
	total := 0
	for _, tier := range table.Tiers {
		total += tier.Weight
	}
	if total <= 0 {
		return table.Fallback
	}

	roll := rnd.Intn(total)
	for _, tier := range table.Tiers {
		if roll < tier.Weight {
			return tier
		}
		roll -= tier.Weight
	}
	return table.Fallback
}

// SelectSpinTable выбирает таблицу спина вложенными бросками:
// сначала разыгрывается божественная (3%), затем — НОВЫМ броском —
// высокая (15%), иначе обычная. Броски независимы, шанс высокой
// таблицы фактически 15% от оставшихся 97%.
func SelectSpinTable(rnd *rand.Rand) PrizeTable {
	if rnd.Float64()*100 <= GodTierChance {
		return GodTierPrizes
	}
	if rnd.Float64()*100 <= HighTierChance {
		return HighTierPrizes
	}
	return LowTierPrizes
}

// JackpotHit разыгрывает шанс снять джекпот при ежедневной награде.
func JackpotHit(rnd *rand.Rand, chancePercent float64) bool {
	if chancePercent <= 0 {
		return false
	}
	return rnd.Float64()*100 <= chancePercent
}
