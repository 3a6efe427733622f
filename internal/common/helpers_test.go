package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPluralizeDabcoins(t *testing.T) {
	cases := []struct {
		n        int64
		expected string
	}{
		{1, "дабкоин"},
		{21, "дабкоин"},
		{101, "дабкоин"},
		{2, "дабкоина"},
		{3, "дабкоина"},
		{4, "дабкоина"},
		{22, "дабкоина"},
		{0, "дабкоинов"},
		{5, "дабкоинов"},
		{11, "дабкоинов"},
		{12, "дабкоинов"},
		{14, "дабкоинов"},
		{100, "дабкоинов"},
		{111, "дабкоинов"},
		{-1, "дабкоин"},
		{-5, "дабкоинов"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.expected, PluralizeDabcoins(tc.n), "n=%d", tc.n)
	}
}

func TestPluralizeTickets(t *testing.T) {
	assert.Equal(t, "билет", PluralizeTickets(1))
	assert.Equal(t, "билета", PluralizeTickets(2))
	assert.Equal(t, "билетов", PluralizeTickets(5))
	assert.Equal(t, "билетов", PluralizeTickets(11))
	assert.Equal(t, "билет", PluralizeTickets(21))
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "0", FormatNumber(0))
	assert.Equal(t, "999", FormatNumber(999))
	assert.Equal(t, "1 000", FormatNumber(1000))
	assert.Equal(t, "250 000", FormatNumber(250000))
	assert.Equal(t, "2 000 000", FormatNumber(2000000))
	assert.Equal(t, "-1 500", FormatNumber(-1500))
}

func TestFormatBalance(t *testing.T) {
	assert.Equal(t, "1 дабкоин", FormatBalance(1))
	assert.Equal(t, "10 000 дабкоинов", FormatBalance(10000))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "1 мин", FormatDuration(30*time.Second))
	assert.Equal(t, "1 мин", FormatDuration(-time.Minute))
	assert.Equal(t, "45 мин", FormatDuration(45*time.Minute))
	assert.Equal(t, "2 ч", FormatDuration(2*time.Hour))
	assert.Equal(t, "5 ч 13 мин", FormatDuration(5*time.Hour+13*time.Minute))
	// 23ч 59м 30с округляется вверх до 24 ч
	assert.Equal(t, "24 ч", FormatDuration(23*time.Hour+59*time.Minute+30*time.Second))
}
