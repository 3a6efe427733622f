package games

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRPSChoice(t *testing.T) {
	cases := []struct {
		input    string
		expected RPSChoice
		ok       bool
	}{
		{"камень", RPSRock, true},
		{"КАМЕНЬ", RPSRock, true},
		{"к", RPSRock, true},
		{"бумага", RPSPaper, true},
		{"б", RPSPaper, true},
		{"ножницы", RPSScissors, true},
		{"н", RPSScissors, true},
		{" камень ", RPSRock, true},
		{"rock", 0, false},
		{"", 0, false},
	}

	for _, tc := range cases {
		choice, ok := ParseRPSChoice(tc.input)
		assert.Equal(t, tc.ok, ok, "input=%q", tc.input)
		if tc.ok {
			assert.Equal(t, tc.expected, choice, "input=%q", tc.input)
		}
	}
}

func TestPlayRPSOutcomes(t *testing.T) {
	rnd := rand.New(rand.NewSource(3))

	// Правила: камень бьёт ножницы, ножницы бумагу, бумага камень
	for i := 0; i < 1000; i++ {
		botChoice, outcome := PlayRPS(rnd, RPSRock)
		switch botChoice {
		case RPSRock:
			assert.Equal(t, RPSDraw, outcome)
		case RPSScissors:
			assert.Equal(t, RPSWin, outcome)
		case RPSPaper:
			assert.Equal(t, RPSLose, outcome)
		}
	}
}

func TestPlayRPSBotChoiceDistribution(t *testing.T) {
	rnd := rand.New(rand.NewSource(4))

	const iterations = 30000
	counts := make(map[RPSChoice]int)
	for i := 0; i < iterations; i++ {
		botChoice, _ := PlayRPS(rnd, RPSPaper)
		counts[botChoice]++
	}

	for _, choice := range []RPSChoice{RPSRock, RPSPaper, RPSScissors} {
		assert.InDelta(t, 1.0/3.0, float64(counts[choice])/iterations, 0.02)
	}
}
