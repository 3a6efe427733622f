package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommand(t *testing.T) {
	parser := NewCommandParser()

	cases := []struct {
		input     string
		cmd       string
		args      []string
		isCommand bool
	}{
		{"!баланс", "баланс", nil, true},
		{".дейли", "дейли", nil, true},
		{"/спин", "спин", nil, true},
		{"!отсыпать @alice 100", "отсыпать", []string{"@alice", "100"}, true},
		{"!КНБ камень 50", "кнб", []string{"камень", "50"}, true},
		{"  !топ  ", "топ", nil, true},
		{"привет всем", "", nil, false},
		{"баланс", "", nil, false},
		{"!", "", nil, false},
		{"", "", nil, false},
	}

	for _, tc := range cases {
		cmd, args, isCommand := parser.ParseCommand(tc.input)
		assert.Equal(t, tc.isCommand, isCommand, "input=%q", tc.input)
		assert.Equal(t, tc.cmd, cmd, "input=%q", tc.input)
		assert.Equal(t, tc.args, args, "input=%q", tc.input)
	}
}
