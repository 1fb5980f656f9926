package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/supersignal/internal/contracts"
)

func TestPromptTickers(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"stops at blank line", "aapl\nbaba\n\nnio\n", []string{"aapl", "baba"}},
		{"stops at EOF", "aapl\nbaba", []string{"aapl", "baba"}},
		{"whitespace only ends input", "aapl\n   \n", []string{"aapl"}},
		{"comma line kept whole", "aapl, baba\n\n", []string{"aapl, baba"}},
		{"empty input", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var prompt bytes.Buffer
			got := promptTickers(strings.NewReader(tt.input), &prompt)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, prompt.String(), "Ticker (blank to finish): ")
		})
	}
}

func TestOutcomeError(t *testing.T) {
	assert.NoError(t, outcomeError(&contracts.BatchResult{RunID: "r1", Outcome: contracts.OutcomeSuccess}))

	err := outcomeError(&contracts.BatchResult{RunID: "r2", Outcome: contracts.OutcomeIncomplete})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "incomplete")

	err = outcomeError(&contracts.BatchResult{RunID: "r3", Outcome: contracts.OutcomeAllFailed})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no ticker produced a report")
}

func TestPrintTable(t *testing.T) {
	var buf bytes.Buffer
	PrintTable(&buf, []string{"#", "Rule"}, []int{2, 6}, [][]string{{"1", "adr"}})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "#   Rule  ", lines[0])
	assert.Equal(t, strings.Repeat("─", 10), lines[1])
	assert.Equal(t, "1   adr   ", lines[2])
}
