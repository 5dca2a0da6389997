package commands

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wonny/tradestats/internal/stats"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{3, "$3.00"},
		{1234.5, "$1,234.50"},
		{-3, "-$3.00"},
		{1234567.891, "$1,234,567.89"},
		{999.999, "$1,000.00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatMoney(tt.in), "formatMoney(%v)", tt.in)
	}

	assert.Equal(t, "+$12.00", formatSignedMoney(12))
	assert.Equal(t, "-$12.00", formatSignedMoney(-12))
	assert.Equal(t, "$0.00", formatSignedMoney(0))
}

func TestGroupThousands(t *testing.T) {
	assert.Equal(t, "0", groupThousands(0))
	assert.Equal(t, "999", groupThousands(999))
	assert.Equal(t, "1,000", groupThousands(1000))
	assert.Equal(t, "12,345,678", groupThousands(12345678))
}

func TestFormatPercentages(t *testing.T) {
	assert.Equal(t, "12.35%", formatPct(12.345))
	assert.Equal(t, "1.230%", formatFraction(0.0123))
	assert.Equal(t, "-0.500%", formatFraction(-0.005))
	assert.Equal(t, "∞", formatRatio(stats.Ratio(math.Inf(1))))
}

func TestPrintTable(t *testing.T) {
	var buf bytes.Buffer
	widths := []int{4, 6}
	printTableHeader(&buf, []string{"Day", "P&L"}, widths)
	printTableRow(&buf, []string{"7d", "$1.00"}, widths)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 3)
	assert.Equal(t, "Day   P&L", lines[0])
	assert.Equal(t, strings.Repeat("─", 12), lines[1])
	assert.Equal(t, "7d    $1.00", lines[2])
}

func TestPrintKV(t *testing.T) {
	var buf bytes.Buffer
	printKV(&buf, "Win Rate", "50.00%")
	assert.Equal(t, "  Win Rate              : 50.00%\n", buf.String())
}
