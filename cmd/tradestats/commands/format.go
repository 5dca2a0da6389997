package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/wonny/tradestats/internal/stats"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

const (
	doubleLine = "═══════════════════════════════════════════════════════════"
	singleLine = "───────────────────────────────────────────────────────────"
)

// printHeader prints a formatted command header
func printHeader(w io.Writer, title string, details ...string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, doubleLine)
	fmt.Fprintf(w, "  %s\n", title)
	if len(details) > 0 {
		fmt.Fprintln(w, singleLine)
		for _, d := range details {
			fmt.Fprintf(w, "  %s\n", d)
		}
	}
	fmt.Fprintln(w, doubleLine)
}

// printSection prints a section title ("📊 Trade Statistics")
func printSection(w io.Writer, title string) {
	fmt.Fprintf(w, "\n%s\n", title)
}

// printKV prints an aligned key/value line
func printKV(w io.Writer, key, value string) {
	fmt.Fprintf(w, "  %-22s: %s\n", key, value)
}

// printWarning prints a warning message
func printWarning(w io.Writer, message string) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "⚠️  %s\n", message)
	fmt.Fprintln(w)
}

// printSuccess prints a success message
func printSuccess(w io.Writer, message string) {
	fmt.Fprintf(w, "✅ %s\n", message)
}

// printError prints an error message
func printError(w io.Writer, message string) {
	fmt.Fprintf(w, "❌ %s\n", message)
}

// printTableHeader prints a table header with separator
func printTableHeader(w io.Writer, columns []string, widths []int) {
	printTableRow(w, columns, widths)

	total := 0
	for i, width := range widths {
		total += width
		if i < len(widths)-1 {
			total += 2
		}
	}
	fmt.Fprintln(w, strings.Repeat("─", total))
}

// printTableRow prints a table row
func printTableRow(w io.Writer, values []string, widths []int) {
	cells := make([]string, len(values))
	for i, v := range values {
		cells[i] = fmt.Sprintf("%-*s", widths[i], v)
	}
	fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, "  "), " "))
}

// writeJSON prints indented JSON
func writeJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// formatMoney 1234.5 → "$1,234.50", -3 → "-$3.00"
func formatMoney(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	cents := int64(math.Round(v * 100))
	return fmt.Sprintf("%s$%s.%02d", sign, groupThousands(cents/100), cents%100)
}

// formatSignedMoney 12 → "+$12.00"
func formatSignedMoney(v float64) string {
	if v > 0 {
		return "+" + formatMoney(v)
	}
	return formatMoney(v)
}

// formatPct 12.345 → "12.35%"
func formatPct(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}

// formatFraction 0.0123 → "1.230%"
func formatFraction(v float64) string {
	return fmt.Sprintf("%.3f%%", v*100)
}

// formatRatio +Inf → "∞"
func formatRatio(r stats.Ratio) string {
	return r.String()
}

// groupThousands 1234567 → "1,234,567"
func groupThousands(n int64) string {
	s := fmt.Sprintf("%d", n)
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	return s
}
