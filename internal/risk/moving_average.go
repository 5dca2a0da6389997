package risk

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// DefaultMAWindows 이동평균 기본 윈도우
var DefaultMAWindows = []int{5, 10, 20}

// MovingAverages 윈도우별 SMA/EMA
// 데이터가 부족한 윈도우는 결과에서 빠짐
// JSON: sma_{w}, ema_{w}, current_sma_{w}, current_ema_{w}
type MovingAverages struct {
	SMA map[int][]float64
	EMA map[int][]float64
}

// Windows 계산된 윈도우 (오름차순)
func (m MovingAverages) Windows() []int {
	windows := make([]int, 0, len(m.SMA))
	for w := range m.SMA {
		windows = append(windows, w)
	}
	sort.Ints(windows)
	return windows
}

// CurrentSMA 마지막 SMA 값
func (m MovingAverages) CurrentSMA(w int) (float64, bool) {
	return last(m.SMA[w])
}

// CurrentEMA 마지막 EMA 값
func (m MovingAverages) CurrentEMA(w int) (float64, bool) {
	return last(m.EMA[w])
}

func last(series []float64) (float64, bool) {
	if len(series) == 0 {
		return 0, false
	}
	return series[len(series)-1], true
}

// ComputeMovingAverages pnl 시계열 이동평균
// windows 가 비어 있으면 DefaultMAWindows
func ComputeMovingAverages(pnl []float64, windows []int) MovingAverages {
	if len(windows) == 0 {
		windows = DefaultMAWindows
	}

	m := MovingAverages{
		SMA: make(map[int][]float64),
		EMA: make(map[int][]float64),
	}

	for _, w := range windows {
		if w <= 0 || len(pnl) < w {
			continue
		}
		m.SMA[w] = sma(pnl, w)
		m.EMA[w] = ema(pnl, w)
	}

	return m
}

// sma 후행 단순이동평균 (길이 len-w+1)
func sma(values []float64, w int) []float64 {
	out := make([]float64, len(values)-w+1)
	for i := range out {
		out[i] = floats.Sum(values[i:i+w]) / float64(w)
	}
	return out
}

// ema 지수이동평균 (첫 값으로 시드, α = 2/(w+1))
func ema(values []float64, w int) []float64 {
	alpha := 2.0 / float64(w+1)
	out := make([]float64, len(values))
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// MarshalJSON 평탄화된 키로 직렬화
func (m MovingAverages) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(m.SMA)*4)
	for _, w := range m.Windows() {
		out[fmt.Sprintf("sma_%d", w)] = m.SMA[w]
		out[fmt.Sprintf("ema_%d", w)] = m.EMA[w]
		if v, ok := m.CurrentSMA(w); ok {
			out[fmt.Sprintf("current_sma_%d", w)] = v
		}
		if v, ok := m.CurrentEMA(w); ok {
			out[fmt.Sprintf("current_ema_%d", w)] = v
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON 시계열 키만 복원 (current_* 는 파생값)
func (m *MovingAverages) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	m.SMA = make(map[int][]float64)
	m.EMA = make(map[int][]float64)

	for key, value := range raw {
		var target map[int][]float64
		var suffix string
		switch {
		case strings.HasPrefix(key, "sma_"):
			target, suffix = m.SMA, strings.TrimPrefix(key, "sma_")
		case strings.HasPrefix(key, "ema_"):
			target, suffix = m.EMA, strings.TrimPrefix(key, "ema_")
		default:
			continue
		}

		w, err := strconv.Atoi(suffix)
		if err != nil {
			return fmt.Errorf("invalid moving average key %q", key)
		}
		var series []float64
		if err := json.Unmarshal(value, &series); err != nil {
			return fmt.Errorf("moving average %q: %w", key, err)
		}
		target[w] = series
	}

	return nil
}
