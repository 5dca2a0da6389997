package stats

import (
	"encoding/json"
	"fmt"
	"math"
)

// Ratio 분모가 0 일 수 있는 비율 (profit factor, risk/reward, calmar)
// +Inf 는 JSON 에서 문자열 "inf" 로 직렬화
type Ratio float64

// SafeRatio num/den
// den == 0: num > 0 이면 +Inf, 아니면 0. 절대 NaN 을 반환하지 않음
func SafeRatio(num, den float64) Ratio {
	if den == 0 {
		if num > 0 {
			return Ratio(math.Inf(1))
		}
		return 0
	}
	return Ratio(num / den)
}

// IsInf +Inf 여부
func (r Ratio) IsInf() bool {
	return math.IsInf(float64(r), 1)
}

// Float64 returns the raw value
func (r Ratio) Float64() float64 {
	return float64(r)
}

// String 표시용 (∞ 또는 소수 둘째 자리)
func (r Ratio) String() string {
	if r.IsInf() {
		return "∞"
	}
	return fmt.Sprintf("%.2f", float64(r))
}

// MarshalJSON implements json.Marshaler
func (r Ratio) MarshalJSON() ([]byte, error) {
	if r.IsInf() {
		return []byte(`"inf"`), nil
	}
	return json.Marshal(float64(r))
}

// UnmarshalJSON implements json.Unmarshaler
func (r *Ratio) UnmarshalJSON(data []byte) error {
	if string(data) == `"inf"` {
		*r = Ratio(math.Inf(1))
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("invalid ratio %s: %w", data, err)
	}
	*r = Ratio(v)
	return nil
}
