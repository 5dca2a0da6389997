package ledger

import (
	"strings"
	"time"
)

// timestampLayouts 허용되는 ISO-8601 변형 (Z 접미사는 파싱 전에 제거)
var timestampLayouts = []string{
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// sortKeyLayout 파싱된 시각의 정렬 키 (사전순 = 시간순)
const sortKeyLayout = "2006-01-02T15:04:05.000000000"

// Timestamp 원본 문자열과 파싱 결과를 함께 보관
// Valid=false 이면 시계열 계산에서 제외됨
type Timestamp struct {
	Raw   string
	Time  time.Time
	Valid bool
}

// ParseTimestamp ISO-8601 문자열 파싱
// 실패 시 (zero, false) 반환. panic/에러 없음
// 오프셋이 있는 시각은 벽시계 값을 유지한 채 timezone-naive(UTC)로 변환
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "Z")
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC), true
	}

	return time.Time{}, false
}

// NewTimestamp 원본 문자열로부터 Timestamp 생성
func NewTimestamp(raw string) Timestamp {
	t, ok := ParseTimestamp(raw)
	return Timestamp{Raw: raw, Time: t, Valid: ok}
}

// Date 달력 날짜 (시각 절삭)
func (ts Timestamp) Date() (time.Time, bool) {
	if !ts.Valid {
		return time.Time{}, false
	}
	y, m, d := ts.Time.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
}

// SortKey 정렬 키
// 파싱 가능하면 정규화된 시각, 아니면 원본 문자열 (사전순 fallback)
func (ts Timestamp) SortKey() string {
	if ts.Valid {
		return ts.Time.Format(sortKeyLayout)
	}
	return ts.Raw
}

// MarshalText 원본 문자열 그대로 직렬화
func (ts Timestamp) MarshalText() ([]byte, error) {
	return []byte(ts.Raw), nil
}
