package stats

import "github.com/wonny/tradestats/internal/ledger"

// StreakType 연속 구간 유형
type StreakType string

const (
	StreakWin  StreakType = "win"
	StreakLoss StreakType = "loss"
	StreakNone StreakType = ""
)

// Streaks 연승/연패 통계
type Streaks struct {
	MaxWin      int        `json:"max_win_streak"`
	MaxLoss     int        `json:"max_loss_streak"`
	Current     int        `json:"current_streak"`
	CurrentType StreakType `json:"current_streak_type"`
}

// streakRun 같은 결과가 이어진 구간 하나
type streakRun struct {
	kind   StreakType
	length int
}

func outcome(t ledger.Trade) StreakType {
	if t.IsWin() {
		return StreakWin
	}
	return StreakLoss
}

// runs 시간순 거래를 연속 구간으로 분할 (유형이 바뀔 때 flush, 마지막 구간도 flush)
func runs(chronological []ledger.Trade) []streakRun {
	var out []streakRun
	var cur streakRun

	for _, t := range chronological {
		kind := outcome(t)
		if cur.length > 0 && kind != cur.kind {
			out = append(out, cur)
			cur = streakRun{}
		}
		cur.kind = kind
		cur.length++
	}
	if cur.length > 0 {
		out = append(out, cur)
	}

	return out
}

// ComputeStreaks 시간순 정렬된 거래의 연승/연패 계산
func ComputeStreaks(chronological []ledger.Trade) Streaks {
	var s Streaks

	for _, r := range runs(chronological) {
		switch r.kind {
		case StreakWin:
			s.MaxWin = max(s.MaxWin, r.length)
		case StreakLoss:
			s.MaxLoss = max(s.MaxLoss, r.length)
		}
	}

	// 현재 연속: 최근 거래부터 역순으로 유형이 바뀔 때까지
	for i := len(chronological) - 1; i >= 0; i-- {
		kind := outcome(chronological[i])
		if s.CurrentType == StreakNone {
			s.CurrentType = kind
		} else if kind != s.CurrentType {
			break
		}
		s.Current++
	}

	return s
}
