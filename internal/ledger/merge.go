package ledger

// tradeKey 중복 판별 키 (같은 소스 내 n번째 등장 포함)
type tradeKey struct {
	symbol     string
	entry      string
	exit       string
	pnl        string
	occurrence int
}

func keyOf(t Trade, occurrence int) tradeKey {
	return tradeKey{
		symbol:     t.Symbol,
		entry:      t.EntryTime.SortKey(),
		exit:       t.ExitTime.SortKey(),
		pnl:        TotalPnL([]Trade{t}).String(),
		occurrence: occurrence,
	}
}

// Merge 여러 원장 소스를 합치고 소스 간 중복 제거 (먼저 나온 레코드 유지)
// 한 소스 안에서 동일한 레코드가 여러 번 나오면 모두 별개 거래로 취급
// 다른 소스에는 같은 레코드가 그보다 많이 나온 만큼만 추가됨
func Merge(sources ...[]Trade) []Trade {
	seen := make(map[tradeKey]struct{})
	var merged []Trade

	for _, source := range sources {
		counts := make(map[tradeKey]int)
		for _, t := range source {
			base := keyOf(t, 0)
			n := counts[base]
			counts[base] = n + 1

			k := keyOf(t, n)
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			merged = append(merged, t)
		}
	}

	return merged
}
