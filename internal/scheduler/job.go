package scheduler

import (
	"context"
	"sync"
	"time"
)

// Job represents a scheduled job
// ⭐ SSOT: 스케줄 작업 인터페이스는 여기서만 정의
type Job interface {
	Name() string

	// Schedule cron 표현식 (초 단위 포함 6필드)
	// "0 */5 * * * *" = 5분마다, "@every 1m"
	Schedule() string

	Run(ctx context.Context) error
}

// JobResult 작업 1회 실행 결과 (재시도 포함)
type JobResult struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Attempts  int           `json:"attempts"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
}

// maxHistory 작업별 보관 결과 수
const maxHistory = 100

// JobHistory 최근 실행 결과 (오래된 것부터, 최대 maxHistory 개)
// cron 고루틴과 API 조회가 동시에 접근하므로 자체 잠금 사용
type JobHistory struct {
	mu      sync.RWMutex
	results []JobResult
}

// Add 결과 추가, 한도를 넘으면 가장 오래된 결과부터 버림
func (h *JobHistory) Add(result JobResult) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.results = append(h.results, result)
	if over := len(h.results) - maxHistory; over > 0 {
		h.results = append(h.results[:0:0], h.results[over:]...)
	}
}

// Len 보관 중인 결과 수
func (h *JobHistory) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.results)
}

// Latest 최근 n 개 결과 사본 (오래된 것부터)
func (h *JobHistory) Latest(n int) []JobResult {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n = min(max(n, 0), len(h.results))
	out := make([]JobResult, n)
	copy(out, h.results[len(h.results)-n:])
	return out
}

// Failed 실패한 결과 사본
func (h *JobHistory) Failed() []JobResult {
	h.mu.RLock()
	defer h.mu.RUnlock()

	failed := make([]JobResult, 0)
	for _, r := range h.results {
		if !r.Success {
			failed = append(failed, r)
		}
	}
	return failed
}

// SuccessRate 성공 비율 (0.0 - 1.0), 기록이 없으면 0
func (h *JobHistory) SuccessRate() float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.results) == 0 {
		return 0
	}
	ok := 0
	for _, r := range h.results {
		if r.Success {
			ok++
		}
	}
	return float64(ok) / float64(len(h.results))
}

// ConsecutiveFailures 가장 최근부터 연속 실패 횟수
func (h *JobHistory) ConsecutiveFailures() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for i := len(h.results) - 1; i >= 0 && !h.results[i].Success; i-- {
		n++
	}
	return n
}
