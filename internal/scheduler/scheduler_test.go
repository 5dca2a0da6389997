package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/tradestats/pkg/logger"
)

type countingJob struct {
	name     string
	schedule string
	failN    int32
	calls    atomic.Int32
}

func (j *countingJob) Name() string     { return j.name }
func (j *countingJob) Schedule() string { return j.schedule }
func (j *countingJob) Run(ctx context.Context) error {
	if n := j.calls.Add(1); n <= j.failN {
		return errors.New("transient failure")
	}
	return nil
}

func newScheduler() *Scheduler {
	return New(logger.Nop()).WithRetry(2, time.Millisecond)
}

func TestAddJob(t *testing.T) {
	s := newScheduler()

	require.NoError(t, s.AddJob(&countingJob{name: "b", schedule: "0 * * * * *"}))
	require.NoError(t, s.AddJob(&countingJob{name: "a", schedule: "@every 1m"}))
	assert.Error(t, s.AddJob(&countingJob{name: "a", schedule: "@every 1m"}))
	assert.Error(t, s.AddJob(&countingJob{name: "bad", schedule: "not a cron"}))

	assert.Equal(t, []string{"a", "b"}, s.GetAllJobs())
}

func TestRemoveJob(t *testing.T) {
	s := newScheduler()
	require.NoError(t, s.AddJob(&countingJob{name: "a", schedule: "@every 1m"}))

	require.NoError(t, s.RemoveJob("a"))
	assert.Empty(t, s.GetAllJobs())
	assert.Empty(t, s.cron.Entries())
	assert.Error(t, s.RemoveJob("a"))

	_, err := s.RunNow(context.Background(), "a")
	assert.Error(t, err)
}

func TestRunNow_RetriesThenSucceeds(t *testing.T) {
	s := newScheduler()
	job := &countingJob{name: "flaky", schedule: "@every 1m", failN: 2}
	require.NoError(t, s.AddJob(job))

	result, err := s.RunNow(context.Background(), "flaky")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Empty(t, result.Error)
	assert.Equal(t, int32(3), job.calls.Load())
	assert.Equal(t, 3, result.Attempts)

	stats := s.GetJobStats()["flaky"]
	assert.Equal(t, 1, stats.TotalRuns)
	assert.Equal(t, 1, stats.SuccessCount)
	require.NotNil(t, stats.LastSuccess)
	assert.Nil(t, stats.LastFailure)
}

func TestRunNow_FailsAfterRetries(t *testing.T) {
	s := newScheduler()
	job := &countingJob{name: "broken", schedule: "@every 1m", failN: 100}
	require.NoError(t, s.AddJob(job))

	result, err := s.RunNow(context.Background(), "broken")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "transient failure", result.Error)
	assert.Equal(t, int32(3), job.calls.Load())

	history, err := s.GetJobHistory("broken")
	require.NoError(t, err)
	assert.Len(t, history.Failed(), 1)
	assert.Zero(t, history.SuccessRate())

	stats := s.GetJobStats()["broken"]
	assert.Equal(t, 1, stats.FailureCount)
	assert.Equal(t, 1, stats.ConsecutiveFailures)
	assert.Equal(t, "transient failure", stats.LastError)
	require.NotNil(t, stats.LastFailure)
}

func TestRunNow_CancelledStopsRetrying(t *testing.T) {
	s := New(logger.Nop()).WithRetry(5, time.Hour)
	job := &countingJob{name: "slow", schedule: "@every 1m", failN: 100}
	require.NoError(t, s.AddJob(job))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := s.RunNow(ctx, "slow")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, int32(1), job.calls.Load())
	assert.Equal(t, 1, result.Attempts)
}

func TestJobHistory(t *testing.T) {
	h := &JobHistory{}
	assert.Empty(t, h.Latest(5))
	assert.Zero(t, h.SuccessRate())
	assert.Zero(t, h.ConsecutiveFailures())

	for i := 0; i < maxHistory+20; i++ {
		h.Add(JobResult{JobName: "x", Attempts: i, Success: i%4 != 0})
	}

	assert.Equal(t, maxHistory, h.Len())
	latest := h.Latest(3)
	require.Len(t, latest, 3)
	assert.Equal(t, maxHistory+19, latest[2].Attempts)
	assert.InDelta(t, 0.75, h.SuccessRate(), 1e-9)
	assert.Len(t, h.Failed(), maxHistory/4)

	h.Add(JobResult{Success: false})
	h.Add(JobResult{Success: false})
	assert.Equal(t, 2, h.ConsecutiveFailures())
}

func TestStartStop(t *testing.T) {
	s := newScheduler()
	job := &countingJob{name: "tick", schedule: "@every 1s"}
	require.NoError(t, s.AddJob(job))

	s.Start()
	s.Stop()

	_, err := s.GetJobHistory("missing")
	assert.Error(t, err)
}
