package stats_repo

import (
	"sync"
	"testing"
	"time"

	"staking_sim/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsRepo_Counters(t *testing.T) {
	r := NewStatsRepository()

	r.RecordRun(1000)
	r.RecordFailedSearch(300)
	r.RecordSearch(model.SearchSummary{At: time.Unix(1, 0), SafeTarget: 250, RuinProbability: 0.004, Points: 10, Sessions: 100})

	s := r.Stats()
	assert.Equal(t, 1, s.Runs)
	assert.Equal(t, 1, s.Searches)
	assert.Equal(t, 1, s.FailedSearches)
	assert.Equal(t, int64(1000+300+1000), s.SessionsSimulated)
	assert.Equal(t, 250.0, s.LastSafeTarget)
	require.Len(t, s.Window, 1)
	assert.InDelta(t, 0.004, s.WindowMeanRuin, 1e-12)
}

func TestStatsRepo_WindowIsBounded(t *testing.T) {
	r := NewStatsRepository()
	for i := 0; i < windowSize+10; i++ {
		ruin := 0.0
		if i >= 10 {
			ruin = 0.01
		}
		r.RecordSearch(model.SearchSummary{SafeTarget: float64(i), RuinProbability: ruin, Points: 1, Sessions: 1})
	}

	s := r.Stats()
	require.Len(t, s.Window, windowSize)
	assert.Equal(t, 10.0, s.Window[0].SafeTarget)
	assert.InDelta(t, 0.01, s.WindowMeanRuin, 1e-12)
	assert.Equal(t, float64(windowSize+9), s.LastSafeTarget)
}

func TestStatsRepo_SnapshotIsCopy(t *testing.T) {
	r := NewStatsRepository()
	r.RecordSearch(model.SearchSummary{SafeTarget: 1})

	s := r.Stats()
	s.Window[0].SafeTarget = 99
	assert.Equal(t, 1.0, r.Stats().Window[0].SafeTarget)
}

func TestStatsRepo_Concurrent(t *testing.T) {
	r := NewStatsRepository()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.RecordRun(10)
			_ = r.Stats()
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, r.Stats().Runs)
	assert.Equal(t, int64(200), r.Stats().SessionsSimulated)
}
