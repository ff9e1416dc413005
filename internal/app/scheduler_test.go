package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/Freeeeeet/mess_voting_bot/internal/metrics"
	"github.com/Freeeeeet/mess_voting_bot/internal/model"
	"github.com/Freeeeeet/mess_voting_bot/internal/service"
)

type countingStats struct {
	calls atomic.Int32
	err   error
}

func (c *countingStats) Snapshot(context.Context) (*service.Stats, error) {
	c.calls.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	return &service.Stats{
		SessionsByStatus: map[model.SessionStatus]int{model.SessionStatusDraft: 1},
		ProfilesByRole:   map[model.Role]int{model.RoleStudent: 3},
		Votes:            7,
	}, nil
}

func TestScheduler_StopDoesNotLeak(t *testing.T) {
	defer goleak.VerifyNone(t)

	stats := &countingStats{}
	s := NewScheduler(stats, metrics.New(prometheus.NewRegistry()), 10*time.Millisecond, zap.NewNop())
	s.Start(context.Background())

	require.Eventually(t, func() bool { return stats.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	s.Stop()
	s.Stop()
}

func TestScheduler_ContextCancelStops(t *testing.T) {
	defer goleak.VerifyNone(t)

	stats := &countingStats{err: errors.New("db unavailable")}
	ctx, cancel := context.WithCancel(context.Background())
	s := NewScheduler(stats, nil, time.Hour, zap.NewNop())
	s.Start(ctx)

	require.Eventually(t, func() bool { return stats.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	s.Stop()

	assert.EqualValues(t, 1, stats.calls.Load())
}
