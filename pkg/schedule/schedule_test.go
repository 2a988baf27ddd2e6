package schedule_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/asadazo/asadazo/pkg/schedule"
)

func TestEveryRunsRepeatedly(t *testing.T) {
	s := schedule.New()
	s.SetTick(5 * time.Millisecond)

	var runs atomic.Int32
	s.Every(10 * time.Millisecond).Name("count").Run(func(context.Context) error {
		runs.Add(1)
		return nil
	})
	s.Every(time.Hour).Name("fails").Run(func(context.Context) error {
		return errors.New("boom")
	})

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()
	s.Wait()

	assert.Equal(t, []string{"count  [10ms]", "fails  [1h0m0s]"}, s.List())
}

func TestWithoutOverlapping(t *testing.T) {
	s := schedule.New()
	s.SetTick(2 * time.Millisecond)

	var active, maxActive atomic.Int32
	s.Every(time.Millisecond).WithoutOverlapping().Run(func(context.Context) error {
		n := active.Add(1)
		if n > maxActive.Load() {
			maxActive.Store(n)
		}
		time.Sleep(20 * time.Millisecond)
		active.Add(-1)
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
	defer cancel()
	s.Start(ctx)
	<-ctx.Done()
	s.Wait()

	assert.Equal(t, int32(1), maxActive.Load())
}

func TestMatchCron(t *testing.T) {
	at := time.Date(2026, 3, 2, 3, 15, 0, 0, time.UTC) // Monday

	assert.True(t, schedule.MatchCron("15 3 * * *", at))
	assert.True(t, schedule.MatchCron("*/5 * * * 1", at))
	assert.True(t, schedule.MatchCron("10-20 3 2 3 *", at))
	assert.False(t, schedule.MatchCron("0 3 * * *", at))
	assert.False(t, schedule.MatchCron("* * *", at))
}
