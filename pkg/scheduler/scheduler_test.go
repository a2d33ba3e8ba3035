package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/kleinwatch/pkg/scheduler/mocks"
)

func TestNewScheduler_Defaults(t *testing.T) {
	s := NewScheduler(Params{Discovery: &mocks.CycleMock{}, Notification: &mocks.CycleMock{}})
	assert.Equal(t, 5*time.Minute, s.discoveryInterval)
	assert.Equal(t, 5*time.Minute, s.notifyInterval)

	s = NewScheduler(Params{DiscoveryInterval: time.Minute, NotifyInterval: 30 * time.Second})
	assert.Equal(t, time.Minute, s.discoveryInterval)
	assert.Equal(t, 30*time.Second, s.notifyInterval)
}

func TestScheduler_StartStop(t *testing.T) {
	var order []string
	var discoveries, notifications atomic.Int32
	discovery := &mocks.CycleMock{RunFunc: func(ctx context.Context) error {
		if discoveries.Add(1) == 1 {
			order = append(order, "discovery")
		}
		return nil
	}}
	notification := &mocks.CycleMock{RunFunc: func(ctx context.Context) error {
		if notifications.Add(1) == 1 {
			order = append(order, "notification")
		}
		return errors.New("telegram down") // logged, doesn't stop the scheduler
	}}

	s := NewScheduler(Params{Discovery: discovery, Notification: notification,
		DiscoveryInterval: time.Second, NotifyInterval: time.Second})
	require.NoError(t, s.Start(context.Background()))

	require.Eventually(t, func() bool { return notifications.Load() >= 1 }, time.Second, 10*time.Millisecond,
		"cycles run right after start")
	require.Eventually(t, func() bool { return discoveries.Load() >= 2 && notifications.Load() >= 2 },
		3*time.Second, 50*time.Millisecond, "cycles run on ticks")
	s.Stop()

	assert.Equal(t, []string{"discovery", "notification"}, order)
	d, n := discoveries.Load(), notifications.Load()
	time.Sleep(1200 * time.Millisecond)
	assert.Equal(t, d, discoveries.Load(), "no runs after stop")
	assert.Equal(t, n, notifications.Load(), "no runs after stop")
}

func TestScheduler_SkipsRunningCycle(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var runs atomic.Int32
	c := &mocks.CycleMock{RunFunc: func(ctx context.Context) error {
		runs.Add(1)
		close(started)
		<-release
		return nil
	}}
	s := NewScheduler(Params{Discovery: c, Notification: &mocks.CycleMock{}})

	done := make(chan struct{})
	go func() {
		s.run(context.Background(), "discovery", c)
		close(done)
	}()
	<-started
	s.run(context.Background(), "discovery", c) // skipped, first instance still running
	close(release)
	<-done
	assert.Equal(t, int32(1), runs.Load())
}

func TestScheduler_RunCanceled(t *testing.T) {
	c := &mocks.CycleMock{RunFunc: func(ctx context.Context) error { return nil }}
	s := NewScheduler(Params{Discovery: c, Notification: c})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.run(ctx, "notification", c)
	assert.Empty(t, c.RunCalls())
}
