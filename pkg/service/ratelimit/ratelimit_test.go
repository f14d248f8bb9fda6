package ratelimit_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/burrow/pkg/service/ratelimit"
	"github.com/m-mizutani/gt"
)

func TestWaitUnderLimit(t *testing.T) {
	l := ratelimit.New(ratelimit.WithMaxRequests(5), ratelimit.WithWindow(10*time.Second))
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 5; i++ {
		gt.NoError(t, l.Wait(ctx))
	}
	gt.True(t, time.Since(start) < 100*time.Millisecond)
}

func TestWaitBlocksAtLimit(t *testing.T) {
	window := 300 * time.Millisecond
	l := ratelimit.New(ratelimit.WithMaxRequests(5), ratelimit.WithWindow(window))
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 5; i++ {
		gt.NoError(t, l.Wait(ctx))
	}

	// The 6th call must wait at least until the first call exits the window
	gt.NoError(t, l.Wait(ctx))
	elapsed := time.Since(start)
	gt.True(t, elapsed >= window-20*time.Millisecond)
}

func TestWaitSlidingWindowStress(t *testing.T) {
	window := 200 * time.Millisecond
	l := ratelimit.New(ratelimit.WithMaxRequests(5), ratelimit.WithWindow(window))
	ctx := context.Background()

	var mu sync.Mutex
	var admitted []time.Time

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			gt.NoError(t, l.Wait(ctx))
			mu.Lock()
			admitted = append(admitted, time.Now())
			mu.Unlock()
		}()
	}
	wg.Wait()

	gt.A(t, admitted).Length(50)

	// No trailing window may contain more than the limit, with one extra
	// allowed for timestamp recording jitter
	for _, anchor := range admitted {
		count := 0
		for _, ts := range admitted {
			if ts.Sub(anchor) >= 0 && ts.Sub(anchor) < window {
				count++
			}
		}
		gt.Number(t, count).LessOrEqual(6)
	}
}

func TestWaitCancel(t *testing.T) {
	l := ratelimit.New(ratelimit.WithMaxRequests(1), ratelimit.WithWindow(time.Minute))
	gt.NoError(t, l.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	gt.Error(t, l.Wait(ctx))
}
