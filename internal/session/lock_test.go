package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func waitEnqueued(t *testing.T, l *KeyedLock, key string, prev chan struct{}) chan struct{} {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		l.mu.Lock()
		tail := l.tails[key]
		l.mu.Unlock()
		if tail != nil && tail != prev {
			return tail
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("waiter on %s never enqueued", key)
	return nil
}

func TestKeyedLockRunsInArrivalOrder(t *testing.T) {
	l := NewKeyedLock()
	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = l.WithLock(context.Background(), "g", func() error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup
	tail := waitEnqueued(t, l, "g", nil)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = l.WithLock(context.Background(), "g", func() error {
				mu.Lock()
				order = append(order, i)
				mu.Unlock()
				return nil
			})
		}(i)
		tail = waitEnqueued(t, l, "g", tail)
	}
	close(release)
	wg.Wait()

	for i, got := range order {
		if got != i {
			t.Fatalf("order = %v, want ascending", order)
		}
	}
	if l.Len() != 0 {
		t.Fatalf("lock keys left = %d", l.Len())
	}
}

func TestKeyedLockMutualExclusion(t *testing.T) {
	l := NewKeyedLock()
	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = l.WithLock(context.Background(), "g", func() error {
				n := atomic.AddInt32(&inside, 1)
				for {
					m := atomic.LoadInt32(&maxInside)
					if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
						break
					}
				}
				time.Sleep(100 * time.Microsecond)
				atomic.AddInt32(&inside, -1)
				return nil
			})
		}()
	}
	wg.Wait()
	if maxInside != 1 {
		t.Fatalf("max concurrent holders = %d", maxInside)
	}
}

func TestKeyedLockKeysAreIndependent(t *testing.T) {
	l := NewKeyedLock()
	hold := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = l.WithLock(context.Background(), "a", func() error {
			close(started)
			<-hold
			return nil
		})
	}()
	<-started
	defer close(hold)

	done := make(chan struct{})
	go func() {
		_ = l.WithLock(context.Background(), "b", func() error { return nil })
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("key b blocked behind key a")
	}
}

func TestKeyedLockCancelledWaiterSkipsAndHandsOn(t *testing.T) {
	l := NewKeyedLock()
	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = l.WithLock(context.Background(), "g", func() error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	ran := false
	go func() {
		errCh <- l.WithLock(ctx, "g", func() error {
			ran = true
			return nil
		})
	}()
	waitEnqueued(t, l, "g", nil)
	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want canceled", err)
	}

	next := make(chan struct{})
	go func() {
		_ = l.WithLock(context.Background(), "g", func() error { return nil })
		close(next)
	}()
	close(release)
	select {
	case <-next:
	case <-time.After(time.Second):
		t.Fatalf("queue stalled after cancelled waiter")
	}
	if ran {
		t.Fatalf("cancelled waiter ran its function")
	}
}
