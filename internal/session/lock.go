package session

import (
	"context"
	"sync"
)

// KeyedLock serializes operations per key in arrival order. Each caller waits
// on its predecessor's done channel, so different keys never contend beyond
// the short map update.
type KeyedLock struct {
	mu    sync.Mutex
	tails map[string]chan struct{}
}

func NewKeyedLock() *KeyedLock {
	return &KeyedLock{tails: map[string]chan struct{}{}}
}

// WithLock runs fn once every operation enqueued earlier for key has
// finished. If ctx ends while waiting, fn is skipped and the slot is handed
// on to the next waiter once the predecessor completes.
func (l *KeyedLock) WithLock(ctx context.Context, key string, fn func() error) error {
	prev, done := l.enqueue(key)
	if prev != nil {
		select {
		case <-prev:
		case <-ctx.Done():
			go func() {
				<-prev
				l.release(key, done)
			}()
			return ctx.Err()
		}
	}
	defer l.release(key, done)
	return fn()
}

func (l *KeyedLock) enqueue(key string) (<-chan struct{}, chan struct{}) {
	done := make(chan struct{})
	l.mu.Lock()
	prev := l.tails[key]
	l.tails[key] = done
	l.mu.Unlock()
	if prev == nil {
		return nil, done
	}
	return prev, done
}

func (l *KeyedLock) release(key string, done chan struct{}) {
	l.mu.Lock()
	if l.tails[key] == done {
		delete(l.tails, key)
	}
	l.mu.Unlock()
	close(done)
}

// Len reports how many keys currently have a holder or waiters.
func (l *KeyedLock) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.tails)
}
