package sessionRepository

import (
	"sync"

	"golang.org/x/net/context"
)

type keyLock struct {
	ch   chan struct{}
	refs int
}

// keyedLock is a mutex per session id. Entries are dropped once nobody holds or waits.
type keyedLock struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

func newKeyedLock() *keyedLock {
	return &keyedLock{locks: make(map[string]*keyLock)}
}

func (k *keyedLock) acquire(ctx context.Context, key string) (func(), error) {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyLock{ch: make(chan struct{}, 1)}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	release := func() {
		<-l.ch
		k.unref(key, l)
	}

	// a free lock is taken even when ctx is already done
	select {
	case l.ch <- struct{}{}:
		return release, nil
	default:
	}

	select {
	case l.ch <- struct{}{}:
		return release, nil
	case <-ctx.Done():
		k.unref(key, l)
		return nil, ctx.Err()
	}
}

func (k *keyedLock) unref(key string, l *keyLock) {
	k.mu.Lock()
	defer k.mu.Unlock()

	l.refs--
	if l.refs == 0 {
		delete(k.locks, key)
	}
}
