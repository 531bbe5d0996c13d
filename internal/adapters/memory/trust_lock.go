package memory

import (
	"context"
	"sync"
)

// TrustLocker serializes trust mutation per user with in-process mutexes.
type TrustLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewTrustLocker() *TrustLocker {
	return &TrustLocker{locks: make(map[string]*sync.Mutex)}
}

func (l *TrustLocker) Lock(_ context.Context, userID string) (func(), error) {
	l.mu.Lock()
	lock, ok := l.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[userID] = lock
	}
	l.mu.Unlock()

	lock.Lock()
	return lock.Unlock, nil
}
