package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// proposalLocks is a registry of per-proposal mutexes. Holders of different
// proposals never wait on each other; entries are dropped once nobody holds or
// waits for them.
type proposalLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*proposalLock
}

type proposalLock struct {
	sem  chan struct{}
	refs int
}

func newProposalLocks() *proposalLocks {
	return &proposalLocks{locks: make(map[uuid.UUID]*proposalLock)}
}

// Acquire blocks until the lock for id is held or ctx ends. The returned func releases it.
func (l *proposalLocks) Acquire(ctx context.Context, id uuid.UUID) (func(), error) {
	l.mu.Lock()
	lk, ok := l.locks[id]
	if !ok {
		lk = &proposalLock{sem: make(chan struct{}, 1)}
		l.locks[id] = lk
	}
	lk.refs++
	l.mu.Unlock()

	select {
	case lk.sem <- struct{}{}:
	case <-ctx.Done():
		l.unref(id, lk)
		return nil, fmt.Errorf("%w: waiting for proposal %s: %v", ErrConcurrencyConflict, id, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-lk.sem
			l.unref(id, lk)
		})
	}, nil
}

func (l *proposalLocks) unref(id uuid.UUID, lk *proposalLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	lk.refs--
	if lk.refs == 0 {
		delete(l.locks, id)
	}
}

// size is the number of proposals currently held or awaited.
func (l *proposalLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
