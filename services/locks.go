package services

import (
	"sync"

	"github.com/google/uuid"
)

// TournamentLocker сериализует изменяющие операции одного турнира.
// Записи без ожидающих освобождаются.
type TournamentLocker struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func NewTournamentLocker() *TournamentLocker {
	return &TournamentLocker{locks: make(map[uuid.UUID]*refMutex)}
}

// Lock blocks until the tournament is free and returns the unlock func.
func (l *TournamentLocker) Lock(id uuid.UUID) func() {
	l.mu.Lock()
	m, ok := l.locks[id]
	if !ok {
		m = &refMutex{}
		l.locks[id] = m
	}
	m.refs++
	l.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		l.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}

func (l *TournamentLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
