package services

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestTournamentLocker_SerializesPerTournament(t *testing.T) {
	locker := NewTournamentLocker()
	id := uuid.New()

	var (
		wg      sync.WaitGroup
		active  int
		maxSeen int
		mu      sync.Mutex
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locker.Lock(id)
			defer unlock()

			mu.Lock()
			active++
			maxSeen = max(maxSeen, active)
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
	assert.Zero(t, locker.size())
}

func TestTournamentLocker_IndependentTournaments(t *testing.T) {
	locker := NewTournamentLocker()
	unlockA := locker.Lock(uuid.New())
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlock := locker.Lock(uuid.New())
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on another tournament blocked")
	}
	assert.Equal(t, 1, locker.size())
}
