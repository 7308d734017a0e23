package reservation

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// =============================================================================
// PER-RESERVATION LOCK TABLE
// =============================================================================

func TestLockTable_ExcludesWritersPerID(t *testing.T) {
	// GIVEN: Many goroutines contending for the same reservation id
	// WHEN: Each runs a critical section under acquire
	// THEN: The sections never overlap

	table := lockTable{locks: make(map[ReservationID]*sync.Mutex)}

	const writers = 50
	var wg sync.WaitGroup
	var inside, peak int

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := table.acquire("res-1")
			defer unlock()

			inside++
			if inside > peak {
				peak = inside
			}
			inside--
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, peak)
}

func TestLockTable_IndependentAcrossReservations(t *testing.T) {
	// GIVEN: Two reservation ids
	// WHEN: One id's lock is held
	// THEN: The other id can still be acquired without blocking

	table := lockTable{locks: make(map[ReservationID]*sync.Mutex)}

	unlockA := table.acquire("res-a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlockB := table.acquire("res-b")
		unlockB()
		close(done)
	}()
	<-done
}

func TestLockTable_ReleaseEvictsTheEntry(t *testing.T) {
	// GIVEN: Locks handed out for several reservations
	// WHEN: One id is released on its terminal transition
	// THEN: The table keeps only the live ids

	table := lockTable{locks: make(map[ReservationID]*sync.Mutex)}

	table.acquire("res-1")()
	table.acquire("res-2")()
	assert.Len(t, table.locks, 2)

	table.release("res-1")

	assert.Len(t, table.locks, 1)
	assert.Contains(t, table.locks, ReservationID("res-2"))

	// A late caller for the released id just gets a fresh mutex.
	table.acquire("res-1")()
	assert.Len(t, table.locks, 2)
}
