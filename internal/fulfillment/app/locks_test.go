package app

import (
	"sync"
	"testing"
)

func TestOrderLocksSerializeSameID(t *testing.T) {
	locks := newOrderLocks()

	var wg sync.WaitGroup
	var inCritical, total int
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m := locks.acquire("o1")
			defer locks.release("o1", m)

			inCritical++
			if inCritical != 1 {
				t.Error("two holders inside the critical section")
			}
			total++
			inCritical--
		}()
	}
	wg.Wait()

	if total != 20 {
		t.Fatalf("critical section ran %d times, want 20", total)
	}
}

func TestOrderLocksEvictReleasedEntries(t *testing.T) {
	locks := newOrderLocks()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := string(rune('a' + n%26))
			m := locks.acquire(id)
			locks.release(id, m)
		}(i)
	}
	wg.Wait()

	if got := locks.size(); got != 0 {
		t.Fatalf("lock table holds %d entries after all releases, want 0", got)
	}
}

func TestOrderLocksKeepEntryWhileHeld(t *testing.T) {
	locks := newOrderLocks()

	m := locks.acquire("o1")
	if got := locks.size(); got != 1 {
		t.Fatalf("lock table holds %d entries while held, want 1", got)
	}
	locks.release("o1", m)
	if got := locks.size(); got != 0 {
		t.Fatalf("lock table holds %d entries after release, want 0", got)
	}
}
