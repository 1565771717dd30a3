package locks

import (
	"sync"
	"testing"
)

func TestLockSerializesSameKey(t *testing.T) {
	km := NewKeyedMutex()

	const workers = 50
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := km.Lock(1)
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	if counter != workers {
		t.Fatalf("counter = %d, want %d (lost updates under same key)", counter, workers)
	}
}

func TestLockDistinctKeysDoNotBlock(t *testing.T) {
	km := NewKeyedMutex()

	unlock1 := km.Lock(1)
	defer unlock1()

	done := make(chan struct{})
	go func() {
		unlock2 := km.Lock(2)
		unlock2()
		close(done)
	}()

	// Must complete while key 1 is still held.
	<-done
}

func TestLockEntriesAreReclaimed(t *testing.T) {
	km := NewKeyedMutex()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(key uint) {
			defer wg.Done()
			unlock := km.Lock(key % 3)
			unlock()
		}(uint(i))
	}
	wg.Wait()

	km.mu.Lock()
	defer km.mu.Unlock()
	if len(km.locks) != 0 {
		t.Fatalf("lock table holds %d entries after all releases, want 0", len(km.locks))
	}
}

func TestLockReentryAfterRelease(t *testing.T) {
	km := NewKeyedMutex()
	unlock := km.Lock(7)
	unlock()
	unlock = km.Lock(7)
	unlock()
}
