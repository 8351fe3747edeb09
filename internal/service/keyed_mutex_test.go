// internal/service/keyed_mutex_test.go
package service

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyedMutexSerializesPerKey(t *testing.T) {
	k := newKeyedMutex()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			k.Lock(1)
			counter++
			k.Unlock(1)
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, counter)
}

func TestKeyedMutexLockAllIgnoresDuplicatesAndZero(t *testing.T) {
	k := newKeyedMutex()

	unlock := k.LockAll(3, 1, 0, 3, -5, 2)
	unlock()

	// All keys must be free again after release.
	done := make(chan struct{})
	go func() {
		release := k.LockAll(1, 2, 3)
		release()
		close(done)
	}()
	<-done
}

func TestKeyedMutexLockAllConcurrentDisjointSets(t *testing.T) {
	k := newKeyedMutex()
	counters := make(map[int64]int)
	var mu sync.Mutex

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			// Overlapping pairs in opposite orders; ascending acquisition
			// keeps this deadlock-free.
			ids := []int64{1, 2}
			if n%2 == 0 {
				ids = []int64{2, 1}
			}
			release := k.LockAll(ids...)
			mu.Lock()
			counters[1]++
			counters[2]++
			mu.Unlock()
			release()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, counters[1])
	assert.Equal(t, 50, counters[2])
}
