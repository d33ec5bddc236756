package service

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	locks := newKeyedMutex()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			locks.Lock("item-1")
			counter++
			locks.Unlock("item-1")
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
}

func TestKeyedMutexIndependentKeys(t *testing.T) {
	locks := newKeyedMutex()

	locks.Lock("item-1")
	done := make(chan struct{})
	go func() {
		// A different key must not block behind item-1.
		locks.Lock("item-2")
		locks.Unlock("item-2")
		close(done)
	}()
	<-done
	locks.Unlock("item-1")
}

func TestKeyedMutexDropsIdleEntries(t *testing.T) {
	locks := newKeyedMutex()

	locks.Lock("item-1")
	locks.Unlock("item-1")

	locks.mu.Lock()
	defer locks.mu.Unlock()
	assert.Empty(t, locks.locks)
}
