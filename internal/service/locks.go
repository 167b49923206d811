package service

import "sync"

// keyedMutex provides one mutex per event so capacity-affecting mutations on
// the same event serialize while different events proceed independently.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[int64]*sync.Mutex)}
}

// lock acquires the mutex for the given key, creating it on first use.
func (k *keyedMutex) lock(key int64) *sync.Mutex {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m
}

// forget drops the mutex for a key whose event no longer exists.
func (k *keyedMutex) forget(key int64) {
	k.mu.Lock()
	delete(k.locks, key)
	k.mu.Unlock()
}
