package lock

import (
	"sync"

	"github.com/apex/log"
)

// KeyLocker hands out one mutex per key. Mutexes are dropped once nobody holds
// or waits on them, so the map only grows with the number of keys in use.
type KeyLocker[K comparable] struct {
	mapMutex sync.Mutex
	keyMap   map[K]*keyMutex
}

type keyMutex struct {
	sync.Mutex
	refs int
}

func NewKeyLocker[K comparable]() *KeyLocker[K] {
	return &KeyLocker[K]{
		keyMap: make(map[K]*keyMutex),
	}
}

func (l *KeyLocker[K]) AcquireLock(key K) {
	l.mapMutex.Lock()
	m, ok := l.keyMap[key]
	if !ok {
		m = &keyMutex{}
		l.keyMap[key] = m
	}
	m.refs++
	l.mapMutex.Unlock()

	m.Lock()
}

func (l *KeyLocker[K]) ReleaseLock(key K) {
	l.mapMutex.Lock()
	defer l.mapMutex.Unlock()

	m, ok := l.keyMap[key]
	if !ok {
		log.Errorf("ReleaseLock called on key (%v) with no mutex", key)
		return
	}

	m.refs--
	if m.refs == 0 {
		delete(l.keyMap, key)
	}
	m.Unlock()
}

func (l *KeyLocker[K]) WithLock(key K, f func() error) error {
	l.AcquireLock(key)
	defer l.ReleaseLock(key)
	return f()
}

// Len is the number of keys currently locked or waited on.
func (l *KeyLocker[K]) Len() int {
	l.mapMutex.Lock()
	defer l.mapMutex.Unlock()
	return len(l.keyMap)
}
