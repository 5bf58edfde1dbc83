package geocoding

import (
	"sync"
	"sync/atomic"

	"github.com/airbusgeo/georef/internal/georef"
)

// lazy builds a value once, on first use.
// Concurrent first calls wait for the same build. A cancelled build is not memoized and can be retried.
type lazy[T any] struct {
	value atomic.Pointer[T]
	mutex sync.Mutex
	err   error
}

func (l *lazy[T]) get(build func() (*T, error)) (*T, error) {
	if v := l.value.Load(); v != nil {
		return v, nil
	}
	l.mutex.Lock()
	defer l.mutex.Unlock()
	if v := l.value.Load(); v != nil {
		return v, nil
	}
	if l.err != nil {
		return nil, l.err
	}
	v, err := build()
	if err != nil {
		if !georef.IsError(err, georef.Cancelled) {
			l.err = err
		}
		return nil, err
	}
	l.value.Store(v)
	return v, nil
}

// peek returns the value if it has already been built
func (l *lazy[T]) peek() *T {
	return l.value.Load()
}
