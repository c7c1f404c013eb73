// Package store keeps values in memory, such as the datasets uploaded to the dashboard.
package store

import (
	"sync"

	"github.com/pkg/errors"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

// Store is a keyed collection of values.
type Store[K comparable, T any] interface {
	Add(k K, t T) error
	Get(k K) (T, error)
	Update(k K, fn func(T) (T, error)) error
	Remove(k K) error
	List() []K
	Count() int
}

// Option configures a MemoryStore.
type Option[K comparable, T any] func(*MemoryStore[K, T])

// WithMaxItems evicts the oldest values once the store holds more than maxItems. 0 means no limit.
func WithMaxItems[K comparable, T any](maxItems int) Option[K, T] {
	return func(s *MemoryStore[K, T]) {
		s.maxItems = maxItems
	}
}

// WithEvictHook calls fn with every evicted value. fn must not call the store.
func WithEvictHook[K comparable, T any](fn func(K, T)) Option[K, T] {
	return func(s *MemoryStore[K, T]) {
		s.onEvict = fn
	}
}

// MemoryStore is a Store safe for concurrent use. List returns the keys in insertion order.
type MemoryStore[K comparable, T any] struct {
	lock     sync.RWMutex
	values   map[K]T
	order    []K
	maxItems int
	onEvict  func(K, T)
}

func NewMemoryStore[K comparable, T any](opts ...Option[K, T]) *MemoryStore[K, T] {
	s := &MemoryStore[K, T]{
		values: make(map[K]T),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *MemoryStore[K, T]) Add(k K, t T) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.values[k]; ok {
		return ErrAlreadyExists
	}

	s.values[k] = t
	s.order = append(s.order, k)

	for s.maxItems > 0 && len(s.order) > s.maxItems {
		oldest := s.order[0]
		s.order = s.order[1:]

		evicted := s.values[oldest]
		delete(s.values, oldest)

		if s.onEvict != nil {
			s.onEvict(oldest, evicted)
		}
	}

	return nil
}

func (s *MemoryStore[K, T]) Get(k K) (T, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	v, ok := s.values[k]
	if !ok {
		return v, ErrNotFound
	}

	return v, nil
}

// Update replaces the value of k by the result of fn. The store is locked while fn runs.
func (s *MemoryStore[K, T]) Update(k K, fn func(T) (T, error)) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	v, ok := s.values[k]
	if !ok {
		return ErrNotFound
	}

	updated, err := fn(v)
	if err != nil {
		return err
	}

	s.values[k] = updated

	return nil
}

func (s *MemoryStore[K, T]) Remove(k K) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.values[k]; !ok {
		return ErrNotFound
	}

	delete(s.values, k)

	for i, key := range s.order {
		if key == k {
			s.order = append(s.order[:i], s.order[i+1:]...)

			break
		}
	}

	return nil
}

func (s *MemoryStore[K, T]) List() []K {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return append([]K(nil), s.order...)
}

func (s *MemoryStore[K, T]) Count() int {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return len(s.values)
}

var _ Store[string, int] = (*MemoryStore[string, int])(nil)
