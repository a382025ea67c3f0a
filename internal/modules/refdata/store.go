package refdata

import "sync/atomic"

// Store holds the dataset currently being served. Swaps are atomic, so a
// request that grabbed the previous dataset keeps reading a consistent view
// while new requests see the fresh one.
type Store struct {
	current atomic.Pointer[Dataset]
}

// NewStore creates an empty store. Current returns nil until the first Swap.
func NewStore() *Store {
	return &Store{}
}

// Swap publishes a new dataset.
func (s *Store) Swap(d *Dataset) {
	s.current.Store(d)
}

// Current returns the dataset being served, or nil before the first load.
func (s *Store) Current() *Dataset {
	return s.current.Load()
}
