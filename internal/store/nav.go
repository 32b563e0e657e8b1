// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store holds small observable client-side state shared between
// screens.
package store

import (
	"fmt"
	"sync"
)

// NavStore holds the active navigation index. The root model owns one;
// there is no package-level instance.
type NavStore struct {
	mu     sync.RWMutex
	active int
	size   int
	subs   map[int]func(int)
	nextID int
}

// NewNavStore creates a store for size destinations, starting at 0.
func NewNavStore(size int) *NavStore {
	return &NavStore{size: size, subs: make(map[int]func(int))}
}

// Active returns the current index.
func (s *NavStore) Active() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Len returns the number of destinations.
func (s *NavStore) Len() int {
	return s.size
}

// SetActive changes the index and notifies subscribers. Setting the
// current value again does not notify.
func (s *NavStore) SetActive(i int) error {
	if i < 0 || i >= s.size {
		return fmt.Errorf("navigation index %d out of range [0,%d)", i, s.size)
	}

	s.mu.Lock()
	if s.active == i {
		s.mu.Unlock()
		return nil
	}
	s.active = i
	subs := make([]func(int), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(i)
	}
	return nil
}

// Subscribe registers fn to be called after each change. The returned
// function removes it.
func (s *NavStore) Subscribe(fn func(int)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}
