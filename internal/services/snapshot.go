package services

import (
	"sync"
	"time"
)

// Snapshot holds the latest successfully fetched value of one feed endpoint.
// Every fetch takes a sequence number before it starts; a result is only
// accepted if no newer fetch has been accepted already, so a slow response
// can never overwrite a fresher one. Failed fetches keep the old value.
type Snapshot[T any] struct {
	mu          sync.RWMutex
	issued      uint64
	accepted    uint64
	value       T
	has         bool
	refreshedAt time.Time
	lastErr     string
	now         func() time.Time
}

// SnapshotStatus is the freshness report of one snapshot.
type SnapshotStatus struct {
	LastRefresh *time.Time `json:"last_refresh"`
	LastError   string     `json:"last_error,omitempty"`
	Stale       bool       `json:"stale"`
}

func NewSnapshot[T any]() *Snapshot[T] {
	return &Snapshot[T]{now: time.Now}
}

// Begin reserves the sequence number of a new fetch.
func (s *Snapshot[T]) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return s.issued
}

// Commit stores value fetched under seq. It returns false and drops the
// value when a newer fetch has already been committed.
func (s *Snapshot[T]) Commit(seq uint64, value T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq <= s.accepted {
		return false
	}
	s.accepted = seq
	s.value = value
	s.has = true
	s.refreshedAt = s.now().UTC()
	s.lastErr = ""
	return true
}

// Fail records a failed fetch. The previous value stays in place.
func (s *Snapshot[T]) Fail(seq uint64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq <= s.accepted || err == nil {
		return
	}
	s.lastErr = err.Error()
}

// Get returns the current value and whether one was ever committed.
func (s *Snapshot[T]) Get() (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value, s.has
}

// Age is the time since the last commit, or -1 when there is none.
func (s *Snapshot[T]) Age() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.has {
		return -1
	}
	return s.now().Sub(s.refreshedAt)
}

func (s *Snapshot[T]) Status() SnapshotStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := SnapshotStatus{LastError: s.lastErr, Stale: s.lastErr != ""}
	if s.has {
		at := s.refreshedAt
		st.LastRefresh = &at
	}
	return st
}
