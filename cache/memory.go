// Package cache provides caching implementations for access decisions.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/xraph/accessmatrix"
	"github.com/xraph/accessmatrix/rule"
)

// Compile-time interface check.
var _ accessmatrix.Cache = (*Memory)(nil)

// Memory is an in-memory decision cache with TTL-based expiration.
// Entries are grouped by user so a user-scoped invalidation is a single
// map delete.
type Memory struct {
	mu      sync.Mutex
	users   map[int64]map[decisionKey]entry
	size    int
	ttl     time.Duration
	maxSize int
	now     func() time.Time
}

type decisionKey struct {
	module     string
	permission rule.Permission
}

type entry struct {
	allowed   bool
	expiresAt time.Time
}

// MemoryOption configures the memory cache.
type MemoryOption func(*Memory)

// WithTTL sets the cache entry time-to-live.
func WithTTL(ttl time.Duration) MemoryOption {
	return func(m *Memory) { m.ttl = ttl }
}

// WithMaxSize sets the maximum number of cached decisions.
func WithMaxSize(n int) MemoryOption {
	return func(m *Memory) { m.maxSize = n }
}

// NewMemory creates a new in-memory cache.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		users:   make(map[int64]map[decisionKey]entry),
		ttl:     time.Minute,
		maxSize: 10000,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get returns a cached decision.
func (m *Memory) Get(_ context.Context, userID int64, module string, perm rule.Permission) (allowed, ok bool) {
	k := decisionKey{module, perm}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, found := m.users[userID][k]
	if !found {
		return false, false
	}
	if m.now().After(e.expiresAt) {
		m.remove(userID, k)
		return false, false
	}
	return e.allowed, true
}

// Set stores a decision.
func (m *Memory) Set(_ context.Context, userID int64, module string, perm rule.Permission, allowed bool) {
	k := decisionKey{module, perm}
	m.mu.Lock()
	defer m.mu.Unlock()

	decisions, ok := m.users[userID]
	if !ok {
		decisions = make(map[decisionKey]entry)
		m.users[userID] = decisions
	}
	if _, exists := decisions[k]; !exists {
		if m.size >= m.maxSize {
			m.evictExpired()
		}
		if m.size >= m.maxSize {
			m.evictOne()
		}
		m.size++
	}
	decisions[k] = entry{allowed: allowed, expiresAt: m.now().Add(m.ttl)}
	// evictOne may have dropped this user's map.
	m.users[userID] = decisions
}

// InvalidateUser removes every cached decision for a user.
func (m *Memory) InvalidateUser(_ context.Context, userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.size -= len(m.users[userID])
	delete(m.users, userID)
}

// Purge removes every cached decision.
func (m *Memory) Purge(_ context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = make(map[int64]map[decisionKey]entry)
	m.size = 0
}

// Len returns the number of cached decisions, including expired ones not
// yet evicted.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.size
}

// remove deletes one decision. Must hold lock.
func (m *Memory) remove(userID int64, k decisionKey) {
	decisions := m.users[userID]
	if _, ok := decisions[k]; !ok {
		return
	}
	delete(decisions, k)
	m.size--
	if len(decisions) == 0 {
		delete(m.users, userID)
	}
}

// evictExpired removes all expired entries. Must hold lock.
func (m *Memory) evictExpired() {
	now := m.now()
	for userID, decisions := range m.users {
		for k, e := range decisions {
			if now.After(e.expiresAt) {
				m.remove(userID, k)
			}
		}
	}
}

// evictOne removes one arbitrary entry. Must hold lock.
func (m *Memory) evictOne() {
	for userID, decisions := range m.users {
		for k := range decisions {
			m.remove(userID, k)
			return
		}
	}
}
