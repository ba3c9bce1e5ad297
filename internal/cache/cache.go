// Package cache provides small in-process caches for hot read paths.
package cache

import (
	"sync"
	"time"
)

// Cleaner is anything that can evict its expired entries.
type Cleaner interface {
	CleanExpired() int
}

// Manager runs periodic expiry sweeps over registered caches.
type Manager struct {
	mu       sync.Mutex
	cleaners []Cleaner
	stop     chan struct{}
	once     sync.Once
}

func NewManager() *Manager {
	return &Manager{stop: make(chan struct{})}
}

func (m *Manager) Register(c Cleaner) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleaners = append(m.cleaners, c)
}

// StartCleanup begins sweeping at the given interval until Stop.
func (m *Manager) StartCleanup(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				m.mu.Lock()
				cleaners := make([]Cleaner, len(m.cleaners))
				copy(cleaners, m.cleaners)
				m.mu.Unlock()
				for _, c := range cleaners {
					c.CleanExpired()
				}
			case <-m.stop:
				return
			}
		}
	}()
}

func (m *Manager) Stop() {
	m.once.Do(func() {
		close(m.stop)
	})
}
