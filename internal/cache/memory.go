package cache

import (
	"sync"
	"time"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// memoryStore is the in-process fallback used when Redis is unreachable.
// Entries expire lazily on read. It also carries a minimal pub/sub broker so
// progressive streaming keeps working in single-process deployments.
type memoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	subs    map[string][]chan string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		entries: make(map[string]memoryEntry),
		subs:    make(map[string][]chan string),
	}
}

func (m *memoryStore) get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return "", false
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		delete(m.entries, key)
		return "", false
	}
	return entry.value, true
}

func (m *memoryStore) set(key, value string, ttl time.Duration) {
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	m.mu.Lock()
	m.entries[key] = memoryEntry{value: value, expiresAt: expiresAt}
	m.mu.Unlock()
}

// publish delivers to every subscriber without blocking; a subscriber that
// has fallen 16 messages behind loses the update.
func (m *memoryStore) publish(channel, payload string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, sub := range m.subs[channel] {
		select {
		case sub <- payload:
		default:
		}
	}
}

func (m *memoryStore) subscribe(channel string) (<-chan string, func()) {
	sub := make(chan string, 16)

	m.mu.Lock()
	m.subs[channel] = append(m.subs[channel], sub)
	m.mu.Unlock()

	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()

		subs := m.subs[channel]
		for i, candidate := range subs {
			if candidate == sub {
				m.subs[channel] = append(subs[:i], subs[i+1:]...)
				close(sub)
				break
			}
		}
		if len(m.subs[channel]) == 0 {
			delete(m.subs, channel)
		}
	}
	return sub, cancel
}
