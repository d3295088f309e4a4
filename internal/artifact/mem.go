package artifact

import (
	"fmt"
	"strings"
	"sync"
)

// MemStore keeps artifacts in memory. Used by tests.
type MemStore struct {
	mu      sync.Mutex
	entries map[string]string
}

func NewMem() *MemStore {
	return &MemStore{entries: make(map[string]string)}
}

func (m *MemStore) put(key, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = content
	return nil
}

func (m *MemStore) PutSection(slug, content string) error {
	return m.put("section/"+slug, content)
}

func (m *MemStore) PutPass1(slug, content string) error {
	return m.put("pass1/"+slug, content)
}

func (m *MemStore) PutPass2(content string) error {
	return m.put("pass2", content)
}

func (m *MemStore) PutRound(slug string, round int, content string) error {
	return m.put(fmt.Sprintf("round/%s/%02d", slug, round), content)
}

func (m *MemStore) PutIterationSummary(slug, content string) error {
	return m.put("summary/"+slug, content)
}

func (m *MemStore) PutSession(slug, handle string) error {
	return m.put("session/"+slug, handle)
}

func (m *MemStore) ResetIteration(slug string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.entries {
		if strings.HasPrefix(k, "round/"+slug+"/") || k == "summary/"+slug {
			delete(m.entries, k)
		}
	}
	return nil
}

// Get returns a stored artifact by its internal key.
func (m *MemStore) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.entries[key]
	return v, ok
}

// Len returns the number of stored artifacts.
func (m *MemStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
