package index

import (
	"context"
	"sort"
	"sync"
)

// Memory is a brute-force in-memory Index used in tests.
type Memory struct {
	mu         sync.RWMutex
	namespaces map[string]map[string]Vector
}

func NewMemory() *Memory {
	return &Memory{namespaces: make(map[string]map[string]Vector)}
}

func (m *Memory) Get(_ context.Context, namespace string, keys []string) (map[string]Vector, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]Vector, len(keys))
	ns := m.namespaces[namespace]
	for _, key := range keys {
		if vec, ok := ns[key]; ok {
			out[key] = append(Vector(nil), vec...)
		}
	}
	return out, nil
}

func (m *Memory) Nearest(_ context.Context, namespace string, vector Vector, k int) ([]Match, error) {
	if k <= 0 {
		k = 5
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	ns := m.namespaces[namespace]
	matches := make([]Match, 0, len(ns))
	for key, candidate := range ns {
		matches = append(matches, Match{
			Key:        key,
			Similarity: CosineSimilarity(vector, candidate),
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return matches[i].Key < matches[j].Key
	})
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

func (m *Memory) Upsert(_ context.Context, namespace, key string, vector Vector, _ map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ns, ok := m.namespaces[namespace]
	if !ok {
		ns = make(map[string]Vector)
		m.namespaces[namespace] = ns
	}
	ns[key] = append(Vector(nil), vector...)
	return nil
}

func (m *Memory) Delete(_ context.Context, namespace, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ns, ok := m.namespaces[namespace]; ok {
		delete(ns, key)
	}
	return nil
}
