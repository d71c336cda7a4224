package catalog

import (
	"context"
	"sort"
	"sync"

	apperrors "github.com/louisbranch/buildledger/internal/platform/errors"
)

// Memory is a Client backed by a map. It is safe for concurrent use.
type Memory struct {
	mu   sync.RWMutex
	defs map[Kind]map[string]Definition
}

var _ Client = (*Memory)(nil)

// NewMemory returns a Memory client seeded with defs.
func NewMemory(defs ...Definition) *Memory {
	m := &Memory{defs: map[Kind]map[string]Definition{}}
	for _, def := range defs {
		m.Put(def)
	}
	return m
}

// Put inserts or replaces a definition.
func (m *Memory) Put(def Definition) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.defs[def.Kind] == nil {
		m.defs[def.Kind] = map[string]Definition{}
	}
	m.defs[def.Kind][def.ID] = def
}

// GetDefinition implements Client.
func (m *Memory) GetDefinition(ctx context.Context, kind Kind, id string) (Definition, error) {
	if err := ctx.Err(); err != nil {
		return Definition{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	def, ok := m.defs[kind][id]
	if !ok {
		return Definition{}, apperrors.WithMetadata(apperrors.CodeNotFound,
			string(kind)+" "+id+" not found",
			map[string]string{"Kind": string(kind), "ID": id})
	}
	return def, nil
}

// ListDefinitions implements Client.
func (m *Memory) ListDefinitions(ctx context.Context, kind Kind) ([]Definition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Definition, 0, len(m.defs[kind]))
	for _, def := range m.defs[kind] {
		out = append(out, def)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}
