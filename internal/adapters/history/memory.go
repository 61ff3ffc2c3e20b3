package history

import (
	"context"
	"sync"

	"github.com/okian/winrate/internal/domain/match"
)

// MemoryLoader serves histories from memory.
type MemoryLoader struct {
	mu        sync.RWMutex
	histories map[string]match.History
}

// NewMemoryLoader creates an empty in-memory loader.
func NewMemoryLoader() *MemoryLoader {
	return &MemoryLoader{histories: make(map[string]match.History)}
}

// Put stores a copy of h for playerID.
func (l *MemoryLoader) Put(playerID string, h match.History) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.histories[playerID] = append(match.History(nil), h...)
}

// Load implements match.Loader. Each call returns its own copy.
func (l *MemoryLoader) Load(ctx context.Context, playerID string) (match.History, error) {
	if err := validatePlayerID(playerID); err != nil {
		return nil, loadError(SourceMemory, playerID, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, loadError(SourceMemory, playerID, err)
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	h, ok := l.histories[playerID]
	if !ok {
		return nil, loadError(SourceMemory, playerID, ErrPlayerNotFound)
	}
	return append(match.History{}, h...), nil
}
