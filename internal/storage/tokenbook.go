package storage

import (
	"sync"

	"github.com/kobuta23/telegram-minter/internal/model"
)

// TokenBook maps each actor to their default token id. Entries are set when a
// creation completes or when the actor picks one explicitly; they are never
// deleted automatically.
type TokenBook struct {
	mu     sync.Mutex
	path   string
	tokens map[model.ActorID]int64
}

// OpenTokenBook loads the default-token snapshot, creating an empty one if
// the file does not exist yet.
func OpenTokenBook(path string) (*TokenBook, error) {
	b := &TokenBook{path: path, tokens: make(map[model.ActorID]int64)}
	if _, err := ReadSnapshot(path, &b.tokens); err != nil {
		return nil, err
	}
	return b, nil
}

// Set records the actor's default token and persists the snapshot.
func (b *TokenBook) Set(actor model.ActorID, tokenID int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokens[actor] = tokenID
	return WriteSnapshot(b.path, b.tokens)
}

// Get returns the actor's default token id.
func (b *TokenBook) Get(actor model.ActorID) (int64, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id, ok := b.tokens[actor]
	return id, ok
}

// All returns a copy of the full mapping.
func (b *TokenBook) All() map[model.ActorID]int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[model.ActorID]int64, len(b.tokens))
	for k, v := range b.tokens {
		out[k] = v
	}
	return out
}
