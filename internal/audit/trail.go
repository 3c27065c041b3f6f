// Package audit keeps the append-only trail of privileged actions.
package audit

import (
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/kobuta23/telegram-minter/internal/model"
	"github.com/kobuta23/telegram-minter/internal/storage"
)

// snapshot is the durable log file, rewritten in full on every append.
type snapshot struct {
	Entries     []model.AuditEntry `json:"logs"`
	LastUpdated time.Time          `json:"last_updated"`
}

// Trail is the append-only audit record, ordered by timestamp.
type Trail struct {
	mu      sync.Mutex
	path    string
	entries []model.AuditEntry
	entropy *rand.Rand
}

// Open loads the audit snapshot, starting empty if the file does not exist.
func Open(path string) (*Trail, error) {
	t := &Trail{
		path:    path,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	var snap snapshot
	if _, err := storage.ReadSnapshot(path, &snap); err != nil {
		return nil, err
	}
	t.entries = snap.Entries
	return t, nil
}

// Append stamps the entry with an id and timestamp, appends it, and persists.
func (t *Trail) Append(e model.AuditEntry) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now().UTC()
	e.ID = ulid.MustNew(ulid.Timestamp(now), t.entropy).String()
	e.Timestamp = now
	t.entries = append(t.entries, e)
	return storage.WriteSnapshot(t.path, snapshot{Entries: t.entries, LastUpdated: now})
}

// All returns every entry in append order.
func (t *Trail) All() []model.AuditEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]model.AuditEntry(nil), t.entries...)
}

// ByActor returns up to limit entries for the actor, newest first.
func (t *Trail) ByActor(actor model.ActorID, limit int) []model.AuditEntry {
	return t.filter(limit, func(e *model.AuditEntry) bool { return e.ActorID == actor })
}

// ByAction returns up to limit entries of the given kind, newest first.
func (t *Trail) ByAction(kind model.ActionKind, limit int) []model.AuditEntry {
	return t.filter(limit, func(e *model.AuditEntry) bool { return e.Action == kind })
}

// Tail returns up to limit of the most recent entries, newest first.
func (t *Trail) Tail(limit int) []model.AuditEntry {
	return t.filter(limit, func(*model.AuditEntry) bool { return true })
}

func (t *Trail) filter(limit int, keep func(*model.AuditEntry) bool) []model.AuditEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []model.AuditEntry
	// entries are stored oldest first; walk backwards for newest-first results
	for i := len(t.entries) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		if keep(&t.entries[i]) {
			out = append(out, t.entries[i])
		}
	}
	return out
}

// Len reports the number of entries in the trail.
func (t *Trail) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}
