package storage

import (
	"strings"
	"sync"
	"time"

	"github.com/kobuta23/telegram-minter/internal/model"
)

// Directory is the durable actor directory, keyed by numeric id with a
// secondary lookup by handle.
type Directory struct {
	mu     sync.Mutex
	path   string
	actors map[model.ActorID]model.Actor
}

// OpenDirectory loads the directory snapshot, creating an empty one if the
// file does not exist yet.
func OpenDirectory(path string) (*Directory, error) {
	d := &Directory{path: path, actors: make(map[model.ActorID]model.Actor)}
	if _, err := ReadSnapshot(path, &d.actors); err != nil {
		return nil, err
	}
	return d, nil
}

// Upsert records an actor sighting, preserving the original AddedAt on
// re-registration, and persists the snapshot.
func (d *Directory) Upsert(a model.Actor) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if prev, ok := d.actors[a.ID]; ok && !prev.AddedAt.IsZero() {
		a.AddedAt = prev.AddedAt
	} else if a.AddedAt.IsZero() {
		a.AddedAt = time.Now().UTC()
	}
	d.actors[a.ID] = a
	return WriteSnapshot(d.path, d.actors)
}

// Get returns the actor with the given id.
func (d *Directory) Get(id model.ActorID) (model.Actor, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	a, ok := d.actors[id]
	return a, ok
}

// ByHandle returns the actor with the given handle, with or without a
// leading @.
func (d *Directory) ByHandle(handle string) (model.Actor, bool) {
	handle = strings.TrimPrefix(handle, "@")
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, a := range d.actors {
		if a.Handle == handle {
			return a, true
		}
	}
	return model.Actor{}, false
}

// All returns every known actor.
func (d *Directory) All() []model.Actor {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]model.Actor, 0, len(d.actors))
	for _, a := range d.actors {
		out = append(out, a)
	}
	return out
}
