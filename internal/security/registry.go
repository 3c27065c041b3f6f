// Package security holds the permission registry gating privileged actions.
package security

import (
	"sort"
	"sync"
	"time"

	"github.com/kobuta23/telegram-minter/internal/model"
	"github.com/kobuta23/telegram-minter/internal/storage"
)

// snapshot is the durable form of the registry, rewritten in full on every
// mutation.
type snapshot struct {
	Grants      map[model.ActorID][]model.Capability `json:"grants"`
	Groups      []int64                              `json:"whitelisted_groups"`
	LastUpdated time.Time                            `json:"last_updated"`
}

// Registry maps actors to granted capabilities. The admin capability implies
// all others. All operations are serialized under one mutex; in particular the
// empty-check-and-bootstrap is a single atomic step, so two racing actors
// cannot both believe they became the first admin.
type Registry struct {
	mu     sync.Mutex
	path   string
	grants map[model.ActorID]map[model.Capability]bool
	groups map[int64]bool
}

// Open loads the registry snapshot, starting empty if the file does not
// exist yet.
func Open(path string) (*Registry, error) {
	r := &Registry{
		path:   path,
		grants: make(map[model.ActorID]map[model.Capability]bool),
		groups: make(map[int64]bool),
	}
	var snap snapshot
	ok, err := storage.ReadSnapshot(path, &snap)
	if err != nil {
		return nil, err
	}
	if ok {
		for id, caps := range snap.Grants {
			set := make(map[model.Capability]bool, len(caps))
			for _, c := range caps {
				set[c] = true
			}
			r.grants[id] = set
		}
		for _, g := range snap.Groups {
			r.groups[g] = true
		}
	}
	return r, nil
}

// save persists the current state. Callers hold r.mu.
func (r *Registry) save() error {
	snap := snapshot{
		Grants:      make(map[model.ActorID][]model.Capability, len(r.grants)),
		LastUpdated: time.Now().UTC(),
	}
	for id, set := range r.grants {
		caps := make([]model.Capability, 0, len(set))
		for c := range set {
			caps = append(caps, c)
		}
		sort.Slice(caps, func(i, j int) bool { return caps[i] < caps[j] })
		snap.Grants[id] = caps
	}
	for g := range r.groups {
		snap.Groups = append(snap.Groups, g)
	}
	sort.Slice(snap.Groups, func(i, j int) bool { return snap.Groups[i] < snap.Groups[j] })
	return storage.WriteSnapshot(r.path, snap)
}

// Grant adds capabilities to an actor (idempotent union) and persists.
func (r *Registry) Grant(actor model.ActorID, caps ...model.Capability) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	set := r.grants[actor]
	if set == nil {
		set = make(map[model.Capability]bool)
		r.grants[actor] = set
	}
	for _, c := range caps {
		set[c] = true
	}
	return r.save()
}

// Revoke removes capabilities from an actor and persists, even if the actor
// held none of them.
func (r *Registry) Revoke(actor model.ActorID, caps ...model.Capability) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if set, ok := r.grants[actor]; ok {
		for _, c := range caps {
			delete(set, c)
		}
		if len(set) == 0 {
			delete(r.grants, actor)
		}
	}
	return r.save()
}

// HasCapability reports whether the actor holds the capability. Admin
// short-circuits every check.
func (r *Registry) HasCapability(actor model.ActorID, c model.Capability) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	set := r.grants[actor]
	return set[model.CapAdmin] || set[c]
}

// Capabilities returns the actor's effective capability set. An admin holds
// every defined capability.
func (r *Registry) Capabilities(actor model.ActorID) []model.Capability {
	r.mu.Lock()
	defer r.mu.Unlock()
	set := r.grants[actor]
	if set[model.CapAdmin] {
		return []model.Capability{
			model.CapAdmin, model.CapCreate, model.CapMint, model.CapMintAny,
			model.CapViewLogs, model.CapViewTokens,
		}
	}
	caps := make([]model.Capability, 0, len(set))
	for c := range set {
		caps = append(caps, c)
	}
	sort.Slice(caps, func(i, j int) bool { return caps[i] < caps[j] })
	return caps
}

// BootstrapIfEmpty grants admin to the actor if no grants exist at all.
// The check and the grant happen under one lock acquisition: first writer
// wins, the loser observes a non-empty registry and gets false.
func (r *Registry) BootstrapIfEmpty(actor model.ActorID) (granted bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.grants) > 0 {
		return false, nil
	}
	r.grants[actor] = map[model.Capability]bool{model.CapAdmin: true}
	if err := r.save(); err != nil {
		return false, err
	}
	return true, nil
}

// WhitelistGroup allows a chat group and persists.
func (r *Registry) WhitelistGroup(chatID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groups[chatID] = true
	return r.save()
}

// RemoveGroup removes a chat group from the whitelist and persists.
func (r *Registry) RemoveGroup(chatID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.groups, chatID)
	return r.save()
}

// IsWhitelisted reports whether the actor may use the bot in the given chat:
// any granted capability, or a whitelisted group, qualifies.
func (r *Registry) IsWhitelisted(actor model.ActorID, chatID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.grants[actor]) > 0 || r.groups[chatID]
}
