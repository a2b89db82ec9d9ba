package reconcile

import (
	"strings"
	"sync"

	"attendance-reconciler/core/utils"
)

// State bundles the two stores shared by every worker of a run.
type State struct {
	Identities *Registry
	Names      *NameIndex
}

// NewState creates empty shared stores.
func NewState() *State {
	return &State{
		Identities: NewRegistry(),
		Names:      NewNameIndex(),
	}
}

// Registry maps email to the aggregated identity. Every mutation goes through
// Upsert, which holds the lock for the whole read-modify-write.
type Registry struct {
	mu      sync.Mutex
	records map[string]*Identity
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{records: make(map[string]*Identity)}
}

// Upsert records one observation of email under name and returns the updated
// identity. The first observation creates the record with Count 1. Later ones
// increment Count and replace Name unless the new name is empty, all digits, or
// equal to the local part of the email.
func (r *Registry) Upsert(email, name string) Identity {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[email]
	if !ok {
		rec = &Identity{Name: name, Email: email, Count: 1}
		r.records[email] = rec
		return *rec
	}

	rec.Count++
	if acceptsName(name, email) {
		rec.Name = name
	}
	return *rec
}

// Get returns a copy of the identity for email.
func (r *Registry) Get(email string) (Identity, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[email]
	if !ok {
		return Identity{}, false
	}
	return *rec, true
}

// Len returns the number of identities.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

// Snapshot copies every identity out of the registry.
func (r *Registry) Snapshot() map[string]Identity {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]Identity, len(r.records))
	for email, rec := range r.records {
		out[email] = *rec
	}
	return out
}

func acceptsName(name, email string) bool {
	if name == "" || utils.IsDigits(name) {
		return false
	}
	local, _, _ := strings.Cut(email, "@")
	return name != local
}

// NameIndex binds normalized names to the email chosen to represent them.
// A binding is permanent: the first writer wins.
type NameIndex struct {
	mu       sync.RWMutex
	bindings map[string]string
}

// NewNameIndex creates an empty index.
func NewNameIndex() *NameIndex {
	return &NameIndex{bindings: make(map[string]string)}
}

// Lookup returns the email bound to key.
func (n *NameIndex) Lookup(key string) (string, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	email, ok := n.bindings[key]
	return email, ok
}

// BindIfAbsent binds key to email unless key is already bound. It returns the
// email bound after the call and whether this call created the binding.
func (n *NameIndex) BindIfAbsent(key, email string) (string, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if bound, ok := n.bindings[key]; ok {
		return bound, false
	}
	n.bindings[key] = email
	return email, true
}

// Len returns the number of bindings.
func (n *NameIndex) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.bindings)
}
