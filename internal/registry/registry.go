package registry

import (
	"sort"
	"strings"
	"sync"

	"github.com/quantumtrack/quantumtrack/internal/config"
)

// Registry is the process-wide user directory. Lookups are case-insensitive.
// It is safe for concurrent use; Replace swaps the whole directory atomically
// on config hot-reload.
type Registry struct {
	mu    sync.RWMutex
	users map[string]config.User // key: lowercased name
	order []string               // sorted lowercased names, for stable iteration
}

// New builds a Registry from the given user list.
func New(users []config.User) *Registry {
	r := &Registry{}
	r.Replace(users)
	return r
}

// Lookup returns the credential for name, matched case-insensitively.
func (r *Registry) Lookup(name string) (config.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[strings.ToLower(name)]
	return u, ok
}

// All returns every registered credential, sorted by name.
func (r *Registry) All() []config.User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]config.User, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.users[key])
	}
	return out
}

// Names returns the display names of all users, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.users[key].Name)
	}
	return out
}

// Count returns the number of registered users.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

// First returns the first user in sorted name order. Used by backend-wide
// views that need any valid credential to enumerate backends.
func (r *Registry) First() (config.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.order) == 0 {
		return config.User{}, false
	}
	return r.users[r.order[0]], true
}

// Replace swaps the directory contents. Config validation has already
// rejected duplicate case-insensitive names.
func (r *Registry) Replace(users []config.User) {
	m := make(map[string]config.User, len(users))
	order := make([]string, 0, len(users))
	for _, u := range users {
		key := strings.ToLower(u.Name)
		m[key] = u
		order = append(order, key)
	}
	sort.Strings(order)

	r.mu.Lock()
	r.users = m
	r.order = order
	r.mu.Unlock()
}
