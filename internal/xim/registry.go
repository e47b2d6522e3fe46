package xim

import "slices"

// Registry is the set of live input contexts, each remembered with the
// client that created it. It is not safe for concurrent use; dispatch is
// sequential.
type Registry struct {
	live map[Handle]Handle
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{live: make(map[Handle]Handle)}
}

// Insert marks ic alive. owner may be zero.
func (r *Registry) Insert(ic, owner Handle) {
	r.live[ic] = owner
}

// Remove marks ic dead. Removing an absent handle is a no-op.
func (r *Registry) Remove(ic Handle) {
	delete(r.live, ic)
}

// Contains reports whether ic is alive.
func (r *Registry) Contains(ic Handle) bool {
	_, ok := r.live[ic]
	return ok
}

// Len returns the number of live contexts.
func (r *Registry) Len() int {
	return len(r.live)
}

// Handles returns the live contexts in ascending order.
func (r *Registry) Handles() []Handle {
	out := make([]Handle, 0, len(r.live))
	for h := range r.live {
		out = append(out, h)
	}
	slices.Sort(out)
	return out
}

// OwnedBy returns the live contexts created by client, in ascending order.
func (r *Registry) OwnedBy(client Handle) []Handle {
	var out []Handle
	for ic, owner := range r.live {
		if owner == client {
			out = append(out, ic)
		}
	}
	slices.Sort(out)
	return out
}
