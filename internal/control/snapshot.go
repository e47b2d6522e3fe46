// Package control exports the dispatch layer's status on D-Bus and provides
// the client used by ximctl.
package control

import (
	"slices"
	"sync"

	"ximd/internal/xim"
)

// Status is the counter summary returned by Server1.Status.
type Status struct {
	Live        uint32
	Dispatched  uint64
	Rejected    uint64
	Unsupported uint64
}

// Snapshot mirrors the registry for readers on other goroutines. It is fed
// as an xim.Observer from the dispatch goroutine.
type Snapshot struct {
	mu          sync.RWMutex
	live        []uint64
	dispatched  uint64
	rejected    uint64
	unsupported uint64
}

var _ xim.Observer = (*Snapshot)(nil)

// NewSnapshot returns an empty snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{}
}

// ObserveDispatch replaces the live list and bumps the counters.
func (s *Snapshot) ObserveDispatch(info xim.DispatchInfo) {
	live := make([]uint64, len(info.Live))
	for i, h := range info.Live {
		live[i] = uint64(h)
	}
	slices.Sort(live)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.live = live
	s.dispatched++
	if info.Kind == xim.KindUnsupported {
		s.unsupported++
	}
}

// ObserveRejected counts one DeadInputContext refusal.
func (s *Snapshot) ObserveRejected(string, xim.Handle) {
	s.mu.Lock()
	s.rejected++
	s.mu.Unlock()
}

// ObserveDestroyed empties the live list; the counters are kept.
func (s *Snapshot) ObserveDestroyed() {
	s.mu.Lock()
	s.live = nil
	s.mu.Unlock()
}

// Status returns the current counters.
func (s *Snapshot) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Status{
		Live:        uint32(len(s.live)),
		Dispatched:  s.dispatched,
		Rejected:    s.rejected,
		Unsupported: s.unsupported,
	}
}

// InputContexts returns the live input context handles in ascending order.
func (s *Snapshot) InputContexts() []uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.live)
}

// IsAlive reports whether ic was live after the last dispatch.
func (s *Snapshot) IsAlive(ic uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, found := slices.BinarySearch(s.live, ic)
	return found
}
