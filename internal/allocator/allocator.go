// Package allocator hands out device indices per adapter family.
//
// Each family has its own counter starting at 0. Next returns the current
// value and increments it, so indices within a session are never reused.
// Counters only go back to 0 through Reset, which marks the start of a new
// VM definition.
package allocator

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/jbweber/diskforge/api/v1alpha1"
)

// Allocator tracks the next free device index per adapter family.
// It is safe for concurrent use.
type Allocator struct {
	mu   sync.Mutex
	next map[v1alpha1.AdapterType]int
}

// New creates an allocator with every counter at 0.
func New() *Allocator {
	return &Allocator{next: make(map[v1alpha1.AdapterType]int)}
}

// Next returns the next free index on adapter and consumes it.
func (a *Allocator) Next(adapter v1alpha1.AdapterType) (int, error) {
	if !adapter.Valid() {
		return 0, errors.Wrapf(ErrUnknownAdapter, "%q", adapter)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	index := a.next[adapter]
	a.next[adapter] = index + 1
	return index, nil
}

// Address allocates the next index on adapter and returns it as a DiskAddress.
func (a *Allocator) Address(adapter v1alpha1.AdapterType) (v1alpha1.DiskAddress, error) {
	index, err := a.Next(adapter)
	if err != nil {
		return v1alpha1.DiskAddress{}, err
	}
	return v1alpha1.DiskAddress{AdapterType: adapter, DeviceIndex: index}, nil
}

// Peek returns the index the next call to Next would return, without consuming it.
func (a *Allocator) Peek(adapter v1alpha1.AdapterType) (int, error) {
	if !adapter.Valid() {
		return 0, errors.Wrapf(ErrUnknownAdapter, "%q", adapter)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	return a.next[adapter], nil
}

// Snapshot returns the next free index of every adapter family.
func (a *Allocator) Snapshot() map[v1alpha1.AdapterType]int {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make(map[v1alpha1.AdapterType]int, len(v1alpha1.AdapterTypes))
	for _, t := range v1alpha1.AdapterTypes {
		out[t] = a.next[t]
	}
	return out
}

// Reset sets every counter back to 0.
func (a *Allocator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.next = make(map[v1alpha1.AdapterType]int)
}
