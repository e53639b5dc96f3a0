// Package boot tracks the single boot device of a VM definition.
package boot

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/jbweber/diskforge/api/v1alpha1"
)

// Selector holds at most one boot device address. Each Select overwrites the
// previous one; there is no unselect.
// It is safe for concurrent use.
type Selector struct {
	mu       sync.Mutex
	address  v1alpha1.DiskAddress
	selected bool
}

// New creates a selector with nothing selected.
func New() *Selector {
	return &Selector{}
}

// Select makes address the boot device.
// The address is not checked against allocated devices.
func (s *Selector) Select(address v1alpha1.DiskAddress) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.address = address
	s.selected = true
}

// Current returns the selected boot device.
func (s *Selector) Current() (v1alpha1.DiskAddress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.selected {
		return v1alpha1.DiskAddress{}, errors.WithStack(ErrNoBootDeviceSelected)
	}
	return s.address, nil
}

// Config returns the selected boot device in its wire shape.
func (s *Selector) Config() (v1alpha1.BootConfiguration, error) {
	address, err := s.Current()
	if err != nil {
		return v1alpha1.BootConfiguration{}, err
	}
	return v1alpha1.BootConfiguration{
		BootDevice: v1alpha1.BootDevice{DiskAddress: address},
	}, nil
}

// Selected reports whether a boot device has been selected.
func (s *Selector) Selected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// Reset clears the selection.
func (s *Selector) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.address = v1alpha1.DiskAddress{}
	s.selected = false
}
