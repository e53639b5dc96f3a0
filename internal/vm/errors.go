package vm

import (
	"github.com/pkg/errors"

	"github.com/jbweber/diskforge/internal/disk"
)

var (
	// ErrNoBootDeviceSelected is returned when a blueprint requires a boot
	// device and no intent selected one.
	ErrNoBootDeviceSelected = disk.ErrNoBootDeviceSelected

	// ErrMissingPackage is returned when an intent names an undeclared package.
	ErrMissingPackage = disk.ErrMissingPackage

	// ErrNilInput is returned when a nil blueprint or configuration is passed.
	ErrNilInput = errors.New("nil input")
)
