package disk

import (
	"github.com/pkg/errors"

	"github.com/jbweber/diskforge/api/v1alpha1"
	"github.com/jbweber/diskforge/internal/boot"
	"github.com/jbweber/diskforge/internal/entity"
	"github.com/jbweber/diskforge/internal/resolver"
)

var (
	// ErrMissingImageData is returned when cloning without a resolved image reference.
	ErrMissingImageData = errors.New("image data not found")

	// ErrInvalidSize is returned for sizes a device class cannot have.
	ErrInvalidSize = errors.New("invalid disk size")

	// ErrNoResolver is returned when a clone needs a resolver the session was not given.
	ErrNoResolver = errors.New("no resolver configured")
)

// Errors surfaced from the collaborating packages, re-exported so callers of
// the builder only need this package for errors.Is checks.
var (
	ErrSchemaMismatch       = entity.ErrSchemaMismatch
	ErrUnknownAdapter       = v1alpha1.ErrUnknownAdapter
	ErrUnknownDeviceType    = v1alpha1.ErrUnknownDeviceType
	ErrNoBootDeviceSelected = boot.ErrNoBootDeviceSelected
	ErrResolutionFailure    = resolver.ErrResolutionFailure
	ErrImageTypeMismatch    = resolver.ErrImageTypeMismatch
	ErrMissingPackage       = resolver.ErrMissingPackage
)
