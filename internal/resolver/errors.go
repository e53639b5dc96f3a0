package resolver

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/jbweber/diskforge/api/v1alpha1"
)

// RemediationHint tells users how to repair a stale lookup cache.
const RemediationHint = "run 'diskforge cache update' to refresh the lookup cache"

var (
	// ErrResolutionFailure is returned when a project, account or image cannot be found.
	ErrResolutionFailure = errors.New("image resolution failed")

	// ErrImageTypeMismatch is returned when a package produces the wrong image type
	// for the requested device class.
	ErrImageTypeMismatch = errors.New("image type mismatch")

	// ErrMissingPackage is returned when package resolution is given no package.
	ErrMissingPackage = errors.New("package is required")

	// ErrNotFound is returned by lookups that find nothing.
	ErrNotFound = errors.New("not found")
)

// ResolutionError describes a failed catalog resolution with enough context
// for the user to refresh the cache and retry.
type ResolutionError struct {
	Project     string
	AccountUUID string
	Image       string
	Reason      string
	Err         error
}

func (e *ResolutionError) Error() string {
	msg := fmt.Sprintf("resolve image %q in project %q", e.Image, e.Project)
	if e.AccountUUID != "" {
		msg += fmt.Sprintf(" (account %s)", e.AccountUUID)
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg + "; " + RemediationHint
}

// Unwrap returns the underlying lookup error.
func (e *ResolutionError) Unwrap() error { return e.Err }

// Is matches ErrResolutionFailure.
func (e *ResolutionError) Is(target error) bool { return target == ErrResolutionFailure }

// ImageTypeMismatchError reports a package whose image type does not match
// the device class it was attached as.
type ImageTypeMismatchError struct {
	Package  string
	Expected v1alpha1.ImageType
	Actual   v1alpha1.ImageType
}

func (e *ImageTypeMismatchError) Error() string {
	return fmt.Sprintf("package %q produces %s, expected %s", e.Package, e.Actual, e.Expected)
}

// Is matches ErrImageTypeMismatch.
func (e *ImageTypeMismatchError) Is(target error) bool { return target == ErrImageTypeMismatch }
