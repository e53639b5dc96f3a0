package resolver

import (
	"context"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/jbweber/diskforge/api/v1alpha1"
)

// PackageResolver resolves package-produced images.
type PackageResolver struct {
	backend PackageBackend
	logger  *zap.Logger
}

// NewPackageResolver creates a package resolver over backend.
func NewPackageResolver(backend PackageBackend, logger *zap.Logger) *PackageResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PackageResolver{backend: backend, logger: logger}
}

// Resolve compiles pkg, checks its image type against the type expected for
// deviceType, and returns a package reference.
func (r *PackageResolver) Resolve(ctx context.Context, pkg Package, deviceType v1alpha1.DeviceType) (*v1alpha1.ImageReference, error) {
	if lo.IsNil(pkg) {
		return nil, errors.WithStack(ErrMissingPackage)
	}

	expected, err := deviceType.ExpectedImageType()
	if err != nil {
		return nil, err
	}

	desc, err := r.backend.Compile(ctx, pkg)
	if err != nil {
		return nil, errors.Wrapf(err, "compile package %q", pkg.PackageName())
	}

	actual := desc.Options.Resources.ImageType
	if actual != expected {
		return nil, errors.WithStack(&ImageTypeMismatchError{
			Package:  pkg.PackageName(),
			Expected: expected,
			Actual:   actual,
		})
	}

	ref, err := r.backend.Reference(ctx, pkg)
	if err != nil {
		return nil, errors.Wrapf(err, "reference package %q", pkg.PackageName())
	}

	r.logger.Debug("resolved package image",
		zap.String("package", ref.Name),
		zap.String("uuid", ref.UUID),
		zap.String("imageType", string(actual)))

	return ref, nil
}
