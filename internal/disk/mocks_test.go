package disk

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/jbweber/diskforge/api/v1alpha1"
	"github.com/jbweber/diskforge/internal/resolver"
)

// mockImageResolver is a mock implementation of ImageResolver for testing.
type mockImageResolver struct {
	mu sync.Mutex

	// Configurable behavior
	resolveFunc func(name string, imageType v1alpha1.ImageType) (*v1alpha1.ImageReference, error)

	// Call tracking
	resolveCalls []string
	typeCalls    []v1alpha1.ImageType
}

// newMockImageResolver resolves "centos7" as a disk image and "tools" as an ISO.
func newMockImageResolver() *mockImageResolver {
	m := &mockImageResolver{}
	m.resolveFunc = func(name string, imageType v1alpha1.ImageType) (*v1alpha1.ImageReference, error) {
		switch {
		case name == "centos7" && imageType == v1alpha1.ImageTypeDisk,
			name == "fedora" && imageType == v1alpha1.ImageTypeDisk,
			name == "tools" && imageType == v1alpha1.ImageTypeISO:
			return &v1alpha1.ImageReference{Kind: v1alpha1.ReferenceKindImage, Name: name, UUID: "img-" + name}, nil
		}
		return nil, &resolver.ResolutionError{
			Project: "demo",
			Image:   name,
			Reason:  "image lookup failed",
			Err:     errors.Wrapf(resolver.ErrNotFound, "%s %q", imageType, name),
		}
	}
	return m
}

func (m *mockImageResolver) Resolve(_ context.Context, name string, imageType v1alpha1.ImageType) (*v1alpha1.ImageReference, error) {
	m.mu.Lock()
	m.resolveCalls = append(m.resolveCalls, name)
	m.typeCalls = append(m.typeCalls, imageType)
	m.mu.Unlock()
	return m.resolveFunc(name, imageType)
}

// mockPackage is a minimal resolver.Package.
type mockPackage struct {
	name      string
	imageType v1alpha1.ImageType
}

func (p *mockPackage) PackageName() string { return p.name }

// mockPackageResolver is a mock implementation of PackageResolver for testing.
type mockPackageResolver struct {
	mu sync.Mutex

	resolveFunc func(pkg resolver.Package, deviceType v1alpha1.DeviceType) (*v1alpha1.ImageReference, error)

	resolveCalls []string
}

// newMockPackageResolver checks the image type the same way the real resolver does.
func newMockPackageResolver() *mockPackageResolver {
	m := &mockPackageResolver{}
	m.resolveFunc = func(pkg resolver.Package, deviceType v1alpha1.DeviceType) (*v1alpha1.ImageReference, error) {
		if pkg == nil {
			return nil, resolver.ErrMissingPackage
		}
		p := pkg.(*mockPackage)
		expected, err := deviceType.ExpectedImageType()
		if err != nil {
			return nil, err
		}
		if p.imageType != expected {
			return nil, &resolver.ImageTypeMismatchError{Package: p.name, Expected: expected, Actual: p.imageType}
		}
		return &v1alpha1.ImageReference{Kind: v1alpha1.ReferenceKindPackage, Name: p.name, UUID: "pkg-" + p.name}, nil
	}
	return m
}

func (m *mockPackageResolver) Resolve(_ context.Context, pkg resolver.Package, deviceType v1alpha1.DeviceType) (*v1alpha1.ImageReference, error) {
	m.mu.Lock()
	if pkg != nil {
		m.resolveCalls = append(m.resolveCalls, pkg.PackageName())
	}
	m.mu.Unlock()
	return m.resolveFunc(pkg, deviceType)
}
