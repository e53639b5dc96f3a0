package resolver

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/jbweber/diskforge/api/v1alpha1"
)

// mockLookup is a mock implementation of ProjectLookup and ImageLookup for testing.
type mockLookup struct {
	mu sync.Mutex

	// Configurable behavior
	lookupProjectFunc func(name string) (*Project, error)
	lookupImageFunc   func(name string, imageType v1alpha1.ImageType, account string) (*Image, error)

	// Call tracking
	lookupProjectCalls []string
	lookupImageCalls   []string
}

// newMockLookup creates a lookup with one project "demo" owning one disk
// image "centos7" and one ISO "tools".
func newMockLookup() *mockLookup {
	m := &mockLookup{}

	m.lookupProjectFunc = func(name string) (*Project, error) {
		if name != "demo" {
			return nil, errors.Wrapf(ErrNotFound, "project %q", name)
		}
		return &Project{
			Name:     "demo",
			UUID:     "p-1",
			Accounts: map[string]string{AccountKeyImageService: "acct-1"},
		}, nil
	}

	m.lookupImageFunc = func(name string, imageType v1alpha1.ImageType, account string) (*Image, error) {
		switch {
		case name == "centos7" && imageType == v1alpha1.ImageTypeDisk && account == "acct-1":
			return &Image{Name: name, UUID: "img-centos7", ImageType: imageType, AccountUUID: account}, nil
		case name == "tools" && imageType == v1alpha1.ImageTypeISO && account == "acct-1":
			return &Image{Name: name, UUID: "img-tools", ImageType: imageType, AccountUUID: account}, nil
		}
		return nil, errors.Wrapf(ErrNotFound, "image %q", name)
	}

	return m
}

func (m *mockLookup) LookupProject(_ context.Context, name string) (*Project, error) {
	m.mu.Lock()
	m.lookupProjectCalls = append(m.lookupProjectCalls, name)
	m.mu.Unlock()
	return m.lookupProjectFunc(name)
}

func (m *mockLookup) LookupImage(_ context.Context, name string, imageType v1alpha1.ImageType, account string) (*Image, error) {
	m.mu.Lock()
	m.lookupImageCalls = append(m.lookupImageCalls, name)
	m.mu.Unlock()
	return m.lookupImageFunc(name, imageType, account)
}

// testPackage is a minimal Package.
type testPackage struct {
	name      string
	imageType v1alpha1.ImageType
}

func (p *testPackage) PackageName() string { return p.name }

// mockBackend is a mock implementation of PackageBackend for testing.
type mockBackend struct {
	mu sync.Mutex

	compileFunc   func(pkg Package) (*Descriptor, error)
	referenceFunc func(pkg Package) (*v1alpha1.ImageReference, error)

	compileCalls   []string
	referenceCalls []string
}

func newMockBackend() *mockBackend {
	m := &mockBackend{}

	m.compileFunc = func(pkg Package) (*Descriptor, error) {
		d := &Descriptor{}
		d.Options.Resources.ImageType = pkg.(*testPackage).imageType
		return d, nil
	}

	m.referenceFunc = func(pkg Package) (*v1alpha1.ImageReference, error) {
		return &v1alpha1.ImageReference{
			Kind: v1alpha1.ReferenceKindPackage,
			Name: pkg.PackageName(),
			UUID: "pkg-" + pkg.PackageName(),
		}, nil
	}

	return m
}

func (m *mockBackend) Compile(_ context.Context, pkg Package) (*Descriptor, error) {
	m.mu.Lock()
	m.compileCalls = append(m.compileCalls, pkg.PackageName())
	m.mu.Unlock()
	return m.compileFunc(pkg)
}

func (m *mockBackend) Reference(_ context.Context, pkg Package) (*v1alpha1.ImageReference, error) {
	m.mu.Lock()
	m.referenceCalls = append(m.referenceCalls, pkg.PackageName())
	m.mu.Unlock()
	return m.referenceFunc(pkg)
}
