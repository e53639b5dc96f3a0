package vm

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/jbweber/diskforge/api/v1alpha1"
	"github.com/jbweber/diskforge/internal/resolver"
)

// mockImageResolver is a mock implementation of disk.ImageResolver for testing.
type mockImageResolver struct {
	mu sync.Mutex

	// Known images by name
	images map[string]v1alpha1.ImageType

	// Call tracking
	resolveCalls []string
}

func newMockImageResolver() *mockImageResolver {
	return &mockImageResolver{
		images: map[string]v1alpha1.ImageType{
			"centos7": v1alpha1.ImageTypeDisk,
			"fedora":  v1alpha1.ImageTypeDisk,
			"tools":   v1alpha1.ImageTypeISO,
		},
	}
}

func (m *mockImageResolver) Resolve(_ context.Context, name string, imageType v1alpha1.ImageType) (*v1alpha1.ImageReference, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resolveCalls = append(m.resolveCalls, name)

	if t, ok := m.images[name]; ok && t == imageType {
		return &v1alpha1.ImageReference{Kind: v1alpha1.ReferenceKindImage, Name: name, UUID: "img-" + name}, nil
	}
	return nil, &resolver.ResolutionError{
		Project: "demo",
		Image:   name,
		Reason:  "image lookup failed",
		Err:     errors.Wrapf(resolver.ErrNotFound, "%s %q", imageType, name),
	}
}
