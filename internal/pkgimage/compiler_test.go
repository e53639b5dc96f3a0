package pkgimage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbweber/diskforge/api/v1alpha1"
	"github.com/jbweber/diskforge/internal/resolver"
)

type foreignPackage struct{}

func (foreignPackage) PackageName() string { return "foreign" }

func TestCompiler_Compile(t *testing.T) {
	dir := t.TempDir()
	isoPath := filepath.Join(dir, "tools.iso")
	writeISO(t, isoPath)
	qcowPath := filepath.Join(dir, "web.qcow2")
	writeQCOW2(t, qcowPath)

	tests := []struct {
		name     string
		pkg      *Package
		wantType v1alpha1.ImageType
		wantErr  string
	}{
		{
			name:     "declared disk image",
			pkg:      &Package{Name: "web", ImageType: v1alpha1.ImageTypeDisk},
			wantType: v1alpha1.ImageTypeDisk,
		},
		{
			name:     "detected iso",
			pkg:      &Package{Name: "tools", Source: isoPath},
			wantType: v1alpha1.ImageTypeISO,
		},
		{
			name:     "detected qcow2",
			pkg:      &Package{Name: "web", Source: qcowPath},
			wantType: v1alpha1.ImageTypeDisk,
		},
		{
			name:     "declaration agrees with source",
			pkg:      &Package{Name: "tools", Source: isoPath, ImageType: v1alpha1.ImageTypeISO},
			wantType: v1alpha1.ImageTypeISO,
		},
		{
			name:    "declaration disagrees with source",
			pkg:     &Package{Name: "tools", Source: isoPath, ImageType: v1alpha1.ImageTypeDisk},
			wantErr: "declared DISK_IMAGE",
		},
		{
			name:    "neither type nor source",
			pkg:     &Package{Name: "empty"},
			wantErr: "imageType or source is required",
		},
		{
			name:    "invalid declared type",
			pkg:     &Package{Name: "bad", ImageType: "TAPE_IMAGE"},
			wantErr: "unknown image type",
		},
		{
			name:    "missing source file",
			pkg:     &Package{Name: "gone", Source: filepath.Join(dir, "gone.img")},
			wantErr: "failed to open file",
		},
	}

	c := NewCompiler(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc, err := c.Compile(context.Background(), tt.pkg)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, desc.Options.Resources.ImageType)
		})
	}
}

func TestCompiler_UnsupportedPackage(t *testing.T) {
	c := NewCompiler(nil)

	_, err := c.Compile(context.Background(), foreignPackage{})
	assert.True(t, errors.Is(err, ErrUnsupportedPackage))

	_, err = c.Reference(context.Background(), foreignPackage{})
	assert.True(t, errors.Is(err, ErrUnsupportedPackage))

	var nilPkg *Package
	_, err = c.Compile(context.Background(), nilPkg)
	assert.True(t, errors.Is(err, resolver.ErrMissingPackage))
}

func TestCompiler_CompileCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewCompiler(nil).Compile(ctx, &Package{Name: "web", ImageType: v1alpha1.ImageTypeDisk})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestCompiler_Reference(t *testing.T) {
	c := NewCompiler(nil)
	explicit := uuid.New().String()

	ref, err := c.Reference(context.Background(), &Package{Name: "web", UUID: explicit})
	require.NoError(t, err)
	assert.Equal(t, &v1alpha1.ImageReference{Kind: v1alpha1.ReferenceKindPackage, Name: "web", UUID: explicit}, ref)

	derived, err := c.Reference(context.Background(), &Package{Name: "web"})
	require.NoError(t, err)
	assert.Equal(t, DeriveUUID("web"), derived.UUID)
	assert.NotEqual(t, DeriveUUID("api"), derived.UUID)

	_, err = c.Reference(context.Background(), &Package{Name: "web", UUID: "not-a-uuid"})
	assert.Error(t, err)

	_, err = c.Reference(context.Background(), &Package{})
	assert.Error(t, err)
}

func TestCompiler_WithPackageResolver(t *testing.T) {
	r := resolver.NewPackageResolver(NewCompiler(nil), nil)

	_, err := r.Resolve(context.Background(), &Package{Name: "tools", ImageType: v1alpha1.ImageTypeISO}, v1alpha1.DeviceDisk)
	assert.True(t, errors.Is(err, resolver.ErrImageTypeMismatch))

	ref, err := r.Resolve(context.Background(), &Package{Name: "tools", ImageType: v1alpha1.ImageTypeISO}, v1alpha1.DeviceCDROM)
	require.NoError(t, err)
	assert.Equal(t, "tools", ref.Name)
}

func TestFromSpecAndInspect(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disk.raw")
	writeRaw(t, path)

	pkg := FromSpec(v1alpha1.PackageSpec{Name: "disk", Source: path})
	assert.Equal(t, "disk", pkg.PackageName())
	assert.Equal(t, path, pkg.Source)

	format, size, err := Inspect(path)
	require.NoError(t, err)
	assert.Equal(t, FormatRaw, format)
	assert.Equal(t, int64(4096), size)
}
