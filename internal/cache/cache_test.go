package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbweber/diskforge/api/v1alpha1"
	"github.com/jbweber/diskforge/internal/resolver"
)

const sampleCache = `projects:
  - name: demo
    uuid: 11111111-1111-1111-1111-111111111111
    accounts:
      image_service: acct-1
images:
  - name: centos7
    uuid: img-1
    imageType: DISK_IMAGE
    accountUUID: acct-1
  - name: centos7
    uuid: img-2
    imageType: ISO_IMAGE
    accountUUID: acct-1
  - name: centos7
    uuid: img-3
    imageType: DISK_IMAGE
    accountUUID: acct-2
`

func loadSample(t *testing.T) *Cache {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte(sampleCache), 0644))
	c, err := Load(path, nil)
	require.NoError(t, err)
	return c
}

func TestLoad_MissingFile(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.NoError(t, err)
	assert.Empty(t, c.Projects())
	assert.Empty(t, c.Images())
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte("projects: [unclosed"), 0644))

	_, err := Load(path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse cache file")
}

func TestCache_LookupProject(t *testing.T) {
	c := loadSample(t)

	p, err := c.LookupProject(context.Background(), "demo")
	require.NoError(t, err)
	assert.Equal(t, "acct-1", p.Accounts[resolver.AccountKeyImageService])

	// Returned project is a copy.
	p.Accounts[resolver.AccountKeyImageService] = "changed"
	again, err := c.LookupProject(context.Background(), "demo")
	require.NoError(t, err)
	assert.Equal(t, "acct-1", again.Accounts[resolver.AccountKeyImageService])

	_, err = c.LookupProject(context.Background(), "other")
	assert.True(t, errors.Is(err, resolver.ErrNotFound))
}

func TestCache_LookupImage(t *testing.T) {
	c := loadSample(t)

	tests := []struct {
		name      string
		imageType v1alpha1.ImageType
		account   string
		wantUUID  string
	}{
		{name: "disk image", imageType: v1alpha1.ImageTypeDisk, account: "acct-1", wantUUID: "img-1"},
		{name: "iso image same name", imageType: v1alpha1.ImageTypeISO, account: "acct-1", wantUUID: "img-2"},
		{name: "other account", imageType: v1alpha1.ImageTypeDisk, account: "acct-2", wantUUID: "img-3"},
		{name: "unknown account", imageType: v1alpha1.ImageTypeDisk, account: "acct-3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := c.LookupImage(context.Background(), "centos7", tt.imageType, tt.account)
			if tt.wantUUID == "" {
				assert.True(t, errors.Is(err, resolver.ErrNotFound))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantUUID, img.UUID)
		})
	}
}

func TestCache_SaveRoundTrip(t *testing.T) {
	c := loadSample(t)
	c.PutProject(resolver.Project{Name: "alpha", UUID: "p-a", Accounts: map[string]string{"image_service": "acct-9"}})
	c.ReplaceImages("acct-1", []resolver.Image{{Name: "fedora", UUID: "img-9", ImageType: v1alpha1.ImageTypeDisk}})
	require.NoError(t, c.Save())

	reloaded, err := Load(c.Path(), nil)
	require.NoError(t, err)

	projects := reloaded.Projects()
	require.Len(t, projects, 2)
	assert.Equal(t, "alpha", projects[0].Name)
	assert.Equal(t, "demo", projects[1].Name)

	images := reloaded.Images()
	require.Len(t, images, 2)
	assert.Equal(t, resolver.Image{Name: "fedora", UUID: "img-9", ImageType: v1alpha1.ImageTypeDisk, AccountUUID: "acct-1"}, images[0])
	assert.Equal(t, "acct-2", images[1].AccountUUID)
}

func TestCache_SaveCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", DefaultFileName)
	c, err := Load(path, nil)
	require.NoError(t, err)

	require.NoError(t, c.Save())
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestCache_ImplementsResolverLookups(t *testing.T) {
	c := loadSample(t)
	catalog := resolver.NewCatalog("demo", c, c, nil)

	ref, err := catalog.Resolve(context.Background(), "centos7", v1alpha1.ImageTypeDisk)
	require.NoError(t, err)
	assert.Equal(t, "img-1", ref.UUID)

	_, err = catalog.Resolve(context.Background(), "fedora", v1alpha1.ImageTypeDisk)
	assert.True(t, errors.Is(err, resolver.ErrResolutionFailure))
	assert.True(t, errors.Is(err, resolver.ErrNotFound))
}
