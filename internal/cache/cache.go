// Package cache stores the project and image lookups used by catalog
// resolution in a local YAML file.
//
// The cache implements resolver.ProjectLookup and resolver.ImageLookup.
// It is refreshed from a libvirt storage pool with Refresh; between
// refreshes it is read-only as far as resolution is concerned.
package cache

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/jbweber/diskforge/api/v1alpha1"
	"github.com/jbweber/diskforge/internal/resolver"
)

// DefaultFileName is the cache file name inside the diskforge home directory.
const DefaultFileName = "cache.yaml"

// File is the on-disk cache layout.
type File struct {
	Projects []resolver.Project `yaml:"projects"`
	Images   []resolver.Image   `yaml:"images"`
}

// Cache is a YAML-backed lookup cache.
// It is safe for concurrent use.
type Cache struct {
	path   string
	logger *zap.Logger

	mu   sync.RWMutex
	data File
}

// Load reads the cache at path. A missing file yields an empty cache.
func Load(path string, logger *zap.Logger) (*Cache, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Cache{path: path, logger: logger}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug("cache file not found, starting empty", zap.String("path", path))
			return c, nil
		}
		return nil, errors.Wrap(err, "failed to read cache file")
	}

	if err := yaml.Unmarshal(raw, &c.data); err != nil {
		return nil, errors.Wrapf(err, "failed to parse cache file %s", path)
	}
	return c, nil
}

// Path returns the file the cache is stored in.
func (c *Cache) Path() string {
	return c.path
}

// Save writes the cache to its file, creating parent directories.
func (c *Cache) Save() error {
	c.mu.RLock()
	raw, err := yaml.Marshal(c.data)
	c.mu.RUnlock()
	if err != nil {
		return errors.Wrap(err, "failed to encode cache")
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return errors.Wrap(err, "failed to create cache directory")
	}
	if err := os.WriteFile(c.path, raw, 0o644); err != nil {
		return errors.Wrap(err, "failed to write cache file")
	}
	return nil
}

// LookupProject implements resolver.ProjectLookup.
func (c *Cache) LookupProject(_ context.Context, name string) (*resolver.Project, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := lo.Find(c.data.Projects, func(p resolver.Project) bool { return p.Name == name })
	if !ok {
		return nil, errors.Wrapf(resolver.ErrNotFound, "project %q", name)
	}
	p.Accounts = lo.Assign(p.Accounts)
	return &p, nil
}

// LookupImage implements resolver.ImageLookup.
func (c *Cache) LookupImage(_ context.Context, name string, imageType v1alpha1.ImageType, accountUUID string) (*resolver.Image, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	img, ok := lo.Find(c.data.Images, func(img resolver.Image) bool {
		return img.Name == name && img.ImageType == imageType && img.AccountUUID == accountUUID
	})
	if !ok {
		return nil, errors.Wrapf(resolver.ErrNotFound, "%s %q in account %s", imageType, name, accountUUID)
	}
	return &img, nil
}

// Projects returns the cached projects sorted by name.
func (c *Cache) Projects() []resolver.Project {
	c.mu.RLock()
	out := append([]resolver.Project(nil), c.data.Projects...)
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Images returns the cached images sorted by account and name.
func (c *Cache) Images() []resolver.Image {
	c.mu.RLock()
	out := append([]resolver.Image(nil), c.data.Images...)
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].AccountUUID != out[j].AccountUUID {
			return out[i].AccountUUID < out[j].AccountUUID
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// PutProject adds or replaces a project by name.
func (c *Cache) PutProject(p resolver.Project) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, index, ok := lo.FindIndexOf(c.data.Projects, func(existing resolver.Project) bool { return existing.Name == p.Name })
	if ok {
		c.data.Projects[index] = p
		return
	}
	c.data.Projects = append(c.data.Projects, p)
}

// ReplaceImages replaces every image of accountUUID with images.
func (c *Cache) ReplaceImages(accountUUID string, images []resolver.Image) {
	c.mu.Lock()
	defer c.mu.Unlock()

	kept := lo.Reject(c.data.Images, func(img resolver.Image, _ int) bool { return img.AccountUUID == accountUUID })
	for _, img := range images {
		img.AccountUUID = accountUUID
		kept = append(kept, img)
	}
	c.data.Images = kept
}
