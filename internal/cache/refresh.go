package cache

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/digitalocean/go-libvirt"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"libvirt.org/go/libvirtxml"

	"github.com/jbweber/diskforge/api/v1alpha1"
	"github.com/jbweber/diskforge/internal/resolver"
)

// projectNamespace seeds deterministic project uuids.
var projectNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://diskforge.cofront.xyz/projects"))

// libvirtClient defines the libvirt operations needed to refresh the cache.
//
// In production, this is satisfied by *libvirt.Libvirt directly.
// In tests, this is satisfied by mock implementations.
type libvirtClient interface {
	StoragePoolLookupByName(Name string) (libvirt.StoragePool, error)
	StoragePoolRefresh(Pool libvirt.StoragePool, Flags uint32) error
	StoragePoolListAllVolumes(Pool libvirt.StoragePool, NeedResults int32, Flags uint32) ([]libvirt.StorageVol, uint32, error)
	StorageVolGetXMLDesc(Vol libvirt.StorageVol, Flags uint32) (string, error)
}

// RefreshResult summarizes a refresh.
type RefreshResult struct {
	Project     string
	AccountUUID string
	Images      int
}

// Refresh rebuilds the cache entries of project from the libvirt storage
// pool poolName and saves the cache.
//
// The pool uuid becomes the project's image service account uuid. Every
// volume becomes an image named after the volume without its extension;
// volumes whose target format is iso, or whose name ends in .iso, are
// ISO_IMAGE and all others DISK_IMAGE.
func (c *Cache) Refresh(ctx context.Context, client libvirtClient, project, poolName string) (*RefreshResult, error) {
	if project == "" {
		return nil, errors.New("project name is required")
	}

	c.logger.Info("refreshing cache", zap.String("project", project), zap.String("pool", poolName))

	pool, err := client.StoragePoolLookupByName(poolName)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to lookup pool %s", poolName)
	}

	if err := client.StoragePoolRefresh(pool, 0); err != nil {
		return nil, errors.Wrapf(err, "failed to refresh pool %s", poolName)
	}

	volumes, _, err := client.StoragePoolListAllVolumes(pool, 1, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list volumes in pool %s", poolName)
	}

	account := uuid.UUID(pool.UUID)
	images := make([]resolver.Image, 0, len(volumes))
	for _, vol := range volumes {
		if err := ctx.Err(); err != nil {
			return nil, errors.WithStack(err)
		}

		imageType, err := volumeImageType(client, vol)
		if err != nil {
			return nil, err
		}

		name := strings.TrimSuffix(vol.Name, filepath.Ext(vol.Name))
		images = append(images, resolver.Image{
			Name:      name,
			UUID:      uuid.NewSHA1(account, []byte(vol.Name)).String(),
			ImageType: imageType,
		})
		c.logger.Debug("cached image",
			zap.String("image", name),
			zap.String("volume", vol.Name),
			zap.String("imageType", string(imageType)))
	}

	existing, err := c.LookupProject(ctx, project)
	p := resolver.Project{
		Name:     project,
		UUID:     uuid.NewSHA1(projectNamespace, []byte(project)).String(),
		Accounts: map[string]string{},
	}
	if err == nil {
		p = *existing
	}
	p.Accounts[resolver.AccountKeyImageService] = account.String()

	c.PutProject(p)
	c.ReplaceImages(account.String(), images)

	if err := c.Save(); err != nil {
		return nil, err
	}

	c.logger.Info("cache refreshed",
		zap.String("project", project),
		zap.String("account", account.String()),
		zap.Int("images", len(images)))

	return &RefreshResult{Project: project, AccountUUID: account.String(), Images: len(images)}, nil
}

func volumeImageType(client libvirtClient, vol libvirt.StorageVol) (v1alpha1.ImageType, error) {
	xmlDesc, err := client.StorageVolGetXMLDesc(vol, 0)
	if err != nil {
		return "", errors.Wrapf(err, "failed to get XML for volume %s", vol.Name)
	}

	var volDef libvirtxml.StorageVolume
	if err := volDef.Unmarshal(xmlDesc); err != nil {
		return "", errors.Wrapf(err, "failed to parse XML for volume %s", vol.Name)
	}

	if volDef.Target != nil && volDef.Target.Format != nil && volDef.Target.Format.Type == "iso" {
		return v1alpha1.ImageTypeISO, nil
	}
	if strings.EqualFold(filepath.Ext(vol.Name), ".iso") {
		return v1alpha1.ImageTypeISO, nil
	}
	return v1alpha1.ImageTypeDisk, nil
}
