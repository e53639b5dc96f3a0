// Package resolver turns image names and packages into data source references.
//
// Catalog resolution walks active project, image service account and image.
// Package resolution compiles the package and checks that it produces the
// image type the device class expects. Every failure is terminal for the
// current evaluation; nothing is retried.
package resolver

import (
	"context"

	"go.uber.org/zap"

	"github.com/jbweber/diskforge/api/v1alpha1"
)

// Catalog resolves named catalog images for the active project.
type Catalog struct {
	project  string
	projects ProjectLookup
	images   ImageLookup
	logger   *zap.Logger
}

// NewCatalog creates a catalog resolver for project.
func NewCatalog(project string, projects ProjectLookup, images ImageLookup, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{
		project:  project,
		projects: projects,
		images:   images,
		logger:   logger,
	}
}

// Project returns the active project name.
func (c *Catalog) Project() string {
	return c.project
}

// Resolve finds the image named imageName of type imageType in the active
// project's image service account.
func (c *Catalog) Resolve(ctx context.Context, imageName string, imageType v1alpha1.ImageType) (*v1alpha1.ImageReference, error) {
	fail := func(account, reason string, err error) error {
		return &ResolutionError{
			Project:     c.project,
			AccountUUID: account,
			Image:       imageName,
			Reason:      reason,
			Err:         err,
		}
	}

	if imageName == "" {
		return nil, fail("", "image name is empty", nil)
	}
	if c.project == "" {
		return nil, fail("", "no active project configured", nil)
	}

	c.logger.Debug("resolving catalog image",
		zap.String("project", c.project),
		zap.String("image", imageName),
		zap.String("imageType", string(imageType)))

	project, err := c.projects.LookupProject(ctx, c.project)
	if err != nil {
		return nil, fail("", "project lookup failed", err)
	}
	if project == nil {
		return nil, fail("", "project not found", nil)
	}

	account := project.Accounts[AccountKeyImageService]
	if account == "" {
		return nil, fail("", "project has no "+AccountKeyImageService+" account registered", nil)
	}

	image, err := c.images.LookupImage(ctx, imageName, imageType, account)
	if err != nil {
		return nil, fail(account, "image lookup failed", err)
	}
	if image == nil || image.UUID == "" {
		return nil, fail(account, "image has no uuid", nil)
	}

	c.logger.Debug("resolved catalog image",
		zap.String("image", imageName),
		zap.String("uuid", image.UUID))

	return &v1alpha1.ImageReference{
		Kind: v1alpha1.ReferenceKindImage,
		Name: imageName,
		UUID: image.UUID,
	}, nil
}
