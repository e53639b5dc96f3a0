package resolver

import (
	"context"

	"github.com/jbweber/diskforge/api/v1alpha1"
)

// AccountKeyImageService is the account key under which a project registers
// the infrastructure account that owns its images.
const AccountKeyImageService = "image_service"

// Project is a project as seen by the lookup cache.
type Project struct {
	Name string `json:"name" yaml:"name"`
	UUID string `json:"uuid" yaml:"uuid"`

	// Accounts maps an account key to the account uuid.
	Accounts map[string]string `json:"accounts" yaml:"accounts"`
}

// Image is a catalog image as seen by the lookup cache.
type Image struct {
	Name        string             `json:"name" yaml:"name"`
	UUID        string             `json:"uuid" yaml:"uuid"`
	ImageType   v1alpha1.ImageType `json:"imageType" yaml:"imageType"`
	AccountUUID string             `json:"accountUUID" yaml:"accountUUID"`
}

// ProjectLookup finds projects by name.
//
// In production, this is satisfied by *cache.Cache.
// In tests, this is satisfied by mock implementations.
type ProjectLookup interface {
	// LookupProject returns the named project or an error wrapping ErrNotFound.
	LookupProject(ctx context.Context, name string) (*Project, error)
}

// ImageLookup finds catalog images scoped to an account and image type.
type ImageLookup interface {
	// LookupImage returns the matching image or an error wrapping ErrNotFound.
	LookupImage(ctx context.Context, name string, imageType v1alpha1.ImageType, accountUUID string) (*Image, error)
}

// Package is an opaque handle to a build artifact that produces an image.
type Package interface {
	PackageName() string
}

// Descriptor is the compiled form of a package.
type Descriptor struct {
	Options DescriptorOptions `json:"options" yaml:"options"`
}

// DescriptorOptions holds the compiled package options.
type DescriptorOptions struct {
	Resources DescriptorResources `json:"resources" yaml:"resources"`
}

// DescriptorResources holds the resources a package produces.
type DescriptorResources struct {
	ImageType v1alpha1.ImageType `json:"image_type" yaml:"image_type"`
}

// PackageCompiler compiles packages into descriptors.
//
// In production, this is satisfied by *pkgimage.Compiler.
type PackageCompiler interface {
	Compile(ctx context.Context, pkg Package) (*Descriptor, error)
}

// PackageReferencer produces the data source reference for a package.
type PackageReferencer interface {
	Reference(ctx context.Context, pkg Package) (*v1alpha1.ImageReference, error)
}

// PackageBackend is the full package collaborator used by PackageResolver.
type PackageBackend interface {
	PackageCompiler
	PackageReferencer
}
