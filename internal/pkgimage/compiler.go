// Package pkgimage compiles packages: build artifacts that produce disk or
// ISO images which VM disks can be cloned from.
//
// A package either declares its image type or names a local source file
// whose type is detected from its contents.
package pkgimage

import (
	"context"
	"os"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/jbweber/diskforge/api/v1alpha1"
	"github.com/jbweber/diskforge/internal/resolver"
)

// packageNamespace seeds deterministic package uuids.
var packageNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://diskforge.cofront.xyz/packages"))

// Package is a named image-producing artifact.
type Package struct {
	Name      string
	UUID      string
	ImageType v1alpha1.ImageType
	Source    string
}

// FromSpec creates a package from its blueprint declaration.
func FromSpec(spec v1alpha1.PackageSpec) *Package {
	return &Package{
		Name:      spec.Name,
		UUID:      spec.UUID,
		ImageType: spec.ImageType,
		Source:    spec.Source,
	}
}

// PackageName implements resolver.Package.
func (p *Package) PackageName() string {
	return p.Name
}

// Compiler compiles packages and produces their references.
type Compiler struct {
	logger *zap.Logger
}

// NewCompiler creates a package compiler.
func NewCompiler(logger *zap.Logger) *Compiler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Compiler{logger: logger}
}

// Compile determines the image type pkg produces.
//
// A declared image type wins. When a source file is also given it must exist
// and its detected type must agree with the declaration.
func (c *Compiler) Compile(ctx context.Context, pkg resolver.Package) (*resolver.Descriptor, error) {
	p, err := asPackage(pkg)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	imageType, err := c.imageType(p)
	if err != nil {
		return nil, err
	}

	desc := &resolver.Descriptor{}
	desc.Options.Resources.ImageType = imageType
	return desc, nil
}

func (c *Compiler) imageType(p *Package) (v1alpha1.ImageType, error) {
	if p.ImageType != "" && !p.ImageType.Valid() {
		return "", errors.Wrapf(v1alpha1.ErrUnknownImageType, "package %q: %q", p.Name, p.ImageType)
	}

	if p.Source == "" {
		if p.ImageType == "" {
			return "", errors.Errorf("package %q: imageType or source is required", p.Name)
		}
		return p.ImageType, nil
	}

	format, err := DetectFormat(p.Source)
	if err != nil {
		return "", errors.Wrapf(err, "package %q: source %s", p.Name, p.Source)
	}
	c.logger.Debug("detected package source format",
		zap.String("package", p.Name),
		zap.String("source", p.Source),
		zap.String("format", string(format)))

	detected := format.ImageType()
	if p.ImageType != "" && p.ImageType != detected {
		return "", errors.Errorf("package %q: declared %s but source %s is %s", p.Name, p.ImageType, p.Source, detected)
	}
	return detected, nil
}

// Reference returns the data source reference for pkg. Packages without an
// explicit uuid get one derived from their name.
func (c *Compiler) Reference(_ context.Context, pkg resolver.Package) (*v1alpha1.ImageReference, error) {
	p, err := asPackage(pkg)
	if err != nil {
		return nil, err
	}
	if p.Name == "" {
		return nil, errors.New("package name is required")
	}

	id := p.UUID
	if id == "" {
		id = DeriveUUID(p.Name)
	} else if _, err := uuid.Parse(id); err != nil {
		return nil, errors.Wrapf(err, "package %q: invalid uuid %q", p.Name, id)
	}

	return &v1alpha1.ImageReference{
		Kind: v1alpha1.ReferenceKindPackage,
		Name: p.Name,
		UUID: id,
	}, nil
}

// DeriveUUID returns the deterministic uuid for a package name.
func DeriveUUID(name string) string {
	return uuid.NewSHA1(packageNamespace, []byte(name)).String()
}

// Inspect reports the format and size of a package source file.
func Inspect(path string) (Format, int64, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return "", 0, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", 0, errors.Wrap(err, "failed to stat file")
	}
	return format, info.Size(), nil
}

func asPackage(pkg resolver.Package) (*Package, error) {
	p, ok := pkg.(*Package)
	if !ok {
		return nil, errors.Wrapf(ErrUnsupportedPackage, "%T", pkg)
	}
	if p == nil {
		return nil, errors.WithStack(resolver.ErrMissingPackage)
	}
	return p, nil
}
