// Package disk builds VM disk and CD-ROM configurations.
//
// A Builder is one session: it owns the adapter index allocator and the boot
// selector for the VM definition being built. Every primitive validates its
// inputs and resolves its image before touching the allocator, so a call that
// fails on input or resolution leaves the session unchanged. A call that fails
// entity validation after allocation still consumes the index.
//
// Builders are safe for concurrent use, but concurrent callers sharing one
// session interleave their indices. Use one Builder per VM definition, or
// call Reset between definitions.
package disk

import (
	"context"
	"sync"

	"github.com/c2h5oh/datasize"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/jbweber/diskforge/api/v1alpha1"
	"github.com/jbweber/diskforge/internal/allocator"
	"github.com/jbweber/diskforge/internal/boot"
	"github.com/jbweber/diskforge/internal/entity"
	"github.com/jbweber/diskforge/internal/resolver"
	"github.com/jbweber/diskforge/internal/schema"
)

// ImageResolver resolves catalog images.
//
// In production, this is satisfied by *resolver.Catalog.
type ImageResolver interface {
	Resolve(ctx context.Context, imageName string, imageType v1alpha1.ImageType) (*v1alpha1.ImageReference, error)
}

// PackageResolver resolves package-produced images.
//
// In production, this is satisfied by *resolver.PackageResolver.
type PackageResolver interface {
	Resolve(ctx context.Context, pkg resolver.Package, deviceType v1alpha1.DeviceType) (*v1alpha1.ImageReference, error)
}

// Options configures a Builder. Every field is optional.
type Options struct {
	// Images resolves catalog images for CloneFromImage.
	Images ImageResolver

	// Packages resolves package images for CloneFromPackage.
	Packages PackageResolver

	// Factory constructs the disk entities. Defaults to a factory over
	// schema.Default().
	Factory *entity.Factory

	// Logger receives progress messages. Defaults to a no-op logger.
	Logger *zap.Logger
}

// Builder is a disk configuration session.
type Builder struct {
	images   ImageResolver
	packages PackageResolver
	factory  *entity.Factory
	logger   *zap.Logger

	alloc *allocator.Allocator
	boot  *boot.Selector

	mu    sync.Mutex
	disks []*entity.Entity
}

// NewBuilder creates a session with fresh allocator and boot state.
func NewBuilder(opts Options) (*Builder, error) {
	factory := opts.Factory
	if factory == nil {
		factory = entity.NewFactory(schema.Default())
	}
	if err := DeclareTypes(factory); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Builder{
		images:   opts.Images,
		packages: opts.Packages,
		factory:  factory,
		logger:   logger,
		alloc:    allocator.New(),
		boot:     boot.New(),
	}, nil
}

// AllocateEmpty attaches raw storage of sizeGiB GiB with no data source.
//
// Disks need a positive size. CD-ROMs hold no raw storage, so sizeGiB must
// be 0 for them and the result is the same as EmptyCDROM.
func (b *Builder) AllocateEmpty(deviceType v1alpha1.DeviceType, adapterType v1alpha1.AdapterType, sizeGiB int) (*entity.Entity, error) {
	if err := checkDevice(deviceType, adapterType); err != nil {
		return nil, err
	}

	switch {
	case deviceType == v1alpha1.DeviceDisk && sizeGiB <= 0:
		return nil, errors.Wrapf(ErrInvalidSize, "disk size must be > 0 GiB, got %d", sizeGiB)
	case sizeGiB > v1alpha1.MaxDiskSizeGiB:
		return nil, errors.Wrapf(ErrInvalidSize, "disk size must be <= %d GiB, got %d", v1alpha1.MaxDiskSizeGiB, sizeGiB)
	case deviceType == v1alpha1.DeviceCDROM && sizeGiB != 0:
		return nil, errors.Wrapf(ErrInvalidSize, "empty CD-ROM cannot have a size, got %d GiB", sizeGiB)
	}

	return b.attach(deviceType, adapterType, GiBToMiB(sizeGiB), nil, false)
}

// EmptyCDROM attaches a CD-ROM with no media.
func (b *Builder) EmptyCDROM(adapterType v1alpha1.AdapterType) (*entity.Entity, error) {
	return b.AllocateEmpty(v1alpha1.DeviceCDROM, adapterType, 0)
}

// AllocateFromSource attaches a device cloned from ref. The size is inherited
// from the source, so disk_size_mib is always 0. When bootable is set, the
// address just allocated becomes the boot device.
func (b *Builder) AllocateFromSource(deviceType v1alpha1.DeviceType, adapterType v1alpha1.AdapterType, ref *v1alpha1.ImageReference, bootable bool) (*entity.Entity, error) {
	if err := checkDevice(deviceType, adapterType); err != nil {
		return nil, err
	}
	if ref.IsEmpty() {
		return nil, errors.WithStack(ErrMissingImageData)
	}

	return b.attach(deviceType, adapterType, 0, ref.DeepCopy(), bootable)
}

// CloneFromImage resolves the catalog image imageName, of the image type the
// device class expects, and attaches a device cloned from it.
func (b *Builder) CloneFromImage(ctx context.Context, deviceType v1alpha1.DeviceType, adapterType v1alpha1.AdapterType, imageName string, bootable bool) (*entity.Entity, error) {
	if err := checkDevice(deviceType, adapterType); err != nil {
		return nil, err
	}
	if b.images == nil {
		return nil, errors.Wrap(ErrNoResolver, "catalog image resolution")
	}

	imageType, err := deviceType.ExpectedImageType()
	if err != nil {
		return nil, err
	}

	ref, err := b.images.Resolve(ctx, imageName, imageType)
	if err != nil {
		return nil, err
	}

	return b.AllocateFromSource(deviceType, adapterType, ref, bootable)
}

// CloneFromPackage resolves the image produced by pkg and attaches a device
// cloned from it. The package must produce the image type the device class
// expects.
func (b *Builder) CloneFromPackage(ctx context.Context, deviceType v1alpha1.DeviceType, adapterType v1alpha1.AdapterType, pkg resolver.Package, bootable bool) (*entity.Entity, error) {
	if err := checkDevice(deviceType, adapterType); err != nil {
		return nil, err
	}
	if b.packages == nil {
		return nil, errors.Wrap(ErrNoResolver, "package image resolution")
	}

	ref, err := b.packages.Resolve(ctx, pkg, deviceType)
	if err != nil {
		return nil, err
	}

	return b.AllocateFromSource(deviceType, adapterType, ref, bootable)
}

// BootDevice returns the address of the selected boot device.
func (b *Builder) BootDevice() (v1alpha1.DiskAddress, error) {
	return b.boot.Current()
}

// BootConfig returns the validated boot configuration.
func (b *Builder) BootConfig() (*v1alpha1.BootConfiguration, error) {
	cfg, err := b.boot.Config()
	if err != nil {
		return nil, err
	}

	e, err := b.factory.MakeType("", BootConfigType.OpenAPIType, map[string]any{
		"boot_device": cfg.BootDevice,
	})
	if err != nil {
		return nil, err
	}

	var out v1alpha1.BootConfiguration
	if err := e.Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// HasBootDevice reports whether a boot device has been selected.
func (b *Builder) HasBootDevice() bool {
	return b.boot.Selected()
}

// Disks returns the devices attached so far, in attachment order.
func (b *Builder) Disks() []*entity.Entity {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*entity.Entity(nil), b.disks...)
}

// Configs decodes the attached devices into their typed wire form.
func (b *Builder) Configs() ([]v1alpha1.DiskConfiguration, error) {
	disks := b.Disks()
	out := make([]v1alpha1.DiskConfiguration, 0, len(disks))
	for i, e := range disks {
		cfg, err := Decode(e)
		if err != nil {
			return nil, errors.Wrapf(err, "disks[%d]", i)
		}
		out = append(out, cfg)
	}
	return out, nil
}

// Allocations returns the next free index of every adapter family.
func (b *Builder) Allocations() map[v1alpha1.AdapterType]int {
	return b.alloc.Snapshot()
}

// Reset starts a new VM definition: indices go back to 0, the boot selection
// is cleared and the attached devices are dropped.
func (b *Builder) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.alloc.Reset()
	b.boot.Reset()
	b.disks = nil
	b.logger.Debug("disk session reset")
}

// attach allocates the next index on adapterType, constructs the disk
// entity, records it and, if bootable, selects it for boot.
func (b *Builder) attach(deviceType v1alpha1.DeviceType, adapterType v1alpha1.AdapterType, sizeMiB int, ref *v1alpha1.ImageReference, bootable bool) (*entity.Entity, error) {
	cfg := v1alpha1.DiskConfiguration{
		DeviceProperties: v1alpha1.DeviceProperties{
			DeviceType:  deviceType,
			DiskAddress: v1alpha1.DiskAddress{AdapterType: adapterType},
		},
		DiskSizeMiB:         sizeMiB,
		DataSourceReference: ref,
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(ErrSchemaMismatch, "%s on %s: %v", deviceType, adapterType, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	address, err := b.alloc.Address(adapterType)
	if err != nil {
		return nil, err
	}
	cfg.DeviceProperties.DiskAddress = address

	fields := map[string]any{
		"device_properties": cfg.DeviceProperties,
		"disk_size_mib":     cfg.DiskSizeMiB,
	}
	if ref != nil {
		fields["data_source_reference"] = ref
	}

	e, err := b.factory.MakeType("", DiskType.OpenAPIType, fields)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", deviceType, address)
	}

	if bootable {
		b.boot.Select(address)
	}
	b.disks = append(b.disks, e)

	logFields := []zap.Field{
		zap.String("deviceType", string(deviceType)),
		zap.Stringer("address", address),
		zap.Int("sizeMiB", sizeMiB),
		zap.Bool("bootable", bootable),
	}
	if ref != nil {
		logFields = append(logFields,
			zap.String("sourceKind", string(ref.Kind)),
			zap.String("source", ref.Name))
	}
	b.logger.Info("attached device", logFields...)

	return e, nil
}

// Decode converts a disk entity into its typed wire form.
func Decode(e *entity.Entity) (v1alpha1.DiskConfiguration, error) {
	var cfg v1alpha1.DiskConfiguration
	if e.OpenAPIType() != DiskType.OpenAPIType {
		return cfg, errors.Errorf("entity %s is not a disk", e)
	}
	if err := e.Decode(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// GiBToMiB converts a caller-facing size in GiB to the stored size in MiB.
// Sizes outside (0, MaxDiskSizeGiB] convert to 0.
func GiBToMiB(sizeGiB int) int {
	if sizeGiB <= 0 || sizeGiB > v1alpha1.MaxDiskSizeGiB {
		return 0
	}
	return int((datasize.ByteSize(sizeGiB) * datasize.GB).MBytes())
}

func checkDevice(deviceType v1alpha1.DeviceType, adapterType v1alpha1.AdapterType) error {
	if !deviceType.Valid() {
		return errors.Wrapf(ErrUnknownDeviceType, "%q", deviceType)
	}
	if !adapterType.Valid() {
		return errors.Wrapf(ErrUnknownAdapter, "%q", adapterType)
	}
	return nil
}
