package vm

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/jbweber/diskforge/api/v1alpha1"
	"github.com/jbweber/diskforge/internal/disk"
	"github.com/jbweber/diskforge/internal/libvirt"
	"github.com/jbweber/diskforge/internal/loader"
	"github.com/jbweber/diskforge/internal/pkgimage"
)

// EvaluateFile loads a blueprint file and evaluates it.
func EvaluateFile(ctx context.Context, path string, opts disk.Options) (*v1alpha1.VMDiskConfiguration, error) {
	bp, err := loader.LoadFromFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load blueprint")
	}

	return Evaluate(ctx, bp, opts)
}

// Evaluate builds the disk configuration described by bp.
//
// This orchestrates one VM definition:
//  1. Start a fresh builder session
//  2. Evaluate each disk intent in order
//  3. Finalize: look up the boot device when one is required
//  4. Decode the built entities into their wire form
//
// Each call owns its session, so evaluations never share indices.
func Evaluate(ctx context.Context, bp *v1alpha1.VMDiskBlueprint, opts disk.Options) (*v1alpha1.VMDiskConfiguration, error) {
	if bp == nil {
		return nil, errors.Wrap(ErrNilInput, "blueprint")
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("vm", bp.Name))

	b, err := disk.NewBuilder(opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create disk builder")
	}

	packages := make(map[string]*pkgimage.Package, len(bp.Spec.Packages))
	for _, spec := range bp.Spec.Packages {
		packages[spec.Name] = pkgimage.FromSpec(spec)
	}

	logger.Info("evaluating blueprint", zap.Int("disks", len(bp.Spec.Disks)))

	for i := range bp.Spec.Disks {
		if err := ctx.Err(); err != nil {
			return nil, errors.WithStack(err)
		}

		intent := bp.Spec.Disks[i]
		intent.Normalize()

		if err := evaluateIntent(ctx, b, &intent, packages); err != nil {
			return nil, errors.Wrapf(err, "disks[%d]", i)
		}
	}

	result := v1alpha1.NewConfiguration(bp.Name)

	switch {
	case b.HasBootDevice():
		boot, err := b.BootConfig()
		if err != nil {
			return nil, errors.Wrap(err, "failed to build boot configuration")
		}
		result.BootConfig = boot
	case bp.RequiresBoot():
		return nil, errors.Wrap(ErrNoBootDeviceSelected, "blueprint requires a bootable disk")
	}

	disks, err := b.Configs()
	if err != nil {
		return nil, err
	}
	result.Disks = disks

	logger.Info("blueprint evaluated",
		zap.Int("disks", len(disks)),
		zap.Bool("boot", result.BootConfig != nil))

	return result, nil
}

// evaluateIntent attaches the device described by one normalized intent.
func evaluateIntent(ctx context.Context, b *disk.Builder, intent *v1alpha1.DiskIntent, packages map[string]*pkgimage.Package) error {
	switch intent.Kind() {
	case v1alpha1.IntentAllocate:
		if intent.Bootable {
			return errors.New("bootable requires a source")
		}
		_, err := b.AllocateEmpty(intent.DeviceType, intent.AdapterType, intent.SizeGiB)
		return err

	case v1alpha1.IntentEmptyCDROM:
		if intent.Bootable {
			return errors.New("bootable requires a source")
		}
		_, err := b.EmptyCDROM(intent.AdapterType)
		return err

	case v1alpha1.IntentCloneImage:
		_, err := b.CloneFromImage(ctx, intent.DeviceType, intent.AdapterType, intent.Source.Image, intent.Bootable)
		return err

	case v1alpha1.IntentClonePackage:
		pkg, ok := packages[intent.Source.Package]
		if !ok {
			return errors.Wrapf(ErrMissingPackage, "package %q is not declared", intent.Source.Package)
		}
		_, err := b.CloneFromPackage(ctx, intent.DeviceType, intent.AdapterType, pkg, intent.Bootable)
		return err
	}

	return errors.Errorf("unsupported intent kind %q", intent.Kind())
}

// DomainXML renders an evaluated configuration as libvirt disk devices in
// the storage pool pool.
func DomainXML(cfg *v1alpha1.VMDiskConfiguration, pool string) (string, error) {
	if cfg == nil {
		return "", errors.Wrap(ErrNilInput, "configuration")
	}
	return libvirt.GenerateDomainXML(&libvirt.DiskSet{
		Name:  cfg.Name,
		Pool:  pool,
		Disks: cfg.Disks,
		Boot:  cfg.BootAddress(),
	})
}
