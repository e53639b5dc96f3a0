package disk

import (
	"context"

	"github.com/jbweber/diskforge/api/v1alpha1"
	"github.com/jbweber/diskforge/internal/entity"
	"github.com/jbweber/diskforge/internal/resolver"
)

// DefaultContainerSizeGiB is the size used by the OnContainer shortcuts when
// no size is given.
const DefaultContainerSizeGiB = v1alpha1.DefaultAllocateSizeGiB

// VMDisk attaches a SCSI disk cloned from a catalog image.
func (b *Builder) VMDisk(ctx context.Context, imageName string, bootable bool) (*entity.Entity, error) {
	return b.ScsiDiskFromImage(ctx, imageName, bootable)
}

// ScsiDiskFromImage attaches a SCSI disk cloned from a catalog image.
func (b *Builder) ScsiDiskFromImage(ctx context.Context, imageName string, bootable bool) (*entity.Entity, error) {
	return b.CloneFromImage(ctx, v1alpha1.DeviceDisk, v1alpha1.AdapterSCSI, imageName, bootable)
}

// PciDiskFromImage attaches a PCI disk cloned from a catalog image.
func (b *Builder) PciDiskFromImage(ctx context.Context, imageName string, bootable bool) (*entity.Entity, error) {
	return b.CloneFromImage(ctx, v1alpha1.DeviceDisk, v1alpha1.AdapterPCI, imageName, bootable)
}

// IdeCDROMFromImage attaches an IDE CD-ROM cloned from a catalog ISO.
func (b *Builder) IdeCDROMFromImage(ctx context.Context, imageName string, bootable bool) (*entity.Entity, error) {
	return b.CloneFromImage(ctx, v1alpha1.DeviceCDROM, v1alpha1.AdapterIDE, imageName, bootable)
}

// SataCDROMFromImage attaches a SATA CD-ROM cloned from a catalog ISO.
func (b *Builder) SataCDROMFromImage(ctx context.Context, imageName string, bootable bool) (*entity.Entity, error) {
	return b.CloneFromImage(ctx, v1alpha1.DeviceCDROM, v1alpha1.AdapterSATA, imageName, bootable)
}

// ScsiDiskFromPackage attaches a SCSI disk cloned from a package image.
func (b *Builder) ScsiDiskFromPackage(ctx context.Context, pkg resolver.Package, bootable bool) (*entity.Entity, error) {
	return b.CloneFromPackage(ctx, v1alpha1.DeviceDisk, v1alpha1.AdapterSCSI, pkg, bootable)
}

// PciDiskFromPackage attaches a PCI disk cloned from a package image.
func (b *Builder) PciDiskFromPackage(ctx context.Context, pkg resolver.Package, bootable bool) (*entity.Entity, error) {
	return b.CloneFromPackage(ctx, v1alpha1.DeviceDisk, v1alpha1.AdapterPCI, pkg, bootable)
}

// IdeCDROMFromPackage attaches an IDE CD-ROM cloned from a package ISO.
func (b *Builder) IdeCDROMFromPackage(ctx context.Context, pkg resolver.Package, bootable bool) (*entity.Entity, error) {
	return b.CloneFromPackage(ctx, v1alpha1.DeviceCDROM, v1alpha1.AdapterIDE, pkg, bootable)
}

// SataCDROMFromPackage attaches a SATA CD-ROM cloned from a package ISO.
func (b *Builder) SataCDROMFromPackage(ctx context.Context, pkg resolver.Package, bootable bool) (*entity.Entity, error) {
	return b.CloneFromPackage(ctx, v1alpha1.DeviceCDROM, v1alpha1.AdapterSATA, pkg, bootable)
}

// ScsiDiskOnContainer attaches an empty SCSI disk of sizeGiB GiB.
// A size of 0 selects DefaultContainerSizeGiB.
func (b *Builder) ScsiDiskOnContainer(sizeGiB int) (*entity.Entity, error) {
	return b.AllocateEmpty(v1alpha1.DeviceDisk, v1alpha1.AdapterSCSI, containerSize(sizeGiB))
}

// PciDiskOnContainer attaches an empty PCI disk of sizeGiB GiB.
// A size of 0 selects DefaultContainerSizeGiB.
func (b *Builder) PciDiskOnContainer(sizeGiB int) (*entity.Entity, error) {
	return b.AllocateEmpty(v1alpha1.DeviceDisk, v1alpha1.AdapterPCI, containerSize(sizeGiB))
}

// IdeEmptyCDROM attaches an empty IDE CD-ROM.
func (b *Builder) IdeEmptyCDROM() (*entity.Entity, error) {
	return b.EmptyCDROM(v1alpha1.AdapterIDE)
}

// SataEmptyCDROM attaches an empty SATA CD-ROM.
func (b *Builder) SataEmptyCDROM() (*entity.Entity, error) {
	return b.EmptyCDROM(v1alpha1.AdapterSATA)
}

func containerSize(sizeGiB int) int {
	if sizeGiB == 0 {
		return DefaultContainerSizeGiB
	}
	return sizeGiB
}
