package v1alpha1

import (
	"github.com/google/uuid"
)

const (
	// GroupName is the API group for diskforge resources.
	GroupName = "diskforge.cofront.xyz"

	// Version is the API version.
	Version = "v1alpha1"

	// BlueprintKind is the kind string for VMDiskBlueprint resources.
	BlueprintKind = "VMDiskBlueprint"

	// MiBPerGiB converts caller-facing GiB sizes into stored MiB sizes.
	MiBPerGiB = 1024

	// DefaultAllocateSizeGiB is the size used when raw storage is requested
	// without an explicit size.
	DefaultAllocateSizeGiB = 8
)

// NewBlueprint creates a new VMDiskBlueprint with TypeMeta and ObjectMeta defaults.
func NewBlueprint(name string) *VMDiskBlueprint {
	return &VMDiskBlueprint{
		TypeMeta: TypeMeta{
			APIVersion: GroupName + "/" + Version,
			Kind:       BlueprintKind,
		},
		ObjectMeta: ObjectMeta{
			Name: name,
			UID:  uuid.New().String(),
		},
	}
}

// SetDefaultAPIVersion ensures the blueprint has the correct apiVersion and kind.
// Useful when loading from files that might be missing these fields.
func SetDefaultAPIVersion(bp *VMDiskBlueprint) {
	if bp.APIVersion == "" {
		bp.APIVersion = GroupName + "/" + Version
	}
	if bp.Kind == "" {
		bp.Kind = BlueprintKind
	}
}

// RequiresBoot reports whether evaluation must end with a boot device selected.
// Handles nil pointer by requiring boot whenever any intent clones from a source.
func (bp *VMDiskBlueprint) RequiresBoot() bool {
	if bp.Spec.RequireBoot != nil {
		return *bp.Spec.RequireBoot
	}
	for _, d := range bp.Spec.Disks {
		if d.Source != nil {
			return true
		}
	}
	return false
}

// GetPackage returns the declared package with the given name.
func (bp *VMDiskBlueprint) GetPackage(name string) (*PackageSpec, bool) {
	for i := range bp.Spec.Packages {
		if bp.Spec.Packages[i].Name == name {
			return &bp.Spec.Packages[i], true
		}
	}
	return nil, false
}

// GetDeviceType returns the device type with default fallback (DISK).
func (d *DiskIntent) GetDeviceType() DeviceType {
	if d.DeviceType == "" {
		return DeviceDisk
	}
	return d.DeviceType
}

// GetAdapterType returns the adapter type with default fallback:
// SCSI for disks, IDE for CD-ROMs.
func (d *DiskIntent) GetAdapterType() AdapterType {
	if d.AdapterType != "" {
		return d.AdapterType
	}
	if d.GetDeviceType() == DeviceCDROM {
		return AdapterIDE
	}
	return AdapterSCSI
}

// Kind classifies the intent.
func (d *DiskIntent) Kind() IntentKind {
	switch {
	case d.Source != nil && d.Source.Package != "":
		return IntentClonePackage
	case d.Source != nil:
		return IntentCloneImage
	case d.GetDeviceType() == DeviceCDROM:
		return IntentEmptyCDROM
	default:
		return IntentAllocate
	}
}

// Normalize fills defaulted fields in place.
func (d *DiskIntent) Normalize() {
	d.DeviceType = d.GetDeviceType()
	d.AdapterType = d.GetAdapterType()
	if d.Kind() == IntentAllocate && d.SizeGiB == 0 {
		d.SizeGiB = DefaultAllocateSizeGiB
	}
}
