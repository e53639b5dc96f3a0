package v1alpha1

// VMDiskBlueprint declares the disks and CD-ROMs of one VM definition.
//
// Disks are evaluated in order: each intent allocates the next free index on
// its adapter family, so the order of spec.disks determines device addresses.
//
// +kubebuilder:object:root=true
// +kubebuilder:resource:shortName=bp
type VMDiskBlueprint struct {
	// TypeMeta contains the API version and kind.
	TypeMeta `json:",inline" yaml:",inline"`

	// ObjectMeta contains metadata like name, labels, annotations.
	// +optional
	ObjectMeta `json:"metadata,omitempty" yaml:"metadata,omitempty"`

	// Spec defines the disk intents of the VM.
	Spec BlueprintSpec `json:"spec" yaml:"spec"`
}

// BlueprintSpec defines the desired disk layout of a VM.
//
// +k8s:deepcopy-gen=true
type BlueprintSpec struct {
	// Packages declares package-produced images referenced by disk intents.
	// +optional
	Packages []PackageSpec `json:"packages,omitempty" yaml:"packages,omitempty"`

	// Disks lists the disk and CD-ROM intents in attachment order.
	// +kubebuilder:validation:MinItems=1
	Disks []DiskIntent `json:"disks" yaml:"disks"`

	// RequireBoot fails evaluation when no intent is marked bootable.
	// Defaults to true when any intent clones from a source.
	// +optional
	RequireBoot *bool `json:"requireBoot,omitempty" yaml:"requireBoot,omitempty"`
}

// PackageSpec declares an image produced by another build artifact.
//
// +k8s:deepcopy-gen=true
type PackageSpec struct {
	// Name is the package name referenced from disk sources.
	Name string `json:"name" yaml:"name"`

	// UUID identifies the package. Generated when omitted.
	// +optional
	UUID string `json:"uuid,omitempty" yaml:"uuid,omitempty"`

	// ImageType is the type of image the package produces.
	// Detected from Source when omitted.
	// +optional
	// +kubebuilder:validation:Enum=DISK_IMAGE;ISO_IMAGE
	ImageType ImageType `json:"imageType,omitempty" yaml:"imageType,omitempty"`

	// Source is a local image file the package is built from.
	// +optional
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
}

// DiskIntent is one high-level disk request.
//
// +k8s:deepcopy-gen=true
type DiskIntent struct {
	// DeviceType is DISK or CDROM. Defaults to DISK.
	// +optional
	DeviceType DeviceType `json:"deviceType,omitempty" yaml:"deviceType,omitempty"`

	// AdapterType is the bus family. Defaults to SCSI for disks and IDE for CD-ROMs.
	// +optional
	AdapterType AdapterType `json:"adapterType,omitempty" yaml:"adapterType,omitempty"`

	// SizeGiB is the size of raw storage to allocate. Ignored when cloning.
	// +optional
	SizeGiB int `json:"sizeGiB,omitempty" yaml:"sizeGiB,omitempty"`

	// Bootable marks this device as the VM's boot device.
	// +optional
	Bootable bool `json:"bootable,omitempty" yaml:"bootable,omitempty"`

	// Source selects the image the device is cloned from.
	// +optional
	Source *DiskSourceSpec `json:"source,omitempty" yaml:"source,omitempty"`
}

// DiskSourceSpec names a catalog image or a declared package.
// Exactly one of Image and Package is set.
//
// +k8s:deepcopy-gen=true
type DiskSourceSpec struct {
	// Image is the name of a catalog image.
	// +optional
	Image string `json:"image,omitempty" yaml:"image,omitempty"`

	// Package is the name of an entry in spec.packages.
	// +optional
	Package string `json:"package,omitempty" yaml:"package,omitempty"`
}

// IntentKind classifies a DiskIntent by how its device is produced.
type IntentKind string

const (
	IntentCloneImage   IntentKind = "clone-image"
	IntentClonePackage IntentKind = "clone-package"
	IntentAllocate     IntentKind = "allocate"
	IntentEmptyCDROM   IntentKind = "empty-cdrom"
)

// DeepCopy creates a deep copy of VMDiskBlueprint.
func (in *VMDiskBlueprint) DeepCopy() *VMDiskBlueprint {
	if in == nil {
		return nil
	}
	out := new(VMDiskBlueprint)
	out.TypeMeta = *in.TypeMeta.DeepCopy()
	out.ObjectMeta = *in.ObjectMeta.DeepCopy()
	out.Spec = *in.Spec.DeepCopy()
	return out
}

// DeepCopy creates a deep copy of BlueprintSpec.
func (in *BlueprintSpec) DeepCopy() *BlueprintSpec {
	if in == nil {
		return nil
	}
	out := new(BlueprintSpec)
	*out = *in

	if in.Packages != nil {
		out.Packages = make([]PackageSpec, len(in.Packages))
		copy(out.Packages, in.Packages)
	}

	if in.Disks != nil {
		out.Disks = make([]DiskIntent, len(in.Disks))
		for i := range in.Disks {
			out.Disks[i] = *in.Disks[i].DeepCopy()
		}
	}

	if in.RequireBoot != nil {
		requireBoot := *in.RequireBoot
		out.RequireBoot = &requireBoot
	}

	return out
}

// DeepCopy creates a deep copy of DiskIntent.
func (in *DiskIntent) DeepCopy() *DiskIntent {
	if in == nil {
		return nil
	}
	out := new(DiskIntent)
	*out = *in
	if in.Source != nil {
		source := *in.Source
		out.Source = &source
	}
	return out
}
