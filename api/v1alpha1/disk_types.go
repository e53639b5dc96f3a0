package v1alpha1

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// AdapterType is the hardware bus family a disk is attached to.
type AdapterType string

const (
	AdapterSCSI AdapterType = "SCSI"
	AdapterPCI  AdapterType = "PCI"
	AdapterIDE  AdapterType = "IDE"
	AdapterSATA AdapterType = "SATA"
)

// AdapterTypes lists the recognized adapter families in allocation order.
var AdapterTypes = []AdapterType{AdapterSCSI, AdapterPCI, AdapterIDE, AdapterSATA}

// DeviceType is the class of device presented to the guest.
type DeviceType string

const (
	DeviceDisk  DeviceType = "DISK"
	DeviceCDROM DeviceType = "CDROM"
)

// ImageType is the kind of image a device can be cloned from.
type ImageType string

const (
	ImageTypeDisk ImageType = "DISK_IMAGE"
	ImageTypeISO  ImageType = "ISO_IMAGE"
)

// ReferenceKind is the kind of object an ImageReference points at.
type ReferenceKind string

const (
	ReferenceKindImage   ReferenceKind = "image"
	ReferenceKindPackage ReferenceKind = "package"
)

// MaxDiskSizeGiB bounds a raw allocation (8 EiB) so its byte count fits in
// a uint64 and its size in MiB stays exact through a JSON round trip.
const MaxDiskSizeGiB = 1 << 33

// Errors returned when parsing or validating disk configuration values.
var (
	ErrUnknownAdapter    = errors.New("unknown adapter type")
	ErrUnknownDeviceType = errors.New("unknown device type")
	ErrUnknownImageType  = errors.New("unknown image type")
)

// Valid reports whether a is one of the recognized adapter families.
func (a AdapterType) Valid() bool {
	switch a {
	case AdapterSCSI, AdapterPCI, AdapterIDE, AdapterSATA:
		return true
	}
	return false
}

// ParseAdapterType parses an adapter family name, case-insensitively.
func ParseAdapterType(s string) (AdapterType, error) {
	a := AdapterType(strings.ToUpper(strings.TrimSpace(s)))
	if !a.Valid() {
		return "", errors.Wrapf(ErrUnknownAdapter, "%q (valid: SCSI, PCI, IDE, SATA)", s)
	}
	return a, nil
}

// Valid reports whether d is a recognized device type.
func (d DeviceType) Valid() bool {
	return d == DeviceDisk || d == DeviceCDROM
}

// ParseDeviceType parses a device type name, case-insensitively.
func ParseDeviceType(s string) (DeviceType, error) {
	d := DeviceType(strings.ToUpper(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", errors.Wrapf(ErrUnknownDeviceType, "%q (valid: DISK, CDROM)", s)
	}
	return d, nil
}

// ExpectedImageType returns the image type a device of this class must be
// cloned from: DISK_IMAGE for disks, ISO_IMAGE for CD-ROMs.
func (d DeviceType) ExpectedImageType() (ImageType, error) {
	switch d {
	case DeviceDisk:
		return ImageTypeDisk, nil
	case DeviceCDROM:
		return ImageTypeISO, nil
	}
	return "", errors.Wrapf(ErrUnknownDeviceType, "%q", d)
}

// Valid reports whether t is a recognized image type.
func (t ImageType) Valid() bool {
	return t == ImageTypeDisk || t == ImageTypeISO
}

// ParseImageType parses an image type name, case-insensitively.
func ParseImageType(s string) (ImageType, error) {
	t := ImageType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", errors.Wrapf(ErrUnknownImageType, "%q (valid: DISK_IMAGE, ISO_IMAGE)", s)
	}
	return t, nil
}

// DiskAddress locates a device on its adapter. Within one VM definition the
// (adapter_type, device_index) pair is unique.
type DiskAddress struct {
	AdapterType AdapterType `json:"adapter_type" yaml:"adapter_type"`
	DeviceIndex int         `json:"device_index" yaml:"device_index"`
}

// String renders the address as "SCSI:0".
func (a DiskAddress) String() string {
	return string(a.AdapterType) + ":" + strconv.Itoa(a.DeviceIndex)
}

// Validate checks the address structure.
func (a DiskAddress) Validate() error {
	if !a.AdapterType.Valid() {
		return errors.Wrapf(ErrUnknownAdapter, "adapter_type %q", a.AdapterType)
	}
	if a.DeviceIndex < 0 {
		return errors.Errorf("device_index must be >= 0, got %d", a.DeviceIndex)
	}
	return nil
}

// DeviceProperties describes how the device is presented to the guest.
type DeviceProperties struct {
	DeviceType  DeviceType  `json:"device_type" yaml:"device_type"`
	DiskAddress DiskAddress `json:"disk_address" yaml:"disk_address"`
}

// ImageReference points at the image a disk is cloned from.
type ImageReference struct {
	Kind ReferenceKind `json:"kind" yaml:"kind"`
	Name string        `json:"name" yaml:"name"`
	UUID string        `json:"uuid" yaml:"uuid"`
}

// IsEmpty reports whether the reference carries no data at all.
func (r *ImageReference) IsEmpty() bool {
	return r == nil || (r.Kind == "" && r.Name == "" && r.UUID == "")
}

// Validate checks the reference structure.
func (r *ImageReference) Validate() error {
	if r.Kind != ReferenceKindImage && r.Kind != ReferenceKindPackage {
		return errors.Errorf("kind must be %q or %q, got %q", ReferenceKindImage, ReferenceKindPackage, r.Kind)
	}
	if r.Name == "" {
		return errors.New("name is required")
	}
	if r.UUID == "" {
		return errors.New("uuid is required")
	}
	return nil
}

// DeepCopy creates a deep copy of ImageReference.
func (r *ImageReference) DeepCopy() *ImageReference {
	if r == nil {
		return nil
	}
	out := *r
	return &out
}

// DiskConfiguration is the wire shape of one VM disk or CD-ROM.
//
// A disk with no data source allocates raw storage and must have a positive
// size. A disk cloned from a source inherits its size, so disk_size_mib is 0.
// An empty CD-ROM has neither source nor size.
type DiskConfiguration struct {
	DeviceProperties    DeviceProperties `json:"device_properties" yaml:"device_properties"`
	DiskSizeMiB         int              `json:"disk_size_mib" yaml:"disk_size_mib"`
	DataSourceReference *ImageReference  `json:"data_source_reference,omitempty" yaml:"data_source_reference,omitempty"`
}

// Address returns the disk address.
func (c DiskConfiguration) Address() DiskAddress {
	return c.DeviceProperties.DiskAddress
}

// Validate checks cross-field rules that a structural schema cannot express.
func (c *DiskConfiguration) Validate() error {
	if !c.DeviceProperties.DeviceType.Valid() {
		return errors.Wrapf(ErrUnknownDeviceType, "device_properties.device_type %q", c.DeviceProperties.DeviceType)
	}
	if err := c.DeviceProperties.DiskAddress.Validate(); err != nil {
		return errors.Wrap(err, "device_properties.disk_address")
	}
	if c.DiskSizeMiB < 0 {
		return errors.Errorf("disk_size_mib must be >= 0, got %d", c.DiskSizeMiB)
	}

	if c.DataSourceReference == nil {
		if c.DeviceProperties.DeviceType == DeviceDisk && c.DiskSizeMiB == 0 {
			return errors.New("disk_size_mib must be > 0 when no data_source_reference is set")
		}
		if c.DeviceProperties.DeviceType == DeviceCDROM && c.DiskSizeMiB != 0 {
			return errors.Errorf("disk_size_mib must be 0 for an empty CD-ROM, got %d", c.DiskSizeMiB)
		}
		return nil
	}

	if err := c.DataSourceReference.Validate(); err != nil {
		return errors.Wrap(err, "data_source_reference")
	}
	if c.DiskSizeMiB != 0 {
		return errors.Errorf("disk_size_mib must be 0 when cloning from a source, got %d", c.DiskSizeMiB)
	}
	return nil
}

// DeepCopy creates a deep copy of DiskConfiguration.
func (c *DiskConfiguration) DeepCopy() *DiskConfiguration {
	if c == nil {
		return nil
	}
	out := *c
	out.DataSourceReference = c.DataSourceReference.DeepCopy()
	return &out
}

// BootDevice identifies the device the VM boots from.
type BootDevice struct {
	DiskAddress DiskAddress `json:"disk_address" yaml:"disk_address"`
}

// BootConfiguration is the wire shape of a VM's boot selection.
type BootConfiguration struct {
	BootDevice BootDevice `json:"boot_device" yaml:"boot_device"`
}
