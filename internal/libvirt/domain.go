package libvirt

import (
	"github.com/pkg/errors"
	"libvirt.org/go/libvirtxml"

	"github.com/jbweber/diskforge/api/v1alpha1"
	"github.com/jbweber/diskforge/internal/naming"
)

// ErrDuplicateTarget is returned when two disks in a set map to the same
// guest device name.
var ErrDuplicateTarget = errors.New("duplicate target device")

// DefaultStoragePool is the pool volumes are placed in when none is given.
const DefaultStoragePool = "diskforge-vms"

// DiskSet is a built set of disk configurations to render as libvirt XML.
type DiskSet struct {
	// Name is the VM name, used to derive volume names.
	Name string

	// Pool is the storage pool holding the volumes. Defaults to DefaultStoragePool.
	Pool string

	// Disks are the built disk configurations in attach order.
	Disks []v1alpha1.DiskConfiguration

	// Boot is the address of the boot device, or nil when none was selected.
	Boot *v1alpha1.DiskAddress
}

// GetStoragePool returns the storage pool name, using default if not set.
func (s *DiskSet) GetStoragePool() string {
	if s.Pool == "" {
		return DefaultStoragePool
	}
	return s.Pool
}

// DomainDisks converts the disk set into libvirt disk devices.
//
// Raw disks map to {vm}_{dev}.qcow2, cloned disks to {vm}_{dev}-{image}.qcow2
// and cloned CD-ROMs to the shared {image}.iso volume. Empty CD-ROMs have no
// source. The boot device carries boot order 1. Two disks resolving to the
// same target device (SCSI:16 and SATA:0 are both sdq) fail with
// ErrDuplicateTarget.
func DomainDisks(set *DiskSet) ([]libvirtxml.DomainDisk, error) {
	disks := make([]libvirtxml.DomainDisk, 0, len(set.Disks))
	seen := make(map[string]v1alpha1.DiskAddress, len(set.Disks))

	for i := range set.Disks {
		cfg := &set.Disks[i]
		addr := cfg.Address()

		dev, err := naming.TargetDevice(addr)
		if err != nil {
			return nil, errors.Wrapf(err, "disk %d", i)
		}
		if prev, ok := seen[dev]; ok {
			return nil, errors.Wrapf(ErrDuplicateTarget, "disk %d: %s and %s both map to %s", i, prev, addr, dev)
		}
		seen[dev] = addr

		bus, err := naming.TargetBus(addr.AdapterType)
		if err != nil {
			return nil, errors.Wrapf(err, "disk %d", i)
		}

		disk := libvirtxml.DomainDisk{
			Target: &libvirtxml.DomainDiskTarget{
				Dev: dev,
				Bus: bus,
			},
		}

		switch cfg.DeviceProperties.DeviceType {
		case v1alpha1.DeviceDisk:
			volume := naming.VolumeNameDisk(set.Name, dev)
			if cfg.DataSourceReference != nil {
				volume = naming.VolumeNameClone(set.Name, dev, cfg.DataSourceReference.Name)
			}
			disk.Device = "disk"
			disk.Driver = &libvirtxml.DomainDiskDriver{
				Name:  "qemu",
				Type:  "qcow2",
				Cache: "none",
			}
			disk.Source = &libvirtxml.DomainDiskSource{
				Volume: &libvirtxml.DomainDiskSourceVolume{
					Pool:   set.GetStoragePool(),
					Volume: volume,
				},
			}
		case v1alpha1.DeviceCDROM:
			disk.Device = "cdrom"
			disk.Driver = &libvirtxml.DomainDiskDriver{
				Name: "qemu",
				Type: "raw",
			}
			disk.ReadOnly = &libvirtxml.DomainDiskReadOnly{}
			if cfg.DataSourceReference != nil {
				disk.Source = &libvirtxml.DomainDiskSource{
					Volume: &libvirtxml.DomainDiskSourceVolume{
						Pool:   set.GetStoragePool(),
						Volume: naming.VolumeNameISO(cfg.DataSourceReference.Name),
					},
				}
			}
		default:
			return nil, errors.Wrapf(v1alpha1.ErrUnknownDeviceType, "disk %d: %q", i, cfg.DeviceProperties.DeviceType)
		}

		if set.Boot != nil && *set.Boot == addr {
			disk.Boot = &libvirtxml.DomainDeviceBoot{Order: 1}
		}

		disks = append(disks, disk)
	}

	return disks, nil
}

// GenerateDomainXML renders a domain skeleton carrying only the disk
// devices and the controllers they need. The result is meant to be merged
// into a full domain definition.
func GenerateDomainXML(set *DiskSet) (string, error) {
	if set.Name == "" {
		return "", errors.New("VM name is required")
	}

	disks, err := DomainDisks(set)
	if err != nil {
		return "", err
	}

	domain := &libvirtxml.Domain{
		Type: "kvm",
		Name: set.Name,
		Devices: &libvirtxml.DomainDeviceList{
			Disks: disks,
		},
	}

	for _, cfg := range set.Disks {
		if cfg.Address().AdapterType == v1alpha1.AdapterSCSI {
			index := uint(0)
			domain.Devices.Controllers = append(domain.Devices.Controllers, libvirtxml.DomainController{
				Type:  "scsi",
				Index: &index,
				Model: "virtio-scsi",
			})
			break
		}
	}

	xml, err := domain.Marshal()
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal domain XML")
	}

	return xml, nil
}
