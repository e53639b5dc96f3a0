package v1alpha1

// ConfigurationKind is the kind string for VMDiskConfiguration resources.
const ConfigurationKind = "VMDiskConfiguration"

// VMDiskConfiguration is the evaluated form of a VMDiskBlueprint: the disk
// configurations in attach order plus the boot selection.
type VMDiskConfiguration struct {
	TypeMeta   `json:",inline" yaml:",inline"`
	ObjectMeta `json:"metadata,omitempty" yaml:"metadata,omitempty"`

	Disks      []DiskConfiguration `json:"disks" yaml:"disks"`
	BootConfig *BootConfiguration  `json:"boot_config,omitempty" yaml:"boot_config,omitempty"`
}

// NewConfiguration creates an empty VMDiskConfiguration for the named VM.
func NewConfiguration(name string) *VMDiskConfiguration {
	return &VMDiskConfiguration{
		TypeMeta: TypeMeta{
			APIVersion: GroupName + "/" + Version,
			Kind:       ConfigurationKind,
		},
		ObjectMeta: ObjectMeta{Name: name},
		Disks:      []DiskConfiguration{},
	}
}

// BootAddress returns the boot device address, or nil when no boot device
// was selected.
func (c *VMDiskConfiguration) BootAddress() *DiskAddress {
	if c.BootConfig == nil {
		return nil
	}
	addr := c.BootConfig.BootDevice.DiskAddress
	return &addr
}

// DeepCopy creates a deep copy of VMDiskConfiguration.
func (c *VMDiskConfiguration) DeepCopy() *VMDiskConfiguration {
	if c == nil {
		return nil
	}
	out := new(VMDiskConfiguration)
	out.TypeMeta = c.TypeMeta
	out.ObjectMeta = *c.ObjectMeta.DeepCopy()
	if c.Disks != nil {
		out.Disks = make([]DiskConfiguration, len(c.Disks))
		for i := range c.Disks {
			out.Disks[i] = *c.Disks[i].DeepCopy()
		}
	}
	if c.BootConfig != nil {
		boot := *c.BootConfig
		out.BootConfig = &boot
	}
	return out
}
