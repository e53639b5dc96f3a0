package disk

import (
	"github.com/pkg/errors"

	"github.com/jbweber/diskforge/internal/entity"
	"github.com/jbweber/diskforge/internal/schema"
)

// DiskType is the configuration type of one VM disk or CD-ROM.
var DiskType = entity.TypeSpec{
	SchemaName:  "AhvDisk",
	OpenAPIType: schema.KeyDisk,
	Fields: map[string]string{
		"device_properties":     schema.KeyDeviceProperties,
		"disk_size_mib":         schema.KeyInteger,
		"data_source_reference": schema.KeyImageReference,
	},
}

// BootConfigType is the configuration type of a VM's boot selection.
var BootConfigType = entity.TypeSpec{
	SchemaName:  "AhvBootConfig",
	OpenAPIType: schema.KeyBootConfig,
	Fields: map[string]string{
		"boot_device": schema.KeyBootDevice,
	},
}

// DeclareTypes declares DiskType and BootConfigType on f, skipping types
// that are already declared.
func DeclareTypes(f *entity.Factory) error {
	for _, spec := range []entity.TypeSpec{DiskType, BootConfigType} {
		if _, ok := f.Lookup(spec.OpenAPIType); ok {
			continue
		}
		if err := f.Declare(spec); err != nil {
			return errors.Wrapf(err, "declare %s", spec.SchemaName)
		}
	}
	return nil
}
