package schema

import (
	"github.com/getkin/kin-openapi/openapi3"
)

// Schema keys for VM disk configuration types.
const (
	KeyInteger = "integer"
	KeyString  = "string"
	KeyBoolean = "boolean"

	KeyDiskAddress      = "vm_ahv_disk_address"
	KeyDeviceProperties = "vm_ahv_disk_device_properties"
	KeyImageReference   = "image_reference"
	KeyDisk             = "vm_ahv_disk"
	KeyBootDevice       = "vm_ahv_boot_device"
	KeyBootConfig       = "vm_ahv_boot_config"
)

var defaultRegistry = newDefaultRegistry()

// Default returns the process-wide registry populated with the disk schemas.
func Default() *Registry {
	return defaultRegistry
}

func newDefaultRegistry() *Registry {
	r := NewRegistry()
	if err := RegisterDiskSchemas(r); err != nil {
		panic(err)
	}
	return r
}

// RegisterDiskSchemas registers the scalar and VM disk schemas on r.
func RegisterDiskSchemas(r *Registry) error {
	address := DiskAddressSchema()
	properties := DevicePropertiesSchema()
	reference := ImageReferenceSchema()
	bootDevice := openapi3.NewObjectSchema().
		WithProperty("disk_address", address).
		WithoutAdditionalProperties()
	bootDevice.Required = []string{"disk_address"}
	bootConfig := openapi3.NewObjectSchema().
		WithProperty("boot_device", bootDevice).
		WithoutAdditionalProperties()
	bootConfig.Required = []string{"boot_device"}

	entries := []struct {
		key    string
		schema *openapi3.Schema
	}{
		{KeyInteger, openapi3.NewIntegerSchema()},
		{KeyString, openapi3.NewStringSchema()},
		{KeyBoolean, openapi3.NewBoolSchema()},
		{KeyDiskAddress, address},
		{KeyDeviceProperties, properties},
		{KeyImageReference, reference},
		{KeyDisk, DiskSchema()},
		{KeyBootDevice, bootDevice},
		{KeyBootConfig, bootConfig},
	}
	for _, e := range entries {
		if err := r.Register(e.key, e.schema); err != nil {
			return err
		}
	}
	return nil
}

// DiskAddressSchema describes {adapter_type, device_index}.
func DiskAddressSchema() *openapi3.Schema {
	s := openapi3.NewObjectSchema().
		WithProperty("adapter_type", openapi3.NewStringSchema().WithEnum("SCSI", "PCI", "IDE", "SATA")).
		WithProperty("device_index", openapi3.NewIntegerSchema().WithMin(0)).
		WithoutAdditionalProperties()
	s.Required = []string{"adapter_type", "device_index"}
	return s
}

// DevicePropertiesSchema describes {device_type, disk_address}.
func DevicePropertiesSchema() *openapi3.Schema {
	s := openapi3.NewObjectSchema().
		WithProperty("device_type", openapi3.NewStringSchema().WithEnum("DISK", "CDROM")).
		WithProperty("disk_address", DiskAddressSchema()).
		WithoutAdditionalProperties()
	s.Required = []string{"device_type", "disk_address"}
	return s
}

// ImageReferenceSchema describes {kind, name, uuid}.
func ImageReferenceSchema() *openapi3.Schema {
	s := openapi3.NewObjectSchema().
		WithProperty("kind", openapi3.NewStringSchema().WithEnum("image", "package")).
		WithProperty("name", openapi3.NewStringSchema().WithMinLength(1)).
		WithProperty("uuid", openapi3.NewStringSchema().WithMinLength(1)).
		WithoutAdditionalProperties()
	s.Required = []string{"kind", "name", "uuid"}
	return s
}

// DiskSchema describes a full disk configuration.
func DiskSchema() *openapi3.Schema {
	s := openapi3.NewObjectSchema().
		WithProperty("device_properties", DevicePropertiesSchema()).
		WithProperty("disk_size_mib", openapi3.NewIntegerSchema().WithMin(0)).
		WithProperty("data_source_reference", ImageReferenceSchema()).
		WithoutAdditionalProperties()
	s.Required = []string{"device_properties", "disk_size_mib"}
	return s
}
