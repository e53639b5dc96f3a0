package schema

import (
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Register("integer", openapi3.NewIntegerSchema()))
	assert.True(t, r.Has("integer"))

	err := r.Register("integer", openapi3.NewStringSchema())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateSchema))

	// First registration wins.
	_, err = r.Validate("integer", 3)
	require.NoError(t, err)

	assert.Error(t, r.Register("", openapi3.NewIntegerSchema()))
	assert.Error(t, r.Register("nil", nil))
}

func TestRegistry_MustRegisterPanicsOnDuplicate(t *testing.T) {
	r := NewRegistry()
	r.MustRegister("string", openapi3.NewStringSchema())

	assert.Panics(t, func() {
		r.MustRegister("string", openapi3.NewStringSchema())
	})
}

func TestRegistry_Keys(t *testing.T) {
	r := NewRegistry()
	r.MustRegister("b", openapi3.NewStringSchema())
	r.MustRegister("a", openapi3.NewStringSchema())

	assert.Equal(t, []string{"a", "b"}, r.Keys())
}

func TestRegistry_ValidateUnknownSchema(t *testing.T) {
	_, err := NewRegistry().Validate("missing", 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownSchema))
}

func TestDefault_Keys(t *testing.T) {
	keys := Default().Keys()
	for _, want := range []string{
		KeyInteger, KeyString, KeyBoolean,
		KeyDiskAddress, KeyDeviceProperties, KeyImageReference, KeyDisk,
		KeyBootDevice, KeyBootConfig,
	} {
		assert.Contains(t, keys, want)
	}
}

func TestRegisterDiskSchemas_Twice(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, RegisterDiskSchemas(r))

	err := RegisterDiskSchemas(r)
	assert.True(t, errors.Is(err, ErrDuplicateSchema))
}

type wireAddress struct {
	AdapterType string `json:"adapter_type"`
	DeviceIndex int    `json:"device_index"`
}

func TestDefault_Validate(t *testing.T) {
	validDisk := map[string]any{
		"device_properties": map[string]any{
			"device_type":  "DISK",
			"disk_address": map[string]any{"adapter_type": "SCSI", "device_index": 0},
		},
		"disk_size_mib": 8192,
	}

	tests := []struct {
		name        string
		key         string
		value       any
		wantErr     bool
		errContains string
	}{
		{name: "integer", key: KeyInteger, value: 42},
		{name: "integer rejects string", key: KeyInteger, value: "42", wantErr: true},
		{name: "integer rejects fraction", key: KeyInteger, value: 1.5, wantErr: true},
		{name: "string", key: KeyString, value: "centos7"},
		{name: "boolean", key: KeyBoolean, value: true},
		{name: "boolean rejects int", key: KeyBoolean, value: 1, wantErr: true},
		{
			name:  "address map",
			key:   KeyDiskAddress,
			value: map[string]any{"adapter_type": "PCI", "device_index": 3},
		},
		{
			name:  "address struct",
			key:   KeyDiskAddress,
			value: wireAddress{AdapterType: "SATA", DeviceIndex: 1},
		},
		{
			name:        "address unknown adapter",
			key:         KeyDiskAddress,
			value:       wireAddress{AdapterType: "USB", DeviceIndex: 0},
			wantErr:     true,
			errContains: "adapter_type",
		},
		{
			name:        "address negative index",
			key:         KeyDiskAddress,
			value:       wireAddress{AdapterType: "SCSI", DeviceIndex: -1},
			wantErr:     true,
			errContains: "device_index",
		},
		{
			name:    "address missing index",
			key:     KeyDiskAddress,
			value:   map[string]any{"adapter_type": "SCSI"},
			wantErr: true,
		},
		{
			name:    "address extra property",
			key:     KeyDiskAddress,
			value:   map[string]any{"adapter_type": "SCSI", "device_index": 0, "bus": 1},
			wantErr: true,
		},
		{
			name:  "image reference",
			key:   KeyImageReference,
			value: map[string]any{"kind": "image", "name": "centos7", "uuid": "abc"},
		},
		{
			name:    "image reference bad kind",
			key:     KeyImageReference,
			value:   map[string]any{"kind": "volume", "name": "centos7", "uuid": "abc"},
			wantErr: true,
		},
		{
			name:    "image reference empty name",
			key:     KeyImageReference,
			value:   map[string]any{"kind": "image", "name": "", "uuid": "abc"},
			wantErr: true,
		},
		{name: "disk", key: KeyDisk, value: validDisk},
		{
			name: "disk negative size",
			key:  KeyDisk,
			value: map[string]any{
				"device_properties": validDisk["device_properties"],
				"disk_size_mib":     -1,
			},
			wantErr:     true,
			errContains: "disk_size_mib",
		},
		{
			name: "disk nested address error",
			key:  KeyDisk,
			value: map[string]any{
				"device_properties": map[string]any{
					"device_type":  "DISK",
					"disk_address": map[string]any{"adapter_type": "FLOPPY", "device_index": 0},
				},
				"disk_size_mib": 1024,
			},
			wantErr:     true,
			errContains: "adapter_type",
		},
		{
			name: "boot config",
			key:  KeyBootConfig,
			value: map[string]any{
				"boot_device": map[string]any{
					"disk_address": map[string]any{"adapter_type": "SCSI", "device_index": 0},
				},
			},
		},
		{
			name:    "value not representable as JSON",
			key:     KeyString,
			value:   make(chan int),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Default().Validate(tt.key, tt.value)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrSchemaMismatch), "error should wrap ErrSchemaMismatch: %v", err)
				assert.Contains(t, err.Error(), tt.key)
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.value, got)
		})
	}
}

func TestNormalize(t *testing.T) {
	got, err := Normalize(wireAddress{AdapterType: "IDE", DeviceIndex: 2})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"adapter_type": "IDE", "device_index": float64(2)}, got)
}
