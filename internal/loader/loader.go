// Package loader provides functions for loading VMDiskBlueprint resources
// from YAML files.
package loader

import (
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/jbweber/diskforge/api/v1alpha1"
)

// LoadFromFile loads a VMDiskBlueprint resource from a YAML file.
// The file must be in the diskforge.cofront.xyz/v1alpha1 format.
func LoadFromFile(path string) (*v1alpha1.VMDiskBlueprint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read file %s", path)
	}

	return LoadFromYAML(data)
}

// LoadFromYAML loads a VMDiskBlueprint resource from YAML bytes.
// The YAML must be in the diskforge.cofront.xyz/v1alpha1 format.
func LoadFromYAML(data []byte) (*v1alpha1.VMDiskBlueprint, error) {
	var bp v1alpha1.VMDiskBlueprint
	if err := yaml.Unmarshal(data, &bp); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal YAML")
	}

	// Validate that apiVersion and kind are present
	if bp.APIVersion == "" {
		return nil, errors.New("missing required field: apiVersion")
	}
	if bp.Kind == "" {
		return nil, errors.New("missing required field: kind")
	}

	expectedAPIVersion := v1alpha1.GroupName + "/" + v1alpha1.Version
	if bp.APIVersion != expectedAPIVersion {
		return nil, errors.Errorf("unsupported apiVersion: %s (expected: %s)", bp.APIVersion, expectedAPIVersion)
	}
	if bp.Kind != v1alpha1.BlueprintKind {
		return nil, errors.Errorf("unsupported kind: %s (expected: %s)", bp.Kind, v1alpha1.BlueprintKind)
	}

	applyDefaults(&bp)

	if err := validateSpec(&bp); err != nil {
		return nil, errors.Wrap(err, "validation failed")
	}

	return &bp, nil
}

// SaveToFile saves a VMDiskBlueprint resource to a YAML file.
func SaveToFile(bp *v1alpha1.VMDiskBlueprint, path string) error {
	v1alpha1.SetDefaultAPIVersion(bp)

	data, err := yaml.Marshal(bp)
	if err != nil {
		return errors.Wrap(err, "failed to marshal blueprint to YAML")
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "failed to write file %s", path)
	}

	return nil
}

// applyDefaults sets default values for optional fields.
func applyDefaults(bp *v1alpha1.VMDiskBlueprint) {
	bp.Name = strings.ToLower(bp.Name)

	for i := range bp.Spec.Disks {
		d := &bp.Spec.Disks[i]
		d.DeviceType = v1alpha1.DeviceType(strings.ToUpper(string(d.DeviceType)))
		d.AdapterType = v1alpha1.AdapterType(strings.ToUpper(string(d.AdapterType)))
		d.Normalize()
	}

	for i := range bp.Spec.Packages {
		p := &bp.Spec.Packages[i]
		p.ImageType = v1alpha1.ImageType(strings.ToUpper(string(p.ImageType)))
	}

	if bp.Spec.RequireBoot == nil {
		requireBoot := bp.RequiresBoot()
		bp.Spec.RequireBoot = &requireBoot
	}
}

// validateSpec validates the blueprint spec for required fields and consistency.
func validateSpec(bp *v1alpha1.VMDiskBlueprint) error {
	if bp.Name == "" {
		return errors.New("metadata.name is required")
	}

	packagesSeen := make(map[string]bool)
	for i, p := range bp.Spec.Packages {
		if p.Name == "" {
			return errors.Errorf("spec.packages[%d].name is required", i)
		}
		if packagesSeen[p.Name] {
			return errors.Errorf("spec.packages[%d].name %q is duplicated", i, p.Name)
		}
		packagesSeen[p.Name] = true

		if p.ImageType != "" && !p.ImageType.Valid() {
			return errors.Errorf("spec.packages[%d].imageType %q must be DISK_IMAGE or ISO_IMAGE", i, p.ImageType)
		}
		if p.ImageType == "" && p.Source == "" {
			return errors.Errorf("spec.packages[%d] must specify 'imageType' or 'source'", i)
		}
		if p.UUID != "" {
			if _, err := uuid.Parse(p.UUID); err != nil {
				return errors.Errorf("spec.packages[%d].uuid %q is not a valid UUID", i, p.UUID)
			}
		}
	}

	if len(bp.Spec.Disks) == 0 {
		return errors.New("spec.disks must have at least one disk")
	}

	for i, d := range bp.Spec.Disks {
		if !d.DeviceType.Valid() {
			return errors.Errorf("spec.disks[%d].deviceType %q must be DISK or CDROM", i, d.DeviceType)
		}
		if !d.AdapterType.Valid() {
			return errors.Errorf("spec.disks[%d].adapterType %q must be SCSI, PCI, IDE or SATA", i, d.AdapterType)
		}
		if d.SizeGiB < 0 {
			return errors.Errorf("spec.disks[%d].sizeGiB must not be negative", i)
		}
		if d.SizeGiB > v1alpha1.MaxDiskSizeGiB {
			return errors.Errorf("spec.disks[%d].sizeGiB must be <= %d", i, v1alpha1.MaxDiskSizeGiB)
		}

		if d.Source != nil {
			if d.Source.Image == "" && d.Source.Package == "" {
				return errors.Errorf("spec.disks[%d].source must specify either 'image' or 'package'", i)
			}
			if d.Source.Image != "" && d.Source.Package != "" {
				return errors.Errorf("spec.disks[%d].source cannot specify both 'image' and 'package'", i)
			}
			if d.Source.Package != "" && !packagesSeen[d.Source.Package] {
				return errors.Errorf("spec.disks[%d].source.package %q is not declared in spec.packages", i, d.Source.Package)
			}
			if d.SizeGiB != 0 {
				return errors.Errorf("spec.disks[%d].sizeGiB cannot be set when cloning from a source", i)
			}
			continue
		}

		if d.Bootable {
			return errors.Errorf("spec.disks[%d].bootable requires a source", i)
		}
		if d.DeviceType == v1alpha1.DeviceCDROM && d.SizeGiB != 0 {
			return errors.Errorf("spec.disks[%d].sizeGiB cannot be set on an empty CD-ROM", i)
		}
	}

	if *bp.Spec.RequireBoot {
		bootable := false
		for _, d := range bp.Spec.Disks {
			bootable = bootable || d.Bootable
		}
		if !bootable {
			return errors.New("spec.requireBoot is set but no disk is bootable")
		}
	}

	return nil
}
