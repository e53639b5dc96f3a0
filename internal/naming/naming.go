// Package naming provides infrastructure-level naming conventions for the
// disks a VM definition produces: guest target device names derived from a
// disk address, and volume names for the storage backing each device.
//
// These naming rules are version-independent and shared across all
// API versions.
package naming

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/jbweber/diskforge/api/v1alpha1"
)

// TargetBus returns the libvirt target bus for an adapter family.
//
// Example: SCSI → scsi, PCI → virtio
func TargetBus(adapter v1alpha1.AdapterType) (string, error) {
	switch adapter {
	case v1alpha1.AdapterSCSI:
		return "scsi", nil
	case v1alpha1.AdapterPCI:
		return "virtio", nil
	case v1alpha1.AdapterIDE:
		return "ide", nil
	case v1alpha1.AdapterSATA:
		return "sata", nil
	}
	return "", errors.Wrapf(v1alpha1.ErrUnknownAdapter, "%q", adapter)
}

// TargetDevice calculates the guest device name for a disk address.
// Indices are unique per adapter family, so names never collide within
// one family. SCSI and SATA share the sd prefix; SATA is offset past the
// first sixteen SCSI names, so a set with more SCSI devices than that can
// still collide and callers rendering a whole set must check for it.
//
// Example: SCSI:0 → sda, PCI:1 → vdb, IDE:0 → hda, SATA:0 → sdq
func TargetDevice(addr v1alpha1.DiskAddress) (string, error) {
	if err := addr.Validate(); err != nil {
		return "", err
	}

	index := addr.DeviceIndex
	var prefix string
	switch addr.AdapterType {
	case v1alpha1.AdapterSCSI:
		prefix = "sd"
	case v1alpha1.AdapterSATA:
		prefix = "sd"
		index += SATAOffset
	case v1alpha1.AdapterPCI:
		prefix = "vd"
	case v1alpha1.AdapterIDE:
		prefix = "hd"
	}

	return prefix + driveLetters(index), nil
}

// SATAOffset shifts SATA indices past the first sixteen SCSI names.
const SATAOffset = 16

// driveLetters converts a zero-based index into the kernel's drive suffix:
// 0 → a, 25 → z, 26 → aa, 27 → ab.
func driveLetters(index int) string {
	var out []byte
	for n := index + 1; n > 0; n = (n - 1) / 26 {
		out = append([]byte{byte('a' + (n-1)%26)}, out...)
	}
	return string(out)
}

// VolumeNameDisk returns the volume name for a raw disk allocated for a VM.
// Format: {vmName}_{device}.qcow2 (e.g., "web-server_sdb.qcow2")
func VolumeNameDisk(vmName, device string) string {
	return fmt.Sprintf("%s_%s.qcow2", vmName, device)
}

// VolumeNameClone returns the volume name for a disk cloned from an image.
// Format: {vmName}_{device}-{image}.qcow2 (e.g., "web-server_sda-centos7.qcow2")
func VolumeNameClone(vmName, device, image string) string {
	return fmt.Sprintf("%s_%s-%s.qcow2", vmName, device, image)
}

// VolumeNameISO returns the volume name for an ISO image attached to a VM.
// Format: {image}.iso
func VolumeNameISO(image string) string {
	return fmt.Sprintf("%s.iso", image)
}
