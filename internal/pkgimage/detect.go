package pkgimage

import (
	"bytes"
	"io"
	"os"

	"github.com/kdomanski/iso9660"
	"github.com/pkg/errors"

	"github.com/jbweber/diskforge/api/v1alpha1"
)

// Magic bytes and signatures for image detection
var (
	// qcow2Magic is "QFI" followed by 0xfb at offset 0 of every QCOW2 file.
	// Reference: https://www.qemu.org/docs/master/interop/qcow2.html
	qcow2Magic = []byte{0x51, 0x46, 0x49, 0xfb}

	// mbrSignature is the boot sector signature at offset 510. GPT disks carry
	// it too in their protective MBR.
	mbrSignature = []byte{0x55, 0xaa}
)

// Format is the on-disk container format of a package source file.
type Format string

const (
	FormatISO   Format = "iso"
	FormatQCOW2 Format = "qcow2"
	FormatRaw   Format = "raw"
)

// ImageType returns the image type a file of this format provides.
func (f Format) ImageType() v1alpha1.ImageType {
	if f == FormatISO {
		return v1alpha1.ImageTypeISO
	}
	return v1alpha1.ImageTypeDisk
}

// DetectFormat detects the format of the file at path.
//
// Detection rules, in order:
//   - ISO9660: a primary volume descriptor readable by iso9660.OpenImage
//   - QCOW2: magic bytes "QFI\xfb" at offset 0
//   - RAW: MBR signature 0x55 0xaa at offset 510
//
// Anything else is rejected with ErrUnsupportedImage, so arbitrary data
// files are never accepted as packages.
func DetectFormat(path string) (Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrap(err, "failed to open file")
	}
	defer func() { _ = f.Close() }()

	if _, err := iso9660.OpenImage(f); err == nil {
		return FormatISO, nil
	}

	magic := make([]byte, 4)
	if _, err := f.ReadAt(magic, 0); err != nil {
		return "", errors.Wrapf(ErrUnsupportedImage, "file too small to be valid image (< 4 bytes): %v", err)
	}
	if bytes.Equal(magic, qcow2Magic) {
		return FormatQCOW2, nil
	}

	sig := make([]byte, 2)
	if _, err := f.ReadAt(sig, 510); err != nil {
		if err == io.EOF {
			return "", errors.Wrap(ErrUnsupportedImage, "file too small for boot sector (< 512 bytes)")
		}
		return "", errors.Wrap(err, "failed to read boot sector signature")
	}
	if bytes.Equal(sig, mbrSignature) {
		return FormatRaw, nil
	}

	return "", errors.Wrap(ErrUnsupportedImage, "not iso9660 or qcow2 and missing boot sector signature (0x55aa at offset 510)")
}

// DetectImageType detects the image type a source file provides.
func DetectImageType(path string) (v1alpha1.ImageType, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return "", err
	}
	return format.ImageType(), nil
}
