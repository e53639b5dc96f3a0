package pkgimage

import "github.com/pkg/errors"

var (
	// ErrUnsupportedImage is returned when a source file is neither an ISO9660
	// image nor a bootable disk image.
	ErrUnsupportedImage = errors.New("unsupported or invalid image")

	// ErrUnsupportedPackage is returned when the compiler is handed a package
	// type it does not know.
	ErrUnsupportedPackage = errors.New("unsupported package type")
)
