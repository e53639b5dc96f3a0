package boot

import "github.com/pkg/errors"

// ErrNoBootDeviceSelected is returned when the boot device is read before any
// device was selected.
var ErrNoBootDeviceSelected = errors.New("no boot device selected")
