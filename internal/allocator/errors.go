package allocator

import "github.com/jbweber/diskforge/api/v1alpha1"

// ErrUnknownAdapter is returned for adapter families outside SCSI, PCI, IDE and SATA.
var ErrUnknownAdapter = v1alpha1.ErrUnknownAdapter
