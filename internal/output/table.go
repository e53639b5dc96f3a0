package output

import (
	"bytes"
	"fmt"
	"text/tabwriter"

	"github.com/c2h5oh/datasize"

	"github.com/jbweber/diskforge/api/v1alpha1"
	"github.com/jbweber/diskforge/internal/resolver"
)

// TableFormatter formats resources as human-readable tables.
type TableFormatter struct {
	// NoHeaders omits the header row.
	NoHeaders bool
}

// FormatConfiguration formats a VM disk configuration as one row per disk.
func (f *TableFormatter) FormatConfiguration(cfg *v1alpha1.VMDiskConfiguration) (string, error) {
	if len(cfg.Disks) == 0 {
		return "No disks\n", nil
	}

	boot := cfg.BootAddress()

	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	if !f.NoHeaders {
		_, _ = fmt.Fprintln(w, "ADDRESS\tDEVICE\tSIZE\tSOURCE\tBOOT")
	}

	for _, d := range cfg.Disks {
		addr := d.Address()

		size := "-"
		if d.DiskSizeMiB > 0 {
			size = (datasize.ByteSize(d.DiskSizeMiB) * datasize.MB).HR()
		}

		source := "-"
		if ref := d.DataSourceReference; ref != nil {
			source = fmt.Sprintf("%s/%s", ref.Kind, ref.Name)
		}

		bootMark := ""
		if boot != nil && *boot == addr {
			bootMark = "*"
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			addr.String(), d.DeviceProperties.DeviceType, size, source, bootMark)
	}

	_ = w.Flush()
	return buf.String(), nil
}

// FormatImages formats cached images as a table.
func (f *TableFormatter) FormatImages(images []resolver.Image) (string, error) {
	if len(images) == 0 {
		return "No images found\n", nil
	}

	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	if !f.NoHeaders {
		_, _ = fmt.Fprintln(w, "NAME\tTYPE\tUUID\tACCOUNT")
	}

	for _, img := range images {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			img.Name, img.ImageType, img.UUID, img.AccountUUID)
	}

	_ = w.Flush()
	return buf.String(), nil
}
