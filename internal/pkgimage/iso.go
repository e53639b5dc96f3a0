package pkgimage

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kdomanski/iso9660"
	"github.com/pkg/errors"
)

// DefaultISOLabel is the volume label used when none is given.
const DefaultISOLabel = "DISKFORGE"

// BuildISO packs the regular files directly under dir into an ISO9660 image
// with the given volume label. Subdirectories are skipped.
//
// The result can be attached as a CD-ROM package source.
func BuildISO(dir, label string) ([]byte, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read package directory")
	}

	files := make(map[string][]byte)
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read %s", entry.Name())
		}
		files[entry.Name()] = data
	}
	if len(files) == 0 {
		return nil, errors.Errorf("package directory %s has no files", dir)
	}

	return WriteISO(files, label)
}

// WriteISO writes files into an ISO9660 image in name order.
// An empty label selects DefaultISOLabel.
func WriteISO(files map[string][]byte, label string) ([]byte, error) {
	if label == "" {
		label = DefaultISOLabel
	}

	writer, err := iso9660.NewWriter()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create ISO writer")
	}
	defer func() {
		// Cleanup removes the writer's staging directory.
		_ = writer.Cleanup()
	}()

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := writer.AddFile(bytes.NewReader(files[name]), name); err != nil {
			return nil, errors.Wrapf(err, "failed to add %s", name)
		}
	}

	var buf bytes.Buffer
	if err := writer.WriteTo(&buf, strings.ToUpper(label)); err != nil {
		return nil, errors.Wrap(err, "failed to write ISO image")
	}
	return buf.Bytes(), nil
}
