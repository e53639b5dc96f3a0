package output

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/jbweber/diskforge/api/v1alpha1"
	"github.com/jbweber/diskforge/internal/resolver"
)

// JSONFormatter formats resources as JSON.
type JSONFormatter struct{}

// FormatConfiguration formats a VM disk configuration as JSON.
func (f *JSONFormatter) FormatConfiguration(cfg *v1alpha1.VMDiskConfiguration) (string, error) {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal configuration to JSON")
	}

	return string(data) + "\n", nil
}

// FormatImages formats cached images as a JSON array.
func (f *JSONFormatter) FormatImages(images []resolver.Image) (string, error) {
	if len(images) == 0 {
		return "[]\n", nil
	}

	data, err := json.MarshalIndent(images, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal images to JSON")
	}

	return string(data) + "\n", nil
}
