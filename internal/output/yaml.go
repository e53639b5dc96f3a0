package output

import (
	"bytes"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/jbweber/diskforge/api/v1alpha1"
	"github.com/jbweber/diskforge/internal/resolver"
)

// YAMLFormatter formats resources as YAML.
type YAMLFormatter struct{}

// FormatConfiguration formats a VM disk configuration as YAML.
func (f *YAMLFormatter) FormatConfiguration(cfg *v1alpha1.VMDiskConfiguration) (string, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal configuration to YAML")
	}

	return string(data), nil
}

// FormatImages formats cached images as a YAML stream, one document per image.
func (f *YAMLFormatter) FormatImages(images []resolver.Image) (string, error) {
	var buf bytes.Buffer

	for i, img := range images {
		data, err := yaml.Marshal(img)
		if err != nil {
			return "", errors.Wrapf(err, "failed to marshal image %s to YAML", img.Name)
		}

		if i > 0 {
			buf.WriteString("---\n")
		}
		buf.Write(data)
	}

	return buf.String(), nil
}
