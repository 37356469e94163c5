package codec

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"netinventory/internal/domain"
)

// YAMLCodec handles YAML import/export
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// ParseDiscoveries reads a document with a top-level discoveries list
func (c *YAMLCodec) ParseDiscoveries(r io.Reader) ([]domain.DiscoveryRecord, error) {
	var f discoveryFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validate(f.Discoveries); err != nil {
		return nil, err
	}
	return f.Discoveries, nil
}

// Export writes v as YAML with two-space indentation
func (c *YAMLCodec) Export(v any, w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return nil
}
