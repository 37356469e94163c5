package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"netinventory/internal/domain"
)

// JSONCodec handles JSON import/export
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

// ParseDiscoveries reads a {"discoveries": [...]} document
func (c *JSONCodec) ParseDiscoveries(r io.Reader) ([]domain.DiscoveryRecord, error) {
	var f discoveryFile
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	if err := validate(f.Discoveries); err != nil {
		return nil, err
	}
	return f.Discoveries, nil
}

// Export writes v as indented JSON
func (c *JSONCodec) Export(v any, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
