// Package codec encodes command output and decodes staged discovery files in
// JSON or YAML.
package codec

import (
	"fmt"
	"io"
	"strings"

	"netinventory/internal/domain"
)

// Exporter writes any result value in one format
type Exporter interface {
	Export(v any, w io.Writer) error
	Format() string
}

// Importer reads staged discovery records
type Importer interface {
	ParseDiscoveries(r io.Reader) ([]domain.DiscoveryRecord, error)
	Format() string
}

// Codec is both an Exporter and an Importer
type Codec interface {
	Exporter
	Importer
}

// discoveryFile is the document shape accepted by ParseDiscoveries
type discoveryFile struct {
	Discoveries []domain.DiscoveryRecord `json:"discoveries" yaml:"discoveries"`
}

// ForFormat returns the codec named by format ("json" or "yaml")
func ForFormat(format string) (Codec, error) {
	switch strings.ToLower(format) {
	case "", "json":
		return NewJSONCodec(), nil
	case "yaml", "yml":
		return NewYAMLCodec(), nil
	}
	return nil, fmt.Errorf("unknown output format %q", format)
}

// ForPath picks a codec from the file extension, defaulting to JSON
func ForPath(path string) Codec {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") {
		return NewYAMLCodec()
	}
	return NewJSONCodec()
}

// validate checks every record has an address and a known status
func validate(records []domain.DiscoveryRecord) error {
	for i := range records {
		rec := &records[i]
		if strings.TrimSpace(rec.IPAddress) == "" {
			return fmt.Errorf("discovery %d: ip_address is required", i)
		}
		if rec.Status == "" {
			rec.Status = domain.DiscoveryPending
		}
		if !rec.Status.Valid() {
			return fmt.Errorf("discovery %s: %w: %q", rec.IPAddress, domain.ErrInvalidStatus, rec.Status)
		}
	}
	return nil
}
