package domain

import (
	"fmt"
	"time"
)

// DiscoveryStatus is the processing state of a staged discovery
type DiscoveryStatus string

const (
	DiscoveryPending   DiscoveryStatus = "pending"   // Awaiting classification
	DiscoveryProcessed DiscoveryStatus = "processed" // Classified into a device
	DiscoveryFailed    DiscoveryStatus = "failed"    // Classification raised an error
)

// Valid reports whether s is a known status
func (s DiscoveryStatus) Valid() bool {
	switch s {
	case DiscoveryPending, DiscoveryProcessed, DiscoveryFailed:
		return true
	}
	return false
}

// ParseDiscoveryStatus converts user input to a DiscoveryStatus
func ParseDiscoveryStatus(s string) (DiscoveryStatus, error) {
	status := DiscoveryStatus(s)
	if !status.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return status, nil
}

// SystemInfo is the SNMP system group of a device. Empty strings mean the
// agent returned nothing for that object.
type SystemInfo struct {
	Description string `json:"system_description,omitempty" yaml:"system_description,omitempty"`
	Name        string `json:"system_name,omitempty" yaml:"system_name,omitempty"`
	Contact     string `json:"system_contact,omitempty" yaml:"system_contact,omitempty"`
	ObjectID    string `json:"system_object_id,omitempty" yaml:"system_object_id,omitempty"`
	Location    string `json:"system_location,omitempty" yaml:"system_location,omitempty"`
}

// IsEmpty reports whether no system object was returned
func (s SystemInfo) IsEmpty() bool {
	return s == SystemInfo{}
}

// DiscoveryRecord is the staged, unvalidated observation of one IP address
type DiscoveryRecord struct {
	IPAddress         string          `json:"ip_address" yaml:"ip_address"`
	IsAlive           bool            `json:"is_alive" yaml:"is_alive"`
	ProtocolAvailable bool            `json:"protocol_available" yaml:"protocol_available"`
	System            SystemInfo      `json:"system" yaml:"system"`
	DiscoveredAt      time.Time       `json:"discovered_at" yaml:"discovered_at"`
	Status            DiscoveryStatus `json:"status" yaml:"status"`
	ErrorMessage      string          `json:"error_message,omitempty" yaml:"error_message,omitempty"`
	CreatedAt         time.Time       `json:"created_at" yaml:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at" yaml:"updated_at"`
}

// NewDiscoveryRecord creates a pending record for ip observed at the given time
func NewDiscoveryRecord(ip string, at time.Time) *DiscoveryRecord {
	return &DiscoveryRecord{
		IPAddress:    ip,
		DiscoveredAt: at,
		Status:       DiscoveryPending,
	}
}

// MarkUnreachable clears protocol data for a host that did not answer ping
func (r *DiscoveryRecord) MarkUnreachable() {
	r.IsAlive = false
	r.ProtocolAvailable = false
	r.System = SystemInfo{}
}

// DiscoveryFilter selects staged records for paginated listing
type DiscoveryFilter struct {
	Status   DiscoveryStatus // Empty matches every status
	Page     int
	PageSize int
}

// Normalize clamps paging values to sane bounds
func (f *DiscoveryFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
}

// Offset returns the row offset for the current page
func (f DiscoveryFilter) Offset() int {
	return (f.Page - 1) * f.PageSize
}
