package domain

import "time"

// DeviceStatus is the liveness state recorded in the status ledger
type DeviceStatus string

const (
	DeviceOnline  DeviceStatus = "online"
	DeviceOffline DeviceStatus = "offline"
)

// StatusFromAlive maps a ping verdict to a ledger status
func StatusFromAlive(alive bool) DeviceStatus {
	if alive {
		return DeviceOnline
	}
	return DeviceOffline
}

// Device is a classified entry of the asset registry
type Device struct {
	ID                int64      `json:"id" yaml:"id"`
	IPAddress         string     `json:"ip_address" yaml:"ip_address"`
	Hostname          string     `json:"hostname" yaml:"hostname"`
	DepartmentID      int64      `json:"department_id" yaml:"department_id"`
	UnitID            int64      `json:"unit_id" yaml:"unit_id"`
	UserName          string     `json:"user_name" yaml:"user_name"`
	AutoAssigned      bool       `json:"auto_assigned" yaml:"auto_assigned"`
	LastSeen          *time.Time `json:"last_seen,omitempty" yaml:"last_seen,omitempty"`
	AssetNumber       string     `json:"asset_number,omitempty" yaml:"asset_number,omitempty"`
	IsAlive           bool       `json:"is_alive" yaml:"is_alive"`
	ProtocolAvailable bool       `json:"protocol_available" yaml:"protocol_available"`
	System            SystemInfo `json:"system" yaml:"system"`
	CreatedAt         time.Time  `json:"created_at" yaml:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" yaml:"updated_at"`
}

// DeviceFromDiscovery mirrors the probe fields of a discovery into a new device.
// Placement fields are left for the caller.
func DeviceFromDiscovery(rec *DiscoveryRecord) *Device {
	seen := rec.DiscoveredAt
	hostname := rec.System.Name
	if hostname == "" {
		hostname = rec.IPAddress
	}
	return &Device{
		IPAddress:         rec.IPAddress,
		Hostname:          hostname,
		AutoAssigned:      true,
		LastSeen:          &seen,
		IsAlive:           rec.IsAlive,
		ProtocolAvailable: rec.ProtocolAvailable,
		System:            rec.System,
	}
}

// StatusHistoryEntry is one transition in the device status ledger
type StatusHistoryEntry struct {
	ID        int64        `json:"id" yaml:"id"`
	DeviceID  int64        `json:"device_id" yaml:"device_id"`
	Status    DeviceStatus `json:"status" yaml:"status"`
	ChangedAt time.Time    `json:"changed_at" yaml:"changed_at"`
}
