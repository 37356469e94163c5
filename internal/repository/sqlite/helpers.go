package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"netinventory/internal/domain"
)

// ============================================================================
// Null Type Conversion Helpers
// ============================================================================

// nullToString safely converts sql.NullString to string
func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// stringToNull safely converts string to sql.NullString
func stringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// boolToInt stores booleans as 0/1
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// ============================================================================
// Time Helpers
// ============================================================================

// timeLayout is fixed width so stored timestamps compare correctly as text
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// formatTime converts t to the storage representation (UTC)
func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime reads a stored timestamp
func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// timePtrToNull converts an optional time to a nullable column
func timePtrToNull(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

// nullToTimePtr parses an optional timestamp column
func nullToTimePtr(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	t, err := parseTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ============================================================================
// Schema Evolution Guide
// ============================================================================
//
// To add a column to discoveries or devices:
// 1. Add the field to the row struct (below)
// 2. APPEND it to scanArgs() and to the matching columns constant
// 3. Map it in toDomain()
// 4. Add it to the INSERT/UPSERT statement
// 5. Add a migration in sqlite.go migrate()
//
// CRITICAL: Column order must match between the columns constant and scanArgs().

// ============================================================================
// Discovery Row Scanner
// ============================================================================

// discoveryRow holds all columns from a discovery query for scanning
type discoveryRow struct {
	IPAddress         string
	IsAlive           bool
	ProtocolAvailable bool
	Description       sql.NullString
	Name              sql.NullString
	Contact           sql.NullString
	ObjectID          sql.NullString
	Location          sql.NullString
	DiscoveredAt      string
	Status            string
	ErrorMessage      sql.NullString
	CreatedAt         string
	UpdatedAt         string
}

// scanArgs returns pointers to all fields for sql.Scan()
// MUST match discoveryColumns order exactly
func (r *discoveryRow) scanArgs() []interface{} {
	return []interface{}{
		&r.IPAddress,         // 1
		&r.IsAlive,           // 2
		&r.ProtocolAvailable, // 3
		&r.Description,       // 4
		&r.Name,              // 5
		&r.Contact,           // 6
		&r.ObjectID,          // 7
		&r.Location,          // 8
		&r.DiscoveredAt,      // 9
		&r.Status,            // 10
		&r.ErrorMessage,      // 11
		&r.CreatedAt,         // 12
		&r.UpdatedAt,         // 13
	}
}

// toDomain converts the scanned row to a domain.DiscoveryRecord
func (r *discoveryRow) toDomain() (*domain.DiscoveryRecord, error) {
	rec := &domain.DiscoveryRecord{
		IPAddress:         r.IPAddress,
		IsAlive:           r.IsAlive,
		ProtocolAvailable: r.ProtocolAvailable,
		System: domain.SystemInfo{
			Description: nullToString(r.Description),
			Name:        nullToString(r.Name),
			Contact:     nullToString(r.Contact),
			ObjectID:    nullToString(r.ObjectID),
			Location:    nullToString(r.Location),
		},
		Status:       domain.DiscoveryStatus(r.Status),
		ErrorMessage: nullToString(r.ErrorMessage),
	}

	var err error
	if rec.DiscoveredAt, err = parseTime(r.DiscoveredAt); err != nil {
		return nil, fmt.Errorf("parse discovered_at: %w", err)
	}
	if rec.CreatedAt, err = parseTime(r.CreatedAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if rec.UpdatedAt, err = parseTime(r.UpdatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return rec, nil
}

// discoveryColumns is the SELECT column list for discovery queries
const discoveryColumns = `ip_address, is_alive, protocol_available,
	system_description, system_name, system_contact, system_object_id, system_location,
	discovered_at, status, error_message, created_at, updated_at`

// ============================================================================
// Device Row Scanner
// ============================================================================

// deviceRow holds all columns from a device query for scanning
type deviceRow struct {
	ID                int64
	IPAddress         string
	Hostname          string
	DepartmentID      int64
	UnitID            int64
	UserName          string
	AutoAssigned      bool
	LastSeen          sql.NullString
	AssetNumber       sql.NullString
	IsAlive           bool
	ProtocolAvailable bool
	Description       sql.NullString
	Name              sql.NullString
	Contact           sql.NullString
	ObjectID          sql.NullString
	Location          sql.NullString
	CreatedAt         string
	UpdatedAt         string
}

// scanArgs returns pointers to all fields for sql.Scan()
// MUST match deviceColumns order exactly
func (r *deviceRow) scanArgs() []interface{} {
	return []interface{}{
		&r.ID,                // 1
		&r.IPAddress,         // 2
		&r.Hostname,          // 3
		&r.DepartmentID,      // 4
		&r.UnitID,            // 5
		&r.UserName,          // 6
		&r.AutoAssigned,      // 7
		&r.LastSeen,          // 8
		&r.AssetNumber,       // 9
		&r.IsAlive,           // 10
		&r.ProtocolAvailable, // 11
		&r.Description,       // 12
		&r.Name,              // 13
		&r.Contact,           // 14
		&r.ObjectID,          // 15
		&r.Location,          // 16
		&r.CreatedAt,         // 17
		&r.UpdatedAt,         // 18
	}
}

// toDomain converts the scanned row to a domain.Device
func (r *deviceRow) toDomain() (*domain.Device, error) {
	dev := &domain.Device{
		ID:                r.ID,
		IPAddress:         r.IPAddress,
		Hostname:          r.Hostname,
		DepartmentID:      r.DepartmentID,
		UnitID:            r.UnitID,
		UserName:          r.UserName,
		AutoAssigned:      r.AutoAssigned,
		AssetNumber:       nullToString(r.AssetNumber),
		IsAlive:           r.IsAlive,
		ProtocolAvailable: r.ProtocolAvailable,
		System: domain.SystemInfo{
			Description: nullToString(r.Description),
			Name:        nullToString(r.Name),
			Contact:     nullToString(r.Contact),
			ObjectID:    nullToString(r.ObjectID),
			Location:    nullToString(r.Location),
		},
	}

	var err error
	if dev.LastSeen, err = nullToTimePtr(r.LastSeen); err != nil {
		return nil, fmt.Errorf("parse last_seen: %w", err)
	}
	if dev.CreatedAt, err = parseTime(r.CreatedAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if dev.UpdatedAt, err = parseTime(r.UpdatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return dev, nil
}

// deviceColumns is the SELECT column list for device queries
const deviceColumns = `id, ip_address, hostname, department_id, unit_id, user_name,
	auto_assigned, last_seen, asset_number, is_alive, protocol_available,
	system_description, system_name, system_contact, system_object_id, system_location,
	created_at, updated_at`

// ============================================================================
// Organization Row Scanners
// ============================================================================

// departmentColumns is the SELECT column list for department queries
const departmentColumns = `id, name, description, is_sentinel`

// scanDepartment reads one department row
func scanDepartment(s interface{ Scan(...any) error }) (*domain.Department, error) {
	var (
		d           domain.Department
		description sql.NullString
	)
	if err := s.Scan(&d.ID, &d.Name, &description, &d.IsSentinel); err != nil {
		return nil, err
	}
	d.Description = nullToString(description)
	return &d, nil
}

// unitColumns is the SELECT column list for unit queries
const unitColumns = `id, name, description, department_id, keywords, is_sentinel`

// scanUnit reads one unit row
func scanUnit(s interface{ Scan(...any) error }) (*domain.Unit, error) {
	var (
		u           domain.Unit
		description sql.NullString
	)
	if err := s.Scan(&u.ID, &u.Name, &description, &u.DepartmentID, &u.Keywords, &u.IsSentinel); err != nil {
		return nil, err
	}
	u.Description = nullToString(description)
	return &u, nil
}
