package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"netinventory/internal/domain"
)

// UpsertDevice inserts or merges a device keyed by IP address and sets dev.ID.
// An existing asset number is kept when dev carries none. created reports whether
// a new row was inserted.
func (r *Repository) UpsertDevice(ctx context.Context, dev *domain.Device) (created bool, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var existingID int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM devices WHERE ip_address = ?`, dev.IPAddress).Scan(&existingID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		created = true
	case err != nil:
		return false, fmt.Errorf("failed to query device: %w", err)
	}

	now := r.timestamp()
	var createdAt, updatedAt string
	err = tx.QueryRowContext(ctx, `
		INSERT INTO devices (ip_address, hostname, department_id, unit_id, user_name,
			auto_assigned, last_seen, asset_number, is_alive, protocol_available,
			system_description, system_name, system_contact, system_object_id, system_location,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(ip_address) DO UPDATE SET
			hostname = excluded.hostname,
			department_id = excluded.department_id,
			unit_id = excluded.unit_id,
			user_name = excluded.user_name,
			auto_assigned = excluded.auto_assigned,
			last_seen = COALESCE(excluded.last_seen, devices.last_seen),
			asset_number = COALESCE(excluded.asset_number, devices.asset_number),
			is_alive = excluded.is_alive,
			protocol_available = excluded.protocol_available,
			system_description = excluded.system_description,
			system_name = excluded.system_name,
			system_contact = excluded.system_contact,
			system_object_id = excluded.system_object_id,
			system_location = excluded.system_location,
			updated_at = excluded.updated_at
		RETURNING id, created_at, updated_at
	`,
		dev.IPAddress, dev.Hostname, dev.DepartmentID, dev.UnitID, dev.UserName,
		boolToInt(dev.AutoAssigned), timePtrToNull(dev.LastSeen), stringToNull(dev.AssetNumber),
		boolToInt(dev.IsAlive), boolToInt(dev.ProtocolAvailable),
		stringToNull(dev.System.Description), stringToNull(dev.System.Name),
		stringToNull(dev.System.Contact), stringToNull(dev.System.ObjectID),
		stringToNull(dev.System.Location),
		now, now,
	).Scan(&dev.ID, &createdAt, &updatedAt)
	if err != nil {
		return false, fmt.Errorf("failed to upsert device %s: %w", dev.IPAddress, err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if dev.CreatedAt, err = parseTime(createdAt); err != nil {
		return created, fmt.Errorf("parse created_at: %w", err)
	}
	if dev.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return created, fmt.Errorf("parse updated_at: %w", err)
	}
	return created, nil
}

// GetDevice retrieves a device by ID, or nil if none exists
func (r *Repository) GetDevice(ctx context.Context, id int64) (*domain.Device, error) {
	return r.getDevice(ctx, `id = ?`, id)
}

// GetDeviceByIP retrieves a device by IP address, or nil if none exists
func (r *Repository) GetDeviceByIP(ctx context.Context, ip string) (*domain.Device, error) {
	return r.getDevice(ctx, `ip_address = ?`, ip)
}

func (r *Repository) getDevice(ctx context.Context, where string, arg interface{}) (*domain.Device, error) {
	var row deviceRow
	err := r.db.QueryRowContext(ctx,
		`SELECT `+deviceColumns+` FROM devices WHERE `+where, arg,
	).Scan(row.scanArgs()...)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query device: %w", err)
	}
	return row.toDomain()
}

// ListDevices returns every registered device ordered by ID
func (r *Repository) ListDevices(ctx context.Context) ([]domain.Device, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+deviceColumns+` FROM devices ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query devices: %w", err)
	}
	defer rows.Close()

	var devices []domain.Device
	for rows.Next() {
		var row deviceRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan device: %w", err)
		}
		dev, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		devices = append(devices, *dev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating devices: %w", err)
	}
	return devices, nil
}

// CountDevices returns the size of the asset registry
func (r *Repository) CountDevices(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM devices`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count devices: %w", err)
	}
	return n, nil
}

// RecordLiveness stores a re-check verdict. last_seen moves only when the device
// answered. A history row is appended only when the stored liveness flips;
// changed reports whether that happened.
func (r *Repository) RecordLiveness(ctx context.Context, deviceID int64, alive bool, at time.Time) (changed bool, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var previous bool
	err = tx.QueryRowContext(ctx, `SELECT is_alive FROM devices WHERE id = ?`, deviceID).Scan(&previous)
	if errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("device %d: %w", deviceID, domain.ErrNotFound)
	}
	if err != nil {
		return false, fmt.Errorf("failed to query device liveness: %w", err)
	}

	ts := formatTime(at)
	if _, err := tx.ExecContext(ctx, `
		UPDATE devices SET
			is_alive = ?,
			last_seen = CASE WHEN ? = 1 THEN ? ELSE last_seen END,
			updated_at = ?
		WHERE id = ?
	`, boolToInt(alive), boolToInt(alive), ts, r.timestamp(), deviceID); err != nil {
		return false, fmt.Errorf("failed to update device liveness: %w", err)
	}

	changed = previous != alive
	if changed {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO device_status_history (device_id, status, changed_at)
			VALUES (?, ?, ?)
		`, deviceID, string(domain.StatusFromAlive(alive)), ts); err != nil {
			return false, fmt.Errorf("failed to append status history: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return changed, nil
}

// ListStatusHistory returns the ledger of a device, newest transition first
func (r *Repository) ListStatusHistory(ctx context.Context, deviceID int64) ([]domain.StatusHistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, device_id, status, changed_at FROM device_status_history
		WHERE device_id = ?
		ORDER BY changed_at DESC, id DESC
	`, deviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query status history: %w", err)
	}
	defer rows.Close()

	var entries []domain.StatusHistoryEntry
	for rows.Next() {
		var (
			e         domain.StatusHistoryEntry
			status    string
			changedAt string
		)
		if err := rows.Scan(&e.ID, &e.DeviceID, &status, &changedAt); err != nil {
			return nil, fmt.Errorf("failed to scan status history: %w", err)
		}
		e.Status = domain.DeviceStatus(status)
		if e.ChangedAt, err = parseTime(changedAt); err != nil {
			return nil, fmt.Errorf("parse changed_at: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating status history: %w", err)
	}
	return entries, nil
}

// CountStatusHistory returns the number of ledger rows
func (r *Repository) CountStatusHistory(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM device_status_history`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count status history: %w", err)
	}
	return n, nil
}

// PruneStatusHistory deletes ledger rows changed strictly before cutoff
func (r *Repository) PruneStatusHistory(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM device_status_history WHERE changed_at < ?`, formatTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("failed to prune status history: %w", err)
	}
	return res.RowsAffected()
}
