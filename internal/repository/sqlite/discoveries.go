package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"netinventory/internal/domain"
)

// UpsertDiscovery stores rec keyed by IP address. An existing row is overwritten and
// returned to pending with its error cleared, unless preserveProcessed is set and the
// row is already processed. rec.Status, CreatedAt and UpdatedAt are refreshed from
// the stored row.
func (r *Repository) UpsertDiscovery(ctx context.Context, rec *domain.DiscoveryRecord, preserveProcessed bool) error {
	now := r.timestamp()

	var status, createdAt, updatedAt string
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO discoveries (ip_address, is_alive, protocol_available,
			system_description, system_name, system_contact, system_object_id, system_location,
			discovered_at, status, error_message, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 'pending', NULL, ?, ?)
		ON CONFLICT(ip_address) DO UPDATE SET
			is_alive = excluded.is_alive,
			protocol_available = excluded.protocol_available,
			system_description = excluded.system_description,
			system_name = excluded.system_name,
			system_contact = excluded.system_contact,
			system_object_id = excluded.system_object_id,
			system_location = excluded.system_location,
			discovered_at = excluded.discovered_at,
			status = CASE WHEN ? = 1 AND discoveries.status = 'processed' THEN 'processed' ELSE 'pending' END,
			error_message = NULL,
			updated_at = excluded.updated_at
		RETURNING status, created_at, updated_at
	`,
		rec.IPAddress, boolToInt(rec.IsAlive), boolToInt(rec.ProtocolAvailable),
		stringToNull(rec.System.Description), stringToNull(rec.System.Name),
		stringToNull(rec.System.Contact), stringToNull(rec.System.ObjectID),
		stringToNull(rec.System.Location),
		formatTime(rec.DiscoveredAt), now, now,
		boolToInt(preserveProcessed),
	).Scan(&status, &createdAt, &updatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert discovery %s: %w", rec.IPAddress, err)
	}

	rec.Status = domain.DiscoveryStatus(status)
	rec.ErrorMessage = ""
	if rec.CreatedAt, err = parseTime(createdAt); err != nil {
		return fmt.Errorf("parse created_at: %w", err)
	}
	if rec.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return fmt.Errorf("parse updated_at: %w", err)
	}
	return nil
}

// GetDiscovery retrieves the staged record for ip, or nil if none exists
func (r *Repository) GetDiscovery(ctx context.Context, ip string) (*domain.DiscoveryRecord, error) {
	var row discoveryRow
	err := r.db.QueryRowContext(ctx,
		`SELECT `+discoveryColumns+` FROM discoveries WHERE ip_address = ?`, ip,
	).Scan(row.scanArgs()...)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query discovery: %w", err)
	}
	return row.toDomain()
}

// ListDiscoveriesByStatus returns every record in status, oldest discovery first
func (r *Repository) ListDiscoveriesByStatus(ctx context.Context, status domain.DiscoveryStatus) ([]domain.DiscoveryRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+discoveryColumns+` FROM discoveries
		WHERE status = ?
		ORDER BY discovered_at, ip_address
	`, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to query discoveries: %w", err)
	}
	defer rows.Close()

	return collectDiscoveries(rows)
}

// ListPendingDiscoveries returns the classifier's work queue
func (r *Repository) ListPendingDiscoveries(ctx context.Context) ([]domain.DiscoveryRecord, error) {
	return r.ListDiscoveriesByStatus(ctx, domain.DiscoveryPending)
}

// ListDiscoveries returns one page of staged records, newest discovery first
func (r *Repository) ListDiscoveries(ctx context.Context, filter domain.DiscoveryFilter) (domain.Page[domain.DiscoveryRecord], error) {
	filter.Normalize()

	where := ""
	var args []interface{}
	if filter.Status != "" {
		where = " WHERE status = ?"
		args = append(args, string(filter.Status))
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM discoveries`+where, args...).Scan(&total); err != nil {
		return domain.Page[domain.DiscoveryRecord]{}, fmt.Errorf("failed to count discoveries: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+discoveryColumns+` FROM discoveries`+where+`
		ORDER BY discovered_at DESC, ip_address
		LIMIT ? OFFSET ?`,
		append(args, filter.PageSize, filter.Offset())...,
	)
	if err != nil {
		return domain.Page[domain.DiscoveryRecord]{}, fmt.Errorf("failed to query discoveries: %w", err)
	}
	defer rows.Close()

	records, err := collectDiscoveries(rows)
	if err != nil {
		return domain.Page[domain.DiscoveryRecord]{}, err
	}
	return domain.NewPage(records, filter.Page, filter.PageSize, total), nil
}

func collectDiscoveries(rows *sql.Rows) ([]domain.DiscoveryRecord, error) {
	var records []domain.DiscoveryRecord
	for rows.Next() {
		var row discoveryRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan discovery: %w", err)
		}
		rec, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating discoveries: %w", err)
	}
	return records, nil
}

// MarkDiscoveryProcessed moves a record to processed
func (r *Repository) MarkDiscoveryProcessed(ctx context.Context, ip string) error {
	return r.setDiscoveryStatus(ctx, ip, domain.DiscoveryProcessed, "")
}

// MarkDiscoveryFailed moves a record to failed with the captured error text
func (r *Repository) MarkDiscoveryFailed(ctx context.Context, ip, message string) error {
	return r.setDiscoveryStatus(ctx, ip, domain.DiscoveryFailed, message)
}

func (r *Repository) setDiscoveryStatus(ctx context.Context, ip string, status domain.DiscoveryStatus, message string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE discoveries SET status = ?, error_message = ?, updated_at = ?
		WHERE ip_address = ?
	`, string(status), stringToNull(message), r.timestamp(), ip)
	if err != nil {
		return fmt.Errorf("failed to mark discovery %s %s: %w", ip, status, err)
	}
	return requireAffected(res, "discovery "+ip)
}

// ResetFailedDiscoveries moves every failed record back to pending
func (r *Repository) ResetFailedDiscoveries(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE discoveries SET status = 'pending', error_message = NULL, updated_at = ?
		WHERE status = 'failed'
	`, r.timestamp())
	if err != nil {
		return 0, fmt.Errorf("failed to reset failed discoveries: %w", err)
	}
	return res.RowsAffected()
}

// DeleteDiscovery removes the staged record for ip
func (r *Repository) DeleteDiscovery(ctx context.Context, ip string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM discoveries WHERE ip_address = ?`, ip)
	if err != nil {
		return fmt.Errorf("failed to delete discovery: %w", err)
	}
	return requireAffected(res, "discovery "+ip)
}

// DiscoveryStats aggregates the staging store. Records discovered at or after
// recentSince count as recent.
func (r *Repository) DiscoveryStats(ctx context.Context, recentSince time.Time) (domain.StagingStats, error) {
	var stats domain.StagingStats
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'processed' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN is_alive = 1 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN is_alive = 0 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN protocol_available = 1 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN discovered_at >= ? THEN 1 ELSE 0 END), 0)
		FROM discoveries
	`, formatTime(recentSince)).Scan(
		&stats.Total, &stats.Pending, &stats.Processed, &stats.Failed,
		&stats.Alive, &stats.Dead, &stats.ProtocolAvailable, &stats.Recent,
	)
	if err != nil {
		return stats, fmt.Errorf("failed to aggregate discoveries: %w", err)
	}
	return stats, nil
}

// PruneDiscoveries deletes records discovered strictly before cutoff
func (r *Repository) PruneDiscoveries(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM discoveries WHERE discovered_at < ?`, formatTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("failed to prune discoveries: %w", err)
	}
	return res.RowsAffected()
}

// requireAffected turns a no-op write into domain.ErrNotFound
func requireAffected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, domain.ErrNotFound)
	}
	return nil
}
