package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"netinventory/internal/domain"
)

// UnknownDepartment returns the sentinel department. It fails with
// domain.ErrSentinelMissing if the seeded row has been removed.
func (r *Repository) UnknownDepartment(ctx context.Context) (*domain.Department, error) {
	d, err := scanDepartment(r.db.QueryRowContext(ctx,
		`SELECT `+departmentColumns+` FROM departments WHERE is_sentinel = 1 ORDER BY id LIMIT 1`))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSentinelMissing
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query sentinel department: %w", err)
	}
	return d, nil
}

// GetDepartment retrieves a department by ID, or nil if none exists
func (r *Repository) GetDepartment(ctx context.Context, id int64) (*domain.Department, error) {
	d, err := scanDepartment(r.db.QueryRowContext(ctx,
		`SELECT `+departmentColumns+` FROM departments WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query department: %w", err)
	}
	return d, nil
}

// FindDepartmentByName looks a department up case-insensitively, or nil if none exists
func (r *Repository) FindDepartmentByName(ctx context.Context, name string) (*domain.Department, error) {
	d, err := scanDepartment(r.db.QueryRowContext(ctx,
		`SELECT `+departmentColumns+` FROM departments WHERE name = ? COLLATE NOCASE`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query department: %w", err)
	}
	return d, nil
}

// ListDepartments returns every department ordered by ID
func (r *Repository) ListDepartments(ctx context.Context) ([]domain.Department, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+departmentColumns+` FROM departments ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query departments: %w", err)
	}
	defer rows.Close()

	var departments []domain.Department
	for rows.Next() {
		d, err := scanDepartment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan department: %w", err)
		}
		departments = append(departments, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating departments: %w", err)
	}
	return departments, nil
}

// UpsertDepartment inserts or updates a department by name and sets d.ID
func (r *Repository) UpsertDepartment(ctx context.Context, d *domain.Department) error {
	if domain.IsReservedDepartmentName(d.Name) {
		return fmt.Errorf("department %q: %w", d.Name, domain.ErrReservedName)
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO departments (name, description, is_sentinel)
		VALUES (?, ?, 0)
		ON CONFLICT(name) DO UPDATE SET description = excluded.description
		RETURNING id, is_sentinel
	`, d.Name, stringToNull(d.Description)).Scan(&d.ID, &d.IsSentinel)
	if err != nil {
		return fmt.Errorf("failed to upsert department %s: %w", d.Name, err)
	}
	return nil
}

// EnsureUnknownUnit returns the sentinel unit of a department, creating it on first
// use. Concurrent callers converge on the same row through idx_units_sentinel.
func (r *Repository) EnsureUnknownUnit(ctx context.Context, departmentID int64) (*domain.Unit, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO units (name, description, department_id, keywords, is_sentinel)
		VALUES (?, ?, ?, ?, 1)
	`, domain.UnknownUnitName, "Fallback unit for unclassified equipment", departmentID, domain.SentinelUnitKeywords)
	if err != nil {
		return nil, fmt.Errorf("failed to create sentinel unit for department %d: %w", departmentID, err)
	}

	u, err := scanUnit(r.db.QueryRowContext(ctx,
		`SELECT `+unitColumns+` FROM units WHERE department_id = ? AND is_sentinel = 1`, departmentID))
	if errors.Is(err, sql.ErrNoRows) {
		// an ordinary unit written before reserved names were rejected holds the slot
		u, err = scanUnit(r.db.QueryRowContext(ctx, `
			UPDATE units SET is_sentinel = 1
			WHERE department_id = ? AND name = ? AND is_sentinel = 0
			RETURNING `+unitColumns, departmentID, domain.UnknownUnitName))
	}
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sentinel unit for department %d: %w", departmentID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query sentinel unit: %w", err)
	}
	return u, nil
}

// GetUnit retrieves a unit by ID, or nil if none exists
func (r *Repository) GetUnit(ctx context.Context, id int64) (*domain.Unit, error) {
	u, err := scanUnit(r.db.QueryRowContext(ctx, `SELECT `+unitColumns+` FROM units WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query unit: %w", err)
	}
	return u, nil
}

// ListUnits returns the units of a department ordered by ID, including its
// sentinel. departmentID 0 lists every unit.
func (r *Repository) ListUnits(ctx context.Context, departmentID int64) ([]domain.Unit, error) {
	query := `SELECT ` + unitColumns + ` FROM units`
	var args []interface{}
	if departmentID != 0 {
		query += ` WHERE department_id = ?`
		args = append(args, departmentID)
	}
	query += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query units: %w", err)
	}
	defer rows.Close()

	var units []domain.Unit
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan unit: %w", err)
		}
		units = append(units, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating units: %w", err)
	}
	return units, nil
}

// UpsertUnit inserts or updates a unit by (department, name) and sets u.ID
func (r *Repository) UpsertUnit(ctx context.Context, u *domain.Unit) error {
	if domain.IsReservedUnitName(u.Name) {
		return fmt.Errorf("unit %q: %w", u.Name, domain.ErrReservedName)
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO units (name, description, department_id, keywords, is_sentinel)
		VALUES (?, ?, ?, ?, 0)
		ON CONFLICT(department_id, name) DO UPDATE SET
			description = excluded.description,
			keywords = excluded.keywords
		RETURNING id, is_sentinel
	`, u.Name, stringToNull(u.Description), u.DepartmentID, u.Keywords).Scan(&u.ID, &u.IsSentinel)
	if err != nil {
		return fmt.Errorf("failed to upsert unit %s: %w", u.Name, err)
	}
	return nil
}

// ListIPRanges returns every configured IP range ordered by ID
func (r *Repository) ListIPRanges(ctx context.Context) ([]domain.IPRange, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, cidr, department_id, description FROM ip_ranges ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query ip ranges: %w", err)
	}
	defer rows.Close()

	var ranges []domain.IPRange
	for rows.Next() {
		var (
			ipr         domain.IPRange
			description sql.NullString
		)
		if err := rows.Scan(&ipr.ID, &ipr.CIDR, &ipr.DepartmentID, &description); err != nil {
			return nil, fmt.Errorf("failed to scan ip range: %w", err)
		}
		ipr.Description = nullToString(description)
		ranges = append(ranges, ipr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ip ranges: %w", err)
	}
	return ranges, nil
}

// UpsertIPRange inserts or reassigns a range by CIDR and sets ipr.ID
func (r *Repository) UpsertIPRange(ctx context.Context, ipr *domain.IPRange) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO ip_ranges (cidr, department_id, description)
		VALUES (?, ?, ?)
		ON CONFLICT(cidr) DO UPDATE SET
			department_id = excluded.department_id,
			description = excluded.description
		RETURNING id
	`, ipr.CIDR, ipr.DepartmentID, stringToNull(ipr.Description)).Scan(&ipr.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert ip range %s: %w", ipr.CIDR, err)
	}
	return nil
}
