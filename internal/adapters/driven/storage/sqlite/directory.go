package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/tradematch/internal/core/domain"
	"github.com/custodia-labs/tradematch/internal/core/ports/driven"
)

// Ensure Directory implements the interface.
var _ driven.DirectoryWriter = (*Directory)(nil)

// Directory implements driven.DirectoryWriter on the owners, roles,
// owner_roles and availability tables.
type Directory struct {
	db *sql.DB
}

// GetOwner returns the owner or domain.ErrNotFound.
func (d *Directory) GetOwner(ctx context.Context, id string) (*domain.Owner, error) {
	var o domain.Owner
	err := d.db.QueryRowContext(ctx, `
		SELECT id, name, verified, average_rating, supplier FROM owners WHERE id = ?
	`, id).Scan(&o.ID, &o.Name, &o.Verified, &o.AverageRating, &o.Supplier)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying owner: %w", err)
	}
	return &o, nil
}

// SaveOwner inserts or updates an owner.
func (d *Directory) SaveOwner(ctx context.Context, owner domain.Owner) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO owners (id, name, verified, average_rating, supplier, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			verified = excluded.verified,
			average_rating = excluded.average_rating,
			supplier = excluded.supplier,
			updated_at = excluded.updated_at
	`, owner.ID, owner.Name, owner.Verified, owner.AverageRating, owner.Supplier, time.Now())
	if err != nil {
		return fmt.Errorf("saving owner: %w", err)
	}
	return nil
}

// DeleteOwner removes an owner with its role links and availability.
func (d *Directory) DeleteOwner(ctx context.Context, id string) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM owner_roles WHERE owner_id = ?`, id); err != nil {
		return fmt.Errorf("deleting owner roles: %w", err)
	}
	// availability cascades
	if _, err := tx.ExecContext(ctx, `DELETE FROM owners WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting owner: %w", err)
	}
	return tx.Commit()
}

// ListRoles returns every role ordered by name.
func (d *Directory) ListRoles(ctx context.Context) ([]domain.Role, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT name, description FROM roles ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("querying roles: %w", err)
	}
	defer rows.Close()

	roles := []domain.Role{}
	for rows.Next() {
		var r domain.Role
		if err := rows.Scan(&r.Name, &r.Description); err != nil {
			return nil, fmt.Errorf("scanning role: %w", err)
		}
		roles = append(roles, r)
	}
	return roles, rows.Err()
}

// GetRole returns the role or domain.ErrNotFound.
func (d *Directory) GetRole(ctx context.Context, name string) (*domain.Role, error) {
	var r domain.Role
	err := d.db.QueryRowContext(ctx, `SELECT name, description FROM roles WHERE name = ?`,
		domain.NormaliseRoleName(name)).Scan(&r.Name, &r.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying role: %w", err)
	}
	return &r, nil
}

// EnsureRole inserts role unless one with the same name exists.
func (d *Directory) EnsureRole(ctx context.Context, role domain.Role) (bool, error) {
	role.Name = domain.NormaliseRoleName(role.Name)
	if role.Name == "" {
		return false, domain.ErrInvalidInput
	}
	res, err := d.db.ExecContext(ctx, `
		INSERT INTO roles (name, description) VALUES (?, ?) ON CONFLICT(name) DO NOTHING
	`, role.Name, role.Description)
	if err != nil {
		return false, fmt.Errorf("saving role: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("saving role: %w", err)
	}
	return n > 0, nil
}

// LinkOwnerRole associates an owner with an existing role.
func (d *Directory) LinkOwnerRole(ctx context.Context, ownerID, role string) error {
	role = domain.NormaliseRoleName(role)
	if _, err := d.GetRole(ctx, role); err != nil {
		return err
	}
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO owner_roles (owner_id, role_name) VALUES (?, ?) ON CONFLICT DO NOTHING
	`, ownerID, role)
	if err != nil {
		return fmt.Errorf("linking owner role: %w", err)
	}
	return nil
}

// OwnerRoles returns the sorted role names linked to an owner.
func (d *Directory) OwnerRoles(ctx context.Context, ownerID string) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT role_name FROM owner_roles WHERE owner_id = ? ORDER BY role_name
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("querying owner roles: %w", err)
	}
	defer rows.Close()

	roles := []string{}
	for rows.Next() {
		var r string
		if err := rows.Scan(&r); err != nil {
			return nil, fmt.Errorf("scanning owner role: %w", err)
		}
		roles = append(roles, r)
	}
	return roles, rows.Err()
}

// SetAvailability replaces the owner's availability slots.
func (d *Directory) SetAvailability(ctx context.Context, ownerID string, slots []domain.TimeWindow) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM availability WHERE owner_id = ?`, ownerID); err != nil {
		return fmt.Errorf("clearing availability: %w", err)
	}
	for _, slot := range slots {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO availability (owner_id, day, start_minute, end_minute) VALUES (?, ?, ?, ?)
		`, ownerID, int(slot.Day), slot.Start, slot.End); err != nil {
			return fmt.Errorf("saving availability: %w", err)
		}
	}
	return tx.Commit()
}

// IsAvailable reports whether any slot covers window.
func (d *Directory) IsAvailable(ctx context.Context, ownerID string, window domain.TimeWindow) (bool, error) {
	var ok bool
	err := d.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM availability
			WHERE owner_id = ? AND day = ? AND start_minute <= ? AND end_minute >= ?
		)
	`, ownerID, int(window.Day), window.Start, window.End).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("querying availability: %w", err)
	}
	return ok, nil
}
