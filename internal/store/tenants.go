package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"gastino/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// TenantByChannelID loads a tenant and its active departments by the
// messaging channel identifier. Returns ErrNotFound for unknown channels.
func (s *Store) TenantByChannelID(ctx context.Context, channelID string) (*models.TenantSnapshot, error) {
	var t models.Tenant
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, type, channel_id, channel_number, languages, timezone,
		       system_context, menu_context, faq_context, active, created_at
		FROM tenants
		WHERE channel_id = $1 AND active = TRUE`, channelID).Scan(
		&t.ID, &t.Name, &t.Type, &t.ChannelID, &t.ChannelNumber,
		pq.Array(&t.Languages), &t.Timezone,
		&t.SystemContext, &t.MenuContext, &t.FAQContext, &t.Active, &t.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	deps, err := s.ListDepartments(ctx, t.ID)
	if err != nil {
		return nil, err
	}

	return &models.TenantSnapshot{Tenant: t, Departments: deps}, nil
}

// TenantByID loads a tenant by primary key.
func (s *Store) TenantByID(ctx context.Context, id string) (*models.Tenant, error) {
	var t models.Tenant
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, type, channel_id, channel_number, languages, timezone,
		       system_context, menu_context, faq_context, active, created_at
		FROM tenants
		WHERE id = $1`, id).Scan(
		&t.ID, &t.Name, &t.Type, &t.ChannelID, &t.ChannelNumber,
		pq.Array(&t.Languages), &t.Timezone,
		&t.SystemContext, &t.MenuContext, &t.FAQContext, &t.Active, &t.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTenants returns all tenants, newest first.
func (s *Store) ListTenants(ctx context.Context) ([]models.Tenant, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, type, channel_id, channel_number, languages, timezone,
		       system_context, menu_context, faq_context, active, created_at
		FROM tenants
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenants []models.Tenant
	for rows.Next() {
		var t models.Tenant
		if err := rows.Scan(
			&t.ID, &t.Name, &t.Type, &t.ChannelID, &t.ChannelNumber,
			pq.Array(&t.Languages), &t.Timezone,
			&t.SystemContext, &t.MenuContext, &t.FAQContext, &t.Active, &t.CreatedAt,
		); err != nil {
			return nil, err
		}
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}

// CreateTenant inserts a tenant, assigning id and created_at when unset.
func (s *Store) CreateTenant(ctx context.Context, t *models.Tenant) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tenants (id, name, type, channel_id, channel_number, languages,
		                     timezone, system_context, menu_context, faq_context, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		t.ID, t.Name, t.Type, t.ChannelID, t.ChannelNumber, pq.Array(t.Languages),
		t.Timezone, t.SystemContext, t.MenuContext, t.FAQContext, t.Active, t.CreatedAt,
	)
	return err
}

// UpdateTenant replaces the mutable tenant fields.
func (s *Store) UpdateTenant(ctx context.Context, t *models.Tenant) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE tenants
		SET name = $2, type = $3, channel_id = $4, channel_number = $5, languages = $6,
		    timezone = $7, system_context = $8, menu_context = $9, faq_context = $10, active = $11
		WHERE id = $1`,
		t.ID, t.Name, t.Type, t.ChannelID, t.ChannelNumber, pq.Array(t.Languages),
		t.Timezone, t.SystemContext, t.MenuContext, t.FAQContext, t.Active,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListDepartments returns the tenant's active departments in tenant-defined
// order. Routing tie-breaks rely on this ordering.
func (s *Store) ListDepartments(ctx context.Context, tenantID string) ([]models.Department, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tenant_id, name, display_name, group_channel_id, hours,
		       COALESCE(fallback_dept_id::text, ''), is_escalation, position, active
		FROM departments
		WHERE tenant_id = $1 AND active = TRUE
		ORDER BY position, name`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deps []models.Department
	for rows.Next() {
		var d models.Department
		var hoursRaw []byte
		if err := rows.Scan(
			&d.ID, &d.TenantID, &d.Name, &d.DisplayName, &d.GroupChannelID,
			&hoursRaw, &d.FallbackDeptID, &d.IsEscalation, &d.Position, &d.Active,
		); err != nil {
			return nil, err
		}
		if len(hoursRaw) > 0 {
			if err := json.Unmarshal(hoursRaw, &d.Hours); err != nil {
				return nil, err
			}
		}
		deps = append(deps, d)
	}
	return deps, rows.Err()
}

// CreateDepartment inserts a department, assigning an id when unset.
func (s *Store) CreateDepartment(ctx context.Context, d *models.Department) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	hoursRaw, err := json.Marshal(d.Hours)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO departments (id, tenant_id, name, display_name, group_channel_id,
		                         hours, fallback_dept_id, is_escalation, position, active)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, '')::uuid, $8, $9, $10)`,
		d.ID, d.TenantID, d.Name, d.DisplayName, d.GroupChannelID,
		hoursRaw, d.FallbackDeptID, d.IsEscalation, d.Position, d.Active,
	)
	return err
}

// UpdateDepartment replaces the mutable department fields.
func (s *Store) UpdateDepartment(ctx context.Context, d *models.Department) error {
	hoursRaw, err := json.Marshal(d.Hours)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE departments
		SET name = $2, display_name = $3, group_channel_id = $4, hours = $5,
		    fallback_dept_id = NULLIF($6, '')::uuid, is_escalation = $7, position = $8, active = $9
		WHERE id = $1`,
		d.ID, d.Name, d.DisplayName, d.GroupChannelID, hoursRaw,
		d.FallbackDeptID, d.IsEscalation, d.Position, d.Active,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
