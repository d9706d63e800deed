package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const roleColumns = `r.id, r.name, r.display_name, COALESCE(r.description, ''), r.is_system, r.created_at, r.updated_at`

func scanRole(row pgx.Row, extra ...any) (Role, error) {
	var r Role
	dest := append([]any{&r.ID, &r.Name, &r.DisplayName, &r.Description, &r.IsSystem, &r.CreatedAt, &r.UpdatedAt}, extra...)
	err := row.Scan(dest...)
	return r, mapErr(err)
}

func collectRoles(rows pgx.Rows, err error) ([]Role, error) {
	if err != nil {
		return nil, mapErr(err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Role, error) {
		return scanRole(row)
	})
}

func (p *Postgres) ListRoles(ctx context.Context) ([]Role, error) {
	rows, err := p.db.Query(ctx, `
		SELECT `+roleColumns+`,
			(SELECT count(*) FROM role_permissions rp WHERE rp.role_id = r.id),
			(SELECT count(*) FROM user_roles ur WHERE ur.role_id = r.id)
		FROM roles r
		ORDER BY r.name`)
	if err != nil {
		return nil, mapErr(err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Role, error) {
		var perms, users int
		r, err := scanRole(row, &perms, &users)
		r.PermissionCount, r.UserCount = perms, users
		return r, err
	})
}

func (p *Postgres) RoleByID(ctx context.Context, id string) (Role, error) {
	if uuid.Validate(id) != nil {
		return Role{}, ErrNotFound
	}
	return scanRole(p.db.QueryRow(ctx, `SELECT `+roleColumns+` FROM roles r WHERE r.id = $1`, id))
}

func (p *Postgres) RoleByName(ctx context.Context, name string) (Role, error) {
	return scanRole(p.db.QueryRow(ctx, `SELECT `+roleColumns+` FROM roles r WHERE r.name = $1`, name))
}

func (p *Postgres) CreateRole(ctx context.Context, params RoleParams) (Role, error) {
	return scanRole(p.db.QueryRow(ctx, `
		WITH r AS (
			INSERT INTO roles (id, name, display_name, description, is_system)
			VALUES ($1, $2, $3, NULLIF($4, ''), $5)
			RETURNING *
		)
		SELECT `+roleColumns+` FROM r`,
		uuid.NewString(), params.Name, params.DisplayName, params.Description, params.IsSystem))
}

// UpdateRole never renames a system role.
func (p *Postgres) UpdateRole(ctx context.Context, id string, params RoleParams) error {
	if uuid.Validate(id) != nil {
		return ErrNotFound
	}
	tag, err := p.db.Exec(ctx, `
		UPDATE roles SET
			name = CASE WHEN is_system THEN name ELSE $2 END,
			display_name = $3,
			description = NULLIF($4, ''),
			updated_at = now()
		WHERE id = $1`, id, params.Name, params.DisplayName, params.Description)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) DeleteRole(ctx context.Context, id string) (bool, error) {
	if uuid.Validate(id) != nil {
		return false, nil
	}
	tag, err := p.db.Exec(ctx, `DELETE FROM roles WHERE id = $1 AND NOT is_system`, id)
	if err != nil {
		return false, mapErr(err)
	}
	return tag.RowsAffected() > 0, nil
}

func (p *Postgres) RolePermissionIDs(ctx context.Context, roleID string) ([]string, error) {
	rows, err := p.db.Query(ctx, `SELECT permission_id::text FROM role_permissions WHERE role_id = $1`, roleID)
	if err != nil {
		return nil, mapErr(err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (p *Postgres) SetRolePermissions(ctx context.Context, roleID string, permissionIDs []string) error {
	return p.Tx(ctx, func(s Store, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, roleID); err != nil {
			return mapErr(err)
		}
		return s.GrantPermissions(ctx, roleID, permissionIDs)
	})
}

func (p *Postgres) GrantPermissions(ctx context.Context, roleID string, permissionIDs []string) error {
	if len(permissionIDs) == 0 {
		return nil
	}
	for _, id := range permissionIDs {
		if uuid.Validate(id) != nil {
			return ErrNotFound
		}
	}
	_, err := p.db.Exec(ctx, `
		INSERT INTO role_permissions (role_id, permission_id)
		SELECT $1, unnest($2::text[])::uuid
		ON CONFLICT DO NOTHING`, roleID, permissionIDs)
	return mapErr(err)
}

func (p *Postgres) AssignRole(ctx context.Context, userID, roleID string) error {
	_, err := p.db.Exec(ctx, `
		INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING`, userID, roleID)
	return mapErr(err)
}

func (p *Postgres) UserRoles(ctx context.Context, userID string) ([]Role, error) {
	return collectRoles(p.db.Query(ctx, `
		SELECT `+roleColumns+`
		FROM roles r
		JOIN user_roles ur ON ur.role_id = r.id
		WHERE ur.user_id = $1
		ORDER BY r.name`, userID))
}

const permissionColumns = `p.id, p.name, p.resource, p.action, p.display_name, COALESCE(p.description, ''), p.created_at, p.updated_at`

func scanPermission(row pgx.Row, extra ...any) (Permission, error) {
	var pm Permission
	dest := append([]any{&pm.ID, &pm.Name, &pm.Resource, &pm.Action, &pm.DisplayName, &pm.Description, &pm.CreatedAt, &pm.UpdatedAt}, extra...)
	err := row.Scan(dest...)
	return pm, mapErr(err)
}

func (p *Postgres) ListPermissions(ctx context.Context) ([]Permission, error) {
	rows, err := p.db.Query(ctx, `
		SELECT `+permissionColumns+`,
			(SELECT count(*) FROM role_permissions rp WHERE rp.permission_id = p.id)
		FROM permissions p
		ORDER BY p.resource, p.action`)
	if err != nil {
		return nil, mapErr(err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Permission, error) {
		var roles int
		pm, err := scanPermission(row, &roles)
		pm.RoleCount = roles
		return pm, err
	})
}

func (p *Postgres) PermissionByID(ctx context.Context, id string) (Permission, error) {
	if uuid.Validate(id) != nil {
		return Permission{}, ErrNotFound
	}
	return scanPermission(p.db.QueryRow(ctx, `SELECT `+permissionColumns+` FROM permissions p WHERE p.id = $1`, id))
}

func (p *Postgres) PermissionByName(ctx context.Context, name string) (Permission, error) {
	return scanPermission(p.db.QueryRow(ctx, `SELECT `+permissionColumns+` FROM permissions p WHERE p.name = $1`, name))
}

func (p *Postgres) CreatePermission(ctx context.Context, params PermissionParams) (Permission, error) {
	return scanPermission(p.db.QueryRow(ctx, `
		WITH p AS (
			INSERT INTO permissions (id, name, resource, action, display_name, description)
			VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))
			RETURNING *
		)
		SELECT `+permissionColumns+` FROM p`,
		uuid.NewString(), params.Name(), params.Resource, params.Action, params.DisplayName, params.Description))
}

func (p *Postgres) UpdatePermission(ctx context.Context, id string, params PermissionParams) error {
	if uuid.Validate(id) != nil {
		return ErrNotFound
	}
	tag, err := p.db.Exec(ctx, `
		UPDATE permissions SET
			name = $2, resource = $3, action = $4,
			display_name = $5, description = NULLIF($6, ''),
			updated_at = now()
		WHERE id = $1`,
		id, params.Name(), params.Resource, params.Action, params.DisplayName, params.Description)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) DeletePermission(ctx context.Context, id string) error {
	if uuid.Validate(id) != nil {
		return ErrNotFound
	}
	tag, err := p.db.Exec(ctx, `DELETE FROM permissions WHERE id = $1`, id)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) PermissionRoles(ctx context.Context, permissionID string) ([]Role, error) {
	return collectRoles(p.db.Query(ctx, `
		SELECT `+roleColumns+`
		FROM roles r
		JOIN role_permissions rp ON rp.role_id = r.id
		WHERE rp.permission_id = $1
		ORDER BY r.name`, permissionID))
}

func (p *Postgres) UserPermissions(ctx context.Context, userID string) ([]string, error) {
	rows, err := p.db.Query(ctx, `
		SELECT DISTINCT p.name
		FROM permissions p
		JOIN role_permissions rp ON rp.permission_id = p.id
		JOIN user_roles ur ON ur.role_id = rp.role_id
		WHERE ur.user_id = $1
		ORDER BY p.name`, userID)
	if err != nil {
		return nil, mapErr(err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}
