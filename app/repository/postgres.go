package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/mwm/pkg/db"
)

// DBTX is the subset of pgx the queries need.
// *pgxpool.Pool and pgx.Tx both satisfy it.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Postgres implements Store with pgx.
type Postgres struct {
	db DBTX
}

// NewPostgres creates a store on top of a pool or transaction.
func NewPostgres(conn DBTX) *Postgres {
	return &Postgres{db: conn}
}

// Tx runs fn in a transaction, or in a savepoint when p is already
// transactional.
func (p *Postgres) Tx(ctx context.Context, fn func(s Store, tx pgx.Tx) error) error {
	return db.WithTx(ctx, p.db, func(tx pgx.Tx) error {
		return fn(&Postgres{db: tx}, tx)
	})
}

// mapErr turns driver errors into the package sentinels.
func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case db.IsNotFound(err):
		return ErrNotFound
	case db.IsUniqueViolation(err):
		return fmt.Errorf("%w: %s", ErrConflict, db.ConstraintName(err))
	case db.IsForeignKeyViolation(err):
		return fmt.Errorf("%w: %s", ErrNotFound, db.ConstraintName(err))
	}
	return err
}

const userColumns = `id, email, name, avatar_url, is_superadmin, is_active, last_login_at, created_at, updated_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.AvatarURL, &u.IsSuperadmin, &u.IsActive,
		&u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt)
	return u, mapErr(err)
}

func (p *Postgres) CreateUser(ctx context.Context, params CreateUserParams) (User, error) {
	var u User
	err := p.Tx(ctx, func(_ Store, tx pgx.Tx) error {
		var err error
		u, err = scanUser(tx.QueryRow(ctx, `
			INSERT INTO users (id, email, name, is_superadmin)
			VALUES ($1, $2, $3, $4)
			RETURNING `+userColumns,
			uuid.NewString(), params.Email, params.Name, params.IsSuperadmin,
		))
		if err != nil {
			return err
		}
		if params.PasswordHash == "" {
			return nil
		}
		_, err = tx.Exec(ctx, `INSERT INTO credentials (user_id, password_hash) VALUES ($1, $2)`, u.ID, params.PasswordHash)
		return mapErr(err)
	})
	if err != nil {
		return User{}, err
	}
	return u, nil
}

func (p *Postgres) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := p.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY email`)
	if err != nil {
		return nil, mapErr(err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (User, error) {
		return scanUser(row)
	})
}

func (p *Postgres) UserByID(ctx context.Context, id string) (User, error) {
	if uuid.Validate(id) != nil {
		return User{}, ErrNotFound
	}
	return scanUser(p.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (p *Postgres) UserByEmail(ctx context.Context, email string) (User, error) {
	return scanUser(p.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (p *Postgres) PasswordHash(ctx context.Context, userID string) (string, error) {
	var hash string
	err := p.db.QueryRow(ctx, `SELECT password_hash FROM credentials WHERE user_id = $1`, userID).Scan(&hash)
	return hash, mapErr(err)
}

func (p *Postgres) SetPassword(ctx context.Context, userID, hash string) error {
	_, err := p.db.Exec(ctx, `
		INSERT INTO credentials (user_id, password_hash) VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET password_hash = EXCLUDED.password_hash, updated_at = now()`,
		userID, hash)
	return mapErr(err)
}

func (p *Postgres) UpdateProfile(ctx context.Context, id, name, avatarURL string) (User, error) {
	if uuid.Validate(id) != nil {
		return User{}, ErrNotFound
	}
	return scanUser(p.db.QueryRow(ctx, `
		UPDATE users SET name = $2, avatar_url = $3, updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns, id, name, avatarURL))
}

func (p *Postgres) RecordLogin(ctx context.Context, id string, at time.Time) error {
	tag, err := p.db.Exec(ctx, `UPDATE users SET last_login_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const orgColumns = `id, name, slug, owner_id, created_at`

func scanOrganization(row pgx.Row) (Organization, error) {
	var o Organization
	err := row.Scan(&o.ID, &o.Name, &o.Slug, &o.OwnerID, &o.CreatedAt)
	return o, mapErr(err)
}

// CreateOrganization also makes the owner a member.
func (p *Postgres) CreateOrganization(ctx context.Context, name, slug, ownerID string) (Organization, error) {
	var o Organization
	err := p.Tx(ctx, func(s Store, tx pgx.Tx) error {
		var err error
		o, err = scanOrganization(tx.QueryRow(ctx, `
			INSERT INTO organizations (id, name, slug, owner_id)
			VALUES ($1, $2, $3, $4)
			RETURNING `+orgColumns, uuid.NewString(), name, slug, ownerID))
		if err != nil {
			return err
		}
		return s.AddMember(ctx, o.ID, ownerID)
	})
	if err != nil {
		return Organization{}, err
	}
	return o, nil
}

func (p *Postgres) OrganizationBySlug(ctx context.Context, slug string) (Organization, error) {
	return scanOrganization(p.db.QueryRow(ctx, `SELECT `+orgColumns+` FROM organizations WHERE slug = $1`, slug))
}

func (p *Postgres) AddMember(ctx context.Context, orgID, userID string) error {
	_, err := p.db.Exec(ctx, `
		INSERT INTO organization_members (organization_id, user_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING`, orgID, userID)
	return mapErr(err)
}

func (p *Postgres) OrganizationsForUser(ctx context.Context, userID string) ([]Organization, error) {
	rows, err := p.db.Query(ctx, `
		SELECT o.id, o.name, o.slug, o.owner_id, o.created_at
		FROM organizations o
		JOIN organization_members m ON m.organization_id = o.id
		WHERE m.user_id = $1
		ORDER BY o.name`, userID)
	if err != nil {
		return nil, mapErr(err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Organization, error) {
		return scanOrganization(row)
	})
}
