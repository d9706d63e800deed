// Package repository stores users, organizations, roles and permissions.
//
// Postgres is the production implementation on pgx. Memory keeps the same
// data in process and backs the unit tests of the layers above.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

var (
	// ErrNotFound is returned when no row matches.
	ErrNotFound = errors.New("repository: not found")

	// ErrConflict is returned when a unique name, email or slug is taken.
	ErrConflict = errors.New("repository: already exists")
)

type User struct {
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ID           string
	Email        string
	Name         string
	AvatarURL    string
	IsSuperadmin bool
	IsActive     bool
}

type Organization struct {
	CreatedAt time.Time
	ID        string
	Name      string
	Slug      string
	OwnerID   string
}

// Role is a named permission bundle. The counts are filled by ListRoles.
type Role struct {
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ID              string
	Name            string
	DisplayName     string
	Description     string
	PermissionCount int
	UserCount       int
	IsSystem        bool
}

// Permission is a resource:action pair. RoleCount is filled by ListPermissions.
type Permission struct {
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ID          string
	Name        string
	Resource    string
	Action      string
	DisplayName string
	Description string
	RoleCount   int
}

type CreateUserParams struct {
	Email        string
	Name         string
	PasswordHash string // optional credential
	IsSuperadmin bool
}

type RoleParams struct {
	Name        string
	DisplayName string
	Description string
	IsSystem    bool
}

type PermissionParams struct {
	Resource    string
	Action      string
	DisplayName string
	Description string
}

// Name returns the unique permission name.
func (p PermissionParams) Name() string {
	return p.Resource + ":" + p.Action
}

// Store is implemented by Postgres and Memory.
type Store interface {
	// Tx runs fn against a transactional store. Nothing fn wrote survives
	// when it returns an error. tx is nil for stores without a database.
	Tx(ctx context.Context, fn func(s Store, tx pgx.Tx) error) error

	CreateUser(ctx context.Context, p CreateUserParams) (User, error)
	// ListUsers returns users ordered by email.
	ListUsers(ctx context.Context) ([]User, error)
	UserByID(ctx context.Context, id string) (User, error)
	UserByEmail(ctx context.Context, email string) (User, error)
	// PasswordHash returns the user's credential hash, or ErrNotFound.
	PasswordHash(ctx context.Context, userID string) (string, error)
	SetPassword(ctx context.Context, userID, hash string) error
	UpdateProfile(ctx context.Context, id, name, avatarURL string) (User, error)
	RecordLogin(ctx context.Context, id string, at time.Time) error

	CreateOrganization(ctx context.Context, name, slug, ownerID string) (Organization, error)
	OrganizationBySlug(ctx context.Context, slug string) (Organization, error)
	AddMember(ctx context.Context, orgID, userID string) error
	OrganizationsForUser(ctx context.Context, userID string) ([]Organization, error)

	ListRoles(ctx context.Context) ([]Role, error)
	RoleByID(ctx context.Context, id string) (Role, error)
	RoleByName(ctx context.Context, name string) (Role, error)
	CreateRole(ctx context.Context, p RoleParams) (Role, error)
	UpdateRole(ctx context.Context, id string, p RoleParams) error
	// DeleteRole removes a custom role. System roles are left untouched and
	// reported with deleted=false.
	DeleteRole(ctx context.Context, id string) (deleted bool, err error)
	RolePermissionIDs(ctx context.Context, roleID string) ([]string, error)
	// SetRolePermissions replaces the role's permission set.
	SetRolePermissions(ctx context.Context, roleID string, permissionIDs []string) error
	// GrantPermissions adds permissions, keeping the ones already granted.
	GrantPermissions(ctx context.Context, roleID string, permissionIDs []string) error
	AssignRole(ctx context.Context, userID, roleID string) error
	UserRoles(ctx context.Context, userID string) ([]Role, error)

	ListPermissions(ctx context.Context) ([]Permission, error)
	PermissionByID(ctx context.Context, id string) (Permission, error)
	PermissionByName(ctx context.Context, name string) (Permission, error)
	CreatePermission(ctx context.Context, p PermissionParams) (Permission, error)
	UpdatePermission(ctx context.Context, id string, p PermissionParams) error
	DeletePermission(ctx context.Context, id string) error
	PermissionRoles(ctx context.Context, permissionID string) ([]Role, error)
	UserPermissions(ctx context.Context, userID string) ([]string, error)
}
