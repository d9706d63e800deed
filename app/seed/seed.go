// Package seed fills a fresh database with the admin account, the default
// organization and the built-in roles and permissions. Running it again
// updates the same rows instead of duplicating them.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dmitrymomot/mwm/app/repository"
	"github.com/dmitrymomot/mwm/pkg/auth"
	"github.com/dmitrymomot/mwm/pkg/logger"
	"github.com/dmitrymomot/mwm/pkg/slug"
)

// Seeded admin credentials. Change the password after the first sign-in.
const (
	AdminEmail    = "admin@example.com"
	AdminPassword = "admin123"
	AdminName     = "Admin"
	AdminRole     = "admin"
	OrgName       = "Acme Inc"
)

// OrgSlug is the slug of the default organization.
var OrgSlug = slug.Make("Acme")

// Roles are the built-in system roles.
var Roles = []repository.RoleParams{
	{Name: "admin", DisplayName: "Administrator", Description: "Full system access", IsSystem: true},
	{Name: "user", DisplayName: "User", Description: "Standard user access", IsSystem: true},
	{Name: "viewer", DisplayName: "Viewer", Description: "Read-only access", IsSystem: true},
}

var (
	resources = []string{"users", "roles", "organizations", "settings"}
	actions   = []string{"create", "read", "update", "delete", "manage"}
)

// Permissions returns every resource:action pair granted to the admin role.
func Permissions() []repository.PermissionParams {
	title := cases.Title(language.English)
	out := make([]repository.PermissionParams, 0, len(resources)*len(actions))
	for _, res := range resources {
		for _, act := range actions {
			out = append(out, repository.PermissionParams{
				Resource:    res,
				Action:      act,
				DisplayName: title.String(act) + " " + res,
				Description: fmt.Sprintf("Allows %s operations on %s", act, res),
			})
		}
	}
	return out
}

// Seeder writes the seed data through a repository store.
type Seeder struct {
	store  repository.Store
	hasher *auth.Hasher
	logger *slog.Logger
}

func New(store repository.Store, hasher *auth.Hasher, log *slog.Logger) *Seeder {
	if log == nil {
		log = logger.NewNope()
	}
	return &Seeder{store: store, hasher: hasher, logger: log}
}

// Run applies the seed in a single transaction.
func (s *Seeder) Run(ctx context.Context) error {
	hash, err := s.hasher.Hash(AdminPassword)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	return s.store.Tx(ctx, func(store repository.Store, _ pgx.Tx) error {
		admin, err := upsertAdmin(ctx, store, hash)
		if err != nil {
			return fmt.Errorf("admin user: %w", err)
		}
		s.logger.InfoContext(ctx, "admin user seeded", slog.String("email", admin.Email))

		org, err := upsertOrganization(ctx, store, admin.ID)
		if err != nil {
			return fmt.Errorf("organization: %w", err)
		}
		s.logger.InfoContext(ctx, "organization seeded", slog.String("slug", org.Slug))

		roleIDs := make(map[string]string, len(Roles))
		for _, p := range Roles {
			r, err := upsertRole(ctx, store, p)
			if err != nil {
				return fmt.Errorf("role %s: %w", p.Name, err)
			}
			roleIDs[r.Name] = r.ID
		}
		if err := store.AssignRole(ctx, admin.ID, roleIDs[AdminRole]); err != nil {
			return fmt.Errorf("assign admin role: %w", err)
		}

		perms := Permissions()
		permIDs := make([]string, 0, len(perms))
		for _, p := range perms {
			pm, err := upsertPermission(ctx, store, p)
			if err != nil {
				return fmt.Errorf("permission %s: %w", p.Name(), err)
			}
			permIDs = append(permIDs, pm.ID)
		}
		if err := store.GrantPermissions(ctx, roleIDs[AdminRole], permIDs); err != nil {
			return fmt.Errorf("grant admin permissions: %w", err)
		}
		s.logger.InfoContext(ctx, "roles and permissions seeded",
			slog.Int("roles", len(roleIDs)),
			slog.Int("permissions", len(permIDs)),
		)
		return nil
	})
}

func upsertAdmin(ctx context.Context, store repository.Store, hash string) (repository.User, error) {
	u, err := store.UserByEmail(ctx, AdminEmail)
	if errors.Is(err, repository.ErrNotFound) {
		return store.CreateUser(ctx, repository.CreateUserParams{
			Email:        AdminEmail,
			Name:         AdminName,
			PasswordHash: hash,
			IsSuperadmin: true,
		})
	}
	if err != nil {
		return repository.User{}, err
	}
	if err := store.SetPassword(ctx, u.ID, hash); err != nil {
		return repository.User{}, err
	}
	return store.UpdateProfile(ctx, u.ID, AdminName, u.AvatarURL)
}

func upsertOrganization(ctx context.Context, store repository.Store, ownerID string) (repository.Organization, error) {
	org, err := store.OrganizationBySlug(ctx, OrgSlug)
	if errors.Is(err, repository.ErrNotFound) {
		return store.CreateOrganization(ctx, OrgName, OrgSlug, ownerID)
	}
	if err != nil {
		return repository.Organization{}, err
	}
	return org, store.AddMember(ctx, org.ID, ownerID)
}

func upsertRole(ctx context.Context, store repository.Store, p repository.RoleParams) (repository.Role, error) {
	r, err := store.RoleByName(ctx, p.Name)
	if errors.Is(err, repository.ErrNotFound) {
		return store.CreateRole(ctx, p)
	}
	if err != nil {
		return repository.Role{}, err
	}
	return r, store.UpdateRole(ctx, r.ID, p)
}

func upsertPermission(ctx context.Context, store repository.Store, p repository.PermissionParams) (repository.Permission, error) {
	pm, err := store.PermissionByName(ctx, p.Name())
	if errors.Is(err, repository.ErrNotFound) {
		return store.CreatePermission(ctx, p)
	}
	if err != nil {
		return repository.Permission{}, err
	}
	// Descriptions edited by hand survive a re-seed.
	p.Description = pm.Description
	return pm, store.UpdatePermission(ctx, pm.ID, p)
}
