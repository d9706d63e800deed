package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/mwm/app/repository"
	"github.com/dmitrymomot/mwm/pkg/validator"
)

// MsgRoleExists is the conflict message for a taken role name.
const MsgRoleExists = "A role with this name already exists"

// PermissionExistsMessage is the conflict message for a taken permission name.
func PermissionExistsMessage(name string) string {
	return fmt.Sprintf("Permission %q already exists", name)
}

type RoleInput struct {
	Name          string   `form:"name" sanitize:"trim" validate:"required,max=50,slug"`
	DisplayName   string   `form:"displayName" label:"Display name" sanitize:"strip,singleline" validate:"required,max=100"`
	Description   string   `form:"description" sanitize:"strip,singleline" validate:"max=500"`
	PermissionIDs []string `form:"permissions"`
}

func (in RoleInput) params() repository.RoleParams {
	return repository.RoleParams{Name: in.Name, DisplayName: in.DisplayName, Description: in.Description}
}

type PermissionInput struct {
	Resource    string `form:"resource" sanitize:"trim" validate:"required,max=50,slug"`
	Action      string `form:"action" sanitize:"trim" validate:"required,max=50,slug"`
	DisplayName string `form:"displayName" label:"Display name" sanitize:"strip,singleline" validate:"required,max=100"`
	Description string `form:"description" sanitize:"strip,singleline" validate:"max=500"`
}

func (in PermissionInput) params() repository.PermissionParams {
	return repository.PermissionParams{
		Resource:    in.Resource,
		Action:      in.Action,
		DisplayName: in.DisplayName,
		Description: in.Description,
	}
}

// PermissionGroup lists the permissions of one resource.
type PermissionGroup struct {
	Resource    string
	Permissions []repository.Permission
}

// RoleDetail is everything the role editor shows.
type RoleDetail struct {
	Assigned map[string]bool
	Groups   []PermissionGroup
	Role     repository.Role
}

// PermissionDetail is a permission with the roles holding it.
type PermissionDetail struct {
	Roles      []repository.Role
	Permission repository.Permission
}

func cutPermission(name string) (resource, action string, ok bool) {
	return strings.Cut(name, ":")
}

// GroupPermissions groups permissions by resource, keeping their order.
func GroupPermissions(perms []repository.Permission) []PermissionGroup {
	var groups []PermissionGroup
	for _, p := range perms {
		if n := len(groups); n > 0 && groups[n-1].Resource == p.Resource {
			groups[n-1].Permissions = append(groups[n-1].Permissions, p)
			continue
		}
		groups = append(groups, PermissionGroup{Resource: p.Resource, Permissions: []repository.Permission{p}})
	}
	return groups
}

func (s *Services) Roles(ctx context.Context) ([]repository.Role, error) {
	return s.store.ListRoles(ctx)
}

// Role loads the role editor data. Unknown ids return repository.ErrNotFound.
func (s *Services) Role(ctx context.Context, id string) (RoleDetail, error) {
	role, err := s.store.RoleByID(ctx, id)
	if err != nil {
		return RoleDetail{}, err
	}
	groups, err := s.PermissionGroups(ctx)
	if err != nil {
		return RoleDetail{}, err
	}
	ids, err := s.store.RolePermissionIDs(ctx, id)
	if err != nil {
		return RoleDetail{}, err
	}
	assigned := make(map[string]bool, len(ids))
	for _, pid := range ids {
		assigned[pid] = true
	}
	return RoleDetail{Role: role, Groups: groups, Assigned: assigned}, nil
}

// CreateRole adds a custom role. A taken name is reported as a field error
// and nothing is written.
func (s *Services) CreateRole(ctx context.Context, in RoleInput) (repository.Role, error) {
	if _, err := s.store.RoleByName(ctx, in.Name); err == nil {
		return repository.Role{}, validator.ValidationErrors{}.Add("name", MsgRoleExists)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return repository.Role{}, err
	}

	role, err := s.store.CreateRole(ctx, in.params())
	if errors.Is(err, repository.ErrConflict) {
		return repository.Role{}, validator.ValidationErrors{}.Add("name", MsgRoleExists)
	}
	return role, err
}

// UpdateRole updates the role and replaces its permissions in one
// transaction. System roles keep their name.
func (s *Services) UpdateRole(ctx context.Context, id string, in RoleInput) error {
	err := s.store.Tx(ctx, func(store repository.Store, _ pgx.Tx) error {
		role, err := store.RoleByID(ctx, id)
		if err != nil {
			return err
		}
		if role.IsSystem {
			in.Name = role.Name
		}
		if in.Name != role.Name {
			if _, err := store.RoleByName(ctx, in.Name); err == nil {
				return validator.ValidationErrors{}.Add("name", MsgRoleExists)
			} else if !errors.Is(err, repository.ErrNotFound) {
				return err
			}
		}
		if err := store.UpdateRole(ctx, id, in.params()); err != nil {
			return err
		}
		return store.SetRolePermissions(ctx, id, in.PermissionIDs)
	})
	if errors.Is(err, repository.ErrConflict) {
		return validator.ValidationErrors{}.Add("name", MsgRoleExists)
	}
	return err
}

// DeleteRole removes a custom role. It reports false for system roles and
// unknown ids.
func (s *Services) DeleteRole(ctx context.Context, id string) (bool, error) {
	return s.store.DeleteRole(ctx, id)
}

func (s *Services) PermissionGroups(ctx context.Context) ([]PermissionGroup, error) {
	perms, err := s.store.ListPermissions(ctx)
	if err != nil {
		return nil, err
	}
	return GroupPermissions(perms), nil
}

// Permission loads a permission and the roles holding it.
func (s *Services) Permission(ctx context.Context, id string) (PermissionDetail, error) {
	p, err := s.store.PermissionByID(ctx, id)
	if err != nil {
		return PermissionDetail{}, err
	}
	roles, err := s.store.PermissionRoles(ctx, id)
	if err != nil {
		return PermissionDetail{}, err
	}
	return PermissionDetail{Permission: p, Roles: roles}, nil
}

// CreatePermission adds a resource:action permission. A taken name is
// reported as a form-level error.
func (s *Services) CreatePermission(ctx context.Context, in PermissionInput) (repository.Permission, error) {
	params := in.params()
	p, err := s.store.CreatePermission(ctx, params)
	if errors.Is(err, repository.ErrConflict) {
		return repository.Permission{}, permissionConflict(params.Name())
	}
	return p, err
}

func (s *Services) UpdatePermission(ctx context.Context, id string, in PermissionInput) error {
	params := in.params()
	err := s.store.UpdatePermission(ctx, id, params)
	if errors.Is(err, repository.ErrConflict) {
		return permissionConflict(params.Name())
	}
	return err
}

func (s *Services) DeletePermission(ctx context.Context, id string) error {
	err := s.store.DeletePermission(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	return err
}

// FormErrorKey is the ValidationErrors key for messages that belong to the
// whole form rather than one field.
const FormErrorKey = "_form"

func permissionConflict(name string) error {
	return validator.ValidationErrors{}.Add(FormErrorKey, PermissionExistsMessage(name))
}
