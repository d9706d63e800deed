package repository

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	_ Store = (*Postgres)(nil)
	_ Store = (*Memory)(nil)
)

type pair [2]string

type memData struct {
	users     map[string]User
	passwords map[string]string
	orgs      map[string]Organization
	members   map[pair]struct{} // organization, user
	roles     map[string]Role
	perms     map[string]Permission
	rolePerms map[pair]struct{} // role, permission
	userRoles map[pair]struct{} // user, role
}

func newMemData() *memData {
	return &memData{
		users:     make(map[string]User),
		passwords: make(map[string]string),
		orgs:      make(map[string]Organization),
		members:   make(map[pair]struct{}),
		roles:     make(map[string]Role),
		perms:     make(map[string]Permission),
		rolePerms: make(map[pair]struct{}),
		userRoles: make(map[pair]struct{}),
	}
}

func (d *memData) clone() *memData {
	return &memData{
		users:     maps.Clone(d.users),
		passwords: maps.Clone(d.passwords),
		orgs:      maps.Clone(d.orgs),
		members:   maps.Clone(d.members),
		roles:     maps.Clone(d.roles),
		perms:     maps.Clone(d.perms),
		rolePerms: maps.Clone(d.rolePerms),
		userRoles: maps.Clone(d.userRoles),
	}
}

// Memory implements Store in process memory. Transactions work on a copy
// that replaces the live data on success.
type Memory struct {
	data *memData
	now  func() time.Time
	mu   sync.RWMutex
}

// NewMemory creates an empty store.
func NewMemory() *Memory {
	return &Memory{data: newMemData(), now: time.Now}
}

func (m *Memory) Tx(ctx context.Context, fn func(s Store, tx pgx.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	child := &Memory{data: m.data.clone(), now: m.now}
	if err := fn(child, nil); err != nil {
		return err
	}
	m.data = child.data
	return nil
}

func (m *Memory) CreateUser(_ context.Context, p CreateUserParams) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.data.users {
		if u.Email == p.Email {
			return User{}, ErrConflict
		}
	}
	now := m.now()
	u := User{
		ID:           uuid.NewString(),
		Email:        p.Email,
		Name:         p.Name,
		IsSuperadmin: p.IsSuperadmin,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.data.users[u.ID] = u
	if p.PasswordHash != "" {
		m.data.passwords[u.ID] = p.PasswordHash
	}
	return u, nil
}

func (m *Memory) ListUsers(_ context.Context) ([]User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := slices.Collect(maps.Values(m.data.users))
	slices.SortFunc(out, func(a, b User) int { return cmp.Compare(a.Email, b.Email) })
	return out, nil
}

func (m *Memory) UserByID(_ context.Context, id string) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.data.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (m *Memory) UserByEmail(_ context.Context, email string) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.data.users {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (m *Memory) PasswordHash(_ context.Context, userID string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.data.passwords[userID]
	if !ok {
		return "", ErrNotFound
	}
	return h, nil
}

func (m *Memory) SetPassword(_ context.Context, userID, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data.users[userID]; !ok {
		return ErrNotFound
	}
	m.data.passwords[userID] = hash
	return nil
}

// SetActive toggles a user's active flag. Tests use it to model
// deactivated accounts.
func (m *Memory) SetActive(userID string, active bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.data.users[userID]; ok {
		u.IsActive = active
		m.data.users[userID] = u
	}
}

func (m *Memory) UpdateProfile(_ context.Context, id, name, avatarURL string) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.data.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	u.Name, u.AvatarURL, u.UpdatedAt = name, avatarURL, m.now()
	m.data.users[id] = u
	return u, nil
}

func (m *Memory) RecordLogin(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.data.users[id]
	if !ok {
		return ErrNotFound
	}
	u.LastLoginAt = &at
	m.data.users[id] = u
	return nil
}

func (m *Memory) CreateOrganization(_ context.Context, name, slug, ownerID string) (Organization, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data.users[ownerID]; !ok {
		return Organization{}, ErrNotFound
	}
	for _, o := range m.data.orgs {
		if o.Slug == slug {
			return Organization{}, ErrConflict
		}
	}
	o := Organization{ID: uuid.NewString(), Name: name, Slug: slug, OwnerID: ownerID, CreatedAt: m.now()}
	m.data.orgs[o.ID] = o
	m.data.members[pair{o.ID, ownerID}] = struct{}{}
	return o, nil
}

func (m *Memory) OrganizationBySlug(_ context.Context, slug string) (Organization, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, o := range m.data.orgs {
		if o.Slug == slug {
			return o, nil
		}
	}
	return Organization{}, ErrNotFound
}

func (m *Memory) AddMember(_ context.Context, orgID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, okOrg := m.data.orgs[orgID]
	_, okUser := m.data.users[userID]
	if !okOrg || !okUser {
		return ErrNotFound
	}
	m.data.members[pair{orgID, userID}] = struct{}{}
	return nil
}

func (m *Memory) OrganizationsForUser(_ context.Context, userID string) ([]Organization, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Organization
	for k := range m.data.members {
		if k[1] == userID {
			out = append(out, m.data.orgs[k[0]])
		}
	}
	slices.SortFunc(out, func(a, b Organization) int { return cmp.Compare(a.Name, b.Name) })
	return out, nil
}

func (m *Memory) ListRoles(_ context.Context) ([]Role, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Role, 0, len(m.data.roles))
	for _, r := range m.data.roles {
		for k := range m.data.rolePerms {
			if k[0] == r.ID {
				r.PermissionCount++
			}
		}
		for k := range m.data.userRoles {
			if k[1] == r.ID {
				r.UserCount++
			}
		}
		out = append(out, r)
	}
	slices.SortFunc(out, func(a, b Role) int { return cmp.Compare(a.Name, b.Name) })
	return out, nil
}

func (m *Memory) RoleByID(_ context.Context, id string) (Role, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.data.roles[id]
	if !ok {
		return Role{}, ErrNotFound
	}
	return r, nil
}

func (m *Memory) RoleByName(_ context.Context, name string) (Role, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.roleByNameLocked(name); ok {
		return r, nil
	}
	return Role{}, ErrNotFound
}

func (m *Memory) roleByNameLocked(name string) (Role, bool) {
	for _, r := range m.data.roles {
		if r.Name == name {
			return r, true
		}
	}
	return Role{}, false
}

func (m *Memory) CreateRole(_ context.Context, p RoleParams) (Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.roleByNameLocked(p.Name); ok {
		return Role{}, ErrConflict
	}
	now := m.now()
	r := Role{
		ID:          uuid.NewString(),
		Name:        p.Name,
		DisplayName: p.DisplayName,
		Description: p.Description,
		IsSystem:    p.IsSystem,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.data.roles[r.ID] = r
	return r, nil
}

func (m *Memory) UpdateRole(_ context.Context, id string, p RoleParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.data.roles[id]
	if !ok {
		return ErrNotFound
	}
	if !r.IsSystem && p.Name != r.Name {
		if _, taken := m.roleByNameLocked(p.Name); taken {
			return ErrConflict
		}
		r.Name = p.Name
	}
	r.DisplayName, r.Description, r.UpdatedAt = p.DisplayName, p.Description, m.now()
	m.data.roles[id] = r
	return nil
}

func (m *Memory) DeleteRole(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.data.roles[id]
	if !ok || r.IsSystem {
		return false, nil
	}
	delete(m.data.roles, id)
	maps.DeleteFunc(m.data.rolePerms, func(k pair, _ struct{}) bool { return k[0] == id })
	maps.DeleteFunc(m.data.userRoles, func(k pair, _ struct{}) bool { return k[1] == id })
	return true, nil
}

func (m *Memory) RolePermissionIDs(_ context.Context, roleID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []string
	for k := range m.data.rolePerms {
		if k[0] == roleID {
			out = append(out, k[1])
		}
	}
	slices.Sort(out)
	return out, nil
}

func (m *Memory) SetRolePermissions(ctx context.Context, roleID string, permissionIDs []string) error {
	return m.Tx(ctx, func(s Store, _ pgx.Tx) error {
		tx := s.(*Memory)
		maps.DeleteFunc(tx.data.rolePerms, func(k pair, _ struct{}) bool { return k[0] == roleID })
		return tx.GrantPermissions(ctx, roleID, permissionIDs)
	})
}

func (m *Memory) GrantPermissions(_ context.Context, roleID string, permissionIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data.roles[roleID]; !ok {
		return ErrNotFound
	}
	for _, id := range permissionIDs {
		if _, ok := m.data.perms[id]; !ok {
			return ErrNotFound
		}
	}
	for _, id := range permissionIDs {
		m.data.rolePerms[pair{roleID, id}] = struct{}{}
	}
	return nil
}

func (m *Memory) AssignRole(_ context.Context, userID, roleID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, okUser := m.data.users[userID]
	_, okRole := m.data.roles[roleID]
	if !okUser || !okRole {
		return ErrNotFound
	}
	m.data.userRoles[pair{userID, roleID}] = struct{}{}
	return nil
}

func (m *Memory) UserRoles(_ context.Context, userID string) ([]Role, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Role
	for k := range m.data.userRoles {
		if k[0] == userID {
			out = append(out, m.data.roles[k[1]])
		}
	}
	slices.SortFunc(out, func(a, b Role) int { return cmp.Compare(a.Name, b.Name) })
	return out, nil
}

func (m *Memory) ListPermissions(_ context.Context) ([]Permission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Permission, 0, len(m.data.perms))
	for _, p := range m.data.perms {
		for k := range m.data.rolePerms {
			if k[1] == p.ID {
				p.RoleCount++
			}
		}
		out = append(out, p)
	}
	sortPermissions(out)
	return out, nil
}

func sortPermissions(ps []Permission) {
	slices.SortFunc(ps, func(a, b Permission) int {
		return cmp.Or(cmp.Compare(a.Resource, b.Resource), cmp.Compare(a.Action, b.Action))
	})
}

func (m *Memory) PermissionByID(_ context.Context, id string) (Permission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.data.perms[id]
	if !ok {
		return Permission{}, ErrNotFound
	}
	return p, nil
}

func (m *Memory) PermissionByName(_ context.Context, name string) (Permission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.permissionByNameLocked(name); ok {
		return p, nil
	}
	return Permission{}, ErrNotFound
}

func (m *Memory) permissionByNameLocked(name string) (Permission, bool) {
	for _, p := range m.data.perms {
		if p.Name == name {
			return p, true
		}
	}
	return Permission{}, false
}

func (m *Memory) CreatePermission(_ context.Context, p PermissionParams) (Permission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.permissionByNameLocked(p.Name()); ok {
		return Permission{}, ErrConflict
	}
	now := m.now()
	pm := Permission{
		ID:          uuid.NewString(),
		Name:        p.Name(),
		Resource:    p.Resource,
		Action:      p.Action,
		DisplayName: p.DisplayName,
		Description: p.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.data.perms[pm.ID] = pm
	return pm, nil
}

func (m *Memory) UpdatePermission(_ context.Context, id string, p PermissionParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	pm, ok := m.data.perms[id]
	if !ok {
		return ErrNotFound
	}
	if other, taken := m.permissionByNameLocked(p.Name()); taken && other.ID != id {
		return ErrConflict
	}
	pm.Name, pm.Resource, pm.Action = p.Name(), p.Resource, p.Action
	pm.DisplayName, pm.Description, pm.UpdatedAt = p.DisplayName, p.Description, m.now()
	m.data.perms[id] = pm
	return nil
}

func (m *Memory) DeletePermission(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data.perms[id]; !ok {
		return ErrNotFound
	}
	delete(m.data.perms, id)
	maps.DeleteFunc(m.data.rolePerms, func(k pair, _ struct{}) bool { return k[1] == id })
	return nil
}

func (m *Memory) PermissionRoles(_ context.Context, permissionID string) ([]Role, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Role
	for k := range m.data.rolePerms {
		if k[1] == permissionID {
			out = append(out, m.data.roles[k[0]])
		}
	}
	slices.SortFunc(out, func(a, b Role) int { return cmp.Compare(a.Name, b.Name) })
	return out, nil
}

func (m *Memory) UserPermissions(_ context.Context, userID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	set := make(map[string]struct{})
	for ur := range m.data.userRoles {
		if ur[0] != userID {
			continue
		}
		for rp := range m.data.rolePerms {
			if rp[0] == ur[1] {
				set[m.data.perms[rp[1]].Name] = struct{}{}
			}
		}
	}
	return slices.Sorted(maps.Keys(set)), nil
}
