package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/mwm/app/repository"
	"github.com/dmitrymomot/mwm/pkg/auth"
	"github.com/dmitrymomot/mwm/pkg/validator"
)

// DefaultRole is assigned to every new account.
const DefaultRole = "user"

// User-facing sign-in messages.
const (
	MsgInvalidCredentials = "Invalid email or password"
	MsgDeactivated        = "Your account has been deactivated"
	MsgThrottled          = "Too many sign-in attempts, try again later"
	MsgEmailTaken         = "An account with this email already exists"
)

// SignUpHook runs inside the sign-up transaction after the user row is
// written. tx is nil for stores without a database.
type SignUpHook func(ctx context.Context, tx pgx.Tx, user repository.User) error

type SignInInput struct {
	Email     string `form:"email" sanitize:"email" validate:"required,email"`
	Password  string `form:"password" validate:"required,min=6"`
	ReturnURL string `form:"returnUrl" sanitize:"trim"`
}

type SignUpInput struct {
	Name     string `form:"name" sanitize:"strip,singleline" validate:"required,max=100"`
	Email    string `form:"email" sanitize:"email" validate:"required,email"`
	Password string `form:"password" validate:"required,min=6,max=128"`
}

// SignInMessage maps an authentication error to the text shown on the
// form. ok is false for errors that are not the user's fault.
func SignInMessage(err error) (msg string, ok bool) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return MsgInvalidCredentials, true
	case errors.Is(err, auth.ErrInactive):
		return MsgDeactivated, true
	case errors.Is(err, auth.ErrThrottled):
		return MsgThrottled, true
	}
	return "", false
}

func identityOf(u repository.User) auth.Identity {
	return auth.Identity{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		AvatarURL:    u.AvatarURL,
		IsSuperadmin: u.IsSuperadmin,
	}
}

// AccountByEmail implements auth.AccountLookup.
func (s *Services) AccountByEmail(ctx context.Context, email string) (auth.Account, error) {
	u, err := s.store.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return auth.Account{}, auth.ErrUserNotFound
		}
		return auth.Account{}, err
	}
	hash, err := s.store.PasswordHash(ctx, u.ID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return auth.Account{}, err
	}
	return auth.Account{Identity: identityOf(u), PasswordHash: hash, Active: u.IsActive}, nil
}

// IdentityByID implements auth.IdentityLookup. Deactivated users resolve
// to auth.ErrUserNotFound so their sessions turn into guest sessions.
func (s *Services) IdentityByID(ctx context.Context, id string) (auth.Identity, error) {
	u, err := s.store.UserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return auth.Identity{}, auth.ErrUserNotFound
		}
		return auth.Identity{}, err
	}
	if !u.IsActive {
		return auth.Identity{}, auth.ErrUserNotFound
	}
	return identityOf(u), nil
}

// SignIn verifies the credentials and records the login time.
func (s *Services) SignIn(ctx context.Context, in SignInInput) (auth.Identity, error) {
	identity, err := s.authn.Authenticate(ctx, in.Email, in.Password)
	if err != nil {
		return auth.Identity{}, err
	}
	if err := s.store.RecordLogin(ctx, identity.ID, time.Now()); err != nil {
		s.logger.WarnContext(ctx, "record login failed",
			slog.String("user_id", identity.ID),
			slog.Any("error", err),
		)
	}
	return identity, nil
}

// SignUp creates the user with a password credential and the default role
// in one transaction. A taken email is reported as a field error.
func (s *Services) SignUp(ctx context.Context, in SignUpInput) (auth.Identity, error) {
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return auth.Identity{}, fmt.Errorf("hash password: %w", err)
	}

	var user repository.User
	err = s.store.Tx(ctx, func(store repository.Store, tx pgx.Tx) error {
		var err error
		user, err = store.CreateUser(ctx, repository.CreateUserParams{
			Email:        in.Email,
			Name:         in.Name,
			PasswordHash: hash,
		})
		if err != nil {
			return err
		}

		role, err := store.RoleByName(ctx, DefaultRole)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			s.logger.WarnContext(ctx, "default role missing, run the seeder", slog.String("role", DefaultRole))
		case err != nil:
			return err
		default:
			if err := store.AssignRole(ctx, user.ID, role.ID); err != nil {
				return err
			}
		}

		if s.onSignUp != nil {
			return s.onSignUp(ctx, tx, user)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return auth.Identity{}, validator.ValidationErrors{}.Add("email", MsgEmailTaken)
		}
		return auth.Identity{}, fmt.Errorf("sign up: %w", err)
	}
	return identityOf(user), nil
}

// Can reports whether identity holds permission. Superadmins hold every
// permission and "<resource>:manage" implies every action on the resource.
func (s *Services) Can(ctx context.Context, identity auth.Identity, permission string) (bool, error) {
	if identity.IsSuperadmin {
		return true, nil
	}
	names, err := s.store.UserPermissions(ctx, identity.ID)
	if err != nil {
		return false, fmt.Errorf("load permissions: %w", err)
	}
	if slices.Contains(names, permission) {
		return true, nil
	}
	resource, _, _ := cutPermission(permission)
	return slices.Contains(names, resource+":manage"), nil
}
