package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"

	"github.com/dmitrymomot/mwm/app/repository"
	"github.com/dmitrymomot/mwm/pkg/auth"
	"github.com/dmitrymomot/mwm/pkg/storage"
	"github.com/dmitrymomot/mwm/pkg/validator"
)

// MaxAvatarSize caps avatar uploads.
const MaxAvatarSize = 2 << 20

// ErrForbidden is returned when the actor may not edit the profile.
var ErrForbidden = errors.New("services: forbidden")

type ProfileInput struct {
	Name string `form:"name" sanitize:"strip,singleline" validate:"required,max=100"`
}

// Profile is a user with their roles and organizations.
type Profile struct {
	Roles         []repository.Role
	Organizations []repository.Organization
	User          repository.User
}

// CanEditProfile reports whether actor may edit the profile of userID.
func CanEditProfile(actor auth.Identity, userID string) bool {
	return actor.ID == userID || actor.IsSuperadmin
}

func (s *Services) Profile(ctx context.Context, userID string) (Profile, error) {
	u, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	roles, err := s.store.UserRoles(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	orgs, err := s.store.OrganizationsForUser(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	return Profile{User: u, Roles: roles, Organizations: orgs}, nil
}

// UpdateProfile saves the display name and, when avatar is not nil, uploads
// it and replaces the avatar URL. Upload problems are field errors on
// "avatar".
func (s *Services) UpdateProfile(ctx context.Context, actor auth.Identity, userID string, in ProfileInput, avatar *multipart.FileHeader) (repository.User, error) {
	if !CanEditProfile(actor, userID) {
		return repository.User{}, ErrForbidden
	}
	u, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return repository.User{}, err
	}

	avatarURL := u.AvatarURL
	if avatar != nil {
		avatarURL, err = s.uploadAvatar(ctx, userID, avatar)
		if err != nil {
			return repository.User{}, err
		}
	}
	return s.store.UpdateProfile(ctx, userID, in.Name, avatarURL)
}

func (s *Services) uploadAvatar(ctx context.Context, userID string, fh *multipart.FileHeader) (string, error) {
	if s.storage == nil {
		return "", validator.ValidationErrors{}.Add("avatar", "Avatar uploads are not available")
	}

	obj, err := storage.Upload(ctx, s.storage, fh, storage.Policy{
		Prefix:  "avatars/" + userID,
		MaxSize: MaxAvatarSize,
		Allow:   storage.ImageTypes,
	})
	if err != nil {
		var rejected *storage.RejectedError
		switch {
		case errors.As(err, &rejected):
			return "", validator.ValidationErrors{}.Add("avatar", rejected.Message)
		case errors.Is(err, storage.ErrEmptyFile):
			return "", validator.ValidationErrors{}.Add("avatar", "Avatar file is empty")
		}
		return "", fmt.Errorf("upload avatar: %w", err)
	}
	s.logger.InfoContext(ctx, "avatar uploaded", slog.String("user_id", userID), slog.String("key", obj.Key))
	return obj.URL, nil
}

func (s *Services) Users(ctx context.Context) ([]repository.User, error) {
	return s.store.ListUsers(ctx)
}
