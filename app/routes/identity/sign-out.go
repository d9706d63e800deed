package identity

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/mwm"
	"github.com/dmitrymomot/mwm/app/access"
	"github.com/dmitrymomot/mwm/pkg/auth"
)

var SignOut = mwm.Module{
	POST: mwm.HandlerFunc(signOut),
}

func signOut(c mwm.Context) error {
	if err := c.SignOut(); err != nil && !errors.Is(err, auth.ErrNotConfigured) {
		return err
	}
	return mwm.RedirectWithStatus(http.StatusSeeOther, access.SignInPath)
}
