// Package access holds the guards used by route layouts.
package access

import (
	"net/url"
	"strings"

	"github.com/dmitrymomot/mwm"
	"github.com/dmitrymomot/mwm/app/services"
)

// SignInPath is where guests are sent.
const SignInPath = "/identity/sign-in"

// SignInURL returns the sign-in URL that comes back to returnTo.
func SignInURL(returnTo string) string {
	if returnTo == "" || returnTo == "/" {
		return SignInPath
	}
	return SignInPath + "?returnUrl=" + url.QueryEscape(returnTo)
}

// SafeReturnURL accepts only local absolute paths and falls back to "/".
func SafeReturnURL(raw string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return "/"
	}
	u, err := url.Parse(raw)
	if err != nil || u.IsAbs() || u.Host != "" {
		return "/"
	}
	return raw
}

// RequireUser redirects guests to sign-in.
func RequireUser(c mwm.Context) error {
	if c.IsAuthenticated() {
		return nil
	}
	return mwm.RedirectTo(SignInURL(c.Request().URL.RequestURI()))
}

// RequirePermission returns a guard that lets through users holding perm.
// Guests are redirected to sign-in, everyone else gets 403.
func RequirePermission(perm string) mwm.GuardFunc {
	return func(c mwm.Context) error {
		if err := RequireUser(c); err != nil {
			return err
		}
		identity, _ := c.Session().Identity()
		svc, err := services.From(c)
		if err != nil {
			return err
		}
		ok, err := svc.Can(c, identity, perm)
		if err != nil {
			return err
		}
		if !ok {
			return mwm.ErrForbidden("You do not have access to this page")
		}
		return nil
	}
}
