// Package identity serves sign-in, sign-up and sign-out.
package identity

import (
	"net/http"

	"github.com/dmitrymomot/mwm"
	"github.com/dmitrymomot/mwm/app/access"
	"github.com/dmitrymomot/mwm/app/services"
	"github.com/dmitrymomot/mwm/app/views"
	"github.com/dmitrymomot/mwm/pkg/validator"
)

var SignIn = mwm.Module{
	Page: signInPage,
	POST: mwm.View(signIn),
}

func signInPage(c mwm.Context) (mwm.Component, error) {
	returnURL := access.SafeReturnURL(c.Query("returnUrl"))
	if c.IsAuthenticated() {
		return nil, mwm.RedirectTo(returnURL)
	}
	views.SetTitle(c, "Sign in")
	return views.SignInPage(views.SignInForm(services.SignInInput{ReturnURL: returnURL}, nil, "")), nil
}

func signIn(c mwm.Context) (mwm.Component, error) {
	var in services.SignInInput
	errs, err := c.Bind(&in)
	if err != nil {
		return nil, err
	}
	in.ReturnURL = access.SafeReturnURL(in.ReturnURL)
	if len(errs) > 0 {
		return signInFailed(c, in, errs, ""), nil
	}

	svc, err := services.From(c)
	if err != nil {
		return nil, err
	}
	identity, err := svc.SignIn(c, in)
	if err != nil {
		msg, ok := services.SignInMessage(err)
		if !ok {
			return nil, err
		}
		c.LogInfo("sign-in rejected", "reason", err.Error())
		return signInFailed(c, in, nil, msg), nil
	}

	if err := c.SignIn(identity); err != nil {
		return nil, err
	}
	c.LogInfo("user signed in", "user_id", identity.ID)
	return nil, mwm.RedirectTo(in.ReturnURL)
}

// signInFailed re-renders the form. htmx requests get the form alone so it
// swaps in place.
func signInFailed(c mwm.Context, in services.SignInInput, errs validator.ValidationErrors, formError string) mwm.Component {
	form := views.SignInForm(in, errs, formError)
	if c.IsPartial() {
		return mwm.WithStatus(http.StatusUnprocessableEntity, form)
	}
	views.SetTitle(c, "Sign in")
	return mwm.WithStatus(http.StatusUnprocessableEntity, views.SignInPage(form))
}
