package identity

import (
	"net/http"

	"github.com/dmitrymomot/mwm"
	"github.com/dmitrymomot/mwm/app/services"
	"github.com/dmitrymomot/mwm/app/views"
	"github.com/dmitrymomot/mwm/pkg/validator"
)

var SignUp = mwm.Module{
	Page: signUpPage,
	POST: mwm.View(signUp),
}

func signUpPage(c mwm.Context) (mwm.Component, error) {
	if c.IsAuthenticated() {
		return nil, mwm.RedirectTo("/")
	}
	views.SetTitle(c, "Sign up")
	return views.SignUpPage(views.SignUpForm(services.SignUpInput{}, nil)), nil
}

func signUp(c mwm.Context) (mwm.Component, error) {
	var in services.SignUpInput
	errs, err := c.Bind(&in)
	if err != nil {
		return nil, err
	}
	if len(errs) == 0 {
		svc, err := services.From(c)
		if err != nil {
			return nil, err
		}
		identity, err := svc.SignUp(c, in)
		if ve := validator.ExtractValidationErrors(err); ve != nil {
			errs = ve
		} else if err != nil {
			return nil, err
		} else {
			if err := c.SignIn(identity); err != nil {
				return nil, err
			}
			c.LogInfo("user signed up", "user_id", identity.ID)
			return nil, mwm.RedirectTo("/")
		}
	}

	form := views.SignUpForm(in, errs)
	if c.IsPartial() {
		return mwm.WithStatus(http.StatusUnprocessableEntity, form), nil
	}
	views.SetTitle(c, "Sign up")
	return mwm.WithStatus(http.StatusUnprocessableEntity, views.SignUpPage(form)), nil
}
