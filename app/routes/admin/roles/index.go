// Package roles serves the role administration pages.
package roles

import (
	"net/http"

	"github.com/dmitrymomot/mwm"
	"github.com/dmitrymomot/mwm/app/services"
	"github.com/dmitrymomot/mwm/app/views"
	"github.com/dmitrymomot/mwm/pkg/validator"
)

const (
	listPath  = "/admin/roles"
	noticeKey = "notice"
)

var Index = mwm.Module{
	Page: list,
	POST: mwm.View(create),
}

func list(c mwm.Context) (mwm.Component, error) {
	return listPage(c, services.RoleInput{}, nil)
}

func create(c mwm.Context) (mwm.Component, error) {
	var in services.RoleInput
	errs, err := c.Bind(&in)
	if err != nil {
		return nil, err
	}
	if len(errs) == 0 {
		svc, err := services.From(c)
		if err != nil {
			return nil, err
		}
		role, err := svc.CreateRole(c, in)
		if ve := validator.ExtractValidationErrors(err); ve != nil {
			errs = ve
		} else if err != nil {
			return nil, err
		} else {
			c.LogInfo("role created", "role", role.Name)
			notify(c, "Role "+role.Name+" created")
			return nil, mwm.RedirectTo(listPath)
		}
	}
	page, err := listPage(c, in, errs)
	if err != nil {
		return nil, err
	}
	return mwm.WithStatus(http.StatusUnprocessableEntity, page), nil
}

func listPage(c mwm.Context, in services.RoleInput, errs validator.ValidationErrors) (mwm.Component, error) {
	svc, err := services.From(c)
	if err != nil {
		return nil, err
	}
	roles, err := svc.Roles(c)
	if err != nil {
		return nil, err
	}
	views.SetTitle(c, "Roles")
	return views.RolesPage(roles, notice(c), in, errs), nil
}

// notify leaves a notice for the next page. Without a cookie secret
// there is nowhere to keep it and it is dropped.
func notify(c mwm.Context, msg string) {
	if err := c.SetFlash(noticeKey, msg); err != nil {
		c.LogDebug("flash not stored", "error", err)
	}
}

func notice(c mwm.Context) string {
	var msg string
	_ = c.Flash(noticeKey, &msg)
	return msg
}
