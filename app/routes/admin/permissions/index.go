// Package permissions serves the permission administration pages.
package permissions

import (
	"net/http"

	"github.com/dmitrymomot/mwm"
	"github.com/dmitrymomot/mwm/app/services"
	"github.com/dmitrymomot/mwm/app/views"
	"github.com/dmitrymomot/mwm/pkg/validator"
)

const (
	listPath  = "/admin/permissions"
	noticeKey = "notice"
)

var Index = mwm.Module{
	Page: list,
	POST: mwm.View(create),
}

func list(c mwm.Context) (mwm.Component, error) {
	return listPage(c, services.PermissionInput{}, nil)
}

func create(c mwm.Context) (mwm.Component, error) {
	var in services.PermissionInput
	errs, err := c.Bind(&in)
	if err != nil {
		return nil, err
	}
	if len(errs) == 0 {
		svc, err := services.From(c)
		if err != nil {
			return nil, err
		}
		p, err := svc.CreatePermission(c, in)
		if ve := validator.ExtractValidationErrors(err); ve != nil {
			errs = ve
		} else if err != nil {
			return nil, err
		} else {
			c.LogInfo("permission created", "permission", p.Name)
			notify(c, "Permission "+p.Name+" created")
			return nil, mwm.RedirectTo(listPath)
		}
	}
	page, err := listPage(c, in, errs)
	if err != nil {
		return nil, err
	}
	return mwm.WithStatus(http.StatusUnprocessableEntity, page), nil
}

func listPage(c mwm.Context, in services.PermissionInput, errs validator.ValidationErrors) (mwm.Component, error) {
	svc, err := services.From(c)
	if err != nil {
		return nil, err
	}
	groups, err := svc.PermissionGroups(c)
	if err != nil {
		return nil, err
	}
	views.SetTitle(c, "Permissions")
	return views.PermissionsPage(groups, notice(c), in, errs), nil
}

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
