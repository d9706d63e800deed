// Package users serves the user directory and profile editing.
package users

import (
	"github.com/dmitrymomot/mwm"
	"github.com/dmitrymomot/mwm/app/services"
	"github.com/dmitrymomot/mwm/app/views"
)

var Index = mwm.Module{
	Page: list,
}

func list(c mwm.Context) (mwm.Component, error) {
	svc, err := services.From(c)
	if err != nil {
		return nil, err
	}
	all, err := svc.Users(c)
	if err != nil {
		return nil, err
	}
	identity, _ := c.Session().Identity()
	views.SetTitle(c, "Users")
	return views.UsersPage(all, identity.ID, identity.IsSuperadmin), nil
}
