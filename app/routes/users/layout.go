package users

import (
	"github.com/dmitrymomot/mwm"
	"github.com/dmitrymomot/mwm/app/access"
	"github.com/dmitrymomot/mwm/app/views"
)

var Layout = mwm.Guard(access.RequireUser, views.UsersShell)
