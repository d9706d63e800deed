package admin

import (
	"github.com/dmitrymomot/mwm"
	"github.com/dmitrymomot/mwm/app/access"
	"github.com/dmitrymomot/mwm/app/views"
)

// ManagePermission grants access to the admin section.
const ManagePermission = "roles:manage"

var Layout = mwm.Guard(access.RequirePermission(ManagePermission), views.AdminShell)
