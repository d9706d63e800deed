package views

import (
	"github.com/dmitrymomot/mwm"
)

const roleNameHint = "Lowercase letters, digits, dashes and underscores"

var adminNav = []NavLink{
	{Label: "Roles", Href: "/admin/roles"},
	{Label: "Permissions", Href: "/admin/permissions"},
}

// AdminShell is the admin section chrome.
func AdminShell(c mwm.Context, content mwm.Component) mwm.Component {
	return adminShell(adminNav, c.Request().URL.Path, content)
}
