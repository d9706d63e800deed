package views

import (
	"github.com/dmitrymomot/mwm"
)

const avatarHint = "PNG, JPEG, GIF or WebP up to 2 MB"

var usersNav = []NavLink{{Label: "All Users", Href: "/users"}}

// UsersShell adds the users sub-navigation.
func UsersShell(c mwm.Context, content mwm.Component) mwm.Component {
	return usersShell(usersNav, c.Request().URL.Path, content)
}
