package views

import (
	"strings"

	"github.com/dmitrymomot/mwm"
)

// NavLink is an entry of a navigation bar.
type NavLink struct {
	Label string
	Href  string
}

// Active reports whether the link points at current or one of its children.
// The root link only matches itself.
func (l NavLink) Active(current string) bool {
	return l.Href == current || (l.Href != "/" && strings.HasPrefix(current, l.Href+"/"))
}

type userMenu struct {
	Name      string
	Href      string
	AvatarURL string
}

// SiteChrome is the root layout: header, main area and footer.
func SiteChrome(c mwm.Context, content mwm.Component) mwm.Component {
	links := []NavLink{{Label: "Home", Href: "/"}}
	var user *userMenu
	if identity, ok := c.Session().Identity(); ok {
		links = append(links,
			NavLink{Label: "CMS", Href: "/cms"},
			NavLink{Label: "Users", Href: "/users"},
			NavLink{Label: "Admin", Href: "/admin/roles"},
		)
		user = &userMenu{
			Name:      identity.Name,
			Href:      "/users/" + identity.ID + "/edit",
			AvatarURL: identity.AvatarURL,
		}
		if user.Name == "" {
			user.Name = identity.Email
		}
	}
	return siteChrome(links, c.Request().URL.Path, user, content)
}
