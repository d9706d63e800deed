// Package routes is the root of the file-routed pages. Every file below this
// directory maps to a URL; run cmd/routegen after adding or removing one.
package routes

import (
	"github.com/dmitrymomot/mwm"
	"github.com/dmitrymomot/mwm/app/views"
)

var Home = mwm.Module{
	Page: home,
}

func home(c mwm.Context) (mwm.Component, error) {
	var name string
	if identity, ok := c.Session().Identity(); ok {
		name = identity.Name
		if name == "" {
			name = identity.Email
		}
	}
	return views.HomePage(name), nil
}
