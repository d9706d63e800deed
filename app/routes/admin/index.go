package admin

import "github.com/dmitrymomot/mwm"

var Index = mwm.Module{
	Page: func(mwm.Context) (mwm.Component, error) {
		return nil, mwm.RedirectTo("/admin/roles")
	},
}
