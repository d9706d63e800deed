package cms

import (
	"github.com/dmitrymomot/mwm"
	"github.com/dmitrymomot/mwm/app/views"
)

var Dashboard = mwm.Module{
	Page: func(c mwm.Context) (mwm.Component, error) {
		views.SetTitle(c, "CMS")
		return views.CMSPage(), nil
	},
}
