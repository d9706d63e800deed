package routes

import (
	"github.com/dmitrymomot/mwm"
	"github.com/dmitrymomot/mwm/app/views"
)

// Layout is the site chrome around every page.
var Layout = mwm.Wrap(views.SiteChrome)
