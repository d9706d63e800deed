package cms

import (
	"github.com/dmitrymomot/mwm"
	"github.com/dmitrymomot/mwm/app/access"
)

var Layout = mwm.Guard(access.RequireUser, nil)
