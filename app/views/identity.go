package views

// returnURL falls back to the home page when the sign-in form carries no
// return location.
func returnURL(u string) string {
	if u == "" {
		return "/"
	}
	return u
}
