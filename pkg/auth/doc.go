// Package auth implements password hashing, cookie sessions and credential
// checks for the web application.
//
// # Passwords
//
// Hasher produces argon2id hashes in the PHC string format:
//
//	$argon2id$v=19$m=65536,t=2,p=1$<salt>$<key>
//
// Verify compares in constant time and accepts hashes created with any
// parameters, so memory or time cost can be raised without a migration.
//
// # Sessions
//
// Manager issues an opaque random token as the session cookie and keeps the
// session record in a session.Store:
//
//	cookie, err := m.CreateSession(ctx, r, identity)
//	http.SetCookie(w, cookie)
//
//	sess := m.SessionFromRequest(r) // never fails, guest on any problem
//
//	http.SetCookie(w, m.DestroySession(r))
//
// # Credentials
//
// Authenticator checks an email and password pair. Unknown emails and wrong
// passwords both return ErrInvalidCredentials after the same amount of
// hashing work, so callers cannot tell them apart. Attempts for one email
// are counted by a Throttle on a pkg/cache Counter before the password is
// checked.
package auth
