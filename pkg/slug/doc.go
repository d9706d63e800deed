// Package slug turns arbitrary text into URL-safe identifiers.
//
// Diacritics are folded to ASCII through Unicode decomposition, everything
// that is not a letter or digit becomes a separator and runs of separators
// collapse:
//
//	slug.Make("Acme Inc")            // "acme-inc"
//	slug.Make("Café & Restaurant")   // "cafe-restaurant"
//	slug.Make("Acme", slug.WithSuffix(6))
//	// "acme-x3k7f9"
//
// ReservedSlugs forces a random suffix onto names that would collide with
// application paths:
//
//	slug.Make("admin", slug.ReservedSlugs("admin", "api"))
//	// "admin-k7x2m4"
package slug
