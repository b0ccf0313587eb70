// Package urlutil turns a user-typed backend address into a scheme-qualified
// instance URL.
//
// Operators usually type a bare hostname. Normalize defaults those to https://
// and refuses any other declared scheme, so a login request can only ever be
// sent over HTTP or HTTPS.
//
// # Usage
//
//	u, err := urlutil.Normalize("pos.example.com")
//	if err != nil {
//		return err // *urlutil.URLError with a user-facing message
//	}
//	fmt.Println(u) // https://pos.example.com
//
// # Rules
//
//   - surrounding whitespace is trimmed
//   - http:// and https:// prefixes are recognized case-insensitively and kept verbatim
//   - any other "scheme://" prefix is rejected
//   - anything else gets https:// prepended
//   - the result must parse with net/url and name a host
//
// The returned value is otherwise unchanged: no path, port or case rewriting.
// Normalize is idempotent.
package urlutil
