package urlutil

import (
	"errors"
	neturl "net/url"
	"strings"
)

// DefaultScheme is prepended to addresses typed without a scheme.
const DefaultScheme = "https"

var (
	// ErrUnsupportedScheme indicates a scheme other than http or https.
	ErrUnsupportedScheme = errors.New("unsupported url scheme")
	// ErrInvalidURL indicates the address could not be parsed or has no host.
	ErrInvalidURL = errors.New("invalid url")
	// ErrMissingScheme indicates the parsed address carries no scheme.
	ErrMissingScheme = errors.New("missing url scheme")
)

// User-facing messages carried by URLError.
const (
	MsgUnsupportedScheme = "Only http and https URLs are supported"
	MsgInvalidURL        = "Instance URL is invalid"
	MsgMissingScheme     = "Instance URL must include http or https"
)

// URLError describes why an instance URL was refused.
type URLError struct {
	Input   string
	Message string
	Err     error
}

func (e *URLError) Error() string {
	return e.Message
}

func (e *URLError) Unwrap() error {
	return e.Err
}

func newURLError(sentinel error, input string) *URLError {
	msg := MsgInvalidURL
	switch sentinel {
	case ErrUnsupportedScheme:
		msg = MsgUnsupportedScheme
	case ErrMissingScheme:
		msg = MsgMissingScheme
	}
	return &URLError{Input: input, Message: msg, Err: sentinel}
}

// NormalizedURL is an instance URL that passed Normalize. The zero value is
// not a valid URL.
type NormalizedURL struct {
	raw    string
	scheme string
	host   string
}

// Normalize trims rawURL, adds https:// when no scheme was typed and checks
// that the result is an http or https URL with a host.
func Normalize(rawURL string) (NormalizedURL, error) {
	trimmed := strings.TrimSpace(rawURL)

	withScheme := trimmed
	switch {
	case hasHTTPPrefix(trimmed):
	case strings.Contains(trimmed, "://"):
		return NormalizedURL{}, newURLError(ErrUnsupportedScheme, trimmed)
	default:
		withScheme = DefaultScheme + "://" + trimmed
	}

	parsed, err := neturl.Parse(withScheme)
	if err != nil || parsed.Host == "" || hasIllegalURIChar(withScheme) {
		return NormalizedURL{}, newURLError(ErrInvalidURL, trimmed)
	}

	scheme := strings.ToLower(parsed.Scheme)
	if scheme == "" {
		return NormalizedURL{}, newURLError(ErrMissingScheme, trimmed)
	}
	if scheme != "http" && scheme != "https" {
		return NormalizedURL{}, newURLError(ErrUnsupportedScheme, trimmed)
	}

	return NormalizedURL{raw: withScheme, scheme: scheme, host: parsed.Host}, nil
}

// MustNormalize is like Normalize but panics on error. Intended for tests and
// compile-time constants.
func MustNormalize(rawURL string) NormalizedURL {
	u, err := Normalize(rawURL)
	if err != nil {
		panic("urlutil: " + err.Error() + ": " + rawURL)
	}
	return u
}

// hasIllegalURIChar reports characters RFC 3986 only allows percent-escaped.
// net/url tolerates them outside the host.
func hasIllegalURIChar(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c <= 0x20 || c >= 0x7f {
			return true
		}
		switch c {
		case '"', '<', '>', '\\', '^', '`', '{', '|', '}':
			return true
		}
	}
	return false
}

func hasHTTPPrefix(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// String returns the scheme-qualified URL exactly as normalized.
func (u NormalizedURL) String() string {
	return u.raw
}

// IsZero reports whether u was never produced by Normalize.
func (u NormalizedURL) IsZero() bool {
	return u.raw == ""
}

// Scheme returns the lower-cased scheme, "http" or "https".
func (u NormalizedURL) Scheme() string {
	return u.scheme
}

// Host returns the host and optional port.
func (u NormalizedURL) Host() string {
	return u.host
}

// IsInsecure reports plain http to anything other than a loopback host.
func (u NormalizedURL) IsInsecure() bool {
	if u.scheme != "http" {
		return false
	}
	hostname := u.host
	if h, err := neturl.Parse("//" + u.host); err == nil {
		hostname = h.Hostname()
	}
	return !IsLocalhost(hostname)
}

// JoinPath appends path elements to the instance URL, keeping any base path
// the operator typed.
func (u NormalizedURL) JoinPath(elem ...string) (string, error) {
	if u.IsZero() {
		return "", ErrInvalidURL
	}
	return neturl.JoinPath(u.raw, elem...)
}

// MarshalText implements encoding.TextMarshaler.
func (u NormalizedURL) MarshalText() ([]byte, error) {
	return []byte(u.raw), nil
}

// UnmarshalText implements encoding.TextUnmarshaler by normalizing the text.
func (u *NormalizedURL) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*u = NormalizedURL{}
		return nil
	}
	n, err := Normalize(string(text))
	if err != nil {
		return err
	}
	*u = n
	return nil
}

// IsLocalhost reports whether hostname is a loopback name or address.
func IsLocalhost(hostname string) bool {
	hostname = strings.ToLower(hostname)

	return hostname == "localhost" ||
		hostname == "127.0.0.1" ||
		hostname == "::1" ||
		hostname == "[::1]"
}
