package authclient

import (
	"log/slog"
	"time"

	"github.com/monerokon/xmrpos-login/urlutil"
)

// Session is the result of a successful login.
type Session struct {
	InstanceURL  urlutil.NormalizedURL `json:"instanceUrl"`
	VendorID     int                   `json:"vendorId"`
	Username     string                `json:"username"`
	AccessToken  string                `json:"-"`
	RefreshToken string                `json:"-"`
	IssuedAt     time.Time             `json:"issuedAt"`
}

// LogValue implements slog.LogValuer without the tokens.
func (s *Session) LogValue() slog.Value {
	if s == nil {
		return slog.StringValue("<nil>")
	}
	return slog.GroupValue(
		slog.String("instance", s.InstanceURL.Host()),
		slog.Int("vendor_id", s.VendorID),
		slog.String("username", s.Username),
		slog.Time("issued_at", s.IssuedAt),
	)
}

// loginRequest is the body accepted by the backend's POS login endpoint.
type loginRequest struct {
	VendorID int    `json:"vendor_id"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// tokenResponse is the body returned on a successful POS login.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// errorResponse covers both error shapes the backend emits.
type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}
