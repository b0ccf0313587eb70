package authclient

import (
	"context"
	"sync"
	"time"

	"github.com/monerokon/xmrpos-login/urlutil"
)

// MockCall records the arguments of one Mock.Login call.
type MockCall struct {
	InstanceURL urlutil.NormalizedURL
	VendorID    int
	Username    string
	Password    string
}

// Mock is an in-memory stand-in for Client, for testing callers.
//
// When Gate is non-nil, Login blocks until a value is received from it (or
// the context ends), which lets tests observe the in-flight state.
type Mock struct {
	Session *Session
	Err     error
	Gate    chan struct{}

	mu    sync.Mutex
	calls []MockCall
}

// Login records the call and returns the configured session or error.
func (m *Mock) Login(ctx context.Context, instanceURL urlutil.NormalizedURL, vendorID int, username, password string) (*Session, error) {
	m.mu.Lock()
	m.calls = append(m.calls, MockCall{
		InstanceURL: instanceURL,
		VendorID:    vendorID,
		Username:    username,
		Password:    password,
	})
	m.mu.Unlock()

	if m.Gate != nil {
		select {
		case <-m.Gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if m.Err != nil {
		return nil, m.Err
	}
	if m.Session != nil {
		return m.Session, nil
	}
	return &Session{
		InstanceURL: instanceURL,
		VendorID:    vendorID,
		Username:    username,
		AccessToken: "mock-access-token",
		IssuedAt:    time.Now(),
	}, nil
}

// Calls returns a copy of the recorded calls.
func (m *Mock) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockCall(nil), m.calls...)
}
