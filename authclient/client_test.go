package authclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monerokon/xmrpos-login/urlutil"
)

func newTestClient(opts Options) *Client {
	return New(opts)
}

func instanceOf(t *testing.T, server *httptest.Server, base string) urlutil.NormalizedURL {
	t.Helper()
	u, err := urlutil.Normalize(server.URL + base)
	require.NoError(t, err)
	return u
}

func TestClient_Login_Success(t *testing.T) {
	var got loginRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/login-pos", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "xmrpos-login", r.Header.Get("User-Agent"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"acc","refresh_token":"ref"}`))
	}))
	defer server.Close()

	client := newTestClient(Options{})
	instance := instanceOf(t, server, "")

	session, err := client.Login(context.Background(), instance, 42, "till-1", "hunter2")
	require.NoError(t, err)

	assert.Equal(t, loginRequest{VendorID: 42, Name: "till-1", Password: "hunter2"}, got)
	assert.Equal(t, "acc", session.AccessToken)
	assert.Equal(t, "ref", session.RefreshToken)
	assert.Equal(t, 42, session.VendorID)
	assert.Equal(t, "till-1", session.Username)
	assert.Equal(t, instance, session.InstanceURL)
	assert.False(t, session.IssuedAt.IsZero())
}

func TestClient_Login_KeepsBasePath(t *testing.T) {
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_, _ = w.Write([]byte(`{"access_token":"acc"}`))
	}))
	defer server.Close()

	_, err := newTestClient(Options{}).Login(context.Background(), instanceOf(t, server, "/xmrpos/"), 1, "u", "p")
	require.NoError(t, err)
	assert.Equal(t, "/xmrpos/auth/login-pos", path)
}

func TestClient_Login_Failures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode string
		wantMsg  string
	}{
		{
			name:     "json message",
			status:   http.StatusUnauthorized,
			body:     `{"success":false,"message":"bad credentials"}`,
			wantCode: CodeRejected,
			wantMsg:  "bad credentials",
		},
		{
			name:     "json error field",
			status:   http.StatusForbidden,
			body:     `{"success":false,"error":"POS device disabled"}`,
			wantCode: CodeRejected,
			wantMsg:  "POS device disabled",
		},
		{
			name:     "plain text body",
			status:   http.StatusUnauthorized,
			body:     "Invalid credentials\n",
			wantCode: CodeRejected,
			wantMsg:  "Invalid credentials",
		},
		{
			name:     "empty body",
			status:   http.StatusUnauthorized,
			body:     "",
			wantCode: CodeRejected,
			wantMsg:  "",
		},
		{
			name:     "html error page",
			status:   http.StatusBadGateway,
			body:     "<html><body>502 Bad Gateway</body></html>",
			wantCode: CodeServer,
			wantMsg:  "",
		},
		{
			name:     "server error text",
			status:   http.StatusInternalServerError,
			body:     "Failed to create token",
			wantCode: CodeServer,
			wantMsg:  "Failed to create token",
		},
		{
			name:     "success without token",
			status:   http.StatusOK,
			body:     `{"success":true}`,
			wantCode: CodeDecode,
			wantMsg:  MsgBadResponse,
		},
		{
			name:     "success with garbage",
			status:   http.StatusOK,
			body:     `not json`,
			wantCode: CodeDecode,
			wantMsg:  MsgBadResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			session, err := newTestClient(Options{}).Login(context.Background(), instanceOf(t, server, ""), 1, "u", "p")

			require.Error(t, err)
			assert.Nil(t, session)
			assert.Equal(t, tt.wantCode, Code(err))
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}
}

func TestClient_Login_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	instance := instanceOf(t, server, "")
	server.Close()

	_, err := newTestClient(Options{Timeout: 2 * time.Second}).Login(context.Background(), instance, 1, "u", "p")

	require.Error(t, err)
	assert.Equal(t, CodeTransport, Code(err))
	assert.Contains(t, err.Error(), "Could not reach instance")
}

func TestClient_Login_ResponseSizeLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"access_token":"` + strings.Repeat("a", 1024) + `"}`))
	}))
	defer server.Close()

	_, err := newTestClient(Options{MaxResponseSize: 64}).Login(context.Background(), instanceOf(t, server, ""), 1, "u", "p")

	require.Error(t, err)
	assert.Equal(t, CodeDecode, Code(err))
	assert.Contains(t, err.Error(), "exceeds maximum size")
}

func TestClient_Login_NoRetry(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := newTestClient(Options{}).Login(context.Background(), instanceOf(t, server, ""), 1, "u", "p")

	require.Error(t, err)
	assert.Equal(t, int32(1), hits.Load(), "login must issue exactly one request")
}

func TestClient_Login_CircuitBreakerOpens(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(Options{BreakerFailures: 2, BreakerTimeout: time.Minute})
	instance := instanceOf(t, server, "")

	for i := 0; i < 2; i++ {
		_, err := client.Login(context.Background(), instance, 1, "u", "p")
		require.Error(t, err)
		assert.Equal(t, CodeServer, Code(err))
	}

	_, err := client.Login(context.Background(), instance, 1, "u", "p")
	require.Error(t, err)
	assert.Equal(t, CodeUnavailable, Code(err))
	assert.Equal(t, MsgUnavailable, err.Error())
	assert.Equal(t, int32(2), hits.Load(), "open breaker must not reach the instance")

	state, ok := client.BreakerState(instance.Host())
	assert.True(t, ok)
	assert.Equal(t, gobreaker.StateOpen, state)
	assert.Equal(t, float64(2), testutil.ToFloat64(circuitBreakerState.WithLabelValues(instance.Host())))
}

func TestClient_Login_RejectionsDoNotTripBreaker(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(Options{BreakerFailures: 1})
	instance := instanceOf(t, server, "")

	for i := 0; i < 3; i++ {
		_, err := client.Login(context.Background(), instance, 1, "u", "wrong")
		require.Error(t, err)
		assert.True(t, IsRejected(err))
	}
	assert.Equal(t, int32(3), hits.Load())

	state, _ := client.BreakerState(instance.Host())
	assert.Equal(t, gobreaker.StateClosed, state)
}

func TestClient_Login_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"access_token":"acc"}`))
	}))
	defer server.Close()

	client := newTestClient(Options{RateLimit: 0.001, RateBurst: 1})
	instance := instanceOf(t, server, "")

	_, err := client.Login(context.Background(), instance, 1, "u", "p")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = client.Login(ctx, instance, 1, "u", "p")
	require.Error(t, err)
	assert.Equal(t, CodeThrottled, Code(err))
	assert.Equal(t, MsgThrottled, err.Error())
}

func TestClient_Login_RecordsMetrics(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer server.Close()

	before := testutil.ToFloat64(loginRequests.WithLabelValues(outcomeRejected))

	_, err := newTestClient(Options{}).Login(context.Background(), instanceOf(t, server, ""), 1, "u", "p")
	require.Error(t, err)

	after := testutil.ToFloat64(loginRequests.WithLabelValues(outcomeRejected))
	assert.Equal(t, before+1, after)
}

func TestExtractMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "empty", body: "", want: ""},
		{name: "whitespace", body: " \n", want: ""},
		{name: "message wins over error", body: `{"message":"m","error":"e"}`, want: "m"},
		{name: "error field", body: `{"error":" e "}`, want: "e"},
		{name: "json without fields", body: `{"success":false}`, want: ""},
		{name: "broken json falls back to text", body: `{oops`, want: "{oops"},
		{name: "plain text", body: "Unauthorized\n", want: "Unauthorized"},
		{name: "html", body: "<!doctype html><p>x</p>", want: ""},
		{name: "long text truncated", body: strings.Repeat("x", 300), want: strings.Repeat("x", maxMessageLength)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractMessage([]byte(tt.body)))
		})
	}
}

func TestSession_LogValueOmitsTokens(t *testing.T) {
	s := &Session{
		InstanceURL:  urlutil.MustNormalize("pos.example.com"),
		VendorID:     7,
		Username:     "till",
		AccessToken:  "secret-access",
		RefreshToken: "secret-refresh",
	}

	rendered := s.LogValue().String()
	assert.NotContains(t, rendered, "secret-access")
	assert.NotContains(t, rendered, "secret-refresh")
	assert.Contains(t, rendered, "pos.example.com")

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret")
}

func TestMock_RecordsCalls(t *testing.T) {
	m := &Mock{}
	instance := urlutil.MustNormalize("pos.example.com")

	session, err := m.Login(context.Background(), instance, 3, "u", "p")
	require.NoError(t, err)
	assert.Equal(t, 3, session.VendorID)

	calls := m.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, MockCall{InstanceURL: instance, VendorID: 3, Username: "u", Password: "p"}, calls[0])
}
