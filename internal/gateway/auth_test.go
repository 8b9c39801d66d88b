package gateway

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/soyeahso/frontdesk/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestSafeEqual(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"kiosk-secret", "kiosk-secret", true},
		{"", "", true},
		{"kiosk-secret", "kiosk-secreT", false},
		{"short", "kiosk-secret", false},
		{"kiosk-secret", "", false},
		{"", "kiosk-secret", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, safeEqual(tt.a, tt.b), "%q vs %q", tt.a, tt.b)
	}
}

func TestResolveAuth(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.GatewayAuth
		env  map[string]string
		want ResolvedAuth
	}{
		{
			name: "token from config",
			cfg:  config.GatewayAuth{Mode: "token", Token: "cfg-token"},
			want: ResolvedAuth{Mode: "token", Token: "cfg-token"},
		},
		{
			name: "password from config",
			cfg:  config.GatewayAuth{Mode: "password", Password: "cfg-pass"},
			want: ResolvedAuth{Mode: "password", Password: "cfg-pass"},
		},
		{
			name: "mode defaults to token",
			want: ResolvedAuth{Mode: "token"},
		},
		{
			name: "mode defaults to password when one is set",
			cfg:  config.GatewayAuth{Password: "cfg-pass"},
			want: ResolvedAuth{Mode: "password", Password: "cfg-pass"},
		},
		{
			name: "secrets from env",
			env:  map[string]string{"FRONTDESK_GATEWAY_TOKEN": "env-token", "FRONTDESK_GATEWAY_PASSWORD": "env-pass"},
			cfg:  config.GatewayAuth{Mode: "token"},
			want: ResolvedAuth{Mode: "token", Token: "env-token", Password: "env-pass"},
		},
		{
			name: "config wins over env",
			env:  map[string]string{"FRONTDESK_GATEWAY_TOKEN": "env-token"},
			cfg:  config.GatewayAuth{Mode: "token", Token: "cfg-token"},
			want: ResolvedAuth{Mode: "token", Token: "cfg-token"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("FRONTDESK_GATEWAY_TOKEN", "")
			t.Setenv("FRONTDESK_GATEWAY_PASSWORD", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			assert.Equal(t, tt.want, ResolveAuth(tt.cfg))
		})
	}
}

func TestAuthorize(t *testing.T) {
	tokenAuth := ResolvedAuth{Mode: "token", Token: "kiosk-secret"}
	passAuth := ResolvedAuth{Mode: "password", Password: "desk-pass"}

	tests := []struct {
		name   string
		server ResolvedAuth
		client *ConnectAuth
		ok     bool
		method string
		reason string
	}{
		{"token ok", tokenAuth, &ConnectAuth{Token: "kiosk-secret"}, true, "token", ""},
		{"token mismatch", tokenAuth, &ConnectAuth{Token: "nope"}, false, "", "token_mismatch"},
		{"token missing", tokenAuth, &ConnectAuth{}, false, "", "token required"},
		{"server token unset", ResolvedAuth{Mode: "token"}, &ConnectAuth{Token: "x"}, false, "", "server token not configured"},
		{"password ok", passAuth, &ConnectAuth{Password: "desk-pass"}, true, "password", ""},
		{"password mismatch", passAuth, &ConnectAuth{Password: "nope"}, false, "", "password_mismatch"},
		{"password missing", passAuth, &ConnectAuth{}, false, "", "password required"},
		{"server password unset", ResolvedAuth{Mode: "password"}, &ConnectAuth{Password: "x"}, false, "", "server password not configured"},
		{"no credentials", tokenAuth, nil, false, "", "no credentials provided"},
		{"unknown mode", ResolvedAuth{Mode: "oauth"}, &ConnectAuth{Token: "x"}, false, "", "unknown auth mode: oauth"},
		{"none mode", ResolvedAuth{Mode: "none"}, nil, true, "none", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Authorize(tt.server, tt.client)
			assert.Equal(t, tt.ok, got.OK)
			assert.Equal(t, tt.method, got.Method)
			assert.Equal(t, tt.reason, got.Reason)
		})
	}
}

func TestAuthorizeRequest(t *testing.T) {
	tokenAuth := ResolvedAuth{Mode: "token", Token: "kiosk-secret"}
	passAuth := ResolvedAuth{Mode: "password", Password: "desk-pass"}

	tests := []struct {
		name   string
		auth   ResolvedAuth
		header string
		ok     bool
	}{
		{"token ok", tokenAuth, "Bearer kiosk-secret", true},
		{"token wrong", tokenAuth, "Bearer nope", false},
		{"no header", tokenAuth, "", false},
		{"not bearer", tokenAuth, "Basic kiosk-secret", false},
		{"empty bearer", tokenAuth, "Bearer ", false},
		{"password ok", passAuth, "Bearer desk-pass", true},
		{"none mode", ResolvedAuth{Mode: "none"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/token", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			assert.Equal(t, tt.ok, AuthorizeRequest(tt.auth, r).OK)
		})
	}
}

func TestCheckWebSocketOrigin(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    bool
	}{
		{"no origin header", nil, "", true},
		{"nothing allowed", nil, "http://lobby.local", false},
		{"wildcard", []string{"*"}, "http://lobby.local", true},
		{"listed", []string{"http://lobby.local", "http://desk.local"}, "http://desk.local", true},
		{"not listed", []string{"http://lobby.local"}, "http://evil.example", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/ws", nil)
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.want, checkWebSocketOrigin(tt.allowed)(r))
		})
	}
}

func TestAuthRateLimiter_BlocksPerHost(t *testing.T) {
	limiter := newAuthRateLimiter()
	assert.True(t, limiter.allow("192.168.1.20:5000"))

	for range authRateMaxFails - 1 {
		limiter.recordFailure("192.168.1.20:5000")
	}
	assert.True(t, limiter.allow("192.168.1.20:6000"))

	limiter.recordFailure("192.168.1.20:7000")
	assert.False(t, limiter.allow("192.168.1.20:5000"))
	assert.True(t, limiter.allow("192.168.1.21:5000"))
}

func TestAuthRateLimiter_HostWithoutPort(t *testing.T) {
	limiter := newAuthRateLimiter()
	for range authRateMaxFails {
		limiter.recordFailure("192.168.1.20")
	}
	assert.False(t, limiter.allow("192.168.1.20"))
}

func TestAuthRateLimiter_FailuresExpire(t *testing.T) {
	limiter := newAuthRateLimiter()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	for range authRateMaxFails {
		limiter.recordFailure("10.0.0.1:1000")
	}
	assert.False(t, limiter.allow("10.0.0.1:1000"))

	now = now.Add(authRateWindow + time.Second)
	assert.True(t, limiter.allow("10.0.0.1:1000"))
}

func TestAuthRateLimiter_PruneDropsStaleHosts(t *testing.T) {
	limiter := newAuthRateLimiter()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	limiter.recordFailure("10.0.0.1:1000")
	now = now.Add(authRateWindow / 2)
	limiter.recordFailure("10.0.0.2:1000")
	now = now.Add(authRateWindow/2 + time.Second)

	limiter.prune()

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	assert.NotContains(t, limiter.failures, "10.0.0.1")
	assert.Contains(t, limiter.failures, "10.0.0.2")
}

func TestAuthRateLimiter_RunStopsOnClose(t *testing.T) {
	limiter := newAuthRateLimiter()
	done := make(chan struct{})
	go func() {
		limiter.run(time.Millisecond)
		close(done)
	}()

	limiter.close()
	limiter.close()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("run did not return after close")
	}
}
