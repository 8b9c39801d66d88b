package gateway

import (
	"crypto/subtle"
	"net/http"
	"os"
	"strings"

	"github.com/soyeahso/frontdesk/internal/config"
)

// Auth modes. "none" is only sensible when the gateway is bound to
// loopback on the kiosk machine itself.
const (
	AuthNone     = "none"
	AuthToken    = "token"
	AuthPassword = "password"
)

// AuthResult is the outcome of checking a screen's credentials.
type AuthResult struct {
	OK     bool   `json:"ok"`
	Method string `json:"method,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// ResolvedAuth is the gateway's effective auth setting once environment
// fallbacks have been applied.
type ResolvedAuth struct {
	Mode     string
	Token    string
	Password string
}

// ResolveAuth fills secrets missing from the config file from
// FRONTDESK_GATEWAY_TOKEN and FRONTDESK_GATEWAY_PASSWORD, so a kiosk image
// can ship without them. With no mode set, a password selects password
// mode and anything else means token mode.
func ResolveAuth(cfg config.GatewayAuth) ResolvedAuth {
	auth := ResolvedAuth{Mode: cfg.Mode, Token: cfg.Token, Password: cfg.Password}
	if auth.Token == "" {
		auth.Token = os.Getenv("FRONTDESK_GATEWAY_TOKEN")
	}
	if auth.Password == "" {
		auth.Password = os.Getenv("FRONTDESK_GATEWAY_PASSWORD")
	}

	if auth.Mode == "" {
		auth.Mode = AuthToken
		if auth.Password != "" {
			auth.Mode = AuthPassword
		}
	}
	return auth
}

// Authorize checks the credentials a display or console sent with connect.
func Authorize(serverAuth ResolvedAuth, clientAuth *ConnectAuth) AuthResult {
	if serverAuth.Mode == AuthNone {
		return AuthResult{OK: true, Method: AuthNone}
	}
	if clientAuth == nil {
		return AuthResult{Reason: "no credentials provided"}
	}

	switch serverAuth.Mode {
	case AuthToken:
		return checkSecret(AuthToken, serverAuth.Token, clientAuth.Token)
	case AuthPassword:
		return checkSecret(AuthPassword, serverAuth.Password, clientAuth.Password)
	default:
		return AuthResult{Reason: "unknown auth mode: " + serverAuth.Mode}
	}
}

func checkSecret(kind, want, got string) AuthResult {
	switch {
	case want == "":
		return AuthResult{Reason: "server " + kind + " not configured"}
	case got == "":
		return AuthResult{Reason: kind + " required"}
	case !safeEqual(got, want):
		return AuthResult{Reason: kind + "_mismatch"}
	}
	return AuthResult{OK: true, Method: kind}
}

// AuthorizeRequest checks the "Authorization: Bearer <secret>" header on
// the /api routes. The bearer value is the token or the password,
// whichever the mode uses.
func AuthorizeRequest(serverAuth ResolvedAuth, r *http.Request) AuthResult {
	secret, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	var creds *ConnectAuth
	if ok && secret != "" {
		creds = &ConnectAuth{Token: secret, Password: secret}
	}
	return Authorize(serverAuth, creds)
}

// safeEqual compares in constant time, including when lengths differ.
func safeEqual(a, b string) bool {
	lenMatch := subtle.ConstantTimeEq(int32(len(a)), int32(len(b)))
	cmp := subtle.ConstantTimeCompare([]byte(a), []byte(b))
	return subtle.ConstantTimeSelect(lenMatch, cmp, 0) == 1
}
