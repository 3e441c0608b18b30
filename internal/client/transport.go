package client

import (
	"net/http"
	"strings"
)

// LoginRoute is where denied or logged-out clients are sent.
const LoginRoute = "/login"

// Navigator abstracts the view layer's navigation so the transport and the
// route guard stay testable.
type Navigator interface {
	NavigateTo(route string)
}

// Transport stamps outgoing requests with the bearer token and turns any 401
// response into a forced logout plus a single redirect to the login route.
// Requests to the authentication endpoints are never stamped; login must not
// depend on an existing session.
type Transport struct {
	store *SessionStore
	nav   Navigator
	base  http.RoundTripper
}

func NewTransport(store *SessionStore, nav Navigator, base http.RoundTripper) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{store: store, nav: nav, base: base}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if token := t.store.Token(); token != "" && !isAuthEndpoint(req.URL.Path) {
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		// Invalidate reports the transition exactly once, so overlapping
		// 401s produce a single redirect.
		if t.store.Invalidate() {
			t.nav.NavigateTo(LoginRoute)
		}
	}

	return resp, nil
}

func isAuthEndpoint(path string) bool {
	return strings.Contains(path, "/auth/login") || strings.Contains(path, "/auth/register")
}
