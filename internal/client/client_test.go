package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jnavarro/taskboard/internal/client"
	"github.com/jnavarro/taskboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStubClient(t *testing.T, handler http.Handler) (*client.Client, *client.SessionStore, *recordingNavigator) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	store, err := client.NewSessionStore(sessionPath(t))
	require.NoError(t, err)
	nav := &recordingNavigator{}

	return client.New(server.URL, store, nav), store, nav
}

func TestClient_LoginPersistsSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Empty(t, r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ana@example.com", body["email"])

		json.NewEncoder(w).Encode(client.AuthResponse{
			Token:     "issued-token",
			User:      &domain.User{ID: 1, Username: "ana"},
			ExpiresIn: 8 * 3600,
		})
	})

	c, store, _ := newStubClient(t, mux)

	auth, err := c.Login(context.Background(), "ana@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "issued-token", auth.Token)

	assert.True(t, store.IsValid())
	assert.Equal(t, "issued-token", store.Token())
	assert.Equal(t, "ana", store.CurrentUser().Username)
}

func TestClient_LoginFailureLeavesNoSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
	})

	c, store, _ := newStubClient(t, mux)

	_, err := c.Login(context.Background(), "ana@example.com", "wrong")
	require.Error(t, err)

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "Invalid credentials")

	assert.False(t, store.IsValid())
}

func TestClient_ProtectedCallsAreStamped(t *testing.T) {
	var gotAuth string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/tasks", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]*domain.Task{})
	})

	c, store, _ := newStubClient(t, mux)
	require.NoError(t, store.Set("session-token", nil, 3600))

	tasks, err := c.Tasks(context.Background(), client.TaskFilter{})
	require.NoError(t, err)
	assert.Empty(t, tasks)
	assert.Equal(t, "Bearer session-token", gotAuth)
}

func TestClient_TasksFilterEncoding(t *testing.T) {
	var gotQuery string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/tasks", func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		json.NewEncoder(w).Encode([]*domain.Task{})
	})

	c, store, _ := newStubClient(t, mux)
	require.NoError(t, store.Set("token", nil, 3600))

	_, err := c.Tasks(context.Background(), client.TaskFilter{
		Statuses:   []string{"PENDING", "IN_PROGRESS"},
		Priorities: []string{"HIGH"},
		Search:     "report",
		Tag:        "work",
	})
	require.NoError(t, err)

	assert.Contains(t, gotQuery, "status=PENDING")
	assert.Contains(t, gotQuery, "status=IN_PROGRESS")
	assert.Contains(t, gotQuery, "priority=HIGH")
	assert.Contains(t, gotQuery, "search=report")
	assert.Contains(t, gotQuery, "tag=work")
}

func TestClient_ExpiredSessionCausesRedirect(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/tasks", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	})

	c, store, nav := newStubClient(t, mux)
	require.NoError(t, store.Set("rejected", nil, 3600))

	_, err := c.Tasks(context.Background(), client.TaskFilter{})
	require.Error(t, err)

	assert.False(t, store.IsValid())
	assert.Equal(t, []string{client.LoginRoute}, nav.Routes())
}

func TestClient_LogoutClearsSessionEvenOnServerError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	})

	c, store, _ := newStubClient(t, mux)
	require.NoError(t, store.Set("token", nil, 3600))

	err := c.Logout(context.Background())
	require.Error(t, err)
	assert.False(t, store.IsValid(), "local session is dropped regardless")
}

func TestClient_RefreshProfile(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/me", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(&domain.User{ID: 5, Username: "ana", FirstName: "Ana"})
	})

	c, store, _ := newStubClient(t, mux)
	require.NoError(t, store.Set("token", &domain.User{ID: 5, Username: "ana"}, 3600))

	user, err := c.RefreshProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Ana", user.FirstName)
	assert.Equal(t, "Ana", store.CurrentUser().FirstName)
}
