package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jnavarro/taskboard/internal/domain"
)

// Client is the typed HTTP client for the taskboard API. Every request goes
// through the bearer Transport, so protected calls are stamped automatically
// and any 401 forces a logout. List reads always hit the server; there is no
// client-side cache to reconcile, the server response wins.
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    *SessionStore
}

func New(baseURL string, session *SessionStore, nav Navigator) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/") + "/api/v1",
		httpClient: &http.Client{
			Transport: NewTransport(session, nav, nil),
			Timeout:   30 * time.Second,
		},
		session: session,
	}
}

// APIError carries the status and body of a non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Message)
}

type AuthResponse struct {
	Token     string       `json:"token"`
	User      *domain.User `json:"user"`
	ExpiresIn int          `json:"expiresIn"`
}

type CreateTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Priority    string     `json:"priority,omitempty"`
	CategoryID  *uuid.UUID `json:"categoryId,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
}

type UpdateTaskRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Status      *string    `json:"status,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	CategoryID  *uuid.UUID `json:"categoryId,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
}

type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
}

type TaskSummary struct {
	Total      int            `json:"total"`
	Pending    int            `json:"pending"`
	InProgress int            `json:"inProgress"`
	Completed  int            `json:"completed"`
	Recent     []*domain.Task `json:"recent"`
}

// Login authenticates and, on success, persists the new session.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	body := map[string]string{"email": email, "password": password}

	var result AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &result); err != nil {
		return nil, err
	}

	if err := c.session.Set(result.Token, result.User, result.ExpiresIn); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}
	return &result, nil
}

type RegisterInput struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// Register creates an account and persists the returned session, mirroring
// the login flow.
func (c *Client) Register(ctx context.Context, input RegisterInput) (*AuthResponse, error) {
	var result AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", input, &result); err != nil {
		return nil, err
	}

	if err := c.session.Set(result.Token, result.User, result.ExpiresIn); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}
	return &result, nil
}

// RefreshProfile re-fetches the current user and updates the cached profile.
func (c *Client) RefreshProfile(ctx context.Context) (*domain.User, error) {
	var user domain.User
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &user); err != nil {
		return nil, err
	}
	if err := c.session.SetUser(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout tells the server to revoke the token, then clears local state. The
// local session is dropped even when the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
	if clearErr := c.session.Clear(); clearErr != nil && err == nil {
		err = clearErr
	}
	return err
}

type TaskFilter struct {
	Statuses    []string
	Priorities  []string
	CategoryIDs []uuid.UUID
	Search      string
	Tag         string
	DueDateFrom *time.Time
	DueDateTo   *time.Time
}

func (c *Client) Tasks(ctx context.Context, filter TaskFilter) ([]*domain.Task, error) {
	params := url.Values{}
	for _, s := range filter.Statuses {
		params.Add("status", s)
	}
	for _, p := range filter.Priorities {
		params.Add("priority", p)
	}
	for _, id := range filter.CategoryIDs {
		params.Add("categoryId", id.String())
	}
	if filter.Search != "" {
		params.Set("search", filter.Search)
	}
	if filter.Tag != "" {
		params.Set("tag", filter.Tag)
	}
	if filter.DueDateFrom != nil {
		params.Set("dueDateFrom", filter.DueDateFrom.Format(time.RFC3339))
	}
	if filter.DueDateTo != nil {
		params.Set("dueDateTo", filter.DueDateTo.Format(time.RFC3339))
	}

	path := "/tasks"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var tasks []*domain.Task
	if err := c.do(ctx, http.MethodGet, path, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) Task(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	var task domain.Task
	if err := c.do(ctx, http.MethodGet, "/tasks/"+id.String(), nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) CreateTask(ctx context.Context, input CreateTaskRequest) (*domain.Task, error) {
	var task domain.Task
	if err := c.do(ctx, http.MethodPost, "/tasks", input, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) UpdateTask(ctx context.Context, id uuid.UUID, input UpdateTaskRequest) (*domain.Task, error) {
	var task domain.Task
	if err := c.do(ctx, http.MethodPut, "/tasks/"+id.String(), input, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) DeleteTask(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/tasks/"+id.String(), nil, nil)
}

func (c *Client) TaskSummary(ctx context.Context) (*TaskSummary, error) {
	var summary TaskSummary
	if err := c.do(ctx, http.MethodGet, "/tasks/summary", nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (c *Client) Categories(ctx context.Context) ([]*domain.TaskCategory, error) {
	var categories []*domain.TaskCategory
	if err := c.do(ctx, http.MethodGet, "/categories", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (c *Client) CreateCategory(ctx context.Context, input CategoryRequest) (*domain.TaskCategory, error) {
	var category domain.TaskCategory
	if err := c.do(ctx, http.MethodPost, "/categories", input, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

func (c *Client) UpdateCategory(ctx context.Context, id uuid.UUID, input CategoryRequest) (*domain.TaskCategory, error) {
	var category domain.TaskCategory
	if err := c.do(ctx, http.MethodPut, "/categories/"+id.String(), input, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

func (c *Client) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/categories/"+id.String(), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(msg)),
		}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
