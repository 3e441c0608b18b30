package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jnavarro/taskboard/internal/domain"
	"github.com/jnavarro/taskboard/internal/service"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	username string
	email    string
	password string
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	suffix := uuid.New().String()[:8]
	return &UserBuilder{
		username: fmt.Sprintf("testuser_%s", suffix),
		email:    fmt.Sprintf("test_%s@example.com", suffix),
		password: "testpassword123",
	}
}

func (b *UserBuilder) WithUsername(username string) *UserBuilder {
	b.username = username
	return b
}

func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

// Build creates the user in the database and returns it with the raw password
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &domain.User{
		Username:     b.username,
		Email:        b.email,
		PasswordHash: string(hashed),
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// BuildAndAuthenticate creates the user and logs it in through the auth
// service, returning the user and a live access token.
func (b *UserBuilder) BuildAndAuthenticate(t *testing.T, ts *TestServer) (*domain.User, string) {
	t.Helper()

	user, rawPassword := b.Build(t, ts.DB.DB)

	result, err := ts.Services.Auth.Login(context.Background(), service.LoginInput{
		Email:    user.Email,
		Password: rawPassword,
	})
	if err != nil {
		t.Fatalf("failed to authenticate test user: %v", err)
	}

	return user, result.Token
}

// CategoryBuilder creates test categories
type CategoryBuilder struct {
	name  string
	color string
	user  *domain.User
}

func NewCategoryBuilder() *CategoryBuilder {
	return &CategoryBuilder{
		name:  fmt.Sprintf("category_%s", uuid.New().String()[:8]),
		color: "#336699",
	}
}

func (b *CategoryBuilder) WithName(name string) *CategoryBuilder {
	b.name = name
	return b
}

func (b *CategoryBuilder) WithOwner(user *domain.User) *CategoryBuilder {
	b.user = user
	return b
}

func (b *CategoryBuilder) Build(t *testing.T, db *gorm.DB) *domain.TaskCategory {
	t.Helper()

	if b.user == nil {
		user, _ := NewUserBuilder().Build(t, db)
		b.user = user
	}

	category := &domain.TaskCategory{
		ID:     uuid.New(),
		Name:   b.name,
		Color:  b.color,
		UserID: b.user.ID,
	}

	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create category: %v", err)
	}

	return category
}

// TaskBuilder creates test tasks
type TaskBuilder struct {
	title    string
	status   domain.TaskStatus
	priority domain.TaskPriority
	tags     []string
	dueDate  *time.Time
	category *domain.TaskCategory
	user     *domain.User
}

func NewTaskBuilder() *TaskBuilder {
	return &TaskBuilder{
		title:    fmt.Sprintf("task_%s", uuid.New().String()[:8]),
		status:   domain.TaskStatusPending,
		priority: domain.TaskPriorityMedium,
	}
}

func (b *TaskBuilder) WithTitle(title string) *TaskBuilder {
	b.title = title
	return b
}

func (b *TaskBuilder) WithStatus(status domain.TaskStatus) *TaskBuilder {
	b.status = status
	return b
}

func (b *TaskBuilder) WithPriority(priority domain.TaskPriority) *TaskBuilder {
	b.priority = priority
	return b
}

func (b *TaskBuilder) WithTags(tags ...string) *TaskBuilder {
	b.tags = tags
	return b
}

func (b *TaskBuilder) WithDueDate(due time.Time) *TaskBuilder {
	b.dueDate = &due
	return b
}

func (b *TaskBuilder) WithCategory(category *domain.TaskCategory) *TaskBuilder {
	b.category = category
	return b
}

func (b *TaskBuilder) WithOwner(user *domain.User) *TaskBuilder {
	b.user = user
	return b
}

func (b *TaskBuilder) Build(t *testing.T, db *gorm.DB) *domain.Task {
	t.Helper()

	if b.user == nil {
		user, _ := NewUserBuilder().Build(t, db)
		b.user = user
	}

	task := &domain.Task{
		ID:       uuid.New(),
		Title:    b.title,
		Status:   b.status,
		Priority: b.priority,
		UserID:   b.user.ID,
		DueDate:  b.dueDate,
	}
	if b.category != nil {
		task.CategoryID = &b.category.ID
	}
	if len(b.tags) > 0 {
		data, _ := json.Marshal(b.tags)
		task.Tags = data
	}
	if b.status == domain.TaskStatusCompleted {
		now := time.Now()
		task.CompletedAt = &now
	}

	if err := db.Create(task).Error; err != nil {
		t.Fatalf("failed to create task: %v", err)
	}

	return task
}

// CreateAuthenticatedRequest creates an HTTP request with auth token
func CreateAuthenticatedRequest(t *testing.T, method, url string, body interface{}, token string) *http.Request {
	t.Helper()

	var bodyReader *bytes.Buffer
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	} else {
		bodyReader = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, url, bodyReader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}
