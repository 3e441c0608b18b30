package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jnavarro/taskboard/internal/domain"
	"github.com/jnavarro/taskboard/internal/repository/postgres"
	"github.com/jnavarro/taskboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskRepository_ListByUser_Filters(t *testing.T) {
	db := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(db.DB)
	user, _ := testutil.NewUserBuilder().Build(t, db.DB)
	category := testutil.NewCategoryBuilder().WithOwner(user).Build(t, db.DB)

	due := time.Date(2026, 9, 15, 12, 0, 0, 0, time.UTC)

	groceries := testutil.NewTaskBuilder().
		WithOwner(user).
		WithTitle("Buy groceries").
		WithPriority(domain.TaskPriorityLow).
		WithTags("errand", "home").
		Build(t, db.DB)

	report := testutil.NewTaskBuilder().
		WithOwner(user).
		WithTitle("Quarterly report").
		WithStatus(domain.TaskStatusInProgress).
		WithPriority(domain.TaskPriorityUrgent).
		WithCategory(category).
		WithDueDate(due).
		WithTags("work").
		Build(t, db.DB)

	review := testutil.NewTaskBuilder().
		WithOwner(user).
		WithTitle("Code review").
		WithStatus(domain.TaskStatusCompleted).
		WithPriority(domain.TaskPriorityHigh).
		WithDueDate(due.AddDate(0, 0, 10)).
		Build(t, db.DB)

	// Another user's task with matching attributes must never appear
	other, _ := testutil.NewUserBuilder().Build(t, db.DB)
	testutil.NewTaskBuilder().
		WithOwner(other).
		WithTitle("Quarterly report").
		Build(t, db.DB)

	tests := []struct {
		name    string
		filter  domain.TaskFilter
		wantIDs []uuid.UUID
	}{
		{
			name:    "no filter returns all own tasks",
			filter:  domain.TaskFilter{},
			wantIDs: []uuid.UUID{groceries.ID, report.ID, review.ID},
		},
		{
			name:    "by status",
			filter:  domain.TaskFilter{Statuses: []domain.TaskStatus{domain.TaskStatusInProgress}},
			wantIDs: []uuid.UUID{report.ID},
		},
		{
			name: "by multiple statuses",
			filter: domain.TaskFilter{Statuses: []domain.TaskStatus{
				domain.TaskStatusInProgress, domain.TaskStatusCompleted,
			}},
			wantIDs: []uuid.UUID{report.ID, review.ID},
		},
		{
			name:    "by priority",
			filter:  domain.TaskFilter{Priorities: []domain.TaskPriority{domain.TaskPriorityUrgent}},
			wantIDs: []uuid.UUID{report.ID},
		},
		{
			name:    "by category",
			filter:  domain.TaskFilter{CategoryIDs: []uuid.UUID{category.ID}},
			wantIDs: []uuid.UUID{report.ID},
		},
		{
			name:    "by title search",
			filter:  domain.TaskFilter{Search: "groceries"},
			wantIDs: []uuid.UUID{groceries.ID},
		},
		{
			name:    "search is case insensitive",
			filter:  domain.TaskFilter{Search: "QUARTERLY"},
			wantIDs: []uuid.UUID{report.ID},
		},
		{
			name:    "by tag",
			filter:  domain.TaskFilter{Tag: "errand"},
			wantIDs: []uuid.UUID{groceries.ID},
		},
		{
			name:    "by due date range",
			filter:  domain.TaskFilter{DueDateFrom: timePtr(due.AddDate(0, 0, -1)), DueDateTo: timePtr(due.AddDate(0, 0, 1))},
			wantIDs: []uuid.UUID{report.ID},
		},
		{
			name:    "no matches",
			filter:  domain.TaskFilter{Search: "does-not-exist"},
			wantIDs: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks, err := repos.Task.ListByUser(context.Background(), user.ID, tt.filter)
			require.NoError(t, err)

			got := make([]uuid.UUID, 0, len(tasks))
			for _, task := range tasks {
				got = append(got, task.ID)
			}
			assert.ElementsMatch(t, tt.wantIDs, got)
		})
	}
}

func TestUserRepository(t *testing.T) {
	db := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(db.DB)
	ctx := context.Background()

	user := &domain.User{
		Username:     "repo_user",
		Email:        "repo@example.com",
		PasswordHash: "hashed",
		FirstName:    "Repo",
	}
	require.NoError(t, repos.User.Create(ctx, user))
	require.NotZero(t, user.ID)

	byID, err := repos.User.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "repo_user", byID.Username)

	byEmail, err := repos.User.GetByEmail(ctx, "repo@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	_, err = repos.User.GetByEmail(ctx, "missing@example.com")
	assert.Error(t, err)

	byID.LastName = "Updated"
	require.NoError(t, repos.User.Update(ctx, byID))
	again, err := repos.User.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Updated", again.LastName)
}

func TestSessionRepository(t *testing.T) {
	db := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(db.DB)
	user, _ := testutil.NewUserBuilder().Build(t, db.DB)
	ctx := context.Background()

	live := &domain.UserSession{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenID:   uuid.New().String(),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	expired := &domain.UserSession{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenID:   uuid.New().String(),
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	require.NoError(t, repos.Session.Create(ctx, live))
	require.NoError(t, repos.Session.Create(ctx, expired))

	require.NoError(t, repos.Session.DeleteExpired(ctx))

	sessions, err := repos.Session.GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, live.TokenID, sessions[0].TokenID)

	require.NoError(t, repos.Session.DeleteByUserID(ctx, user.ID))
	sessions, err = repos.Session.GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func timePtr(t time.Time) *time.Time {
	return &t
}
