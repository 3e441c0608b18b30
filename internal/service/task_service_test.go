package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jnavarro/taskboard/internal/domain"
	"github.com/jnavarro/taskboard/internal/repository"
	"github.com/jnavarro/taskboard/internal/repository/postgres"
	"github.com/jnavarro/taskboard/internal/service"
	"github.com/jnavarro/taskboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type capturedEvent struct {
	UserID uint
	Action string
	Task   *domain.Task
}

type capturePublisher struct {
	mu     sync.Mutex
	events []capturedEvent
}

func (p *capturePublisher) PublishTaskEvent(userID uint, action string, task *domain.Task) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, capturedEvent{UserID: userID, Action: action, Task: task})
}

func (p *capturePublisher) Events() []capturedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]capturedEvent{}, p.events...)
}

type taskFixture struct {
	svc    *service.TaskService
	db     *testutil.TestDB
	repos  *repository.Repositories
	events *capturePublisher
	user   *domain.User
}

func newTaskFixture(t *testing.T) *taskFixture {
	t.Helper()

	db := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(db.DB)
	events := &capturePublisher{}
	svc := service.NewTaskService(repos.Task, repos.Category, events, zap.NewNop())
	user, _ := testutil.NewUserBuilder().Build(t, db.DB)

	return &taskFixture{svc: svc, db: db, repos: repos, events: events, user: user}
}

func TestTaskService_Create(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	t.Run("defaults applied", func(t *testing.T) {
		task, err := f.svc.Create(ctx, f.user.ID, service.CreateTaskInput{Title: "Write report"})
		require.NoError(t, err)

		assert.Equal(t, domain.TaskStatusPending, task.Status)
		assert.Equal(t, domain.TaskPriorityMedium, task.Priority)
		assert.Equal(t, f.user.ID, task.UserID)
		assert.Nil(t, task.CompletedAt)
	})

	t.Run("empty title rejected", func(t *testing.T) {
		_, err := f.svc.Create(ctx, f.user.ID, service.CreateTaskInput{})
		assert.ErrorIs(t, err, domain.ErrEmptyTitle)
	})

	t.Run("invalid priority rejected", func(t *testing.T) {
		_, err := f.svc.Create(ctx, f.user.ID, service.CreateTaskInput{
			Title:    "Task",
			Priority: "SOMEDAY",
		})
		assert.ErrorIs(t, err, domain.ErrInvalidPriority)
	})

	t.Run("foreign category rejected", func(t *testing.T) {
		other, _ := testutil.NewUserBuilder().Build(t, f.db.DB)
		foreign := testutil.NewCategoryBuilder().WithOwner(other).Build(t, f.db.DB)

		_, err := f.svc.Create(ctx, f.user.ID, service.CreateTaskInput{
			Title:      "Task",
			CategoryID: &foreign.ID,
		})
		assert.ErrorIs(t, err, service.ErrCategoryNotFound)
	})

	t.Run("publishes created event", func(t *testing.T) {
		before := len(f.events.Events())
		task, err := f.svc.Create(ctx, f.user.ID, service.CreateTaskInput{Title: "Evented"})
		require.NoError(t, err)

		events := f.events.Events()
		require.Greater(t, len(events), before)
		last := events[len(events)-1]
		assert.Equal(t, "created", last.Action)
		assert.Equal(t, task.ID, last.Task.ID)
	})
}

func TestTaskService_Get_Ownership(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	other, _ := testutil.NewUserBuilder().Build(t, f.db.DB)
	foreign := testutil.NewTaskBuilder().WithOwner(other).Build(t, f.db.DB)

	// A foreign task must look exactly like a missing one
	_, err := f.svc.Get(ctx, f.user.ID, foreign.ID)
	assert.ErrorIs(t, err, service.ErrTaskNotFound)

	_, err = f.svc.Get(ctx, f.user.ID, uuid.New())
	assert.ErrorIs(t, err, service.ErrTaskNotFound)
}

func TestTaskService_Update_StatusTransitions(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	task := testutil.NewTaskBuilder().WithOwner(f.user).Build(t, f.db.DB)

	completed := domain.TaskStatusCompleted
	updated, err := f.svc.Update(ctx, f.user.ID, task.ID, service.UpdateTaskInput{Status: &completed})
	require.NoError(t, err)
	require.NotNil(t, updated.CompletedAt)
	assert.WithinDuration(t, time.Now(), *updated.CompletedAt, 5*time.Second)

	pending := domain.TaskStatusPending
	updated, err = f.svc.Update(ctx, f.user.ID, task.ID, service.UpdateTaskInput{Status: &pending})
	require.NoError(t, err)
	assert.Nil(t, updated.CompletedAt)

	invalid := domain.TaskStatus("DONE")
	_, err = f.svc.Update(ctx, f.user.ID, task.ID, service.UpdateTaskInput{Status: &invalid})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestTaskService_Delete(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	task := testutil.NewTaskBuilder().WithOwner(f.user).Build(t, f.db.DB)

	require.NoError(t, f.svc.Delete(ctx, f.user.ID, task.ID))

	_, err := f.svc.Get(ctx, f.user.ID, task.ID)
	assert.ErrorIs(t, err, service.ErrTaskNotFound)

	events := f.events.Events()
	require.NotEmpty(t, events)
	assert.Equal(t, "deleted", events[len(events)-1].Action)
}

func TestTaskService_Summary(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		testutil.NewTaskBuilder().WithOwner(f.user).Build(t, f.db.DB)
	}
	testutil.NewTaskBuilder().
		WithOwner(f.user).
		WithStatus(domain.TaskStatusInProgress).
		Build(t, f.db.DB)
	for i := 0; i < 2; i++ {
		testutil.NewTaskBuilder().
			WithOwner(f.user).
			WithStatus(domain.TaskStatusCompleted).
			Build(t, f.db.DB)
	}

	// Another user's tasks must not leak into the summary
	other, _ := testutil.NewUserBuilder().Build(t, f.db.DB)
	testutil.NewTaskBuilder().WithOwner(other).Build(t, f.db.DB)

	summary, err := f.svc.Summary(ctx, f.user.ID)
	require.NoError(t, err)

	assert.Equal(t, 6, summary.Total)
	assert.Equal(t, 3, summary.Pending)
	assert.Equal(t, 1, summary.InProgress)
	assert.Equal(t, 2, summary.Completed)
	assert.LessOrEqual(t, len(summary.Recent), 5)
}
