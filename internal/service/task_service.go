package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jnavarro/taskboard/internal/domain"
	"github.com/jnavarro/taskboard/internal/repository"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound     = errors.New("task not found")
	ErrCategoryNotFound = errors.New("category not found")
)

// TaskEventPublisher pushes task change notifications to connected clients.
// Delivery is best-effort; persistence never depends on it.
type TaskEventPublisher interface {
	PublishTaskEvent(userID uint, action string, task *domain.Task)
}

type TaskService struct {
	taskRepo     repository.TaskRepository
	categoryRepo repository.CategoryRepository
	events       TaskEventPublisher
	logger       *zap.Logger
}

func NewTaskService(taskRepo repository.TaskRepository, categoryRepo repository.CategoryRepository, events TaskEventPublisher, logger *zap.Logger) *TaskService {
	return &TaskService{
		taskRepo:     taskRepo,
		categoryRepo: categoryRepo,
		events:       events,
		logger:       logger,
	}
}

type CreateTaskInput struct {
	Title       string
	Description string
	Priority    domain.TaskPriority
	CategoryID  *uuid.UUID
	DueDate     *time.Time
	Tags        []string
}

type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *domain.TaskStatus
	Priority    *domain.TaskPriority
	CategoryID  *uuid.UUID
	DueDate     *time.Time
	Tags        []string
}

type TaskSummary struct {
	Total      int
	Pending    int
	InProgress int
	Completed  int
	Recent     []*domain.Task
}

func (s *TaskService) List(ctx context.Context, userID uint, filter domain.TaskFilter) ([]*domain.Task, error) {
	return s.taskRepo.ListByUser(ctx, userID, filter)
}

func (s *TaskService) Get(ctx context.Context, userID uint, id uuid.UUID) (*domain.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	if task.UserID != userID {
		// Foreign tasks are indistinguishable from missing ones
		return nil, ErrTaskNotFound
	}
	return task, nil
}

func (s *TaskService) Create(ctx context.Context, userID uint, input CreateTaskInput) (*domain.Task, error) {
	if input.Title == "" {
		return nil, domain.ErrEmptyTitle
	}

	priority := input.Priority
	if priority == "" {
		priority = domain.TaskPriorityMedium
	}
	if !priority.Valid() {
		return nil, domain.ErrInvalidPriority
	}

	if input.CategoryID != nil {
		if err := s.checkCategoryOwner(ctx, userID, *input.CategoryID); err != nil {
			return nil, err
		}
	}

	task := &domain.Task{
		ID:          uuid.New(),
		Title:       input.Title,
		Description: input.Description,
		Status:      domain.TaskStatusPending,
		Priority:    priority,
		CategoryID:  input.CategoryID,
		UserID:      userID,
		DueDate:     input.DueDate,
		Tags:        marshalTags(input.Tags),
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, err
	}

	s.publish(userID, "created", task)
	return task, nil
}

func (s *TaskService) Update(ctx context.Context, userID uint, id uuid.UUID, input UpdateTaskInput) (*domain.Task, error) {
	task, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		if *input.Title == "" {
			return nil, domain.ErrEmptyTitle
		}
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Priority != nil {
		if !input.Priority.Valid() {
			return nil, domain.ErrInvalidPriority
		}
		task.Priority = *input.Priority
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, domain.ErrInvalidStatus
		}
		s.applyStatus(task, *input.Status)
	}
	if input.CategoryID != nil {
		if err := s.checkCategoryOwner(ctx, userID, *input.CategoryID); err != nil {
			return nil, err
		}
		task.CategoryID = input.CategoryID
	}
	if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	if input.Tags != nil {
		task.Tags = marshalTags(input.Tags)
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, err
	}

	s.publish(userID, "updated", task)
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, userID uint, id uuid.UUID) error {
	task, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.taskRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(userID, "deleted", task)
	return nil
}

// Summary computes the dashboard counts and the five most recent tasks.
func (s *TaskService) Summary(ctx context.Context, userID uint) (*TaskSummary, error) {
	tasks, err := s.taskRepo.ListByUser(ctx, userID, domain.TaskFilter{})
	if err != nil {
		return nil, err
	}

	summary := &TaskSummary{Total: len(tasks)}
	for _, task := range tasks {
		switch task.Status {
		case domain.TaskStatusPending:
			summary.Pending++
		case domain.TaskStatusInProgress:
			summary.InProgress++
		case domain.TaskStatusCompleted:
			summary.Completed++
		}
	}

	recent := make([]*domain.Task, len(tasks))
	copy(recent, tasks)
	sort.Slice(recent, func(i, j int) bool {
		return recent[i].CreatedAt.After(recent[j].CreatedAt)
	})
	if len(recent) > 5 {
		recent = recent[:5]
	}
	summary.Recent = recent

	return summary, nil
}

func (s *TaskService) applyStatus(task *domain.Task, status domain.TaskStatus) {
	if task.Status == status {
		return
	}
	task.Status = status
	if status == domain.TaskStatusCompleted {
		now := time.Now()
		task.CompletedAt = &now
	} else {
		task.CompletedAt = nil
	}
}

func (s *TaskService) checkCategoryOwner(ctx context.Context, userID uint, categoryID uuid.UUID) error {
	category, err := s.categoryRepo.GetByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}
	if category.UserID != userID {
		return ErrCategoryNotFound
	}
	return nil
}

func (s *TaskService) publish(userID uint, action string, task *domain.Task) {
	if s.events == nil {
		return
	}
	s.events.PublishTaskEvent(userID, action, task)
}

func marshalTags(tags []string) datatypes.JSON {
	if len(tags) == 0 {
		return nil
	}
	data, _ := json.Marshal(tags)
	return datatypes.JSON(data)
}
