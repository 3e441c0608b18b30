package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jnavarro/taskboard/internal/domain"
	"github.com/jnavarro/taskboard/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CategoryService struct {
	categoryRepo repository.CategoryRepository
	logger       *zap.Logger
}

func NewCategoryService(categoryRepo repository.CategoryRepository, logger *zap.Logger) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo, logger: logger}
}

type CategoryInput struct {
	Name        string
	Description string
	Color       string
}

func (s *CategoryService) List(ctx context.Context, userID uint) ([]*domain.TaskCategory, error) {
	return s.categoryRepo.ListByUser(ctx, userID)
}

func (s *CategoryService) Get(ctx context.Context, userID uint, id uuid.UUID) (*domain.TaskCategory, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	if category.UserID != userID {
		return nil, ErrCategoryNotFound
	}
	return category, nil
}

func (s *CategoryService) Create(ctx context.Context, userID uint, input CategoryInput) (*domain.TaskCategory, error) {
	if input.Name == "" {
		return nil, domain.ErrEmptyCategoryName
	}

	category := &domain.TaskCategory{
		ID:          uuid.New(),
		Name:        input.Name,
		Description: input.Description,
		Color:       input.Color,
		UserID:      userID,
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) Update(ctx context.Context, userID uint, id uuid.UUID, input CategoryInput) (*domain.TaskCategory, error) {
	category, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if input.Name == "" {
		return nil, domain.ErrEmptyCategoryName
	}
	category.Name = input.Name
	category.Description = input.Description
	category.Color = input.Color

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) Delete(ctx context.Context, userID uint, id uuid.UUID) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	return s.categoryRepo.Delete(ctx, id)
}
