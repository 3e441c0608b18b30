package service

import (
	"github.com/jnavarro/taskboard/internal/config"
	"github.com/jnavarro/taskboard/internal/repository"
	"go.uber.org/zap"
)

type Services struct {
	Auth     *AuthService
	Task     *TaskService
	Category *CategoryService
}

func NewServices(repos *repository.Repositories, revoker repository.TokenRevoker, events TaskEventPublisher, cfg *config.Config, logger *zap.Logger) *Services {
	return &Services{
		Auth:     NewAuthService(repos.User, repos.Session, revoker, cfg, logger),
		Task:     NewTaskService(repos.Task, repos.Category, events, logger),
		Category: NewCategoryService(repos.Category, logger),
	}
}
