package container

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-task-manager/config"
	"github.com/oksasatya/go-task-manager/internal/application"
	"github.com/oksasatya/go-task-manager/internal/domain/repository"
	"github.com/oksasatya/go-task-manager/pkg/helpers"
	"github.com/oksasatya/go-task-manager/pkg/mailer"
)

// Container carries the constructed components from main to the router.
// Optional integrations (cache, object storage, search, queue) are already
// folded into Pictures, TaskIndex and Notifier by the time it is built.
type Container struct {
	Config *config.Config
	Logger *logrus.Logger
	JWT    *helpers.JWTManager

	Users     repository.UserRepository
	Tasks     repository.TaskRepository
	Pictures  repository.PictureStore
	TaskIndex application.TaskIndex
	Notifier  mailer.Notifier

	// Ping reports storage health; nil means always healthy.
	Ping func(ctx context.Context) error
}

// Services builds the application layer from the container's dependencies.
func (c *Container) Services() (*application.CredentialStore, *application.UserService, *application.TaskService, error) {
	store, err := application.NewCredentialStore(c.Users, c.Config.BcryptCost)
	if err != nil {
		return nil, nil, nil, err
	}
	users := application.NewUserService(store, c.JWT, c.Pictures, c.TaskIndex, c.Notifier, c.Config, c.Logger)
	tasks := application.NewTaskService(c.Tasks, c.TaskIndex, c.Logger)
	return store, users, tasks, nil
}
