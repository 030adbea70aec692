package router

import (
	"github.com/oksasatya/go-task-manager/internal/container"
	handlers "github.com/oksasatya/go-task-manager/internal/interface/http"
	"github.com/oksasatya/go-task-manager/internal/interface/middleware"
	"github.com/oksasatya/go-task-manager/internal/router/modules"
)

// InitModules builds the services and handlers from c and adds every module
// to the registry. Call RegisterAll afterwards.
func InitModules(r *Registry, c *container.Container) error {
	store, users, tasks, err := c.Services()
	if err != nil {
		return err
	}
	auth := middleware.Auth(c.JWT, store, c.Logger)

	r.Add(
		modules.NewDebugModule(c.Config.DebugMetricsEnabled, c.Ping),
		modules.NewUserModule(handlers.NewUserHandler(users, c.Logger), auth),
		modules.NewTaskModule(handlers.NewTaskHandler(tasks, c.Logger), auth),
	)
	return nil
}
