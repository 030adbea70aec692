package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-task-manager/config"
	"github.com/oksasatya/go-task-manager/internal/application"
	"github.com/oksasatya/go-task-manager/internal/domain/entity"
	"github.com/oksasatya/go-task-manager/internal/domain/repository"
	pginfra "github.com/oksasatya/go-task-manager/internal/infrastructure/postgres"
	"github.com/oksasatya/go-task-manager/pkg/helpers"
	"github.com/oksasatya/go-task-manager/pkg/validation"
)

var demoTasks = []string{
	"Read the onboarding guide",
	"Set up a profile picture",
	"Finish the quarterly report",
}

// Seeds a demo account with a few tasks. Safe to run more than once.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)
	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	users := pginfra.NewUserRepository(pool)
	store, err := application.NewCredentialStore(users, cfg.BcryptCost)
	if err != nil {
		log.Fatalf("credential store: %v", err)
	}
	tasks := application.NewTaskService(pginfra.NewTaskRepository(pool), nil, logger)

	email := "demo@example.com"
	password := "tester11"
	age := 30

	u, err := users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		fmt.Printf("demo user already exists: id=%s email=%s\n", u.ID, email)
	case errors.Is(err, repository.ErrNotFound):
		u, err = store.Create(ctx, application.NewUserInput{Name: "Demo User", Email: email, Password: password, Age: &age})
		if err != nil {
			log.Fatalf("failed to seed user: %v", err)
		}
		fmt.Printf("seeded user: id=%s email=%s password=%s\n", u.ID, email, password)
	default:
		log.Fatalf("failed to look up demo user: %v", err)
	}

	var dup *validation.Error
	for i, desc := range demoTasks {
		t, err := tasks.Create(ctx, u.ID, application.NewTaskInput{Description: desc, Completed: i == 0})
		if errors.As(err, &dup) {
			fmt.Printf("task exists: %q\n", desc)
			continue
		}
		if err != nil {
			log.Fatalf("failed to seed task %q: %v", desc, err)
		}
		printTask(t)
	}
}

func printTask(t *entity.Task) {
	fmt.Printf("seeded task: id=%s completed=%v description=%q\n", t.ID, t.Completed, t.Description)
}
