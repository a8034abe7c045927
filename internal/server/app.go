// Package server initializes and runs the main application server. It
// connects both storage backends, applies migrations and indexes, and starts
// the HTTP server before the first request is accepted.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/config"
	tasksrepo "github.com/dmitrijs2005/taskkeeper/internal/server/repositories/tasks"
	usersrepo "github.com/dmitrijs2005/taskkeeper/internal/server/repositories/users"
	"github.com/dmitrijs2005/taskkeeper/internal/server/session"
	"github.com/dmitrijs2005/taskkeeper/internal/server/shared/db"
	"github.com/dmitrijs2005/taskkeeper/internal/server/tasks"
	"github.com/dmitrijs2005/taskkeeper/internal/server/users"
	"github.com/dmitrijs2005/taskkeeper/internal/server/web"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	webServer   *web.Server
	userService *users.Service
	taskService *tasks.Service
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slogger)

	sqlDB, err := db.NewPostgresDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("postgres init error: %w", err)
	}

	mongoClient, err := db.NewMongoClient(ctx, c.MongoURI)
	if err != nil {
		return nil, fmt.Errorf("mongo init error: %w", err)
	}

	userRepo := usersrepo.NewMongoRepository(mongoClient.Database(c.MongoDatabase))
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("mongo index error: %w", err)
	}
	taskRepo := tasksrepo.NewPostgresRepository(sqlDB)

	us := users.NewService(userRepo, c)
	ts := tasks.NewService(taskRepo)

	sessions := session.NewManager(c.SessionSecret, c.SessionDuration, c.SessionActiveDuration)

	ws, err := web.NewServer(c.EndpointAddr, logger, sessions, us, ts)
	if err != nil {
		return nil, fmt.Errorf("web server init error: %w", err)
	}

	return &App{
		config:      c,
		logger:      logger,
		webServer:   ws,
		userService: us,
		taskService: ts,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startWebServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.webServer.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startWebServer(ctx, cancelFunc)
	}()

	wg.Wait()
}
