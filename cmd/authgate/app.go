package main

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/goliatone/go-authgate"
	"github.com/goliatone/go-authgate/catalog"
	"github.com/goliatone/go-router"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// userBackend is a store the app can both read and seed
type userBackend interface {
	authgate.UserStore
	authgate.UserRegistrar
}

type App struct {
	config  *authgate.ServerConfig
	logger  authgate.Logger
	bunDB   *bun.DB
	users   userBackend
	gateway *authgate.Gateway
	auther  *authgate.RouteAuthenticator
	srv     router.Server[*fiber.App]
}

// NewApp wires persistence, the gateway and the HTTP server
func NewApp(ctx context.Context, cfg *authgate.ServerConfig, logger authgate.Logger) (*App, error) {
	app := &App{
		config: cfg,
		logger: logger,
	}

	if err := WithPersistence(ctx, app); err != nil {
		return nil, err
	}

	if err := WithSeed(ctx, app); err != nil {
		app.Close()
		return nil, err
	}

	if err := WithGateway(ctx, app); err != nil {
		app.Close()
		return nil, err
	}

	WithHTTPServer(app)

	return app, nil
}

// Close releases the database handle, if any
func (a *App) Close() error {
	if a.bunDB != nil {
		return a.bunDB.Close()
	}
	return nil
}

func WithPersistence(ctx context.Context, app *App) error {
	dsn := app.config.Database.DSN
	if dsn == "" {
		app.logger.Info("using in-memory user store")
		app.users = authgate.NewMemoryStore()
		return nil
	}

	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return err
	}
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	repo := authgate.NewUsersRepository(db)
	if err := repo.CreateSchema(ctx); err != nil {
		db.Close()
		return err
	}

	app.logger.Info("using sqlite user store at %s", dsn)
	app.bunDB = db
	app.users = repo

	return nil
}

func WithSeed(ctx context.Context, app *App) error {
	path := app.config.Seed.UsersFile
	if path == "" {
		return nil
	}

	users, err := authgate.LoadSeedUsers(path)
	if err != nil {
		return err
	}

	n, err := authgate.SeedUsers(ctx, app.users, users)
	if err != nil {
		return err
	}

	app.logger.Info("seeded %d of %d users from %s", n, len(users), path)
	return nil
}

func WithGateway(_ context.Context, app *App) error {
	gateway, err := authgate.NewGateway(app.users, app.config.Auth,
		authgate.WithLogger(app.logger),
		authgate.WithActivitySink(activityLogger(app.logger)),
	)
	if err != nil {
		return err
	}

	auther, err := authgate.NewHTTPAuthenticator(gateway)
	if err != nil {
		return err
	}

	app.gateway = gateway
	app.auther = auther
	return nil
}

func WithHTTPServer(app *App) {
	srv := router.NewFiberAdapter(func(_ *fiber.App) *fiber.App {
		a := fiber.New(fiber.Config{
			AppName:               "authgate",
			DisableStartupMessage: true,
			ReadTimeout:           10 * time.Second,
			WriteTimeout:          10 * time.Second,
			ErrorHandler:          app.auther.FiberErrorHandler,
		})
		a.Use(recover.New())
		return a
	})

	r := srv.Router()

	r.Get("/healthz", func(c router.Context) error {
		return c.JSON(fiber.StatusOK, map[string]string{"status": "ok"})
	})

	authgate.RegisterAuthRoutes(r, app.auther)

	ProtectedRoutes(app, r)

	catalog.RegisterRoutes(r, catalog.NewController(app.auther.Handle))

	app.srv = srv
}

func activityLogger(logger authgate.Logger) authgate.ActivitySink {
	return authgate.ActivitySinkFunc(func(_ context.Context, event authgate.ActivityEvent) error {
		if event.Failed() {
			logger.Info("auth event=%s stage=%s user=%q code=%s",
				event.EventType, event.Stage, event.Username, event.TextCode)
			return nil
		}
		logger.Debug("auth event=%s stage=%s user=%q", event.EventType, event.Stage, event.Username)
		return nil
	})
}
