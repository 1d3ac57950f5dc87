package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/Settj76/ecom/db"
	"github.com/Settj76/ecom/internal/auth"
	"github.com/Settj76/ecom/internal/carousel"
	"github.com/Settj76/ecom/internal/cart"
	"github.com/Settj76/ecom/internal/config"
	"github.com/Settj76/ecom/internal/dashboard"
	"github.com/Settj76/ecom/internal/eventlog"
	"github.com/Settj76/ecom/internal/pocketbase"
	"github.com/Settj76/ecom/internal/product"
	"github.com/Settj76/ecom/internal/user"
	"github.com/Settj76/ecom/internal/web"
	"github.com/Settj76/ecom/middleware"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// app holds the long-lived connections shared by the commands.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	client  *pocketbase.Client
	factory *db.RepositoryFactory
	manager *db.DBManager

	sqliteDB    *sql.DB
	mongoClient *mongo.Client
}

func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	switch cfg.DatabaseType {
	case config.SQLite:
		logger.Info("using SQLite database", zap.String("path", cfg.SQLitePath))
		sqliteDB, err := db.ConnectToSQLite(cfg.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		if err := db.InitializeSchema(sqliteDB); err != nil {
			sqliteDB.Close()
			return nil, fmt.Errorf("initialize schema: %w", err)
		}
		a.sqliteDB = sqliteDB
	case config.MongoDB:
		logger.Info("using MongoDB database", zap.String("database", cfg.DatabaseName))
		client, err := db.ConnectToMongo(ctx, cfg.MongoURI, logger)
		if err != nil {
			return nil, err
		}
		if err := db.EnsureMongoIndexes(ctx, client, cfg.DatabaseName); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, fmt.Errorf("ensure indexes: %w", err)
		}
		a.mongoClient = client
	}

	a.factory = db.NewRepositoryFactory(a.sqliteDB, a.mongoClient, cfg.DatabaseName, logger)

	client, err := pocketbase.NewClient(cfg.PocketBaseURL,
		pocketbase.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}),
		pocketbase.WithLogger(logger),
	)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.client = client
	return a, nil
}

// health reports the first unreachable dependency.
func (a *app) health(ctx context.Context) error {
	if err := a.client.Health(ctx); err != nil {
		return fmt.Errorf("backend: %w", err)
	}
	if err := a.factory.Ping(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	return nil
}

// handler wires the services into the web layer.
func (a *app) handler() (http.Handler, error) {
	slides, err := carousel.LoadSlides(a.cfg.SlidesFile)
	if err != nil {
		return nil, err
	}

	a.manager = db.NewDBManager(a.logger)

	products := product.NewProductService(a.client, a.logger)
	users := user.NewUserService(a.client, a.logger)
	events := eventlog.NewEventLogService(a.factory.NewEventLogRepository(), a.manager, a.logger)
	carts := cart.NewCartService(a.factory.NewCartRepository(), a.manager, products, a.logger)
	sessions := auth.NewSessions([]byte(a.cfg.SessionSecret), a.cfg.SessionSecure)

	h, err := web.NewWebHandler(web.Dependencies{
		Products:  products,
		Users:     users,
		Carts:     carts,
		EventLogs: events,
		Dashboard: dashboard.NewDashboardService(products, users, events, a.logger),
		Sessions:  sessions,
		Slides:    slides,
		Health:    a.health,
		Logger:    a.logger,
	})
	if err != nil {
		return nil, err
	}
	return h.Handler(middleware.NewMiddleware(sessions, a.logger)), nil
}

func (a *app) Close() {
	if a.manager != nil {
		a.manager.Stop()
	}
	var errs []error
	if a.sqliteDB != nil {
		errs = append(errs, a.sqliteDB.Close())
	}
	if a.mongoClient != nil {
		errs = append(errs, a.mongoClient.Disconnect(context.Background()))
	}
	if err := errors.Join(errs...); err != nil {
		a.logger.Warn("failed to close database", zap.Error(err))
	}
}
