package app

import (
	"context"
	"veluna/config"
	"veluna/internal/database"
	"veluna/internal/handlers/middleware"
	"veluna/internal/jobs"
	"veluna/internal/repositories"
	"veluna/internal/services"

	logger "github.com/Bparsons0904/goLogger"
)

type App struct {
	Database   database.DB
	Middleware middleware.Middleware
	Config     config.Config
	Services   services.Service
	Repository repositories.Repository
}

func New() (*App, error) {
	log := logger.New("app").Function("New")

	config, err := config.InitConfig()
	if err != nil {
		return &App{}, log.Err("failed to initialize config", err)
	}

	db, err := database.New(config)
	if err != nil {
		return &App{}, log.Err("failed to create database", err)
	}

	if err := db.MigrateModels(); err != nil {
		return &App{}, log.Err("failed to migrate models", err)
	}
	if err := db.CreateIndexes(); err != nil {
		return &App{}, log.Err("failed to create indexes", err)
	}

	repos := repositories.New(db)

	appServices, err := services.New(repos, config)
	if err != nil {
		return &App{}, log.Err("failed to create services", err)
	}

	if config.SchedulerEnabled {
		if err := jobs.RegisterAllJobs(appServices.Scheduler, config, appServices); err != nil {
			return &App{}, log.Err("failed to register jobs", err)
		}
	} else {
		log.Info("Scheduler disabled, no jobs registered")
	}

	app := &App{
		Database:   db,
		Middleware: middleware.New(db, config),
		Config:     config,
		Services:   appServices,
		Repository: repos,
	}

	return app, nil
}

func (app *App) Start() error {
	log := logger.New("app").Function("Start")

	if app.Config.SchedulerEnabled {
		if err := app.Services.Scheduler.Start(context.Background()); err != nil {
			return log.Err("failed to start scheduler", err)
		}
	}

	return nil
}

func (app *App) Close() error {
	log := logger.New("app").Function("Close")

	if app.Services.Scheduler != nil && app.Services.Scheduler.IsRunning() {
		if err := app.Services.Scheduler.Stop(context.Background()); err != nil {
			log.Warn("failed to stop scheduler", "error", err)
		}
	}

	return nil
}
