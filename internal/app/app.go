package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/greenflash/greenflash/internal/config"
	"github.com/greenflash/greenflash/internal/db"
	"github.com/greenflash/greenflash/internal/markdown"
	"github.com/greenflash/greenflash/internal/repository"
	"github.com/greenflash/greenflash/internal/service"
	"github.com/greenflash/greenflash/internal/storage"
	"github.com/greenflash/greenflash/internal/ui"
)

type App struct {
	Cfg                *config.Config
	DB                 *sqlx.DB
	Storage            storage.Storage
	Flashes            *ui.FlashStore
	Markdown           *markdown.Parser
	AuthService        *service.AuthService
	UserService        *service.UserService
	EmailService       *service.EmailService
	MediaService       *service.MediaService
	LocationService    *service.LocationService
	PlaceService       *service.PlaceService
	LogService         *service.LogService
	MaintenanceService *service.MaintenanceService
	SearchService      *service.SearchService
}

func New(cfg *config.Config) (*App, error) {
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	fileStorage, err := storage.New(cfg)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	return Wire(cfg, database, fileStorage), nil
}

// Wire builds the services on top of an opened database and storage.
func Wire(cfg *config.Config, database *sqlx.DB, fileStorage storage.Storage) *App {
	// Repositories
	userRepository := repository.NewUserRepository(database)
	locationRepository := repository.NewLocationRepository(database)
	placeRepository := repository.NewPlaceRepository(database)
	logRepository := repository.NewLogRepository(database)
	maintenanceRepository := repository.NewMaintenanceRepository(database)

	// Services
	emailService := service.NewEmailService(
		cfg.ResendAPIKey,
		cfg.EmailFrom,
		cfg.AppURL,
		cfg.AppName,
		cfg.IsDevelopment(),
	)
	mediaService := service.NewMediaService(fileStorage)
	locationService := service.NewLocationService(locationRepository)
	authService := service.NewAuthService(
		userRepository,
		emailService,
		cfg.SessionSecret,
		cfg.SessionExpiry,
		cfg.IsProduction(),
	)

	return &App{
		Cfg:                cfg,
		DB:                 database,
		Storage:            fileStorage,
		Flashes:            ui.NewFlashStore(cfg.SessionSecret, cfg.IsProduction()),
		Markdown:           markdown.NewParser(),
		AuthService:        authService,
		UserService:        service.NewUserService(userRepository, mediaService, emailService),
		EmailService:       emailService,
		MediaService:       mediaService,
		LocationService:    locationService,
		PlaceService:       service.NewPlaceService(database, placeRepository),
		LogService:         service.NewLogService(database, logRepository, locationService, mediaService),
		MaintenanceService: service.NewMaintenanceService(database, maintenanceRepository, locationService, mediaService),
		SearchService:      service.NewSearchService(cfg.SearchAPIURL, cfg.SearchAPIKey),
	}
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
