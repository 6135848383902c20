package app

import (
	"context"
	"fmt"
	"syscall"

	"github.com/ezzabuzaid/iworked/internal/config"
	"github.com/ezzabuzaid/iworked/internal/crypto"
	"github.com/ezzabuzaid/iworked/internal/db"
	"github.com/ezzabuzaid/iworked/internal/domain"
	"github.com/ezzabuzaid/iworked/internal/repository"
	"github.com/ezzabuzaid/iworked/internal/service"
	"golang.org/x/term"
)

// App is the dependency injection container for all application components
type App struct {
	Config *config.Config
	DB     *db.DB

	// The active account, resolved from config at startup. Every repository
	// call below is scoped to this user's id.
	User *domain.User

	// Repositories
	UserRepo    repository.UserRepository
	ClientRepo  repository.ClientRepository
	ProjectRepo repository.ProjectRepository
	EntryRepo   repository.TimeEntryRepository
	InvoiceRepo repository.InvoiceRepository
	TimerRepo   repository.TimerRepository

	// Services
	ClientService  service.ClientService
	ProjectService service.ProjectService
	EntryService   service.EntryService
	InvoiceService service.InvoiceService
	ReportService  service.ReportService
	TimerService   service.TimerService
}

// New creates a new App instance, initializing all dependencies:
// config, keyring, encrypted database, migrations, repositories, services,
// and the active user row.
func New(ctx context.Context) (*App, error) {
	cfg, err := config.LoadDefault()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return NewWithConfig(ctx, cfg)
}

// NewWithConfig creates an App with a provided config (useful for testing)
func NewWithConfig(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	keyring := crypto.NewKeyring()

	password, err := keyring.GetKey()
	if err != nil {
		// No key exists, prompt user to set one
		fmt.Println("Setting up database encryption for the first time...")
		password, err = promptForPassword()
		if err != nil {
			return nil, fmt.Errorf("failed to set password: %w", err)
		}

		if err := keyring.SetKey(password); err != nil {
			return nil, fmt.Errorf("failed to store encryption key: %w", err)
		}
	}

	database, err := db.Open(cfg.Database.Path, password)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := database.RunMigrations(); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	userRepo := repository.NewUserRepo(database)
	clientRepo := repository.NewClientRepo(database)
	projectRepo := repository.NewProjectRepo(database)
	entryRepo := repository.NewEntryRepo(database)
	invoiceRepo := repository.NewInvoiceRepo(database)
	timerRepo := repository.NewTimerRepo(database)

	user, err := userRepo.GetOrCreate(ctx, cfg.User.Name, cfg.User.Email)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}

	hours := service.BusinessHours{
		Enabled:   cfg.BusinessHours.Enabled,
		StartHour: cfg.BusinessHours.StartHour,
		EndHour:   cfg.BusinessHours.EndHour,
	}

	clientService := service.NewClientService(clientRepo)
	projectService := service.NewProjectService(projectRepo, clientRepo)
	entryService := service.NewEntryService(entryRepo, projectRepo, hours)
	invoiceService := service.NewInvoiceService(invoiceRepo, entryRepo, clientRepo, projectRepo)
	reportService := service.NewReportService(entryRepo, projectRepo, invoiceRepo)
	timerService := service.NewTimerService(timerRepo, projectRepo, entryService)

	return &App{
		Config:         cfg,
		DB:             database,
		User:           user,
		UserRepo:       userRepo,
		ClientRepo:     clientRepo,
		ProjectRepo:    projectRepo,
		EntryRepo:      entryRepo,
		InvoiceRepo:    invoiceRepo,
		TimerRepo:      timerRepo,
		ClientService:  clientService,
		ProjectService: projectService,
		EntryService:   entryService,
		InvoiceService: invoiceService,
		ReportService:  reportService,
		TimerService:   timerService,
	}, nil
}

// Close cleanly shuts down the application
func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}

// UserID returns the active user's id
func (a *App) UserID() int64 {
	return a.User.ID
}

// promptForPassword prompts user for a new database password (first run)
func promptForPassword() (string, error) {
	fmt.Println()
	fmt.Println("Your time tracking data will be encrypted with a password.")
	fmt.Println("This password will be stored securely in your system keyring.")
	fmt.Println()
	fmt.Print("Enter a password for database encryption: ")

	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	if len(password) == 0 {
		return "", fmt.Errorf("password cannot be empty")
	}

	fmt.Print("Confirm password: ")
	confirm, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read confirmation: %w", err)
	}

	if string(password) != string(confirm) {
		return "", fmt.Errorf("passwords do not match")
	}

	fmt.Println()
	fmt.Println("✓ Database encryption configured successfully")
	fmt.Println()

	return string(password), nil
}

// SaveConfig saves the current configuration to disk
func (a *App) SaveConfig() error {
	return a.Config.Save(config.DefaultConfigPath())
}
