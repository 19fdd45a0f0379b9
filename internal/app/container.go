package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/case-admin-backend/internal/api"
	"github.com/nekogravitycat/case-admin-backend/internal/auth"
	"github.com/nekogravitycat/case-admin-backend/internal/cases"
	"github.com/nekogravitycat/case-admin-backend/internal/file"
	"github.com/nekogravitycat/case-admin-backend/internal/logger"
	"github.com/nekogravitycat/case-admin-backend/internal/pkg/storage"
	"github.com/nekogravitycat/case-admin-backend/internal/user"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction   bool
	ProdOrigins    string
	CookieSecure   bool
	DBPool         *pgxpool.Pool // nil selects the in-memory stores
	Storage        storage.Storage
	MaxUploadBytes int64
	JWTSecret      string
	JWTTTL         time.Duration
	BcryptCost     int
	Logger         *logger.Logger
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router      *gin.Engine
	JWTManager  *auth.JWTManager
	UserService user.Service
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) *Container {
	// Init Components
	passwordHasher := auth.NewBcryptPasswordHasherWithCost(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	var (
		userRepo user.Repository
		caseRepo cases.Repository
		fileRepo file.Repository
	)
	if cfg.DBPool != nil {
		userRepo = user.NewPgxRepository(cfg.DBPool)
		caseRepo = cases.NewPgxRepository(cfg.DBPool)
		fileRepo = file.NewPgxRepository(cfg.DBPool)
	} else {
		userRepo = user.NewMemoryRepository()
		caseRepo = cases.NewMemoryRepository()
		fileRepo = file.NewMemoryRepository()
	}

	// User Module
	userService := user.NewService(userRepo, passwordHasher)

	// Case Module
	caseService := cases.NewService(caseRepo)

	// File Module
	fileService := file.NewService(fileRepo, cfg.Storage)

	// Router
	router := api.NewRouter(api.Config{
		IsProduction:   cfg.IsProduction,
		ProdOrigins:    cfg.ProdOrigins,
		CookieSecure:   cfg.CookieSecure,
		MaxUploadBytes: cfg.MaxUploadBytes,
		Logger:         cfg.Logger,
		UserService:    userService,
		CaseService:    caseService,
		FileService:    fileService,
		JWTManager:     jwtManager,
	})

	return &Container{
		Router:      router,
		JWTManager:  jwtManager,
		UserService: userService,
	}
}
