package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	appconfig "github.com/platebook/backend/config"
	"github.com/platebook/backend/internal/api"
	"github.com/platebook/backend/internal/middleware"
	"github.com/platebook/backend/internal/service"
)

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	http   *http.Server
}

// New assembles services, handlers and routes into a runnable server.
// redisClient and s3Config may be nil; the features backed by them degrade
// gracefully.
func New(cfg *appconfig.Config, db *gorm.DB, redisClient *redis.Client, s3Config *appconfig.S3Config) *Server {
	if appconfig.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	api.RegisterValidators()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log.Logger))
	router.Use(middleware.CORS())

	authService := service.NewAuthService(db, redisClient, cfg.JWTSecret)
	recipeService := service.NewRecipeService(db)
	membershipService := service.NewMembershipService(db)
	followService := service.NewFollowService(db)
	shoppingService := service.NewShoppingListService(db)
	imageService := service.NewImageService(s3Config, cfg.MediaDir)
	writeLimiter := middleware.NewRecipeWriteRateLimiter(redisClient)

	root := router.Group("/api")
	api.NewUserHandler(db, authService, followService, recipeService).RegisterRoutes(root)
	api.NewCatalogHandler(db).RegisterRoutes(root)
	api.NewRecipeHandler(
		db,
		authService,
		recipeService,
		membershipService,
		followService,
		shoppingService,
		imageService,
		writeLimiter,
	).RegisterRoutes(root)

	router.Static("/media", cfg.MediaDir)

	return &Server{
		router: router,
		http: &http.Server{
			Addr:    cfg.ServerHost + ":" + cfg.ServerPort,
			Handler: router,
		},
	}
}

// Router exposes the gin engine, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start begins serving and blocks until the listener stops.
func (s *Server) Start() error {
	log.Info().Str("addr", s.http.Addr).Msg("starting server")
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
