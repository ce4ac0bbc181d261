package main

import (
	"context"
	"net/http"
	"time"

	"github.com/clatprep/backend/config"
	"github.com/clatprep/backend/database"
	adminctrl "github.com/clatprep/backend/internal/controller/admin"
	userctrl "github.com/clatprep/backend/internal/controller/user"
	"github.com/clatprep/backend/internal/logger"
	"github.com/clatprep/backend/internal/model"
	"github.com/clatprep/backend/internal/repository"
	"github.com/clatprep/backend/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// @title CLAT Practice API
// @version 1.0
// @description API for CLAT mock-test practice: sectioned tests, versioned attempts, and practice analytics.
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
func main() {
	logger.Init()

	app := fx.New(
		// Core application components
		fx.Provide(
			config.NewConfig,
			database.NewDatabase, // Provides *gorm.DB
			NewGinEngine,         // Provides *gin.Engine
		),

		// Repositories layer
		fx.Provide(
			repository.NewUserRepository,
			repository.NewTestRepository,
			repository.NewQuestionRepository,
			repository.NewTestAttemptRepository,
		),

		// Services layer
		fx.Provide(
			service.NewScoringService,
			service.NewAttemptLineageService,
			service.NewAnalyticsService,
			service.NewAdminTestService,
			service.NewUserTestService,
			service.NewTestSubmissionService,
			service.NewInsightService,
		),

		// API controllers layer
		fx.Provide(
			adminctrl.NewAdminTestController,
			userctrl.NewUserTestController,
			userctrl.NewAnalyticsController,
		),

		fx.Invoke(RegisterRoutesAndStartServer),
		fx.Invoke(AutoMigrateDB),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
}

func NewGinEngine() *gin.Engine {
	r := gin.New()

	// Request logging through the global zerolog instance.
	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("user_agent", param.Request.UserAgent()).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// RegisterRoutesAndStartServer configures API routes and manages server lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	adminTestCtrl *adminctrl.AdminTestController,
	userTestCtrl *userctrl.UserTestController,
	analyticsCtrl *userctrl.AnalyticsController,
) {
	// Admin routes (prefixed with /api/v1/admin)
	adminAPIGroup := router.Group("/api/v1/admin")
	{
		testsAdminGroup := adminAPIGroup.Group("/tests")
		testsAdminGroup.POST("", adminTestCtrl.CreateTest)
		testsAdminGroup.POST("/:test_id/questions", adminTestCtrl.AddQuestion)
		testsAdminGroup.POST("/:test_id/attempts/rebuild", adminTestCtrl.RebuildLineage)
	}

	// User routes (prefixed with /api/v1)
	userAPIGroup := router.Group("/api/v1")
	{
		userAPIGroup.GET("/tests", userTestCtrl.GetAllTests)
		userAPIGroup.GET("/tests/:test_id", userTestCtrl.GetTestDetails)

		userAPIGroup.POST("/tests/:test_id/attempts", userTestCtrl.StartTestAttempt)
		userAPIGroup.GET("/tests/:test_id/my-attempts", userTestCtrl.GetUserTestAttempts)
		userAPIGroup.GET("/test-attempts/:attempt_id", userTestCtrl.GetTestAttemptDetails)
		userAPIGroup.PUT("/test-attempts/:attempt_id/submit", userTestCtrl.SubmitTestAttempt)

		userAPIGroup.GET("/users/:user_id/analytics", analyticsCtrl.GetUserAnalytics)
		userAPIGroup.GET("/users/:user_id/study-plan", analyticsCtrl.GetStudyPlan)
	}

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("CLAT Practice API server starting on port %s", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}

func AutoMigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	err := db.AutoMigrate(
		&model.User{},
		&model.Test{},
		&model.Question{},
		&model.TestAttempt{},
		&model.Answer{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}
