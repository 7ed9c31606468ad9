package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"recipehub/internal/cache"
	"recipehub/internal/config"
	"recipehub/internal/database"
	"recipehub/internal/handlers"
	"recipehub/internal/middleware"
	"recipehub/internal/models"
	"recipehub/internal/observ"
	"recipehub/internal/repository"
	"recipehub/internal/scheduler"
	"recipehub/internal/services"
	"recipehub/pkg/mailer"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logger, err := observ.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	// Initialize Redis
	cacheClient, err := cache.Initialize(cfg.RedisURL)
	if err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer cacheClient.Close()

	// Initialize mail provider client
	mailClient := mailer.NewClient(cfg.MailAPIURL, cfg.MailAPIUser, cfg.MailAPIPassword, cfg.MailFrom)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	tenantRepo := repository.NewTenantRepository(db)
	cuisineRepo := repository.NewCuisineRepository(db)
	ingredientRepo := repository.NewIngredientRepository(db)
	recipeRepo := repository.NewRecipeRepository(db)
	jobRepo := repository.NewJobRepository(db)

	// Initialize services
	lifecycleService := services.NewLifecycleService(userRepo)
	emailService := services.NewEmailService(jobRepo, mailClient)
	authService := services.NewAuthService(userRepo, cacheClient, emailService, lifecycleService, cfg.JWTSecret,
		time.Duration(cfg.OTPTTLMinutes)*time.Minute, time.Duration(cfg.ResetTTLMinutes)*time.Minute)
	userService := services.NewUserService(userRepo, lifecycleService)
	tenantService := services.NewTenantService(tenantRepo)
	cuisineService := services.NewCuisineService(cuisineRepo)
	ingredientService := services.NewIngredientService(ingredientRepo)
	recipeService := services.NewRecipeService(recipeRepo, cuisineRepo, ingredientRepo)

	// Background worker for deferred hard deletes and outbound email
	worker := scheduler.NewWorker(jobRepo, time.Duration(cfg.PollIntervalSec)*time.Second, logger)
	worker.Register(models.JobHardDeleteUser, func(ctx context.Context, job *models.ScheduledJob) error {
		if job.RecordID == nil {
			logger.Error("hard delete job without record id", zap.String("id", job.ID.String()))
			return nil
		}
		outcome, err := lifecycleService.HardDeleteUser(*job.RecordID)
		if err != nil {
			return err
		}
		logger.Info("hard delete job finished",
			zap.String("user_id", job.RecordID.String()),
			zap.String("outcome", string(outcome)),
		)
		return nil
	})
	worker.Register(models.JobSendEmail, func(ctx context.Context, job *models.ScheduledJob) error {
		return emailService.Deliver(job.Payload)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go worker.Start(ctx)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	tenantHandler := handlers.NewTenantHandler(tenantService)
	cuisineHandler := handlers.NewCuisineHandler(cuisineService)
	ingredientHandler := handlers.NewIngredientHandler(ingredientService)
	recipeHandler := handlers.NewRecipeHandler(recipeService)

	// Setup routes
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	router.Use(middleware.Metrics())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")

	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/verify-otp", authHandler.VerifyOTP)
		authRoutes.POST("/resend-otp", authHandler.ResendOTP)
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.POST("/login/verify-otp", authHandler.VerifyLoginOTP)
		authRoutes.POST("/token/refresh", authHandler.Refresh)
		authRoutes.POST("/forgot-password", authHandler.ForgotPassword)
		authRoutes.POST("/reset-password/:token", authHandler.ResetPassword)
	}

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	{
		protected.POST("/auth/logout", authHandler.Logout)
		protected.POST("/auth/change-password", authHandler.ChangePassword)

		protected.GET("/users/me", userHandler.Me)
		protected.PATCH("/users/me", userHandler.UpdateMe)
		protected.DELETE("/users/me", userHandler.DeleteMe)
		protected.GET("/users", userHandler.List)
		protected.GET("/users/:id", userHandler.Retrieve)
		protected.PATCH("/users/:id", userHandler.PartialUpdate)
		protected.DELETE("/users/:id", userHandler.Destroy)

		protected.GET("/tenants", tenantHandler.List)
		protected.POST("/tenants", tenantHandler.Create)
		protected.GET("/tenants/:id", tenantHandler.Retrieve)
		protected.PATCH("/tenants/:id", tenantHandler.PartialUpdate)
		protected.DELETE("/tenants/:id", tenantHandler.Destroy)

		protected.GET("/cuisines", cuisineHandler.List)
		protected.POST("/cuisines", cuisineHandler.Create)
		protected.GET("/cuisines/:id", cuisineHandler.Retrieve)
		protected.PATCH("/cuisines/:id", cuisineHandler.PartialUpdate)
		protected.DELETE("/cuisines/:id", cuisineHandler.Destroy)

		protected.GET("/ingredients", ingredientHandler.List)
		protected.POST("/ingredients", ingredientHandler.Create)
		protected.GET("/ingredients/:id", ingredientHandler.Retrieve)
		protected.PATCH("/ingredients/:id", ingredientHandler.PartialUpdate)
		protected.DELETE("/ingredients/:id", ingredientHandler.Destroy)

		protected.GET("/recipes", recipeHandler.List)
		protected.POST("/recipes", recipeHandler.Create)
		protected.GET("/recipes/:id", recipeHandler.Retrieve)
		protected.PATCH("/recipes/:id", recipeHandler.PartialUpdate)
		protected.DELETE("/recipes/:id", recipeHandler.Destroy)
	}

	// Start server
	logger.Info("server starting", zap.String("port", cfg.ServerPort))
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
