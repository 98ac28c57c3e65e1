package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/mmikleusevic/Questionaire-sub000/internal/config"
	"github.com/mmikleusevic/Questionaire-sub000/internal/handler"
	"github.com/mmikleusevic/Questionaire-sub000/internal/middleware"
	pgRepo "github.com/mmikleusevic/Questionaire-sub000/internal/repository/postgres"
	redisRepo "github.com/mmikleusevic/Questionaire-sub000/internal/repository/redis"
	"github.com/mmikleusevic/Questionaire-sub000/internal/service"
	"github.com/mmikleusevic/Questionaire-sub000/pkg/auth"
	"github.com/mmikleusevic/Questionaire-sub000/pkg/database"
)

func main() {
	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	// Применяем миграции
	if err := database.MigrateDB(db); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к Redis с использованием унифицированной конфигурации
	redisClient, err := database.NewUniversalRedisClient(cfg.Redis)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	log.Println("Successfully connected to Redis")

	// Инициализируем репозитории
	userRepo := pgRepo.NewUserRepo(db)
	questionRepo := pgRepo.NewQuestionRepo(db)
	pendingRepo := pgRepo.NewPendingQuestionRepo(db)
	categoryRepo := pgRepo.NewCategoryRepo(db)
	historyRepo := pgRepo.NewHistoryRepo(db)

	cacheRepo, err := redisRepo.NewCacheRepo(redisClient)
	if err != nil {
		log.Printf("Failed to initialize CacheRepo: %v", err)
		os.Exit(1)
	}

	// Инициализируем JWT сервис
	jwtService, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpirationHrs)
	if err != nil {
		log.Printf("Failed to initialize JWTService: %v", err)
		os.Exit(1)
	}

	// Инициализируем почтовый сервис: Resend в продакшене, noop без ключа
	var emailService service.EmailService
	if cfg.Email.Enabled {
		resendService, err := service.NewResendEmailService(cfg.Email.ResendAPIKey, cfg.Email.From)
		if err != nil {
			log.Printf("Failed to initialize ResendEmailService: %v", err)
			os.Exit(1)
		}
		emailService = resendService
	} else {
		log.Println("Почтовые уведомления отключены, используется noop-сервис")
		emailService = &service.NoopEmailService{}
	}

	// Инициализируем сервисы
	authService := service.NewAuthService(userRepo, jwtService)
	questionService := service.NewQuestionService(questionRepo)
	pendingService := service.NewPendingQuestionService(pendingRepo, userRepo, emailService, db)
	categoryService := service.NewCategoryService(categoryRepo, questionRepo, cacheRepo)
	playService := service.NewPlayService(questionRepo, historyRepo, nil)

	// Инициализируем обработчики
	authHandler := handler.NewAuthHandler(authService)
	questionHandler := handler.NewQuestionHandler(questionService)
	pendingHandler := handler.NewPendingQuestionHandler(pendingService)
	categoryHandler := handler.NewCategoryHandler(categoryService)
	playHandler := handler.NewPlayHandler(playService, cfg.Play)

	// Инициализируем middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService)
	rateLimiter := middleware.NewRateLimiter(redisClient)

	// Инициализируем роутер Gin
	router := gin.Default()

	isProduction := gin.Mode() == gin.ReleaseMode

	// Настройка доверенных прокси для корректной работы c.ClientIP()
	// В production (GIN_MODE=release): не доверяем прокси (защита от IP spoofing)
	// В development: доверяем localhost
	if isProduction {
		if err := router.SetTrustedProxies(nil); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	} else {
		if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	}

	// Настройка CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Player-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Player-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Настраиваем маршруты API
	api := router.Group("/api")
	{
		// Аутентификация
		authGroup := api.Group("/auth")
		{
			strictLimit := rateLimiter.Limit(middleware.StrictAuthRateLimitConfig())
			authGroup.POST("/register", strictLimit, authHandler.Register)
			authGroup.POST("/login", strictLimit, authHandler.Login)

			authedAuth := authGroup.Group("/")
			authedAuth.Use(authMiddleware.RequireAuth())
			{
				authedAuth.GET("/me", authHandler.Me)
			}
		}

		// Категории: дерево публичное, записи только для администраторов
		categories := api.Group("/categories")
		{
			categories.GET("", categoryHandler.GetCategoryTree)
		}

		// Вопросы: чтение для аутентифицированных пользователей
		questions := api.Group("/questions")
		questions.Use(authMiddleware.RequireAuth())
		{
			questions.GET("", questionHandler.ListQuestions)

			questionWithID := questions.Group("/:id")
			questionWithID.Use(middleware.ExtractUintParam("id", "questionID"))
			{
				questionWithID.GET("", questionHandler.GetQuestion)
			}
		}

		// Черновики вопросов: автор работает со своими, администратор со всеми
		pending := api.Group("/pending-questions")
		pending.Use(authMiddleware.RequireAuth())
		{
			pending.POST("", pendingHandler.SubmitQuestion)
			pending.GET("", pendingHandler.ListPendingQuestions)

			pendingWithID := pending.Group("/:id")
			pendingWithID.Use(middleware.ExtractUintParam("id", "pendingQuestionID"))
			{
				pendingWithID.PUT("", pendingHandler.UpdatePendingQuestion)
				pendingWithID.DELETE("", pendingHandler.DiscardPendingQuestion)
			}
		}

		// Игровая выдача: доступна анонимным игрокам, лимит по IP
		play := api.Group("/play")
		play.Use(authMiddleware.OptionalAuth())
		play.Use(rateLimiter.LimitByIP(middleware.PlayRateLimitConfig()))
		{
			play.GET("/questions", playHandler.GetQuestions)
			play.GET("/history", playHandler.GetHistoryCount)
			play.DELETE("/history", playHandler.ResetHistory)
		}

		// Административные маршруты
		admin := api.Group("/admin")
		admin.Use(authMiddleware.RequireAuth(), authMiddleware.AdminOnly())
		{
			adminQuestions := admin.Group("/questions")
			{
				adminQuestions.POST("", questionHandler.CreateQuestion)
				adminQuestions.GET("/export", questionHandler.ExportQuestions)

				adminQuestionWithID := adminQuestions.Group("/:id")
				adminQuestionWithID.Use(middleware.ExtractUintParam("id", "questionID"))
				{
					adminQuestionWithID.PUT("", questionHandler.UpdateQuestion)
					adminQuestionWithID.DELETE("", questionHandler.DeleteQuestion)
				}
			}

			adminPending := admin.Group("/pending-questions/:id")
			adminPending.Use(middleware.ExtractUintParam("id", "pendingQuestionID"))
			{
				adminPending.POST("/approve", pendingHandler.ApprovePendingQuestion)
			}

			adminCategories := admin.Group("/categories")
			{
				adminCategories.POST("", categoryHandler.CreateCategory)

				adminCategoryWithID := adminCategories.Group("/:id")
				adminCategoryWithID.Use(middleware.ExtractUintParam("id", "categoryID"))
				{
					adminCategoryWithID.PUT("", categoryHandler.UpdateCategory)
					adminCategoryWithID.DELETE("", categoryHandler.DeleteCategory)
				}
			}
		}
	}

	// Настраиваем HTTP сервер с тайм-аутами для защиты от slow client attacks
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Запускаем сервер в горутине
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
		}
	}()

	log.Printf("Server started on port %s", cfg.Server.Port)

	// Ждем сигнала остановки
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Создаем контекст с таймаутом для graceful shutdown сервера
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	if err := redisClient.Close(); err != nil {
		log.Printf("Error closing Redis client: %v", err)
	}

	log.Println("Server exited properly")
}
