// main.go
package main

import (
	"log"
	"os"
	"time"

	"lingua/database"
	"lingua/handlers"
	"lingua/handlers/admin"
	"lingua/middleware"
	"lingua/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	validateEnvironment()

	// Remote profile mirror + weekly leaderboard
	database.InitDB()
	services.InitLeaderboard()

	// Progression stores (local blobs are the session source of truth)
	services.InitStoreManager(services.NewProfileSync())

	// Background regen tick + quest period sweep
	services.InitScheduler()
	defer func() {
		if s := services.GetScheduler(); s != nil {
			s.Stop()
		}
	}()

	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    1 * 1024 * 1024, // 1MB
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))

	corsOrigins := os.Getenv("CORS_ORIGINS")
	if corsOrigins == "" {
		corsOrigins = "http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))

	app.Use(middleware.FiberRateLimitMiddleware())

	// API Routes
	api := app.Group("/api")

	// Auth routes with stricter rate limiting
	authGroup := api.Group("/auth")
	authGroup.Use(middleware.FiberAuthRateLimitMiddleware())
	authGroup.Post("/guest", handlers.GuestLogin)
	authGroup.Post("/login", handlers.Login)
	authGroup.Post("/register", handlers.Register)

	// Progression routes
	progressionGroup := api.Group("/progression")
	progressionGroup.Use(middleware.AuthMiddleware)
	progressionGroup.Get("/", handlers.GetProgression)
	progressionGroup.Post("/xp", handlers.AwardXP)
	progressionGroup.Post("/lesson", handlers.CompleteLesson)
	progressionGroup.Post("/practice", handlers.RecordPractice)
	progressionGroup.Post("/language", handlers.SwitchLanguage)
	progressionGroup.Post("/reset", handlers.ResetProgress)

	// Heart routes
	heartGroup := api.Group("/hearts")
	heartGroup.Use(middleware.AuthMiddleware)
	heartGroup.Get("/", handlers.GetHearts)
	heartGroup.Post("/consume", handlers.ConsumeHeart)

	// Quest routes
	questGroup := api.Group("/quests")
	questGroup.Use(middleware.AuthMiddleware)
	questGroup.Get("/", handlers.GetQuests)
	questGroup.Get("/completed", handlers.GetCompletedQuests)
	questGroup.Post("/claim", handlers.ClaimQuest)

	// Shop routes
	shopGroup := api.Group("/shop")
	shopGroup.Use(middleware.AuthMiddleware)
	shopGroup.Get("/", handlers.GetShopItems)
	shopGroup.Post("/purchase", handlers.PurchaseItem)
	shopGroup.Get("/inventory", handlers.GetInventory)

	// League routes
	leagueGroup := api.Group("/league")
	leagueGroup.Get("/tiers", handlers.GetLeagues)
	leagueGroup.Use(middleware.AuthMiddleware)
	leagueGroup.Get("/standings", handlers.GetLeagueStandings)
	leagueGroup.Get("/rank", handlers.GetUserRank)

	// Live progression feed
	app.Use("/ws/progression", middleware.AuthMiddleware, handlers.ProgressionFeedUpgrade)
	app.Get("/ws/progression", handlers.ProgressionFeed)

	// Admin routes
	adminGroup := api.Group("/admin")
	adminGroup.Post("/login", admin.Login)
	adminGroup.Post("/logout", admin.Logout)

	adminProtected := adminGroup.Group("")
	adminProtected.Use(middleware.AdminAuthMiddleware)
	adminProtected.Get("/verify", admin.VerifyToken)
	adminProtected.Get("/users", admin.GetUsers)
	adminProtected.Get("/users/:id", admin.GetUser)
	adminProtected.Delete("/users/:id", admin.DeleteUser)
	adminProtected.Post("/users/:id/reset-streak", admin.ResetUserStreak)
	adminProtected.Post("/users/:id/reset-progress", admin.ResetUserProgress)

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
			"version":   "1.0.0",
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	log.Printf("🚀 HTTP server starting on port %s", port)
	log.Printf("📊 Environment: %s", getEnv("APP_ENV", "development"))
	log.Printf("🔐 JWT Secret configured: %v", os.Getenv("JWT_SECRET") != "")
	log.Printf("💜 Live progression feed at ws://localhost:%s/ws/progression", port)

	if err := app.Listen(":" + port); err != nil {
		log.Fatal("Failed to start HTTP server:", err)
	}
}

// validateEnvironment checks for required environment variables
func validateEnvironment() {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("FATAL: JWT_SECRET environment variable must be set. Generate one with: openssl rand -base64 64")
	}
	if len(jwtSecret) < 32 {
		log.Fatal("FATAL: JWT_SECRET must be at least 32 characters long")
	}

	if os.Getenv("APP_ENV") == "production" {
		corsOrigins := os.Getenv("CORS_ORIGINS")
		if corsOrigins == "" || corsOrigins == "http://localhost:3000" {
			log.Println("WARNING: CORS_ORIGINS not properly configured for production")
		}
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Don't expose internal errors in production
	if os.Getenv("APP_ENV") == "production" && code == 500 {
		message = "An error occurred. Please try again later."
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
