package main

import (
	"log"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/jhstephenson/callingtrack/internal/config"
	"github.com/jhstephenson/callingtrack/internal/constants"
	"github.com/jhstephenson/callingtrack/internal/database"
	"github.com/jhstephenson/callingtrack/internal/handlers"
	"github.com/jhstephenson/callingtrack/internal/history"
	"github.com/jhstephenson/callingtrack/internal/middleware"
	"github.com/jhstephenson/callingtrack/internal/permissions"
	"github.com/jhstephenson/callingtrack/internal/repository"
	"github.com/jhstephenson/callingtrack/internal/services"
	"github.com/jhstephenson/callingtrack/internal/workflow"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Configure logging
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	}

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	db := database.GetDB()
	if err := database.AddIndexes(db); err != nil {
		log.Fatalf("Failed to add indexes: %v", err)
	}

	// Repositories
	callingRepo := repository.NewCallingRepository(db)
	unitRepo := repository.NewUnitRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	positionRepo := repository.NewPositionRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Make sure the permission groups exist
	if err := userRepo.EnsureGroups(permissions.AllGroups); err != nil {
		log.Fatalf("Failed to seed permission groups: %v", err)
	}

	// Services
	recorder := history.NewRecorder()
	callingService := services.NewCallingService(callingRepo, unitRepo, orgRepo, positionRepo, recorder)
	structureService := services.NewStructureService(unitRepo, orgRepo, positionRepo)
	authService := services.NewAuthService(userRepo)
	dashboardService := services.NewDashboardService(callingRepo, unitRepo, services.DashboardConfig{
		ExcludedStatuses: excludedStatuses(cfg.DashboardExcludedStatuses),
	})

	resolver, err := permissions.NewResolver()
	if err != nil {
		log.Fatalf("Failed to build permission resolver: %v", err)
	}

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, resolver)
	callingHandler := handlers.NewCallingHandler(callingService)
	structureHandler := handlers.NewStructureHandler(structureService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	userHandler := handlers.NewUserHandler(authService)

	// Initialize Gin router
	r := gin.Default()

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,
		"tcp",
		redisAddr,
		"",
		[]byte(cfg.SessionSecret),
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // SameSite=Lax
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "CallingTrack API is running",
		})
	})

	authenticated := []gin.HandlerFunc{
		middleware.RequireAuth(),
		middleware.LoadCapabilities(authService, resolver),
	}
	canEdit := middleware.RequireCapability(func(caps permissions.Capabilities) bool { return caps.CanEditCallings })
	canDelete := middleware.RequireCapability(func(caps permissions.Capabilities) bool { return caps.CanDeleteCallings })
	canManage := middleware.RequireCapability(func(caps permissions.Capabilities) bool { return caps.CanManageStructure })

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public except /me)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", append(authenticated, authHandler.Me)...)
		}

		// Dashboard (protected)
		api.GET("/dashboard", append(authenticated, dashboardHandler.Summary)...)

		// Unit routes (protected, writes need structure management)
		units := api.Group("/units")
		units.Use(authenticated...)
		{
			units.GET("", structureHandler.ListUnits)
			units.GET("/:id", structureHandler.GetUnit)
			units.POST("", canManage, structureHandler.CreateUnit)
			units.PUT("/:id", canManage, structureHandler.UpdateUnit)
			units.DELETE("/:id", canManage, structureHandler.DeleteUnit)
		}

		// Organization routes (protected)
		orgs := api.Group("/organizations")
		orgs.Use(authenticated...)
		{
			orgs.GET("", structureHandler.ListOrganizations)
			orgs.GET("/:id", structureHandler.GetOrganization)
			orgs.POST("", canManage, structureHandler.CreateOrganization)
			orgs.PUT("/:id", canManage, structureHandler.UpdateOrganization)
			orgs.DELETE("/:id", canManage, structureHandler.DeleteOrganization)
		}

		// Position routes (protected)
		positions := api.Group("/positions")
		positions.Use(authenticated...)
		{
			positions.GET("", structureHandler.ListPositions)
			positions.GET("/:id", structureHandler.GetPosition)
			positions.POST("", canManage, structureHandler.CreatePosition)
			positions.PUT("/:id", canManage, structureHandler.UpdatePosition)
			positions.DELETE("/:id", canManage, structureHandler.DeletePosition)
		}

		// Calling routes (protected)
		callings := api.Group("/callings")
		callings.Use(authenticated...)
		{
			callings.GET("", callingHandler.List)
			callings.GET("/:id", callingHandler.Get)
			callings.GET("/:id/history", callingHandler.History)
			callings.POST("", canEdit, callingHandler.Create)
			callings.PATCH("/:id", canEdit, callingHandler.Update)
			callings.POST("/:id/release", canEdit, callingHandler.Release)
			callings.DELETE("/:id", canDelete, callingHandler.Delete)
		}

		// User administration (superuser only)
		api.GET("/groups", append(authenticated, userHandler.ListGroups)...)
		api.POST("/users/:id/groups", append(authenticated, middleware.RequireSuperuser(), userHandler.SetGroups)...)
	}

	// Start server
	log.Println("Server starting on :8080")
	if err := r.Run(":8080"); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func excludedStatuses(names []string) []workflow.Status {
	statuses := make([]workflow.Status, 0, len(names))
	for _, name := range names {
		statuses = append(statuses, workflow.Status(name))
	}
	return statuses
}
