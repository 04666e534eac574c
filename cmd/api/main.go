package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"ops-journal/internal/config"
	"ops-journal/internal/domain"
	"ops-journal/internal/handler"
	"ops-journal/internal/middleware"
	"ops-journal/internal/repository"
	"ops-journal/internal/service"
	"ops-journal/internal/service/auth"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	db, err := config.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	redisClient, err := config.NewRedisClient(cfg)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v (falling back to in-memory rate limiting)", err)
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	minioClient, err := config.NewMinIOClient(cfg)
	if err != nil {
		log.Printf("Warning: Failed to connect to MinIO: %v (attachment upload will not work)", err)
		minioClient = nil
	}

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, redisClient, minioClient, cfg)
	handlers := handler.NewHandlers(services)

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/health"
		},
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
	}))

	setupRoutes(app, handlers, services.Auth)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go services.Worker.Run(ctx)

	go func() {
		<-ctx.Done()
		log.Println("Shutting down")
		if err := app.Shutdown(); err != nil {
			log.Printf("Shutdown: %v", err)
		}
	}()

	log.Printf("Server starting on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func setupRoutes(app *fiber.App, h *handler.Handlers, authService auth.Service) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	v1 := app.Group("/api/v1")

	authGroup := v1.Group("/auth")
	authGroup.Post("/login", h.Auth.Login)
	authGroup.Post("/refresh", h.Auth.RefreshToken)
	authGroup.Post("/logout", h.Auth.Logout)

	protected := v1.Group("", middleware.AuthRequired(authService))

	protected.Get("/auth/me", h.Auth.Me)

	nodes := protected.Group("/nodes")
	nodes.Post("/", middleware.RequireRole(domain.RoleEditor), h.Node.Create)
	nodes.Get("/", h.Node.ListRoots)
	nodes.Get("/tree", h.Node.Tree)
	nodes.Get("/:id", h.Node.GetByID)
	nodes.Patch("/:id/rename", middleware.RequireRole(domain.RoleEditor), h.Node.Rename)
	nodes.Patch("/:id/move", middleware.RequireRole(domain.RoleAdmin), h.Node.Move)
	nodes.Patch("/:id/visibility", middleware.RequireRole(domain.RoleAdmin), h.Node.Restrict)
	nodes.Delete("/:id", middleware.RequireRole(domain.RoleEditor), h.Node.Delete)

	records := protected.Group("/records")
	records.Post("/", middleware.RequireRole(domain.RoleEditor), h.Record.Create)
	records.Get("/:id", h.Record.GetByID)
	records.Patch("/:id", middleware.RequireRole(domain.RoleEditor), h.Record.Update)
	records.Delete("/:id", middleware.RequireRole(domain.RoleEditor), h.Record.Delete)
	records.Get("/:id/revisions", h.Record.ListRevisions)
	records.Get("/:id/revisions/:revisionId", h.Record.GetRevision)
	records.Post("/:id/attachments", middleware.RequireRole(domain.RoleEditor), h.Attachment.Upload)
	records.Get("/:id/attachments", h.Attachment.List)
	records.Get("/:id/attachments/:attachmentId", h.Attachment.Download)
	records.Delete("/:id/attachments/:attachmentId", middleware.RequireRole(domain.RoleEditor), h.Attachment.Delete)

	protected.Get("/feed", h.Feed.List)

	subscriptions := protected.Group("/subscriptions")
	subscriptions.Post("/", h.Subscription.Upsert)
	subscriptions.Get("/", h.Subscription.ListOwn)
	subscriptions.Delete("/:id", h.Subscription.Remove)

	protected.Get("/admin/audit", middleware.RequireRole(domain.RoleAdmin), h.Audit.List)
}
