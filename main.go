package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"auditku_backend/internals/configs"
	database "auditku_backend/internals/databases"
	"auditku_backend/internals/features/tasks/scheduler"
	helper "auditku_backend/internals/helpers"
	middlewares "auditku_backend/internals/middlewares"
	"auditku_backend/internals/observability/metrics"
	routes "auditku_backend/internals/route"
	"auditku_backend/internals/seeds"
)

func main() {
	configs.LoadEnv()

	app := fiber.New(fiber.Config{
		// 🚀 JSON super cepat
		JSONEncoder:             sonic.Marshal,
		JSONDecoder:             sonic.Unmarshal,
		ErrorHandler:            helper.FromFiberError,
		DisableStartupMessage:   true,
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          []string{"0.0.0.0/0"},
	})

	// 🔎 Request-ID + timeout context (selaras dengan statement_timeout di DB)
	app.Use(middlewares.RequestContext(5 * time.Second))
	middlewares.SetupMiddlewares(app)

	// 🔌 DB connect + pool + warm-up
	database.ConnectDB()
	database.TunePool()
	if configs.DBAutoMigrate {
		if err := database.AutoMigrate(database.DB); err != nil {
			log.Fatalf("auto migrate: %v", err)
		}
	}
	database.WarmUpQueries()

	m, err := metrics.New()
	if err != nil {
		log.Fatalf("metrics: %v", err)
	}

	svc := routes.NewServices(database.DB, m)

	// 🌱 seed template form untuk satu org (opsional)
	if configs.SeedOrgID != "" {
		orgID, err := uuid.Parse(configs.SeedOrgID)
		if err != nil {
			log.Fatalf("SEED_ORG_ID tidak valid: %v", err)
		}
		seeds.RunAllSeeds(context.Background(), database.DB, svc.Forms, orgID)
	}

	// ⏱ scheduler setelah DB siap
	sweeper, err := scheduler.StartOverdueScheduler(svc.Tasks, configs.TaskOverdueCron)
	if err != nil {
		log.Fatalf("overdue scheduler: %v", err)
	}

	// ✅ Routes
	routes.SetupRoutes(app, database.DB, svc, m)

	// 🔒 Keep-Alive & timeout koneksi server
	app.Server().ReadTimeout = 15 * time.Second
	app.Server().WriteTimeout = 30 * time.Second
	app.Server().IdleTimeout = 90 * time.Second

	port := configs.GetEnv("PORT", "3000")

	// Start server non-blocking
	go func() {
		log.Printf("✅ Listening on :%s", port)
		if err := app.Listen("0.0.0.0:" + port); err != nil {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown: stop cron → server → pool DB
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	<-sweeper.Stop().Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(ctx)

	if sqlDB, err := database.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
