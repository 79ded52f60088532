package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/mkravets/ArtPeak/app/models"
	"github.com/mkravets/ArtPeak/internal/pkg/bot"
	"github.com/mkravets/ArtPeak/internal/pkg/cache"
	"github.com/mkravets/ArtPeak/internal/pkg/chatbridge"
	"github.com/mkravets/ArtPeak/internal/pkg/classifier"
	"github.com/mkravets/ArtPeak/internal/pkg/database"
	"github.com/mkravets/ArtPeak/internal/pkg/engagement"
	"github.com/mkravets/ArtPeak/internal/pkg/env"
	"github.com/mkravets/ArtPeak/internal/pkg/jobqueue"
	"github.com/mkravets/ArtPeak/internal/pkg/lifecycle"
	"github.com/mkravets/ArtPeak/internal/pkg/router"
	"github.com/mkravets/ArtPeak/internal/pkg/transport"
	"github.com/mkravets/ArtPeak/internal/pkg/trust"
	"github.com/mkravets/ArtPeak/internal/pkg/viewsync"
)

func main() {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	db := database.GetDB()
	bridge := chatbridge.New()

	lifecycleManager := lifecycle.NewManager(db, classifier.NewClient())
	trustManager := trust.NewManager(db)
	aggregator := engagement.NewAggregator(db, bridge)
	broadcaster := viewsync.NewBroadcaster(db, bridge)

	// The queue needs the bot's renderer and the bot needs the queue. The
	// indirection below is resolved before Start runs anything.
	var dispatcher *bot.Bot
	render := viewsync.Renderer(func(artwork *models.Artwork, viewerID uint) (string, transport.Controls, error) {
		return dispatcher.Renderer()(artwork, viewerID)
	})

	manager := jobqueue.Initialize(lifecycleManager, aggregator, broadcaster, render)
	dispatcher = bot.New(db, lifecycleManager, trustManager, aggregator, broadcaster, manager.GetQueue(), bridge)

	manager.Start()
	defer manager.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := dispatcher.Run(ctx, bridge); err != nil && ctx.Err() == nil {
			log.Printf("dispatch loop ended: %v", err)
			stop()
		}
	}()

	app := newFiberApp(lifecycleManager, trustManager)
	go func() {
		<-ctx.Done()
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000"))
	if err := app.Listen(addr); err != nil {
		log.Fatal(err)
	}
}

func newFiberApp(lm *lifecycle.Manager, tm *trust.Manager) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:           "ArtPeak",
		EnablePrintRoutes: env.IsDev(),
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// fiber metrics
	app.Get("/metrics", basicauth.New(basicauth.Config{
		Users: map[string]string{
			env.GetEnv("METRICS_USER", "admin"): env.GetEnv("METRICS_PASSWORD", "admin"),
		},
	}), monitor.New())

	router.InstallRouter(app, lm, tm)

	return app
}
