package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"khedutbazaar/config"
	"khedutbazaar/controllers"
	"khedutbazaar/database"
	"khedutbazaar/middleware"
	"khedutbazaar/notification"
	"khedutbazaar/routes"
	"khedutbazaar/scheduler"
	"khedutbazaar/scraper"
	"khedutbazaar/translation"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// 🔧 Database connection, exits when MySQL is unreachable
func initDatabase(cfg config.DatabaseConfig) *database.Store {
	database.ConnectDatabase(cfg)

	if database.DB == nil {
		log.Fatalf("❌ Database connection is nil! Make sure MySQL is running.")
	}

	fmt.Println("✅ Database ready!")
	return database.NewStore(database.DB)
}

func initTranslator(cfg *config.Config) *translation.Translator {
	var (
		dict *translation.Dictionary
		err  error
	)
	if cfg.Translation.DictionaryDir != "" {
		dict, err = translation.LoadDictionaryDir(cfg.Translation.DictionaryDir)
	} else {
		dict, err = translation.DefaultDictionary()
	}
	if err != nil {
		log.Fatalf("❌ Failed to load translation dictionaries: %v", err)
	}
	fmt.Printf("✅ Loaded %d dictionary terms\n", dict.Len())

	tiers := []translation.Cache{translation.NewMemoryCache(cfg.Translation.CacheSize, cfg.Translation.CacheTTL)}
	if cfg.Redis.Addr != "" {
		client, err := translation.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Printf("❌ Redis unavailable, translation cache stays in memory: %v", err)
		} else {
			tiers = append(tiers, translation.NewRedisCache(client, cfg.Translation.CacheTTL))
			fmt.Println("✅ Redis translation cache connected")
		}
	}

	remote := translation.NewGoogleClient(cfg.Translation.URL, cfg.Translation.Timeout)
	return translation.New(dict, remote, translation.NewTieredCache(tiers...))
}

func initPusher(ctx context.Context, cfg config.FirebaseConfig) notification.Pusher {
	if _, err := os.Stat(cfg.CredentialsPath); err != nil {
		log.Printf("❌ Firebase credentials %s not found, notifications will only be logged", cfg.CredentialsPath)
		return notification.LogPusher{}
	}
	pusher, err := notification.NewFirebasePusher(ctx, cfg.CredentialsPath, cfg.ProjectID)
	if err != nil {
		log.Printf("❌ Firebase init failed, notifications will only be logged: %v", err)
		return notification.LogPusher{}
	}
	fmt.Println("✅ Firebase messaging ready")
	return pusher
}

func main() {
	cfg := config.Load()
	ctx := context.Background()

	store := initDatabase(cfg.Database)
	translator := initTranslator(cfg)
	dispatcher := notification.NewDispatcher(store, initPusher(ctx, cfg.Firebase))

	priceScraper := scraper.New(store, cfg.Scraper)
	automated := scraper.NewAutomated(priceScraper)

	sched := scheduler.New(scheduler.NewConfigFile(cfg.Scheduler.ConfigFile), automated, dispatcher)
	if err := sched.Start(); err != nil && !errors.Is(err, scheduler.ErrDisabled) {
		log.Printf("❌ Scheduler not started: %v", err)
	}

	app := fiber.New(fiber.Config{
		AppName:      "Khedut Bazaar",
		ErrorHandler: middleware.ErrorHandler,
		ReadTimeout:  30 * time.Second,
	})

	// 🛡 Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
		AllowHeaders: "Content-Type, Authorization",
	}))
	app.Use(logger.New())

	mobile := controllers.NewMobileController(store, translator, dispatcher)
	routes.RegisterMobileRoutes(app, mobile)
	routes.RegisterMarketRoutes(app, mobile)
	routes.RegisterPriceRoutes(app, mobile)
	routes.RegisterSyncRoutes(app, controllers.NewScrapeController(store, priceScraper, automated))
	routes.RegisterSchedulerRoutes(app, controllers.NewSchedulerController(sched))
	routes.RegisterDatabaseRoutes(app, controllers.NewDatabaseController(store))
	routes.RegisterTranslationRoutes(app, controllers.NewTranslationController(translator))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "🚀 Khedut Bazaar backend is running!"})
	})
	app.Use(middleware.NotFound)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit

		fmt.Println("Shutting down...")
		if sched.IsRunning() {
			if err := sched.Stop(); err != nil {
				log.Printf("❌ Scheduler stop: %v", err)
			}
		}
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("❌ Server shutdown: %v", err)
		}
	}()

	fmt.Println("🚀 Server running on " + cfg.ListenAddr())
	if err := app.Listen(cfg.ListenAddr()); err != nil {
		log.Fatal(err)
	}
}
