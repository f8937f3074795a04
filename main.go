// main.go
package main

import (
	"log"

	"learnx/cmd"
	"learnx/internal/data/repository"
	"learnx/internal/wire"
	"learnx/pkg/database"
	"learnx/pkg/events"
	"learnx/pkg/gateway"
	"learnx/pkg/notify"
	"learnx/pkg/utils"

	libredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	// Initialize all repositories
	repos := repository.NewRepository(db, logger)

	// Optional collaborators. Each constructor returns nil when its part of
	// the config is absent, and the rest of the app degrades gracefully.
	gw := gateway.NewClient(config.Gateway, logger)
	notifier := notify.NewNotifier(config, logger)

	publisher := events.NewPublisher(config.Kafka, logger)
	if publisher != nil {
		defer publisher.Close()
	}

	var rdb *libredis.Client
	if config.Redis.Addr != "" {
		rdb = libredis.NewClient(&libredis.Options{
			Addr:     config.Redis.Addr,
			Password: config.Redis.Password,
			DB:       config.Redis.DB,
		})
		defer rdb.Close()
	}

	// Wire all dependencies
	app := wire.Wiring(repos, config, gw, notifier, publisher, rdb, logger)

	// Start server
	logger.Info("Starting HTTP server", zap.String("port", config.App.Port))

	cmd.APIServer(app.Router, config.App.Port)
}
