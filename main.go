package main

import (
	"context"
	"log"
	"os"
	"time"

	"yamdb/cmd"
	"yamdb/internal/data/repository"
	"yamdb/internal/wire"
	"yamdb/pkg/database"
	"yamdb/pkg/mailer"
	"yamdb/pkg/token"
	"yamdb/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using zap production logger.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.InitDB(ctx, config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	if config.Database.Migrate {
		if err := database.Migrate(ctx, db); err != nil {
			logger.Fatal("Failed to migrate database", zap.Error(err))
		}
		logger.Info("Database schema up to date")
	}

	rdb, err := database.NewRedisClient(ctx, config.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to redis", zap.Error(err))
	}
	if rdb != nil {
		defer rdb.Close()
		logger.Info("Redis connected successfully", zap.String("addr", config.Redis.Addr))
	} else {
		logger.Warn("Redis not configured, signup throttle disabled")
	}

	repos := repository.NewRepository(db, rdb, logger)

	if len(os.Args) > 1 && os.Args[1] == "loadcsv" {
		dir := cmd.DefaultDataDir
		if len(os.Args) > 2 {
			dir = os.Args[2]
		}
		if err := cmd.LoadCSV(context.Background(), repos, dir, logger); err != nil {
			logger.Fatal("Failed to load CSV data", zap.Error(err), zap.String("dir", dir))
		}
		logger.Info("CSV data loaded", zap.String("dir", dir))
		return
	}

	validator := utils.NewValidator(config.Validation)
	tokens := token.NewService(config.JWT.Secret, config.JWT.Issuer, config.JWT.TTL())
	mail := mailer.New(config.Email, logger)

	app := wire.Wiring(repos, tokens, mail, validator, config, logger)

	if err := cmd.APIServer(app.Router, config.App.Port, logger); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}
}
