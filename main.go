package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"asistencia-server-go/config"
	"asistencia-server-go/db"
	"asistencia-server-go/handlers"
	"asistencia-server-go/logger"
	"asistencia-server-go/views"
)

const codeVersion = "1.0.0"

func main() {
	conf := config.Load(".env")

	appLog := logger.New(os.Stderr, conf.RollbarToken, conf.Env, codeVersion)
	defer appLog.Close()

	if conf.IsProd() && !conf.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize Redis Client
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	redisClient, err := db.InitializeRedisClient(ctx, conf.RedisAddr, conf.RedisPassword, conf.RedisDB)
	cancel()
	if err != nil {
		appLog.Error("Could not connect to Redis", err)
		appLog.Close()
		log.Fatalf("Could not connect to Redis: %v", err)
	}
	defer redisClient.Close()

	redisService := db.NewRedisService(redisClient)

	if conf.Seed {
		if _, err := redisService.SeedIfEmpty(context.Background()); err != nil {
			appLog.Warn("Could not check for existing data, skipping seed", err)
		}
	}

	help, err := views.Help()
	if err != nil {
		log.Fatalf("Failed to render help text: %v", err)
	}

	deps := handlers.Deps{
		Store:    redisService,
		Log:      appLog,
		UserName: conf.UserName,
	}
	router, err := handlers.NewRouter(handlers.NewAPIHandler(deps), handlers.NewPageHandler(deps, help), conf.SessionSecret)
	if err != nil {
		log.Fatalf("Failed to set up router: %v", err)
	}

	appLog.Printf("Starting server on %s (env %s)", conf.Addr, conf.Env)
	if err := router.Run(conf.Addr); err != nil {
		appLog.Error("Failed to run server", err)
		appLog.Close()
		log.Fatalf("Failed to run server: %v", err)
	}
}
