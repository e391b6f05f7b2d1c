package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"baa_legal/internal/api"
	"baa_legal/internal/models"
	"baa_legal/internal/repository"
	"baa_legal/internal/service"
	"baa_legal/internal/storage"
	"baa_legal/internal/utils"
	"baa_legal/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := storage.NewPostgresDB(cfg.DB.Host, cfg.DB.User, cfg.DB.Password, cfg.DB.Name, cfg.DB.Port)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := db.AutoMigrate(&models.User{}, &models.Room{}, &models.Message{}); err != nil {
		log.Fatalf("Failed to auto migrate database: %v", err)
	}

	// Redis is optional; without it lawyer presence falls back to the
	// permissive in-process mode.
	var redis *storage.RedisClient
	if cfg.Redis.Addr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		redis, err = storage.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		cancel()
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer redis.Close()
	} else {
		log.Println("redis not configured, presence runs in-process")
	}

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, redis)
	tokens := utils.NewTokenManager(cfg.JWT.Secret, time.Duration(cfg.JWT.TTLHours)*time.Hour)

	r := gin.Default()
	api.SetupRoutes(r, services, tokens, cfg.Server.AllowedOrigins)

	if err := r.Run(cfg.Server.Address); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
