package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"educhat/backend/internal/api/handler"
	"educhat/backend/internal/chathub"
	"educhat/backend/internal/config"
	"educhat/backend/internal/models"
	"educhat/backend/internal/notify"
	"educhat/backend/internal/principal"
	"educhat/backend/internal/push"
	"educhat/backend/internal/service"
	"educhat/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupDependencies(cfg *config.Config) (*gorm.DB, *redis.Client) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	err = db.AutoMigrate(
		&models.Chat{},
		&models.Participant{},
		&models.Message{},
		&models.Notification{},
		&models.User{},
		&models.Instructor{},
	)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Database and Redis connections established, migrations complete.")
	return db, rdb
}

func main() {
	log.Println("Starting EduChat Backend...")

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}
	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}

	db, rdb := setupDependencies(cfg)
	store := storage.NewStorageService(db, rdb)
	dir := principal.NewDirectory(db)
	svc := service.NewChatService(store, dir)

	presence := chathub.NewRegistry()
	hub := chathub.NewHub(svc, store, presence)

	// Push sink: telegram when a bot token is configured, log-only otherwise.
	var sink push.Sink = push.LogSink{}
	if cfg.TelegramBotToken != "" {
		tg, err := push.NewTelegramSink(cfg.TelegramBotToken)
		if err != nil {
			log.Fatalf("Failed to start telegram push sink: %v", err)
		}
		sink = tg
	}

	redisOpt := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPass, DB: cfg.RedisDB}
	queue := asynq.NewClient(redisOpt)
	defer queue.Close()

	dispatcher := notify.NewDispatcher(store, dir, presence, queue, sink)
	hub.SetNotifier(dispatcher)

	worker := notify.NewWorker(redisOpt, cfg.AsynqConcurrency, dispatcher)

	go hub.Run()
	go func() {
		if err := worker.Run(); err != nil {
			log.Fatalf("Notification worker stopped: %v", err)
		}
	}()

	files, err := handler.NewLocalFileStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("Failed to prepare upload dir: %v", err)
	}

	r := gin.Default()
	h := handler.NewHandler(hub, svc, files, cfg.JWTSecret)
	h.RegisterRoutes(r)
	r.Static("/uploads", cfg.UploadDir)

	server := &http.Server{
		Addr:           cfg.AppAddr,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Fatal(server.ListenAndServe())
}
