package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"pulsechat/internal/auth"
	"pulsechat/internal/config"
	"pulsechat/internal/database"
	"pulsechat/internal/gateway"
	"pulsechat/internal/handler"
	"pulsechat/internal/service"
	"pulsechat/internal/storage"
)

func main() {
	// .envファイルを読み込み
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  .env file not found, using default values: %v", err)
	}

	// 環境変数を読み込み
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// データベース接続を初期化
	store, err := database.Init(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}
	defer store.Close()

	uploader, err := storage.New(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize storage: %v", err)
	}

	signer := auth.NewSigner(cfg.JWTSecret, cfg.SessionTTL)
	hub := gateway.NewHub()

	// ハンドラー初期化
	h := handler.New(cfg,
		service.NewAuthService(store, uploader, signer, cfg.ProfilePicMaxPx),
		service.NewMessageService(store, uploader, hub),
		hub,
		signer,
	)
	router := h.SetupRouter()

	// CORS対応
	c := cors.New(corsOptions(cfg))

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           c.Handler(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	fmt.Println("========================================")
	fmt.Println("  PulseChat API Server")
	fmt.Println("========================================")
	fmt.Printf("  Environment: %s\n", cfg.Env)
	fmt.Printf("  Server: http://localhost:%s%s\n", cfg.ServerPort, cfg.APIPrefix)
	fmt.Printf("  WebSocket: ws://localhost:%s/ws\n", cfg.ServerPort)
	switch cfg.DBDriver {
	case "mysql":
		fmt.Printf("  Database: mysql %s@%s:%s/%s\n", cfg.DBUser, cfg.DBHost, cfg.DBPort, cfg.DBName)
	case "mongo":
		fmt.Printf("  Database: mongo %s\n", cfg.MongoDatabase)
	default:
		fmt.Printf("  Database: sqlite %s\n", cfg.SQLitePath)
	}
	fmt.Printf("  Storage: %s\n", cfg.StorageBackend)
	fmt.Printf("  Allowed Origins: %v\n", cfg.AllowedOrigins)
	fmt.Println("========================================")

	go func() {
		log.Println("🚀 Server started successfully")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ Server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("📢 Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// WebSocket はハイジャック済みのため Shutdown の対象外
	hub.Shutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("❌ Graceful shutdown failed: %v", err)
	}
	log.Println("✅ Server stopped")
}

func corsOptions(cfg config.Config) cors.Options {
	return cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS", "PUT"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Content-Length"},
		MaxAge:           300,
		AllowCredentials: true,
	}
}
