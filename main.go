package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"predict-service/config"
	"predict-service/database"
	"predict-service/logger"
	"predict-service/services"
	"predict-service/storage"
	"predict-service/web"
)

func main() {
	logger.Println("Starting Football Prediction Service...")

	// 加载配置
	cfg := config.Load()

	// 选择存储后端: 配置了 DATABASE_URL 用 Postgres，否则用本地 JSON 文件
	var store storage.MatchStore
	if cfg.DatabaseURL != "" {
		db, err := database.Connect(cfg.DatabaseURL)
		if err != nil {
			logger.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		if err := database.Migrate(db); err != nil {
			logger.Fatalf("Failed to migrate database: %v", err)
		}

		store = database.NewMatchStore(db)
		logger.Println("[Storage] ✅ Using Postgres match store")
	} else {
		store = storage.NewFileStore(cfg.MatchesFile)
		logger.Printf("[Storage] Using file match store: %s", cfg.MatchesFile)
	}

	// 创建比赛事件发布器(可选)
	events, err := services.NewMatchEventPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		logger.Fatalf("Failed to start match event publisher: %v", err)
	}
	defer events.Close()

	// 创建预测管线
	client := services.NewInferenceClientWithConfig(services.InferenceConfig{
		BaseURL: cfg.HFAPIURL,
		Token:   cfg.HFToken,
		Timeout: cfg.PredictTimeout,
	})
	predictor := services.NewPredictor(client, cfg.PredictionFallback)

	// 创建WebSocket Hub
	wsHub := web.NewHub()
	go wsHub.Run()

	// 启动Web服务器
	server := web.NewServer(cfg, store, predictor, events, wsHub)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Web server error: %v", err)
		}
	}()

	logger.Printf("Web server started on port %s", cfg.Port)
	logger.Println("Service is running. Press Ctrl+C to stop.")

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Println("Shutting down...")
	server.Stop()
	logger.Println("Service stopped")
}
