package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	// 服务器配置
	Port        string
	Environment string

	// 管理员配置
	AdminPassword string

	// 推理服务配置
	HFToken            string
	HFAPIURL           string
	PredictTimeout     time.Duration
	PredictionFallback string

	// 存储配置
	MatchesFile string
	DatabaseURL string // 设置后改用 Postgres 存储

	// 事件发布配置
	AMQPURL      string // 为空时禁用事件发布
	AMQPExchange string
}

func Load() *Config {
	return &Config{
		// 服务器配置
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		// 管理员配置
		AdminPassword: getEnv("ADMIN_PASSWORD", "supersecret123"),

		// 推理服务配置
		HFToken:            getEnv("HF_TOKEN", ""),
		HFAPIURL:           getEnv("HF_API_URL", ""),
		PredictTimeout:     time.Duration(getEnvInt("PREDICT_TIMEOUT_SECONDS", 10)) * time.Second,
		PredictionFallback: getEnv("PREDICTION_FALLBACK", "N/A"),

		// 存储配置
		MatchesFile: getEnv("MATCHES_FILE", "./data/matches.json"),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		// 事件发布配置
		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "matches.events"),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var result int
	fmt.Sscanf(value, "%d", &result)
	if result == 0 {
		return defaultValue
	}
	return result
}
