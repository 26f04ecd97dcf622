package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config 汇总所有环境配置；.env 文件可选，缺了就直接读环境变量
type Config struct {
	Env      string
	HTTPAddr string

	DatabaseDSN string

	GitHubToken   string
	GeminiAPIKey  string
	SocialWebhook string
}

// Load reads configuration from a .env file (if present) and the
// environment. Only the database settings are required.
func Load() (*Config, error) {
	// .env 不存在不算错误，线上环境直接用真实环境变量
	_ = godotenv.Load()

	c := &Config{
		Env:           getEnv("APP_ENV", "dev"),
		HTTPAddr:      getEnv("HTTP_ADDR", ":8080"),
		DatabaseDSN:   os.Getenv("DATABASE_DSN"),
		GitHubToken:   os.Getenv("GITHUB_TOKEN"),
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		SocialWebhook: os.Getenv("SOCIAL_WEBHOOK_URL"),
	}

	if c.DatabaseDSN == "" {
		c.DatabaseDSN = fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			getEnv("DATABASE_HOST", "localhost"),
			getEnv("DATABASE_USER", "postgres"),
			getEnv("DATABASE_PASSWORD", "postgres"),
			getEnv("DATABASE_NAME", "achievement_miner"),
			getEnv("DATABASE_PORT", "5432"),
		)
	}

	return c, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
