package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Addr string `env:"ADDR" envDefault:":3001"`

	// ServerURL is the public base URL clients reach this server on; when
	// set, upload responses carry absolute file URLs instead of /uploads/
	// paths.
	ServerURL string `env:"SERVER_URL"`

	GeminiAPIKey  string `env:"GEMINI_API_KEY"`
	GeminiModel   string `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash"`
	GeminiBaseURL string `env:"GEMINI_BASE_URL"`

	UploadDir string `env:"UPLOAD_DIR" envDefault:"uploads"`
}

// Load reads a .env file if one exists, then parses the environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
