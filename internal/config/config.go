package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	OpenAIAPIKey  string
	Model         string
	AllowedOrigin string
	// CRM webhook destination for finished leads
	LeadWebhookURL string
	// YAML prompt spec for the intake assistant
	PromptFile string
	// Directory served at / (index.html and friends)
	StaticDir string
}

func Load() Config {
	_ = godotenv.Load()
	cfg := Config{
		Port:           getEnvDefault("PORT", "8080"),
		OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),
		Model:          getEnvDefault("OPENAI_MODEL", "gpt-4o-mini"),
		AllowedOrigin:  getEnvDefault("ALLOWED_ORIGIN", "*"),
		LeadWebhookURL: os.Getenv("LEAD_WEBHOOK_URL"),
		PromptFile:     getEnvDefault("PROMPT_FILE", "prompts/intake.yaml"),
		StaticDir:      getEnvDefault("STATIC_DIR", "public"),
	}
	if cfg.OpenAIAPIKey == "" {
		log.Println("warning: OPENAI_API_KEY is not set; /api/chat will answer with a fallback message")
	}
	if cfg.LeadWebhookURL == "" {
		log.Println("warning: LEAD_WEBHOOK_URL is not set; /api/lead will fail until provided")
	}
	return cfg
}

func getEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
