package server

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config is the process configuration, read from the environment with a
// best-effort .env overlay.
type Config struct {
	Port           string
	DatabaseURL    string
	DictionaryPath string
	WordServiceURL string
}

// LoadConfig reads .env when present and falls back to defaults for
// everything but the database URL.
func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("[LoadConfig] no .env file loaded: %v", err)
	}

	return Config{
		Port:           getenv("PORT", "8080"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DictionaryPath: getenv("DICTIONARY_PATH", "assets/cs_CZ.dic"),
		WordServiceURL: getenv("WORD_SERVICE_URL", "https://slovnik.slovniky.cz/api/random"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
