package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads .env.local and .env from dir when present.
// Variables already set in the environment win, and .env.local wins over .env.
// Returns the files actually loaded.
func LoadDotEnv(dir string) []string {
	candidates := []string{".env.local", ".env"}
	var loaded []string
	for _, name := range candidates {
		f := filepath.Join(dir, name)
		if _, err := os.Stat(f); err == nil {
			loaded = append(loaded, f)
		}
	}
	if len(loaded) > 0 {
		_ = godotenv.Load(loaded...)
	}
	return loaded
}
