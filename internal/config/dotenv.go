package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// DotEnvFiles lists the dotenv files read at startup, highest precedence
// first. godotenv never overwrites a set variable, so the first file wins.
var DotEnvFiles = []string{".env.local", ".env"}

// LoadDotEnvDir loads DotEnvFiles from dir.
func LoadDotEnvDir(dir string) error {
	paths := make([]string, 0, len(DotEnvFiles))
	for _, name := range DotEnvFiles {
		paths = append(paths, filepath.Join(dir, name))
	}
	return LoadDotEnv(paths...)
}

// LoadDotEnv loads environment variables from .env-like files.
// Existing process environment variables keep precedence, then earlier
// paths win over later ones.
func LoadDotEnv(paths ...string) error {
	for _, path := range paths {
		trimmed := strings.TrimSpace(path)
		if trimmed == "" {
			continue
		}
		if err := godotenv.Load(trimmed); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return err
		}
	}
	return nil
}
