package utils

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// LoadConfig loads a .env file from the given path into the process
// environment. A missing file is not an error; explicit environment
// variables always win over file values.
func LoadConfig(path string) {
	envFile := filepath.Join(path, ".env")
	if _, err := os.Stat(envFile); err != nil {
		return
	}
	if err := godotenv.Load(envFile); err != nil {
		logrus.Warnf("Failed to load %s: %v", envFile, err)
		return
	}
	logrus.Debugf("Loaded environment from %s", envFile)
}
