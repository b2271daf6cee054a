package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/riskibarqy/gridiron-sync/internal/platform/logging"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	logger := logging.NewConsole(logging.LevelInfo)
	cmd := newRootCommand(logger, openMigrator)
	if err := cmd.Execute(); err != nil {
		logger.Error("migration failed", "error", err)
		os.Exit(1)
	}
}
