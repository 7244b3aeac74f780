// Command jarvis answers questions about local documents.
package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/jarvis/internal/adapters/driven/ai"
	"github.com/custodia-labs/jarvis/internal/adapters/driven/config/file"
	"github.com/custodia-labs/jarvis/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/jarvis/internal/adapters/driving/cli"
	"github.com/custodia-labs/jarvis/internal/core/ports/driven"
	"github.com/custodia-labs/jarvis/internal/core/services"
	"github.com/custodia-labs/jarvis/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is normal.
	_ = godotenv.Load()

	var (
		configStore driven.ConfigStore
		prompts     driven.PromptStore
	)
	configDir, err := file.DefaultConfigDir()
	if err == nil {
		var store *file.ConfigStore
		if store, err = file.NewConfigStore(configDir); err == nil {
			configStore = store
		}
	}
	if err != nil {
		logger.Warn("config unavailable, settings will not be saved: %v", err)
		configStore = memory.NewConfigStore()
	} else if store, err := file.NewPromptStore(filepath.Join(configDir, "prompts")); err != nil {
		logger.Warn("prompt templates unavailable, using built-in prompts: %v", err)
	} else {
		prompts = store
	}
	settingsService := services.NewSettingsService(configStore)

	cli.SetVersion(version)
	cli.SetSettingsService(settingsService)
	cli.SetValidator(ai.Validator{})
	cli.SetBootstrap(func(ctx context.Context) (*cli.Services, error) {
		return bootstrap(ctx, settingsService, prompts)
	})

	return cli.Execute(context.Background())
}
