package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Mlesn1/GeminiDiscordHelper/internal/affect"
	"github.com/Mlesn1/GeminiDiscordHelper/internal/ai"
	"github.com/Mlesn1/GeminiDiscordHelper/internal/config"
	"github.com/Mlesn1/GeminiDiscordHelper/internal/cooldown"
	"github.com/Mlesn1/GeminiDiscordHelper/internal/discord"
	"github.com/Mlesn1/GeminiDiscordHelper/internal/engine"
	"github.com/Mlesn1/GeminiDiscordHelper/internal/memory"
	"github.com/Mlesn1/GeminiDiscordHelper/internal/persist"
	"github.com/Mlesn1/GeminiDiscordHelper/internal/status"
	"github.com/Mlesn1/GeminiDiscordHelper/internal/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)
	logger.Info("gemini discord helper starting", "version", version.Info())

	// Affect tables: built-in, or a YAML override.
	catalog := affect.DefaultCatalog()
	registry := affect.DefaultRegistry()
	if cfg.CatalogPath != "" {
		catalog, registry, err = affect.LoadFile(cfg.CatalogPath)
		if err != nil {
			return err
		}
	}
	catalog = catalog.WithChangeProbability(cfg.MoodChangeProbability)

	defaultPersonality := registry.Default()
	if registry.Has(cfg.DefaultPersonality) {
		defaultPersonality = cfg.DefaultPersonality
	} else if cfg.DefaultPersonality != "" {
		logger.Warn("unknown DEFAULT_PERSONALITY, using registry default",
			"requested", cfg.DefaultPersonality, "default", defaultPersonality)
	}

	// Durable storage is optional; without it settings and history live
	// only for the process lifetime.
	var adapter memory.Adapter
	if cfg.DatabasePath != "" {
		sqliteStore, err := persist.OpenSQLite(cfg.DatabasePath, logger)
		if err != nil {
			return err
		}
		if n, err := sqliteStore.PruneOlderThan(cfg.RetentionDays); err != nil {
			logger.Warn("startup prune failed", "error", err)
		} else if n > 0 {
			logger.Info("pruned expired messages", "count", n)
		}
		adapter = sqliteStore
		logger.Info("sqlite persistence enabled", "path", cfg.DatabasePath)
	} else {
		adapter = persist.NewMemStore()
		logger.Info("running memory-only, conversations will not survive restarts")
	}
	defer adapter.Close()

	store := memory.NewStore(memory.Config{
		MaxHistory:         cfg.MaxConversationHistory,
		Expiry:             cfg.MemoryExpiry(),
		CleanupInterval:    cfg.CleanupInterval(),
		DefaultMood:        catalog.Default(),
		DefaultPersonality: defaultPersonality,
	}, affect.NewEnergyTracker(catalog), adapter, logger)

	provider := ai.NewGemini(ai.GeminiConfig{
		APIKey:            cfg.GeminiAPIKey,
		Model:             cfg.GeminiModel,
		MaxOutputTokens:   cfg.GeminiMaxTokens,
		RequestsPerMinute: cfg.GeminiRPM,
	})

	eng, err := engine.New(engine.Deps{
		Store:    store,
		Catalog:  catalog,
		Registry: registry,
		Gate:     cooldown.NewGate(cfg.Cooldown()),
		Provider: provider,
		Adapter:  adapter,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	bot, err := discord.New(discord.Config{
		Token:                 cfg.DiscordToken,
		CommandPrefix:         cfg.BotPrefix,
		AutoChannelIDs:        cfg.AutoResponseChannels,
		RespondToMentions:     cfg.EnableMentions,
		RespondToDMs:          cfg.EnableDMs,
		ShowMoodIndicator:     cfg.EnableMoodIndicator,
		ShowEnergyMeter:       cfg.EnableEnergyMeter,
		SelectablePersonality: cfg.UserSelectablePersonality,
		PreviewLength:         cfg.PreviewLength,
	}, eng, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.HTTPAddr != "" {
		if err := status.NewServer(cfg.HTTPAddr, eng).Start(ctx); err != nil {
			return err
		}
	}

	return bot.Run(ctx)
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
