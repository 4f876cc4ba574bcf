package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"satire-shorts/config"
	"satire-shorts/pipeline"
)

func main() {
	// Load .env for local runs; CI injects secrets directly.
	_ = godotenv.Load()

	configPath := flag.String("config", "config.yaml", "path to config file")
	scriptPath := flag.String("script", "", "use this script file instead of generating one")
	noUpload := flag.Bool("no-upload", false, "render only, skip the YouTube upload")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if *verbose {
		logger = logger.Level(zerolog.DebugLevel)
	} else {
		logger = logger.Level(zerolog.InfoLevel)
	}
	log.Logger = logger

	cfg, err := config.Load(*configPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Fatal().Err(err).Str("path", *configPath).Msg("failed to load config")
		}
		logger.Info().Str("path", *configPath).Msg("no config file, using defaults")
		cfg = config.Default()
	}
	if *noUpload {
		cfg.Upload.Enabled = false
	}

	for _, dir := range []string{cfg.Paths.Output, cfg.Paths.Logs} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Fatal().Err(err).Str("dir", dir).Msg("failed to create dir")
		}
	}

	var scriptText string
	if *scriptPath != "" {
		data, err := os.ReadFile(*scriptPath)
		if err != nil {
			logger.Fatal().Err(err).Str("path", *scriptPath).Msg("failed to read script file")
		}
		scriptText = string(data)
	}

	runner, err := pipeline.New(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("pipeline init failed")
	}

	result, err := runner.Run(context.Background(), scriptText)
	if err != nil {
		if result != nil {
			for _, line := range result.Status {
				logger.Info().Msg(line)
			}
		}
		logger.Fatal().Err(err).Msg("pipeline failed")
	}

	logger.Info().
		Str("run_id", result.RunID).
		Int("scenes", result.Scenes).
		Float64("duration_sec", result.Duration).
		Str("video", result.VideoFile).
		Str("url", result.VideoURL).
		Msg("done")
}
