package main

import (
	"os"

	"squircle/internal/config"
	"squircle/internal/infra/db"
	httpinfra "squircle/internal/infra/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.FromEnv()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log.Logger = zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	store, err := db.NewStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init store")
	}

	srv := httpinfra.NewServer(cfg, store)
	if err := srv.Run(); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
