package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/metalagman/taskcanvas/internal/config"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// loadConfig reads the config file at path on top of the defaults. A missing
// file is not an error. Variables from an optional .env are exported first so
// report API keys can live there.
func loadConfig(path string) (config.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg("load .env")
	}

	v := viper.New()
	config.SetDefaults(v)
	if path == "" {
		path = config.DefaultPath
	}
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return config.Config{}, fmt.Errorf("read config: %w", err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return config.Config{}, fmt.Errorf("stat config: %w", err)
	} else {
		log.Debug().Str("path", path).Msg("config file not found, using defaults")
	}
	return config.Decode(v)
}
