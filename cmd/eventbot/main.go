package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/m3rciful/eventbot/core/buildinfo"
	"github.com/m3rciful/eventbot/core/cmd"
	"github.com/m3rciful/eventbot/internal/app"
	"github.com/m3rciful/eventbot/internal/config"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("env file: %v", err)
	}
	log.Printf("eventbot %s", buildinfo.Summary())

	err := cmd.Run(cmd.Options{
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (cmd.ConfigCarrier, error) {
			return config.Load(path)
		},
		Bootstrap: func(ctx context.Context, cfg cmd.ConfigCarrier) (cmd.TelegramApp, error) {
			return app.New(ctx, cfg.(*config.Config), app.Options{})
		},
	})
	if err != nil {
		log.Printf("eventbot: %v", err)
		os.Exit(1)
	}
}
