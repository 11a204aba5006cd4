package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/zhangpan-soft/steam-desktop-authenticator/internal/client"
	"github.com/zhangpan-soft/steam-desktop-authenticator/internal/config"
	"github.com/zhangpan-soft/steam-desktop-authenticator/internal/logger"
	"github.com/zhangpan-soft/steam-desktop-authenticator/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewClientLogger("steam-authenticator")
	cfg, err := config.GetSettings()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	notify := func(event models.LoginEvent) {
		log.Info().
			Str("account", event.AccountName).
			Str("status", string(event.Status)).
			Int("result_code", int(event.ResultCode)).
			Msg("login event")
	}

	app, err := client.NewApp(ctx, cfg, nil, notify, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init authenticator app error")
	}

	if err = app.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("authenticator run error")
	}
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}
	if buildDate == "" {
		buildDate = "N/A"
	}
	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
