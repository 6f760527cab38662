package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog/log"
	"github.com/sorarc/unsor/internal/app"
	"github.com/sorarc/unsor/internal/config"
	"github.com/sorarc/unsor/internal/logging"
)

var (
	unsor   *app.Unsor
	cli     config.Cli
	version = "dev"
	meta    = config.Meta{
		ID:     "unsor",
		Name:   "Unsor",
		Desc:   "Extract contents of a SOR archive in a local folder",
		URL:    "https://github.com/sorarc/unsor",
		Author: "sorarc",
	}
)

func main() {
	var err error

	meta.Version = version

	_ = kong.Parse(&cli,
		kong.Name(meta.ID),
		kong.Description(fmt.Sprintf("%s. More info: %s", meta.Desc, meta.URL)),
		kong.UsageOnError(),
		kong.Vars{
			"version": version,
		},
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}))

	// Logging
	logging.Configure(cli)

	// Handle os signals
	channel := make(chan os.Signal, 1)
	signal.Notify(channel, os.Interrupt, SIGTERM)
	go func() {
		sig := <-channel
		unsor.Close()
		log.Warn().Msgf("caught signal %v", sig)
		os.Exit(0)
	}()

	// Init
	if unsor, err = app.New(meta, cli); err != nil {
		log.Fatal().Err(err).Msg("cannot initialize unsor")
	}

	// Start
	if err = unsor.Start(); err != nil {
		log.Fatal().Stack().Err(err).Send()
	}
}
