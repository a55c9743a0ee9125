package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/signworks/dmsview/internal/app"
	"github.com/signworks/dmsview/internal/config"
	"github.com/signworks/dmsview/internal/logging"
	"github.com/signworks/dmsview/internal/ws"
)

func main() {
	var (
		configPath = flag.String("config", "dmsview.yaml", "path to the YAML config")
		addr       = flag.String("addr", "", "HTTP listen address (overrides server.addr)")
		pages      = flag.String("pages", "", "page file to play at startup")
		pattern    = flag.String("pattern", "", "test pattern to run at startup")
		driver     = flag.String("led", "", "LED mirror: none | sim | spi (overrides led.driver)")
		level      = flag.String("log-level", "", "log level (overrides log.level)")
		fps        = flag.Int("fps", 0, "preview frames per second (overrides server.fps)")
	)
	flag.Parse()

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *configPath).Msg("config")
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *driver != "" {
		cfg.LED.Driver = *driver
	}
	if *level != "" {
		cfg.Log.Level = *level
	}
	if *fps > 0 {
		cfg.Server.FPS = *fps
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	logs, err := logging.Setup(cfg.Log, os.Stdout)
	if err != nil {
		log.Fatal().Err(err).Msg("logging")
	}
	defer logs.Close()

	core, err := app.NewCore(cfg, app.Options{})
	if err != nil {
		log.Fatal().Err(err).Msg("core")
	}
	defer core.Close()

	srv := ws.NewServer(core, time.Second/time.Duration(cfg.Server.FPS), cfg.Server.AllowedOrigins)
	srv.ConfigPath = *configPath

	switch {
	case *pages != "":
		if err := core.PlayFile(*pages); err != nil {
			log.Error().Err(err).Str("path", *pages).Msg("page file")
		}
	case *pattern != "":
		if err := core.RunPattern(*pattern, cfg.Timing.Policy().DefaultOn); err != nil {
			log.Error().Err(err).Msg("test pattern")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hs := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Str("led", cfg.LED.Driver).Msg("HTTP server starting")
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server crashed")
			stop()
		}
	}()

	_ = core.Run(ctx, cfg.Server.FPS)
	log.Info().Msg("shutting down")

	shutdown, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = hs.Shutdown(shutdown)
}
