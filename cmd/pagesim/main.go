// Command pagesim plays a page file against a simulated clock and prints
// the display timeline. With -out it also writes one PNG per transition.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/signworks/dmsview/internal/config"
	"github.com/signworks/dmsview/internal/driver/fake"
	"github.com/signworks/dmsview/internal/logging"
	"github.com/signworks/dmsview/internal/pagefile"
	"github.com/signworks/dmsview/internal/raster"
	"github.com/signworks/dmsview/internal/render"
	"github.com/signworks/dmsview/internal/sequence"
)

func main() {
	var (
		configPath = flag.String("config", "dmsview.yaml", "path to the YAML config")
		pagesPath  = flag.String("pages", "", "page file (YAML or JSON)")
		duration   = flag.Duration("for", 10*time.Second, "simulated run time")
		outDir     = flag.String("out", "", "directory for PNG frames")
	)
	flag.Parse()

	if *pagesPath == "" {
		fmt.Fprintln(os.Stderr, "usage: pagesim -pages file.yaml [-for 10s] [-out dir]")
		os.Exit(2)
	}

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	if _, err := logging.Setup(cfg.Log, os.Stderr); err != nil {
		log.Fatal().Err(err).Msg("logging")
	}

	f, err := pagefile.Load(*pagesPath)
	if err != nil {
		log.Fatal().Err(err).Msg("page file")
	}
	ps, err := f.PageSet(cfg.Timing.Policy().DefaultOff)
	if err != nil {
		log.Fatal().Err(err).Msg("page file")
	}

	opts, err := cfg.Render.Options()
	if err != nil {
		log.Fatal().Err(err).Msg("render options")
	}
	if *outDir != "" {
		if err := os.MkdirAll(*outDir, 0o750); err != nil {
			log.Fatal().Err(err).Msg("out dir")
		}
	}
	sign := cfg.Sign.Layout()
	drv := &fake.Driver{Dir: *outDir}
	eng, err := render.NewEngine(sign, cfg.Viewport.Render(), opts, drv)
	if err != nil {
		log.Fatal().Err(err).Msg("engine")
	}

	var now time.Duration
	player := sequence.NewPlayer(sequence.Hooks{
		SetRaster: func(r *raster.Raster) {
			eng.SetRaster(r)
			if *outDir != "" {
				if err := eng.RenderOnce(); err != nil {
					log.Warn().Err(err).Msg("frame")
				}
			}
		},
		OnTransition: func(t sequence.Transition) {
			fmt.Printf("%8.1fs  %-14s -> %s\n", now.Seconds(), t.From, t.To)
		},
	}, cfg.Timing.Policy())

	if err := player.Load(ps, raster.Blank(sign.WidthPix, sign.HeightPix)); err != nil {
		log.Fatal().Err(err).Msg("load")
	}
	if err := player.Start(); err != nil {
		log.Fatal().Err(err).Msg("start")
	}
	fmt.Printf("%8.1fs  start          -> %s\n", 0.0, player.Status().State)

	tick := cfg.Tick()
	for now < *duration {
		now += tick
		player.Tick(tick)
	}

	st := player.Status()
	if st.Static {
		fmt.Println("static message: no transitions")
	}
	fmt.Printf("%d ticks, %d frames\n", st.Ticks, drv.Count)
}
