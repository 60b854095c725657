package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/roiview/internal/config"
	"github.com/banshee-data/roiview/internal/lidar/monitor"
	"github.com/banshee-data/roiview/internal/lidar/scene"
	"github.com/banshee-data/roiview/internal/lidar/synthetic"
	"github.com/banshee-data/roiview/internal/version"
)

var (
	listen      = flag.String("listen", "", "HTTP listen address (overrides config)")
	configFile  = flag.String("config", "", "Path to a scene config JSON file (default: built-in defaults)")
	showVersion = flag.Bool("version", false, "Print version information and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("roiview %s\n", version.String())
		return
	}

	cfg := config.EmptySceneConfig()
	if *configFile != "" {
		loaded, err := config.LoadSceneConfig(*configFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
		log.Printf("Loaded scene config from %s", *configFile)
	}

	addr := cfg.GetListen()
	if *listen != "" {
		addr = *listen
	}

	gen := newGenerator(cfg)
	sample := gen.Generate()
	log.Printf("Generated %d points from %d clusters", sample.Len(), len(gen.Clusters))

	store := scene.NewStore(sample, scene.Options{
		ColorMap:       cfg.GetColorMap(),
		PointSize:      cfg.GetPointSize(),
		CloseThreshold: closeThreshold(cfg),
	})
	store.Subscribe(func(ev scene.Event) {
		log.Printf("scene: %s (mode=%s regions=%d)", ev.Kind, ev.Snapshot.Mode, len(ev.Snapshot.Regions))
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ws := monitor.NewWebServer(monitor.WebServerConfig{
		Address: addr,
		Store:   store,
	})
	if err := ws.Start(ctx); err != nil {
		log.Fatalf("HTTP server error: %v", err)
	}
	log.Printf("Graceful shutdown complete")
}

// newGenerator builds the point source from cfg, keeping the default
// cluster layout when none is configured.
func newGenerator(cfg *config.SceneConfig) *synthetic.Generator {
	gen := synthetic.NewGenerator(cfg.GetSeed())
	gen.PointCount = cfg.GetPointCount()
	if len(cfg.Clusters) > 0 {
		gen.Clusters = make([]synthetic.Cluster, len(cfg.Clusters))
		for i, c := range cfg.Clusters {
			gen.Clusters[i] = synthetic.Cluster{
				Center: r3.Vec{X: c.Center[0], Y: c.Center[1], Z: c.Center[2]},
				Spread: c.Spread,
				Weight: c.Weight,
			}
		}
	}
	return gen
}

// closeThreshold maps the config value onto scene.Options, where zero means
// the default and a negative value disables the shortcut.
func closeThreshold(cfg *config.SceneConfig) float64 {
	t := cfg.GetCloseThreshold()
	if t == 0 {
		return -1
	}
	return t
}
