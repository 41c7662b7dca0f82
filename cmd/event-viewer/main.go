package main

import (
	"context"
	"log"
	"os"

	"github.com/alecthomas/kong"
	"github.com/hajimehoshi/ebiten/v2"
	_ "github.com/silbinarywolf/preferdiscretegpu"
	"github.com/sudorandom/event-viewer/pkg/eventview"
	"github.com/sudorandom/event-viewer/pkg/sources"
)

type CLI struct {
	sources.Overrides `embed:""`

	TPS        int    `help:"Ticks per second."`
	CaptureDir string `name:"capture-dir" default:"captures" help:"Directory for PNG captures (P key)."`
	HideHUD    bool   `name:"hide-hud" help:"Do not draw the status overlay."`
}

func main() {
	log.SetOutput(os.Stderr)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	var cli CLI
	kong.Parse(&cli,
		kong.Name("event-viewer"),
		kong.Description("Interactive 2D/3D viewer for event camera recordings."),
		kong.UsageOnError(),
	)

	cfg, err := cli.Resolve()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if cli.TPS > 0 {
		cfg.Viewer.TPS = cli.TPS
	}
	strategy, err := eventview.StrategyByName(cfg.Viewer.Mode)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	palette, err := cfg.Palette()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ds, _, err := sources.LoadDataset(cfg)
	if err != nil {
		log.Fatalf("Failed to load dataset: %v", err)
	}
	eventview.LoadTextures(ds.Frames, sources.DecodeImage)

	canvas, err := eventview.NewEbitenCanvas()
	if err != nil {
		log.Fatalf("Failed to initialize renderer: %v", err)
	}
	defer canvas.Close()

	session, err := eventview.OpenSession(context.Background(), ds, canvas, 0)
	if err != nil {
		log.Fatalf("Failed to open session: %v", err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			log.Printf("Error closing session: %v", err)
		}
	}()

	composer := eventview.NewFrameComposer(strategy, cfg.ViewerState(strategy), palette, cfg.Viewer.PointSize)
	composer.Load(session)

	engine := eventview.NewEngine(cfg.Viewer.Width, cfg.Viewer.Height, composer, canvas)
	engine.FrameCaptureDir = cli.CaptureDir
	engine.HideHUD = cli.HideHUD
	engine.StartMemoryWatcher()

	ebiten.SetTPS(cfg.Viewer.TPS)
	ebiten.SetWindowSize(cfg.Viewer.Width, cfg.Viewer.Height)
	ebiten.SetWindowTitle("Event Viewer (" + strategy.Name() + ")")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(engine); err != nil {
		log.Printf("Render loop stopped: %v", err)
	}
}
