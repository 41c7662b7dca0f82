package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/alecthomas/kong"
	"github.com/dustin/go-humanize"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/sudorandom/event-viewer/pkg/eventview"
	"github.com/sudorandom/event-viewer/pkg/sources"
)

type CLI struct {
	sources.Overrides `embed:""`

	Output   string        `short:"o" default:"events.mp4" help:"Output video file."`
	FPS      int           `default:"30" help:"Output frame rate."`
	Duration time.Duration `help:"Stop after this much playback time. Defaults to the stream duration."`
	CRF      int           `default:"18" help:"libx264 constant rate factor."`
	Debug    bool          `help:"Enable verbose ffmpeg logging."`
}

func main() {
	log.SetOutput(os.Stderr)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	var cli CLI
	kong.Parse(&cli,
		kong.Name("event-render"),
		kong.Description("Render an event camera recording to video through ffmpeg."),
		kong.UsageOnError(),
	)
	if cli.FPS <= 0 {
		log.Fatalf("Invalid --fps %d", cli.FPS)
	}

	cfg, err := cli.Resolve()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
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

	state := cfg.ViewerState(strategy)
	composer := eventview.NewFrameComposer(strategy, state, palette, cfg.Viewer.PointSize)
	composer.Load(session)

	width, height := cfg.Viewer.Width, cfg.Viewer.Height
	engine := eventview.NewEngine(width, height, composer, canvas)
	engine.Interactive = false
	engine.FixedStep = time.Second / time.Duration(cli.FPS)
	engine.StopAt = session.Events.Duration()
	if cli.Duration > 0 {
		engine.StopAt = float64(cli.Duration.Microseconds())
	}
	frames := int(engine.StopAt/1e6/state.PlaybackSpeed*float64(cli.FPS)) + 1
	log.Printf("Rendering %s frames at %d fps to %s", humanize.Comma(int64(frames)), cli.FPS, cli.Output)

	ff, err := startFFmpeg(cli, width, height)
	if err != nil {
		log.Fatalf("Failed to start ffmpeg: %v", err)
	}

	// Frames are never dropped; a slow encoder blocks the render loop.
	bufferPool := &sync.Pool{
		New: func() any {
			return make([]byte, width*height*4)
		},
	}
	frameChan := make(chan []byte, 4)
	done := make(chan struct{})
	go func() {
		defer close(done)
		written := 0
		for buf := range frameChan {
			if _, err := ff.stdin.Write(buf); err != nil {
				log.Printf("Error writing frame to ffmpeg: %v", err)
			}
			bufferPool.Put(buf)
			written++
			if written%(cli.FPS*10) == 0 {
				log.Printf("[FRAMES] %s/%s frames encoded", humanize.Comma(int64(written)), humanize.Comma(int64(frames)))
			}
		}
	}()
	engine.OnFrame = func(screen *ebiten.Image) {
		buf := bufferPool.Get().([]byte)
		screen.ReadPixels(buf)
		frameChan <- buf
	}

	started := time.Now()
	ebiten.SetTPS(ebiten.SyncWithFPS)
	ebiten.SetVsyncEnabled(false)
	ebiten.SetRunnableOnUnfocused(true)
	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowTitle("Event Render")
	if err := ebiten.RunGame(engine); err != nil {
		log.Printf("Render loop stopped: %v", err)
	}

	close(frameChan)
	<-done
	if err := ff.Close(); err != nil {
		log.Fatalf("ffmpeg failed: %v", err)
	}
	log.Printf("Wrote %s in %v", cli.Output, time.Since(started).Round(time.Second))
}

type ffmpeg struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser
}

func startFFmpeg(cli CLI, width, height int) (*ffmpeg, error) {
	var args []string
	if cli.Debug {
		args = append(args, "-loglevel", "debug")
	} else {
		args = append(args, "-loglevel", "warning")
	}
	args = append(args,
		"-y",
		"-f", "rawvideo", "-pixel_format", "rgba", "-video_size", fmt.Sprintf("%dx%d", width, height),
		"-framerate", fmt.Sprint(cli.FPS), "-i", "pipe:0",
		"-c:v", "libx264",
		"-preset", "medium",
		"-crf", fmt.Sprint(cli.CRF),
		"-pix_fmt", "yuv420p",
		cli.Output,
	)
	cmd := exec.Command("ffmpeg", args...)
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &ffmpeg{cmd: cmd, stdin: stdin}, nil
}

// Close ends the input stream and waits for ffmpeg to finish the file.
func (f *ffmpeg) Close() error {
	if err := f.stdin.Close(); err != nil {
		log.Printf("Error closing ffmpeg input: %v", err)
	}
	return f.cmd.Wait()
}
