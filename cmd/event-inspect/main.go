package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"

	"github.com/alecthomas/kong"
	"github.com/dustin/go-humanize"
	"github.com/sudorandom/event-viewer/pkg/eventview"
	"github.com/sudorandom/event-viewer/pkg/sources"
)

type CLI struct {
	sources.Overrides `embed:""`

	At    float64 `help:"Playback position in microseconds since the first event for the window and frame queries."`
	Quiet bool    `short:"q" help:"Suppress loader logs."`
}

func main() {
	log.SetOutput(os.Stderr)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	var cli CLI
	kong.Parse(&cli,
		kong.Name("event-inspect"),
		kong.Description("Print statistics and window queries for an event camera recording."),
		kong.UsageOnError(),
	)
	if cli.Quiet {
		log.SetOutput(io.Discard)
	}

	cfg, err := cli.Resolve()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	strategy, err := eventview.StrategyByName(cfg.Viewer.Mode)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	window := cfg.ViewerState(strategy).TimeWindowUS
	ds, warnings, err := sources.LoadDataset(cfg)
	if err != nil {
		log.Fatalf("Failed to load dataset: %v", err)
	}
	ix, err := eventview.BuildEventIndex(ds.Events)
	if err != nil {
		log.Fatalf("Failed to index events: %v", err)
	}
	res := ds.Resolution
	if !res.Valid() {
		res = eventview.InferResolution(ix.Events())
	}
	for i := range ds.Frames {
		ds.Frames[i].Timestamp += ds.TOffset
	}
	frames := eventview.NewFrameIndex(ds.Frames)
	base := float64(ds.TOffset) + float64(ix.FirstTimestamp())

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	on, off := ix.Polarity()
	duration := ix.Duration()
	fmt.Fprintf(w, "events\t%s\n", humanize.Comma(int64(ix.Len())))
	fmt.Fprintf(w, "duration\t%.6fs\n", duration/1e6)
	fmt.Fprintf(w, "resolution\t%s\n", res)
	fmt.Fprintf(w, "polarity on/off\t%s / %s\n", humanize.Comma(int64(on)), humanize.Comma(int64(off)))
	if duration > 0 {
		fmt.Fprintf(w, "event rate\t%s ev/s\n", humanize.Comma(int64(float64(ix.Len())/(duration/1e6))))
	}
	fmt.Fprintf(w, "t_offset\t%d\n", ds.TOffset)
	fmt.Fprintf(w, "base time\t%.0f\n", base)
	fmt.Fprintf(w, "frames\t%d\n", frames.Len())
	if frames.Len() > 0 {
		fmt.Fprintf(w, "frame span\t%d .. %d\n", frames.Frame(0).Timestamp, frames.Frame(frames.Len()-1).Timestamp)
	}
	fmt.Fprintf(w, "warnings\t%d\n", len(warnings))

	if cli.At > 0 {
		first, count := ix.TimeWindow(cli.At-window, cli.At)
		fmt.Fprintf(w, "\nwindow\t[%.0f, %.0f)\n", cli.At-window, cli.At)
		fmt.Fprintf(w, "window events\t%s (first index %d)\n", humanize.Comma(int64(count)), first)
		if f, ok := frames.LatestAt(base + cli.At); ok {
			fmt.Fprintf(w, "latest frame\t%s at %d (age %.0fus)\n", f.Path, f.Timestamp, base+cli.At-float64(f.Timestamp))
		} else {
			fmt.Fprintf(w, "latest frame\tnone\n")
		}
	}
	if err := w.Flush(); err != nil {
		log.Fatalf("Error writing output: %v", err)
	}
}
