package sources

import (
	"log"

	"github.com/sudorandom/event-viewer/pkg/eventview"
)

// LoadDataset loads the events and frame list named by cfg. Frames carry
// no textures yet. Non-fatal problems are returned as warnings; a missing
// frame directory is one of them and leaves the dataset without frames.
func LoadDataset(cfg Config) (eventview.Dataset, []error, error) {
	var cache *DatasetCache
	if cfg.Cache.Enabled && cfg.Events != "" {
		c, err := OpenDatasetCache(cfg.Cache.Dir)
		if err != nil {
			log.Printf("[CACHE] Disabled: %v", err)
		} else {
			cache = c
			defer func() {
				if err := cache.Close(); err != nil {
					log.Printf("[CACHE] Error closing cache: %v", err)
				}
			}()
		}
	}

	ef, err := LoadEvents(cfg.EventOptions(cache))
	if err != nil {
		return eventview.Dataset{}, nil, err
	}
	ds := eventview.Dataset{
		Events:     ef.Events,
		TOffset:    ef.TOffset,
		Resolution: cfg.SensorResolution(),
	}
	warnings := ef.Warnings

	if fo, ok := cfg.FrameOptions(); ok {
		frames, fw, err := LoadFrames(fo)
		warnings = append(warnings, fw...)
		if err != nil {
			log.Printf("[FRAMES] Warning: frame directory given, but no frames were loaded: %v", err)
			warnings = append(warnings, err)
		} else {
			ds.Frames = frames
		}
	}
	return ds, warnings, nil
}
