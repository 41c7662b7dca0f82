package sources

import (
	"bufio"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/sudorandom/event-viewer/pkg/eventview"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DataMismatchWarning is reported when the timestamp count and the image
// count differ. Only the shorter of the two is used.
type DataMismatchWarning struct {
	Timestamps int
	Images     int
}

func (w DataMismatchWarning) Error() string {
	return fmt.Sprintf("timestamp count (%d) does not match image file count (%d)", w.Timestamps, w.Images)
}

// FrameOptions locates the RGB frames of a recording. Timestamps and
// Images are relative to Dir unless absolute.
type FrameOptions struct {
	Dir        string
	Timestamps string
	Images     string
	Extension  string
}

// DefaultFrameOptions matches the layout of the common dataset exports.
func DefaultFrameOptions(dir string) FrameOptions {
	return FrameOptions{
		Dir:        dir,
		Timestamps: "timestamps.txt",
		Images:     filepath.Join("left", "distorted"),
		Extension:  ".png",
	}
}

func (o FrameOptions) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(o.Dir, p)
}

// LoadFrames pairs the timestamps file with the sorted image list. The
// returned frames have no texture yet. Timestamps are in stream time.
func LoadFrames(opts FrameOptions) ([]eventview.Frame, []error, error) {
	tsPath := opts.resolve(opts.Timestamps)
	f, err := os.Open(tsPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open timestamps file: %w", err)
	}
	timestamps, warnings := ReadTimestamps(f)
	_ = f.Close()
	log.Printf("[FRAMES] Loaded %d timestamps", len(timestamps))

	ext := opts.Extension
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	paths, err := ListImages(opts.resolve(opts.Images), ext)
	if err != nil {
		return nil, warnings, err
	}
	log.Printf("[FRAMES] Found %d image files with extension %q", len(paths), ext)

	if len(timestamps) != len(paths) {
		w := DataMismatchWarning{Timestamps: len(timestamps), Images: len(paths)}
		log.Printf("[FRAMES] Warning: %v", w)
		warnings = append(warnings, w)
	}
	n := min(len(timestamps), len(paths))
	frames := make([]eventview.Frame, n)
	for i := range frames {
		frames[i] = eventview.Frame{Timestamp: timestamps[i], Path: paths[i]}
	}
	return frames, warnings, nil
}

// ReadTimestamps parses one decimal integer per line. Lines that do not
// parse are skipped and reported. Blank lines are ignored.
func ReadTimestamps(r io.Reader) ([]int64, []error) {
	var (
		out      []int64
		warnings []error
	)
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		ts, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			w := fmt.Errorf("timestamps line %d: could not parse %q", line, text)
			log.Printf("[FRAMES] Warning: %v", w)
			warnings = append(warnings, w)
			continue
		}
		out = append(out, ts)
	}
	if err := sc.Err(); err != nil {
		warnings = append(warnings, err)
	}
	return out, warnings
}

// ListImages returns the regular files in dir with extension ext, sorted by
// name.
func ListImages(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read image directory: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if !e.Type().IsRegular() || filepath.Ext(e.Name()) != ext {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	slices.Sort(paths)
	return paths, nil
}

// DecodeImage reads any registered image format from path.
func DecodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return img, nil
}
