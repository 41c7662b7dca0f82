package sources

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writePNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.RGBA{255, 0, 0, 255})
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestReadTimestamps(t *testing.T) {
	got, warnings := ReadTimestamps(strings.NewReader("100\n\nabc\n200\n 300 \n"))
	if diff := cmp.Diff([]int64{100, 200, 300}, got); diff != "" {
		t.Errorf("ReadTimestamps mismatch (-want +got):\n%s", diff)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0].Error(), "line 3") {
		t.Errorf("Expected one warning for line 3, got %v", warnings)
	}
}

func setupFrames(t *testing.T, timestamps string, images []string) string {
	t.Helper()
	dir := t.TempDir()
	imgDir := filepath.Join(dir, "left", "distorted")
	if err := os.MkdirAll(imgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(dir, "timestamps.txt"), []byte(timestamps))
	for _, name := range images {
		writePNG(t, filepath.Join(imgDir, name))
	}
	// Files with another extension and directories are ignored
	writeFile(t, filepath.Join(imgDir, "notes.txt"), []byte("x"))
	if err := os.Mkdir(filepath.Join(imgDir, "sub.png"), 0o755); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestLoadFrames(t *testing.T) {
	dir := setupFrames(t, "300\n100\n200\n", []string{"000002.png", "000000.png", "000001.png"})
	frames, warnings, err := LoadFrames(DefaultFrameOptions(dir))
	if err != nil {
		t.Fatalf("LoadFrames failed: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("Expected no warnings, got %v", warnings)
	}
	if len(frames) != 3 {
		t.Fatalf("Expected 3 frames, got %d", len(frames))
	}
	// Images are paired with timestamps in file name order
	wantNames := []string{"000000.png", "000001.png", "000002.png"}
	wantTS := []int64{300, 100, 200}
	for i, f := range frames {
		if filepath.Base(f.Path) != wantNames[i] || f.Timestamp != wantTS[i] {
			t.Errorf("Frame %d: expected (%s, %d), got (%s, %d)", i, wantNames[i], wantTS[i], filepath.Base(f.Path), f.Timestamp)
		}
		if f.Image != nil {
			t.Errorf("Frame %d: expected no texture before upload", i)
		}
	}
}

func TestLoadFramesMismatch(t *testing.T) {
	dir := setupFrames(t, "100\n200\n300\n", []string{"a.png", "b.png"})
	frames, warnings, err := LoadFrames(DefaultFrameOptions(dir))
	if err != nil {
		t.Fatal(err)
	}
	if len(frames) != 2 {
		t.Errorf("Expected 2 usable frames, got %d", len(frames))
	}
	var mw DataMismatchWarning
	if len(warnings) != 1 || !errors.As(warnings[0], &mw) {
		t.Fatalf("Expected DataMismatchWarning, got %v", warnings)
	}
	if mw.Timestamps != 3 || mw.Images != 2 {
		t.Errorf("Expected counts (3, 2), got (%d, %d)", mw.Timestamps, mw.Images)
	}
}

func TestLoadFramesMissingInputs(t *testing.T) {
	if _, _, err := LoadFrames(DefaultFrameOptions(t.TempDir())); err == nil {
		t.Errorf("Expected error for missing timestamps file")
	}
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "timestamps.txt"), []byte("1\n"))
	if _, _, err := LoadFrames(DefaultFrameOptions(dir)); err == nil {
		t.Errorf("Expected error for missing image directory")
	}
}

func TestDecodeImage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "frame.png")
	writePNG(t, path)
	img, err := DecodeImage(path)
	if err != nil {
		t.Fatalf("DecodeImage failed: %v", err)
	}
	if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 3 {
		t.Errorf("Expected 4x3, got %v", img.Bounds())
	}

	bad := filepath.Join(dir, "bad.png")
	writeFile(t, bad, []byte("not an image"))
	if _, err := DecodeImage(bad); err == nil {
		t.Errorf("Expected decode error")
	}
}
