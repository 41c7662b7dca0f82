package eventview

import (
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// captureFrame copies the pixels synchronously and encodes the PNG in the
// background so the render loop is not held up by disk I/O.
func (e *Engine) captureFrame(img *ebiten.Image, timestamp time.Time) {
	if e.FrameCaptureDir == "" {
		return
	}
	if err := os.MkdirAll(e.FrameCaptureDir, 0o755); err != nil {
		log.Printf("Error creating capture directory: %v", err)
		return
	}

	filename := fmt.Sprintf("events-%s.png", timestamp.Format("20060102-150405.000"))
	path := filepath.Join(e.FrameCaptureDir, filename)

	rgba := image.NewRGBA(img.Bounds())
	img.ReadPixels(rgba.Pix)

	go func() {
		if err := writePNG(path, rgba); err != nil {
			log.Printf("Error writing capture: %v", err)
			return
		}
		log.Printf("Captured frame: %s", path)
	}()
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
