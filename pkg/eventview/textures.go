package eventview

import (
	"image"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
)

// LoadTextures decodes every frame and uploads it as an ebiten image. A
// frame that fails keeps its slot with a nil Image so the timeline is
// preserved. The failures are returned as TextureLoadWarning values.
func LoadTextures(frames []Frame, decode func(path string) (image.Image, error)) []error {
	var warnings []error
	loaded := 0
	for i := range frames {
		img, err := decode(frames[i].Path)
		if err != nil {
			w := TextureLoadWarning{Index: i, Path: frames[i].Path, Err: err}
			log.Printf("[FRAMES] %v", w)
			warnings = append(warnings, w)
			frames[i].Image = nil
			continue
		}
		frames[i].Image = ebiten.NewImageFromImage(img)
		loaded++
	}
	log.Printf("[FRAMES] Uploaded %d/%d textures", loaded, len(frames))
	return warnings
}
