// Package subtitles rasterizes word-level captions into PNG overlays.
//
// Rendering happens in-process with x/image: one single-word image per
// transcription chunk, drawn centered with a black outline so the text stays
// legible over any footage. The mux step positions each image over the video
// for its word's time window.
package subtitles

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"shortreel/internal/media"
	"shortreel/internal/services"
	"shortreel/internal/transcribe"
)

// strokeWidth is the outline thickness in pixels.
const strokeWidth = 2

// Style controls the caption rendering.
type Style struct {
	FontPath string
	FontSize float64
	Color    string
}

var fillColors = map[string]color.RGBA{
	"white":  {R: 255, G: 255, B: 255, A: 255},
	"black":  {A: 255},
	"yellow": {R: 255, G: 255, B: 0, A: 255},
}

// Renderer rasterizes caption images with a loaded typeface.
type Renderer struct {
	face font.Face
	fill color.RGBA
}

// NewRenderer loads the typeface named by style. Font problems surface as
// configuration errors since the font path comes straight from the config.
func NewRenderer(style Style) (*Renderer, error) {
	data, err := os.ReadFile(style.FontPath)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "subtitles", "load font",
			fmt.Sprintf("read font file %s", style.FontPath), err)
	}
	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "subtitles", "load font",
			fmt.Sprintf("%s is not a usable font", style.FontPath), err)
	}
	size := style.FontSize
	if size <= 0 {
		size = 48
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "subtitles", "load font", "build font face", err)
	}
	fill, ok := fillColors[strings.ToLower(strings.TrimSpace(style.Color))]
	if !ok {
		fill = fillColors["white"]
	}
	return &Renderer{face: face, fill: fill}, nil
}

// Render writes one caption PNG per chunk into dir and returns the overlays
// for the mux step. Images span the video width so a centered overlay lines
// up with the frame center. Chunks with blank text are skipped.
func (r *Renderer) Render(chunks []transcribe.Chunk, videoWidth int, dir string) ([]media.Overlay, error) {
	if videoWidth <= 0 {
		return nil, services.Wrap(nil, "subtitles", "render", "video width must be positive", nil)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, services.Wrap(nil, "subtitles", "render", "create overlay directory", err)
	}

	metrics := r.face.Metrics()
	height := (metrics.Ascent + metrics.Descent).Ceil() + 2*strokeWidth
	overlays := make([]media.Overlay, 0, len(chunks))
	for i, chunk := range chunks {
		text := strings.TrimSpace(chunk.Text)
		if text == "" {
			continue
		}
		img := image.NewRGBA(image.Rect(0, 0, videoWidth, height))
		r.drawWord(img, text, videoWidth, metrics)

		path := filepath.Join(dir, fmt.Sprintf("word_%04d.png", i))
		if err := writePNG(path, img); err != nil {
			return nil, services.Wrap(nil, "subtitles", "render", fmt.Sprintf("write caption image for %q", text), err)
		}
		overlays = append(overlays, media.Overlay{
			ImagePath: path,
			Start:     chunk.Start,
			End:       chunk.End,
		})
	}
	return overlays, nil
}

func (r *Renderer) drawWord(dst draw.Image, text string, width int, metrics font.Metrics) {
	advance := font.MeasureString(r.face, text)
	x := (fixed.I(width) - advance) / 2
	y := fixed.I(strokeWidth) + metrics.Ascent

	outline := color.RGBA{A: 255}
	for dx := -strokeWidth; dx <= strokeWidth; dx++ {
		for dy := -strokeWidth; dy <= strokeWidth; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			drawer := font.Drawer{
				Dst:  dst,
				Src:  image.NewUniform(outline),
				Face: r.face,
				Dot:  fixed.Point26_6{X: x + fixed.I(dx), Y: y + fixed.I(dy)},
			}
			drawer.DrawString(text)
		}
	}
	drawer := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(r.fill),
		Face: r.face,
		Dot:  fixed.Point26_6{X: x, Y: y},
	}
	drawer.DrawString(text)
}

func writePNG(path string, img image.Image) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(file, img); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
