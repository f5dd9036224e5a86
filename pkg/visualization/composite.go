// Package visualization assembles display products from derived spectral
// maps: RGB composites of band-parameter images and line plots of spectra.
// The numeric pipeline itself only exposes plain arrays; this package is the
// rendering boundary.
package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"github.com/z-vig/reflspeckit/pkg/spectral"
)

// RGBComposite builds an RGB image from three maps, one per channel. Each
// channel is stretched independently to its finite min/max and NaN pixels
// render black in that channel.
func RGBComposite(r, g, b *spectral.Map) (image.Image, error) {
	if !r.SameShape(g) || !g.SameShape(b) {
		return nil, &spectral.DimensionError{Msg: "composite channels differ in shape"}
	}
	img := image.NewRGBA(image.Rect(0, 0, r.Cols, r.Rows))
	rs := channelScaler(r)
	gs := channelScaler(g)
	bs := channelScaler(b)
	for i := 0; i < r.Rows; i++ {
		for j := 0; j < r.Cols; j++ {
			img.SetRGBA(j, i, color.RGBA{
				R: rs(r.At(i, j)),
				G: gs(g.At(i, j)),
				B: bs(b.At(i, j)),
				A: 255,
			})
		}
	}
	return img, nil
}

// channelScaler returns a function mapping map values onto 0-255 by min-max
// stretch over the finite values.
func channelScaler(m *spectral.Map) func(float64) uint8 {
	lo := math.Inf(1)
	hi := math.Inf(-1)
	for _, v := range m.Data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	span := hi - lo
	return func(v float64) uint8 {
		if math.IsNaN(v) || math.IsInf(v, 0) || span <= 0 {
			return 0
		}
		return uint8(math.Max(0, math.Min(255, (v-lo)/span*255)))
	}
}

// SavePNG writes an image to path, creating parent directories as needed.
func SavePNG(img image.Image, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create image file: %w", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return nil
}
