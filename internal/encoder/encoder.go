package encoder

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/draw"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

// ErrEncode wraps every failure to encode or write the destination file.
var ErrEncode = errors.New("could not save image")

type Encoder interface {
	Save(img image.Image, path string) error
}

// FileEncoder writes the format implied by the path extension. The file is
// encoded into a temporary sibling and renamed into place, so a failed
// save never leaves a partial destination behind.
type FileEncoder struct {
	Quality int // JPEG quality; WebP is lossless at 100 and above
}

func (e *FileEncoder) Save(img image.Image, path string) error {
	write, err := e.writerFor(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEncode, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".pixelate-*"+filepath.Ext(path))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEncode, err)
	}
	tmpPath := tmp.Name()

	// CreateTemp uses 0600
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("%w: %v", ErrEncode, err)
	}

	if err := write(tmp, img); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("%w: encode %s: %v", ErrEncode, path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: %v", ErrEncode, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return nil
}

func (e *FileEncoder) writerFor(path string) (func(io.Writer, image.Image) error, error) {
	quality := e.Quality
	if quality <= 0 || quality > 100 {
		quality = 95
	}

	if strings.EqualFold(filepath.Ext(path), ".webp") {
		return func(w io.Writer, img image.Image) error {
			return webp.Encode(w, img, &webp.Options{
				Lossless: quality >= 100,
				Quality:  float32(quality),
			})
		}, nil
	}

	format, err := imaging.FormatFromFilename(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return func(w io.Writer, img image.Image) error {
		return imaging.Encode(w, img, format,
			imaging.JPEGQuality(quality),
			imaging.GIFQuantizer(exactQuantizer{}),
			imaging.GIFDrawer(draw.Src),
		)
	}, nil
}

// exactQuantizer keeps the image's own colors when there are at most 256 of
// them, which is the usual case after pixelation. Larger sets fall back to
// Plan9. Pixels are mapped to the nearest entry without dithering.
type exactQuantizer struct{}

func (exactQuantizer) Quantize(p color.Palette, m image.Image) color.Palette {
	limit := cap(p)
	if limit == 0 || limit > 256 {
		limit = 256
	}

	seen := make(map[color.RGBA]struct{}, limit)
	b := m.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.RGBAModel.Convert(m.At(x, y)).(color.RGBA)
			if _, ok := seen[c]; ok {
				continue
			}
			if len(seen) == limit {
				return append(p[:0], palette.Plan9[:limit]...)
			}
			seen[c] = struct{}{}
			p = append(p, c)
		}
	}
	if len(p) == 0 {
		p = append(p, color.RGBA{A: 0xff})
	}
	return p
}
