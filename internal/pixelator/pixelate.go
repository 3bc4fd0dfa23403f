// Package pixelator replaces square blocks of an RGB pixel grid with their
// average color.
package pixelator

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

var (
	// ErrInvalidBlockSize is returned when the block side is not positive
	// or does not fit inside the image.
	ErrInvalidBlockSize = errors.New("invalid block size")
	// ErrBlockTooBig narrows ErrInvalidBlockSize to the oversize case.
	ErrBlockTooBig = fmt.Errorf("%w: square size is too big", ErrInvalidBlockSize)
)

// ValidateBlockSize checks 1 <= squareSize <= min(width, height).
func ValidateBlockSize(width, height, squareSize int) error {
	if squareSize < 1 {
		return fmt.Errorf("%w: square size %d must be positive", ErrInvalidBlockSize, squareSize)
	}
	if squareSize > width || squareSize > height {
		return fmt.Errorf("%w: %d does not fit into %dx%d", ErrBlockTooBig, squareSize, width, height)
	}
	return nil
}

// CroppedSize truncates both dimensions down to a multiple of squareSize.
func CroppedSize(width, height, squareSize int) (int, int) {
	return width - width%squareSize, height - height%squareSize
}

// BlockCount is the number of whole blocks in the cropped grid.
func BlockCount(width, height, squareSize int) int {
	cw, ch := CroppedSize(width, height, squareSize)
	return (cw / squareSize) * (ch / squareSize)
}

// AverageBlock returns the per-channel floor mean of the square block whose
// top-left corner is (x0, y0).
func AverageBlock(src Buffer, x0, y0, squareSize int) RGB {
	// 255 * squareSize^2 per channel
	var sumR, sumG, sumB uint64
	for y := y0; y < y0+squareSize; y++ {
		for x := x0; x < x0+squareSize; x++ {
			c := src.RGBAt(x, y)
			sumR += uint64(c.R)
			sumG += uint64(c.G)
			sumB += uint64(c.B)
		}
	}

	n := uint64(squareSize) * uint64(squareSize)
	return RGB{
		R: uint8(sumR / n),
		G: uint8(sumG / n),
		B: uint8(sumB / n),
	}
}

// Luminance is the unweighted floor mean of the three channels.
func Luminance(c RGB) uint8 {
	return uint8((uint16(c.R) + uint16(c.G) + uint16(c.B)) / 3)
}

// Pixelate crops src to a multiple of squareSize and fills every block of
// the result with the block's average color. With grayscale set the average
// is further reduced to its Luminance on all three channels.
//
// Trailing columns and rows that do not form a whole block are dropped.
func Pixelate(src Buffer, squareSize int, grayscale bool) (*RGBBuffer, error) {
	if err := ValidateBlockSize(src.Width(), src.Height(), squareSize); err != nil {
		return nil, err
	}

	cw, ch := CroppedSize(src.Width(), src.Height(), squareSize)
	dst := NewRGBBuffer(cw, ch)

	for i := 0; i < ch; i += squareSize {
		pixelateRow(src, dst, i, squareSize, grayscale)
	}

	return dst, nil
}

// PixelateParallel produces the same result as Pixelate, spreading block
// rows over at most workers goroutines. Every block row owns a disjoint band
// of dst.
func PixelateParallel(ctx context.Context, src Buffer, squareSize int, grayscale bool, workers int) (*RGBBuffer, error) {
	if workers <= 1 {
		return Pixelate(src, squareSize, grayscale)
	}
	if err := ValidateBlockSize(src.Width(), src.Height(), squareSize); err != nil {
		return nil, err
	}

	cw, ch := CroppedSize(src.Width(), src.Height(), squareSize)
	dst := NewRGBBuffer(cw, ch)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := 0; i < ch; i += squareSize {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			pixelateRow(src, dst, i, squareSize, grayscale)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return dst, nil
}

// pixelateRow handles all blocks whose top edge is at y0.
func pixelateRow(src Buffer, dst MutableBuffer, y0, squareSize int, grayscale bool) {
	for j := 0; j < dst.Width(); j += squareSize {
		c := AverageBlock(src, j, y0, squareSize)
		if grayscale {
			l := Luminance(c)
			c = RGB{R: l, G: l, B: l}
		}

		for y := y0; y < y0+squareSize; y++ {
			for x := j; x < j+squareSize; x++ {
				dst.SetRGB(x, y, c)
			}
		}
	}
}
