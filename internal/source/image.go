package source

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ImageSource decodes a single image file. Only the first frame of an
// animated GIF is used.
type ImageSource struct {
	path   string
	format string
	cfg    image.Config
}

// NewImageSource identifies the file from its header without decoding the
// pixel data.
func NewImageSource(path string) (*ImageSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}

	return &ImageSource{path: path, format: format, cfg: cfg}, nil
}

// Format is the name the decoder registered itself under, e.g. "png".
func (s *ImageSource) Format() string {
	return s.format
}

func (s *ImageSource) PageCount() int {
	return 1
}

func (s *ImageSource) GetPageDimensions(index int) (int, int, error) {
	if index != 0 {
		return 0, 0, fmt.Errorf("page %d out of range, image has 1", index)
	}
	return s.cfg.Width, s.cfg.Height, nil
}

func (s *ImageSource) RenderPage(index int) (image.Image, error) {
	if index != 0 {
		return nil, fmt.Errorf("page %d out of range, image has 1", index)
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	return img, nil
}

func (s *ImageSource) Close() error {
	return nil
}
