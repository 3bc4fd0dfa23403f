package source

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
)

var (
	// ErrNotFound means the path does not resolve to a readable file.
	ErrNotFound = errors.New("source file not found")
	// ErrUnsupportedFormat means the file could not be identified as an image.
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

// Source yields raster pages. Plain images have exactly one page.
type Source interface {
	PageCount() int
	GetPageDimensions(index int) (width, height int, err error)
	RenderPage(index int) (image.Image, error)
	Close() error
}

// Open picks the decoder by extension: PDF documents are rasterized at dpi,
// everything else goes through the registered image decoders.
func Open(path string, dpi int) (Source, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrNotFound, path)
	}

	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return NewFitzPDFSource(path, dpi)
	}
	return NewImageSource(path)
}

type FitzPDFSource struct {
	doc *fitz.Document
	dpi int
}

func NewFitzPDFSource(path string, dpi int) (*FitzPDFSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	if dpi <= 0 {
		dpi = 72
	}
	return &FitzPDFSource{doc: doc, dpi: dpi}, nil
}

func (f *FitzPDFSource) PageCount() int {
	return f.doc.NumPage()
}

// GetPageDimensions reports the page size in pixels at the source DPI.
// Bounds come in points (1/72 inch).
func (f *FitzPDFSource) GetPageDimensions(index int) (int, int, error) {
	if err := f.checkPage(index); err != nil {
		return 0, 0, err
	}
	rect, err := f.doc.Bound(index)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: page %d: %v", ErrUnsupportedFormat, index, err)
	}
	scale := float64(f.dpi) / 72.0
	return int(float64(rect.Dx()) * scale), int(float64(rect.Dy()) * scale), nil
}

func (f *FitzPDFSource) RenderPage(index int) (image.Image, error) {
	if err := f.checkPage(index); err != nil {
		return nil, err
	}
	img, err := f.doc.ImageDPI(index, float64(f.dpi))
	if err != nil {
		return nil, fmt.Errorf("%w: page %d: %v", ErrUnsupportedFormat, index, err)
	}
	return img, nil
}

func (f *FitzPDFSource) Close() error {
	return f.doc.Close()
}

func (f *FitzPDFSource) checkPage(index int) error {
	if index < 0 || index >= f.doc.NumPage() {
		return fmt.Errorf("page %d out of range, document has %d", index, f.doc.NumPage())
	}
	return nil
}
