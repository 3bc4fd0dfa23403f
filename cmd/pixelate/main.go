package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"

	"github.com/ivlev/pixelate/internal/config"
	"github.com/ivlev/pixelate/internal/encoder"
	"github.com/ivlev/pixelate/internal/engine"
	"github.com/ivlev/pixelate/internal/pixelator"
	"github.com/ivlev/pixelate/internal/source"
)

const programName = "pixelate"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run returns the process exit status. User-facing failures go to stdout as
// a single "pixelate: ..." line; usage and diagnostics go to stderr.
func run(args []string, stdout, stderr io.Writer) int {
	log.SetOutput(stderr)

	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(stderr)

	configPtr := fs.String("config", "", "Path to a YAML file with default settings")
	fromPtr := fs.String("from_path", "", "Path to the original image.")
	toPtr := fs.String("to_path", "", "Path to save the new image to.")
	sizePtr := fs.Int("square_size", 0, "Size of a single square in pixels.")
	bwPtr := fs.Bool("bw", false, "Convert the pixelated image to grayscale.")
	workersPtr := fs.Int("workers", 1, "Parallel workers (0 = number of CPUs)")
	qualityPtr := fs.Int("quality", 95, "JPEG/WebP quality 1-100 (WebP is lossless at 100)")
	pagePtr := fs.Int("page", 0, "PDF page to pixelate (0-based)")
	dpiPtr := fs.Int("dpi", 150, "PDF rasterization DPI")
	statsPtr := fs.Bool("stats", false, "Print a performance report")
	verbosePtr := fs.Bool("v", false, "Log progress to stderr")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg := config.Default()
	if *configPtr != "" {
		loaded, err := config.Load(*configPtr)
		if err != nil {
			log.Printf("[-] %v", err)
			fmt.Fprintf(stdout, "%s: Could not read config file.\n", programName)
			return 1
		}
		cfg = loaded
	}

	// Флаги из командной строки перекрывают значения из файла
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["from_path"] {
		cfg.FromPath = *fromPtr
	}
	if set["to_path"] {
		cfg.ToPath = *toPtr
	}
	if set["square_size"] {
		cfg.SquareSize = *sizePtr
	}
	if set["bw"] {
		cfg.Grayscale = *bwPtr
	}
	if set["workers"] {
		cfg.Workers = *workersPtr
	}
	if set["quality"] {
		cfg.Quality = *qualityPtr
	}
	if set["page"] {
		cfg.Page = *pagePtr
	}
	if set["dpi"] {
		cfg.DPI = *dpiPtr
	}
	if set["stats"] {
		cfg.ShowStats = *statsPtr
	}
	if set["v"] {
		cfg.Verbose = *verbosePtr
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "%s: error: %v\n", programName, err)
		fs.Usage()
		return 2
	}
	if !set["square_size"] && cfg.SquareSize == 0 {
		fmt.Fprintf(stderr, "%s: error: %v: square_size\n", programName, config.ErrMissingField)
		fs.Usage()
		return 2
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}

	if err := pixelate(context.Background(), cfg); err != nil {
		if cfg.Verbose || errors.Is(err, encoder.ErrEncode) {
			log.Printf("[-] %v", err)
		}
		fmt.Fprintln(stdout, exitMessage(err))
		return 1
	}
	return 0
}

func pixelate(ctx context.Context, cfg *config.Config) error {
	src, err := source.Open(cfg.FromPath, cfg.DPI)
	if err != nil {
		return err
	}
	defer src.Close()

	enc := &encoder.FileEncoder{Quality: cfg.Quality}
	return engine.NewProject(cfg, src, enc).Run(ctx)
}

// exitMessage maps an error to the single line shown to the user.
func exitMessage(err error) string {
	var msg string
	switch {
	case errors.Is(err, source.ErrNotFound):
		msg = "File was not found."
	case errors.Is(err, source.ErrUnsupportedFormat):
		msg = "Could not identify image file."
	case errors.Is(err, pixelator.ErrBlockTooBig):
		msg = "Square size is too big."
	case errors.Is(err, pixelator.ErrInvalidBlockSize):
		msg = "Square size must be positive."
	case errors.Is(err, encoder.ErrEncode):
		msg = "Could not save image file."
	default:
		msg = err.Error()
	}
	return fmt.Sprintf("%s: %s", programName, msg)
}
