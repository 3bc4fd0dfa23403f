package engine

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ivlev/pixelate/internal/config"
	"github.com/ivlev/pixelate/internal/encoder"
	"github.com/ivlev/pixelate/internal/pixelator"
	"github.com/ivlev/pixelate/internal/source"
	"github.com/ivlev/pixelate/internal/system"
)

// MemoryChecker reports whether a w x h page fits in available memory.
type MemoryChecker func(ctx context.Context, w, h int) (ok bool, need, avail uint64, err error)

type Project struct {
	Config   *config.Config
	Source   source.Source
	Encoder  encoder.Encoder
	MemCheck MemoryChecker
}

func NewProject(cfg *config.Config, src source.Source, enc encoder.Encoder) *Project {
	return &Project{
		Config:   cfg,
		Source:   src,
		Encoder:  enc,
		MemCheck: system.CheckMemory,
	}
}

// Run decodes the configured page, pixelates it and saves the result.
// Nothing is written unless every earlier step succeeded.
func (p *Project) Run(ctx context.Context) error {
	startTime := time.Now()
	cfg := p.Config

	w, h, err := p.Source.GetPageDimensions(cfg.Page)
	if err != nil {
		return err
	}

	memCheck := p.MemCheck
	if memCheck == nil {
		memCheck = system.CheckMemory
	}
	ok, need, avail, err := memCheck(ctx, w, h)
	if err != nil {
		p.logf("[!] Could not check available memory: %v", err)
	} else if !ok {
		log.Printf("[!] %dx%d needs about %s, only %s available", w, h, system.HumanBytes(need), system.HumanBytes(avail))
	}

	decodeStart := time.Now()
	img, err := p.Source.RenderPage(cfg.Page)
	if err != nil {
		return err
	}
	src := pixelator.FromImage(img)
	decodeTime := time.Since(decodeStart)

	if err := pixelator.ValidateBlockSize(src.Width(), src.Height(), cfg.SquareSize); err != nil {
		return err
	}

	cw, ch := pixelator.CroppedSize(src.Width(), src.Height(), cfg.SquareSize)
	p.logf("[*] Source: %s | %dx%d -> %dx%d | square %d | blocks %d | bw %v",
		cfg.FromPath, src.Width(), src.Height(), cw, ch, cfg.SquareSize,
		pixelator.BlockCount(src.Width(), src.Height(), cfg.SquareSize), cfg.Grayscale)

	pixelateStart := time.Now()
	dst, err := pixelator.PixelateParallel(ctx, src, cfg.SquareSize, cfg.Grayscale, cfg.Workers)
	if err != nil {
		return err
	}
	pixelateTime := time.Since(pixelateStart)

	encodeStart := time.Now()
	if err := p.Encoder.Save(dst, cfg.ToPath); err != nil {
		return err
	}
	encodeTime := time.Since(encodeStart)

	p.logf("[+++] Saved %s", cfg.ToPath)

	if cfg.ShowStats {
		totalTime := time.Since(startTime)
		report := fmt.Sprintf(
			"--- [PERFORMANCE REPORT] ---\n"+
				"Image: %dx%d -> %dx%d\n"+
				"Workers: %d\n"+
				"Total Time: %.3fs\n"+
				"Decoding: %.3fs\n"+
				"Pixelating: %.3fs\n"+
				"Encoding: %.3fs\n"+
				"----------------------------\n",
			src.Width(), src.Height(), cw, ch, cfg.Workers,
			totalTime.Seconds(), decodeTime.Seconds(), pixelateTime.Seconds(), encodeTime.Seconds(),
		)
		fmt.Print(report)
	}

	return nil
}

func (p *Project) logf(format string, args ...any) {
	if p.Config.Verbose {
		log.Printf(format, args...)
	}
}
