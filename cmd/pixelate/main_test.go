package main

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeImage(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestRunMessages(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	writeImage(t, in, 10, 10)

	garbage := filepath.Join(dir, "garbage.png")
	if err := os.WriteFile(garbage, []byte("nope"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantOut  string
	}{
		{"ok", []string{"--from_path", in, "--to_path", filepath.Join(dir, "ok.png"), "--square_size", "3"}, 0, ""},
		{"ok bw", []string{"--from_path", in, "--to_path", filepath.Join(dir, "bw.png"), "--square_size", "2", "-bw"}, 0, ""},
		{"missing", []string{"--from_path", filepath.Join(dir, "missing.png"), "--to_path", filepath.Join(dir, "x.png"), "--square_size", "2"}, 1, "pixelate: File was not found.\n"},
		{"garbage", []string{"--from_path", garbage, "--to_path", filepath.Join(dir, "x.png"), "--square_size", "2"}, 1, "pixelate: Could not identify image file.\n"},
		{"too big", []string{"--from_path", in, "--to_path", filepath.Join(dir, "big.png"), "--square_size", "11"}, 1, "pixelate: Square size is too big.\n"},
		{"zero", []string{"--from_path", in, "--to_path", filepath.Join(dir, "zero.png"), "--square_size", "0"}, 1, "pixelate: Square size must be positive.\n"},
		{"bad extension", []string{"--from_path", in, "--to_path", filepath.Join(dir, "out.nope"), "--square_size", "2"}, 1, "pixelate: Could not save image file.\n"},
		{"no size", []string{"--from_path", in, "--to_path", filepath.Join(dir, "x.png")}, 2, ""},
		{"no paths", []string{"--square_size", "2"}, 2, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(tt.args, &stdout, &stderr)
			if code != tt.wantCode {
				t.Errorf("Exit code %d, want %d (stderr: %s)", code, tt.wantCode, stderr.String())
			}
			if stdout.String() != tt.wantOut {
				t.Errorf("Stdout %q, want %q", stdout.String(), tt.wantOut)
			}
		})
	}

	for _, name := range []string{"big.png", "zero.png", "out.nope"} {
		if _, err := os.Stat(filepath.Join(dir, name)); !os.IsNotExist(err) {
			t.Errorf("%s must not be created", name)
		}
	}
}

func TestRunConfigFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	out := filepath.Join(dir, "out.png")
	writeImage(t, in, 9, 9)

	cfgPath := filepath.Join(dir, "pixelate.yaml")
	data := fmt.Sprintf("from_path: %s\nto_path: %s\nsquare_size: 20\nworkers: 2\n", in, out)
	if err := os.WriteFile(cfgPath, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer

	// square_size from the file is too big; the flag overrides it
	if code := run([]string{"-config", cfgPath}, &stdout, &stderr); code != 1 {
		t.Fatalf("Expected exit 1 with file settings, got %d", code)
	}
	if !strings.Contains(stdout.String(), "Square size is too big.") {
		t.Errorf("Unexpected stdout %q", stdout.String())
	}

	stdout.Reset()
	if code := run([]string{"-config", cfgPath, "--square_size", "4"}, &stdout, &stderr); code != 0 {
		t.Fatalf("Expected exit 0, got %d: %s", code, stdout.String())
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 8 || cfg.Height != 8 {
		t.Errorf("Expected 8x8 output, got %dx%d", cfg.Width, cfg.Height)
	}
}

func TestRunBadConfigFile(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"-config", filepath.Join(t.TempDir(), "missing.yaml")}, &stdout, &stderr)
	if code != 1 || stdout.String() != "pixelate: Could not read config file.\n" {
		t.Errorf("Got code %d, stdout %q", code, stdout.String())
	}
}
