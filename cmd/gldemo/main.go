// Command gldemo opens a window, negotiates a context through glctx and
// animates the clear color until the window is closed.
package main

import (
	"fmt"
	"image/png"
	"log/slog"
	"math"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/tinyrange/glctx/internal/flags"
	"github.com/tinyrange/glctx/internal/graphics"
)

var (
	widthFlag = &cli.IntFlag{
		Name:  "width",
		Usage: "window width in pixels",
		Value: 800,
	}
	heightFlag = &cli.IntFlag{
		Name:  "height",
		Usage: "window height in pixels",
		Value: 600,
	}
	framesFlag = &cli.IntFlag{
		Name:  "frames",
		Usage: "exit after this many frames, 0 runs until the window closes",
	}
	screenshotFlag = &cli.PathFlag{
		Name:  "screenshot",
		Usage: "write the first frame to this PNG file and exit",
	}
)

func main() {
	app := &cli.App{
		Name:   "gldemo",
		Usage:  "render into a window through glctx",
		Flags:  append(append([]cli.Flag{widthFlag, heightFlag, framesFlag, screenshotFlag}, flags.DisplayFlags...), flags.ContextFlags...),
		Action: demo,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func demo(ctx *cli.Context) error {
	log := flags.Logger(ctx)
	pref, err := flags.Preference(ctx)
	if err != nil {
		return err
	}
	tmpl, err := flags.Template(ctx)
	if err != nil {
		return err
	}
	attrs, err := flags.Context(ctx)
	if err != nil {
		return err
	}

	gfx, err := graphics.New(graphics.Options{
		Title:        "glctx demo",
		Width:        ctx.Int(widthFlag.Name),
		Height:       ctx.Int(heightFlag.Name),
		Preference:   pref,
		Template:     tmpl,
		Context:      attrs,
		SwapInterval: flags.SwapInterval(ctx),
		Debug:        ctx.Bool(flags.DebugChecksFlag.Name),
		Logger:       log,
	})
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	log.Info("window open",
		"backend", gfx.Display().Backend(),
		"config", gfx.Config().String(),
		"scale", gfx.Scale())

	var (
		frames     = ctx.Int(framesFlag.Name)
		screenshot = ctx.Path(screenshotFlag.Name)
	)
	return gfx.Loop(func(f graphics.Frame) error {
		gfx.SetClearColor(pulse(f.Index()))
		if screenshot != "" && f.Index() == 1 {
			return writeScreenshot(f, screenshot, log)
		}
		if frames > 0 && f.Index() >= frames {
			return graphics.ErrStop
		}
		return nil
	})
}

// pulse cycles the clear color over roughly four seconds at 60Hz.
func pulse(frame int) graphics.Color {
	t := float64(frame) / 240 * 2 * math.Pi
	return graphics.Color{
		float32(0.5 + 0.4*math.Sin(t)),
		float32(0.5 + 0.4*math.Sin(t+2*math.Pi/3)),
		float32(0.5 + 0.4*math.Sin(t+4*math.Pi/3)),
		1,
	}
}

func writeScreenshot(f graphics.Frame, path string, log *slog.Logger) error {
	img, err := f.Screenshot()
	if err != nil {
		return fmt.Errorf("screenshot: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	if err := png.Encode(file, img); err != nil {
		return fmt.Errorf("encode screenshot: %w", err)
	}
	log.Info("screenshot written", "path", path)
	return graphics.ErrStop
}
