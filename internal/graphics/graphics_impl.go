package graphics

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"
	"unsafe"

	"github.com/tinyrange/glctx"
	"github.com/tinyrange/glctx/config"
	"github.com/tinyrange/glctx/internal/gl"
	"github.com/tinyrange/glctx/internal/glog"
	"github.com/tinyrange/glctx/internal/window"
	"github.com/tinyrange/glctx/surface"
)

type glWindow struct {
	conn     *window.Connection
	platform window.Window
	display  *glctx.Display
	config   *glctx.Config
	surface  *glctx.Surface[surface.Window]
	ctx      *glctx.PossiblyCurrentContext
	gl       gl.OpenGL
	log      *slog.Logger

	paced        bool
	width        int
	height       int
	clearEnabled bool
	clearColor   Color
	closed       bool
}

type glFrame struct {
	w     *glWindow
	index int
}

// New opens a window and makes a context current on it. The calling
// goroutine stays locked to its OS thread until Close.
func New(opts Options) (_ Window, err error) {
	log := glog.Or(opts.Logger)
	var cleanup []func()
	defer func() {
		if err != nil {
			for i := len(cleanup) - 1; i >= 0; i-- {
				cleanup[i]()
			}
		}
	}()

	conn, err := window.Open()
	if err != nil {
		return nil, err
	}
	cleanup = append(cleanup, conn.Close)

	platform, err := glctx.LoadPlatform()
	if err != nil {
		return nil, err
	}
	display, err := glctx.NewDisplay(platform, conn.Display(), opts.Preference,
		glctx.WithLogger(opts.Logger), glctx.WithDebugChecks(opts.Debug))
	if err != nil {
		return nil, err
	}
	cleanup = append(cleanup, display.Destroy)

	configs, err := display.FindConfigs(opts.Template)
	if err != nil {
		return nil, err
	}
	cfg := glctx.BestConfig(configs)
	log.Debug("config chosen", "config", cfg.String(), "candidates", len(configs))

	wopts := window.Options{Title: opts.Title, Width: opts.Width, Height: opts.Height}
	if v, ok := cfg.X11Visual(); ok {
		wopts.VisualID = v.ID
	}
	platformWin, err := conn.NewWindow(wopts)
	if err != nil {
		return nil, err
	}
	cleanup = append(cleanup, platformWin.Close)

	attrs := surface.WindowAttributes(uint32(opts.Width), uint32(opts.Height))
	if opts.SwapInterval != nil {
		attrs = attrs.WithSwapInterval(*opts.SwapInterval)
	}
	surf, err := display.CreateWindowSurface(cfg, platformWin.Handle(), attrs)
	if err != nil {
		return nil, fmt.Errorf("create surface: %w", err)
	}
	cleanup = append(cleanup, surf.Destroy)

	ctxAttrs := opts.Context
	ctxAttrs.Window = platformWin.Handle()
	notCurrent, err := display.CreateContext(cfg, ctxAttrs)
	if err != nil {
		return nil, fmt.Errorf("create context: %w", err)
	}
	cleanup = append(cleanup, notCurrent.Destroy)

	ctx, err := notCurrent.MakeCurrent(surf)
	if err != nil {
		return nil, fmt.Errorf("make current: %w", err)
	}
	fns, err := gl.Load(display.GetProcAddress)
	if err != nil {
		return nil, err
	}
	log.Info("context ready",
		"display", display.String(),
		"api", ctx.API(),
		"version", ctx.Version(),
		"gl", fns.GetString(gl.Version),
		"renderer", fns.GetString(gl.Renderer))

	return &glWindow{
		conn:         conn,
		platform:     platformWin,
		display:      display,
		config:       cfg,
		surface:      surf,
		ctx:          ctx,
		gl:           fns,
		log:          log,
		paced:        opts.SwapInterval == nil || *opts.SwapInterval == config.DontWait,
		clearEnabled: true,
		clearColor:   ColorBlack,
	}, nil
}

func (w *glWindow) PlatformWindow() window.Window          { return w.platform }
func (w *glWindow) Display() *glctx.Display                { return w.display }
func (w *glWindow) Config() *glctx.Config                  { return w.config }
func (w *glWindow) Context() *glctx.PossiblyCurrentContext { return w.ctx }
func (w *glWindow) Scale() float32                         { return w.platform.Scale() }
func (w *glWindow) SetClear(enabled bool)                  { w.clearEnabled = enabled }
func (w *glWindow) SetClearColor(c Color)                  { w.clearColor = c }

// Close destroys the context before the surface and the surface before
// the window it renders to.
func (w *glWindow) Close() {
	if w.closed {
		return
	}
	w.closed = true
	w.ctx.Destroy()
	w.surface.Destroy()
	w.platform.Close()
	w.display.Destroy()
	w.conn.Close()
}

func (w *glWindow) Loop(step func(f Frame) error) error {
	defer w.Close()

	for i := 0; w.platform.Poll(); i++ {
		w.prepareFrame()
		if err := step(glFrame{w: w, index: i}); err != nil {
			if errors.Is(err, ErrStop) {
				return nil
			}
			return err
		}
		if err := w.surface.SwapBuffers(w.ctx); err != nil {
			return fmt.Errorf("swap: %w", err)
		}
		if w.paced {
			time.Sleep(time.Second / 120)
		}
	}
	return nil
}

// ErrStop ends Loop without an error.
var ErrStop = errors.New("graphics: stop")

func (w *glWindow) prepareFrame() {
	bw, bh := w.platform.BackingSize()
	if bw != w.width || bh != w.height {
		w.surface.Resize(w.ctx, uint32(bw), uint32(bh))
		w.ctx.UpdateAfterResize()
		w.width, w.height = bw, bh
		w.log.Debug("surface resized", "width", bw, "height", bh)
	}
	w.gl.Viewport(0, 0, int32(bw), int32(bh))
	if w.clearEnabled {
		c := w.clearColor
		w.gl.ClearColor(c[0], c[1], c[2], c[3])
		w.gl.Clear(gl.ColorBufferBit)
	}
}

func (f glFrame) Index() int                    { return f.index }
func (f glFrame) WindowSize() (int, int)        { return f.w.platform.BackingSize() }
func (f glFrame) CursorPos() (float32, float32) { return f.w.platform.Cursor() }
func (f glFrame) GL() gl.OpenGL                 { return f.w.gl }

func (f glFrame) Screenshot() (image.Image, error) {
	bw, bh := f.w.platform.BackingSize()
	if bw <= 0 || bh <= 0 {
		return nil, fmt.Errorf("window has no area (%dx%d)", bw, bh)
	}
	rgba := image.NewRGBA(image.Rect(0, 0, bw, bh))
	f.w.gl.ReadPixels(0, 0, int32(bw), int32(bh), gl.RGBA, gl.UnsignedByte, unsafe.Pointer(&rgba.Pix[0]))
	if code := f.w.gl.GetError(); code != gl.NoError {
		return nil, fmt.Errorf("glReadPixels: error 0x%x", code)
	}
	flipRows(rgba)
	return rgba, nil
}

// flipRows turns GL's bottom-up rows into image order in place.
func flipRows(img *image.RGBA) {
	h := img.Rect.Dy()
	row := make([]byte, img.Stride)
	for top, bottom := 0, h-1; top < bottom; top, bottom = top+1, bottom-1 {
		a := img.Pix[top*img.Stride : (top+1)*img.Stride]
		b := img.Pix[bottom*img.Stride : (bottom+1)*img.Stride]
		copy(row, a)
		copy(a, b)
		copy(b, row)
	}
}
