//go:build linux

package window

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"

	"github.com/tinyrange/glctx/internal/x11"
	"github.com/tinyrange/glctx/rawhandle"
)

const (
	inputOutput = 1
	allocNone   = 0

	exposureMask        = 1 << 15
	structureNotifyMask = 1 << 17
	keyPressMask        = 1 << 0
	keyReleaseMask      = 1 << 1
	buttonPressMask     = 1 << 2
	buttonReleaseMask   = 1 << 3
	pointerMotionMask   = 1 << 6

	cwBorderPixel = 1 << 3
	cwEventMask   = 1 << 11
	cwColormap    = 1 << 13

	clientMessage = 33
	destroyNotify = 17
)

type xclientMessage struct {
	Type        int32
	Serial      uint64
	SendEvent   int32
	Display     uintptr
	Window      uintptr
	MessageType uintptr
	Format      int32
	Data        [5]uint64
}

type xSetWindowAttributes struct {
	BackgroundPixmap uintptr
	BackgroundPixel  uint64
	BorderPixmap     uint64
	BorderPixel      uint64
	BitGravity       int32
	WinGravity       int32
	BackingStore     int32
	BackingPlanes    uint64
	BackingPixel     uint64
	SaveUnder        int32
	EventMask        int64
	DoNotPropagate   int64
	OverrideRedirect int32
	Colormap         uintptr
	Cursor           uintptr
}

var (
	libOnce sync.Once
	libErr  error

	xOpenDisplay           func(*byte) uintptr
	xDefaultScreen         func(uintptr) int32
	xDefaultVisual         func(uintptr, int32) uintptr
	xDefaultDepth          func(uintptr, int32) int32
	xVisualIDFromVisual    func(uintptr) uint64
	xRootWindow            func(uintptr, int32) uintptr
	xCreateColormap        func(uintptr, uintptr, uintptr, int32) uintptr
	xFreeColormap          func(uintptr, uintptr) int32
	xCreateWindow          func(uintptr, uintptr, int32, int32, uint32, uint32, uint32, int32, uint32, uintptr, uint64, unsafe.Pointer) uintptr
	xMapWindow             func(uintptr, uintptr) int32
	xStoreName             func(uintptr, uintptr, *byte) int32
	xInternAtom            func(uintptr, *byte, int32) uintptr
	xSetWMProtocols        func(uintptr, uintptr, *uintptr, int32) int32
	xSelectInput           func(uintptr, uintptr, int64)
	xPending               func(uintptr) int32
	xNextEvent             func(uintptr, unsafe.Pointer)
	xGetGeometry           func(uintptr, uintptr, *uintptr, *int32, *int32, *uint32, *uint32, *uint32, *uint32) int32
	xDestroyWindow         func(uintptr, uintptr) int32
	xCloseDisplay          func(uintptr) int32
	xQueryPointer          func(uintptr, uintptr, *uintptr, *uintptr, *int32, *int32, *int32, *int32, *uint32) int32
	xDisplayWidth          func(uintptr, int32) int32
	xDisplayWidthMM        func(uintptr, int32) int32
	xResourceManagerString func(uintptr) string
)

func loadX11() error {
	libOnce.Do(func() {
		lib, err := purego.Dlopen("libX11.so.6", purego.RTLD_LAZY|purego.RTLD_GLOBAL)
		if err != nil {
			libErr = fmt.Errorf("window: %w", err)
			return
		}
		register := func(dst any, name string) {
			purego.RegisterLibFunc(dst, lib, name)
		}
		register(&xOpenDisplay, "XOpenDisplay")
		register(&xDefaultScreen, "XDefaultScreen")
		register(&xDefaultVisual, "XDefaultVisual")
		register(&xDefaultDepth, "XDefaultDepth")
		register(&xVisualIDFromVisual, "XVisualIDFromVisual")
		register(&xRootWindow, "XRootWindow")
		register(&xCreateColormap, "XCreateColormap")
		register(&xFreeColormap, "XFreeColormap")
		register(&xCreateWindow, "XCreateWindow")
		register(&xMapWindow, "XMapWindow")
		register(&xStoreName, "XStoreName")
		register(&xInternAtom, "XInternAtom")
		register(&xSetWMProtocols, "XSetWMProtocols")
		register(&xSelectInput, "XSelectInput")
		register(&xPending, "XPending")
		register(&xNextEvent, "XNextEvent")
		register(&xGetGeometry, "XGetGeometry")
		register(&xDestroyWindow, "XDestroyWindow")
		register(&xCloseDisplay, "XCloseDisplay")
		register(&xQueryPointer, "XQueryPointer")
		register(&xDisplayWidth, "XDisplayWidth")
		register(&xDisplayWidthMM, "XDisplayWidthMM")
		if _, err := purego.Dlsym(lib, "XResourceManagerString"); err == nil {
			register(&xResourceManagerString, "XResourceManagerString")
		}
	})
	return libErr
}

// Connection is an Xlib display connection owned by the caller.
type Connection struct {
	dpy    uintptr
	screen int32
	scale  float32
}

// Open connects to $DISPLAY. The calling goroutine is locked to its OS
// thread until Close: Xlib and GL state are per thread.
func Open() (*Connection, error) {
	runtime.LockOSThread()
	if err := loadX11(); err != nil {
		runtime.UnlockOSThread()
		return nil, err
	}
	dpy := xOpenDisplay(nil)
	if dpy == 0 {
		runtime.UnlockOSThread()
		return nil, errors.New("XOpenDisplay failed")
	}
	c := &Connection{dpy: dpy, screen: xDefaultScreen(dpy)}
	c.scale = c.detectScale()
	return c, nil
}

// Display returns the handle glctx opens its display on.
func (c *Connection) Display() rawhandle.Display {
	screen := c.screen
	return rawhandle.XlibDisplay{Display: c.dpy, Screen: &screen}
}

// Close closes the connection. Windows must be closed first.
func (c *Connection) Close() {
	if c.dpy != 0 {
		xCloseDisplay(c.dpy)
		c.dpy = 0
		runtime.UnlockOSThread()
	}
}

func (c *Connection) detectScale() float32 {
	if s := envScale(); s > 0 {
		return roundScale(s)
	}
	if xResourceManagerString != nil {
		if dpi := parseXftDPI(xResourceManagerString(c.dpy)); dpi > 0 {
			return roundScale(dpi / 96)
		}
	}
	if dpi := dpiFromSize(xDisplayWidth(c.dpy, c.screen), xDisplayWidthMM(c.dpy, c.screen)); dpi > 0 {
		return roundScale(dpi / 96)
	}
	return 1
}

// visual resolves the Visual* and depth for id, or the screen default.
func (c *Connection) visual(id uint32) (visual uintptr, depth int32, visualID uint32, err error) {
	if id == 0 {
		v := xDefaultVisual(c.dpy, c.screen)
		return v, xDefaultDepth(c.dpy, c.screen), uint32(xVisualIDFromVisual(v)), nil
	}
	xl, err := x11.Load()
	if err != nil {
		return 0, 0, 0, err
	}
	info, ok := xl.FindVisual(c.dpy, id)
	if !ok {
		return 0, 0, 0, fmt.Errorf("X visual 0x%x not found", id)
	}
	return info.Visual, info.Depth, info.ID, nil
}

type x11Window struct {
	conn     *Connection
	window   uintptr
	colormap uintptr
	visualID uint32
	wmDelete uintptr
	running  bool
}

// NewWindow creates and maps a window on the connection's screen.
func (c *Connection) NewWindow(opts Options) (Window, error) {
	visual, depth, visualID, err := c.visual(opts.VisualID)
	if err != nil {
		return nil, err
	}
	root := xRootWindow(c.dpy, c.screen)
	cmap := xCreateColormap(c.dpy, root, visual, allocNone)

	var swa xSetWindowAttributes
	swa.Colormap = cmap
	swa.EventMask = exposureMask | structureNotifyMask | keyPressMask | keyReleaseMask | buttonPressMask | buttonReleaseMask | pointerMotionMask

	win := xCreateWindow(
		c.dpy, root,
		0, 0,
		uint32(opts.Width), uint32(opts.Height),
		0,
		depth,
		inputOutput,
		visual,
		cwBorderPixel|cwColormap|cwEventMask,
		unsafe.Pointer(&swa),
	)
	if win == 0 {
		xFreeColormap(c.dpy, cmap)
		return nil, errors.New("XCreateWindow failed")
	}
	xSelectInput(c.dpy, win, swa.EventMask)

	title := append([]byte(opts.Title), 0)
	xStoreName(c.dpy, win, &title[0])
	xMapWindow(c.dpy, win)

	name := append([]byte("WM_DELETE_WINDOW"), 0)
	wmDelete := xInternAtom(c.dpy, &name[0], 0)
	xSetWMProtocols(c.dpy, win, &wmDelete, 1)

	return &x11Window{
		conn:     c,
		window:   win,
		colormap: cmap,
		visualID: visualID,
		wmDelete: wmDelete,
		running:  true,
	}, nil
}

func (w *x11Window) Handle() rawhandle.Window {
	return rawhandle.XlibWindow{Window: uint64(w.window), VisualID: w.visualID}
}

func (w *x11Window) Close() {
	dpy := w.conn.dpy
	if w.window != 0 && dpy != 0 {
		xDestroyWindow(dpy, w.window)
		xFreeColormap(dpy, w.colormap)
		w.window = 0
	}
	w.running = false
}

func (w *x11Window) Poll() bool {
	if !w.running {
		return false
	}
	dpy := w.conn.dpy
	for xPending(dpy) > 0 {
		var ev [192]byte
		xNextEvent(dpy, unsafe.Pointer(&ev[0]))
		switch *(*int32)(unsafe.Pointer(&ev[0])) {
		case clientMessage:
			cm := (*xclientMessage)(unsafe.Pointer(&ev[0]))
			if cm.Format == 32 && cm.Data[0] == uint64(w.wmDelete) {
				w.running = false
			}
		case destroyNotify:
			w.running = false
		}
	}
	return w.running
}

func (w *x11Window) BackingSize() (int, int) {
	var (
		root          uintptr
		x, y          int32
		width, height uint32
		border, depth uint32
	)
	if xGetGeometry(w.conn.dpy, w.window, &root, &x, &y, &width, &height, &border, &depth) == 0 {
		return 0, 0
	}
	return int(width), int(height)
}

func (w *x11Window) Cursor() (float32, float32) {
	var (
		root, child  uintptr
		rootX, rootY int32
		winX, winY   int32
		mask         uint32
	)
	if xQueryPointer(w.conn.dpy, w.window, &root, &child, &rootX, &rootY, &winX, &winY, &mask) == 0 {
		return 0, 0
	}
	return float32(winX), float32(winY)
}

func (w *x11Window) Scale() float32 { return w.conn.scale }
