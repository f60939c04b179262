//go:build windows

package window

import (
	"fmt"
	"os"
	"runtime"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/tinyrange/glctx/rawhandle"
)

const (
	csOwnDC   = 0x0020
	csHRedraw = 0x0002
	csVRedraw = 0x0001

	wsOverlappedWindow = 0x00CF0000
	wsClipSiblings     = 0x04000000
	wsClipChildren     = 0x02000000
	swShow             = 5

	wmClose   = 0x0010
	wmDestroy = 0x0002
	pmRemove  = 0x0001

	cwUseDefault = 0x80000000
	idcArrow     = 32512
	logPixelsX   = 88
)

type wndClassEx struct {
	cbSize        uint32
	style         uint32
	lpfnWndProc   uintptr
	cbClsExtra    int32
	cbWndExtra    int32
	hInstance     windows.Handle
	hIcon         windows.Handle
	hCursor       windows.Handle
	hbrBackground windows.Handle
	lpszMenuName  *uint16
	lpszClassName *uint16
	hIconSm       windows.Handle
}

type msg struct {
	hwnd     uintptr
	message  uint32
	wParam   uintptr
	lParam   uintptr
	time     uint32
	pt       point
	lPrivate uint32
}

type point struct {
	x, y int32
}

type rect struct {
	left, top, right, bottom int32
}

var (
	user32 = windows.NewLazySystemDLL("user32.dll")
	gdi32  = windows.NewLazySystemDLL("gdi32.dll")

	procRegisterClassEx  = user32.NewProc("RegisterClassExW")
	procCreateWindowEx   = user32.NewProc("CreateWindowExW")
	procDefWindowProc    = user32.NewProc("DefWindowProcW")
	procDestroyWindow    = user32.NewProc("DestroyWindow")
	procShowWindow       = user32.NewProc("ShowWindow")
	procUpdateWindow     = user32.NewProc("UpdateWindow")
	procGetClientRect    = user32.NewProc("GetClientRect")
	procPeekMessage      = user32.NewProc("PeekMessageW")
	procTranslateMessage = user32.NewProc("TranslateMessage")
	procDispatchMessage  = user32.NewProc("DispatchMessageW")
	procPostQuitMessage  = user32.NewProc("PostQuitMessage")
	procGetCursorPos     = user32.NewProc("GetCursorPos")
	procScreenToClient   = user32.NewProc("ScreenToClient")
	procLoadCursor       = user32.NewProc("LoadCursorW")
	procGetDC            = user32.NewProc("GetDC")
	procReleaseDC        = user32.NewProc("ReleaseDC")

	procGetDeviceCaps = gdi32.NewProc("GetDeviceCaps")
)

var (
	// The class name is unique per process so CS_OWNDC classes of two
	// processes never collide.
	windowClassName = fmt.Sprintf("GlctxWindow_%d", os.Getpid())

	classOnce sync.Once
	classErr  error

	windowsMu sync.Mutex
	open      = map[uintptr]*winWindow{}
)

// Connection stands in for the desktop: Win32 needs no display
// connection.
type Connection struct {
	scale float32
}

// Open locks the calling goroutine to its OS thread until Close: window
// messages and GL state are per thread.
func Open() (*Connection, error) {
	runtime.LockOSThread()
	if err := user32.Load(); err != nil {
		runtime.UnlockOSThread()
		return nil, fmt.Errorf("window: %w", err)
	}
	return &Connection{scale: desktopScale()}, nil
}

func (c *Connection) Display() rawhandle.Display { return rawhandle.Win32Display{} }

func (c *Connection) Close() { runtime.UnlockOSThread() }

func desktopScale() float32 {
	if s := envScale(); s > 0 {
		return roundScale(s)
	}
	dc, _, _ := procGetDC.Call(0)
	if dc == 0 {
		return 1
	}
	defer procReleaseDC.Call(0, dc)
	dpi, _, _ := procGetDeviceCaps.Call(dc, logPixelsX)
	if dpi == 0 {
		return 1
	}
	return roundScale(float32(dpi) / 96)
}

func registerClass() error {
	classOnce.Do(func() {
		name, err := windows.UTF16PtrFromString(windowClassName)
		if err != nil {
			classErr = err
			return
		}
		var module windows.Handle
		if err := windows.GetModuleHandleEx(0, nil, &module); err != nil {
			classErr = fmt.Errorf("GetModuleHandleEx: %w", err)
			return
		}
		cursor, _, _ := procLoadCursor.Call(0, idcArrow)
		wc := wndClassEx{
			cbSize:        uint32(unsafe.Sizeof(wndClassEx{})),
			style:         csOwnDC | csHRedraw | csVRedraw,
			lpfnWndProc:   windows.NewCallback(wndProc),
			hInstance:     module,
			hCursor:       windows.Handle(cursor),
			lpszClassName: name,
		}
		if ret, _, err := procRegisterClassEx.Call(uintptr(unsafe.Pointer(&wc))); ret == 0 {
			classErr = fmt.Errorf("RegisterClassExW: %w", err)
		}
	})
	return classErr
}

type winWindow struct {
	hwnd    uintptr
	scale   float32
	running bool
}

// NewWindow creates and shows a top-level window. Its pixel format is set
// later, when glctx creates a surface for it.
func (c *Connection) NewWindow(opts Options) (Window, error) {
	if err := registerClass(); err != nil {
		return nil, err
	}
	class, _ := windows.UTF16PtrFromString(windowClassName)
	title, err := windows.UTF16PtrFromString(opts.Title)
	if err != nil {
		return nil, err
	}
	ret, _, err := procCreateWindowEx.Call(
		0,
		uintptr(unsafe.Pointer(class)),
		uintptr(unsafe.Pointer(title)),
		wsOverlappedWindow|wsClipSiblings|wsClipChildren,
		cwUseDefault,
		cwUseDefault,
		uintptr(opts.Width),
		uintptr(opts.Height),
		0,
		0,
		0,
		0,
	)
	if ret == 0 {
		return nil, fmt.Errorf("CreateWindowExW: %w", err)
	}
	w := &winWindow{hwnd: ret, scale: c.scale, running: true}
	windowsMu.Lock()
	open[ret] = w
	windowsMu.Unlock()

	procShowWindow.Call(ret, swShow)
	procUpdateWindow.Call(ret)
	return w, nil
}

func (w *winWindow) Handle() rawhandle.Window { return rawhandle.Win32Window{HWND: w.hwnd} }

func (w *winWindow) Close() {
	if w.hwnd != 0 {
		procDestroyWindow.Call(w.hwnd)
		windowsMu.Lock()
		delete(open, w.hwnd)
		windowsMu.Unlock()
		w.hwnd = 0
	}
	w.running = false
}

func (w *winWindow) Poll() bool {
	if !w.running {
		return false
	}
	var m msg
	for {
		ret, _, _ := procPeekMessage.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0, pmRemove)
		if ret == 0 {
			break
		}
		if m.message == wmDestroy {
			w.running = false
			break
		}
		procTranslateMessage.Call(uintptr(unsafe.Pointer(&m)))
		procDispatchMessage.Call(uintptr(unsafe.Pointer(&m)))
	}
	return w.running
}

func (w *winWindow) BackingSize() (int, int) {
	var r rect
	procGetClientRect.Call(w.hwnd, uintptr(unsafe.Pointer(&r)))
	return int(r.right - r.left), int(r.bottom - r.top)
}

func (w *winWindow) Cursor() (float32, float32) {
	var p point
	if ret, _, _ := procGetCursorPos.Call(uintptr(unsafe.Pointer(&p))); ret != 0 {
		procScreenToClient.Call(w.hwnd, uintptr(unsafe.Pointer(&p)))
	}
	return float32(p.x), float32(p.y)
}

func (w *winWindow) Scale() float32 { return w.scale }

func wndProc(hwnd, msg, wParam, lParam uintptr) uintptr {
	switch msg {
	case wmClose:
		windowsMu.Lock()
		if w := open[hwnd]; w != nil {
			w.running = false
		}
		windowsMu.Unlock()
		procDestroyWindow.Call(hwnd)
		return 0
	case wmDestroy:
		procPostQuitMessage.Call(0)
		return 0
	}
	ret, _, _ := procDefWindowProc.Call(hwnd, msg, wParam, lParam)
	return ret
}
