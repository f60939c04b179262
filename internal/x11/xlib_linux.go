//go:build linux

package x11

import (
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/ebitengine/purego"
)

const visualIDMask = 0x1

// xVisualInfo is the C layout of XVisualInfo on LP64.
type xVisualInfo struct {
	Visual       uintptr
	VisualID     uint64
	Screen       int32
	Depth        int32
	Class        int32
	RedMask      uint64
	GreenMask    uint64
	BlueMask     uint64
	ColormapSize int32
	BitsPerRGB   int32
}

// Xlib is the subset of libX11 the backends use.
type Xlib struct {
	getVisualInfo   func(uintptr, int64, *xVisualInfo, *int32) *xVisualInfo
	free            func(unsafe.Pointer) int32
	sync            func(uintptr, int32) int32
	setErrorHandler func(uintptr) uintptr
	defaultScreen   func(uintptr) int32
}

var (
	loadOnce sync.Once
	loaded   *Xlib
	loadErr  error

	// lastError holds the code of the most recent X error seen by the
	// handler installed by TrapErrors. Xlib error handlers are process
	// wide, so this is too.
	lastError  atomic.Int32
	handlerSet sync.Once
)

// Load opens libX11 once per process.
func Load() (*Xlib, error) {
	loadOnce.Do(func() {
		handle, err := purego.Dlopen("libX11.so.6", purego.RTLD_LAZY|purego.RTLD_GLOBAL)
		if err != nil {
			loadErr = fmt.Errorf("x11: %w", err)
			return
		}
		x := &Xlib{}
		purego.RegisterLibFunc(&x.getVisualInfo, handle, "XGetVisualInfo")
		purego.RegisterLibFunc(&x.free, handle, "XFree")
		purego.RegisterLibFunc(&x.sync, handle, "XSync")
		purego.RegisterLibFunc(&x.setErrorHandler, handle, "XSetErrorHandler")
		purego.RegisterLibFunc(&x.defaultScreen, handle, "XDefaultScreen")
		loaded = x
	})
	return loaded, loadErr
}

// FindVisual returns the visual with the given ID on display.
func (x *Xlib) FindVisual(display uintptr, id uint32) (VisualInfo, bool) {
	if display == 0 || id == 0 {
		return VisualInfo{}, false
	}
	tmpl := xVisualInfo{VisualID: uint64(id)}
	var n int32
	infos := x.getVisualInfo(display, visualIDMask, &tmpl, &n)
	if infos == nil || n == 0 {
		return VisualInfo{}, false
	}
	defer x.free(unsafe.Pointer(infos))
	return infos.visualInfo(), true
}

func (v *xVisualInfo) visualInfo() VisualInfo {
	return VisualInfo{
		Visual:    v.Visual,
		ID:        uint32(v.VisualID),
		Screen:    v.Screen,
		Depth:     v.Depth,
		Class:     v.Class,
		RedMask:   v.RedMask,
		GreenMask: v.GreenMask,
		BlueMask:  v.BlueMask,
	}
}

// VisualInfoAt converts the XVisualInfo* returned by a native call and
// frees it.
func (x *Xlib) VisualInfoAt(p unsafe.Pointer) (VisualInfo, bool) {
	if p == nil {
		return VisualInfo{}, false
	}
	defer x.free(p)
	return (*xVisualInfo)(p).visualInfo(), true
}

// DefaultScreen returns the default screen number of display.
func (x *Xlib) DefaultScreen(display uintptr) int32 {
	return x.defaultScreen(display)
}

// Free releases memory returned by Xlib or GLX.
func (x *Xlib) Free(p unsafe.Pointer) {
	if p != nil {
		x.free(p)
	}
}

// TrapErrors installs an error handler that records X errors instead of
// exiting the process. It is installed once.
func (x *Xlib) TrapErrors() {
	handlerSet.Do(func() {
		cb := purego.NewCallback(func(display, event uintptr) uintptr {
			// XErrorEvent.error_code sits after type, display,
			// resourceid and serial.
			code := *(*uint8)(unsafe.Pointer(event + 32))
			lastError.Store(int32(code))
			return 0
		})
		x.setErrorHandler(cb)
	})
}

// Sync flushes the request queue so pending errors are delivered, and
// returns and clears the last recorded error code.
func (x *Xlib) Sync(display uintptr) int32 {
	x.sync(display, 0)
	return lastError.Swap(Success)
}

// ResetError clears the last recorded error code.
func (x *Xlib) ResetError() {
	lastError.Store(Success)
}
