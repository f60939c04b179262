//go:build linux

package glx

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"

	"github.com/tinyrange/glctx/internal/x11"
)

// nativeLib binds libGL with purego. GLX 1.3 entry points must be
// exported; ARB and EXT entry points are resolved through
// glXGetProcAddressARB and reported by Has.
type nativeLib struct {
	handle uintptr
	x      *x11.Xlib
	has    map[string]bool

	getProcAddress        func(string) uintptr
	queryVersion          func(uintptr, *int32, *int32) int32
	queryExtensionsString func(uintptr, int32) *byte
	getClientString       func(uintptr, int32) *byte
	chooseFBConfig        func(uintptr, int32, *int32, *int32) *uintptr
	getFBConfigAttrib     func(uintptr, uintptr, int32, *int32) int32
	getVisualFromFBConfig func(uintptr, uintptr) unsafe.Pointer
	createNewContext      func(uintptr, uintptr, int32, uintptr, int32) uintptr
	destroyContext        func(uintptr, uintptr)
	makeContextCurrent    func(uintptr, uintptr, uintptr, uintptr) int32
	getCurrentContext     func() uintptr
	getCurrentDrawable    func() uintptr
	getCurrentReadDraw    func() uintptr
	getCurrentDisplay     func() uintptr
	createWindow          func(uintptr, uintptr, uint64, *int32) uintptr
	destroyWindow         func(uintptr, uintptr)
	createPbuffer         func(uintptr, uintptr, *int32) uintptr
	destroyPbuffer        func(uintptr, uintptr)
	createPixmap          func(uintptr, uintptr, uint64, *int32) uintptr
	destroyPixmap         func(uintptr, uintptr)
	queryDrawable         func(uintptr, uintptr, int32, *uint32)
	swapBuffers           func(uintptr, uintptr)

	createContextAttribsARB func(uintptr, uintptr, uintptr, int32, *int32) uintptr
	swapIntervalEXT         func(uintptr, uintptr, int32)
	swapIntervalMESA        func(uint32) int32
	swapIntervalSGI         func(int32) int32
}

var (
	loadOnce sync.Once
	loaded   *nativeLib
	loadErr  error
)

// Load opens libGL and libX11 once per process.
func Load() (Lib, error) {
	loadOnce.Do(func() {
		loaded, loadErr = open()
	})
	if loadErr != nil {
		return nil, loadErr
	}
	return loaded, nil
}

func open() (*nativeLib, error) {
	x, err := x11.Load()
	if err != nil {
		return nil, err
	}
	var handle uintptr
	for _, name := range []string{"libGL.so.1", "libGLX.so.0", "libGL.so"} {
		handle, err = purego.Dlopen(name, purego.RTLD_LAZY|purego.RTLD_GLOBAL)
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("glx: %w", err)
	}

	l := &nativeLib{handle: handle, x: x, has: make(map[string]bool)}
	register := func(fn any, name string) {
		purego.RegisterLibFunc(fn, handle, name)
	}
	register(&l.getProcAddress, "glXGetProcAddressARB")
	register(&l.queryVersion, "glXQueryVersion")
	register(&l.queryExtensionsString, "glXQueryExtensionsString")
	register(&l.getClientString, "glXGetClientString")
	register(&l.chooseFBConfig, "glXChooseFBConfig")
	register(&l.getFBConfigAttrib, "glXGetFBConfigAttrib")
	register(&l.getVisualFromFBConfig, "glXGetVisualFromFBConfig")
	register(&l.createNewContext, "glXCreateNewContext")
	register(&l.destroyContext, "glXDestroyContext")
	register(&l.makeContextCurrent, "glXMakeContextCurrent")
	register(&l.getCurrentContext, "glXGetCurrentContext")
	register(&l.getCurrentDrawable, "glXGetCurrentDrawable")
	register(&l.getCurrentReadDraw, "glXGetCurrentReadDrawable")
	register(&l.getCurrentDisplay, "glXGetCurrentDisplay")
	register(&l.createWindow, "glXCreateWindow")
	register(&l.destroyWindow, "glXDestroyWindow")
	register(&l.createPbuffer, "glXCreatePbuffer")
	register(&l.destroyPbuffer, "glXDestroyPbuffer")
	register(&l.createPixmap, "glXCreatePixmap")
	register(&l.destroyPixmap, "glXDestroyPixmap")
	register(&l.queryDrawable, "glXQueryDrawable")
	register(&l.swapBuffers, "glXSwapBuffers")

	optional := map[string]any{
		FnCreateContextAttribsARB: &l.createContextAttribsARB,
		FnSwapIntervalEXT:         &l.swapIntervalEXT,
		FnSwapIntervalMESA:        &l.swapIntervalMESA,
		FnSwapIntervalSGI:         &l.swapIntervalSGI,
	}
	for name, fn := range optional {
		// glXGetProcAddressARB returns non-NULL for any name on some
		// drivers, so the extension string still gates use.
		addr := l.getProcAddress(name)
		if addr == 0 {
			continue
		}
		purego.RegisterFunc(fn, addr)
		l.has[name] = true
	}
	return l, nil
}

func first[T any](s []T) *T {
	if len(s) == 0 {
		return nil
	}
	return &s[0]
}

func gostring(ptr *byte) string {
	if ptr == nil {
		return ""
	}
	var n uintptr
	for *(*byte)(unsafe.Add(unsafe.Pointer(ptr), n)) != 0 {
		n++
	}
	return string(unsafe.Slice(ptr, n))
}

func cbool(v bool) int32 {
	if v {
		return 1
	}
	return 0
}

func (l *nativeLib) Has(name string) bool { return l.has[name] }

func (l *nativeLib) GetProcAddress(name string) uintptr { return l.getProcAddress(name) }

func (l *nativeLib) QueryVersion(dpy uintptr) (major, minor int32, ok bool) {
	ok = l.queryVersion(dpy, &major, &minor) != 0
	return major, minor, ok
}

func (l *nativeLib) QueryExtensionsString(dpy uintptr, screen int32) string {
	return gostring(l.queryExtensionsString(dpy, screen))
}

func (l *nativeLib) GetClientString(dpy uintptr, name int32) string {
	return gostring(l.getClientString(dpy, name))
}

func (l *nativeLib) ChooseFBConfig(dpy uintptr, screen int32, attribs []int32) []uintptr {
	var n int32
	p := l.chooseFBConfig(dpy, screen, first(attribs), &n)
	if p == nil || n <= 0 {
		return nil
	}
	defer l.x.Free(unsafe.Pointer(p))
	return append([]uintptr(nil), unsafe.Slice(p, n)...)
}

func (l *nativeLib) GetFBConfigAttrib(dpy, config uintptr, attrib int32) (int32, bool) {
	var v int32
	ok := l.getFBConfigAttrib(dpy, config, attrib, &v) == 0
	return v, ok
}

func (l *nativeLib) GetVisualFromFBConfig(dpy, config uintptr) (x11.VisualInfo, bool) {
	return l.x.VisualInfoAt(l.getVisualFromFBConfig(dpy, config))
}

func (l *nativeLib) CreateNewContext(dpy, config uintptr, renderType int32, share uintptr, direct bool) uintptr {
	return l.createNewContext(dpy, config, renderType, share, cbool(direct))
}

func (l *nativeLib) CreateContextAttribsARB(dpy, config, share uintptr, direct bool, attribs []int32) uintptr {
	if l.createContextAttribsARB == nil {
		return 0
	}
	return l.createContextAttribsARB(dpy, config, share, cbool(direct), first(attribs))
}

func (l *nativeLib) DestroyContext(dpy, ctx uintptr) { l.destroyContext(dpy, ctx) }

func (l *nativeLib) MakeContextCurrent(dpy, draw, read, ctx uintptr) bool {
	return l.makeContextCurrent(dpy, draw, read, ctx) != 0
}

func (l *nativeLib) GetCurrentContext() uintptr      { return l.getCurrentContext() }
func (l *nativeLib) GetCurrentDrawable() uintptr     { return l.getCurrentDrawable() }
func (l *nativeLib) GetCurrentReadDrawable() uintptr { return l.getCurrentReadDraw() }
func (l *nativeLib) GetCurrentDisplay() uintptr      { return l.getCurrentDisplay() }

func (l *nativeLib) CreateWindow(dpy, config uintptr, win uint64, attribs []int32) uintptr {
	return l.createWindow(dpy, config, win, first(attribs))
}

func (l *nativeLib) DestroyWindow(dpy, win uintptr) { l.destroyWindow(dpy, win) }

func (l *nativeLib) CreatePbuffer(dpy, config uintptr, attribs []int32) uintptr {
	return l.createPbuffer(dpy, config, first(attribs))
}

func (l *nativeLib) DestroyPbuffer(dpy, pbuf uintptr) { l.destroyPbuffer(dpy, pbuf) }

func (l *nativeLib) CreatePixmap(dpy, config uintptr, pixmap uint64, attribs []int32) uintptr {
	return l.createPixmap(dpy, config, pixmap, first(attribs))
}

func (l *nativeLib) DestroyPixmap(dpy, pixmap uintptr) { l.destroyPixmap(dpy, pixmap) }

func (l *nativeLib) QueryDrawable(dpy, draw uintptr, attrib int32) uint32 {
	var v uint32
	l.queryDrawable(dpy, draw, attrib, &v)
	return v
}

func (l *nativeLib) SwapBuffers(dpy, draw uintptr) { l.swapBuffers(dpy, draw) }

func (l *nativeLib) SwapIntervalEXT(dpy, draw uintptr, interval int32) {
	l.swapIntervalEXT(dpy, draw, interval)
}

func (l *nativeLib) SwapIntervalMESA(interval int32) int32 {
	return l.swapIntervalMESA(uint32(interval))
}

func (l *nativeLib) SwapIntervalSGI(interval int32) int32 { return l.swapIntervalSGI(interval) }

func (l *nativeLib) DefaultScreen(dpy uintptr) int32 { return l.x.DefaultScreen(dpy) }

func (l *nativeLib) TrapErrors() { l.x.TrapErrors() }

func (l *nativeLib) Sync(dpy uintptr) int32 { return l.x.Sync(dpy) }
