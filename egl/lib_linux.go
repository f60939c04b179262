//go:build linux

package egl

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
)

// nativeLib binds libEGL with purego. Core EGL 1.4 entry points must be
// exported by the library; newer and extension entry points are resolved
// with dlsym, then eglGetProcAddress, and reported by Has.
type nativeLib struct {
	handle uintptr
	has    map[string]bool

	getProcAddress                 func(string) uintptr
	getError                       func() int32
	queryString                    func(uintptr, int32) *byte
	getDisplay                     func(uintptr) uintptr
	getPlatformDisplay             func(int32, uintptr, *uintptr) uintptr
	getPlatformDisplayEXT          func(int32, uintptr, *int32) uintptr
	initialize                     func(uintptr, *int32, *int32) uint32
	terminate                      func(uintptr) uint32
	chooseConfig                   func(uintptr, *int32, *uintptr, int32, *int32) uint32
	getConfigAttrib                func(uintptr, uintptr, int32, *int32) uint32
	bindAPI                        func(uint32) uint32
	createContext                  func(uintptr, uintptr, uintptr, *int32) uintptr
	destroyContext                 func(uintptr, uintptr) uint32
	makeCurrent                    func(uintptr, uintptr, uintptr, uintptr) uint32
	getCurrentContext              func() uintptr
	getCurrentSurface              func(int32) uintptr
	getCurrentDisplay              func() uintptr
	createWindowSurface            func(uintptr, uintptr, uintptr, *int32) uintptr
	createPlatformWindowSurface    func(uintptr, uintptr, uintptr, *uintptr) uintptr
	createPlatformWindowSurfaceEXT func(uintptr, uintptr, uintptr, *int32) uintptr
	createPbufferSurface           func(uintptr, uintptr, *int32) uintptr
	createPixmapSurface            func(uintptr, uintptr, uintptr, *int32) uintptr
	createPlatformPixmapSurface    func(uintptr, uintptr, uintptr, *uintptr) uintptr
	createPlatformPixmapSurfaceEXT func(uintptr, uintptr, uintptr, *int32) uintptr
	destroySurface                 func(uintptr, uintptr) uint32
	querySurface                   func(uintptr, uintptr, int32, *int32) uint32
	swapBuffers                    func(uintptr, uintptr) uint32
	swapBuffersWithDamageKHR       func(uintptr, uintptr, *int32, int32) uint32
	swapBuffersWithDamageEXT       func(uintptr, uintptr, *int32, int32) uint32
	swapInterval                   func(uintptr, int32) uint32
	queryDevicesEXT                func(int32, *uintptr, *int32) uint32
	queryDeviceStringEXT           func(uintptr, int32) *byte
}

var (
	loadOnce sync.Once
	loaded   *nativeLib
	loadErr  error
)

// Load opens libEGL once per process.
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
	var (
		handle uintptr
		err    error
	)
	for _, name := range []string{"libEGL.so.1", "libEGL.so"} {
		handle, err = purego.Dlopen(name, purego.RTLD_LAZY|purego.RTLD_GLOBAL)
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("egl: %w", err)
	}

	l := &nativeLib{handle: handle, has: make(map[string]bool)}
	register := func(fn any, name string) {
		purego.RegisterLibFunc(fn, handle, name)
	}
	register(&l.getProcAddress, "eglGetProcAddress")
	register(&l.getError, "eglGetError")
	register(&l.queryString, "eglQueryString")
	register(&l.getDisplay, "eglGetDisplay")
	register(&l.initialize, "eglInitialize")
	register(&l.terminate, "eglTerminate")
	register(&l.chooseConfig, "eglChooseConfig")
	register(&l.getConfigAttrib, "eglGetConfigAttrib")
	register(&l.bindAPI, "eglBindAPI")
	register(&l.createContext, "eglCreateContext")
	register(&l.destroyContext, "eglDestroyContext")
	register(&l.makeCurrent, "eglMakeCurrent")
	register(&l.getCurrentContext, "eglGetCurrentContext")
	register(&l.getCurrentSurface, "eglGetCurrentSurface")
	register(&l.getCurrentDisplay, "eglGetCurrentDisplay")
	register(&l.createWindowSurface, "eglCreateWindowSurface")
	register(&l.createPbufferSurface, "eglCreatePbufferSurface")
	register(&l.createPixmapSurface, "eglCreatePixmapSurface")
	register(&l.destroySurface, "eglDestroySurface")
	register(&l.querySurface, "eglQuerySurface")
	register(&l.swapBuffers, "eglSwapBuffers")
	register(&l.swapInterval, "eglSwapInterval")

	optional := map[string]any{
		FnGetPlatformDisplay:             &l.getPlatformDisplay,
		FnGetPlatformDisplayEXT:          &l.getPlatformDisplayEXT,
		FnCreatePlatformWindowSurface:    &l.createPlatformWindowSurface,
		FnCreatePlatformWindowSurfaceEXT: &l.createPlatformWindowSurfaceEXT,
		FnCreatePlatformPixmapSurface:    &l.createPlatformPixmapSurface,
		FnCreatePlatformPixmapSurfaceEXT: &l.createPlatformPixmapSurfaceEXT,
		FnSwapBuffersWithDamageKHR:       &l.swapBuffersWithDamageKHR,
		FnSwapBuffersWithDamageEXT:       &l.swapBuffersWithDamageEXT,
		FnQueryDevicesEXT:                &l.queryDevicesEXT,
		FnQueryDeviceStringEXT:           &l.queryDeviceStringEXT,
	}
	for name, fn := range optional {
		addr, err := purego.Dlsym(handle, name)
		if err != nil || addr == 0 {
			addr = l.getProcAddress(name)
		}
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

func gostring(ptr *byte) (string, bool) {
	if ptr == nil {
		return "", false
	}
	var n uintptr
	for *(*byte)(unsafe.Add(unsafe.Pointer(ptr), n)) != 0 {
		n++
	}
	return string(unsafe.Slice(ptr, n)), true
}

func (l *nativeLib) Has(name string) bool { return l.has[name] }

func (l *nativeLib) GetProcAddress(name string) uintptr { return l.getProcAddress(name) }

func (l *nativeLib) GetError() int32 { return l.getError() }

func (l *nativeLib) QueryString(dpy uintptr, name int32) (string, bool) {
	return gostring(l.queryString(dpy, name))
}

func (l *nativeLib) GetDisplay(native uintptr) uintptr { return l.getDisplay(native) }

func (l *nativeLib) GetPlatformDisplay(platform int32, native uintptr, attribs []uintptr) uintptr {
	return l.getPlatformDisplay(platform, native, first(attribs))
}

func (l *nativeLib) GetPlatformDisplayEXT(platform int32, native uintptr, attribs []int32) uintptr {
	return l.getPlatformDisplayEXT(platform, native, first(attribs))
}

func (l *nativeLib) Initialize(dpy uintptr) (major, minor int32, ok bool) {
	ok = l.initialize(dpy, &major, &minor) != 0
	return major, minor, ok
}

func (l *nativeLib) Terminate(dpy uintptr) bool { return l.terminate(dpy) != 0 }

func (l *nativeLib) ChooseConfig(dpy uintptr, attribs []int32, configs []uintptr) (int32, bool) {
	var n int32
	ok := l.chooseConfig(dpy, first(attribs), first(configs), int32(len(configs)), &n) != 0
	return n, ok
}

func (l *nativeLib) GetConfigAttrib(dpy, config uintptr, attrib int32) (int32, bool) {
	var v int32
	ok := l.getConfigAttrib(dpy, config, attrib, &v) != 0
	return v, ok
}

func (l *nativeLib) BindAPI(api uint32) bool { return l.bindAPI(api) != 0 }

func (l *nativeLib) CreateContext(dpy, config, share uintptr, attribs []int32) uintptr {
	return l.createContext(dpy, config, share, first(attribs))
}

func (l *nativeLib) DestroyContext(dpy, ctx uintptr) bool { return l.destroyContext(dpy, ctx) != 0 }

func (l *nativeLib) MakeCurrent(dpy, draw, read, ctx uintptr) bool {
	return l.makeCurrent(dpy, draw, read, ctx) != 0
}

func (l *nativeLib) GetCurrentContext() uintptr { return l.getCurrentContext() }

func (l *nativeLib) GetCurrentSurface(readdraw int32) uintptr { return l.getCurrentSurface(readdraw) }

func (l *nativeLib) GetCurrentDisplay() uintptr { return l.getCurrentDisplay() }

func (l *nativeLib) CreateWindowSurface(dpy, config, win uintptr, attribs []int32) uintptr {
	return l.createWindowSurface(dpy, config, win, first(attribs))
}

func (l *nativeLib) CreatePlatformWindowSurface(dpy, config, win uintptr, attribs []uintptr) uintptr {
	return l.createPlatformWindowSurface(dpy, config, win, first(attribs))
}

func (l *nativeLib) CreatePlatformWindowSurfaceEXT(dpy, config, win uintptr, attribs []int32) uintptr {
	return l.createPlatformWindowSurfaceEXT(dpy, config, win, first(attribs))
}

func (l *nativeLib) CreatePbufferSurface(dpy, config uintptr, attribs []int32) uintptr {
	return l.createPbufferSurface(dpy, config, first(attribs))
}

func (l *nativeLib) CreatePixmapSurface(dpy, config, pixmap uintptr, attribs []int32) uintptr {
	return l.createPixmapSurface(dpy, config, pixmap, first(attribs))
}

func (l *nativeLib) CreatePlatformPixmapSurface(dpy, config, pixmap uintptr, attribs []uintptr) uintptr {
	return l.createPlatformPixmapSurface(dpy, config, pixmap, first(attribs))
}

func (l *nativeLib) CreatePlatformPixmapSurfaceEXT(dpy, config, pixmap uintptr, attribs []int32) uintptr {
	return l.createPlatformPixmapSurfaceEXT(dpy, config, pixmap, first(attribs))
}

func (l *nativeLib) DestroySurface(dpy, surface uintptr) bool {
	return l.destroySurface(dpy, surface) != 0
}

func (l *nativeLib) QuerySurface(dpy, surface uintptr, attrib int32) (int32, bool) {
	var v int32
	ok := l.querySurface(dpy, surface, attrib, &v) != 0
	return v, ok
}

func (l *nativeLib) SwapBuffers(dpy, surface uintptr) bool { return l.swapBuffers(dpy, surface) != 0 }

func (l *nativeLib) SwapBuffersWithDamageKHR(dpy, surface uintptr, rects []int32) bool {
	return l.swapBuffersWithDamageKHR(dpy, surface, first(rects), int32(len(rects)/4)) != 0
}

func (l *nativeLib) SwapBuffersWithDamageEXT(dpy, surface uintptr, rects []int32) bool {
	return l.swapBuffersWithDamageEXT(dpy, surface, first(rects), int32(len(rects)/4)) != 0
}

func (l *nativeLib) SwapInterval(dpy uintptr, interval int32) bool {
	return l.swapInterval(dpy, interval) != 0
}

func (l *nativeLib) QueryDevicesEXT(devices []uintptr) (int32, bool) {
	var n int32
	ok := l.queryDevicesEXT(int32(len(devices)), first(devices), &n) != 0
	return n, ok
}

func (l *nativeLib) QueryDeviceStringEXT(device uintptr, name int32) (string, bool) {
	return gostring(l.queryDeviceStringEXT(device, name))
}
