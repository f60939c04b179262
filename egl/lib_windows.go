//go:build windows

package egl

import (
	"fmt"
	"sync"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

// nativeLib binds an EGL DLL, usually ANGLE's libEGL.dll.
type nativeLib struct {
	dll   *windows.DLL
	procs map[string]uintptr
}

var (
	loadOnce sync.Once
	loaded   *nativeLib
	loadErr  error
)

var coreProcs = []string{
	"eglGetProcAddress",
	"eglGetError",
	"eglQueryString",
	"eglGetDisplay",
	"eglInitialize",
	"eglTerminate",
	"eglChooseConfig",
	"eglGetConfigAttrib",
	"eglBindAPI",
	"eglCreateContext",
	"eglDestroyContext",
	"eglMakeCurrent",
	"eglGetCurrentContext",
	"eglGetCurrentSurface",
	"eglGetCurrentDisplay",
	"eglCreateWindowSurface",
	"eglCreatePbufferSurface",
	"eglCreatePixmapSurface",
	"eglDestroySurface",
	"eglQuerySurface",
	"eglSwapBuffers",
	"eglSwapInterval",
}

var optionalProcs = []string{
	FnGetPlatformDisplay,
	FnGetPlatformDisplayEXT,
	FnCreatePlatformWindowSurface,
	FnCreatePlatformWindowSurfaceEXT,
	FnCreatePlatformPixmapSurface,
	FnCreatePlatformPixmapSurfaceEXT,
	FnSwapBuffersWithDamageKHR,
	FnSwapBuffersWithDamageEXT,
	FnQueryDevicesEXT,
	FnQueryDeviceStringEXT,
}

// Load opens libEGL.dll once per process.
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
	handle, err := windows.LoadLibraryEx("libEGL.dll", 0, windows.LOAD_LIBRARY_SEARCH_DEFAULT_DIRS)
	if err != nil {
		return nil, fmt.Errorf("egl: failed to load libEGL.dll: %w", err)
	}
	l := &nativeLib{
		dll:   &windows.DLL{Name: "libEGL.dll", Handle: handle},
		procs: make(map[string]uintptr),
	}
	for _, name := range coreProcs {
		p, err := l.dll.FindProc(name)
		if err != nil {
			return nil, fmt.Errorf("egl: failed to locate %s in %s: %w", name, l.dll.Name, err)
		}
		l.procs[name] = p.Addr()
	}
	for _, name := range optionalProcs {
		if p, err := l.dll.FindProc(name); err == nil {
			l.procs[name] = p.Addr()
			continue
		}
		if addr := l.GetProcAddress(name); addr != 0 {
			l.procs[name] = addr
		}
	}
	return l, nil
}

func (l *nativeLib) call(name string, args ...uintptr) uintptr {
	r, _, _ := syscall.SyscallN(l.procs[name], args...)
	return r
}

func ptr[T any](s []T) uintptr {
	if len(s) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&s[0]))
}

func (l *nativeLib) Has(name string) bool { return l.procs[name] != 0 }

func (l *nativeLib) GetProcAddress(name string) uintptr {
	p, err := windows.BytePtrFromString(name)
	if err != nil {
		return 0
	}
	return l.call("eglGetProcAddress", uintptr(unsafe.Pointer(p)))
}

func (l *nativeLib) GetError() int32 { return int32(l.call("eglGetError")) }

func (l *nativeLib) QueryString(dpy uintptr, name int32) (string, bool) {
	r := l.call("eglQueryString", dpy, uintptr(name))
	if r == 0 {
		return "", false
	}
	return windows.BytePtrToString((*byte)(unsafe.Pointer(r))), true
}

func (l *nativeLib) GetDisplay(native uintptr) uintptr { return l.call("eglGetDisplay", native) }

func (l *nativeLib) GetPlatformDisplay(platform int32, native uintptr, attribs []uintptr) uintptr {
	return l.call(FnGetPlatformDisplay, uintptr(platform), native, ptr(attribs))
}

func (l *nativeLib) GetPlatformDisplayEXT(platform int32, native uintptr, attribs []int32) uintptr {
	return l.call(FnGetPlatformDisplayEXT, uintptr(platform), native, ptr(attribs))
}

func (l *nativeLib) Initialize(dpy uintptr) (major, minor int32, ok bool) {
	ok = l.call("eglInitialize", dpy, uintptr(unsafe.Pointer(&major)), uintptr(unsafe.Pointer(&minor))) != 0
	return major, minor, ok
}

func (l *nativeLib) Terminate(dpy uintptr) bool { return l.call("eglTerminate", dpy) != 0 }

func (l *nativeLib) ChooseConfig(dpy uintptr, attribs []int32, configs []uintptr) (int32, bool) {
	var n int32
	ok := l.call("eglChooseConfig", dpy, ptr(attribs), ptr(configs), uintptr(len(configs)), uintptr(unsafe.Pointer(&n))) != 0
	return n, ok
}

func (l *nativeLib) GetConfigAttrib(dpy, config uintptr, attrib int32) (int32, bool) {
	var v int32
	ok := l.call("eglGetConfigAttrib", dpy, config, uintptr(attrib), uintptr(unsafe.Pointer(&v))) != 0
	return v, ok
}

func (l *nativeLib) BindAPI(api uint32) bool { return l.call("eglBindAPI", uintptr(api)) != 0 }

func (l *nativeLib) CreateContext(dpy, config, share uintptr, attribs []int32) uintptr {
	return l.call("eglCreateContext", dpy, config, share, ptr(attribs))
}

func (l *nativeLib) DestroyContext(dpy, ctx uintptr) bool {
	return l.call("eglDestroyContext", dpy, ctx) != 0
}

func (l *nativeLib) MakeCurrent(dpy, draw, read, ctx uintptr) bool {
	return l.call("eglMakeCurrent", dpy, draw, read, ctx) != 0
}

func (l *nativeLib) GetCurrentContext() uintptr { return l.call("eglGetCurrentContext") }

func (l *nativeLib) GetCurrentSurface(readdraw int32) uintptr {
	return l.call("eglGetCurrentSurface", uintptr(readdraw))
}

func (l *nativeLib) GetCurrentDisplay() uintptr { return l.call("eglGetCurrentDisplay") }

func (l *nativeLib) CreateWindowSurface(dpy, config, win uintptr, attribs []int32) uintptr {
	return l.call("eglCreateWindowSurface", dpy, config, win, ptr(attribs))
}

func (l *nativeLib) CreatePlatformWindowSurface(dpy, config, win uintptr, attribs []uintptr) uintptr {
	return l.call(FnCreatePlatformWindowSurface, dpy, config, win, ptr(attribs))
}

func (l *nativeLib) CreatePlatformWindowSurfaceEXT(dpy, config, win uintptr, attribs []int32) uintptr {
	return l.call(FnCreatePlatformWindowSurfaceEXT, dpy, config, win, ptr(attribs))
}

func (l *nativeLib) CreatePbufferSurface(dpy, config uintptr, attribs []int32) uintptr {
	return l.call("eglCreatePbufferSurface", dpy, config, ptr(attribs))
}

func (l *nativeLib) CreatePixmapSurface(dpy, config, pixmap uintptr, attribs []int32) uintptr {
	return l.call("eglCreatePixmapSurface", dpy, config, pixmap, ptr(attribs))
}

func (l *nativeLib) CreatePlatformPixmapSurface(dpy, config, pixmap uintptr, attribs []uintptr) uintptr {
	return l.call(FnCreatePlatformPixmapSurface, dpy, config, pixmap, ptr(attribs))
}

func (l *nativeLib) CreatePlatformPixmapSurfaceEXT(dpy, config, pixmap uintptr, attribs []int32) uintptr {
	return l.call(FnCreatePlatformPixmapSurfaceEXT, dpy, config, pixmap, ptr(attribs))
}

func (l *nativeLib) DestroySurface(dpy, surface uintptr) bool {
	return l.call("eglDestroySurface", dpy, surface) != 0
}

func (l *nativeLib) QuerySurface(dpy, surface uintptr, attrib int32) (int32, bool) {
	var v int32
	ok := l.call("eglQuerySurface", dpy, surface, uintptr(attrib), uintptr(unsafe.Pointer(&v))) != 0
	return v, ok
}

func (l *nativeLib) SwapBuffers(dpy, surface uintptr) bool {
	return l.call("eglSwapBuffers", dpy, surface) != 0
}

func (l *nativeLib) SwapBuffersWithDamageKHR(dpy, surface uintptr, rects []int32) bool {
	return l.call(FnSwapBuffersWithDamageKHR, dpy, surface, ptr(rects), uintptr(len(rects)/4)) != 0
}

func (l *nativeLib) SwapBuffersWithDamageEXT(dpy, surface uintptr, rects []int32) bool {
	return l.call(FnSwapBuffersWithDamageEXT, dpy, surface, ptr(rects), uintptr(len(rects)/4)) != 0
}

func (l *nativeLib) SwapInterval(dpy uintptr, interval int32) bool {
	return l.call("eglSwapInterval", dpy, uintptr(interval)) != 0
}

func (l *nativeLib) QueryDevicesEXT(devices []uintptr) (int32, bool) {
	var n int32
	ok := l.call(FnQueryDevicesEXT, uintptr(len(devices)), ptr(devices), uintptr(unsafe.Pointer(&n))) != 0
	return n, ok
}

func (l *nativeLib) QueryDeviceStringEXT(device uintptr, name int32) (string, bool) {
	r := l.call(FnQueryDeviceStringEXT, device, uintptr(name))
	if r == 0 {
		return "", false
	}
	return windows.BytePtrToString((*byte)(unsafe.Pointer(r))), true
}
