//go:build windows

package wgl

import (
	"fmt"
	"os"
	"sync"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32   = windows.NewLazySystemDLL("user32.dll")
	gdi32    = windows.NewLazySystemDLL("gdi32.dll")
	opengl32 = windows.NewLazySystemDLL("opengl32.dll")
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procRegisterClassEx = user32.NewProc("RegisterClassExW")
	procCreateWindowEx  = user32.NewProc("CreateWindowExW")
	procDefWindowProc   = user32.NewProc("DefWindowProcW")
	procDestroyWindow   = user32.NewProc("DestroyWindow")
	procGetClientRect   = user32.NewProc("GetClientRect")
	procGetDC           = user32.NewProc("GetDC")
	procReleaseDC       = user32.NewProc("ReleaseDC")

	procChoosePixelFormat   = gdi32.NewProc("ChoosePixelFormat")
	procDescribePixelFormat = gdi32.NewProc("DescribePixelFormat")
	procGetPixelFormat      = gdi32.NewProc("GetPixelFormat")
	procSetPixelFormat      = gdi32.NewProc("SetPixelFormat")
	procSwapBuffers         = gdi32.NewProc("SwapBuffers")

	procWglCreateContext     = opengl32.NewProc("wglCreateContext")
	procWglDeleteContext     = opengl32.NewProc("wglDeleteContext")
	procWglMakeCurrent       = opengl32.NewProc("wglMakeCurrent")
	procWglGetCurrentContext = opengl32.NewProc("wglGetCurrentContext")
	procWglGetCurrentDC      = opengl32.NewProc("wglGetCurrentDC")
	procWglShareLists        = opengl32.NewProc("wglShareLists")
	procWglGetProcAddress    = opengl32.NewProc("wglGetProcAddress")

	procGetModuleHandle = kernel32.NewProc("GetModuleHandleW")
	procSetLastError    = kernel32.NewProc("SetLastError")
)

const (
	csOwnDC            = 0x0020
	wsOverlappedWindow = 0x00CF0000
	wsClipSiblings     = 0x04000000
	wsClipChildren     = 0x02000000

	errorClassAlreadyExists = 1410
)

type wndClassEx struct {
	cbSize        uint32
	style         uint32
	lpfnWndProc   uintptr
	cbClsExtra    int32
	cbWndExtra    int32
	hInstance     uintptr
	hIcon         uintptr
	hCursor       uintptr
	hbrBackground uintptr
	lpszMenuName  *uint16
	lpszClassName *uint16
	hIconSm       uintptr
}

type rect struct {
	left, top, right, bottom int32
}

// Mirrors PIXELFORMATDESCRIPTOR (must be 40 bytes).
type pixelFormatDescriptor struct {
	nSize           uint16
	nVersion        uint16
	dwFlags         uint32
	iPixelType      byte
	cColorBits      byte
	cRedBits        byte
	cRedShift       byte
	cGreenBits      byte
	cGreenShift     byte
	cBlueBits       byte
	cBlueShift      byte
	cAlphaBits      byte
	cAlphaShift     byte
	cAccumBits      byte
	cAccumRedBits   byte
	cAccumGreenBits byte
	cAccumBlueBits  byte
	cAccumAlphaBits byte
	cDepthBits      byte
	cStencilBits    byte
	cAuxBuffers     byte
	iLayerType      byte
	bReserved       byte
	dwLayerMask     uint32
	dwVisibleMask   uint32
	dwDamageMask    uint32
}

var extensionProcs = []string{
	FnGetExtensionsStringARB,
	FnGetExtensionsStringEXT,
	FnChoosePixelFormatARB,
	FnGetPixelFormatAttribivARB,
	FnCreateContextAttribsARB,
	FnSwapIntervalEXT,
}

// nativeLib binds opengl32.dll. The last error is captured per call, so a
// Lib must be used from one OS thread at a time.
type nativeLib struct {
	mu      sync.Mutex
	procs   map[string]uintptr
	lastErr uint32

	classOnce sync.Once
	classErr  error
	class     *uint16
}

var (
	loadOnce sync.Once
	loaded   *nativeLib
	loadErr  error
)

// Load binds opengl32.dll once per process.
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
	if unsafe.Sizeof(pixelFormatDescriptor{}) != 40 {
		return nil, fmt.Errorf("wgl: PIXELFORMATDESCRIPTOR size mismatch: got %d, want 40", unsafe.Sizeof(pixelFormatDescriptor{}))
	}
	for _, p := range []*windows.LazyProc{
		procRegisterClassEx, procCreateWindowEx, procGetDC, procReleaseDC,
		procChoosePixelFormat, procDescribePixelFormat, procSetPixelFormat,
		procWglCreateContext, procWglMakeCurrent, procWglDeleteContext, procWglGetProcAddress,
	} {
		if err := p.Find(); err != nil {
			return nil, fmt.Errorf("wgl: missing procedure %q: %w", p.Name, err)
		}
	}
	return &nativeLib{procs: make(map[string]uintptr)}, nil
}

// call invokes p and records GetLastError as seen right after it.
func (l *nativeLib) call(p *windows.LazyProc, args ...uintptr) uintptr {
	procSetLastError.Call(0)
	r, _, err := p.Call(args...)
	l.setErr(err)
	return r
}

func (l *nativeLib) callAddr(name string, args ...uintptr) uintptr {
	l.mu.Lock()
	addr := l.procs[name]
	l.mu.Unlock()
	if addr == 0 {
		return 0
	}
	procSetLastError.Call(0)
	r, _, err := syscall.SyscallN(addr, args...)
	l.setErr(err)
	return r
}

func (l *nativeLib) setErr(err error) {
	var code uint32
	if errno, ok := err.(syscall.Errno); ok {
		code = uint32(errno)
	}
	l.mu.Lock()
	l.lastErr = code
	l.mu.Unlock()
}

func ptr[T any](s []T) uintptr {
	if len(s) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&s[0]))
}

func (l *nativeLib) Has(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.procs[name] != 0
}

// wglGetProcAddress returns 1, 2, 3 or -1 on some ICDs for failures.
func validProc(addr uintptr) bool {
	return addr > 3 && addr != ^uintptr(0)
}

func (l *nativeLib) GetProcAddress(name string) uintptr {
	p, err := windows.BytePtrFromString(name)
	if err != nil {
		return 0
	}
	addr, _, _ := procWglGetProcAddress.Call(uintptr(unsafe.Pointer(p)))
	if validProc(addr) {
		return addr
	}
	// GL 1.1 functions are plain opengl32.dll exports.
	proc := opengl32.NewProc(name)
	if proc.Find() != nil {
		return 0
	}
	return proc.Addr()
}

func (l *nativeLib) LoadExtensions() {
	resolved := make(map[string]uintptr, len(extensionProcs))
	for _, name := range extensionProcs {
		p, err := windows.BytePtrFromString(name)
		if err != nil {
			continue
		}
		if addr, _, _ := procWglGetProcAddress.Call(uintptr(unsafe.Pointer(p))); validProc(addr) {
			resolved[name] = addr
		}
	}
	l.mu.Lock()
	l.procs = resolved
	l.mu.Unlock()
}

func (l *nativeLib) LastError() uint32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastErr
}

func moduleHandle() uintptr {
	h, _, _ := procGetModuleHandle.Call(0)
	return h
}

func (l *nativeLib) registerClass() error {
	l.classOnce.Do(func() {
		// Unique per process to avoid CS_OWNDC collisions.
		name := fmt.Sprintf("GlctxHelper_%d", os.Getpid())
		l.class, l.classErr = windows.UTF16PtrFromString(name)
		if l.classErr != nil {
			return
		}
		wc := wndClassEx{
			cbSize:        uint32(unsafe.Sizeof(wndClassEx{})),
			style:         csOwnDC,
			lpfnWndProc:   procDefWindowProc.Addr(),
			hInstance:     moduleHandle(),
			lpszClassName: l.class,
		}
		if l.call(procRegisterClassEx, uintptr(unsafe.Pointer(&wc))) == 0 {
			code := l.LastError()
			if code == errorClassAlreadyExists {
				return
			}
			l.classErr = fmt.Errorf("RegisterClassExW failed: %w", syscall.Errno(code))
		}
	})
	return l.classErr
}

func (l *nativeLib) CreateHelperWindow() (uintptr, error) {
	if err := l.registerClass(); err != nil {
		return 0, err
	}
	style := uintptr(wsOverlappedWindow | wsClipSiblings | wsClipChildren)
	hwnd := l.call(procCreateWindowEx,
		0,
		uintptr(unsafe.Pointer(l.class)),
		uintptr(unsafe.Pointer(l.class)),
		style,
		0, 0, 1, 1,
		0, 0,
		moduleHandle(),
		0,
	)
	if hwnd == 0 {
		return 0, fmt.Errorf("CreateWindowExW failed: %w", syscall.Errno(l.LastError()))
	}
	return hwnd, nil
}

func (l *nativeLib) DestroyWindow(hwnd uintptr) { l.call(procDestroyWindow, hwnd) }

func (l *nativeLib) GetDC(hwnd uintptr) uintptr { return l.call(procGetDC, hwnd) }

func (l *nativeLib) ReleaseDC(hwnd, hdc uintptr) { l.call(procReleaseDC, hwnd, hdc) }

func (l *nativeLib) ClientSize(hwnd uintptr) (uint32, uint32) {
	var r rect
	if l.call(procGetClientRect, hwnd, uintptr(unsafe.Pointer(&r))) == 0 {
		return 0, 0
	}
	return uint32(r.right - r.left), uint32(r.bottom - r.top)
}

func toNative(pfd PixelFormatDescriptor) pixelFormatDescriptor {
	return pixelFormatDescriptor{
		nSize:        uint16(unsafe.Sizeof(pixelFormatDescriptor{})),
		nVersion:     1,
		dwFlags:      pfd.Flags,
		iPixelType:   pfd.PixelType,
		cColorBits:   pfd.ColorBits,
		cRedBits:     pfd.RedBits,
		cGreenBits:   pfd.GreenBits,
		cBlueBits:    pfd.BlueBits,
		cAlphaBits:   pfd.AlphaBits,
		cDepthBits:   pfd.DepthBits,
		cStencilBits: pfd.StencilBits,
	}
}

func fromNative(p pixelFormatDescriptor) PixelFormatDescriptor {
	return PixelFormatDescriptor{
		Flags:       p.dwFlags,
		PixelType:   p.iPixelType,
		ColorBits:   p.cColorBits,
		RedBits:     p.cRedBits,
		GreenBits:   p.cGreenBits,
		BlueBits:    p.cBlueBits,
		AlphaBits:   p.cAlphaBits,
		DepthBits:   p.cDepthBits,
		StencilBits: p.cStencilBits,
	}
}

func (l *nativeLib) ChoosePixelFormat(hdc uintptr, pfd PixelFormatDescriptor) int32 {
	n := toNative(pfd)
	return int32(l.call(procChoosePixelFormat, hdc, uintptr(unsafe.Pointer(&n))))
}

func (l *nativeLib) DescribePixelFormat(hdc uintptr, format int32) (PixelFormatDescriptor, int32) {
	var n pixelFormatDescriptor
	count := l.call(procDescribePixelFormat, hdc, uintptr(format), unsafe.Sizeof(n), uintptr(unsafe.Pointer(&n)))
	return fromNative(n), int32(count)
}

func (l *nativeLib) GetPixelFormat(hdc uintptr) int32 {
	return int32(l.call(procGetPixelFormat, hdc))
}

func (l *nativeLib) SetPixelFormat(hdc uintptr, format int32) bool {
	var n pixelFormatDescriptor
	l.call(procDescribePixelFormat, hdc, uintptr(format), unsafe.Sizeof(n), uintptr(unsafe.Pointer(&n)))
	return l.call(procSetPixelFormat, hdc, uintptr(format), uintptr(unsafe.Pointer(&n))) != 0
}

func (l *nativeLib) SwapBuffers(hdc uintptr) bool { return l.call(procSwapBuffers, hdc) != 0 }

func (l *nativeLib) CreateContext(hdc uintptr) uintptr { return l.call(procWglCreateContext, hdc) }

func (l *nativeLib) DeleteContext(hglrc uintptr) bool {
	return l.call(procWglDeleteContext, hglrc) != 0
}

func (l *nativeLib) MakeCurrent(hdc, hglrc uintptr) bool {
	return l.call(procWglMakeCurrent, hdc, hglrc) != 0
}

func (l *nativeLib) GetCurrentContext() uintptr { return l.call(procWglGetCurrentContext) }

func (l *nativeLib) GetCurrentDC() uintptr { return l.call(procWglGetCurrentDC) }

func (l *nativeLib) ShareLists(src, dst uintptr) bool {
	return l.call(procWglShareLists, src, dst) != 0
}

func cstring(p uintptr) string {
	if p == 0 {
		return ""
	}
	return windows.BytePtrToString((*byte)(unsafe.Pointer(p)))
}

func (l *nativeLib) GetExtensionsStringARB(hdc uintptr) string {
	return cstring(l.callAddr(FnGetExtensionsStringARB, hdc))
}

func (l *nativeLib) GetExtensionsStringEXT() string {
	return cstring(l.callAddr(FnGetExtensionsStringEXT))
}

func (l *nativeLib) ChoosePixelFormatARB(hdc uintptr, attribs []int32) []int32 {
	formats := make([]int32, maxFormats)
	var n uint32
	ok := l.callAddr(FnChoosePixelFormatARB, hdc, ptr(attribs), 0,
		uintptr(len(formats)), ptr(formats), uintptr(unsafe.Pointer(&n)))
	if ok == 0 {
		return nil
	}
	return formats[:min(int(n), len(formats))]
}

func (l *nativeLib) GetPixelFormatAttribivARB(hdc uintptr, format int32, attribs []int32) ([]int32, bool) {
	values := make([]int32, len(attribs))
	ok := l.callAddr(FnGetPixelFormatAttribivARB, hdc, uintptr(format), 0,
		uintptr(len(attribs)), ptr(attribs), ptr(values))
	return values, ok != 0
}

func (l *nativeLib) CreateContextAttribsARB(hdc, share uintptr, attribs []int32) uintptr {
	return l.callAddr(FnCreateContextAttribsARB, hdc, share, ptr(attribs))
}

func (l *nativeLib) SwapIntervalEXT(interval int32) bool {
	return l.callAddr(FnSwapIntervalEXT, uintptr(interval)) != 0
}
