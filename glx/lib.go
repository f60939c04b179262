// Package glx negotiates OpenGL contexts, configs and surfaces on an X11
// display through GLX 1.3 and its ARB/EXT extensions.
//
// The native entry points are reached through a Lib. Load returns the
// process-wide libGL binding; tests pass a fake.
package glx

import "github.com/tinyrange/glctx/internal/x11"

// Lib is the GLX function table. Boolean returns report success; X
// protocol errors are collected by Sync after TrapErrors installed the
// error handler.
type Lib interface {
	// Has reports whether an optional entry point was resolved.
	Has(name string) bool
	GetProcAddress(name string) uintptr

	QueryVersion(dpy uintptr) (major, minor int32, ok bool)
	QueryExtensionsString(dpy uintptr, screen int32) string
	GetClientString(dpy uintptr, name int32) string

	ChooseFBConfig(dpy uintptr, screen int32, attribs []int32) []uintptr
	GetFBConfigAttrib(dpy, config uintptr, attrib int32) (int32, bool)
	GetVisualFromFBConfig(dpy, config uintptr) (x11.VisualInfo, bool)

	CreateNewContext(dpy, config uintptr, renderType int32, share uintptr, direct bool) uintptr
	CreateContextAttribsARB(dpy, config, share uintptr, direct bool, attribs []int32) uintptr
	DestroyContext(dpy, ctx uintptr)
	MakeContextCurrent(dpy, draw, read, ctx uintptr) bool
	GetCurrentContext() uintptr
	GetCurrentDrawable() uintptr
	GetCurrentReadDrawable() uintptr
	GetCurrentDisplay() uintptr

	CreateWindow(dpy, config uintptr, win uint64, attribs []int32) uintptr
	DestroyWindow(dpy, win uintptr)
	CreatePbuffer(dpy, config uintptr, attribs []int32) uintptr
	DestroyPbuffer(dpy, pbuf uintptr)
	CreatePixmap(dpy, config uintptr, pixmap uint64, attribs []int32) uintptr
	DestroyPixmap(dpy, pixmap uintptr)
	QueryDrawable(dpy, draw uintptr, attrib int32) uint32
	SwapBuffers(dpy, draw uintptr)

	SwapIntervalEXT(dpy, draw uintptr, interval int32)
	SwapIntervalMESA(interval int32) int32
	SwapIntervalSGI(interval int32) int32

	// DefaultScreen is XDefaultScreen.
	DefaultScreen(dpy uintptr) int32
	// TrapErrors installs an X error handler that records errors instead
	// of exiting.
	TrapErrors()
	// Sync flushes dpy and returns, then clears, the last X error code.
	Sync(dpy uintptr) int32
}

// Optional entry points resolved through glXGetProcAddressARB.
const (
	FnCreateContextAttribsARB = "glXCreateContextAttribsARB"
	FnSwapIntervalEXT         = "glXSwapIntervalEXT"
	FnSwapIntervalMESA        = "glXSwapIntervalMESA"
	FnSwapIntervalSGI         = "glXSwapIntervalSGI"
)

const (
	// None terminates attribute lists.
	_None = 0

	_GLX_VENDOR  = 1
	_GLX_VERSION = 2

	_GLX_DOUBLEBUFFER = 5
	_GLX_STEREO       = 6
	_GLX_RED_SIZE     = 8
	_GLX_GREEN_SIZE   = 9
	_GLX_BLUE_SIZE    = 10
	_GLX_ALPHA_SIZE   = 11
	_GLX_DEPTH_SIZE   = 12
	_GLX_STENCIL_SIZE = 13

	_GLX_CONFIG_CAVEAT            = 0x20
	_GLX_X_VISUAL_TYPE            = 0x22
	_GLX_NONE                     = 0x8000
	_GLX_SLOW_CONFIG              = 0x8001
	_GLX_TRUE_COLOR               = 0x8002
	_GLX_VISUAL_ID                = 0x800B
	_GLX_NON_CONFORMANT_CONFIG    = 0x800D
	_GLX_DRAWABLE_TYPE            = 0x8010
	_GLX_RENDER_TYPE              = 0x8011
	_GLX_X_RENDERABLE             = 0x8012
	_GLX_FBCONFIG_ID              = 0x8013
	_GLX_RGBA_TYPE                = 0x8014
	_GLX_MAX_PBUFFER_WIDTH        = 0x8016
	_GLX_MAX_PBUFFER_HEIGHT       = 0x8017
	_GLX_PRESERVED_CONTENTS       = 0x801B
	_GLX_LARGEST_PBUFFER          = 0x801C
	_GLX_WIDTH                    = 0x801D
	_GLX_HEIGHT                   = 0x801E
	_GLX_PBUFFER_HEIGHT           = 0x8040
	_GLX_PBUFFER_WIDTH            = 0x8041
	_GLX_SAMPLE_BUFFERS           = 100000
	_GLX_SAMPLES                  = 100001
	_GLX_FRAMEBUFFER_SRGB_CAPABLE = 0x20B2
	_GLX_RGBA_FLOAT_TYPE          = 0x20B9

	_GLX_WINDOW_BIT  = 0x1
	_GLX_PIXMAP_BIT  = 0x2
	_GLX_PBUFFER_BIT = 0x4

	_GLX_RGBA_BIT       = 0x1
	_GLX_RGBA_FLOAT_BIT = 0x4

	_GLX_CONTEXT_MAJOR_VERSION_ARB             = 0x2091
	_GLX_CONTEXT_MINOR_VERSION_ARB             = 0x2092
	_GLX_CONTEXT_FLAGS_ARB                     = 0x2094
	_GLX_CONTEXT_PROFILE_MASK_ARB              = 0x9126
	_GLX_CONTEXT_DEBUG_BIT_ARB                 = 0x1
	_GLX_CONTEXT_ROBUST_ACCESS_BIT_ARB         = 0x4
	_GLX_CONTEXT_CORE_PROFILE_BIT_ARB          = 0x1
	_GLX_CONTEXT_COMPATIBILITY_PROFILE_BIT_ARB = 0x2
	_GLX_CONTEXT_ES_PROFILE_BIT_EXT            = 0x4
	_GLX_CONTEXT_RESET_NOTIFICATION_STRATEGY   = 0x8256
	_GLX_LOSE_CONTEXT_ON_RESET_ARB             = 0x8252
	_GLX_NO_RESET_NOTIFICATION_ARB             = 0x8261
	_GLX_CONTEXT_OPENGL_NO_ERROR_ARB           = 0x31B3
	_GLX_CONTEXT_RELEASE_BEHAVIOR_ARB          = 0x2097
	_GLX_CONTEXT_RELEASE_BEHAVIOR_NONE_ARB     = 0
	_GLX_CONTEXT_RELEASE_BEHAVIOR_FLUSH_ARB    = 0x2098
	_GLX_SWAP_INTERVAL_EXT                     = 0x20F1
	_GLX_MAX_SWAP_INTERVAL_EXT                 = 0x20F2
)
