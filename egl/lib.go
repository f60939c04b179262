// Package egl negotiates OpenGL and OpenGL ES contexts through EGL.
//
// Every native call goes through a Lib. Load opens the system library;
// tests pass a fake.
package egl

// Lib is the EGL function table. Slices stand in for pointer plus length
// arguments; a nil slice passes a null pointer.
type Lib interface {
	// Has reports whether an optional entry point was resolved.
	Has(name string) bool
	GetProcAddress(name string) uintptr

	GetError() int32
	QueryString(dpy uintptr, name int32) (string, bool)
	GetDisplay(native uintptr) uintptr
	GetPlatformDisplay(platform int32, native uintptr, attribs []uintptr) uintptr
	GetPlatformDisplayEXT(platform int32, native uintptr, attribs []int32) uintptr
	Initialize(dpy uintptr) (major, minor int32, ok bool)
	// Terminate is never called by Display, whose displays are shared
	// process wide. It stays for callers that own their EGLDisplay and
	// tear it down through Display.Lib.
	Terminate(dpy uintptr) bool

	// ChooseConfig fills configs and returns the number of matches. A nil
	// configs slice counts matches only.
	ChooseConfig(dpy uintptr, attribs []int32, configs []uintptr) (int32, bool)
	GetConfigAttrib(dpy, config uintptr, attrib int32) (int32, bool)

	BindAPI(api uint32) bool
	CreateContext(dpy, config, share uintptr, attribs []int32) uintptr
	DestroyContext(dpy, ctx uintptr) bool
	MakeCurrent(dpy, draw, read, ctx uintptr) bool
	GetCurrentContext() uintptr
	GetCurrentSurface(readdraw int32) uintptr
	GetCurrentDisplay() uintptr

	CreateWindowSurface(dpy, config, win uintptr, attribs []int32) uintptr
	CreatePlatformWindowSurface(dpy, config, win uintptr, attribs []uintptr) uintptr
	CreatePlatformWindowSurfaceEXT(dpy, config, win uintptr, attribs []int32) uintptr
	CreatePbufferSurface(dpy, config uintptr, attribs []int32) uintptr
	CreatePixmapSurface(dpy, config, pixmap uintptr, attribs []int32) uintptr
	CreatePlatformPixmapSurface(dpy, config, pixmap uintptr, attribs []uintptr) uintptr
	CreatePlatformPixmapSurfaceEXT(dpy, config, pixmap uintptr, attribs []int32) uintptr
	DestroySurface(dpy, surface uintptr) bool
	QuerySurface(dpy, surface uintptr, attrib int32) (int32, bool)

	SwapBuffers(dpy, surface uintptr) bool
	SwapBuffersWithDamageKHR(dpy, surface uintptr, rects []int32) bool
	SwapBuffersWithDamageEXT(dpy, surface uintptr, rects []int32) bool
	SwapInterval(dpy uintptr, interval int32) bool

	QueryDevicesEXT(devices []uintptr) (int32, bool)
	QueryDeviceStringEXT(device uintptr, name int32) (string, bool)
}

// Optional entry points reported by Lib.Has.
const (
	FnGetPlatformDisplay             = "eglGetPlatformDisplay"
	FnGetPlatformDisplayEXT          = "eglGetPlatformDisplayEXT"
	FnCreatePlatformWindowSurface    = "eglCreatePlatformWindowSurface"
	FnCreatePlatformWindowSurfaceEXT = "eglCreatePlatformWindowSurfaceEXT"
	FnCreatePlatformPixmapSurface    = "eglCreatePlatformPixmapSurface"
	FnCreatePlatformPixmapSurfaceEXT = "eglCreatePlatformPixmapSurfaceEXT"
	FnSwapBuffersWithDamageKHR       = "eglSwapBuffersWithDamageKHR"
	FnSwapBuffersWithDamageEXT       = "eglSwapBuffersWithDamageEXT"
	FnQueryDevicesEXT                = "eglQueryDevicesEXT"
	FnQueryDeviceStringEXT           = "eglQueryDeviceStringEXT"
)

const (
	_EGL_FALSE = 0
	_EGL_TRUE  = 1
	_EGL_NONE  = 0x3038

	_EGL_SUCCESS             = 0x3000
	_EGL_NOT_INITIALIZED     = 0x3001
	_EGL_BAD_ACCESS          = 0x3002
	_EGL_BAD_ALLOC           = 0x3003
	_EGL_BAD_ATTRIBUTE       = 0x3004
	_EGL_BAD_CONFIG          = 0x3005
	_EGL_BAD_CONTEXT         = 0x3006
	_EGL_BAD_CURRENT_SURFACE = 0x3007
	_EGL_BAD_DISPLAY         = 0x3008
	_EGL_BAD_MATCH           = 0x3009
	_EGL_BAD_NATIVE_PIXMAP   = 0x300A
	_EGL_BAD_NATIVE_WINDOW   = 0x300B
	_EGL_BAD_PARAMETER       = 0x300C
	_EGL_BAD_SURFACE         = 0x300D
	_EGL_CONTEXT_LOST        = 0x300E

	_EGL_ALPHA_SIZE         = 0x3021
	_EGL_BLUE_SIZE          = 0x3022
	_EGL_GREEN_SIZE         = 0x3023
	_EGL_RED_SIZE           = 0x3024
	_EGL_DEPTH_SIZE         = 0x3025
	_EGL_STENCIL_SIZE       = 0x3026
	_EGL_CONFIG_CAVEAT      = 0x3027
	_EGL_CONFIG_ID          = 0x3028
	_EGL_MAX_PBUFFER_HEIGHT = 0x302A
	_EGL_MAX_PBUFFER_WIDTH  = 0x302C
	_EGL_NATIVE_VISUAL_ID   = 0x302E
	_EGL_SAMPLES            = 0x3031
	_EGL_SAMPLE_BUFFERS     = 0x3032
	_EGL_SURFACE_TYPE       = 0x3033
	_EGL_MIN_SWAP_INTERVAL  = 0x303B
	_EGL_MAX_SWAP_INTERVAL  = 0x303C
	_EGL_LUMINANCE_SIZE     = 0x303D
	_EGL_COLOR_BUFFER_TYPE  = 0x303F
	_EGL_RENDERABLE_TYPE    = 0x3040
	_EGL_CONFORMANT         = 0x3042

	_EGL_SLOW_CONFIG      = 0x3050
	_EGL_RGB_BUFFER       = 0x308E
	_EGL_LUMINANCE_BUFFER = 0x308F

	_EGL_VENDOR      = 0x3053
	_EGL_VERSION     = 0x3054
	_EGL_EXTENSIONS  = 0x3055
	_EGL_CLIENT_APIS = 0x308D

	_EGL_HEIGHT          = 0x3056
	_EGL_WIDTH           = 0x3057
	_EGL_LARGEST_PBUFFER = 0x3058
	_EGL_DRAW            = 0x3059
	_EGL_READ            = 0x305A
	_EGL_BACK_BUFFER     = 0x3084
	_EGL_SINGLE_BUFFER   = 0x3085
	_EGL_RENDER_BUFFER   = 0x3086

	_EGL_PBUFFER_BIT = 0x1
	_EGL_PIXMAP_BIT  = 0x2
	_EGL_WINDOW_BIT  = 0x4

	_EGL_OPENGL_ES_BIT  = 0x1
	_EGL_OPENGL_ES2_BIT = 0x4
	_EGL_OPENGL_BIT     = 0x8
	_EGL_OPENGL_ES3_BIT = 0x40

	_EGL_OPENGL_ES_API = 0x30A0
	_EGL_OPENGL_API    = 0x30A2

	_EGL_CONTEXT_MAJOR_VERSION     = 0x3098
	_EGL_CONTEXT_MINOR_VERSION     = 0x30FB
	_EGL_CONTEXT_FLAGS_KHR         = 0x30FC
	_EGL_CONTEXT_PROFILE_MASK      = 0x30FD
	_EGL_CORE_PROFILE_BIT          = 0x1
	_EGL_COMPATIBILITY_PROFILE_BIT = 0x2
	_EGL_CONTEXT_DEBUG_BIT_KHR     = 0x1

	_EGL_CONTEXT_OPENGL_DEBUG                       = 0x31B0
	_EGL_CONTEXT_OPENGL_ROBUST_ACCESS               = 0x31B2
	_EGL_CONTEXT_OPENGL_RESET_NOTIFICATION_STRATEGY = 0x31BD
	_EGL_NO_RESET_NOTIFICATION                      = 0x31BE
	_EGL_LOSE_CONTEXT_ON_RESET                      = 0x31BF
	_EGL_CONTEXT_OPENGL_ROBUST_ACCESS_EXT           = 0x30BF
	_EGL_CONTEXT_RESET_NOTIFICATION_STRATEGY_EXT    = 0x3138
	_EGL_CONTEXT_OPENGL_NO_ERROR_KHR                = 0x31B3
	_EGL_CONTEXT_RELEASE_BEHAVIOR_KHR               = 0x2097
	_EGL_CONTEXT_RELEASE_BEHAVIOR_NONE_KHR          = 0
	_EGL_CONTEXT_PRIORITY_LEVEL_IMG                 = 0x3100
	_EGL_CONTEXT_PRIORITY_HIGH_IMG                  = 0x3101
	_EGL_CONTEXT_PRIORITY_MEDIUM_IMG                = 0x3102
	_EGL_CONTEXT_PRIORITY_LOW_IMG                   = 0x3103

	_EGL_GL_COLORSPACE        = 0x309D
	_EGL_GL_COLORSPACE_SRGB   = 0x3089
	_EGL_GL_COLORSPACE_LINEAR = 0x308A

	_EGL_COLOR_COMPONENT_TYPE_EXT       = 0x3339
	_EGL_COLOR_COMPONENT_TYPE_FIXED_EXT = 0x333A
	_EGL_COLOR_COMPONENT_TYPE_FLOAT_EXT = 0x333B

	_EGL_BUFFER_AGE_EXT = 0x313D

	_EGL_PLATFORM_X11         = 0x31D5
	_EGL_PLATFORM_X11_SCREEN  = 0x31D6
	_EGL_PLATFORM_GBM         = 0x31D7
	_EGL_PLATFORM_WAYLAND     = 0x31D8
	_EGL_PLATFORM_ANDROID     = 0x3141
	_EGL_PLATFORM_DEVICE_EXT  = 0x313F
	_EGL_PLATFORM_SURFACELESS = 0x31DD
	_EGL_PLATFORM_ANGLE_ANGLE = 0x3202

	_EGL_DRM_DEVICE_FILE_EXT = 0x3233
)

// errorNames maps EGL error codes to their symbolic names.
var errorNames = map[int32]string{
	_EGL_SUCCESS:             "EGL_SUCCESS",
	_EGL_NOT_INITIALIZED:     "EGL_NOT_INITIALIZED",
	_EGL_BAD_ACCESS:          "EGL_BAD_ACCESS",
	_EGL_BAD_ALLOC:           "EGL_BAD_ALLOC",
	_EGL_BAD_ATTRIBUTE:       "EGL_BAD_ATTRIBUTE",
	_EGL_BAD_CONFIG:          "EGL_BAD_CONFIG",
	_EGL_BAD_CONTEXT:         "EGL_BAD_CONTEXT",
	_EGL_BAD_CURRENT_SURFACE: "EGL_BAD_CURRENT_SURFACE",
	_EGL_BAD_DISPLAY:         "EGL_BAD_DISPLAY",
	_EGL_BAD_MATCH:           "EGL_BAD_MATCH",
	_EGL_BAD_NATIVE_PIXMAP:   "EGL_BAD_NATIVE_PIXMAP",
	_EGL_BAD_NATIVE_WINDOW:   "EGL_BAD_NATIVE_WINDOW",
	_EGL_BAD_PARAMETER:       "EGL_BAD_PARAMETER",
	_EGL_BAD_SURFACE:         "EGL_BAD_SURFACE",
	_EGL_CONTEXT_LOST:        "EGL_CONTEXT_LOST",
}
