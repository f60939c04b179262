// Package wgl negotiates OpenGL contexts, pixel formats and window
// surfaces on Windows through WGL and its ARB/EXT extensions.
//
// The native entry points are reached through a Lib. Load returns the
// process-wide opengl32.dll binding; tests pass a fake.
package wgl

// PixelFormatDescriptor holds the PIXELFORMATDESCRIPTOR fields the
// negotiation reads.
type PixelFormatDescriptor struct {
	Flags       uint32
	PixelType   uint8
	ColorBits   uint8
	RedBits     uint8
	GreenBits   uint8
	BlueBits    uint8
	AlphaBits   uint8
	DepthBits   uint8
	StencilBits uint8
}

// Lib is the WGL function table together with the user32/gdi32 calls WGL
// depends on. Boolean returns report success; LastError returns the
// thread's GetLastError value after a failure.
type Lib interface {
	// Has reports whether an extension entry point was resolved.
	Has(name string) bool
	GetProcAddress(name string) uintptr
	// LoadExtensions resolves the extension entry points. WGL only hands
	// them out while a context is current.
	LoadExtensions()
	LastError() uint32

	// CreateHelperWindow creates a hidden window used to load extensions
	// and to create contexts without a caller window.
	CreateHelperWindow() (uintptr, error)
	DestroyWindow(hwnd uintptr)
	GetDC(hwnd uintptr) uintptr
	ReleaseDC(hwnd, hdc uintptr)
	ClientSize(hwnd uintptr) (width, height uint32)

	ChoosePixelFormat(hdc uintptr, pfd PixelFormatDescriptor) int32
	// DescribePixelFormat describes format and returns the number of
	// formats of the device.
	DescribePixelFormat(hdc uintptr, format int32) (PixelFormatDescriptor, int32)
	GetPixelFormat(hdc uintptr) int32
	SetPixelFormat(hdc uintptr, format int32) bool
	SwapBuffers(hdc uintptr) bool

	CreateContext(hdc uintptr) uintptr
	DeleteContext(hglrc uintptr) bool
	MakeCurrent(hdc, hglrc uintptr) bool
	GetCurrentContext() uintptr
	GetCurrentDC() uintptr
	ShareLists(src, dst uintptr) bool

	GetExtensionsStringARB(hdc uintptr) string
	GetExtensionsStringEXT() string
	ChoosePixelFormatARB(hdc uintptr, attribs []int32) []int32
	GetPixelFormatAttribivARB(hdc uintptr, format int32, attribs []int32) ([]int32, bool)
	CreateContextAttribsARB(hdc, share uintptr, attribs []int32) uintptr
	SwapIntervalEXT(interval int32) bool
}

// Extension entry points resolved through wglGetProcAddress.
const (
	FnGetExtensionsStringARB    = "wglGetExtensionsStringARB"
	FnGetExtensionsStringEXT    = "wglGetExtensionsStringEXT"
	FnChoosePixelFormatARB      = "wglChoosePixelFormatARB"
	FnGetPixelFormatAttribivARB = "wglGetPixelFormatAttribivARB"
	FnCreateContextAttribsARB   = "wglCreateContextAttribsARB"
	FnSwapIntervalEXT           = "wglSwapIntervalEXT"
)

// maxFormats bounds wglChoosePixelFormatARB results.
const maxFormats = 256

const (
	_PFD_DOUBLEBUFFER          = 0x1
	_PFD_STEREO                = 0x2
	_PFD_DRAW_TO_WINDOW        = 0x4
	_PFD_SUPPORT_OPENGL        = 0x20
	_PFD_GENERIC_FORMAT        = 0x40
	_PFD_GENERIC_ACCELERATED   = 0x1000
	_PFD_SUPPORT_COMPOSITION   = 0x8000
	_PFD_TYPE_RGBA             = 0
	_PFD_DEPTH_DONTCARE        = 0x20000000
	_PFD_DOUBLEBUFFER_DONTCARE = 0x40000000

	_WGL_NUMBER_PIXEL_FORMATS_ARB     = 0x2000
	_WGL_DRAW_TO_WINDOW_ARB           = 0x2001
	_WGL_ACCELERATION_ARB             = 0x2003
	_WGL_SUPPORT_OPENGL_ARB           = 0x2010
	_WGL_DOUBLE_BUFFER_ARB            = 0x2011
	_WGL_STEREO_ARB                   = 0x2012
	_WGL_PIXEL_TYPE_ARB               = 0x2013
	_WGL_COLOR_BITS_ARB               = 0x2014
	_WGL_RED_BITS_ARB                 = 0x2015
	_WGL_GREEN_BITS_ARB               = 0x2017
	_WGL_BLUE_BITS_ARB                = 0x2019
	_WGL_ALPHA_BITS_ARB               = 0x201B
	_WGL_DEPTH_BITS_ARB               = 0x2022
	_WGL_STENCIL_BITS_ARB             = 0x2023
	_WGL_NO_ACCELERATION_ARB          = 0x2025
	_WGL_FULL_ACCELERATION_ARB        = 0x2027
	_WGL_TYPE_RGBA_ARB                = 0x202B
	_WGL_SAMPLE_BUFFERS_ARB           = 0x2041
	_WGL_SAMPLES_ARB                  = 0x2042
	_WGL_FRAMEBUFFER_SRGB_CAPABLE_ARB = 0x20A9
	_WGL_TYPE_RGBA_FLOAT_ARB          = 0x21A0

	_WGL_CONTEXT_MAJOR_VERSION_ARB             = 0x2091
	_WGL_CONTEXT_MINOR_VERSION_ARB             = 0x2092
	_WGL_CONTEXT_FLAGS_ARB                     = 0x2094
	_WGL_CONTEXT_PROFILE_MASK_ARB              = 0x9126
	_WGL_CONTEXT_DEBUG_BIT_ARB                 = 0x1
	_WGL_CONTEXT_ROBUST_ACCESS_BIT_ARB         = 0x4
	_WGL_CONTEXT_CORE_PROFILE_BIT_ARB          = 0x1
	_WGL_CONTEXT_COMPATIBILITY_PROFILE_BIT_ARB = 0x2
	_WGL_CONTEXT_ES2_PROFILE_BIT_EXT           = 0x4
	_WGL_CONTEXT_RESET_NOTIFICATION_STRATEGY   = 0x8256
	_WGL_LOSE_CONTEXT_ON_RESET_ARB             = 0x8252
	_WGL_NO_RESET_NOTIFICATION_ARB             = 0x8261
	_WGL_CONTEXT_OPENGL_NO_ERROR_ARB           = 0x31B3
	_WGL_CONTEXT_RELEASE_BEHAVIOR_ARB          = 0x2097
	_WGL_CONTEXT_RELEASE_BEHAVIOR_NONE_ARB     = 0

	_ERROR_INVALID_VERSION_ARB = 0x2095
	_ERROR_INVALID_PROFILE_ARB = 0x2096
)
