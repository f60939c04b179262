package wgl

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tinyrange/glctx/config"
	"github.com/tinyrange/glctx/rawhandle"
)

const (
	fakeHelperBase = 0x5000
	fakeDCOffset   = 0x10000
	testHWND       = 0x7700
	testDC         = testHWND + fakeDCOffset
)

// fakeLib is an in-memory WGL recording every call in order. A device
// context is its window handle plus fakeDCOffset.
type fakeLib struct {
	calls []string

	has  map[string]bool
	exts string
	// extEXT is returned by wglGetExtensionsStringEXT.
	extEXT string

	// formats are the WGL_ARB_pixel_format attributes of formats 1..n.
	formats       []map[int32]int32
	pfds          []PixelFormatDescriptor
	chooseRequest []int32
	pixelFormat   map[uintptr]int32
	attribFail    bool

	// acceptContext reports whether an attribute list is accepted and
	// the GetLastError value to fail with otherwise.
	acceptContext  func(attribs []int32) (uint32, bool)
	contextAttribs [][]int32

	helperErr      error
	cur            currentState
	makeCurrentErr uint32
	swapFail       uint32
	intervalFail   uint32
	shareFail      bool

	lastErr uint32
	next    uintptr
}

func newFake() *fakeLib {
	return &fakeLib{
		has: map[string]bool{
			FnGetExtensionsStringARB:    true,
			FnGetExtensionsStringEXT:    true,
			FnChoosePixelFormatARB:      true,
			FnGetPixelFormatAttribivARB: true,
			FnCreateContextAttribsARB:   true,
			FnSwapIntervalEXT:           true,
		},
		exts: "WGL_ARB_extensions_string WGL_ARB_pixel_format WGL_ARB_create_context WGL_ARB_create_context_profile " +
			"WGL_EXT_create_context_es2_profile WGL_ARB_multisample WGL_ARB_framebuffer_sRGB WGL_EXT_swap_control",
		formats:     []map[int32]int32{rgbaFormat()},
		pfds:        []PixelFormatDescriptor{rgbaDescriptor()},
		pixelFormat: map[uintptr]int32{},
	}
}

func rgbaFormat() map[int32]int32 {
	return map[int32]int32{
		_WGL_DRAW_TO_WINDOW_ARB:           1,
		_WGL_ACCELERATION_ARB:             _WGL_FULL_ACCELERATION_ARB,
		_WGL_DOUBLE_BUFFER_ARB:            1,
		_WGL_PIXEL_TYPE_ARB:               _WGL_TYPE_RGBA_ARB,
		_WGL_RED_BITS_ARB:                 8,
		_WGL_GREEN_BITS_ARB:               8,
		_WGL_BLUE_BITS_ARB:                8,
		_WGL_ALPHA_BITS_ARB:               8,
		_WGL_DEPTH_BITS_ARB:               24,
		_WGL_STENCIL_BITS_ARB:             8,
		_WGL_FRAMEBUFFER_SRGB_CAPABLE_ARB: 1,
	}
}

func rgbaDescriptor() PixelFormatDescriptor {
	return PixelFormatDescriptor{
		Flags:       _PFD_DRAW_TO_WINDOW | _PFD_SUPPORT_OPENGL | _PFD_DOUBLEBUFFER,
		PixelType:   _PFD_TYPE_RGBA,
		ColorBits:   32,
		RedBits:     8,
		GreenBits:   8,
		BlueBits:    8,
		AlphaBits:   8,
		DepthBits:   24,
		StencilBits: 8,
	}
}

func (f *fakeLib) record(format string, args ...any) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeLib) handle(base uintptr) uintptr {
	f.next++
	return base + f.next
}

func (f *fakeLib) fail(code uint32) { f.lastErr = code }

func (f *fakeLib) count(prefix string) int {
	n := 0
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func (f *fakeLib) filter(prefixes ...string) []string {
	var out []string
	for _, c := range f.calls {
		for _, p := range prefixes {
			if strings.HasPrefix(c, p) {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

func (f *fakeLib) Has(name string) bool { return f.has[name] }

func (f *fakeLib) GetProcAddress(name string) uintptr {
	f.record("GetProcAddress %s", name)
	return 0
}

func (f *fakeLib) LoadExtensions() { f.record("LoadExtensions current=%#x", f.cur.ctx) }

func (f *fakeLib) LastError() uint32 { return f.lastErr }

func (f *fakeLib) CreateHelperWindow() (uintptr, error) {
	if f.helperErr != nil {
		return 0, f.helperErr
	}
	hwnd := f.handle(fakeHelperBase)
	f.record("CreateHelperWindow %#x", hwnd)
	return hwnd, nil
}

func (f *fakeLib) DestroyWindow(hwnd uintptr) { f.record("DestroyWindow %#x", hwnd) }

func (f *fakeLib) GetDC(hwnd uintptr) uintptr {
	f.record("GetDC %#x", hwnd)
	if hwnd == 0 {
		f.fail(errorInvalidWindowHandle)
		return 0
	}
	return hwnd + fakeDCOffset
}

func (f *fakeLib) ReleaseDC(hwnd, hdc uintptr) { f.record("ReleaseDC %#x %#x", hwnd, hdc) }

func (f *fakeLib) ClientSize(hwnd uintptr) (uint32, uint32) { return 800, 600 }

func (f *fakeLib) ChoosePixelFormat(hdc uintptr, pfd PixelFormatDescriptor) int32 {
	f.record("ChoosePixelFormat %#x", hdc)
	return 1
}

func (f *fakeLib) DescribePixelFormat(hdc uintptr, format int32) (PixelFormatDescriptor, int32) {
	n := int32(len(f.pfds))
	if format < 1 || format > n {
		return PixelFormatDescriptor{}, 0
	}
	return f.pfds[format-1], n
}

func (f *fakeLib) GetPixelFormat(hdc uintptr) int32 { return f.pixelFormat[hdc] }

func (f *fakeLib) SetPixelFormat(hdc uintptr, format int32) bool {
	f.record("SetPixelFormat %#x %d", hdc, format)
	f.pixelFormat[hdc] = format
	return true
}

func (f *fakeLib) SwapBuffers(hdc uintptr) bool {
	f.record("SwapBuffers %#x", hdc)
	if f.swapFail != 0 {
		f.fail(f.swapFail)
		return false
	}
	return true
}

func (f *fakeLib) CreateContext(hdc uintptr) uintptr {
	ctx := f.handle(0x1000)
	f.record("CreateContext %#x %#x", hdc, ctx)
	return ctx
}

func (f *fakeLib) DeleteContext(hglrc uintptr) bool {
	f.record("DeleteContext %#x", hglrc)
	return true
}

func (f *fakeLib) MakeCurrent(hdc, hglrc uintptr) bool {
	f.record("MakeCurrent %#x %#x", hdc, hglrc)
	if f.makeCurrentErr != 0 {
		f.fail(f.makeCurrentErr)
		return false
	}
	f.cur = currentState{hdc: hdc, ctx: hglrc}
	return true
}

func (f *fakeLib) GetCurrentContext() uintptr { return f.cur.ctx }
func (f *fakeLib) GetCurrentDC() uintptr      { return f.cur.hdc }

func (f *fakeLib) ShareLists(src, dst uintptr) bool {
	f.record("ShareLists %#x %#x", src, dst)
	if f.shareFail {
		f.fail(errorInvalidOperation)
		return false
	}
	return true
}

func (f *fakeLib) GetExtensionsStringARB(hdc uintptr) string {
	f.record("GetExtensionsStringARB %#x", hdc)
	return f.exts
}

func (f *fakeLib) GetExtensionsStringEXT() string {
	f.record("GetExtensionsStringEXT")
	return f.extEXT
}

func (f *fakeLib) ChoosePixelFormatARB(hdc uintptr, attribs []int32) []int32 {
	f.record("ChoosePixelFormatARB %#x", hdc)
	f.chooseRequest = attribs
	out := make([]int32, len(f.formats))
	for i := range out {
		out[i] = int32(i + 1)
	}
	return out
}

func (f *fakeLib) GetPixelFormatAttribivARB(hdc uintptr, format int32, attribs []int32) ([]int32, bool) {
	if f.attribFail || format < 1 || int(format) > len(f.formats) {
		f.fail(errorInvalidPixelFormat)
		return nil, false
	}
	values := make([]int32, len(attribs))
	for i, a := range attribs {
		values[i] = f.formats[format-1][a]
	}
	return values, true
}

func (f *fakeLib) CreateContextAttribsARB(hdc, share uintptr, attribs []int32) uintptr {
	f.record("CreateContextAttribsARB %#x %#x", hdc, share)
	f.contextAttribs = append(f.contextAttribs, append([]int32(nil), attribs...))
	if f.acceptContext != nil {
		if code, ok := f.acceptContext(attribs); !ok {
			f.fail(code)
			return 0
		}
	}
	return f.handle(0x1000)
}

func (f *fakeLib) SwapIntervalEXT(interval int32) bool {
	f.record("SwapIntervalEXT %d current=%#x", interval, f.cur.hdc)
	if f.intervalFail != 0 {
		f.fail(f.intervalFail)
		return false
	}
	return true
}

// attribValue finds key in a zero terminated attribute list.
func attribValue(list []int32, key int32) (int32, bool) {
	for i := 0; i+1 < len(list) && list[i] != 0; i += 2 {
		if list[i] == key {
			return list[i+1], true
		}
	}
	return 0, false
}

var errNoClass = errors.New("RegisterClassExW failed")

func newTestDisplay(t *testing.T, f *fakeLib, opts ...Option) *Display {
	t.Helper()
	opts = append([]Option{WithDebugChecks(false)}, opts...)
	d, err := NewDisplay(f, rawhandle.Win32Display{}, opts...)
	require.NoError(t, err)
	return d
}

func firstConfig(t *testing.T, d *Display, tmpl config.Template) *Config {
	t.Helper()
	configs, err := d.FindConfigs(tmpl)
	require.NoError(t, err)
	require.NotEmpty(t, configs)
	return configs[0]
}
