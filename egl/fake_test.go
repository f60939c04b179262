package egl

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tinyrange/glctx/config"
	"github.com/tinyrange/glctx/internal/x11"
	"github.com/tinyrange/glctx/rawhandle"
)

const (
	fakeDisplay    = 0x10
	fakeConfigBase = 0x100
)

// fakeLib is an in-memory EGL recording every call in order.
type fakeLib struct {
	calls []string

	has           map[string]bool
	clientExts    string
	clientVersion string
	noClientExts  bool

	displayExts string
	clientAPIs  string
	major       int32
	minor       int32

	platformErr        int32
	platformEXTErr     int32
	legacyErr          int32
	platformAttribs    []uintptr
	platformEXTAttribs []int32

	configs       []map[int32]int32
	chooseRequest []int32

	// acceptContext returns 0 to accept an attribute list, or the EGL
	// error to fail with.
	acceptContext  func(attribs []int32) int32
	contextAttribs [][]int32

	cur            currentState
	makeCurrentErr int32
	swapErr        int32

	surfaceAttribs map[uintptr][]int32
	devices        []uintptr

	next uintptr
	err  int32
}

func newFake() *fakeLib {
	return &fakeLib{
		has: map[string]bool{
			FnGetPlatformDisplay:             true,
			FnGetPlatformDisplayEXT:          true,
			FnCreatePlatformWindowSurface:    true,
			FnCreatePlatformWindowSurfaceEXT: true,
			FnCreatePlatformPixmapSurface:    true,
			FnCreatePlatformPixmapSurfaceEXT: true,
		},
		clientExts:     "EGL_EXT_client_extensions EGL_EXT_platform_base EGL_KHR_platform_wayland EGL_EXT_platform_wayland EGL_KHR_platform_x11 EGL_EXT_platform_x11",
		clientVersion:  "1.5",
		displayExts:    "EGL_KHR_create_context EGL_KHR_surfaceless_context",
		clientAPIs:     "OpenGL OpenGL_ES",
		major:          1,
		minor:          5,
		configs:        []map[int32]int32{rgbaConfig(1)},
		surfaceAttribs: make(map[uintptr][]int32),
	}
}

func rgbaConfig(id int32) map[int32]int32 {
	return map[int32]int32{
		_EGL_CONFIG_ID:          id,
		_EGL_COLOR_BUFFER_TYPE:  _EGL_RGB_BUFFER,
		_EGL_RED_SIZE:           8,
		_EGL_GREEN_SIZE:         8,
		_EGL_BLUE_SIZE:          8,
		_EGL_ALPHA_SIZE:         8,
		_EGL_DEPTH_SIZE:         24,
		_EGL_STENCIL_SIZE:       8,
		_EGL_CONFIG_CAVEAT:      _EGL_NONE,
		_EGL_SURFACE_TYPE:       _EGL_WINDOW_BIT | _EGL_PBUFFER_BIT,
		_EGL_RENDERABLE_TYPE:    _EGL_OPENGL_BIT | _EGL_OPENGL_ES2_BIT | _EGL_OPENGL_ES3_BIT,
		_EGL_CONFORMANT:         _EGL_OPENGL_BIT | _EGL_OPENGL_ES2_BIT | _EGL_OPENGL_ES3_BIT,
		_EGL_MIN_SWAP_INTERVAL:  0,
		_EGL_MAX_SWAP_INTERVAL:  4,
		_EGL_NATIVE_VISUAL_ID:   0x21,
		_EGL_MAX_PBUFFER_WIDTH:  4096,
		_EGL_MAX_PBUFFER_HEIGHT: 4096,
	}
}

func (f *fakeLib) record(format string, args ...any) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeLib) fail(code int32) { f.err = code }

func (f *fakeLib) handle(base uintptr) uintptr {
	f.next++
	return base + f.next
}

// count returns how many recorded calls start with prefix.
func (f *fakeLib) count(prefix string) int {
	n := 0
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

// filter returns the recorded calls starting with one of prefixes.
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

func (f *fakeLib) GetError() int32 {
	code := f.err
	f.err = _EGL_SUCCESS
	if code == 0 {
		return _EGL_SUCCESS
	}
	return code
}

func (f *fakeLib) QueryString(dpy uintptr, name int32) (string, bool) {
	f.record("QueryString %#x %#x", dpy, name)
	if dpy == 0 {
		switch name {
		case _EGL_EXTENSIONS:
			if f.noClientExts {
				f.fail(_EGL_BAD_DISPLAY)
				return "", false
			}
			return f.clientExts, true
		case _EGL_VERSION:
			return f.clientVersion, true
		}
		f.fail(_EGL_BAD_DISPLAY)
		return "", false
	}
	switch name {
	case _EGL_EXTENSIONS:
		return f.displayExts, true
	case _EGL_VENDOR:
		return "fake", true
	case _EGL_CLIENT_APIS:
		return f.clientAPIs, true
	case _EGL_VERSION:
		return fmt.Sprintf("%d.%d fake", f.major, f.minor), true
	}
	f.fail(_EGL_BAD_PARAMETER)
	return "", false
}

func (f *fakeLib) GetDisplay(native uintptr) uintptr {
	f.record("GetDisplay %#x", native)
	if f.legacyErr != 0 {
		f.fail(f.legacyErr)
		return 0
	}
	return fakeDisplay
}

func (f *fakeLib) GetPlatformDisplay(platform int32, native uintptr, attribs []uintptr) uintptr {
	f.record("GetPlatformDisplay %#x %#x", platform, native)
	f.platformAttribs = attribs
	if f.platformErr != 0 {
		f.fail(f.platformErr)
		return 0
	}
	return fakeDisplay
}

func (f *fakeLib) GetPlatformDisplayEXT(platform int32, native uintptr, attribs []int32) uintptr {
	f.record("GetPlatformDisplayEXT %#x %#x", platform, native)
	f.platformEXTAttribs = attribs
	if f.platformEXTErr != 0 {
		f.fail(f.platformEXTErr)
		return 0
	}
	return fakeDisplay
}

func (f *fakeLib) Initialize(dpy uintptr) (int32, int32, bool) {
	f.record("Initialize %#x", dpy)
	return f.major, f.minor, true
}

func (f *fakeLib) Terminate(dpy uintptr) bool {
	f.record("Terminate %#x", dpy)
	return true
}

func (f *fakeLib) ChooseConfig(dpy uintptr, attribs []int32, configs []uintptr) (int32, bool) {
	f.record("ChooseConfig fill=%t", configs != nil)
	f.chooseRequest = attribs
	if configs == nil {
		return int32(len(f.configs)), true
	}
	n := min(len(configs), len(f.configs))
	for i := 0; i < n; i++ {
		configs[i] = fakeConfigBase + uintptr(i)
	}
	return int32(n), true
}

func (f *fakeLib) GetConfigAttrib(dpy, cfg uintptr, attrib int32) (int32, bool) {
	i := int(cfg - fakeConfigBase)
	if i < 0 || i >= len(f.configs) {
		f.fail(_EGL_BAD_CONFIG)
		return 0, false
	}
	return f.configs[i][attrib], true
}

func (f *fakeLib) BindAPI(api uint32) bool {
	f.record("BindAPI %#x", api)
	return true
}

func (f *fakeLib) CreateContext(dpy, cfg, share uintptr, attribs []int32) uintptr {
	f.record("CreateContext %#x %#x", cfg, share)
	f.contextAttribs = append(f.contextAttribs, append([]int32(nil), attribs...))
	if f.acceptContext != nil {
		if code := f.acceptContext(attribs); code != 0 {
			f.fail(code)
			return 0
		}
	}
	return f.handle(0x1000)
}

func (f *fakeLib) DestroyContext(dpy, ctx uintptr) bool {
	f.record("DestroyContext %#x", ctx)
	return true
}

func (f *fakeLib) MakeCurrent(dpy, draw, read, ctx uintptr) bool {
	f.record("MakeCurrent %#x %#x %#x", draw, read, ctx)
	if f.makeCurrentErr != 0 {
		f.fail(f.makeCurrentErr)
		return false
	}
	if ctx == 0 {
		f.cur = currentState{}
		return true
	}
	f.cur = currentState{display: dpy, draw: draw, read: read, ctx: ctx}
	return true
}

func (f *fakeLib) GetCurrentContext() uintptr { return f.cur.ctx }

func (f *fakeLib) GetCurrentSurface(readdraw int32) uintptr {
	if readdraw == _EGL_READ {
		return f.cur.read
	}
	return f.cur.draw
}

func (f *fakeLib) GetCurrentDisplay() uintptr { return f.cur.display }

func (f *fakeLib) newSurface(op string, attribs []int32) uintptr {
	raw := f.handle(0x2000)
	f.record("%s %#x", op, raw)
	f.surfaceAttribs[raw] = append([]int32(nil), attribs...)
	return raw
}

func (f *fakeLib) CreateWindowSurface(dpy, cfg, win uintptr, attribs []int32) uintptr {
	return f.newSurface("CreateWindowSurface", attribs)
}

func (f *fakeLib) CreatePlatformWindowSurface(dpy, cfg, win uintptr, attribs []uintptr) uintptr {
	narrow := make([]int32, len(attribs))
	for i, v := range attribs {
		narrow[i] = int32(v)
	}
	return f.newSurface("CreatePlatformWindowSurface", narrow)
}

func (f *fakeLib) CreatePlatformWindowSurfaceEXT(dpy, cfg, win uintptr, attribs []int32) uintptr {
	return f.newSurface("CreatePlatformWindowSurfaceEXT", attribs)
}

func (f *fakeLib) CreatePbufferSurface(dpy, cfg uintptr, attribs []int32) uintptr {
	return f.newSurface("CreatePbufferSurface", attribs)
}

func (f *fakeLib) CreatePixmapSurface(dpy, cfg, pixmap uintptr, attribs []int32) uintptr {
	return f.newSurface("CreatePixmapSurface", attribs)
}

func (f *fakeLib) CreatePlatformPixmapSurface(dpy, cfg, pixmap uintptr, attribs []uintptr) uintptr {
	return f.newSurface("CreatePlatformPixmapSurface", nil)
}

func (f *fakeLib) CreatePlatformPixmapSurfaceEXT(dpy, cfg, pixmap uintptr, attribs []int32) uintptr {
	return f.newSurface("CreatePlatformPixmapSurfaceEXT", attribs)
}

func (f *fakeLib) DestroySurface(dpy, surf uintptr) bool {
	f.record("DestroySurface %#x", surf)
	return true
}

func (f *fakeLib) QuerySurface(dpy, surf uintptr, attrib int32) (int32, bool) {
	switch attrib {
	case _EGL_WIDTH:
		return 640, true
	case _EGL_HEIGHT:
		return 480, true
	case _EGL_BUFFER_AGE_EXT:
		return 2, true
	case _EGL_RENDER_BUFFER:
		if v, ok := attribValue(f.surfaceAttribs[surf], _EGL_RENDER_BUFFER); ok {
			return v, true
		}
		return _EGL_BACK_BUFFER, true
	}
	f.fail(_EGL_BAD_ATTRIBUTE)
	return 0, false
}

func (f *fakeLib) SwapBuffers(dpy, surf uintptr) bool {
	f.record("SwapBuffers %#x", surf)
	if f.swapErr != 0 {
		f.fail(f.swapErr)
		return false
	}
	return true
}

func (f *fakeLib) SwapBuffersWithDamageKHR(dpy, surf uintptr, rects []int32) bool {
	f.record("SwapBuffersWithDamageKHR %#x %v", surf, rects)
	return true
}

func (f *fakeLib) SwapBuffersWithDamageEXT(dpy, surf uintptr, rects []int32) bool {
	f.record("SwapBuffersWithDamageEXT %#x %v", surf, rects)
	return true
}

func (f *fakeLib) SwapInterval(dpy uintptr, interval int32) bool {
	f.record("SwapInterval %d", interval)
	return true
}

func (f *fakeLib) QueryDevicesEXT(devices []uintptr) (int32, bool) {
	f.record("QueryDevicesEXT fill=%t", devices != nil)
	if devices == nil {
		return int32(len(f.devices)), true
	}
	return int32(copy(devices, f.devices)), true
}

func (f *fakeLib) QueryDeviceStringEXT(device uintptr, name int32) (string, bool) {
	switch name {
	case _EGL_EXTENSIONS:
		return "EGL_EXT_device_drm", true
	case _EGL_DRM_DEVICE_FILE_EXT:
		return fmt.Sprintf("/dev/dri/card%d", device&0xf), true
	}
	return "", false
}

// attribValue finds key in an EGL_NONE terminated attribute list.
func attribValue(list []int32, key int32) (int32, bool) {
	for i := 0; i+1 < len(list) && list[i] != _EGL_NONE; i += 2 {
		if list[i] == key {
			return list[i+1], true
		}
	}
	return 0, false
}

// fakeWayland records wl_egl_window calls into the fake EGL.
type fakeWayland struct {
	lib *fakeLib
}

func (w fakeWayland) CreateWindow(surface uintptr, width, height int32) uintptr {
	w.lib.record("wl_egl_window_create %#x %dx%d", surface, width, height)
	return 0x3000 + surface
}

func (w fakeWayland) ResizeWindow(window uintptr, width, height, dx, dy int32) {
	w.lib.record("wl_egl_window_resize %#x %dx%d", window, width, height)
}

func (w fakeWayland) DestroyWindow(window uintptr) {
	w.lib.record("wl_egl_window_destroy %#x", window)
}

// fakeVisuals reports visual 0x21 as 32-bit ARGB and everything else as
// 24-bit RGB.
type fakeVisuals struct{}

func (fakeVisuals) FindVisual(display uintptr, id uint32) (x11.VisualInfo, bool) {
	vi := x11.VisualInfo{ID: id, Class: x11.TrueColor, Depth: 24, RedMask: 0xff0000, GreenMask: 0xff00, BlueMask: 0xff}
	if id == 0x21 {
		vi.Depth = 32
	}
	return vi, true
}

func newTestDisplay(t *testing.T, f *fakeLib, opts ...Option) *Display {
	t.Helper()
	opts = append([]Option{WithDebugChecks(false), WithWaylandEGL(fakeWayland{lib: f})}, opts...)
	d, err := NewDisplay(f, rawhandle.WaylandDisplay{Display: 0xd}, opts...)
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
