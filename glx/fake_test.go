package glx

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
	fakeDpy        = 0xd
	fakeConfigBase = 0x100
)

// fakeLib is an in-memory GLX recording every call in order. X errors
// raised by a call are reported by the next Sync.
type fakeLib struct {
	calls []string

	has   map[string]bool
	exts  string
	major int32
	minor int32

	configs       []map[int32]int32
	visuals       map[int]x11.VisualInfo
	chooseRequest []int32

	// acceptContext returns 0 to accept an attribute list, or the X
	// error to raise.
	acceptContext  func(attribs []int32) int32
	contextAttribs [][]int32
	// leakContext makes a refused glXCreateContextAttribsARB still
	// return a handle, as some drivers do.
	leakContext bool

	surfaceErr     int32
	cur            currentState
	makeCurrentErr int32
	mesaResult     int32

	pending int32
	next    uintptr
}

func newFake() *fakeLib {
	return &fakeLib{
		has: map[string]bool{
			FnCreateContextAttribsARB: true,
			FnSwapIntervalEXT:         true,
			FnSwapIntervalMESA:        true,
			FnSwapIntervalSGI:         true,
		},
		exts: "GLX_ARB_create_context GLX_ARB_create_context_profile GLX_EXT_create_context_es2_profile " +
			"GLX_ARB_multisample GLX_ARB_framebuffer_sRGB GLX_EXT_swap_control",
		major:   1,
		minor:   4,
		configs: []map[int32]int32{rgbaConfig(1)},
		visuals: map[int]x11.VisualInfo{0: argbVisual(0x21)},
	}
}

func rgbaConfig(id int32) map[int32]int32 {
	return map[int32]int32{
		_GLX_FBCONFIG_ID:        id,
		_GLX_RED_SIZE:           8,
		_GLX_GREEN_SIZE:         8,
		_GLX_BLUE_SIZE:          8,
		_GLX_ALPHA_SIZE:         8,
		_GLX_DEPTH_SIZE:         24,
		_GLX_STENCIL_SIZE:       8,
		_GLX_DOUBLEBUFFER:       1,
		_GLX_CONFIG_CAVEAT:      _GLX_NONE,
		_GLX_RENDER_TYPE:        _GLX_RGBA_BIT,
		_GLX_DRAWABLE_TYPE:      _GLX_WINDOW_BIT | _GLX_PBUFFER_BIT | _GLX_PIXMAP_BIT,
		_GLX_VISUAL_ID:          0x21,
		_GLX_MAX_PBUFFER_WIDTH:  4096,
		_GLX_MAX_PBUFFER_HEIGHT: 4096,
	}
}

func argbVisual(id uint32) x11.VisualInfo {
	return x11.VisualInfo{ID: id, Class: x11.TrueColor, Depth: 32, RedMask: 0xff0000, GreenMask: 0xff00, BlueMask: 0xff}
}

func (f *fakeLib) record(format string, args ...any) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeLib) raise(code int32) { f.pending = code }

func (f *fakeLib) handle(base uintptr) uintptr {
	f.next++
	return base + f.next
}

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

func (f *fakeLib) QueryVersion(dpy uintptr) (int32, int32, bool) {
	f.record("QueryVersion %#x", dpy)
	return f.major, f.minor, f.major != 0
}

func (f *fakeLib) QueryExtensionsString(dpy uintptr, screen int32) string {
	f.record("QueryExtensionsString %#x %d", dpy, screen)
	return f.exts
}

func (f *fakeLib) GetClientString(dpy uintptr, name int32) string {
	if name == _GLX_VENDOR {
		return "fake"
	}
	return ""
}

func (f *fakeLib) ChooseFBConfig(dpy uintptr, screen int32, attribs []int32) []uintptr {
	f.record("ChooseFBConfig %d", screen)
	f.chooseRequest = attribs
	out := make([]uintptr, len(f.configs))
	for i := range out {
		out[i] = fakeConfigBase + uintptr(i)
	}
	return out
}

func (f *fakeLib) GetFBConfigAttrib(dpy, cfg uintptr, attrib int32) (int32, bool) {
	i := int(cfg - fakeConfigBase)
	if i < 0 || i >= len(f.configs) {
		return 0, false
	}
	return f.configs[i][attrib], true
}

func (f *fakeLib) GetVisualFromFBConfig(dpy, cfg uintptr) (x11.VisualInfo, bool) {
	vi, ok := f.visuals[int(cfg-fakeConfigBase)]
	return vi, ok
}

func (f *fakeLib) CreateNewContext(dpy, cfg uintptr, renderType int32, share uintptr, direct bool) uintptr {
	f.record("CreateNewContext %#x %#x %#x", cfg, renderType, share)
	return f.handle(0x1000)
}

func (f *fakeLib) CreateContextAttribsARB(dpy, cfg, share uintptr, direct bool, attribs []int32) uintptr {
	f.record("CreateContextAttribsARB %#x %#x", cfg, share)
	f.contextAttribs = append(f.contextAttribs, append([]int32(nil), attribs...))
	if f.acceptContext != nil {
		if code := f.acceptContext(attribs); code != 0 {
			f.raise(code)
			if f.leakContext {
				return f.handle(0x1000)
			}
			return 0
		}
	}
	return f.handle(0x1000)
}

func (f *fakeLib) DestroyContext(dpy, ctx uintptr) { f.record("DestroyContext %#x", ctx) }

func (f *fakeLib) MakeContextCurrent(dpy, draw, read, ctx uintptr) bool {
	f.record("MakeContextCurrent %#x %#x %#x", draw, read, ctx)
	if f.makeCurrentErr != 0 {
		f.raise(f.makeCurrentErr)
		return false
	}
	if ctx == 0 {
		f.cur = currentState{}
		return true
	}
	f.cur = currentState{display: dpy, draw: draw, read: read, ctx: ctx}
	return true
}

func (f *fakeLib) GetCurrentContext() uintptr      { return f.cur.ctx }
func (f *fakeLib) GetCurrentDrawable() uintptr     { return f.cur.draw }
func (f *fakeLib) GetCurrentReadDrawable() uintptr { return f.cur.read }
func (f *fakeLib) GetCurrentDisplay() uintptr      { return f.cur.display }

func (f *fakeLib) newDrawable(op string) uintptr {
	if f.surfaceErr != 0 {
		f.record("%s", op)
		f.raise(f.surfaceErr)
		return 0
	}
	raw := f.handle(0x2000)
	f.record("%s %#x", op, raw)
	return raw
}

func (f *fakeLib) CreateWindow(dpy, cfg uintptr, win uint64, attribs []int32) uintptr {
	return f.newDrawable(fmt.Sprintf("CreateWindow %#x", win))
}

func (f *fakeLib) DestroyWindow(dpy, win uintptr) { f.record("DestroyWindow %#x", win) }

func (f *fakeLib) CreatePbuffer(dpy, cfg uintptr, attribs []int32) uintptr {
	return f.newDrawable(fmt.Sprintf("CreatePbuffer %v", attribs))
}

func (f *fakeLib) DestroyPbuffer(dpy, pbuf uintptr) { f.record("DestroyPbuffer %#x", pbuf) }

func (f *fakeLib) CreatePixmap(dpy, cfg uintptr, pixmap uint64, attribs []int32) uintptr {
	return f.newDrawable(fmt.Sprintf("CreatePixmap %#x", pixmap))
}

func (f *fakeLib) DestroyPixmap(dpy, pixmap uintptr) { f.record("DestroyPixmap %#x", pixmap) }

func (f *fakeLib) QueryDrawable(dpy, draw uintptr, attrib int32) uint32 {
	switch attrib {
	case _GLX_WIDTH:
		return 640
	case _GLX_HEIGHT:
		return 480
	}
	return 0
}

func (f *fakeLib) SwapBuffers(dpy, draw uintptr) { f.record("SwapBuffers %#x", draw) }

func (f *fakeLib) SwapIntervalEXT(dpy, draw uintptr, interval int32) {
	f.record("SwapIntervalEXT %#x %d", draw, interval)
}

func (f *fakeLib) SwapIntervalMESA(interval int32) int32 {
	f.record("SwapIntervalMESA %d current=%#x", interval, f.cur.draw)
	return f.mesaResult
}

func (f *fakeLib) SwapIntervalSGI(interval int32) int32 {
	f.record("SwapIntervalSGI %d", interval)
	return 0
}

func (f *fakeLib) DefaultScreen(dpy uintptr) int32 { return 0 }

func (f *fakeLib) TrapErrors() { f.record("TrapErrors") }

func (f *fakeLib) Sync(dpy uintptr) int32 {
	code := f.pending
	f.pending = x11.Success
	return code
}

// attribValue finds key in a None terminated attribute list.
func attribValue(list []int32, key int32) (int32, bool) {
	for i := 0; i+1 < len(list) && list[i] != _None; i += 2 {
		if list[i] == key {
			return list[i+1], true
		}
	}
	return 0, false
}

func newTestDisplay(t *testing.T, f *fakeLib, opts ...Option) *Display {
	t.Helper()
	opts = append([]Option{WithDebugChecks(false)}, opts...)
	d, err := NewDisplay(f, rawhandle.XlibDisplay{Display: fakeDpy}, opts...)
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
