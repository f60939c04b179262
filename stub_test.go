package glctx

import (
	"github.com/tinyrange/glctx/egl"
	"github.com/tinyrange/glctx/glx"
	"github.com/tinyrange/glctx/internal/x11"
)

const (
	stubDpy    = 0xd
	stubEGLDpy = 0xe0

	eglNotInitialized = 0x3001

	glxRedSize      = 8
	glxGreenSize    = 9
	glxBlueSize     = 10
	glxAlphaSize    = 11
	glxDepthSize    = 12
	glxDoubleBuffer = 5
	glxCaveat       = 0x20
	glxVisualID     = 0x800B
	glxDrawableType = 0x8010
	glxRenderType   = 0x8011
	glxFBConfigID   = 0x8013
	glxNone         = 0x8000
)

// eglStub answers just enough of EGL for a legacy eglGetDisplay open.
// Calls outside that path hit the nil embedded Lib and panic.
type eglStub struct {
	egl.Lib
	calls  []string
	initOK bool
}

func (s *eglStub) Has(string) bool { return false }

func (s *eglStub) QueryString(dpy uintptr, name int32) (string, bool) { return "", true }

func (s *eglStub) GetError() int32 {
	if s.initOK {
		return 0x3000
	}
	return eglNotInitialized
}

func (s *eglStub) GetDisplay(native uintptr) uintptr {
	s.calls = append(s.calls, "GetDisplay")
	return stubEGLDpy
}

func (s *eglStub) Initialize(dpy uintptr) (int32, int32, bool) {
	s.calls = append(s.calls, "Initialize")
	if !s.initOK {
		return 0, 0, false
	}
	return 1, 5, true
}

// glxStub is a GLX 1.4 server with no extensions and one fbconfig per
// entry of configs.
type glxStub struct {
	glx.Lib
	calls   []string
	noGLX   bool
	configs []map[int32]int32
}

func (s *glxStub) Has(string) bool { return false }
func (s *glxStub) TrapErrors()     {}

func (s *glxStub) QueryVersion(dpy uintptr) (int32, int32, bool) {
	s.calls = append(s.calls, "QueryVersion")
	return 1, 4, !s.noGLX
}

func (s *glxStub) DefaultScreen(dpy uintptr) int32                        { return 0 }
func (s *glxStub) QueryExtensionsString(dpy uintptr, screen int32) string { return "" }
func (s *glxStub) GetClientString(dpy uintptr, name int32) string         { return "stub" }
func (s *glxStub) GetProcAddress(name string) uintptr                     { return 0x4000 }

func (s *glxStub) ChooseFBConfig(dpy uintptr, screen int32, attribs []int32) []uintptr {
	out := make([]uintptr, len(s.configs))
	for i := range s.configs {
		out[i] = uintptr(0x100 + i)
	}
	return out
}

func (s *glxStub) GetFBConfigAttrib(dpy, cfg uintptr, attrib int32) (int32, bool) {
	return s.configs[cfg-0x100][attrib], true
}

func (s *glxStub) GetVisualFromFBConfig(dpy, cfg uintptr) (x11.VisualInfo, bool) {
	id := s.configs[cfg-0x100][glxVisualID]
	return x11.VisualInfo{ID: uint32(id), Depth: 24}, id != 0
}

func rgbConfig(id, alpha, depth int32) map[int32]int32 {
	return map[int32]int32{
		glxFBConfigID:   id,
		glxRedSize:      8,
		glxGreenSize:    8,
		glxBlueSize:     8,
		glxAlphaSize:    alpha,
		glxDepthSize:    depth,
		glxDoubleBuffer: 1,
		glxCaveat:       glxNone,
		glxDrawableType: 0x1,
		glxRenderType:   0x1,
		glxVisualID:     0x20 + id,
	}
}
