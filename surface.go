package glctx

import (
	"github.com/tinyrange/glctx/config"
	"github.com/tinyrange/glctx/egl"
	"github.com/tinyrange/glctx/glcontext"
	"github.com/tinyrange/glctx/glerr"
	"github.com/tinyrange/glctx/glx"
	"github.com/tinyrange/glctx/surface"
	"github.com/tinyrange/glctx/wgl"
)

// Surface is a drawable of kind K on one of the backends.
type Surface[K surface.Kind] struct {
	backend glcontext.Backend
	egl     *egl.Surface[K]
	glx     *glx.Surface[K]
	wgl     *wgl.Surface[K]
}

// isNil catches a nil *Surface stored in a Drawable.
func (s *Surface[K]) isNil() bool { return s == nil }

func (s *Surface[K]) eglDrawable() egl.Drawable { return s.egl }
func (s *Surface[K]) glxDrawable() glx.Drawable { return s.glx }
func (s *Surface[K]) wglDrawable() wgl.Drawable { return s.wgl }

// Backend reports the backend the surface was created on.
func (s *Surface[K]) Backend() glcontext.Backend { return s.backend }

// EGL returns the EGL surface, or nil.
func (s *Surface[K]) EGL() *egl.Surface[K] { return s.egl }

// GLX returns the GLX surface, or nil.
func (s *Surface[K]) GLX() *glx.Surface[K] { return s.glx }

// WGL returns the WGL surface, or nil.
func (s *Surface[K]) WGL() *wgl.Surface[K] { return s.wgl }

func (s *Surface[K]) checkContext(ctx *PossiblyCurrentContext) error {
	if ctx == nil {
		return glerr.BadAPIUsagef("nil context")
	}
	if ctx.backend != s.backend {
		return glerr.BadAPIUsagef("%s context used with a %s surface", ctx.backend, s.backend)
	}
	return nil
}

// SwapBuffers presents the back buffer. ctx must be current with the
// surface.
func (s *Surface[K]) SwapBuffers(ctx *PossiblyCurrentContext) error {
	if err := s.checkContext(ctx); err != nil {
		return err
	}
	switch s.backend {
	case glcontext.BackendEGL:
		return s.egl.SwapBuffers(ctx.egl)
	case glcontext.BackendGLX:
		return s.glx.SwapBuffers(ctx.glx)
	case glcontext.BackendWGL:
		return s.wgl.SwapBuffers(ctx.wgl)
	}
	return nil
}

// SwapBuffersWithDamage presents the back buffer, hinting that only rects
// changed. Backends without a damage extension swap the full surface.
func (s *Surface[K]) SwapBuffersWithDamage(ctx *PossiblyCurrentContext, rects []surface.Rect) error {
	if err := s.checkContext(ctx); err != nil {
		return err
	}
	switch s.backend {
	case glcontext.BackendEGL:
		return s.egl.SwapBuffersWithDamage(ctx.egl, rects)
	case glcontext.BackendGLX:
		return s.glx.SwapBuffersWithDamage(ctx.glx, rects)
	case glcontext.BackendWGL:
		return s.wgl.SwapBuffersWithDamage(ctx.wgl, rects)
	}
	return nil
}

// SetSwapInterval sets the swap interval. The surface must be current
// with ctx.
func (s *Surface[K]) SetSwapInterval(ctx *PossiblyCurrentContext, interval config.SwapInterval) error {
	if err := s.checkContext(ctx); err != nil {
		return err
	}
	switch s.backend {
	case glcontext.BackendEGL:
		return s.egl.SetSwapInterval(ctx.egl, interval)
	case glcontext.BackendGLX:
		return s.glx.SetSwapInterval(ctx.glx, interval)
	case glcontext.BackendWGL:
		return s.wgl.SetSwapInterval(ctx.wgl, interval)
	}
	return nil
}

// Size returns the current size in pixels.
func (s *Surface[K]) Size() (width, height uint32) {
	switch s.backend {
	case glcontext.BackendEGL:
		return s.egl.Size()
	case glcontext.BackendGLX:
		return s.glx.Size()
	case glcontext.BackendWGL:
		return s.wgl.Size()
	}
	return 0, 0
}

// BufferAge returns the age of the back buffer, 0 when unknown.
func (s *Surface[K]) BufferAge() uint32 {
	switch s.backend {
	case glcontext.BackendEGL:
		return s.egl.BufferAge()
	case glcontext.BackendGLX:
		return s.glx.BufferAge()
	case glcontext.BackendWGL:
		return s.wgl.BufferAge()
	}
	return 0
}

func (s *Surface[K]) IsSingleBuffered() bool {
	switch s.backend {
	case glcontext.BackendEGL:
		return s.egl.IsSingleBuffered()
	case glcontext.BackendGLX:
		return s.glx.IsSingleBuffered()
	case glcontext.BackendWGL:
		return s.wgl.IsSingleBuffered()
	}
	return false
}

// Resize tells the surface its native window changed size. Only the
// Wayland EGL path needs it.
func (s *Surface[K]) Resize(ctx *PossiblyCurrentContext, width, height uint32) {
	if s.checkContext(ctx) != nil {
		return
	}
	switch s.backend {
	case glcontext.BackendEGL:
		s.egl.Resize(ctx.egl, width, height)
	case glcontext.BackendGLX:
		s.glx.Resize(ctx.glx, width, height)
	case glcontext.BackendWGL:
		s.wgl.Resize(ctx.wgl, width, height)
	}
}

// Raw returns the EGLSurface, GLXDrawable or HDC.
func (s *Surface[K]) Raw() uintptr {
	switch s.backend {
	case glcontext.BackendEGL:
		return s.egl.Raw()
	case glcontext.BackendGLX:
		return s.glx.Raw()
	case glcontext.BackendWGL:
		return s.wgl.Raw()
	}
	return 0
}

// Kind returns the runtime form of K.
func (s *Surface[K]) Kind() surface.Type { return surface.TypeOf[K]() }

// Config returns the config the surface was created with.
func (s *Surface[K]) Config() *Config {
	switch s.backend {
	case glcontext.BackendEGL:
		return &Config{backend: s.backend, egl: s.egl.Config()}
	case glcontext.BackendGLX:
		return &Config{backend: s.backend, glx: s.glx.Config()}
	case glcontext.BackendWGL:
		return &Config{backend: s.backend, wgl: s.wgl.Config()}
	}
	return nil
}

// Destroy destroys the surface, releasing the thread's binding first if
// the surface is bound.
func (s *Surface[K]) Destroy() {
	switch s.backend {
	case glcontext.BackendEGL:
		s.egl.Destroy()
	case glcontext.BackendGLX:
		s.glx.Destroy()
	case glcontext.BackendWGL:
		s.wgl.Destroy()
	}
}
