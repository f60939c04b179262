package glctx

import (
	"github.com/tinyrange/glctx/egl"
	"github.com/tinyrange/glctx/glcontext"
	"github.com/tinyrange/glctx/glerr"
	"github.com/tinyrange/glctx/glx"
	"github.com/tinyrange/glctx/wgl"
)

// Drawable is a surface of any kind a context can be made current with.
type Drawable interface {
	Backend() glcontext.Backend
	isNil() bool
	eglDrawable() egl.Drawable
	glxDrawable() glx.Drawable
	wglDrawable() wgl.Drawable
}

// NotCurrentContext is a context known not to be current on the calling
// thread.
type NotCurrentContext struct {
	backend glcontext.Backend
	egl     *egl.NotCurrentContext
	glx     *glx.NotCurrentContext
	wgl     *wgl.NotCurrentContext
}

// PossiblyCurrentContext is a context that may be current on the calling
// thread.
type PossiblyCurrentContext struct {
	backend glcontext.Backend
	egl     *egl.PossiblyCurrentContext
	glx     *glx.PossiblyCurrentContext
	wgl     *wgl.PossiblyCurrentContext
}

func checkDrawables(b glcontext.Backend, ds ...Drawable) error {
	for _, d := range ds {
		if d == nil || d.isNil() {
			return glerr.BadAPIUsagef("nil surface")
		}
		if d.Backend() != b {
			return glerr.BadAPIUsagef("%s surface used with a %s context", d.Backend(), b)
		}
	}
	return nil
}

// MakeCurrent binds the context to surf for drawing and reading.
func (c *NotCurrentContext) MakeCurrent(surf Drawable) (*PossiblyCurrentContext, error) {
	return c.MakeCurrentDrawRead(surf, surf)
}

// MakeCurrentDrawRead binds the context to draw and read.
func (c *NotCurrentContext) MakeCurrentDrawRead(draw, read Drawable) (*PossiblyCurrentContext, error) {
	if err := checkDrawables(c.backend, draw, read); err != nil {
		return nil, err
	}
	p := &PossiblyCurrentContext{backend: c.backend}
	var err error
	switch c.backend {
	case glcontext.BackendEGL:
		p.egl, err = c.egl.MakeCurrentDrawRead(draw.eglDrawable(), read.eglDrawable())
	case glcontext.BackendGLX:
		p.glx, err = c.glx.MakeCurrentDrawRead(draw.glxDrawable(), read.glxDrawable())
	case glcontext.BackendWGL:
		p.wgl, err = c.wgl.MakeCurrentDrawRead(draw.wglDrawable(), read.wglDrawable())
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// MakeCurrentSurfaceless binds the context without a surface.
func (c *NotCurrentContext) MakeCurrentSurfaceless() (*PossiblyCurrentContext, error) {
	p := &PossiblyCurrentContext{backend: c.backend}
	var err error
	switch c.backend {
	case glcontext.BackendEGL:
		p.egl, err = c.egl.MakeCurrentSurfaceless()
	case glcontext.BackendGLX:
		p.glx, err = c.glx.MakeCurrentSurfaceless()
	case glcontext.BackendWGL:
		p.wgl, err = c.wgl.MakeCurrentSurfaceless()
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// TreatAsPossiblyCurrent returns the context as possibly current without
// any native call.
func (c *NotCurrentContext) TreatAsPossiblyCurrent() *PossiblyCurrentContext {
	p := &PossiblyCurrentContext{backend: c.backend}
	switch c.backend {
	case glcontext.BackendEGL:
		p.egl = c.egl.TreatAsPossiblyCurrent()
	case glcontext.BackendGLX:
		p.glx = c.glx.TreatAsPossiblyCurrent()
	case glcontext.BackendWGL:
		p.wgl = c.wgl.TreatAsPossiblyCurrent()
	}
	return p
}

// Backend reports the backend of the context.
func (c *NotCurrentContext) Backend() glcontext.Backend { return c.backend }

// RawContext returns the native context handle, for sharing.
func (c *NotCurrentContext) RawContext() uintptr { return c.Raw() }

// Raw returns the EGLContext, GLXContext or HGLRC.
func (c *NotCurrentContext) Raw() uintptr {
	switch c.backend {
	case glcontext.BackendEGL:
		return c.egl.Raw()
	case glcontext.BackendGLX:
		return c.glx.Raw()
	case glcontext.BackendWGL:
		return c.wgl.Raw()
	}
	return 0
}

func (c *NotCurrentContext) API() glcontext.API {
	switch c.backend {
	case glcontext.BackendEGL:
		return c.egl.API()
	case glcontext.BackendGLX:
		return c.glx.API()
	case glcontext.BackendWGL:
		return c.wgl.API()
	}
	return glcontext.APIUnspecified
}

func (c *NotCurrentContext) Version() glcontext.Version {
	switch c.backend {
	case glcontext.BackendEGL:
		return c.egl.Version()
	case glcontext.BackendGLX:
		return c.glx.Version()
	case glcontext.BackendWGL:
		return c.wgl.Version()
	}
	return glcontext.Latest
}

func (c *NotCurrentContext) Robustness() glcontext.Robustness {
	switch c.backend {
	case glcontext.BackendEGL:
		return c.egl.Robustness()
	case glcontext.BackendGLX:
		return c.glx.Robustness()
	case glcontext.BackendWGL:
		return c.wgl.Robustness()
	}
	return glcontext.NotRobust
}

// Config returns the config the context was created with.
func (c *NotCurrentContext) Config() *Config {
	switch c.backend {
	case glcontext.BackendEGL:
		return &Config{backend: c.backend, egl: c.egl.Config()}
	case glcontext.BackendGLX:
		return &Config{backend: c.backend, glx: c.glx.Config()}
	case glcontext.BackendWGL:
		return &Config{backend: c.backend, wgl: c.wgl.Config()}
	}
	return nil
}

// Destroy destroys the context, releasing it first if it is current.
func (c *NotCurrentContext) Destroy() {
	switch c.backend {
	case glcontext.BackendEGL:
		c.egl.Destroy()
	case glcontext.BackendGLX:
		c.glx.Destroy()
	case glcontext.BackendWGL:
		c.wgl.Destroy()
	}
}

// MakeCurrent rebinds the context to surf.
func (c *PossiblyCurrentContext) MakeCurrent(surf Drawable) error {
	return c.MakeCurrentDrawRead(surf, surf)
}

// MakeCurrentDrawRead rebinds the context to draw and read.
func (c *PossiblyCurrentContext) MakeCurrentDrawRead(draw, read Drawable) error {
	if err := checkDrawables(c.backend, draw, read); err != nil {
		return err
	}
	switch c.backend {
	case glcontext.BackendEGL:
		return c.egl.MakeCurrentDrawRead(draw.eglDrawable(), read.eglDrawable())
	case glcontext.BackendGLX:
		return c.glx.MakeCurrentDrawRead(draw.glxDrawable(), read.glxDrawable())
	case glcontext.BackendWGL:
		return c.wgl.MakeCurrentDrawRead(draw.wglDrawable(), read.wglDrawable())
	}
	return nil
}

// MakeCurrentSurfaceless rebinds the context without a surface.
func (c *PossiblyCurrentContext) MakeCurrentSurfaceless() error {
	switch c.backend {
	case glcontext.BackendEGL:
		return c.egl.MakeCurrentSurfaceless()
	case glcontext.BackendGLX:
		return c.glx.MakeCurrentSurfaceless()
	case glcontext.BackendWGL:
		return c.wgl.MakeCurrentSurfaceless()
	}
	return nil
}

// MakeNotCurrent releases the context if it is current on the calling
// thread.
func (c *PossiblyCurrentContext) MakeNotCurrent() (*NotCurrentContext, error) {
	n := &NotCurrentContext{backend: c.backend}
	var err error
	switch c.backend {
	case glcontext.BackendEGL:
		n.egl, err = c.egl.MakeNotCurrent()
	case glcontext.BackendGLX:
		n.glx, err = c.glx.MakeNotCurrent()
	case glcontext.BackendWGL:
		n.wgl, err = c.wgl.MakeNotCurrent()
	}
	if err != nil {
		return nil, err
	}
	return n, nil
}

// IsCurrent reports whether the context is current on the calling thread.
func (c *PossiblyCurrentContext) IsCurrent() bool {
	switch c.backend {
	case glcontext.BackendEGL:
		return c.egl.IsCurrent()
	case glcontext.BackendGLX:
		return c.glx.IsCurrent()
	case glcontext.BackendWGL:
		return c.wgl.IsCurrent()
	}
	return false
}

// UpdateAfterResize does nothing on EGL, GLX and WGL, which track
// drawable sizes themselves.
func (c *PossiblyCurrentContext) UpdateAfterResize() {}

// Backend reports the backend of the context.
func (c *PossiblyCurrentContext) Backend() glcontext.Backend { return c.backend }

// RawContext returns the native context handle, for sharing.
func (c *PossiblyCurrentContext) RawContext() uintptr { return c.Raw() }

// Raw returns the EGLContext, GLXContext or HGLRC.
func (c *PossiblyCurrentContext) Raw() uintptr {
	switch c.backend {
	case glcontext.BackendEGL:
		return c.egl.Raw()
	case glcontext.BackendGLX:
		return c.glx.Raw()
	case glcontext.BackendWGL:
		return c.wgl.Raw()
	}
	return 0
}

func (c *PossiblyCurrentContext) API() glcontext.API {
	switch c.backend {
	case glcontext.BackendEGL:
		return c.egl.API()
	case glcontext.BackendGLX:
		return c.glx.API()
	case glcontext.BackendWGL:
		return c.wgl.API()
	}
	return glcontext.APIUnspecified
}

func (c *PossiblyCurrentContext) Version() glcontext.Version {
	switch c.backend {
	case glcontext.BackendEGL:
		return c.egl.Version()
	case glcontext.BackendGLX:
		return c.glx.Version()
	case glcontext.BackendWGL:
		return c.wgl.Version()
	}
	return glcontext.Latest
}

// Config returns the config the context was created with.
func (c *PossiblyCurrentContext) Config() *Config {
	switch c.backend {
	case glcontext.BackendEGL:
		return &Config{backend: c.backend, egl: c.egl.Config()}
	case glcontext.BackendGLX:
		return &Config{backend: c.backend, glx: c.glx.Config()}
	case glcontext.BackendWGL:
		return &Config{backend: c.backend, wgl: c.wgl.Config()}
	}
	return nil
}

// Destroy destroys the context, releasing it first if it is current.
func (c *PossiblyCurrentContext) Destroy() {
	switch c.backend {
	case glcontext.BackendEGL:
		c.egl.Destroy()
	case glcontext.BackendGLX:
		c.glx.Destroy()
	case glcontext.BackendWGL:
		c.wgl.Destroy()
	}
}
