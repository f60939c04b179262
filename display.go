package glctx

import (
	"fmt"

	"github.com/tinyrange/glctx/caps"
	"github.com/tinyrange/glctx/config"
	"github.com/tinyrange/glctx/egl"
	"github.com/tinyrange/glctx/glcontext"
	"github.com/tinyrange/glctx/glerr"
	"github.com/tinyrange/glctx/glx"
	"github.com/tinyrange/glctx/internal/glog"
	"github.com/tinyrange/glctx/rawhandle"
	"github.com/tinyrange/glctx/surface"
	"github.com/tinyrange/glctx/wgl"
)

// Display is a display opened on one backend. Exactly one of the backend
// variants is set, as reported by Backend.
type Display struct {
	backend glcontext.Backend
	egl     *egl.Display
	glx     *glx.Display
	wgl     *wgl.Display
}

// NewDisplay opens native on the backends of pref in order and returns
// the first that succeeds. When all fail the error lists each backend's
// failure.
func NewDisplay(p Platform, native rawhandle.Display, pref Preference, opts ...Option) (*Display, error) {
	const op = "glctx.NewDisplay"
	backends := pref.Backends()
	if len(backends) == 0 {
		return nil, glerr.BadAPIUsagef("unknown display preference %s", pref)
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var errs error
	for _, b := range backends {
		d, err := open(p, b, native, o)
		if err == nil {
			glog.Or(o.logger).Debug("glctx display opened", "backend", b, "preference", pref)
			return d, nil
		}
		glog.Or(o.logger).Debug("glctx backend failed", "backend", b, "err", err)
		errs = glerr.Append(errs, fmt.Errorf("%s: %w", b, err))
	}
	if len(backends) == 1 {
		return nil, glerr.Errors(errs)[0]
	}
	return nil, &glerr.Error{
		Kind:   glerr.KindOf(errs),
		Op:     op,
		Reason: fmt.Sprintf("no backend of %s opened %s", pref, native),
		Err:    errs,
	}
}

func open(p Platform, b glcontext.Backend, native rawhandle.Display, o options) (*Display, error) {
	if !p.has(b) {
		return nil, glerr.NotSupportedf("%s library is not loaded", b)
	}
	d := &Display{backend: b}
	var err error
	switch b {
	case glcontext.BackendEGL:
		d.egl, err = egl.NewDisplay(p.EGL, native, o.egl()...)
	case glcontext.BackendGLX:
		d.glx, err = glx.NewDisplay(p.GLX, native, o.glx()...)
	case glcontext.BackendWGL:
		d.wgl, err = wgl.NewDisplay(p.WGL, native, o.wgl()...)
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Backend reports which backend the display was opened on.
func (d *Display) Backend() glcontext.Backend { return d.backend }

// EGL returns the EGL variant, or nil.
func (d *Display) EGL() *egl.Display { return d.egl }

// GLX returns the GLX variant, or nil.
func (d *Display) GLX() *glx.Display { return d.glx }

// WGL returns the WGL variant, or nil.
func (d *Display) WGL() *wgl.Display { return d.wgl }

// Version returns the EGL or GLX version. WGL has none and reports 0.0.
func (d *Display) Version() (major, minor int) {
	switch d.backend {
	case glcontext.BackendEGL:
		return d.egl.Version()
	case glcontext.BackendGLX:
		return d.glx.Version()
	}
	return 0, 0
}

// Extensions returns the backend extensions in lexical order.
func (d *Display) Extensions() []string {
	switch d.backend {
	case glcontext.BackendEGL:
		return d.egl.Extensions()
	case glcontext.BackendGLX:
		return d.glx.Extensions()
	case glcontext.BackendWGL:
		return d.wgl.Extensions()
	}
	return nil
}

// HasExtension reports whether the backend advertises name.
func (d *Display) HasExtension(name string) bool {
	switch d.backend {
	case glcontext.BackendEGL:
		return d.egl.HasExtension(name)
	case glcontext.BackendGLX:
		return d.glx.HasExtension(name)
	case glcontext.BackendWGL:
		return d.wgl.HasExtension(name)
	}
	return false
}

// Features returns the capability set of the display.
func (d *Display) Features() caps.Features {
	switch d.backend {
	case glcontext.BackendEGL:
		return d.egl.Features()
	case glcontext.BackendGLX:
		return d.glx.Features()
	case glcontext.BackendWGL:
		return d.wgl.Features()
	}
	return 0
}

// GetProcAddress resolves a GL entry point for contexts of the display.
func (d *Display) GetProcAddress(name string) uintptr {
	switch d.backend {
	case glcontext.BackendEGL:
		return d.egl.GetProcAddress(name)
	case glcontext.BackendGLX:
		return d.glx.GetProcAddress(name)
	case glcontext.BackendWGL:
		return d.wgl.GetProcAddress(name)
	}
	return 0
}

// FindConfigs returns the configs matching t, in the backend's order.
func (d *Display) FindConfigs(t config.Template) ([]*Config, error) {
	var out []*Config
	switch d.backend {
	case glcontext.BackendEGL:
		cs, err := d.egl.FindConfigs(t)
		if err != nil {
			return nil, err
		}
		for _, c := range cs {
			out = append(out, &Config{backend: d.backend, egl: c})
		}
	case glcontext.BackendGLX:
		cs, err := d.glx.FindConfigs(t)
		if err != nil {
			return nil, err
		}
		for _, c := range cs {
			out = append(out, &Config{backend: d.backend, glx: c})
		}
	case glcontext.BackendWGL:
		cs, err := d.wgl.FindConfigs(t)
		if err != nil {
			return nil, err
		}
		for _, c := range cs {
			out = append(out, &Config{backend: d.backend, wgl: c})
		}
	}
	return out, nil
}

// check rejects a config of another backend before any native call.
func (d *Display) check(cfg *Config) error {
	if cfg == nil {
		return glerr.BadAPIUsagef("nil config")
	}
	if cfg.backend != d.backend {
		return glerr.BadAPIUsagef("%s config used with a %s display", cfg.backend, d.backend)
	}
	return nil
}

// CreateContext creates a context for cfg.
func (d *Display) CreateContext(cfg *Config, attrs glcontext.Attributes) (*NotCurrentContext, error) {
	if err := d.check(cfg); err != nil {
		return nil, err
	}
	if attrs.Shared != nil && attrs.Shared.Backend() != d.backend {
		return nil, glerr.BadAPIUsagef("cannot share objects with a %s context", attrs.Shared.Backend())
	}
	c := &NotCurrentContext{backend: d.backend}
	var err error
	switch d.backend {
	case glcontext.BackendEGL:
		c.egl, err = d.egl.CreateContext(cfg.egl, attrs)
	case glcontext.BackendGLX:
		c.glx, err = d.glx.CreateContext(cfg.glx, attrs)
	case glcontext.BackendWGL:
		c.wgl, err = d.wgl.CreateContext(cfg.wgl, attrs)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// CreateWindowSurface creates a window surface for win.
func (d *Display) CreateWindowSurface(cfg *Config, win rawhandle.Window, attrs surface.Attributes) (*Surface[surface.Window], error) {
	if err := d.check(cfg); err != nil {
		return nil, err
	}
	s := &Surface[surface.Window]{backend: d.backend}
	var err error
	switch d.backend {
	case glcontext.BackendEGL:
		s.egl, err = d.egl.CreateWindowSurface(cfg.egl, win, attrs)
	case glcontext.BackendGLX:
		s.glx, err = d.glx.CreateWindowSurface(cfg.glx, win, attrs)
	case glcontext.BackendWGL:
		s.wgl, err = d.wgl.CreateWindowSurface(cfg.wgl, win, attrs)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// CreatePBufferSurface creates an offscreen pbuffer surface.
func (d *Display) CreatePBufferSurface(cfg *Config, attrs surface.Attributes) (*Surface[surface.PBuffer], error) {
	if err := d.check(cfg); err != nil {
		return nil, err
	}
	s := &Surface[surface.PBuffer]{backend: d.backend}
	var err error
	switch d.backend {
	case glcontext.BackendEGL:
		s.egl, err = d.egl.CreatePBufferSurface(cfg.egl, attrs)
	case glcontext.BackendGLX:
		s.glx, err = d.glx.CreatePBufferSurface(cfg.glx, attrs)
	case glcontext.BackendWGL:
		s.wgl, err = d.wgl.CreatePBufferSurface(cfg.wgl, attrs)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// CreatePixmapSurface creates a surface rendering into pix.
func (d *Display) CreatePixmapSurface(cfg *Config, pix rawhandle.Pixmap, attrs surface.Attributes) (*Surface[surface.Pixmap], error) {
	if err := d.check(cfg); err != nil {
		return nil, err
	}
	s := &Surface[surface.Pixmap]{backend: d.backend}
	var err error
	switch d.backend {
	case glcontext.BackendEGL:
		s.egl, err = d.egl.CreatePixmapSurface(cfg.egl, pix, attrs)
	case glcontext.BackendGLX:
		s.glx, err = d.glx.CreatePixmapSurface(cfg.glx, pix, attrs)
	case glcontext.BackendWGL:
		s.wgl, err = d.wgl.CreatePixmapSurface(cfg.wgl, pix, attrs)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Destroy releases what the backend created for the display.
func (d *Display) Destroy() {
	switch d.backend {
	case glcontext.BackendEGL:
		d.egl.Destroy()
	case glcontext.BackendGLX:
		d.glx.Destroy()
	case glcontext.BackendWGL:
		d.wgl.Destroy()
	}
}

func (d *Display) String() string {
	switch d.backend {
	case glcontext.BackendEGL:
		return d.egl.String()
	case glcontext.BackendGLX:
		return d.glx.String()
	case glcontext.BackendWGL:
		return d.wgl.String()
	}
	return "none"
}
