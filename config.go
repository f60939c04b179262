package glctx

import (
	"github.com/tinyrange/glctx/config"
	"github.com/tinyrange/glctx/egl"
	"github.com/tinyrange/glctx/glcontext"
	"github.com/tinyrange/glctx/glx"
	"github.com/tinyrange/glctx/internal/x11"
	"github.com/tinyrange/glctx/wgl"
)

// Config is a framebuffer config of one backend.
type Config struct {
	backend glcontext.Backend
	egl     *egl.Config
	glx     *glx.Config
	wgl     *wgl.Config
}

// Backend reports the backend of the config.
func (c *Config) Backend() glcontext.Backend { return c.backend }

// EGL returns the EGL variant, or nil.
func (c *Config) EGL() *egl.Config { return c.egl }

// GLX returns the GLX variant, or nil.
func (c *Config) GLX() *glx.Config { return c.glx }

// WGL returns the WGL variant, or nil.
func (c *Config) WGL() *wgl.Config { return c.wgl }

// Attribs returns the attributes of the config.
func (c *Config) Attribs() config.Attribs {
	switch c.backend {
	case glcontext.BackendEGL:
		return c.egl.Attribs()
	case glcontext.BackendGLX:
		return c.glx.Attribs()
	case glcontext.BackendWGL:
		return c.wgl.Attribs()
	}
	return config.Attribs{}
}

// Raw returns the EGLConfig, GLXFBConfig or pixel format index.
func (c *Config) Raw() uintptr {
	switch c.backend {
	case glcontext.BackendEGL:
		return c.egl.Raw()
	case glcontext.BackendGLX:
		return c.glx.Raw()
	case glcontext.BackendWGL:
		return uintptr(c.wgl.Raw())
	}
	return 0
}

// SwapIntervalRange returns the swap intervals surfaces of the config
// accept.
func (c *Config) SwapIntervalRange() (config.SwapIntervalRange, error) {
	switch c.backend {
	case glcontext.BackendEGL:
		return c.egl.SwapIntervalRange()
	case glcontext.BackendGLX:
		return c.glx.SwapIntervalRange()
	case glcontext.BackendWGL:
		return c.wgl.SwapIntervalRange()
	}
	return config.SwapIntervalRange{}, nil
}

// X11Visual returns the visual X windows for this config must use. WGL
// configs have none.
func (c *Config) X11Visual() (x11.VisualInfo, bool) {
	switch c.backend {
	case glcontext.BackendEGL:
		return c.egl.X11Visual()
	case glcontext.BackendGLX:
		return c.glx.X11Visual()
	}
	return x11.VisualInfo{}, false
}

func (c *Config) String() string {
	switch c.backend {
	case glcontext.BackendEGL:
		return c.egl.String()
	case glcontext.BackendGLX:
		return c.glx.String()
	case glcontext.BackendWGL:
		return c.wgl.String()
	}
	return "none"
}

// BestConfig picks the config config.Best ranks highest, or nil.
func BestConfig(configs []*Config) *Config {
	attribs := make([]config.Attribs, len(configs))
	for i, c := range configs {
		attribs[i] = c.Attribs()
	}
	i := config.Best(attribs, nil)
	if i < 0 {
		return nil
	}
	return configs[i]
}
