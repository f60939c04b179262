package egl

import (
	"fmt"

	"github.com/tinyrange/glctx/caps"
	"github.com/tinyrange/glctx/config"
	"github.com/tinyrange/glctx/glcontext"
	"github.com/tinyrange/glctx/glerr"
)

// contextState is shared by the NotCurrentContext and
// PossiblyCurrentContext values of one EGLContext.
type contextState struct {
	display    *Display
	config     *Config
	raw        uintptr
	api        glcontext.API
	version    glcontext.Version
	robustness glcontext.Robustness
	destroyed  bool
}

// NotCurrentContext is a context known not to be current on the calling
// thread. Making it current yields a PossiblyCurrentContext for the same
// EGLContext; the NotCurrentContext should not be used afterwards.
//
// A context is current on an OS thread: pin the goroutine with
// runtime.LockOSThread before making a context current.
type NotCurrentContext struct {
	s *contextState
}

// PossiblyCurrentContext is a context that may be current on the calling
// thread.
type PossiblyCurrentContext struct {
	s *contextState
}

// Drawable is a surface a context can be made current with.
type Drawable interface {
	state() *surfaceState
}

// CreateContext creates a context for cfg. When attrs asks for the latest
// version, versions are tried newest first until the driver accepts one.
func (d *Display) CreateContext(cfg *Config, attrs glcontext.Attributes) (*NotCurrentContext, error) {
	const op = "egl.CreateContext"
	if cfg == nil || cfg.display != d {
		return nil, glerr.BadAPIUsagef("config does not belong to this display")
	}
	var share uintptr
	if attrs.Shared != nil {
		if b := attrs.Shared.Backend(); b != glcontext.BackendEGL {
			return nil, glerr.BadAPIUsagef("cannot share objects with a %s context", b)
		}
		share = attrs.Shared.RawContext()
	}

	api := attrs.ResolveAPI(cfg.attribs.API)
	if api == glcontext.GLES && !d.features.Has(caps.CreateESContext) {
		return nil, &glerr.Error{Kind: glerr.NotSupported, Op: op, Reason: "display does not support OpenGL ES"}
	}
	// EGL_CONTEXT_OPENGL_NO_ERROR_KHR exists only in the
	// EGL_KHR_create_context attribute set.
	robustness, err := attrs.Robustness.Grant(op,
		d.features.Has(caps.ContextRobustness),
		d.features.Has(caps.ContextNoError|caps.CreateContextWithAttribs))
	if err != nil {
		return nil, err
	}
	if robustness != attrs.Robustness {
		d.logger().Debug("egl: robustness unsupported, continuing without", "requested", attrs.Robustness)
	}
	if attrs.ReleaseBehavior == glcontext.ReleaseNone && !d.features.Has(caps.FlushControl) {
		return nil, &glerr.Error{Kind: glerr.FlushControlNotSupported, Op: op, Reason: "EGL_KHR_context_flush_control is missing"}
	}
	khr := d.features.Has(caps.CreateContextWithAttribs)
	if attrs.Profile != glcontext.ProfileUnspecified && (api != glcontext.OpenGL || !khr) {
		return nil, &glerr.Error{Kind: glerr.NotSupported, Op: op, Reason: "profiles need desktop OpenGL and EGL_KHR_create_context"}
	}

	ladder := attrs.Version.IsLatest()
	versions := []glcontext.Version{attrs.Version}
	switch {
	case ladder && khr:
		versions = glcontext.Ladder(api)
	case ladder && api == glcontext.GLES:
		versions = []glcontext.Version{{Major: 3}, {Major: 2}, {Major: 1}}
	case ladder:
		// Without EGL_KHR_create_context desktop GL takes no version.
	case !khr && api == glcontext.OpenGL:
		return nil, &glerr.Error{Kind: glerr.NotSupported, Op: op, Reason: "selecting a desktop OpenGL version needs EGL_KHR_create_context"}
	}

	var lastCode int32
	for _, v := range versions {
		if need := glcontext.ConfigAPI(api, v); cfg.attribs.API != 0 && cfg.attribs.API&need == 0 {
			if !ladder {
				return nil, &glerr.Error{Kind: glerr.BadConfig, Op: op, Reason: fmt.Sprintf("config does not render %s", need)}
			}
			continue
		}
		// The bound API decides what eglCreateContext creates, and it is
		// per thread, so bind right before every attempt.
		if err := d.bindAPI(api); err != nil {
			return nil, err
		}
		raw := d.lib.CreateContext(d.raw, cfg.raw, share, d.contextAttribs(api, v, attrs, robustness, khr))
		if raw != 0 {
			d.logger().Debug("egl context created", "api", api, "version", v, "robustness", robustness)
			return &NotCurrentContext{s: &contextState{
				display:    d,
				config:     cfg,
				raw:        raw,
				api:        api,
				version:    v,
				robustness: robustness,
			}}, nil
		}
		lastCode = d.lib.GetError()
		if !ladderFailure(lastCode) {
			return nil, nativeError("eglCreateContext", lastCode)
		}
		d.logger().Debug("egl context version refused", "api", api, "version", v, "err", errorName(lastCode))
	}
	e := &glerr.Error{
		Kind:   glerr.OpenGLVersionNotSupported,
		Op:     op,
		Reason: fmt.Sprintf("no %s version accepted", api),
	}
	if lastCode != 0 {
		e.Code, e.CodeName = int64(lastCode), errorName(lastCode)
	}
	return nil, e
}

// contextAttribs builds the EGL_NONE terminated eglCreateContext list.
func (d *Display) contextAttribs(api glcontext.API, v glcontext.Version, attrs glcontext.Attributes, robustness glcontext.Robustness, khr bool) []int32 {
	var a []int32
	add := func(k, v int32) { a = append(a, k, v) }
	is15 := d.atLeast(1, 5)

	if !khr {
		if api == glcontext.GLES {
			// EGL_CONTEXT_CLIENT_VERSION shares the value of the major
			// version attribute.
			add(_EGL_CONTEXT_MAJOR_VERSION, int32(v.Major))
		}
		if robustness.IsRobust() {
			add(_EGL_CONTEXT_OPENGL_ROBUST_ACCESS_EXT, _EGL_TRUE)
			add(_EGL_CONTEXT_RESET_NOTIFICATION_STRATEGY_EXT, resetStrategy(robustness))
		}
		return append(a, _EGL_NONE)
	}

	if !v.IsLatest() {
		add(_EGL_CONTEXT_MAJOR_VERSION, int32(v.Major))
		add(_EGL_CONTEXT_MINOR_VERSION, int32(v.Minor))
	}
	if api == glcontext.OpenGL && attrs.Profile != glcontext.ProfileUnspecified && v.AtLeast(glcontext.V(3, 2)) {
		mask := int32(_EGL_CORE_PROFILE_BIT)
		if attrs.Profile == glcontext.Compatibility {
			mask = _EGL_COMPATIBILITY_PROFILE_BIT
		}
		add(_EGL_CONTEXT_PROFILE_MASK, mask)
	}

	var flags int32
	if attrs.Debug {
		if is15 {
			add(_EGL_CONTEXT_OPENGL_DEBUG, _EGL_TRUE)
		} else {
			flags |= _EGL_CONTEXT_DEBUG_BIT_KHR
		}
	}
	switch {
	case robustness == glcontext.NoError:
		add(_EGL_CONTEXT_OPENGL_NO_ERROR_KHR, _EGL_TRUE)
	case robustness.IsRobust() && is15:
		add(_EGL_CONTEXT_OPENGL_ROBUST_ACCESS, _EGL_TRUE)
		add(_EGL_CONTEXT_OPENGL_RESET_NOTIFICATION_STRATEGY, resetStrategy(robustness))
	case robustness.IsRobust():
		add(_EGL_CONTEXT_OPENGL_ROBUST_ACCESS_EXT, _EGL_TRUE)
		add(_EGL_CONTEXT_RESET_NOTIFICATION_STRATEGY_EXT, resetStrategy(robustness))
	}
	if flags != 0 {
		add(_EGL_CONTEXT_FLAGS_KHR, flags)
	}
	if attrs.ReleaseBehavior == glcontext.ReleaseNone {
		add(_EGL_CONTEXT_RELEASE_BEHAVIOR_KHR, _EGL_CONTEXT_RELEASE_BEHAVIOR_NONE_KHR)
	}
	if d.features.Has(caps.ContextPriority) && attrs.Priority != glcontext.PriorityMedium {
		add(_EGL_CONTEXT_PRIORITY_LEVEL_IMG, priorityLevel(attrs.Priority))
	}
	return append(a, _EGL_NONE)
}

func resetStrategy(r glcontext.Robustness) int32 {
	if r.LoseContextOnReset() {
		return _EGL_LOSE_CONTEXT_ON_RESET
	}
	return _EGL_NO_RESET_NOTIFICATION
}

func priorityLevel(p glcontext.Priority) int32 {
	switch p {
	case glcontext.PriorityLow:
		return _EGL_CONTEXT_PRIORITY_LOW_IMG
	case glcontext.PriorityHigh, glcontext.PriorityRealtime:
		return _EGL_CONTEXT_PRIORITY_HIGH_IMG
	}
	return _EGL_CONTEXT_PRIORITY_MEDIUM_IMG
}

// MakeCurrent binds the context to surf for drawing and reading.
func (c *NotCurrentContext) MakeCurrent(surf Drawable) (*PossiblyCurrentContext, error) {
	return c.MakeCurrentDrawRead(surf, surf)
}

// MakeCurrentDrawRead binds the context with separate draw and read
// surfaces.
func (c *NotCurrentContext) MakeCurrentDrawRead(draw, read Drawable) (*PossiblyCurrentContext, error) {
	if err := c.s.makeCurrent(stateOf(draw), stateOf(read)); err != nil {
		return nil, err
	}
	return &PossiblyCurrentContext{s: c.s}, nil
}

// MakeCurrentSurfaceless binds the context without a surface.
func (c *NotCurrentContext) MakeCurrentSurfaceless() (*PossiblyCurrentContext, error) {
	if err := c.s.makeCurrentSurfaceless(); err != nil {
		return nil, err
	}
	return &PossiblyCurrentContext{s: c.s}, nil
}

// TreatAsPossiblyCurrent returns the context as possibly current without
// any native call, for callers that know the binding state better.
func (c *NotCurrentContext) TreatAsPossiblyCurrent() *PossiblyCurrentContext {
	return &PossiblyCurrentContext{s: c.s}
}

func (c *NotCurrentContext) Config() *Config                  { return c.s.config }
func (c *NotCurrentContext) Display() *Display                { return c.s.display }
func (c *NotCurrentContext) API() glcontext.API               { return c.s.api }
func (c *NotCurrentContext) Version() glcontext.Version       { return c.s.version }
func (c *NotCurrentContext) Raw() uintptr                     { return c.s.raw }
func (c *NotCurrentContext) Backend() glcontext.Backend       { return glcontext.BackendEGL }
func (c *NotCurrentContext) RawContext() uintptr              { return c.s.raw }
func (c *NotCurrentContext) Robustness() glcontext.Robustness { return c.s.robustness }

// Destroy destroys the context, releasing it first if it is current.
func (c *NotCurrentContext) Destroy() { c.s.destroy() }

// MakeCurrent rebinds the context to surf.
func (c *PossiblyCurrentContext) MakeCurrent(surf Drawable) error {
	return c.s.makeCurrent(stateOf(surf), stateOf(surf))
}

// MakeCurrentDrawRead rebinds the context with separate draw and read
// surfaces.
func (c *PossiblyCurrentContext) MakeCurrentDrawRead(draw, read Drawable) error {
	return c.s.makeCurrent(stateOf(draw), stateOf(read))
}

// MakeCurrentSurfaceless rebinds the context without a surface.
func (c *PossiblyCurrentContext) MakeCurrentSurfaceless() error {
	return c.s.makeCurrentSurfaceless()
}

// MakeNotCurrent releases the context from the calling thread. It does
// nothing when the context is not current, so it never unbinds a context
// some other code made current.
func (c *PossiblyCurrentContext) MakeNotCurrent() (*NotCurrentContext, error) {
	if err := c.s.makeNotCurrent(); err != nil {
		return nil, err
	}
	return &NotCurrentContext{s: c.s}, nil
}

// IsCurrent reports whether the context is current on the calling thread.
func (c *PossiblyCurrentContext) IsCurrent() bool { return c.s.isCurrent() }

// UpdateAfterResize does nothing: EGL tracks window sizes itself.
func (c *PossiblyCurrentContext) UpdateAfterResize() {}

func (c *PossiblyCurrentContext) Config() *Config                  { return c.s.config }
func (c *PossiblyCurrentContext) Display() *Display                { return c.s.display }
func (c *PossiblyCurrentContext) API() glcontext.API               { return c.s.api }
func (c *PossiblyCurrentContext) Version() glcontext.Version       { return c.s.version }
func (c *PossiblyCurrentContext) Raw() uintptr                     { return c.s.raw }
func (c *PossiblyCurrentContext) Backend() glcontext.Backend       { return glcontext.BackendEGL }
func (c *PossiblyCurrentContext) RawContext() uintptr              { return c.s.raw }
func (c *PossiblyCurrentContext) Robustness() glcontext.Robustness { return c.s.robustness }

// Destroy destroys the context, releasing it first if it is current.
func (c *PossiblyCurrentContext) Destroy() { c.s.destroy() }

func (s *contextState) makeCurrent(draw, read *surfaceState) error {
	d := s.display
	if s.destroyed {
		return glerr.BadAPIUsagef("context is destroyed")
	}
	if draw == nil || read == nil {
		return glerr.BadAPIUsagef("nil surface")
	}
	for _, surf := range []*surfaceState{draw, read} {
		if surf.display != d {
			return glerr.BadAPIUsagef("surface belongs to another display")
		}
		if surf.destroyed {
			return glerr.BadAPIUsagef("%s surface is destroyed", surf.kind)
		}
		if surf.raw == 0 {
			return glerr.New(glerr.ContextLost, "eglMakeCurrent", "surface is EGL_NO_SURFACE")
		}
	}
	if err := d.bindAPI(s.api); err != nil {
		return err
	}

	first := draw.kind.SurfaceTypes() == config.WindowSurface && !draw.hasBeenCurrent
	if first && draw.attrs.SwapInterval == nil {
		// Drivers default to vsync on; turn it off unless the caller asked
		// for an interval.
		err := d.withCurrent(s.raw, draw.raw, func() {
			if !d.lib.SwapInterval(d.raw, 0) {
				d.logger().Debug("egl: disabling vsync failed", "err", lastError(d.lib, "eglSwapInterval"))
			}
		})
		if err != nil {
			return err
		}
	}

	if !d.lib.MakeCurrent(d.raw, draw.raw, read.raw, s.raw) {
		return currentError(d.lib, "eglMakeCurrent")
	}
	if first {
		draw.hasBeenCurrent = true
		if iv := draw.attrs.SwapInterval; iv != nil {
			if !d.lib.SwapInterval(d.raw, iv.Native()) {
				return lastError(d.lib, "eglSwapInterval")
			}
		}
	}
	return nil
}

func (s *contextState) makeCurrentSurfaceless() error {
	d := s.display
	if s.destroyed {
		return glerr.BadAPIUsagef("context is destroyed")
	}
	if !d.features.Has(caps.SurfacelessContext) {
		return glerr.NotSupportedf("surfaceless contexts need EGL 1.5 or EGL_KHR_surfaceless_context")
	}
	if err := d.bindAPI(s.api); err != nil {
		return err
	}
	if !d.lib.MakeCurrent(d.raw, 0, 0, s.raw) {
		return currentError(d.lib, "eglMakeCurrent")
	}
	return nil
}

func (s *contextState) makeNotCurrent() error {
	d := s.display
	if err := d.bindAPI(s.api); err != nil {
		return err
	}
	if d.lib.GetCurrentContext() != s.raw {
		return nil
	}
	if !d.lib.MakeCurrent(d.raw, 0, 0, 0) {
		return currentError(d.lib, "eglMakeCurrent")
	}
	return nil
}

func (s *contextState) isCurrent() bool {
	d := s.display
	if s.destroyed || d.bindAPI(s.api) != nil {
		return false
	}
	return d.lib.GetCurrentContext() == s.raw
}

func (s *contextState) destroy() {
	if s.destroyed {
		return
	}
	s.destroyed = true
	d := s.display
	if err := d.bindAPI(s.api); err != nil {
		d.logger().Debug("egl: bind api before destroy failed", "err", err)
	}
	d.releaseIfBound(s.raw, 0)
	if !d.lib.DestroyContext(d.raw, s.raw) {
		d.logger().Debug("egl: destroying context failed", "err", lastError(d.lib, "eglDestroyContext"))
	}
}
