package glx

import (
	"fmt"

	"github.com/tinyrange/glctx/caps"
	"github.com/tinyrange/glctx/config"
	"github.com/tinyrange/glctx/glcontext"
	"github.com/tinyrange/glctx/glerr"
	"github.com/tinyrange/glctx/internal/x11"
)

type contextState struct {
	display    *Display
	config     *Config
	raw        uintptr
	api        glcontext.API
	version    glcontext.Version
	robustness glcontext.Robustness
	destroyed  bool
}

// NotCurrentContext is a GLXContext known not to be current on the
// calling thread.
//
// A context is current on an OS thread: pin the goroutine with
// runtime.LockOSThread before making a context current.
type NotCurrentContext struct {
	s *contextState
}

// PossiblyCurrentContext is a GLXContext that may be current on the
// calling thread.
type PossiblyCurrentContext struct {
	s *contextState
}

// Drawable is a surface a context can be made current with.
type Drawable interface {
	state() *surfaceState
}

// CreateContext creates a direct-rendering context for cfg. With
// GLX_ARB_create_context, Latest tries versions newest first; without it
// only a legacy desktop OpenGL context of the driver's choosing can be
// created.
func (d *Display) CreateContext(cfg *Config, attrs glcontext.Attributes) (*NotCurrentContext, error) {
	const op = "glx.CreateContext"
	if cfg == nil || cfg.display != d {
		return nil, glerr.BadAPIUsagef("config does not belong to this display")
	}
	var share uintptr
	if attrs.Shared != nil {
		if b := attrs.Shared.Backend(); b != glcontext.BackendGLX {
			return nil, glerr.BadAPIUsagef("cannot share objects with a %s context", b)
		}
		share = attrs.Shared.RawContext()
	}

	api := attrs.ResolveAPI(cfg.attribs.API)
	arb := d.features.Has(caps.CreateContextWithAttribs)
	if api == glcontext.GLES && !d.features.Has(caps.CreateESContext) {
		return nil, &glerr.Error{Kind: glerr.NotSupported, Op: op, Reason: "OpenGL ES needs GLX_EXT_create_context_es2_profile"}
	}
	robustness, err := attrs.Robustness.Grant(op,
		d.features.Has(caps.ContextRobustness),
		d.features.Has(caps.ContextNoError))
	if err != nil {
		return nil, err
	}
	if robustness != attrs.Robustness {
		d.logger().Debug("glx: robustness unsupported, continuing without", "requested", attrs.Robustness)
	}
	if attrs.ReleaseBehavior == glcontext.ReleaseNone && !d.features.Has(caps.FlushControl) {
		return nil, &glerr.Error{Kind: glerr.FlushControlNotSupported, Op: op, Reason: "GLX_ARB_context_flush_control is missing"}
	}
	if attrs.Profile != glcontext.ProfileUnspecified && (api != glcontext.OpenGL || !d.features.Has(caps.ContextProfile)) {
		return nil, &glerr.Error{Kind: glerr.NotSupported, Op: op, Reason: "profiles need desktop OpenGL and GLX_ARB_create_context_profile"}
	}
	if attrs.Priority != glcontext.PriorityMedium {
		d.logger().Debug("glx: context priority ignored", "priority", attrs.Priority)
	}

	if !arb {
		if !attrs.Version.IsLatest() {
			return nil, &glerr.Error{Kind: glerr.NotSupported, Op: op, Reason: "selecting a version needs GLX_ARB_create_context"}
		}
		return d.createLegacy(cfg, share, robustness)
	}

	ladder := attrs.Version.IsLatest()
	versions := []glcontext.Version{attrs.Version}
	if ladder {
		versions = glcontext.Ladder(api)
	}
	var lastCode int32
	for _, v := range versions {
		if need := glcontext.ConfigAPI(api, v); cfg.attribs.API&need == 0 {
			if !ladder {
				return nil, &glerr.Error{Kind: glerr.BadConfig, Op: op, Reason: fmt.Sprintf("config does not render %s", need)}
			}
			continue
		}
		list := d.contextAttribs(api, v, attrs, robustness)
		var raw uintptr
		code := d.trap(func() {
			raw = d.lib.CreateContextAttribsARB(d.raw, cfg.raw, share, true, list)
		})
		if raw != 0 && code == x11.Success {
			d.logger().Debug("glx context created", "api", api, "version", v, "robustness", robustness)
			return d.newContext(cfg, raw, api, v, robustness), nil
		}
		if raw != 0 {
			d.lib.DestroyContext(d.raw, raw)
		}
		if !ladderFailure(code) {
			return nil, xError(FnCreateContextAttribsARB, code)
		}
		lastCode = code
		d.logger().Debug("glx context version refused", "api", api, "version", v, "err", xErrorName(code))
	}
	e := &glerr.Error{
		Kind:   glerr.OpenGLVersionNotSupported,
		Op:     op,
		Reason: fmt.Sprintf("no %s version accepted", api),
	}
	if lastCode != x11.Success {
		e.Code, e.CodeName = int64(lastCode), xErrorName(lastCode)
	}
	return nil, e
}

func (d *Display) createLegacy(cfg *Config, share uintptr, robustness glcontext.Robustness) (*NotCurrentContext, error) {
	var raw uintptr
	code := d.trap(func() {
		raw = d.lib.CreateNewContext(d.raw, cfg.raw, _GLX_RGBA_TYPE, share, true)
	})
	if raw == 0 || code != x11.Success {
		if raw != 0 {
			d.lib.DestroyContext(d.raw, raw)
		}
		return nil, xError("glXCreateNewContext", code)
	}
	d.logger().Debug("glx legacy context created")
	return d.newContext(cfg, raw, glcontext.OpenGL, glcontext.Latest, robustness), nil
}

func (d *Display) newContext(cfg *Config, raw uintptr, api glcontext.API, v glcontext.Version, r glcontext.Robustness) *NotCurrentContext {
	return &NotCurrentContext{s: &contextState{
		display:    d,
		config:     cfg,
		raw:        raw,
		api:        api,
		version:    v,
		robustness: r,
	}}
}

// contextAttribs builds the None terminated glXCreateContextAttribsARB
// list.
func (d *Display) contextAttribs(api glcontext.API, v glcontext.Version, attrs glcontext.Attributes, robustness glcontext.Robustness) []int32 {
	var a []int32
	add := func(k, v int32) { a = append(a, k, v) }

	if !v.IsLatest() {
		add(_GLX_CONTEXT_MAJOR_VERSION_ARB, int32(v.Major))
		add(_GLX_CONTEXT_MINOR_VERSION_ARB, int32(v.Minor))
	}
	switch {
	case api == glcontext.GLES:
		add(_GLX_CONTEXT_PROFILE_MASK_ARB, _GLX_CONTEXT_ES_PROFILE_BIT_EXT)
	case attrs.Profile == glcontext.Core && v.AtLeast(glcontext.V(3, 2)):
		add(_GLX_CONTEXT_PROFILE_MASK_ARB, _GLX_CONTEXT_CORE_PROFILE_BIT_ARB)
	case attrs.Profile == glcontext.Compatibility && v.AtLeast(glcontext.V(3, 2)):
		add(_GLX_CONTEXT_PROFILE_MASK_ARB, _GLX_CONTEXT_COMPATIBILITY_PROFILE_BIT_ARB)
	}

	var flags int32
	if attrs.Debug {
		flags |= _GLX_CONTEXT_DEBUG_BIT_ARB
	}
	switch {
	case robustness == glcontext.NoError:
		add(_GLX_CONTEXT_OPENGL_NO_ERROR_ARB, 1)
	case robustness.IsRobust():
		flags |= _GLX_CONTEXT_ROBUST_ACCESS_BIT_ARB
		strategy := int32(_GLX_NO_RESET_NOTIFICATION_ARB)
		if robustness.LoseContextOnReset() {
			strategy = _GLX_LOSE_CONTEXT_ON_RESET_ARB
		}
		add(_GLX_CONTEXT_RESET_NOTIFICATION_STRATEGY, strategy)
	}
	if flags != 0 {
		add(_GLX_CONTEXT_FLAGS_ARB, flags)
	}
	if attrs.ReleaseBehavior == glcontext.ReleaseNone {
		add(_GLX_CONTEXT_RELEASE_BEHAVIOR_ARB, _GLX_CONTEXT_RELEASE_BEHAVIOR_NONE_ARB)
	}
	return append(a, _None)
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

// MakeCurrentSurfaceless binds the context without a drawable.
func (c *NotCurrentContext) MakeCurrentSurfaceless() (*PossiblyCurrentContext, error) {
	if err := c.s.makeCurrentSurfaceless(); err != nil {
		return nil, err
	}
	return &PossiblyCurrentContext{s: c.s}, nil
}

// TreatAsPossiblyCurrent returns the context as possibly current without
// any native call.
func (c *NotCurrentContext) TreatAsPossiblyCurrent() *PossiblyCurrentContext {
	return &PossiblyCurrentContext{s: c.s}
}

func (c *NotCurrentContext) Config() *Config                  { return c.s.config }
func (c *NotCurrentContext) Display() *Display                { return c.s.display }
func (c *NotCurrentContext) API() glcontext.API               { return c.s.api }
func (c *NotCurrentContext) Version() glcontext.Version       { return c.s.version }
func (c *NotCurrentContext) Raw() uintptr                     { return c.s.raw }
func (c *NotCurrentContext) Backend() glcontext.Backend       { return glcontext.BackendGLX }
func (c *NotCurrentContext) RawContext() uintptr              { return c.s.raw }
func (c *NotCurrentContext) Robustness() glcontext.Robustness { return c.s.robustness }

// Destroy destroys the context, releasing it first if it is current.
func (c *NotCurrentContext) Destroy() { c.s.destroy() }

func (c *PossiblyCurrentContext) MakeCurrent(surf Drawable) error {
	return c.s.makeCurrent(stateOf(surf), stateOf(surf))
}

func (c *PossiblyCurrentContext) MakeCurrentDrawRead(draw, read Drawable) error {
	return c.s.makeCurrent(stateOf(draw), stateOf(read))
}

func (c *PossiblyCurrentContext) MakeCurrentSurfaceless() error {
	return c.s.makeCurrentSurfaceless()
}

// MakeNotCurrent releases the context if it is current on the calling
// thread, and does nothing otherwise.
func (c *PossiblyCurrentContext) MakeNotCurrent() (*NotCurrentContext, error) {
	c.s.makeNotCurrent()
	return &NotCurrentContext{s: c.s}, nil
}

// IsCurrent reports whether the context is current on the calling thread.
func (c *PossiblyCurrentContext) IsCurrent() bool {
	return !c.s.destroyed && c.s.display.lib.GetCurrentContext() == c.s.raw
}

// UpdateAfterResize does nothing: GLX tracks window sizes itself.
func (c *PossiblyCurrentContext) UpdateAfterResize() {}

func (c *PossiblyCurrentContext) Config() *Config                  { return c.s.config }
func (c *PossiblyCurrentContext) Display() *Display                { return c.s.display }
func (c *PossiblyCurrentContext) API() glcontext.API               { return c.s.api }
func (c *PossiblyCurrentContext) Version() glcontext.Version       { return c.s.version }
func (c *PossiblyCurrentContext) Raw() uintptr                     { return c.s.raw }
func (c *PossiblyCurrentContext) Backend() glcontext.Backend       { return glcontext.BackendGLX }
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
	}

	first := draw.kind.SurfaceTypes() == config.WindowSurface && !draw.hasBeenCurrent
	if first && draw.attrs.SwapInterval == nil {
		d.disableVsync(s.raw, draw.raw)
	}
	if !d.lib.MakeContextCurrent(d.raw, draw.raw, read.raw, s.raw) {
		panic(currentPanic("glXMakeContextCurrent", d.lib.Sync(d.raw)))
	}
	if first {
		draw.hasBeenCurrent = true
		if iv := draw.attrs.SwapInterval; iv != nil {
			return d.setSwapInterval(draw.raw, *iv)
		}
	}
	return nil
}

// disableVsync sets a swap interval of 0 on a window before its first
// bind. GLX_EXT_swap_control takes the drawable directly; MESA applies to
// the current drawable, so it goes through a transient binding.
func (d *Display) disableVsync(ctx, draw uintptr) {
	switch d.swap {
	case swapEXT:
		d.lib.SwapIntervalEXT(d.raw, draw, 0)
	case swapMESA:
		d.withCurrent(ctx, draw, func() {
			if r := d.lib.SwapIntervalMESA(0); r != 0 {
				d.logger().Debug("glx: disabling vsync failed", "code", r)
			}
		})
	}
}

// setSwapInterval applies interval to draw, which must be current when the
// extension is MESA or SGI.
func (d *Display) setSwapInterval(draw uintptr, interval config.SwapInterval) error {
	const op = "glx.SetSwapInterval"
	if r := d.swapRange(); !r.Contains(interval) {
		return &glerr.Error{Kind: glerr.NotSupported, Op: op, Reason: interval.String() + " is outside " + r.String()}
	}
	switch d.swap {
	case swapEXT:
		code := d.trap(func() { d.lib.SwapIntervalEXT(d.raw, draw, interval.Native()) })
		if code != x11.Success {
			return xError(FnSwapIntervalEXT, code)
		}
	case swapMESA:
		if r := d.lib.SwapIntervalMESA(interval.Native()); r != 0 {
			return glerr.Native(glerr.OSError, FnSwapIntervalMESA, int64(r), "")
		}
	case swapSGI:
		if r := d.lib.SwapIntervalSGI(interval.Native()); r != 0 {
			return glerr.Native(glerr.OSError, FnSwapIntervalSGI, int64(r), "")
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
		return glerr.NotSupportedf("surfaceless contexts need GLX_ARB_create_context")
	}
	if !d.lib.MakeContextCurrent(d.raw, 0, 0, s.raw) {
		panic(currentPanic("glXMakeContextCurrent", d.lib.Sync(d.raw)))
	}
	return nil
}

func (s *contextState) makeNotCurrent() {
	d := s.display
	if d.lib.GetCurrentContext() != s.raw {
		return
	}
	if !d.lib.MakeContextCurrent(d.raw, 0, 0, 0) {
		panic(currentPanic("glXMakeContextCurrent", d.lib.Sync(d.raw)))
	}
}

func (s *contextState) destroy() {
	if s.destroyed {
		return
	}
	s.destroyed = true
	d := s.display
	d.releaseIfBound(s.raw, 0)
	d.lib.DestroyContext(d.raw, s.raw)
}
