package wgl

import (
	"fmt"

	"github.com/tinyrange/glctx/caps"
	"github.com/tinyrange/glctx/config"
	"github.com/tinyrange/glctx/glcontext"
	"github.com/tinyrange/glctx/glerr"
	"github.com/tinyrange/glctx/rawhandle"
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

// NotCurrentContext is an HGLRC known not to be current on the calling
// thread.
//
// A context is current on an OS thread: pin the goroutine with
// runtime.LockOSThread before making a context current.
type NotCurrentContext struct {
	s *contextState
}

// PossiblyCurrentContext is an HGLRC that may be current on the calling
// thread.
type PossiblyCurrentContext struct {
	s *contextState
}

// Drawable is a surface a context can be made current with.
type Drawable interface {
	state() *surfaceState
}

// CreateContext creates a context for cfg on the device context of
// attrs.Window, or of a helper window when none is given. The window gets
// cfg's pixel format if it has none yet.
func (d *Display) CreateContext(cfg *Config, attrs glcontext.Attributes) (*NotCurrentContext, error) {
	const op = "wgl.CreateContext"
	if cfg == nil || cfg.display != d {
		return nil, glerr.BadAPIUsagef("config does not belong to this display")
	}
	var share uintptr
	if attrs.Shared != nil {
		if b := attrs.Shared.Backend(); b != glcontext.BackendWGL {
			return nil, glerr.BadAPIUsagef("cannot share objects with a %s context", b)
		}
		share = attrs.Shared.RawContext()
	}

	api := attrs.ResolveAPI(cfg.attribs.API)
	arb := d.features.Has(caps.CreateContextWithAttribs)
	if api == glcontext.GLES && !d.features.Has(caps.CreateESContext) {
		return nil, &glerr.Error{Kind: glerr.NotSupported, Op: op, Reason: "OpenGL ES needs WGL_EXT_create_context_es2_profile"}
	}
	robustness, err := attrs.Robustness.Grant(op,
		d.features.Has(caps.ContextRobustness),
		d.features.Has(caps.ContextNoError))
	if err != nil {
		return nil, err
	}
	if attrs.ReleaseBehavior == glcontext.ReleaseNone && !d.features.Has(caps.FlushControl) {
		return nil, &glerr.Error{Kind: glerr.FlushControlNotSupported, Op: op, Reason: "WGL_ARB_context_flush_control is missing"}
	}
	if attrs.Profile != glcontext.ProfileUnspecified && (api != glcontext.OpenGL || !d.features.Has(caps.ContextProfile)) {
		return nil, &glerr.Error{Kind: glerr.NotSupported, Op: op, Reason: "profiles need desktop OpenGL and WGL_ARB_create_context_profile"}
	}
	if !arb && !attrs.Version.IsLatest() {
		return nil, &glerr.Error{Kind: glerr.NotSupported, Op: op, Reason: "selecting a version needs WGL_ARB_create_context"}
	}
	if attrs.Priority != glcontext.PriorityMedium {
		d.logger().Debug("wgl: context priority ignored", "priority", attrs.Priority)
	}

	hdc, release, err := d.contextDC(cfg, attrs.Window)
	if err != nil {
		return nil, err
	}
	defer release()

	if !arb {
		return d.createLegacy(cfg, hdc, share, robustness)
	}

	ladder := attrs.Version.IsLatest()
	versions := []glcontext.Version{attrs.Version}
	if ladder {
		versions = glcontext.Ladder(api)
	}
	var lastCode uint32
	for _, v := range versions {
		if need := glcontext.ConfigAPI(api, v); cfg.attribs.API&need == 0 {
			if !ladder {
				return nil, &glerr.Error{Kind: glerr.BadConfig, Op: op, Reason: fmt.Sprintf("config does not render %s", need)}
			}
			continue
		}
		raw := d.lib.CreateContextAttribsARB(hdc, share, d.contextAttribs(api, v, attrs, robustness))
		if raw != 0 {
			d.logger().Debug("wgl context created", "api", api, "version", v, "robustness", robustness)
			return d.newContext(cfg, raw, api, v, robustness), nil
		}
		code := d.lib.LastError()
		if !ladderFailure(code) {
			return nil, winError(FnCreateContextAttribsARB, code)
		}
		lastCode = code
		d.logger().Debug("wgl context version refused", "api", api, "version", v, "err", errorName(code))
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

// contextDC returns a device context with cfg's pixel format and the
// function releasing it.
func (d *Display) contextDC(cfg *Config, win rawhandle.Window) (uintptr, func(), error) {
	lib := d.lib
	var (
		hwnd   uintptr
		helper bool
	)
	switch w := win.(type) {
	case nil:
		h, err := lib.CreateHelperWindow()
		if err != nil {
			return 0, nil, &glerr.Error{Kind: glerr.OSError, Op: "wgl.CreateContext", Reason: "creating a helper window", Err: err}
		}
		hwnd, helper = h, true
	case rawhandle.Win32Window:
		hwnd = w.HWND
	default:
		return 0, nil, glerr.BadAPIUsagef("WGL needs a Win32 window, got %T", win)
	}

	release := func() {
		if helper {
			lib.DestroyWindow(hwnd)
		}
	}
	hdc := lib.GetDC(hwnd)
	if hdc == 0 {
		code := lib.LastError()
		release()
		return 0, nil, &glerr.Error{Kind: glerr.BadNativeWindow, Op: "GetDC", Code: int64(code), CodeName: errorName(code)}
	}
	release = func() {
		lib.ReleaseDC(hwnd, hdc)
		if helper {
			lib.DestroyWindow(hwnd)
		}
	}
	if err := d.setPixelFormat(hdc, cfg); err != nil {
		release()
		return 0, nil, err
	}
	return hdc, release, nil
}

func (d *Display) createLegacy(cfg *Config, hdc, share uintptr, robustness glcontext.Robustness) (*NotCurrentContext, error) {
	raw := d.lib.CreateContext(hdc)
	if raw == 0 {
		return nil, winError("wglCreateContext", d.lib.LastError())
	}
	if share != 0 && !d.lib.ShareLists(share, raw) {
		code := d.lib.LastError()
		d.lib.DeleteContext(raw)
		return nil, winError("wglShareLists", code)
	}
	d.logger().Debug("wgl legacy context created")
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

// contextAttribs builds the zero terminated wglCreateContextAttribsARB
// list.
func (d *Display) contextAttribs(api glcontext.API, v glcontext.Version, attrs glcontext.Attributes, robustness glcontext.Robustness) []int32 {
	var a []int32
	add := func(k, v int32) { a = append(a, k, v) }

	if !v.IsLatest() {
		add(_WGL_CONTEXT_MAJOR_VERSION_ARB, int32(v.Major))
		add(_WGL_CONTEXT_MINOR_VERSION_ARB, int32(v.Minor))
	}
	switch {
	case api == glcontext.GLES:
		add(_WGL_CONTEXT_PROFILE_MASK_ARB, _WGL_CONTEXT_ES2_PROFILE_BIT_EXT)
	case attrs.Profile == glcontext.Core && v.AtLeast(glcontext.V(3, 2)):
		add(_WGL_CONTEXT_PROFILE_MASK_ARB, _WGL_CONTEXT_CORE_PROFILE_BIT_ARB)
	case attrs.Profile == glcontext.Compatibility && v.AtLeast(glcontext.V(3, 2)):
		add(_WGL_CONTEXT_PROFILE_MASK_ARB, _WGL_CONTEXT_COMPATIBILITY_PROFILE_BIT_ARB)
	}

	var flags int32
	if attrs.Debug {
		flags |= _WGL_CONTEXT_DEBUG_BIT_ARB
	}
	switch {
	case robustness == glcontext.NoError:
		add(_WGL_CONTEXT_OPENGL_NO_ERROR_ARB, 1)
	case robustness.IsRobust():
		flags |= _WGL_CONTEXT_ROBUST_ACCESS_BIT_ARB
		strategy := int32(_WGL_NO_RESET_NOTIFICATION_ARB)
		if robustness.LoseContextOnReset() {
			strategy = _WGL_LOSE_CONTEXT_ON_RESET_ARB
		}
		add(_WGL_CONTEXT_RESET_NOTIFICATION_STRATEGY, strategy)
	}
	if flags != 0 {
		add(_WGL_CONTEXT_FLAGS_ARB, flags)
	}
	if attrs.ReleaseBehavior == glcontext.ReleaseNone {
		add(_WGL_CONTEXT_RELEASE_BEHAVIOR_ARB, _WGL_CONTEXT_RELEASE_BEHAVIOR_NONE_ARB)
	}
	return append(a, 0)
}

// MakeCurrent binds the context to surf.
func (c *NotCurrentContext) MakeCurrent(surf Drawable) (*PossiblyCurrentContext, error) {
	return c.MakeCurrentDrawRead(surf, surf)
}

// MakeCurrentDrawRead binds the context to draw, which must equal read:
// wglMakeCurrent takes a single device context.
func (c *NotCurrentContext) MakeCurrentDrawRead(draw, read Drawable) (*PossiblyCurrentContext, error) {
	if err := c.s.makeCurrent(stateOf(draw), stateOf(read)); err != nil {
		return nil, err
	}
	return &PossiblyCurrentContext{s: c.s}, nil
}

// MakeCurrentSurfaceless reports NotSupported: wglMakeCurrent always
// needs a device context.
func (c *NotCurrentContext) MakeCurrentSurfaceless() (*PossiblyCurrentContext, error) {
	return nil, c.s.makeCurrentSurfaceless()
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
func (c *NotCurrentContext) Backend() glcontext.Backend       { return glcontext.BackendWGL }
func (c *NotCurrentContext) RawContext() uintptr              { return c.s.raw }
func (c *NotCurrentContext) Robustness() glcontext.Robustness { return c.s.robustness }

// Destroy deletes the context, releasing it first if it is current.
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

// UpdateAfterResize does nothing: WGL tracks window sizes itself.
func (c *PossiblyCurrentContext) UpdateAfterResize() {}

func (c *PossiblyCurrentContext) Config() *Config                  { return c.s.config }
func (c *PossiblyCurrentContext) Display() *Display                { return c.s.display }
func (c *PossiblyCurrentContext) API() glcontext.API               { return c.s.api }
func (c *PossiblyCurrentContext) Version() glcontext.Version       { return c.s.version }
func (c *PossiblyCurrentContext) Raw() uintptr                     { return c.s.raw }
func (c *PossiblyCurrentContext) Backend() glcontext.Backend       { return glcontext.BackendWGL }
func (c *PossiblyCurrentContext) RawContext() uintptr              { return c.s.raw }
func (c *PossiblyCurrentContext) Robustness() glcontext.Robustness { return c.s.robustness }

// Destroy deletes the context, releasing it first if it is current.
func (c *PossiblyCurrentContext) Destroy() { c.s.destroy() }

func (s *contextState) makeCurrent(draw, read *surfaceState) error {
	d := s.display
	if s.destroyed {
		return glerr.BadAPIUsagef("context is destroyed")
	}
	if draw == nil || read == nil {
		return glerr.BadAPIUsagef("nil surface")
	}
	if draw != read {
		return glerr.NotSupportedf("WGL cannot read from a different surface than it draws to")
	}
	if draw.display != d {
		return glerr.BadAPIUsagef("surface belongs to another display")
	}
	if draw.destroyed {
		return glerr.BadAPIUsagef("window surface is destroyed")
	}
	if draw.config.format != s.config.format {
		return &glerr.Error{Kind: glerr.BadMatch, Op: "wglMakeCurrent",
			Reason: fmt.Sprintf("surface pixel format %d, context pixel format %d", draw.config.format, s.config.format)}
	}

	first := !draw.hasBeenCurrent
	if first && draw.attrs.SwapInterval == nil && d.features.Has(caps.SwapControl) {
		// wglSwapIntervalEXT applies to the window of the current
		// context.
		d.withCurrent(draw.hdc, s.raw, func() {
			if !d.lib.SwapIntervalEXT(0) {
				d.logger().Debug("wgl: disabling vsync failed", "err", errorName(d.lib.LastError()))
			}
		})
	}
	if !d.lib.MakeCurrent(draw.hdc, s.raw) {
		panic(currentPanic("wglMakeCurrent", d.lib.LastError()))
	}
	if first {
		draw.hasBeenCurrent = true
		if iv := draw.attrs.SwapInterval; iv != nil {
			return d.setSwapInterval(*iv)
		}
	}
	return nil
}

// setSwapInterval applies interval to the window of the current context.
func (d *Display) setSwapInterval(interval config.SwapInterval) error {
	const op = "wgl.SetSwapInterval"
	r := d.swapRange()
	if !r.Contains(interval) {
		return &glerr.Error{Kind: glerr.NotSupported, Op: op, Reason: interval.String() + " is outside " + r.String()}
	}
	if !d.features.Has(caps.SwapControl) {
		return nil
	}
	if !d.lib.SwapIntervalEXT(interval.Native()) {
		return winError(FnSwapIntervalEXT, d.lib.LastError())
	}
	return nil
}

func (s *contextState) makeCurrentSurfaceless() error {
	if s.destroyed {
		return glerr.BadAPIUsagef("context is destroyed")
	}
	return glerr.NotSupportedf("WGL contexts need a device context to be current")
}

func (s *contextState) makeNotCurrent() {
	d := s.display
	if d.lib.GetCurrentContext() != s.raw {
		return
	}
	if !d.lib.MakeCurrent(0, 0) {
		panic(currentPanic("wglMakeCurrent", d.lib.LastError()))
	}
}

func (s *contextState) destroy() {
	if s.destroyed {
		return
	}
	s.destroyed = true
	d := s.display
	d.releaseIfBound(s.raw, 0)
	d.lib.DeleteContext(s.raw)
}
