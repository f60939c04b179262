package egl

// currentState is the thread's EGL binding for the bound API.
type currentState struct {
	display, draw, read, ctx uintptr
}

func (d *Display) current() currentState {
	return currentState{
		display: d.lib.GetCurrentDisplay(),
		draw:    d.lib.GetCurrentSurface(_EGL_DRAW),
		read:    d.lib.GetCurrentSurface(_EGL_READ),
		ctx:     d.lib.GetCurrentContext(),
	}
}

// withCurrent binds ctx to surf for the duration of fn, then restores the
// previous binding. Restoration happens on every exit path, panics
// included.
func (d *Display) withCurrent(ctx, surf uintptr, fn func()) error {
	prev := d.current()
	if !d.lib.MakeCurrent(d.raw, surf, surf, ctx) {
		return currentError(d.lib, "eglMakeCurrent")
	}
	defer d.restore(prev)
	fn()
	return nil
}

func (d *Display) restore(prev currentState) {
	if prev.ctx == 0 {
		d.lib.MakeCurrent(d.raw, 0, 0, 0)
		return
	}
	dpy := prev.display
	if dpy == 0 {
		dpy = d.raw
	}
	d.lib.MakeCurrent(dpy, prev.draw, prev.read, prev.ctx)
}

// releaseIfBound makes nothing current when ctx, or surf as the draw or
// read surface, is bound on this thread. Destroying a bound handle would
// leave the thread pointing at a dead object. Zero handles match nothing.
func (d *Display) releaseIfBound(ctx, surf uintptr) {
	cur := d.current()
	bound := (ctx != 0 && cur.ctx == ctx) ||
		(surf != 0 && (cur.draw == surf || cur.read == surf))
	if !bound {
		return
	}
	if !d.lib.MakeCurrent(d.raw, 0, 0, 0) {
		d.logger().Debug("egl: releasing binding before destroy failed", "err", lastError(d.lib, "eglMakeCurrent"))
	}
}
