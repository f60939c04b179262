package glx

// currentState is the thread's GLX binding.
type currentState struct {
	display, draw, read, ctx uintptr
}

func (d *Display) current() currentState {
	return currentState{
		display: d.lib.GetCurrentDisplay(),
		draw:    d.lib.GetCurrentDrawable(),
		read:    d.lib.GetCurrentReadDrawable(),
		ctx:     d.lib.GetCurrentContext(),
	}
}

// withCurrent binds ctx to draw for the duration of fn, then restores the
// previous binding on every exit path.
func (d *Display) withCurrent(ctx, draw uintptr, fn func()) {
	prev := d.current()
	if !d.lib.MakeContextCurrent(d.raw, draw, draw, ctx) {
		panic(currentPanic("glXMakeContextCurrent", d.lib.Sync(d.raw)))
	}
	defer d.restore(prev)
	fn()
}

func (d *Display) restore(prev currentState) {
	if prev.ctx == 0 {
		d.lib.MakeContextCurrent(d.raw, 0, 0, 0)
		return
	}
	dpy := prev.display
	if dpy == 0 {
		dpy = d.raw
	}
	d.lib.MakeContextCurrent(dpy, prev.draw, prev.read, prev.ctx)
}

// releaseIfBound makes nothing current when ctx, or draw as the draw or
// read drawable, is bound on this thread. Zero handles match nothing.
func (d *Display) releaseIfBound(ctx, draw uintptr) {
	cur := d.current()
	bound := (ctx != 0 && cur.ctx == ctx) ||
		(draw != 0 && (cur.draw == draw || cur.read == draw))
	if !bound {
		return
	}
	if !d.lib.MakeContextCurrent(d.raw, 0, 0, 0) {
		d.logger().Debug("glx: releasing binding before destroy failed", "err", xErrorName(d.lib.Sync(d.raw)))
	}
}
