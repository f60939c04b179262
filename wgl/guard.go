package wgl

// currentState is the thread's WGL binding.
type currentState struct {
	hdc, ctx uintptr
}

func (d *Display) current() currentState {
	return currentState{hdc: d.lib.GetCurrentDC(), ctx: d.lib.GetCurrentContext()}
}

// withCurrent binds ctx to hdc for the duration of fn, then restores the
// previous binding on every exit path.
func (d *Display) withCurrent(hdc, ctx uintptr, fn func()) {
	prev := d.current()
	if !d.lib.MakeCurrent(hdc, ctx) {
		panic(currentPanic("wglMakeCurrent", d.lib.LastError()))
	}
	defer d.restore(prev)
	fn()
}

func (d *Display) restore(prev currentState) {
	if prev.ctx == 0 {
		d.lib.MakeCurrent(0, 0)
		return
	}
	d.lib.MakeCurrent(prev.hdc, prev.ctx)
}

// releaseIfBound makes nothing current when ctx or hdc is bound on this
// thread. Zero handles match nothing.
func (d *Display) releaseIfBound(ctx, hdc uintptr) {
	cur := d.current()
	if (ctx == 0 || cur.ctx != ctx) && (hdc == 0 || cur.hdc != hdc) {
		return
	}
	if !d.lib.MakeCurrent(0, 0) {
		d.logger().Debug("wgl: releasing binding before destroy failed", "err", errorName(d.lib.LastError()))
	}
}
