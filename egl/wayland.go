package egl

// WaylandEGL creates the wl_egl_window a Wayland EGL surface renders
// into. The window is owned by the surface and destroyed with it.
type WaylandEGL interface {
	CreateWindow(surface uintptr, width, height int32) uintptr
	ResizeWindow(window uintptr, width, height, dx, dy int32)
	DestroyWindow(window uintptr)
}
