//go:build linux

package egl

import (
	"fmt"
	"sync"

	"github.com/ebitengine/purego"
)

type waylandEGL struct {
	create  func(uintptr, int32, int32) uintptr
	resize  func(uintptr, int32, int32, int32, int32)
	destroy func(uintptr)
}

func (w *waylandEGL) CreateWindow(surface uintptr, width, height int32) uintptr {
	return w.create(surface, width, height)
}

func (w *waylandEGL) ResizeWindow(window uintptr, width, height, dx, dy int32) {
	w.resize(window, width, height, dx, dy)
}

func (w *waylandEGL) DestroyWindow(window uintptr) {
	w.destroy(window)
}

var (
	waylandOnce sync.Once
	waylandLib  *waylandEGL
	waylandErr  error
)

func loadWaylandEGL() (WaylandEGL, error) {
	waylandOnce.Do(func() {
		handle, err := purego.Dlopen("libwayland-egl.so.1", purego.RTLD_LAZY|purego.RTLD_GLOBAL)
		if err != nil {
			waylandErr = fmt.Errorf("egl: %w", err)
			return
		}
		w := &waylandEGL{}
		purego.RegisterLibFunc(&w.create, handle, "wl_egl_window_create")
		purego.RegisterLibFunc(&w.resize, handle, "wl_egl_window_resize")
		purego.RegisterLibFunc(&w.destroy, handle, "wl_egl_window_destroy")
		waylandLib = w
	})
	if waylandErr != nil {
		return nil, waylandErr
	}
	return waylandLib, nil
}
