//go:build !linux && !windows

package egl

import "github.com/tinyrange/glctx/glerr"

// Load reports NotSupported: no EGL library is bound on this platform.
func Load() (Lib, error) {
	return nil, glerr.NotSupportedf("egl: no EGL library on this platform")
}
