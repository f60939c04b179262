//go:build !linux

package glx

import "github.com/tinyrange/glctx/glerr"

// Load reports NotSupported: GLX is only bound on Linux.
func Load() (Lib, error) {
	return nil, glerr.NotSupportedf("glx: no GLX library on this platform")
}
