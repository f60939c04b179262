//go:build !windows

package wgl

import "github.com/tinyrange/glctx/glerr"

// Load reports NotSupported: WGL exists only on Windows.
func Load() (Lib, error) {
	return nil, glerr.NotSupportedf("WGL is only available on Windows")
}
