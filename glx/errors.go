package glx

import (
	"fmt"

	"github.com/tinyrange/glctx/glerr"
	"github.com/tinyrange/glctx/internal/x11"
)

var xErrorNames = map[int32]string{
	x11.BadValue:  "BadValue",
	x11.BadWindow: "BadWindow",
	x11.BadPixmap: "BadPixmap",
	x11.BadMatch:  "BadMatch",
	x11.BadAccess: "BadAccess",
	x11.BadAlloc:  "BadAlloc",
}

func xErrorName(code int32) string {
	if name, ok := xErrorNames[code]; ok {
		return name
	}
	if code >= x11.FirstExtensionError {
		return fmt.Sprintf("X extension error %d", code)
	}
	return fmt.Sprintf("X error %d", code)
}

func xErrorKind(code int32) glerr.Kind {
	switch code {
	case x11.BadMatch:
		return glerr.BadMatch
	case x11.BadWindow:
		return glerr.BadNativeWindow
	case x11.BadPixmap:
		return glerr.BadNativePixmap
	case x11.BadValue:
		return glerr.BadAttribute
	}
	return glerr.OSError
}

// xError wraps an X protocol error code. A zero code means the call
// failed without raising one.
func xError(op string, code int32) *glerr.Error {
	if code == x11.Success {
		return glerr.New(glerr.OSError, op, "failed without an X error")
	}
	return glerr.Native(xErrorKind(code), op, int64(code), xErrorName(code))
}

// ladderFailure reports whether an X error from context creation means
// the requested version or flags were refused. Drivers report refusals
// as BadMatch, BadValue or a GLX error such as GLXBadFBConfig.
func ladderFailure(code int32) bool {
	return code == x11.Success || code == x11.BadMatch || code == x11.BadValue ||
		code >= x11.FirstExtensionError
}

// trap runs fn and returns the X error it raised, if any.
func (d *Display) trap(fn func()) int32 {
	d.lib.Sync(d.raw)
	fn()
	return d.lib.Sync(d.raw)
}

// currentPanic describes a failed make-current. GLX has no context-lost
// error, so any failure means the caller broke a binding invariant.
func currentPanic(op string, code int32) string {
	return fmt.Sprintf("glx: %s failed: %s", op, xErrorName(code))
}
