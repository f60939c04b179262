package egl

import (
	"fmt"

	"github.com/tinyrange/glctx/glerr"
)

func errorName(code int32) string {
	if name, ok := errorNames[code]; ok {
		return name
	}
	return fmt.Sprintf("EGL error 0x%x", code)
}

func errorKind(code int32) glerr.Kind {
	switch code {
	case _EGL_BAD_NATIVE_WINDOW:
		return glerr.BadNativeWindow
	case _EGL_BAD_NATIVE_PIXMAP:
		return glerr.BadNativePixmap
	case _EGL_BAD_CONFIG:
		return glerr.BadConfig
	case _EGL_BAD_ATTRIBUTE:
		return glerr.BadAttribute
	case _EGL_BAD_MATCH:
		return glerr.BadMatch
	case _EGL_CONTEXT_LOST:
		return glerr.ContextLost
	case _EGL_BAD_DISPLAY, _EGL_NOT_INITIALIZED:
		return glerr.BadNativeDisplay
	}
	return glerr.OSError
}

// nativeError wraps an EGL error code.
func nativeError(op string, code int32) *glerr.Error {
	return glerr.Native(errorKind(code), op, int64(code), errorName(code))
}

// lastError reads and clears the thread's EGL error.
func lastError(lib Lib, op string) *glerr.Error {
	return nativeError(op, lib.GetError())
}

// currentError classifies a failed make-current or swap. Context loss is
// recoverable by recreating state; any other code means the caller broke
// an invariant the library relies on, so it panics.
func currentError(lib Lib, op string) error {
	code := lib.GetError()
	if code == _EGL_CONTEXT_LOST {
		return nativeError(op, code)
	}
	panic(fmt.Sprintf("egl: %s failed: %s", op, errorName(code)))
}

// ladderFailure reports whether a context creation error means the
// requested version or flags were refused, so the next version may work.
func ladderFailure(code int32) bool {
	switch code {
	case _EGL_BAD_MATCH, _EGL_BAD_ATTRIBUTE, _EGL_BAD_CONFIG:
		return true
	}
	return false
}
