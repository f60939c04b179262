package wgl

import (
	"fmt"

	"github.com/tinyrange/glctx/glerr"
)

// Win32 error codes WGL reports through GetLastError.
const (
	errorInvalidHandle       = 6
	errorNotEnoughMemory     = 8
	errorInvalidParameter    = 87
	errorInvalidWindowHandle = 1400
	errorNoSystemResources   = 1450
	errorInvalidPixelFormat  = 2000
	errorInvalidOperation    = 4317
)

var errorNames = map[uint32]string{
	errorInvalidHandle:         "ERROR_INVALID_HANDLE",
	errorNotEnoughMemory:       "ERROR_NOT_ENOUGH_MEMORY",
	errorInvalidParameter:      "ERROR_INVALID_PARAMETER",
	errorInvalidWindowHandle:   "ERROR_INVALID_WINDOW_HANDLE",
	errorNoSystemResources:     "ERROR_NO_SYSTEM_RESOURCES",
	errorInvalidPixelFormat:    "ERROR_INVALID_PIXEL_FORMAT",
	errorInvalidOperation:      "ERROR_INVALID_OPERATION",
	_ERROR_INVALID_VERSION_ARB: "ERROR_INVALID_VERSION_ARB",
	_ERROR_INVALID_PROFILE_ARB: "ERROR_INVALID_PROFILE_ARB",
}

// errorCode strips the facility bits drivers set on the WGL_ARB codes
// (0xC0072095).
func errorCode(code uint32) uint32 { return code & 0xffff }

func errorName(code uint32) string {
	if name, ok := errorNames[errorCode(code)]; ok {
		return name
	}
	return fmt.Sprintf("error %d", code)
}

func errorKind(code uint32) glerr.Kind {
	switch errorCode(code) {
	case errorInvalidPixelFormat:
		return glerr.BadConfig
	case errorInvalidWindowHandle:
		return glerr.BadNativeWindow
	case errorInvalidParameter:
		return glerr.BadAttribute
	case _ERROR_INVALID_VERSION_ARB:
		return glerr.OpenGLVersionNotSupported
	case _ERROR_INVALID_PROFILE_ARB:
		return glerr.NotSupported
	}
	return glerr.OSError
}

// winError wraps the GetLastError value of a failed call. A zero code
// means the call failed without setting one.
func winError(op string, code uint32) *glerr.Error {
	if code == 0 {
		return glerr.New(glerr.OSError, op, "failed without an error code")
	}
	return glerr.Native(errorKind(code), op, int64(code), errorName(code))
}

// ladderFailure reports whether a wglCreateContextAttribsARB failure
// means the requested version or profile was refused.
func ladderFailure(code uint32) bool {
	c := errorCode(code)
	return code == 0 || c == _ERROR_INVALID_VERSION_ARB || c == _ERROR_INVALID_PROFILE_ARB
}

// currentPanic describes a failed wglMakeCurrent. WGL reports no
// context-lost condition there, so any failure means a binding invariant
// was broken.
func currentPanic(op string, code uint32) string {
	return fmt.Sprintf("wgl: %s failed: %s", op, errorName(code))
}
