//go:build !linux

package x11

import (
	"errors"
	"unsafe"
)

// Xlib is unavailable on this platform.
type Xlib struct{}

// Load always fails off Linux.
func Load() (*Xlib, error) {
	return nil, errors.New("x11: not supported on this platform")
}

func (*Xlib) FindVisual(uintptr, uint32) (VisualInfo, bool)  { return VisualInfo{}, false }
func (*Xlib) VisualInfoAt(unsafe.Pointer) (VisualInfo, bool) { return VisualInfo{}, false }
func (*Xlib) DefaultScreen(uintptr) int32                    { return 0 }
func (*Xlib) Free(unsafe.Pointer)                            {}
func (*Xlib) TrapErrors()                                    {}
func (*Xlib) Sync(uintptr) int32                             { return Success }
func (*Xlib) ResetError()                                    {}
