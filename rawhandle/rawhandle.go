// Package rawhandle holds the native handles a caller passes in: displays,
// windows and pixmaps of the supported window systems.
//
// Each family is a closed set of struct types; backends switch on the
// concrete type.
package rawhandle

import "fmt"

// Display identifies a native display connection.
type Display interface {
	isDisplay()
	fmt.Stringer
}

// XlibDisplay is an Xlib Display*. Screen selects a screen when set.
type XlibDisplay struct {
	Display uintptr
	Screen  *int32
}

// WaylandDisplay is a wl_display*.
type WaylandDisplay struct {
	Display uintptr
}

// GbmDisplay is a gbm_device*.
type GbmDisplay struct {
	Device uintptr
}

// AndroidDisplay is the process-wide Android default display.
type AndroidDisplay struct{}

// Win32Display is a Windows desktop display. HWND optionally names a
// window whose device context is used for extension discovery.
type Win32Display struct {
	HWND uintptr
}

// EGLDeviceDisplay is an EGLDeviceEXT from EGL device enumeration.
type EGLDeviceDisplay struct {
	Device uintptr
}

// SurfacelessDisplay requests a display without any window system.
type SurfacelessDisplay struct{}

func (XlibDisplay) isDisplay()        {}
func (WaylandDisplay) isDisplay()     {}
func (GbmDisplay) isDisplay()         {}
func (AndroidDisplay) isDisplay()     {}
func (Win32Display) isDisplay()       {}
func (EGLDeviceDisplay) isDisplay()   {}
func (SurfacelessDisplay) isDisplay() {}

func (d XlibDisplay) String() string {
	if d.Screen != nil {
		return fmt.Sprintf("xlib(%#x, screen %d)", d.Display, *d.Screen)
	}
	return fmt.Sprintf("xlib(%#x)", d.Display)
}
func (d WaylandDisplay) String() string   { return fmt.Sprintf("wayland(%#x)", d.Display) }
func (d GbmDisplay) String() string       { return fmt.Sprintf("gbm(%#x)", d.Device) }
func (AndroidDisplay) String() string     { return "android" }
func (d Win32Display) String() string     { return fmt.Sprintf("win32(%#x)", d.HWND) }
func (d EGLDeviceDisplay) String() string { return fmt.Sprintf("egl-device(%#x)", d.Device) }
func (SurfacelessDisplay) String() string { return "surfaceless" }

// Window identifies a native window.
type Window interface {
	isWindow()
}

// XlibWindow is an X11 Window XID. VisualID is the visual the window was
// created with, or 0 when unknown.
type XlibWindow struct {
	Window   uint64
	VisualID uint32
}

// WaylandWindow is a wl_surface*.
type WaylandWindow struct {
	Surface uintptr
}

// GbmWindow is a gbm_surface*.
type GbmWindow struct {
	Surface uintptr
}

// AndroidWindow is an ANativeWindow*.
type AndroidWindow struct {
	Window uintptr
}

// Win32Window is an HWND.
type Win32Window struct {
	HWND uintptr
}

func (XlibWindow) isWindow()    {}
func (WaylandWindow) isWindow() {}
func (GbmWindow) isWindow()     {}
func (AndroidWindow) isWindow() {}
func (Win32Window) isWindow()   {}

// Pixmap identifies a native pixmap.
type Pixmap interface {
	isPixmap()
}

// XlibPixmap is an X11 Pixmap XID.
type XlibPixmap struct {
	Pixmap uint64
}

func (XlibPixmap) isPixmap() {}
