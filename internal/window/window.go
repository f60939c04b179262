// Package window opens the native display connection and the top-level
// windows the command line tools render into. It creates no GL state:
// configs, contexts and surfaces come from glctx.
package window

import "github.com/tinyrange/glctx/rawhandle"

// Options describe a new top-level window.
type Options struct {
	Title         string
	Width, Height int
	// VisualID is the X visual the window must be created with, as
	// reported by the chosen config. Zero uses the screen default. Windows
	// ignores it: the pixel format is set on the device context instead.
	VisualID uint32
}

type Window interface {
	// Handle returns the native window glctx creates surfaces for.
	Handle() rawhandle.Window
	Close()
	// Poll drains pending events and reports whether the window is still
	// open.
	Poll() bool
	BackingSize() (width, height int)
	Cursor() (x, y float32)
	Scale() float32
}
