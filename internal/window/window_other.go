//go:build !linux && !windows

package window

import (
	"errors"

	"github.com/tinyrange/glctx/rawhandle"
)

// Connection is unavailable: only Xlib and Win32 windows are supported.
type Connection struct{}

func Open() (*Connection, error) {
	return nil, errors.New("window: no supported window system on this platform")
}

func (*Connection) Display() rawhandle.Display { return nil }
func (*Connection) Close()                     {}
func (*Connection) NewWindow(Options) (Window, error) {
	return nil, errors.New("window: unsupported platform")
}
