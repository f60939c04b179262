//go:build !linux

package egl

import "errors"

func loadWaylandEGL() (WaylandEGL, error) {
	return nil, errors.New("egl: wayland is only available on linux")
}
