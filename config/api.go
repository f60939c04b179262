package config

import "strings"

// API is a bitmask of the client APIs a config can render with.
type API uint8

const (
	OpenGL API = 1 << iota
	GLES1
	GLES2
	GLES3
)

// GLES is every OpenGL ES generation.
const GLES = GLES1 | GLES2 | GLES3

// Has reports whether every bit of b is set in a.
func (a API) Has(b API) bool { return a&b == b }

// Missing returns the APIs of want that a cannot render. The OpenGL ES
// generations of want are alternatives: rendering any one of them is
// enough.
func (a API) Missing(want API) API {
	missing := want &^ a
	if a&want&GLES != 0 {
		missing &^= GLES
	}
	return missing
}

// Required returns the APIs every matching config must render: a request
// for several ES generations leaves them all to post-filtering.
func (a API) Required() API {
	if es := a & GLES; es != 0 && es&(es-1) != 0 {
		return a &^ GLES
	}
	return a
}

func (a API) String() string {
	if a == 0 {
		return "none"
	}
	var names []string
	for _, e := range []struct {
		bit  API
		name string
	}{{OpenGL, "gl"}, {GLES1, "gles1"}, {GLES2, "gles2"}, {GLES3, "gles3"}} {
		if a&e.bit != 0 {
			names = append(names, e.name)
		}
	}
	return strings.Join(names, "|")
}

// ParseAPI parses the names produced by API.String.
func ParseAPI(names []string) (API, bool) {
	var a API
	for _, n := range names {
		switch strings.ToLower(strings.TrimSpace(n)) {
		case "gl", "opengl":
			a |= OpenGL
		case "gles1":
			a |= GLES1
		case "gles2":
			a |= GLES2
		case "gles3":
			a |= GLES3
		default:
			return 0, false
		}
	}
	return a, true
}

// SurfaceTypes is a bitmask of the surface kinds a config can back.
type SurfaceTypes uint8

const (
	WindowSurface SurfaceTypes = 1 << iota
	PBufferSurface
	PixmapSurface
)

func (s SurfaceTypes) Has(t SurfaceTypes) bool { return s&t == t }

func (s SurfaceTypes) String() string {
	if s == 0 {
		return "none"
	}
	var names []string
	if s&WindowSurface != 0 {
		names = append(names, "window")
	}
	if s&PBufferSurface != 0 {
		names = append(names, "pbuffer")
	}
	if s&PixmapSurface != 0 {
		names = append(names, "pixmap")
	}
	return strings.Join(names, "|")
}

// ParseSurfaceTypes parses the names produced by SurfaceTypes.String.
func ParseSurfaceTypes(names []string) (SurfaceTypes, bool) {
	var s SurfaceTypes
	for _, n := range names {
		switch strings.ToLower(strings.TrimSpace(n)) {
		case "window":
			s |= WindowSurface
		case "pbuffer":
			s |= PBufferSurface
		case "pixmap":
			s |= PixmapSurface
		default:
			return 0, false
		}
	}
	return s, true
}
