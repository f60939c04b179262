// Package caps defines the capability bitset every backend derives once per
// display from its extension strings and version. Components consult the
// bitset instead of scanning extension strings.
package caps

import (
	"slices"
	"strings"
)

// Features is a set of display capabilities.
type Features uint32

const (
	CreateESContext Features = 1 << iota
	Multisampling
	SwapControl
	FloatPixelFormat
	SRGBFramebuffers
	ContextRobustness
	ContextNoError

	// CreateContextWithAttribs is the attribute-list context creation
	// path (EGL_KHR_create_context, GLX/WGL_ARB_create_context).
	CreateContextWithAttribs
	ContextProfile
	FlushControl
	SurfacelessContext
	SwapBuffersWithDamageKHR
	SwapBuffersWithDamageEXT
	BufferAge
	ContextPriority
	PixelFormatARB
)

var names = []struct {
	f    Features
	name string
}{
	{CreateESContext, "create-es-context"},
	{Multisampling, "multisampling"},
	{SwapControl, "swap-control"},
	{FloatPixelFormat, "float-pixel-format"},
	{SRGBFramebuffers, "srgb-framebuffers"},
	{ContextRobustness, "context-robustness"},
	{ContextNoError, "context-no-error"},
	{CreateContextWithAttribs, "create-context-with-attribs"},
	{ContextProfile, "context-profile"},
	{FlushControl, "flush-control"},
	{SurfacelessContext, "surfaceless-context"},
	{SwapBuffersWithDamageKHR, "swap-damage-khr"},
	{SwapBuffersWithDamageEXT, "swap-damage-ext"},
	{BufferAge, "buffer-age"},
	{ContextPriority, "context-priority"},
	{PixelFormatARB, "pixel-format-arb"},
}

// Has reports whether every feature of g is present.
func (f Features) Has(g Features) bool { return f&g == g }

// Any reports whether some feature of g is present.
func (f Features) Any(g Features) bool { return f&g != 0 }

func (f Features) String() string {
	var out []string
	for _, n := range names {
		if f&n.f != 0 {
			out = append(out, n.name)
		}
	}
	if len(out) == 0 {
		return "none"
	}
	return strings.Join(out, ",")
}

// Extensions is a set of extension names.
type Extensions map[string]struct{}

// ParseExtensions splits a space separated extension string. An empty
// string, as returned by drivers that report no extensions or by queries
// that fail, yields an empty set.
func ParseExtensions(s string) Extensions {
	exts := make(Extensions)
	for _, e := range strings.Fields(s) {
		exts[e] = struct{}{}
	}
	return exts
}

// Has reports whether name is present.
func (e Extensions) Has(name string) bool {
	_, ok := e[name]
	return ok
}

// HasAny reports whether some name is present.
func (e Extensions) HasAny(names ...string) bool {
	for _, n := range names {
		if e.Has(n) {
			return true
		}
	}
	return false
}

// Sorted returns the names in lexical order.
func (e Extensions) Sorted() []string {
	out := make([]string, 0, len(e))
	for n := range e {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}
