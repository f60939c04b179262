// Package glcontext describes the context a caller asks a backend for:
// client API, version, profile, robustness, release behavior and sharing.
package glcontext

import (
	"fmt"

	"github.com/tinyrange/glctx/config"
	"github.com/tinyrange/glctx/glerr"
	"github.com/tinyrange/glctx/rawhandle"
)

// API is the client API of a context.
type API int

const (
	// APIUnspecified lets the backend pick from the config: desktop OpenGL
	// when the config renders it, OpenGL ES otherwise.
	APIUnspecified API = iota
	OpenGL
	GLES
)

func (a API) String() string {
	switch a {
	case OpenGL:
		return "gl"
	case GLES:
		return "gles"
	}
	return "unspecified"
}

// Version is a major.minor context version. The zero value is Latest.
type Version struct {
	Major, Minor uint8
}

// Latest asks for the newest version the driver grants.
var Latest = Version{}

// V returns the version major.minor.
func V(major, minor uint8) Version { return Version{Major: major, Minor: minor} }

func (v Version) IsLatest() bool { return v == Latest }

// AtLeast reports whether v >= o.
func (v Version) AtLeast(o Version) bool {
	return v.Major > o.Major || (v.Major == o.Major && v.Minor >= o.Minor)
}

func (v Version) String() string {
	if v.IsLatest() {
		return "latest"
	}
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

var (
	glLadder = []Version{
		{4, 6}, {4, 5}, {4, 4}, {4, 3}, {4, 2}, {4, 1}, {4, 0},
		{3, 3}, {3, 2}, {3, 1}, {3, 0}, {2, 1}, {2, 0}, {1, 0},
	}
	glesLadder = []Version{{3, 2}, {3, 1}, {3, 0}, {2, 0}, {1, 0}}
)

// Ladder returns the versions tried, newest first, when Latest is
// requested for api. Drivers reject or silently alter versions they do
// not support, so each entry is tried in turn.
func Ladder(api API) []Version {
	if api == GLES {
		return glesLadder
	}
	return glLadder
}

// ConfigAPI returns the config bit needed to create a context of api at
// version v.
func ConfigAPI(api API, v Version) config.API {
	if api != GLES {
		return config.OpenGL
	}
	switch {
	case v.IsLatest():
		return config.GLES
	case v.Major >= 3:
		return config.GLES3
	case v.Major == 2:
		return config.GLES2
	}
	return config.GLES1
}

// Profile selects a desktop OpenGL profile.
type Profile int

const (
	ProfileUnspecified Profile = iota
	Core
	Compatibility
)

func (p Profile) String() string {
	switch p {
	case Core:
		return "core"
	case Compatibility:
		return "compatibility"
	}
	return "unspecified"
}

// Robustness is the driver's behavior policy on GPU faults.
type Robustness int

const (
	NotRobust Robustness = iota
	NoError
	RobustNoResetNotification
	TryRobustNoResetNotification
	RobustLoseContextOnReset
	TryRobustLoseContextOnReset
)

func (r Robustness) String() string {
	switch r {
	case NoError:
		return "no-error"
	case RobustNoResetNotification:
		return "robust-no-reset-notification"
	case TryRobustNoResetNotification:
		return "try-robust-no-reset-notification"
	case RobustLoseContextOnReset:
		return "robust-lose-context-on-reset"
	case TryRobustLoseContextOnReset:
		return "try-robust-lose-context-on-reset"
	}
	return "not-robust"
}

// IsTry reports whether an unsupported request degrades to NotRobust.
func (r Robustness) IsTry() bool {
	return r == TryRobustNoResetNotification || r == TryRobustLoseContextOnReset
}

// IsRobust reports whether robust buffer access is requested.
func (r Robustness) IsRobust() bool {
	return r != NotRobust && r != NoError
}

// LoseContextOnReset reports whether the reset strategy loses the context.
func (r Robustness) LoseContextOnReset() bool {
	return r == RobustLoseContextOnReset || r == TryRobustLoseContextOnReset
}

// Grant resolves r against what the driver supports. Try modes degrade to
// NotRobust; other unsupported modes fail with RobustnessNotSupported,
// reported under op.
func (r Robustness) Grant(op string, robust, noError bool) (Robustness, error) {
	switch {
	case r == NotRobust:
		return r, nil
	case r == NoError:
		if !noError {
			return r, glerr.New(glerr.RobustnessNotSupported, op, "no-error contexts are not supported")
		}
		return r, nil
	case robust:
		return r, nil
	case r.IsTry():
		return NotRobust, nil
	}
	return r, glerr.New(glerr.RobustnessNotSupported, op, r.String()+" is not supported")
}

// ReleaseBehavior controls whether releasing a context flushes it.
type ReleaseBehavior int

const (
	ReleaseFlush ReleaseBehavior = iota
	ReleaseNone
)

// Priority is a scheduling hint for the context.
type Priority int

const (
	PriorityMedium Priority = iota
	PriorityLow
	PriorityHigh
	PriorityRealtime
)

// Backend names the native API a context was created with.
type Backend int

const (
	BackendNone Backend = iota
	BackendEGL
	BackendGLX
	BackendWGL
)

func (b Backend) String() string {
	switch b {
	case BackendEGL:
		return "egl"
	case BackendGLX:
		return "glx"
	case BackendWGL:
		return "wgl"
	}
	return "none"
}

// Shareable is a context other contexts may share objects with.
type Shareable interface {
	Backend() Backend
	RawContext() uintptr
}

// Attributes is a context request.
type Attributes struct {
	API             API
	Version         Version
	Profile         Profile
	Debug           bool
	Robustness      Robustness
	ReleaseBehavior ReleaseBehavior
	Priority        Priority
	Shared          Shareable
	// Window is the window whose device context creates the context on
	// backends that need one (WGL). Other backends ignore it.
	Window rawhandle.Window
}

// Builder builds Attributes.
type Builder struct {
	a Attributes
}

// NewBuilder returns a builder for the latest version of an unspecified
// API with no robustness.
func NewBuilder() *Builder { return &Builder{} }

func (b *Builder) WithAPI(api API, v Version) *Builder {
	b.a.API, b.a.Version = api, v
	return b
}

func (b *Builder) WithProfile(p Profile) *Builder {
	b.a.Profile = p
	return b
}

func (b *Builder) WithDebug(v bool) *Builder {
	b.a.Debug = v
	return b
}

func (b *Builder) WithRobustness(r Robustness) *Builder {
	b.a.Robustness = r
	return b
}

func (b *Builder) WithReleaseBehavior(r ReleaseBehavior) *Builder {
	b.a.ReleaseBehavior = r
	return b
}

func (b *Builder) WithPriority(p Priority) *Builder {
	b.a.Priority = p
	return b
}

func (b *Builder) WithSharing(s Shareable) *Builder {
	b.a.Shared = s
	return b
}

func (b *Builder) WithWindow(w rawhandle.Window) *Builder {
	b.a.Window = w
	return b
}

func (b *Builder) Build() Attributes { return b.a }

// ResolveAPI picks the API for a config rendering apis when a is
// unspecified.
func (a Attributes) ResolveAPI(apis config.API) API {
	if a.API != APIUnspecified {
		return a.API
	}
	if apis&config.OpenGL != 0 || apis == 0 {
		return OpenGL
	}
	return GLES
}
