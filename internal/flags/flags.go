// Package flags holds the command line flags shared by the glctx tools and
// turns them into display, template and context settings.
package flags

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/tinyrange/glctx"
	"github.com/tinyrange/glctx/config"
	"github.com/tinyrange/glctx/glcontext"
	"github.com/tinyrange/glctx/internal/glog"
)

var (
	BackendFlag = &cli.StringFlag{
		Name:  "backend",
		Usage: "backends to try, one of egl, glx, wgl, egl-then-glx, glx-then-egl, egl-then-wgl, wgl-then-egl",
		Value: glctx.DefaultPreference().String(),
	}
	TemplateFlag = &cli.PathFlag{
		Name:  "template",
		Usage: "TOML file describing the framebuffer config to ask for",
	}
	APIFlag = &cli.StringFlag{
		Name:  "api",
		Usage: "client API of the context: gl or gles",
	}
	VersionFlag = &cli.StringFlag{
		Name:  "gl-version",
		Usage: "context version as major.minor, or latest",
		Value: "latest",
	}
	ProfileFlag = &cli.StringFlag{
		Name:  "profile",
		Usage: "desktop OpenGL profile: core or compatibility",
	}
	DebugContextFlag = &cli.BoolFlag{
		Name:  "debug-context",
		Usage: "request a debug context",
	}
	RobustnessFlag = &cli.StringFlag{
		Name:  "robustness",
		Usage: "robustness mode, e.g. try-robust-lose-context-on-reset",
		Value: glcontext.NotRobust.String(),
	}
	SwapIntervalFlag = &cli.UintFlag{
		Name:  "swap-interval",
		Usage: "vertical refreshes each swap waits for; unset disables vsync",
	}
	DebugChecksFlag = &cli.BoolFlag{
		Name:    "debug-checks",
		Usage:   "verify surfaces are current before swapping",
		EnvVars: []string{glog.DebugChecksEnv},
	}
	VerboseFlag = &cli.BoolFlag{
		Name:    "verbose",
		Aliases: []string{"v"},
		Usage:   "log backend negotiation at debug level",
	}
)

// DisplayFlags are the flags consumed by Preference and Logger.
var DisplayFlags = []cli.Flag{BackendFlag, DebugChecksFlag, VerboseFlag}

// ContextFlags are the flags consumed by Template, Context and
// SwapInterval.
var ContextFlags = []cli.Flag{
	TemplateFlag,
	APIFlag,
	VersionFlag,
	ProfileFlag,
	DebugContextFlag,
	RobustnessFlag,
	SwapIntervalFlag,
}

// Preference parses --backend.
func Preference(ctx *cli.Context) (glctx.Preference, error) {
	return glctx.ParsePreference(ctx.String(BackendFlag.Name))
}

// Logger returns a text logger on stderr, at debug level with --verbose.
// It is also installed as the library-wide logger.
func Logger(ctx *cli.Context) *slog.Logger {
	level := slog.LevelInfo
	if ctx.Bool(VerboseFlag.Name) {
		level = slog.LevelDebug
	}
	l := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	glctx.SetLogger(l)
	return l
}

// Template loads --template, or returns config.DefaultTemplate.
func Template(ctx *cli.Context) (config.Template, error) {
	path := ctx.Path(TemplateFlag.Name)
	if path == "" {
		return config.DefaultTemplate(), nil
	}
	return config.LoadTemplate(path)
}

// Context builds context attributes from the context flags.
func Context(ctx *cli.Context) (glcontext.Attributes, error) {
	b := glcontext.NewBuilder()

	api, err := parseAPI(ctx.String(APIFlag.Name))
	if err != nil {
		return glcontext.Attributes{}, err
	}
	version, err := ParseVersion(ctx.String(VersionFlag.Name))
	if err != nil {
		return glcontext.Attributes{}, err
	}
	b.WithAPI(api, version)

	switch p := strings.ToLower(ctx.String(ProfileFlag.Name)); p {
	case "":
	case "core":
		b.WithProfile(glcontext.Core)
	case "compat", "compatibility":
		b.WithProfile(glcontext.Compatibility)
	default:
		return glcontext.Attributes{}, fmt.Errorf("unknown profile %q", p)
	}

	r, err := ParseRobustness(ctx.String(RobustnessFlag.Name))
	if err != nil {
		return glcontext.Attributes{}, err
	}
	b.WithRobustness(r).WithDebug(ctx.Bool(DebugContextFlag.Name))
	return b.Build(), nil
}

// SwapInterval returns --swap-interval, or nil when it was not given.
func SwapInterval(ctx *cli.Context) *config.SwapInterval {
	if !ctx.IsSet(SwapIntervalFlag.Name) {
		return nil
	}
	s := config.SwapInterval(ctx.Uint(SwapIntervalFlag.Name))
	return &s
}

func parseAPI(s string) (glcontext.API, error) {
	switch strings.ToLower(s) {
	case "":
		return glcontext.APIUnspecified, nil
	case "gl", "opengl":
		return glcontext.OpenGL, nil
	case "gles", "es":
		return glcontext.GLES, nil
	}
	return 0, fmt.Errorf("unknown api %q", s)
}

// ParseVersion parses "major.minor" or "latest".
func ParseVersion(s string) (glcontext.Version, error) {
	if s == "" || s == "latest" {
		return glcontext.Latest, nil
	}
	var major, minor uint8
	if n, err := fmt.Sscanf(s, "%d.%d", &major, &minor); err != nil || n != 2 {
		return glcontext.Version{}, fmt.Errorf("invalid version %q, want major.minor", s)
	}
	return glcontext.V(major, minor), nil
}

// ParseRobustness parses the String form of a glcontext.Robustness.
func ParseRobustness(s string) (glcontext.Robustness, error) {
	for r := glcontext.NotRobust; r <= glcontext.TryRobustLoseContextOnReset; r++ {
		if r.String() == s {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown robustness %q", s)
}
