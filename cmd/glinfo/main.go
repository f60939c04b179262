// Command glinfo prints what a display offers: the backend chosen for it,
// its extensions and features, and the configs matching a template.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"

	"github.com/tinyrange/glctx"
	"github.com/tinyrange/glctx/caps"
	"github.com/tinyrange/glctx/config"
	"github.com/tinyrange/glctx/internal/flags"
	"github.com/tinyrange/glctx/internal/gl"
	"github.com/tinyrange/glctx/internal/window"
	"github.com/tinyrange/glctx/surface"
)

var (
	extensionsFlag = &cli.BoolFlag{
		Name:  "extensions",
		Usage: "list the extensions of the display",
	}
	dumpTemplateFlag = &cli.BoolFlag{
		Name:  "dump-template",
		Usage: "print the best config as a TOML template and exit",
	}
	contextFlag = &cli.BoolFlag{
		Name:  "context",
		Usage: "create a context on the best config and print the GL strings",
	}
)

func main() {
	app := &cli.App{
		Name:   "glinfo",
		Usage:  "inspect the OpenGL configs of the local display",
		Flags:  append(append([]cli.Flag{extensionsFlag, dumpTemplateFlag, contextFlag}, flags.DisplayFlags...), flags.ContextFlags...),
		Action: info,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func info(ctx *cli.Context) error {
	log := flags.Logger(ctx)
	pref, err := flags.Preference(ctx)
	if err != nil {
		return err
	}
	tmpl, err := flags.Template(ctx)
	if err != nil {
		return err
	}

	conn, err := window.Open()
	if err != nil {
		return err
	}
	defer conn.Close()
	platform, err := glctx.LoadPlatform()
	if err != nil {
		return err
	}
	display, err := glctx.NewDisplay(platform, conn.Display(), pref,
		glctx.WithLogger(log),
		glctx.WithDebugChecks(ctx.Bool(flags.DebugChecksFlag.Name)))
	if err != nil {
		return err
	}
	defer display.Destroy()

	configs, err := display.FindConfigs(tmpl)
	if err != nil {
		return err
	}
	best := glctx.BestConfig(configs)
	if ctx.Bool(dumpTemplateFlag.Name) {
		return config.EncodeTemplate(os.Stdout, config.TemplateFor(best.Attribs()))
	}

	major, minor := display.Version()
	fmt.Printf("display:  %s\n", display)
	fmt.Printf("backend:  %s %d.%d\n", display.Backend(), major, minor)
	fmt.Printf("features: %s\n", display.Features())
	if ctx.Bool(extensionsFlag.Name) {
		fmt.Println("extensions:")
		for _, ext := range display.Extensions() {
			fmt.Println("    " + ext)
		}
	}
	fmt.Println()
	renderConfigs(configs, best)

	if ctx.Bool(contextFlag.Name) {
		fmt.Println()
		return printContext(ctx, display, tmpl, best)
	}
	return nil
}

// renderConfigs prints one row per config, the best one marked.
func renderConfigs(configs []*glctx.Config, best *glctx.Config) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"", "ID", "Color", "A", "D", "S", "MS", "API", "Surfaces", "Swap", "Visual", "Flags"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)

	for _, c := range configs {
		a := c.Attribs()
		mark := ""
		if c == best {
			mark = "*"
		}
		visual := ""
		if a.NativeVisual != 0 {
			visual = fmt.Sprintf("0x%x", a.NativeVisual)
		}
		table.Append([]string{
			mark,
			strconv.Itoa(int(a.ID)),
			a.ColorBuffer.String(),
			strconv.Itoa(int(a.AlphaSize)),
			strconv.Itoa(int(a.DepthSize)),
			strconv.Itoa(int(a.StencilSize)),
			strconv.Itoa(int(a.NumSamples)),
			a.API.String(),
			a.SurfaceTypes.String(),
			a.SwapInterval.String(),
			visual,
			configFlags(a),
		})
	}
	table.Render()
}

func configFlags(a config.Attribs) string {
	var f []string
	if a.DoubleBuffer {
		f = append(f, "db")
	}
	if a.Stereoscopy {
		f = append(f, "stereo")
	}
	if a.SRGB {
		f = append(f, "srgb")
	}
	if a.FloatPixels {
		f = append(f, "float")
	}
	if a.Transparency {
		f = append(f, "transparent")
	}
	if !a.HardwareAccelerated {
		f = append(f, "slow")
	}
	return strings.Join(f, ",")
}

// printContext makes a context current without a window, surfaceless when
// the display allows it and on a 1x1 pbuffer otherwise.
func printContext(ctx *cli.Context, display *glctx.Display, tmpl config.Template, best *glctx.Config) error {
	attrs, err := flags.Context(ctx)
	if err != nil {
		return err
	}

	cfg := best
	surfaceless := display.Features().Has(caps.SurfacelessContext)
	if !surfaceless && !best.Attribs().SurfaceTypes.Has(config.PBufferSurface) {
		pb := tmpl
		pb.SurfaceTypes = config.PBufferSurface
		configs, err := display.FindConfigs(pb)
		if err != nil {
			return fmt.Errorf("no pbuffer config: %w", err)
		}
		cfg = glctx.BestConfig(configs)
	}

	nc, err := display.CreateContext(cfg, attrs)
	if err != nil {
		return err
	}
	var current *glctx.PossiblyCurrentContext
	if surfaceless {
		current, err = nc.MakeCurrentSurfaceless()
	} else {
		var surf *glctx.Surface[surface.PBuffer]
		surf, err = display.CreatePBufferSurface(cfg, surface.PBufferAttributes(1, 1, false))
		if err != nil {
			nc.Destroy()
			return err
		}
		defer surf.Destroy()
		current, err = nc.MakeCurrent(surf)
	}
	if err != nil {
		nc.Destroy()
		return err
	}
	defer current.Destroy()

	funcs, err := gl.Load(display.GetProcAddress)
	if err != nil {
		return err
	}
	fmt.Printf("context:  %s %s robustness=%s\n", current.API(), current.Version(), nc.Robustness())
	fmt.Printf("vendor:   %s\n", funcs.GetString(gl.Vendor))
	fmt.Printf("renderer: %s\n", funcs.GetString(gl.Renderer))
	fmt.Printf("version:  %s\n", funcs.GetString(gl.Version))
	if sl := funcs.GetString(gl.ShadingLanguageVersion); sl != "" {
		fmt.Printf("glsl:     %s\n", sl)
	}
	return nil
}
