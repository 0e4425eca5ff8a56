package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kikiluvv/framestack/internal/config"
	"github.com/kikiluvv/framestack/internal/gui"
	"github.com/kikiluvv/framestack/internal/logging"
	"github.com/kikiluvv/framestack/internal/output"
	"github.com/kikiluvv/framestack/internal/overlays"
	"github.com/kikiluvv/framestack/internal/pipeline"
	"github.com/kikiluvv/framestack/pkg/util"
)

// shortAliases maps the multi-letter single-dash spellings onto long flags
var shortAliases = map[string]string{
	"-iw":   "--width",
	"-ih":   "--height",
	"-over": "--overlay_strength",
	"-sat":  "--saturation",
	"-con":  "--contrast",
	"-sm":   "--smoother",
	"-nr":   "--no-reveal",
}

// runFunc executes a frame stack run with the resolved configuration
type runFunc func(ctx context.Context, cfg *config.Config, input string, out io.Writer) error

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd(runPipeline)
	cmd.SetArgs(normalizeArgs(os.Args[1:]))

	if err := cmd.ExecuteContext(ctx); err != nil {
		reportError(os.Stdout, err)
		stop()
		os.Exit(1)
	}
}

func reportError(w io.Writer, err error) {
	red := color.New(color.FgRed, color.Bold)
	red.Fprintln(w, "Oops...")
	fmt.Fprintln(w, err)
}

// normalizeArgs rewrites -iw 800 and -iw=800 style flags to their long form.
// Everything after a bare "--" is left alone.
func normalizeArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for i, arg := range args {
		if arg == "--" {
			return append(out, args[i:]...)
		}

		name, value, hasValue := strings.Cut(arg, "=")
		if long, ok := shortAliases[name]; ok {
			if hasValue {
				arg = long + "=" + value
			} else {
				arg = long
			}
		}
		out = append(out, arg)
	}
	return out
}

type renderFlags struct {
	width           int
	height          int
	overlayStrength float64
	saturation      float64
	contrast        float64
	smoother        bool
	noReveal        bool
	output          string
	palette         string
	viewer          string
	viewerCommand   string
}

func newRootCmd(run runFunc) *cobra.Command {
	var (
		cfgFile string
		verbose bool
		flags   renderFlags
	)

	defaults := config.Default()

	cmd := &cobra.Command{
		Use:   "framestack [flags] <input>",
		Short: "framestack - render a video as a stack of median-colored lines",
		Long: "Samples frames across a video, reduces each to its median color and draws one\n" +
			"vertical line per sample, then blends a gradient and boosts contrast and saturation.",
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logging.Init(verbose)

			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}

			cmd.SetContext(config.WithConfig(cmd.Context(), cfg))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromContext(cmd.Context())
			applyFlags(cmd, cfg, &flags)

			return run(cmd.Context(), cfg, args[0], cmd.OutOrStdout())
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./framestack.yaml)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	f := cmd.Flags()
	f.IntVar(&flags.width, "width", defaults.Width, "output width, also the maximum number of samples (-iw)")
	f.IntVar(&flags.height, "height", defaults.Height, "output height (-ih)")
	f.Float64Var(&flags.overlayStrength, "overlay_strength", defaults.OverlayStrength, "gradient overlay strength in [0,1] (-over)")
	f.Float64Var(&flags.saturation, "saturation", defaults.Saturation, "saturation scale (-sat)")
	f.Float64Var(&flags.contrast, "contrast", defaults.Contrast, "contrast scale (-con)")
	f.BoolVar(&flags.smoother, "smoother", defaults.Smoother, "add the previous sample's median into each line (-sm)")
	f.BoolVar(&flags.noReveal, "no-reveal", defaults.NoReveal, "do not display the result (-nr)")
	f.StringVarP(&flags.output, "output", "o", defaults.Output, "output PNG path")
	f.StringVar(&flags.palette, "palette", defaults.Palette, "gradient palette (see 'framestack list palettes')")
	f.StringVar(&flags.viewer, "viewer", defaults.Viewer, "how to display the result: system or window")
	f.StringVar(&flags.viewerCommand, "viewer-command", defaults.ViewerCommand, "program the system viewer opens the result with (default: platform opener)")

	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

// applyFlags copies explicitly set flags over the loaded configuration
func applyFlags(cmd *cobra.Command, cfg *config.Config, flags *renderFlags) {
	f := cmd.Flags()
	if f.Changed("width") {
		cfg.Width = flags.width
	}
	if f.Changed("height") {
		cfg.Height = flags.height
	}
	if f.Changed("overlay_strength") {
		cfg.OverlayStrength = flags.overlayStrength
	}
	if f.Changed("saturation") {
		cfg.Saturation = flags.saturation
	}
	if f.Changed("contrast") {
		cfg.Contrast = flags.contrast
	}
	if f.Changed("smoother") {
		cfg.Smoother = flags.smoother
	}
	if f.Changed("no-reveal") {
		cfg.NoReveal = flags.noReveal
	}
	if f.Changed("output") {
		cfg.Output = flags.output
	}
	if f.Changed("palette") {
		cfg.Palette = flags.palette
	}
	if f.Changed("viewer") {
		cfg.Viewer = flags.viewer
	}
	if f.Changed("viewer-command") {
		cfg.ViewerCommand = flags.viewerCommand
	}
}

func runPipeline(ctx context.Context, cfg *config.Config, input string, out io.Writer) error {
	logging.WithComponent("cli").Debug().
		Str("input", input).
		Interface("config", cfg).
		Msg("resolved configuration")

	pipe, err := pipeline.New(log.Logger, cfg)
	if err != nil {
		return err
	}

	var viewer output.Viewer
	switch cfg.Viewer {
	case config.ViewerWindow:
		viewer = gui.NewWindowViewer(log.Logger, "framestack - "+filepath.Base(input))
	default:
		viewer = output.NewSystemViewer(log.Logger, cfg.ViewerCommand)
	}

	_, err = pipe.Run(ctx, pipeline.RunOptions{
		Input:  input,
		Report: out,
		Viewer: viewer,
	})
	return err
}

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Config management commands",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the default configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "framestack.yaml"
			if len(args) == 1 {
				path = args[0]
			}

			if util.FileExists(path) && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := util.EnsureDir(path); err != nil {
				return fmt.Errorf("failed to create config directory: %w", err)
			}
			if err := config.Default().Save(path); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")

	configCmd.AddCommand(initCmd)
	return configCmd
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "list [palettes]",
		Short:     "List available resources",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"palettes"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromContext(cmd.Context())
			registry := overlays.NewRegistry()

			for _, name := range registry.List() {
				palette, _ := registry.Get(name)
				marker := " "
				if name == cfg.Palette {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %-10s %s\n", marker, name, describe(palette))
			}
			return nil
		},
	}
}

func describe(p overlays.Palette) string {
	stops := make([]string, len(p))
	for i, c := range p {
		stops[i] = fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return strings.Join(stops, " -> ")
}
