package tools

import (
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/ecopia-map/scan_colorizer/internal/labels"
	"github.com/ecopia-map/scan_colorizer/internal/options"
)

const (
	CommandExport = "export"
	CommandView   = "view"
	CommandVerify = "verify"
	CommandStats  = "stats"
)

type FlagsGlobal struct {
	Help    *bool `json:"help"`
	Version *bool `json:"version"`
}

type CommonFlags struct {
	Config     *string `json:"config"`
	DataRoot   *string `json:"data_root"`
	Split      *string `json:"split"`
	EvalRoot   *string `json:"eval_root"`
	ResultSet  *string `json:"result_set"`
	ScanList   *string `json:"scan_list"`
	Workers    *int    `json:"workers"`
	Background *string `json:"background"`
	Silent     *bool   `json:"silent"`
	Help       *bool   `json:"help"`

	// long names of the flags given on the command line
	setFlags map[string]bool
}

type RenderFlags struct {
	Offset       *string  `json:"offset"`
	Markers      *bool    `json:"markers"`
	MarkerRadius *float64 `json:"marker_radius"`
}

type FlagsForCommandExport struct {
	CommonFlags
	RenderFlags
	Output *string `json:"output"`
}

type FlagsForCommandView struct {
	CommonFlags
	RenderFlags
	PreviewDir       *string `json:"preview_dir"`
	PreviewMaxPoints *int    `json:"preview_max_points"`
}

type FlagsForCommandVerify struct {
	CommonFlags
}

type FlagsForCommandStats struct {
	CommonFlags
}

func ParseFlagsGlobal() FlagsGlobal {
	help := defineBoolFlag("help", "h", false, "Displays this help.")
	// -v is taken by glog verbosity
	version := defineBoolFlag("version", "", false, "Displays the version of scancolorizer.")

	flag.Parse()

	return FlagsGlobal{
		Help:    help,
		Version: version,
	}
}

func defineCommonFlags(flagCommand *flag.FlagSet) CommonFlags {
	return CommonFlags{
		Config:     defineStringFlagCommand(flagCommand, "config", "c", "", "Optional YAML file with the options. Flags given on the command line take precedence."),
		DataRoot:   defineStringFlagCommand(flagCommand, "data-root", "d", "", "Dataset root folder, holding <split>/<scan>/<scan>_vh_clean_2.ply."),
		Split:      defineStringFlagCommand(flagCommand, "split", "p", options.DefaultSplit, "Dataset split folder."),
		EvalRoot:   defineStringFlagCommand(flagCommand, "eval-root", "e", "", "Folder holding the result sets. Defaults to <data-root>/eval."),
		ResultSet:  defineStringFlagCommand(flagCommand, "result-set", "r", "", "Name of the result set, holding <scan>/result.npy."),
		ScanList:   defineStringFlagCommand(flagCommand, "scan-list", "l", "", "Text file with one scan id per line. If empty every scan of the result set is processed."),
		Workers:    defineIntFlagCommand(flagCommand, "workers", "w", 1, "Number of scans processed concurrently."),
		Background: defineStringFlagCommand(flagCommand, "background", "b", "max", "Instance id left uncolored: 'max' for the largest id of each scan, 'none', or an explicit id."),
		Silent:     defineBoolFlagCommand(flagCommand, "silent", "s", false, "Use to suppress all the non-error messages."),
		Help:       defineBoolFlagCommand(flagCommand, "help", "h", false, "Displays this help."),
	}
}

func defineRenderFlags(flagCommand *flag.FlagSet) RenderFlags {
	return RenderFlags{
		Offset:       defineStringFlagCommand(flagCommand, "offset", "t", "0,10,0", "Translation x,y,z applied to the instance colored copy so both copies can be viewed side by side."),
		Markers:      defineBoolFlagCommand(flagCommand, "markers", "m", false, "Adds a sphere marker at the centroid of every instance."),
		MarkerRadius: defineFloat64FlagCommand(flagCommand, "marker-radius", "", 0.05, "Radius of the centroid markers, in meters."),
	}
}

func ParseFlagsForCommandExport(args []string) (FlagsForCommandExport, error) {
	flagCommand := flag.NewFlagSet("command-export", flag.ContinueOnError)

	flags := FlagsForCommandExport{
		CommonFlags: defineCommonFlags(flagCommand),
		RenderFlags: defineRenderFlags(flagCommand),
		Output:      defineStringFlagCommand(flagCommand, "output", "o", "", "Specifies the output folder where the colored point clouds are written."),
	}

	err := parseFlagCommand(flagCommand, args, &flags.CommonFlags)
	return flags, err
}

func ParseFlagsForCommandView(args []string) (FlagsForCommandView, error) {
	flagCommand := flag.NewFlagSet("command-view", flag.ContinueOnError)

	flags := FlagsForCommandView{
		CommonFlags:      defineCommonFlags(flagCommand),
		RenderFlags:      defineRenderFlags(flagCommand),
		PreviewDir:       defineStringFlagCommand(flagCommand, "preview-dir", "o", "", "Folder where the preview images are written and served from."),
		PreviewMaxPoints: defineIntFlagCommand(flagCommand, "preview-max-points", "n", 50000, "Maximum number of points drawn per cloud in a preview. 0 draws every point."),
	}

	err := parseFlagCommand(flagCommand, args, &flags.CommonFlags)
	return flags, err
}

func ParseFlagsForCommandVerify(args []string) (FlagsForCommandVerify, error) {
	flagCommand := flag.NewFlagSet("command-verify", flag.ContinueOnError)

	flags := FlagsForCommandVerify{
		CommonFlags: defineCommonFlags(flagCommand),
	}

	err := parseFlagCommand(flagCommand, args, &flags.CommonFlags)
	return flags, err
}

func ParseFlagsForCommandStats(args []string) (FlagsForCommandStats, error) {
	flagCommand := flag.NewFlagSet("command-stats", flag.ContinueOnError)

	flags := FlagsForCommandStats{
		CommonFlags: defineCommonFlags(flagCommand),
	}

	err := parseFlagCommand(flagCommand, args, &flags.CommonFlags)
	return flags, err
}

func parseFlagCommand(flagCommand *flag.FlagSet, args []string, common *CommonFlags) error {
	if err := flagCommand.Parse(args); err != nil {
		return err
	}

	common.setFlags = make(map[string]bool)
	flagCommand.Visit(func(f *flag.Flag) {
		common.setFlags[longName(flagCommand, f)] = true
	})
	return nil
}

// IsSet tells whether the flag, given by its long name, was on the command line
func (f *CommonFlags) IsSet(name string) bool {
	return f.setFlags[name]
}

// Options builds the run options: defaults, then the config file, then the environment,
// then the flags given on the command line.
func (f *CommonFlags) Options(mode options.Mode) (*options.Options, error) {
	opts := options.Default()
	opts.Mode = mode

	if *f.Config != "" {
		if err := opts.LoadFile(*f.Config); err != nil {
			return nil, err
		}
	}
	opts.ApplyEnv()

	f.applyString("data-root", f.DataRoot, &opts.DataRoot)
	f.applyString("split", f.Split, &opts.Split)
	f.applyString("eval-root", f.EvalRoot, &opts.EvalRoot)
	f.applyString("result-set", f.ResultSet, &opts.ResultSet)
	f.applyString("scan-list", f.ScanList, &opts.ScanList)
	if f.IsSet("workers") {
		opts.Workers = *f.Workers
	}
	if f.IsSet("background") {
		background, err := labels.ParseBackground(*f.Background)
		if err != nil {
			return nil, err
		}
		opts.Background = background
	}

	return opts, nil
}

func (f *CommonFlags) applyString(name string, value *string, target *string) {
	if f.IsSet(name) {
		*target = *value
	}
}

func (r *RenderFlags) apply(common *CommonFlags, opts *options.Options) error {
	if common.IsSet("offset") {
		offset, err := ParseOffset(*r.Offset)
		if err != nil {
			return err
		}
		opts.InstanceOffset = offset
	}
	if common.IsSet("markers") {
		opts.Markers = *r.Markers
	}
	if common.IsSet("marker-radius") {
		opts.MarkerRadius = *r.MarkerRadius
	}
	return nil
}

func (f *FlagsForCommandExport) Options() (*options.Options, error) {
	opts, err := f.CommonFlags.Options(options.ModeExport)
	if err != nil {
		return nil, err
	}
	if err := f.RenderFlags.apply(&f.CommonFlags, opts); err != nil {
		return nil, err
	}
	f.applyString("output", f.Output, &opts.OutputDir)
	return opts, nil
}

func (f *FlagsForCommandView) Options() (*options.Options, error) {
	opts, err := f.CommonFlags.Options(options.ModeView)
	if err != nil {
		return nil, err
	}
	if err := f.RenderFlags.apply(&f.CommonFlags, opts); err != nil {
		return nil, err
	}
	f.applyString("preview-dir", f.PreviewDir, &opts.PreviewDir)
	if f.IsSet("preview-max-points") {
		opts.PreviewMaxPoints = *f.PreviewMaxPoints
	}
	return opts, nil
}

// ParseOffset parses an "x,y,z" translation
func ParseOffset(value string) ([3]float64, error) {
	var offset [3]float64
	parts := strings.Split(value, ",")
	if len(parts) != 3 {
		return offset, fmt.Errorf("offset %q must have the form x,y,z", value)
	}
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return offset, fmt.Errorf("offset %q: %w", value, err)
		}
		offset[i] = v
	}
	return offset, nil
}

// maps "<flag set>/<shorthand>" to the long flag name
var shorthands = map[string]string{}

func longName(flagCommand *flag.FlagSet, f *flag.Flag) string {
	if name, ok := shorthands[flagCommand.Name()+"/"+f.Name]; ok {
		return name
	}
	return f.Name
}

func registerShorthand(flagCommand *flag.FlagSet, name string, shortHand string) bool {
	if shortHand != name && shortHand != "" {
		shorthands[flagCommand.Name()+"/"+shortHand] = name
		return true
	}
	return false
}

func defineBoolFlag(name string, shortHand string, defaultValue bool, usage string) *bool {
	var output bool
	flag.BoolVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flag.BoolVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}
	return &output
}

func defineStringFlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue string, usage string) *string {
	var output string
	flagCommand.StringVar(&output, name, defaultValue, usage)
	if registerShorthand(flagCommand, name, shortHand) {
		flagCommand.StringVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}

	return &output
}

func defineIntFlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue int, usage string) *int {
	var output int
	flagCommand.IntVar(&output, name, defaultValue, usage)
	if registerShorthand(flagCommand, name, shortHand) {
		flagCommand.IntVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}

	return &output
}

func defineFloat64FlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue float64, usage string) *float64 {
	var output float64
	flagCommand.Float64Var(&output, name, defaultValue, usage)
	if registerShorthand(flagCommand, name, shortHand) {
		flagCommand.Float64Var(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}
	return &output
}

func defineBoolFlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue bool, usage string) *bool {
	var output bool
	flagCommand.BoolVar(&output, name, defaultValue, usage)
	if registerShorthand(flagCommand, name, shortHand) {
		flagCommand.BoolVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}
	return &output
}
