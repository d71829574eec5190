package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/golang/glog"

	"github.com/ecopia-map/scan_colorizer/internal/options"
	"github.com/ecopia-map/scan_colorizer/internal/preview"
	"github.com/ecopia-map/scan_colorizer/pkg"
	"github.com/ecopia-map/scan_colorizer/tools"
)

const VERSION = "0.3.0"

const logo = `
                                  _            _
  ___  ___ __ _ _ __    ___ ___ | | ___  _ __(_)_______ _ __
 / __|/ __/ _  | '_ \  / __/ _ \| |/ _ \| '__| |_  / _ \ '__|
 \__ \ (_| (_| | | | || (_| (_) | | (_) | |  | |/ /  __/ |
 |___/\___\__,_|_| |_| \___\___/|_|\___/|_|  |_/___\___|_|
  Semantic and instance label colorizer for scanned point clouds
  Copyright YYYY - Ecopia Map
`

const commands = "[" + tools.CommandExport + "|" + tools.CommandView + "|" + tools.CommandVerify + "|" + tools.CommandStats + "]"

func main() {
	defer glog.Flush()

	flagsGlobal := tools.ParseFlagsGlobal()
	glog.V(1).Infoln(tools.FmtJSONString(flagsGlobal))

	if *flagsGlobal.Help {
		showHelp()
		return
	}
	if *flagsGlobal.Version {
		printVersion()
		return
	}

	args := flag.Args()
	if len(args) == 0 {
		glog.Exitf("Please specify a subcommand %s.", commands)
	}
	cmd, args := args[0], args[1:]

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch cmd {
	case tools.CommandExport:
		err = mainCommandExport(ctx, args)
	case tools.CommandView:
		err = mainCommandView(ctx, args)
	case tools.CommandVerify:
		err = mainCommandVerify(ctx, args)
	case tools.CommandStats:
		err = mainCommandStats(ctx, args)
	default:
		glog.Exitf("Unrecognized command [%q]. Command must be one of %s", cmd, commands)
	}

	if err != nil {
		glog.Exitf("Error while running %s: %v", cmd, err)
	}
}

func mainCommandExport(ctx context.Context, args []string) error {
	flags, err := tools.ParseFlagsForCommandExport(args)
	if err != nil {
		return err
	}
	if *flags.Help {
		printLogo()
		return nil
	}
	setupLogger(*flags.Silent)

	opts, err := flags.Options()
	if err != nil {
		return err
	}

	defer timeTrack(time.Now(), "export")
	report, err := run(ctx, opts)
	if err != nil {
		return err
	}

	tools.LogOutput("Export completed, " + strconv.Itoa(len(report.Written)) + " files written to " + opts.OutputDir)
	return nil
}

func mainCommandView(ctx context.Context, args []string) error {
	flags, err := tools.ParseFlagsForCommandView(args)
	if err != nil {
		return err
	}
	if *flags.Help {
		printLogo()
		return nil
	}
	setupLogger(*flags.Silent)

	opts, err := flags.Options()
	if err != nil {
		return err
	}

	report, err := run(ctx, opts)
	if err != nil {
		return err
	}

	tools.LogOutput(strconv.Itoa(len(report.Previews)) + " previews rendered, serving " + opts.PreviewDir + " on http://" + opts.ViewerAddress())
	return preview.Serve(ctx, opts.ViewerAddress(), opts.PreviewDir)
}

func mainCommandVerify(ctx context.Context, args []string) error {
	flags, err := tools.ParseFlagsForCommandVerify(args)
	if err != nil {
		return err
	}
	if *flags.Help {
		printLogo()
		return nil
	}
	setupLogger(*flags.Silent)

	opts, err := flags.Options(options.ModeVerify)
	if err != nil {
		return err
	}

	report, err := run(ctx, opts)
	if err != nil {
		return err
	}

	if len(report.Mismatches) > 0 {
		fmt.Println(tools.FmtJSONIndent(report.Mismatches))
		return fmt.Errorf("%d of %d scans: %w", len(report.Mismatches), len(report.Scans), pkg.ErrCountMismatch)
	}
	tools.LogOutput("All " + strconv.Itoa(len(report.Scans)) + " scans verified")
	return nil
}

func mainCommandStats(ctx context.Context, args []string) error {
	flags, err := tools.ParseFlagsForCommandStats(args)
	if err != nil {
		return err
	}
	if *flags.Help {
		printLogo()
		return nil
	}
	setupLogger(*flags.Silent)

	opts, err := flags.Options(options.ModeStats)
	if err != nil {
		return err
	}

	report, err := run(ctx, opts)
	if err != nil {
		return err
	}

	fmt.Println(tools.FmtJSONIndent(report.Summaries))
	return nil
}

// Validates the options and runs the colorizer over every scan
func run(ctx context.Context, opts *options.Options) (*pkg.Report, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("error parsing input parameters: %w", err)
	}
	glog.V(1).Infoln("options", tools.FmtJSONString(opts))

	return pkg.NewColorizer(tools.NewStandardScanFinder()).Run(ctx, opts)
}

func setupLogger(silent bool) {
	if silent {
		tools.DisableLogger()
	} else {
		printLogo()
	}
}

func timeTrack(start time.Time, name string) {
	elapsed := time.Since(start)
	tools.LogOutput(fmt.Sprintf("%s took %s", name, elapsed))
}

func printLogo() {
	fmt.Println(strings.ReplaceAll(logo, "YYYY", strconv.Itoa(time.Now().Year())))
}

func showHelp() {
	printLogo()
	fmt.Println("***")
	fmt.Println("scancolorizer decodes the composite labels of a segmentation result and colors the scan geometry by class and by instance")
	printVersion()
	fmt.Println("***")
	fmt.Println("")
	fmt.Println("Usage: scancolorizer " + commands + " [flags]")
	fmt.Println("")
	fmt.Println("Command line flags: ")
	flag.CommandLine.SetOutput(os.Stdout)
	flag.PrintDefaults()
}

func printVersion() {
	fmt.Println("v." + VERSION)
}
