package main

import (
	"os"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across invocations.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// viewportFlags holds rendering geometry flags.
type viewportFlags struct {
	width  int
	height int
	scale  int
}

// captureFlags holds all flags for a capture run.
type captureFlags struct {
	common      commonFlags
	viewport    viewportFlags
	output      string
	timeout     string
	settle      string
	workers     int
	browserBin  string
	logFile     string
	history     bool
	historyPath string
	showVersion bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show detailed progress")
}

// addViewportFlags adds rendering geometry flags to a FlagSet.
func addViewportFlags(fs *flag.FlagSet, f *viewportFlags) {
	fs.IntVar(&f.width, "width", 0, "viewport width in pixels (0 = default 1280)")
	fs.IntVar(&f.height, "height", 0, "viewport height in pixels (0 = default 800)")
	fs.IntVarP(&f.scale, "scale", "s", 0, "render scale percent, 10-200 (0 = 100)")
}

// parseFlags parses CLI flags and returns the positional URL arguments.
func parseFlags(args []string) (*captureFlags, []string, error) {
	fs := flag.NewFlagSet("web2pdf", flag.ContinueOnError)
	f := &captureFlags{}

	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "navigation timeout (e.g., 30s, 2m)")
	fs.StringVar(&f.settle, "settle", "", "post-load settle delay (e.g., 3s)")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers for batch capture (0 = auto)")
	fs.StringVar(&f.browserBin, "browser-bin", "", "Chrome/Chromium binary path")
	fs.StringVar(&f.logFile, "log-file", "", "rotating log file path")
	fs.BoolVar(&f.history, "history", false, "record captures in the history database")
	fs.StringVar(&f.historyPath, "history-path", "", "history database path")
	fs.BoolVar(&f.showVersion, "version", false, "show version and exit")

	addCommonFlags(fs, &f.common)
	addViewportFlags(fs, &f.viewport)

	fs.Usage = func() { printUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}
