package main

import (
	"fmt"
	"io"
)

// printUsage prints the usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: web2pdf [flags] <url> [url...]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Capture web pages as PDF documents with a metadata header and footer.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file (single URL) or directory")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers for batch capture (0 = auto)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rendering:")
	fmt.Fprintln(w, "      --width <n>           Viewport width in pixels (default 1280)")
	fmt.Fprintln(w, "      --height <n>          Viewport height in pixels (default 800)")
	fmt.Fprintln(w, "  -s, --scale <n>           Render scale percent, 10-200 (default 100)")
	fmt.Fprintln(w, "  -t, --timeout <d>         Navigation timeout (e.g., 30s, 2m)")
	fmt.Fprintln(w, "      --settle <d>          Post-load settle delay (e.g., 3s)")
	fmt.Fprintln(w, "      --browser-bin <path>  Chrome/Chromium binary path")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "History:")
	fmt.Fprintln(w, "      --history             Record captures in the history database")
	fmt.Fprintln(w, "      --history-path <path> History database path")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Logging:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show detailed progress")
	fmt.Fprintln(w, "      --log-file <path>     Rotating log file path")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "      --version             Show version and exit")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintf(w, "  %s   Chrome/Chromium binary for containers\n", browserBinEnv)
}
