package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/foxtools/foxessctl/internal/foxess"
)

// The client already caps each request at 30s; this bounds the whole
// list-then-fetch pipeline.
const runTimeout = 60 * time.Second

var (
	apiKey   = flag.String("key", "", "FoxESS API key (defaults to $FOXESS_API_KEY or $FOXESS_API_KEY_FILE)")
	testOnly = flag.Bool("test", false, "test the API key only")
	showAll  = flag.Bool("all", false, "show all available variables")
	decimals = flag.Int("decimals", 2, "decimal places for numeric output")
	jsonOut  = flag.Bool("json", false, "emit JSON instead of text")
	debug    = flag.Bool("debug", false, "enable debug output")
)

func main() {
	flag.Usage = usage
	flag.Parse()

	logger := newLogger(*debug)

	cfg, err := resolveConfig(*apiKey)
	if err != nil {
		fatal("config", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	session := foxess.NewSession(cfg, foxess.NewClient(cfg, logger))
	out := outputMode{json: *jsonOut}

	if *testOnly {
		if session.TestAuthentication(ctx) {
			out.testResult(true, "API key is valid")
			return
		}
		out.testResult(false, "API key is invalid or there was a connection problem")
		os.Exit(1)
	}

	session.Authenticate()

	devices, err := session.ListDevices(ctx)
	if err != nil {
		fatal("list devices", err)
	}
	if len(devices) == 0 {
		fmt.Println("No devices found for this account")
		return
	}
	device := devices[0]
	logger.Debug().
		Str("station", device.StationName).
		Str("device_sn", device.SerialNumber).
		Msg("using first device")

	points, err := session.FetchRealtime(ctx, device.SerialNumber)
	if err != nil {
		fatal("fetch realtime data", err)
	}

	switch {
	case *showAll:
		out.dumpAll(points, *decimals)
	case flag.NArg() > 0:
		out.variables(points, flag.Args(), *decimals)
	default:
		out.summary(buildSummary(device, points), *decimals)
	}
}

// resolveConfig prefers an explicit -key but still honors endpoint
// and timezone overrides from the environment.
func resolveConfig(apiKey string) (foxess.Config, error) {
	if apiKey != "" {
		return foxess.Config{
			APIKey:   apiKey,
			BaseURL:  os.Getenv("FOXESS_BASE_URL"),
			Timezone: os.Getenv("FOXESS_TIMEZONE"),
		}, nil
	}
	return foxess.FromEnv()
}

func newLogger(debug bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}

func usage() {
	printUsage(os.Stderr)
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "foxessctl [flags] [variable ...]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Queries FoxESS cloud realtime data for the account's device.")
	fmt.Fprintln(w, "With no variables, prints a power-flow summary. Trailing")
	fmt.Fprintln(w, "arguments select individual variables.")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Flags:")
	flag.CommandLine.SetOutput(w)
	flag.PrintDefaults()
}

func fatal(action string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", action, err)
	os.Exit(1)
}
