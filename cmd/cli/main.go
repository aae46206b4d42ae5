package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	flag "github.com/spf13/pflag"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/adapters/launcher"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/adapters/opener"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/config"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/logger"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/ports"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, opener.Browser{})
	stop()
	os.Exit(code)
}

// run executes one CLI invocation and returns the process exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer, urlOpener ports.URLOpener) int {
	global := flag.NewFlagSet("bookmarks", flag.ContinueOnError)
	global.SetInterspersed(false)
	global.SetOutput(io.Discard)
	dbPath := global.String("db", "", "database file (default: DATABASE_PATH or the user data dir)")
	asJSON := global.Bool("json", false, "print JSON instead of text")

	if err := global.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printUsage(stdout, global)
			return 0
		}
		fmt.Fprintln(stderr, "error:", err)
		printUsage(stderr, global)
		return 2
	}

	rest := global.Args()
	if len(rest) == 0 {
		printUsage(stderr, global)
		return 2
	}

	cmd, ok := lookup(rest[0])
	if !ok {
		fmt.Fprintf(stderr, "error: unknown command %q\n", rest[0])
		printUsage(stderr, global)
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	if *dbPath != "" {
		cfg.DatabasePath = *dbPath
	}

	// mutations log at info; keep the terminal quiet unless asked
	level := cfg.LogLevel
	if _, ok := os.LookupEnv("LOG_LEVEL"); !ok {
		level = "warn"
	}
	lg, err := logger.New(level, cfg.LogPretty)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	defer func() { _ = lg.Sync() }()

	a := &app{
		commands: launcher.NewCommands(launcher.FileStore(cfg.DatabasePath, lg), urlOpener, lg),
		out:      stdout,
		json:     *asJSON,
	}
	return cmd.run(ctx, a, rest[1:], stdout, stderr)
}

func printUsage(w io.Writer, global *flag.FlagSet) {
	fmt.Fprintln(w, "Usage: bookmarks [--db path] [--json] <command> [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, c := range commands() {
		fmt.Fprintf(w, "  %-40s %s\n", c.usage, c.short)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global flags:")
	var buf strings.Builder
	global.SetOutput(&buf)
	global.PrintDefaults()
	global.SetOutput(io.Discard)
	fmt.Fprint(w, buf.String())
}
