package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"jscr/interpreter-go/pkg/config"
)

const cliToolVersion = "jscr 0.1.0-dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// cli carries the streams and tool configuration shared by subcommands.
type cli struct {
	stdout io.Writer
	stderr io.Writer
	cfg    *config.Config
	logger *slog.Logger
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stderr)
		return 1
	}
	switch args[0] {
	case "--help", "-h", "help":
		printUsage(stdout)
		return 0
	case "--version", "-V", "version":
		fmt.Fprintln(stdout, cliToolVersion)
		return 0
	}

	cfg, err := config.LoadDir(".")
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	level, _ := cfg.LogLevel()
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	c := &cli{stdout: stdout, stderr: stderr, cfg: cfg, logger: logger}

	switch args[0] {
	case "run":
		return c.runCommand(args[1:])
	case "check":
		return c.checkCommand(args[1:])
	case "parse":
		return c.parseCommand(args[1:])
	case "repl":
		return c.replCommand(args[1:])
	case "deps":
		return c.depsCommand(args[1:])
	default:
		return c.runCommand(args)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  jscr run [--watch] [--metrics-addr addr] [file.jscr]")
	fmt.Fprintln(w, "  jscr <file.jscr>")
	fmt.Fprintln(w, "  jscr check [file.jscr]")
	fmt.Fprintln(w, "  jscr parse [--format json|yaml] <file.jscr>")
	fmt.Fprintln(w, "  jscr repl")
	fmt.Fprintln(w, "  jscr deps install")
	fmt.Fprintln(w, "  jscr version")
}
