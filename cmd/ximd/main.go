// ximd is an X Input Method server built on xcb-imdkit.
//
// It registers an input method on the X display, forwards every key event
// back to the client unchanged and commits a fixed test string when 't' is
// pressed. Live input contexts and dispatch counters are exported on D-Bus
// (see ximctl) and, optionally, as Prometheus metrics.
//
// Usage:
//
//	ximd [run] [-config path] [-display name]
//	ximd config [-format toml|json|yaml] [-o path] [-init]
//	ximd version
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"ximd/internal/config"
	"ximd/internal/imdkit"
)

var version = "dev"

func main() {
	args := os.Args[1:]
	cmd := "run"
	if len(args) > 0 && len(args[0]) > 0 && args[0][0] != '-' {
		cmd, args = args[0], args[1:]
	}

	var err error
	switch cmd {
	case "run":
		err = cmdRun(args)
	case "config":
		err = cmdConfig(args, os.Stdout)
	case "version":
		fmt.Printf("ximd %s\n", version)
	case "help":
		usage(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		usage(os.Stderr)
		os.Exit(2)
	}

	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "ximd: %v\n", err)
		if errors.Is(err, imdkit.ErrUnavailable) {
			fmt.Fprintln(os.Stderr, "rebuild with: go build -tags imdkit ./cmd/ximd")
		}
		os.Exit(1)
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, `ximd - X Input Method server

USAGE:
    ximd [command] [options]

COMMANDS:
    run         Run the input method server (default)
    config      Print the effective configuration
    version     Print the version
    help        Show this help message

RUN OPTIONS:
    -config <path>    Config file (default: $XDG_CONFIG_HOME/ximd/config.toml)
    -display <name>   X display (default: $DISPLAY)
    -log-level <lvl>  Override logging.level
    -strict           Panic on protocol violations

CONFIG OPTIONS:
    -config <path>    Config file to start from
    -format <fmt>     Output format: toml, json or yaml
    -o <path>         Write to a file instead of stdout
    -init             Write the defaults to -config if it does not exist`)
}

func cmdRun(args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to config file")
	display := fs.String("display", "", "X display")
	logLevel := fs.String("log-level", "", "override logging.level")
	strict := fs.Bool("strict", false, "panic on protocol violations")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return run(ctx, runOptions{
		configPath: *configPath,
		display:    *display,
		logLevel:   *logLevel,
		strict:     *strict,
	})
}

func cmdConfig(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to config file")
	format := fs.String("format", "toml", "output format: toml, json or yaml")
	out := fs.String("o", "", "output file")
	initFile := fs.Bool("init", false, "write the defaults to -config if it does not exist")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *initFile {
		path := *configPath
		if path == "" {
			path = config.ConfigPath()
		}
		_, created, err := config.LoadOrCreate(path)
		if err != nil {
			return err
		}
		if created {
			fmt.Fprintf(stdout, "wrote %s\n", path)
		} else {
			fmt.Fprintf(stdout, "%s already exists\n", path)
		}
		return nil
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	if *out != "" {
		return config.SaveConfig(cfg, *out)
	}

	data, err := cfg.Encode(*format)
	if err != nil {
		return err
	}
	_, err = stdout.Write(data)
	return err
}
