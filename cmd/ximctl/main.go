// ximctl queries a running ximd over D-Bus.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"ximd/internal/control"
)

var (
	busName = flag.String("bus", "session", "D-Bus bus: session or system")
	asJSON  = flag.Bool("json", false, "print JSON")
	timeout = flag.Duration("timeout", 2*time.Second, "call timeout")
)

// querier is the subset of *control.Client the commands use.
type querier interface {
	Status(ctx context.Context) (control.Status, error)
	ListInputContexts(ctx context.Context) ([]uint64, error)
	IsAlive(ctx context.Context, ic uint64) (bool, error)
	Introspect(ctx context.Context) (string, error)
}

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(1)
	}

	cmd := flag.Arg(0)
	if cmd == "help" {
		usage()
		return
	}

	client, err := control.Dial(*busName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := runCommand(ctx, client, os.Stdout, cmd, flag.Args()[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `ximctl - Query a running ximd

Usage: ximctl [options] <command> [args]

Commands:
  status          Show live context count and dispatch counters
  list            List live input contexts
  alive <ic>      Report whether an input context is live
  introspect      Print the D-Bus introspection XML
  help            Show this help message

Options:
  -bus <name>     session or system (default: session)
  -json           Print JSON instead of text
  -timeout <d>    Call timeout (default: 2s)`)
}

func runCommand(ctx context.Context, q querier, w io.Writer, cmd string, args []string) error {
	switch cmd {
	case "status":
		return cmdStatus(ctx, q, w)
	case "list":
		return cmdList(ctx, q, w)
	case "alive":
		if len(args) < 1 {
			return fmt.Errorf("usage: ximctl alive <ic>")
		}
		return cmdAlive(ctx, q, w, args[0])
	case "introspect":
		xml, err := q.Introspect(ctx)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, xml)
		return err
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func cmdStatus(ctx context.Context, q querier, w io.Writer) error {
	st, err := q.Status(ctx)
	if err != nil {
		return err
	}
	if *asJSON {
		return writeJSON(w, st)
	}

	fmt.Fprintln(w, "=== ximd Status ===")
	fmt.Fprintf(w, "Live input contexts: %d\n", st.Live)
	fmt.Fprintf(w, "Messages dispatched: %d\n", st.Dispatched)
	fmt.Fprintf(w, "Dead-context calls:  %d\n", st.Rejected)
	fmt.Fprintf(w, "Unsupported:         %d\n", st.Unsupported)
	return nil
}

func cmdList(ctx context.Context, q querier, w io.Writer) error {
	ics, err := q.ListInputContexts(ctx)
	if err != nil {
		return err
	}
	if *asJSON {
		if ics == nil {
			ics = []uint64{}
		}
		return writeJSON(w, ics)
	}

	if len(ics) == 0 {
		fmt.Fprintln(w, "No live input contexts")
		return nil
	}
	for _, ic := range ics {
		fmt.Fprintf(w, "%#x\n", ic)
	}
	return nil
}

func cmdAlive(ctx context.Context, q querier, w io.Writer, arg string) error {
	ic, err := strconv.ParseUint(arg, 0, 64)
	if err != nil {
		return fmt.Errorf("invalid input context %q: %w", arg, err)
	}
	alive, err := q.IsAlive(ctx, ic)
	if err != nil {
		return err
	}
	if *asJSON {
		return writeJSON(w, map[string]any{"ic": ic, "alive": alive})
	}
	if alive {
		fmt.Fprintf(w, "%#x: live\n", ic)
	} else {
		fmt.Fprintf(w, "%#x: dead\n", ic)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
