// inputidctl - command-line client for the inputid daemon
//
// Talks to inputidd over its unix socket for identification, decodes
// serialized payloads offline, and compiles the hardware database into
// its SQLite store.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	_ "github.com/nerrad567/inputid/migrations"

	"github.com/nerrad567/inputid/internal/device"
	"github.com/nerrad567/inputid/internal/hwdb"
	"github.com/nerrad567/inputid/internal/infrastructure/config"
	"github.com/nerrad567/inputid/internal/infrastructure/database"
)

var version = "dev" // Set at build time via ldflags

const defaultSocketPath = "/run/inputid/inputid.sock"

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) == 0 {
		usage(out)
		return fmt.Errorf("no command given")
	}

	switch args[0] {
	case "show":
		return cmdShow(args[1:], out)
	case "usb":
		return cmdUSB(args[1:], out)
	case "tree":
		return cmdTree(args[1:], out)
	case "decode":
		return cmdDecode(args[1:], out)
	case "compiledb":
		return cmdCompileDB(args[1:], out)
	case "version":
		fmt.Fprintf(out, "inputidctl %s\n", version)
		return nil
	case "help", "-h", "--help":
		usage(out)
		return nil
	default:
		usage(out)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func usage(out io.Writer) {
	fmt.Fprint(out, `Usage: inputidctl <command> [flags] [args]

Commands:
  show [-kind evdev|hidraw] [-watch] <device-path>
        Identify a device node via the daemon and print its payload.
        With -watch, block until the daemon reports the node removed.
  usb [-bus <name>] <vendor:product>
        Identify by USB identifiers alone (hex, e.g. 054c:09cc).
  tree [-api <url>]
        Dump the daemon's registry grouped by physical device. Needs
        the HTTP API enabled in the daemon config.
  decode [file]
        Decode a serialized payload from a file or stdin.
  compiledb [-config <path>]
        Compile built-in entries plus overrides into the SQLite store.
  version
        Print the client version.

Flags common to show and usb:
  -socket <path>   daemon socket (default `+defaultSocketPath+`)
`)
}

// cmdShow opens the device node and hands its descriptor to the daemon
// for identification. The daemon probes through the fd, so inputidctl
// needs read access to the node but no other privilege.
func cmdShow(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	socket := fs.String("socket", defaultSocketPath, "daemon socket path")
	kind := fs.String("kind", "evdev", "device kind: evdev or hidraw")
	watch := fs.Bool("watch", false, "block until the device is removed")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("show: expected one device path, got %d", fs.NArg())
	}
	path := fs.Arg(0)

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck // Read-only fd

	c, err := dial(*socket)
	if err != nil {
		return err
	}
	defer c.close()

	resp, err := c.roundTrip(request{Op: "identify", Kind: *kind}, f)
	if err != nil {
		return err
	}
	fmt.Fprint(out, resp.Payload)
	if resp.Physical != "" {
		fmt.Fprintf(out, "physical %s\n", resp.Physical)
	}

	if !*watch {
		return nil
	}
	fmt.Fprintf(out, "watching %s for removal...\n", path)
	ev, err := c.roundTrip(request{Op: "watch", Handle: resp.Handle}, nil)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "event %s\n", ev.Event)
	return nil
}

// cmdUSB identifies from bare identifiers, the no-hardware path for
// scripts and provisioning checks.
func cmdUSB(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("usb", flag.ContinueOnError)
	socket := fs.String("socket", defaultSocketPath, "daemon socket path")
	bus := fs.String("bus", "", "bus name (default usb)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usb: expected one vendor:product argument, got %d", fs.NArg())
	}

	vendor, product, err := parseUSBID(fs.Arg(0))
	if err != nil {
		return err
	}

	c, err := dial(*socket)
	if err != nil {
		return err
	}
	defer c.close()

	resp, err := c.roundTrip(request{Op: "identify-usb", Vendor: vendor, Product: product, Bus: *bus}, nil)
	if err != nil {
		return err
	}
	fmt.Fprint(out, resp.Payload)
	return nil
}

// parseUSBID parses "vvvv:pppp" hex identifiers, lsusb style.
func parseUSBID(s string) (vendor, product uint16, err error) {
	v, p, found := strings.Cut(s, ":")
	if !found {
		return 0, 0, fmt.Errorf("bad id %q: want vendor:product (e.g. 054c:09cc)", s)
	}
	var vv, pv uint64
	if _, err := fmt.Sscanf(v, "%x", &vv); err != nil || vv > 0xffff {
		return 0, 0, fmt.Errorf("bad vendor %q", v)
	}
	if _, err := fmt.Sscanf(p, "%x", &pv); err != nil || pv > 0xffff {
		return 0, 0, fmt.Errorf("bad product %q", p)
	}
	return uint16(vv), uint16(pv), nil
}

// cmdDecode reconstructs a device from a serialized payload with no
// daemon and no privilege, then prints its fields.
func cmdDecode(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("decode", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	var data []byte
	var err error
	switch fs.NArg() {
	case 0:
		data, err = io.ReadAll(os.Stdin)
	case 1:
		data, err = os.ReadFile(fs.Arg(0))
	default:
		return fmt.Errorf("decode: expected at most one file argument")
	}
	if err != nil {
		return fmt.Errorf("reading payload: %w", err)
	}

	dev, err := device.Deserialize(string(data))
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "bus:      %s\n", dev.Bus())
	fmt.Fprintf(out, "vendor:   0x%04x\n", dev.Vendor())
	fmt.Fprintf(out, "product:  0x%04x\n", dev.Product())
	if dev.Name() != "" {
		fmt.Fprintf(out, "name:     %s\n", dev.Name())
	}
	if caps := dev.Capabilities().Sorted(); len(caps) > 0 {
		tags := make([]string, 0, len(caps))
		for _, c := range caps {
			tags = append(tags, string(c))
		}
		fmt.Fprintf(out, "caps:     %s\n", strings.Join(tags, " "))
	}
	if dev.PhysicalType() != "" {
		fmt.Fprintf(out, "type:     %s\n", dev.PhysicalType())
	}
	return nil
}

// cmdCompileDB flattens the built-in entries plus override fragments
// into the SQLite store that inputidd loads when hwdb.use_store is set.
func cmdCompileDB(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("compiledb", flag.ContinueOnError)
	configPath := fs.String("config", "", "daemon config file (defaults used when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
	} else {
		cfg = config.Default()
	}
	if err != nil {
		return err
	}

	overrides, err := hwdb.LoadDir(cfg.Hwdb.OverridesDir)
	if err != nil {
		return err
	}
	entries := hwdb.Merge(hwdb.Builtin(), overrides)

	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck // Read-write handle, compile already flushed

	ctx := context.Background()
	if err := db.Migrate(ctx); err != nil {
		return err
	}
	if err := hwdb.Compile(ctx, db, entries); err != nil {
		return err
	}

	fmt.Fprintf(out, "compiled %d entries (%d built-in, %d overrides) into %s\n",
		len(entries), len(hwdb.Builtin()), len(overrides), cfg.Database.Path)
	return nil
}
