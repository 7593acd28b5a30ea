package main

import (
	"fmt"
	"io"
	"os"
)

const (
	defaultPassEnv = "SHELL_OVERLORD_PASS"
	defaultRPC     = "http://127.0.0.1:8080"
)

type command struct {
	name    string
	summary string
	run     func(args []string, stdout io.Writer) error
}

var commands = []command{
	{"keygen", "generate an encrypted Overlord keystore", runKeygen},
	{"address", "print the address held by a keystore", runAddress},
	{"sign-spirit", "sign a spirit redemption ticket for an account", runSignSpirit},
	{"sign-whitelist", "sign a hero whitelist ticket for an account", runSignWhitelist},
	{"draw-lottery", "draw preorder results from a YAML plan", runDrawLottery},
	{"export-events", "export archived events to a parquet file", runExportEvents},
}

func main() {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(1)
	}
	for _, cmd := range commands {
		if cmd.name == os.Args[1] {
			if err := cmd.run(os.Args[2:], os.Stdout); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		}
	}
	usage(os.Stderr)
	os.Exit(1)
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: shellctl <command> [flags]")
	fmt.Fprintln(w)
	for _, cmd := range commands {
		fmt.Fprintf(w, "  %-16s %s\n", cmd.name, cmd.summary)
	}
}
