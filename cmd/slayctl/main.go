// Command slayctl is the maintenance CLI for slaytrack.
//
// Usage:
//
//	slayctl                 Show help
//	slayctl stats           Print counters and the !tasks summary line
//	slayctl reset           Zero all counters (out-of-band admin action)
//	slayctl reset -name X   Zero a single counter
package main

import (
	"fmt"
	"os"
	"path/filepath"
)

const usage = `slayctl — slaytrack maintenance CLI

Usage:
  slayctl <command> [flags]

Commands:
  stats       Print all counters and the !tasks summary line
  reset       Zero counters by writing the store directly

The tracker itself never resets a counter; reset exists here precisely so
that stays true.

Run 'slayctl <command> -h' for command-specific help.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(0)
	}

	cmd := os.Args[1]
	// Strip the program name + subcommand so flag sets see only their flags
	os.Args = os.Args[1:]

	switch cmd {
	case "stats":
		runStats()
	case "reset":
		runReset()
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "slayctl: unknown command %q\n\n", cmd)
		fmt.Print(usage)
		os.Exit(1)
	}
}

// defaultDBPath returns the counter database the tracker writes.
func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "slayctl: cannot determine home directory: %v\n", err)
		os.Exit(1)
	}
	return filepath.Join(home, ".slaytrack", "counters.db")
}
