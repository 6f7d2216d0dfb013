package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/abelbrown/slaytrack/internal/counter"
)

// runReset zeroes counters by writing the table directly. This is the
// out-of-band administrative reset; the store API deliberately has none.
func runReset() {
	fs := flag.NewFlagSet("reset", flag.ExitOnError)
	dbPath := fs.String("db", defaultDBPath(), "counter database path")
	name := fs.String("name", "", "counter to reset (default: all)")
	fs.Parse(os.Args[1:])

	store, err := counter.NewStore(*dbPath, counter.Group)
	if err != nil {
		fmt.Fprintf(os.Stderr, "slayctl: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	var result int64
	if *name == "" {
		res, err := store.DB().Exec(
			"UPDATE counters SET value = 0, updated_at = CURRENT_TIMESTAMP WHERE grp = ?",
			counter.Group)
		if err != nil {
			fmt.Fprintf(os.Stderr, "slayctl: reset failed: %v\n", err)
			os.Exit(1)
		}
		result, _ = res.RowsAffected()
	} else {
		res, err := store.DB().Exec(
			"UPDATE counters SET value = 0, updated_at = CURRENT_TIMESTAMP WHERE grp = ? AND name = ?",
			counter.Group, *name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "slayctl: reset failed: %v\n", err)
			os.Exit(1)
		}
		result, _ = res.RowsAffected()
	}

	fmt.Printf("Reset %d counter(s)\n", result)
}
