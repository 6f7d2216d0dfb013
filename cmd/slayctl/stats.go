package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/abelbrown/slaytrack/internal/config"
	"github.com/abelbrown/slaytrack/internal/counter"
	"github.com/abelbrown/slaytrack/internal/tracker"
)

// runStats prints every persisted counter plus the same summary line the
// in-panel !tasks command produces.
func runStats() {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	dbPath := fs.String("db", defaultDBPath(), "counter database path")
	fs.Parse(os.Args[1:])

	store, err := counter.NewStore(*dbPath, counter.Group)
	if err != nil {
		fmt.Fprintf(os.Stderr, "slayctl: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "slayctl: %v\n", err)
		os.Exit(1)
	}

	counts := store.All()
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Printf("Counters (%s):\n", counter.Group)
	if len(names) == 0 {
		fmt.Println("  (none recorded yet)")
	}
	for _, name := range names {
		fmt.Printf("  %-20s %d\n", name, counts[name])
	}

	tr := tracker.New(store, cfg, nil, nil)
	fmt.Printf("\n%s\n", tr.Summary())
}
