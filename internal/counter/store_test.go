package counter

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestNewStore(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "slaytrack-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	dbPath := filepath.Join(tmpDir, "counters.db")
	store, err := NewStore(dbPath, Group)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestGetDefaultsToZero(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	if got := store.Get("neverSet"); got != 0 {
		t.Errorf("Get on missing counter = %d, expected 0", got)
	}
}

func TestIncrementAndGet(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	for i := int64(1); i <= 5; i++ {
		got, err := store.Increment("taskCount")
		if err != nil {
			t.Fatalf("Increment failed: %v", err)
		}
		if got != i {
			t.Errorf("Increment returned %d, expected %d", got, i)
		}
	}

	if got := store.Get("taskCount"); got != 5 {
		t.Errorf("Get = %d, expected 5", got)
	}
}

func TestIncrementIsolatedPerName(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	if _, err := store.Increment("a"); err != nil {
		t.Fatalf("Increment failed: %v", err)
	}
	if _, err := store.Increment("b"); err != nil {
		t.Fatalf("Increment failed: %v", err)
	}
	if _, err := store.Increment("b"); err != nil {
		t.Fatalf("Increment failed: %v", err)
	}

	if got := store.Get("a"); got != 1 {
		t.Errorf("a = %d, expected 1", got)
	}
	if got := store.Get("b"); got != 2 {
		t.Errorf("b = %d, expected 2", got)
	}
}

func TestRestartDurability(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "slaytrack-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tmpDir) })
	dbPath := filepath.Join(tmpDir, "counters.db")

	store, err := NewStore(dbPath, Group)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	for i := 0; i < 7; i++ {
		if _, err := store.Increment("taskCount"); err != nil {
			t.Fatalf("Increment failed: %v", err)
		}
	}
	if _, err := store.Increment("cannonBreakCount"); err != nil {
		t.Fatalf("Increment failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// Simulated restart: reopen and verify values survive
	reopened, err := NewStore(dbPath, Group)
	if err != nil {
		t.Fatalf("NewStore after restart failed: %v", err)
	}
	defer reopened.Close()

	if got := reopened.Get("taskCount"); got != 7 {
		t.Errorf("taskCount after restart = %d, expected 7", got)
	}
	if got := reopened.Get("cannonBreakCount"); got != 1 {
		t.Errorf("cannonBreakCount after restart = %d, expected 1", got)
	}
}

func TestConcurrentIncrementsLoseNothing(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	const workers = 8
	const perWorker = 25

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				if _, err := store.Increment("taskCount"); err != nil {
					t.Errorf("Increment failed: %v", err)
				}
			}
		}()
	}
	wg.Wait()

	if got := store.Get("taskCount"); got != workers*perWorker {
		t.Errorf("final count = %d, expected %d", got, workers*perWorker)
	}
}

func TestPersistFailureKeepsInMemoryValue(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	if _, err := store.Increment("taskCount"); err != nil {
		t.Fatalf("Increment failed: %v", err)
	}

	// Break persistence out from under the store
	if _, err := store.db.Exec("DROP TABLE counters"); err != nil {
		t.Fatalf("failed to drop table: %v", err)
	}

	got, err := store.Increment("taskCount")
	if err == nil {
		t.Fatal("expected persist error after dropping table")
	}
	if got != 2 {
		t.Errorf("in-memory value = %d, expected 2", got)
	}

	// The cache stays authoritative for reads while unpersisted
	if got := store.Get("taskCount"); got != 2 {
		t.Errorf("Get after failed persist = %d, expected 2", got)
	}

	// Restore storage: the next increment writes the correct total
	if err := store.migrate(); err != nil {
		t.Fatalf("failed to recreate table: %v", err)
	}
	got, err = store.Increment("taskCount")
	if err != nil {
		t.Fatalf("Increment after recovery failed: %v", err)
	}
	if got != 3 {
		t.Errorf("value after recovery = %d, expected 3", got)
	}

	// The absolute value landed, superseding the failed write
	var persisted int64
	err = store.db.QueryRow(
		"SELECT value FROM counters WHERE grp = ? AND name = ?", Group, "taskCount",
	).Scan(&persisted)
	if err != nil {
		t.Fatalf("failed to read persisted value: %v", err)
	}
	if persisted != 3 {
		t.Errorf("persisted value = %d, expected 3", persisted)
	}
}

func TestGetSeesExternalChanges(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	if _, err := store.Increment("taskCount"); err != nil {
		t.Fatalf("Increment failed: %v", err)
	}

	// Out-of-band write, as slayctl reset would do
	if _, err := store.db.Exec(
		"UPDATE counters SET value = 40 WHERE grp = ? AND name = ?", Group, "taskCount",
	); err != nil {
		t.Fatalf("external update failed: %v", err)
	}

	if got := store.Get("taskCount"); got != 40 {
		t.Errorf("Get after external change = %d, expected 40", got)
	}
}

func TestAll(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	for _, name := range []string{"taskCount", "slaughterCount", "slaughterCount"} {
		if _, err := store.Increment(name); err != nil {
			t.Fatalf("Increment failed: %v", err)
		}
	}

	all := store.All()
	if len(all) != 2 {
		t.Fatalf("expected 2 counters, got %d", len(all))
	}
	if all["taskCount"] != 1 || all["slaughterCount"] != 2 {
		t.Errorf("unexpected values: %v", all)
	}
}

func TestSeedSkipsNegativeValues(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "slaytrack-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tmpDir) })
	dbPath := filepath.Join(tmpDir, "counters.db")

	store, err := NewStore(dbPath, Group)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	// A corrupt negative row must read as zero, never as an error
	if _, err := store.db.Exec(
		"INSERT INTO counters (grp, name, value) VALUES (?, ?, ?)", Group, "broken", -5,
	); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	store.Close()

	reopened, err := NewStore(dbPath, Group)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	defer reopened.Close()

	if got := reopened.Get("broken"); got != 0 {
		t.Errorf("negative persisted value read as %d, expected 0", got)
	}
}

// newTestStore creates a temporary store for testing.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	tmpDir, err := os.MkdirTemp("", "slaytrack-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	store, err := NewStore(filepath.Join(tmpDir, "counters.db"), Group)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	return store
}
