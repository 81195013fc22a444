package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func TestStoreSwap(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	if store.Ready() {
		t.Error("Expected store to start not ready")
	}
	if _, ok := store.Current(); ok {
		t.Error("Expected no snapshot before first swap")
	}

	rows := []RawBooking{{Hotel: "Resort Hotel"}}
	snap, err := store.Swap(rows, []byte("hotel\nResort Hotel\n"), "first.csv")
	if err != nil {
		t.Fatalf("Swap failed: %v", err)
	}
	if snap.Version == "" {
		t.Error("Expected non-empty snapshot version")
	}
	if !store.Ready() {
		t.Error("Expected store to be ready after swap")
	}

	data, err := os.ReadFile(filepath.Join(dir, "first.csv"))
	if err != nil {
		t.Fatalf("Expected cached file: %v", err)
	}
	if string(data) != "hotel\nResort Hotel\n" {
		t.Errorf("Unexpected cached file contents: %q", data)
	}
}

func TestStoreSwapReplacesPreviousFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	first, err := store.Swap(nil, []byte("a"), "first.csv")
	if err != nil {
		t.Fatalf("Swap failed: %v", err)
	}
	second, err := store.Swap(nil, []byte("b"), "second.csv")
	if err != nil {
		t.Fatalf("Swap failed: %v", err)
	}
	if first.Version == second.Version {
		t.Error("Expected distinct versions per swap")
	}

	if _, err := os.Stat(filepath.Join(dir, "first.csv")); !os.IsNotExist(err) {
		t.Error("Expected previous cached file to be removed")
	}
	if _, err := os.Stat(filepath.Join(dir, "second.csv")); err != nil {
		t.Errorf("Expected new cached file to exist: %v", err)
	}

	cur, ok := store.Current()
	if !ok || cur.Filename != "second.csv" {
		t.Errorf("Expected current snapshot to be second.csv, got %+v", cur)
	}
}

func TestStoreSwapSanitizesFilename(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	snap, err := store.Swap(nil, []byte("x"), "../../etc/passwd")
	if err != nil {
		t.Fatalf("Swap failed: %v", err)
	}
	if snap.Filename != "passwd" {
		t.Errorf("Expected base filename, got %q", snap.Filename)
	}
	if _, err := os.Stat(filepath.Join(dir, "passwd")); err != nil {
		t.Errorf("Expected cached file inside data dir: %v", err)
	}
}

func TestStoreCleanup(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	if _, err := store.Swap(nil, []byte("x"), "first.csv"); err != nil {
		t.Fatalf("Swap failed: %v", err)
	}

	store.Cleanup()

	if store.Ready() {
		t.Error("Expected store not ready after cleanup")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected empty data dir after cleanup, found %d entries", len(entries))
	}
}
