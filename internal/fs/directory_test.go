package fs

import (
	"errors"
	"strings"
	"testing"
)

func TestDirectoryAddFind(t *testing.T) {
	dir := NewDirectory(4)

	if err := dir.Add("foo", 17, EntryFile); err != nil {
		t.Fatalf("Failed to add entry: %v", err)
	}
	if got := dir.Find("foo"); got != 17 {
		t.Errorf("Expected sector 17, got %d", got)
	}
	if got := dir.Find("bar"); got != -1 {
		t.Errorf("Expected -1 for missing name, got %d", got)
	}

	entry, ok := dir.FindEntry("foo")
	if !ok {
		t.Fatal("Expected to find entry for foo")
	}
	if entry.Type != EntryFile || entry.Sector != 17 || entry.Name != "foo" {
		t.Errorf("Unexpected entry: %+v", entry)
	}
}

func TestDirectoryDuplicate(t *testing.T) {
	dir := NewDirectory(4)
	if err := dir.Add("foo", 2, EntryFile); err != nil {
		t.Fatalf("Failed to add entry: %v", err)
	}

	err := dir.Add("foo", 3, EntryDirectory)
	if !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("Expected ErrAlreadyExists, got %v", err)
	}
	if got := dir.Find("foo"); got != 2 {
		t.Errorf("Duplicate add should not change the entry, got sector %d", got)
	}
}

func TestDirectoryFull(t *testing.T) {
	dir := NewDirectory(2)
	if err := dir.Add("a", 2, EntryFile); err != nil {
		t.Fatalf("Failed to add entry: %v", err)
	}
	if err := dir.Add("b", 3, EntryFile); err != nil {
		t.Fatalf("Failed to add entry: %v", err)
	}

	err := dir.Add("c", 4, EntryFile)
	if !errors.Is(err, ErrDirectoryFull) {
		t.Errorf("Expected ErrDirectoryFull, got %v", err)
	}
}

func TestDirectoryRemove(t *testing.T) {
	dir := NewDirectory(4)
	if err := dir.Add("foo", 2, EntryFile); err != nil {
		t.Fatalf("Failed to add entry: %v", err)
	}

	if err := dir.Remove("foo"); err != nil {
		t.Fatalf("Failed to remove entry: %v", err)
	}
	if got := dir.Find("foo"); got != -1 {
		t.Errorf("Expected removed name to be gone, got sector %d", got)
	}
	if err := dir.Remove("foo"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound removing twice, got %v", err)
	}

	// Removing frees the slot for reuse
	if err := dir.Add("bar", 5, EntryDirectory); err != nil {
		t.Fatalf("Failed to reuse slot: %v", err)
	}
}

func TestDirectoryNameTruncation(t *testing.T) {
	dir := NewDirectory(4)
	long := strings.Repeat("x", MaxNameLen+10)

	if err := dir.Add(long, 2, EntryFile); err != nil {
		t.Fatalf("Failed to add long name: %v", err)
	}
	// Lookup under both the full and the truncated name resolves
	if got := dir.Find(long); got != 2 {
		t.Errorf("Expected to find long name, got %d", got)
	}
	if got := dir.Find(long[:MaxNameLen]); got != 2 {
		t.Errorf("Expected to find truncated name, got %d", got)
	}
}

func TestDirectoryEntriesOrder(t *testing.T) {
	dir := NewDirectory(4)
	names := []string{"one", "two", "three"}
	for i, name := range names {
		if err := dir.Add(name, 10+i, EntryFile); err != nil {
			t.Fatalf("Failed to add %q: %v", name, err)
		}
	}

	entries := dir.Entries()
	if len(entries) != len(names) {
		t.Fatalf("Expected %d entries, got %d", len(names), len(entries))
	}
	for i, e := range entries {
		if e.Name != names[i] {
			t.Errorf("Entry %d: expected %q, got %q", i, names[i], e.Name)
		}
	}
}
