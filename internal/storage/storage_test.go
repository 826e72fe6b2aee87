package storage

import (
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOptionsDefaultsWhenEmpty(t *testing.T) {
	s := openTestStore(t)
	opts, err := s.LoadOptions()
	if err != nil {
		t.Fatal(err)
	}
	want := DefaultOptions()
	if *opts != *want {
		t.Errorf("fresh store options = %+v, want defaults %+v", opts, want)
	}
}

func TestOptionsRoundtrip(t *testing.T) {
	s := openTestStore(t)
	in := &Options{HashMB: 128, DefaultDepth: 9}
	if err := s.SaveOptions(in); err != nil {
		t.Fatal(err)
	}
	out, err := s.LoadOptions()
	if err != nil {
		t.Fatal(err)
	}
	if *out != *in {
		t.Errorf("options roundtrip = %+v, want %+v", out, in)
	}
}

func TestRecordSearchAccumulates(t *testing.T) {
	s := openTestStore(t)
	if err := s.RecordSearch(1000, 250*time.Millisecond); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordSearch(500, 100*time.Millisecond); err != nil {
		t.Fatal(err)
	}

	stats, err := s.LoadStats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.Searches != 2 || stats.Nodes != 1500 || stats.TimeMs != 350 {
		t.Errorf("stats = %+v, want 2 searches, 1500 nodes, 350ms", stats)
	}
}
