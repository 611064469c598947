package kvstore

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func testStore(t *testing.T, s Store) {
	if _, err := s.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	val := []byte(`{"result":"ok"}`)
	if err := s.Put("horizons_499_2024-01-01_2024-02-01_1d", val); err != nil {
		t.Fatalf("put: %s", err)
	}
	got, err := s.Get("horizons_499_2024-01-01_2024-02-01_1d")
	if err != nil {
		t.Fatalf("get: %s", err)
	}
	if !bytes.Equal(got, val) {
		t.Fatalf("got %q, expected %q", got, val)
	}
	// Stored values must not alias the caller's buffer.
	val[0] = 'X'
	if got, _ := s.Get("horizons_499_2024-01-01_2024-02-01_1d"); got[0] != '{' {
		t.Fatal("stored value was modified through the input slice")
	}
	if err := s.Put("horizons_499_2024-01-01_2024-02-01_1d", []byte("v2")); err != nil {
		t.Fatalf("overwrite: %s", err)
	}
	if got, _ := s.Get("horizons_499_2024-01-01_2024-02-01_1d"); string(got) != "v2" {
		t.Fatalf("overwrite not visible, got %q", got)
	}
	if err := s.Delete("horizons_499_2024-01-01_2024-02-01_1d"); err != nil {
		t.Fatalf("delete: %s", err)
	}
	if _, err := s.Get("horizons_499_2024-01-01_2024-02-01_1d"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.Delete("horizons_499_2024-01-01_2024-02-01_1d"); err != nil {
		t.Fatalf("deleting a missing key: %s", err)
	}
	for _, key := range []string{"", "..", "a/b", `a\b`} {
		if err := s.Put(key, val); !errors.Is(err, ErrInvalidKey) {
			t.Fatalf("key %q: expected ErrInvalidKey, got %v", key, err)
		}
	}
}

func TestMemStore(t *testing.T) {
	s := NewMemStore()
	testStore(t, s)
	if s.Len() != 0 {
		t.Fatalf("expected empty store, got %d keys", s.Len())
	}
}

func TestDirStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	s, err := NewDirStore(dir)
	if err != nil {
		t.Fatalf("%s", err)
	}
	if s.Dir() != dir {
		t.Fatalf("unexpected dir %s", s.Dir())
	}
	testStore(t, s)
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("%s", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no leftover files, got %d", len(entries))
	}
}

func TestDirStoreCull(t *testing.T) {
	s, err := NewDirStore(t.TempDir())
	if err != nil {
		t.Fatalf("%s", err)
	}
	now := time.Now()
	for i, key := range []string{"old", "mid", "new"} {
		if err := s.Put(key, bytes.Repeat([]byte{'a'}, 100)); err != nil {
			t.Fatalf("%s", err)
		}
		mod := now.Add(time.Duration(i-3) * time.Hour)
		if err := os.Chtimes(filepath.Join(s.Dir(), key), mod, mod); err != nil {
			t.Fatalf("%s", err)
		}
	}
	if err := s.Cull(150); err != nil {
		t.Fatalf("%s", err)
	}
	for key, exists := range map[string]bool{"old": false, "mid": false, "new": true} {
		_, err := s.Get(key)
		if exists && err != nil {
			t.Fatalf("%s should have been kept: %v", key, err)
		}
		if !exists && !errors.Is(err, ErrNotFound) {
			t.Fatalf("%s should have been culled: %v", key, err)
		}
	}
}
