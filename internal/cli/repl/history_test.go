package repl

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestHistory_AddGet(t *testing.T) {
	h := NewHistory("", 3)
	for _, cmd := range []string{"a", "b", "b", "c", "d"} {
		h.Add(cmd)
	}

	if got := h.Entries(); !reflect.DeepEqual(got, []string{"b", "c", "d"}) {
		t.Errorf("Entries() = %v", got)
	}
	tests := []struct {
		index int
		want  string
	}{
		{0, "d"},
		{2, "b"},
		{3, ""},
		{-1, ""},
	}
	for _, tt := range tests {
		if got := h.Get(tt.index); got != tt.want {
			t.Errorf("Get(%d) = %q, want %q", tt.index, got, tt.want)
		}
	}
}

func TestNewHistory_DefaultSize(t *testing.T) {
	if h := NewHistory("", 0); h.maxSize != DefaultHistorySize {
		t.Errorf("maxSize = %d", h.maxSize)
	}
}

func TestHistory_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dir", "history")

	h := NewHistory(path, 10)
	h.Add("swap -a 1")
	h.Add("quote -a 2")
	if err := h.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}

	loaded := NewHistory(path, 10)
	if err := loaded.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := loaded.Entries(); !reflect.DeepEqual(got, []string{"swap -a 1", "quote -a 2"}) {
		t.Errorf("Entries() = %v", got)
	}
}

func TestHistory_LoadTrims(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history")
	if err := os.WriteFile(path, []byte("a\n\nb\nc\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	h := NewHistory(path, 2)
	if err := h.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := h.Entries(); !reflect.DeepEqual(got, []string{"b", "c"}) {
		t.Errorf("Entries() = %v", got)
	}
}

func TestHistory_MissingFile(t *testing.T) {
	h := NewHistory(filepath.Join(t.TempDir(), "absent"), 10)
	if err := h.Load(); err != nil {
		t.Errorf("Load() error = %v", err)
	}
}

func TestHistory_InMemory(t *testing.T) {
	h := NewHistory("", 10)
	h.Add("x")
	if err := h.Save(); err != nil {
		t.Errorf("Save() error = %v", err)
	}
	if err := h.Load(); err != nil {
		t.Errorf("Load() error = %v", err)
	}
}
