package words

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestPickRejectsUnsupportedLength(t *testing.T) {
	d := NewDictionary(map[int][]string{5: {"music"}})
	for _, n := range []int{0, 4, 8, -1} {
		if _, err := d.Pick(n); !errors.Is(err, ErrInvalidLength) {
			t.Errorf("Pick(%d) err = %v, want ErrInvalidLength", n, err)
		}
	}
}

func TestPickSingleWordIsDeterministic(t *testing.T) {
	d := NewDictionary(map[int][]string{5: {"MUSIC "}})
	for i := 0; i < 10; i++ {
		w, err := d.Pick(5)
		if err != nil {
			t.Fatalf("Pick: %v", err)
		}
		if w != "music" {
			t.Fatalf("Pick = %q, want music", w)
		}
	}
}

func TestPickEmptyList(t *testing.T) {
	d := NewDictionary(map[int][]string{5: {"music"}})
	if _, err := d.Pick(6); !errors.Is(err, ErrEmptyList) {
		t.Fatalf("err = %v, want ErrEmptyList", err)
	}
}

func TestNewDictionaryDropsInvalidWords(t *testing.T) {
	d := NewDictionary(map[int][]string{
		5: {"music", "mus1c", "toolong", "abc", "music"},
		6: {"school"},
	})
	stats := d.Stats()
	if stats[5] != 1 || stats[6] != 1 || stats[7] != 0 {
		t.Fatalf("stats = %v", stats)
	}
}

func TestLoadEmbedded(t *testing.T) {
	d, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for _, n := range AllowedLengths {
		w, err := d.Pick(n)
		if err != nil {
			t.Fatalf("Pick(%d): %v", n, err)
		}
		if len(w) != n {
			t.Errorf("Pick(%d) = %q", n, w)
		}
	}
}

func TestLoadFromDir(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"words5.txt": "# comment\nnight\n\n",
		"words6.txt": "bridge\n",
		"words7.txt": "lantern\n",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	d, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if w, _ := d.Pick(5); w != "night" {
		t.Errorf("Pick(5) = %q", w)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Fatal("expected error for empty directory")
	}
}
