// internal/words/words.go
//
// Dictionary provider for the game engine.
//
// Responsibilities:
//   - Load word lists keyed by length (5, 6, 7) from WORDS_DIR or the embedded assets.
//   - Pick a uniformly random word for a requested length (crypto/rand, with replacement).
//
// Word lists:
//   WORDS_DIR/words5.txt, words6.txt, words7.txt  (one word per line, "#" comments)
//
// Constraints:
//   • Words are lowercase a–z and exactly as long as the list they belong to.
//   • Lines that violate this are dropped at load time.

package words

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/robalobadob/hangman/assets"
)

// AllowedLengths lists the word lengths a game may be created with.
var AllowedLengths = []int{5, 6, 7}

var (
	// ErrInvalidLength is returned for a length outside AllowedLengths.
	ErrInvalidLength = errors.New("words: number of letters can only be 5, 6, or 7")
	// ErrEmptyList is returned when no word of the requested length was loaded.
	ErrEmptyList = errors.New("words: no words loaded for length")
)

// Dictionary holds one word list per allowed length. It is immutable after
// construction and safe for concurrent use.
type Dictionary struct {
	lists map[int][]string
}

// NewDictionary builds a Dictionary from in-memory lists. Words are normalized
// and entries of the wrong length or with non-letters are dropped.
func NewDictionary(lists map[int][]string) *Dictionary {
	d := &Dictionary{lists: make(map[int][]string, len(AllowedLengths))}
	for _, n := range AllowedLengths {
		d.lists[n] = normalize(lists[n], n)
	}
	return d
}

// Load reads word lists from dir, or from the embedded assets when dir is empty.
func Load(dir string) (*Dictionary, error) {
	lists := make(map[int][]string, len(AllowedLengths))
	for _, n := range AllowedLengths {
		var (
			list []string
			err  error
		)
		if dir == "" {
			list, err = assets.WordList(n)
		} else {
			list, err = readWordFile(filepath.Join(dir, fmt.Sprintf("words%d.txt", n)))
		}
		if err != nil {
			return nil, fmt.Errorf("load %d-letter words: %w", n, err)
		}
		lists[n] = list
	}
	d := NewDictionary(lists)
	for _, n := range AllowedLengths {
		if len(d.lists[n]) == 0 {
			return nil, fmt.Errorf("%w %d", ErrEmptyList, n)
		}
	}
	return d, nil
}

// IsAllowedLength reports whether n is one of AllowedLengths.
func IsAllowedLength(n int) bool {
	for _, v := range AllowedLengths {
		if v == n {
			return true
		}
	}
	return false
}

// Pick returns a random word of the given length.
func (d *Dictionary) Pick(length int) (string, error) {
	if !IsAllowedLength(length) {
		return "", ErrInvalidLength
	}
	list := d.lists[length]
	if len(list) == 0 {
		return "", fmt.Errorf("%w %d", ErrEmptyList, length)
	}
	nBig, err := rand.Int(rand.Reader, big.NewInt(int64(len(list))))
	if err != nil {
		return "", err
	}
	return list[nBig.Int64()], nil
}

// Stats returns the number of loaded words per length.
func (d *Dictionary) Stats() map[int]int {
	out := make(map[int]int, len(d.lists))
	for n, l := range d.lists {
		out[n] = len(l)
	}
	return out
}

// readWordFile loads one word per line from a file, skipping blanks and "#" comments.
func readWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return assets.ReadLines(f)
}

// normalize lowercases, validates and de-duplicates a list for length n.
func normalize(list []string, n int) []string {
	seen := make(map[string]struct{}, len(list))
	out := make([]string, 0, len(list))
	for _, w := range list {
		w = strings.ToLower(strings.TrimSpace(w))
		if len(w) != n || !isAlpha(w) {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// isAlpha reports whether s is all lowercase ASCII letters.
func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
