// assets/embed.go
//
// Embedded word lists, one file per supported word length.
// Lines are trimmed and lowercased; blank lines and "#" comments are skipped.

package assets

import (
	"bufio"
	"embed"
	"fmt"
	"io"
	"strings"
)

//go:embed words5.txt words6.txt words7.txt
var FS embed.FS

// ReadLines reads a word list from r. It is shared by the embedded lists and
// lists loaded from WORDS_DIR.
func ReadLines(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, strings.ToLower(s))
	}
	return out, sc.Err()
}

// WordList returns the embedded list for words of length n.
func WordList(n int) ([]string, error) {
	f, err := FS.Open(fmt.Sprintf("words%d.txt", n))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadLines(f)
}
