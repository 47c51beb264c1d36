// Package history records the ordered, append-only log of guess outcomes
// for a game and renders it back for history queries.
package history

import "errors"

// ErrNoHistory means the game exists but no guess has been recorded yet.
var ErrNoHistory = errors.New("game history not found")

// Result is one recorded guess outcome.
type Result struct {
	Guess  string   `json:"guess"`
	Hit    bool     `json:"hit"`
	Reveal []string `json:"word"` // reveal state immediately after the guess
}

// Log is the append-only guess log of a single game.
type Log []Result

// Append returns the log with r added. The reveal snapshot is copied so later
// mutations of the caller's slice cannot rewrite history.
func (l Log) Append(r Result) Log {
	r.Reveal = append([]string(nil), r.Reveal...)
	return append(l, r)
}

// Contains reports whether guess was already recorded.
func (l Log) Contains(guess string) bool {
	for _, r := range l {
		if r.Guess == guess {
			return true
		}
	}
	return false
}

// Render returns a copy of the recorded results in order.
func (l Log) Render() ([]Result, error) {
	if len(l) == 0 {
		return nil, ErrNoHistory
	}
	return l.Clone(), nil
}

// Clone deep-copies the log.
func (l Log) Clone() Log {
	if l == nil {
		return nil
	}
	out := make(Log, len(l))
	for i, r := range l {
		r.Reveal = append([]string(nil), r.Reveal...)
		out[i] = r
	}
	return out
}
