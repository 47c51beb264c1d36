// internal/game/types.go
//
// Core type definitions for the hangman game engine.
// Defines:
//   - Game: state for a single in-progress or finished game.
//   - WordPicker: the dictionary dependency used at creation.

package game

import (
	"time"

	"github.com/robalobadob/hangman/internal/history"
)

// Placeholder is the value of a reveal slot whose letter is still hidden.
const Placeholder = ""

// WordPicker supplies a secret word of the requested length.
type WordPicker interface {
	Pick(length int) (string, error)
}

// Game holds the state of a single hangman game.
type Game struct {
	ID                string      // Durable identifier (UUID string).
	Owner             string      // Name of the user who created the game.
	Word              string      // The secret word (lowercase a–z).
	AttemptsAllowed   int         // Fixed at creation, > 0.
	AttemptsRemaining int         // 0 ≤ remaining ≤ allowed.
	Revealed          []string    // One slot per letter; Placeholder until revealed.
	GameOver          bool        // Set exactly once.
	Won               bool        // Meaningful only once GameOver is set.
	Log               history.Log // Append-only guess outcomes.
	CreatedAt         time.Time
}

// NumberOfLetters is the length of the secret word.
func (g *Game) NumberOfLetters() int { return len(g.Word) }

// Clone returns a deep copy, so stores can hand out games without sharing slices.
func (g *Game) Clone() *Game {
	if g == nil {
		return nil
	}
	c := *g
	c.Revealed = append([]string(nil), g.Revealed...)
	c.Log = g.Log.Clone()
	return &c
}
