// internal/game/engine.go
//
// Core game engine for a single hangman session.
// Responsibilities:
//   - Create new games against a word drawn from a WordPicker.
//   - Validate and apply guesses (finished?, alphabetic, length, duplicate).
//   - Reveal letters, spend attempts and end the game on win or loss.
//
// Notes:
//   - The engine is pure state mutation; persistence, locking and scoring are
//     the caller's job (see internal/service).
//   - A wrong guess costs one attempt whether it is a letter or a whole word.
package game

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/robalobadob/hangman/internal/history"
	"github.com/robalobadob/hangman/internal/words"
)

// New constructs a new game for owner.
// wordLength must be one of words.AllowedLengths and attempts must be positive.
func New(owner string, wordLength, attempts int, picker WordPicker) (*Game, error) {
	if attempts <= 0 {
		return nil, fmt.Errorf("%w: number of attempts must be a positive number", ErrInvalidArgument)
	}
	if !words.IsAllowedLength(wordLength) {
		return nil, fmt.Errorf("%w: number of letters can only be 5, 6, or 7", ErrInvalidArgument)
	}
	word, err := picker.Pick(wordLength)
	if err != nil {
		return nil, fmt.Errorf("pick word: %w", err)
	}
	return &Game{
		ID:                uuid.NewString(),
		Owner:             owner,
		Word:              strings.ToLower(word),
		AttemptsAllowed:   attempts,
		AttemptsRemaining: attempts,
		Revealed:          make([]string, len(word)),
		CreatedAt:         time.Now().UTC(),
	}, nil
}

// ApplyGuess validates and applies a guess, mutating the game state.
//
// Validation, in order (nothing is mutated on failure):
//   - the game must not be over;
//   - the trimmed, lowercased guess must be non-empty letters a–z;
//   - its length must be 1 or the word length;
//   - it must not repeat an earlier guess.
//
// Evaluation:
//   - whole-word match → hit, game won;
//   - letter in word → hit, letter revealed everywhere; all slots revealed → won;
//   - otherwise → miss, one attempt spent; no attempts left → lost.
//
// The outcome is appended to the log. Callers detect termination via g.GameOver.
func (g *Game) ApplyGuess(raw string) (history.Result, error) {
	if g.GameOver {
		return history.Result{}, ErrGameOver
	}
	guess := Normalize(raw)
	if guess == "" || !isAlpha(guess) {
		return history.Result{}, ErrInvalidGuess
	}
	if len(guess) != 1 && len(guess) != len(g.Word) {
		return history.Result{}, ErrInvalidGuessLength
	}
	if g.Log.Contains(guess) {
		return history.Result{}, ErrDuplicateGuess
	}

	res := history.Result{Guess: guess}
	switch {
	case guess == g.Word:
		res.Hit = true
		g.end(true)
	case len(guess) == 1 && strings.Contains(g.Word, guess):
		res.Hit = true
		g.reveal(guess)
		if g.fullyRevealed() {
			g.end(true)
		}
	default:
		g.AttemptsRemaining--
	}

	if g.AttemptsRemaining < 1 && !g.GameOver {
		g.end(false)
	}

	res.Reveal = append([]string(nil), g.Revealed...)
	g.Log = g.Log.Append(res)
	return res, nil
}

// Normalize trims surrounding whitespace and lowercases a raw guess.
func Normalize(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// end terminates the game and reveals the whole word. It must run once.
func (g *Game) end(won bool) {
	if g.GameOver {
		panic("game: end called on a finished game")
	}
	g.GameOver = true
	g.Won = won
	for i, r := range g.Word {
		g.Revealed[i] = string(r)
	}
}

// reveal fills every slot holding letter.
func (g *Game) reveal(letter string) {
	for i, r := range g.Word {
		if string(r) == letter {
			g.Revealed[i] = letter
		}
	}
}

// fullyRevealed reports whether no slot holds the Placeholder.
func (g *Game) fullyRevealed() bool {
	for _, s := range g.Revealed {
		if s == Placeholder {
			return false
		}
	}
	return true
}

// isAlpha checks that a string consists only of lowercase a–z.
func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
