package game

import "errors"

// Guess and creation failures. All of them are reported before any state
// is mutated.
var (
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrGameOver           = errors.New("game already over")
	ErrInvalidGuess       = errors.New("your guess can only contain alphabet letters")
	ErrInvalidGuessLength = errors.New("your guess must either be a single letter, or a guess for the entire word")
	ErrDuplicateGuess     = errors.New("you already guessed that")
)
