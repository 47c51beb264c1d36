// internal/httpserver/forms.go
//
// JSON request and response shapes of the public API.

package httpserver

import (
	"github.com/robalobadob/hangman/internal/game"
	"github.com/robalobadob/hangman/internal/history"
	"github.com/robalobadob/hangman/internal/scoring"
)

// defaultGameSize applies when number_of_letters or attempts is omitted.
const defaultGameSize = 6

type userReq struct {
	UserName string `json:"user_name"`
	Email    string `json:"email"`
}

type newGameReq struct {
	UserName        string `json:"user_name"`
	NumberOfLetters *int   `json:"number_of_letters"`
	Attempts        *int   `json:"attempts"`
}

type makeMoveReq struct {
	Guess string `json:"guess"`
}

type stringMessageForm struct {
	Message string `json:"message"`
}

type guessResultForm struct {
	Guess string   `json:"guess"`
	Hit   bool     `json:"hit"`
	Word  []string `json:"word"`
}

// gameForm carries a result only on guess responses.
type gameForm struct {
	URLSafeKey        string           `json:"urlsafe_key"`
	UserName          string           `json:"user_name"`
	AttemptsRemaining int              `json:"attempts_remaining"`
	GameOver          bool             `json:"game_over"`
	NumberOfLetters   int              `json:"number_of_letters"`
	Revealed          []string         `json:"revealed"`
	Result            *guessResultForm `json:"result,omitempty"`
}

type scoreForm struct {
	UserName          string  `json:"user_name"`
	Date              string  `json:"date"`
	Won               bool    `json:"won"`
	AttemptsRemaining float64 `json:"attempts_remaining"`
	NumberOfLetters   int     `json:"number_of_letters"`
}

type userRankForm struct {
	UserName             string  `json:"user_name"`
	Wins                 float64 `json:"wins"`
	AvgAttemptsRemaining float64 `json:"avg_attempts_remaining"`
}

// itemsForm wraps every list response.
type itemsForm[T any] struct {
	Items []T `json:"items"`
}

func toGameForm(g *game.Game) gameForm {
	return gameForm{
		URLSafeKey:        g.ID,
		UserName:          g.Owner,
		AttemptsRemaining: g.AttemptsRemaining,
		GameOver:          g.GameOver,
		NumberOfLetters:   g.NumberOfLetters(),
		Revealed:          g.Revealed,
	}
}

func toResultForm(r history.Result) *guessResultForm {
	return &guessResultForm{Guess: r.Guess, Hit: r.Hit, Word: r.Reveal}
}

func toScoreForms(scores []scoring.Score) itemsForm[scoreForm] {
	out := make([]scoreForm, 0, len(scores))
	for _, s := range scores {
		out = append(out, scoreForm{
			UserName:          s.Owner,
			Date:              s.Date,
			Won:               s.Won,
			AttemptsRemaining: s.AttemptsRemaining,
			NumberOfLetters:   s.NumberOfLetters,
		})
	}
	return itemsForm[scoreForm]{Items: out}
}
