// internal/scoring/scoring.go
//
// Scoring & ranking engine.
// Responsibilities:
//   - Turn a finished game into an immutable Score record.
//   - Recompute a user's aggregate stats by replaying the user's full score history.
//   - Order users and scores for the leaderboards.
//
// RecordOutcome must run inside the same store transaction that saves the finished
// game; otherwise two games ending together for one user can drop an outcome.

package scoring

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/robalobadob/hangman/internal/game"
)

// DateLayout is the calendar-date format of Score.Date.
const DateLayout = "2006-01-02"

// User is a registered player with derived aggregate stats.
type User struct {
	Name                 string
	Email                string
	Wins                 float64 // games won / games played, in [0,1]
	AvgAttemptsRemaining float64 // mean of the user's score ratios
}

// Score is the outcome snapshot of one finished game.
type Score struct {
	ID                string
	Owner             string
	Date              string // DateLayout, UTC
	Won               bool
	AttemptsRemaining float64 // remaining/allowed at termination
	NumberOfLetters   int
}

// Recorder is the slice of a store transaction the engine needs.
type Recorder interface {
	GetUser(ctx context.Context, name string) (*User, error)
	PutUser(ctx context.Context, u *User) error
	InsertScore(ctx context.Context, s *Score) error
	ListUserScores(ctx context.Context, owner string) ([]Score, error)
}

// NewScore builds the score record for a finished game.
func NewScore(g *game.Game, now time.Time) Score {
	return Score{
		ID:                uuid.NewString(),
		Owner:             g.Owner,
		Date:              now.UTC().Format(DateLayout),
		Won:               g.Won,
		AttemptsRemaining: float64(g.AttemptsRemaining) / float64(g.AttemptsAllowed),
		NumberOfLetters:   g.NumberOfLetters(),
	}
}

// RecordOutcome persists the score of a finished game and rewrites the owner's
// aggregate stats from the complete score history, the new score included.
func RecordOutcome(ctx context.Context, rec Recorder, g *game.Game, now time.Time) (Score, error) {
	if !g.GameOver {
		return Score{}, fmt.Errorf("record outcome: game %s is not over", g.ID)
	}
	u, err := rec.GetUser(ctx, g.Owner)
	if err != nil {
		return Score{}, fmt.Errorf("load owner %q: %w", g.Owner, err)
	}
	s := NewScore(g, now)
	if err := rec.InsertScore(ctx, &s); err != nil {
		return Score{}, fmt.Errorf("insert score: %w", err)
	}
	all, err := rec.ListUserScores(ctx, g.Owner)
	if err != nil {
		return Score{}, fmt.Errorf("replay scores: %w", err)
	}
	u.Wins, u.AvgAttemptsRemaining = Aggregate(all)
	if err := rec.PutUser(ctx, u); err != nil {
		return Score{}, fmt.Errorf("update user stats: %w", err)
	}
	return s, nil
}

// Aggregate returns the win ratio and the mean attempts-remaining ratio of scores.
// Both are zero for an empty history.
func Aggregate(scores []Score) (wins, avgAttemptsRemaining float64) {
	if len(scores) == 0 {
		return 0, 0
	}
	var won int
	var sum float64
	for _, s := range scores {
		if s.Won {
			won++
		}
		sum += s.AttemptsRemaining
	}
	n := float64(len(scores))
	return float64(won) / n, sum / n
}

// RankUsers sorts users by descending win ratio, then descending average
// attempts remaining. Equal users keep their input order.
func RankUsers(users []User) {
	sort.SliceStable(users, func(i, j int) bool {
		if users[i].Wins != users[j].Wins {
			return users[i].Wins > users[j].Wins
		}
		return users[i].AvgAttemptsRemaining > users[j].AvgAttemptsRemaining
	})
}

// RankScores sorts scores by descending attempts-remaining ratio, then
// descending word length.
func RankScores(scores []Score) {
	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].AttemptsRemaining != scores[j].AttemptsRemaining {
			return scores[i].AttemptsRemaining > scores[j].AttemptsRemaining
		}
		return scores[i].NumberOfLetters > scores[j].NumberOfLetters
	})
}
