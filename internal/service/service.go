// internal/service/service.go
//
// Game service: the operations exposed to clients.
// Responsibilities:
//   - User registration and game lifecycle (create, fetch, guess, cancel).
//   - Running each state transition as one store transaction, so a guess, the
//     score it produces and the owner's recomputed stats commit together.
//   - Leaderboards, history and the cached average statistic.
//   - Background job handlers (statistic refresh, reminder e-mails).

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hangman/internal/game"
	"github.com/robalobadob/hangman/internal/history"
	"github.com/robalobadob/hangman/internal/jobs"
	"github.com/robalobadob/hangman/internal/notify"
	"github.com/robalobadob/hangman/internal/scoring"
	"github.com/robalobadob/hangman/internal/stats"
	"github.com/robalobadob/hangman/internal/store"
)

// ErrInvalidState is returned for an illegal transition, such as cancelling a
// finished game.
var ErrInvalidState = errors.New("invalid state")

// Deps bundles the collaborators of a Service. Jobs, Cache and Mailer are optional.
type Deps struct {
	Store  store.Store
	Words  game.WordPicker
	Jobs   jobs.Queue
	Cache  stats.Cache
	Mailer notify.Mailer
	Now    func() time.Time
}

// Service implements the game operations.
type Service struct {
	store  store.Store
	words  game.WordPicker
	jobs   jobs.Queue
	cache  stats.Cache
	mailer notify.Mailer
	now    func() time.Time
}

// New builds a Service, filling in defaults for optional dependencies.
func New(d Deps) *Service {
	s := &Service{
		store:  d.Store,
		words:  d.Words,
		jobs:   d.Jobs,
		cache:  d.Cache,
		mailer: d.Mailer,
		now:    d.Now,
	}
	if s.cache == nil {
		s.cache = stats.NewMemoryCache()
	}
	if s.mailer == nil {
		s.mailer = notify.LogMailer{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// RegisterJobs installs the service's background handlers on r.
func (s *Service) RegisterJobs(r *jobs.Runner) {
	r.Handle(jobs.CacheAverageAttempts, s.RefreshAverageAttempts)
	r.Handle(jobs.SendReminders, s.SendReminders)
}

// Submit queues a background job. It is a no-op without a queue.
func (s *Service) Submit(name string) {
	if s.jobs != nil {
		s.jobs.Submit(name)
	}
}

// RegisterUser creates a user; the name must be unique.
func (s *Service) RegisterUser(ctx context.Context, name, email string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: user name is required", game.ErrInvalidArgument)
	}
	err := s.store.Update(ctx, func(tx store.Tx) error {
		return tx.InsertUser(ctx, &scoring.User{Name: name, Email: email})
	})
	if errors.Is(err, store.ErrConflict) {
		return fmt.Errorf("a user with that name already exists: %w", err)
	}
	return err
}

// CreateGame starts a game for userName and triggers a statistic refresh.
func (s *Service) CreateGame(ctx context.Context, userName string, wordLength, attempts int) (*game.Game, error) {
	var g *game.Game
	err := s.store.Update(ctx, func(tx store.Tx) error {
		if _, err := tx.GetUser(ctx, userName); err != nil {
			return userErr(err)
		}
		var err error
		g, err = game.New(userName, wordLength, attempts, s.words)
		if err != nil {
			return err
		}
		return tx.PutGame(ctx, g)
	})
	if err != nil {
		return nil, err
	}
	// Not needed to complete the creation, so it runs out of band.
	s.Submit(jobs.CacheAverageAttempts)
	log.Debug().Str("gameId", g.ID).Str("user", userName).Msg("game created")
	return g, nil
}

// FetchGame returns the current state of a game.
func (s *Service) FetchGame(ctx context.Context, id string) (*game.Game, error) {
	g, err := s.store.GetGame(ctx, id)
	if err != nil {
		return nil, gameErr(err)
	}
	return g, nil
}

// Guess applies a guess. When it ends the game, the score is recorded and
// the owner's stats are recomputed in the same transaction.
func (s *Service) Guess(ctx context.Context, id, raw string) (*game.Game, history.Result, error) {
	var (
		g   *game.Game
		res history.Result
	)
	err := s.store.Update(ctx, func(tx store.Tx) error {
		var err error
		if g, err = tx.GetGame(ctx, id); err != nil {
			return gameErr(err)
		}
		if res, err = g.ApplyGuess(raw); err != nil {
			return err
		}
		if g.GameOver {
			if _, err := scoring.RecordOutcome(ctx, tx, g, s.now()); err != nil {
				return err
			}
		}
		return tx.PutGame(ctx, g)
	})
	if err != nil {
		return nil, history.Result{}, err
	}
	if g.GameOver {
		log.Info().Str("gameId", g.ID).Str("user", g.Owner).Bool("won", g.Won).Msg("game over")
	}
	return g, res, nil
}

// CancelGame deletes an unfinished game.
func (s *Service) CancelGame(ctx context.Context, id string) error {
	return s.store.Update(ctx, func(tx store.Tx) error {
		g, err := tx.GetGame(ctx, id)
		if err != nil {
			return gameErr(err)
		}
		if g.GameOver {
			return fmt.Errorf("%w: completed games cannot be cancelled", ErrInvalidState)
		}
		return tx.DeleteGame(ctx, id)
	})
}

// ListUserGames returns the user's active games.
func (s *Service) ListUserGames(ctx context.Context, userName string) ([]*game.Game, error) {
	if _, err := s.store.GetUser(ctx, userName); err != nil {
		return nil, userErr(err)
	}
	return s.store.ListActiveGames(ctx, userName)
}

// ListUserScores returns every score of a user.
func (s *Service) ListUserScores(ctx context.Context, userName string) ([]scoring.Score, error) {
	if _, err := s.store.GetUser(ctx, userName); err != nil {
		return nil, userErr(err)
	}
	return s.store.ListUserScores(ctx, userName)
}

// ListAllScores returns every score.
func (s *Service) ListAllScores(ctx context.Context) ([]scoring.Score, error) {
	return s.store.ListScores(ctx)
}

// HighScores returns all scores, best first.
func (s *Service) HighScores(ctx context.Context) ([]scoring.Score, error) {
	scores, err := s.store.ListScores(ctx)
	if err != nil {
		return nil, err
	}
	scoring.RankScores(scores)
	return scores, nil
}

// UserRankings returns all users, best first.
func (s *Service) UserRankings(ctx context.Context) ([]scoring.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	scoring.RankUsers(users)
	return users, nil
}

// GameHistory returns the recorded guesses of a game.
func (s *Service) GameHistory(ctx context.Context, id string) ([]history.Result, error) {
	g, err := s.store.GetGame(ctx, id)
	if err != nil {
		return nil, gameErr(err)
	}
	return g.Log.Render()
}

// CachedAverageAttemptsRemaining returns the last computed statistic, or "".
func (s *Service) CachedAverageAttemptsRemaining(ctx context.Context) (string, error) {
	return s.cache.Get(ctx)
}

// RefreshAverageAttempts recomputes the cached statistic.
func (s *Service) RefreshAverageAttempts(ctx context.Context) error {
	return stats.Refresh(ctx, s.store, s.cache)
}

// SendReminders e-mails users with unfinished games.
func (s *Service) SendReminders(ctx context.Context) error {
	_, err := notify.SendReminders(ctx, s.store, s.mailer)
	return err
}

func userErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("a user with that name does not exist: %w", err)
	}
	return err
}

func gameErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("game not found: %w", err)
	}
	return err
}
