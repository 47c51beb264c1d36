// internal/store/store.go
//
// Persistence contract for users, games and scores.
//
// Implementations:
//   - memory (this package): process-local, copy-on-write transactions.
//   - SQLStore (sql.go): SQLite or PostgreSQL via database/sql.
//
// Every multi-record mutation goes through Update so that a guess, the score it
// produces and the owner's recomputed stats land together or not at all.

package store

import (
	"context"
	"errors"

	"github.com/robalobadob/hangman/internal/game"
	"github.com/robalobadob/hangman/internal/scoring"
)

var (
	// ErrNotFound is returned when a user or game does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when registering a name that is already taken.
	ErrConflict = errors.New("conflict")
)

// Reader groups the read operations available both inside and outside a transaction.
type Reader interface {
	GetUser(ctx context.Context, name string) (*scoring.User, error)
	ListUsers(ctx context.Context) ([]scoring.User, error)

	GetGame(ctx context.Context, id string) (*game.Game, error)
	// ListActiveGames returns unfinished games of owner, or of everyone when owner is "".
	ListActiveGames(ctx context.Context, owner string) ([]*game.Game, error)

	ListUserScores(ctx context.Context, owner string) ([]scoring.Score, error)
	ListScores(ctx context.Context) ([]scoring.Score, error)
}

// Tx is a unit of work. Reads through a Tx observe its own writes and, where the
// backend supports it, lock the rows they return until the Tx ends.
type Tx interface {
	Reader

	InsertUser(ctx context.Context, u *scoring.User) error
	PutUser(ctx context.Context, u *scoring.User) error

	PutGame(ctx context.Context, g *game.Game) error
	DeleteGame(ctx context.Context, id string) error

	InsertScore(ctx context.Context, s *scoring.Score) error
}

// Store is the persistence collaborator used by the service layer.
type Store interface {
	Reader

	// Update runs fn in a transaction. It commits when fn returns nil and
	// discards every write otherwise.
	Update(ctx context.Context, fn func(tx Tx) error) error

	Close() error
}
