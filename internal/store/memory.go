// internal/store/memory.go
//
// In-memory implementation of Store.
// Used for development and tests, or when durability is not required.
//
// Characteristics:
//   - Concurrency-safe via RWMutex (concurrent reads, one writer).
//   - Update works on a copy of the data and swaps it in only on success,
//     so a failed transaction leaves nothing behind.
//   - Games are cloned on the way in and out; callers never share state with the store.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"sort"
	"sync"

	"github.com/robalobadob/hangman/internal/game"
	"github.com/robalobadob/hangman/internal/scoring"
)

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu   sync.RWMutex // guards data
	data *snapshot
}

// snapshot is one consistent version of the data.
type snapshot struct {
	users     map[string]scoring.User
	userOrder []string              // registration order
	games     map[string]*game.Game // keyed by Game.ID; values are never mutated in place
	scores    []scoring.Score       // insertion order
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{data: &snapshot{
		users: make(map[string]scoring.User),
		games: make(map[string]*game.Game),
	}}
}

func (m *memory) read() *snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data
}

func (m *memory) Update(ctx context.Context, fn func(tx Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	next := m.data.clone()
	if err := fn(next); err != nil {
		return err
	}
	m.data = next
	return nil
}

func (m *memory) Close() error { return nil }

func (m *memory) GetUser(ctx context.Context, name string) (*scoring.User, error) {
	return m.read().GetUser(ctx, name)
}

func (m *memory) ListUsers(ctx context.Context) ([]scoring.User, error) {
	return m.read().ListUsers(ctx)
}

func (m *memory) GetGame(ctx context.Context, id string) (*game.Game, error) {
	return m.read().GetGame(ctx, id)
}

func (m *memory) ListActiveGames(ctx context.Context, owner string) ([]*game.Game, error) {
	return m.read().ListActiveGames(ctx, owner)
}

func (m *memory) ListUserScores(ctx context.Context, owner string) ([]scoring.Score, error) {
	return m.read().ListUserScores(ctx, owner)
}

func (m *memory) ListScores(ctx context.Context) ([]scoring.Score, error) {
	return m.read().ListScores(ctx)
}

// clone copies the containers. Values are either plain structs or games that
// are replaced rather than mutated, so a shallow copy is enough.
func (s *snapshot) clone() *snapshot {
	c := &snapshot{
		users:     make(map[string]scoring.User, len(s.users)),
		userOrder: append([]string(nil), s.userOrder...),
		games:     make(map[string]*game.Game, len(s.games)),
		scores:    append([]scoring.Score(nil), s.scores...),
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.games {
		c.games[k] = v
	}
	return c
}

func (s *snapshot) GetUser(_ context.Context, name string) (*scoring.User, error) {
	u, ok := s.users[name]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *snapshot) ListUsers(_ context.Context) ([]scoring.User, error) {
	out := make([]scoring.User, 0, len(s.userOrder))
	for _, name := range s.userOrder {
		out = append(out, s.users[name])
	}
	return out, nil
}

func (s *snapshot) GetGame(_ context.Context, id string) (*game.Game, error) {
	g, ok := s.games[id]
	if !ok {
		return nil, ErrNotFound
	}
	return g.Clone(), nil
}

func (s *snapshot) ListActiveGames(_ context.Context, owner string) ([]*game.Game, error) {
	out := []*game.Game{}
	for _, g := range s.games {
		if g.GameOver || (owner != "" && g.Owner != owner) {
			continue
		}
		out = append(out, g.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *snapshot) ListUserScores(_ context.Context, owner string) ([]scoring.Score, error) {
	out := []scoring.Score{}
	for _, sc := range s.scores {
		if sc.Owner == owner {
			out = append(out, sc)
		}
	}
	return out, nil
}

func (s *snapshot) ListScores(_ context.Context) ([]scoring.Score, error) {
	return append([]scoring.Score{}, s.scores...), nil
}

func (s *snapshot) InsertUser(_ context.Context, u *scoring.User) error {
	if _, ok := s.users[u.Name]; ok {
		return ErrConflict
	}
	s.users[u.Name] = *u
	s.userOrder = append(s.userOrder, u.Name)
	return nil
}

func (s *snapshot) PutUser(_ context.Context, u *scoring.User) error {
	if _, ok := s.users[u.Name]; !ok {
		return ErrNotFound
	}
	s.users[u.Name] = *u
	return nil
}

func (s *snapshot) PutGame(_ context.Context, g *game.Game) error {
	if _, ok := s.users[g.Owner]; !ok {
		return ErrNotFound
	}
	s.games[g.ID] = g.Clone()
	return nil
}

func (s *snapshot) DeleteGame(_ context.Context, id string) error {
	if _, ok := s.games[id]; !ok {
		return ErrNotFound
	}
	delete(s.games, id)
	return nil
}

func (s *snapshot) InsertScore(_ context.Context, sc *scoring.Score) error {
	if _, ok := s.users[sc.Owner]; !ok {
		return ErrNotFound
	}
	s.scores = append(s.scores, *sc)
	return nil
}
