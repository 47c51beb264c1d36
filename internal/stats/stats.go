// internal/stats/stats.go
//
// The process-wide "average attempts remaining" statistic.
//
// The value is derived out of band: Refresh scans every unfinished game and
// stores a formatted message in a Cache. Readers get whatever was stored last
// (possibly stale, "" before the first refresh). Refreshes carry no ordering
// guarantee relative to reads.

package stats

import (
	"context"
	"fmt"
	"sync"

	"github.com/robalobadob/hangman/internal/game"
)

// Key is the cache key of the statistic.
const Key = "MOVES_REMAINING"

// Cache stores the rendered statistic.
type Cache interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, value string) error
}

// ActiveGames lists unfinished games; owner "" means all owners.
type ActiveGames interface {
	ListActiveGames(ctx context.Context, owner string) ([]*game.Game, error)
}

// Message renders the cached text for an average.
func Message(avg float64) string {
	return fmt.Sprintf("The average moves remaining is %.2f", avg)
}

// Refresh recomputes the mean attemptsRemaining over all active games and
// stores it. With no active games the cache is left untouched.
func Refresh(ctx context.Context, src ActiveGames, c Cache) error {
	games, err := src.ListActiveGames(ctx, "")
	if err != nil {
		return fmt.Errorf("list active games: %w", err)
	}
	if len(games) == 0 {
		return nil
	}
	total := 0
	for _, g := range games {
		total += g.AttemptsRemaining
	}
	avg := float64(total) / float64(len(games))
	if err := c.Set(ctx, Message(avg)); err != nil {
		return fmt.Errorf("cache average: %w", err)
	}
	return nil
}

// MemoryCache is a Cache held in process memory.
type MemoryCache struct {
	mu    sync.RWMutex
	value string
}

// NewMemoryCache returns an empty MemoryCache.
func NewMemoryCache() *MemoryCache { return &MemoryCache{} }

func (m *MemoryCache) Get(context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.value, nil
}

func (m *MemoryCache) Set(_ context.Context, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = value
	return nil
}
