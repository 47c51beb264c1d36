package store

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/robalobadob/hangman/internal/game"
	"github.com/robalobadob/hangman/internal/history"
	"github.com/robalobadob/hangman/internal/scoring"
)

// backends returns every Store implementation that can run in this environment.
func backends(t *testing.T) map[string]func(t *testing.T) Store {
	return map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store { return NewMemoryStore() },
		"sqlite": func(t *testing.T) Store {
			if testing.Short() {
				t.Skip("Skipping SQLite store test in short mode")
			}
			s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "data", "test.db"))
			if err != nil {
				t.Fatalf("OpenSQLite: %v", err)
			}
			t.Cleanup(func() { _ = s.Close() })
			return s
		},
	}
}

func forEachBackend(t *testing.T, fn func(t *testing.T, s Store)) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) { fn(t, open(t)) })
	}
}

func sampleGame(owner string, created time.Time) *game.Game {
	return &game.Game{
		ID:                "g-" + owner + created.Format("150405.000"),
		Owner:             owner,
		Word:              "music",
		AttemptsAllowed:   3,
		AttemptsRemaining: 3,
		Revealed:          make([]string, 5),
		CreatedAt:         created.UTC(),
	}
}

func mustUpdate(t *testing.T, s Store, fn func(tx Tx) error) {
	t.Helper()
	if err := s.Update(context.Background(), fn); err != nil {
		t.Fatalf("Update: %v", err)
	}
}

func TestUsers(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		mustUpdate(t, s, func(tx Tx) error {
			if err := tx.InsertUser(ctx, &scoring.User{Name: "alice", Email: "a@example.com"}); err != nil {
				return err
			}
			return tx.InsertUser(ctx, &scoring.User{Name: "bob"})
		})

		err := s.Update(ctx, func(tx Tx) error {
			return tx.InsertUser(ctx, &scoring.User{Name: "alice"})
		})
		if !errors.Is(err, ErrConflict) {
			t.Fatalf("duplicate insert err = %v, want ErrConflict", err)
		}

		u, err := s.GetUser(ctx, "alice")
		if err != nil || u.Email != "a@example.com" {
			t.Fatalf("GetUser = %+v, %v", u, err)
		}
		if _, err := s.GetUser(ctx, "carol"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("missing user err = %v", err)
		}

		mustUpdate(t, s, func(tx Tx) error {
			return tx.PutUser(ctx, &scoring.User{Name: "bob", Wins: 0.5, AvgAttemptsRemaining: 0.25})
		})
		users, err := s.ListUsers(ctx)
		if err != nil {
			t.Fatal(err)
		}
		want := []scoring.User{
			{Name: "alice", Email: "a@example.com"},
			{Name: "bob", Wins: 0.5, AvgAttemptsRemaining: 0.25},
		}
		if !reflect.DeepEqual(users, want) {
			t.Fatalf("ListUsers = %+v, want %+v", users, want)
		}
	})
}

func TestGamesRoundTrip(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		g1 := sampleGame("alice", base)
		g2 := sampleGame("alice", base.Add(time.Second))
		g3 := sampleGame("bob", base.Add(2*time.Second))

		mustUpdate(t, s, func(tx Tx) error {
			for _, n := range []string{"alice", "bob"} {
				if err := tx.InsertUser(ctx, &scoring.User{Name: n}); err != nil {
					return err
				}
			}
			for _, g := range []*game.Game{g1, g2, g3} {
				if err := tx.PutGame(ctx, g); err != nil {
					return err
				}
			}
			return nil
		})

		g1.Revealed[0] = "m"
		g1.Log = g1.Log.Append(history.Result{Guess: "m", Hit: true, Reveal: g1.Revealed})
		g2.GameOver, g2.Won = true, true
		mustUpdate(t, s, func(tx Tx) error {
			if err := tx.PutGame(ctx, g1); err != nil {
				return err
			}
			return tx.PutGame(ctx, g2)
		})

		got, err := s.GetGame(ctx, g1.ID)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(got.Revealed, g1.Revealed) || !reflect.DeepEqual(got.Log, g1.Log) {
			t.Fatalf("round trip mismatch: %+v vs %+v", got, g1)
		}
		if !got.CreatedAt.Equal(g1.CreatedAt) {
			t.Fatalf("created_at = %v, want %v", got.CreatedAt, g1.CreatedAt)
		}

		active, err := s.ListActiveGames(ctx, "alice")
		if err != nil {
			t.Fatal(err)
		}
		if len(active) != 1 || active[0].ID != g1.ID {
			t.Fatalf("alice active = %v", active)
		}
		all, _ := s.ListActiveGames(ctx, "")
		if len(all) != 2 || all[0].ID != g1.ID || all[1].ID != g3.ID {
			t.Fatalf("all active = %v", all)
		}

		mustUpdate(t, s, func(tx Tx) error { return tx.DeleteGame(ctx, g3.ID) })
		if _, err := s.GetGame(ctx, g3.ID); !errors.Is(err, ErrNotFound) {
			t.Fatalf("deleted game err = %v", err)
		}
		err = s.Update(ctx, func(tx Tx) error { return tx.DeleteGame(ctx, g3.ID) })
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("double delete err = %v", err)
		}
	})
}

func TestReturnedGamesAreCopies(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		g := sampleGame("alice", time.Now())
		mustUpdate(t, s, func(tx Tx) error {
			if err := tx.InsertUser(ctx, &scoring.User{Name: "alice"}); err != nil {
				return err
			}
			return tx.PutGame(ctx, g)
		})
		got, _ := s.GetGame(ctx, g.ID)
		got.Revealed[0] = "x"
		got.AttemptsRemaining = 0
		again, _ := s.GetGame(ctx, g.ID)
		if again.Revealed[0] != "" || again.AttemptsRemaining != 3 {
			t.Fatal("mutating a returned game changed the store")
		}
	})
}

func TestUpdateRollsBackOnError(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		mustUpdate(t, s, func(tx Tx) error {
			return tx.InsertUser(ctx, &scoring.User{Name: "alice"})
		})
		boom := errors.New("boom")
		err := s.Update(ctx, func(tx Tx) error {
			if err := tx.InsertScore(ctx, &scoring.Score{ID: "s1", Owner: "alice", Date: "2026-01-01", Won: true, AttemptsRemaining: 1, NumberOfLetters: 5}); err != nil {
				return err
			}
			if err := tx.PutUser(ctx, &scoring.User{Name: "alice", Wins: 1, AvgAttemptsRemaining: 1}); err != nil {
				return err
			}
			// Reads inside the transaction see its own writes.
			scores, err := tx.ListUserScores(ctx, "alice")
			if err != nil {
				return err
			}
			if len(scores) != 1 {
				t.Errorf("in-tx scores = %d, want 1", len(scores))
			}
			return boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("err = %v, want boom", err)
		}
		scores, _ := s.ListScores(ctx)
		u, _ := s.GetUser(ctx, "alice")
		if len(scores) != 0 || u.Wins != 0 {
			t.Fatalf("rolled back writes visible: scores=%v user=%+v", scores, u)
		}
	})
}

func TestScoresOrder(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		mustUpdate(t, s, func(tx Tx) error {
			for _, n := range []string{"alice", "bob"} {
				if err := tx.InsertUser(ctx, &scoring.User{Name: n}); err != nil {
					return err
				}
			}
			for i, owner := range []string{"alice", "bob", "alice"} {
				sc := scoring.Score{ID: string(rune('a' + i)), Owner: owner, Date: "2026-01-01", AttemptsRemaining: float64(i) / 2, NumberOfLetters: 5 + i}
				if err := tx.InsertScore(ctx, &sc); err != nil {
					return err
				}
			}
			return nil
		})
		mine, _ := s.ListUserScores(ctx, "alice")
		if len(mine) != 2 || mine[0].ID != "a" || mine[1].ID != "c" {
			t.Fatalf("alice scores = %+v", mine)
		}
		all, _ := s.ListScores(ctx)
		if len(all) != 3 || all[2].NumberOfLetters != 7 || all[1].AttemptsRemaining != 0.5 {
			t.Fatalf("all scores = %+v", all)
		}
	})
}

func TestSQLiteRejectsCorruptCreatedAt(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping SQLite store test in short mode")
	}
	ctx := context.Background()
	s, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	g := sampleGame("alice", time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC))
	mustUpdate(t, s, func(tx Tx) error {
		if err := tx.InsertUser(ctx, &scoring.User{Name: "alice"}); err != nil {
			return err
		}
		return tx.PutGame(ctx, g)
	})
	if _, err := s.db.ExecContext(ctx, `UPDATE games SET created_at='yesterday' WHERE id=?`, g.ID); err != nil {
		t.Fatalf("corrupt row: %v", err)
	}

	if _, err := s.GetGame(ctx, g.ID); err == nil {
		t.Fatal("GetGame succeeded on a corrupt created_at")
	}
	if _, err := s.ListActiveGames(ctx, ""); err == nil {
		t.Fatal("ListActiveGames succeeded on a corrupt created_at")
	}
}
