package game

import (
	"errors"
	"reflect"
	"testing"

	"github.com/robalobadob/hangman/internal/words"
)

func newMusicGame(t *testing.T, attempts int) *Game {
	t.Helper()
	dict := words.NewDictionary(map[int][]string{5: {"music"}, 6: {"school"}, 7: {"sparkle"}})
	g, err := New("alice", 5, attempts, dict)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return g
}

func TestNewInitialState(t *testing.T) {
	g := newMusicGame(t, 4)
	if g.Word != "music" || g.Owner != "alice" || g.ID == "" {
		t.Fatalf("unexpected game: %+v", g)
	}
	if g.AttemptsRemaining != g.AttemptsAllowed || g.AttemptsAllowed != 4 {
		t.Fatalf("attempts = %d/%d", g.AttemptsRemaining, g.AttemptsAllowed)
	}
	if len(g.Revealed) != 5 {
		t.Fatalf("revealed len = %d", len(g.Revealed))
	}
	for i, s := range g.Revealed {
		if s != Placeholder {
			t.Errorf("slot %d = %q", i, s)
		}
	}
	if g.GameOver || len(g.Log) != 0 {
		t.Fatal("new game must be active with empty log")
	}
}

func TestNewRejectsBadArguments(t *testing.T) {
	dict := words.NewDictionary(map[int][]string{5: {"music"}})
	tests := []struct {
		name     string
		length   int
		attempts int
	}{
		{"zero attempts", 5, 0},
		{"negative attempts", 5, -2},
		{"short word", 4, 3},
		{"long word", 8, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New("bob", tt.length, tt.attempts, dict); !errors.Is(err, ErrInvalidArgument) {
				t.Fatalf("err = %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestLoseByExhaustingAttempts(t *testing.T) {
	g := newMusicGame(t, 2)

	res, err := g.ApplyGuess("z")
	if err != nil {
		t.Fatalf("guess z: %v", err)
	}
	if res.Hit || g.AttemptsRemaining != 1 || g.GameOver {
		t.Fatalf("after z: hit=%v remaining=%d over=%v", res.Hit, g.AttemptsRemaining, g.GameOver)
	}

	res, err = g.ApplyGuess("x")
	if err != nil {
		t.Fatalf("guess x: %v", err)
	}
	if res.Hit || g.AttemptsRemaining != 0 || !g.GameOver || g.Won {
		t.Fatalf("after x: hit=%v remaining=%d over=%v won=%v", res.Hit, g.AttemptsRemaining, g.GameOver, g.Won)
	}
	want := []string{"m", "u", "s", "i", "c"}
	if !reflect.DeepEqual(g.Revealed, want) {
		t.Fatalf("revealed = %v, want %v", g.Revealed, want)
	}
	if !reflect.DeepEqual(res.Reveal, want) {
		t.Fatalf("snapshot = %v, want %v", res.Reveal, want)
	}
}

func TestWholeWordWinsWithOneAttemptLeft(t *testing.T) {
	g := newMusicGame(t, 2)
	if _, err := g.ApplyGuess("q"); err != nil {
		t.Fatal(err)
	}
	res, err := g.ApplyGuess("  MUSIC ")
	if err != nil {
		t.Fatalf("guess: %v", err)
	}
	if !res.Hit || !g.GameOver || !g.Won || g.AttemptsRemaining != 1 {
		t.Fatalf("hit=%v over=%v won=%v remaining=%d", res.Hit, g.GameOver, g.Won, g.AttemptsRemaining)
	}
	if res.Guess != "music" {
		t.Fatalf("guess recorded as %q", res.Guess)
	}
}

func TestLetterRevealsEveryPosition(t *testing.T) {
	dict := words.NewDictionary(map[int][]string{7: {"sparkle"}, 6: {"bridge"}})
	g, err := New("bob", 6, 3, dict)
	if err != nil {
		t.Fatal(err)
	}
	g.Word = "letter"
	g.Revealed = make([]string, 6)

	res, err := g.ApplyGuess("t")
	if err != nil {
		t.Fatal(err)
	}
	if !res.Hit || g.AttemptsRemaining != 3 {
		t.Fatalf("hit=%v remaining=%d", res.Hit, g.AttemptsRemaining)
	}
	want := []string{"", "", "t", "t", "", ""}
	if !reflect.DeepEqual(g.Revealed, want) {
		t.Fatalf("revealed = %v", g.Revealed)
	}
}

func TestRevealingAllLettersWins(t *testing.T) {
	g := newMusicGame(t, 1)
	for _, l := range []string{"m", "u", "s", "i"} {
		if _, err := g.ApplyGuess(l); err != nil {
			t.Fatalf("guess %s: %v", l, err)
		}
		if g.GameOver {
			t.Fatalf("game ended early after %s", l)
		}
	}
	if _, err := g.ApplyGuess("c"); err != nil {
		t.Fatal(err)
	}
	if !g.GameOver || !g.Won || g.AttemptsRemaining != 1 {
		t.Fatalf("over=%v won=%v remaining=%d", g.GameOver, g.Won, g.AttemptsRemaining)
	}
}

func TestWrongWholeWordCostsAttempt(t *testing.T) {
	g := newMusicGame(t, 3)
	res, err := g.ApplyGuess("night")
	if err != nil {
		t.Fatal(err)
	}
	if res.Hit || g.AttemptsRemaining != 2 {
		t.Fatalf("hit=%v remaining=%d", res.Hit, g.AttemptsRemaining)
	}
}

func TestRejectedGuessesDoNotMutate(t *testing.T) {
	g := newMusicGame(t, 3)
	if _, err := g.ApplyGuess("z"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		guess string
		want  error
	}{
		{"", ErrInvalidGuess},
		{"   ", ErrInvalidGuess},
		{"m1", ErrInvalidGuess},
		{"é", ErrInvalidGuess},
		{"ab", ErrInvalidGuessLength},
		{"musics", ErrInvalidGuessLength},
		{"Z", ErrDuplicateGuess},
		{" z ", ErrDuplicateGuess},
	}
	for _, tt := range tests {
		t.Run(tt.guess, func(t *testing.T) {
			before := g.Clone()
			if _, err := g.ApplyGuess(tt.guess); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if !reflect.DeepEqual(before, g) {
				t.Fatalf("state changed: before %+v after %+v", before, g)
			}
		})
	}
}

func TestGuessOnFinishedGame(t *testing.T) {
	g := newMusicGame(t, 1)
	if _, err := g.ApplyGuess("music"); err != nil {
		t.Fatal(err)
	}
	// Validation order: game-over wins over an otherwise invalid guess.
	if _, err := g.ApplyGuess("ab"); !errors.Is(err, ErrGameOver) {
		t.Fatalf("err = %v, want ErrGameOver", err)
	}
}

func TestAttemptsStayInBounds(t *testing.T) {
	g := newMusicGame(t, 4)
	for _, guess := range []string{"a", "m", "b", "night", "d", "e"} {
		_, err := g.ApplyGuess(guess)
		if err != nil && !errors.Is(err, ErrGameOver) {
			t.Fatalf("guess %s: %v", guess, err)
		}
		if g.AttemptsRemaining < 0 || g.AttemptsRemaining > g.AttemptsAllowed {
			t.Fatalf("remaining %d out of bounds", g.AttemptsRemaining)
		}
	}
	if !g.GameOver || g.Won {
		t.Fatalf("expected loss, over=%v won=%v", g.GameOver, g.Won)
	}
	if len(g.Log) != 5 {
		t.Fatalf("log len = %d, want 5", len(g.Log))
	}
}

func TestCloneIsDeep(t *testing.T) {
	g := newMusicGame(t, 3)
	if _, err := g.ApplyGuess("m"); err != nil {
		t.Fatal(err)
	}
	c := g.Clone()
	c.Revealed[1] = "u"
	c.Log[0].Reveal[0] = "x"
	if g.Revealed[1] != "" || g.Log[0].Reveal[0] != "m" {
		t.Fatal("clone shares state with original")
	}
}
