// internal/notify/notify.go
//
// Reminder e-mails for players with unfinished games.
// Responsibilities:
//   - Mailer abstraction with an Amazon SES implementation and a log-only fallback.
//   - SendReminders: e-mail every user that has an address and an active game.

package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hangman/internal/game"
	"github.com/robalobadob/hangman/internal/scoring"
)

// Mailer delivers a plain-text message.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Directory is the read access SendReminders needs.
type Directory interface {
	ListUsers(ctx context.Context) ([]scoring.User, error)
	ListActiveGames(ctx context.Context, owner string) ([]*game.Game, error)
}

// ReminderSubject is the subject line of reminder e-mails.
const ReminderSubject = "This is a reminder!"

// ReminderBody renders the reminder text for a user.
func ReminderBody(name string) string {
	return fmt.Sprintf("Hello %s, try out Hangman!", name)
}

// SendReminders mails every user with an e-mail address and at least one
// active game. Delivery failures are collected; the remaining users are still
// mailed. It returns how many reminders were sent.
func SendReminders(ctx context.Context, dir Directory, m Mailer) (int, error) {
	users, err := dir.ListUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("list users: %w", err)
	}
	var (
		sent int
		errs []error
	)
	for _, u := range users {
		if u.Email == "" {
			continue
		}
		active, err := dir.ListActiveGames(ctx, u.Name)
		if err != nil {
			return sent, fmt.Errorf("list games of %q: %w", u.Name, err)
		}
		if len(active) == 0 {
			continue
		}
		if err := m.Send(ctx, u.Email, ReminderSubject, ReminderBody(u.Name)); err != nil {
			errs = append(errs, err)
			continue
		}
		sent++
	}
	log.Info().Int("sent", sent).Int("failed", len(errs)).Msg("reminders processed")
	return sent, errors.Join(errs...)
}

// LogMailer only logs messages; used when SES is not configured.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, to, subject, _ string) error {
	log.Info().Str("to", to).Str("subject", subject).Msg("email disabled, skipping send")
	return nil
}
