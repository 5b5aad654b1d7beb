package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/sessionkeeper/internal/client/router"
)

// Whoami prints the name and email of the current user.
func (a *App) Whoami(ctx context.Context) error {
	s := a.auth.Session()
	if !s.IsAuthenticated() {
		_, err := fmt.Fprintln(a.out, "not signed in")
		return err
	}
	_, err := fmt.Fprintf(a.out, "%s <%s>\n", s.Name(), s.Email())
	return err
}

func (a *App) Groups(ctx context.Context) error {
	_, err := fmt.Fprintln(a.out, joinOrNone(a.auth.Session().Groups()))
	return err
}

func (a *App) HasRole(ctx context.Context, role string) error {
	answer := "no"
	if a.auth.Session().HasRole(role) {
		answer = "yes"
	}
	_, err := fmt.Fprintln(a.out, answer)
	return err
}

func (a *App) Status(ctx context.Context) error {
	s := a.auth.Session()
	id := s.Current()

	fmt.Fprintf(a.out, "authenticated:   %t\n", s.IsAuthenticated())
	fmt.Fprintf(a.out, "expired:         %t\n", s.IsExpired())
	fmt.Fprintf(a.out, "about to expire: %t\n", s.IsAboutToExpire())
	fmt.Fprintf(a.out, "expires at:      %s\n", id.ExpiresAt().Local().Format(time.DateTime))
	_, err := fmt.Fprintf(a.out, "route:           %s\n", a.router.Current())
	return err
}

// Token prints the full identity record as JSON.
func (a *App) Token(ctx context.Context) error {
	b, err := json.MarshalIndent(a.auth.Session().Current(), "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, string(b))
	return err
}

func (a *App) Home(ctx context.Context) error {
	return a.router.Navigate(ctx, router.Root)
}

// Signout asks for confirmation, then signs out and waits until the
// signed-out view is shown.
func (a *App) Signout(ctx context.Context) error {
	if !a.confirm.Ask("Sign out?") {
		_, err := fmt.Fprintln(a.out, "sign-out cancelled")
		return err
	}
	select {
	case <-a.auth.Signout(ctx):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, ", ")
}
