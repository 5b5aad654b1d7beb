package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dmitrijs2005/sessionkeeper/internal/buildinfo"
	"github.com/dmitrijs2005/sessionkeeper/internal/client/session"
)

const title = "sessionkeeper"

func renderHeader(w io.Writer, s session.View, width int, now time.Time) {
	user := "not signed in"
	if s.IsAuthenticated() {
		user = fmt.Sprintf("%s <%s>", s.Name(), s.Email())
	}

	gap := width - len(title) - len(user) - 2
	if gap < 1 {
		gap = 1
	}
	fmt.Fprintf(w, "%s %s %s\n", title, strings.Repeat("-", gap), user)

	if s.IsAuthenticated() {
		fmt.Fprintln(w, expiryHint(s, now))
	}
	fmt.Fprintln(w, strings.Repeat("=", width))
}

func expiryHint(s session.View, now time.Time) string {
	exp := s.Current().ExpiresAt()
	switch {
	case s.IsExpired():
		return "session expired"
	case s.IsAboutToExpire():
		return fmt.Sprintf("session expires soon, in %s", exp.Sub(now).Round(time.Second))
	default:
		return fmt.Sprintf("session valid until %s", exp.Local().Format(time.DateTime))
	}
}

func renderFooter(w io.Writer, now time.Time) {
	fmt.Fprintf(w, "(c) %s abstratium\n", buildinfo.Copyright(now))
}
