package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dmitrijs2005/sessionkeeper/internal/client/client"
	"github.com/dmitrijs2005/sessionkeeper/internal/client/config"
	"github.com/dmitrijs2005/sessionkeeper/internal/client/models"
	"github.com/dmitrijs2005/sessionkeeper/internal/client/router"
	"github.com/dmitrijs2005/sessionkeeper/internal/client/services"
	"github.com/dmitrijs2005/sessionkeeper/internal/client/session"
	"github.com/dmitrijs2005/sessionkeeper/internal/logging"
)

// App is the root of the shell: it owns the router, the toasts, the confirm
// dialog and the auth service, and renders the header.
type App struct {
	config  *config.Config
	log     logging.Logger
	auth    services.AuthService
	router  *router.Router
	toasts  *Toaster
	confirm *Confirm
	reader  *bufio.Reader
	out     io.Writer
	now     func() time.Time

	unsubscribe func()

	mu       sync.Mutex
	signedIn bool
}

// NewApp builds the shell against the backend named in c.
func NewApp(c *config.Config, log logging.Logger, in io.Reader, out io.Writer) (*App, error) {
	apiClient, err := client.NewHTTPClient(c.ServerURL,
		client.WithTimeout(c.RequestTimeout),
		client.WithSessionCookie(c.SessionCookieName, c.SessionCookie),
		client.WithBearerToken(c.BearerToken),
	)
	if err != nil {
		return nil, err
	}

	holder := session.NewHolder(
		session.WithExpiryLeeway(c.ExpiryLeeway),
		session.WithExpiryWarning(c.ExpiryWarning),
	)
	return newApp(c, log, apiClient, holder, in, out, stdinInteractive), nil
}

func newApp(c *config.Config, log logging.Logger, apiClient client.Client, holder *session.Holder,
	in io.Reader, out io.Writer, interactive func() bool) *App {

	reader := bufio.NewReader(in)
	r := router.New(out)

	a := &App{
		config:  c,
		log:     log,
		router:  r,
		toasts:  &Toaster{},
		confirm: NewConfirm(reader, out, interactive),
		reader:  reader,
		out:     out,
		now:     time.Now,
	}
	a.auth = services.NewAuthService(apiClient, holder, r, log, services.WithSignedOutRoute(c.SignedOutRoute))

	r.Handle(router.Root, router.ViewFunc(a.homeView))
	r.Handle(c.SignedOutRoute, router.ViewFunc(a.signedOutView))

	a.unsubscribe = holder.Subscribe(a.onIdentity)
	return a
}

// onIdentity turns session transitions into toasts.
func (a *App) onIdentity(id models.Identity) {
	a.mu.Lock()
	was := a.signedIn
	a.signedIn = id.Resolved()
	a.mu.Unlock()

	switch {
	case id.Resolved() && !was:
		a.toasts.Info("Signed in as %s", id.Email)
		if id.IsAboutToExpire(a.now(), a.config.ExpiryWarning) {
			a.toasts.Warn("Your session expires at %s", id.ExpiresAt().Local().Format(time.Kitchen))
		}
	case !id.Resolved() && was:
		a.toasts.Warn("Signed out")
	}
}

// Init resolves the session. Nothing identity-dependent is rendered before
// it returns.
func (a *App) Init(ctx context.Context) error {
	select {
	case <-a.auth.Initialize(ctx):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run resolves the session, draws the header and the home view, and then
// serves commands until the user exits or input ends.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	if err := a.Init(ctx); err != nil {
		return err
	}

	renderHeader(a.out, a.auth.Session(), terminalWidth(), a.now())
	if err := a.router.Navigate(ctx, router.Root); err != nil {
		a.log.Warn(ctx, "render home failed", "error", err)
	}

	runREPL(ctx, a, a.getStatus, a.reader)
	return nil
}

// Exec resolves the session and runs a single command, for non-interactive use.
func (a *App) Exec(ctx context.Context, cmd func(ctx context.Context) error) error {
	defer a.Close()

	if err := a.Init(ctx); err != nil {
		return err
	}
	return cmd(ctx)
}

func (a *App) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	ctx, cancel := context.WithTimeout(context.Background(), a.config.RequestTimeout)
	defer cancel()
	if err := a.auth.Close(ctx); err != nil {
		a.log.Debug(ctx, "close auth service", "error", err)
	}
}

func (a *App) getStatus() string {
	s := a.auth.Session()
	who := "anonymous"
	if s.IsAuthenticated() {
		who = s.Email()
	}
	return fmt.Sprintf("(%s %s)", who, a.router.Current())
}

func (a *App) flushToasts() {
	a.toasts.Drain(a.out)
}

func (a *App) homeView(ctx context.Context, w io.Writer) error {
	s := a.auth.Session()
	if !s.IsAuthenticated() {
		_, err := fmt.Fprintln(w, "You are not signed in. Sign in through the portal, then start the shell with --session-cookie.")
		return err
	}
	fmt.Fprintf(w, "Welcome, %s\n", s.Name())
	fmt.Fprintf(w, "  email:  %s\n", s.Email())
	fmt.Fprintf(w, "  groups: %s\n", joinOrNone(s.Groups()))
	_, err := fmt.Fprintf(w, "  %s\n", expiryHint(s, a.now()))
	return err
}

func (a *App) signedOutView(ctx context.Context, w io.Writer) error {
	fmt.Fprintln(w, "You have been signed out. Type 'exit' to leave or 'home' to go back.")
	renderFooter(w, a.now())
	return nil
}
