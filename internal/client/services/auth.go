// Package services contains application services for the sessionkeeper client.
// This file defines the authentication service: one-shot session bootstrap,
// expiry-driven and user-initiated sign-out, and access to the current session.
package services

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/dmitrijs2005/sessionkeeper/internal/client/client"
	"github.com/dmitrijs2005/sessionkeeper/internal/client/models"
	"github.com/dmitrijs2005/sessionkeeper/internal/client/session"
	"github.com/dmitrijs2005/sessionkeeper/internal/logging"
)

// DefaultSignedOutRoute is where the user lands after signing out.
const DefaultSignedOutRoute = "/signed-out"

// Navigator moves the shell between routes.
type Navigator interface {
	Navigate(ctx context.Context, path string) error
	Current() string
}

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Initialize: fetch the session once per process; a failed fetch leaves
//     the anonymous identity in place. The returned channel closes when done.
//   - ResetToken: drop back to the anonymous identity immediately.
//   - Signout: reset, tell the backend, then navigate to the signed-out route.
//     The returned channel closes after navigation.
//   - Session: read-only view of the current identity.
//   - Close: stop the expiry timer, wait for pending sign-outs, release the client.
type AuthService interface {
	Initialize(ctx context.Context) <-chan struct{}
	ResetToken()
	Signout(ctx context.Context) <-chan struct{}
	Session() session.View
	Close(ctx context.Context) error
}

type authService struct {
	client         client.Client
	holder         *session.Holder
	nav            Navigator
	log            logging.Logger
	signedOutRoute string

	initStarted atomic.Bool
	initDone    chan struct{}

	mu      sync.Mutex
	closed  bool
	pending sync.WaitGroup
}

type AuthOption func(*authService)

func WithSignedOutRoute(route string) AuthOption {
	return func(a *authService) {
		if route != "" {
			a.signedOutRoute = route
		}
	}
}

// NewAuthService constructs an AuthService bound to the given API client,
// session holder and navigator.
func NewAuthService(c client.Client, h *session.Holder, nav Navigator, log logging.Logger, opts ...AuthOption) AuthService {
	a := &authService{
		client:         c,
		holder:         h,
		nav:            nav,
		log:            log.With("component", "auth"),
		signedOutRoute: DefaultSignedOutRoute,
		initDone:       make(chan struct{}),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Initialize starts the bootstrap on the first call. Later calls return the
// same channel and issue no further requests.
func (a *authService) Initialize(ctx context.Context) <-chan struct{} {
	if a.initStarted.Swap(true) {
		a.log.Debug(ctx, "initialize called again, reusing first result")
		return a.initDone
	}
	go a.bootstrap(ctx)
	return a.initDone
}

func (a *authService) bootstrap(ctx context.Context) {
	defer close(a.initDone)

	route := a.nav.Current()
	a.log.Debug(ctx, "fetching session", "route", route)

	id, err := a.client.UserInfo(ctx)
	if err != nil {
		a.log.Debug(ctx, "no session, staying anonymous", "error", err)
		a.holder.Adopt(models.Anonymous(), nil)
		return
	}

	a.holder.Adopt(*id, a.onExpired)
	a.log.Debug(ctx, "session resolved",
		"email", id.Email,
		"groups", id.Groups,
		"expires_at", id.ExpiresAt(),
	)
}

func (a *authService) onExpired() {
	ctx := context.Background()
	a.log.Info(ctx, "session about to expire, signing out")
	a.Signout(ctx)
}

func (a *authService) ResetToken() {
	a.holder.Reset()
}

func (a *authService) Signout(ctx context.Context) <-chan struct{} {
	a.log.Debug(ctx, "signing out")
	a.ResetToken()

	done := make(chan struct{})
	ctx = context.WithoutCancel(ctx)

	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		a.log.Debug(ctx, "service closed, skipping logout request")
		close(done)
		return done
	}
	a.pending.Add(1)
	a.mu.Unlock()

	go func() {
		defer a.pending.Done()
		defer close(done)

		if err := a.client.Logout(ctx); err != nil {
			a.log.Warn(ctx, "logout request failed", "error", err)
		} else {
			a.log.Debug(ctx, "logout request succeeded")
		}

		if err := a.nav.Navigate(ctx, a.signedOutRoute); err != nil {
			a.log.Error(ctx, "navigation after sign-out failed", "route", a.signedOutRoute, "error", err)
		}
	}()
	return done
}

func (a *authService) Session() session.View {
	return a.holder
}

// Close releases resources held by the service. Pending sign-outs are given
// until ctx is done to finish; later sign-outs only reset the session.
func (a *authService) Close(ctx context.Context) error {
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()
	a.holder.Stop()

	waited := make(chan struct{})
	go func() {
		a.pending.Wait()
		close(waited)
	}()

	select {
	case <-waited:
	case <-ctx.Done():
		a.log.Warn(ctx, "closing with sign-out still in flight", "error", ctx.Err())
	}
	return a.client.Close()
}
