// Package router implements client-side navigation between the shell's views.
package router

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sync"
)

// Root is the initial route and the fallback for unknown paths.
const Root = "/"

var ErrRouteNotFound = errors.New("route not found")

// View renders one screen of the shell.
type View interface {
	Render(ctx context.Context, w io.Writer) error
}

// ViewFunc adapts a function to View.
type ViewFunc func(ctx context.Context, w io.Writer) error

func (f ViewFunc) Render(ctx context.Context, w io.Writer) error { return f(ctx, w) }

// Router maps paths to views and remembers where the user is.
// It is safe for concurrent use; renders are serialised.
type Router struct {
	mu      sync.Mutex
	routes  map[string]View
	current string
	history []string

	renderMu sync.Mutex
	out      io.Writer
}

func New(out io.Writer) *Router {
	return &Router{
		routes:  make(map[string]View),
		current: Root,
		history: []string{Root},
		out:     out,
	}
}

// Handle registers v for p, replacing any previous view.
func (r *Router) Handle(p string, v View) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes[clean(p)] = v
}

// Navigate switches to p and renders its view. An unknown path falls back
// to Root and returns ErrRouteNotFound.
func (r *Router) Navigate(ctx context.Context, p string) error {
	p = clean(p)

	r.mu.Lock()
	v, ok := r.routes[p]
	var navErr error
	if !ok {
		navErr = fmt.Errorf("%w: %s", ErrRouteNotFound, p)
		p = Root
		v = r.routes[Root]
	}
	r.current = p
	r.history = append(r.history, p)
	r.mu.Unlock()

	if v == nil {
		return navErr
	}

	r.renderMu.Lock()
	defer r.renderMu.Unlock()
	if err := v.Render(ctx, r.out); err != nil {
		return errors.Join(navErr, fmt.Errorf("render %s: %w", p, err))
	}
	return navErr
}

func (r *Router) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// History returns every route visited so far, oldest first.
func (r *Router) History() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.history))
	copy(out, r.history)
	return out
}

func clean(p string) string {
	if p == "" {
		return Root
	}
	return path.Clean("/" + p)
}
