// Package session holds the process-wide identity state of the client.
//
// A Holder owns the current models.Identity and the single expiry timer
// attached to it. The auth service is its only writer; everything else
// reads through the View interface and may subscribe to transitions.
package session

import (
	"sync"
	"time"

	"github.com/dmitrijs2005/sessionkeeper/internal/client/models"
)

const (
	DefaultExpiryLeeway  = time.Minute
	DefaultExpiryWarning = time.Hour
)

// View is the read-only side of a Holder.
type View interface {
	// Current returns a copy of the current identity.
	Current() models.Identity
	Email() string
	Name() string
	Groups() []string
	IsAuthenticated() bool
	IsExpired() bool
	IsAboutToExpire() bool
	HasRole(role string) bool
	// Subscribe registers fn for every future transition. fn runs on the
	// goroutine that performed the transition, outside the holder's lock.
	Subscribe(fn func(models.Identity)) (cancel func())
}

type Holder struct {
	mu         sync.RWMutex
	current    models.Identity
	timer      Timer
	generation uint64

	subs    map[uint64]func(models.Identity)
	nextSub uint64

	clock   Clock
	leeway  time.Duration
	warning time.Duration
}

var _ View = (*Holder)(nil)

type Option func(*Holder)

func WithClock(c Clock) Option {
	return func(h *Holder) { h.clock = c }
}

// WithExpiryLeeway sets how long before exp the expiry callback fires.
func WithExpiryLeeway(d time.Duration) Option {
	return func(h *Holder) { h.leeway = d }
}

// WithExpiryWarning sets the window used by IsAboutToExpire.
func WithExpiryWarning(d time.Duration) Option {
	return func(h *Holder) { h.warning = d }
}

// NewHolder returns a Holder in the Anonymous state.
func NewHolder(opts ...Option) *Holder {
	h := &Holder{
		current: models.Anonymous(),
		subs:    make(map[uint64]func(models.Identity)),
		clock:   SystemClock(),
		leeway:  DefaultExpiryLeeway,
		warning: DefaultExpiryWarning,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ExpiryDelay returns how long to wait before forcing sign-out for id:
// exp minus leeway, clamped at zero.
func ExpiryDelay(now time.Time, id models.Identity, leeway time.Duration) time.Duration {
	d := id.ExpiresAt().Sub(now) - leeway
	if d < 0 {
		return 0
	}
	return d
}

// Adopt replaces the current identity wholesale and publishes it.
//
// Any pending expiry timer is cancelled. For a resolved identity a new timer
// is armed that calls onExpire once, ExpiryDelay from now; it is skipped if
// another transition happens first.
func (h *Holder) Adopt(id models.Identity, onExpire func()) {
	id = id.Clone()

	h.mu.Lock()
	h.stopTimerLocked()
	h.generation++
	h.current = id
	if id.Resolved() && onExpire != nil {
		gen := h.generation
		delay := ExpiryDelay(h.clock.Now(), id, h.leeway)
		h.timer = h.clock.AfterFunc(delay, func() { h.expire(gen, onExpire) })
	}
	subs := h.subscribersLocked()
	h.mu.Unlock()

	for _, fn := range subs {
		fn(id.Clone())
	}
}

// Reset returns the holder to the Anonymous identity. Resetting an
// anonymous holder is allowed and still publishes.
func (h *Holder) Reset() {
	anon := models.Anonymous()
	anon.IsAuthenticated = false
	h.Adopt(anon, nil)
}

// Stop cancels the pending expiry timer without changing the identity.
func (h *Holder) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopTimerLocked()
	h.generation++
}

func (h *Holder) expire(gen uint64, onExpire func()) {
	h.mu.RLock()
	stale := gen != h.generation
	h.mu.RUnlock()
	if stale {
		return
	}
	onExpire()
}

func (h *Holder) stopTimerLocked() {
	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
}

func (h *Holder) subscribersLocked() []func(models.Identity) {
	out := make([]func(models.Identity), 0, len(h.subs))
	for _, fn := range h.subs {
		out = append(out, fn)
	}
	return out
}

func (h *Holder) Subscribe(fn func(models.Identity)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextSub
	h.nextSub++
	h.subs[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
		})
	}
}

func (h *Holder) Current() models.Identity {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current.Clone()
}

func (h *Holder) Email() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current.Email
}

func (h *Holder) Name() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current.Name
}

func (h *Holder) Groups() []string {
	return h.Current().Groups
}

// IsAuthenticated reports whether the current identity was resolved by the
// backend. The decision is made on the identity's kind, not on its e-mail.
func (h *Holder) IsAuthenticated() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current.Resolved()
}

func (h *Holder) IsExpired() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current.IsExpired(h.clock.Now())
}

func (h *Holder) IsAboutToExpire() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current.IsAboutToExpire(h.clock.Now(), h.warning)
}

func (h *Holder) HasRole(role string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current.HasRole(role)
}
