// Package models defines the identity record mirrored from the session backend.
package models

import (
	"errors"
	"slices"
	"time"
)

// Kind tags an Identity as either the anonymous sentinel or a backend-resolved user.
type Kind int

const (
	KindAnonymous Kind = iota
	KindResolved
)

func (k Kind) String() string {
	if k == KindResolved {
		return "resolved"
	}
	return "anonymous"
}

// Well-known values of the anonymous identity. Other components compare
// against these structurally, so they must not change.
const (
	AnonymousSubject    = "2354372b-1704-4b88-9d62-b03395e0131c"
	AnonymousTokenID    = "aeede9a0-3cc3-4536-81c2-5b47a6952abf"
	AnonymousEmail      = "anon@abstratium.dev"
	AnonymousName       = "Anonymous"
	AnonymousAuthMethod = "none"

	ClientID = "abstratium-abstrasst"
	Issuer   = "https://abstrauth.abstratium.dev"
)

// anonymousLifetime keeps the anonymous identity effectively non-expiring.
const anonymousLifetime = 3650 * 24 * time.Hour

var ErrInvalidIdentity = errors.New("invalid identity")

// Identity describes who, if anyone, is currently signed in.
//
// Exp and Iat are seconds since the Unix epoch, as issued by the backend.
type Identity struct {
	Subject         string   `json:"sub"`
	EmailVerified   bool     `json:"email_verified"`
	Issuer          string   `json:"iss"`
	Groups          []string `json:"groups"`
	IsAuthenticated bool     `json:"isAuthenticated"`
	ClientID        string   `json:"client_id"`
	UPN             string   `json:"upn"`
	AuthMethod      string   `json:"auth_method"`
	Name            string   `json:"name"`
	Exp             int64    `json:"exp"`
	Iat             int64    `json:"iat"`
	Email           string   `json:"email"`
	TokenID         string   `json:"jti"`

	Kind Kind `json:"-"`
}

var anonymous = newAnonymous(time.Now())

func newAnonymous(now time.Time) Identity {
	return Identity{
		Subject:         AnonymousSubject,
		EmailVerified:   false,
		Issuer:          Issuer,
		Groups:          []string{},
		IsAuthenticated: false,
		ClientID:        ClientID,
		UPN:             AnonymousEmail,
		AuthMethod:      AnonymousAuthMethod,
		Name:            AnonymousName,
		Exp:             now.Add(anonymousLifetime).Unix(),
		Iat:             now.Unix(),
		Email:           AnonymousEmail,
		TokenID:         AnonymousTokenID,
		Kind:            KindAnonymous,
	}
}

// Anonymous returns the sentinel identity representing "no session".
// Every call returns a value equal to every other call within the process.
func Anonymous() Identity {
	return anonymous.Clone()
}

// Resolve tags an identity received from the backend as resolved.
// An identity that carries the anonymous sentinel e-mail is rejected, so
// the tag and the authentication flag always agree. A missing exp is kept
// as zero, which makes the identity already expired.
func Resolve(id Identity) (Identity, error) {
	if id.Email == AnonymousEmail {
		return Identity{}, ErrInvalidIdentity
	}
	out := id.Clone()
	if out.Groups == nil {
		out.Groups = []string{}
	}
	out.Kind = KindResolved
	out.IsAuthenticated = true
	return out, nil
}

// Clone returns a deep copy.
func (id Identity) Clone() Identity {
	out := id
	if id.Groups != nil {
		out.Groups = slices.Clone(id.Groups)
	}
	return out
}

func (id Identity) Resolved() bool {
	return id.Kind == KindResolved
}

func (id Identity) ExpiresAt() time.Time {
	return time.Unix(id.Exp, 0)
}

func (id Identity) IssuedAt() time.Time {
	return time.Unix(id.Iat, 0)
}

// IsExpired reports whether exp lies strictly before now.
func (id Identity) IsExpired(now time.Time) bool {
	return id.Exp*1000 < now.UnixMilli()
}

// IsAboutToExpire reports whether exp lies before now+window.
func (id Identity) IsAboutToExpire(now time.Time, window time.Duration) bool {
	return id.Exp*1000 < now.Add(window).UnixMilli()
}

func (id Identity) HasRole(role string) bool {
	return slices.Contains(id.Groups, role)
}
