package models

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Identity implements jwt.Claims so it can be decoded straight from a
// signed userinfo response.
var _ jwt.Claims = (*Identity)(nil)

func (id *Identity) GetExpirationTime() (*jwt.NumericDate, error) {
	if id.Exp == 0 {
		return nil, nil
	}
	return jwt.NewNumericDate(id.ExpiresAt()), nil
}

func (id *Identity) GetIssuedAt() (*jwt.NumericDate, error) {
	if id.Iat == 0 {
		return nil, nil
	}
	return jwt.NewNumericDate(id.IssuedAt()), nil
}

func (id *Identity) GetNotBefore() (*jwt.NumericDate, error) {
	return nil, nil
}

func (id *Identity) GetIssuer() (string, error) {
	return id.Issuer, nil
}

func (id *Identity) GetSubject() (string, error) {
	return id.Subject, nil
}

func (id *Identity) GetAudience() (jwt.ClaimStrings, error) {
	if id.ClientID == "" {
		return nil, nil
	}
	return jwt.ClaimStrings{id.ClientID}, nil
}

// ParseUnverifiedJWT decodes the claims of a signed userinfo document.
//
// The signature is not checked here; the backend verifies it.
func ParseUnverifiedJWT(raw string) (Identity, error) {
	var id Identity
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(raw, &id); err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
	}
	return id, nil
}
