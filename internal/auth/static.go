package auth

import "errors"

// StaticVerifier accepts any non-empty bearer token and uses the token
// string itself as the subject. Development and testing only; never wire
// this in production.
type StaticVerifier struct{}

// NewStaticVerifier creates a StaticVerifier.
func NewStaticVerifier() *StaticVerifier {
	return &StaticVerifier{}
}

// Verify treats the token as an opaque user identifier.
func (v *StaticVerifier) Verify(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, errors.New("empty token")
	}
	return &Claims{Subject: tokenString}, nil
}
