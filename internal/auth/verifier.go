// Package auth verifies admin credentials. Middleware and handlers depend
// only on the Verifier interface so the credential scheme can change without
// touching them.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredential = errors.New("invalid credential")

// Principal identifies an authenticated admin.
type Principal struct {
	Subject string
	Method  string
}

type Verifier interface {
	Verify(ctx context.Context, credential string) (Principal, error)
}

// StaticTokenVerifier accepts one shared secret.
type StaticTokenVerifier struct {
	token []byte
}

func NewStaticTokenVerifier(token string) *StaticTokenVerifier {
	return &StaticTokenVerifier{token: []byte(token)}
}

func (v *StaticTokenVerifier) Verify(_ context.Context, credential string) (Principal, error) {
	if len(v.token) == 0 || credential == "" {
		return Principal{}, ErrInvalidCredential
	}
	if subtle.ConstantTimeCompare([]byte(credential), v.token) != 1 {
		return Principal{}, ErrInvalidCredential
	}
	return Principal{Subject: "admin", Method: "static"}, nil
}

// HashedTokenVerifier accepts a secret whose bcrypt hash is configured, so
// the plaintext never has to live in the environment.
type HashedTokenVerifier struct {
	hash []byte
}

func NewHashedTokenVerifier(hash string) *HashedTokenVerifier {
	return &HashedTokenVerifier{hash: []byte(hash)}
}

func (v *HashedTokenVerifier) Verify(_ context.Context, credential string) (Principal, error) {
	if len(v.hash) == 0 || credential == "" {
		return Principal{}, ErrInvalidCredential
	}
	if err := bcrypt.CompareHashAndPassword(v.hash, []byte(credential)); err != nil {
		return Principal{}, ErrInvalidCredential
	}
	return Principal{Subject: "admin", Method: "hashed"}, nil
}

// Chain tries each verifier in order and returns the first success.
type Chain []Verifier

func (c Chain) Verify(ctx context.Context, credential string) (Principal, error) {
	for _, v := range c {
		if v == nil {
			continue
		}
		if p, err := v.Verify(ctx, credential); err == nil {
			return p, nil
		}
	}
	return Principal{}, ErrInvalidCredential
}
